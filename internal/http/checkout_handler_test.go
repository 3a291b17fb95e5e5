package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/storefront/checkout-service-go/internal/checkout"
	httphandler "github.com/storefront/checkout-service-go/internal/http"
)

type PublisherMock struct {
	PublishOrderPlacedFunc func(ctx context.Context, o checkout.Order) error
	published              []checkout.Order
}

func (m *PublisherMock) PublishOrderPlaced(ctx context.Context, o checkout.Order) error {
	m.published = append(m.published, o)
	if m.PublishOrderPlacedFunc != nil {
		return m.PublishOrderPlacedFunc(ctx, o)
	}
	return nil
}

type NavigatorMock struct {
	calls atomic.Int32
}

func (n *NavigatorMock) NavigateHome() {
	n.calls.Add(1)
}

func validFormBody() []byte {
	body, _ := json.Marshal(checkout.Form{
		FirstName:  "John",
		LastName:   "Doe",
		Email:      "john@example.com",
		Phone:      "1234567890",
		Address:    "123 Main St",
		City:       "New York",
		PostalCode: "10001",
		CardNumber: "4242 4242 4242 4242",
		CardExpiry: "12/25",
		CardCVV:    "123",
	})
	return body
}

func newCheckoutHandler(stores *httphandler.SessionStores, publisher *PublisherMock, nav *NavigatorMock) *httphandler.CheckoutHandler {
	return httphandler.NewCheckoutHandler(
		stores,
		checkout.SimulatedGateway{Delay: 5 * time.Millisecond},
		nav,
		publisher,
		10*time.Millisecond,
		testLogger(),
	)
}

func TestSubmitEmptyCart(t *testing.T) {
	stores := newSessionStores()
	handler := newCheckoutHandler(stores, &PublisherMock{}, &NavigatorMock{})

	r := httptest.NewRequest(http.MethodPost, "/api/checkout/s1", bytes.NewReader(validFormBody()))
	r.SetPathValue("sessionId", "s1")
	w := httptest.NewRecorder()

	handler.Submit(w, r)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for empty cart, got %d", w.Code)
	}
}

func TestSubmitInvalidForm(t *testing.T) {
	stores := newSessionStores()
	cartHandler := httphandler.NewCartHandler(stores, staticCatalog())
	addItem(t, cartHandler, "s1", "p1", 1)

	publisher := &PublisherMock{}
	handler := newCheckoutHandler(stores, publisher, &NavigatorMock{})

	r := httptest.NewRequest(http.MethodPost, "/api/checkout/s1", bytes.NewBufferString(`{"firstName":"John","cardNumber":"1234"}`))
	r.SetPathValue("sessionId", "s1")
	w := httptest.NewRecorder()

	handler.Submit(w, r)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := resp.Fields["cardNumber"]; !ok {
		t.Fatalf("expected cardNumber error, got %v", resp.Fields)
	}
	if _, ok := resp.Fields["firstName"]; ok {
		t.Fatalf("firstName was provided and should pass, got %v", resp.Fields)
	}
	if len(publisher.published) != 0 {
		t.Fatal("no event may be published for a rejected submit")
	}

	// the cart survives the failed attempt
	r = httptest.NewRequest(http.MethodGet, "/api/cart/s1", nil)
	r.SetPathValue("sessionId", "s1")
	w = httptest.NewRecorder()
	cartHandler.GetCart(w, r)
	var view cartViewResp
	if err := json.NewDecoder(w.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Count != 1 {
		t.Fatalf("cart must be untouched, got %+v", view)
	}
}

func TestSubmitInvalidJSON(t *testing.T) {
	handler := newCheckoutHandler(newSessionStores(), &PublisherMock{}, &NavigatorMock{})

	r := httptest.NewRequest(http.MethodPost, "/api/checkout/s1", bytes.NewBufferString("{"))
	r.SetPathValue("sessionId", "s1")
	w := httptest.NewRecorder()

	handler.Submit(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSubmitSuccess(t *testing.T) {
	stores := newSessionStores()
	cartHandler := httphandler.NewCartHandler(stores, staticCatalog())
	addItem(t, cartHandler, "s1", "p1", 1)

	publisher := &PublisherMock{}
	nav := &NavigatorMock{}
	handler := newCheckoutHandler(stores, publisher, nav)

	r := httptest.NewRequest(http.MethodPost, "/api/checkout/s1", bytes.NewReader(validFormBody()))
	r.SetPathValue("sessionId", "s1")
	w := httptest.NewRecorder()

	handler.Submit(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	var resp struct {
		OrderID     string  `json:"orderId"`
		Status      string  `json:"status"`
		TotalAmount float64 `json:"totalAmount"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.OrderID == "" {
		t.Fatal("expected an order id")
	}
	if resp.Status != string(checkout.StateSuccess) {
		t.Fatalf("expected success status, got %s", resp.Status)
	}
	if resp.TotalAmount != 20 {
		t.Fatalf("expected total 20, got %v", resp.TotalAmount)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("expected one OrderPlaced event, got %d", len(publisher.published))
	}
	if publisher.published[0].SessionID != "s1" {
		t.Fatalf("unexpected event session %q", publisher.published[0].SessionID)
	}

	// the cart is cleared by the completed order
	r = httptest.NewRequest(http.MethodGet, "/api/cart/s1", nil)
	r.SetPathValue("sessionId", "s1")
	w = httptest.NewRecorder()
	cartHandler.GetCart(w, r)
	var view cartViewResp
	if err := json.NewDecoder(w.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Count != 0 {
		t.Fatalf("expected empty cart after order, got %+v", view)
	}

	// redirect fires exactly once
	deadline := time.After(time.Second)
	for nav.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("navigator never invoked")
		case <-time.After(5 * time.Millisecond):
		}
	}
	time.Sleep(30 * time.Millisecond)
	if got := nav.calls.Load(); got != 1 {
		t.Fatalf("expected exactly one navigation, got %d", got)
	}
}

func TestSubmitWhileProcessingRejected(t *testing.T) {
	stores := newSessionStores()
	cartHandler := httphandler.NewCartHandler(stores, staticCatalog())
	addItem(t, cartHandler, "s1", "p1", 1)

	publisher := &PublisherMock{}
	handler := httphandler.NewCheckoutHandler(
		stores,
		checkout.SimulatedGateway{Delay: 200 * time.Millisecond},
		&NavigatorMock{},
		publisher,
		10*time.Millisecond,
		testLogger(),
	)

	first := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		r := httptest.NewRequest(http.MethodPost, "/api/checkout/s1", bytes.NewReader(validFormBody()))
		r.SetPathValue("sessionId", "s1")
		handler.Submit(first, r)
	}()

	// second submit lands while the first is still with the gateway
	time.Sleep(50 * time.Millisecond)
	r := httptest.NewRequest(http.MethodPost, "/api/checkout/s1", bytes.NewReader(validFormBody()))
	r.SetPathValue("sessionId", "s1")
	second := httptest.NewRecorder()
	handler.Submit(second, r)

	if second.Code != http.StatusConflict {
		t.Fatalf("expected 409 for concurrent submit, got %d", second.Code)
	}

	<-done
	if first.Code != http.StatusOK {
		t.Fatalf("first submit should complete, got %d (%s)", first.Code, first.Body.String())
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected exactly one placed order, got %d", len(publisher.published))
	}

	// once the first order finishes, the session may submit again
	addItem(t, cartHandler, "s1", "p1", 1)
	r = httptest.NewRequest(http.MethodPost, "/api/checkout/s1", bytes.NewReader(validFormBody()))
	r.SetPathValue("sessionId", "s1")
	third := httptest.NewRecorder()
	handler.Submit(third, r)
	if third.Code != http.StatusOK {
		t.Fatalf("session must be reusable after completion, got %d", third.Code)
	}
}

func TestSubmitSucceedsEvenIfPublishFails(t *testing.T) {
	stores := newSessionStores()
	cartHandler := httphandler.NewCartHandler(stores, staticCatalog())
	addItem(t, cartHandler, "s1", "p1", 1)

	publisher := &PublisherMock{PublishOrderPlacedFunc: func(ctx context.Context, o checkout.Order) error {
		return context.DeadlineExceeded
	}}
	handler := newCheckoutHandler(stores, publisher, &NavigatorMock{})

	r := httptest.NewRequest(http.MethodPost, "/api/checkout/s1", bytes.NewReader(validFormBody()))
	r.SetPathValue("sessionId", "s1")
	w := httptest.NewRecorder()

	handler.Submit(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("a lost event must not fail the order, got %d", w.Code)
	}
}
