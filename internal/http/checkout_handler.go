package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/storefront/checkout-service-go/internal/checkout"
)

// OrderEventsPublisher announces completed orders to the rest of the
// system.
type OrderEventsPublisher interface {
	PublishOrderPlaced(ctx context.Context, o checkout.Order) error
}

type CheckoutHandler struct {
	stores        *SessionStores
	gateway       checkout.PaymentGateway
	nav           checkout.Navigator
	publisher     OrderEventsPublisher
	redirectDelay time.Duration
	logger        *log.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewCheckoutHandler(
	stores *SessionStores,
	gateway checkout.PaymentGateway,
	nav checkout.Navigator,
	publisher OrderEventsPublisher,
	redirectDelay time.Duration,
	logger *log.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		stores:        stores,
		gateway:       gateway,
		nav:           nav,
		publisher:     publisher,
		redirectDelay: redirectDelay,
		logger:        logger,
		inFlight:      make(map[string]struct{}),
	}
}

// beginSubmit marks the session as having a submission in flight.
// It reports false when one is already running.
func (h *CheckoutHandler) beginSubmit(sessionID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, busy := h.inFlight[sessionID]; busy {
		return false
	}
	h.inFlight[sessionID] = struct{}{}
	return true
}

func (h *CheckoutHandler) endSubmit(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.inFlight, sessionID)
}

// Submit runs one checkout attempt: it builds a flow over the session's
// cart, feeds it the submitted form, and drives it to completion.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId")
		return
	}

	var form checkout.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	// one submission per session at a time: a second request while the
	// first is still with the gateway is rejected, mirroring the flow's
	// processing guard
	if !h.beginSubmit(sessionID) {
		writeError(w, http.StatusConflict, "order already processing")
		return
	}
	defer h.endSubmit(sessionID)

	// processing simulates a slow payment backend, so this timeout is
	// wider than the cart endpoints'
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	store := h.stores.Get(ctx, sessionID)
	flow := checkout.NewFlow(store, h.gateway, h.nav, checkout.WithRedirectDelay(h.redirectDelay))
	flow.SetForm(form)

	order, err := flow.Submit(ctx, sessionID)
	if err != nil {
		var verr *checkout.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":  "validation failed",
				"fields": verr.Fields,
			})
		case errors.Is(err, checkout.ErrEmptyCart):
			writeError(w, http.StatusConflict, "cart is empty")
		default:
			writeError(w, http.StatusInternalServerError, "failed to process order")
		}
		return
	}

	// the order already succeeded; a lost event must not fail the request
	if err := h.publisher.PublishOrderPlaced(ctx, order); err != nil {
		h.logger.Printf("publish OrderPlaced for order %s: %v", order.ID, err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"orderId":     order.ID,
		"status":      string(flow.State()),
		"totalAmount": order.Total,
	})
}
