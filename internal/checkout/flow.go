package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/checkout-service-go/internal/cart"
)

type State string

const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateSuccess    State = "success"
)

var (
	// ErrEmptyCart blocks submission before any transition happens.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrProcessing rejects a submit while an earlier one is in flight.
	ErrProcessing = errors.New("order already processing")
	// ErrCompleted rejects a submit after the flow reached its terminal state.
	ErrCompleted = errors.New("order already completed")
)

// Flow drives one checkout attempt from an editable form to a completed
// order: Idle -> Processing -> Success. A failed validation keeps the
// flow Idle with the field errors populated; the simulated gateway has no
// failure path, so there is no Failed state.
//
// The post-success navigation is scheduled on a timer bound to the flow's
// lifetime: Stop cancels it, so tearing the flow down mid-delay fires no
// stray navigation.
type Flow struct {
	mu     sync.Mutex
	state  State
	form   Form
	errors Errors

	cart    *cart.Store
	gateway PaymentGateway
	nav     Navigator

	redirectDelay time.Duration
	redirectTimer *time.Timer
	stopped       bool
}

type FlowOption func(*Flow)

// WithRedirectDelay overrides how long the flow waits after success
// before invoking the navigator.
func WithRedirectDelay(d time.Duration) FlowOption {
	return func(f *Flow) { f.redirectDelay = d }
}

const defaultRedirectDelay = 2 * time.Second

func NewFlow(c *cart.Store, gateway PaymentGateway, nav Navigator, opts ...FlowOption) *Flow {
	f := &Flow{
		state:         StateIdle,
		errors:        Errors{},
		cart:          c,
		gateway:       gateway,
		nav:           nav,
		redirectDelay: defaultRedirectDelay,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) Form() Form {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

// Errors returns a copy of the current per-field errors.
func (f *Flow) Errors() Errors {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(Errors, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// SetField records an edit. The two payment fields are reformatted on
// every edit; editing a field clears its error immediately, while the
// full rule set runs only on the next submit.
func (f *Flow) SetField(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch name {
	case FieldFirstName:
		f.form.FirstName = value
	case FieldLastName:
		f.form.LastName = value
	case FieldEmail:
		f.form.Email = value
	case FieldPhone:
		f.form.Phone = value
	case FieldAddress:
		f.form.Address = value
	case FieldCity:
		f.form.City = value
	case FieldPostalCode:
		f.form.PostalCode = value
	case FieldCardNumber:
		f.form.CardNumber = FormatCardNumber(value)
	case FieldCardExpiry:
		f.form.CardExpiry = FormatExpiry(value)
	case FieldCardCVV:
		f.form.CardCVV = value
	default:
		return
	}

	delete(f.errors, name)
}

// SetForm replaces the whole form, applying the payment-field formatters.
func (f *Flow) SetForm(form Form) {
	f.mu.Lock()
	defer f.mu.Unlock()

	form.CardNumber = FormatCardNumber(form.CardNumber)
	form.CardExpiry = FormatExpiry(form.CardExpiry)
	f.form = form
	f.errors = Errors{}
}

// Submit runs the checkout attempt to completion. It validates the form,
// places the order through the gateway, clears the cart, and schedules
// the one-shot navigation. The returned order is zero unless the flow
// reached Success.
func (f *Flow) Submit(ctx context.Context, sessionID string) (Order, error) {
	f.mu.Lock()
	switch f.state {
	case StateProcessing:
		f.mu.Unlock()
		return Order{}, ErrProcessing
	case StateSuccess:
		f.mu.Unlock()
		return Order{}, ErrCompleted
	}

	if f.cart.Count() == 0 {
		f.mu.Unlock()
		return Order{}, ErrEmptyCart
	}

	errs := Validate(f.form)
	if len(errs) > 0 {
		f.errors = errs
		f.mu.Unlock()
		return Order{}, &ValidationError{Fields: errs}
	}
	f.errors = Errors{}
	f.state = StateProcessing

	order := Order{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Items:     f.cart.Items(),
		Total:     f.cart.Total(),
		Customer:  f.form,
		CreatedAt: time.Now().UTC(),
	}
	f.mu.Unlock()

	if err := f.gateway.PlaceOrder(ctx, order); err != nil {
		// only cancellation can land here with the simulated gateway
		f.mu.Lock()
		f.state = StateIdle
		f.mu.Unlock()
		return Order{}, err
	}

	f.cart.Clear(ctx)

	f.mu.Lock()
	f.state = StateSuccess
	if !f.stopped {
		f.redirectTimer = time.AfterFunc(f.redirectDelay, f.nav.NavigateHome)
	}
	f.mu.Unlock()

	return order, nil
}

// Stop cancels any pending navigation and prevents new ones from being
// scheduled. Safe to call more than once.
func (f *Flow) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopped = true
	if f.redirectTimer != nil {
		f.redirectTimer.Stop()
		f.redirectTimer = nil
	}
}

// ValidationError carries the per-field messages of a rejected submit.
type ValidationError struct {
	Fields Errors
}

func (e *ValidationError) Error() string {
	return "checkout form validation failed"
}
