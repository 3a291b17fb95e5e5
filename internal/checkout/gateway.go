package checkout

import (
	"context"
	"time"

	"github.com/storefront/checkout-service-go/internal/cart"
)

// Order is what gets handed to the payment gateway once the form has
// passed validation.
type Order struct {
	ID        string          `json:"orderId"`
	SessionID string          `json:"sessionId"`
	Items     []cart.LineItem `json:"items"`
	Total     float64         `json:"totalAmount"`
	Customer  Form            `json:"customer"`
	CreatedAt time.Time       `json:"createdAt"`
}

// PaymentGateway places a validated order with the payment backend.
type PaymentGateway interface {
	PlaceOrder(ctx context.Context, o Order) error
}

// Navigator is invoked once, fire-and-forget, to leave the checkout view
// after order success.
type Navigator interface {
	NavigateHome()
}

// SimulatedGateway stands in for a real payment backend. It waits a fixed
// artificial delay and always succeeds. A real integration would replace
// this with an idempotent remote call keyed by the order id.
type SimulatedGateway struct {
	Delay time.Duration
}

func (g SimulatedGateway) PlaceOrder(ctx context.Context, o Order) error {
	select {
	case <-time.After(g.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
