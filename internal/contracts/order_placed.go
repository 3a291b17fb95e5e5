package contracts

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/checkout-service-go/internal/checkout"
)

const (
	OrderPlacedEventName           = "OrderPlaced"
	OrderPlacedEventVersion        = 1
	OrderPlacedEnvelopedSchemaPath = "contracts/events/checkout/OrderPlaced.v1.enveloped.schema.json"
	CheckoutServiceProducer        = "checkout-service"
)

type EventEnvelope struct {
	EventName     string             `json:"eventName"`
	EventVersion  int                `json:"eventVersion"`
	EventID       string             `json:"eventId"`
	CorrelationID string             `json:"correlationId,omitempty"`
	CausationID   string             `json:"causationId,omitempty"`
	Producer      string             `json:"producer"`
	PartitionKey  string             `json:"partitionKey"`
	Sequence      int64              `json:"sequence"`
	OccurredAt    time.Time          `json:"occurredAt"`
	Schema        string             `json:"schema"`
	Payload       OrderPlacedPayload `json:"payload"`
}

// Validate ensures the envelope carries the expected event identity and
// the fields consumers partition and order by.
func (e EventEnvelope) Validate() error {
	if e.EventName != OrderPlacedEventName {
		return fmt.Errorf("unexpected eventName: %s", e.EventName)
	}
	if e.EventVersion != OrderPlacedEventVersion {
		return fmt.Errorf("unexpected eventVersion: %d", e.EventVersion)
	}
	if e.PartitionKey == "" {
		return fmt.Errorf("missing partitionKey")
	}
	if e.Sequence <= 0 {
		return fmt.Errorf("sequence must be positive")
	}
	if e.Payload.OrderID == "" {
		return fmt.Errorf("missing payload orderId")
	}
	return nil
}

type OrderPlacedPayload struct {
	OrderID     string            `json:"orderId"`
	SessionID   string            `json:"sessionId"`
	Items       []OrderPlacedItem `json:"items"`
	TotalAmount float64           `json:"totalAmount"`
	Timestamp   time.Time         `json:"timestamp"`
}

type OrderPlacedItem struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type EnvelopeOptions struct {
	PartitionKey  string
	Sequence      int64
	Producer      string
	SchemaPath    string
	CorrelationID string
	CausationID   string
	EventID       string
	OccurredAt    time.Time
}

func BuildOrderPlacedEvent(o checkout.Order, opts EnvelopeOptions) EventEnvelope {
	eventID := opts.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	occurredAt := opts.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	schemaPath := opts.SchemaPath
	if schemaPath == "" {
		schemaPath = OrderPlacedEnvelopedSchemaPath
	}

	producer := opts.Producer
	if producer == "" {
		producer = CheckoutServiceProducer
	}

	payload := OrderPlacedPayload{
		OrderID:     o.ID,
		SessionID:   o.SessionID,
		TotalAmount: o.Total,
		Timestamp:   occurredAt,
	}

	for _, it := range o.Items {
		payload.Items = append(payload.Items, OrderPlacedItem{
			ProductID: it.Product.ID,
			Title:     it.Product.Title,
			Quantity:  it.Quantity,
			Price:     it.Product.Price,
		})
	}

	return EventEnvelope{
		EventName:     OrderPlacedEventName,
		EventVersion:  OrderPlacedEventVersion,
		EventID:       eventID,
		CorrelationID: opts.CorrelationID,
		CausationID:   opts.CausationID,
		Producer:      producer,
		PartitionKey:  opts.PartitionKey,
		Sequence:      opts.Sequence,
		OccurredAt:    occurredAt,
		Schema:        schemaPath,
		Payload:       payload,
	}
}
