package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/storefront/checkout-service-go/internal/checkout"
	"github.com/storefront/checkout-service-go/internal/contracts"
)

// RabbitOrderEventsPublisher publishes enveloped OrderPlaced events to
// the storefront topic exchange, sequenced per session so consumers can
// reorder.
type RabbitOrderEventsPublisher struct {
	ch      *amqp.Channel
	seqRepo SequenceRepository
}

func NewRabbitOrderEventsPublisher(conn *amqp.Connection, seqRepo SequenceRepository) (*RabbitOrderEventsPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	return &RabbitOrderEventsPublisher{ch: ch, seqRepo: seqRepo}, nil
}

func (p *RabbitOrderEventsPublisher) Close() error {
	return p.ch.Close()
}

func (p *RabbitOrderEventsPublisher) PublishOrderPlaced(ctx context.Context, o checkout.Order) error {
	seq, err := p.seqRepo.NextSequence(ctx, o.SessionID)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	env := contracts.BuildOrderPlacedEvent(o, contracts.EnvelopeOptions{
		PartitionKey: o.SessionID,
		Sequence:     seq,
		OccurredAt:   o.CreatedAt,
	})
	if err := env.Validate(); err != nil {
		return fmt.Errorf("invalid OrderPlaced envelope: %w", err)
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal OrderPlaced: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		OrderPlacedRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    env.EventID,
			Timestamp:    env.OccurredAt,
			Body:         body,
		},
	)
}
