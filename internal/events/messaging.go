package events

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange        = "storefront.events"
	OrderPlacedRoutingKey = "order.placed.v1"
)

func declareEventsExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}
