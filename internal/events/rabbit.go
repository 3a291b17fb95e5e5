package events

import (
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MustDial connects to the broker at the given URL and exits the process
// on failure. The URL comes from configuration, not from the environment.
func MustDial(url string) *amqp.Connection {
	conn, err := amqp.Dial(url)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ at %s: %v", url, err)
	}
	return conn
}
