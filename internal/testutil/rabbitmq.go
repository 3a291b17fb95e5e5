package testutil

import (
	"context"
	"os/exec"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// StartRabbitMQ launches a temporary RabbitMQ container and returns an
// open AMQP connection plus a cleanup function. Tests are skipped when
// docker is not available. Cleanup is also registered with t.Cleanup.
func StartRabbitMQ(ctx context.Context, t *testing.T) (*amqp.Connection, func()) {
	t.Helper()

	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not available; skipping integration test")
	}

	startCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	t.Cleanup(cancel)

	container, err := testcontainers.GenericContainer(startCtx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "rabbitmq:3.13-alpine",
			ExposedPorts: []string{"5672/tcp"},
			WaitingFor:   wait.ForListeningPort("5672/tcp").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	host, err := container.Host(startCtx)
	require.NoError(t, err)
	mappedPort, err := container.MappedPort(startCtx, "5672")
	require.NoError(t, err)

	url := "amqp://guest:guest@" + host + ":" + mappedPort.Port() + "/"
	conn, err := amqp.DialConfig(url, amqp.Config{
		Dial: amqp.DefaultDial(10 * time.Second),
	})
	require.NoError(t, err)

	cleanup := func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()

		_ = conn.Close()
		_ = container.Terminate(stopCtx)
	}
	t.Cleanup(cleanup)

	return conn, cleanup
}
