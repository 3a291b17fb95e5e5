package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	checkoutdb "github.com/storefront/checkout-service-go/internal/db"
)

const (
	dbUser     = "checkout_user"
	dbPassword = "checkout_pass"
	dbName     = "checkout"
)

// StartPostgres launches a temporary Postgres container, applies the
// schema, and returns a database handle plus a cleanup function. Tests
// are skipped when docker is not available.
func StartPostgres(ctx context.Context, t *testing.T) (*sql.DB, func()) {
	t.Helper()

	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not available; skipping integration test")
	}

	containerName := "checkout-int-" + uuid.NewString()
	runArgs := []string{
		"run", "--rm", "-d",
		"-e", fmt.Sprintf("POSTGRES_USER=%s", dbUser),
		"-e", fmt.Sprintf("POSTGRES_PASSWORD=%s", dbPassword),
		"-e", fmt.Sprintf("POSTGRES_DB=%s", dbName),
		"-P",
		"--name", containerName,
		"postgres:16-alpine",
	}

	if err := exec.CommandContext(ctx, "docker", runArgs...).Run(); err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	var db *sql.DB
	cleanup := func() {
		if db != nil {
			_ = db.Close()
		}
		_ = exec.Command("docker", "stop", containerName).Run()
	}

	hostPort := waitForPort(ctx, t, containerName)
	dsn := fmt.Sprintf("postgres://%s:%s@localhost:%s/%s?sslmode=disable", dbUser, dbPassword, hostPort, dbName)

	db = connectAndMigrate(ctx, t, dsn)

	return db, cleanup
}

func waitForPort(ctx context.Context, t *testing.T, containerName string) string {
	t.Helper()

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		out, err := exec.CommandContext(ctx, "docker", "port", containerName, "5432/tcp").Output()
		if err == nil {
			mapping := strings.TrimSpace(string(out))
			if idx := strings.LastIndex(mapping, ":"); idx >= 0 {
				return strings.Split(mapping[idx+1:], "\n")[0]
			}
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("postgres container %s never exposed port 5432", containerName)
	return ""
}

func connectAndMigrate(ctx context.Context, t *testing.T, dsn string) *sql.DB {
	t.Helper()

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		db, err := sql.Open("postgres", dsn)
		if err == nil {
			if err := db.PingContext(ctx); err == nil {
				if err := checkoutdb.RunMigrations(dsn, Logger(t)); err != nil {
					db.Close()
					t.Fatalf("run migrations: %v", err)
				}
				return db
			}
			db.Close()
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("postgres at %s never became ready", dsn)
	return nil
}
