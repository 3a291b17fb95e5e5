package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/storefront/checkout-service-go/internal/cart"
	"github.com/storefront/checkout-service-go/internal/catalog"
	"github.com/storefront/checkout-service-go/internal/checkout"
	"github.com/storefront/checkout-service-go/internal/config"
	"github.com/storefront/checkout-service-go/internal/db"
	"github.com/storefront/checkout-service-go/internal/events"
	httpserver "github.com/storefront/checkout-service-go/internal/http"
)

func main() {
	cfg := config.Load()

	logger := log.New(os.Stdout, "[checkout-service] ", log.LstdFlags|log.Lshortfile)

	if err := db.RunMigrations(cfg.DBDSN, logger); err != nil {
		logger.Fatalf("run migrations: %v", err)
	}

	database := db.MustOpen(cfg.DBDSN)
	defer database.Close()

	snapshots := cart.NewSnapshotRepository(database)
	stores := httpserver.NewSessionStores(func(ctx context.Context, sessionID string) *cart.Store {
		return cart.NewStore(ctx, snapshots.ForSession(sessionID), logger)
	})

	rabbitConn := events.MustDial(cfg.RabbitURL)
	defer rabbitConn.Close()

	sequenceRepo := events.NewSequenceRepository(database)
	publisher, err := events.NewRabbitOrderEventsPublisher(rabbitConn, sequenceRepo)
	if err != nil {
		logger.Fatalf("failed to create order events publisher: %v", err)
	}

	catalogClient, err := catalog.NewClient(cfg.CatalogURL, &http.Client{Timeout: cfg.UpstreamTimeout})
	if err != nil {
		logger.Fatalf("failed to create catalog client: %v", err)
	}

	gateway := checkout.SimulatedGateway{Delay: cfg.ProcessingDelay}
	nav := logNavigator{logger: logger}

	cartHandler := httpserver.NewCartHandler(stores, catalogClient)
	checkoutHandler := httpserver.NewCheckoutHandler(stores, gateway, nav, publisher, cfg.RedirectDelay, logger)
	mux := httpserver.NewRouter(cartHandler, checkoutHandler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 35 * time.Second, // checkout holds the request through the simulated delay
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("checkout-service listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Printf("shutdown signal received")
	case err := <-errCh:
		logger.Fatalf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown error: %v", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Printf("publisher close error: %v", err)
	}
}

// logNavigator is the service-side stand-in for the storefront's
// post-success redirect.
type logNavigator struct {
	logger *log.Logger
}

func (n logNavigator) NavigateHome() {
	n.logger.Printf("order complete, navigating back to storefront home")
}
