// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/khelsaga/venue-booking/internal/config"
	"github.com/khelsaga/venue-booking/internal/database"
	"github.com/khelsaga/venue-booking/internal/handler"
	"github.com/khelsaga/venue-booking/internal/mq"
	"github.com/khelsaga/venue-booking/internal/obs"
	"github.com/khelsaga/venue-booking/internal/repository"
	"github.com/khelsaga/venue-booking/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ── 1. Connect to PostgreSQL ──────────────────────────────────────────
	pool, err := database.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()
	log.Println("connected to postgres")

	// ── 2. Optional infrastructure: tracing and event publishing ──────────
	if cfg.OTLPEndpoint != "" {
		shutdown, err := obs.InitTracer(ctx, "venue-booking", cfg.OTLPEndpoint, cfg.Env)
		if err != nil {
			log.Fatalf("tracing: %v", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	var events service.EventPublisher
	if cfg.RabbitURL != "" {
		pub, err := mq.NewPublisher(cfg.RabbitURL, cfg.BookingExchange)
		if err != nil {
			log.Fatalf("rabbitmq: %v", err)
		}
		defer pub.Close()
		events = pub
		log.Println("publishing booking events to", cfg.BookingExchange)
	}

	// ── 3. Wire up layers ─────────────────────────────────────────────────
	venueRepo := repository.NewVenueRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	venueSvc := service.NewVenueService(venueRepo)
	bookingSvc := service.NewBookingService(bookingRepo, venueRepo, events)
	venueHandler := handler.NewVenueHandler(venueSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc)

	// ── 4. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger)          // structured access log
	r.Use(handler.CORS)            // permissive CORS for the web frontend

	// Health
	r.Get("/health", handler.HealthCheck)

	// Public catalog and availability routes
	r.Route("/venues", func(r chi.Router) {
		r.Get("/", venueHandler.ListVenues)
		r.Get("/{id}", venueHandler.GetVenue)
		r.Get("/{id}/facilities", venueHandler.ListFacilities)
	})
	r.Get("/facilities/{id}/availability", bookingHandler.Availability)

	// Booking routes require an authenticated user
	r.Route("/bookings", func(r chi.Router) {
		r.Use(handler.Auth(cfg.JWTSecret))
		r.Post("/", bookingHandler.CreateBooking)
		r.Get("/", bookingHandler.ListBookings)
		r.Get("/{id}", bookingHandler.GetBooking)
		r.Post("/{id}/payment", bookingHandler.ConfirmPayment)
		r.Post("/{id}/cancel", bookingHandler.CancelBooking)
	})

	// ── 5. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		log.Printf("server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}
