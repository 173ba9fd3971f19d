// Package config loads application settings from environment variables.
package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// App holds every runtime setting for the service.
type App struct {
	// HTTP
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// Database
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"venuebooking"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	// Auth
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// RabbitMQ booking event publishing. Optional: when RABBIT_URL is empty
	// lifecycle events are simply not published.
	RabbitURL       string `envconfig:"RABBIT_URL"`
	BookingExchange string `envconfig:"BOOKING_EXCHANGE" default:"booking.exchange"`

	// Tracing. Optional: when the endpoint is empty no tracer is installed.
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Env          string `envconfig:"ENV" default:"dev"`
}

// Load reads an optional .env file, then the process environment.
func Load() (App, error) {
	_ = godotenv.Load()

	var c App
	err := envconfig.Process("", &c)
	return c, err
}
