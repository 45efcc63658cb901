package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/M-505/mitra-da-dhaba-sg/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MustInit loads .env (if present) and config.yaml, then installs the default logger.
// Every key can be overridden by an environment variable, e.g. server.http.port by
// RESTAURANT_SERVER_HTTP_PORT.
func MustInit() {
	if err := godotenv.Load("./.env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("error while loading .env file: " + err.Error())
	}

	SetDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/restaurant-svc")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("RESTAURANT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic("error while reading config file: " + err.Error())
		}
	}

	SetupLogger()
}

// SetDefaults registers the values used when neither config.yaml nor the environment sets a key.
func SetDefaults() {
	viper.SetDefault("log.level", "info")

	viper.SetDefault("server.http.port", "8080")
	viper.SetDefault("server.http.cors.allowed_origins", []string{"*"})
	viper.SetDefault("server.http.cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	viper.SetDefault("server.http.cors.allowed_headers", []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"})
	viper.SetDefault("server.http.cors.max_age", 300)
	viper.SetDefault("server.grpc.enabled", true)
	viper.SetDefault("server.grpc.port", "9090")
	viper.SetDefault("server.shutdown_timeout", "10s")

	viper.SetDefault("postgres.port", 5432)
	viper.SetDefault("postgres.sslmode", "disable")
	viper.SetDefault("postgres.migrations_path", "./migrations")

	viper.SetDefault("broadcast.buffer_size", 64)

	viper.SetDefault("rabbitmq.enabled", false)
	viper.SetDefault("rabbitmq.exchange", "restaurant.orders")
	viper.SetDefault("rabbitmq.relay.queue_size", 256)
	viper.SetDefault("rabbitmq.relay.max_retries", 5)

	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.service_name", "restaurant-svc")
}

func SetupLogger() {
	handler := logger.NewHandler(&slog.HandlerOptions{
		Level: logger.ParseLevel(viper.GetString("log.level")),
	})
	log := slog.New(handler)
	slog.SetDefault(log)
}
