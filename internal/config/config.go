// Package config loads service configuration from the environment, with an
// optional .env file for local runs.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port                string `mapstructure:"PORT"`
	PostgresURL         string `mapstructure:"POSTGRES_URL"`
	KafkaBrokers        string `mapstructure:"KAFKA_BROKERS"`
	OrdersServiceURL    string `mapstructure:"ORDERS_SERVICE_URL"`
	ShipmentsServiceURL string `mapstructure:"SHIPMENTS_SERVICE_URL"`
	EmailServiceURL     string `mapstructure:"EMAIL_SERVICE_URL"`
	OTLPEndpoint        string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	MigrationsPath      string `mapstructure:"MIGRATIONS_PATH"`
}

// Load reads the environment into a Config. defaultPort is applied when PORT
// is unset; every other default is empty so mains can fail fast on what they
// require.
func Load(defaultPort string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", defaultPort)
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("ORDERS_SERVICE_URL", "")
	v.SetDefault("SHIPMENTS_SERVICE_URL", "")
	v.SetDefault("EMAIL_SERVICE_URL", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")

	// A missing .env is fine; real deployments set the environment.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}
