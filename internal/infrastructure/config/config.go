package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const AppEnvProd = "prod"

type Config struct {
	App      AppConfig
	AWS      AWSConfig
	Redis    RedisConfig
	Payments PaymentsConfig
}

type AppConfig struct {
	Env            string `envconfig:"APP_ENV" default:"dev"`
	Port           string `envconfig:"APP_PORT" default:"8080"`
	ServiceName    string `envconfig:"SERVICE_NAME" default:"payment-service"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat      string `envconfig:"LOG_FORMAT" default:"json"`
	SwaggerEnabled bool   `envconfig:"SWAGGER_ENABLED" default:"true"`
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AWSConfig carries the DynamoDB connection settings.
//
// Static credentials default to "local" so DynamoDB Local works without a
// real account.
type AWSConfig struct {
	Region           string `envconfig:"AWS_REGION" default:"us-east-1"`
	AccessKeyID      string `envconfig:"AWS_ACCESS_KEY_ID" default:"local"`
	SecretAccessKey  string `envconfig:"AWS_SECRET_ACCESS_KEY" default:"local"`
	DynamoDBEndpoint string `envconfig:"DYNAMODB_ENDPOINT"`
}

// RedisConfig enables payment event publishing when URL is set.
type RedisConfig struct {
	URL           string `envconfig:"REDIS_URL"`
	EventsChannel string `envconfig:"PAYMENT_EVENTS_CHANNEL" default:"payments.events"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type PaymentsConfig struct {
	Table           string `envconfig:"PAYMENTS_TABLE" default:"payments"`
	DefaultPageSize int    `envconfig:"PAYMENTS_DEFAULT_PAGE_SIZE" default:"50"`
	MaxPageSize     int    `envconfig:"PAYMENTS_MAX_PAGE_SIZE" default:"100"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Payments.DefaultPageSize <= 0 {
		return fmt.Errorf("PAYMENTS_DEFAULT_PAGE_SIZE must be positive, got %d", c.Payments.DefaultPageSize)
	}
	if c.Payments.MaxPageSize < c.Payments.DefaultPageSize {
		return fmt.Errorf("PAYMENTS_MAX_PAGE_SIZE (%d) must be >= PAYMENTS_DEFAULT_PAGE_SIZE (%d)",
			c.Payments.MaxPageSize, c.Payments.DefaultPageSize)
	}
	if strings.TrimSpace(c.Payments.Table) == "" {
		return fmt.Errorf("PAYMENTS_TABLE is required")
	}
	return nil
}
