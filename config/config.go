package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

/* Config é um pacote auxiliar. Poderia ser uma lib externa
 * Values come from an optional .env (toml) file, overridden by environment variables.
 */

type Config struct {
	Port          string `mapstructure:"PORT"`
	AppEnv        string `mapstructure:"APP_ENV"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	RoutesFile    string `mapstructure:"ROUTES_FILE"`
	EncryptionKey string `mapstructure:"ENCRYPTION_KEY"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	WebhookTimeoutSeconds    int `mapstructure:"WEBHOOK_TIMEOUT"`
	WebhookMaxRetries        int `mapstructure:"WEBHOOK_MAX_RETRIES"`
	WebhookRetryDelaySeconds int `mapstructure:"WEBHOOK_RETRY_DELAY_SECONDS"`
	WebhookDeliveredTTLHours int `mapstructure:"WEBHOOK_DELIVERED_TTL_HOURS"`
	WebhookFailedTTLHours    int `mapstructure:"WEBHOOK_FAILED_TTL_HOURS"`
}

var defaults = map[string]any{
	"PORT":           "8000",
	"APP_ENV":        "development",
	"LOG_LEVEL":      "info",
	"ROUTES_FILE":    "routes.yaml",
	"ENCRYPTION_KEY": "",

	"REDIS_ADDR":     "",
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,

	"WEBHOOK_TIMEOUT":             30,
	"WEBHOOK_MAX_RETRIES":         3,
	"WEBHOOK_RETRY_DELAY_SECONDS": 5,
	"WEBHOOK_DELIVERED_TTL_HOURS": 1,
	"WEBHOOK_FAILED_TTL_HOURS":    24,
}

// GetConfig reads .env from the working directory and the environment
func GetConfig() (*Config, error) {
	return Load(".")
}

// Load reads .env from dir (if present) and the environment
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects values the delivery client cannot work with
func (c *Config) Validate() error {
	if c.WebhookTimeoutSeconds <= 0 {
		return fmt.Errorf("WEBHOOK_TIMEOUT must be positive, got %d", c.WebhookTimeoutSeconds)
	}
	if c.WebhookMaxRetries < 0 {
		return fmt.Errorf("WEBHOOK_MAX_RETRIES cannot be negative, got %d", c.WebhookMaxRetries)
	}
	if c.WebhookRetryDelaySeconds < 0 {
		return fmt.Errorf("WEBHOOK_RETRY_DELAY_SECONDS cannot be negative, got %d", c.WebhookRetryDelaySeconds)
	}
	if c.WebhookDeliveredTTLHours < 0 || c.WebhookFailedTTLHours < 0 {
		return fmt.Errorf("delivery TTLs cannot be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) WebhookTimeout() time.Duration {
	return time.Duration(c.WebhookTimeoutSeconds) * time.Second
}

func (c *Config) WebhookRetryDelay() time.Duration {
	return time.Duration(c.WebhookRetryDelaySeconds) * time.Second
}

func (c *Config) GetWebhookDeliveredTTLHours() int {
	return c.WebhookDeliveredTTLHours
}

func (c *Config) GetWebhookFailedTTLHours() int {
	return c.WebhookFailedTTLHours
}
