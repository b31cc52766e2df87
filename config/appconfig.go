package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

type RedisConfig struct {
	URL             string `mapstructure:"url"`
	DedupTTLSeconds int    `mapstructure:"dedup_ttl_seconds"`
}

func (c *RedisConfig) DedupTTL() time.Duration {
	return time.Duration(c.DedupTTLSeconds) * time.Second
}

type GatewayConfig struct {
	SecretKey      string `mapstructure:"secret_key"`
	InitializeURL  string `mapstructure:"initialize_url"`
	CallbackURL    string `mapstructure:"callback_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

func (c *GatewayConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type PaymentsConfig struct {
	BaseCurrency      string `mapstructure:"base_currency"`
	AllowedCurrencies string `mapstructure:"allowed_currencies"`
}

// AllowedList splits the comma-separated currency allow-list from the env.
func (c *PaymentsConfig) AllowedList() []string {
	parts := strings.Split(c.AllowedCurrencies, ",")
	currencies := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			currencies = append(currencies, p)
		}
	}
	return currencies
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	JaegerURL   string `mapstructure:"jaeger_url"`
}

type AppConfig struct {
	Server    *ServerConfig    `mapstructure:"server"`
	Postgres  *PostgresConfig  `mapstructure:"postgres"`
	Redis     *RedisConfig     `mapstructure:"redis"`
	Gateway   *GatewayConfig   `mapstructure:"gateway"`
	Payments  *PaymentsConfig  `mapstructure:"payments"`
	Telemetry *TelemetryConfig `mapstructure:"telemetry"`
}

func LoadConfig() (*AppConfig, error) {

	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("redis.dedup_ttl_seconds", 86400)
	viper.SetDefault("gateway.initialize_url", "https://api.paystack.co/transaction/initialize")
	viper.SetDefault("gateway.callback_url", "http://localhost:8080/payments/webhook")
	viper.SetDefault("gateway.timeout_seconds", 30)
	viper.SetDefault("payments.base_currency", "NGN")
	viper.SetDefault("payments.allowed_currencies", "NGN,USD,GHS")
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.service_name", "payments-api")
	viper.SetDefault("telemetry.jaeger_url", "http://jaeger:14268/api/traces")

	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.host", "SERVER_HOST")
	_ = viper.BindEnv("postgres.url", "POSTGRES_URL")
	_ = viper.BindEnv("redis.url", "REDIS_URL")
	_ = viper.BindEnv("redis.dedup_ttl_seconds", "REDIS_DEDUP_TTL_SECONDS")
	_ = viper.BindEnv("gateway.secret_key", "PAYSTACK_SECRET_KEY")
	_ = viper.BindEnv("gateway.initialize_url", "PAYSTACK_INITIALIZE_URL")
	_ = viper.BindEnv("gateway.callback_url", "PAYSTACK_CALLBACK_URL")
	_ = viper.BindEnv("gateway.timeout_seconds", "PAYSTACK_TIMEOUT_SECONDS")
	_ = viper.BindEnv("payments.base_currency", "PAYMENTS_BASE_CURRENCY")
	_ = viper.BindEnv("payments.allowed_currencies", "PAYMENTS_ALLOWED_CURRENCIES")
	_ = viper.BindEnv("telemetry.enabled", "TELEMETRY_ENABLED")
	_ = viper.BindEnv("telemetry.service_name", "TELEMETRY_SERVICE_NAME")
	_ = viper.BindEnv("telemetry.jaeger_url", "JAEGER_URL")

	var config AppConfig
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("unable to decode into struct, %v", err)
	}

	return &config, nil
}
