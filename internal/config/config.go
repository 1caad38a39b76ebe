package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Gateway  GatewayConfig
	Log      LogConfig
	Features FeatureFlags
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Brokers       []string
	OrdersTopic   string
	PaymentsTopic string
	ShippingTopic string
	ConsumerGroup string
}

// GatewayConfig configures the external payment provider. WebhookSecret
// signs provider callbacks; leaving it empty rejects every webhook.
type GatewayConfig struct {
	BaseURL       string
	SecretKey     string
	CallbackURL   string
	WebhookSecret string
	Timeout       time.Duration
}

type LogConfig struct {
	Level string
}

type FeatureFlags struct {
	EnableOrderCaching bool
	EnableOrderEvents  bool
}

// Load reads configuration from the environment with sane defaults. It
// fails when a value is present but unusable, not when one is merely
// missing.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("server.port", 8082)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "pawmart")
	v.SetDefault("db.password", "pawmart")
	v.SetDefault("db.name", "pawmart_orders")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.max_lifetime", 5*time.Minute)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 5*time.Minute)

	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.orders_topic", "pawmart.orders")
	v.SetDefault("kafka.payments_topic", "pawmart.payments")
	v.SetDefault("kafka.shipping_topic", "pawmart.shipping")
	v.SetDefault("kafka.consumer_group", "orders-service")

	v.SetDefault("gateway.base_url", "https://api.paygate.example.com")
	v.SetDefault("gateway.secret_key", "")
	v.SetDefault("gateway.callback_url", "http://localhost:8082/api/v1/payments/verify")
	v.SetDefault("gateway.webhook_secret", "")
	v.SetDefault("gateway.timeout", 30*time.Second)

	v.SetDefault("log.level", "info")

	v.SetDefault("features.enable_order_caching", true)
	v.SetDefault("features.enable_order_events", true)

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		Database: DatabaseConfig{
			Host:         v.GetString("db.host"),
			Port:         v.GetInt("db.port"),
			User:         v.GetString("db.user"),
			Password:     v.GetString("db.password"),
			Name:         v.GetString("db.name"),
			SSLMode:      v.GetString("db.sslmode"),
			MaxOpenConns: v.GetInt("db.max_open_conns"),
			MaxIdleConns: v.GetInt("db.max_idle_conns"),
			MaxLifetime:  v.GetDuration("db.max_lifetime"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TTL:      v.GetDuration("redis.ttl"),
		},
		Kafka: KafkaConfig{
			Brokers:       strings.Split(v.GetString("kafka.brokers"), ","),
			OrdersTopic:   v.GetString("kafka.orders_topic"),
			PaymentsTopic: v.GetString("kafka.payments_topic"),
			ShippingTopic: v.GetString("kafka.shipping_topic"),
			ConsumerGroup: v.GetString("kafka.consumer_group"),
		},
		Gateway: GatewayConfig{
			BaseURL:       v.GetString("gateway.base_url"),
			SecretKey:     v.GetString("gateway.secret_key"),
			CallbackURL:   v.GetString("gateway.callback_url"),
			WebhookSecret: v.GetString("gateway.webhook_secret"),
			Timeout:       v.GetDuration("gateway.timeout"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
		Features: FeatureFlags{
			EnableOrderCaching: v.GetBool("features.enable_order_caching"),
			EnableOrderEvents:  v.GetBool("features.enable_order_events"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port %d", c.Database.Port)
	}
	if len(c.Kafka.Brokers) == 0 || c.Kafka.Brokers[0] == "" {
		return fmt.Errorf("at least one kafka broker is required")
	}
	return nil
}
