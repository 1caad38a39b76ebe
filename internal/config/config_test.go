package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8082 {
		t.Errorf("Expected default port 8082, got %d", cfg.Server.Port)
	}
	if cfg.Redis.TTL != 5*time.Minute {
		t.Errorf("Expected default cache TTL 5m, got %s", cfg.Redis.TTL)
	}
	if len(cfg.Kafka.Brokers) != 1 || cfg.Kafka.Brokers[0] != "localhost:9092" {
		t.Errorf("Unexpected default brokers: %v", cfg.Kafka.Brokers)
	}
	if !cfg.Features.EnableOrderCaching || !cfg.Features.EnableOrderEvents {
		t.Error("Expected feature flags to default on")
	}
	if !strings.Contains(cfg.Database.ConnectionString(), "dbname=pawmart_orders") {
		t.Errorf("Unexpected connection string: %s", cfg.Database.ConnectionString())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("GATEWAY_WEBHOOK_SECRET", "whsec_env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "kafka-2:9092" {
		t.Errorf("Unexpected brokers: %v", cfg.Kafka.Brokers)
	}
	if cfg.Gateway.WebhookSecret != "whsec_env" {
		t.Errorf("Expected webhook secret from env, got %q", cfg.Gateway.WebhookSecret)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"negative server port", "SERVER_PORT", "-1"},
		{"server port out of range", "SERVER_PORT", "70000"},
		{"negative database port", "DB_PORT", "-5432"},
		{"empty broker list", "KAFKA_BROKERS", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Expected Load() to reject %s=%q", tt.key, tt.value)
			}
		})
	}
}
