package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
service:
  id: "test-switchboard"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
  topic_prefix: "testhome"
scheduler:
  tick_interval: 2
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.ID != "test-switchboard" {
		t.Errorf("Service.ID = %q, want %q", cfg.Service.ID, "test-switchboard")
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}

	if cfg.MQTT.TopicPrefix != "testhome" {
		t.Errorf("MQTT.TopicPrefix = %q, want %q", cfg.MQTT.TopicPrefix, "testhome")
	}

	if got := cfg.TickInterval(); got != 2*time.Second {
		t.Errorf("TickInterval() = %v, want %v", got, 2*time.Second)
	}
}

func TestLoad_Defaults(t *testing.T) {
	// Minimal file: everything not set should come from defaults.
	cfg, err := Load(writeConfig(t, "service:\n  id: sb\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.TopicPrefix != "myhome" {
		t.Errorf("MQTT.TopicPrefix = %q, want %q", cfg.MQTT.TopicPrefix, "myhome")
	}
	if cfg.Scheduler.TickInterval != 1 {
		t.Errorf("Scheduler.TickInterval = %d, want 1", cfg.Scheduler.TickInterval)
	}
	if cfg.InfluxDB.Enabled {
		t.Error("InfluxDB.Enabled = true, want false by default")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SWITCHBOARD_MQTT_HOST", "broker.example.com")
	t.Setenv("SWITCHBOARD_MQTT_TOPIC_PREFIX", "site42")

	cfg, err := Load(writeConfig(t, "service:\n  id: sb\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "broker.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want env override", cfg.MQTT.Broker.Host)
	}
	if cfg.MQTT.TopicPrefix != "site42" {
		t.Errorf("MQTT.TopicPrefix = %q, want env override", cfg.MQTT.TopicPrefix)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(_ *Config) {}, false},
		{"empty service id", func(c *Config) { c.Service.ID = "" }, true},
		{"empty database path", func(c *Config) { c.Database.Path = "" }, true},
		{"invalid qos", func(c *Config) { c.MQTT.QoS = 3 }, true},
		{"invalid port", func(c *Config) { c.MQTT.Broker.Port = 0 }, true},
		{"wildcard in prefix", func(c *Config) { c.MQTT.TopicPrefix = "home/#" }, true},
		{"zero tick interval", func(c *Config) { c.Scheduler.TickInterval = 0 }, true},
		{"influx enabled without url", func(c *Config) { c.InfluxDB.Enabled = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
