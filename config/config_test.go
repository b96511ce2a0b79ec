package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Messaging.Port != 1883 {
		t.Errorf("port = %d, want 1883", cfg.Messaging.Port)
	}
	if cfg.Messaging.ReconnectPeriod != 4*time.Second {
		t.Errorf("reconnect_period = %v, want 4s", cfg.Messaging.ReconnectPeriod)
	}
	if cfg.Robot.ControlAPI.Language != "zh-CN" {
		t.Errorf("language = %q, want zh-CN", cfg.Robot.ControlAPI.Language)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maitred.yaml")
	data := []byte(`
venue_id: bistro-9
messaging:
  host: broker.example.com
  port: 8083
  scheme: ws
  path: /mqtt
robot:
  serial_number: PX9999
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.VenueID != "bistro-9" {
		t.Errorf("venue_id = %q, want bistro-9", cfg.VenueID)
	}
	if cfg.Robot.SerialNumber != "PX9999" {
		t.Errorf("serial = %q, want PX9999", cfg.Robot.SerialNumber)
	}
	if got := cfg.Messaging.BrokerURL(); got != "ws://broker.example.com:8083/mqtt" {
		t.Errorf("broker url = %q, want ws://broker.example.com:8083/mqtt", got)
	}
}

func TestEnvOverridesCredentials(t *testing.T) {
	t.Setenv("APPKEY", "env-key")
	t.Setenv("APPTOKEN", "env-token")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Robot.ControlAPI.AppKey != "env-key" {
		t.Errorf("appkey = %q, want env-key", cfg.Robot.ControlAPI.AppKey)
	}
	if cfg.Robot.ControlAPI.AppToken != "env-token" {
		t.Errorf("apptoken = %q, want env-token", cfg.Robot.ControlAPI.AppToken)
	}
}

func TestBrokerURLTCP(t *testing.T) {
	m := MessagingConfig{Scheme: "tcp", Host: "localhost", Port: 1883, Path: "/"}
	if got := m.BrokerURL(); got != "tcp://localhost:1883" {
		t.Errorf("broker url = %q, want tcp://localhost:1883", got)
	}
}
