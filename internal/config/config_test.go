package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("expected default port 3000, got %d", cfg.Server.Port)
	}
	if cfg.WebSocket.PingInterval != 25*time.Second {
		t.Errorf("expected default ping interval 25s, got %s", cfg.WebSocket.PingInterval)
	}
	if cfg.WebSocket.PongWait != 60*time.Second {
		t.Errorf("expected default pong wait 60s, got %s", cfg.WebSocket.PongWait)
	}
	if cfg.PubSub.Enabled || cfg.Kafka.Enabled {
		t.Error("redis and kafka must be opt-in")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected PORT override, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected LOG_LEVEL override, got %q", cfg.Log.Level)
	}
}
