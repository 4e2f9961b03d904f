package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	if cfg.APIBaseURL == "" {
		t.Fatalf("empty api base url")
	}
	if cfg.RequestTimeout <= 0 {
		t.Fatalf("non-positive timeout")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MEDIFIND_API_URL", "http://example.test:9999")
	t.Setenv("MEDIFIND_REQUEST_TIMEOUT", "5s")
	cfg := Load()
	if cfg.APIBaseURL != "http://example.test:9999" {
		t.Fatalf("env override ignored: %q", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("duration override ignored: %v", cfg.RequestTimeout)
	}
}

func TestLoadServer_Defaults(t *testing.T) {
	cfg := LoadServer()
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("addr: %q", cfg.HTTPAddr)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("ttl: %v", cfg.TokenTTL)
	}
}
