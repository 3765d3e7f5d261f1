package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port  int           `env:"TEST_PORT" envDefault:"123"`
	Delay time.Duration `env:"TEST_DELAY" envDefault:"1s"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
	if cfg.Delay != time.Second {
		t.Fatalf("expected default delay 1s, got %s", cfg.Delay)
	}
}

func TestParseEnvUsesPrefix(t *testing.T) {
	t.Setenv("SIMULATOR_TEST_PORT", "456")
	t.Setenv("TEST_PORT", "789")

	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 456 {
		t.Fatalf("expected prefixed port 456, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("SIMULATOR_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestParseEnvFromIgnoresProcessEnvironment(t *testing.T) {
	t.Setenv("SIMULATOR_TEST_PORT", "456")

	var cfg envTestConfig
	if err := ParseEnvFrom(&cfg, map[string]string{"SIMULATOR_TEST_DELAY": "250ms"}); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
	if cfg.Delay != 250*time.Millisecond {
		t.Fatalf("expected delay 250ms, got %s", cfg.Delay)
	}
}
