package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	GroupSize int `env:"RESPECT_TEST_GROUP_SIZE" envDefault:"5"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.GroupSize != 5 {
		t.Fatalf("expected default group size 5, got %d", cfg.GroupSize)
	}
}

func TestParseEnvOverride(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("RESPECT_TEST_GROUP_SIZE", "6")

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.GroupSize != 6 {
		t.Fatalf("expected group size 6, got %d", cfg.GroupSize)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("RESPECT_TEST_GROUP_SIZE", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
