package otel_test

import (
	"context"
	"testing"

	"github.com/respectgame/engine/internal/platform/otel"
)

func TestSetupNoopWhenEndpointEmpty(t *testing.T) {
	t.Setenv("RESPECT_OTEL_ENDPOINT", "")
	t.Setenv("RESPECT_OTEL_ENABLED", "")

	shutdown, err := otel.Setup(context.Background(), "respectd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetupNoopWhenExplicitlyDisabled(t *testing.T) {
	t.Setenv("RESPECT_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("RESPECT_OTEL_ENABLED", "false")

	shutdown, err := otel.Setup(context.Background(), "respectd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetupCreatesProviderWhenEndpointSet(t *testing.T) {
	// Non-routable address so no actual export happens.
	t.Setenv("RESPECT_OTEL_ENDPOINT", "http://192.0.2.1:4318")
	t.Setenv("RESPECT_OTEL_ENABLED", "")

	shutdown, err := otel.Setup(context.Background(), "respectd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetupNoopShutdownIgnoresCancelledContext(t *testing.T) {
	t.Setenv("RESPECT_OTEL_ENDPOINT", "")
	t.Setenv("RESPECT_OTEL_ENABLED", "")

	shutdown, err := otel.Setup(context.Background(), "respectd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("noop shutdown should not error: %v", err)
	}
}
