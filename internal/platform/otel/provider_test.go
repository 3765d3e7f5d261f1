package otel_test

import (
	"context"
	"testing"

	"github.com/louisbranch/cypress-simulator/internal/platform/otel"
)

func TestSetupDisabledWithoutEndpoint(t *testing.T) {
	t.Setenv(otel.EndpointEnv, "")
	t.Setenv(otel.EnabledEnv, "")

	shutdown, err := otel.Setup(context.Background(), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("noop shutdown should not error: %v", err)
	}
}

func TestSetupExplicitlyDisabled(t *testing.T) {
	t.Setenv(otel.EndpointEnv, "http://localhost:4318")
	t.Setenv(otel.EnabledEnv, "FALSE")
	t.Setenv(otel.SampleRatioEnv, "not-a-number")

	shutdown, err := otel.Setup(context.Background(), "test")
	if err != nil {
		t.Fatalf("disabled tracing must not validate settings: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestSetupRejectsBadSampleRatio(t *testing.T) {
	t.Setenv(otel.EndpointEnv, "http://192.0.2.1:4318")
	t.Setenv(otel.EnabledEnv, "")

	for _, ratio := range []string{"1.5", "-0.1", "half"} {
		t.Setenv(otel.SampleRatioEnv, ratio)
		if _, err := otel.Setup(context.Background(), "test"); err == nil {
			t.Fatalf("ratio %q: expected error", ratio)
		}
	}
}

func TestSetupWithEndpoint(t *testing.T) {
	// Non-routable address so nothing is exported.
	t.Setenv(otel.EndpointEnv, "http://192.0.2.1:4318")
	t.Setenv(otel.EnabledEnv, "")
	t.Setenv(otel.SampleRatioEnv, "0.25")

	shutdown, err := otel.Setup(context.Background(), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}
