package telemetry

import (
	"context"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	shutdown, err := Setup(context.Background(), Options{ServiceName: "test-service"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_CreatesProviderForURL(t *testing.T) {
	// Use a non-routable address so no actual export happens.
	shutdown, err := Setup(context.Background(), Options{
		ServiceName: "test-service",
		Endpoint:    "http://192.0.2.1:4318",
		SampleRatio: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_CreatesProviderForHostPort(t *testing.T) {
	shutdown, err := Setup(context.Background(), Options{
		ServiceName: "test-service",
		Endpoint:    "192.0.2.1:4318",
		Insecure:    true,
		SampleRatio: 0.25,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSampler(t *testing.T) {
	if got := sampler(1).Description(); got != sdktrace.AlwaysSample().Description() {
		t.Errorf("ratio 1 should always sample, got %s", got)
	}
	if got := sampler(0.5).Description(); got == sdktrace.AlwaysSample().Description() {
		t.Errorf("ratio 0.5 should not always sample, got %s", got)
	}
}
