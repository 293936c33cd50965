package app

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/devansh-m12/doraemon-sub001/internal/common"
	"github.com/devansh-m12/doraemon-sub001/internal/config"
	"github.com/devansh-m12/doraemon-sub001/internal/llm"
)

var domainKeys = []string{"swap", "token", "tokenDetails", "balance", "orderbook", "portfolio", "domain", "charts", "web3rpc"}

func newTestApp(t *testing.T, mutate func(*config.Config)) *App {
	t.Helper()

	cfg := config.NewDefaultConfig()
	cfg.OneInch.APIKey = "test-key"
	cfg.OneInch.BaseURL = "http://127.0.0.1:1"
	if mutate != nil {
		mutate(cfg)
	}

	application, err := New(context.Background(), cfg, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("failed to create test app: %v", err)
	}
	t.Cleanup(func() {
		application.Close(context.Background())
	})
	return application
}

func TestNew_WithoutOpenRouter(t *testing.T) {
	a := newTestApp(t, nil)

	if a.LLM != nil {
		t.Error("expected LLM service to be disabled without an API key")
	}
	if diff := cmp.Diff(domainKeys, a.Orchestrator.GetServiceNames()); diff != "" {
		t.Errorf("service names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(domainKeys, a.Domains.GetServiceNames()); diff != "" {
		t.Errorf("domain names mismatch (-want +got):\n%s", diff)
	}
	if a.MCPHandler == nil || a.CatalogHandler == nil || a.HealthHandler == nil || a.VersionHandler == nil {
		t.Error("expected all handlers to be initialized")
	}
}

func TestNew_WithOpenRouter(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) {
		c.OpenRouter.APIKey = "or-key"
	})

	if a.LLM == nil {
		t.Fatal("expected LLM service")
	}
	want := append(append([]string{}, domainKeys...), llm.ServiceKey)
	if diff := cmp.Diff(want, a.Orchestrator.GetServiceNames()); diff != "" {
		t.Errorf("service names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(domainKeys, a.Domains.GetServiceNames()); diff != "" {
		t.Errorf("domain orchestrator must not include the LLM (-want +got):\n%s", diff)
	}

	found := false
	for _, tool := range a.Orchestrator.GetAllTools() {
		if tool.Name == "llm_chat" {
			found = true
		}
	}
	if !found {
		t.Error("expected llm_chat in the full tool manifest")
	}
	for _, tool := range a.Domains.GetAllTools() {
		if tool.Name == "llm_chat" {
			t.Error("llm_chat must not be reachable from the domain orchestrator")
		}
	}
	if a.LLM.Model() != "openai/gpt-4o-mini" {
		t.Errorf("expected default model, got %s", a.LLM.Model())
	}
}

func TestNew_StrictNames(t *testing.T) {
	// The 1inch manifests are disjoint, so strict mode must accept them.
	a := newTestApp(t, func(c *config.Config) {
		c.Orchestrator.StrictNames = true
	})
	if len(a.Orchestrator.Collisions()) != 0 {
		t.Errorf("unexpected collisions %v", a.Orchestrator.Collisions())
	}
}

func TestNew_MetricsRegistered(t *testing.T) {
	a := newTestApp(t, nil)
	if a.Metrics == nil {
		t.Fatal("expected metrics when enabled")
	}

	_, _ = a.Orchestrator.HandleToolCall(context.Background(), "no_such_tool", nil)
	if n, err := testutil.GatherAndCount(a.Registry, "oneinch_mcp_route_unknown_total"); err != nil || n != 1 {
		t.Errorf("expected unknown route counter, got %d (%v)", n, err)
	}
}

func TestNew_MetricsDisabled(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) {
		c.Telemetry.MetricsEnabled = false
	})
	if a.Metrics != nil {
		t.Error("expected no metrics when disabled")
	}
}
