// Package app wires configuration into the services, orchestrators and
// handlers shared by every transport.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/devansh-m12/doraemon-sub001/internal/common"
	"github.com/devansh-m12/doraemon-sub001/internal/config"
	"github.com/devansh-m12/doraemon-sub001/internal/handlers"
	"github.com/devansh-m12/doraemon-sub001/internal/llm"
	"github.com/devansh-m12/doraemon-sub001/internal/mcp"
	"github.com/devansh-m12/doraemon-sub001/internal/oneinch"
	"github.com/devansh-m12/doraemon-sub001/internal/orchestrator"
	"github.com/devansh-m12/doraemon-sub001/internal/service"
	"github.com/devansh-m12/doraemon-sub001/internal/telemetry"
)

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Services *oneinch.Services
	// Domains routes the nine 1inch services only; the LLM calls tools
	// through it so it can never invoke itself.
	Domains *orchestrator.Orchestrator
	// LLM is nil when no OpenRouter API key is configured.
	LLM *llm.Service
	// Orchestrator routes every registered service, LLM included.
	Orchestrator *orchestrator.Orchestrator

	Registry *prometheus.Registry
	Metrics  *orchestrator.Metrics

	// HTTP handlers
	MCPHandler     *mcp.Handler
	CatalogHandler *handlers.CatalogHandler
	HealthHandler  *handlers.HealthHandler
	VersionHandler *handlers.VersionHandler

	shutdownTelemetry func(context.Context) error
}

// New initializes the application with all dependencies.
func New(ctx context.Context, cfg *config.Config, logger *common.Logger) (*App, error) {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	a := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}

	shutdown, err := telemetry.Setup(ctx, telemetry.Options{
		ServiceName:    cfg.Server.Name,
		ServiceVersion: common.GetVersion(),
		Endpoint:       cfg.Telemetry.OTelEndpoint,
		Insecure:       cfg.Telemetry.OTelInsecure,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}
	a.shutdownTelemetry = shutdown

	if cfg.Telemetry.MetricsEnabled {
		a.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		a.Metrics = orchestrator.NewMetrics(a.Registry)
	}

	if err := a.initServices(ctx); err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.initHandlers()

	logger.Info().
		Int("services", len(a.Orchestrator.GetServiceNames())).
		Int("tools", len(a.Orchestrator.GetAllTools())).
		Msg("Application initialization complete")

	return a, nil
}

func (a *App) orchestratorOptions() []orchestrator.Option {
	opts := []orchestrator.Option{
		orchestrator.WithLogger(a.Logger),
		orchestrator.WithCheckTimeout(a.Config.Orchestrator.GetCheckTimeout()),
	}
	if a.Metrics != nil {
		opts = append(opts, orchestrator.WithMetrics(a.Metrics))
	}
	if a.Config.Orchestrator.StrictNames {
		opts = append(opts, orchestrator.WithStrictNames())
	}
	return opts
}

// initServices builds the domain services, the domain orchestrator, the
// optional LLM service and the full orchestrator, in that order.
func (a *App) initServices(ctx context.Context) error {
	cfg := a.Config

	a.Services = oneinch.NewServices(oneinch.ClientConfig{
		BaseURL: cfg.OneInch.BaseURL,
		APIKey:  cfg.OneInch.APIKey,
		Timeout: cfg.OneInch.GetTimeout(),
	}, a.Logger)

	registrations := a.Services.Registrations()
	domains, err := orchestrator.New(registrations, a.orchestratorOptions()...)
	if err != nil {
		return fmt.Errorf("failed to build domain orchestrator: %w", err)
	}
	a.Domains = domains

	if cfg.OpenRouter.Enabled() {
		svc, err := llm.New(ctx, llm.Config{
			BaseURL:          cfg.OpenRouter.BaseURL,
			APIKey:           cfg.OpenRouter.APIKey,
			Model:            cfg.OpenRouter.Model,
			Timeout:          cfg.OpenRouter.GetTimeout(),
			MaxToolRounds:    cfg.OpenRouter.MaxToolRounds,
			SystemPrompt:     cfg.OpenRouter.SystemPrompt,
			ConversationTTL:  cfg.Chat.GetConversationTTL(),
			MaxConversations: cfg.Chat.MaxConversations,
		}, domains, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to create LLM service: %w", err)
		}
		a.LLM = svc
		registrations = append(registrations, service.Registration{Key: llm.ServiceKey, Service: svc})
	} else {
		a.Logger.Info().Msg("OpenRouter API key not set, LLM service disabled")
	}

	full, err := orchestrator.New(registrations, a.orchestratorOptions()...)
	if err != nil {
		return fmt.Errorf("failed to build orchestrator: %w", err)
	}
	a.Orchestrator = full
	return nil
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	a.MCPHandler = mcp.NewHandler(a.Orchestrator, a.Orchestrator, a.Logger)
	a.CatalogHandler = handlers.NewCatalogHandler(a.Orchestrator, a.Logger)
	a.HealthHandler = handlers.NewHealthHandler(a.Orchestrator, a.Logger)
	a.VersionHandler = handlers.NewVersionHandler(a.Orchestrator.GetServiceNames)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// Close flushes pending spans.
func (a *App) Close(ctx context.Context) error {
	if a.shutdownTelemetry == nil {
		return nil
	}
	return a.shutdownTelemetry(ctx)
}
