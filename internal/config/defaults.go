package config

import "github.com/devansh-m12/doraemon-sub001/internal/common"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "oneinch-mcp",
			Host: "localhost",
			Port: 3000,
		},
		OneInch: OneInchConfig{
			BaseURL: "https://api.1inch.dev",
			Timeout: "30s",
		},
		OpenRouter: OpenRouterConfig{
			BaseURL:       "https://openrouter.ai/api/v1",
			Model:         "openai/gpt-4o-mini",
			Timeout:       "60s",
			MaxToolRounds: 5,
		},
		Chat: ChatConfig{
			Host:             "localhost",
			Port:             3001,
			ConversationTTL:  "1h",
			MaxConversations: 1000,
			AllowedOrigins:   []string{"*"},
		},
		Orchestrator: OrchestratorConfig{
			CheckTimeout: "5s",
		},
		Telemetry: TelemetryConfig{
			MetricsEnabled: true,
			SampleRatio:    1,
		},
		Logging: common.LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console", "file"},
			FilePath:   "logs/oneinch-mcp.log",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
	}
}
