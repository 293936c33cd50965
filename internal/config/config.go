package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/devansh-m12/doraemon-sub001/internal/common"
)

// FileName is the config file name searched for by Discover.
const FileName = "oneinch-mcp.toml"

// Config represents the application configuration.
type Config struct {
	Server       ServerConfig         `toml:"server"`
	OneInch      OneInchConfig        `toml:"oneinch"`
	OpenRouter   OpenRouterConfig     `toml:"openrouter"`
	Chat         ChatConfig           `toml:"chat"`
	Orchestrator OrchestratorConfig   `toml:"orchestrator"`
	Telemetry    TelemetryConfig      `toml:"telemetry"`
	Logging      common.LoggingConfig `toml:"logging"`
}

// ServerConfig contains MCP HTTP transport settings.
type ServerConfig struct {
	Name string `toml:"name"`
	Host string `toml:"host" env:"MCP_HOST"`
	Port int    `toml:"port" env:"MCP_PORT"`
}

// OneInchConfig contains 1inch API client settings.
type OneInchConfig struct {
	BaseURL string `toml:"base_url" env:"ONEINCH_BASE_URL"`
	APIKey  string `toml:"api_key" env:"ONEINCH_API_KEY"`
	Timeout string `toml:"timeout" env:"ONEINCH_TIMEOUT"`
}

// GetTimeout parses and returns the timeout duration
func (c *OneInchConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 30*time.Second)
}

// OpenRouterConfig contains LLM proxy settings. The service is registered
// only when APIKey is set.
type OpenRouterConfig struct {
	BaseURL       string `toml:"base_url" env:"OPENROUTER_BASE_URL"`
	APIKey        string `toml:"api_key" env:"OPENROUTER_API_KEY"`
	Model         string `toml:"model" env:"OPENROUTER_MODEL"`
	Timeout       string `toml:"timeout" env:"OPENROUTER_TIMEOUT"`
	MaxToolRounds int    `toml:"max_tool_rounds" env:"OPENROUTER_MAX_TOOL_ROUNDS"`
	SystemPrompt  string `toml:"system_prompt"`
}

// GetTimeout parses and returns the timeout duration
func (c *OpenRouterConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 60*time.Second)
}

// Enabled reports whether an API key is configured.
func (c *OpenRouterConfig) Enabled() bool {
	return c.APIKey != ""
}

// ChatConfig contains chat server settings.
type ChatConfig struct {
	Host             string   `toml:"host" env:"CHAT_HOST"`
	Port             int      `toml:"port" env:"CHAT_PORT"`
	ConversationTTL  string   `toml:"conversation_ttl" env:"CHAT_CONVERSATION_TTL"`
	MaxConversations int      `toml:"max_conversations" env:"CHAT_MAX_CONVERSATIONS"`
	AllowedOrigins   []string `toml:"allowed_origins" env:"CHAT_ALLOWED_ORIGINS" envSeparator:","`
}

// GetConversationTTL parses and returns the conversation lifetime.
func (c *ChatConfig) GetConversationTTL() time.Duration {
	return parseDuration(c.ConversationTTL, time.Hour)
}

// OrchestratorConfig contains routing settings.
type OrchestratorConfig struct {
	StrictNames  bool   `toml:"strict_names" env:"ORCHESTRATOR_STRICT_NAMES"`
	CheckTimeout string `toml:"check_timeout"`
}

// GetCheckTimeout parses and returns the per-service health check timeout.
func (c *OrchestratorConfig) GetCheckTimeout() time.Duration {
	return parseDuration(c.CheckTimeout, 5*time.Second)
}

// TelemetryConfig contains metrics and tracing settings. Tracing is off
// unless OTelEndpoint is set.
type TelemetryConfig struct {
	MetricsEnabled bool    `toml:"metrics_enabled" env:"METRICS_ENABLED"`
	OTelEndpoint   string  `toml:"otel_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelInsecure   bool    `toml:"otel_insecure" env:"OTEL_EXPORTER_OTLP_INSECURE"`
	SampleRatio    float64 `toml:"sample_ratio" env:"OTEL_TRACES_SAMPLER_ARG"`
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides overlays environment variables onto config. Unset
// variables leave the file or default value in place.
func applyEnvOverrides(config *Config) error {
	if err := env.Parse(config); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// ApplyChatFlagOverrides applies chat server flag overrides to config.
func ApplyChatFlagOverrides(config *Config, port int) {
	if port > 0 {
		config.Chat.Port = port
	}
}

// Validate reports mandatory fields that are missing or invalid.
func (c *Config) Validate() []string {
	var issues []string
	if c.OneInch.APIKey == "" {
		issues = append(issues, "oneinch.api_key is required (or set ONEINCH_API_KEY)")
	}
	if c.OneInch.BaseURL == "" {
		issues = append(issues, "oneinch.base_url must not be empty")
	}
	if !validPort(c.Server.Port) {
		issues = append(issues, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	if !validPort(c.Chat.Port) {
		issues = append(issues, fmt.Sprintf("chat.port %d is out of range", c.Chat.Port))
	}
	for name, value := range map[string]string{
		"oneinch.timeout":            c.OneInch.Timeout,
		"openrouter.timeout":         c.OpenRouter.Timeout,
		"chat.conversation_ttl":      c.Chat.ConversationTTL,
		"orchestrator.check_timeout": c.Orchestrator.CheckTimeout,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			issues = append(issues, fmt.Sprintf("%s %q is not a valid duration", name, value))
		}
	}
	if r := c.Telemetry.SampleRatio; r < 0 || r > 1 {
		issues = append(issues, fmt.Sprintf("telemetry.sample_ratio %v must be between 0 and 1", r))
	}
	return issues
}

func validPort(p int) bool {
	return p > 0 && p < 65536
}

// SearchPaths returns TOML files to auto-discover (first match wins).
// Binary-relative paths are tried first, with CWD fallbacks after.
// Paths are deduplicated via filepath.Abs.
func SearchPaths() []string {
	candidates := []string{
		FileName,
		filepath.Join("config", FileName),
	}

	exe, err := os.Executable()
	if err != nil {
		return candidates
	}
	binDir := filepath.Dir(exe)

	paths := []string{
		filepath.Join(binDir, FileName),
		filepath.Join(binDir, "config", FileName),
	}
	paths = append(paths, candidates...)

	seen := make(map[string]bool, len(paths))
	deduped := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		deduped = append(deduped, p)
	}
	return deduped
}

// Discover returns the first existing file from SearchPaths, or nil.
func Discover() []string {
	for _, path := range SearchPaths() {
		if _, err := os.Stat(path); err == nil {
			return []string{path}
		}
	}
	return nil
}
