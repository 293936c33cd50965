// Package service defines the contract every backend wrapper satisfies: static
// tool, resource and prompt manifests plus name-keyed dispatch into the
// wrapper's own handlers.
package service

import "context"

// Service is one backend domain exposed through MCP.
//
// Manifests are built once at construction; callers must treat the returned
// slices as read-only.
type Service interface {
	Tools() []ToolDefinition
	Resources() []ResourceDefinition
	Prompts() []PromptDefinition

	HandleToolCall(ctx context.Context, name string, args Args) (any, error)
	HandleResourceRead(ctx context.Context, uri string) (any, error)
	HandlePromptRequest(ctx context.Context, name string, args Args) (any, error)

	// Ping issues a trivial request against the backing API.
	Ping(ctx context.Context) error
}

// ToolDefinition describes one callable tool.
type ToolDefinition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// InputSchema is the JSON-schema object describing a tool's arguments.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes one argument.
type Property struct {
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Enum        []string  `json:"enum,omitempty"`
	Items       *Property `json:"items,omitempty"`
	Default     any       `json:"default,omitempty"`
}

// ResourceDefinition describes one readable document.
type ResourceDefinition struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
}

// PromptDefinition describes one parameterised prompt.
type PromptDefinition struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Arguments   []PromptArgument `json:"arguments"`
}

// PromptArgument is a named prompt input.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// ResourceContent is the payload returned by a resource read.
type ResourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// PromptResult is the payload returned by a prompt request.
type PromptResult struct {
	Description string          `json:"description"`
	Messages    []PromptMessage `json:"messages"`
}

// PromptMessage is one rendered prompt message.
type PromptMessage struct {
	Role    string        `json:"role"`
	Content PromptContent `json:"content"`
}

// PromptContent is the text body of a prompt message.
type PromptContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// UserPrompt builds a single-message PromptResult.
func UserPrompt(description, text string) *PromptResult {
	return &PromptResult{
		Description: description,
		Messages: []PromptMessage{{
			Role:    "user",
			Content: PromptContent{Type: "text", Text: text},
		}},
	}
}

// Registration pairs a service with the key it is registered under.
type Registration struct {
	Key     string
	Service Service
}
