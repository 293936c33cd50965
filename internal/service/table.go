package service

import "context"

// ToolHandler executes one tool.
type ToolHandler func(ctx context.Context, args Args) (any, error)

// ResourceHandler reads one resource.
type ResourceHandler func(ctx context.Context) (any, error)

// PromptHandler renders one prompt.
type PromptHandler func(ctx context.Context, args Args) (any, error)

// Table is a construction-time dispatch table from names to handlers. Domain
// services embed it to satisfy the manifest and dispatch half of Service.
// A Table must not be modified after the owning service is returned.
type Table struct {
	tools     []ToolDefinition
	resources []ResourceDefinition
	prompts   []PromptDefinition

	toolHandlers     map[string]ToolHandler
	resourceHandlers map[string]ResourceHandler
	promptHandlers   map[string]PromptHandler
}

// NewTable creates an empty dispatch table.
func NewTable() *Table {
	return &Table{
		toolHandlers:     make(map[string]ToolHandler),
		resourceHandlers: make(map[string]ResourceHandler),
		promptHandlers:   make(map[string]PromptHandler),
	}
}

// AddTool registers a tool. A repeated name replaces the handler but keeps
// the first manifest position.
func (t *Table) AddTool(def ToolDefinition, h ToolHandler) {
	if _, exists := t.toolHandlers[def.Name]; !exists {
		t.tools = append(t.tools, def)
	}
	t.toolHandlers[def.Name] = h
}

// AddResource registers a resource.
func (t *Table) AddResource(def ResourceDefinition, h ResourceHandler) {
	if _, exists := t.resourceHandlers[def.URI]; !exists {
		t.resources = append(t.resources, def)
	}
	t.resourceHandlers[def.URI] = h
}

// AddStaticResource registers a resource whose body is a fixed string.
func (t *Table) AddStaticResource(def ResourceDefinition, text string) {
	content := ResourceContent{URI: def.URI, MimeType: def.MimeType, Text: text}
	t.AddResource(def, func(context.Context) (any, error) {
		return content, nil
	})
}

// AddPrompt registers a prompt.
func (t *Table) AddPrompt(def PromptDefinition, h PromptHandler) {
	if _, exists := t.promptHandlers[def.Name]; !exists {
		t.prompts = append(t.prompts, def)
	}
	t.promptHandlers[def.Name] = h
}

// Tools returns the tool manifest in registration order.
func (t *Table) Tools() []ToolDefinition { return t.tools }

// Resources returns the resource manifest in registration order.
func (t *Table) Resources() []ResourceDefinition { return t.resources }

// Prompts returns the prompt manifest in registration order.
func (t *Table) Prompts() []PromptDefinition { return t.prompts }

// HandleToolCall dispatches to the named tool.
func (t *Table) HandleToolCall(ctx context.Context, name string, args Args) (any, error) {
	h, ok := t.toolHandlers[name]
	if !ok {
		return nil, UnknownTool(name)
	}
	if args == nil {
		args = Args{}
	}
	return h(ctx, args)
}

// HandleResourceRead dispatches to the resource with the given URI.
func (t *Table) HandleResourceRead(ctx context.Context, uri string) (any, error) {
	h, ok := t.resourceHandlers[uri]
	if !ok {
		return nil, UnknownResource(uri)
	}
	return h(ctx)
}

// HandlePromptRequest dispatches to the named prompt.
func (t *Table) HandlePromptRequest(ctx context.Context, name string, args Args) (any, error) {
	h, ok := t.promptHandlers[name]
	if !ok {
		return nil, UnknownPrompt(name)
	}
	if args == nil {
		args = Args{}
	}
	return h(ctx, args)
}
