package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/devansh-m12/doraemon-sub001/internal/service"
)

// Router is the registry the transports serve. *orchestrator.Orchestrator
// satisfies it.
type Router interface {
	GetAllTools() []service.ToolDefinition
	GetAllResources() []service.ResourceDefinition
	GetAllPrompts() []service.PromptDefinition
	HandleToolCall(ctx context.Context, name string, args service.Args) (any, error)
	HandleResourceRead(ctx context.Context, uri string) (any, error)
	HandlePromptRequest(ctx context.Context, name string, args service.Args) (any, error)
}

// BuildMCPTool converts a ToolDefinition into an mcp.Tool carrying its JSON schema.
func BuildMCPTool(def service.ToolDefinition) (mcp.Tool, error) {
	schema, err := json.Marshal(def.InputSchema)
	if err != nil {
		return mcp.Tool{}, fmt.Errorf("tool %q: failed to marshal input schema: %w", def.Name, err)
	}
	return mcp.NewToolWithRawSchema(def.Name, def.Description, schema), nil
}

// BuildMCPResource converts a ResourceDefinition into an mcp.Resource.
func BuildMCPResource(def service.ResourceDefinition) mcp.Resource {
	return mcp.NewResource(def.URI, def.Name,
		mcp.WithResourceDescription(def.Description),
		mcp.WithMIMEType(def.MimeType),
	)
}

// BuildMCPPrompt converts a PromptDefinition into an mcp.Prompt.
func BuildMCPPrompt(def service.PromptDefinition) mcp.Prompt {
	opts := []mcp.PromptOption{mcp.WithPromptDescription(def.Description)}
	for _, a := range def.Arguments {
		argOpts := []mcp.ArgumentOption{mcp.ArgumentDescription(a.Description)}
		if a.Required {
			argOpts = append(argOpts, mcp.RequiredArgument())
		}
		opts = append(opts, mcp.WithArgument(a.Name, argOpts...))
	}
	return mcp.NewPrompt(def.Name, opts...)
}

// ToolHandler routes an MCP tool call through r. Failures become an error
// result rather than a protocol error.
func ToolHandler(r Router) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := r.HandleToolCall(ctx, req.Params.Name, service.Args(req.GetArguments()))
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		return jsonResult(result), nil
	}
}

// ResourceHandler routes an MCP resource read through r.
func ResourceHandler(r Router) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		result, err := r.HandleResourceRead(ctx, req.Params.URI)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{ToResourceContents(req.Params.URI, result)}, nil
	}
}

// PromptHandler routes an MCP prompt request through r.
func PromptHandler(r Router) server.PromptHandlerFunc {
	return func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		args := make(service.Args, len(req.Params.Arguments))
		for k, v := range req.Params.Arguments {
			args[k] = v
		}
		result, err := r.HandlePromptRequest(ctx, req.Params.Name, args)
		if err != nil {
			return nil, err
		}
		return ToPromptResult(result), nil
	}
}

// ToResourceContents converts a resource read result into MCP contents.
// Anything other than service.ResourceContent is served as JSON.
func ToResourceContents(uri string, result any) mcp.TextResourceContents {
	switch c := result.(type) {
	case service.ResourceContent:
		return mcp.TextResourceContents{URI: c.URI, MIMEType: c.MimeType, Text: c.Text}
	case *service.ResourceContent:
		return mcp.TextResourceContents{URI: c.URI, MIMEType: c.MimeType, Text: c.Text}
	default:
		return mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: marshalText(result)}
	}
}

// ToPromptResult converts a prompt request result into an MCP prompt result.
func ToPromptResult(result any) *mcp.GetPromptResult {
	p, ok := result.(*service.PromptResult)
	if !ok {
		return mcp.NewGetPromptResult("", []mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(marshalText(result))),
		})
	}
	messages := make([]mcp.PromptMessage, 0, len(p.Messages))
	for _, m := range p.Messages {
		role := mcp.RoleUser
		if m.Role == string(mcp.RoleAssistant) {
			role = mcp.RoleAssistant
		}
		messages = append(messages, mcp.NewPromptMessage(role, mcp.NewTextContent(m.Content.Text)))
	}
	return mcp.NewGetPromptResult(p.Description, messages)
}

func marshalText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(out)
}
