package oneinch

import (
	"context"
	"fmt"
	"strings"

	"github.com/devansh-m12/doraemon-sub001/internal/service"
)

// base holds what every domain service shares: the dispatch table and the
// REST client.
type base struct {
	*service.Table
	client *Client
}

func newBase(client *Client) base {
	return base{Table: service.NewTable(), client: client}
}

// tool registers a tool whose handler validates required arguments first.
func (b base) tool(name, desc string, schema service.InputSchema, h service.ToolHandler) {
	required := schema.Required
	b.AddTool(service.ToolDefinition{Name: name, Description: desc, InputSchema: schema},
		func(ctx context.Context, args service.Args) (any, error) {
			if err := service.ValidateRequired(args, required...); err != nil {
				return nil, err
			}
			return h(ctx, args)
		})
}

// prompt registers a prompt whose handler validates required arguments first.
func (b base) prompt(def service.PromptDefinition, h service.PromptHandler) {
	var required []string
	for _, a := range def.Arguments {
		if a.Required {
			required = append(required, a.Name)
		}
	}
	b.AddPrompt(def, func(ctx context.Context, args service.Args) (any, error) {
		if err := service.ValidateRequired(args, required...); err != nil {
			return nil, err
		}
		return h(ctx, args)
	})
}

func docResource(uri, name, desc string) service.ResourceDefinition {
	return service.ResourceDefinition{URI: uri, Name: name, Description: desc, MimeType: "text/markdown"}
}

func jsonResource(uri, name, desc string) service.ResourceDefinition {
	return service.ResourceDefinition{URI: uri, Name: name, Description: desc, MimeType: "application/json"}
}

func arg(name, desc string, required bool) service.PromptArgument {
	return service.PromptArgument{Name: name, Description: desc, Required: required}
}

// report accumulates lines of a human-readable prompt body.
type report struct {
	sb strings.Builder
}

func (r *report) line(format string, a ...any) {
	fmt.Fprintf(&r.sb, format, a...)
	r.sb.WriteByte('\n')
}

func (r *report) String() string {
	return r.sb.String()
}

// chainName is used in rendered reports.
func chainName(chainID int) string {
	switch chainID {
	case 1:
		return "Ethereum"
	case 10:
		return "Optimism"
	case 56:
		return "BNB Chain"
	case 100:
		return "Gnosis"
	case 137:
		return "Polygon"
	case 324:
		return "zkSync Era"
	case 8453:
		return "Base"
	case 42161:
		return "Arbitrum"
	case 43114:
		return "Avalanche"
	default:
		return fmt.Sprintf("chain %d", chainID)
	}
}
