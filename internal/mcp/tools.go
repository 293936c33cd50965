package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/devansh-m12/doraemon-sub001/internal/common"
)

// Counts is the number of each manifest kind registered on a server.
type Counts struct {
	Tools     int
	Resources int
	Prompts   int
}

// RegisterFromRouter registers every tool, resource and prompt of r on s.
// Tools whose schema cannot be encoded are skipped with a warning.
func RegisterFromRouter(s *server.MCPServer, r Router, logger *common.Logger) Counts {
	var c Counts
	toolHandler := ToolHandler(r)
	for _, def := range r.GetAllTools() {
		tool, err := BuildMCPTool(def)
		if err != nil {
			logger.Warn().Str("error", err.Error()).Msg("skipping tool")
			continue
		}
		s.AddTool(tool, toolHandler)
		c.Tools++
	}

	resourceHandler := ResourceHandler(r)
	for _, def := range r.GetAllResources() {
		s.AddResource(BuildMCPResource(def), resourceHandler)
		c.Resources++
	}

	promptHandler := PromptHandler(r)
	for _, def := range r.GetAllPrompts() {
		s.AddPrompt(BuildMCPPrompt(def), promptHandler)
		c.Prompts++
	}
	return c
}
