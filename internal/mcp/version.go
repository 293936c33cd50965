package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/devansh-m12/doraemon-sub001/internal/common"
)

// versionInfo holds the build fields reported by get_version.
type versionInfo struct {
	Version  string   `json:"version"`
	Build    string   `json:"build"`
	Commit   string   `json:"commit"`
	Services []string `json:"services"`
}

// VersionTool returns the mcp.Tool definition for get_version.
func VersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the 1inch MCP server version and registered services. Use this to verify connectivity."),
	)
}

// VersionToolHandler reports the build and the registered service keys.
func VersionToolHandler(serviceNames func() []string) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		info := versionInfo{
			Version:  common.GetVersion(),
			Build:    common.GetBuild(),
			Commit:   common.GetGitCommit(),
			Services: serviceNames(),
		}
		out, err := json.Marshal(info)
		if err != nil {
			return errorResult("failed to marshal version info"), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent(string(out))},
		}, nil
	}
}
