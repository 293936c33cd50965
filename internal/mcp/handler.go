package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/devansh-m12/doraemon-sub001/internal/common"
	"github.com/devansh-m12/doraemon-sub001/internal/service"
)

// maxRequestSize caps a JSON-RPC request body.
const maxRequestSize = 1 << 20

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return e.Message
}

// Handler serves MCP JSON-RPC 2.0 over plain HTTP POST.
type Handler struct {
	router   Router
	services ServiceLister
	logger   *common.Logger
}

// NewHandler creates the /mcp handler over r.
func NewHandler(r Router, services ServiceLister, logger *common.Logger) *Handler {
	return &Handler{router: r, services: services, logger: logger}
}

// ServeHTTP decodes one JSON-RPC request and writes its response. Protocol
// errors are reported in the JSON-RPC envelope with status 200.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize))
	if err != nil {
		h.write(w, rpcResponse{ID: nullID, Error: &rpcError{Code: mcp.PARSE_ERROR, Message: "failed to read request body"}})
		return
	}

	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.write(w, rpcResponse{ID: nullID, Error: &rpcError{Code: mcp.PARSE_ERROR, Message: "Parse error"}})
		return
	}
	if req.ID == nil {
		req.ID = nullID
	}
	if req.JSONRPC != mcp.JSONRPC_VERSION {
		h.write(w, rpcResponse{ID: req.ID, Error: &rpcError{Code: mcp.INVALID_REQUEST, Message: "Invalid Request: jsonrpc must be \"2.0\""}})
		return
	}

	// Notifications carry no id and get no response body.
	if strings.HasPrefix(req.Method, "notifications/") {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	result, err := h.dispatch(r.Context(), req)
	if err != nil {
		var rpcErr *rpcError
		if !errors.As(err, &rpcErr) {
			rpcErr = toRPCError(err)
		}
		h.logger.Warn().Str("method", req.Method).Int("code", rpcErr.Code).Str("error", rpcErr.Message).Msg("JSON-RPC request failed")
		h.write(w, rpcResponse{ID: req.ID, Error: rpcErr})
		return
	}
	h.write(w, rpcResponse{ID: req.ID, Result: result})
}

var nullID = json.RawMessage("null")

func (h *Handler) write(w http.ResponseWriter, resp rpcResponse) {
	resp.JSONRPC = mcp.JSONRPC_VERSION
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// toRPCError maps a routed call failure to a JSON-RPC error. Service errors,
// including argument validation, pass through as internal errors carrying
// the original message; -32602 is reserved for malformed params.
func toRPCError(err error) *rpcError {
	return &rpcError{Code: mcp.INTERNAL_ERROR, Message: err.Error()}
}

func (h *Handler) dispatch(ctx context.Context, req rpcRequest) (any, error) {
	switch req.Method {
	case "initialize":
		return map[string]any{
			"protocolVersion": mcp.LATEST_PROTOCOL_VERSION,
			"capabilities": map[string]any{
				"tools":     map[string]any{"listChanged": false},
				"resources": map[string]any{"subscribe": false, "listChanged": false},
				"prompts":   map[string]any{"listChanged": false},
			},
			"serverInfo":   map[string]string{"name": ServerName, "version": common.GetVersion()},
			"instructions": "Registered services: " + strings.Join(h.services.GetServiceNames(), ", "),
		}, nil
	case "ping":
		return map[string]any{}, nil
	case "tools/list":
		return map[string]any{"tools": nonNil(h.router.GetAllTools())}, nil
	case "tools/call":
		var p struct {
			Name      string         `json:"name"`
			Arguments map[string]any `json:"arguments"`
		}
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, err
		}
		if p.Name == "" {
			return nil, &rpcError{Code: mcp.INVALID_PARAMS, Message: "Missing required parameters: name"}
		}
		result, err := h.router.HandleToolCall(ctx, p.Name, service.Args(p.Arguments))
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"content": []map[string]string{{"type": "text", "text": marshalText(result)}},
		}, nil
	case "resources/list":
		return map[string]any{"resources": nonNil(h.router.GetAllResources())}, nil
	case "resources/read":
		var p struct {
			URI string `json:"uri"`
		}
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, err
		}
		if p.URI == "" {
			return nil, &rpcError{Code: mcp.INVALID_PARAMS, Message: "Missing required parameters: uri"}
		}
		result, err := h.router.HandleResourceRead(ctx, p.URI)
		if err != nil {
			return nil, err
		}
		return map[string]any{"contents": []mcp.TextResourceContents{ToResourceContents(p.URI, result)}}, nil
	case "prompts/list":
		return map[string]any{"prompts": nonNil(h.router.GetAllPrompts())}, nil
	case "prompts/get":
		var p struct {
			Name      string         `json:"name"`
			Arguments map[string]any `json:"arguments"`
		}
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, err
		}
		if p.Name == "" {
			return nil, &rpcError{Code: mcp.INVALID_PARAMS, Message: "Missing required parameters: name"}
		}
		return h.router.HandlePromptRequest(ctx, p.Name, service.Args(p.Arguments))
	default:
		return nil, &rpcError{Code: mcp.METHOD_NOT_FOUND, Message: "Method not found: " + req.Method}
	}
}

func decodeParams(raw json.RawMessage, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	// UseNumber keeps integer arguments such as wei amounts exact.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return &rpcError{Code: mcp.INVALID_PARAMS, Message: "Invalid params: " + err.Error()}
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
