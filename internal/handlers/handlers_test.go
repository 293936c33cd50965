package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/devansh-m12/doraemon-sub001/internal/orchestrator"
	"github.com/devansh-m12/doraemon-sub001/internal/service"
)

type stubService struct {
	*service.Table
	pingErr error
}

func (s stubService) Ping(context.Context) error { return s.pingErr }

func newStub(pingErr error) stubService {
	svc := stubService{Table: service.NewTable(), pingErr: pingErr}
	svc.AddTool(service.ToolDefinition{
		Name:        "echo",
		InputSchema: service.Object(map[string]service.Property{"text": service.StringProp("Text")}, "text"),
	}, func(_ context.Context, args service.Args) (any, error) {
		if err := service.ValidateRequired(args, "text"); err != nil {
			return nil, err
		}
		return map[string]any{"echo": args["text"]}, nil
	})
	svc.AddTool(service.ToolDefinition{Name: "explode"}, func(context.Context, service.Args) (any, error) {
		return nil, errors.New("API request failed with status 502")
	})
	svc.AddStaticResource(service.ResourceDefinition{URI: "test://docs", Name: "Docs", MimeType: "text/plain"}, "docs")
	svc.AddPrompt(service.PromptDefinition{Name: "greet"}, func(_ context.Context, args service.Args) (any, error) {
		return service.UserPrompt("Greeting", "Hello "+args.String("who", "there")), nil
	})
	return svc
}

func newTestOrchestrator(t *testing.T, pingErr error) *orchestrator.Orchestrator {
	t.Helper()
	o, err := orchestrator.New([]service.Registration{{Key: "test", Service: newStub(pingErr)}})
	if err != nil {
		t.Fatalf("orchestrator.New: %v", err)
	}
	return o
}

// newMux registers the catalog routes the way the server does.
func newMux(t *testing.T) *http.ServeMux {
	t.Helper()
	h := NewCatalogHandler(newTestOrchestrator(t, nil), nil)
	mux := http.NewServeMux()
	mux.HandleFunc("/tools", h.HandleListTools)
	mux.HandleFunc("/tools/{name}", h.HandleCallTool)
	mux.HandleFunc("/resources", h.HandleListResources)
	mux.HandleFunc("/resources/read", h.HandleReadResource)
	mux.HandleFunc("/prompts", h.HandleListPrompts)
	mux.HandleFunc("/prompts/{name}", h.HandleGetPrompt)
	return mux
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return w, out
}

// --- Catalog ---

func TestCatalog_ListEndpoints(t *testing.T) {
	mux := newMux(t)

	tests := []struct {
		path  string
		key   string
		count float64
	}{
		{"/tools", "tools", 2},
		{"/resources", "resources", 1},
		{"/prompts", "prompts", 1},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w, body := do(t, mux, "GET", tt.path, "")
			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}
			if body["count"] != tt.count {
				t.Errorf("expected count %v, got %v", tt.count, body["count"])
			}
			if items, ok := body[tt.key].([]any); !ok || float64(len(items)) != tt.count {
				t.Errorf("expected %s list of %v, got %v", tt.key, tt.count, body[tt.key])
			}
		})
	}
}

func TestCatalog_CallTool(t *testing.T) {
	mux := newMux(t)

	w, body := do(t, mux, "POST", "/tools/echo", `{"text":"hi"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if body["success"] != true {
		t.Errorf("expected success true, got %v", body["success"])
	}
	data, _ := body["data"].(map[string]any)
	if data["echo"] != "hi" {
		t.Errorf("expected echo hi, got %v", data)
	}
}

func TestCatalog_ErrorMapping(t *testing.T) {
	mux := newMux(t)

	tests := []struct {
		name     string
		method   string
		target   string
		body     string
		wantCode int
		wantErr  string
	}{
		{"unknown tool", "POST", "/tools/nope", "", http.StatusNotFound, "Unknown tool: nope"},
		{"missing params", "POST", "/tools/echo", "{}", http.StatusBadRequest, "Missing required parameters: text"},
		{"empty body", "POST", "/tools/echo", "", http.StatusBadRequest, "Missing required parameters: text"},
		{"backend failure", "POST", "/tools/explode", "", http.StatusInternalServerError, "status 502"},
		{"invalid body", "POST", "/tools/echo", "[1,2", http.StatusBadRequest, "invalid JSON body"},
		{"unknown resource", "GET", "/resources/read?uri=x://y", "", http.StatusNotFound, "Unknown resource: x://y"},
		{"missing uri", "GET", "/resources/read", "", http.StatusBadRequest, "Missing required parameters: uri"},
		{"unknown prompt", "POST", "/prompts/nope", "", http.StatusNotFound, "Unknown prompt: nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := do(t, mux, tt.method, tt.target, tt.body)
			if w.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, w.Code)
			}
			if body["success"] != false {
				t.Errorf("expected success false, got %v", body["success"])
			}
			if msg, _ := body["error"].(string); !strings.Contains(msg, tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, msg)
			}
		})
	}
}

func TestCatalog_ReadResourceAndPrompt(t *testing.T) {
	mux := newMux(t)

	w, body := do(t, mux, "GET", "/resources/read?uri=test://docs", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	data, _ := body["data"].(map[string]any)
	if data["text"] != "docs" || data["mimeType"] != "text/plain" {
		t.Errorf("unexpected resource content %v", data)
	}

	w, body = do(t, mux, "POST", "/prompts/greet", `{"who":"Ada"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	data, _ = body["data"].(map[string]any)
	if !strings.Contains(mustJSON(t, data), "Hello Ada") {
		t.Errorf("unexpected prompt result %v", data)
	}
}

func TestCatalog_RejectsWrongMethod(t *testing.T) {
	mux := newMux(t)
	for _, tc := range []struct{ method, target string }{
		{"POST", "/tools"},
		{"GET", "/tools/echo"},
		{"DELETE", "/resources/read?uri=test://docs"},
		{"GET", "/prompts/greet"},
	} {
		w, _ := do(t, mux, tc.method, tc.target, "")
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected status 405, got %d", tc.method, tc.target, w.Code)
		}
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

// --- Health ---

func TestHealthHandler_Healthy(t *testing.T) {
	handler := NewHealthHandler(newTestOrchestrator(t, nil), nil)

	w, body := do(t, handler, "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if body["status"] != orchestrator.StatusHealthy {
		t.Errorf("expected status healthy, got %v", body["status"])
	}
	services, _ := body["services"].(map[string]any)
	if _, ok := services["test"]; !ok {
		t.Errorf("expected test service in %v", services)
	}
}

func TestHealthHandler_Failing(t *testing.T) {
	handler := NewHealthHandler(newTestOrchestrator(t, errors.New("upstream down")), nil)

	w, body := do(t, handler, "GET", "/health", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
	if body["status"] == orchestrator.StatusHealthy {
		t.Error("expected non-healthy status")
	}
	services, _ := body["services"].(map[string]any)
	entry, _ := services["test"].(map[string]any)
	if entry["error"] != "upstream down" {
		t.Errorf("expected health check error, got %v", entry)
	}
}

func TestHealthHandler_RejectsNonGET(t *testing.T) {
	handler := NewHealthHandler(newTestOrchestrator(t, nil), nil)

	req := httptest.NewRequest("POST", "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

// --- Version ---

func TestVersionHandler_ReturnsJSON(t *testing.T) {
	handler := NewVersionHandler(func() []string { return []string{"swap"} })

	w, body := do(t, handler, "GET", "/version", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", w.Header().Get("Content-Type"))
	}
	for _, key := range []string{"version", "build", "git_commit", "services"} {
		if _, ok := body[key]; !ok {
			t.Errorf("expected %s field in response", key)
		}
	}
}

func TestVersionHandler_RejectsNonGET(t *testing.T) {
	handler := NewVersionHandler(nil)

	req := httptest.NewRequest("DELETE", "/version", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

// --- Helpers ---

func TestRequireMethod(t *testing.T) {
	tests := []struct {
		method string
		want   bool
	}{
		{"GET", true},
		{"HEAD", true},
		{"POST", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, "/test", nil)
		w := httptest.NewRecorder()
		if got := RequireMethod(w, req, "GET"); got != tt.want {
			t.Errorf("RequireMethod(%s) = %v, want %v", tt.method, got, tt.want)
		}
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, http.StatusBadRequest, "something went wrong")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if body["error"] != "something went wrong" || body["success"] != false {
		t.Errorf("unexpected body %v", body)
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.UnknownTool("x"), http.StatusNotFound},
		{service.UnknownResource("x"), http.StatusNotFound},
		{&service.MissingParamsError{Params: []string{"a"}}, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusForError(tt.err); got != tt.want {
			t.Errorf("StatusForError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestCatalog_CallToolKeepsIntegerPrecision(t *testing.T) {
	var got string
	svc := stubService{Table: service.NewTable()}
	svc.AddTool(service.ToolDefinition{Name: "quote"}, func(_ context.Context, args service.Args) (any, error) {
		got = args.String("amount", "")
		return map[string]any{"amount": args["amount"]}, nil
	})
	o, err := orchestrator.New([]service.Registration{{Key: "test", Service: svc}})
	if err != nil {
		t.Fatalf("orchestrator.New: %v", err)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/tools/{name}", NewCatalogHandler(o, nil).HandleCallTool)

	w, _ := do(t, mux, "POST", "/tools/quote", `{"amount":1234567890123456789}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got != "1234567890123456789" {
		t.Errorf("amount = %s, want 1234567890123456789", got)
	}
	if !strings.Contains(w.Body.String(), `"amount":1234567890123456789`) {
		t.Errorf("expected exact digits echoed, got %s", w.Body.String())
	}
}
