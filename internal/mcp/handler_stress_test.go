package mcp

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// --- Hostile payload stress tests ---

func TestHandler_StressHostileBodies(t *testing.T) {
	h := testHandler(t)

	hostile := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"null", "null"},
		{"array", `[{"jsonrpc":"2.0","id":1,"method":"ping"}]`},
		{"number", "42"},
		{"truncated", `{"jsonrpc":"2.0","id":1,"method":"tools/`},
		{"binary", "\x00\x01\x02\xff"},
		{"deep nesting", strings.Repeat("[", 10000)},
		{"method is object", `{"jsonrpc":"2.0","id":1,"method":{}}`},
	}

	for _, tc := range hostile {
		t.Run(tc.name, func(t *testing.T) {
			// Must not panic and must answer with a JSON-RPC envelope.
			rec, resp := postRPC(t, h, tc.body)
			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", rec.Code)
			}
			if resp.Error == nil {
				t.Errorf("expected JSON-RPC error for %q", tc.name)
			}
		})
	}
}

func TestHandler_StressOversizedBody(t *testing.T) {
	h := testHandler(t)
	big := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"echo","arguments":{"text":"` +
		strings.Repeat("A", maxRequestSize) + `"}}}`

	rec, resp := postRPC(t, h, big)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != mcpgo.PARSE_ERROR {
		t.Errorf("expected parse error for truncated body, got %+v", resp.Error)
	}
}

func TestHandler_StressHostileToolNames(t *testing.T) {
	h := testHandler(t)

	names := []string{
		"<script>alert(1)</script>",
		"'; DROP TABLE tools; --",
		"../../etc/passwd",
		strings.Repeat("x", 50000),
		"echo\r\nX-Evil: injected",
	}
	for i, name := range names {
		t.Run(fmt.Sprintf("name_%d", i), func(t *testing.T) {
			body := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":%q}}`, name)
			_, resp := postRPC(t, h, body)
			if resp.Error == nil || resp.Error.Code != mcpgo.INTERNAL_ERROR {
				t.Errorf("expected unknown tool error, got %+v", resp.Error)
			}
		})
	}
}

func TestHandler_StressConcurrentRequests(t *testing.T) {
	h := testHandler(t)

	var wg sync.WaitGroup
	errs := make(chan string, 200)
	for i := range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var body string
			switch i % 4 {
			case 0:
				body = fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"method":"tools/call","params":{"name":"echo","arguments":{"text":"m%d"}}}`, i, i)
			case 1:
				body = fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"method":"tools/list"}`, i)
			case 2:
				body = fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"method":"resources/read","params":{"uri":"test://docs/api"}}`, i)
			default:
				body = fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"method":"tools/call","params":{"name":"explode"}}`, i)
			}
			req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewBufferString(body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if !strings.Contains(rec.Body.String(), fmt.Sprintf(`"id":%d`, i)) {
				errs <- fmt.Sprintf("request %d: response id mismatch: %s", i, rec.Body.String())
			}
			if i%4 == 0 && !strings.Contains(rec.Body.String(), fmt.Sprintf("m%d", i)) {
				errs <- fmt.Sprintf("request %d: echo mismatch", i)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}
