package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devansh-m12/doraemon-sub001/internal/service"
)

// scriptedModel replays canned responses and records the messages it saw.
type scriptedModel struct {
	mu        sync.Mutex
	responses []*schema.Message
	err       error
	seen      [][]*schema.Message
}

func (m *scriptedModel) Generate(_ context.Context, messages []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = append(m.seen, append([]*schema.Message(nil), messages...))
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return schema.AssistantMessage("done", nil), nil
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, nil
}

func (m *scriptedModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func (m *scriptedModel) BindTools(_ []*schema.ToolInfo) error {
	return nil
}

func (m *scriptedModel) WithTools(_ []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

// fakeRouter serves a single get_swap_quote tool.
type fakeRouter struct {
	mu    sync.Mutex
	calls []service.Args
	err   error
}

func (r *fakeRouter) GetAllTools() []service.ToolDefinition {
	return []service.ToolDefinition{{
		Name:        "get_swap_quote",
		Description: "quote",
		InputSchema: service.Object(map[string]service.Property{
			"src":    service.StringProp("source"),
			"tokens": service.StringArrayProp("tokens"),
		}, "src"),
	}}
}

func (r *fakeRouter) HandleToolCall(_ context.Context, name string, args service.Args) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, args)
	if r.err != nil {
		return nil, r.err
	}
	return map[string]any{"tool": name, "dstAmount": "42"}, nil
}

func toolCallMessage(id, name, args string) *schema.Message {
	return schema.AssistantMessage("", []schema.ToolCall{{
		ID:       id,
		Function: schema.FunctionCall{Name: name, Arguments: args},
	}})
}

func TestChat_PlainAnswer(t *testing.T) {
	m := &scriptedModel{responses: []*schema.Message{schema.AssistantMessage("Hello there", nil)}}
	s := NewWithModel(Config{}, m, &fakeRouter{}, nil)

	resp, err := s.Chat(context.Background(), "hi", "")
	require.NoError(t, err)
	assert.Equal(t, "Hello there", resp.Content)
	assert.NotEmpty(t, resp.ConversationID)
	assert.Empty(t, resp.FunctionCalls)
	assert.Empty(t, resp.MermaidCode)

	require.Len(t, m.seen, 1)
	assert.Equal(t, schema.System, m.seen[0][0].Role)
	assert.Equal(t, "hi", m.seen[0][1].Content)
}

func TestChat_ToolLoop(t *testing.T) {
	m := &scriptedModel{responses: []*schema.Message{
		toolCallMessage("call-1", "get_swap_quote", `{"src":"0xeee"}`),
		schema.AssistantMessage("You get 42 USDC", nil),
	}}
	router := &fakeRouter{}
	s := NewWithModel(Config{}, m, router, nil)

	resp, err := s.Chat(context.Background(), "quote 1 ETH", "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "You get 42 USDC", resp.Content)
	assert.Equal(t, "conv-1", resp.ConversationID)

	require.Len(t, resp.FunctionCalls, 1)
	fc := resp.FunctionCalls[0]
	assert.Equal(t, "get_swap_quote", fc.Name)
	assert.Equal(t, map[string]any{"src": "0xeee"}, fc.Arguments)
	assert.Empty(t, fc.Error)
	assert.NotNil(t, fc.Result)

	require.Len(t, router.calls, 1)
	assert.Equal(t, "0xeee", router.calls[0]["src"])

	// Second Generate sees the tool result addressed to the call ID.
	require.Len(t, m.seen, 2)
	last := m.seen[1][len(m.seen[1])-1]
	assert.Equal(t, schema.Tool, last.Role)
	assert.Equal(t, "call-1", last.ToolCallID)
	assert.JSONEq(t, `{"tool":"get_swap_quote","dstAmount":"42"}`, last.Content)
}

func TestChat_ToolErrorIsReportedToModel(t *testing.T) {
	m := &scriptedModel{responses: []*schema.Message{
		toolCallMessage("call-1", "get_swap_quote", `{"src":"0xeee"}`),
		schema.AssistantMessage("Sorry, the quote failed", nil),
	}}
	router := &fakeRouter{err: errors.New("insufficient liquidity")}
	s := NewWithModel(Config{}, m, router, nil)

	resp, err := s.Chat(context.Background(), "quote", "")
	require.NoError(t, err)
	require.Len(t, resp.FunctionCalls, 1)
	assert.Equal(t, "insufficient liquidity", resp.FunctionCalls[0].Error)

	last := m.seen[1][len(m.seen[1])-1]
	assert.Equal(t, "Error: insufficient liquidity", last.Content)
}

func TestChat_InvalidToolArguments(t *testing.T) {
	m := &scriptedModel{responses: []*schema.Message{
		toolCallMessage("call-1", "get_swap_quote", `{not json`),
		schema.AssistantMessage("ok", nil),
	}}
	router := &fakeRouter{}
	s := NewWithModel(Config{}, m, router, nil)

	resp, err := s.Chat(context.Background(), "quote", "")
	require.NoError(t, err)
	require.Len(t, resp.FunctionCalls, 1)
	assert.Contains(t, resp.FunctionCalls[0].Error, "invalid tool arguments")
	assert.Empty(t, router.calls)
}

func TestChat_RoundLimitForcesFinalAnswer(t *testing.T) {
	m := &scriptedModel{responses: []*schema.Message{
		toolCallMessage("c1", "get_swap_quote", `{"src":"a"}`),
		toolCallMessage("c2", "get_swap_quote", `{"src":"b"}`),
		schema.AssistantMessage("final", nil),
	}}
	s := NewWithModel(Config{MaxToolRounds: 2}, m, &fakeRouter{}, nil)

	resp, err := s.Chat(context.Background(), "loop", "")
	require.NoError(t, err)
	assert.Equal(t, "final", resp.Content)
	assert.Len(t, resp.FunctionCalls, 2)
	assert.Len(t, m.seen, 3)
}

func TestChat_KeepsConversationHistory(t *testing.T) {
	m := &scriptedModel{responses: []*schema.Message{
		schema.AssistantMessage("first answer", nil),
		schema.AssistantMessage("second answer", nil),
	}}
	s := NewWithModel(Config{}, m, &fakeRouter{}, nil)

	first, err := s.Chat(context.Background(), "one", "")
	require.NoError(t, err)
	_, err = s.Chat(context.Background(), "two", first.ConversationID)
	require.NoError(t, err)

	require.Len(t, m.seen, 2)
	second := m.seen[1]
	require.Len(t, second, 4)
	assert.Equal(t, schema.System, second[0].Role)
	assert.Equal(t, "one", second[1].Content)
	assert.Equal(t, "first answer", second[2].Content)
	assert.Equal(t, "two", second[3].Content)
}

func TestChat_ModelError(t *testing.T) {
	m := &scriptedModel{err: errors.New("rate limited")}
	s := NewWithModel(Config{}, m, &fakeRouter{}, nil)

	_, err := s.Chat(context.Background(), "hi", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestChat_EmptyMessage(t *testing.T) {
	s := NewWithModel(Config{}, &scriptedModel{}, &fakeRouter{}, nil)

	_, err := s.Chat(context.Background(), "  ", "")
	var missing *service.MissingParamsError
	require.ErrorAs(t, err, &missing)
}

func TestChat_MermaidExtraction(t *testing.T) {
	content := "Here is the route:\n```mermaid\ngraph LR\n  ETH --> USDC\n```\nDone."
	m := &scriptedModel{responses: []*schema.Message{schema.AssistantMessage(content, nil)}}
	s := NewWithModel(Config{}, m, &fakeRouter{}, nil)

	resp, err := s.Chat(context.Background(), "draw", "")
	require.NoError(t, err)
	assert.Equal(t, "graph LR\n  ETH --> USDC", resp.MermaidCode)
}

func TestExtractMermaid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"none", "no diagram", ""},
		{"first block wins", "```mermaid\nA\n```\n```mermaid\nB\n```", "A"},
		{"other fence ignored", "```go\nx := 1\n```", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractMermaid(tt.in))
		})
	}
}

func TestService_Manifest(t *testing.T) {
	s := NewWithModel(Config{Model: "anthropic/claude-3.5-sonnet"}, &scriptedModel{}, &fakeRouter{}, nil)

	require.Len(t, s.Tools(), 1)
	assert.Equal(t, "llm_chat", s.Tools()[0].Name)
	assert.Equal(t, []string{"message"}, s.Tools()[0].InputSchema.Required)
	assert.Empty(t, s.Prompts())

	got, err := s.HandleResourceRead(context.Background(), "openrouter://config/model")
	require.NoError(t, err)
	content := got.(service.ResourceContent)
	assert.Equal(t, "application/json", content.MimeType)
	assert.Contains(t, content.Text, "anthropic/claude-3.5-sonnet")

	_, err = s.HandleToolCall(context.Background(), "llm_chat", service.Args{})
	var missing *service.MissingParamsError
	assert.ErrorAs(t, err, &missing)
}

func TestService_LLMChatTool(t *testing.T) {
	m := &scriptedModel{responses: []*schema.Message{schema.AssistantMessage("hey", nil)}}
	s := NewWithModel(Config{}, m, &fakeRouter{}, nil)

	got, err := s.HandleToolCall(context.Background(), "llm_chat", service.Args{"message": "hi", "conversationId": "abc"})
	require.NoError(t, err)
	resp := got.(*ChatResponse)
	assert.Equal(t, "hey", resp.Content)
	assert.Equal(t, "abc", resp.ConversationID)
}

func TestService_Ping(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/models" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	s := NewWithModel(Config{BaseURL: srv.URL + "/", APIKey: "or-key"}, &scriptedModel{}, &fakeRouter{}, nil)
	require.NoError(t, s.Ping(context.Background()))
	assert.Equal(t, "Bearer or-key", gotAuth)

	bad := NewWithModel(Config{BaseURL: srv.URL + "/nope"}, &scriptedModel{}, &fakeRouter{}, nil)
	err := bad.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{}, &fakeRouter{}, nil)
	require.Error(t, err)
}

func TestToolInfos(t *testing.T) {
	infos := toolInfos((&fakeRouter{}).GetAllTools())
	require.Len(t, infos, 1)
	assert.Equal(t, "get_swap_quote", infos[0].Name)
	assert.Equal(t, "quote", infos[0].Desc)
	assert.NotNil(t, infos[0].ParamsOneOf)

	src := parameterInfo(service.StringProp("s"))
	assert.Equal(t, schema.String, src.Type)
	arr := parameterInfo(service.StringArrayProp("a"))
	assert.Equal(t, schema.Array, arr.Type)
	require.NotNil(t, arr.ElemInfo)
	assert.Equal(t, schema.String, arr.ElemInfo.Type)
}

func TestChat_ConcurrentTurnsOnOneConversation(t *testing.T) {
	s := NewWithModel(Config{}, &scriptedModel{}, &fakeRouter{}, nil)

	const turns = 10
	var wg sync.WaitGroup
	for i := range turns {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Chat(context.Background(), fmt.Sprintf("turn %d", i), "shared")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	history, ok := s.conversations.Get("shared")
	require.True(t, ok)
	assert.Len(t, history, 2*turns, "every user turn and answer must be kept")
	assert.Equal(t, 0, s.turns.size(), "conversation locks must be released")
}

func TestChat_HistoryIsCapped(t *testing.T) {
	s := NewWithModel(Config{MaxHistory: 3}, &scriptedModel{}, &fakeRouter{}, nil)

	for i := range 4 {
		_, err := s.Chat(context.Background(), fmt.Sprintf("turn %d", i), "capped")
		require.NoError(t, err)
	}

	history, ok := s.conversations.Get("capped")
	require.True(t, ok)
	require.Len(t, history, 2)
	assert.Equal(t, schema.User, history[0].Role)
	assert.Equal(t, "turn 3", history[0].Content)
}

func TestTrimHistory(t *testing.T) {
	user := func(c string) *schema.Message { return schema.UserMessage(c) }
	answer := func(c string) *schema.Message { return schema.AssistantMessage(c, nil) }
	call := toolCallMessage("c1", "get_swap_quote", `{}`)
	result := schema.ToolMessage(`{"dstAmount":"42"}`, "c1")

	tests := []struct {
		name  string
		msgs  []*schema.Message
		limit int
		want  []string
	}{
		{"under limit", []*schema.Message{user("a"), answer("b")}, 5, []string{"a", "b"}},
		{"drops oldest turn", []*schema.Message{user("a"), answer("b"), user("c"), answer("d")}, 2, []string{"c", "d"}},
		{"skips orphaned tool result", []*schema.Message{user("a"), call, result, answer("b"), user("c"), answer("d")}, 4, []string{"c", "d"}},
		{"no user in window", []*schema.Message{user("a"), call, result, answer("b")}, 2, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, m := range trimHistory(tt.msgs, tt.limit) {
				got = append(got, m.Content)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
