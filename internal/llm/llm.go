// Package llm exposes an OpenRouter-hosted model as a service that can call
// the 1inch tools on behalf of a chat user.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/devansh-m12/doraemon-sub001/internal/cache"
	"github.com/devansh-m12/doraemon-sub001/internal/common"
	"github.com/devansh-m12/doraemon-sub001/internal/service"
)

// ServiceKey is the orchestrator registration key of the LLM service.
const ServiceKey = "openrouter"

// Defaults applied by Config.withDefaults.
const (
	DefaultBaseURL          = "https://openrouter.ai/api/v1"
	DefaultModel            = "openai/gpt-4o-mini"
	DefaultMaxToolRounds    = 5
	DefaultConversationTTL  = time.Hour
	DefaultMaxConversations = 1000
	DefaultMaxHistory       = 50
	DefaultTimeout          = 60 * time.Second
)

// DefaultSystemPrompt steers the model towards the 1inch tools.
const DefaultSystemPrompt = `You are a DeFi assistant with access to the 1inch APIs through tools.
Use the tools to answer questions about swaps, token prices, balances, limit orders, portfolios, domains and on-chain state.
Amounts returned by the APIs are in minimal units; convert them using token decimals before presenting them.
When a diagram helps, include it as a fenced mermaid code block.`

// Config holds the OpenRouter settings.
type Config struct {
	BaseURL          string
	APIKey           string
	Model            string
	Timeout          time.Duration
	MaxToolRounds    int
	SystemPrompt     string
	ConversationTTL  time.Duration
	MaxConversations int
	// MaxHistory caps the messages kept per conversation between turns.
	MaxHistory int
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxToolRounds <= 0 {
		c.MaxToolRounds = DefaultMaxToolRounds
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = DefaultSystemPrompt
	}
	if c.ConversationTTL <= 0 {
		c.ConversationTTL = DefaultConversationTTL
	}
	if c.MaxConversations <= 0 {
		c.MaxConversations = DefaultMaxConversations
	}
	if c.MaxHistory <= 0 {
		c.MaxHistory = DefaultMaxHistory
	}
	return c
}

// ToolRouter is the tool surface the model may call.
type ToolRouter interface {
	GetAllTools() []service.ToolDefinition
	HandleToolCall(ctx context.Context, name string, args service.Args) (any, error)
}

// FunctionCall records one tool invocation made during a chat turn.
type FunctionCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
	Result    any            `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// ChatResponse is the outcome of one chat turn.
type ChatResponse struct {
	Content        string         `json:"content"`
	ConversationID string         `json:"conversationId"`
	FunctionCalls  []FunctionCall `json:"functionCalls"`
	MermaidCode    string         `json:"mermaidCode,omitempty"`
}

// Service is the OpenRouter LLM proxy.
type Service struct {
	*service.Table
	cfg           Config
	model         model.ToolCallingChatModel
	router        ToolRouter
	conversations *cache.Store[[]*schema.Message]
	turns         keyedMutex
	httpClient    *http.Client
	logger        *common.Logger
}

// New creates the service with an OpenAI-compatible chat model pointed at
// OpenRouter.
func New(ctx context.Context, cfg Config, router ToolRouter, logger *common.Logger) (*Service, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("OpenRouter API key is required")
	}
	cfg = cfg.withDefaults()
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewWithModel(cfg, chatModel, router, logger), nil
}

// NewWithModel creates the service around an existing chat model.
func NewWithModel(cfg Config, chatModel model.ToolCallingChatModel, router ToolRouter, logger *common.Logger) *Service {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	s := &Service{
		Table:         service.NewTable(),
		cfg:           cfg,
		model:         chatModel,
		router:        router,
		conversations: cache.New[[]*schema.Message](cfg.ConversationTTL, cfg.MaxConversations),
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		logger:        logger,
	}

	s.AddTool(service.ToolDefinition{
		Name:        "llm_chat",
		Description: "Ask the DeFi assistant a question. It may call 1inch tools to answer.",
		InputSchema: service.Object(map[string]service.Property{
			"message":        service.StringProp("User message"),
			"conversationId": service.StringProp("Conversation to continue; a new one is started when omitted"),
		}, "message"),
	}, func(ctx context.Context, args service.Args) (any, error) {
		if err := service.ValidateRequired(args, "message"); err != nil {
			return nil, err
		}
		return s.Chat(ctx, args.String("message", ""), args.String("conversationId", ""))
	})

	s.AddResource(service.ResourceDefinition{
		URI:         "openrouter://config/model",
		Name:        "LLM model configuration",
		Description: "Model and limits used by the chat assistant",
		MimeType:    "application/json",
	}, s.modelConfig)

	return s
}

// Model returns the configured model name.
func (s *Service) Model() string {
	return s.cfg.Model
}

func (s *Service) modelConfig(context.Context) (any, error) {
	body, err := json.MarshalIndent(map[string]any{
		"model":         s.cfg.Model,
		"baseUrl":       s.cfg.BaseURL,
		"maxToolRounds": s.cfg.MaxToolRounds,
		"maxHistory":    s.cfg.MaxHistory,
		"tools":         len(s.router.GetAllTools()),
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	return service.ResourceContent{URI: "openrouter://config/model", MimeType: "application/json", Text: string(body)}, nil
}

// Ping lists the models available to the API key.
func (s *Service) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"/models", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("OpenRouter returned status %d", resp.StatusCode)
	}
	return nil
}

// Chat runs one user turn: the model may call tools for up to MaxToolRounds
// rounds before it must answer. History is kept per conversation.
func (s *Service) Chat(ctx context.Context, message, conversationID string) (*ChatResponse, error) {
	if strings.TrimSpace(message) == "" {
		return nil, &service.MissingParamsError{Params: []string{"message"}}
	}
	if conversationID == "" {
		conversationID = uuid.New().String()
	}
	log := s.logger.WithCorrelationId(conversationID)

	// Turns of one conversation run one at a time so none is lost.
	unlock := s.turns.Lock(conversationID)
	defer unlock()

	history, _ := s.conversations.Get(conversationID)
	msgs := make([]*schema.Message, 0, len(history)+2)
	msgs = append(msgs, schema.SystemMessage(s.cfg.SystemPrompt))
	msgs = append(msgs, history...)
	msgs = append(msgs, schema.UserMessage(message))

	tools := toolInfos(s.router.GetAllTools())
	calls := []FunctionCall{}

	var answer *schema.Message
	for round := 0; round < s.cfg.MaxToolRounds; round++ {
		resp, err := s.model.Generate(ctx, msgs, model.WithTools(tools))
		if err != nil {
			return nil, fmt.Errorf("LLM request failed: %w", err)
		}
		msgs = append(msgs, resp)
		if len(resp.ToolCalls) == 0 {
			answer = resp
			break
		}
		for _, tc := range resp.ToolCalls {
			call, content := s.invoke(ctx, log, tc)
			calls = append(calls, call)
			msgs = append(msgs, schema.ToolMessage(content, tc.ID))
		}
	}

	if answer == nil {
		log.Warn().Int("rounds", s.cfg.MaxToolRounds).Msg("Tool round limit reached, requesting final answer")
		resp, err := s.model.Generate(ctx, msgs)
		if err != nil {
			return nil, fmt.Errorf("LLM request failed: %w", err)
		}
		msgs = append(msgs, resp)
		answer = resp
	}

	// The system prompt is re-added on every turn.
	s.conversations.Set(conversationID, trimHistory(msgs[1:], s.cfg.MaxHistory))

	log.Info().Int("function_calls", len(calls)).Msg("Chat turn completed")

	return &ChatResponse{
		Content:        answer.Content,
		ConversationID: conversationID,
		FunctionCalls:  calls,
		MermaidCode:    ExtractMermaid(answer.Content),
	}, nil
}

// invoke runs one tool call and returns its record and the text fed back to
// the model.
func (s *Service) invoke(ctx context.Context, log *common.Logger, tc schema.ToolCall) (FunctionCall, string) {
	call := FunctionCall{Name: tc.Function.Name, Arguments: map[string]any{}}

	if raw := strings.TrimSpace(tc.Function.Arguments); raw != "" {
		dec := json.NewDecoder(strings.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&call.Arguments); err != nil {
			call.Error = fmt.Sprintf("invalid tool arguments: %v", err)
			return call, "Error: " + call.Error
		}
	}

	log.Debug().Str("tool", call.Name).Msg("LLM tool call")
	result, err := s.router.HandleToolCall(ctx, call.Name, service.Args(call.Arguments))
	if err != nil {
		call.Error = err.Error()
		return call, "Error: " + call.Error
	}
	call.Result = result

	body, err := json.Marshal(result)
	if err != nil {
		return call, fmt.Sprint(result)
	}
	return call, string(body)
}

var mermaidBlock = regexp.MustCompile("(?s)```mermaid\\s*\\n(.*?)```")

// ExtractMermaid returns the body of the first mermaid fenced block in text.
func ExtractMermaid(text string) string {
	m := mermaidBlock.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
