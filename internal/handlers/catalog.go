package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/devansh-m12/doraemon-sub001/internal/common"
	"github.com/devansh-m12/doraemon-sub001/internal/service"
)

// maxArgsSize caps a REST tool or prompt argument body.
const maxArgsSize = 1 << 20

// Router is the orchestrator surface the REST endpoints call.
type Router interface {
	GetAllTools() []service.ToolDefinition
	GetAllResources() []service.ResourceDefinition
	GetAllPrompts() []service.PromptDefinition
	HandleToolCall(ctx context.Context, name string, args service.Args) (any, error)
	HandleResourceRead(ctx context.Context, uri string) (any, error)
	HandlePromptRequest(ctx context.Context, name string, args service.Args) (any, error)
}

// CatalogHandler serves the REST convenience endpoints over the orchestrator.
type CatalogHandler struct {
	router Router
	logger *common.Logger
}

// NewCatalogHandler creates the REST catalog handler.
func NewCatalogHandler(router Router, logger *common.Logger) *CatalogHandler {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &CatalogHandler{router: router, logger: logger}
}

// HandleListTools handles GET /tools.
func (h *CatalogHandler) HandleListTools(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	tools := h.router.GetAllTools()
	WriteJSON(w, http.StatusOK, map[string]any{"tools": nonNil(tools), "count": len(tools)})
}

// HandleCallTool handles POST /tools/{name}. The body is the argument object.
func (h *CatalogHandler) HandleCallTool(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	name := r.PathValue("name")
	args, err := decodeArgs(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.router.HandleToolCall(r.Context(), name, args)
	if err != nil {
		h.fail(w, "tool", name, err)
		return
	}
	WriteSuccess(w, result)
}

// HandleListResources handles GET /resources.
func (h *CatalogHandler) HandleListResources(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	resources := h.router.GetAllResources()
	WriteJSON(w, http.StatusOK, map[string]any{"resources": nonNil(resources), "count": len(resources)})
}

// HandleReadResource handles GET /resources/read?uri=.
func (h *CatalogHandler) HandleReadResource(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	uri := r.URL.Query().Get("uri")
	if uri == "" {
		WriteError(w, http.StatusBadRequest, (&service.MissingParamsError{Params: []string{"uri"}}).Error())
		return
	}

	result, err := h.router.HandleResourceRead(r.Context(), uri)
	if err != nil {
		h.fail(w, "resource", uri, err)
		return
	}
	WriteSuccess(w, result)
}

// HandleListPrompts handles GET /prompts.
func (h *CatalogHandler) HandleListPrompts(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	prompts := h.router.GetAllPrompts()
	WriteJSON(w, http.StatusOK, map[string]any{"prompts": nonNil(prompts), "count": len(prompts)})
}

// HandleGetPrompt handles POST /prompts/{name}. The body is the argument object.
func (h *CatalogHandler) HandleGetPrompt(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	name := r.PathValue("name")
	args, err := decodeArgs(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.router.HandlePromptRequest(r.Context(), name, args)
	if err != nil {
		h.fail(w, "prompt", name, err)
		return
	}
	WriteSuccess(w, result)
}

func (h *CatalogHandler) fail(w http.ResponseWriter, kind, name string, err error) {
	code := StatusForError(err)
	if code == http.StatusInternalServerError {
		h.logger.Error().Str(kind, name).Err(err).Msg("Routed call failed")
	}
	WriteError(w, code, err.Error())
}

// decodeArgs reads an optional JSON object body. An empty body yields empty
// args. Numbers stay json.Number so large integers keep every digit.
func decodeArgs(r *http.Request) (service.Args, error) {
	args := service.Args{}
	if r.Body == nil {
		return args, nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxArgsSize))
	dec.UseNumber()
	err := dec.Decode(&args)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid JSON body: " + err.Error())
	}
	return args, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
