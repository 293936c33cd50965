package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devansh-m12/doraemon-sub001/internal/handlers"
)

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/mcp", s.app.MCPHandler)

	catalog := s.app.CatalogHandler
	mux.HandleFunc("/tools", catalog.HandleListTools)
	mux.HandleFunc("/tools/{name}", catalog.HandleCallTool)
	mux.HandleFunc("/resources", catalog.HandleListResources)
	mux.HandleFunc("/resources/read", catalog.HandleReadResource)
	mux.HandleFunc("/prompts", catalog.HandleListPrompts)
	mux.HandleFunc("/prompts/{name}", catalog.HandleGetPrompt)

	mux.Handle("/health", s.app.HealthHandler)
	mux.Handle("/version", s.app.VersionHandler)

	if s.app.Metrics != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.app.Registry, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("/", notFound)

	return mux
}

func notFound(w http.ResponseWriter, r *http.Request) {
	_ = handlers.WriteError(w, http.StatusNotFound, "Not Found")
}
