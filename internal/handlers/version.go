package handlers

import (
	"net/http"

	"github.com/devansh-m12/doraemon-sub001/internal/common"
)

// VersionHandler handles version information requests.
type VersionHandler struct {
	services func() []string
}

// NewVersionHandler creates a new version handler. services may be nil.
func NewVersionHandler(services func() []string) *VersionHandler {
	return &VersionHandler{services: services}
}

// ServeHTTP handles GET /version.
func (h *VersionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	body := map[string]any{
		"version":    common.GetVersion(),
		"build":      common.GetBuild(),
		"git_commit": common.GetGitCommit(),
	}
	if h.services != nil {
		body["services"] = h.services()
	}
	WriteJSON(w, http.StatusOK, body)
}
