package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Alexandre220990/ProfitumMVP-sub006/pkg/platform/httputil"
)

// RuleCache is the slice of the engine the admin surface needs.
type RuleCache interface {
	ClearCache()
}

// AdminHandler exposes operational endpoints.
type AdminHandler struct {
	cache  RuleCache
	logger *slog.Logger
}

func NewAdminHandler(cache RuleCache, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{cache: cache, logger: logger}
}

// Register mounts admin endpoints on the router.
func (h *AdminHandler) Register(r chi.Router) {
	r.Post("/admin/rules/reload", h.handleRulesReload)
}

// handleRulesReload drops the rule cache so the next evaluation refetches
// rule definitions.
func (h *AdminHandler) handleRulesReload(w http.ResponseWriter, r *http.Request) {
	h.cache.ClearCache()
	h.logger.Info("rule cache cleared")
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}
