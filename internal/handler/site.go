package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/aptx/internal/service"
)

// SiteHandler serves the public landing page endpoints.
type SiteHandler struct {
	site   *service.SiteService
	logger *slog.Logger
}

func NewSiteHandler(site *service.SiteService, logger *slog.Logger) *SiteHandler {
	return &SiteHandler{site: site, logger: logger}
}

// HTTP: GET /api/stats
func (h *SiteHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.site.Stats(r.Context())
	if err != nil {
		h.logger.Error("computing stats", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HTTP: GET /api/creators
func (h *SiteHandler) HandleCreators(w http.ResponseWriter, r *http.Request) {
	creators, err := h.site.Creators(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, creators)
}

// HTTP: GET /api/supporters
func (h *SiteHandler) HandleSupporters(w http.ResponseWriter, r *http.Request) {
	supporters, err := h.site.Supporters(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, supporters)
}
