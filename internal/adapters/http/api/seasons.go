package api

import (
	"net/http"
)

// SeasonsHandler serves slider bounds and the circuit layout.
type SeasonsHandler struct {
	deps SeasonsDependencies
}

// NewSeasonsHandler creates a new seasons handler.
func NewSeasonsHandler(deps SeasonsDependencies) *SeasonsHandler {
	return &SeasonsHandler{deps: deps}
}

// HandleSeasons handles GET /seasons.
func (h *SeasonsHandler) HandleSeasons(w http.ResponseWriter, r *http.Request) {
	const op = "api.seasons"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	info, err := h.deps.Seasons(r.Context())
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// HandleLayout handles GET /circuits/monaco/layout. The GeoJSON document is
// written exactly as loaded.
func (h *SeasonsHandler) HandleLayout(w http.ResponseWriter, r *http.Request) {
	const op = "api.monaco_layout"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	layout, err := h.deps.Layout(r.Context())
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(layout)
}
