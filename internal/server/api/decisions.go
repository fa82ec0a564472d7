package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/shakehands/internal/store"
)

// MaxDecisionLimit caps ?limit on /api/decisions.
const MaxDecisionLimit = 500

// DecisionsHandler serves the decision history.
type DecisionsHandler struct {
	store *store.Store
}

// NewDecisionsHandler creates a new DecisionsHandler with the given store.
func NewDecisionsHandler(s *store.Store) *DecisionsHandler {
	return &DecisionsHandler{store: s}
}

type listDecisionsResponse struct {
	Decisions []*store.Decision `json:"decisions"`
}

// ServeHTTP handles GET /api/decisions?limit=N.
func (h *DecisionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := store.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxDecisionLimit)
	}

	decisions, err := h.store.Decisions().ListRecent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list decisions")
		return
	}

	writeJSON(w, http.StatusOK, listDecisionsResponse{Decisions: decisions})
}
