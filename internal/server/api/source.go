package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/shakehands/internal/source"
	"github.com/ayusman/shakehands/internal/store"
)

// SourceHandler stores the video source and hands out its share token.
type SourceHandler struct {
	store *store.Store
}

// NewSourceHandler creates a new SourceHandler with the given store.
func NewSourceHandler(s *store.Store) *SourceHandler {
	return &SourceHandler{store: s}
}

type sourceRequest struct {
	URL   string `json:"url,omitempty"`
	Token string `json:"token,omitempty"`
}

type sourceResponse struct {
	URL   string `json:"url"`
	Token string `json:"token"`
	Link  string `json:"link"`
}

// ServeHTTP handles GET and PUT /api/source.
func (h *SourceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// get handles GET /api/source.
func (h *SourceHandler) get(w http.ResponseWriter, r *http.Request) {
	raw, err := h.store.Settings().Get(store.KeySourceURL)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no source configured")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load source")
		return
	}

	resp, err := newSourceResponse(r, raw)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "stored source is invalid")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// update handles PUT /api/source with either a url or a share token.
func (h *SourceHandler) update(w http.ResponseWriter, r *http.Request) {
	var req sourceRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	raw := strings.TrimSpace(req.URL)
	if raw == "" && req.Token != "" {
		decoded, err := source.Decode(req.Token)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		raw = decoded
	}

	resp, err := newSourceResponse(r, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Settings().Set(store.KeySourceURL, raw); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save source")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// newSourceResponse builds the token and a share link pointing at the
// page that served the request.
func newSourceResponse(r *http.Request, raw string) (sourceResponse, error) {
	token, err := source.Encode(raw)
	if err != nil {
		return sourceResponse{}, err
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	link, err := source.Link(scheme+"://"+r.Host+"/", raw)
	if err != nil {
		return sourceResponse{}, err
	}

	return sourceResponse{URL: raw, Token: token, Link: link}, nil
}
