package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/shakehands/internal/volume"
)

// VolumeService is the part of the app the volume endpoints need.
type VolumeService interface {
	State() volume.State
	AppliedVolume() float64
	IsEnabled() bool
	VolumeConfig() volume.Config
	SetVolumeConfig(volume.Config) error
}

// VolumeHandler serves /api/volume and /api/volume/config.
type VolumeHandler struct {
	svc VolumeService
}

// NewVolumeHandler creates a new VolumeHandler.
func NewVolumeHandler(svc VolumeService) *VolumeHandler {
	return &VolumeHandler{svc: svc}
}

// VolumeResponse is the current volume as reported to clients.
type VolumeResponse struct {
	Volume        float64      `json:"volume"`
	Level         volume.Level `json:"level"`
	Applied       float64      `json:"applied"`
	IncreaseCount int          `json:"increase_count"`
	DecreaseCount int          `json:"decrease_count"`
	Enabled       bool         `json:"enabled"`
}

// NewVolumeResponse builds a response from a controller state.
func NewVolumeResponse(st volume.State, applied float64, enabled bool) VolumeResponse {
	return VolumeResponse{
		Volume:        st.Volume,
		Level:         volume.LevelFor(st.Volume),
		Applied:       applied,
		IncreaseCount: st.IncreaseCount,
		DecreaseCount: st.DecreaseCount,
		Enabled:       enabled,
	}
}

// ServeHTTP routes between the volume state and the volume policy.
func (h *VolumeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/volume")
	path = strings.Trim(path, "/")

	switch path {
	case "":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.get(w, r)
	case "config":
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, h.svc.VolumeConfig())
		case http.MethodPut:
			h.updateConfig(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// get handles GET /api/volume.
func (h *VolumeHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NewVolumeResponse(h.svc.State(), h.svc.AppliedVolume(), h.svc.IsEnabled()))
}

// updateConfig handles PUT /api/volume/config. Omitted fields keep their
// current value.
func (h *VolumeHandler) updateConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.svc.VolumeConfig()
	if err := decodeBody(w, r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.svc.SetVolumeConfig(cfg); err != nil {
		if errors.Is(err, volume.ErrInvalidConfig) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to save volume config")
		return
	}

	writeJSON(w, http.StatusOK, h.svc.VolumeConfig())
}
