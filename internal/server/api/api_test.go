package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ayusman/shakehands/internal/source"
	"github.com/ayusman/shakehands/internal/store"
	"github.com/ayusman/shakehands/internal/volume"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

type fakeVolume struct {
	mu      sync.Mutex
	state   volume.State
	config  volume.Config
	applied float64
	saveErr error
}

func newFakeVolume() *fakeVolume {
	return &fakeVolume{
		state:   volume.State{Volume: 80, IncreaseCount: 3, DecreaseCount: 1},
		config:  volume.DefaultConfig(),
		applied: 78,
	}
}

func (f *fakeVolume) State() volume.State    { return f.state }
func (f *fakeVolume) AppliedVolume() float64 { return f.applied }
func (f *fakeVolume) IsEnabled() bool        { return true }

func (f *fakeVolume) VolumeConfig() volume.Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.config
}

func (f *fakeVolume) SetVolumeConfig(cfg volume.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.config = cfg
	return nil
}

func TestVolumeHandler_Get(t *testing.T) {
	handler := NewVolumeHandler(newFakeVolume())

	req := httptest.NewRequest(http.MethodGet, "/api/volume", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var resp VolumeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Volume != 80 || resp.Level != volume.LevelNice || resp.Applied != 78 {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.IncreaseCount != 3 || !resp.Enabled {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestVolumeHandler_Config(t *testing.T) {
	fake := newFakeVolume()
	handler := NewVolumeHandler(fake)

	t.Run("get returns the active policy", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/volume/config", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		var cfg volume.Config
		if err := json.NewDecoder(rec.Body).Decode(&cfg); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if cfg != volume.DefaultConfig() {
			t.Errorf("expected default config, got %+v", cfg)
		}
	})

	t.Run("put merges partial updates", func(t *testing.T) {
		body := `{"travel_distance": 250, "incremental": false}`
		req := httptest.NewRequest(http.MethodPut, "/api/volume/config", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
		}

		got := fake.VolumeConfig()
		if got.TravelDistance != 250 || got.Incremental {
			t.Errorf("expected update to apply, got %+v", got)
		}
		if got.MinIncrease != 4 {
			t.Errorf("expected untouched fields to keep their value, got %+v", got)
		}
	})

	t.Run("put rejects out of range values", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/volume/config", bytes.NewBufferString(`{"min_volume": 120}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("put rejects unknown fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/volume/config", bytes.NewBufferString(`{"speed": 2}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("storage failure is a server error", func(t *testing.T) {
		fake.saveErr = errors.New("disk full")
		defer func() { fake.saveErr = nil }()

		req := httptest.NewRequest(http.MethodPut, "/api/volume/config", bytes.NewBufferString(`{"min_volume": 10}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
		}
	})
}

func TestVolumeHandler_MethodNotAllowed(t *testing.T) {
	handler := NewVolumeHandler(newFakeVolume())

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/volume"},
		{http.MethodDelete, "/api/volume/config"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, http.StatusMethodNotAllowed, rec.Code)
		}
	}
}

func TestDecisionsHandler(t *testing.T) {
	s := newTestStore(t)
	handler := NewDecisionsHandler(s)

	for i := 0; i < 5; i++ {
		d := &store.Decision{Direction: volume.Down, Volume: float64(50 - i*6)}
		if err := s.Decisions().Create(d); err != nil {
			t.Fatalf("failed to create decision: %v", err)
		}
	}

	t.Run("lists newest first with limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/decisions?limit=2", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var resp listDecisionsResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Decisions) != 2 {
			t.Fatalf("expected 2 decisions, got %d", len(resp.Decisions))
		}
		if resp.Decisions[0].Volume != 26 {
			t.Errorf("expected newest decision first, got volume %v", resp.Decisions[0].Volume)
		}
	})

	t.Run("default limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/decisions", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		var resp listDecisionsResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Decisions) != 5 {
			t.Errorf("expected 5 decisions, got %d", len(resp.Decisions))
		}
	})

	t.Run("invalid limit", func(t *testing.T) {
		for _, q := range []string{"abc", "0", "-3"} {
			req := httptest.NewRequest(http.MethodGet, "/api/decisions?limit="+q, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("limit=%s: expected status %d, got %d", q, http.StatusBadRequest, rec.Code)
			}
		}
	})
}

func TestSourceHandler(t *testing.T) {
	s := newTestStore(t)
	handler := NewSourceHandler(s)
	const clip = "https://example.com/clips/loud.mp4"

	t.Run("get before set is not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/source", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})

	t.Run("put url returns token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/source", bytes.NewBufferString(`{"url":"`+clip+`"}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
		}

		var resp sourceResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		want, _ := source.Encode(clip)
		if resp.URL != clip || resp.Token != want {
			t.Errorf("unexpected response %+v", resp)
		}
		if resp.Link != "http://example.com/#"+want {
			t.Errorf("expected share link on the request host, got %q", resp.Link)
		}
	})

	t.Run("put token decodes it", func(t *testing.T) {
		other := "http://localhost:9000/v.webm"
		token, _ := source.Encode(other)

		req := httptest.NewRequest(http.MethodPut, "/api/source", bytes.NewBufferString(`{"token":"#`+token+`"}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
		}

		req = httptest.NewRequest(http.MethodGet, "/api/source", nil)
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		var resp sourceResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.URL != other {
			t.Errorf("expected %q, got %q", other, resp.URL)
		}
	})

	t.Run("rejects bad input", func(t *testing.T) {
		for _, body := range []string{`{"url":"ftp://x/y"}`, `{"token":"!!"}`, `{}`, `not json`} {
			req := httptest.NewRequest(http.MethodPut, "/api/source", bytes.NewBufferString(body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("body %s: expected status %d, got %d", body, http.StatusBadRequest, rec.Code)
			}
		}
	})
}
