package player

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ayusman/shakehands/internal/logging"
	"github.com/ayusman/shakehands/internal/plugin"
)

// ErrSinkRejected is returned when a plugin answers a volume request with success=false.
var ErrSinkRejected = errors.New("volume sink rejected request")

// Sink receives applied volume levels in the range 0..1.
type Sink interface {
	SetVolume(ctx context.Context, level float64) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, level float64) error

// SetVolume calls f.
func (f SinkFunc) SetVolume(ctx context.Context, level float64) error {
	return f(ctx, level)
}

// LogSink only logs levels. Used when no volume plugin is installed.
type LogSink struct{}

// SetVolume logs the level at debug.
func (LogSink) SetVolume(_ context.Context, level float64) error {
	logging.Debugf("volume level %.2f", level)
	return nil
}

// Runner executes a plugin request. Satisfied by *plugin.Executor.
type Runner interface {
	Execute(ctx context.Context, p *plugin.Plugin, req *plugin.Request) (*plugin.Response, error)
}

// PluginSink forwards levels to a plugin action, e.g. system-control/volume-set.
type PluginSink struct {
	runner Runner
	plugin *plugin.Plugin
	action string
}

// NewPluginSink resolves the plugin action through the manager.
func NewPluginSink(manager *plugin.Manager, runner Runner, name, action string) (*PluginSink, error) {
	p, err := manager.Resolve(name, action)
	if err != nil {
		return nil, err
	}
	return &PluginSink{runner: runner, plugin: p, action: action}, nil
}

type levelParams struct {
	Level float64 `json:"level"`
}

// SetVolume sends {"level": level} to the plugin.
func (s *PluginSink) SetVolume(ctx context.Context, level float64) error {
	params, err := json.Marshal(levelParams{Level: level})
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}

	resp, err := s.runner.Execute(ctx, s.plugin, &plugin.Request{
		Action: s.action,
		Source: "shakehands",
		Params: params,
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%s/%s: %s: %w", s.plugin.Manifest.Name, s.action, resp.Error, ErrSinkRejected)
	}
	return nil
}

// RecordingSink keeps every level it receives. Used in tests and dry runs.
type RecordingSink struct {
	mu     sync.Mutex
	levels []float64
	err    error
}

// SetVolume records level, or returns the configured error.
func (r *RecordingSink) SetVolume(_ context.Context, level float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.levels = append(r.levels, level)
	return nil
}

// SetError makes subsequent calls fail with err.
func (r *RecordingSink) SetError(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

// Levels returns a copy of the recorded levels.
func (r *RecordingSink) Levels() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.levels...)
}
