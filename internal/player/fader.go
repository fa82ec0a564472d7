// Package player applies volume decisions to an output device.
//
// A Fader eases the applied volume toward the latest decision at a fixed
// rate and hands every intermediate value to a Sink.
package player

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/ayusman/shakehands/internal/logging"
	"github.com/ayusman/shakehands/internal/metrics"
	"github.com/ayusman/shakehands/internal/volume"
)

// DefaultInterval matches a 16 Hz refresh.
const DefaultInterval = time.Second / 16

// DefaultStep is the largest change applied per tick, in volume points.
const DefaultStep = 2.0

// Fader moves the applied volume toward a target in bounded steps.
type Fader struct {
	sink Sink
	step float64

	mu      sync.Mutex
	current float64
	target  float64
	applied bool
}

// NewFader creates a fader starting at initial (0-100). A non-positive
// step jumps straight to the target.
func NewFader(sink Sink, step, initial float64) *Fader {
	initial = clamp(initial)
	return &Fader{
		sink:    sink,
		step:    step,
		current: initial,
		target:  initial,
	}
}

// SetTarget sets the volume the fader converges to.
func (f *Fader) SetTarget(v float64) {
	f.mu.Lock()
	f.target = clamp(v)
	f.mu.Unlock()
}

// Target returns the volume being faded to.
func (f *Fader) Target() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.target
}

// Current returns the most recently applied volume.
func (f *Fader) Current() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Tick advances one step and pushes the new level to the sink. The sink
// is only called when the level changed, or once on the first tick.
func (f *Fader) Tick(ctx context.Context) error {
	f.mu.Lock()
	next := approach(f.current, f.target, f.step)
	changed := next != f.current || !f.applied
	f.current = next
	f.applied = true
	f.mu.Unlock()

	if !changed {
		return nil
	}

	metrics.AppliedVolume.Set(next)
	if err := f.sink.SetVolume(ctx, next/volume.MaxVolume); err != nil {
		metrics.SinkErrorsTotal.Inc()
		return err
	}
	return nil
}

// Run ticks every interval until ctx is cancelled.
func (f *Fader) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := f.Tick(ctx); err != nil {
				logging.Warnf("apply volume: %v", err)
			}
		}
	}
}

func approach(current, target, step float64) float64 {
	if step <= 0 || math.Abs(target-current) <= step {
		return target
	}
	if target > current {
		return current + step
	}
	return current - step
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(volume.MaxVolume, v))
}
