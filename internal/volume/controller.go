// Package volume decides volume levels from windows of hand movement.
package volume

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// MaxVolume is the upper bound every decision is clamped to.
const MaxVolume = 100.0

// ErrInvalidConfig is returned when a Config or State is out of range.
var ErrInvalidConfig = errors.New("invalid volume config")

// Direction is the branch a decision took.
type Direction string

const (
	// Up means the window's movement exceeded the travel distance.
	Up Direction = "up"
	// Down means the window's movement stayed at or below the travel distance.
	Down Direction = "down"
)

// Config holds the ramp/decay policy.
type Config struct {
	// TravelDistance is the summed movement a window must exceed to raise the volume.
	TravelDistance float64 `json:"travel_distance"`
	// MinIncrease is added on top of the increase counter on every raise.
	MinIncrease float64 `json:"min_increase"`
	// MinDecrease is added on top of the decrease counter on every drop.
	MinDecrease float64 `json:"min_decrease"`
	// MinVolume is the floor (0-100).
	MinVolume float64 `json:"min_volume"`
	// Incremental makes consecutive raises or drops grow by one each window.
	Incremental bool `json:"incremental"`
}

// DefaultConfig returns the policy the application ships with.
func DefaultConfig() Config {
	return Config{
		TravelDistance: 100,
		MinIncrease:    4,
		MinDecrease:    5,
		MinVolume:      5,
		Incremental:    true,
	}
}

// Validate checks that every field is finite and in range.
func (c Config) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"travel_distance", c.TravelDistance},
		{"min_increase", c.MinIncrease},
		{"min_decrease", c.MinDecrease},
		{"min_volume", c.MinVolume},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return fmt.Errorf("%s = %v: %w", f.name, f.v, ErrInvalidConfig)
		}
	}
	if c.MinVolume > MaxVolume {
		return fmt.Errorf("min_volume = %v exceeds %v: %w", c.MinVolume, MaxVolume, ErrInvalidConfig)
	}
	return nil
}

// State is the rolling state carried between decisions.
type State struct {
	Volume        float64 `json:"volume"`
	IncreaseCount int     `json:"increase_count"`
	DecreaseCount int     `json:"decrease_count"`
}

// InitialState is the state a fresh controller starts from.
func InitialState() State {
	return State{
		Volume:        50,
		IncreaseCount: 1,
		DecreaseCount: 1,
	}
}

// Decision records one transition of the controller.
type Decision struct {
	Total     float64   `json:"total"`
	Samples   int       `json:"samples"`
	Direction Direction `json:"direction"`
	Step      float64   `json:"step"`
	Previous  float64   `json:"previous"`
	Volume    float64   `json:"volume"`
	State     State     `json:"state"`
}

// Controller turns a window of movement magnitudes into the next volume.
// It is safe for concurrent use; decisions are serialized.
type Controller struct {
	mu     sync.Mutex
	config Config
	state  State
}

// NewController creates a Controller starting from InitialState.
func NewController(config Config) (*Controller, error) {
	return NewControllerWithState(config, InitialState())
}

// NewControllerWithState creates a Controller resuming from a saved state.
// The saved volume is pulled into [MinVolume, MaxVolume].
func NewControllerWithState(config Config, state State) (*Controller, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := validateState(state); err != nil {
		return nil, err
	}
	state.Volume = clamp(state.Volume, config.MinVolume, MaxVolume)
	return &Controller{config: config, state: state}, nil
}

// Decide consumes one window of magnitudes and returns the new volume.
func (c *Controller) Decide(buffer []float64) float64 {
	return c.Evaluate(buffer).Volume
}

// Evaluate is Decide returning the full record of the transition.
func (c *Controller) Evaluate(buffer []float64) Decision {
	total := sum(buffer)

	c.mu.Lock()
	defer c.mu.Unlock()

	d := Decision{
		Total:    total,
		Samples:  len(buffer),
		Previous: c.state.Volume,
	}

	var next float64
	if total > c.config.TravelDistance {
		c.state.DecreaseCount = 1
		d.Direction = Up
		d.Step = c.config.MinIncrease + float64(c.state.IncreaseCount)
		next = c.state.Volume + d.Step
		if c.config.Incremental {
			c.state.IncreaseCount++
		}
	} else {
		c.state.IncreaseCount = 1
		d.Direction = Down
		d.Step = c.config.MinDecrease + float64(c.state.DecreaseCount)
		next = c.state.Volume - d.Step
		if c.config.Incremental {
			c.state.DecreaseCount++
		}
	}

	c.state.Volume = clamp(next, c.config.MinVolume, MaxVolume)

	d.Volume = c.state.Volume
	d.State = c.state
	return d
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Volume returns the current volume.
func (c *Controller) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Volume
}

// Restore replaces the current state, e.g. with one loaded from storage.
// The volume is pulled into [MinVolume, MaxVolume] of the active policy.
func (c *Controller) Restore(state State) error {
	if err := validateState(state); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	state.Volume = clamp(state.Volume, c.config.MinVolume, MaxVolume)
	c.state = state
	return nil
}

// Config returns the active policy.
func (c *Controller) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

// SetConfig replaces the policy. The current volume is pulled up to the
// new floor right away.
func (c *Controller) SetConfig(config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.config = config
	c.state.Volume = clamp(c.state.Volume, config.MinVolume, MaxVolume)
	return nil
}

func validateState(s State) error {
	if math.IsNaN(s.Volume) || math.IsInf(s.Volume, 0) || s.Volume < 0 || s.Volume > MaxVolume {
		return fmt.Errorf("volume = %v: %w", s.Volume, ErrInvalidConfig)
	}
	if s.IncreaseCount < 1 || s.DecreaseCount < 1 {
		return fmt.Errorf("counters must be >= 1 (got %d, %d): %w", s.IncreaseCount, s.DecreaseCount, ErrInvalidConfig)
	}
	return nil
}

// sum adds the finite magnitudes; NaN and infinities count as zero.
func sum(buffer []float64) float64 {
	var total float64
	for _, v := range buffer {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		total += v
	}
	return total
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
