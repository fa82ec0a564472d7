// Package app wires the camera, hand tracking, volume controller and fader together.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ayusman/shakehands/internal/capture"
	"github.com/ayusman/shakehands/internal/detector"
	"github.com/ayusman/shakehands/internal/logging"
	"github.com/ayusman/shakehands/internal/player"
	"github.com/ayusman/shakehands/internal/store"
	"github.com/ayusman/shakehands/internal/tracking"
	"github.com/ayusman/shakehands/internal/volume"
)

// Pipeline defaults.
const (
	DefaultDetectionFPS  = 15
	DefaultDecisionDelay = time.Second
	// DefaultHistoryLimit is how many decisions are kept in the database.
	DefaultHistoryLimit = 1000
	// pruneEvery is how many decisions pass between history prunes.
	pruneEvery = 100
)

// Config holds configuration options for the application.
type Config struct {
	Store *store.Store

	// Camera defaults to a device camera built from CameraOptions.
	Camera        capture.Camera
	CameraOptions capture.Options

	// Detector defaults to the MediaPipe service, falling back to a mock.
	Detector       detector.Detector
	DetectorConfig detector.Config

	Volume volume.Config

	DetectionFPS int
	// MotionThresh is the percentage of changed pixels that opens the
	// motion gate. Zero or less disables the gate.
	MotionThresh  float64
	DecisionDelay time.Duration

	// Sink defaults to player.LogSink.
	Sink player.Sink
	// FadeStep defaults to player.DefaultStep. A negative step applies
	// each decision at once.
	FadeStep     float64
	FadeInterval time.Duration

	HistoryLimit int
}

// DecisionListener is called after every decision.
type DecisionListener func(volume.Decision)

// App is the main application that turns hand movement into volume.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionGate
	detector   detector.Detector
	preview    *capture.Preview
	tracker    *tracking.Tracker
	buffer     *tracking.Buffer
	controller *volume.Controller
	fader      *player.Fader

	enabled   bool
	mu        sync.RWMutex
	stopCh    chan struct{}
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	decisions int

	listenersMu sync.RWMutex
	listeners   []DecisionListener
}

// New creates a new App. Saved controller state and a saved volume policy
// are restored from the store when present.
func New(config Config) (*App, error) {
	if config.DetectionFPS <= 0 {
		config.DetectionFPS = DefaultDetectionFPS
	}
	if config.DecisionDelay <= 0 {
		config.DecisionDelay = DefaultDecisionDelay
	}
	if config.FadeStep == 0 {
		config.FadeStep = player.DefaultStep
	}
	if config.FadeInterval <= 0 {
		config.FadeInterval = player.DefaultInterval
	}
	if config.HistoryLimit <= 0 {
		config.HistoryLimit = DefaultHistoryLimit
	}
	if config.DetectorConfig == (detector.Config{}) {
		config.DetectorConfig = detector.DefaultConfig()
	}
	if config.Volume == (volume.Config{}) {
		config.Volume = volume.DefaultConfig()
	}

	volumeConfig, state := config.Volume, volume.InitialState()
	if config.Store != nil {
		volumeConfig = loadVolumeConfig(config.Store, volumeConfig)
		state = loadState(config.Store, state)
	}

	controller, err := volume.NewControllerWithState(volumeConfig, state)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:     config,
		camera:     config.Camera,
		detector:   config.Detector,
		preview:    capture.NewPreview(),
		tracker:    tracking.NewTracker(),
		buffer:     tracking.NewBuffer(),
		controller: controller,
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(config.CameraOptions)
	}
	if config.MotionThresh > 0 {
		a.motion = capture.NewMotionGate(config.MotionThresh)
	}

	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(config.DetectorConfig); err == nil {
			a.detector = mp
			logging.Infof("using MediaPipe hand detection")
		} else {
			logging.Warnf("MediaPipe not available (%v), using mock detector", err)
			a.detector = detector.NewMockDetector()
		}
	}

	sink := config.Sink
	if sink == nil {
		sink = player.LogSink{}
	}
	a.fader = player.NewFader(sink, config.FadeStep, controller.Volume())

	return a, nil
}

func loadVolumeConfig(s *store.Store, fallback volume.Config) volume.Config {
	var saved volume.Config
	err := s.Settings().GetJSON(store.KeyVolumeConfig, &saved)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fallback
	case err != nil:
		logging.Warnf("ignoring saved volume config: %v", err)
		return fallback
	}
	if err := saved.Validate(); err != nil {
		logging.Warnf("ignoring saved volume config: %v", err)
		return fallback
	}
	return saved
}

func loadState(s *store.Store, fallback volume.State) volume.State {
	state, err := s.States().Load()
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fallback
	case err != nil:
		logging.Warnf("ignoring saved volume state: %v", err)
		return fallback
	}
	logging.Infof("restored volume %.0f", state.Volume)
	return state
}

// SetEnabled enables or disables hand tracking. Re-enabling starts a fresh
// anchor and an empty window.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	was := a.enabled
	a.enabled = enabled
	a.mu.Unlock()

	if enabled && !was {
		a.tracker.Reset()
		a.buffer.Drain()
		if a.motion != nil {
			a.motion.Reset()
		}
	}
}

// IsEnabled returns whether hand tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// OnDecision registers a listener called after every decision.
func (a *App) OnDecision(l DecisionListener) {
	a.listenersMu.Lock()
	defer a.listenersMu.Unlock()
	a.listeners = append(a.listeners, l)
}

// SetVolumeConfig persists the volume policy and then makes it active.
// A policy that cannot be saved is not applied.
func (a *App) SetVolumeConfig(cfg volume.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if a.config.Store != nil {
		if err := a.config.Store.Settings().SetJSON(store.KeyVolumeConfig, cfg); err != nil {
			return fmt.Errorf("save volume config: %w", err)
		}
	}

	if err := a.controller.SetConfig(cfg); err != nil {
		return err
	}
	a.fader.SetTarget(a.controller.Volume())

	if a.config.Store != nil {
		if err := a.config.Store.States().Save(a.controller.State()); err != nil {
			logging.Warnf("save volume state: %v", err)
		}
	}
	return nil
}

// VolumeConfig returns the active volume policy.
func (a *App) VolumeConfig() volume.Config {
	return a.controller.Config()
}

// State returns the controller state.
func (a *App) State() volume.State {
	return a.controller.State()
}

// AppliedVolume returns the volume most recently pushed to the sink.
func (a *App) AppliedVolume() float64 {
	return a.fader.Current()
}

// Start opens the camera and begins the detection, decision and fade loops.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.config.DetectionFPS)

	a.stopCh = make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.wg.Add(3)
	go func(stop <-chan struct{}) {
		defer a.wg.Done()
		a.runDetection(stop)
	}(a.stopCh)
	go func(stop <-chan struct{}) {
		defer a.wg.Done()
		a.runDecisions(stop)
	}(a.stopCh)
	go func() {
		defer a.wg.Done()
		a.fader.Run(ctx, a.config.FadeInterval)
	}()

	logging.Infof("pipeline started (%d fps, decision every %s)", a.config.DetectionFPS, a.config.DecisionDelay)
	return nil
}

// Stop halts the loops, saves the controller state and releases the camera.
func (a *App) Stop() {
	a.mu.Lock()
	if a.stopCh == nil {
		a.mu.Unlock()
		return
	}
	close(a.stopCh)
	a.stopCh = nil
	a.cancel()
	a.mu.Unlock()

	a.wg.Wait()

	if a.config.Store != nil {
		if err := a.config.Store.States().Save(a.controller.State()); err != nil {
			logging.Errorf("save volume state: %v", err)
		}
	}

	if err := a.camera.Close(); err != nil {
		logging.Warnf("close camera: %v", err)
	}

	logging.Infof("pipeline stopped")
}

// Close stops the app and releases the detector and frame buffers.
func (a *App) Close() {
	a.Stop()

	if a.motion != nil {
		a.motion.Close()
	}
	a.preview.Close()

	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			logging.Warnf("close detector: %v", err)
		}
	}
}

// Running reports whether the loops are active.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Preview returns the annotated preview frame holder.
func (a *App) Preview() *capture.Preview {
	return a.preview
}

// Controller returns the volume controller.
func (a *App) Controller() *volume.Controller {
	return a.controller
}

// Buffer returns the movement buffer of the current window.
func (a *App) Buffer() *tracking.Buffer {
	return a.buffer
}

// Fader returns the volume fader.
func (a *App) Fader() *player.Fader {
	return a.fader
}
