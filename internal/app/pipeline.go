package app

import (
	"time"

	"github.com/ayusman/shakehands/internal/detector"
	"github.com/ayusman/shakehands/internal/logging"
	"github.com/ayusman/shakehands/internal/metrics"
	"github.com/ayusman/shakehands/internal/store"
	"github.com/ayusman/shakehands/internal/volume"
)

// runDetection reads frames at DetectionFPS and feeds hand movement into
// the current window.
//
// Per frame:
// 1. Read and publish the frame to the preview
// 2. Skip detection when the motion gate stays closed
// 3. Detect hands and keep the strongest one
// 4. Turn its box into a movement magnitude and buffer it
//
// Frames without a hand or without motion add nothing to the window, so a
// still or absent hand reads as stillness.
func (a *App) runDetection(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / time.Duration(a.config.DetectionFPS))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}
			a.processFrame()
		}
	}
}

func (a *App) processFrame() {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		metrics.FramesTotal.WithLabelValues(metrics.FrameError).Inc()
		logging.Debugf("read frame: %v", err)
		return
	}
	defer frame.Close()

	if a.motion != nil {
		if open, _ := a.motion.Open(frame); !open {
			a.preview.Publish(frame)
			metrics.FramesTotal.WithLabelValues(metrics.FrameNoMotion).Inc()
			return
		}
	}

	hands, err := a.Detector().Detect(frame)
	if err != nil {
		a.preview.Publish(frame)
		metrics.FramesTotal.WithLabelValues(metrics.FrameError).Inc()
		logging.Warnf("detect hands: %v", err)
		return
	}

	hands = detector.Filter(hands, a.config.DetectorConfig)
	boxes := make([][4]float64, len(hands))
	for i, h := range hands {
		boxes[i] = h.Box
	}
	a.preview.Publish(frame, boxes...)

	a.observe(hands)
}

// observe feeds already filtered hands to the tracker. Only the first hand
// is tracked.
func (a *App) observe(hands []detector.Hand) {
	if len(hands) == 0 {
		metrics.FramesTotal.WithLabelValues(metrics.FrameNoHand).Inc()
		return
	}
	metrics.FramesTotal.WithLabelValues(metrics.FrameHand).Inc()

	magnitude, ok, err := a.tracker.Observe(hands[0].Box)
	if err != nil {
		logging.Warnf("track hand: %v", err)
		return
	}
	if !ok {
		return
	}

	if err := a.buffer.Push(magnitude); err != nil {
		logging.Warnf("buffer movement: %v", err)
	}
}

// runDecisions takes one decision per DecisionDelay. The timer is re-armed
// only after a decision completes.
func (a *App) runDecisions(stop <-chan struct{}) {
	timer := time.NewTimer(a.config.DecisionDelay)
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-timer.C:
			if a.IsEnabled() {
				a.decide()
			}
			timer.Reset(a.config.DecisionDelay)
		}
	}
}

// decide drains the window, runs the controller and fans the result out.
func (a *App) decide() volume.Decision {
	window := a.buffer.Drain()
	d := a.controller.Evaluate(window)

	metrics.DecisionsTotal.WithLabelValues(string(d.Direction)).Inc()
	metrics.TargetVolume.Set(d.Volume)
	metrics.WindowMovement.Observe(d.Total)

	a.fader.SetTarget(d.Volume)
	a.persist(d)

	logging.Debugf("decision %s: movement %.1f over %d samples, volume %.0f -> %.0f",
		d.Direction, d.Total, d.Samples, d.Previous, d.Volume)

	a.listenersMu.RLock()
	listeners := append([]DecisionListener(nil), a.listeners...)
	a.listenersMu.RUnlock()
	for _, l := range listeners {
		l(d)
	}

	return d
}

func (a *App) persist(d volume.Decision) {
	s := a.config.Store
	if s == nil {
		return
	}

	if err := s.States().Save(d.State); err != nil {
		logging.Errorf("save volume state: %v", err)
	}
	if err := s.Decisions().Create(store.NewDecision(d)); err != nil {
		logging.Errorf("record decision: %v", err)
	}

	a.decisions++
	if a.decisions%pruneEvery == 0 {
		if _, err := s.Decisions().Prune(a.config.HistoryLimit); err != nil {
			logging.Warnf("prune decisions: %v", err)
		}
	}
}
