// Package detector finds hands in video frames.
package detector

import (
	"sort"

	"gocv.io/x/gocv"
)

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the hands found in it.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]Hand, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to keep per frame.
	MaxHands int

	// MinConfidence is the minimum detection score (0.0-1.0). Low values
	// let faces through as hands.
	MinConfidence float64

	// IoUThreshold is the overlap above which the weaker of two boxes is dropped.
	IoUThreshold float64
}

// DefaultConfig returns a Config tuned for tracking a single hand.
func DefaultConfig() Config {
	return Config{
		MaxHands:      1,
		MinConfidence: 0.8,
		IoUThreshold:  0.8,
	}
}

// Filter drops hands below MinConfidence, suppresses overlapping boxes and
// keeps at most MaxHands, strongest first.
func Filter(hands []Hand, cfg Config) []Hand {
	kept := make([]Hand, 0, len(hands))
	for _, h := range hands {
		if h.Score >= cfg.MinConfidence {
			kept = append(kept, h)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})

	result := make([]Hand, 0, len(kept))
	for _, h := range kept {
		overlaps := false
		for _, r := range result {
			if IoU(h.Box, r.Box) > cfg.IoUThreshold {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		result = append(result, h)
		if cfg.MaxHands > 0 && len(result) >= cfg.MaxHands {
			break
		}
	}

	return result
}
