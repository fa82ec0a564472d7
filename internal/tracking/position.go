// Package tracking turns per-frame hand bounding boxes into movement magnitudes.
package tracking

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned for non-finite coordinates or magnitudes.
var ErrInvalidInput = errors.New("invalid input")

// PositionSample is a detected hand position reduced to the center of its bounding box.
type PositionSample struct {
	X       float64
	Y       float64
	Width   float64
	Height  float64
	CenterX float64
	CenterY float64
}

// NewPositionSample creates a sample from a bounding box laid out as [x, y, width, height].
// The center point is rounded to the nearest pixel.
func NewPositionSample(bbox [4]float64) (PositionSample, error) {
	for i, v := range bbox {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return PositionSample{}, fmt.Errorf("bbox[%d] = %v: %w", i, v, ErrInvalidInput)
		}
	}

	x, y, w, h := bbox[0], bbox[1], bbox[2], bbox[3]
	return PositionSample{
		X:       x,
		Y:       y,
		Width:   w,
		Height:  h,
		CenterX: roundHalfUp(x + w/2),
		CenterY: roundHalfUp(y + h/2),
	}, nil
}

// DistanceTo returns the Euclidean distance between the center points of two samples.
func (p PositionSample) DistanceTo(other PositionSample) float64 {
	dx := p.CenterX - other.CenterX
	dy := p.CenterY - other.CenterY
	return math.Sqrt(dx*dx + dy*dy)
}

// roundHalfUp rounds .5 toward positive infinity, so -2.5 becomes -2.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
