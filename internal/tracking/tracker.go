package tracking

import (
	"math"
	"sync"
)

// Tracker converts a stream of bounding boxes into movement magnitudes.
//
// The first sample becomes the anchor. Every later sample is measured
// against the anchor, and the magnitude reported is how much that
// distance changed since the previous frame. A hand shaken in place
// keeps swinging its distance to the anchor, which is what drives the
// volume up; a resting hand produces magnitudes near zero.
type Tracker struct {
	mu          sync.Mutex
	anchor      *PositionSample
	lastDist    float64
	hasLastDist bool
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Observe feeds one bounding box to the tracker.
// ok is false while the tracker is still priming (anchor or first distance).
func (t *Tracker) Observe(bbox [4]float64) (magnitude float64, ok bool, err error) {
	sample, err := NewPositionSample(bbox)
	if err != nil {
		return 0, false, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.anchor == nil {
		t.anchor = &sample
		return 0, false, nil
	}

	dist := sample.DistanceTo(*t.anchor)

	if !t.hasLastDist {
		t.lastDist = dist
		t.hasLastDist = true
		return 0, false, nil
	}

	magnitude = math.Abs(math.Abs(dist) - math.Abs(t.lastDist))
	t.lastDist = dist

	return magnitude, true, nil
}

// Reset drops the anchor and the previous distance.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.anchor = nil
	t.lastDist = 0
	t.hasLastDist = false
}

// Anchor returns the anchor sample, if one has been set.
func (t *Tracker) Anchor() (PositionSample, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.anchor == nil {
		return PositionSample{}, false
	}
	return *t.anchor, true
}
