package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// MotionGate decides whether a frame changed enough from the previous one
// to be worth running hand detection on. A still scene skips the detector
// and simply contributes no movement to the current window.
type MotionGate struct {
	threshold   float64
	blurSize    int
	prevGray    gocv.Mat
	initialized bool
	lastChange  float64
	mu          sync.Mutex
}

const (
	// DefaultBlurSize is the Gaussian kernel size used to smooth sensor noise.
	DefaultBlurSize = 21
	// PixelDiffThreshold is the per-pixel intensity change counted as motion.
	PixelDiffThreshold = 25
)

// NewMotionGate creates a gate that opens when more than threshold percent
// of the pixels changed since the previous frame.
func NewMotionGate(threshold float64) *MotionGate {
	return &MotionGate{
		threshold: threshold,
		blurSize:  DefaultBlurSize,
		prevGray:  gocv.NewMat(),
	}
}

// Open reports whether the frame shows motion and the percentage of changed
// pixels. The first frame only becomes the baseline and never opens the gate.
func (m *MotionGate) Open(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: m.blurSize, Y: m.blurSize}, 0, 0, gocv.BorderDefault)

	if !m.initialized {
		blurred.CopyTo(&m.prevGray)
		m.initialized = true
		m.lastChange = 0
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, PixelDiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(thresh)) / float64(thresh.Rows()*thresh.Cols()) * 100.0

	blurred.CopyTo(&m.prevGray)
	m.lastChange = changed

	return changed > m.threshold, changed
}

// LastChange returns the changed-pixel percentage of the most recent frame.
func (m *MotionGate) LastChange() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastChange
}

// SetThreshold changes the gate threshold. Values <= 0 are ignored.
func (m *MotionGate) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}

// Reset forgets the baseline frame.
func (m *MotionGate) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

// Close releases the baseline frame.
func (m *MotionGate) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

func (m *MotionGate) release() {
	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.initialized = false
	m.lastChange = 0
}
