package capture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"
)

// ErrNoPreview is returned before the first frame has been published.
var ErrNoPreview = errors.New("no preview frame yet")

var boxColor = color.RGBA{R: 0, G: 220, B: 120, A: 255}

// Preview holds the most recent frame, annotated with hand boxes, for the
// MJPEG stream.
type Preview struct {
	mu    sync.Mutex
	frame gocv.Mat
	seq   uint64
}

// NewPreview creates an empty preview.
func NewPreview() *Preview {
	return &Preview{frame: gocv.NewMat()}
}

// Publish copies frame into the preview and draws each box [x, y, w, h] on it.
// The caller keeps ownership of frame.
func (p *Preview) Publish(frame *gocv.Mat, boxes ...[4]float64) {
	if frame == nil || frame.Empty() {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	frame.CopyTo(&p.frame)
	for _, b := range boxes {
		r := image.Rect(int(b[0]), int(b[1]), int(b[0]+b[2]), int(b[1]+b[3]))
		gocv.Rectangle(&p.frame, r, boxColor, 2)
	}
	p.seq++
}

// Seq increases every time a frame is published.
func (p *Preview) Seq() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seq
}

// JPEG encodes the current preview frame.
func (p *Preview) JPEG() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.frame.Empty() {
		return nil, ErrNoPreview
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, p.frame)
	if err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...), nil
}

// Close releases the preview frame.
func (p *Preview) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frame.Close()
}
