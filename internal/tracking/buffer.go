package tracking

import (
	"fmt"
	"math"
	"sync"
)

// Buffer accumulates movement magnitudes for one decision window.
// The detection loop pushes into it while the decision loop drains it.
type Buffer struct {
	mu     sync.Mutex
	values []float64
}

// NewBuffer creates an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{values: make([]float64, 0, 64)}
}

// Push appends a magnitude. Negative and non-finite values are rejected.
func (b *Buffer) Push(m float64) error {
	if math.IsNaN(m) || math.IsInf(m, 0) || m < 0 {
		return fmt.Errorf("magnitude %v: %w", m, ErrInvalidInput)
	}

	b.mu.Lock()
	b.values = append(b.values, m)
	b.mu.Unlock()
	return nil
}

// Drain returns the accumulated magnitudes in push order and clears the buffer.
func (b *Buffer) Drain() []float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.values
	b.values = make([]float64, 0, cap(out))
	return out
}

// Len returns the number of buffered magnitudes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.values)
}

// Total returns the sum of the buffered magnitudes without draining.
func (b *Buffer) Total() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	var sum float64
	for _, v := range b.values {
		sum += v
	}
	return sum
}
