package series

import "github.com/anggasct/trafficsim/pkg/core"

// DefaultCapacity is the number of samples the chart keeps
const DefaultCapacity = 12

// Window is a FIFO of the most recent samples, oldest first
type Window struct {
	capacity int
	samples  []core.Sample
}

// NewWindow creates a window; a non-positive capacity means DefaultCapacity
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Window{capacity: capacity, samples: make([]core.Sample, 0, capacity)}
}

// Append adds samples at the end, evicting the oldest beyond capacity
func (w *Window) Append(samples ...core.Sample) {
	w.samples = append(w.samples, samples...)
	if over := len(w.samples) - w.capacity; over > 0 {
		kept := make([]core.Sample, w.capacity)
		copy(kept, w.samples[over:])
		w.samples = kept
	}
}

// List returns a copy of the samples, oldest first
func (w *Window) List() []core.Sample {
	out := make([]core.Sample, len(w.samples))
	copy(out, w.samples)
	return out
}

// Len returns the number of samples held
func (w *Window) Len() int {
	return len(w.samples)
}

// Capacity returns the maximum number of samples
func (w *Window) Capacity() int {
	return w.capacity
}

// Latest returns the newest sample
func (w *Window) Latest() (core.Sample, bool) {
	if len(w.samples) == 0 {
		return core.Sample{}, false
	}
	return w.samples[len(w.samples)-1], true
}
