package alerts

import (
	"github.com/samber/lo"

	"github.com/anggasct/trafficsim/pkg/core"
)

// DefaultCapacity is how many alerts the rolling buffer keeps
const DefaultCapacity = 5

// Buffer keeps the most recent alerts, newest first
type Buffer struct {
	capacity int
	items    []core.Alert
}

// NewBuffer creates a buffer; a non-positive capacity means DefaultCapacity
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{capacity: capacity, items: make([]core.Alert, 0, capacity)}
}

// Push prepends alerts in emission order, so the last one emitted ends up
// first, and evicts the oldest entries beyond capacity
func (b *Buffer) Push(alerts ...core.Alert) {
	for _, a := range alerts {
		b.items = append([]core.Alert{a}, b.items...)
	}
	if len(b.items) > b.capacity {
		b.items = b.items[:b.capacity]
	}
}

// Dismiss removes the alert with the given id. It reports whether one was removed.
func (b *Buffer) Dismiss(id string) bool {
	before := len(b.items)
	b.items = lo.Reject(b.items, func(a core.Alert, _ int) bool {
		return a.ID == id
	})
	return len(b.items) != before
}

// List returns a copy of the buffered alerts, newest first
func (b *Buffer) List() []core.Alert {
	out := make([]core.Alert, len(b.items))
	copy(out, b.items)
	return out
}

// Len returns the number of buffered alerts
func (b *Buffer) Len() int {
	return len(b.items)
}

// Capacity returns the maximum number of buffered alerts
func (b *Buffer) Capacity() int {
	return b.capacity
}

// Clear drops every alert
func (b *Buffer) Clear() {
	b.items = b.items[:0]
}
