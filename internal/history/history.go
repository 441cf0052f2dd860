// Package history keeps a bounded in-memory ring of the most recent
// classified points for the HTTP API and the live feed. Nothing here is
// persisted; the ring is the rendering buffer, not a data store.
package history

import (
	"sync"

	"github.com/viniciushammett/go-stream-anomaly-detector/internal/stream"
)

type Ring struct {
	mu   sync.RWMutex
	buf  []stream.Point
	head int
	n    int
}

func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 500
	}
	return &Ring{buf: make([]stream.Point, capacity)}
}

// Record implements stream.Sink.
func (r *Ring) Record(p stream.Point) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.n < len(r.buf) {
		r.buf[(r.head+r.n)%len(r.buf)] = p
		r.n++
		return
	}
	r.buf[r.head] = p
	r.head = (r.head + 1) % len(r.buf)
}

// Recent returns up to limit of the newest points, oldest-first.
// limit <= 0 means all held points.
func (r *Ring) Recent(limit int) []stream.Point {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := r.n
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]stream.Point, n)
	start := r.n - n
	for i := 0; i < n; i++ {
		out[i] = r.buf[(r.head+start+i)%len(r.buf)]
	}
	return out
}

func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.n
}
