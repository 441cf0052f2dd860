package detector

import "math"

// window is a bounded FIFO over float64 backed by a ring buffer. Once
// full, each push evicts the oldest element. Eviction cost and the
// O(capacity) statistics pass are explicit here rather than hidden in a
// container type.
type window struct {
	buf  []float64
	head int // index of the oldest element
	n    int // number of elements held, <= len(buf)
}

func newWindow(capacity int) *window {
	return &window{buf: make([]float64, capacity)}
}

func (w *window) len() int { return w.n }

func (w *window) push(v float64) {
	if w.n < len(w.buf) {
		w.buf[(w.head+w.n)%len(w.buf)] = v
		w.n++
		return
	}
	// Full: overwrite the oldest slot and advance the head.
	w.buf[w.head] = v
	w.head = (w.head + 1) % len(w.buf)
}

// meanStdDev computes the population mean and standard deviation over the
// current contents.
func (w *window) meanStdDev() (mean, std float64) {
	if w.n == 0 {
		return 0, 0
	}
	var sum float64
	for i := 0; i < w.n; i++ {
		sum += w.buf[(w.head+i)%len(w.buf)]
	}
	mean = sum / float64(w.n)

	var variance float64
	for i := 0; i < w.n; i++ {
		diff := w.buf[(w.head+i)%len(w.buf)] - mean
		variance += diff * diff
	}
	variance /= float64(w.n)
	return mean, math.Sqrt(variance)
}

// values returns a copy of the contents oldest-first.
func (w *window) values() []float64 {
	out := make([]float64, w.n)
	for i := 0; i < w.n; i++ {
		out[i] = w.buf[(w.head+i)%len(w.buf)]
	}
	return out
}
