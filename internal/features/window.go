package features

import "math"

// window keeps a running sum over the most recent size values. The sum is
// compensated (Neumaier) so a large value leaving the window does not wipe
// out the small values still inside it.
type window struct {
	size  int
	buf   []float64
	head  int
	count int
	sum   float64
	comp  float64
}

func newWindow(size int) *window {
	return &window{size: size, buf: make([]float64, size)}
}

func (w *window) push(v float64) {
	if w.count == w.size {
		w.add(-w.buf[w.head])
	} else {
		w.count++
	}
	w.buf[w.head] = v
	w.add(v)
	w.head = (w.head + 1) % w.size
}

func (w *window) add(v float64) {
	t := w.sum + v
	if math.Abs(w.sum) >= math.Abs(v) {
		w.comp += (w.sum - t) + v
	} else {
		w.comp += (v - t) + w.sum
	}
	w.sum = t
}

func (w *window) full() bool {
	return w.count == w.size
}

func (w *window) mean() float64 {
	if w.count == 0 {
		return 0
	}
	return (w.sum + w.comp) / float64(w.count)
}
