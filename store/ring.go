package store

// Ring is a fixed-capacity FIFO sample buffer. When full, appending
// overwrites the oldest sample.
type Ring struct {
	buf   []float64
	idx   int
	count int
}

func NewRing(n int) *Ring {
	if n < 1 {
		n = 1
	}
	return &Ring{buf: make([]float64, n)}
}

func (r *Ring) Add(v float64) {
	r.buf[r.idx] = v
	r.idx++
	if r.idx >= len(r.buf) {
		r.idx = 0
	}
	if r.count < len(r.buf) {
		r.count++
	}
}

func (r *Ring) Len() int { return r.count }

func (r *Ring) Cap() int { return len(r.buf) }

// Values returns the buffered samples oldest-first.
func (r *Ring) Values() []float64 {
	out := make([]float64, r.count)
	start := r.idx - r.count
	if start < 0 {
		start += len(r.buf)
	}
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}
	return out
}

// Latest returns the most recent sample, or false when empty.
func (r *Ring) Latest() (float64, bool) {
	if r.count == 0 {
		return 0, false
	}
	last := r.idx - 1
	if last < 0 {
		last = len(r.buf) - 1
	}
	return r.buf[last], true
}

// DropOldest evicts the oldest sample, if any.
func (r *Ring) DropOldest() {
	if r.count > 0 {
		r.count--
	}
}
