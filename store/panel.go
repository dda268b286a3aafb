package store

import "time"

// MaxPoints is the default per-stream history capacity.
const MaxPoints = 150

// Panel holds the operator-facing plotting state: which streams are
// selected, their bounded value histories, and the shared label track that
// keeps the x-axis aligned with the longest history.
//
// All mutation happens inside a single Update turn of the event loop, so
// Panel needs no locking.
type Panel struct {
	maxPoints int
	order     []string
	histories map[string]*Ring
	labels    *labelRing
}

func NewPanel(maxPoints int) *Panel {
	if maxPoints < 1 {
		maxPoints = MaxPoints
	}
	return &Panel{
		maxPoints: maxPoints,
		histories: make(map[string]*Ring),
		labels:    newLabelRing(maxPoints),
	}
}

// Toggle flips membership of name in the selection set and returns the new
// membership. Selecting creates an empty history; deselecting destroys the
// history so a reselected stream always starts clean.
func (p *Panel) Toggle(name string) bool {
	if _, ok := p.histories[name]; ok {
		delete(p.histories, name)
		for i, n := range p.order {
			if n == name {
				p.order = append(p.order[:i], p.order[i+1:]...)
				break
			}
		}
		p.syncLabels()
		return false
	}
	p.histories[name] = NewRing(p.maxPoints)
	p.order = append(p.order, name)
	p.syncLabels()
	return true
}

func (p *Panel) Selected(name string) bool {
	_, ok := p.histories[name]
	return ok
}

// Selection returns the selected stream names in selection order.
func (p *Panel) Selection() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

func (p *Panel) Empty() bool { return len(p.order) == 0 }

// Record appends value to name's history and reports whether it was kept.
// Samples for unselected names are dropped, so a reading that races a
// deselection cannot resurrect the history.
func (p *Panel) Record(name string, value float64) bool {
	h, ok := p.histories[name]
	if !ok {
		return false
	}
	h.Add(value)
	return true
}

// History returns name's samples oldest-first, or nil when not selected.
func (p *Panel) History(name string) []float64 {
	h, ok := p.histories[name]
	if !ok {
		return nil
	}
	return h.Values()
}

// Latest returns the most recent sample for name.
func (p *Panel) Latest(name string) (float64, bool) {
	h, ok := p.histories[name]
	if !ok {
		return 0, false
	}
	return h.Latest()
}

// MaxLen is the length of the longest selected history.
func (p *Panel) MaxLen() int {
	n := 0
	for _, h := range p.histories {
		if h.Len() > n {
			n = h.Len()
		}
	}
	return n
}

// AdvanceLabels pushes one x-axis tick for a completed pump tick, then
// re-clamps the track. The track length always ends up equal to the longest
// selected history: a tick where every selected stream was missing from the
// snapshot adds no net label, and deselecting the longest stream sheds the
// excess immediately.
func (p *Panel) AdvanceLabels(t time.Time) {
	p.labels.add(t)
	p.syncLabels()
}

// Labels returns the label track oldest-first.
func (p *Panel) Labels() []time.Time { return p.labels.values() }

func (p *Panel) MaxPoints() int { return p.maxPoints }

func (p *Panel) syncLabels() {
	for p.labels.len() > p.MaxLen() {
		p.labels.dropOldest()
	}
}

// labelRing mirrors Ring for x-axis tick timestamps.
type labelRing struct {
	buf   []time.Time
	idx   int
	count int
}

func newLabelRing(n int) *labelRing {
	if n < 1 {
		n = 1
	}
	return &labelRing{buf: make([]time.Time, n)}
}

func (r *labelRing) add(t time.Time) {
	r.buf[r.idx] = t
	r.idx++
	if r.idx >= len(r.buf) {
		r.idx = 0
	}
	if r.count < len(r.buf) {
		r.count++
	}
}

func (r *labelRing) len() int { return r.count }

func (r *labelRing) dropOldest() {
	if r.count > 0 {
		r.count--
	}
}

func (r *labelRing) values() []time.Time {
	out := make([]time.Time, r.count)
	start := r.idx - r.count
	if start < 0 {
		start += len(r.buf)
	}
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}
	return out
}
