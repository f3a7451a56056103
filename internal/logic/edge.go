package logic

// RisingEdge reports true for the one tick where its input goes false→true.
type RisingEdge struct {
	prev bool
}

func (e *RisingEdge) Update(in bool) bool {
	out := in && !e.prev
	e.prev = in
	return out
}

// SRFlipFlop is a set/reset latch. When both inputs are true the
// configured priority decides.
type SRFlipFlop struct {
	ResetPriority bool
	q             bool
}

func (f *SRFlipFlop) Update(set, reset bool) bool {
	switch {
	case set && reset:
		f.q = !f.ResetPriority
	case set:
		f.q = true
	case reset:
		f.q = false
	}
	return f.q
}

func (f *SRFlipFlop) Output() bool { return f.q }

// Hysteresis switches on above Upper and off below Lower.
type Hysteresis struct {
	Upper, Lower float64
	on           bool
}

func (h *Hysteresis) Update(x float64) bool {
	if x > h.Upper {
		h.on = true
	} else if x < h.Lower {
		h.on = false
	}
	return h.on
}

// Reset switches the output off.
func (h *Hysteresis) Reset() { h.on = false }
