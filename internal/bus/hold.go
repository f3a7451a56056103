package bus

// Hold keeps the last valid data of a word so a consumer can continue with
// the last good value when the source stops reporting Normal status.
type Hold struct {
	last float64
	have bool
}

// Update feeds this tick's word and returns the value to use: the word's
// data when valid, the last good data otherwise, or initial when no valid
// word has been seen yet.
func (h *Hold) Update(v Value, initial float64) float64 {
	if v.Valid() {
		h.last = v.Data
		h.have = true
		return v.Data
	}
	if !h.have {
		return initial
	}
	return h.last
}

// Reset forgets the held value.
func (h *Hold) Reset() { *h = Hold{} }
