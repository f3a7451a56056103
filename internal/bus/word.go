package bus

// Discrete words carry up to 19 bits, numbered from 11 to 29 as on the
// wire. Bit numbers outside that range are ignored.
const (
	FirstBit = 11
	LastBit  = 29
)

// Word accumulates discrete bits before being published as a Value.
type Word struct {
	bits uint32
}

func bitMask(n int) (uint32, bool) {
	if n < FirstBit || n > LastBit {
		return 0, false
	}
	return 1 << uint(n-FirstBit), true
}

// Set sets or clears bit n.
func (w *Word) Set(n int, on bool) {
	m, ok := bitMask(n)
	if !ok {
		return
	}
	if on {
		w.bits |= m
	} else {
		w.bits &^= m
	}
}

// Value publishes the word with status s.
func (w Word) Value(s Status) Value {
	if s != Normal {
		return Value{Status: s}
	}
	return Value{Status: Normal, Data: float64(w.bits)}
}

// Bits returns the raw bit field.
func (w Word) Bits() uint32 { return w.bits }

// Bit returns bit n. An invalid word reads as all bits clear.
func (v Value) Bit(n int) bool {
	return v.BitOr(n, false)
}

// BitOr returns bit n, or fallback when the word is not Normal.
func (v Value) BitOr(n int, fallback bool) bool {
	if !v.Valid() {
		return fallback
	}
	m, ok := bitMask(n)
	if !ok {
		return fallback
	}
	return uint32(v.Data)&m != 0
}
