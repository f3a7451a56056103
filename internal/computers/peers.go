package computers

import "fbwsim/internal/bus"

// Peers is the set of outputs published at the end of a tick. Units read
// the previous tick's Peers, never the one being produced.
type Peers struct {
	Elac [2]Outputs
	Sec  [3]Outputs
	Fcdc [2]Outputs
	Fac  [2]Outputs
}

// Get returns the published outputs of id, or nil for an unknown unit.
func (p *Peers) Get(id ID) *Outputs {
	if p == nil || id.Index < 1 {
		return nil
	}
	i := id.Index - 1
	switch id.Kind {
	case KindELAC:
		if i < len(p.Elac) {
			return &p.Elac[i]
		}
	case KindSEC:
		if i < len(p.Sec) {
			return &p.Sec[i]
		}
	case KindFCDC:
		if i < len(p.Fcdc) {
			return &p.Fcdc[i]
		}
	case KindFAC:
		if i < len(p.Fac) {
			return &p.Fac[i]
		}
	}
	return nil
}

// Set stores out under its own ID.
func (p *Peers) Set(out Outputs) {
	if slot := p.Get(out.ID); slot != nil {
		*slot = out
	}
}

// peer returns the last published outputs of id; a unit that has never
// published reads as failed.
func (in *Inputs) peer(id ID) Outputs {
	if o := in.Peers.Get(id); o != nil {
		return *o
	}
	return Outputs{ID: id}
}

// facWord returns the discrete word of the first FAC publishing a valid
// one.
func facWord(in *Inputs) bus.Value {
	for _, id := range []ID{FAC1, FAC2} {
		if w := in.peer(id).Fac.DiscreteWord; w.Valid() {
			return w
		}
	}
	return bus.Failed()
}

// elacBus returns the ELAC bus of the ELAC engaged in the given axis, or
// of the first ELAC with a valid status word.
func elacBus(in *Inputs, axis Axis) (ElacBus, bool) {
	if m := in.Masters[axis]; m.Kind == KindELAC {
		if b := in.peer(m).Elac; b.StatusWord.Valid() {
			return b, true
		}
	}
	for _, id := range []ID{ELAC1, ELAC2} {
		if b := in.peer(id).Elac; b.StatusWord.Valid() {
			return b, true
		}
	}
	return ElacBus{}, false
}
