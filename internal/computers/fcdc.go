package computers

import "fbwsim/internal/bus"

// FCDC discrete word 1 bits.
const (
	FcdcBitElac1Fault   = 11
	FcdcBitElac2Fault   = 12
	FcdcBitSec1Fault    = 13
	FcdcBitSec2Fault    = 14
	FcdcBitSec3Fault    = 15
	FcdcBitNormalLaw    = 16
	FcdcBitAlternateLaw = 17
	FcdcBitDirectLaw    = 18
)

// FCDC discrete word 2 bits.
const (
	FcdcBitCaptGreen           = 11
	FcdcBitCaptRed             = 12
	FcdcBitFoGreen             = 13
	FcdcBitFoRed               = 14
	FcdcBitGroundSpoilersOut   = 15
	FcdcBitSpeedBrakeInhibited = 16
	FcdcBitDualInput           = 17
)

// FcdcBus is the consolidated flight-controls data bus.
type FcdcBus struct {
	DiscreteWord1 bus.Value
	DiscreteWord2 bus.Value

	LeftElevatorDeg  bus.Value
	RightElevatorDeg bus.Value
	THSDeg           bus.Value
	LeftAileronDeg   bus.Value
	RightAileronDeg  bus.Value
	LeftSpoilerDeg   [5]bus.Value
	RightSpoilerDeg  [5]bus.Value
}

// FCDC concentrates the ELAC and SEC buses for the displays and warnings.
type FCDC struct {
	unit
}

func NewFCDC(index int) *FCDC {
	return &FCDC{unit: newUnit(ID{KindFCDC, index})}
}

// ActiveLaw returns the pitch law reported on word 1.
func (b FcdcBus) ActiveLaw() Law {
	w := b.DiscreteWord1
	switch {
	case !w.Valid():
		return LawNone
	case w.Bit(FcdcBitNormalLaw):
		return LawNormal
	case w.Bit(FcdcBitAlternateLaw):
		return LawAlternate
	case w.Bit(FcdcBitDirectLaw):
		return LawDirect
	}
	return LawNone
}

func (f *FCDC) Step(dt float64, in *Inputs) Outputs {
	req := in.request(f.id)
	running, testing := f.power(req, dt)
	if !running {
		return f.fail()
	}

	elac := [2]ElacBus{in.peer(ELAC1).Elac, in.peer(ELAC2).Elac}
	sec := [3]SecBus{in.peer(SEC1).Sec, in.peer(SEC2).Sec, in.peer(SEC3).Sec}

	var w1 bus.Word
	w1.Set(FcdcBitElac1Fault, !elac[0].StatusWord.Valid())
	w1.Set(FcdcBitElac2Fault, !elac[1].StatusWord.Valid())
	w1.Set(FcdcBitSec1Fault, !sec[0].StatusWord.Valid())
	w1.Set(FcdcBitSec2Fault, !sec[1].StatusWord.Valid())
	w1.Set(FcdcBitSec3Fault, !sec[2].StatusWord.Valid())

	// The law comes from the unit selected for pitch last tick; its
	// engaged bit would only show the selection one tick later.
	law := LawNone
	switch m := in.Masters[AxisPitch]; m.Kind {
	case KindELAC:
		if b := in.peer(m).Elac; b.StatusWord.Valid() {
			law = Law(b.PitchLaw.Or(float64(LawNone)))
		}
	case KindSEC:
		if in.peer(m).Sec.StatusWord.Valid() {
			law = LawDirect
		}
	}
	w1.Set(FcdcBitNormalLaw, law == LawNormal)
	w1.Set(FcdcBitAlternateLaw, law == LawAlternate)
	w1.Set(FcdcBitDirectLaw, law == LawDirect)

	src, haveElac := elacBus(in, AxisPitch)
	status := src.StatusWord
	captPrio := status.Bit(ElacBitCaptPriority)
	foPrio := status.Bit(ElacBitFoPriority)
	dual := status.Bit(ElacBitDualInput)

	var w2 bus.Word
	w2.Set(FcdcBitCaptGreen, (captPrio && status.Bit(ElacBitFoDeflected)) || dual)
	w2.Set(FcdcBitCaptRed, foPrio)
	w2.Set(FcdcBitFoGreen, (foPrio && status.Bit(ElacBitCaptDeflected)) || dual)
	w2.Set(FcdcBitFoRed, captPrio)
	w2.Set(FcdcBitDualInput, dual)
	for _, b := range sec {
		if b.StatusWord.Bit(SecBitGroundSpoilersOut) {
			w2.Set(FcdcBitGroundSpoilersOut, true)
		}
		if b.StatusWord.Bit(SecBitSpeedBrakeInhibited) {
			w2.Set(FcdcBitSpeedBrakeInhibited, true)
		}
	}

	var out Outputs
	fb := &out.Fcdc
	fb.DiscreteWord1 = w1.Value(bus.Normal)
	fb.DiscreteWord2 = w2.Value(bus.Normal)
	if haveElac {
		fb.LeftElevatorDeg = src.LeftElevatorDeg
		fb.RightElevatorDeg = src.RightElevatorDeg
		fb.THSDeg = src.THSDeg
		fb.LeftAileronDeg = src.LeftAileronDeg
		fb.RightAileronDeg = src.RightAileronDeg
	} else {
		// Without an ELAC the elevator position comes from a SEC.
		for _, b := range sec[:2] {
			if b.ElevatorDeg.Valid() {
				fb.LeftElevatorDeg = b.ElevatorDeg
				fb.RightElevatorDeg = b.ElevatorDeg
				break
			}
		}
	}
	for i := range fb.LeftSpoilerDeg {
		fb.LeftSpoilerDeg[i] = firstValid(sec[0].LeftSpoilerDeg[i], sec[1].LeftSpoilerDeg[i], sec[2].LeftSpoilerDeg[i])
		fb.RightSpoilerDeg[i] = firstValid(sec[0].RightSpoilerDeg[i], sec[1].RightSpoilerDeg[i], sec[2].RightSpoilerDeg[i])
	}

	out.Status = fb.DiscreteWord1
	out.Available[AxisData] = true
	f.finish(&out, testing || req.Failure != FailureNone)
	return out
}

// firstValid returns the first Normal word. Otherwise the result is FW if
// any source is FW, else NCD.
func firstValid(words ...bus.Value) bus.Value {
	out := bus.NCD()
	for _, w := range words {
		if w.Valid() {
			return w
		}
		if w.Status == bus.FailureWarning {
			out = w
		}
	}
	return out
}
