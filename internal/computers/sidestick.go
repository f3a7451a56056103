package computers

import (
	"math"

	"fbwsim/internal/logic"
)

const (
	// A stick counts as deflected beyond this fraction of full travel.
	stickDeflectedThreshold = 0.05
	// Holding a takeover button this long keeps priority after release.
	priorityLatchSeconds = 40
)

// stickOrder is the consolidated sidestick order after priority logic.
type stickOrder struct {
	Pitch     float64
	Roll      float64
	Priority  [2]bool
	Deflected [2]bool
	DualInput bool
}

// sidestickPriority arbitrates the two sidesticks. Pressing a takeover
// button gives that side priority and disables the other stick; the last
// button pressed wins. Without priority both inputs are summed and
// saturated at full deflection.
type sidestickPriority struct {
	press    [2]logic.RisingEdge
	hold     logic.ConfirmNode
	side     Side
	has      bool
	locked   bool
	initDone bool
}

func (s *sidestickPriority) update(p *PilotInputs, dt float64) stickOrder {
	if !s.initDone {
		s.hold = logic.NewConfirmRising(priorityLatchSeconds)
		s.initDone = true
	}

	for i := range s.press {
		if s.press[i].Update(p.PriorityButton[i]) {
			s.side, s.has, s.locked = Side(i), true, false
		}
	}
	held := s.has && p.PriorityButton[s.side]
	if s.hold.Update(held, dt) {
		s.locked = true
	}
	if !held && !s.locked {
		s.has = false
	}

	var o stickOrder
	for i := 0; i < 2; i++ {
		o.Deflected[i] = math.Abs(p.SidestickPitch[i]) > stickDeflectedThreshold ||
			math.Abs(p.SidestickRoll[i]) > stickDeflectedThreshold
	}
	if s.has {
		o.Priority[s.side] = true
		o.Pitch = p.SidestickPitch[s.side]
		o.Roll = p.SidestickRoll[s.side]
	} else {
		o.Pitch = p.SidestickPitch[Captain] + p.SidestickPitch[FirstOfficer]
		o.Roll = p.SidestickRoll[Captain] + p.SidestickRoll[FirstOfficer]
		o.DualInput = o.Deflected[Captain] && o.Deflected[FirstOfficer]
	}
	o.Pitch = logic.Clamp(o.Pitch, -1, 1)
	o.Roll = logic.Clamp(o.Roll, -1, 1)
	return o
}
