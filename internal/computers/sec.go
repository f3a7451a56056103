package computers

import (
	"math"

	"fbwsim/internal/bus"
	"fbwsim/internal/logic"
	"fbwsim/internal/sensors"
)

// SEC status word bits.
const (
	SecBitPitchAvailable        = 11
	SecBitPitchEngaged          = 12
	SecBitGroundSpoilersOut     = 13
	SecBitGroundSpoilersArmed   = 14
	SecBitPartialLiftDump       = 15
	SecBitSpeedBrakeInhibited   = 16
	SecBitRollOrderFromElac     = 17
	SecBitLeftSpoilersOK        = 18
	SecBitRightSpoilersOK       = 19
	SecBitRollSpoilersAvailable = 20
)

// SecBus is the output bus of a SEC. Spoiler words of spoilers the SEC does
// not drive are NCD.
type SecBus struct {
	StatusWord      bus.Value
	LeftSpoilerDeg  [5]bus.Value
	RightSpoilerDeg [5]bus.Value
	ElevatorDeg     bus.Value
	SpeedBrakeDeg   bus.Value
}

const (
	groundSpoilerDeg     = 50
	partialLiftDumpDeg   = 10
	speedBrakeMaxDeg     = 40
	rollSpoilerMaxDeg    = 35
	spoilerMaxDeg        = 50
	idleTLADeg           = 1
	thrustIncreaseTLADeg = 20
	mctTLADeg            = 35
	flapsFullConfig      = 4
	leverRetracted       = 0.05
	bounceConfirmSeconds = 1
)

// Spoilers (0-based) driven by each SEC: SEC1 pairs 3/4, SEC2 pair 5,
// SEC3 pairs 1/2.
var secSpoilers = [3][]int{{2, 3}, {4}, {0, 1}}

// Hydraulic system of each spoiler pair.
var spoilerHydraulics = [5]func(Hydraulics) bool{
	func(h Hydraulics) bool { return h.Green },
	func(h Hydraulics) bool { return h.Yellow },
	func(h Hydraulics) bool { return h.Blue },
	func(h Hydraulics) bool { return h.Yellow },
	func(h Hydraulics) bool { return h.Green },
}

func rollSpoiler(i int) bool       { return i >= 1 }
func speedBrakeSpoiler(i int) bool { return i >= 1 && i <= 3 }

// SEC is a spoiler/elevator computer. SEC1 and SEC2 also provide direct
// law pitch control as a backup for the ELACs.
type SEC struct {
	unit

	priority   sidestickPriority
	ground     logic.ConfirmNode
	wheelLoad  logic.ConfirmNode
	gsLatch    logic.SRFlipFlop
	sbInhibit  logic.SRFlipFlop
	sbPosition logic.RateLimiter
}

func NewSEC(index int) *SEC {
	return &SEC{
		unit:       newUnit(ID{KindSEC, index}),
		ground:     logic.NewConfirmRising(groundConfirmSeconds),
		wheelLoad:  logic.NewConfirmFalling(bounceConfirmSeconds),
		gsLatch:    logic.SRFlipFlop{ResetPriority: true},
		sbPosition: logic.RateLimiter{Up: 20, Down: 20},
	}
}

func (s *SEC) pitchCapable() bool { return s.id.Index <= 2 }

func (s *SEC) Step(dt float64, in *Inputs) Outputs {
	req := in.request(s.id)
	running, testing := s.power(req, dt)
	owned := secSpoilers[(s.id.Index-1)%len(secSpoilers)]

	var hydL, hydR bool
	if s.pitchCapable() {
		hyd := elacHydraulics[s.id.Index-1]
		hydL, hydR = hyd.left(in.Hydraulics), hyd.right(in.Hydraulics)
	}
	anySpoiler := false
	for _, i := range owned {
		anySpoiler = anySpoiler || spoilerHydraulics[i](in.Hydraulics)
	}
	stick := s.priority.update(&in.Pilot, dt)
	if !running || (!anySpoiler && !hydL && !hydR) {
		s.gsLatch.Update(false, true)
		s.sbPosition.Reset(0)
		return s.fail()
	}

	// Ground spoilers.
	gl, gr, gearOK := sensors.GearCompressed(in.Sensors)
	bothMain := gearOK && gl && gr
	oneMain := gearOK && gl != gr
	onGround := s.ground.Update(bothMain, dt)
	tla := in.Pilot.ThrustLeverDeg
	idle := tla[0] <= idleTLADeg && tla[1] <= idleTLADeg
	reverse := tla[0] < 0 || tla[1] < 0
	advanced := tla[0] > thrustIncreaseTLADeg || tla[1] > thrustIncreaseTLADeg
	armed := in.Pilot.GroundSpoilersArmed
	// A bounce shorter than the confirmation time keeps the spoilers out.
	airborne := !s.wheelLoad.Update(gearOK && (gl || gr), dt)
	gsOut := s.gsLatch.Update(onGround && ((armed && idle) || reverse), advanced || airborne)
	partial := !gsOut && oneMain && armed && idle

	// Speed brakes.
	fac := facWord(in)
	flaps, flapsOK := sensors.FlapConfig(in.Sensors)
	inhibitNow := fac.Bit(FacBitAlphaProt) || fac.Bit(FacBitAlphaFloor) ||
		(flapsOK && flaps >= flapsFullConfig) ||
		tla[0] > mctTLADeg || tla[1] > mctTLADeg
	inhibited := s.sbInhibit.Update(inhibitNow, in.Pilot.SpeedBrakeLever < leverRetracted)
	sbTarget := 0.0
	if !inhibited && !gsOut {
		sbTarget = logic.Clamp(in.Pilot.SpeedBrakeLever, 0, 1) * speedBrakeMaxDeg
	}
	sb := s.sbPosition.Update(sbTarget, dt)

	// Roll spoilers follow the ELAC roll order while an ELAC has roll,
	// otherwise the sidesticks directly.
	order := stick.Roll
	fromElac := false
	if in.Masters[AxisRoll].Kind == KindELAC {
		if b, ok := elacBus(in, AxisRoll); ok && b.RollOrder.Valid() {
			order, fromElac = b.RollOrder.Data, true
		}
	}
	order = logic.Clamp(order, -1, 1)
	rollRight := math.Max(0, order) * rollSpoilerMaxDeg
	rollLeft := math.Max(0, -order) * rollSpoilerMaxDeg

	leftOK := req.Failure != FailureLeftSurface
	rightOK := req.Failure != FailureRightSurface

	var out Outputs
	sbus := &out.Sec
	for i := range sbus.LeftSpoilerDeg {
		sbus.LeftSpoilerDeg[i] = bus.NCD()
		sbus.RightSpoilerDeg[i] = bus.NCD()
	}
	degraded := testing || req.Failure != FailureNone
	rollAvailable := false
	gsAvailable := false
	for _, i := range owned {
		powered := spoilerHydraulics[i](in.Hydraulics)
		if !powered {
			degraded = true
		}
		var left, right float64
		switch {
		case gsOut:
			left, right = groundSpoilerDeg, groundSpoilerDeg
		case partial:
			left, right = partialLiftDumpDeg, partialLiftDumpDeg
		default:
			var b float64
			if speedBrakeSpoiler(i) {
				b = sb
			}
			if rollSpoiler(i) {
				left = b + rollLeft - rollRight
				right = b + rollRight - rollLeft
			} else {
				left, right = b, b
			}
		}
		left = logic.Clamp(left, 0, spoilerMaxDeg)
		right = logic.Clamp(right, 0, spoilerMaxDeg)

		if powered && leftOK {
			out.Surfaces.LeftSpoilerDeg[i] = left
			sbus.LeftSpoilerDeg[i] = bus.NewValue(left)
		} else {
			sbus.LeftSpoilerDeg[i] = bus.Failed()
		}
		if powered && rightOK {
			out.Surfaces.RightSpoilerDeg[i] = right
			sbus.RightSpoilerDeg[i] = bus.NewValue(right)
		} else {
			sbus.RightSpoilerDeg[i] = bus.Failed()
		}
		if powered && (leftOK || rightOK) {
			gsAvailable = true
			if rollSpoiler(i) {
				rollAvailable = true
			}
		}
	}
	out.Surfaces.GroundSpoilersOut = gsOut

	pitchOK := s.pitchCapable() && (hydL || hydR)
	pitchMaster := in.Masters[AxisPitch] == s.id
	sbus.ElevatorDeg = bus.NCD()
	if pitchOK {
		elevator := directElevator(stick.Pitch)
		if hydL && leftOK {
			out.Surfaces.LeftElevatorDeg = elevator
		}
		if hydR && rightOK {
			out.Surfaces.RightElevatorDeg = elevator
		}
		// The THS is not driven in direct law; hold the last position.
		out.Surfaces.THSDeg = in.Voted.THSDeg
		sbus.ElevatorDeg = bus.NewValue(elevator)
		if s.pitchCapable() && (!hydL || !hydR) {
			degraded = true
		}
	}

	out.Available[AxisPitch] = pitchOK
	out.Available[AxisRoll] = rollAvailable
	out.Available[AxisGroundSpoilers] = gsAvailable

	var w bus.Word
	w.Set(SecBitPitchAvailable, pitchOK)
	w.Set(SecBitPitchEngaged, pitchMaster)
	w.Set(SecBitGroundSpoilersOut, gsOut)
	w.Set(SecBitGroundSpoilersArmed, armed)
	w.Set(SecBitPartialLiftDump, partial)
	w.Set(SecBitSpeedBrakeInhibited, inhibited)
	w.Set(SecBitRollOrderFromElac, fromElac)
	w.Set(SecBitLeftSpoilersOK, leftOK)
	w.Set(SecBitRightSpoilersOK, rightOK)
	w.Set(SecBitRollSpoilersAvailable, rollAvailable)
	out.Status = w.Value(bus.Normal)
	sbus.StatusWord = out.Status
	sbus.SpeedBrakeDeg = bus.NewValue(sb)

	s.finish(&out, degraded)
	return out
}
