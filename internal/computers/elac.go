package computers

import (
	"math"
	"time"

	"go.einride.tech/pid"

	"fbwsim/internal/bus"
	"fbwsim/internal/logic"
	"fbwsim/internal/sensors"
)

// Law is a pitch control law.
type Law uint8

const (
	LawNone Law = iota
	LawNormal
	LawAlternate
	LawDirect
)

func (l Law) String() string {
	switch l {
	case LawNormal:
		return "normal"
	case LawAlternate:
		return "alternate"
	case LawDirect:
		return "direct"
	default:
		return "none"
	}
}

// ELAC status word bits.
const (
	ElacBitPitchNormal     = 11
	ElacBitPitchAlternate  = 12
	ElacBitPitchDirect     = 13
	ElacBitPitchEngaged    = 14
	ElacBitRollEngaged     = 15
	ElacBitLeftSurfacesOK  = 16
	ElacBitRightSurfacesOK = 17
	ElacBitCaptPriority    = 18
	ElacBitFoPriority      = 19
	ElacBitDualInput       = 20
	ElacBitCaptDeflected   = 21
	ElacBitFoDeflected     = 22
	ElacBitGroundMode      = 23
	ElacBitAutopilotOrders = 24
)

// ElacBus is the output bus read by the SECs and FCDCs.
type ElacBus struct {
	StatusWord       bus.Value
	PitchLaw         bus.Value
	LeftElevatorDeg  bus.Value
	RightElevatorDeg bus.Value
	THSDeg           bus.Value
	LeftAileronDeg   bus.Value
	RightAileronDeg  bus.Value
	// RollOrder is the normalised roll order [-1, 1] used by the SECs to
	// drive the roll spoilers.
	RollOrder bus.Value
}

// Surface travel, degrees.
const (
	elevatorMaxUpDeg   = 30
	elevatorMaxDownDeg = 15
	aileronMaxDeg      = 25
	thsMinDeg          = -4
	thsMaxDeg          = 13.5
	thsRateDegS        = 0.3
)

// Normal law limits.
const (
	nzMaxG          = 2.5
	nzMinG          = -1.0
	bankLimitDeg    = 67
	bankNeutralDeg  = 33
	pitchLimitUpDeg = 30
	pitchLimitDnDeg = -15
	rollRateMaxDegS = 15
	// Below this radio height the tailstrike protection limits pitch.
	tailstrikeRAFt       = 50
	tailstrikePitchDeg   = 10
	groundConfirmSeconds = 0.5
)

// Alternate law elevator authority versus CAS.
var alternateGain = logic.Table{
	X: []float64{100, 200, 300, 350},
	Y: []float64{1.0, 0.6, 0.35, 0.3},
}

// elacHydraulics says which system powers the left and right surfaces of
// each ELAC.
var elacHydraulics = [2]struct{ left, right func(Hydraulics) bool }{
	{func(h Hydraulics) bool { return h.Blue }, func(h Hydraulics) bool { return h.Green }},
	{func(h Hydraulics) bool { return h.Green }, func(h Hydraulics) bool { return h.Yellow }},
}

// ELAC is an elevator/aileron computer.
type ELAC struct {
	unit

	priority sidestickPriority
	ground   logic.ConfirmNode

	pitchLoop pid.TrackingController
	rollLoop  pid.TrackingController
	ths       float64

	theta   bus.Hold
	phi     bus.Hold
	cas     bus.Hold
	apPitch bus.Hold
	apRoll  bus.Hold
}

func NewELAC(index int) *ELAC {
	return &ELAC{
		unit:   newUnit(ID{KindELAC, index}),
		ground: logic.NewConfirmRising(groundConfirmSeconds),
		pitchLoop: pid.TrackingController{Config: pid.TrackingControllerConfig{
			ProportionalGain:    10,
			IntegralGain:        6,
			AntiWindUpGain:      2,
			LowPassTimeConstant: 100 * time.Millisecond,
			MinOutput:           -elevatorMaxDownDeg,
			MaxOutput:           elevatorMaxUpDeg,
		}},
		rollLoop: pid.TrackingController{Config: pid.TrackingControllerConfig{
			ProportionalGain:    1.5,
			IntegralGain:        1,
			AntiWindUpGain:      12,
			LowPassTimeConstant: 100 * time.Millisecond,
			MinOutput:           -aileronMaxDeg,
			MaxOutput:           aileronMaxDeg,
		}},
	}
}

// surfaceLoop steps a surface controller. The master drives the surface;
// any other ELAC follows the applied position so that it can take over
// without a jump.
func surfaceLoop(c *pid.TrackingController, master bool, ref, actual, applied, dt float64) float64 {
	in := pid.TrackingControllerInput{
		ReferenceSignal:      ref,
		ActualSignal:         actual,
		AppliedControlSignal: applied,
		SamplingInterval:     logic.Interval(dt),
	}
	if master {
		return logic.Drive(c, in)
	}
	c.Update(in)
	return c.State.ControlSignal
}

// lawCapability derives the best available pitch law from the number of
// valid ADR and IR channels.
func lawCapability(validADR, validIR int) Law {
	switch {
	case validADR >= 2 && validIR >= 2:
		return LawNormal
	case validADR >= 1 && validIR >= 1:
		return LawAlternate
	default:
		return LawDirect
	}
}

func (e *ELAC) Step(dt float64, in *Inputs) Outputs {
	req := in.request(e.id)
	running, testing := e.power(req, dt)
	hyd := elacHydraulics[(e.id.Index-1)&1]
	hydL, hydR := hyd.left(in.Hydraulics), hyd.right(in.Hydraulics)
	if !running || (!hydL && !hydR) {
		e.pitchLoop.Reset()
		e.rollLoop.Reset()
		for _, h := range []*bus.Hold{&e.theta, &e.phi, &e.cas, &e.apPitch, &e.apRoll} {
			h.Reset()
		}
		e.priority.update(&in.Pilot, dt)
		return e.fail()
	}

	air := sensors.VoteAirData(in.Sensors)
	gl, gr, gearOK := sensors.GearCompressed(in.Sensors)
	onGround := e.ground.Update(gearOK && gl && gr, dt)

	law := lawCapability(air.ValidADR, air.ValidIR)
	capability := law
	if onGround {
		law = LawDirect
	}
	stick := e.priority.update(&in.Pilot, dt)

	theta := e.theta.Update(air.PitchDeg, 0)
	phi := e.phi.Update(air.RollDeg, 0)
	cas := e.cas.Update(air.CasKn, 250)
	apEngaged := in.Autopilot.Engaged && law == LawNormal
	apPitch := e.apPitch.Update(in.Autopilot.PitchDeg, theta)
	apRoll := e.apRoll.Update(in.Autopilot.RollDeg, phi)
	fac := facWord(in)
	ra := sensors.RadioHeight(in.Sensors)

	pitchMaster := in.Masters[AxisPitch] == e.id
	rollMaster := in.Masters[AxisRoll] == e.id

	// Pitch.
	var elevator float64
	switch law {
	case LawNormal:
		nz1g := math.Cos(theta*deg2rad) / math.Cos(logic.Clamp(phi, -bankNeutralDeg, bankNeutralDeg)*deg2rad)
		var demand float64
		if apEngaged {
			demand = nz1g + logic.Clamp(0.1*(apPitch-theta), -0.3, 0.3)
		} else if stick.Pitch >= 0 {
			demand = nz1g + stick.Pitch*(nzMaxG-1)
		} else {
			demand = nz1g + stick.Pitch*(1-nzMinG)
		}
		noseUpLimited := theta >= pitchLimitUpDeg ||
			fac.Bit(FacBitAlphaProt) ||
			(in.TailstrikeProtection && ra.Valid() && ra.Data < tailstrikeRAFt && theta >= tailstrikePitchDeg)
		if noseUpLimited && demand > nz1g {
			demand = nz1g
		}
		if theta <= pitchLimitDnDeg && demand < nz1g {
			demand = nz1g
		}
		if fac.Bit(FacBitHighSpeedProt) {
			demand = math.Max(demand, nz1g+0.1)
		}
		measured := air.NzG.Or(nz1g) + 0.05*air.PitchRateDegS.Or(0)
		elevator = surfaceLoop(&e.pitchLoop, pitchMaster, demand, measured, in.Voted.LeftElevatorDeg, dt)
	case LawAlternate:
		elevator = directElevator(stick.Pitch)*alternateGain.At(cas) - 0.5*air.PitchRateDegS.Or(0)
		elevator = logic.Clamp(elevator, -elevatorMaxDownDeg, elevatorMaxUpDeg)
		surfaceLoop(&e.pitchLoop, false, 0, 0, elevator, dt)
	default:
		elevator = directElevator(stick.Pitch)
		surfaceLoop(&e.pitchLoop, false, 0, 0, elevator, dt)
	}

	if !pitchMaster {
		e.ths = in.Voted.THSDeg
	} else if law != LawDirect {
		e.ths += logic.Clamp(0.2*elevator, -thsRateDegS, thsRateDegS) * dt
	}
	e.ths = logic.Clamp(e.ths, thsMinDeg, thsMaxDeg)

	// Roll.
	var aileron float64
	if law == LawNormal {
		var demand float64
		switch {
		case apEngaged:
			demand = logic.Clamp(0.5*(apRoll-phi), -5, 5)
		case math.Abs(stick.Roll) > stickDeflectedThreshold:
			demand = stick.Roll * rollRateMaxDegS
		case math.Abs(phi) > bankNeutralDeg:
			// Spiral stability back to the neutral bank limit.
			demand = -math.Copysign(math.Min(5, math.Abs(phi)-bankNeutralDeg), phi)
		}
		if phi >= bankLimitDeg {
			demand = math.Min(demand, 0)
		} else if phi <= -bankLimitDeg {
			demand = math.Max(demand, 0)
		}
		p := air.RollRateDegS.Or(0)
		aileron = surfaceLoop(&e.rollLoop, rollMaster, demand, p, in.Voted.LeftAileronDeg, dt)
	} else {
		aileron = stick.Roll * aileronMaxDeg
		surfaceLoop(&e.rollLoop, false, 0, 0, aileron, dt)
	}

	leftOK := hydL && req.Failure != FailureLeftSurface
	rightOK := hydR && req.Failure != FailureRightSurface

	var out Outputs
	s := &out.Surfaces
	if leftOK {
		s.LeftElevatorDeg = elevator
		s.LeftAileronDeg = aileron
	}
	if rightOK {
		s.RightElevatorDeg = elevator
		s.RightAileronDeg = -aileron
	}
	s.THSDeg = e.ths
	out.Available[AxisPitch] = leftOK || rightOK
	out.Available[AxisRoll] = leftOK || rightOK

	var w bus.Word
	w.Set(ElacBitPitchNormal, law == LawNormal)
	w.Set(ElacBitPitchAlternate, law == LawAlternate)
	w.Set(ElacBitPitchDirect, law == LawDirect)
	w.Set(ElacBitPitchEngaged, pitchMaster)
	w.Set(ElacBitRollEngaged, rollMaster)
	w.Set(ElacBitLeftSurfacesOK, leftOK)
	w.Set(ElacBitRightSurfacesOK, rightOK)
	w.Set(ElacBitCaptPriority, stick.Priority[Captain])
	w.Set(ElacBitFoPriority, stick.Priority[FirstOfficer])
	w.Set(ElacBitDualInput, stick.DualInput)
	w.Set(ElacBitCaptDeflected, stick.Deflected[Captain])
	w.Set(ElacBitFoDeflected, stick.Deflected[FirstOfficer])
	w.Set(ElacBitGroundMode, onGround)
	w.Set(ElacBitAutopilotOrders, apEngaged)
	out.Status = w.Value(bus.Normal)

	out.Elac = ElacBus{
		StatusWord:       out.Status,
		PitchLaw:         bus.NewValue(float64(law)),
		LeftElevatorDeg:  surfaceWord(leftOK, s.LeftElevatorDeg),
		RightElevatorDeg: surfaceWord(rightOK, s.RightElevatorDeg),
		THSDeg:           bus.NewValue(s.THSDeg),
		LeftAileronDeg:   surfaceWord(leftOK, s.LeftAileronDeg),
		RightAileronDeg:  surfaceWord(rightOK, s.RightAileronDeg),
		RollOrder:        bus.NewValue(aileron / aileronMaxDeg),
	}

	degraded := testing ||
		(capability == LawDirect && !onGround) ||
		!leftOK || !rightOK ||
		req.Failure == FailureChannelLoss
	e.finish(&out, degraded)
	return out
}

// surfaceWord reports a surface position, or FailureWarning when the
// surface is not controlled.
func surfaceWord(ok bool, deg float64) bus.Value {
	if !ok {
		return bus.Failed()
	}
	return bus.NewValue(deg)
}

func directElevator(stick float64) float64 {
	if stick >= 0 {
		return stick * elevatorMaxUpDeg
	}
	return stick * elevatorMaxDownDeg
}

const deg2rad = math.Pi / 180
