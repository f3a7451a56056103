// Package autothrust computes per-engine N1 commands from the thrust lever
// angles, the active autothrust mode and the speed target.
package autothrust

import (
	"math"
	"time"

	"go.einride.tech/pid"

	"fbwsim/internal/bus"
	"fbwsim/internal/logic"
)

type Status uint8

const (
	StatusDisengaged Status = iota
	StatusEngagedArmed
	StatusEngagedActive
)

func (s Status) String() string {
	switch s {
	case StatusEngagedArmed:
		return "ENGAGED_ARMED"
	case StatusEngagedActive:
		return "ENGAGED_ACTIVE"
	default:
		return "DISENGAGED"
	}
}

type Mode uint8

const (
	ModeNone Mode = iota
	ModeSpeed
	ModeMach
	ModeThrIdle
	ModeThrClb
	ModeThrMct
	ModeThrLvr
	ModeManToga
	ModeManFlex
	ModeManMct
	ModeManThr
	ModeAFloor
	ModeTogaLk
)

var modeNames = [...]string{
	ModeNone:    "NONE",
	ModeSpeed:   "SPEED",
	ModeMach:    "MACH",
	ModeThrIdle: "THR_IDLE",
	ModeThrClb:  "THR_CLB",
	ModeThrMct:  "THR_MCT",
	ModeThrLvr:  "THR_LVR",
	ModeManToga: "MAN_TOGA",
	ModeManFlex: "MAN_FLEX",
	ModeManMct:  "MAN_MCT",
	ModeManThr:  "MAN_THR",
	ModeAFloor:  "A_FLOOR",
	ModeTogaLk:  "TOGA_LK",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "NONE"
}

// Request is the thrust mode asked for by the vertical guidance.
type Request uint8

const (
	RequestNone Request = iota
	RequestSpeed
	RequestIdle
	RequestClimb
)

// Lever detents, deg.
const (
	TLAIdle = 0
	TLAClb  = 25
	TLAMct  = 35
	TLAToga = 45

	tlaRevBegin = 6
	tlaRevEnd   = 20
)

// N1SlewPctS bounds the change of each N1 command.
const N1SlewPctS = 5

// Limits are the N1 thrust limits, percent.
type Limits struct {
	IdlePct    float64
	ClbPct     float64
	MctPct     float64
	FlexPct    float64
	TogaPct    float64
	RevPct     float64
	FlexActive bool
}

// DefaultLimits are representative limits for a mid-weight aircraft at
// sea level.
var DefaultLimits = Limits{
	IdlePct: 20,
	ClbPct:  89,
	MctPct:  95,
	FlexPct: 90,
	TogaPct: 100,
	RevPct:  70,
}

type Inputs struct {
	// ATHRPush toggles engagement; Disconnect is the instinctive
	// disconnect button on the levers.
	ATHRPush   bool
	Disconnect bool

	TLADeg   [2]float64
	OnGround bool

	AlphaFloor bool
	Request    Request
	MachMode   bool

	SpeedTargetKn float64
	CasKn         bus.Value
	N1Pct         [2]bus.Value

	Limits Limits
}

type Output struct {
	Status Status
	Mode   Mode

	// N1CommandPct is the rate-limited command sent to each engine.
	N1CommandPct [2]float64
	// N1LeverPct is the command the lever position alone would give.
	N1LeverPct [2]float64
	InReverse  [2]bool

	// Disconnected is set on the tick autothrust disengaged.
	Disconnected bool
}

// Speed law gains, N1 percent per knot.
const (
	speedKp = 0.8
	speedKi = 0.15
	speedKd = 0
	speedKt = 4
)

type Autothrust struct {
	engaged    bool
	prevTLA    [2]float64
	havePrev   bool
	floorLatch bool
	mode       Mode

	speed     pid.TrackingController
	speedBase float64
	speedOn   bool
	cas       bus.Hold

	n1       [2]logic.RateLimiter
	haveN1   [2]bool
	lastOut  Output
	lastStat Status
}

func New() *Autothrust {
	return &Autothrust{
		speed: pid.TrackingController{
			Config: pid.TrackingControllerConfig{
				ProportionalGain:    speedKp,
				IntegralGain:        speedKi,
				DerivativeGain:      speedKd,
				AntiWindUpGain:      speedKt,
				LowPassTimeConstant: time.Second,
			},
		},
		n1: [2]logic.RateLimiter{
			{Up: N1SlewPctS, Down: N1SlewPctS},
			{Up: N1SlewPctS, Down: N1SlewPctS},
		},
	}
}

// Output returns the result of the last Evaluate.
func (a *Autothrust) Output() Output { return a.lastOut }

// LeverN1 maps a thrust lever angle to N1 on the piecewise detent scale.
// In flight a reverse angle is treated as idle.
func LeverN1(tla float64, onGround bool, l Limits) (n1 float64, reverse bool) {
	if !onGround && tla < 0 {
		tla = 0
	}
	mctFlex := l.MctPct
	if l.FlexActive {
		mctFlex = l.FlexPct
	}
	interp := func(x, x0, x1, y0, y1 float64) float64 {
		return y0 + (y1-y0)/(x1-x0)*(x-x0)
	}
	switch {
	case tla < 0:
		return interp(math.Max(math.Abs(tla), tlaRevBegin), tlaRevBegin, tlaRevEnd,
			math.Abs(l.IdlePct+1), math.Abs(l.RevPct)), true
	case tla <= TLAClb:
		return interp(tla, TLAIdle, TLAClb, l.IdlePct, l.ClbPct), false
	case tla <= TLAMct:
		return interp(tla, TLAClb, TLAMct, l.ClbPct, mctFlex), false
	default:
		return interp(tla, TLAMct, TLAToga, mctFlex, l.TogaPct), false
	}
}

func (a *Autothrust) Evaluate(dt float64, in *Inputs) Output {
	var out Output
	t1, t2 := in.TLADeg[0], in.TLADeg[1]
	if !a.havePrev {
		a.prevTLA = in.TLADeg
		a.havePrev = true
	}
	maxTLA := math.Max(t1, t2)
	operative := [2]bool{in.N1Pct[0].Valid(), in.N1Pct[1].Valid()}
	for i, ok := range operative {
		if ok && !a.haveN1[i] {
			a.n1[i].Reset(in.N1Pct[i].Data)
			a.haveN1[i] = true
		}
	}

	// Engagement.
	toIdle := (a.prevTLA[0] > TLAIdle || a.prevTLA[1] > TLAIdle) && t1 == TLAIdle && t2 == TLAIdle
	switch {
	case in.AlphaFloor && !in.OnGround:
		a.engaged = true
	case !operative[0] && !operative[1]:
		a.engaged = false
	case in.Disconnect || toIdle:
		a.engaged = false
	case in.ATHRPush:
		a.engaged = !a.engaged
	case !a.engaged && in.OnGround && maxTLA >= TLAMct && math.Max(a.prevTLA[0], a.prevTLA[1]) < TLAMct:
		// Advancing the levers to takeoff thrust arms autothrust.
		a.engaged = true
	}
	a.prevTLA = in.TLADeg

	active := false
	if a.engaged {
		if operative[0] && operative[1] {
			active = t1 >= TLAIdle && t1 <= TLAClb && t2 >= TLAIdle && t2 <= TLAClb
		} else {
			active = (operative[0] && t1 >= TLAIdle && t1 <= TLAMct) ||
				(operative[1] && t2 >= TLAIdle && t2 <= TLAMct)
		}
		active = active || in.AlphaFloor
	}
	switch {
	case a.engaged && active:
		out.Status = StatusEngagedActive
	case a.engaged:
		out.Status = StatusEngagedArmed
	}
	out.Disconnected = a.lastStat != StatusDisengaged && out.Status == StatusDisengaged
	a.lastStat = out.Status

	a.floorLatch = in.AlphaFloor || (out.Status != StatusDisengaged && a.floorLatch)
	out.Mode = a.selectMode(out.Status, in, maxTLA, operative)
	a.mode = out.Mode

	// Commands.
	for i := range in.TLADeg {
		out.N1LeverPct[i], out.InReverse[i] = LeverN1(in.TLADeg[i], in.OnGround, in.Limits)
	}
	limit, _ := LeverN1(maxTLA, in.OnGround, in.Limits)

	target := out.N1LeverPct
	if out.Status == StatusEngagedActive {
		var n1 float64
		speedMode := false
		switch out.Mode {
		case ModeAFloor, ModeTogaLk:
			n1 = in.Limits.TogaPct
		case ModeThrClb:
			n1 = in.Limits.ClbPct
		case ModeThrMct:
			n1 = in.Limits.MctPct
		case ModeThrIdle:
			n1 = in.Limits.IdlePct
		case ModeThrLvr:
			n1 = limit
		default:
			n1 = a.speedLaw(dt, in, limit)
			speedMode = true
		}
		if !speedMode {
			a.speedOn = false
		}
		for i := range target {
			if !out.InReverse[i] {
				target[i] = n1
			}
		}
	} else {
		a.speedOn = false
	}

	for i := range target {
		switch {
		case !a.haveN1[i]:
			a.n1[i].Reset(target[i])
			a.haveN1[i] = true
		case !operative[i]:
			out.N1CommandPct[i] = a.n1[i].Output()
			continue
		}
		out.N1CommandPct[i] = a.n1[i].Update(target[i], dt)
	}
	a.lastOut = out
	return out
}

func (a *Autothrust) selectMode(st Status, in *Inputs, maxTLA float64, operative [2]bool) Mode {
	t1, t2 := in.TLADeg[0], in.TLADeg[1]
	armed := st == StatusEngagedArmed
	active := st == StatusEngagedActive
	both := operative[0] && operative[1]
	switch {
	case st == StatusDisengaged:
		return ModeNone
	case in.AlphaFloor:
		return ModeAFloor
	case a.floorLatch:
		return ModeTogaLk
	case armed && (t1 == TLAToga || t2 == TLAToga):
		return ModeManToga
	case armed && in.Limits.FlexActive && maxTLA == TLAMct:
		return ModeManFlex
	case armed && (t1 == TLAMct || t2 == TLAMct):
		return ModeManMct
	case active && in.Request == RequestClimb && !both && maxTLA == TLAMct:
		return ModeThrMct
	case active && in.Request == RequestClimb && both && maxTLA == TLAClb:
		return ModeThrClb
	case active && in.Request == RequestClimb && maxTLA < TLAClb:
		return ModeThrLvr
	case armed && ((maxTLA > TLAClb && maxTLA < TLAMct) || (maxTLA > TLAMct && maxTLA < TLAToga)):
		return ModeManThr
	case active && in.Request == RequestIdle:
		return ModeThrIdle
	case active && in.MachMode:
		return ModeMach
	case active:
		return ModeSpeed
	}
	return a.mode
}

// speedLaw returns the N1 that drives CAS to the target, bounded by idle
// and the lever limit. The N1 held at engagement is the feed-forward term.
func (a *Autothrust) speedLaw(dt float64, in *Inputs, limit float64) float64 {
	cas := a.cas.Update(in.CasKn, in.SpeedTargetKn)
	if !a.speedOn {
		a.speed.Reset()
		a.speedBase = (a.n1[0].Output() + a.n1[1].Output()) / 2
		a.speedOn = true
	}
	a.speed.Config.MinOutput = in.Limits.IdlePct
	a.speed.Config.MaxOutput = math.Max(limit, in.Limits.IdlePct)
	return logic.Drive(&a.speed, pid.TrackingControllerInput{
		ReferenceSignal:   in.SpeedTargetKn,
		ActualSignal:      cas,
		FeedForwardSignal: a.speedBase,
		SamplingInterval:  logic.Interval(max(dt, 0)),
	})
}
