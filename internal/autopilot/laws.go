package autopilot

import (
	"math"

	"fbwsim/internal/bus"
	"fbwsim/internal/logic"
)

// Slew limits of the attitude orders, deg/s.
const (
	RollSlewDegS  = 5
	PitchSlewDegS = 2
	YawSlewDegS   = 5
)

const (
	maxBankDeg     = 25
	headingGain    = 1.5
	crossTrackGain = 20 // deg of bank per nm
	locGain        = 8
	locRateGain    = 4
	rollOutGain    = 2
	maxRollOutYaw  = 10

	altGain       = 6 // fpm per ft
	maxAltVSFpm   = 2000
	glideslopeDeg = -3
	gsGain        = 2
	flareSinkFpm  = 100
	flareGain     = 12 // fpm per ft of radio height
	srsPitchDeg   = 15
	minPitchDeg   = -10
	maxPitchDeg   = 20
	minTasKn      = 100
	ftPerMinPerKn = 101.27
)

// Commands are the attitude orders of the guidance laws. An axis with no
// active mode reports NoComputedData.
type Commands struct {
	PitchDeg bus.Value
	RollDeg  bus.Value
	YawDeg   bus.Value
}

// Laws turns the active modes into rate-limited attitude orders. Sensor
// words that stop reporting Normal are replaced by their last good value.
type Laws struct {
	pitchLim logic.RateLimiter
	rollLim  logic.RateLimiter
	yawLim   logic.RateLimiter

	pitch, roll, heading, track, fpa bus.Hold
	alt, tas, ra                     bus.Hold
	loc, gs, xtk, dtk                bus.Hold

	lateralOn  bool
	verticalOn bool

	locFilter logic.LagFilter
	locPrev   float64
	locActive bool
}

func NewLaws() *Laws {
	return &Laws{
		pitchLim:  logic.RateLimiter{Up: PitchSlewDegS, Down: PitchSlewDegS},
		rollLim:   logic.RateLimiter{Up: RollSlewDegS, Down: RollSlewDegS},
		yawLim:    logic.RateLimiter{Up: YawSlewDegS, Down: YawSlewDegS},
		locFilter: logic.LagFilter{C1: 2},
	}
}

// Evaluate computes this tick's orders for st.
func (l *Laws) Evaluate(dt float64, st *State, in *Inputs) Commands {
	a := &in.Air
	pitch := l.pitch.Update(a.PitchDeg, 0)
	roll := l.roll.Update(a.RollDeg, 0)

	out := Commands{PitchDeg: bus.NCD(), RollDeg: bus.NCD(), YawDeg: bus.NCD()}
	if !st.Guidance() {
		l.lateralOn, l.verticalOn, l.locActive = false, false, false
		return out
	}

	// An axis whose mode just became active starts from the current attitude.
	if bank, yaw, ok := l.lateral(dt, st, in); ok {
		if !l.lateralOn {
			l.rollLim.Reset(roll)
			l.yawLim.Reset(0)
			l.lateralOn = true
		}
		out.RollDeg = bus.NewValue(l.rollLim.Update(bank, dt))
		out.YawDeg = bus.NewValue(l.yawLim.Update(yaw, dt))
	} else {
		l.lateralOn = false
	}

	if p, ok := l.vertical(st, in, pitch); ok {
		if !l.verticalOn {
			l.pitchLim.Reset(pitch)
			l.verticalOn = true
		}
		out.PitchDeg = bus.NewValue(l.pitchLim.Update(p, dt))
	} else {
		l.verticalOn = false
	}
	return out
}

func (l *Laws) lateral(dt float64, st *State, in *Inputs) (bank, yaw float64, ok bool) {
	a := &in.Air
	heading := l.heading.Update(a.HeadingDeg, st.Targets.HeadingDeg)
	track := l.track.Update(a.TrackDeg, heading)

	if !st.Lateral.IsLocalizer() {
		l.locActive = false
	}

	switch st.Lateral {
	case LateralHDG:
		bank = headingGain * logic.WrapDeg180(st.Targets.HeadingDeg-heading)
	case LateralNAV:
		xtk := l.xtk.Update(in.NavCrossTrackNm, 0)
		dtk := l.dtk.Update(in.NavDesiredTrackDeg, track)
		bank = -crossTrackGain*xtk + headingGain*logic.WrapDeg180(dtk-track)
	case LateralLOCCPT, LateralLOC:
		dev := l.loc.Update(in.LocDeviationDeg, 0)
		if !l.locActive {
			l.locFilter.Reset(dev)
			l.locPrev = dev
			l.locActive = true
		}
		f := l.locFilter.Update(dev, dt)
		rate := 0.0
		if dt > 0 {
			rate = (f - l.locPrev) / dt
		}
		l.locPrev = f
		bank = locGain*f + locRateGain*rate
	case LateralRollOut:
		dev := l.loc.Update(in.LocDeviationDeg, 0)
		yaw = logic.Clamp(rollOutGain*dev, -maxRollOutYaw, maxRollOutYaw)
	case LateralGATrack:
		bank = headingGain * logic.WrapDeg180(st.Targets.TrackDeg-track)
	default:
		return 0, 0, false
	}
	return logic.Clamp(bank, -maxBankDeg, maxBankDeg), yaw, true
}

func (l *Laws) vertical(st *State, in *Inputs, pitch float64) (float64, bool) {
	a := &in.Air
	alt := l.alt.Update(a.AltitudeFt, st.Targets.HoldAltitudeFt)
	fpa := l.fpa.Update(a.FpaDeg, pitch)
	tas := math.Max(l.tas.Update(a.TasKn, minTasKn), minTasKn)

	var fpaCmd float64
	switch st.Vertical {
	case VerticalALT, VerticalALTCPT:
		fpaCmd = vsToFpa(logic.Clamp(altGain*(st.Targets.HoldAltitudeFt-alt), -maxAltVSFpm, maxAltVSFpm), tas)
	case VerticalVS:
		fpaCmd = vsToFpa(st.Targets.VSFpm, tas)
	case VerticalGSCPT, VerticalGS:
		fpaCmd = glideslopeDeg + gsGain*l.gs.Update(in.GsDeviationDeg, 0)
	case VerticalFlare:
		ra := l.ra.Update(in.RadioHeightFt, 0)
		fpaCmd = vsToFpa(-(flareSinkFpm + flareGain*math.Max(ra, 0)), tas)
	case VerticalSRSGA:
		return srsPitchDeg, true
	default:
		return 0, false
	}
	// Keep the current angle of attack: pitch follows the commanded path.
	return logic.Clamp(fpaCmd+(pitch-fpa), minPitchDeg, maxPitchDeg), true
}

// vsToFpa converts a vertical speed to a flight path angle at the given
// true airspeed.
func vsToFpa(vsFpm, tasKn float64) float64 {
	return math.Atan2(vsFpm, tasKn*ftPerMinPerKn) * 180 / math.Pi
}
