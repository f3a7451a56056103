package autopilot

import (
	"math"

	"fbwsim/internal/bus"
	"fbwsim/internal/computers"
	"fbwsim/internal/logic"
	"fbwsim/internal/sensors"
)

// Capture thresholds.
const (
	locCaptureDeg     = 1.6
	locTrackDeg       = 0.25
	gsCaptureDeg      = 0.4
	gsTrackDeg        = 0.1
	trackConfirmS     = 2
	altCaptureMinFt   = 50
	altTrackFt        = 20
	navCaptureNm      = 1.5
	flareHeightFt     = 50
	touchdownHeightFt = 5

	// A sidestick pushed beyond this fraction of travel overrides the
	// autopilot.
	sidestickOverride = 0.5
)

// Requests are the pilot actions seen this tick. Push fields are one-tick
// events; FD1 and FD2 are switch positions. Target words are Normal only
// on the tick the pilot changes the corresponding FCU value.
type Requests struct {
	AP1Push bool
	AP2Push bool
	FD1     bool
	FD2     bool

	InstinctiveDisconnect bool

	HDGSelect bool
	NAVPush   bool
	LOCPush   bool
	APPRPush  bool
	ALTPush   bool
	VSSelect  bool
	TOGA      bool

	HeadingTargetDeg bus.Value
	AltitudeTargetFt bus.Value
	VSTargetFpm      bus.Value
}

// Inputs is everything the state machine reads in one tick.
type Inputs struct {
	Requests Requests

	Air             sensors.AirData
	RadioHeightFt   bus.Value
	LocDeviationDeg bus.Value
	GsDeviationDeg  bus.Value

	// Lateral guidance from the flight management system.
	NavCrossTrackNm    bus.Value
	NavDesiredTrackDeg bus.Value

	SidestickDeflection float64
	ProtectionActive    bool
	PitchLaw            computers.Law
	OnGround            bool
}

// Targets are the references of the active modes.
type Targets struct {
	HeadingDeg float64
	TrackDeg   float64
	// AltitudeFt is the FCU altitude; HoldAltitudeFt is the altitude the
	// ALT and ALT_CPT modes converge on.
	AltitudeFt     float64
	HoldAltitudeFt float64
	VSFpm          float64
}

// State is the autopilot and flight director state after a tick.
type State struct {
	Lateral  LateralMode
	Vertical VerticalMode
	Armed    Armed

	AP1 bool
	AP2 bool
	FD1 bool
	FD2 bool

	// Reverted is set on the tick a mode reverted because its data was lost.
	Reverted bool
	// Disconnected is set on the tick the autopilot disengaged.
	Disconnected   bool
	LastDisconnect DisconnectReason

	Targets Targets
}

// Engaged reports whether either autopilot is engaged.
func (s *State) Engaged() bool { return s.AP1 || s.AP2 }

// Guidance reports whether any autopilot or flight director uses the modes.
func (s *State) Guidance() bool { return s.AP1 || s.AP2 || s.FD1 || s.FD2 }

// StateMachine evaluates, in order, disengagement, reversion, capture of
// armed modes and then new pilot requests.
type StateMachine struct {
	st       State
	locTrack logic.ConfirmNode
	gsTrack  logic.ConfirmNode
}

func NewStateMachine() *StateMachine {
	return &StateMachine{
		locTrack: logic.NewConfirmRising(trackConfirmS),
		gsTrack:  logic.NewConfirmRising(trackConfirmS),
	}
}

// State returns the current state.
func (m *StateMachine) State() State { return m.st }

func (m *StateMachine) Update(dt float64, in *Inputs) State {
	st := &m.st
	st.Reverted = false
	st.Disconnected = false

	r := &in.Requests
	if r.HeadingTargetDeg.Valid() {
		st.Targets.HeadingDeg = logic.WrapDeg360(r.HeadingTargetDeg.Data)
	}
	if r.AltitudeTargetFt.Valid() {
		st.Targets.AltitudeFt = r.AltitudeTargetFt.Data
	}
	if r.VSTargetFpm.Valid() {
		st.Targets.VSFpm = r.VSTargetFpm.Data
	}

	if st.Engaged() {
		if reason := disconnectReason(in); reason != ReasonNone {
			m.disengage(reason)
		}
	}
	if st.Guidance() {
		m.revert(in)
		m.capture(dt, in)
	}
	m.request(in)

	if !st.Guidance() {
		st.Lateral = LateralNone
		st.Vertical = VerticalNone
		st.Armed = 0
	}
	return *st
}

// disconnectReason returns the first disengagement condition that holds.
func disconnectReason(in *Inputs) DisconnectReason {
	switch {
	case in.Requests.InstinctiveDisconnect:
		return InstinctiveDisconnect
	case in.SidestickDeflection > sidestickOverride:
		return SidestickOverride
	case in.ProtectionActive:
		return ProtectionActive
	case !in.Air.PitchDeg.Valid() || !in.Air.RollDeg.Valid():
		return AttitudeInvalid
	case in.PitchLaw != computers.LawNormal:
		return FlightControlsDegraded
	}
	return ReasonNone
}

func (m *StateMachine) disengage(reason DisconnectReason) {
	m.st.AP1 = false
	m.st.AP2 = false
	m.st.Disconnected = true
	m.st.LastDisconnect = reason
}

func (m *StateMachine) toHDG(in *Inputs) {
	m.st.Lateral = LateralHDG
	m.st.Targets.HeadingDeg = in.Air.HeadingDeg.Or(m.st.Targets.HeadingDeg)
	m.st.Armed &^= ArmedNAV | ArmedLOC
}

func (m *StateMachine) toVS(in *Inputs) {
	m.st.Vertical = VerticalVS
	m.st.Targets.VSFpm = in.Air.VerticalSpeedFpm.Or(0)
	m.st.Armed &^= ArmedGS
}

// revert replaces modes whose reference data is no longer Normal. Modes
// without a fallback disengage the autopilot instead.
func (m *StateMachine) revert(in *Inputs) {
	st := &m.st
	switch {
	case st.Lateral.IsLocalizer() && !in.LocDeviationDeg.Valid():
		m.toHDG(in)
		st.Armed &^= ArmedGS
		if st.Vertical.IsGlideslope() {
			m.toVS(in)
		}
		st.Reverted = true
	case st.Lateral == LateralNAV && !in.NavCrossTrackNm.Valid():
		m.toHDG(in)
		st.Reverted = true
	}
	if st.Vertical.IsGlideslope() && !in.GsDeviationDeg.Valid() {
		m.toVS(in)
		st.Reverted = true
	}

	lost := false
	if st.Lateral == LateralHDG && !in.Air.HeadingDeg.Valid() {
		st.Lateral = LateralNone
		lost = true
	}
	switch st.Vertical {
	case VerticalALT, VerticalALTCPT, VerticalVS:
		if !in.Air.AltitudeFt.Valid() || !in.Air.VerticalSpeedFpm.Valid() {
			st.Vertical = VerticalNone
			st.Armed &^= ArmedALT
			lost = true
		}
	}
	if lost && st.Engaged() {
		m.disengage(AttitudeInvalid)
	}
}

func (m *StateMachine) capture(dt float64, in *Inputs) {
	st := &m.st
	loc, gs, ra := in.LocDeviationDeg, in.GsDeviationDeg, in.RadioHeightFt

	if st.Armed.Has(ArmedLOC) && loc.Valid() && math.Abs(loc.Data) < locCaptureDeg {
		st.Lateral = LateralLOCCPT
		st.Armed &^= ArmedLOC | ArmedNAV
		m.locTrack.Reset(false)
	}
	if st.Lateral == LateralLOCCPT && m.locTrack.Update(loc.Valid() && math.Abs(loc.Data) < locTrackDeg, dt) {
		st.Lateral = LateralLOC
	}

	if st.Armed.Has(ArmedGS) && (st.Lateral == LateralLOCCPT || st.Lateral == LateralLOC) &&
		gs.Valid() && math.Abs(gs.Data) < gsCaptureDeg {
		st.Vertical = VerticalGSCPT
		st.Armed &^= ArmedGS | ArmedALT
		m.gsTrack.Reset(false)
	}
	if st.Vertical == VerticalGSCPT && m.gsTrack.Update(gs.Valid() && math.Abs(gs.Data) < gsTrackDeg, dt) {
		st.Vertical = VerticalGS
	}
	if st.Vertical == VerticalGS && ra.Valid() && ra.Data <= flareHeightFt {
		st.Vertical = VerticalFlare
	}
	if st.Lateral == LateralLOC && ra.Valid() && ra.Data <= touchdownHeightFt {
		st.Lateral = LateralRollOut
	}

	alt, vs := in.Air.AltitudeFt, in.Air.VerticalSpeedFpm
	if st.Armed.Has(ArmedALT) && !st.Vertical.IsGlideslope() && alt.Valid() && vs.Valid() {
		band := math.Max(math.Abs(vs.Data)/10, altCaptureMinFt)
		if math.Abs(st.Targets.AltitudeFt-alt.Data) < band {
			st.Vertical = VerticalALTCPT
			st.Targets.HoldAltitudeFt = st.Targets.AltitudeFt
			st.Armed &^= ArmedALT
		}
	}
	if st.Vertical == VerticalALTCPT && alt.Valid() && math.Abs(st.Targets.HoldAltitudeFt-alt.Data) < altTrackFt {
		st.Vertical = VerticalALT
	}

	if st.Armed.Has(ArmedNAV) && in.NavCrossTrackNm.Valid() && math.Abs(in.NavCrossTrackNm.Data) < navCaptureNm {
		st.Lateral = LateralNAV
		st.Armed &^= ArmedNAV
	}
}

// basicModes engages HDG and V/S on the current heading and vertical speed.
func (m *StateMachine) basicModes(in *Inputs) {
	if in.Air.HeadingDeg.Valid() {
		m.toHDG(in)
	}
	if in.Air.VerticalSpeedFpm.Valid() && in.Air.AltitudeFt.Valid() {
		m.toVS(in)
	}
}

func (m *StateMachine) engageable(in *Inputs) bool {
	return !in.OnGround &&
		in.Air.PitchDeg.Valid() && in.Air.RollDeg.Valid() &&
		in.PitchLaw == computers.LawNormal &&
		!in.ProtectionActive &&
		in.SidestickDeflection <= sidestickOverride
}

func (m *StateMachine) pushAP(on, other *bool, in *Inputs) {
	st := &m.st
	if *on {
		*on = false
		st.Disconnected = true
		return
	}
	if !m.engageable(in) {
		return
	}
	// Both autopilots may only be engaged together for an approach.
	approach := st.Lateral.IsLocalizer() || st.Armed.Has(ArmedLOC)
	if *other && !approach {
		*other = false
	}
	*on = true
}

func (m *StateMachine) request(in *Inputs) {
	st := &m.st
	r := &in.Requests
	hadModes := st.Lateral != LateralNone || st.Vertical != VerticalNone

	st.FD1, st.FD2 = r.FD1, r.FD2
	if r.AP1Push {
		m.pushAP(&st.AP1, &st.AP2, in)
	}
	if r.AP2Push {
		m.pushAP(&st.AP2, &st.AP1, in)
	}
	if !st.Guidance() {
		return
	}
	if !hadModes {
		m.basicModes(in)
	}

	if r.HDGSelect && in.Air.HeadingDeg.Valid() && st.Lateral != LateralRollOut && st.Vertical != VerticalFlare {
		st.Lateral = LateralHDG
		st.Armed &^= ArmedNAV | ArmedLOC | ArmedGS
		if st.Vertical.IsGlideslope() {
			m.toVS(in)
		}
	}
	if r.NAVPush && in.NavCrossTrackNm.Valid() && st.Lateral != LateralNAV && !st.Lateral.IsLocalizer() {
		st.Armed |= ArmedNAV
	}
	if r.LOCPush && !st.Lateral.IsLocalizer() {
		if st.Armed.Has(ArmedLOC) {
			st.Armed &^= ArmedLOC | ArmedGS
		} else {
			st.Armed |= ArmedLOC
			st.Armed &^= ArmedGS
		}
	}
	if r.APPRPush {
		if !st.Lateral.IsLocalizer() {
			st.Armed |= ArmedLOC
		}
		if !st.Vertical.IsGlideslope() {
			st.Armed |= ArmedGS
		}
	}
	if r.ALTPush && in.Air.AltitudeFt.Valid() && !st.Vertical.IsGlideslope() {
		st.Vertical = VerticalALT
		st.Targets.HoldAltitudeFt = in.Air.AltitudeFt.Data
		st.Armed &^= ArmedALT
	}
	if r.VSSelect && in.Air.VerticalSpeedFpm.Valid() && st.Vertical != VerticalFlare {
		st.Vertical = VerticalVS
		st.Armed &^= ArmedGS
	}
	if r.TOGA && !in.OnGround &&
		(st.Vertical.IsGlideslope() || st.Lateral.IsLocalizer() || st.Armed.Has(ArmedGS)) {
		st.Lateral = LateralGATrack
		st.Targets.TrackDeg = in.Air.TrackDeg.Or(st.Targets.HeadingDeg)
		st.Vertical = VerticalSRSGA
		st.Armed = 0
	}

	// Climbing or descending toward the FCU altitude arms its capture.
	if alt := in.Air.AltitudeFt; alt.Valid() && !st.Armed.Has(ArmedALT) {
		err := st.Targets.AltitudeFt - alt.Data
		switch st.Vertical {
		case VerticalVS:
			if (st.Targets.VSFpm > 0 && err > 0) || (st.Targets.VSFpm < 0 && err < 0) {
				st.Armed |= ArmedALT
			}
		case VerticalSRSGA:
			if err > 0 {
				st.Armed |= ArmedALT
			}
		}
	}
}
