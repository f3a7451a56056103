package sim

import (
	"maps"
	"time"

	"fbwsim/internal/autopilot"
	"fbwsim/internal/bus"
	"fbwsim/internal/computers"
	"fbwsim/internal/fbw"
	"fbwsim/internal/sensors"
)

const (
	clbDetentDeg  = 25.0
	togaDetentDeg = 45.0
)

// Host drives an Ownship from a Scenario and implements fbw.Host. Call
// Advance before each fbw Update.
type Host struct {
	Ownship *Ownship

	scn     *Scenario
	elapsed time.Duration

	pilot    computers.PilotInputs
	faults   sensors.Faults
	hyd      computers.Hydraulics
	requests map[computers.ID]computers.UnitRequest
	ap       autopilot.Requests
	athr     fbw.AutothrustRequests

	last fbw.Actuators
}

func NewHost(scn *Scenario) *Host {
	start := scn.Initial()
	own := &Ownship{
		NorthNm:    start.NorthNm,
		EastNm:     start.EastNm,
		AltitudeFt: start.AltitudeFt,
		CasKn:      start.CasKn,
		HeadingDeg: start.HeadingDeg,
		PitchDeg:   trimAlphaDeg,
		NzG:        1,
		FlapConfig: start.FlapConfig,
		GearDown:   start.GearDown,
		Runway:     scn.script.Runway,
		Route:      scn.script.Route,
	}
	if own.OnGround() {
		own.PitchDeg = 0
	}
	own.N1Pct = [2]float64{start.N1Pct, start.N1Pct}

	h := &Host{
		Ownship:  own,
		scn:      scn,
		hyd:      computers.Hydraulics{Green: true, Blue: true, Yellow: true},
		requests: make(map[computers.ID]computers.UnitRequest),
		ap:       clearedRequests(autopilot.Requests{}),
	}
	h.pilot.ThrustLeverDeg = [2]float64{clbDetentDeg, clbDetentDeg}
	h.athr.SpeedTargetKn = start.SpeedTarget
	if h.athr.SpeedTargetKn <= 0 {
		h.athr.SpeedTargetKn = start.CasKn
	}
	h.last.N1CommandPct = own.N1Pct
	return h
}

func (h *Host) Elapsed() time.Duration { return h.elapsed }

// Done reports whether the scenario duration has been flown.
func (h *Host) Done() bool { return h.elapsed >= h.scn.Duration() }

// Advance applies the events due at the current time, then flies the
// aircraft for dt seconds with the last actuator outputs.
func (h *Host) Advance(dt float64) {
	for _, e := range h.scn.Due(h.elapsed) {
		h.apply(&e)
	}
	h.Ownship.Step(dt, &h.last)
	h.elapsed += time.Duration(dt * float64(time.Second))
}

func (h *Host) Read() fbw.HostInputs {
	in := fbw.HostInputs{
		Physical:   h.Ownship.Physical(),
		Faults:     h.faults,
		Pilot:      h.pilot,
		Hydraulics: h.hyd,
		Requests:   maps.Clone(h.requests),
		Autopilot:  h.ap,
		Autothrust: h.athr,
	}
	in.Autopilot.TOGA = h.pilot.ThrustLeverDeg[0] >= togaDetentDeg || h.pilot.ThrustLeverDeg[1] >= togaDetentDeg
	in.NavCrossTrackNm, in.NavDesiredTrackDeg = h.Ownship.NavGuidance()

	h.ap = clearedRequests(h.ap)
	h.athr.ATHRPush = false
	h.athr.Disconnect = false
	return in
}

func (h *Host) Write(out fbw.Actuators) { h.last = out }

func (h *Host) Last() fbw.Actuators { return h.last }

// clearedRequests keeps the flight director switches and drops the pulses.
func clearedRequests(r autopilot.Requests) autopilot.Requests {
	return autopilot.Requests{
		FD1:              r.FD1,
		FD2:              r.FD2,
		HeadingTargetDeg: bus.NCD(),
		AltitudeTargetFt: bus.NCD(),
		VSTargetFpm:      bus.NCD(),
	}
}

func (h *Host) apply(e *Event) {
	h.ap.AP1Push = h.ap.AP1Push || e.AP1Push
	h.ap.AP2Push = h.ap.AP2Push || e.AP2Push
	h.ap.InstinctiveDisconnect = h.ap.InstinctiveDisconnect || e.APDisconnect
	h.ap.NAVPush = h.ap.NAVPush || e.NAVPush
	h.ap.LOCPush = h.ap.LOCPush || e.LOCPush
	h.ap.APPRPush = h.ap.APPRPush || e.APPRPush
	h.ap.ALTPush = h.ap.ALTPush || e.ALTPush
	if e.FD1 != nil {
		h.ap.FD1 = *e.FD1
	}
	if e.FD2 != nil {
		h.ap.FD2 = *e.FD2
	}
	if e.HDGSelect != nil {
		h.ap.HDGSelect = true
		h.ap.HeadingTargetDeg = bus.NewValue(*e.HDGSelect)
	}
	if e.AltitudeTarget != nil {
		h.ap.AltitudeTargetFt = bus.NewValue(*e.AltitudeTarget)
	}
	if e.VSSelect != nil {
		h.ap.VSSelect = true
		h.ap.VSTargetFpm = bus.NewValue(*e.VSSelect)
	}

	h.athr.ATHRPush = h.athr.ATHRPush || e.ATHRPush
	h.athr.Disconnect = h.athr.Disconnect || e.ATHRDisconnect
	if e.SpeedTargetKn != nil {
		h.athr.SpeedTargetKn = *e.SpeedTargetKn
	}
	if e.ThrustLeverDeg != nil {
		h.pilot.ThrustLeverDeg = [2]float64{*e.ThrustLeverDeg, *e.ThrustLeverDeg}
	}

	if e.SidestickPitch != nil {
		h.pilot.SidestickPitch[0] = *e.SidestickPitch
	}
	if e.SidestickRoll != nil {
		h.pilot.SidestickRoll[0] = *e.SidestickRoll
	}
	if e.RudderPedal != nil {
		h.pilot.RudderPedal = *e.RudderPedal
	}
	if e.SpeedBrake != nil {
		h.pilot.SpeedBrakeLever = *e.SpeedBrake
	}
	if e.GroundSpoilersArmed != nil {
		h.pilot.GroundSpoilersArmed = *e.GroundSpoilersArmed
	}
	if e.FlapConfig != nil {
		h.Ownship.FlapConfig = *e.FlapConfig
	}
	if e.GearDown != nil {
		h.Ownship.GearDown = *e.GearDown
	}

	h.applyUnits(e)
	h.applySensors(e.SensorFail, true)
	h.applySensors(e.SensorClear, false)
	h.applyHydraulics(e.HydraulicsLost, false)
	h.applyHydraulics(e.HydraulicsRestored, true)
}

// Names were checked by NewScenario.
func (h *Host) applyUnits(e *Event) {
	for _, name := range e.Fail {
		id, f, _ := ParseUnit(name)
		r := h.requests[id]
		r.Failure = f
		h.requests[id] = r
	}
	for _, name := range e.Clear {
		id, _, _ := ParseUnit(name)
		r := h.requests[id]
		r.Failure = computers.FailureNone
		h.requests[id] = r
	}
	for _, name := range e.PushbuttonOff {
		id, _, _ := ParseUnit(name)
		r := h.requests[id]
		r.PushbuttonOff = true
		h.requests[id] = r
	}
	for _, name := range e.PushbuttonOn {
		id, _, _ := ParseUnit(name)
		r := h.requests[id]
		r.PushbuttonOff = false
		h.requests[id] = r
	}
}

func (h *Host) applySensors(names []string, failed bool) {
	for _, name := range names {
		ref, _ := parseSensor(name)
		i := ref.index - 1
		switch ref.kind {
		case "adr":
			h.faults.ADR[i] = failed
		case "ir":
			h.faults.IR[i] = failed
		case "ir_align":
			h.faults.IRAligning[i] = failed
		case "ra":
			h.faults.RA[i] = failed
		case "lgciu":
			h.faults.LGCIU[i] = failed
		case "sfcc":
			h.faults.SFCC[i] = failed
		case "eng":
			h.faults.Engine[i] = failed
		case "ils":
			h.faults.ILS = failed
		}
	}
}

func (h *Host) applyHydraulics(names []string, on bool) {
	for _, name := range names {
		switch name {
		case "green":
			h.hyd.Green = on
		case "blue":
			h.hyd.Blue = on
		case "yellow":
			h.hyd.Yellow = on
		}
	}
}

var _ fbw.Host = (*Host)(nil)
