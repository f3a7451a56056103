package fbw

import (
	"strconv"

	"fbwsim/internal/bus"
	"fbwsim/internal/computers"
	"fbwsim/internal/export"
	"fbwsim/internal/fdr"
)

// FDRRecorder writes one fdr.Record per tick.
type FDRRecorder struct {
	W *fdr.Writer
}

func (r *FDRRecorder) Record(s *Snapshot) error {
	rec := FDRRecord(s)
	return r.W.Write(&rec)
}

// ExportRecorder sends the named bus snapshot over UDP.
type ExportRecorder struct {
	Sink *export.UDPSink
}

func (r *ExportRecorder) Record(s *Snapshot) error {
	snap := export.Collect(s.Tick, s.TimeS, s)
	return r.Sink.Send(&snap)
}

// Publish emits the sensor words, every unit's buses, and the
// autopilot, autothrust and actuator outputs.
func (s *Snapshot) Publish(emit bus.Emitter) {
	s.Buses.Publish(emit)
	s.Peers.Publish(emit)

	for a, sel := range s.Selection {
		name := "master." + computers.Axis(a).String()
		master := 0.0
		for i, id := range computers.StepOrder {
			if id == sel.Master {
				master = float64(i + 1)
			}
		}
		emit(name, bus.NewValue(master).WithStatus(sel.Status))
	}

	emit("ap.pitch_order_deg", s.Orders.PitchDeg)
	emit("ap.roll_order_deg", s.Orders.RollDeg)
	emit("ap.yaw_order_deg", s.Orders.YawDeg)
	emit("ap.lateral_mode", bus.NewValue(float64(s.Autopilot.Lateral)))
	emit("ap.vertical_mode", bus.NewValue(float64(s.Autopilot.Vertical)))
	emit("ap.armed", bus.NewValue(float64(s.Autopilot.Armed)))
	emit("ap.engaged", boolValue(s.Autopilot.Engaged()))

	emit("athr.status", bus.NewValue(float64(s.Autothrust.Status)))
	emit("athr.mode", bus.NewValue(float64(s.Autothrust.Mode)))
	for i, n1 := range s.Autothrust.N1CommandPct {
		emit("athr.n1_command_"+strconv.Itoa(i+1)+"_pct", bus.NewValue(n1))
	}

	a := &s.Actuators
	surf := func(name string, status bus.Status, v float64) {
		emit("act."+name, bus.NewValue(v).WithStatus(status))
	}
	pitch, roll := a.Status[computers.AxisPitch], a.Status[computers.AxisRoll]
	// Only an ELAC drives the ailerons; with a SEC on roll they are not computed.
	aileron := roll
	if roll == bus.Normal && s.Selection[computers.AxisRoll].Master.Kind != computers.KindELAC {
		aileron = bus.NoComputedData
	}
	surf("left_elevator_deg", pitch, a.Surfaces.LeftElevatorDeg)
	surf("right_elevator_deg", pitch, a.Surfaces.RightElevatorDeg)
	surf("ths_deg", pitch, a.Surfaces.THSDeg)
	surf("left_aileron_deg", aileron, a.Surfaces.LeftAileronDeg)
	surf("right_aileron_deg", aileron, a.Surfaces.RightAileronDeg)
	surf("rudder_deg", a.Status[computers.AxisYaw], a.RudderDeg)
	emit("act.performance_warning", boolValue(a.PerformanceWarning))
}

func boolValue(b bool) bus.Value {
	if b {
		return bus.NewValue(1)
	}
	return bus.NewValue(0)
}

// FDRRecord flattens a Snapshot into the recorder layout.
func FDRRecord(s *Snapshot) fdr.Record {
	r := fdr.Record{
		Tick:  s.Tick,
		TimeS: s.TimeS,
		DtS:   s.Dt,
	}
	ap := &s.Autopilot
	act := &s.Actuators
	for _, f := range []struct {
		on  bool
		bit uint32
	}{
		{s.Clamped, fdr.FlagClamped},
		{s.PerformanceWarning, fdr.FlagPerformanceWarning},
		{s.Inputs.Physical.LeftMainGearCompressed && s.Inputs.Physical.RightMainGearCompressed, fdr.FlagOnGround},
		{ap.AP1, fdr.FlagAP1},
		{ap.AP2, fdr.FlagAP2},
		{ap.FD1, fdr.FlagFD1},
		{ap.FD2, fdr.FlagFD2},
		{act.Surfaces.GroundSpoilersOut, fdr.FlagGroundSpoilersOut},
	} {
		if f.on {
			r.Flags |= f.bit
		}
	}

	p := &s.Inputs.Physical
	r.AltitudeFt = p.AltitudeFt
	r.CasKn = p.CasKn
	r.Mach = p.Mach
	r.VerticalSpeedFpm = p.VerticalSpeedFpm
	r.AlphaDeg = p.AlphaDeg
	r.PitchDeg = p.PitchDeg
	r.RollDeg = p.RollDeg
	r.HeadingDeg = p.HeadingDeg
	r.NzG = p.NzG
	r.RadioHeightFt = p.RadioHeightFt

	pilot := &s.Inputs.Pilot
	r.SidestickPitch = pilot.SidestickPitch
	r.SidestickRoll = pilot.SidestickRoll
	r.RudderPedal = pilot.RudderPedal
	r.SpeedBrakeLever = pilot.SpeedBrakeLever
	r.ThrustLeverDeg = pilot.ThrustLeverDeg

	for i, id := range computers.StepOrder {
		if o := s.Peers.Get(id); o != nil {
			r.Health[i] = uint8(o.Health)
		}
	}
	for a, sel := range s.Selection {
		if !sel.Active() {
			continue
		}
		for i, id := range computers.StepOrder {
			if id == sel.Master {
				r.Masters[a] = uint8(i + 1)
			}
		}
	}
	r.PitchLaw = uint8(act.PitchLaw)

	r.APLateral = uint8(ap.Lateral)
	r.APVertical = uint8(ap.Vertical)
	r.APArmed = uint8(ap.Armed)
	r.APDisconnect = uint8(ap.LastDisconnect)
	r.APPitchOrderDeg = s.Orders.PitchDeg.Data
	r.APRollOrderDeg = s.Orders.RollDeg.Data
	r.APYawOrderDeg = s.Orders.YawDeg.Data
	r.HeadingTargetDeg = ap.Targets.HeadingDeg
	r.AltitudeTargetFt = ap.Targets.AltitudeFt
	r.VSTargetFpm = ap.Targets.VSFpm

	r.ATHRStatus = uint8(s.Autothrust.Status)
	r.ATHRMode = uint8(s.Autothrust.Mode)
	r.SpeedTargetKn = s.Inputs.Autothrust.SpeedTargetKn
	r.N1CommandPct = s.Autothrust.N1CommandPct
	r.N1Pct = p.N1Percent

	r.LeftElevatorDeg = act.Surfaces.LeftElevatorDeg
	r.RightElevatorDeg = act.Surfaces.RightElevatorDeg
	r.THSDeg = act.Surfaces.THSDeg
	r.LeftAileronDeg = act.Surfaces.LeftAileronDeg
	r.RightAileronDeg = act.Surfaces.RightAileronDeg
	r.RudderDeg = act.RudderDeg
	r.LeftSpoilerDeg = act.Surfaces.LeftSpoilerDeg
	r.RightSpoilerDeg = act.Surfaces.RightSpoilerDeg
	return r
}
