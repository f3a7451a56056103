package fbw

import (
	"errors"
	"io"
	"math"

	"fbwsim/internal/autopilot"
	"fbwsim/internal/autothrust"
	"fbwsim/internal/bus"
	"fbwsim/internal/computers"
	"fbwsim/internal/config"
	"fbwsim/internal/export"
	"fbwsim/internal/fdr"
	"fbwsim/internal/logging"
	"fbwsim/internal/redundancy"
	"fbwsim/internal/sensors"
)

// RA below which the flare retards the thrust to idle.
const retardRAFt = 30

// Interface owns one simulation session.
type Interface struct {
	host       Host
	configPath string
	log        *logging.Logger
	extra      []Recorder

	cfg       config.Config
	ctx       *Context
	recorders []Recorder
	closers   []io.Closer
	connected bool
}

// New creates an Interface. An empty configPath uses the defaults.
// Recorders given here receive every snapshot in addition to the ones
// enabled by the configuration.
func New(host Host, configPath string, log *logging.Logger, recorders ...Recorder) *Interface {
	return &Interface{host: host, configPath: configPath, log: log, extra: recorders}
}

// Connect loads the configuration and resets the model. Configuration
// problems are logged and the defaults used; they never fail Connect.
func (f *Interface) Connect() error {
	if f.host == nil {
		return errors.New("fbw: host is nil")
	}
	if f.connected {
		return nil
	}

	cfg := config.Default()
	if f.configPath != "" {
		var err error
		cfg, err = config.Load(f.configPath)
		if err != nil {
			f.log.Warn("configuration problems, defaults used where needed",
				"path", f.configPath, "error", err)
		}
	}
	f.cfg = cfg
	f.ctx = newContext()

	f.recorders = append([]Recorder(nil), f.extra...)
	f.closers = nil
	if cfg.FDR.Enabled {
		w, err := fdr.NewWriter(fdr.Options{
			Dir:               cfg.FDR.Dir,
			MaxSamplesPerFile: cfg.FDR.MaxSamplesPerFile,
			MaxFiles:          cfg.FDR.MaxFiles,
			Compress:          cfg.FDR.Compress,
		})
		if err != nil {
			f.log.Warn("flight data recorder disabled", "error", err)
		} else {
			f.recorders = append(f.recorders, &FDRRecorder{W: w})
			f.closers = append(f.closers, w)
		}
	}
	if cfg.Export.Enabled {
		sink, err := export.NewUDPSink(cfg.Export.Dest, cfg.Export.Interval)
		if err != nil {
			f.log.Warn("bus export disabled", "error", err)
		} else {
			f.recorders = append(f.recorders, &ExportRecorder{Sink: sink})
			f.closers = append(f.closers, sink)
		}
	}

	f.connected = true
	f.log.Info("connected",
		"nominal_rate_hz", cfg.Model.NominalRateHz,
		"max_sample_time", cfg.Model.MaxSampleTime,
		"fly_by_wire", cfg.Model.FlyByWireEnabled,
		"recorders", len(f.recorders))
	return nil
}

// Disconnect closes the recorders. The Context stays readable.
func (f *Interface) Disconnect() {
	if !f.connected {
		return
	}
	for _, c := range f.closers {
		if err := c.Close(); err != nil {
			f.log.Warn("closing recorder", "error", err)
		}
	}
	f.closers = nil
	f.recorders = nil
	f.connected = false
	f.log.Info("disconnected", "ticks", f.ctx.Tick)
}

func (f *Interface) Connected() bool       { return f.connected }
func (f *Interface) Config() config.Config { return f.cfg }
func (f *Interface) Context() *Context     { return f.ctx }

// Update runs one tick with the host's frame time rawDt. It returns false
// only when called outside a connected session.
func (f *Interface) Update(rawDt float64) bool {
	if !f.connected {
		return false
	}
	c := f.ctx
	m := &f.cfg.Model

	c.Dt, c.Clamped = sampleTime(rawDt, m)
	c.Tick++
	c.TimeS += c.Dt
	f.performance(c.Clamped)

	in := f.host.Read()
	c.Sensors.Sample(in.Physical, in.Faults)
	c.Buses = c.Sensors.Buses()

	peers := c.Computers.Step(c.Dt, computers.Inputs{
		Sensors:    &c.Buses,
		Pilot:      in.Pilot,
		Hydraulics: in.Hydraulics,
		Requests:   f.unitRequests(in.Requests),
		Autopilot: computers.AutopilotOrders{
			Engaged:  c.APState.Engaged() && m.AutopilotLawsEnabled,
			PitchDeg: c.Orders.PitchDeg,
			RollDeg:  c.Orders.RollDeg,
			YawDeg:   c.Orders.YawDeg,
		},
		Masters:              c.Masters,
		Voted:                c.Actuators.Surfaces,
		TailstrikeProtection: m.TailstrikeProtection,
	})

	sel := redundancy.SelectAll(&peers)
	masters := sel.Masters()
	if c.Tick > 1 {
		f.logFailover(&sel, masters)
	}
	c.Selection, c.Masters = sel, masters

	var act Actuators
	if m.FlyByWireEnabled {
		act = resolveActuators(&peers, &sel, &in.Pilot)
		act.PitchLaw = pitchLaw(&peers, &sel)
	} else {
		act = directActuators(&in.Pilot)
	}

	air := sensors.VoteAirData(&c.Buses)
	gl, gr, gearOK := sensors.GearCompressed(&c.Buses)
	onGround := gearOK && gl && gr
	fac := facWord(&peers)
	apIn := autopilot.Inputs{
		Requests:            in.Autopilot,
		Air:                 air,
		RadioHeightFt:       sensors.RadioHeight(&c.Buses),
		LocDeviationDeg:     c.Buses.ILS.LocDeviationDeg,
		GsDeviationDeg:      c.Buses.ILS.GsDeviationDeg,
		NavCrossTrackNm:     in.NavCrossTrackNm,
		NavDesiredTrackDeg:  in.NavDesiredTrackDeg,
		SidestickDeflection: stickDeflection(&in.Pilot),
		ProtectionActive:    fac.Bit(computers.FacBitAlphaProt) || fac.Bit(computers.FacBitHighSpeedProt),
		PitchLaw:            act.PitchLaw,
		OnGround:            onGround,
	}
	f.autopilot(c, &apIn)

	athrIn := autothrust.Inputs{
		ATHRPush:      in.Autothrust.ATHRPush,
		Disconnect:    in.Autothrust.Disconnect,
		TLADeg:        in.Pilot.ThrustLeverDeg,
		OnGround:      onGround,
		AlphaFloor:    fac.Bit(computers.FacBitAlphaFloor),
		Request:       thrustRequest(&c.APState, apIn.RadioHeightFt),
		MachMode:      in.Autothrust.MachMode,
		SpeedTargetKn: in.Autothrust.SpeedTargetKn,
		CasKn:         air.CasKn,
		N1Pct:         [2]bus.Value{c.Buses.Engine[0].N1Percent, c.Buses.Engine[1].N1Percent},
		Limits:        autothrust.DefaultLimits,
	}
	athrIn.Limits.FlexActive = in.Autothrust.FlexActive
	f.autothrust(c, &athrIn)

	act.N1CommandPct = c.ATHR.N1CommandPct
	act.AutopilotEngaged = c.APState.Engaged()
	act.AutothrustActive = c.ATHR.Status == autothrust.StatusEngagedActive
	act.PerformanceWarning = c.PerformanceWarning
	c.Actuators = act
	f.host.Write(act)

	f.record(c.snapshot(&in))
	return true
}

// sampleTime substitutes the nominal step for a non-positive, NaN or
// infinite frame time and clamps it to the configured maximum. Both count
// as clamped. Limits that are not finite positive fall back to the
// defaults.
func sampleTime(raw float64, m *config.ModelConfig) (dt float64, clamped bool) {
	def := config.Default().Model
	limit := m.MaxSampleTime
	if !(limit > 0 && limit <= 1) {
		limit = def.MaxSampleTime
	}
	nominal := m.NominalStep()
	if !(nominal > 0 && nominal <= limit) {
		nominal = math.Min(def.NominalStep(), limit)
	}

	if !(raw > 0) || math.IsInf(raw, 0) {
		return nominal, true
	}
	if raw > limit {
		return limit, true
	}
	return raw, false
}

func (f *Interface) performance(clamped bool) {
	c := f.ctx
	if !clamped {
		if c.PerformanceWarning {
			f.log.Info("performance recovered", "tick", c.Tick)
		}
		c.ClampedRun, c.PerformanceWarning = 0, false
		return
	}
	c.ClampedRun++
	if !c.PerformanceWarning && c.ClampedRun > f.cfg.Model.LowPerformanceThreshold {
		c.PerformanceWarning = true
		f.log.Warn("low performance, sample time clamped",
			"tick", c.Tick, "consecutive", c.ClampedRun, "max_sample_time", f.cfg.Model.MaxSampleTime)
	}
}

// unitRequests adds a standing total failure for units disabled by the
// configuration.
func (f *Interface) unitRequests(host map[computers.ID]computers.UnitRequest) map[computers.ID]computers.UnitRequest {
	m := &f.cfg.Model
	out := make(map[computers.ID]computers.UnitRequest, len(host)+3)
	for id, r := range host {
		out[id] = r
	}
	for _, d := range []struct {
		kind computers.Kind
		n    int
	}{{computers.KindELAC, m.ElacDisabled}, {computers.KindSEC, m.SecDisabled}, {computers.KindFAC, m.FacDisabled}} {
		if d.n > 0 {
			id := computers.ID{Kind: d.kind, Index: d.n}
			r := out[id]
			r.Failure = computers.FailureTotal
			out[id] = r
		}
	}
	return out
}

func (f *Interface) logFailover(sel *redundancy.Result, masters computers.Masters) {
	prev := f.ctx.Masters
	for a := range masters {
		if masters[a] == prev[a] {
			continue
		}
		f.log.Warn("master changed",
			"axis", computers.Axis(a).String(),
			"from", prev[a].String(),
			"to", masters[a].String(),
			"health", sel[a].Health.String(),
			"tick", f.ctx.Tick)
	}
}

func (f *Interface) autopilot(c *Context, in *autopilot.Inputs) {
	m := &f.cfg.Model
	if m.AutopilotStateMachineEnabled {
		c.APState = c.Autopilot.Update(c.Dt, in)
	}
	st := &c.APState
	if st.Disconnected {
		f.log.Info("autopilot disengaged", "reason", st.LastDisconnect.String(), "tick", c.Tick)
	}
	if st.Reverted {
		f.log.Info("autopilot mode reverted",
			"lateral", st.Lateral.String(), "vertical", st.Vertical.String(), "tick", c.Tick)
	}

	c.Orders = autopilot.Commands{PitchDeg: bus.NCD(), RollDeg: bus.NCD(), YawDeg: bus.NCD()}
	if m.AutopilotLawsEnabled {
		c.Orders = c.Laws.Evaluate(c.Dt, st, in)
	}
}

func (f *Interface) autothrust(c *Context, in *autothrust.Inputs) {
	if !f.cfg.Model.AutothrustEnabled {
		var out autothrust.Output
		for i := range in.TLADeg {
			out.N1LeverPct[i], out.InReverse[i] = autothrust.LeverN1(in.TLADeg[i], in.OnGround, in.Limits)
		}
		out.N1CommandPct = out.N1LeverPct
		c.ATHR = out
		return
	}
	c.ATHR = c.Autothrust.Evaluate(c.Dt, in)
	if c.ATHR.Disconnected {
		f.log.Info("autothrust disengaged", "tick", c.Tick)
	}
}

func (f *Interface) record(s *Snapshot) {
	kept := f.recorders[:0]
	for _, r := range f.recorders {
		if err := r.Record(s); err != nil {
			f.log.Error("recorder failed, dropping it", "error", err, "tick", s.Tick)
			continue
		}
		kept = append(kept, r)
	}
	f.recorders = kept
}

// pitchLaw is the law reported by the data concentrator, or the pitch
// master's own when no concentrator is available.
func pitchLaw(peers *computers.Peers, sel *redundancy.Result) computers.Law {
	if m := active(peers, sel[computers.AxisData]); m != nil {
		if law := m.Fcdc.ActiveLaw(); law != computers.LawNone {
			return law
		}
	}
	if m := active(peers, sel[computers.AxisPitch]); m != nil && m.ID.Kind == computers.KindELAC {
		if m.Elac.PitchLaw.Valid() {
			return computers.Law(m.Elac.PitchLaw.Data)
		}
	}
	return computers.LawDirect
}

// facWord is the discrete word of the first FAC publishing one.
func facWord(peers *computers.Peers) bus.Value {
	for _, id := range []computers.ID{computers.FAC1, computers.FAC2} {
		if o := peers.Get(id); o != nil && o.Fac.DiscreteWord.Valid() {
			return o.Fac.DiscreteWord
		}
	}
	return bus.Failed()
}

func stickDeflection(p *computers.PilotInputs) float64 {
	var d float64
	for i := 0; i < 2; i++ {
		d = math.Max(d, math.Max(math.Abs(p.SidestickPitch[i]), math.Abs(p.SidestickRoll[i])))
	}
	return d
}

func thrustRequest(st *autopilot.State, ra bus.Value) autothrust.Request {
	switch {
	case st.Vertical == autopilot.VerticalFlare && ra.Valid() && ra.Data < retardRAFt:
		return autothrust.RequestIdle
	case st.Vertical == autopilot.VerticalSRSGA:
		return autothrust.RequestClimb
	}
	return autothrust.RequestSpeed
}
