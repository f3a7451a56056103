package sensors

import "fbwsim/internal/bus"

// Suite holds every front-end and the samples they produced this tick.
type Suite struct {
	ADIRS   ADIRS
	RA      RadioAltimeters
	LGCIU   LGCIUs
	SFCC    SFCCs
	ILS     ILSReceiver
	Engines EngineSensors
}

// Sample refreshes every channel from the physical state and faults.
func (s *Suite) Sample(p Physical, f Faults) {
	s.ADIRS.sample(p, f)
	s.RA.sample(p, f)
	s.LGCIU.sample(p, f)
	s.SFCC.sample(p, f)
	s.ILS.sample(p, f)
	s.Engines.sample(p, f)
}

// Buses collects this tick's words from every channel.
func (s *Suite) Buses() Buses {
	var b Buses
	for ch := 1; ch <= NumADIRS; ch++ {
		b.ADR[ch-1] = s.ADIRS.ReadADR(ch)
		b.IR[ch-1] = s.ADIRS.ReadIR(ch)
	}
	for ch := 1; ch <= NumRA; ch++ {
		b.RA[ch-1] = s.RA.Read(ch)
	}
	for ch := 1; ch <= NumLGCIU; ch++ {
		b.LGCIU[ch-1] = s.LGCIU.Read(ch)
	}
	for ch := 1; ch <= NumSFCC; ch++ {
		b.SFCC[ch-1] = s.SFCC.Read(ch)
	}
	b.ILS = s.ILS.Read()
	for ch := 1; ch <= NumEngine; ch++ {
		b.Engine[ch-1] = s.Engines.Read(ch)
	}
	return b
}

// ADIRS is the three-channel air data / inertial reference front-end.
type ADIRS struct {
	adr [NumADIRS]ADRBus
	ir  [NumADIRS]IRBus
}

func (a *ADIRS) sample(p Physical, f Faults) {
	for i := 0; i < NumADIRS; i++ {
		if f.ADR[i] {
			a.adr[i] = failedADR()
		} else {
			a.adr[i] = ADRBus{
				AltitudeFt:       bus.NewValue(p.AltitudeFt),
				CasKn:            bus.NewValue(p.CasKn + f.ADRCasBiasKn[i]),
				Mach:             bus.NewValue(p.Mach),
				TasKn:            bus.NewValue(p.TasKn),
				VerticalSpeedFpm: bus.NewValue(p.VerticalSpeedFpm),
				AlphaDeg:         bus.NewValue(p.AlphaDeg),
			}
		}

		switch {
		case f.IR[i]:
			a.ir[i] = irWithStatus(bus.FailureWarning)
		case f.IRAligning[i]:
			a.ir[i] = irWithStatus(bus.NoComputedData)
		default:
			a.ir[i] = IRBus{
				PitchDeg:      bus.NewValue(p.PitchDeg),
				RollDeg:       bus.NewValue(p.RollDeg),
				HeadingDeg:    bus.NewValue(p.HeadingDeg),
				TrackDeg:      bus.NewValue(p.TrackDeg),
				PitchRateDegS: bus.NewValue(p.PitchRateDegS),
				RollRateDegS:  bus.NewValue(p.RollRateDegS),
				YawRateDegS:   bus.NewValue(p.YawRateDegS),
				NzG:           bus.NewValue(p.NzG),
				FpaDeg:        bus.NewValue(p.FpaDeg),
				InertialVSFpm: bus.NewValue(p.VerticalSpeedFpm),
				GroundSpeedKn: bus.NewValue(p.GroundSpeedKn),
			}
		}
	}
}

func failedADR() ADRBus {
	fw := bus.Failed()
	return ADRBus{AltitudeFt: fw, CasKn: fw, Mach: fw, TasKn: fw, VerticalSpeedFpm: fw, AlphaDeg: fw}
}

func irWithStatus(s bus.Status) IRBus {
	v := bus.Value{Status: s}
	return IRBus{
		PitchDeg: v, RollDeg: v, HeadingDeg: v, TrackDeg: v,
		PitchRateDegS: v, RollRateDegS: v, YawRateDegS: v,
		NzG: v, FpaDeg: v, InertialVSFpm: v, GroundSpeedKn: v,
	}
}

// ReadADR returns the ADR words of channel ch (1..3).
func (a *ADIRS) ReadADR(ch int) ADRBus {
	if ch < 1 || ch > NumADIRS {
		return failedADR()
	}
	return a.adr[ch-1]
}

// ReadIR returns the IR words of channel ch (1..3).
func (a *ADIRS) ReadIR(ch int) IRBus {
	if ch < 1 || ch > NumADIRS {
		return irWithStatus(bus.FailureWarning)
	}
	return a.ir[ch-1]
}

type RadioAltimeters struct {
	ch [NumRA]RABus
}

func (r *RadioAltimeters) sample(p Physical, f Faults) {
	for i := range r.ch {
		switch {
		case f.RA[i]:
			r.ch[i] = RABus{HeightFt: bus.Failed()}
		case p.RadioHeightFt > raMaxHeightFt:
			r.ch[i] = RABus{HeightFt: bus.NCD()}
		default:
			r.ch[i] = RABus{HeightFt: bus.NewValue(p.RadioHeightFt)}
		}
	}
}

func (r *RadioAltimeters) Read(ch int) RABus {
	if ch < 1 || ch > NumRA {
		return RABus{HeightFt: bus.Failed()}
	}
	return r.ch[ch-1]
}

type LGCIUs struct {
	ch [NumLGCIU]LGCIUBus
}

func (l *LGCIUs) sample(p Physical, f Faults) {
	for i := range l.ch {
		if f.LGCIU[i] {
			l.ch[i] = LGCIUBus{DiscreteWord1: bus.Failed()}
			continue
		}
		var w bus.Word
		w.Set(BitNoseGearCompressed, p.NoseGearCompressed)
		w.Set(BitLeftMainGearCompressed, p.LeftMainGearCompressed)
		w.Set(BitRightMainGearCompressed, p.RightMainGearCompressed)
		w.Set(BitGearDownLocked, p.GearDownLocked)
		l.ch[i] = LGCIUBus{DiscreteWord1: w.Value(bus.Normal)}
	}
}

func (l *LGCIUs) Read(ch int) LGCIUBus {
	if ch < 1 || ch > NumLGCIU {
		return LGCIUBus{DiscreteWord1: bus.Failed()}
	}
	return l.ch[ch-1]
}

type SFCCs struct {
	ch [NumSFCC]SFCCBus
}

func (s *SFCCs) sample(p Physical, f Faults) {
	for i := range s.ch {
		if f.SFCC[i] {
			fw := bus.Failed()
			s.ch[i] = SFCCBus{SlatDeg: fw, FlapDeg: fw, FlapConfig: fw}
			continue
		}
		s.ch[i] = SFCCBus{
			SlatDeg:    bus.NewValue(p.SlatDeg),
			FlapDeg:    bus.NewValue(p.FlapDeg),
			FlapConfig: bus.NewValue(float64(p.FlapConfig)),
		}
	}
}

func (s *SFCCs) Read(ch int) SFCCBus {
	if ch < 1 || ch > NumSFCC {
		fw := bus.Failed()
		return SFCCBus{SlatDeg: fw, FlapDeg: fw, FlapConfig: fw}
	}
	return s.ch[ch-1]
}

// ILSReceiver is the single localizer/glideslope receiver.
type ILSReceiver struct {
	out ILSBus
}

func (r *ILSReceiver) sample(p Physical, f Faults) {
	if f.ILS {
		r.out = ILSBus{LocDeviationDeg: bus.Failed(), GsDeviationDeg: bus.Failed()}
		return
	}
	r.out = ILSBus{
		LocDeviationDeg: bus.ValidIf(p.LocReceived, p.LocDeviationDeg),
		GsDeviationDeg:  bus.ValidIf(p.GsReceived, p.GsDeviationDeg),
	}
}

func (r *ILSReceiver) Read() ILSBus { return r.out }

type EngineSensors struct {
	ch [NumEngine]EngineBus
}

func (e *EngineSensors) sample(p Physical, f Faults) {
	for i := range e.ch {
		if f.Engine[i] {
			e.ch[i] = EngineBus{N1Percent: bus.Failed()}
			continue
		}
		e.ch[i] = EngineBus{N1Percent: bus.NewValue(p.N1Percent[i])}
	}
}

func (e *EngineSensors) Read(ch int) EngineBus {
	if ch < 1 || ch > NumEngine {
		return EngineBus{N1Percent: bus.Failed()}
	}
	return e.ch[ch-1]
}
