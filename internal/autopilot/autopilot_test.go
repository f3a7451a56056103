package autopilot

import (
	"math"
	"testing"

	"fbwsim/internal/bus"
	"fbwsim/internal/computers"
	"fbwsim/internal/sensors"
)

const dt = 0.1

func cruise() *Inputs {
	return &Inputs{
		Air: sensors.AirData{
			ValidADR:         3,
			ValidIR:          3,
			AltitudeFt:       bus.NewValue(10000),
			CasKn:            bus.NewValue(250),
			TasKn:            bus.NewValue(290),
			VerticalSpeedFpm: bus.NewValue(0),
			PitchDeg:         bus.NewValue(2.5),
			RollDeg:          bus.NewValue(0),
			HeadingDeg:       bus.NewValue(90),
			TrackDeg:         bus.NewValue(90),
			FpaDeg:           bus.NewValue(0),
		},
		RadioHeightFt:      bus.NCD(),
		LocDeviationDeg:    bus.NCD(),
		GsDeviationDeg:     bus.NCD(),
		NavCrossTrackNm:    bus.NCD(),
		NavDesiredTrackDeg: bus.NCD(),
		PitchLaw:           computers.LawNormal,
	}
}

// engaged returns a state machine with AP1 in HDG and V/S.
func engaged(t *testing.T, in *Inputs) *StateMachine {
	t.Helper()
	m := NewStateMachine()
	in.Requests.AP1Push = true
	st := m.Update(dt, in)
	in.Requests = Requests{}
	if !st.AP1 {
		t.Fatalf("AP1 did not engage: %+v", st)
	}
	return m
}

func TestEngageActivatesBasicModes(t *testing.T) {
	in := cruise()
	m := engaged(t, in)
	st := m.State()
	if st.Lateral != LateralHDG || st.Vertical != VerticalVS {
		t.Fatalf("modes=%v/%v want HDG/V/S", st.Lateral, st.Vertical)
	}
	if st.Targets.HeadingDeg != 90 || st.Targets.VSFpm != 0 {
		t.Fatalf("targets=%+v want synchronised to 90/0", st.Targets)
	}
}

func TestEngageRefusedOnGround(t *testing.T) {
	in := cruise()
	in.OnGround = true
	in.Requests.AP1Push = true
	st := NewStateMachine().Update(dt, in)
	if st.Engaged() || st.Lateral != LateralNone {
		t.Fatalf("engaged on ground: %+v", st)
	}
}

func TestDisengageFirstMatchWins(t *testing.T) {
	cases := []struct {
		name  string
		apply func(in *Inputs)
		want  DisconnectReason
	}{
		{"instinctive before everything", func(in *Inputs) {
			in.Requests.InstinctiveDisconnect = true
			in.SidestickDeflection = 1
			in.ProtectionActive = true
			in.PitchLaw = computers.LawDirect
		}, InstinctiveDisconnect},
		{"sidestick before protection", func(in *Inputs) {
			in.SidestickDeflection = 0.8
			in.ProtectionActive = true
			in.Air.PitchDeg = bus.Failed()
		}, SidestickOverride},
		{"protection before attitude", func(in *Inputs) {
			in.ProtectionActive = true
			in.Air.RollDeg = bus.Failed()
		}, ProtectionActive},
		{"attitude before law", func(in *Inputs) {
			in.Air.PitchDeg = bus.Failed()
			in.PitchLaw = computers.LawAlternate
		}, AttitudeInvalid},
		{"degraded law", func(in *Inputs) {
			in.PitchLaw = computers.LawAlternate
		}, FlightControlsDegraded},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := cruise()
			m := engaged(t, in)
			c.apply(in)
			st := m.Update(dt, in)
			if st.Engaged() || !st.Disconnected {
				t.Fatalf("still engaged: %+v", st)
			}
			if st.LastDisconnect != c.want {
				t.Fatalf("reason=%v want %v", st.LastDisconnect, c.want)
			}
		})
	}
}

func TestSmallSidestickInputDoesNotDisengage(t *testing.T) {
	in := cruise()
	m := engaged(t, in)
	in.SidestickDeflection = 0.3
	if st := m.Update(dt, in); !st.AP1 {
		t.Fatalf("disengaged below the override threshold")
	}
}

func TestPushbuttonOffKeepsFlightDirector(t *testing.T) {
	in := cruise()
	m := engaged(t, in)
	in.Requests.FD1 = true
	m.Update(dt, in)

	in.Requests.AP1Push = true
	st := m.Update(dt, in)
	if st.Engaged() || !st.Disconnected {
		t.Fatalf("AP1 still engaged: %+v", st)
	}
	if st.Lateral != LateralHDG || st.Vertical != VerticalVS {
		t.Fatalf("flight director lost its modes: %v/%v", st.Lateral, st.Vertical)
	}

	in.Requests = Requests{}
	st = m.Update(dt, in)
	if st.Lateral != LateralNone || st.Vertical != VerticalNone {
		t.Fatalf("modes remain with no AP or FD: %v/%v", st.Lateral, st.Vertical)
	}
}

func TestSecondAutopilotOutsideApproach(t *testing.T) {
	in := cruise()
	m := engaged(t, in)
	in.Requests.AP2Push = true
	st := m.Update(dt, in)
	if st.AP1 || !st.AP2 {
		t.Fatalf("AP1=%v AP2=%v want only AP2", st.AP1, st.AP2)
	}
}

// approach arms LOC and G/S and captures both.
func approach(t *testing.T) (*StateMachine, *Inputs) {
	t.Helper()
	in := cruise()
	m := engaged(t, in)
	in.Requests.APPRPush = true
	in.LocDeviationDeg = bus.NewValue(1.0)
	in.GsDeviationDeg = bus.NewValue(0.3)
	st := m.Update(dt, in)
	in.Requests = Requests{}
	if !st.Armed.Has(ArmedLOC) || !st.Armed.Has(ArmedGS) {
		t.Fatalf("armed=%v want LOC G/S", st.Armed)
	}
	st = m.Update(dt, in)
	if st.Lateral != LateralLOCCPT || st.Vertical != VerticalGSCPT {
		t.Fatalf("modes=%v/%v want LOC*/G/S*", st.Lateral, st.Vertical)
	}
	if st.Armed != 0 {
		t.Fatalf("armed=%v after capture", st.Armed)
	}
	return m, in
}

func TestCaptureLocalizerAndGlideslope(t *testing.T) {
	m, in := approach(t)
	in.LocDeviationDeg = bus.NewValue(0.1)
	in.GsDeviationDeg = bus.NewValue(0.05)

	var st State
	for i := 0; i < 10; i++ {
		st = m.Update(dt, in)
	}
	if st.Lateral != LateralLOCCPT || st.Vertical != VerticalGSCPT {
		t.Fatalf("tracked before confirmation: %v/%v", st.Lateral, st.Vertical)
	}
	for i := 0; i < 20; i++ {
		st = m.Update(dt, in)
	}
	if st.Lateral != LateralLOC || st.Vertical != VerticalGS {
		t.Fatalf("modes=%v/%v want LOC/G/S", st.Lateral, st.Vertical)
	}

	in.RadioHeightFt = bus.NewValue(40)
	if st = m.Update(dt, in); st.Vertical != VerticalFlare || st.Lateral != LateralLOC {
		t.Fatalf("modes=%v/%v want LOC/FLARE", st.Lateral, st.Vertical)
	}
	in.RadioHeightFt = bus.NewValue(2)
	if st = m.Update(dt, in); st.Lateral != LateralRollOut {
		t.Fatalf("lateral=%v want ROLL OUT", st.Lateral)
	}
}

func TestLocalizerLossRevertsToBasicModes(t *testing.T) {
	m, in := approach(t)
	in.LocDeviationDeg = bus.Failed()
	in.Air.VerticalSpeedFpm = bus.NewValue(-700)
	st := m.Update(dt, in)
	if st.Lateral != LateralHDG || st.Vertical != VerticalVS || !st.Reverted {
		t.Fatalf("modes=%v/%v reverted=%v want HDG/V/S", st.Lateral, st.Vertical, st.Reverted)
	}
	if !st.AP1 {
		t.Fatalf("reversion disengaged the autopilot")
	}
	if st.Targets.VSFpm != -700 || st.Targets.HeadingDeg != 90 {
		t.Fatalf("targets=%+v want current VS and heading", st.Targets)
	}
}

func TestGlideslopeLossHoldsVerticalSpeed(t *testing.T) {
	m, in := approach(t)
	in.GsDeviationDeg = bus.NCD()
	in.Air.VerticalSpeedFpm = bus.NewValue(-650)
	st := m.Update(dt, in)
	if st.Lateral != LateralLOCCPT || st.Vertical != VerticalVS {
		t.Fatalf("modes=%v/%v want LOC*/V/S", st.Lateral, st.Vertical)
	}
	if st.Targets.VSFpm != -650 {
		t.Fatalf("vs target=%v want -650", st.Targets.VSFpm)
	}
}

func TestHeadingLossDisengages(t *testing.T) {
	in := cruise()
	m := engaged(t, in)
	in.Air.HeadingDeg = bus.Failed()
	st := m.Update(dt, in)
	if st.Engaged() || st.LastDisconnect != AttitudeInvalid {
		t.Fatalf("got %+v want disengaged on heading loss", st)
	}
}

func TestAltitudeCapture(t *testing.T) {
	in := cruise()
	m := engaged(t, in)
	in.Requests.AltitudeTargetFt = bus.NewValue(11000)
	in.Requests.VSTargetFpm = bus.NewValue(1500)
	in.Requests.VSSelect = true
	st := m.Update(dt, in)
	in.Requests = Requests{}
	if st.Vertical != VerticalVS || !st.Armed.Has(ArmedALT) {
		t.Fatalf("vertical=%v armed=%v want V/S with ALT armed", st.Vertical, st.Armed)
	}

	in.Air.AltitudeFt = bus.NewValue(10900)
	in.Air.VerticalSpeedFpm = bus.NewValue(1500)
	if st = m.Update(dt, in); st.Vertical != VerticalALTCPT {
		t.Fatalf("vertical=%v want ALT*", st.Vertical)
	}
	in.Air.AltitudeFt = bus.NewValue(10990)
	if st = m.Update(dt, in); st.Vertical != VerticalALT || st.Targets.HoldAltitudeFt != 11000 {
		t.Fatalf("vertical=%v hold=%v want ALT 11000", st.Vertical, st.Targets.HoldAltitudeFt)
	}
}

func TestNavCapture(t *testing.T) {
	in := cruise()
	m := engaged(t, in)
	in.NavCrossTrackNm = bus.NewValue(4)
	in.Requests.NAVPush = true
	st := m.Update(dt, in)
	in.Requests = Requests{}
	if st.Lateral != LateralHDG || !st.Armed.Has(ArmedNAV) {
		t.Fatalf("lateral=%v armed=%v want HDG with NAV armed", st.Lateral, st.Armed)
	}
	in.NavCrossTrackNm = bus.NewValue(1)
	if st = m.Update(dt, in); st.Lateral != LateralNAV || st.Armed.Has(ArmedNAV) {
		t.Fatalf("lateral=%v armed=%v want NAV", st.Lateral, st.Armed)
	}
}

func TestGoAround(t *testing.T) {
	m, in := approach(t)
	in.Requests.TOGA = true
	st := m.Update(dt, in)
	if st.Lateral != LateralGATrack || st.Vertical != VerticalSRSGA {
		t.Fatalf("modes=%v/%v want GA TRK/SRS GA", st.Lateral, st.Vertical)
	}
	if !st.AP1 || st.Targets.TrackDeg != 90 {
		t.Fatalf("ap=%v track=%v", st.AP1, st.Targets.TrackDeg)
	}
}

func TestLawsRateLimitWithoutOvershoot(t *testing.T) {
	in := cruise()
	st := State{AP1: true, Lateral: LateralHDG, Targets: Targets{HeadingDeg: 180}}
	l := NewLaws()

	prev := 0.0
	for i := 0; i < 150; i++ {
		c := l.Evaluate(0.05, &st, in)
		if !c.RollDeg.Valid() {
			t.Fatalf("roll order not valid in HDG")
		}
		if step := math.Abs(c.RollDeg.Data - prev); step > RollSlewDegS*0.05+1e-9 {
			t.Fatalf("tick %d: step %v exceeds slew", i, step)
		}
		if c.RollDeg.Data > maxBankDeg {
			t.Fatalf("tick %d: overshoot %v", i, c.RollDeg.Data)
		}
		prev = c.RollDeg.Data
	}
	if prev != maxBankDeg {
		t.Fatalf("roll=%v want %v", prev, maxBankDeg)
	}
}

func TestLawsHeadingShortestPath(t *testing.T) {
	cases := []struct {
		heading, target float64
		right           bool
	}{
		{350, 10, true},
		{10, 350, false},
		{90, 100, true},
	}
	for _, c := range cases {
		in := cruise()
		in.Air.HeadingDeg = bus.NewValue(c.heading)
		st := State{AP1: true, Lateral: LateralHDG, Targets: Targets{HeadingDeg: c.target}}
		got := NewLaws().Evaluate(0.05, &st, in).RollDeg.Data
		if (got > 0) != c.right {
			t.Fatalf("heading %v -> %v: roll=%v", c.heading, c.target, got)
		}
	}
}

func TestLawsHoldLastGoodValue(t *testing.T) {
	in := cruise()
	st := State{AP1: true, Lateral: LateralHDG, Targets: Targets{HeadingDeg: 100}}
	l := NewLaws()
	var c Commands
	for i := 0; i < 100; i++ {
		c = l.Evaluate(0.05, &st, in)
	}
	if c.RollDeg.Data != 15 {
		t.Fatalf("roll=%v want 15", c.RollDeg.Data)
	}
	in.Air.HeadingDeg = bus.Failed()
	c = l.Evaluate(0.05, &st, in)
	if !c.RollDeg.Valid() || c.RollDeg.Data != 15 {
		t.Fatalf("roll=%v after heading loss want held 15", c.RollDeg)
	}
}

func TestLawsNoGuidanceIsNCD(t *testing.T) {
	c := NewLaws().Evaluate(0.05, &State{}, cruise())
	for _, v := range []bus.Value{c.PitchDeg, c.RollDeg, c.YawDeg} {
		if v.Status != bus.NoComputedData {
			t.Fatalf("order %v want NCD", v)
		}
	}
}

func TestLawsGoAroundPitchRamps(t *testing.T) {
	in := cruise()
	st := State{AP1: true, Vertical: VerticalSRSGA}
	l := NewLaws()
	c := l.Evaluate(1, &st, in)
	if math.Abs(c.PitchDeg.Data-(2.5+PitchSlewDegS)) > 1e-9 {
		t.Fatalf("pitch=%v want one second of slew from 2.5", c.PitchDeg.Data)
	}
	for i := 0; i < 20; i++ {
		c = l.Evaluate(1, &st, in)
	}
	if c.PitchDeg.Data != srsPitchDeg {
		t.Fatalf("pitch=%v want %v", c.PitchDeg.Data, srsPitchDeg)
	}
}

func TestVsToFpa(t *testing.T) {
	if got := vsToFpa(0, 250); got != 0 {
		t.Fatalf("level fpa=%v", got)
	}
	want := math.Atan(1000/(300*ftPerMinPerKn)) * 180 / math.Pi
	if got := vsToFpa(1000, 300); math.Abs(got-want) > 1e-12 {
		t.Fatalf("fpa=%v want %v", got, want)
	}
}
