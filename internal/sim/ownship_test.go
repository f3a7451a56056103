package sim

import (
	"math"
	"testing"

	"fbwsim/internal/fbw"
)

const stepS = 0.05

func trimmed() *Ownship {
	return &Ownship{
		AltitudeFt: 10000,
		CasKn:      250,
		HeadingDeg: 90,
		PitchDeg:   trimAlphaDeg,
		NzG:        1,
		N1Pct:      [2]float64{55, 55},
	}
}

func fly(o *Ownship, act fbw.Actuators, seconds float64) {
	act.N1CommandPct = o.N1Pct
	for i := 0; i < int(seconds/stepS); i++ {
		o.Step(stepS, &act)
	}
}

func TestOwnship_TrimmedStaysLevel(t *testing.T) {
	o := trimmed()
	fly(o, fbw.Actuators{}, 2)
	if math.Abs(o.AltitudeFt-10000) > 20 {
		t.Fatalf("altitude drifted: %v", o.AltitudeFt)
	}
	if math.Abs(o.RollDeg) > 1e-9 || o.HeadingDeg != 90 {
		t.Fatalf("lateral drift: roll %v hdg %v", o.RollDeg, o.HeadingDeg)
	}
	if o.EastNm <= 0 || math.Abs(o.NorthNm) > 1e-6 {
		t.Fatalf("position: north %v east %v", o.NorthNm, o.EastNm)
	}
}

func TestOwnship_SurfaceDirections(t *testing.T) {
	var up, right, spoilers fbw.Actuators
	up.Surfaces.LeftElevatorDeg, up.Surfaces.RightElevatorDeg = 5, 5
	right.Surfaces.LeftAileronDeg, right.Surfaces.RightAileronDeg = 5, -5
	for i := 1; i < 5; i++ {
		spoilers.Surfaces.RightSpoilerDeg[i] = 10
	}

	cases := []struct {
		name  string
		act   fbw.Actuators
		check func(o *Ownship) bool
	}{
		{"nose up elevator", up, func(o *Ownship) bool { return o.PitchDeg > trimAlphaDeg && o.FpaDeg > 0 }},
		{"right aileron", right, func(o *Ownship) bool { return o.RollDeg > 0 && o.HeadingDeg > 90 }},
		{"right roll spoilers", spoilers, func(o *Ownship) bool { return o.RollDeg > 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := trimmed()
			fly(o, tc.act, 2)
			if !tc.check(o) {
				t.Fatalf("unexpected state: pitch %v fpa %v roll %v hdg %v", o.PitchDeg, o.FpaDeg, o.RollDeg, o.HeadingDeg)
			}
		})
	}
}

func TestOwnship_ThrustAccelerates(t *testing.T) {
	o := trimmed()
	act := fbw.Actuators{N1CommandPct: [2]float64{95, 95}}
	for i := 0; i < 100; i++ {
		o.Step(stepS, &act)
	}
	if o.CasKn <= 250 || o.N1Pct[0] <= 55 {
		t.Fatalf("cas %v n1 %v", o.CasKn, o.N1Pct[0])
	}
}

func TestOwnship_FullDeflectionStaysFinite(t *testing.T) {
	o := trimmed()
	act := fbw.Actuators{}
	act.Surfaces.LeftElevatorDeg, act.Surfaces.RightElevatorDeg = 30, 30
	act.Surfaces.THSDeg = 13.5
	act.Surfaces.LeftAileronDeg, act.Surfaces.RightAileronDeg = 25, -25
	act.RudderDeg = 25
	for i := 0; i < 1200; i++ {
		o.Step(stepS, &act)
		p := o.Physical()
		for _, v := range []float64{p.AltitudeFt, p.CasKn, p.PitchDeg, p.RollDeg, p.HeadingDeg, p.FpaDeg, p.NzG, p.VerticalSpeedFpm} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("step %d: non-finite state %+v", i, p)
			}
		}
		if p.HeadingDeg < 0 || p.HeadingDeg >= 360 {
			t.Fatalf("heading out of range: %v", p.HeadingDeg)
		}
	}
}

func TestOwnship_ILSDeviationSigns(t *testing.T) {
	rw := &Runway{ThresholdEastNm: 10, CourseDeg: 90, GlideslopeDeg: 3, LengthNm: 2}
	// 5 nm before the threshold on the path: 5 nm * tan(3 deg) ~ 1592 ft.
	onPath := 5 * ftPerNm * math.Tan(3*deg2rad)

	cases := []struct {
		name        string
		northNm     float64
		altFt       float64
		wantLocSign float64
		wantGsSign  float64
	}{
		{"left of centreline", 0.5, onPath, 1, 0},
		{"right of centreline", -0.5, onPath, -1, 0},
		{"below path", 0, onPath - 300, 0, 1},
		{"above path", 0, onPath + 300, 0, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := &Ownship{EastNm: 5.16, NorthNm: tc.northNm, AltitudeFt: tc.altFt, CasKn: 150, Runway: rw}
			p := o.Physical()
			if !p.LocReceived || !p.GsReceived {
				t.Fatalf("ils not received: loc %v gs %v", p.LocReceived, p.GsReceived)
			}
			if tc.wantLocSign != 0 && math.Signbit(p.LocDeviationDeg) != (tc.wantLocSign < 0) {
				t.Fatalf("loc deviation %v", p.LocDeviationDeg)
			}
			if tc.wantGsSign != 0 && math.Signbit(p.GsDeviationDeg) != (tc.wantGsSign < 0) {
				t.Fatalf("gs deviation %v", p.GsDeviationDeg)
			}
			if tc.wantLocSign == 0 && math.Abs(p.LocDeviationDeg) > 1e-9 {
				t.Fatalf("loc deviation %v", p.LocDeviationDeg)
			}
		})
	}

	o := &Ownship{EastNm: 40, AltitudeFt: 1000, Runway: rw}
	if p := o.Physical(); p.LocReceived || p.GsReceived {
		t.Fatalf("ils received beyond the localizer antenna")
	}
}

func TestOwnship_NavGuidance(t *testing.T) {
	o := &Ownship{NorthNm: -1, EastNm: 3}
	if xtk, _ := o.NavGuidance(); xtk.Valid() {
		t.Fatalf("nav guidance valid without a route")
	}
	o.Route = &RouteLeg{CourseDeg: 90}
	xtk, dtk := o.NavGuidance()
	if !xtk.Valid() || math.Abs(xtk.Data-1) > 1e-9 {
		t.Fatalf("xtk: %v", xtk)
	}
	if dtk.Data != 90 {
		t.Fatalf("dtk: %v", dtk)
	}
}

func TestOwnship_GroundContact(t *testing.T) {
	o := &Ownship{AltitudeFt: 0, CasKn: 0, GearDown: true}
	act := fbw.Actuators{}
	act.Surfaces.LeftElevatorDeg, act.Surfaces.RightElevatorDeg = -15, -15
	fly(o, act, 2)
	p := o.Physical()
	if p.AltitudeFt != 0 || !p.NoseGearCompressed || p.RadioHeightFt != 0 {
		t.Fatalf("ground contact: %+v", p)
	}
}
