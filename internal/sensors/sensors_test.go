package sensors

import (
	"testing"

	"fbwsim/internal/bus"
)

func cruisePhysical() Physical {
	return Physical{
		AltitudeFt: 10000, CasKn: 250, Mach: 0.45, TasKn: 290,
		PitchDeg: 2, RollDeg: 0, HeadingDeg: 90, TrackDeg: 90,
		NzG: 1, RadioHeightFt: 9000, FlapConfig: 0,
		N1Percent: [NumEngine]float64{60, 60},
	}
}

func TestSuite_FaultyChannelIsNotSubstituted(t *testing.T) {
	var s Suite
	var f Faults
	f.ADR[1] = true
	f.IRAligning[2] = true
	s.Sample(cruisePhysical(), f)

	if got := s.ADIRS.ReadADR(2).CasKn.Status; got != bus.FailureWarning {
		t.Fatalf("ADR2 CAS status=%s want FW", got)
	}
	if got := s.ADIRS.ReadADR(1).CasKn; !got.Valid() || got.Data != 250 {
		t.Fatalf("ADR1 CAS=%v want 250", got)
	}
	if got := s.ADIRS.ReadIR(3).PitchDeg.Status; got != bus.NoComputedData {
		t.Fatalf("IR3 aligning status=%s want NCD", got)
	}
	if got := s.ADIRS.ReadIR(4).PitchDeg.Status; got != bus.FailureWarning {
		t.Fatalf("out of range channel status=%s want FW", got)
	}
}

func TestRadioAltimeter_NCDAboveRange(t *testing.T) {
	var s Suite
	s.Sample(cruisePhysical(), Faults{})
	if got := s.RA.Read(1).HeightFt.Status; got != bus.NoComputedData {
		t.Fatalf("status=%s want NCD", got)
	}
	p := cruisePhysical()
	p.RadioHeightFt = 40
	s.Sample(p, Faults{RA: [NumRA]bool{true, false}})
	b := s.Buses()
	if got := RadioHeight(&b); !got.Valid() || got.Data != 40 {
		t.Fatalf("voted RA=%v want 40", got)
	}
}

func TestMedian3(t *testing.T) {
	cases := []struct {
		name  string
		a     [3]bus.Value
		want  bus.Value
		wantN int
	}{
		{"three", [3]bus.Value{bus.NewValue(1), bus.NewValue(9), bus.NewValue(3)}, bus.NewValue(3), 3},
		{"two", [3]bus.Value{bus.NewValue(2), bus.Failed(), bus.NewValue(4)}, bus.NewValue(3), 2},
		{"one", [3]bus.Value{bus.NCD(), bus.Failed(), bus.NewValue(4)}, bus.NewValue(4), 1},
		{"none_ncd", [3]bus.Value{bus.NCD(), bus.Failed(), bus.Failed()}, bus.NCD(), 0},
		{"none_fw", [3]bus.Value{bus.Failed(), bus.Failed(), bus.Failed()}, bus.Failed(), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, n := Median3(tc.a[0], tc.a[1], tc.a[2])
			if got != tc.want || n != tc.wantN {
				t.Fatalf("got %v,%d want %v,%d", got, n, tc.want, tc.wantN)
			}
		})
	}
}

func TestVoteAirData_RejectsBiasedChannel(t *testing.T) {
	var s Suite
	f := Faults{ADRCasBiasKn: [NumADIRS]float64{0, 80, 0}}
	s.Sample(cruisePhysical(), f)
	b := s.Buses()
	d := VoteAirData(&b)
	if d.ValidADR != 3 || d.ValidIR != 3 {
		t.Fatalf("valid adr=%d ir=%d want 3/3", d.ValidADR, d.ValidIR)
	}
	if d.CasKn.Data != 250 {
		t.Fatalf("CAS=%v want 250 (median rejects bias)", d.CasKn.Data)
	}
}

func TestGearCompressed(t *testing.T) {
	var s Suite
	p := cruisePhysical()
	p.LeftMainGearCompressed = true
	s.Sample(p, Faults{LGCIU: [NumLGCIU]bool{true, false}})
	b := s.Buses()
	l, r, ok := GearCompressed(&b)
	if !ok || !l || r {
		t.Fatalf("got l=%v r=%v ok=%v", l, r, ok)
	}
	s.Sample(p, Faults{LGCIU: [NumLGCIU]bool{true, true}})
	b = s.Buses()
	if _, _, ok := GearCompressed(&b); ok {
		t.Fatalf("expected no valid LGCIU")
	}
}

func TestBuses_PublishNames(t *testing.T) {
	var s Suite
	s.Sample(cruisePhysical(), Faults{})
	b := s.Buses()
	got := map[string]bus.Value{}
	b.Publish(func(name string, v bus.Value) { got[name] = v })
	for _, name := range []string{"adirs.1.adr.cas_kn", "adirs.3.ir.heading_deg", "ra.2.height_ft", "engine.1.n1_percent"} {
		if _, ok := got[name]; !ok {
			t.Fatalf("missing %q", name)
		}
	}
}
