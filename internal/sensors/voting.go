package sensors

import (
	"sort"

	"fbwsim/internal/bus"
)

// Median3 consolidates up to three redundant words. With three valid words
// the median is used, with two their mean, with one that word. With none
// the result is NCD, or FW if every source reports FW. n is the number of
// valid sources.
func Median3(a, b, c bus.Value) (v bus.Value, n int) {
	vals := make([]float64, 0, 3)
	allFW := true
	for _, w := range [...]bus.Value{a, b, c} {
		if w.Valid() {
			vals = append(vals, w.Data)
		}
		if w.Status != bus.FailureWarning {
			allFW = false
		}
	}
	switch len(vals) {
	case 3:
		sort.Float64s(vals)
		return bus.NewValue(vals[1]), 3
	case 2:
		return bus.NewValue((vals[0] + vals[1]) / 2), 2
	case 1:
		return bus.NewValue(vals[0]), 1
	}
	if allFW {
		return bus.Failed(), 0
	}
	return bus.NCD(), 0
}

// FirstValid returns the first valid word in priority order and its
// 1-based position, or NCD and 0.
func FirstValid(words ...bus.Value) (bus.Value, int) {
	for i, w := range words {
		if w.Valid() {
			return w, i + 1
		}
	}
	return bus.NCD(), 0
}

// AirData is the voted view of the three ADIRS channels.
type AirData struct {
	ValidADR int
	ValidIR  int

	AltitudeFt       bus.Value
	CasKn            bus.Value
	Mach             bus.Value
	TasKn            bus.Value
	VerticalSpeedFpm bus.Value
	AlphaDeg         bus.Value

	PitchDeg      bus.Value
	RollDeg       bus.Value
	HeadingDeg    bus.Value
	TrackDeg      bus.Value
	PitchRateDegS bus.Value
	RollRateDegS  bus.Value
	YawRateDegS   bus.Value
	NzG           bus.Value
	FpaDeg        bus.Value
}

// VoteAirData consolidates ADR and IR words. Angles near the 0/360 wrap are
// voted on the first valid source rather than averaged.
func VoteAirData(b *Buses) AirData {
	var d AirData
	adr := func(f func(ADRBus) bus.Value) (bus.Value, int) {
		return Median3(f(b.ADR[0]), f(b.ADR[1]), f(b.ADR[2]))
	}
	ir := func(f func(IRBus) bus.Value) (bus.Value, int) {
		return Median3(f(b.IR[0]), f(b.IR[1]), f(b.IR[2]))
	}

	d.CasKn, d.ValidADR = adr(func(a ADRBus) bus.Value { return a.CasKn })
	d.AltitudeFt, _ = adr(func(a ADRBus) bus.Value { return a.AltitudeFt })
	d.Mach, _ = adr(func(a ADRBus) bus.Value { return a.Mach })
	d.TasKn, _ = adr(func(a ADRBus) bus.Value { return a.TasKn })
	d.VerticalSpeedFpm, _ = adr(func(a ADRBus) bus.Value { return a.VerticalSpeedFpm })
	d.AlphaDeg, _ = adr(func(a ADRBus) bus.Value { return a.AlphaDeg })

	d.PitchDeg, d.ValidIR = ir(func(r IRBus) bus.Value { return r.PitchDeg })
	d.RollDeg, _ = ir(func(r IRBus) bus.Value { return r.RollDeg })
	d.PitchRateDegS, _ = ir(func(r IRBus) bus.Value { return r.PitchRateDegS })
	d.RollRateDegS, _ = ir(func(r IRBus) bus.Value { return r.RollRateDegS })
	d.YawRateDegS, _ = ir(func(r IRBus) bus.Value { return r.YawRateDegS })
	d.NzG, _ = ir(func(r IRBus) bus.Value { return r.NzG })
	d.FpaDeg, _ = ir(func(r IRBus) bus.Value { return r.FpaDeg })
	d.HeadingDeg, _ = FirstValid(b.IR[0].HeadingDeg, b.IR[1].HeadingDeg, b.IR[2].HeadingDeg)
	d.TrackDeg, _ = FirstValid(b.IR[0].TrackDeg, b.IR[1].TrackDeg, b.IR[2].TrackDeg)
	return d
}

// RadioHeight votes the two radio altimeters: the lower of two valid
// heights, else whichever is valid.
func RadioHeight(b *Buses) bus.Value {
	a, c := b.RA[0].HeightFt, b.RA[1].HeightFt
	switch {
	case a.Valid() && c.Valid():
		if c.Data < a.Data {
			return c
		}
		return a
	case a.Valid():
		return a
	case c.Valid():
		return c
	}
	if a.Status == bus.NoComputedData || c.Status == bus.NoComputedData {
		return bus.NCD()
	}
	return bus.Failed()
}

// GearCompressed reports main gear compression from the first valid LGCIU.
// ok is false when neither LGCIU is valid.
func GearCompressed(b *Buses) (left, right, ok bool) {
	w, n := FirstValid(b.LGCIU[0].DiscreteWord1, b.LGCIU[1].DiscreteWord1)
	if n == 0 {
		return false, false, false
	}
	return w.Bit(BitLeftMainGearCompressed), w.Bit(BitRightMainGearCompressed), true
}

// FlapConfig returns the configuration index from the first valid SFCC.
func FlapConfig(b *Buses) (int, bool) {
	w, n := FirstValid(b.SFCC[0].FlapConfig, b.SFCC[1].FlapConfig)
	if n == 0 {
		return 0, false
	}
	return int(w.Data), true
}
