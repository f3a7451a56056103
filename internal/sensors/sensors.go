// Package sensors implements the redundant sensor front-ends that turn the
// simulated physical state into per-channel bus words.
//
// No front-end ever substitutes one channel's data for another's: a
// faulty channel reports FailureWarning (or NoComputedData while it has
// nothing to say) and consumers decide how to vote.
package sensors

import (
	"strconv"

	"fbwsim/internal/bus"
)

const (
	NumADIRS  = 3
	NumRA     = 2
	NumLGCIU  = 2
	NumSFCC   = 2
	NumEngine = 2
)

// RA words are NCD above this height.
const raMaxHeightFt = 2500

// LGCIU discrete word 1 bits.
const (
	BitNoseGearCompressed      = 11
	BitLeftMainGearCompressed  = 12
	BitRightMainGearCompressed = 13
	BitGearDownLocked          = 14
)

// Physical is the simulated truth sampled by the front-ends each tick.
type Physical struct {
	AltitudeFt       float64
	CasKn            float64
	Mach             float64
	TasKn            float64
	VerticalSpeedFpm float64
	AlphaDeg         float64

	PitchDeg      float64
	RollDeg       float64
	HeadingDeg    float64
	TrackDeg      float64
	PitchRateDegS float64
	RollRateDegS  float64
	YawRateDegS   float64
	NzG           float64
	FpaDeg        float64
	GroundSpeedKn float64

	RadioHeightFt float64

	NoseGearCompressed      bool
	LeftMainGearCompressed  bool
	RightMainGearCompressed bool
	GearDownLocked          bool

	SlatDeg    float64
	FlapDeg    float64
	FlapConfig int

	LocReceived     bool
	LocDeviationDeg float64
	GsReceived      bool
	GsDeviationDeg  float64

	N1Percent [NumEngine]float64
}

// Faults are per-channel fault injections. Index 0 is channel 1.
type Faults struct {
	ADR        [NumADIRS]bool
	IR         [NumADIRS]bool
	IRAligning [NumADIRS]bool
	// ADRCasBiasKn adds a per-channel error to CAS, to exercise voting.
	ADRCasBiasKn [NumADIRS]float64

	RA     [NumRA]bool
	LGCIU  [NumLGCIU]bool
	SFCC   [NumSFCC]bool
	ILS    bool
	Engine [NumEngine]bool
}

type ADRBus struct {
	AltitudeFt       bus.Value
	CasKn            bus.Value
	Mach             bus.Value
	TasKn            bus.Value
	VerticalSpeedFpm bus.Value
	AlphaDeg         bus.Value
}

type IRBus struct {
	PitchDeg      bus.Value
	RollDeg       bus.Value
	HeadingDeg    bus.Value
	TrackDeg      bus.Value
	PitchRateDegS bus.Value
	RollRateDegS  bus.Value
	YawRateDegS   bus.Value
	NzG           bus.Value
	FpaDeg        bus.Value
	InertialVSFpm bus.Value
	GroundSpeedKn bus.Value
}

type RABus struct {
	HeightFt bus.Value
}

type LGCIUBus struct {
	DiscreteWord1 bus.Value
}

type SFCCBus struct {
	SlatDeg    bus.Value
	FlapDeg    bus.Value
	FlapConfig bus.Value
}

type ILSBus struct {
	LocDeviationDeg bus.Value
	GsDeviationDeg  bus.Value
}

type EngineBus struct {
	N1Percent bus.Value
}

// Buses is every sensor word available in one tick.
type Buses struct {
	ADR    [NumADIRS]ADRBus
	IR     [NumADIRS]IRBus
	RA     [NumRA]RABus
	LGCIU  [NumLGCIU]LGCIUBus
	SFCC   [NumSFCC]SFCCBus
	ILS    ILSBus
	Engine [NumEngine]EngineBus
}

// Publish emits every sensor word under a stable name.
func (b *Buses) Publish(emit bus.Emitter) {
	for i := range b.ADR {
		p := adirsName(i+1, "adr")
		a := &b.ADR[i]
		emit(p+"altitude_ft", a.AltitudeFt)
		emit(p+"cas_kn", a.CasKn)
		emit(p+"mach", a.Mach)
		emit(p+"tas_kn", a.TasKn)
		emit(p+"vs_fpm", a.VerticalSpeedFpm)
		emit(p+"alpha_deg", a.AlphaDeg)
	}
	for i := range b.IR {
		p := adirsName(i+1, "ir")
		r := &b.IR[i]
		emit(p+"pitch_deg", r.PitchDeg)
		emit(p+"roll_deg", r.RollDeg)
		emit(p+"heading_deg", r.HeadingDeg)
		emit(p+"track_deg", r.TrackDeg)
		emit(p+"q_deg_s", r.PitchRateDegS)
		emit(p+"p_deg_s", r.RollRateDegS)
		emit(p+"r_deg_s", r.YawRateDegS)
		emit(p+"nz_g", r.NzG)
		emit(p+"fpa_deg", r.FpaDeg)
		emit(p+"inertial_vs_fpm", r.InertialVSFpm)
		emit(p+"gs_kn", r.GroundSpeedKn)
	}
	for i := range b.RA {
		emit(indexName("ra", i+1)+"height_ft", b.RA[i].HeightFt)
	}
	for i := range b.LGCIU {
		emit(indexName("lgciu", i+1)+"discrete_word_1", b.LGCIU[i].DiscreteWord1)
	}
	for i := range b.SFCC {
		p := indexName("sfcc", i+1)
		emit(p+"slat_deg", b.SFCC[i].SlatDeg)
		emit(p+"flap_deg", b.SFCC[i].FlapDeg)
		emit(p+"flap_config", b.SFCC[i].FlapConfig)
	}
	emit("ils.loc_deviation_deg", b.ILS.LocDeviationDeg)
	emit("ils.gs_deviation_deg", b.ILS.GsDeviationDeg)
	for i := range b.Engine {
		emit(indexName("engine", i+1)+"n1_percent", b.Engine[i].N1Percent)
	}
}

func indexName(unit string, n int) string {
	return unit + "." + strconv.Itoa(n) + "."
}

func adirsName(n int, part string) string {
	return indexName("adirs", n) + part + "."
}
