package sim

import (
	"math"

	"fbwsim/internal/bus"
	"fbwsim/internal/fbw"
	"fbwsim/internal/logic"
	"fbwsim/internal/sensors"
)

const (
	gravity       = 9.80665
	ktToMS        = 0.514444
	ftPerNm       = 6076.12
	fpmPerKt      = 101.269
	turnRateConst = 1091.0 // deg/s * kt for a coordinated turn, times tan(bank)

	refCasKn     = 250.0
	trimAlphaDeg = 2.0
	zeroLiftDeg  = 3.0

	engineLagS  = 1.5
	pitchLagS   = 0.5
	rollLagS    = 0.4
	thrustGain  = 0.06  // kt/s per percent N1
	idleN1Pct   = 20.0
	dragCoeff   = 3.4e-5 // kt/s per kt^2
	spoilerDrag = 0.004  // per degree of spoiler
	flapDrag    = 0.15   // per flap configuration step
)

// Runway places an ILS. Positions are north/east of the scenario origin.
type Runway struct {
	ThresholdNorthNm float64 `yaml:"threshold_north_nm"`
	ThresholdEastNm  float64 `yaml:"threshold_east_nm"`
	CourseDeg        float64 `yaml:"course_deg"`
	ElevationFt      float64 `yaml:"elevation_ft"`
	GlideslopeDeg    float64 `yaml:"glideslope_deg"`
	LengthNm         float64 `yaml:"length_nm"`
}

// RouteLeg is a straight flight-plan leg flown in NAV.
type RouteLeg struct {
	FromNorthNm float64 `yaml:"from_north_nm"`
	FromEastNm  float64 `yaml:"from_east_nm"`
	CourseDeg   float64 `yaml:"course_deg"`
}

// Ownship is a point-mass aircraft flown by the actuator outputs. It is
// only as faithful as the closed-loop runner needs.
type Ownship struct {
	NorthNm    float64
	EastNm     float64
	AltitudeFt float64
	CasKn      float64

	PitchDeg      float64
	RollDeg       float64
	HeadingDeg    float64
	FpaDeg        float64
	PitchRateDegS float64
	RollRateDegS  float64
	YawRateDegS   float64
	NzG           float64

	N1Pct      [2]float64
	FlapConfig int
	GearDown   bool

	Runway *Runway
	Route  *RouteLeg
}

func (o *Ownship) groundFt() float64 {
	if o.Runway != nil {
		return o.Runway.ElevationFt
	}
	return 0
}

func (o *Ownship) TasKn() float64 {
	return o.CasKn * (1 + 0.02*o.AltitudeFt/1000)
}

func (o *Ownship) OnGround() bool {
	return o.GearDown && o.AltitudeFt-o.groundFt() <= 0.5
}

// Step integrates the aircraft over dt with the given actuator outputs.
func (o *Ownship) Step(dt float64, act *fbw.Actuators) {
	if dt <= 0 {
		return
	}
	s := &act.Surfaces
	tas := o.TasKn()
	qScale := logic.Clamp((o.CasKn/refCasKn)*(o.CasKn/refCasKn), 0.05, 2.5)

	// Engines.
	for i := range o.N1Pct {
		o.N1Pct[i] += (act.N1CommandPct[i] - o.N1Pct[i]) * dt / engineLagS
	}
	n1 := (o.N1Pct[0] + o.N1Pct[1]) / 2

	// Speed.
	var spoilers float64
	for i := range s.LeftSpoilerDeg {
		spoilers += s.LeftSpoilerDeg[i] + s.RightSpoilerDeg[i]
	}
	drag := dragCoeff * o.CasKn * o.CasKn * (1 + spoilerDrag*spoilers + flapDrag*float64(o.FlapConfig))
	accel := thrustGain*(n1-idleN1Pct) - drag - gravity/ktToMS*math.Sin(o.FpaDeg*deg2rad)
	if o.OnGround() {
		accel -= 2 + 0.03*spoilers
	}
	o.CasKn = math.Max(0, o.CasKn+accel*dt)

	// Pitch: surfaces command a pitch rate against the static stability.
	alpha := o.PitchDeg - o.FpaDeg
	elevator := (s.LeftElevatorDeg + s.RightElevatorDeg) / 2
	qCmd := qScale*(0.6*elevator+0.3*s.THSDeg) - 1.2*(alpha-trimAlphaDeg)
	o.PitchRateDegS += (qCmd - o.PitchRateDegS) * dt / pitchLagS
	o.PitchDeg = logic.Clamp(o.PitchDeg+o.PitchRateDegS*dt, -30, 40)

	// Roll.
	var spoilerDiff float64
	for i := 1; i < len(s.LeftSpoilerDeg); i++ {
		spoilerDiff += s.RightSpoilerDeg[i] - s.LeftSpoilerDeg[i]
	}
	aileron := (s.LeftAileronDeg - s.RightAileronDeg) / 2
	pCmd := qScale * (1.2*aileron + 0.15*spoilerDiff)
	if o.OnGround() {
		pCmd = -2 * o.RollDeg
	}
	o.RollRateDegS += (pCmd - o.RollRateDegS) * dt / rollLagS
	o.RollDeg = logic.Clamp(o.RollDeg+o.RollRateDegS*dt, -90, 90)

	// Flight path from lift.
	alpha = o.PitchDeg - o.FpaDeg
	lift := (1 + 0.15*float64(o.FlapConfig)) * (o.CasKn / refCasKn) * (o.CasKn / refCasKn) *
		(alpha + zeroLiftDeg) / (trimAlphaDeg + zeroLiftDeg)
	o.NzG = lift
	if v := tas * ktToMS; v > 1 {
		gammaDot := gravity / v * (lift*math.Cos(o.RollDeg*deg2rad) - math.Cos(o.FpaDeg*deg2rad))
		o.FpaDeg = logic.Clamp(o.FpaDeg+gammaDot/deg2rad*dt, -30, 30)
	}

	// Heading.
	r := 0.0
	if tas > 50 && !o.OnGround() {
		r = turnRateConst * math.Tan(logic.Clamp(o.RollDeg, -80, 80)*deg2rad) / tas
	}
	r += 0.05 * qScale * act.RudderDeg
	o.YawRateDegS = r
	o.HeadingDeg = logic.WrapDeg360(o.HeadingDeg + r*dt)

	// Position and altitude.
	gs := tas * math.Cos(o.FpaDeg*deg2rad)
	o.NorthNm += gs * math.Cos(o.HeadingDeg*deg2rad) * dt / 3600
	o.EastNm += gs * math.Sin(o.HeadingDeg*deg2rad) * dt / 3600
	o.AltitudeFt += tas * fpmPerKt * math.Sin(o.FpaDeg*deg2rad) / 60 * dt
	if ground := o.groundFt(); o.AltitudeFt < ground {
		o.AltitudeFt = ground
		o.FpaDeg = math.Max(o.FpaDeg, 0)
		o.PitchDeg = math.Max(o.PitchDeg, 0)
	}
}

// Physical returns the sensed truth for the sensor front-ends.
func (o *Ownship) Physical() sensors.Physical {
	tas := o.TasKn()
	onGround := o.OnGround()
	p := sensors.Physical{
		AltitudeFt:       o.AltitudeFt,
		CasKn:            o.CasKn,
		Mach:             tas / 661.5,
		TasKn:            tas,
		VerticalSpeedFpm: tas * fpmPerKt * math.Sin(o.FpaDeg*deg2rad),
		AlphaDeg:         o.PitchDeg - o.FpaDeg,

		PitchDeg:      o.PitchDeg,
		RollDeg:       o.RollDeg,
		HeadingDeg:    o.HeadingDeg,
		TrackDeg:      o.HeadingDeg,
		PitchRateDegS: o.PitchRateDegS,
		RollRateDegS:  o.RollRateDegS,
		YawRateDegS:   o.YawRateDegS,
		NzG:           o.NzG,
		FpaDeg:        o.FpaDeg,
		GroundSpeedKn: tas * math.Cos(o.FpaDeg*deg2rad),

		RadioHeightFt: o.AltitudeFt - o.groundFt(),

		NoseGearCompressed:      onGround,
		LeftMainGearCompressed:  onGround,
		RightMainGearCompressed: onGround,
		GearDownLocked:          o.GearDown,

		FlapConfig: o.FlapConfig,
		N1Percent:  o.N1Pct,
	}
	p.SlatDeg, p.FlapDeg = flapAngles(o.FlapConfig)
	p.LocReceived, p.LocDeviationDeg, p.GsReceived, p.GsDeviationDeg = o.ils()
	return p
}

var (
	slatByConfig = [5]float64{0, 18, 22, 22, 27}
	flapByConfig = [5]float64{0, 10, 15, 20, 40}
)

func flapAngles(cfg int) (slat, flap float64) {
	cfg = logic.Clamp(cfg, 0, 4)
	return slatByConfig[cfg], flapByConfig[cfg]
}

// ils returns the localizer and glideslope deviations in degrees.
// A positive localizer deviation means the centreline is to the right; a
// positive glideslope deviation means the aircraft is below the path.
func (o *Ownship) ils() (locOK bool, loc float64, gsOK bool, gs float64) {
	rw := o.Runway
	if rw == nil {
		return false, 0, false, 0
	}
	along, cross := legOffsets(o.NorthNm-rw.ThresholdNorthNm, o.EastNm-rw.ThresholdEastNm, rw.CourseDeg)
	length := rw.LengthNm
	if length <= 0 {
		length = 2
	}
	toLoc := length - along
	if toLoc <= 0 || toLoc > 25 {
		return false, 0, false, 0
	}
	loc = -math.Atan2(cross, toLoc) / deg2rad
	if math.Abs(loc) > 35 {
		return false, 0, false, 0
	}

	slope := rw.GlideslopeDeg
	if slope <= 0 {
		slope = 3
	}
	toGs := 0.16 - along
	if toGs <= 0 || toGs > 10 || math.Abs(loc) > 10 {
		return true, loc, false, 0
	}
	elev := math.Atan2(o.AltitudeFt-rw.ElevationFt, toGs*ftPerNm) / deg2rad
	return true, loc, true, slope - elev
}

// NavGuidance returns the cross-track error, positive right of the leg,
// and the desired track. Both are NCD without a route.
func (o *Ownship) NavGuidance() (xtk, dtk bus.Value) {
	if o.Route == nil {
		return bus.NCD(), bus.NCD()
	}
	_, cross := legOffsets(o.NorthNm-o.Route.FromNorthNm, o.EastNm-o.Route.FromEastNm, o.Route.CourseDeg)
	return bus.NewValue(cross), bus.NewValue(logic.WrapDeg360(o.Route.CourseDeg))
}

// legOffsets resolves a north/east offset along a course and across it,
// positive to the right.
func legOffsets(dn, de, courseDeg float64) (along, cross float64) {
	c := courseDeg * deg2rad
	along = dn*math.Cos(c) + de*math.Sin(c)
	cross = -dn*math.Sin(c) + de*math.Cos(c)
	return along, cross
}

const deg2rad = math.Pi / 180
