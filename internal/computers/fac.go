package computers

import (
	"math"

	"fbwsim/internal/bus"
	"fbwsim/internal/logic"
	"fbwsim/internal/sensors"
)

// FAC discrete word bits.
const (
	FacBitAlphaProt         = 11
	FacBitAlphaFloor        = 12
	FacBitHighSpeedProt     = 13
	FacBitYawDamperEngaged  = 14
	FacBitRudderTrimEngaged = 15
	FacBitRTLEngaged        = 16
	FacBitYawEngaged        = 17
)

// FacBus carries the FAC discretes, characteristic speeds and rudder
// orders.
type FacBus struct {
	DiscreteWord bus.Value

	VS1gKn       bus.Value
	VLSKn        bus.Value
	VAlphaProtKn bus.Value
	VAlphaMaxKn  bus.Value
	VMaxKn       bus.Value

	AlphaProtDeg  bus.Value
	AlphaFloorDeg bus.Value

	RudderTravelLimitDeg bus.Value
	YawDamperDeg         bus.Value
	RudderTrimDeg        bus.Value
}

const (
	rudderTrimMaxDeg       = 20
	rudderTrimRateDegS     = 1
	rudderTrimResetDegS    = 1.5
	yawDamperMaxDeg        = 30
	rudderTravelMaxDeg     = 25.0
	yawCoordMinTasKn       = 60
	highSpeedMarginKn      = 6
	highSpeedMach          = 0.86
	alphaFloorMinRAFt      = 100
	alphaHysteresisDeg     = 1
	gravity                = 9.80665
	knotsToMetresPerSecond = 0.514444
)

// Rudder travel limit versus CAS with slats retracted.
var rudderTravelLimit = logic.Table{
	X: []float64{160, 200, 250, 300, 380},
	Y: []float64{25, 17.5, 9.5, 6, 3.4},
}

// Characteristic values indexed by flap configuration 0..4, for a fixed
// reference weight.
var (
	vs1gByConfig       = [5]float64{150, 124, 116, 112, 107}
	vmaxByConfig       = [5]float64{350, 230, 200, 185, 177}
	alphaProtByConfig  = [5]float64{8.5, 14, 14, 14, 13}
	alphaFloorByConfig = [5]float64{9.5, 15, 15, 15, 14}
)

// FAC is a flight augmentation computer: yaw damper, rudder trim, rudder
// travel limiter and flight envelope speeds.
type FAC struct {
	unit

	washout    logic.WashoutFilter
	trim       float64
	alphaProt  logic.Hysteresis
	alphaFloor logic.Hysteresis

	cas   bus.Hold
	flaps bus.Hold
}

func NewFAC(index int) *FAC {
	return &FAC{
		unit:    newUnit(ID{KindFAC, index}),
		washout: logic.WashoutFilter{C1: 1},
	}
}

func (f *FAC) hydraulics(h Hydraulics) bool {
	if f.id.Index == 1 {
		return h.Green
	}
	return h.Yellow
}

func (f *FAC) Step(dt float64, in *Inputs) Outputs {
	req := in.request(f.id)
	running, testing := f.power(req, dt)
	if !running {
		f.trim = 0
		f.alphaProt.Reset()
		f.alphaFloor.Reset()
		return f.fail()
	}
	master := in.Masters[AxisYaw] == f.id
	hyd := f.hydraulics(in.Hydraulics)

	air := sensors.VoteAirData(in.Sensors)
	cfg, cfgOK := sensors.FlapConfig(in.Sensors)
	flaps := int(f.flaps.Update(bus.ValidIf(cfgOK, float64(cfg)), 0))
	flaps = logic.Clamp(flaps, 0, 4)
	cas := f.cas.Update(air.CasKn, 0)

	// Yaw damper with turn coordination.
	ydEngaged := hyd && air.YawRateDegS.Valid()
	yd := 0.0
	if ydEngaged {
		r := air.YawRateDegS.Data
		rCoord := 0.0
		if tas := air.TasKn.Or(0); tas > yawCoordMinTasKn {
			phi := logic.Clamp(air.RollDeg.Or(0), -60, 60)
			rCoord = gravity * math.Tan(phi*deg2rad) / (tas * knotsToMetresPerSecond) / deg2rad
		}
		yd = -1.5 * f.washout.Update(r-rCoord, dt)
		if in.Autopilot.Engaged && in.Autopilot.YawDeg.Valid() {
			yd += in.Autopilot.YawDeg.Data
		}
		yd = logic.Clamp(yd, -yawDamperMaxDeg, yawDamperMaxDeg)
	}

	// Rudder trim.
	if !master {
		f.trim = in.Voted.RudderTrimDeg
	}
	switch {
	case in.Pilot.RudderTrimReset:
		step := rudderTrimResetDegS * dt
		f.trim -= logic.Clamp(f.trim, -step, step)
	case in.Pilot.RudderTrimSwitch != 0:
		f.trim += float64(in.Pilot.RudderTrimSwitch) * rudderTrimRateDegS * dt
	}
	f.trim = logic.Clamp(f.trim, -rudderTrimMaxDeg, rudderTrimMaxDeg)

	// Rudder travel limiter.
	rtl := float64(rudderTravelMaxDeg)
	rtlOK := air.CasKn.Valid() || flaps > 0
	if flaps == 0 {
		rtl = rudderTravelLimit.At(cas)
	}

	// Characteristic speeds and protections.
	vs1g := vs1gByConfig[flaps]
	vls := vs1g * 1.23
	if flaps == 0 {
		vls = vs1g * 1.28
	}
	vmax := vmaxByConfig[flaps]
	alpha := air.AlphaDeg
	ra := sensors.RadioHeight(in.Sensors)
	gl, gr, _ := sensors.GearCompressed(in.Sensors)
	inFlight := !(gl || gr)
	var alphaProt, alphaFloor bool
	if inFlight && alpha.Valid() {
		f.alphaProt.Upper = alphaProtByConfig[flaps]
		f.alphaProt.Lower = alphaProtByConfig[flaps] - alphaHysteresisDeg
		f.alphaFloor.Upper = alphaFloorByConfig[flaps]
		f.alphaFloor.Lower = alphaFloorByConfig[flaps] - alphaHysteresisDeg
		alphaProt = f.alphaProt.Update(alpha.Data)
		alphaFloor = f.alphaFloor.Update(alpha.Data) && (!ra.Valid() || ra.Data > alphaFloorMinRAFt)
	} else {
		f.alphaProt.Reset()
		f.alphaFloor.Reset()
	}
	highSpeed := (air.CasKn.Valid() && air.CasKn.Data > vmax+highSpeedMarginKn) ||
		(air.Mach.Valid() && air.Mach.Data > highSpeedMach)

	var out Outputs
	out.Surfaces.YawDamperDeg = yd
	out.Surfaces.RudderTrimDeg = f.trim
	out.Surfaces.RudderTravelLimitDeg = rtl
	out.Available[AxisYaw] = hyd

	var w bus.Word
	w.Set(FacBitAlphaProt, alphaProt)
	w.Set(FacBitAlphaFloor, alphaFloor)
	w.Set(FacBitHighSpeedProt, highSpeed)
	w.Set(FacBitYawDamperEngaged, ydEngaged)
	w.Set(FacBitRudderTrimEngaged, hyd)
	w.Set(FacBitRTLEngaged, rtlOK)
	w.Set(FacBitYawEngaged, master)
	out.Status = w.Value(bus.Normal)

	// Speeds depend on the configuration only; without an SFCC they are NCD.
	out.Fac = FacBus{
		DiscreteWord:         out.Status,
		VS1gKn:               bus.ValidIf(cfgOK, vs1g),
		VLSKn:                bus.ValidIf(cfgOK, vls),
		VAlphaProtKn:         bus.ValidIf(cfgOK, vs1g*1.1),
		VAlphaMaxKn:          bus.ValidIf(cfgOK, vs1g*1.03),
		VMaxKn:               bus.ValidIf(cfgOK, vmax),
		AlphaProtDeg:         bus.NewValue(alphaProtByConfig[flaps]),
		AlphaFloorDeg:        bus.NewValue(alphaFloorByConfig[flaps]),
		RudderTravelLimitDeg: bus.ValidIf(rtlOK, rtl),
		YawDamperDeg:         bus.ValidIf(ydEngaged, yd),
		RudderTrimDeg:        bus.ValidIf(hyd, f.trim),
	}

	f.finish(&out, testing || !hyd || req.Failure != FailureNone)
	return out
}
