// Package computers models the flight-control computers: two
// elevator/aileron computers (ELAC), three spoiler/elevator computers
// (SEC), two flight-control data concentrators (FCDC) and two flight
// augmentation computers (FAC).
//
// Every unit implements Computer. A unit is stepped once per tick with the
// peer buses published at the end of the previous tick, so the order in
// which units are stepped never changes what they see.
package computers

import (
	"fmt"

	"fbwsim/internal/bus"
	"fbwsim/internal/sensors"
)

type Kind uint8

const (
	KindELAC Kind = iota + 1
	KindSEC
	KindFCDC
	KindFAC
)

func (k Kind) String() string {
	switch k {
	case KindELAC:
		return "elac"
	case KindSEC:
		return "sec"
	case KindFCDC:
		return "fcdc"
	case KindFAC:
		return "fac"
	default:
		return "none"
	}
}

// ID names one unit. The zero ID names no unit.
type ID struct {
	Kind  Kind
	Index int
}

func (id ID) String() string {
	if id.Kind == 0 {
		return "none"
	}
	return fmt.Sprintf("%s%d", id.Kind, id.Index)
}

func (id ID) IsZero() bool { return id.Kind == 0 }

var (
	ELAC1 = ID{KindELAC, 1}
	ELAC2 = ID{KindELAC, 2}
	SEC1  = ID{KindSEC, 1}
	SEC2  = ID{KindSEC, 2}
	SEC3  = ID{KindSEC, 3}
	FCDC1 = ID{KindFCDC, 1}
	FCDC2 = ID{KindFCDC, 2}
	FAC1  = ID{KindFAC, 1}
	FAC2  = ID{KindFAC, 2}
)

// StepOrder is the fixed order in which units are stepped each tick.
var StepOrder = []ID{ELAC1, ELAC2, SEC1, SEC2, SEC3, FCDC1, FCDC2, FAC1, FAC2}

// Health is ordered so that a larger value is healthier. The zero value is
// Failed: a unit that has not published yet is never trusted.
type Health uint8

const (
	Failed Health = iota
	Degraded
	Healthy
)

func (h Health) String() string {
	switch h {
	case Healthy:
		return "healthy"
	case Degraded:
		return "degraded"
	default:
		return "failed"
	}
}

// Failure is an externally injected fault request. Requests are applied at
// the start of the tick they are seen and hold while the request stands.
type Failure uint8

const (
	FailureNone Failure = iota
	// FailureTotal fails the whole unit.
	FailureTotal
	// FailureChannelLoss loses one of the unit's redundant lanes; the unit
	// keeps running degraded.
	FailureChannelLoss
	// FailureLeftSurface and FailureRightSurface lose the servo loop of the
	// unit's left or right surfaces.
	FailureLeftSurface
	FailureRightSurface
)

// Axis is a control function arbitrated between redundant units.
type Axis uint8

const (
	AxisPitch Axis = iota
	AxisRoll
	AxisYaw
	AxisGroundSpoilers
	AxisData
	NumAxes
)

func (a Axis) String() string {
	switch a {
	case AxisPitch:
		return "pitch"
	case AxisRoll:
		return "roll"
	case AxisYaw:
		return "yaw"
	case AxisGroundSpoilers:
		return "ground_spoilers"
	case AxisData:
		return "data"
	default:
		return fmt.Sprintf("axis(%d)", uint8(a))
	}
}

// Masters is the unit selected for each axis; a zero ID means none.
type Masters [NumAxes]ID

// Side indexes the two pilot stations.
type Side int

const (
	Captain Side = 0
	FirstOfficer Side = 1
)

// PilotInputs are the cockpit controls for one tick. Sidestick axes are
// normalised to [-1, 1]; positive pitch is aft (nose up), positive roll is
// right.
type PilotInputs struct {
	SidestickPitch [2]float64
	SidestickRoll  [2]float64
	PriorityButton [2]bool

	RudderPedal      float64
	RudderTrimSwitch int
	RudderTrimReset  bool

	SpeedBrakeLever     float64
	GroundSpoilersArmed bool

	// ThrustLeverDeg is the lever angle per engine: 0 idle, 25 CL, 35 FLX/MCT,
	// 45 TOGA, negative in reverse.
	ThrustLeverDeg [2]float64
}

// Hydraulics reports which hydraulic systems are pressurised.
type Hydraulics struct {
	Green  bool
	Blue   bool
	Yellow bool
}

// AllHydraulics is every system pressurised.
var AllHydraulics = Hydraulics{Green: true, Blue: true, Yellow: true}

// UnitRequest carries the per-unit cockpit and fault discretes.
type UnitRequest struct {
	PushbuttonOff bool
	Failure       Failure
}

// AutopilotOrders are the autopilot law outputs from the previous tick.
type AutopilotOrders struct {
	Engaged  bool
	PitchDeg bus.Value // commanded pitch attitude
	RollDeg  bus.Value // commanded bank angle
	YawDeg   bus.Value // commanded rudder
}

// Inputs is everything a unit may read during one tick. It is shared by all
// units and must be treated as read-only.
type Inputs struct {
	Sensors    *sensors.Buses
	Peers      *Peers
	Pilot      PilotInputs
	Hydraulics Hydraulics
	Requests   map[ID]UnitRequest
	Autopilot  AutopilotOrders

	// Masters and Voted are the previous tick's selection and resolved
	// surface commands, used by standby units to track the active one.
	Masters Masters
	Voted   SurfaceCommands

	TailstrikeProtection bool
}

func (in *Inputs) request(id ID) UnitRequest {
	if in.Requests == nil {
		return UnitRequest{}
	}
	return in.Requests[id]
}

// SurfaceCommands are actuator position orders in degrees. Elevator and
// THS are positive nose-up; ailerons positive trailing edge down; spoilers
// positive up; rudder positive nose-right.
type SurfaceCommands struct {
	LeftElevatorDeg  float64
	RightElevatorDeg float64
	THSDeg           float64

	LeftAileronDeg  float64
	RightAileronDeg float64

	// Spoilers are indexed 0..4 for spoilers 1..5.
	LeftSpoilerDeg  [5]float64
	RightSpoilerDeg [5]float64

	YawDamperDeg         float64
	RudderTrimDeg        float64
	RudderTravelLimitDeg float64

	GroundSpoilersOut bool
}

// Outputs is the result of one Step. Exactly one of the per-kind buses is
// populated, matching ID.Kind.
type Outputs struct {
	ID     ID
	Health Health
	// Status is the unit's main discrete status word; FailureWarning when
	// the unit is failed.
	Status   bus.Value
	Surfaces SurfaceCommands
	// Available reports which axes the unit could control this tick.
	Available [NumAxes]bool

	Elac ElacBus
	Sec  SecBus
	Fcdc FcdcBus
	Fac  FacBus
}

// Computer is the contract shared by every unit.
type Computer interface {
	ID() ID
	Health() Health
	Step(dt float64, in *Inputs) Outputs
}
