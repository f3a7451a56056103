// Package fbw runs the flight-control model one fixed step at a time:
// sensors, computers, master selection, autopilot, autothrust, actuators
// and recording, in that order.
package fbw

import (
	"fbwsim/internal/autopilot"
	"fbwsim/internal/bus"
	"fbwsim/internal/computers"
	"fbwsim/internal/sensors"
)

// Host supplies the inputs of a tick and consumes its actuator outputs.
// Requests latched by the host between ticks are seen together at the
// start of the next tick.
type Host interface {
	Read() HostInputs
	Write(out Actuators)
}

type HostInputs struct {
	Physical   sensors.Physical
	Faults     sensors.Faults
	Pilot      computers.PilotInputs
	Hydraulics computers.Hydraulics
	Requests   map[computers.ID]computers.UnitRequest

	Autopilot  autopilot.Requests
	Autothrust AutothrustRequests

	// Lateral guidance from the flight management system.
	NavCrossTrackNm    bus.Value
	NavDesiredTrackDeg bus.Value
}

type AutothrustRequests struct {
	ATHRPush      bool
	Disconnect    bool
	SpeedTargetKn float64
	MachMode      bool
	FlexActive    bool
}

// Actuators is everything the host drives after a tick.
type Actuators struct {
	Surfaces  computers.SurfaceCommands
	RudderDeg float64
	// Status is Normal per axis while a healthy master drives it,
	// FailureWarning otherwise.
	Status [computers.NumAxes]bus.Status

	N1CommandPct [2]float64

	PitchLaw           computers.Law
	AutopilotEngaged   bool
	AutothrustActive   bool
	PerformanceWarning bool
}
