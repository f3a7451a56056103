package fbw

import (
	"github.com/brunoga/deep"

	"fbwsim/internal/autopilot"
	"fbwsim/internal/autothrust"
	"fbwsim/internal/bus"
	"fbwsim/internal/computers"
	"fbwsim/internal/redundancy"
	"fbwsim/internal/sensors"
)

// Context is all state that persists from one tick to the next.
type Context struct {
	Tick  uint64
	TimeS float64
	Dt    float64

	Clamped            bool
	ClampedRun         int
	PerformanceWarning bool

	Sensors   sensors.Suite
	Buses     sensors.Buses
	Computers *computers.Set
	Selection redundancy.Result
	Masters   computers.Masters

	Autopilot *autopilot.StateMachine
	Laws      *autopilot.Laws
	APState   autopilot.State
	Orders    autopilot.Commands

	Autothrust *autothrust.Autothrust
	ATHR       autothrust.Output

	Actuators Actuators
}

func newContext() *Context {
	return &Context{
		Computers:  computers.NewSet(),
		Autopilot:  autopilot.NewStateMachine(),
		Laws:       autopilot.NewLaws(),
		Orders:     autopilot.Commands{PitchDeg: bus.NCD(), RollDeg: bus.NCD(), YawDeg: bus.NCD()},
		Autothrust: autothrust.New(),
	}
}

// Snapshot is the record of one tick handed to recorders. It shares no
// memory with the Context.
type Snapshot struct {
	Tick  uint64
	TimeS float64
	Dt    float64

	Clamped            bool
	PerformanceWarning bool

	Inputs     HostInputs
	Buses      sensors.Buses
	Peers      computers.Peers
	Selection  redundancy.Result
	Autopilot  autopilot.State
	Orders     autopilot.Commands
	Autothrust autothrust.Output
	Actuators  Actuators
}

func (c *Context) snapshot(in *HostInputs) *Snapshot {
	s := Snapshot{
		Tick:               c.Tick,
		TimeS:              c.TimeS,
		Dt:                 c.Dt,
		Clamped:            c.Clamped,
		PerformanceWarning: c.PerformanceWarning,
		Inputs:             *in,
		Buses:              c.Buses,
		Peers:              *c.Computers.Published(),
		Selection:          c.Selection,
		Autopilot:          c.APState,
		Orders:             c.Orders,
		Autothrust:         c.ATHR,
		Actuators:          c.Actuators,
	}
	return deep.MustCopy(&s)
}

// Recorder consumes one Snapshot per tick, after the actuators are written.
type Recorder interface {
	Record(s *Snapshot) error
}
