package computers

import (
	"fbwsim/internal/bus"
	"fbwsim/internal/logic"
)

// Power-up self test duration.
const selfTestSeconds = 0.5

// unit holds the state every computer kind shares: identity, the last
// health, the failure latch and the power-up self test.
type unit struct {
	id       ID
	health   Health
	latched  bool
	selfTest logic.ConfirmNode
}

func newUnit(id ID) unit {
	u := unit{id: id, health: Healthy, selfTest: logic.NewConfirmRising(selfTestSeconds)}
	// Units start powered with the self test already passed.
	u.selfTest.Reset(true)
	return u
}

func (u *unit) ID() ID { return u.id }

func (u *unit) Health() Health { return u.health }

// power applies the pushbutton and the failure request. A total failure
// stays latched until the request is cleared and the pushbutton is cycled
// off. running is false while the unit is off or failed; testing is true
// while the power-up self test is still running.
func (u *unit) power(req UnitRequest, dt float64) (running, testing bool) {
	switch {
	case req.Failure == FailureTotal:
		u.latched = true
	case req.Failure == FailureNone && req.PushbuttonOff:
		u.latched = false
	}
	on := !req.PushbuttonOff && !u.latched
	passed := u.selfTest.Update(on, dt)
	return on, on && !passed
}

// fail returns neutral outputs with every status word at FailureWarning.
func (u *unit) fail() Outputs {
	u.health = Failed
	return Outputs{ID: u.id, Health: Failed, Status: bus.Failed()}
}

// finish records the health of a running unit.
func (u *unit) finish(out *Outputs, degraded bool) {
	u.health = Healthy
	if degraded {
		u.health = Degraded
	}
	out.ID = u.id
	out.Health = u.health
}
