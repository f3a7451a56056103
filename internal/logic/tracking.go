package logic

import (
	"time"

	"go.einride.tech/pid"
)

// Interval converts a sample time in seconds to the pid package's unit.
func Interval(dt float64) time.Duration {
	return time.Duration(dt * float64(time.Second))
}

// Drive steps c as the controller whose output reaches the actuator and
// returns the saturated signal. That signal is fed back as the applied
// control so the back-calculation term only acts while saturated.
//
// A controller that is not driving calls c.Update directly with the
// position actually applied; its integrator then follows that position.
func Drive(c *pid.TrackingController, in pid.TrackingControllerInput) float64 {
	// The output depends only on state carried from the previous step, so a
	// copy tells us what will be applied.
	next := *c
	next.Update(in)
	in.AppliedControlSignal = next.State.ControlSignal
	c.Update(in)
	return c.State.ControlSignal
}
