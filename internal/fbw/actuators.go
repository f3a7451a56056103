package fbw

import (
	"fbwsim/internal/bus"
	"fbwsim/internal/computers"
	"fbwsim/internal/logic"
	"fbwsim/internal/redundancy"
)

const rudderMaxDeg = 25

// spoilerOwner is the SEC driving each spoiler pair.
var spoilerOwner = [5]computers.ID{
	computers.SEC3, computers.SEC3, computers.SEC1, computers.SEC1, computers.SEC2,
}

// resolveActuators takes each surface from the master of its axis. An axis
// without an active master commands neutral and reports FailureWarning.
func resolveActuators(peers *computers.Peers, sel *redundancy.Result, pilot *computers.PilotInputs) Actuators {
	var out Actuators
	s := &out.Surfaces
	for a := range sel {
		out.Status[a] = sel[a].Status
	}

	if m := active(peers, sel[computers.AxisPitch]); m != nil {
		s.LeftElevatorDeg = m.Surfaces.LeftElevatorDeg
		s.RightElevatorDeg = m.Surfaces.RightElevatorDeg
		s.THSDeg = m.Surfaces.THSDeg
	}

	// Ailerons are ELAC only; with a SEC in roll they stay neutral.
	if m := active(peers, sel[computers.AxisRoll]); m != nil && m.ID.Kind == computers.KindELAC {
		s.LeftAileronDeg = m.Surfaces.LeftAileronDeg
		s.RightAileronDeg = m.Surfaces.RightAileronDeg
	}

	for i, id := range spoilerOwner {
		if o := peers.Get(id); o != nil && o.Health != computers.Failed {
			s.LeftSpoilerDeg[i] = o.Surfaces.LeftSpoilerDeg[i]
			s.RightSpoilerDeg[i] = o.Surfaces.RightSpoilerDeg[i]
		}
	}
	if m := active(peers, sel[computers.AxisGroundSpoilers]); m != nil {
		s.GroundSpoilersOut = m.Surfaces.GroundSpoilersOut
	}

	// Without a FAC the rudder is driven mechanically by the pedals.
	limit := float64(rudderMaxDeg)
	if m := active(peers, sel[computers.AxisYaw]); m != nil {
		s.YawDamperDeg = m.Surfaces.YawDamperDeg
		s.RudderTrimDeg = m.Surfaces.RudderTrimDeg
		s.RudderTravelLimitDeg = m.Surfaces.RudderTravelLimitDeg
		limit = s.RudderTravelLimitDeg
	}
	out.RudderDeg = logic.Clamp(pilot.RudderPedal*rudderMaxDeg+s.RudderTrimDeg+s.YawDamperDeg, -limit, limit)
	return out
}

func active(peers *computers.Peers, s redundancy.Selection) *computers.Outputs {
	if !s.Active() {
		return nil
	}
	return peers.Get(s.Master)
}

// directActuators maps the controls straight to the surfaces when the
// flight-control model is switched off.
func directActuators(pilot *computers.PilotInputs) Actuators {
	var out Actuators
	pitch := logic.Clamp(pilot.SidestickPitch[0]+pilot.SidestickPitch[1], -1, 1)
	roll := logic.Clamp(pilot.SidestickRoll[0]+pilot.SidestickRoll[1], -1, 1)
	s := &out.Surfaces
	if pitch >= 0 {
		s.LeftElevatorDeg = pitch * 30
	} else {
		s.LeftElevatorDeg = pitch * 15
	}
	s.RightElevatorDeg = s.LeftElevatorDeg
	s.LeftAileronDeg = roll * 25
	s.RightAileronDeg = -s.LeftAileronDeg
	out.RudderDeg = logic.Clamp(pilot.RudderPedal, -1, 1) * rudderMaxDeg
	for a := range out.Status {
		out.Status[a] = bus.NoComputedData
	}
	out.PitchLaw = computers.LawDirect
	return out
}
