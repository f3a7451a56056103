// Package redundancy selects, for each control axis, the one unit whose
// commands reach the actuators.
package redundancy

import (
	"fbwsim/internal/bus"
	"fbwsim/internal/computers"
)

// Groups lists the candidates of each axis in priority order.
var Groups = [computers.NumAxes][]computers.ID{
	computers.AxisPitch:          {computers.ELAC1, computers.ELAC2, computers.SEC1, computers.SEC2},
	computers.AxisRoll:           {computers.ELAC1, computers.ELAC2, computers.SEC1, computers.SEC2, computers.SEC3},
	computers.AxisYaw:            {computers.FAC1, computers.FAC2},
	computers.AxisGroundSpoilers: {computers.SEC1, computers.SEC2, computers.SEC3},
	computers.AxisData:           {computers.FCDC1, computers.FCDC2},
}

// Candidate is one unit's health as seen for a given axis.
type Candidate struct {
	ID     computers.ID
	Health computers.Health
}

// Selection is the outcome for one axis.
type Selection struct {
	Axis   computers.Axis
	Master computers.ID
	Health computers.Health
	// Status is Normal with a Healthy master and FailureWarning otherwise.
	Status bus.Status
}

// Active reports whether the master's commands may be used. A Failed
// master means the axis falls back to neutral.
func (s Selection) Active() bool {
	return !s.Master.IsZero() && s.Health != computers.Failed
}

// SelectMaster picks the first Healthy candidate in order. With none, the
// least degraded candidate wins, earlier candidates winning ties, and the
// selection carries FailureWarning.
func SelectMaster(axis computers.Axis, candidates []Candidate) Selection {
	sel := Selection{Axis: axis, Status: bus.FailureWarning}
	for i, c := range candidates {
		if c.Health == computers.Healthy {
			return Selection{Axis: axis, Master: c.ID, Health: c.Health, Status: bus.Normal}
		}
		if i == 0 || c.Health > sel.Health {
			sel.Master, sel.Health = c.ID, c.Health
		}
	}
	return sel
}

// Candidates returns the candidates of axis with the health published in
// peers. A unit that reports the axis unavailable counts as Failed for it.
func Candidates(axis computers.Axis, peers *computers.Peers) []Candidate {
	ids := Groups[axis]
	out := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		c := Candidate{ID: id, Health: computers.Failed}
		if o := peers.Get(id); o != nil && o.Available[axis] {
			c.Health = o.Health
		}
		out = append(out, c)
	}
	return out
}

// Result is the selection of every axis in one tick.
type Result [computers.NumAxes]Selection

// SelectAll runs SelectMaster for every axis.
func SelectAll(peers *computers.Peers) Result {
	var r Result
	for a := computers.Axis(0); a < computers.NumAxes; a++ {
		r[a] = SelectMaster(a, Candidates(a, peers))
	}
	return r
}

// Masters returns the active master of each axis, or a zero ID where the
// axis has fallen back to neutral.
func (r *Result) Masters() computers.Masters {
	var m computers.Masters
	for a, s := range r {
		if s.Active() {
			m[a] = s.Master
		}
	}
	return m
}
