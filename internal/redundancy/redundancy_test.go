package redundancy

import (
	"testing"

	"fbwsim/internal/bus"
	"fbwsim/internal/computers"
	"fbwsim/internal/sensors"
)

func cands(h ...computers.Health) []Candidate {
	ids := Groups[computers.AxisRoll]
	out := make([]Candidate, len(h))
	for i := range h {
		out[i] = Candidate{ID: ids[i], Health: h[i]}
	}
	return out
}

func TestSelectMaster(t *testing.T) {
	const (
		H = computers.Healthy
		D = computers.Degraded
		F = computers.Failed
	)
	cases := []struct {
		name   string
		health []computers.Health
		want   computers.ID
		status bus.Status
		active bool
	}{
		{"first healthy", []computers.Health{H, H, H}, computers.ELAC1, bus.Normal, true},
		{"failover", []computers.Health{F, H, H}, computers.ELAC2, bus.Normal, true},
		{"healthy beats earlier degraded", []computers.Health{D, F, H}, computers.SEC1, bus.Normal, true},
		{"least degraded", []computers.Health{F, D, D}, computers.ELAC2, bus.FailureWarning, true},
		{"tie goes to lower index", []computers.Health{D, D}, computers.ELAC1, bus.FailureWarning, true},
		{"all failed", []computers.Health{F, F, F}, computers.ELAC1, bus.FailureWarning, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := SelectMaster(computers.AxisRoll, cands(c.health...))
			if got.Master != c.want || got.Status != c.status || got.Active() != c.active {
				t.Fatalf("got %+v want master=%v status=%v active=%v", got, c.want, c.status, c.active)
			}
		})
	}
}

func TestSelectMaster_NoCandidates(t *testing.T) {
	got := SelectMaster(computers.AxisYaw, nil)
	if got.Active() || got.Status != bus.FailureWarning {
		t.Fatalf("got %+v", got)
	}
}

func TestCandidates_UnavailableAxisCountsAsFailed(t *testing.T) {
	var peers computers.Peers
	for _, id := range computers.StepOrder {
		o := computers.Outputs{ID: id, Health: computers.Healthy}
		o.Available[computers.AxisPitch] = true
		peers.Set(o)
	}
	// ELAC1 lost both elevators but is otherwise healthy.
	elac1 := peers.Get(computers.ELAC1)
	elac1.Available[computers.AxisPitch] = false

	r := SelectAll(&peers)
	if got := r[computers.AxisPitch].Master; got != computers.ELAC2 {
		t.Fatalf("pitch master=%v want elac2", got)
	}
	if r[computers.AxisYaw].Active() {
		t.Fatalf("yaw active with no FAC offering yaw")
	}
	m := r.Masters()
	if m[computers.AxisPitch] != computers.ELAC2 || !m[computers.AxisYaw].IsZero() {
		t.Fatalf("masters=%v", m)
	}
}

func TestSelectAll_FailoverUsesSameTickHealth(t *testing.T) {
	var suite sensors.Suite
	suite.Sample(sensors.Physical{CasKn: 250, NzG: 1}, sensors.Faults{})
	b := suite.Buses()

	s := computers.NewSet()
	in := computers.Inputs{Sensors: &b, Hydraulics: computers.AllHydraulics}
	peers := s.Step(0.05, in)
	if got := SelectAll(&peers)[computers.AxisPitch].Master; got != computers.ELAC1 {
		t.Fatalf("pitch master=%v want elac1", got)
	}

	in.Requests = map[computers.ID]computers.UnitRequest{computers.ELAC1: {Failure: computers.FailureTotal}}
	peers = s.Step(0.05, in)
	if got := SelectAll(&peers)[computers.AxisPitch].Master; got != computers.ELAC2 {
		t.Fatalf("pitch master=%v want elac2 in the failing tick", got)
	}
}
