package computers

import (
	"strconv"

	"fbwsim/internal/bus"
)

// Set owns every unit and publishes their outputs in two phases: all units
// step against the previous tick's Peers, then the new outputs replace it.
type Set struct {
	units     []Computer
	published Peers
}

// NewSet creates every unit in StepOrder.
func NewSet() *Set {
	s := &Set{}
	for _, id := range StepOrder {
		switch id.Kind {
		case KindELAC:
			s.units = append(s.units, NewELAC(id.Index))
		case KindSEC:
			s.units = append(s.units, NewSEC(id.Index))
		case KindFCDC:
			s.units = append(s.units, NewFCDC(id.Index))
		case KindFAC:
			s.units = append(s.units, NewFAC(id.Index))
		}
	}
	return s
}

func (s *Set) Units() []Computer { return s.units }

// Published returns the outputs of the last Step.
func (s *Set) Published() *Peers { return &s.published }

// Step runs one tick. in.Peers is ignored and replaced by the previous
// tick's outputs.
func (s *Set) Step(dt float64, in Inputs) Peers {
	prev := s.published
	in.Peers = &prev
	var next Peers
	for _, u := range s.units {
		next.Set(u.Step(dt, &in))
	}
	s.published = next
	return next
}

// Each calls fn for every unit's outputs in StepOrder.
func (p *Peers) Each(fn func(*Outputs)) {
	for _, id := range StepOrder {
		if o := p.Get(id); o != nil {
			fn(o)
		}
	}
}

// Publish emits every bus word of every unit.
func (p *Peers) Publish(emit bus.Emitter) {
	p.Each(func(o *Outputs) { o.Publish(emit) })
}

// Publish emits the unit's bus words under "<kind>.<index>.<word>".
func (o *Outputs) Publish(emit bus.Emitter) {
	prefix := o.ID.Kind.String() + "." + strconv.Itoa(o.ID.Index) + "."
	e := func(name string, v bus.Value) { emit(prefix+name, v) }
	spoilers := func(side string, words [5]bus.Value) {
		for i, w := range words {
			e(side+"_spoiler_"+strconv.Itoa(i+1)+"_deg", w)
		}
	}

	e("health", bus.NewValue(float64(o.Health)))
	switch o.ID.Kind {
	case KindELAC:
		b := &o.Elac
		e("status_word", b.StatusWord)
		e("pitch_law", b.PitchLaw)
		e("left_elevator_deg", b.LeftElevatorDeg)
		e("right_elevator_deg", b.RightElevatorDeg)
		e("ths_deg", b.THSDeg)
		e("left_aileron_deg", b.LeftAileronDeg)
		e("right_aileron_deg", b.RightAileronDeg)
		e("roll_order", b.RollOrder)
	case KindSEC:
		b := &o.Sec
		e("status_word", b.StatusWord)
		spoilers("left", b.LeftSpoilerDeg)
		spoilers("right", b.RightSpoilerDeg)
		e("elevator_deg", b.ElevatorDeg)
		e("speed_brake_deg", b.SpeedBrakeDeg)
	case KindFCDC:
		b := &o.Fcdc
		e("discrete_word_1", b.DiscreteWord1)
		e("discrete_word_2", b.DiscreteWord2)
		e("left_elevator_deg", b.LeftElevatorDeg)
		e("right_elevator_deg", b.RightElevatorDeg)
		e("ths_deg", b.THSDeg)
		e("left_aileron_deg", b.LeftAileronDeg)
		e("right_aileron_deg", b.RightAileronDeg)
		spoilers("left", b.LeftSpoilerDeg)
		spoilers("right", b.RightSpoilerDeg)
	case KindFAC:
		b := &o.Fac
		e("discrete_word", b.DiscreteWord)
		e("v_s1g_kn", b.VS1gKn)
		e("v_ls_kn", b.VLSKn)
		e("v_alpha_prot_kn", b.VAlphaProtKn)
		e("v_alpha_max_kn", b.VAlphaMaxKn)
		e("v_max_kn", b.VMaxKn)
		e("alpha_prot_deg", b.AlphaProtDeg)
		e("alpha_floor_deg", b.AlphaFloorDeg)
		e("rudder_travel_limit_deg", b.RudderTravelLimitDeg)
		e("yaw_damper_deg", b.YawDamperDeg)
		e("rudder_trim_deg", b.RudderTrimDeg)
	}
}
