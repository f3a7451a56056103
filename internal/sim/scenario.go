package sim

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"fbwsim/internal/computers"
)

// ScenarioScript is a deterministic, script-driven run description.
//
// Time is expressed as Go duration strings (e.g. "0s", "250ms", "10s").
// If Duration is zero, it is derived from the latest event time.
//
// YAML schema (v1):
//
//	version: 1
//	duration: 60s
//	initial:
//	  altitude_ft: 10000
//	  cas_kn: 250
//	  heading_deg: 90
//	runway:
//	  threshold_north_nm: 0
//	  threshold_east_nm: 20
//	  course_deg: 90
//	events:
//	  - t: 2s
//	    ap1_push: true
//	  - t: 5s
//	    hdg_select: 120
//	  - t: 20s
//	    fail: [elac1]
//
// Events must be sorted by t. Pulse fields (pushes, selections) are seen by
// the next tick only; the other fields are held until changed.
//
//nolint:revive // exported for YAML, but used primarily internally
type ScenarioScript struct {
	Version  int           `yaml:"version"`
	Duration time.Duration `yaml:"duration"`
	Initial  InitialState  `yaml:"initial"`
	Runway   *Runway       `yaml:"runway"`
	Route    *RouteLeg     `yaml:"route"`
	Events   []Event       `yaml:"events"`
}

// InitialState is the trimmed starting condition of the aircraft.
type InitialState struct {
	NorthNm     float64 `yaml:"north_nm"`
	EastNm      float64 `yaml:"east_nm"`
	AltitudeFt  float64 `yaml:"altitude_ft"`
	CasKn       float64 `yaml:"cas_kn"`
	HeadingDeg  float64 `yaml:"heading_deg"`
	N1Pct       float64 `yaml:"n1_pct"`
	FlapConfig  int     `yaml:"flap_config"`
	GearDown    bool    `yaml:"gear_down"`
	SpeedTarget float64 `yaml:"speed_target_kn"`
}

// Event is a time-stamped set of cockpit actions, failures and
// environment changes.
//
//nolint:revive
type Event struct {
	T time.Duration `yaml:"t"`

	AP1Push        bool     `yaml:"ap1_push"`
	AP2Push        bool     `yaml:"ap2_push"`
	APDisconnect   bool     `yaml:"ap_disconnect"`
	FD1            *bool    `yaml:"fd1"`
	FD2            *bool    `yaml:"fd2"`
	HDGSelect      *float64 `yaml:"hdg_select"`
	NAVPush        bool     `yaml:"nav_push"`
	LOCPush        bool     `yaml:"loc_push"`
	APPRPush       bool     `yaml:"appr_push"`
	ALTPush        bool     `yaml:"alt_push"`
	AltitudeTarget *float64 `yaml:"altitude_target_ft"`
	VSSelect       *float64 `yaml:"vs_select"`

	ATHRPush       bool     `yaml:"athr_push"`
	ATHRDisconnect bool     `yaml:"athr_disconnect"`
	SpeedTargetKn  *float64 `yaml:"speed_target_kn"`
	ThrustLeverDeg *float64 `yaml:"thrust_lever_deg"`

	SidestickPitch      *float64 `yaml:"sidestick_pitch"`
	SidestickRoll       *float64 `yaml:"sidestick_roll"`
	RudderPedal         *float64 `yaml:"rudder_pedal"`
	SpeedBrake          *float64 `yaml:"speed_brake"`
	GroundSpoilersArmed *bool    `yaml:"ground_spoilers_armed"`
	FlapConfig          *int     `yaml:"flap_config"`
	GearDown            *bool    `yaml:"gear_down"`

	// Unit names are "elac1", "sec2", "fac1"; a ":left", ":right" or
	// ":channel" suffix selects a partial failure.
	Fail          []string `yaml:"fail"`
	Clear         []string `yaml:"clear"`
	PushbuttonOff []string `yaml:"pushbutton_off"`
	PushbuttonOn  []string `yaml:"pushbutton_on"`

	// Sensor names are "adr1", "ir2", "ir3_align", "ra1", "lgciu1",
	// "sfcc2", "eng1" and "ils".
	SensorFail         []string `yaml:"sensor_fail"`
	SensorClear        []string `yaml:"sensor_clear"`
	HydraulicsLost     []string `yaml:"hydraulics_lost"`
	HydraulicsRestored []string `yaml:"hydraulics_restored"`
}

// Scenario is the validated, runtime representation.
//
//nolint:revive
type Scenario struct {
	script   ScenarioScript
	duration time.Duration
	next     int
}

// LoadScenarioScript reads and unmarshals a YAML scenario script from path.
func LoadScenarioScript(path string) (ScenarioScript, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ScenarioScript{}, err
	}
	return ParseScenarioScriptYAML(b)
}

// ParseScenarioScriptYAML parses a YAML scenario script.
func ParseScenarioScriptYAML(b []byte) (ScenarioScript, error) {
	var s ScenarioScript
	if err := yaml.Unmarshal(b, &s); err != nil {
		return ScenarioScript{}, err
	}
	return s, nil
}

// NewScenario validates script and returns a runtime Scenario.
func NewScenario(script ScenarioScript) (*Scenario, error) {
	if script.Version == 0 {
		script.Version = 1
	}
	if script.Version != 1 {
		return nil, fmt.Errorf("unsupported scenario version %d", script.Version)
	}
	if script.Initial.CasKn < 0 {
		return nil, fmt.Errorf("initial.cas_kn must be >= 0")
	}
	if c := script.Initial.FlapConfig; c < 0 || c > 4 {
		return nil, fmt.Errorf("initial.flap_config must be 0..4")
	}
	for i := range script.Events {
		if err := validateEvent(&script.Events[i], i); err != nil {
			return nil, err
		}
		if i > 0 && script.Events[i].T < script.Events[i-1].T {
			return nil, fmt.Errorf("events must be sorted by t (index %d)", i)
		}
	}

	dur := script.Duration
	if dur <= 0 && len(script.Events) > 0 {
		dur = script.Events[len(script.Events)-1].T
	}
	if dur <= 0 {
		return nil, fmt.Errorf("duration is required (or deriveable from events)")
	}
	return &Scenario{script: script, duration: dur}, nil
}

func validateEvent(e *Event, i int) error {
	if e.T < 0 {
		return fmt.Errorf("events[%d].t must be >= 0", i)
	}
	for _, list := range [][]string{e.Fail, e.Clear, e.PushbuttonOff, e.PushbuttonOn} {
		for _, name := range list {
			if _, _, err := ParseUnit(name); err != nil {
				return fmt.Errorf("events[%d]: %w", i, err)
			}
		}
	}
	for _, list := range [][]string{e.SensorFail, e.SensorClear} {
		for _, name := range list {
			if _, err := parseSensor(name); err != nil {
				return fmt.Errorf("events[%d]: %w", i, err)
			}
		}
	}
	for _, list := range [][]string{e.HydraulicsLost, e.HydraulicsRestored} {
		for _, name := range list {
			switch name {
			case "green", "blue", "yellow":
			default:
				return fmt.Errorf("events[%d]: unknown hydraulic system %q", i, name)
			}
		}
	}
	if e.FlapConfig != nil && (*e.FlapConfig < 0 || *e.FlapConfig > 4) {
		return fmt.Errorf("events[%d].flap_config must be 0..4", i)
	}
	return nil
}

// Duration returns the effective scenario duration.
func (s *Scenario) Duration() time.Duration {
	if s == nil {
		return 0
	}
	return s.duration
}

func (s *Scenario) Initial() InitialState { return s.script.Initial }

// Due returns the events with t <= elapsed that have not been returned yet.
func (s *Scenario) Due(elapsed time.Duration) []Event {
	if s == nil {
		return nil
	}
	start := s.next
	for s.next < len(s.script.Events) && s.script.Events[s.next].T <= elapsed {
		s.next++
	}
	return s.script.Events[start:s.next]
}

// ParseUnit parses a unit name such as "elac1" or "sec2:left" into the
// unit and the failure it selects.
func ParseUnit(name string) (computers.ID, computers.Failure, error) {
	base, mode, _ := strings.Cut(strings.ToLower(strings.TrimSpace(name)), ":")
	var id computers.ID
	for _, k := range []computers.Kind{computers.KindELAC, computers.KindSEC, computers.KindFCDC, computers.KindFAC} {
		prefix := strings.ToLower(k.String())
		if rest, ok := strings.CutPrefix(base, prefix); ok {
			n, err := strconv.Atoi(rest)
			if err != nil {
				return id, 0, fmt.Errorf("unit %q: bad index", name)
			}
			id = computers.ID{Kind: k, Index: n}
			break
		}
	}
	if id.IsZero() || id.Index < 1 || id.Index > unitCount(id.Kind) {
		return computers.ID{}, 0, fmt.Errorf("unknown unit %q", name)
	}
	switch mode {
	case "":
		return id, computers.FailureTotal, nil
	case "channel":
		return id, computers.FailureChannelLoss, nil
	case "left":
		return id, computers.FailureLeftSurface, nil
	case "right":
		return id, computers.FailureRightSurface, nil
	}
	return computers.ID{}, 0, fmt.Errorf("unit %q: unknown failure %q", name, mode)
}

func unitCount(k computers.Kind) int {
	if k == computers.KindSEC {
		return 3
	}
	return 2
}

type sensorRef struct {
	kind  string
	index int
}

func parseSensor(name string) (sensorRef, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "ils" {
		return sensorRef{kind: "ils"}, nil
	}
	limits := map[string]int{"adr": 3, "ir": 3, "ir_align": 3, "ra": 2, "lgciu": 2, "sfcc": 2, "eng": 2}
	kind, suffix := name, ""
	if k, s, ok := strings.Cut(name, "_"); ok {
		kind, suffix = k, "_"+s
	}
	i := strings.IndexAny(kind, "0123456789")
	if i <= 0 {
		return sensorRef{}, fmt.Errorf("unknown sensor %q", name)
	}
	n, err := strconv.Atoi(kind[i:])
	ref := sensorRef{kind: kind[:i] + suffix, index: n}
	if lim, ok := limits[ref.kind]; !ok || err != nil || n < 1 || n > lim {
		return sensorRef{}, fmt.Errorf("unknown sensor %q", name)
	}
	return ref, nil
}
