// Package autopilot implements the autopilot/flight director mode logic
// and the guidance laws that turn the active modes into attitude orders.
package autopilot

// LateralMode is the active lateral mode. Exactly one is active at a time.
type LateralMode uint8

const (
	LateralNone LateralMode = iota
	LateralHDG
	LateralNAV
	LateralLOCCPT
	LateralLOC
	LateralRollOut
	LateralGATrack
)

func (m LateralMode) String() string {
	switch m {
	case LateralHDG:
		return "HDG"
	case LateralNAV:
		return "NAV"
	case LateralLOCCPT:
		return "LOC*"
	case LateralLOC:
		return "LOC"
	case LateralRollOut:
		return "ROLL OUT"
	case LateralGATrack:
		return "GA TRK"
	default:
		return "NONE"
	}
}

// IsLocalizer reports LOC_CPT, LOC and ROLL_OUT.
func (m LateralMode) IsLocalizer() bool {
	return m == LateralLOCCPT || m == LateralLOC || m == LateralRollOut
}

// VerticalMode is the active vertical mode.
type VerticalMode uint8

const (
	VerticalNone VerticalMode = iota
	VerticalALT
	VerticalALTCPT
	VerticalVS
	VerticalGSCPT
	VerticalGS
	VerticalFlare
	VerticalSRSGA
)

func (m VerticalMode) String() string {
	switch m {
	case VerticalALT:
		return "ALT"
	case VerticalALTCPT:
		return "ALT*"
	case VerticalVS:
		return "V/S"
	case VerticalGSCPT:
		return "G/S*"
	case VerticalGS:
		return "G/S"
	case VerticalFlare:
		return "FLARE"
	case VerticalSRSGA:
		return "SRS GA"
	default:
		return "NONE"
	}
}

// IsGlideslope reports GS_CPT, GS and FLARE.
func (m VerticalMode) IsGlideslope() bool {
	return m == VerticalGSCPT || m == VerticalGS || m == VerticalFlare
}

// Armed is a set of armed modes.
type Armed uint8

const (
	ArmedNAV Armed = 1 << iota
	ArmedLOC
	ArmedALT
	ArmedGS
)

func (a Armed) Has(m Armed) bool { return a&m != 0 }

func (a Armed) String() string {
	s := ""
	for _, e := range []struct {
		bit  Armed
		name string
	}{{ArmedNAV, "NAV"}, {ArmedLOC, "LOC"}, {ArmedALT, "ALT"}, {ArmedGS, "G/S"}} {
		if a.Has(e.bit) {
			if s != "" {
				s += " "
			}
			s += e.name
		}
	}
	return s
}

// DisconnectReason records why the autopilot last disengaged. Reasons are
// checked in declaration order and the first match wins.
type DisconnectReason uint8

const (
	ReasonNone DisconnectReason = iota
	InstinctiveDisconnect
	SidestickOverride
	ProtectionActive
	// AttitudeInvalid also covers the loss of the reference data of an
	// active mode that has no reversion.
	AttitudeInvalid
	FlightControlsDegraded
)

func (r DisconnectReason) String() string {
	switch r {
	case InstinctiveDisconnect:
		return "instinctive_disconnect"
	case SidestickOverride:
		return "sidestick_override"
	case ProtectionActive:
		return "protection_active"
	case AttitudeInvalid:
		return "attitude_invalid"
	case FlightControlsDegraded:
		return "flight_controls_degraded"
	default:
		return "none"
	}
}
