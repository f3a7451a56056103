// Package bus models the status-tagged words exchanged between simulated
// avionics units, after ARINC-429 data words with a sign/status matrix.
package bus

import (
	"fmt"
	"math"
)

// Status is the sign/status matrix of a word. The zero value is
// FailureWarning so an unset word is never mistaken for valid data.
type Status uint8

const (
	FailureWarning Status = iota
	NoComputedData
	FunctionalTest
	Normal
)

func (s Status) String() string {
	switch s {
	case FailureWarning:
		return "FW"
	case NoComputedData:
		return "NCD"
	case FunctionalTest:
		return "FT"
	case Normal:
		return "NO"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Value is one word on a bus. Data is meaningful only when Status is Normal.
type Value struct {
	Status Status  `msgpack:"s"`
	Data   float64 `msgpack:"v"`
}

// NewValue returns a word with Normal status.
func NewValue(v float64) Value {
	return Value{Status: Normal, Data: v}
}

// NCD returns a NoComputedData word.
func NCD() Value {
	return Value{Status: NoComputedData}
}

// Failed returns a FailureWarning word.
func Failed() Value {
	return Value{Status: FailureWarning}
}

// Valid reports whether the data may be used.
func (v Value) Valid() bool {
	return v.Status == Normal && !math.IsNaN(v.Data)
}

// Or returns the data if valid, fallback otherwise.
func (v Value) Or(fallback float64) float64 {
	if v.Valid() {
		return v.Data
	}
	return fallback
}

// WithStatus returns a copy carrying status s. Data is zeroed for any
// status other than Normal so stale values never leak downstream.
func (v Value) WithStatus(s Status) Value {
	if s != Normal {
		return Value{Status: s}
	}
	v.Status = s
	return v
}

// ValidIf returns NewValue(data) when ok is true and NCD otherwise.
func ValidIf(ok bool, data float64) Value {
	if ok {
		return NewValue(data)
	}
	return NCD()
}

func (v Value) String() string {
	if v.Status != Normal {
		return v.Status.String()
	}
	return fmt.Sprintf("%g", v.Data)
}

// Emitter receives named words when a unit publishes its buses.
type Emitter func(name string, v Value)
