// Package fdr writes and reads flight data recorder files.
//
// A file starts with the interface version as a little-endian uint64,
// followed by fixed-layout little-endian Records, each trailed by the
// CRC-16/XMODEM of its bytes. Files are gzip-compressed unless disabled.
package fdr

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"strconv"
)

// Version must be increased with every change to Record.
const Version uint64 = 1

// Flags bits.
const (
	FlagClamped            = 1 << 0
	FlagPerformanceWarning = 1 << 1
	FlagOnGround           = 1 << 2
	FlagAP1                = 1 << 3
	FlagAP2                = 1 << 4
	FlagFD1                = 1 << 5
	FlagFD2                = 1 << 6
	FlagGroundSpoilersOut  = 1 << 7
)

// Record is one recorded tick. Fields must stay fixed-size.
type Record struct {
	Tick  uint64
	TimeS float64
	DtS   float64
	Flags uint32

	AltitudeFt       float64
	CasKn            float64
	Mach             float64
	VerticalSpeedFpm float64
	AlphaDeg         float64
	PitchDeg         float64
	RollDeg          float64
	HeadingDeg       float64
	NzG              float64
	RadioHeightFt    float64

	SidestickPitch  [2]float64
	SidestickRoll   [2]float64
	RudderPedal     float64
	SpeedBrakeLever float64
	ThrustLeverDeg  [2]float64

	// Health is per unit in ELAC1..FAC2 order; Masters holds, per axis,
	// the 1-based position of the master in that order, 0 for none.
	Health   [9]uint8
	Masters  [5]uint8
	PitchLaw uint8

	APLateral        uint8
	APVertical       uint8
	APArmed          uint8
	APDisconnect     uint8
	APPitchOrderDeg  float64
	APRollOrderDeg   float64
	APYawOrderDeg    float64
	HeadingTargetDeg float64
	AltitudeTargetFt float64
	VSTargetFpm      float64

	ATHRStatus    uint8
	ATHRMode      uint8
	SpeedTargetKn float64
	N1CommandPct  [2]float64
	N1Pct         [2]float64

	LeftElevatorDeg  float64
	RightElevatorDeg float64
	THSDeg           float64
	LeftAileronDeg   float64
	RightAileronDeg  float64
	RudderDeg        float64
	LeftSpoilerDeg   [5]float64
	RightSpoilerDeg  [5]float64
}

// RecordSize is the encoded size of a Record without its checksum.
var RecordSize = binary.Size(Record{})

// Columns returns the CSV column names of Record. Arrays expand to one
// column per element, suffixed _1, _2 and so on.
func Columns() []string {
	var cols []string
	t := reflect.TypeOf(Record{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Type.Kind() == reflect.Array {
			for j := 0; j < f.Type.Len(); j++ {
				cols = append(cols, f.Name+"_"+strconv.Itoa(j+1))
			}
			continue
		}
		cols = append(cols, f.Name)
	}
	return cols
}

// Values returns the fields of r formatted in Columns order.
func (r *Record) Values() []string {
	var out []string
	v := reflect.ValueOf(r).Elem()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.Kind() == reflect.Array {
			for j := 0; j < f.Len(); j++ {
				out = append(out, formatValue(f.Index(j)))
			}
			continue
		}
		out = append(out, formatValue(f))
	}
	return out
}

func formatValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	}
	panic(fmt.Sprintf("fdr: unsupported field kind %s", v.Kind()))
}
