package logic

import (
	"math"
	"sort"

	"golang.org/x/exp/constraints"
)

func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WrapDeg180 maps an angle to (-180, 180].
func WrapDeg180(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d <= -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}
	return d
}

// WrapDeg360 maps an angle to [0, 360).
func WrapDeg360(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// Table is a 1-D piecewise linear lookup table. X must be strictly
// increasing. Outside the breakpoints the end values are held.
type Table struct {
	X []float64
	Y []float64
}

func (t Table) At(x float64) float64 {
	n := len(t.X)
	if n == 0 || len(t.Y) != n {
		return 0
	}
	if x <= t.X[0] {
		return t.Y[0]
	}
	if x >= t.X[n-1] {
		return t.Y[n-1]
	}
	i := sort.SearchFloat64s(t.X, x)
	x0, x1 := t.X[i-1], t.X[i]
	y0, y1 := t.Y[i-1], t.Y[i]
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}
