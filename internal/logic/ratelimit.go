package logic

import "math"

// RateLimiter ramps its output toward the input at no more than Up units
// per second upward and Down units per second downward. The first Update
// starts from Init unless Reset was called.
type RateLimiter struct {
	Up   float64
	Down float64
	Init float64

	y    float64
	have bool
}

func (r *RateLimiter) Update(u, dt float64) float64 {
	if !r.have {
		r.y = r.Init
		r.have = true
	}
	if dt <= 0 {
		return r.y
	}
	step := u - r.y
	up := math.Abs(r.Up) * dt
	down := -math.Abs(r.Down) * dt
	if step >= down && step <= up {
		r.y = u
	} else {
		r.y += Clamp(step, down, up)
	}
	return r.y
}

// Reset sets the output to y without ramping.
func (r *RateLimiter) Reset(y float64) {
	r.y = y
	r.have = true
}

func (r *RateLimiter) Output() float64 {
	if !r.have {
		return r.Init
	}
	return r.y
}
