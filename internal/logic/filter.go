package logic

// LagFilter is a first-order low-pass 1/(1+s/C1) discretised with the
// bilinear transform. It initialises on its first sample.
type LagFilter struct {
	C1 float64

	pY, pU float64
	have   bool
}

func (f *LagFilter) Update(u, dt float64) float64 {
	if !f.have {
		f.pU, f.pY, f.have = u, u, true
	}
	if dt <= 0 {
		return f.pY
	}
	k := dt * f.C1
	ca := k / (k + 2)
	y := (2-k)/(k+2)*f.pY + ca*u + ca*f.pU
	f.pY, f.pU = y, u
	return y
}

func (f *LagFilter) Reset(v float64) {
	f.pU, f.pY, f.have = v, v, true
}

// WashoutFilter is the high-pass s/(s+C1) companion of LagFilter; a
// constant input decays to zero.
type WashoutFilter struct {
	C1 float64

	pY, pU float64
	have   bool
}

func (f *WashoutFilter) Update(u, dt float64) float64 {
	if !f.have {
		f.pU, f.pY, f.have = u, 0, true
	}
	if dt <= 0 {
		return f.pY
	}
	k := dt * f.C1
	ca := 2 / (k + 2)
	y := (2-k)/(k+2)*f.pY + ca*u - ca*f.pU
	f.pY, f.pU = y, u
	return y
}
