package logic

// ConfirmNode passes its input through only after it has been stable for
// Delay seconds. With Rising set, true is delayed and false passes
// immediately; otherwise false is delayed and true passes immediately.
type ConfirmNode struct {
	Rising bool
	Delay  float64

	timer  float64
	output bool
	primed bool
}

// NewConfirmRising delays the true state by delay seconds.
func NewConfirmRising(delay float64) ConfirmNode {
	return ConfirmNode{Rising: true, Delay: delay}
}

// NewConfirmFalling delays the false state by delay seconds.
func NewConfirmFalling(delay float64) ConfirmNode {
	return ConfirmNode{Rising: false, Delay: delay}
}

func (c *ConfirmNode) Update(in bool, dt float64) bool {
	if !c.primed {
		// A falling-delay node starts as if false had already been confirmed.
		c.primed = true
		c.output = false
		c.timer = 0
	}
	if in == c.Rising {
		if c.output == c.Rising {
			return c.output
		}
		c.timer += dt
		if c.timer >= c.Delay {
			c.output = c.Rising
			c.timer = 0
		}
		return c.output
	}
	c.timer = 0
	c.output = in
	return c.output
}

func (c *ConfirmNode) Output() bool { return c.output }

// Reset forces the output without waiting.
func (c *ConfirmNode) Reset(out bool) {
	c.primed = true
	c.output = out
	c.timer = 0
}
