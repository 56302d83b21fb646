package dsp

// OnePole is a first-order exponential smoother, y += alpha*(x-y).
type OnePole struct {
	alpha  float64
	value  float64
	primed bool
}

// NewOnePole derives alpha from the update period dt and time constant tau,
// both in seconds. tau <= 0 gives a pass-through.
func NewOnePole(dt, tau float64) *OnePole {
	if tau <= 0 {
		return NewOnePoleAlpha(1)
	}
	return NewOnePoleAlpha(dt / (tau + dt))
}

// NewOnePoleAlpha creates a smoother with an explicit coefficient in (0, 1].
func NewOnePoleAlpha(alpha float64) *OnePole {
	if alpha <= 0 || alpha > 1 {
		alpha = 1
	}
	return &OnePole{alpha: alpha}
}

// Filter feeds x and returns the smoothed value. The first sample seeds the
// state.
func (p *OnePole) Filter(x float64) float64 {
	if !p.primed {
		p.value = x
		p.primed = true
		return x
	}
	p.value += p.alpha * (x - p.value)
	return p.value
}

// Alpha returns the smoothing coefficient.
func (p *OnePole) Alpha() float64 { return p.alpha }

// Reset forgets the state; the next sample seeds it again.
func (p *OnePole) Reset() {
	p.value = 0
	p.primed = false
}
