package radar

import "gonum.org/v1/gonum/floats"

// CalibrationState is the lifecycle of the background baseline.
type CalibrationState int

const (
	Uncalibrated CalibrationState = iota
	Accumulating
	Ready
)

func (s CalibrationState) String() string {
	switch s {
	case Uncalibrated:
		return "uncalibrated"
	case Accumulating:
		return "accumulating"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// CalibrationStore learns the idle-environment spectrum by averaging a fixed
// number of passes and subtracts it from later spectra. The counter only
// advances while accumulating and never passes the target.
type CalibrationStore struct {
	target   int
	state    CalibrationState
	count    int
	baseline []float64
}

// NewCalibrationStore creates an uncalibrated store for n-bin spectra that
// averages target passes.
func NewCalibrationStore(n, target int) *CalibrationStore {
	return &CalibrationStore{
		target:   target,
		baseline: make([]float64, n),
	}
}

// Start discards any baseline and begins a new accumulation. It may be called
// in any state.
func (c *CalibrationStore) Start() {
	clear(c.baseline)
	c.count = 0
	c.state = Accumulating
}

// Accumulate adds s to the running sum while accumulating. On the pass that
// reaches the target the sum becomes the averaged baseline and the store is
// ready. Other states are left untouched.
func (c *CalibrationStore) Accumulate(s Spectrum) CalibrationState {
	if c.state != Accumulating {
		return c.state
	}
	floats.Add(c.baseline, s)
	c.count++
	if c.count == c.target {
		floats.Scale(1/float64(c.target), c.baseline)
		c.count = 0
		c.state = Ready
	}
	return c.state
}

// Apply subtracts the baseline from s in place once the store is ready and
// reports whether it did. Corrected bins may become negative.
func (c *CalibrationStore) Apply(s Spectrum) bool {
	if c.state != Ready {
		return false
	}
	floats.Sub(s, c.baseline)
	return true
}

// State returns the current lifecycle state.
func (c *CalibrationStore) State() CalibrationState { return c.state }

// Ready reports whether a baseline is available.
func (c *CalibrationStore) Ready() bool { return c.state == Ready }

// Count returns the passes accumulated so far: 0 before calibration starts
// and the target once ready.
func (c *CalibrationStore) Count() int {
	switch c.state {
	case Accumulating:
		return c.count
	case Ready:
		return c.target
	default:
		return 0
	}
}

// Baseline returns a copy of the averaged spectrum, or nil if not ready.
func (c *CalibrationStore) Baseline() Spectrum {
	if c.state != Ready {
		return nil
	}
	return append(Spectrum(nil), c.baseline...)
}
