package radar

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/window"
	"gonum.org/v1/gonum/floats"
)

// Window is a symmetric Hann window applied to both I/Q channels.
type Window struct {
	coefficients []float64
}

// NewWindow precomputes 0.5*(1-cos(2*pi*n/(size-1))) for n in [0, size).
func NewWindow(size int) (*Window, error) {
	if size < 2 {
		return nil, fmt.Errorf("%w: window of %d samples", ErrFFTSize, size)
	}
	coefficients, err := window.Hann(size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFFTSize, err)
	}
	return &Window{coefficients: coefficients}, nil
}

// Apply multiplies both channels by the window in place.
func (w *Window) Apply(iq *IQ) {
	floats.Mul(iq.I, w.coefficients)
	floats.Mul(iq.Q, w.coefficients)
}
