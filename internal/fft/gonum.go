package fft

import "gonum.org/v1/gonum/dsp/fourier"

// GonumFFT wraps gonum's complex FFT plan.
type GonumFFT struct {
	plan    *fourier.CmplxFFT
	scratch []complex128
}

// NewGonum creates a gonum-backed transformer of size n.
func NewGonum(n int) *GonumFFT {
	return &GonumFFT{
		plan:    fourier.NewCmplxFFT(n),
		scratch: make([]complex128, n),
	}
}

// Len returns the transform size.
func (g *GonumFFT) Len() int { return g.plan.Len() }

// Transform runs the forward or inverse transform of buf in place.
func (g *GonumFFT) Transform(buf []complex128, inverse bool) error {
	if err := checkLen(buf, g.plan.Len()); err != nil {
		return err
	}
	if inverse {
		// gonum's Sequence is unnormalised.
		g.plan.Sequence(g.scratch, buf)
		copy(buf, g.scratch)
		scale(buf)
		return nil
	}
	g.plan.Coefficients(g.scratch, buf)
	copy(buf, g.scratch)
	return nil
}
