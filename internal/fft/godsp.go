package fft

import "github.com/mjibson/go-dsp/fft"

// GoDSPFFT wraps github.com/mjibson/go-dsp/fft. The library allocates its
// output, so results are copied back into the caller's buffer.
type GoDSPFFT struct {
	n int
}

// NewGoDSP creates a go-dsp-backed transformer of size n.
func NewGoDSP(n int) *GoDSPFFT {
	return &GoDSPFFT{n: n}
}

// Len returns the transform size.
func (g *GoDSPFFT) Len() int { return g.n }

// Transform runs the forward or inverse transform of buf in place.
// go-dsp already scales its inverse by 1/N.
func (g *GoDSPFFT) Transform(buf []complex128, inverse bool) error {
	if err := checkLen(buf, g.n); err != nil {
		return err
	}
	var out []complex128
	if inverse {
		out = fft.IFFT(buf)
	} else {
		out = fft.FFT(buf)
	}
	copy(buf, out)
	return nil
}
