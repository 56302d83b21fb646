package dsp

import (
	"math"
	"math/cmplx"
)

// Discriminator estimates frequency from the phase advance between
// successive complex baseband samples.
type Discriminator struct {
	sampleRate float64
}

// NewDiscriminator creates a discriminator for samples taken at sampleRate Hz.
func NewDiscriminator(sampleRate float64) *Discriminator {
	return &Discriminator{sampleRate: sampleRate}
}

// PhaseSteps writes arg(x[n] * conj(x[n-1])) for n >= 1 into dst and returns
// it. Steps are wrapped to (-pi, pi].
func (d *Discriminator) PhaseSteps(samples []complex128, dst []float64) []float64 {
	if len(samples) < 2 {
		return dst[:0]
	}
	n := len(samples) - 1
	if cap(dst) < n {
		dst = make([]float64, n)
	}
	dst = dst[:n]
	for i := 1; i < len(samples); i++ {
		dst[i-1] = cmplx.Phase(samples[i] * cmplx.Conj(samples[i-1]))
	}
	return dst
}

// Frequency returns the mean frequency of the block in Hz, taken as the
// phase of the summed lag-one products. Positive values mean the phasor
// rotates counter-clockwise. Fewer than two samples yield 0.
func (d *Discriminator) Frequency(samples []complex128) float64 {
	var acc complex128
	for i := 1; i < len(samples); i++ {
		acc += samples[i] * cmplx.Conj(samples[i-1])
	}
	if acc == 0 {
		return 0
	}
	return cmplx.Phase(acc) * d.sampleRate / (2 * math.Pi)
}
