// Package dsp holds the small stream filters used around the radar core: the
// audio monitor's band-limiting and rate conversion, the frequency readout
// smoother and the phase-rate frequency estimator.
package dsp

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/fir"
	"github.com/cwbudde/algo-dsp/dsp/window"
)

// DesignLowPass returns windowed-sinc low-pass taps (Hamming window) with unity
// DC gain. cutoff is normalised to the sample rate, 0 < cutoff < 0.5.
func DesignLowPass(numTaps int, cutoff float64) []float64 {
	taps := make([]float64, numTaps)
	if numTaps == 1 {
		taps[0] = 1
		return taps
	}
	hamming, _ := window.Hamming(numTaps) // only fails for numTaps <= 0

	m := float64(numTaps - 1)
	fc := 2 * cutoff // relative to Nyquist
	var sum float64
	for n := range taps {
		x := float64(n) - m/2
		if x == 0 {
			taps[n] = fc
		} else {
			taps[n] = math.Sin(math.Pi*fc*x) / (math.Pi * x)
		}
		taps[n] *= hamming[n]
		sum += taps[n]
	}
	for n := range taps {
		taps[n] /= sum
	}
	return taps
}

// FIRFilter is a block FIR filter that carries its delay line between calls,
// so a stream filtered in chunks matches the stream filtered at once.
type FIRFilter struct {
	f *fir.Filter
}

// NewFIRFilter creates a filter with a zeroed delay line.
func NewFIRFilter(taps []float64) *FIRFilter {
	return &FIRFilter{f: fir.New(taps)}
}

// Process filters input and returns one output per input sample.
func (f *FIRFilter) Process(input []float64) []float64 {
	out := make([]float64, len(input))
	if len(input) > 0 {
		f.f.ProcessBlockTo(out, input)
	}
	return out
}

// Reset zeroes the delay line.
func (f *FIRFilter) Reset() {
	f.f.Reset()
}
