package dsp

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/resample"
)

// Resampler converts a stream between two sample rates with a polyphase
// anti-aliasing filter. Filter history and phase carry across calls.
type Resampler struct {
	r *resample.Resampler
}

// NewResampler creates a resampler from inRate to outRate, both in Hz. The
// rate ratio is approximated by a reduced fraction.
func NewResampler(inRate, outRate float64) (*Resampler, error) {
	r, err := resample.NewForRates(inRate, outRate)
	if err != nil {
		return nil, fmt.Errorf("dsp: resampler %g Hz to %g Hz: %w", inRate, outRate, err)
	}
	return &Resampler{r: r}, nil
}

// Process consumes input and returns the output samples it completes.
func (r *Resampler) Process(input []float64) []float64 {
	return r.r.Process(input)
}

// Reset drops the filter history.
func (r *Resampler) Reset() {
	r.r.Reset()
}
