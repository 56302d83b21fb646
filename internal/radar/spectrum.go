package radar

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/spectrum"

	"fmcw-doppler-radar/internal/fft"
)

// Spectrum is a magnitude spectrum in natural FFT bin order.
type Spectrum []float64

// Clone returns a copy of s.
func (s Spectrum) Clone() Spectrum {
	return append(Spectrum(nil), s...)
}

// SpectralTransform turns windowed I/Q samples into a magnitude spectrum.
type SpectralTransform struct {
	fft    fft.Transformer
	buf    []complex128
	re, im []float64
}

// NewSpectralTransform wraps a transformer. The transform size fixes the
// number of samples accepted by Compute.
func NewSpectralTransform(tr fft.Transformer) *SpectralTransform {
	return &SpectralTransform{
		fft: tr,
		buf: make([]complex128, tr.Len()),
		re:  make([]float64, tr.Len()),
		im:  make([]float64, tr.Len()),
	}
}

// Compute packs iq as Q + jI, runs the forward FFT and writes |X[k]| to out.
func (t *SpectralTransform) Compute(iq *IQ, out Spectrum) error {
	if iq.Len() != len(t.buf) || len(out) != len(t.buf) {
		return fmt.Errorf("%w: transform of %d bins got %d samples into %d bins",
			ErrBufferSize, len(t.buf), iq.Len(), len(out))
	}
	Baseband(iq, t.buf)
	if err := t.fft.Transform(t.buf, false); err != nil {
		return fmt.Errorf("radar: spectral transform: %w", err)
	}
	for k, x := range t.buf {
		t.re[k] = real(x)
		t.im[k] = imag(x)
	}
	spectrum.MagnitudeFromParts(out, t.re, t.im)
	return nil
}
