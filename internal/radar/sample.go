package radar

import "gonum.org/v1/gonum/floats"

// RawSampleBuffer is one acquisition of dual ADC words. Channel A sits in the
// low 16 bits of each word, channel B in the high 16 bits.
type RawSampleBuffer []uint32

// Pack builds a raw word from two channel readings.
func Pack(a, b uint16) uint32 {
	return uint32(b)<<16 | uint32(a)
}

// IQ holds the demultiplexed in-phase and quadrature channels of one pass.
type IQ struct {
	I []float64
	Q []float64
}

// NewIQ allocates both channels with n samples.
func NewIQ(n int) *IQ {
	return &IQ{
		I: make([]float64, n),
		Q: make([]float64, n),
	}
}

// Len returns the number of samples per channel.
func (iq *IQ) Len() int { return len(iq.I) }

// Clone returns a deep copy.
func (iq *IQ) Clone() *IQ {
	return &IQ{
		I: append([]float64(nil), iq.I...),
		Q: append([]float64(nil), iq.Q...),
	}
}

// Demux splits raw into iq and removes the mean of each channel. Channel A
// becomes Q, channel B becomes I. raw and iq must have the same length.
func Demux(raw RawSampleBuffer, iq *IQ) {
	var sumQ, sumI float64
	for n, w := range raw {
		iq.Q[n] = float64(w & 0xFFFF)
		iq.I[n] = float64((w >> 16) & 0xFFFF)
		sumQ += iq.Q[n]
		sumI += iq.I[n]
	}

	// The mean needs the whole block, so the offset is removed in a second pass.
	count := float64(len(raw))
	floats.AddConst(-sumQ/count, iq.Q)
	floats.AddConst(-sumI/count, iq.I)
}

// Baseband writes complex(Q[n], I[n]) into dst, the sample layout the FFT
// expects. Real part Q and imaginary part I fix the sign of the Doppler
// direction.
func Baseband(iq *IQ, dst []complex128) []complex128 {
	if cap(dst) < iq.Len() {
		dst = make([]complex128, iq.Len())
	}
	dst = dst[:iq.Len()]
	for n := range dst {
		dst[n] = complex(iq.Q[n], iq.I[n])
	}
	return dst
}

