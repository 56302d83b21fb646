// Package fft hides the FFT library behind a small in-place interface so the
// radar pipeline does not depend on any backend's bit-reversal or scaling
// conventions.
package fft

import (
	"errors"
	"fmt"
)

// Backend names accepted by New.
const (
	Gonum   = "gonum"
	GoDSP   = "godsp"
	AlgoFFT = "algofft"
)

var (
	// ErrUnknownBackend is returned by New for an unrecognised backend name.
	ErrUnknownBackend = errors.New("fft: unknown backend")
	// ErrSize is returned when a plan cannot be built for the requested size.
	ErrSize = errors.New("fft: invalid transform size")
	// ErrLength is returned when a buffer does not match the plan size.
	ErrLength = errors.New("fft: buffer length does not match transform size")
)

// Transformer computes a fixed-size complex FFT in place.
//
// Forward output is in natural bin order (bin 0 is DC, bin k >= N/2 is the
// negative frequency k-N). Inverse output is scaled by 1/N so that a forward
// transform followed by an inverse one returns the original sequence.
type Transformer interface {
	Len() int
	Transform(buf []complex128, inverse bool) error
}

// Backends lists the available backend names, default first.
func Backends() []string {
	return []string{Gonum, GoDSP, AlgoFFT}
}

// New returns a Transformer of size n using the named backend. An empty name
// selects the gonum backend.
func New(name string, n int) (Transformer, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrSize, n)
	}
	switch name {
	case "", Gonum:
		return NewGonum(n), nil
	case GoDSP:
		return NewGoDSP(n), nil
	case AlgoFFT:
		return NewAlgoPlan(n)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

func checkLen(buf []complex128, n int) error {
	if len(buf) != n {
		return fmt.Errorf("%w: got %d, want %d", ErrLength, len(buf), n)
	}
	return nil
}

func scale(buf []complex128) {
	s := complex(1/float64(len(buf)), 0)
	for i := range buf {
		buf[i] *= s
	}
}
