// Package radar implements the Doppler processing chain of the FMCW
// demonstrator: I/Q demultiplexing, windowing, spectral analysis, background
// calibration and peak/velocity extraction.
package radar

import (
	"errors"
	"fmt"
)

// SpeedOfLight in m/s, rounded.
const SpeedOfLight = 3e8

var (
	ErrFFTSize           = errors.New("radar: FFT size must be a power of two >= 2")
	ErrSampleRate        = errors.New("radar: sample rate must be positive")
	ErrCarrier           = errors.New("radar: carrier frequency must be positive")
	ErrGuardBand         = errors.New("radar: guard band does not fit the spectrum")
	ErrWindow            = errors.New("radar: smoothing window must be at least 1")
	ErrCalibrationPasses = errors.New("radar: calibration needs at least one pass")
	ErrBufferSize        = errors.New("radar: raw buffer length does not match FFT size")
)

// Params holds the fixed processing constants of a pipeline.
type Params struct {
	FFTSize            int     // samples per acquisition and FFT length
	SampleRate         float64 // Hz
	CarrierHz          float64 // radar carrier frequency in Hz
	GuardBins          int     // half-width of the excluded band around bin N/2
	DetectionThreshold float64 // minimum peak magnitude reported as motion
	CalibrationPasses  int     // spectra averaged into the baseline
	SmoothingWindow    int     // velocity history length
	RequireCalibration bool    // only report velocity once the baseline is ready

	// FrequencyAlpha is the one-pole coefficient applied to the peak
	// frequency readout. 1 disables smoothing.
	FrequencyAlpha float64
}

// DefaultParams returns the constants of the 24 GHz demonstrator board.
func DefaultParams() Params {
	return Params{
		FFTSize:            256,
		SampleRate:         5000,
		CarrierHz:          24e9,
		GuardBins:          2,
		DetectionThreshold: 2000,
		CalibrationPasses:  5,
		SmoothingWindow:    5,
		RequireCalibration: true,
		FrequencyAlpha:     1,
	}
}

// Wavelength returns the carrier wavelength in metres.
func (p Params) Wavelength() float64 {
	return SpeedOfLight / p.CarrierHz
}

// BinResolution returns the spacing between FFT bins in Hz.
func (p Params) BinResolution() float64 {
	return p.SampleRate / float64(p.FFTSize)
}

// Validate checks that the constants describe a usable pipeline.
func (p Params) Validate() error {
	if p.FFTSize < 2 || p.FFTSize&(p.FFTSize-1) != 0 {
		return fmt.Errorf("%w: %d", ErrFFTSize, p.FFTSize)
	}
	if p.SampleRate <= 0 {
		return fmt.Errorf("%w: %g", ErrSampleRate, p.SampleRate)
	}
	if p.CarrierHz <= 0 {
		return fmt.Errorf("%w: %g", ErrCarrier, p.CarrierHz)
	}
	if p.GuardBins < 0 || p.GuardBins >= p.FFTSize/2 {
		return fmt.Errorf("%w: %d bins for N=%d", ErrGuardBand, p.GuardBins, p.FFTSize)
	}
	if p.SmoothingWindow < 1 {
		return fmt.Errorf("%w: %d", ErrWindow, p.SmoothingWindow)
	}
	if p.CalibrationPasses < 1 {
		return fmt.Errorf("%w: %d", ErrCalibrationPasses, p.CalibrationPasses)
	}
	return nil
}
