package acquire

import (
	"context"
	"io"
	"math"
	"math/rand"

	"fmcw-doppler-radar/internal/radar"
)

// ADC range of the 12-bit converters on the board.
const (
	ADCMax      = 4095
	ADCMidScale = 2048
)

// Target is a reflector moving at a constant radial velocity. Positive
// velocities approach the radar.
type Target struct {
	Velocity  float64 // m/s
	Amplitude float64 // ADC counts
}

// SynthConfig describes a synthetic scene.
type SynthConfig struct {
	SampleRate float64
	CarrierHz  float64
	Targets    []Target
	Noise      float64 // standard deviation in ADC counts
	Seed       int64
	Passes     int // buffers to deliver; 0 means unbounded
}

// SynthSource generates the baseband a Doppler front end would see: each
// target contributes cos on channel A (Q) and sin on channel B (I) at its
// Doppler frequency 2v/lambda, around the ADC mid-scale. Phase is continuous
// across buffers.
type SynthSource struct {
	cfg        SynthConfig
	wavelength float64
	rng        *rand.Rand
	sample     int64
	delivered  int
}

// NewSynthSource creates a deterministic generator for cfg.
func NewSynthSource(cfg SynthConfig) *SynthSource {
	return &SynthSource{
		cfg:        cfg,
		wavelength: radar.SpeedOfLight / cfg.CarrierHz,
		rng:        rand.New(rand.NewSource(cfg.Seed)),
	}
}

// DopplerFrequency returns the Doppler shift of a target moving at v m/s.
func (s *SynthSource) DopplerFrequency(v float64) float64 {
	return 2 * v / s.wavelength
}

// Acquire fills buf with the next block of the scene.
func (s *SynthSource) Acquire(ctx context.Context, buf radar.RawSampleBuffer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.cfg.Passes > 0 && s.delivered >= s.cfg.Passes {
		return io.EOF
	}
	for n := range buf {
		t := float64(s.sample) / s.cfg.SampleRate
		q, in := float64(ADCMidScale), float64(ADCMidScale)
		for _, tg := range s.cfg.Targets {
			phase := 2 * math.Pi * s.DopplerFrequency(tg.Velocity) * t
			q += tg.Amplitude * math.Cos(phase)
			in += tg.Amplitude * math.Sin(phase)
		}
		if s.cfg.Noise > 0 {
			q += s.rng.NormFloat64() * s.cfg.Noise
			in += s.rng.NormFloat64() * s.cfg.Noise
		}
		buf[n] = radar.Pack(adc(q), adc(in))
		s.sample++
	}
	s.delivered++
	return nil
}

func adc(v float64) uint16 {
	return uint16(math.Max(0, math.Min(ADCMax, math.Round(v))))
}
