// Package monitor turns the Doppler channel into audio, the way handheld
// radar guns let the operator hear a target's speed.
package monitor

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync/atomic"

	"fmcw-doppler-radar/internal/dsp"
	"fmcw-doppler-radar/internal/ringbuffer"
)

// Config describes the audio path.
type Config struct {
	InputRate  float64 // radar sample rate, Hz
	OutputRate int     // audio sample rate, Hz
	CutoffHz   float64 // low-pass corner applied before resampling
	Taps       int     // low-pass filter length
	Gain       float64 // ADC counts to int16 scale
	BufferSize int     // audio samples held between radar passes
}

// Monitor filters and resamples the Q channel of each pass into 16-bit mono
// audio. Feeding never blocks the radar loop: when the player falls behind
// the oldest audio is dropped. Monitor is an io.Reader of little-endian
// int16 samples.
type Monitor struct {
	filter    *dsp.FIRFilter
	resampler *dsp.Resampler
	gain      float64
	rb        *ringbuffer.RingBuffer[int16]
	clipped   atomic.Int64
}

// New creates a monitor for cfg.
func New(cfg Config) (*Monitor, error) {
	resampler, err := dsp.NewResampler(cfg.InputRate, float64(cfg.OutputRate))
	if err != nil {
		return nil, fmt.Errorf("monitor: %w", err)
	}
	taps := dsp.DesignLowPass(cfg.Taps, cfg.CutoffHz/cfg.InputRate)
	return &Monitor{
		filter:    dsp.NewFIRFilter(taps),
		resampler: resampler,
		gain:      cfg.Gain,
		rb:        ringbuffer.New[int16](cfg.BufferSize),
	}, nil
}

// Feed queues the real (Q) part of a DC-corrected baseband block.
func (m *Monitor) Feed(baseband []complex128) {
	q := make([]float64, len(baseband))
	for i, z := range baseband {
		q[i] = real(z)
	}
	m.FeedSamples(q)
}

// FeedSamples queues radar-rate samples in ADC counts.
func (m *Monitor) FeedSamples(samples []float64) {
	audio := m.resampler.Process(m.filter.Process(samples))
	if len(audio) == 0 {
		return
	}
	out := make([]int16, len(audio))
	for i, v := range audio {
		s := v * m.gain
		// Handle clipping
		if s > 32767 {
			m.clipped.Add(1)
			s = 32767
		} else if s < -32768 {
			m.clipped.Add(1)
			s = -32768
		}
		out[i] = int16(s)
	}
	m.rb.Write(out)
}

// Read blocks until at least one sample is queued and returns as many as
// fit in p. It returns io.EOF once the monitor is closed and drained.
func (m *Monitor) Read(p []byte) (int, error) {
	n := len(p) / 2
	if n == 0 {
		return 0, nil
	}
	samples := m.rb.Read(1)
	if samples == nil {
		return 0, io.EOF
	}
	samples = append(samples, m.rb.TryRead(n-1)...)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(p[2*i:], uint16(s))
	}
	return 2 * len(samples), nil
}

// Close ends the audio stream.
func (m *Monitor) Close() {
	m.rb.Close()
}

// Clipped returns the number of audio samples limited to the int16 range.
func (m *Monitor) Clipped() int64 { return m.clipped.Load() }

// Dropped returns the number of audio samples discarded because the player
// fell behind.
func (m *Monitor) Dropped() int64 { return m.rb.Dropped() }

// Buffered returns the number of queued audio samples.
func (m *Monitor) Buffered() int { return m.rb.Len() }
