package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"fmcw-doppler-radar/internal/radar"
)

// pcmOffset maps signed 16-bit PCM onto the unsigned range an ADC delivers.
const pcmOffset = 1 << 15

// WAVSource replays a stereo 16-bit WAV recording. Channel 0 is ADC channel
// A (the low half of each word), channel 1 is channel B.
type WAVSource struct {
	decoder *wav.Decoder
	buf     *audio.IntBuffer
	pending []int
}

// NewWAVSource checks the header of r and positions it at the PCM data.
func NewWAVSource(r io.ReadSeeker) (*WAVSource, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: not a WAV file", ErrFormat)
	}
	if err := d.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("acquire: seek to PCM data: %w", err)
	}
	if d.NumChans != 2 || d.BitDepth != 16 {
		return nil, fmt.Errorf("%w: %d channels at %d bits, want 2 at 16", ErrFormat, d.NumChans, d.BitDepth)
	}
	return &WAVSource{
		decoder: d,
		buf: &audio.IntBuffer{
			Format: d.Format(),
			Data:   make([]int, 4096),
		},
	}, nil
}

// SampleRate returns the rate stored in the WAV header.
func (s *WAVSource) SampleRate() int { return int(s.decoder.SampleRate) }

// Acquire fills buf with the next len(buf) stereo frames.
func (s *WAVSource) Acquire(ctx context.Context, buf radar.RawSampleBuffer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	need := 2 * len(buf)
	for len(s.pending) < need {
		n, err := s.decoder.PCMBuffer(s.buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("acquire: decode PCM: %w", err)
		}
		if n == 0 {
			return io.EOF
		}
		s.pending = append(s.pending, s.buf.Data[:n]...)
	}

	for i := range buf {
		a := uint16(s.pending[2*i] + pcmOffset)
		b := uint16(s.pending[2*i+1] + pcmOffset)
		buf[i] = radar.Pack(a, b)
	}
	s.pending = append(s.pending[:0], s.pending[need:]...)
	return nil
}

// WriteWAV records passes buffers of n words from src into a stereo 16-bit
// WAV at sampleRate. It stops early, without error, if src runs out.
func WriteWAV(ctx context.Context, w io.WriteSeeker, src Source, passes, n, sampleRate int) (int, error) {
	enc := wav.NewEncoder(w, sampleRate, 16, 2, 1)
	raw := make(radar.RawSampleBuffer, n)
	out := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: sampleRate},
		Data:           make([]int, 2*n),
		SourceBitDepth: 16,
	}

	written := 0
	for ; written < passes; written++ {
		err := src.Acquire(ctx, raw)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return written, err
		}
		for i, word := range raw {
			out.Data[2*i] = int(word&0xFFFF) - pcmOffset
			out.Data[2*i+1] = int(word>>16) - pcmOffset
		}
		if err := enc.Write(out); err != nil {
			return written, fmt.Errorf("acquire: encode WAV: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return written, fmt.Errorf("acquire: finalize WAV: %w", err)
	}
	return written, nil
}
