// Package acquire delivers raw dual-channel ADC buffers to the radar
// pipeline from recordings or a synthetic target generator.
package acquire

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"fmcw-doppler-radar/internal/radar"
)

// ErrFormat is returned when a recording cannot be interpreted as dual
// 16-bit channels.
var ErrFormat = errors.New("acquire: unsupported recording format")

// Source fills one raw buffer per call. It returns io.EOF once no complete
// buffer is left. The caller owns buf between calls, so a source never
// writes into it outside Acquire.
type Source interface {
	Acquire(ctx context.Context, buf radar.RawSampleBuffer) error
}

// RawSource reads little-endian 32-bit words, the layout the dual ADC DMA
// writes to memory.
type RawSource struct {
	r       io.Reader
	scratch []byte
}

// NewRawSource wraps r.
func NewRawSource(r io.Reader) *RawSource {
	return &RawSource{r: r}
}

// Acquire reads len(buf) words. A trailing partial buffer is discarded and
// reported as io.EOF.
func (s *RawSource) Acquire(ctx context.Context, buf radar.RawSampleBuffer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	size := 4 * len(buf)
	if cap(s.scratch) < size {
		s.scratch = make([]byte, size)
	}
	chunk := s.scratch[:size]
	if _, err := io.ReadFull(s.r, chunk); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return io.EOF
		}
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return fmt.Errorf("acquire: raw read: %w", err)
	}
	for i := range buf {
		buf[i] = binary.LittleEndian.Uint32(chunk[4*i:])
	}
	return nil
}

// WriteRaw encodes buf as little-endian words, the inverse of RawSource.
func WriteRaw(w io.Writer, buf radar.RawSampleBuffer) error {
	return binary.Write(w, binary.LittleEndian, []uint32(buf))
}
