// Package runner drives the acquire, process and report loop.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"time"

	"fmcw-doppler-radar/internal/acquire"
	"fmcw-doppler-radar/internal/radar"
	"fmcw-doppler-radar/internal/report"
)

// statsEvery is the number of passes between [STATS] log lines.
const statsEvery = 100

// Feeder accepts each pass's DC-corrected baseband, e.g. the audio monitor.
type Feeder interface {
	Feed(baseband []complex128)
}

// Stats summarises a run.
type Stats struct {
	Passes     int
	Detections int
	Last       radar.Result
}

// Runner repeats one acquisition and one pipeline pass until the source is
// exhausted, MaxPasses is reached or the context is cancelled. A single raw
// buffer is reused across passes.
type Runner struct {
	Source   acquire.Source
	Pipeline *radar.Pipeline
	Reporter report.Reporter // optional
	Monitor  Feeder          // optional
	Logger   *log.Logger     // nil logs to log.Default()

	PassInterval time.Duration // pause after each pass
	MaxPasses    int           // 0 means unbounded
	CalibrateAt  int           // start calibration before this pass, 0 disables

	calibrate atomic.Bool
}

// Calibrate requests a calibration restart before the next pass. It is safe
// to call from any goroutine.
func (r *Runner) Calibrate() {
	r.calibrate.Store(true)
}

// Run executes the loop. Reaching the end of the source is not an error.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	buf := make(radar.RawSampleBuffer, r.Pipeline.Params().FFTSize)
	state := r.Pipeline.CalibrationState()

	for r.MaxPasses <= 0 || stats.Passes < r.MaxPasses {
		if r.calibrate.Swap(false) || (r.CalibrateAt > 0 && stats.Passes+1 == r.CalibrateAt) {
			r.Pipeline.StartCalibration()
			r.logf("[INFO] Calibrating over %d passes, keep the scene still", r.Pipeline.Params().CalibrationPasses)
		}

		if err := r.Source.Acquire(ctx, buf); err != nil {
			if errors.Is(err, io.EOF) {
				r.logf("[INFO] End of input after %d passes", stats.Passes)
				return stats, nil
			}
			return stats, fmt.Errorf("acquire pass %d: %w", stats.Passes+1, err)
		}

		res, err := r.Pipeline.Process(buf)
		if err != nil {
			return stats, fmt.Errorf("process pass %d: %w", stats.Passes+1, err)
		}
		stats.Passes++
		stats.Last = res
		if res.Motion {
			stats.Detections++
		}

		if res.Calibration != state {
			if res.Calibration == radar.Ready {
				r.logf("[INFO] Calibration ready after pass %d", res.Pass)
			}
			state = res.Calibration
		}

		if r.Reporter != nil {
			if err := r.Reporter.Report(res, r.Pipeline.Spectrum()); err != nil {
				return stats, fmt.Errorf("report pass %d: %w", res.Pass, err)
			}
		}
		if r.Monitor != nil {
			r.Monitor.Feed(r.Pipeline.Baseband())
		}

		if stats.Passes%statsEvery == 0 {
			r.logf("[STATS] %d passes, %d with motion, calibration %s", stats.Passes, stats.Detections, res.Calibration)
		}

		if r.PassInterval > 0 {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-time.After(r.PassInterval):
			}
		}
	}
	return stats, nil
}

func (r *Runner) logf(format string, args ...any) {
	l := r.Logger
	if l == nil {
		l = log.Default()
	}
	l.Printf(format, args...)
}
