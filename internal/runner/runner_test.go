package runner

import (
	"bytes"
	"context"
	"errors"
	"log"
	"math"
	"strings"
	"testing"
	"time"

	"fmcw-doppler-radar/internal/acquire"
	"fmcw-doppler-radar/internal/fft"
	"fmcw-doppler-radar/internal/radar"
)

type recorder struct {
	results []radar.Result
	onPass  func()
}

func (r *recorder) Report(res radar.Result, spectrum radar.Spectrum) error {
	r.results = append(r.results, res)
	if r.onPass != nil {
		r.onPass()
	}
	return nil
}

type feeder struct {
	blocks int
	size   int
}

func (f *feeder) Feed(baseband []complex128) {
	f.blocks++
	f.size = len(baseband)
}

// sceneSource serves an idle room for the first idle passes, then a target.
type sceneSource struct {
	idle   acquire.Source
	target acquire.Source
	passes int
	after  int
}

func (s *sceneSource) Acquire(ctx context.Context, buf radar.RawSampleBuffer) error {
	s.passes++
	if s.passes <= s.after {
		return s.idle.Acquire(ctx, buf)
	}
	return s.target.Acquire(ctx, buf)
}

func newPipeline(t *testing.T) *radar.Pipeline {
	t.Helper()
	p := radar.DefaultParams()
	pl, err := radar.New(p, fft.NewGonum(p.FFTSize))
	if err != nil {
		t.Fatalf("radar.New failed: %v", err)
	}
	return pl
}

func synth(targets []acquire.Target, passes int) *acquire.SynthSource {
	return acquire.NewSynthSource(acquire.SynthConfig{
		SampleRate: 5000,
		CarrierHz:  24e9,
		Targets:    targets,
		Noise:      2,
		Seed:       1,
		Passes:     passes,
	})
}

func TestRun_CalibrateThenDetect(t *testing.T) {
	src := &sceneSource{
		idle:   synth(nil, 0),
		target: synth([]acquire.Target{{Velocity: 2, Amplitude: 500}}, 0),
		after:  5,
	}
	rec := &recorder{}
	mon := &feeder{}
	var logs bytes.Buffer
	r := &Runner{
		Source:      src,
		Pipeline:    newPipeline(t),
		Reporter:    rec,
		Monitor:     mon,
		Logger:      log.New(&logs, "", 0),
		MaxPasses:   10,
		CalibrateAt: 1,
	}

	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Passes != 10 || len(rec.results) != 10 {
		t.Fatalf("Expected 10 passes, got %d (%d reported)", stats.Passes, len(rec.results))
	}
	if stats.Detections != 5 {
		t.Errorf("Expected 5 detections, got %d", stats.Detections)
	}

	for i, res := range rec.results[:4] {
		if res.VelocityValid {
			t.Errorf("pass %d: expected no velocity before calibration", i+1)
		}
		if res.Calibration != radar.Accumulating {
			t.Errorf("pass %d: expected accumulating, got %s", i+1, res.Calibration)
		}
	}
	if res := rec.results[4]; res.Calibration != radar.Ready || !res.VelocityValid || res.Motion {
		t.Errorf("pass 5: expected a ready, motionless scene, got %+v", res)
	}

	last := stats.Last
	if !last.Motion {
		t.Fatal("Expected motion on the last pass")
	}
	// 320 Hz falls between bins; the readout is quantised to one bin.
	if math.Abs(last.Velocity.Raw-2) > 0.13 {
		t.Errorf("Expected about 2 m/s, got %.3f", last.Velocity.Raw)
	}
	if math.Abs(last.Velocity.Smoothed-last.Velocity.Raw) > 1e-9 {
		t.Errorf("Expected a settled average, got %.3f vs %.3f", last.Velocity.Smoothed, last.Velocity.Raw)
	}

	if mon.blocks != 10 || mon.size != 256 {
		t.Errorf("Expected 10 monitor blocks of 256, got %d of %d", mon.blocks, mon.size)
	}
	if !strings.Contains(logs.String(), "[INFO] Calibration ready after pass 5") {
		t.Errorf("Expected a calibration log line, got %q", logs.String())
	}
}

func TestRun_StopsAtEndOfInput(t *testing.T) {
	r := &Runner{
		Source:   synth(nil, 3),
		Pipeline: newPipeline(t),
	}
	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected a clean stop, got %v", err)
	}
	if stats.Passes != 3 {
		t.Errorf("Expected 3 passes, got %d", stats.Passes)
	}
	if stats.Last.Calibration != radar.Uncalibrated {
		t.Errorf("Expected no calibration, got %s", stats.Last.Calibration)
	}
}

func TestRun_CalibrateRequest(t *testing.T) {
	r := &Runner{
		Source:    synth(nil, 0),
		Pipeline:  newPipeline(t),
		MaxPasses: 2,
	}
	r.Calibrate()
	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Last.Calibration != radar.Accumulating {
		t.Errorf("Expected accumulating, got %s", stats.Last.Calibration)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{onPass: cancel}
	r := &Runner{
		Source:       synth(nil, 0),
		Pipeline:     newPipeline(t),
		Reporter:     rec,
		PassInterval: time.Hour,
	}

	done := make(chan error, 1)
	go func() {
		_, err := r.Run(ctx)
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
	if len(rec.results) != 1 {
		t.Errorf("Expected one pass, got %d", len(rec.results))
	}
}
