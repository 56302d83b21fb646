package radar

import (
	"errors"
	"math"
	"sync"
	"testing"

	"fmcw-doppler-radar/internal/fft"
)

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		want   error
	}{
		{"defaults", func(*Params) {}, nil},
		{"not power of two", func(p *Params) { p.FFTSize = 200 }, ErrFFTSize},
		{"too small", func(p *Params) { p.FFTSize = 1 }, ErrFFTSize},
		{"sample rate", func(p *Params) { p.SampleRate = 0 }, ErrSampleRate},
		{"carrier", func(p *Params) { p.CarrierHz = -1 }, ErrCarrier},
		{"guard too wide", func(p *Params) { p.GuardBins = 128 }, ErrGuardBand},
		{"negative guard", func(p *Params) { p.GuardBins = -1 }, ErrGuardBand},
		{"window", func(p *Params) { p.SmoothingWindow = 0 }, ErrWindow},
		{"calibration", func(p *Params) { p.CalibrationPasses = 0 }, ErrCalibrationPasses},
	}
	for _, tt := range tests {
		p := DefaultParams()
		tt.mutate(&p)
		err := p.Validate()
		if tt.want == nil && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestParams_Derived(t *testing.T) {
	p := DefaultParams()
	if !almostEqual(p.Wavelength(), 0.0125, 1e-15) {
		t.Errorf("wavelength = %g, want 0.0125", p.Wavelength())
	}
	if !almostEqual(p.BinResolution(), 5000.0/256, 1e-12) {
		t.Errorf("resolution = %g", p.BinResolution())
	}
}

func TestNew_TransformerSizeMismatch(t *testing.T) {
	_, err := New(DefaultParams(), fft.NewGonum(128))
	if !errors.Is(err, ErrFFTSize) {
		t.Fatalf("expected ErrFFTSize, got %v", err)
	}
}

func TestProcess_BufferSize(t *testing.T) {
	pl := newTestPipeline(t, nil)
	if _, err := pl.Process(make(RawSampleBuffer, 100)); !errors.Is(err, ErrBufferSize) {
		t.Fatalf("expected ErrBufferSize, got %v", err)
	}
}

func TestProcess_VelocityWaitsForCalibration(t *testing.T) {
	pl := newTestPipeline(t, nil)
	raw := synthWords(testN, tone{bins: 20, amplitude: 1000})

	res, err := pl.Process(raw)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if res.VelocityValid || res.Motion {
		t.Errorf("velocity evaluated before calibration: %+v", res)
	}
	if res.Calibration != Uncalibrated {
		t.Errorf("calibration = %s, want uncalibrated", res.Calibration)
	}
	want := 20 * testFs / testN
	if !almostEqual(res.Frequency, want, 1e-9) {
		t.Errorf("Frequency = %f, want %f", res.Frequency, want)
	}
	if !almostEqual(res.PhaseFrequency, want, 1) {
		t.Errorf("PhaseFrequency = %f, want about %f", res.PhaseFrequency, want)
	}
	if res.Pass != 1 {
		t.Errorf("Pass = %d, want 1", res.Pass)
	}
}

func TestProcess_CalibrationSuppressesClutter(t *testing.T) {
	pl := newTestPipeline(t, nil)
	clutter := tone{bins: -60, amplitude: 1500}
	target := tone{bins: 20, amplitude: 400}

	idle := synthWords(testN, clutter)
	pl.StartCalibration()
	for pass := 1; pass <= 5; pass++ {
		res, err := pl.Process(idle)
		if err != nil {
			t.Fatalf("pass %d: %v", pass, err)
		}
		wantState := Accumulating
		if pass == 5 {
			wantState = Ready
		}
		if res.Calibration != wantState {
			t.Fatalf("pass %d: state %s, want %s", pass, res.Calibration, wantState)
		}
		if pass == 5 && res.Motion {
			t.Errorf("idle scene reported motion after calibration: %+v", res.Velocity)
		}
	}
	if pl.CalibrationState() != Ready {
		t.Fatalf("state = %s, want ready", pl.CalibrationState())
	}
	if len(pl.Baseline()) != testN {
		t.Fatalf("baseline has %d bins", len(pl.Baseline()))
	}

	res, err := pl.Process(synthWords(testN, clutter, target))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	// The uncorrected readout still sees the stronger clutter line.
	if !almostEqual(res.Frequency, -60*testFs/testN, 1e-9) {
		t.Errorf("Frequency = %f, want clutter at %f", res.Frequency, -60*testFs/testN)
	}
	if !res.VelocityValid || !res.Motion {
		t.Fatalf("expected a detection, got %+v", res)
	}
	if res.Velocity.Peak.Bin != 20 {
		t.Fatalf("velocity peak at bin %d, want 20", res.Velocity.Peak.Bin)
	}

	want := 20 * testFs / testN * 0.0125 / 2
	if !almostEqual(res.Velocity.Raw, want, 1e-12) {
		t.Errorf("raw velocity = %f, want %f", res.Velocity.Raw, want)
	}
	if !almostEqual(res.Velocity.Smoothed, want/5, 1e-12) {
		t.Errorf("smoothed velocity = %f, want %f", res.Velocity.Smoothed, want/5)
	}

	hist := pl.VelocityHistory()
	if len(hist) != 5 || !almostEqual(hist[0], want, 1e-12) {
		t.Errorf("history = %v", hist)
	}
}

func TestProcess_WithoutCalibrationRequirement(t *testing.T) {
	pl := newTestPipeline(t, func(p *Params) { p.RequireCalibration = false })

	res, err := pl.Process(synthWords(testN, tone{bins: -32, amplitude: 800}))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !res.VelocityValid || !res.Motion {
		t.Fatalf("expected a detection, got %+v", res)
	}
	if res.Velocity.Raw >= 0 {
		t.Errorf("receding target should have negative velocity, got %f", res.Velocity.Raw)
	}

	quiet, err := pl.Process(synthWords(testN))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if quiet.Motion || quiet.Velocity.Smoothed != 0 {
		t.Errorf("silence should report no motion, got %+v", quiet)
	}
}

func TestProcess_FrequencySmoothing(t *testing.T) {
	pl := newTestPipeline(t, func(p *Params) { p.FrequencyAlpha = 0.5 })

	first, _ := pl.Process(synthWords(testN, tone{bins: 10, amplitude: 500}))
	second, _ := pl.Process(synthWords(testN, tone{bins: 30, amplitude: 500}))

	if !almostEqual(first.SmoothedFrequency, first.Frequency, 1e-9) {
		t.Errorf("first readout %f should equal %f", first.SmoothedFrequency, first.Frequency)
	}
	want := first.Frequency + 0.5*(second.Frequency-first.Frequency)
	if !almostEqual(second.SmoothedFrequency, want, 1e-9) {
		t.Errorf("smoothed = %f, want %f", second.SmoothedFrequency, want)
	}
}

func TestPipeline_Snapshots(t *testing.T) {
	pl := newTestPipeline(t, nil)
	if _, err := pl.Process(synthWords(testN, tone{bins: 8, amplitude: 300})); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	mag := pl.Spectrum()
	mag[8] = -1
	if pl.Spectrum()[8] == -1 {
		t.Error("Spectrum must return a copy")
	}

	bb := pl.Baseband()
	if len(bb) != testN {
		t.Fatalf("baseband has %d samples", len(bb))
	}
	// Before windowing the tone keeps its full amplitude.
	if math.Abs(real(bb[0])-300) > 1 {
		t.Errorf("baseband[0] = %v, want about 300", bb[0])
	}
	if iq := pl.IQ(); iq.Q[0] != 0 {
		t.Errorf("windowed Q[0] = %f, want 0", iq.Q[0])
	}
	if pl.Params().FFTSize != testN {
		t.Errorf("Params().FFTSize = %d", pl.Params().FFTSize)
	}
}

func TestPipeline_ConcurrentCalibration(t *testing.T) {
	pl := newTestPipeline(t, nil)
	raw := synthWords(testN, tone{bins: 12, amplitude: 600})

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if _, err := pl.Process(raw); err != nil {
				t.Errorf("Process failed: %v", err)
				return
			}
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			pl.StartCalibration()
			_ = pl.CalibrationState()
		}
	}()

	wg.Wait()

	// Enough passes have run since the last restart to finish.
	for i := 0; i < 5; i++ {
		if _, err := pl.Process(raw); err != nil {
			t.Fatalf("Process failed: %v", err)
		}
	}
	if pl.CalibrationState() != Ready {
		t.Errorf("state = %s, want ready", pl.CalibrationState())
	}
}
