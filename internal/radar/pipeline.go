package radar

import (
	"fmt"
	"sync"

	"fmcw-doppler-radar/internal/dsp"
	"fmcw-doppler-radar/internal/fft"
)

// Result is the scalar output of one processing pass.
type Result struct {
	Pass              int
	Frequency         float64 // dominant signed frequency, Hz
	SmoothedFrequency float64 // Frequency after the one-pole readout filter, Hz
	PhaseFrequency    float64 // phase-rate estimate of the baseband, Hz
	Velocity          Velocity
	VelocityValid     bool // velocity was evaluated this pass
	Motion            bool // peak crossed the detection threshold
	Calibration       CalibrationState
}

// Pipeline owns every buffer of the processing chain. A pass runs to
// completion under a mutex, so calibration may be triggered from another
// goroutine.
type Pipeline struct {
	mu sync.Mutex

	params      Params
	iq          *IQ
	baseband    []complex128
	window      *Window
	transform   *SpectralTransform
	spectrum    Spectrum
	calibration *CalibrationStore
	smoother    *VelocitySmoother
	peaks       *PeakExtractor
	readout     *dsp.OnePole
	phase       *dsp.Discriminator
	pass        int
}

// New validates p and builds a pipeline around tr, whose length must equal
// p.FFTSize.
func New(p Params, tr fft.Transformer) (*Pipeline, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if tr.Len() != p.FFTSize {
		return nil, fmt.Errorf("%w: transformer size %d, FFT size %d", ErrFFTSize, tr.Len(), p.FFTSize)
	}
	window, err := NewWindow(p.FFTSize)
	if err != nil {
		return nil, err
	}

	smoother := NewVelocitySmoother(p.SmoothingWindow)
	return &Pipeline{
		params:      p,
		iq:          NewIQ(p.FFTSize),
		baseband:    make([]complex128, p.FFTSize),
		window:      window,
		transform:   NewSpectralTransform(tr),
		spectrum:    make(Spectrum, p.FFTSize),
		calibration: NewCalibrationStore(p.FFTSize, p.CalibrationPasses),
		smoother:    smoother,
		peaks:       NewPeakExtractor(p, smoother),
		readout:     dsp.NewOnePoleAlpha(p.FrequencyAlpha),
		phase:       dsp.NewDiscriminator(p.SampleRate),
	}, nil
}

// Process runs one acquisition through the chain. The frequency readout uses
// the raw spectrum; velocity uses the calibrated one and is only evaluated
// once the baseline is ready, unless RequireCalibration is off.
//
// raw is only read and may be reused for the next acquisition once Process
// returns.
func (p *Pipeline) Process(raw RawSampleBuffer) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(raw) != p.params.FFTSize {
		return Result{}, fmt.Errorf("%w: got %d words, want %d", ErrBufferSize, len(raw), p.params.FFTSize)
	}

	Demux(raw, p.iq)
	p.baseband = Baseband(p.iq, p.baseband)
	phaseFrequency := p.phase.Frequency(p.baseband)

	p.window.Apply(p.iq)
	if err := p.transform.Compute(p.iq, p.spectrum); err != nil {
		return Result{}, err
	}
	p.pass++

	res := Result{
		Pass:           p.pass,
		PhaseFrequency: phaseFrequency,
		Calibration:    p.calibration.Accumulate(p.spectrum),
	}
	res.Frequency = p.peaks.PeakFrequency(p.spectrum)
	res.SmoothedFrequency = p.readout.Filter(res.Frequency)

	if p.calibration.Apply(p.spectrum) || !p.params.RequireCalibration {
		res.Velocity, res.Motion = p.peaks.RadialVelocity(p.spectrum)
		res.VelocityValid = true
	}
	return res, nil
}

// StartCalibration restarts background learning; the next
// CalibrationPasses spectra are averaged into the baseline.
func (p *Pipeline) StartCalibration() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calibration.Start()
}

// CalibrationState reports the baseline lifecycle.
func (p *Pipeline) CalibrationState() CalibrationState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calibration.State()
}

// Baseline returns a copy of the calibration baseline, nil until ready.
func (p *Pipeline) Baseline() Spectrum {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calibration.Baseline()
}

// Spectrum returns a copy of the last magnitude spectrum, calibrated if the
// baseline was applied.
func (p *Pipeline) Spectrum() Spectrum {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.spectrum.Clone()
}

// IQ returns a copy of the last windowed I/Q channels.
func (p *Pipeline) IQ() *IQ {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.iq.Clone()
}

// Baseband returns a copy of the last DC-corrected complex samples, taken
// before windowing.
func (p *Pipeline) Baseband() []complex128 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]complex128(nil), p.baseband...)
}

// VelocityHistory returns the smoother's slots.
func (p *Pipeline) VelocityHistory() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.smoother.Values()
}

// Params returns the constants the pipeline was built with.
func (p *Pipeline) Params() Params { return p.params }
