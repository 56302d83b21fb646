package radar

// Peak is the winning bin of a spectrum scan.
type Peak struct {
	Bin       int     // index in natural FFT order
	Offset    int     // signed bin offset, Bin-N for the upper half
	Magnitude float64 // spectrum value at Bin
	Frequency float64 // Offset times the bin resolution, Hz
}

// Velocity is one radial velocity estimate.
type Velocity struct {
	Peak     Peak
	Doppler  float64 // Doppler frequency, Hz
	Raw      float64 // velocity of this pass, m/s
	Smoothed float64 // mean of the velocity history, m/s
}

// PeakExtractor finds the dominant Doppler line of a spectrum and converts it
// to frequency and radial velocity.
type PeakExtractor struct {
	n          int
	guard      int
	threshold  float64
	resolution float64
	wavelength float64
	smoother   *VelocitySmoother
}

// NewPeakExtractor builds an extractor for p that records detections in
// smoother.
func NewPeakExtractor(p Params, smoother *VelocitySmoother) *PeakExtractor {
	return &PeakExtractor{
		n:          p.FFTSize,
		guard:      p.GuardBins,
		threshold:  p.DetectionThreshold,
		resolution: p.BinResolution(),
		wavelength: p.Wavelength(),
		smoother:   smoother,
	}
}

// FindPeak returns the first bin holding the strictly largest positive value
// outside the guard band [N/2-guard, N/2+guard]. With skipDC bin 0 is also
// excluded. If nothing exceeds zero the result is bin 0 with magnitude 0.
func (e *PeakExtractor) FindPeak(s Spectrum, skipDC bool) Peak {
	half := e.n / 2
	var best Peak
	for i, m := range s {
		if skipDC && i == 0 {
			continue
		}
		if i >= half-e.guard && i <= half+e.guard {
			continue
		}
		if m > best.Magnitude {
			best.Bin = i
			best.Magnitude = m
		}
	}
	best.Offset = e.offset(best.Bin)
	best.Frequency = float64(best.Offset) * e.resolution
	return best
}

// PeakFrequency returns the signed frequency of the strongest bin in Hz.
// It always yields a value; a flat zero spectrum maps to 0 Hz.
func (e *PeakExtractor) PeakFrequency(s Spectrum) float64 {
	return e.FindPeak(s, false).Frequency
}

// RadialVelocity converts the strongest non-DC bin to a radial velocity with
// v = f_d * lambda / 2. Peaks below the detection threshold report no motion
// and leave the history untouched. Detected velocities are pushed into the
// history and the smoothed mean is returned with true.
func (e *PeakExtractor) RadialVelocity(s Spectrum) (Velocity, bool) {
	peak := e.FindPeak(s, true)
	if peak.Magnitude < e.threshold {
		return Velocity{Peak: peak}, false
	}
	v := peak.Frequency * e.wavelength / 2
	e.smoother.Push(v)
	return Velocity{
		Peak:     peak,
		Doppler:  peak.Frequency,
		Raw:      v,
		Smoothed: e.smoother.Mean(),
	}, true
}

func (e *PeakExtractor) offset(bin int) int {
	if bin < e.n/2 {
		return bin
	}
	return bin - e.n
}
