package dsp

import (
	"math"
	"testing"
)

// generateTone creates a complex signal with a constant phase rotation.
func generateTone(numSamples int, phaseIncrement float64) []complex128 {
	samples := make([]complex128, numSamples)
	for i := range samples {
		phase := float64(i+1) * phaseIncrement
		samples[i] = complex(math.Cos(phase), math.Sin(phase))
	}
	return samples
}

func TestDiscriminator_ConstantFrequency(t *testing.T) {
	const sampleRate = 5000.0
	const phaseIncrement = math.Pi / 16

	d := NewDiscriminator(sampleRate)
	samples := generateTone(128, phaseIncrement)

	steps := d.PhaseSteps(samples, nil)
	if len(steps) != len(samples)-1 {
		t.Fatalf("Expected %d phase steps, got %d", len(samples)-1, len(steps))
	}
	for i, s := range steps {
		if !almostEqual(s, phaseIncrement, 1e-9) {
			t.Errorf("Step %d: expected %f, got %f", i, phaseIncrement, s)
		}
	}

	want := phaseIncrement * sampleRate / (2 * math.Pi)
	if got := d.Frequency(samples); !almostEqual(got, want, 1e-6) {
		t.Errorf("Frequency = %f Hz, want %f Hz", got, want)
	}
}

func TestDiscriminator_NegativeFrequency(t *testing.T) {
	d := NewDiscriminator(1000)
	samples := generateTone(64, -math.Pi/8)
	if got := d.Frequency(samples); !almostEqual(got, -62.5, 1e-6) {
		t.Errorf("Frequency = %f Hz, want -62.5 Hz", got)
	}
}

func TestDiscriminator_PhaseWrapAround(t *testing.T) {
	// A jump from +0.75π to -0.75π is reported as +0.5π.
	samples := []complex128{
		complex(1, 0),
		complex(math.Cos(0.75*math.Pi), math.Sin(0.75*math.Pi)),
		complex(math.Cos(-0.75*math.Pi), math.Sin(-0.75*math.Pi)),
	}

	steps := NewDiscriminator(1).PhaseSteps(samples, make([]float64, 0, 2))
	if !almostEqual(steps[0], 0.75*math.Pi, 1e-9) {
		t.Errorf("Expected first step %f, got %f", 0.75*math.Pi, steps[0])
	}
	if !almostEqual(steps[1], 0.5*math.Pi, 1e-9) {
		t.Errorf("Expected wrapped step %f, got %f", 0.5*math.Pi, steps[1])
	}
}

func TestDiscriminator_Degenerate(t *testing.T) {
	d := NewDiscriminator(5000)
	if got := d.Frequency(nil); got != 0 {
		t.Errorf("Expected 0 Hz for no samples, got %f", got)
	}
	if got := d.Frequency(make([]complex128, 16)); got != 0 {
		t.Errorf("Expected 0 Hz for silence, got %f", got)
	}
	if got := d.PhaseSteps([]complex128{1}, nil); len(got) != 0 {
		t.Errorf("Expected no steps for one sample, got %v", got)
	}
}
