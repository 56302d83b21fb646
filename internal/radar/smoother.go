package radar

import "gonum.org/v1/gonum/stat"

// VelocitySmoother keeps the last K velocity estimates in a ring and reports
// their unweighted mean. Unwritten slots count as zero, so the mean ramps up
// over the first K pushes.
type VelocitySmoother struct {
	history []float64
	next    int
}

// NewVelocitySmoother creates a zeroed history of k slots.
func NewVelocitySmoother(k int) *VelocitySmoother {
	return &VelocitySmoother{history: make([]float64, k)}
}

// Push overwrites the oldest slot with v.
func (s *VelocitySmoother) Push(v float64) {
	s.history[s.next] = v
	s.next = (s.next + 1) % len(s.history)
}

// Mean averages all K slots.
func (s *VelocitySmoother) Mean() float64 {
	return stat.Mean(s.history, nil)
}

// Values returns the history in slot order.
func (s *VelocitySmoother) Values() []float64 {
	return append([]float64(nil), s.history...)
}

// Len returns the history capacity K.
func (s *VelocitySmoother) Len() int { return len(s.history) }

// Reset zeroes the history and rewinds the write index.
func (s *VelocitySmoother) Reset() {
	clear(s.history)
	s.next = 0
}
