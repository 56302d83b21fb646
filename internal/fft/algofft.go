package fft

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// AlgoPlan wraps an algo-fft complex128 plan.
type AlgoPlan struct {
	plan    *algofft.Plan[complex128]
	scratch []complex128
}

// NewAlgoPlan plans a transform of size n. algo-fft rejects sizes it cannot
// decompose, which is reported as ErrSize.
func NewAlgoPlan(n int) (*AlgoPlan, error) {
	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("%w: %d: %v", ErrSize, n, err)
	}
	return &AlgoPlan{
		plan:    plan,
		scratch: make([]complex128, n),
	}, nil
}

// Len returns the transform size.
func (a *AlgoPlan) Len() int { return len(a.scratch) }

// Transform runs the forward or inverse transform of buf in place.
func (a *AlgoPlan) Transform(buf []complex128, inverse bool) error {
	if err := checkLen(buf, len(a.scratch)); err != nil {
		return err
	}
	var err error
	if inverse {
		err = a.plan.Inverse(a.scratch, buf)
	} else {
		err = a.plan.Forward(a.scratch, buf)
	}
	if err != nil {
		return fmt.Errorf("algofft: %w", err)
	}
	copy(buf, a.scratch)
	return nil
}
