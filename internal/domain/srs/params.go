package srs

import (
	"errors"
	"fmt"
)

// Parameter validation errors
var (
	ErrEmptyIntervals  = errors.New("interval table cannot be empty")
	ErrInvalidInterval = errors.New("interval table entries must be positive and non-decreasing")
)

// defaultIntervals is the fixed re-reading schedule in days. Index i is the
// wait applied once a note has been read i times.
var defaultIntervals = [...]int{1, 3, 7, 14, 30, 60, 90, 180, 365}

// Params defines the configurable parameters for the interval policy.
type Params struct {
	// Intervals is the ordered table of day counts. Read counts past the last
	// index clamp to the final entry.
	Intervals []int
}

// DefaultIntervals returns a copy of the default interval table.
func DefaultIntervals() []int {
	out := make([]int, len(defaultIntervals))
	copy(out, defaultIntervals[:])
	return out
}

// NewDefaultParams creates a new Params instance with the default interval table.
func NewDefaultParams() *Params {
	return &Params{Intervals: DefaultIntervals()}
}

// NewParams creates Params from a custom interval table.
// The table is copied so later changes by the caller have no effect.
func NewParams(intervals []int) (*Params, error) {
	p := &Params{Intervals: append([]int(nil), intervals...)}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks that the interval table is usable.
func (p *Params) Validate() error {
	if len(p.Intervals) == 0 {
		return ErrEmptyIntervals
	}
	prev := 0
	for i, days := range p.Intervals {
		if days <= 0 || days < prev {
			return fmt.Errorf("%w: index %d has %d days", ErrInvalidInterval, i, days)
		}
		prev = days
	}
	return nil
}

// MaxInterval returns the ceiling of the table.
func (p *Params) MaxInterval() int {
	return p.Intervals[len(p.Intervals)-1]
}
