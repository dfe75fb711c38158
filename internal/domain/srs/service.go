package srs

import (
	"time"
)

// Service defines the interface for interval policy operations.
// Implementations are stateless and safe for concurrent use.
type Service interface {
	// IntervalForReadCount returns the days until the next read for a note
	// that has been read readCount times
	IntervalForReadCount(readCount int) int

	// NextReadDate computes the start-of-day date of the next read
	NextReadDate(readCount int, now time.Time) time.Time

	// IsDue reports whether nextReadDate has arrived as of asOf
	IsDue(nextReadDate, asOf time.Time) bool

	// FrequencyLabel describes the reading cadence for readCount in plain words
	FrequencyLabel(readCount int) string
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new interval policy with the default table
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new interval policy with custom parameters.
// Invalid parameters are rejected.
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		return NewDefaultService(), nil
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &defaultService{
		params: params,
	}, nil
}

func (s *defaultService) IntervalForReadCount(readCount int) int {
	return intervalForReadCount(readCount, s.params.Intervals)
}

func (s *defaultService) NextReadDate(readCount int, now time.Time) time.Time {
	return calculateNextReadDate(readCount, now, s.params.Intervals)
}

func (s *defaultService) IsDue(nextReadDate, asOf time.Time) bool {
	return IsDue(nextReadDate, asOf)
}

func (s *defaultService) FrequencyLabel(readCount int) string {
	return frequencyForInterval(s.IntervalForReadCount(readCount))
}
