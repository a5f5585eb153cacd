package service

import "time"

// Clock abstracts wall-clock time so date-partitioned allocation and the
// acknowledgement date window are testable around day boundaries.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns the wall clock in UTC.
func SystemClock() Clock { return systemClock{} }
