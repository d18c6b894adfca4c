package poller

import "time"

// Schedule controls how often a task is queried.
type Schedule struct {
	InitialDelay  time.Duration
	Interval      time.Duration
	BackoffFactor float64
	MaxInterval   time.Duration

	// ProcessingThreshold is the number of "processing" answers tolerated
	// at the base interval before every further answer widens it.
	ProcessingThreshold int
	// FailureThreshold is the same, for consecutive transport failures.
	FailureThreshold int

	// MaxAttempts and MaxDuration end polling with a timeout failure.
	// Zero disables them.
	MaxAttempts int
	MaxDuration time.Duration
}

func DefaultSchedule() Schedule {
	return Schedule{
		InitialDelay:        2 * time.Second,
		Interval:            3 * time.Second,
		BackoffFactor:       1.5,
		MaxInterval:         10 * time.Second,
		ProcessingThreshold: 5,
		FailureThreshold:    3,
	}
}

// normalize fills zero fields from the defaults and makes the schedule
// internally consistent.
func (s Schedule) normalize() Schedule {
	d := DefaultSchedule()
	if s.InitialDelay < 0 {
		s.InitialDelay = 0
	}
	if s.Interval <= 0 {
		s.Interval = d.Interval
	}
	if s.BackoffFactor == 0 {
		s.BackoffFactor = d.BackoffFactor
	} else if s.BackoffFactor < 1 {
		s.BackoffFactor = 1
	}
	if s.MaxInterval <= 0 {
		s.MaxInterval = d.MaxInterval
	}
	if s.Interval > s.MaxInterval {
		s.Interval = s.MaxInterval
	}
	if s.ProcessingThreshold < 0 {
		s.ProcessingThreshold = 0
	}
	if s.FailureThreshold < 0 {
		s.FailureThreshold = 0
	}
	return s
}

// next returns the widened interval, capped at MaxInterval.
func (s Schedule) next(current time.Duration) time.Duration {
	n := time.Duration(float64(current) * s.BackoffFactor)
	if n > s.MaxInterval {
		n = s.MaxInterval
	}
	if n < current {
		n = current
	}
	return n
}
