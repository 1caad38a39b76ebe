package service

import "time"

// Clock abstracts wall-clock reads so tests can pin timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
