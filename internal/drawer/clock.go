package drawer

import "time"

// Timer is a pending delayed transition.
type Timer interface {
	Stop() bool
}

// Clock schedules delayed transitions and tells the date.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (realClock) Now() time.Time {
	return time.Now()
}

// SystemClock is the wall clock.
var SystemClock Clock = realClock{}
