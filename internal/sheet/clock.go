package sheet

import "time"

// Clock supplies "today" for defaulted dates.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
func SystemClock() Clock {
	return systemClock{}
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return fixedClock{t: t}
}
