package application

import "time"

// Clock abstracts wall-clock reads so date-boundary decisions are
// deterministically testable.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }
