package supervisor

import (
	"time"
)

// intensity tracks the restarts of the last maxSeconds.
type intensity struct {
	maxRestarts int
	maxSeconds  int
	// restart times as unix seconds, oldest first
	restarts []int64
}

func newIntensity(maxRestarts, maxSeconds int) *intensity {
	return &intensity{
		maxRestarts: maxRestarts,
		maxSeconds:  maxSeconds,
	}
}

// recordAndCheck records a restart at now and reports whether the supervisor may go on,
// that is whether no more than maxRestarts restarts happened within maxSeconds of now.
func (i *intensity) recordAndCheck(now time.Time) bool {
	t := now.Unix()
	threshold := t - int64(i.maxSeconds)

	kept := i.restarts[:0]
	for _, restart := range i.restarts {
		if restart >= threshold {
			kept = append(kept, restart)
		}
	}
	i.restarts = append(kept, t)

	return len(i.restarts) <= i.maxRestarts
}
