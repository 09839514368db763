package worker

import "sync/atomic"

// Signal is a set-once stop flag shared by every worker of a search. The
// hot path reads it with a single atomic load; Done is for callers that
// want to select on it.
type Signal struct {
	fired atomic.Bool
	done  chan struct{}
}

// NewSignal creates an unset signal.
func NewSignal() *Signal {
	return &Signal{done: make(chan struct{})}
}

// Fire sets the signal. It reports whether this call was the one that set
// it; later calls are no-ops.
func (s *Signal) Fire() bool {
	if !s.fired.CompareAndSwap(false, true) {
		return false
	}
	close(s.done)
	return true
}

// Fired reports whether the signal is set.
func (s *Signal) Fired() bool {
	return s.fired.Load()
}

// Done is closed once the signal fires.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}
