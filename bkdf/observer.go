package bkdf

import "time"

// Operation names passed to an [Observer].
const (
	OpHash    = "hash"
	OpVerify  = "verify"
	OpUpgrade = "upgrade"
	OpDerive  = "derive"
)

// Observer receives one callback per stretch invocation. It is the hook
// used by the metrics package; implementations must be safe for concurrent
// use and must not block.
type Observer interface {
	ObserveStretch(op string, v Version, cost int, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveStretch(string, Version, int, time.Duration) {}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}
