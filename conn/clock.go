package conn

import "time"

// Timer is a handle to a single scheduled callback. Stop cancels it; Stop on
// an already-fired or already-stopped Timer is a safe no-op, matching
// time.Timer's own contract.
type Timer interface {
	Stop() bool
}

// Clock is the injectable time source behind the retransmission timer, per
// the design note requiring tests to drive a virtual clock instead of wall
// time. A Connection never calls time.Now or time.AfterFunc directly.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// systemClock is the default Clock, backed by the standard library.
type systemClock struct{}

// SystemClock is the Clock implementation listener.New uses when its Config
// supplies no Clock; it delegates to the standard time package.
var SystemClock Clock = systemClock{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
