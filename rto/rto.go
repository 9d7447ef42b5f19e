// Package rto implements the Jacobson/Karels (RFC 6298) retransmission
// timeout estimator used by conn.Connection. No retrieved teacher or pack
// file implements RTT smoothing or an RTO calculation anywhere: lneto's
// ControlBlock (tcp/control.go) tracks only send/receive sequence space
// (snd, rcv, rstPtr, pending, state) and has no srtt/rttvar/rto fields or
// retransmit-timeout logic to ground this on. This package is new code
// written directly from RFC 6298, pulled out on its own because the RTT
// estimate is a named, independently testable sub-concern.
package rto

import "time"

const (
	// Alpha weights the smoothed RTT update: srtt ← (1-α)·srtt + α·sample.
	Alpha = 0.125
	// Beta weights the RTT variance update: rttvar ← (1-β)·rttvar + β·|sample-srtt|.
	Beta = 0.25
	// Min is the floor below which rto is never clamped down.
	Min = 200 * time.Millisecond
	// Initial is the rto used before any RTT sample has been taken.
	Initial = 1 * time.Second
	// minSample guards against a zero or negative sample from clock
	// granularity noise collapsing the estimator on the first measurement.
	minSample = time.Millisecond
)

// Estimator tracks smoothed RTT, RTT variance, and the resulting
// retransmission timeout. The zero value is ready to use: RTO() returns
// Initial until the first sample arrives.
type Estimator struct {
	srtt    time.Duration
	rttvar  time.Duration
	rto     time.Duration
	hasSample bool
}

// RTO returns the current retransmission timeout, Initial if no sample has
// been recorded yet.
func (e *Estimator) RTO() time.Duration {
	if !e.hasSample {
		return Initial
	}
	return e.rto
}

// SRTT returns the current smoothed round-trip time estimate.
func (e *Estimator) SRTT() time.Duration { return e.srtt }

// RTTVAR returns the current RTT variance estimate.
func (e *Estimator) RTTVAR() time.Duration { return e.rttvar }

// Sample feeds a fresh, non-retransmitted RTT measurement into the
// estimator. Per Karn's algorithm, callers must never call Sample with a
// measurement taken from a retransmitted segment.
func (e *Estimator) Sample(s time.Duration) {
	if s < minSample {
		s = minSample
	}
	if !e.hasSample {
		e.srtt = s
		e.rttvar = s / 2
		e.hasSample = true
	} else {
		diff := e.srtt - s
		if diff < 0 {
			diff = -diff
		}
		e.rttvar = time.Duration((1-Beta)*float64(e.rttvar) + Beta*float64(diff))
		e.srtt = time.Duration((1-Alpha)*float64(e.srtt) + Alpha*float64(s))
	}
	e.rto = e.srtt + 4*e.rttvar
	if e.rto < Min {
		e.rto = Min
	}
}
