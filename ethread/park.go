// Copyright 2026 The goefc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ethread

import "time"

// The park engine.
//
// Each Thread carries a one-permit semaphore (a buffered channel of capacity
// one, as in a binary semaphore).  Unpark() makes a permit available without
// ever blocking and without accumulating more than one; Park() consumes a
// permit, blocking until one is available.  Park() gives no indication of why
// it returned---permit, interrupt, deadline, or a spurious wake---so callers
// must re-check their predicate in a loop.
//
// Unpark() before Park() is not lost: the permit sits in the channel and the
// next Park() returns immediately.  The channel send/receive pair provides
// the required synchronizes-with edge between unparker and parker.

// Park blocks the calling thread until a permit is available (made so by
// Unpark or Interrupt), consuming it.  Must be called on t's own goroutine.
func (t *Thread) Park() {
	if t.interrupted.Load() {
		// Interrupted threads never block; the pending permit (if any)
		// is left in place for the next park.
		return
	}
	<-t.permit
}

// ParkUntil blocks like Park, but returns no later than the absolute
// deadline.  A deadline in the past checks the permit once and returns.
// Must be called on t's own goroutine.
func (t *Thread) ParkUntil(deadline time.Time) {
	if t.interrupted.Load() {
		return
	}
	d := time.Until(deadline)
	if d <= 0 {
		select {
		case <-t.permit:
		default:
		}
		return
	}
	if t.timer.Reset(d) {
		panic("ethread: park timer was active")
	}
	select {
	case <-t.permit:
		if !t.timer.Stop() {
			// Timer expired between the receive and the Stop; its
			// channel must be drained so the next park starts clean.
			<-t.timer.C
		}
	case <-t.timer.C:
	}
}

// Unpark makes t's permit available, waking t if it is parked.  If t is not
// parked, its next Park returns immediately.  Repeated Unpark calls do not
// accumulate more than one permit.
func Unpark(t *Thread) {
	select {
	case t.permit <- struct{}{}:
	default: // permit already available
	}
}
