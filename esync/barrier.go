// Copyright 2026 The goefc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package esync

import "errors"
import "time"

import "github.com/cxxjava/goefc/ethread"

// ErrBrokenBarrier is returned by CyclicBarrier.Await when the barrier was
// broken by another party's interrupt or timeout, a panicking trip action,
// or Reset.  The party whose own wait is cut short gets ErrInterrupted or
// ErrTimeout instead.
var ErrBrokenBarrier = errors.New("esync: barrier broken")

// ErrTimeout is returned by CyclicBarrier.AwaitFor when the wait time
// elapses before the barrier trips; the barrier is broken as a result.
var ErrTimeout = errors.New("esync: barrier wait timed out")

// A CyclicBarrier gathers a fixed party of threads at a common point: each
// calls Await and blocks until the last arrives, optionally running a trip
// action, after which all are released and the barrier resets for the next
// cycle.
//
// Each cycle is a generation.  If any waiter is interrupted or times out,
// or the trip action panics, the generation breaks: every current and
// future Await fails with ErrBrokenBarrier until Reset installs a fresh
// generation.  This all-or-nothing breakage keeps a partial party from
// silently proceeding.
//
// The barrier is built from a Mutex and one Condition; the trip action runs
// with the lock held, so the released parties do not emerge until it
// finishes.
//
// Create with NewCyclicBarrier; the zero CyclicBarrier is not usable.
type CyclicBarrier struct {
	lock    *Mutex
	trip    *Condition
	parties int32
	action  func()

	// generation identifies the current cycle; waiters compare it to
	// detect a trip, and its broken flag poisons the cycle.  All under
	// lock.
	generation *barrierGeneration
	count      int32 // parties still to arrive this generation
}

type barrierGeneration struct {
	broken bool
}

// NewCyclicBarrier returns a barrier for the given number of parties, with
// an optional action run by the last-arriving thread before any party is
// released.  parties < 1 panics.
func NewCyclicBarrier(parties int32, action func()) *CyclicBarrier {
	if parties <= 0 {
		panic("esync: barrier created with no parties")
	}
	b := &CyclicBarrier{
		lock:       NewMutex(false),
		parties:    parties,
		count:      parties,
		action:     action,
		generation: &barrierGeneration{},
	}
	b.trip = b.lock.NewCondition()
	return b
}

// nextGeneration starts a new cycle after a trip or reset.  Called with the
// lock held.
func (b *CyclicBarrier) nextGeneration() {
	b.trip.SignalAll()
	b.count = b.parties
	b.generation = &barrierGeneration{}
}

// breakBarrier poisons the current generation and wakes everyone so they
// can observe the breakage.  Called with the lock held.
func (b *CyclicBarrier) breakBarrier() {
	b.generation.broken = true
	b.count = b.parties
	b.trip.SignalAll()
}

// doAwait is the single wait implementation behind Await and AwaitFor.
func (b *CyclicBarrier) doAwait(timed bool, nanos int64) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	g := b.generation
	if g.broken {
		return 0, ErrBrokenBarrier
	}
	// An interrupt pending at entry breaks the barrier for everyone rather
	// than silently shrinking the party.
	if ethread.Interrupted() {
		b.breakBarrier()
		return 0, ErrInterrupted
	}

	b.count--
	index := b.count
	if index == 0 { // tripped
		if b.action != nil {
			ranAction := false
			func() {
				defer func() {
					if !ranAction {
						b.breakBarrier()
					}
				}()
				b.action()
				ranAction = true
			}()
		}
		b.nextGeneration()
		return 0, nil
	}

	for {
		var err error
		if !timed {
			err = b.trip.Await()
		} else {
			nanos, err = b.trip.AwaitNanos(nanos)
		}
		if err != nil {
			if g == b.generation && !g.broken {
				b.breakBarrier()
				return 0, err
			}
			// The wait ended in a later generation or on a broken one; the
			// interrupt belongs to whoever observes it next.
			selfInterrupt()
		}

		if g.broken {
			return 0, ErrBrokenBarrier
		}
		if g != b.generation {
			return int(index), nil
		}
		if timed && nanos <= 0 {
			b.breakBarrier()
			return 0, ErrTimeout
		}
	}
}

// Await blocks until all parties have arrived, then returns this thread's
// arrival index: parties-1 for the first to arrive, 0 for the last (which
// runs the trip action).  Fails with ErrInterrupted or ErrBrokenBarrier;
// either way the generation is broken for all parties.
func (b *CyclicBarrier) Await() (int, error) {
	return b.doAwait(false, 0)
}

// AwaitFor is Await bounded by d; expiry breaks the barrier and returns
// ErrTimeout.
func (b *CyclicBarrier) AwaitFor(d time.Duration) (int, error) {
	return b.doAwait(true, int64(d))
}

// Reset breaks the current generation (current waiters get
// ErrBrokenBarrier) and installs a fresh one, ready for a new cycle.
func (b *CyclicBarrier) Reset() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.breakBarrier()
	b.nextGeneration()
}

// IsBroken reports whether the current generation is broken.
func (b *CyclicBarrier) IsBroken() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.generation.broken
}

// Parties returns the number of threads required to trip the barrier.
func (b *CyclicBarrier) Parties() int32 {
	return b.parties
}

// NumberWaiting returns the number of parties currently blocked in Await.
func (b *CyclicBarrier) NumberWaiting() int32 {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.parties - b.count
}
