// Copyright 2026 The goefc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package esync

import "time"

import "github.com/cxxjava/goefc/ethread"

// A Condition is a wait/signal point bound to one exclusive lock (obtained
// from Mutex.NewCondition or RWMutex.NewCondition).  Await atomically
// releases the lock, parks the caller, and reacquires before returning;
// Signal moves the longest-waiting thread from the condition's private list
// onto the lock's wait queue.
//
// Every operation requires the lock to be held by the calling thread and
// panics otherwise.  As with all Mesa-style conditions, waits return
// spuriously, so the guarded predicate must be re-tested in a loop.
type Condition struct {
	s *Synchronizer

	// The condition list is singly linked through node.nextWaiter.  It is
	// only ever touched with the owning lock held, so no CAS is needed on
	// these ends.
	firstWaiter *node
	lastWaiter  *node
}

// Interrupt disposition after a wait: interrupted before being signalled
// reports ErrInterrupted; interrupted after means the wakeup was legitimate,
// so the flag is merely re-asserted on the thread.
const (
	condReinterrupt = 1
	condThrowIE     = -1
)

// addConditionWaiter appends a fresh CONDITION node for the current thread,
// first pruning cancelled nodes if the list tail was abandoned by a
// timed-out or interrupted waiter.
func (c *Condition) addConditionWaiter() *node {
	t := c.lastWaiter
	if t != nil && t.waitStatus.Load() != statusCondition {
		c.unlinkCancelledWaiters()
		t = c.lastWaiter
	}
	n := new(node)
	n.thread.Store(ethread.Current())
	n.waitStatus.Store(statusCondition)
	if t == nil {
		c.firstWaiter = n
	} else {
		t.nextWaiter.Store(n)
	}
	c.lastWaiter = n
	return n
}

// doSignal transfers waiters starting at first until one transfer sticks
// (skipping waiters that cancelled) or the list empties.
func (c *Condition) doSignal(first *node) {
	for {
		next := first.nextWaiter.Load()
		c.firstWaiter = next
		if next == nil {
			c.lastWaiter = nil
		}
		first.nextWaiter.Store(nil)
		if c.s.transferForSignal(first) {
			return
		}
		first = c.firstWaiter
		if first == nil {
			return
		}
	}
}

// doSignalAll drains the whole list, transferring every waiter that has not
// already cancelled.
func (c *Condition) doSignalAll(first *node) {
	c.firstWaiter = nil
	c.lastWaiter = nil
	for first != nil {
		next := first.nextWaiter.Load()
		first.nextWaiter.Store(nil)
		c.s.transferForSignal(first)
		first = next
	}
}

// unlinkCancelledWaiters prunes non-CONDITION nodes from the list.  Called
// only with the lock held, when a wait cancelled or when enqueueing after
// the tail was seen cancelled; it traverses the whole list so one pass
// unhooks every dead node even during cancellation storms.
func (c *Condition) unlinkCancelledWaiters() {
	t := c.firstWaiter
	var trail *node
	for t != nil {
		next := t.nextWaiter.Load()
		if t.waitStatus.Load() != statusCondition {
			t.nextWaiter.Store(nil)
			if trail == nil {
				c.firstWaiter = next
			} else {
				trail.nextWaiter.Store(next)
			}
			if next == nil {
				c.lastWaiter = trail
			}
		} else {
			trail = t
		}
		t = next
	}
}

// checkInterruptWhileWaiting classifies an interrupt observed during a wait:
// before any signal (the node was still CONDITION, so cancel-transfer it)
// or after.
func (c *Condition) checkInterruptWhileWaiting(n *node) int {
	if ethread.Interrupted() {
		if c.s.transferAfterCancelledWait(n) {
			return condThrowIE
		}
		return condReinterrupt
	}
	return 0
}

// reportInterruptAfterWait converts the recorded interrupt mode into the
// user-visible outcome.
func (c *Condition) reportInterruptAfterWait(mode int) error {
	if mode == condThrowIE {
		return ErrInterrupted
	}
	if mode == condReinterrupt {
		selfInterrupt()
	}
	return nil
}

// Await blocks until the condition is signalled or the thread is
// interrupted, releasing the lock while parked and reacquiring it before
// returning.  Returns ErrInterrupted (flag cleared) if the interrupt won;
// an interrupt that arrives after the signal re-asserts the flag instead.
func (c *Condition) Await() error {
	if ethread.Interrupted() {
		return ErrInterrupted
	}
	n := c.addConditionWaiter()
	saved := c.s.fullyRelease(n)
	mode := 0
	for !c.s.isOnSyncQueue(n) {
		ethread.Current().Park()
		if mode = c.checkInterruptWhileWaiting(n); mode != 0 {
			break
		}
	}
	if c.s.acquireQueued(n, saved) && mode != condThrowIE {
		mode = condReinterrupt
	}
	if n.nextWaiter.Load() != nil { // cancelled during wait
		c.unlinkCancelledWaiters()
	}
	return c.reportInterruptAfterWait(mode)
}

// AwaitUninterruptibly blocks until signalled.  An interrupt does not abort
// the wait; the flag is re-asserted on return.
func (c *Condition) AwaitUninterruptibly() {
	n := c.addConditionWaiter()
	saved := c.s.fullyRelease(n)
	interrupted := false
	for !c.s.isOnSyncQueue(n) {
		ethread.Current().Park()
		if ethread.Interrupted() {
			interrupted = true
		}
	}
	if c.s.acquireQueued(n, saved) || interrupted {
		selfInterrupt()
	}
}

// doAwaitNanos is the shared timed wait.  timedOut is precise: a signal
// that wins the race against the deadline reports false even when the
// remaining time has gone non-positive.
func (c *Condition) doAwaitNanos(nanos int64) (remaining int64, timedOut bool, err error) {
	if ethread.Interrupted() {
		return nanos, false, ErrInterrupted
	}
	deadline := time.Now().Add(time.Duration(nanos))
	n := c.addConditionWaiter()
	saved := c.s.fullyRelease(n)
	mode := 0
	for !c.s.isOnSyncQueue(n) {
		rem := time.Until(deadline)
		if rem <= 0 {
			timedOut = c.s.transferAfterCancelledWait(n)
			break
		}
		if rem >= spinForTimeoutThreshold {
			ethread.Current().ParkUntil(deadline)
		}
		if mode = c.checkInterruptWhileWaiting(n); mode != 0 {
			break
		}
	}
	if c.s.acquireQueued(n, saved) && mode != condThrowIE {
		mode = condReinterrupt
	}
	if n.nextWaiter.Load() != nil {
		c.unlinkCancelledWaiters()
	}
	return int64(time.Until(deadline)), timedOut, c.reportInterruptAfterWait(mode)
}

// AwaitNanos is Await bounded by a relative timeout, returning the
// remaining time (non-positive if the wait timed out before a signal).
func (c *Condition) AwaitNanos(nanos int64) (int64, error) {
	remaining, _, err := c.doAwaitNanos(nanos)
	return remaining, err
}

// AwaitFor is Await bounded by a duration; it returns false if the wait
// timed out before a signal arrived.
func (c *Condition) AwaitFor(d time.Duration) (bool, error) {
	_, timedOut, err := c.doAwaitNanos(int64(d))
	return !timedOut, err
}

// AwaitUntil is Await bounded by an absolute deadline; it returns false if
// the deadline passed before a signal arrived.
func (c *Condition) AwaitUntil(deadline time.Time) (bool, error) {
	return c.AwaitFor(time.Until(deadline))
}

// Signal moves the longest-waiting thread, if any, from this condition's
// list to the lock's wait queue.
func (c *Condition) Signal() {
	if !c.s.impl.IsHeldExclusively() {
		panic("esync: condition signalled without holding the lock")
	}
	if first := c.firstWaiter; first != nil {
		c.doSignal(first)
	}
}

// SignalAll moves every waiting thread from this condition's list to the
// lock's wait queue.
func (c *Condition) SignalAll() {
	if !c.s.impl.IsHeldExclusively() {
		panic("esync: condition signalled without holding the lock")
	}
	if first := c.firstWaiter; first != nil {
		c.doSignalAll(first)
	}
}

// HasWaiters reports whether any thread may be waiting on this condition.
func (c *Condition) HasWaiters() bool {
	if !c.s.impl.IsHeldExclusively() {
		panic("esync: condition inspected without holding the lock")
	}
	for n := c.firstWaiter; n != nil; n = n.nextWaiter.Load() {
		if n.waitStatus.Load() == statusCondition {
			return true
		}
	}
	return false
}

// WaitQueueLength returns an estimate of the number of threads waiting on
// this condition.
func (c *Condition) WaitQueueLength() int {
	if !c.s.impl.IsHeldExclusively() {
		panic("esync: condition inspected without holding the lock")
	}
	count := 0
	for n := c.firstWaiter; n != nil; n = n.nextWaiter.Load() {
		if n.waitStatus.Load() == statusCondition {
			count++
		}
	}
	return count
}
