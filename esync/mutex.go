// Copyright 2026 The goefc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package esync

import "time"

import "github.com/cxxjava/goefc/ethread"

// A Mutex is a reentrant exclusive lock.  The thread that acquires it may
// acquire it again (up to math.MaxInt32 times) and must unlock once per
// acquisition; unlocking by any other thread panics.
//
// A fair Mutex hands the lock to waiters in FIFO-approximate order; the
// default barging Mutex lets an arriving thread take a just-released lock
// ahead of the queue, which has higher throughput.  TryLock barges even on
// a fair Mutex.
//
// Create with NewMutex; the zero Mutex is not usable.
type Mutex struct {
	sync mutexSync
}

// mutexSync is the synchronizer behind Mutex: state is the hold count, zero
// meaning unlocked.
type mutexSync struct {
	Synchronizer
	HooksBase
	fair bool
}

// NewMutex returns an unlocked Mutex with the given fairness policy.
func NewMutex(fair bool) *Mutex {
	m := &Mutex{}
	m.sync.fair = fair
	m.sync.Init(&m.sync)
	return m
}

// nonfairTryAcquire is the barging acquire, shared by the non-fair path and
// TryLock regardless of policy.
func (s *mutexSync) nonfairTryAcquire(acquires int32) bool {
	current := ethread.Current()
	c := s.state.Load()
	if c == 0 {
		if s.state.CompareAndSwap(0, acquires) {
			s.SetExclusiveOwner(current)
			return true
		}
	} else if current == s.ExclusiveOwner() {
		next := c + acquires
		if next < 0 {
			panic("esync: mutex hold count overflow")
		}
		s.state.Store(next)
		return true
	}
	return false
}

func (s *mutexSync) TryAcquire(acquires int32) bool {
	if !s.fair {
		return s.nonfairTryAcquire(acquires)
	}
	current := ethread.Current()
	c := s.state.Load()
	if c == 0 {
		if !s.HasQueuedPredecessors() && s.state.CompareAndSwap(0, acquires) {
			s.SetExclusiveOwner(current)
			return true
		}
	} else if current == s.ExclusiveOwner() {
		next := c + acquires
		if next < 0 {
			panic("esync: mutex hold count overflow")
		}
		s.state.Store(next)
		return true
	}
	return false
}

func (s *mutexSync) TryRelease(releases int32) bool {
	if ethread.Current() != s.ExclusiveOwner() {
		panic("esync: unlock of mutex not held by current thread")
	}
	c := s.state.Load() - releases
	free := c == 0
	if free {
		s.SetExclusiveOwner(nil)
	}
	s.state.Store(c)
	return free
}

func (s *mutexSync) IsHeldExclusively() bool {
	return s.ExclusiveOwner() == ethread.Current()
}

// Lock acquires the mutex, blocking until it is available.  If the thread is
// interrupted while queued, the interrupt flag is re-asserted before Lock
// returns.
func (m *Mutex) Lock() {
	m.sync.Acquire(1)
}

// LockInterruptibly acquires the mutex unless the calling thread's interrupt
// flag is set on entry or becomes set while waiting, in which case it
// returns ErrInterrupted with the flag cleared.
func (m *Mutex) LockInterruptibly() error {
	return m.sync.AcquireInterruptibly(1)
}

// TryLock acquires the mutex only if it is free or already held by the
// caller, without blocking.  It barges regardless of the fairness policy.
func (m *Mutex) TryLock() bool {
	return m.sync.nonfairTryAcquire(1)
}

// TryLockFor acquires like LockInterruptibly but gives up after d, returning
// false.  A fair mutex honors its queue order while waiting.
func (m *Mutex) TryLockFor(d time.Duration) (bool, error) {
	return m.sync.tryAcquireNanos(1, int64(d))
}

// Unlock releases one hold.  It panics if the calling thread is not the
// owner.
func (m *Mutex) Unlock() {
	m.sync.Release(1)
}

// NewCondition returns a new Condition bound to this mutex.
func (m *Mutex) NewCondition() *Condition {
	return &Condition{s: &m.sync.Synchronizer}
}

// HeldByCurrentThread reports whether the calling thread owns the mutex.
func (m *Mutex) HeldByCurrentThread() bool {
	return m.sync.IsHeldExclusively()
}

// IsLocked reports whether any thread holds the mutex.
func (m *Mutex) IsLocked() bool {
	return m.sync.state.Load() != 0
}

// HoldCount returns the number of unmatched Lock calls by the calling
// thread, or zero if it is not the owner.
func (m *Mutex) HoldCount() int32 {
	if !m.sync.IsHeldExclusively() {
		return 0
	}
	return m.sync.state.Load()
}

// IsFair reports the fairness policy.
func (m *Mutex) IsFair() bool {
	return m.sync.fair
}

// Owner returns the thread currently holding the mutex, or nil.
func (m *Mutex) Owner() *ethread.Thread {
	return m.sync.ExclusiveOwner()
}

// HasQueuedThreads reports whether any thread is waiting to lock.
func (m *Mutex) HasQueuedThreads() bool {
	return m.sync.HasQueuedThreads()
}

// QueueLength returns an estimate of the number of waiting threads.
func (m *Mutex) QueueLength() int {
	return m.sync.QueueLength()
}
