// Copyright 2026 The goefc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package esync

import "time"

// A Semaphore maintains a set of permits in the kernel's shared mode: the
// state word is the number of available permits.  Acquire takes permits,
// blocking until enough exist; Release returns them.  No permit objects
// change hands and nothing ties a release to a prior acquire, so a
// semaphore can just as well gate a resource pool as broadcast a count.
//
// A fair semaphore grants permits to waiters in FIFO-approximate order;
// the default barging semaphore does not, except that TryAcquire always
// barges under either policy.
//
// Create with NewSemaphore; the zero Semaphore is not usable.
type Semaphore struct {
	sync semaphoreSync
}

type semaphoreSync struct {
	Synchronizer
	HooksBase
	fair bool
}

// NewSemaphore returns a Semaphore with the given initial permits and
// fairness policy.  Negative permits panics.
func NewSemaphore(permits int32, fair bool) *Semaphore {
	if permits < 0 {
		panic("esync: semaphore created with negative permits")
	}
	s := &Semaphore{}
	s.sync.fair = fair
	s.sync.state.Store(permits)
	s.sync.Init(&s.sync)
	return s
}

func (s *semaphoreSync) nonfairTryAcquireShared(acquires int32) int32 {
	for {
		available := s.state.Load()
		remaining := available - acquires
		if remaining < 0 || s.state.CompareAndSwap(available, remaining) {
			return remaining
		}
	}
}

func (s *semaphoreSync) TryAcquireShared(acquires int32) int32 {
	if s.fair && s.HasQueuedPredecessors() {
		return -1
	}
	return s.nonfairTryAcquireShared(acquires)
}

func (s *semaphoreSync) TryReleaseShared(releases int32) bool {
	for {
		current := s.state.Load()
		next := current + releases
		if next < current {
			panic("esync: semaphore permit count overflow")
		}
		if s.state.CompareAndSwap(current, next) {
			return true
		}
	}
}

// reducePermits shrinks the permit count without waking anyone; the count
// may go below what waiters are asking for but never wraps.
func (s *semaphoreSync) reducePermits(reductions int32) {
	for {
		current := s.state.Load()
		next := current - reductions
		if next > current {
			panic("esync: semaphore permit count underflow")
		}
		if s.state.CompareAndSwap(current, next) {
			return
		}
	}
}

func (s *semaphoreSync) drainPermits() int32 {
	for {
		current := s.state.Load()
		if current == 0 || s.state.CompareAndSwap(current, 0) {
			return current
		}
	}
}

func checkPermitArg(n int32) {
	if n < 0 {
		panic("esync: negative permit count")
	}
}

// Acquire takes n permits, blocking until they are available, unless the
// thread is interrupted first (ErrInterrupted, flag cleared).
func (s *Semaphore) Acquire(n int32) error {
	checkPermitArg(n)
	return s.sync.AcquireSharedInterruptibly(n)
}

// AcquireUninterruptibly takes n permits, blocking until available.  An
// interrupt while waiting is re-asserted on the thread before returning.
func (s *Semaphore) AcquireUninterruptibly(n int32) {
	checkPermitArg(n)
	s.sync.AcquireShared(n)
}

// TryAcquire takes n permits only if they are available now, barging
// regardless of the fairness policy.
func (s *Semaphore) TryAcquire(n int32) bool {
	checkPermitArg(n)
	return s.sync.nonfairTryAcquireShared(n) >= 0
}

// TryAcquireFor takes n permits like Acquire but gives up after d,
// returning false.
func (s *Semaphore) TryAcquireFor(n int32, d time.Duration) (bool, error) {
	checkPermitArg(n)
	return s.sync.tryAcquireSharedNanos(n, int64(d))
}

// Release returns n permits, waking waiters that can now succeed.  Panics
// if the permit count would overflow.
func (s *Semaphore) Release(n int32) {
	checkPermitArg(n)
	s.sync.ReleaseShared(n)
}

// AvailablePermits returns the current permit count.
func (s *Semaphore) AvailablePermits() int32 {
	return s.sync.state.Load()
}

// DrainPermits takes and returns all permits available right now.
func (s *Semaphore) DrainPermits() int32 {
	return s.sync.drainPermits()
}

// ReducePermits removes n permits without blocking or waking anyone; the
// available count may go negative from the point of view of waiters.
func (s *Semaphore) ReducePermits(n int32) {
	checkPermitArg(n)
	s.sync.reducePermits(n)
}

// IsFair reports the fairness policy.
func (s *Semaphore) IsFair() bool {
	return s.sync.fair
}

// HasQueuedThreads reports whether any thread is waiting for permits.
func (s *Semaphore) HasQueuedThreads() bool {
	return s.sync.HasQueuedThreads()
}

// QueueLength returns an estimate of the number of waiting threads.
func (s *Semaphore) QueueLength() int {
	return s.sync.QueueLength()
}
