// Copyright 2026 The goefc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package esync

import "sync/atomic"
import "time"

import "github.com/cxxjava/goefc/ethread"

// An RWMutex is a reentrant read/write lock over the same kernel as Mutex:
// the write lock is the exclusive mode, the read lock the shared mode, and
// both counts are packed into the one state word (upper 16 bits readers,
// lower 16 bits writer holds, 65535 max each).
//
// A thread holding the write lock may take the read lock and then release
// the write lock (downgrade).  The reverse upgrade is not supported: a
// reader that blocks waiting for the write lock deadlocks against its own
// read hold.
//
// In the default barging mode a newly arriving reader still queues behind a
// writer that is already first in the wait queue, which keeps a continuous
// stream of readers from starving writers.  In fair mode both readers and
// writers queue behind any waiter.
//
// Create with NewRWMutex; the zero RWMutex is not usable.
type RWMutex struct {
	sync rwSync
}

const (
	rwSharedShift         = 16
	rwSharedUnit    int32 = 1 << rwSharedShift
	rwMaxCount      int32 = 1<<rwSharedShift - 1
	rwExclusiveMask int32 = 1<<rwSharedShift - 1
)

func sharedCount(c int32) int32 { return int32(uint32(c) >> rwSharedShift) }

func exclusiveCount(c int32) int32 { return c & rwExclusiveMask }

// A holdCounter tracks one thread's read holds.  tid pins the counter to its
// thread so the cachedHoldCounter shortcut can tell whose counter it kept.
type holdCounter struct {
	count int32
	tid   uint64
}

type rwSync struct {
	Synchronizer
	fair bool

	// readHolds is the per-thread read hold count, consulted only when the
	// two fast paths below miss.
	readHolds *ethread.Local[holdCounter]

	// cachedHoldCounter remembers the last thread to take the read lock,
	// saving that thread the thread-local lookup when it is the next to
	// release or re-acquire.  Purely a heuristic.
	cachedHoldCounter atomic.Pointer[holdCounter]

	// firstReader is the thread that took the read lock while the reader
	// count was zero, with its hold count alongside; the common
	// one-uncontended-reader case never touches readHolds at all.
	// firstReaderHoldCount is meaningful only while firstReader is set,
	// and is only written by the firstReader thread itself.
	firstReader          atomic.Pointer[ethread.Thread]
	firstReaderHoldCount atomic.Int32
}

// NewRWMutex returns an unlocked RWMutex with the given fairness policy.
func NewRWMutex(fair bool) *RWMutex {
	rw := &RWMutex{}
	rw.sync.fair = fair
	rw.sync.readHolds = ethread.NewLocal[holdCounter](func() holdCounter {
		return holdCounter{tid: ethread.Current().ID()}
	})
	rw.sync.Init(&rw.sync)
	return rw
}

// writerShouldBlock reports whether an otherwise-eligible write acquire must
// queue instead.
func (s *rwSync) writerShouldBlock() bool {
	if s.fair {
		return s.HasQueuedPredecessors()
	}
	return false
}

// readerShouldBlock reports whether an otherwise-eligible read acquire must
// queue instead.  Non-fair readers yield only to a queued writer at the
// front of the queue.
func (s *rwSync) readerShouldBlock() bool {
	if s.fair {
		return s.HasQueuedPredecessors()
	}
	return s.apparentlyFirstQueuedIsExclusive()
}

func (s *rwSync) TryAcquire(acquires int32) bool {
	current := ethread.Current()
	c := s.state.Load()
	w := exclusiveCount(c)
	if c != 0 {
		// A non-zero state with a zero writer count means readers are
		// active, so a write acquire fails even for a thread that holds
		// the read lock (upgrade attempts deadlock here).
		if w == 0 || current != s.ExclusiveOwner() {
			return false
		}
		if w+acquires > rwMaxCount {
			panic("esync: rwmutex write hold count exceeds 65535")
		}
		s.state.Store(c + acquires) // reentrant; no contention possible
		return true
	}
	if s.writerShouldBlock() || !s.state.CompareAndSwap(c, c+acquires) {
		return false
	}
	s.SetExclusiveOwner(current)
	return true
}

func (s *rwSync) TryRelease(releases int32) bool {
	if !s.IsHeldExclusively() {
		panic("esync: write unlock of rwmutex not held by current thread")
	}
	next := s.state.Load() - releases
	free := exclusiveCount(next) == 0
	if free {
		s.SetExclusiveOwner(nil)
	}
	s.state.Store(next)
	return free
}

func (s *rwSync) TryAcquireShared(int32) int32 {
	current := ethread.Current()
	c := s.state.Load()
	if exclusiveCount(c) != 0 && s.ExclusiveOwner() != current {
		return -1
	}
	r := sharedCount(c)
	if !s.readerShouldBlock() && r < rwMaxCount && s.state.CompareAndSwap(c, c+rwSharedUnit) {
		if r == 0 {
			s.firstReader.Store(current)
			s.firstReaderHoldCount.Store(1)
		} else if s.firstReader.Load() == current {
			s.firstReaderHoldCount.Add(1)
		} else {
			rh := s.cachedHoldCounter.Load()
			if rh == nil || rh.tid != current.ID() {
				rh = s.readHolds.Get()
				s.cachedHoldCounter.Store(rh)
			}
			rh.count++
		}
		return 1
	}
	return s.fullTryAcquireShared(current)
}

// fullTryAcquireShared is the slow read acquire, handling the cases the
// fast path punts on: CAS contention, and a blocking policy that must still
// admit a thread that already holds read locks.
func (s *rwSync) fullTryAcquireShared(current *ethread.Thread) int32 {
	var rh *holdCounter
	for {
		c := s.state.Load()
		if exclusiveCount(c) != 0 {
			if s.ExclusiveOwner() != current {
				return -1
			}
			// We hold the write lock; blocking here would deadlock the
			// downgrade sequence, so fall through to acquire.
		} else if s.readerShouldBlock() {
			// The policy says queue, unless this is a reentrant read.
			if s.firstReader.Load() != current {
				if rh == nil {
					rh = s.cachedHoldCounter.Load()
					if rh == nil || rh.tid != current.ID() {
						rh = s.readHolds.Get()
					}
				}
				if rh.count == 0 {
					return -1
				}
			}
		}
		if sharedCount(c) == rwMaxCount {
			panic("esync: rwmutex read hold count exceeds 65535")
		}
		if s.state.CompareAndSwap(c, c+rwSharedUnit) {
			if sharedCount(c) == 0 {
				s.firstReader.Store(current)
				s.firstReaderHoldCount.Store(1)
			} else if s.firstReader.Load() == current {
				s.firstReaderHoldCount.Add(1)
			} else {
				if rh == nil {
					rh = s.cachedHoldCounter.Load()
				}
				if rh == nil || rh.tid != current.ID() {
					rh = s.readHolds.Get()
				}
				rh.count++
				s.cachedHoldCounter.Store(rh)
			}
			return 1
		}
	}
}

func (s *rwSync) TryReleaseShared(int32) bool {
	current := ethread.Current()
	if s.firstReader.Load() == current {
		if s.firstReaderHoldCount.Load() == 1 {
			s.firstReader.Store(nil)
		} else {
			s.firstReaderHoldCount.Add(-1)
		}
	} else {
		rh := s.cachedHoldCounter.Load()
		if rh == nil || rh.tid != current.ID() {
			rh = s.readHolds.Get()
		}
		if rh.count <= 0 {
			panic("esync: read unlock of rwmutex not read-held by current thread")
		}
		rh.count--
	}
	for {
		c := s.state.Load()
		next := c - rwSharedUnit
		if s.state.CompareAndSwap(c, next) {
			// Releasing the read lock has no effect on other readers, but
			// a fully zero state lets a queued writer proceed.
			return next == 0
		}
	}
}

func (s *rwSync) IsHeldExclusively() bool {
	return s.ExclusiveOwner() == ethread.Current()
}

// Writer API.

// Lock acquires the write lock, blocking until no other thread holds either
// lock.  Reentrant for the write-holding thread.
func (rw *RWMutex) Lock() {
	rw.sync.Acquire(1)
}

// LockInterruptibly acquires the write lock unless interrupted.
func (rw *RWMutex) LockInterruptibly() error {
	return rw.sync.AcquireInterruptibly(1)
}

// TryLock acquires the write lock without blocking, barging past any queue
// regardless of policy.
func (rw *RWMutex) TryLock() bool {
	current := ethread.Current()
	c := rw.sync.state.Load()
	if c != 0 {
		w := exclusiveCount(c)
		if w == 0 || current != rw.sync.ExclusiveOwner() {
			return false
		}
		if w == rwMaxCount {
			panic("esync: rwmutex write hold count exceeds 65535")
		}
	}
	if !rw.sync.state.CompareAndSwap(c, c+1) {
		return false
	}
	rw.sync.SetExclusiveOwner(current)
	return true
}

// TryLockFor acquires the write lock like LockInterruptibly but gives up
// after d, returning false.
func (rw *RWMutex) TryLockFor(d time.Duration) (bool, error) {
	return rw.sync.tryAcquireNanos(1, int64(d))
}

// Unlock releases one write hold; fully releasing lets readers and writers
// contend again.  Panics if the caller does not hold the write lock.
func (rw *RWMutex) Unlock() {
	rw.sync.Release(1)
}

// NewCondition returns a Condition bound to the write lock.
func (rw *RWMutex) NewCondition() *Condition {
	return &Condition{s: &rw.sync.Synchronizer}
}

// Reader API.

// RLock acquires the read lock, blocking while another thread holds the
// write lock.
func (rw *RWMutex) RLock() {
	rw.sync.AcquireShared(1)
}

// RLockInterruptibly acquires the read lock unless interrupted.
func (rw *RWMutex) RLockInterruptibly() error {
	return rw.sync.AcquireSharedInterruptibly(1)
}

// TryRLock acquires the read lock without blocking, barging past any queue
// regardless of policy.
func (rw *RWMutex) TryRLock() bool {
	current := ethread.Current()
	for {
		c := rw.sync.state.Load()
		if exclusiveCount(c) != 0 && rw.sync.ExclusiveOwner() != current {
			return false
		}
		r := sharedCount(c)
		if r == rwMaxCount {
			panic("esync: rwmutex read hold count exceeds 65535")
		}
		if rw.sync.state.CompareAndSwap(c, c+rwSharedUnit) {
			if r == 0 {
				rw.sync.firstReader.Store(current)
				rw.sync.firstReaderHoldCount.Store(1)
			} else if rw.sync.firstReader.Load() == current {
				rw.sync.firstReaderHoldCount.Add(1)
			} else {
				rh := rw.sync.cachedHoldCounter.Load()
				if rh == nil || rh.tid != current.ID() {
					rh = rw.sync.readHolds.Get()
					rw.sync.cachedHoldCounter.Store(rh)
				}
				rh.count++
			}
			return true
		}
	}
}

// TryRLockFor acquires the read lock like RLockInterruptibly but gives up
// after d, returning false.
func (rw *RWMutex) TryRLockFor(d time.Duration) (bool, error) {
	return rw.sync.tryAcquireSharedNanos(1, int64(d))
}

// RUnlock releases one read hold.  Panics if the calling thread holds no
// read lock.
func (rw *RWMutex) RUnlock() {
	rw.sync.ReleaseShared(1)
}

// Inspection.

// IsFair reports the fairness policy.
func (rw *RWMutex) IsFair() bool {
	return rw.sync.fair
}

// ReaderCount returns the total number of read holds across all threads.
func (rw *RWMutex) ReaderCount() int32 {
	return sharedCount(rw.sync.state.Load())
}

// IsWriteLocked reports whether any thread holds the write lock.
func (rw *RWMutex) IsWriteLocked() bool {
	return exclusiveCount(rw.sync.state.Load()) != 0
}

// IsWriteLockedByCurrentThread reports whether the calling thread holds the
// write lock.
func (rw *RWMutex) IsWriteLockedByCurrentThread() bool {
	return rw.sync.IsHeldExclusively()
}

// WriteHoldCount returns the calling thread's write holds.
func (rw *RWMutex) WriteHoldCount() int32 {
	if !rw.sync.IsHeldExclusively() {
		return 0
	}
	return exclusiveCount(rw.sync.state.Load())
}

// ReadHoldCount returns the calling thread's read holds.
func (rw *RWMutex) ReadHoldCount() int32 {
	if rw.ReaderCount() == 0 {
		return 0
	}
	current := ethread.Current()
	if rw.sync.firstReader.Load() == current {
		return rw.sync.firstReaderHoldCount.Load()
	}
	if rh := rw.sync.cachedHoldCounter.Load(); rh != nil && rh.tid == current.ID() {
		return rh.count
	}
	return rw.sync.readHolds.Get().count
}

// HasQueuedThreads reports whether any thread is queued for either lock.
func (rw *RWMutex) HasQueuedThreads() bool {
	return rw.sync.HasQueuedThreads()
}

// QueueLength returns an estimate of the number of queued threads.
func (rw *RWMutex) QueueLength() int {
	return rw.sync.QueueLength()
}
