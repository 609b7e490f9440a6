// Copyright 2026 The goefc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package esync

import "runtime"
import "sync/atomic"

// A SpinLock is a non-reentrant test-and-set lock that never parks: waiters
// burn a short exponential delay loop, then yield to the scheduler.  Only
// worth using for critical sections of a few instructions where the queue
// machinery of Mutex costs more than the spin; anything that can block
// while holding it should use Mutex instead.
//
// The zero SpinLock is unlocked and ready to use.
type SpinLock struct {
	word uint32
}

// spinDelay delays resumption of a spin loop, briefly at first and then by
// yielding to the scheduler.
//
// Usage:
//	var attempts uint
//	for try_something {
//		attempts = spinDelay(attempts)
//	}
func spinDelay(attempts uint) uint {
	if attempts < 7 {
		for i := 0; i != 1<<attempts; i++ {
		}
		attempts++
	} else {
		runtime.Gosched()
	}
	return attempts
}

// Lock spins until the lock is acquired.
func (l *SpinLock) Lock() {
	var attempts uint
	for !atomic.CompareAndSwapUint32(&l.word, 0, 1) { // acquire CAS
		attempts = spinDelay(attempts)
	}
}

// TryLock acquires the lock iff it is free right now.
func (l *SpinLock) TryLock() bool {
	return atomic.CompareAndSwapUint32(&l.word, 0, 1) // acquire CAS
}

// Unlock releases the lock.  It panics if the lock is not held.
func (l *SpinLock) Unlock() {
	if atomic.LoadUint32(&l.word) == 0 {
		panic("esync: unlock of free SpinLock")
	}
	atomic.StoreUint32(&l.word, 0) // release store
}
