// Copyright 2026 The goefc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package esync_test

import "testing"

import "github.com/cxxjava/goefc/esync"
import "github.com/cxxjava/goefc/ethread"

// TestSpinLockCounting checks mutual exclusion under a few threads.
func TestSpinLockCounting(t *testing.T) {
	const nThreads = 4
	const loops = 50000
	var lock esync.SpinLock
	done := esync.NewCountDownLatch(nThreads)
	counter := 0
	for i := 0; i < nThreads; i++ {
		ethread.Go(func() {
			defer done.CountDown()
			for n := 0; n < loops; n++ {
				lock.Lock()
				counter++
				lock.Unlock()
			}
		})
	}
	if err := done.Await(); err != nil {
		t.Fatal(err)
	}
	if counter != nThreads*loops {
		t.Fatalf("spinlock lost updates: want %d, got %d", nThreads*loops, counter)
	}
}

// TestSpinLockTryLock checks TryLock on held and free locks.
func TestSpinLockTryLock(t *testing.T) {
	var lock esync.SpinLock
	if !lock.TryLock() {
		t.Fatal("TryLock failed on a free lock")
	}
	if lock.TryLock() {
		t.Fatal("TryLock succeeded on a held lock")
	}
	lock.Unlock()
	if !lock.TryLock() {
		t.Fatal("TryLock failed after unlock")
	}
	lock.Unlock()
}

// TestSpinLockUnlockFreePanics checks misuse detection.
func TestSpinLockUnlockFreePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Unlock of a free SpinLock did not panic")
		}
	}()
	var lock esync.SpinLock
	lock.Unlock()
}
