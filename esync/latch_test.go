// Copyright 2026 The goefc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package esync_test

import "testing"
import "time"

import "github.com/cxxjava/goefc/esync"
import "github.com/cxxjava/goefc/ethread"

// TestLatchReleasesAllWaiters checks that the final CountDown propagates to
// every waiter: three awaiters, three counts from one thread, all released.
func TestLatchReleasesAllWaiters(t *testing.T) {
	latch := esync.NewCountDownLatch(3)
	const waiters = 3
	released := esync.NewCountDownLatch(waiters)
	for i := 0; i < waiters; i++ {
		ethread.Go(func() {
			if err := latch.Await(); err != nil {
				t.Errorf("Await: %v", err)
				return
			}
			released.CountDown()
		})
	}
	time.Sleep(20 * time.Millisecond) // let them park
	for i := 0; i < 3; i++ {
		if got := latch.Count(); got != int32(3-i) {
			t.Fatalf("count before CountDown %d: want %d, got %d", i, 3-i, got)
		}
		latch.CountDown()
	}
	if ok, err := released.AwaitFor(5 * time.Second); err != nil || !ok {
		t.Fatalf("waiters left parked after count reached zero (ok=%v err=%v)", ok, err)
	}
	if got := latch.Count(); got != 0 {
		t.Fatalf("final count: want 0, got %d", got)
	}
}

// TestLatchZeroCountIsOpen checks that a zero-count latch never blocks.
func TestLatchZeroCountIsOpen(t *testing.T) {
	latch := esync.NewCountDownLatch(0)
	done := make(chan error)
	ethread.Go(func() { done <- latch.Await() })
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Await on open latch: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Await on a zero-count latch blocked")
	}
}

// TestLatchCountDownPastZero checks that extra counts are no-ops.
func TestLatchCountDownPastZero(t *testing.T) {
	latch := esync.NewCountDownLatch(1)
	latch.CountDown()
	latch.CountDown()
	if got := latch.Count(); got != 0 {
		t.Fatalf("count went past zero: %d", got)
	}
}

// TestLatchAwaitFor checks the timed wait on a latch that never opens and
// on one that opens late.
func TestLatchAwaitFor(t *testing.T) {
	latch := esync.NewCountDownLatch(1)
	ok, err := latch.AwaitFor(30 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("timed wait on a closed latch reported open")
	}
	got := make(chan bool)
	ethread.Go(func() {
		ok, err := latch.AwaitFor(5 * time.Second)
		if err != nil {
			t.Errorf("AwaitFor: %v", err)
		}
		got <- ok
	})
	time.Sleep(20 * time.Millisecond)
	latch.CountDown()
	if !<-got {
		t.Fatal("timed wait missed the final count")
	}
}

// TestLatchAwaitInterruptible checks that a parked Await can be interrupted.
func TestLatchAwaitInterruptible(t *testing.T) {
	latch := esync.NewCountDownLatch(1)
	waiting := make(chan *ethread.Thread)
	result := make(chan error)
	ethread.Go(func() {
		waiting <- ethread.Current()
		result <- latch.Await()
	})
	th := <-waiting
	time.Sleep(20 * time.Millisecond)
	th.Interrupt()
	if err := <-result; err != esync.ErrInterrupted {
		t.Fatalf("want ErrInterrupted, got %v", err)
	}
}

// TestLatchNegativeCountPanics checks construction validation.
func TestLatchNegativeCountPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewCountDownLatch(-1) did not panic")
		}
	}()
	esync.NewCountDownLatch(-1)
}
