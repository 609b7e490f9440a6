// Copyright 2026 The goefc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package esync_test

import "testing"
import "time"

import "github.com/cxxjava/goefc/esync"
import "github.com/cxxjava/goefc/ethread"

// A booleanLatch is a minimal consumer of the exported kernel: a one-shot
// gate that opens on the first Fire and admits shared acquirers forever
// after.  It exists to test building a synchronizer outside this package.
type booleanLatch struct {
	esync.Synchronizer
	esync.HooksBase
}

func newBooleanLatch() *booleanLatch {
	l := &booleanLatch{}
	l.Init(l)
	return l
}

func (l *booleanLatch) TryAcquireShared(int32) int32 {
	if l.State() != 0 {
		return 1
	}
	return -1
}

func (l *booleanLatch) TryReleaseShared(int32) bool {
	l.SetState(1)
	return true
}

func (l *booleanLatch) Fire() { l.ReleaseShared(1) }

func (l *booleanLatch) Wait() error { return l.AcquireSharedInterruptibly(1) }

// TestCustomSynchronizer drives the booleanLatch: waiters park until Fire,
// then everyone (including late arrivals) passes.
func TestCustomSynchronizer(t *testing.T) {
	latch := newBooleanLatch()
	const waiters = 3
	passed := esync.NewCountDownLatch(waiters)
	for i := 0; i < waiters; i++ {
		ethread.Go(func() {
			if err := latch.Wait(); err != nil {
				t.Errorf("Wait: %v", err)
				return
			}
			passed.CountDown()
		})
	}
	if ok, _ := passed.AwaitFor(50 * time.Millisecond); ok {
		t.Fatal("waiters passed an unfired latch")
	}
	latch.Fire()
	if ok, err := passed.AwaitFor(5 * time.Second); err != nil || !ok {
		t.Fatalf("waiters stuck after Fire (ok=%v err=%v)", ok, err)
	}
	if err := latch.Wait(); err != nil { // late arrival
		t.Fatalf("late Wait: %v", err)
	}
}

// TestSynchronizerQueueInspection checks the inspection methods against a
// held exclusive synchronizer with queued waiters.
func TestSynchronizerQueueInspection(t *testing.T) {
	mu := esync.NewMutex(false)
	mu.Lock()
	const waiters = 3
	started := esync.NewCountDownLatch(waiters)
	for i := 0; i < waiters; i++ {
		ethread.Go(func() {
			started.CountDown()
			mu.Lock()
			mu.Unlock()
		})
	}
	if err := started.Await(); err != nil {
		t.Fatal(err)
	}
	// Wait for all three to reach the queue.
	deadline := time.Now().Add(5 * time.Second)
	for mu.QueueLength() != waiters {
		if time.Now().After(deadline) {
			t.Fatalf("queue length never reached %d (got %d)", waiters, mu.QueueLength())
		}
		time.Sleep(time.Millisecond)
	}
	if !mu.HasQueuedThreads() {
		t.Fatal("HasQueuedThreads false with queued waiters")
	}
	mu.Unlock()
	for mu.QueueLength() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("queue never drained")
		}
		time.Sleep(time.Millisecond)
	}
}
