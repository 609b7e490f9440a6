// Copyright 2026 The goefc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package equeue_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxxjava/goefc/equeue"
	"github.com/cxxjava/goefc/esync"
	"github.com/cxxjava/goefc/ethread"
)

// TestSQNoCounterpartFailsFast checks the non-blocking operations with
// nobody on the other side: offer with no consumer is false, poll with no
// producer is empty.
func TestSQNoCounterpartFailsFast(t *testing.T) {
	q := equeue.NewSynchronousQueue[int](false)
	assert.False(t, q.Offer(1), "Offer succeeded with no waiting consumer")
	_, ok := q.Poll()
	assert.False(t, ok, "Poll succeeded with no waiting producer")
	assert.Equal(t, int32(0), q.Size())
	assert.Equal(t, int32(0), q.RemainingCapacity())
	assert.True(t, q.IsEmpty())
	_, ok = q.Peek()
	assert.False(t, ok)
}

// TestSQTakeThenPut checks the handoff when the consumer arrives first.
func TestSQTakeThenPut(t *testing.T) {
	q := equeue.NewSynchronousQueue[int](false)
	got := make(chan int)
	ethread.Go(func() {
		x, err := q.Take()
		assert.NoError(t, err)
		got <- x
	})
	time.Sleep(20 * time.Millisecond) // let the consumer park
	require.NoError(t, q.Put(42))
	assert.Equal(t, 42, <-got)
}

// TestSQPutThenTake checks the handoff when the producer arrives first.
func TestSQPutThenTake(t *testing.T) {
	q := equeue.NewSynchronousQueue[string](false)
	done := make(chan error)
	ethread.Go(func() { done <- q.Put("x") })
	select {
	case <-done:
		t.Fatal("Put returned with no consumer")
	case <-time.After(30 * time.Millisecond):
	}
	x, err := q.Take()
	require.NoError(t, err)
	assert.Equal(t, "x", x)
	require.NoError(t, <-done)
}

// TestSQOfferToWaitingConsumer checks that a non-blocking Offer succeeds
// once a consumer is parked.
func TestSQOfferToWaitingConsumer(t *testing.T) {
	q := equeue.NewSynchronousQueue[int](false)
	got := make(chan int)
	ethread.Go(func() {
		x, err := q.Take()
		assert.NoError(t, err)
		got <- x
	})
	// Retry until the consumer has enqueued itself.
	for !q.Offer(5) {
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, 5, <-got)
}

// TestSQTimedHandoff checks OfferFor/PollFor expiry and success.
func TestSQTimedHandoff(t *testing.T) {
	q := equeue.NewSynchronousQueue[int](false)

	ok, err := q.OfferFor(1, 30*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok, "timed offer succeeded with no consumer")

	_, ok, err = q.PollFor(30 * time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok, "timed poll succeeded with no producer")

	ethread.Go(func() {
		time.Sleep(20 * time.Millisecond)
		assert.NoError(t, q.Put(8))
	})
	x, ok, err := q.PollFor(5 * time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 8, x)
}

// TestSQPairedStream streams values through the handoff and checks nothing
// is lost or duplicated.
func TestSQPairedStream(t *testing.T) {
	const n = 20000
	for _, fair := range []bool{false, true} {
		q := equeue.NewSynchronousQueue[int](fair)
		done := esync.NewCountDownLatch(1)
		ethread.Go(func() {
			defer done.CountDown()
			for i := 0; i < n; i++ {
				if err := q.Put(i); err != nil {
					t.Errorf("put: %v", err)
					return
				}
			}
		})
		sum := 0
		for i := 0; i < n; i++ {
			x, err := q.Take()
			require.NoError(t, err)
			sum += x
		}
		require.Equal(t, n*(n-1)/2, sum)
		ok, err := done.AwaitFor(time.Minute)
		require.NoError(t, err)
		require.True(t, ok, "producer wedged (fair=%v)", fair)
	}
}

// TestSQFairServesFIFO checks that a fair queue matches producers to the
// longest-waiting consumer.
func TestSQFairServesFIFO(t *testing.T) {
	q := equeue.NewSynchronousQueue[int](true)
	const consumers = 3
	order := make(chan int, consumers)
	for i := 0; i < consumers; i++ {
		i := i
		ethread.Go(func() {
			if _, err := q.Take(); err != nil {
				t.Errorf("take: %v", err)
				return
			}
			order <- i
		})
		time.Sleep(20 * time.Millisecond) // serialize arrival order
	}
	for i := 0; i < consumers; i++ {
		require.NoError(t, q.Put(i))
		if got := <-order; got != i {
			t.Fatalf("fair handoff served consumer %d before %d", got, i)
		}
	}
}

// TestSQCancelledConsumerRetried checks that a producer skips a consumer
// whose timed wait expired and delivers to a live one.
func TestSQCancelledConsumerRetried(t *testing.T) {
	q := equeue.NewSynchronousQueue[int](true)
	// First consumer gives up quickly.
	expired := make(chan bool)
	ethread.Go(func() {
		_, ok, err := q.PollFor(20 * time.Millisecond)
		assert.NoError(t, err)
		expired <- ok
	})
	assert.False(t, <-expired, "doomed consumer got an element")

	// Second consumer stays; the Put must reach it even though the first
	// consumer's node may still be queued in CANCEL state.
	got := make(chan int)
	ethread.Go(func() {
		x, err := q.Take()
		assert.NoError(t, err)
		got <- x
	})
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, q.Put(9))
	assert.Equal(t, 9, <-got)
}

// TestSQInterruptBlockedPut interrupts a parked producer.
func TestSQInterruptBlockedPut(t *testing.T) {
	q := equeue.NewSynchronousQueue[int](false)
	waiting := make(chan *ethread.Thread)
	result := make(chan error)
	ethread.Go(func() {
		waiting <- ethread.Current()
		result <- q.Put(1)
	})
	th := <-waiting
	time.Sleep(20 * time.Millisecond)
	th.Interrupt()
	assert.Equal(t, esync.ErrInterrupted, <-result)
	// The cancelled producer must not leave a deliverable element behind.
	_, ok := q.Poll()
	assert.False(t, ok)
}

// TestSQDrain drains only what producers are already waiting to hand over.
func TestSQDrain(t *testing.T) {
	q := equeue.NewSynchronousQueue[int](true)
	const producers = 3
	for i := 0; i < producers; i++ {
		i := i
		ethread.Go(func() { _ = q.Put(i) })
	}
	deadline := time.Now().Add(5 * time.Second)
	var got []int
	for len(got) < producers {
		got = append(got, q.Drain(producers-len(got))...)
		if time.Now().After(deadline) {
			t.Fatalf("drained only %d of %d", len(got), producers)
		}
		time.Sleep(time.Millisecond)
	}
	assert.Len(t, got, producers)
	assert.Equal(t, 0, len(q.Drain(1)))
}
