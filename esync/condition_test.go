// Copyright 2026 The goefc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package esync_test

import "testing"
import "time"

import "github.com/cxxjava/goefc/esync"
import "github.com/cxxjava/goefc/ethread"

// A cvQueue is a tiny bounded buffer guarded by a Mutex and two Conditions,
// used to exercise condition waits the way a real producer/consumer pair
// would.
type cvQueue struct {
	mu       *esync.Mutex
	nonEmpty *esync.Condition
	nonFull  *esync.Condition
	limit    int
	data     []int
}

func newCVQueue(limit int) *cvQueue {
	q := &cvQueue{mu: esync.NewMutex(false), limit: limit}
	q.nonEmpty = q.mu.NewCondition()
	q.nonFull = q.mu.NewCondition()
	return q
}

func (q *cvQueue) put(v int) {
	q.mu.Lock()
	for len(q.data) == q.limit {
		q.nonFull.AwaitUninterruptibly()
	}
	q.data = append(q.data, v)
	q.nonEmpty.Signal()
	q.mu.Unlock()
}

func (q *cvQueue) get() int {
	q.mu.Lock()
	for len(q.data) == 0 {
		q.nonEmpty.AwaitUninterruptibly()
	}
	v := q.data[0]
	q.data = q.data[1:]
	q.nonFull.Signal()
	q.mu.Unlock()
	return v
}

// TestConditionProducerConsumer passes a stream of integers through a
// 10-element cvQueue from several producers to one consumer and checks the
// sum arrives intact.
func TestConditionProducerConsumer(t *testing.T) {
	const producers = 4
	const perProducer = 10000
	q := newCVQueue(10)
	for p := 0; p < producers; p++ {
		ethread.Go(func() {
			for i := 1; i <= perProducer; i++ {
				q.put(i)
			}
		})
	}
	sum := 0
	for i := 0; i < producers*perProducer; i++ {
		sum += q.get()
	}
	want := producers * perProducer * (perProducer + 1) / 2
	if sum != want {
		t.Fatalf("sum over queue: want %d, got %d", want, sum)
	}
}

// TestConditionSignalWakesWaiter checks the basic wait/signal handshake and
// that Await releases the lock while parked.
func TestConditionSignalWakesWaiter(t *testing.T) {
	mu := esync.NewMutex(false)
	cond := mu.NewCondition()
	ready := false
	woke := make(chan error)
	ethread.Go(func() {
		mu.Lock()
		var err error
		for !ready && err == nil {
			err = cond.Await()
		}
		mu.Unlock()
		woke <- err
	})
	// The waiter must have released the lock or these Locks would deadlock;
	// retry until it shows up on the condition list.
	for {
		mu.Lock()
		if cond.HasWaiters() {
			ready = true
			cond.Signal()
			mu.Unlock()
			break
		}
		mu.Unlock()
		time.Sleep(time.Millisecond)
	}
	if err := <-woke; err != nil {
		t.Fatalf("Await returned %v", err)
	}
}

// TestConditionInterruptBeforeSignal interrupts a waiter before any signal
// is sent: the wait must fail with ErrInterrupted, the flag must be cleared
// on return, and no signal may be consumed on its behalf.
func TestConditionInterruptBeforeSignal(t *testing.T) {
	mu := esync.NewMutex(false)
	cond := mu.NewCondition()
	waiting := make(chan *ethread.Thread)
	result := make(chan error)
	flag := make(chan bool)
	ethread.Go(func() {
		mu.Lock()
		waiting <- ethread.Current()
		err := cond.Await()
		mu.Unlock()
		result <- err
		flag <- ethread.Current().IsInterrupted()
	})
	th := <-waiting
	time.Sleep(20 * time.Millisecond) // let it park on the condition
	th.Interrupt()
	if err := <-result; err != esync.ErrInterrupted {
		t.Fatalf("want ErrInterrupted, got %v", err)
	}
	if <-flag {
		t.Error("interrupt flag not cleared by interrupted Await")
	}

	// A second waiter must still need its own signal: the interrupt above
	// must not have consumed one.
	signalled := false
	woke := make(chan bool)
	ethread.Go(func() {
		mu.Lock()
		for !signalled {
			if err := cond.Await(); err != nil {
				t.Errorf("second Await: %v", err)
				break
			}
		}
		mu.Unlock()
		woke <- true
	})
	select {
	case <-woke:
		t.Fatal("second waiter woke with no signal")
	case <-time.After(50 * time.Millisecond):
	}
	mu.Lock()
	signalled = true
	cond.Signal()
	mu.Unlock()
	<-woke
}

// TestConditionInterruptAfterSignal delivers a signal and then an
// interrupt: the wait completes normally and the flag stays set for the
// caller to observe.
func TestConditionInterruptAfterSignal(t *testing.T) {
	mu := esync.NewMutex(false)
	cond := mu.NewCondition()
	waiting := make(chan *ethread.Thread)
	result := make(chan error)
	flag := make(chan bool)
	ethread.Go(func() {
		mu.Lock()
		waiting <- ethread.Current()
		err := cond.Await()
		mu.Unlock()
		result <- err
		flag <- ethread.Interrupted()
	})
	th := <-waiting
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	cond.Signal() // moves the waiter to the sync queue before the interrupt
	th.Interrupt()
	mu.Unlock()
	if err := <-result; err != nil {
		t.Fatalf("signalled Await failed: %v", err)
	}
	if !<-flag {
		t.Error("interrupt after signal was not re-asserted on the thread")
	}
}

// TestConditionAwaitForTimesOut checks the timed wait in both directions.
func TestConditionAwaitForTimesOut(t *testing.T) {
	mu := esync.NewMutex(false)
	cond := mu.NewCondition()

	mu.Lock()
	ok, err := cond.AwaitFor(30 * time.Millisecond)
	mu.Unlock()
	if err != nil {
		t.Fatalf("timed wait failed: %v", err)
	}
	if ok {
		t.Fatal("unsignalled timed wait reported success")
	}

	woke := make(chan bool)
	ethread.Go(func() {
		mu.Lock()
		ok, err := cond.AwaitFor(5 * time.Second)
		mu.Unlock()
		if err != nil {
			t.Errorf("timed wait failed: %v", err)
		}
		woke <- ok
	})
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	cond.Signal()
	mu.Unlock()
	if !<-woke {
		t.Fatal("signalled timed wait reported timeout")
	}
}

// TestConditionSignalAll wakes every waiter with one call.
func TestConditionSignalAll(t *testing.T) {
	const n = 4
	mu := esync.NewMutex(false)
	cond := mu.NewCondition()
	proceed := false
	done := esync.NewCountDownLatch(n)
	started := esync.NewCountDownLatch(n)
	for i := 0; i < n; i++ {
		ethread.Go(func() {
			mu.Lock()
			started.CountDown()
			for !proceed {
				cond.AwaitUninterruptibly()
			}
			mu.Unlock()
			done.CountDown()
		})
	}
	if err := started.Await(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond) // let them all park
	mu.Lock()
	proceed = true
	cond.SignalAll()
	mu.Unlock()
	if ok, err := done.AwaitFor(5 * time.Second); err != nil || !ok {
		t.Fatalf("not all waiters woke (ok=%v err=%v)", ok, err)
	}
}

// TestConditionWithoutLockPanics checks the monitor-state enforcement.
func TestConditionWithoutLockPanics(t *testing.T) {
	mu := esync.NewMutex(false)
	cond := mu.NewCondition()
	for name, op := range map[string]func(){
		"Signal":    func() { cond.Signal() },
		"SignalAll": func() { cond.SignalAll() },
		"Await":     func() { _ = cond.Await() },
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("%s without the lock did not panic", name)
				}
			}()
			op()
		}()
	}
}
