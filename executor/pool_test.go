// Copyright 2026 The goefc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor_test

import "testing"
import "time"

import "github.com/cxxjava/goefc/equeue"
import "github.com/cxxjava/goefc/esync"
import "github.com/cxxjava/goefc/executor"

// TestPoolRunsTasks submits a batch of tasks and checks they all complete.
func TestPoolRunsTasks(t *testing.T) {
	pool := executor.NewPool(4, equeue.NewLinkedBlockingQueue[executor.Task](16))
	const tasks = 200
	done := esync.NewCountDownLatch(tasks)
	for i := 0; i < tasks; i++ {
		if err := pool.Submit(func() { done.CountDown() }); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if ok, err := done.AwaitFor(time.Minute); err != nil || !ok {
		t.Fatalf("tasks did not complete (ok=%v err=%v)", ok, err)
	}
	pool.Shutdown()
	if ok, err := pool.AwaitTermination(10 * time.Second); err != nil || !ok {
		t.Fatalf("pool did not terminate (ok=%v err=%v)", ok, err)
	}
	if got := pool.CompletedTasks(); got != tasks {
		t.Fatalf("completed count: want %d, got %d", tasks, got)
	}
}

// TestPoolShutdownInterruptsIdleWorkers shuts down a pool whose workers are
// all parked in Take and checks they exit.
func TestPoolShutdownInterruptsIdleWorkers(t *testing.T) {
	pool := executor.NewPool(3, equeue.NewLinkedBlockingQueue[executor.Task](4))
	time.Sleep(20 * time.Millisecond) // let the workers park
	pool.Shutdown()
	if ok, err := pool.AwaitTermination(10 * time.Second); err != nil || !ok {
		t.Fatalf("idle workers did not exit (ok=%v err=%v)", ok, err)
	}
	if err := pool.Submit(func() {}); err != executor.ErrShutdown {
		t.Fatalf("Submit after Shutdown: want ErrShutdown, got %v", err)
	}
}

// TestPoolSurvivesPanickingTask checks that a panicking task does not take
// its worker down.
func TestPoolSurvivesPanickingTask(t *testing.T) {
	pool := executor.NewPool(1, equeue.NewLinkedBlockingQueue[executor.Task](4))
	if err := pool.Submit(func() { panic("task gone wrong") }); err != nil {
		t.Fatal(err)
	}
	done := esync.NewCountDownLatch(1)
	if err := pool.Submit(func() { done.CountDown() }); err != nil {
		t.Fatal(err)
	}
	if ok, err := done.AwaitFor(10 * time.Second); err != nil || !ok {
		t.Fatalf("worker died with the panicking task (ok=%v err=%v)", ok, err)
	}
	pool.Shutdown()
	if ok, err := pool.AwaitTermination(10 * time.Second); err != nil || !ok {
		t.Fatalf("pool did not terminate (ok=%v err=%v)", ok, err)
	}
}

// TestPoolWithHandoffQueue runs the pool over a SynchronousQueue, where
// every Submit rendezvouses with a worker.
func TestPoolWithHandoffQueue(t *testing.T) {
	pool := executor.NewPool(2, equeue.NewSynchronousQueue[executor.Task](false))
	const tasks = 50
	done := esync.NewCountDownLatch(tasks)
	for i := 0; i < tasks; i++ {
		if err := pool.Submit(func() { done.CountDown() }); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if ok, err := done.AwaitFor(time.Minute); err != nil || !ok {
		t.Fatalf("tasks did not complete (ok=%v err=%v)", ok, err)
	}
	pool.Shutdown()
	if ok, err := pool.AwaitTermination(10 * time.Second); err != nil || !ok {
		t.Fatalf("pool did not terminate (ok=%v err=%v)", ok, err)
	}
}
