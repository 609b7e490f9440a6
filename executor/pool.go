// Copyright 2026 The goefc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package executor provides a fixed-size worker pool over a blocking task
// queue.  The pool exists for the queue-and-wake discipline: workers block
// in Take when idle, a submitted task wakes exactly one of them, and
// shutdown interrupts the idle Takes rather than polling.
package executor

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/cxxjava/goefc/elog"
	"github.com/cxxjava/goefc/esync"
	"github.com/cxxjava/goefc/ethread"
)

// A Task is one unit of work.
type Task func()

// BlockingQueue is the task-queue contract the pool depends on; both
// equeue.LinkedBlockingQueue[Task] and equeue.SynchronousQueue[Task]
// satisfy it.  Take must block until an element arrives or the calling
// thread is interrupted, and PollFor must bound that wait.
type BlockingQueue interface {
	Put(t Task) error
	Offer(t Task) bool
	Take() (Task, error)
	PollFor(d time.Duration) (Task, bool, error)
	Size() int32
}

// ErrShutdown is returned by Submit after Shutdown has been called.
var ErrShutdown = errors.New("executor: pool is shut down")

// A Pool runs submitted tasks on a fixed set of worker threads that share
// one blocking queue.  Create with NewPool; the zero Pool is not usable.
type Pool struct {
	queue   BlockingQueue
	workers []*ethread.Thread

	shutdown   atomic.Bool
	completed  atomic.Int64
	terminated *esync.CountDownLatch
}

// NewPool starts nWorkers workers consuming from queue.  nWorkers < 1
// panics.
func NewPool(nWorkers int, queue BlockingQueue) *Pool {
	if nWorkers <= 0 {
		panic("executor: pool needs at least one worker")
	}
	p := &Pool{
		queue:      queue,
		terminated: esync.NewCountDownLatch(int32(nWorkers)),
	}
	p.workers = make([]*ethread.Thread, nWorkers)
	for i := 0; i < nWorkers; i++ {
		i := i
		p.workers[i] = ethread.Go(func() { p.workerLoop(i) })
	}
	return p
}

// workerLoop is the body of each worker: block in Take, run, repeat.  An
// interrupt only matters once shutdown is in progress; a stray one is
// swallowed and the worker goes back to waiting.
func (p *Pool) workerLoop(id int) {
	defer p.terminated.CountDown()
	elog.Log.VI(1).Infof("executor: worker %d started", id)
	for {
		if p.shutdown.Load() {
			elog.Log.VI(1).Infof("executor: worker %d exiting", id)
			return
		}
		task, err := p.queue.Take()
		if err != nil {
			// Interrupted.  If this was not the shutdown interrupt, the
			// loop re-checks and goes back to waiting.
			continue
		}
		p.runTask(id, task)
	}
}

// runTask runs one task, keeping a panicking task from taking the worker
// down with it.
func (p *Pool) runTask(id int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			elog.Log.Errorf("executor: worker %d: task panicked: %v", id, r)
		}
		p.completed.Add(1)
	}()
	elog.Log.VI(2).Infof("executor: worker %d running task", id)
	task()
}

// Submit enqueues a task, blocking while the queue is full.  It fails with
// ErrShutdown once the pool is shutting down, or esync.ErrInterrupted if
// the calling thread is interrupted while blocked.
func (p *Pool) Submit(t Task) error {
	if p.shutdown.Load() {
		return ErrShutdown
	}
	return p.queue.Put(t)
}

// TrySubmit enqueues a task only if the queue has room (or, for a handoff
// queue, a worker is already waiting).
func (p *Pool) TrySubmit(t Task) bool {
	if p.shutdown.Load() {
		return false
	}
	return p.queue.Offer(t)
}

// Shutdown stops the pool: no new tasks are accepted, and each worker exits
// after the Take it is blocked in (or the task it is running) finishes.
// Tasks still queued are abandoned; drain the queue first if they matter.
func (p *Pool) Shutdown() {
	if p.shutdown.Swap(true) {
		return
	}
	elog.Log.VI(1).Info("executor: shutting down")
	for _, w := range p.workers {
		w.Interrupt()
	}
}

// AwaitTermination blocks until every worker has exited or d elapses,
// reporting whether termination completed.
func (p *Pool) AwaitTermination(d time.Duration) (bool, error) {
	return p.terminated.AwaitFor(d)
}

// CompletedTasks returns the number of tasks that have finished running.
func (p *Pool) CompletedTasks() int64 {
	return p.completed.Load()
}

// QueuedTasks returns the current task-queue size.
func (p *Pool) QueuedTasks() int32 {
	return p.queue.Size()
}
