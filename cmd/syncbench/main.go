// Copyright 2026 The goefc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command syncbench drives the synchronization primitives under contention
// and reports throughput.  It exists to smoke-test the locks, queues and
// pool on a real scheduler rather than to be a rigorous benchmark.
//
// Example:
//	syncbench --bench rwmutex --threads 8 --iters 200000 --fair
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/cxxjava/goefc/elog"
	"github.com/cxxjava/goefc/equeue"
	"github.com/cxxjava/goefc/esync"
	"github.com/cxxjava/goefc/ethread"
	"github.com/cxxjava/goefc/executor"
)

var (
	benchName = pflag.String("bench", "mutex", "benchmark to run: mutex|rwmutex|semaphore|latch|barrier|queue|handoff|pool")
	threads   = pflag.Int("threads", 4, "number of concurrent threads")
	iters     = pflag.Int("iters", 100000, "iterations per thread")
	fair      = pflag.Bool("fair", false, "use the fair variant of the primitive")
	capacity  = pflag.Int32("capacity", 1024, "bounded queue capacity")
	verbosity = elog.Level(0)
)

func main() {
	pflag.Var(&verbosity, "v", "log verbosity level")
	pflag.Parse()
	if err := elog.Log.Configure(elog.LogToStderr(true), verbosity); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	benches := map[string]func() int{
		"mutex":     benchMutex,
		"rwmutex":   benchRWMutex,
		"semaphore": benchSemaphore,
		"latch":     benchLatch,
		"barrier":   benchBarrier,
		"queue":     benchQueue,
		"handoff":   benchHandoff,
		"pool":      benchPool,
	}
	bench, ok := benches[*benchName]
	if !ok {
		elog.Log.Fatalf("unknown benchmark %q", *benchName)
	}

	elog.Log.VI(1).Infof("running %s: threads=%d iters=%d fair=%v",
		*benchName, *threads, *iters, *fair)
	start := time.Now()
	ops := bench()
	elapsed := time.Since(start)
	elog.Log.Infof("%s: %d ops in %v (%.0f ops/sec)",
		*benchName, ops, elapsed, float64(ops)/elapsed.Seconds())
	elog.Log.FlushLog()
}

// runThreads starts *threads copies of body and waits for all of them via a
// latch.
func runThreads(body func(id int)) {
	done := esync.NewCountDownLatch(int32(*threads))
	for i := 0; i < *threads; i++ {
		i := i
		ethread.Go(func() {
			defer done.CountDown()
			body(i)
		})
	}
	if err := done.Await(); err != nil {
		elog.Log.Fatalf("wait for threads: %v", err)
	}
}

func benchMutex() int {
	mu := esync.NewMutex(*fair)
	counter := 0
	runThreads(func(int) {
		for i := 0; i < *iters; i++ {
			mu.Lock()
			counter++
			mu.Unlock()
		}
	})
	want := *threads * *iters
	if counter != want {
		elog.Log.Fatalf("lost updates: want %d, got %d", want, counter)
	}
	return counter
}

func benchRWMutex() int {
	rw := esync.NewRWMutex(*fair)
	counter := 0
	runThreads(func(id int) {
		for i := 0; i < *iters; i++ {
			if i%10 == 0 { // 1 write per 9 reads
				rw.Lock()
				counter++
				rw.Unlock()
			} else {
				rw.RLock()
				_ = counter
				rw.RUnlock()
			}
		}
	})
	return *threads * *iters
}

func benchSemaphore() int {
	sem := esync.NewSemaphore(int32(*threads/2+1), *fair)
	runThreads(func(int) {
		for i := 0; i < *iters; i++ {
			sem.AcquireUninterruptibly(1)
			sem.Release(1)
		}
	})
	return *threads * *iters
}

func benchLatch() int {
	// Rounds of one-shot gates: each round every thread counts down once
	// and waits for the round's latch to open.
	rounds := *iters / 100
	if rounds == 0 {
		rounds = 1
	}
	latches := make([]*esync.CountDownLatch, rounds)
	for i := range latches {
		latches[i] = esync.NewCountDownLatch(int32(*threads))
	}
	runThreads(func(int) {
		for _, l := range latches {
			l.CountDown()
			if err := l.Await(); err != nil {
				elog.Log.Fatalf("latch await: %v", err)
			}
		}
	})
	return rounds * *threads
}

func benchBarrier() int {
	rounds := *iters / 100
	if rounds == 0 {
		rounds = 1
	}
	trips := 0
	b := esync.NewCyclicBarrier(int32(*threads), func() { trips++ })
	runThreads(func(int) {
		for i := 0; i < rounds; i++ {
			if _, err := b.Await(); err != nil {
				elog.Log.Fatalf("barrier await: %v", err)
			}
		}
	})
	if trips != rounds {
		elog.Log.Fatalf("barrier tripped %d times, want %d", trips, rounds)
	}
	return rounds * *threads
}

func benchQueue() int {
	q := equeue.NewLinkedBlockingQueue[int](*capacity)
	producers := *threads / 2
	if producers == 0 {
		producers = 1
	}
	done := esync.NewCountDownLatch(int32(producers))
	for p := 0; p < producers; p++ {
		ethread.Go(func() {
			defer done.CountDown()
			for i := 0; i < *iters; i++ {
				if err := q.Put(i); err != nil {
					elog.Log.Fatalf("put: %v", err)
				}
			}
		})
	}
	total := producers * *iters
	for i := 0; i < total; i++ {
		if _, err := q.Take(); err != nil {
			elog.Log.Fatalf("take: %v", err)
		}
	}
	if err := done.Await(); err != nil {
		elog.Log.Fatalf("wait for producers: %v", err)
	}
	return total
}

func benchHandoff() int {
	q := equeue.NewSynchronousQueue[int](*fair)
	done := esync.NewCountDownLatch(1)
	ethread.Go(func() {
		defer done.CountDown()
		for i := 0; i < *iters; i++ {
			if err := q.Put(i); err != nil {
				elog.Log.Fatalf("handoff put: %v", err)
			}
		}
	})
	for i := 0; i < *iters; i++ {
		if _, err := q.Take(); err != nil {
			elog.Log.Fatalf("handoff take: %v", err)
		}
	}
	if err := done.Await(); err != nil {
		elog.Log.Fatalf("wait for producer: %v", err)
	}
	return *iters
}

func benchPool() int {
	pool := executor.NewPool(*threads, equeue.NewLinkedBlockingQueue[executor.Task](*capacity))
	total := *threads * *iters / 10
	if total == 0 {
		total = 1
	}
	done := esync.NewCountDownLatch(int32(total))
	for i := 0; i < total; i++ {
		if err := pool.Submit(func() { done.CountDown() }); err != nil {
			elog.Log.Fatalf("submit: %v", err)
		}
	}
	if err := done.Await(); err != nil {
		elog.Log.Fatalf("wait for tasks: %v", err)
	}
	pool.Shutdown()
	if ok, err := pool.AwaitTermination(10 * time.Second); err != nil || !ok {
		elog.Log.Fatalf("pool did not terminate (ok=%v err=%v)", ok, err)
	}
	return total
}
