// Copyright 2026 The goefc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ethread_test

import "testing"
import "time"

import "github.com/cxxjava/goefc/ethread"

func TestLocalIsPerThread(t *testing.T) {
	counter := ethread.NewLocal[int](func() int { return 100 })

	*counter.Get() += 5
	if got := *counter.Get(); got != 105 {
		t.Fatalf("local value: want 105, got %d", got)
	}

	otherSaw := make(chan int)
	ethread.Go(func() { otherSaw <- *counter.Get() })
	if got := <-otherSaw; got != 100 {
		t.Fatalf("other thread saw %d, want fresh initial value 100", got)
	}
	if got := *counter.Get(); got != 105 {
		t.Fatalf("other thread's access disturbed this thread's value: %d", got)
	}
}

func TestLocalRemoveReinitializes(t *testing.T) {
	l := ethread.NewLocal[string](func() string { return "init" })
	*l.Get() = "dirty"
	l.Remove()
	if got := *l.Get(); got != "init" {
		t.Fatalf("after Remove: want %q, got %q", "init", got)
	}
}

func TestZeroLocal(t *testing.T) {
	var l ethread.Local[int]
	if got := *l.Get(); got != 0 {
		t.Fatalf("zero Local initial value: want 0, got %d", got)
	}
}

func TestLocalDroppedOnThreadExit(t *testing.T) {
	l := ethread.NewLocal[int](nil)
	done := make(chan *ethread.Thread)
	ethread.Go(func() {
		*l.Get() = 42
		done <- ethread.Current()
	})
	th := <-done
	// The entry is removed by the thread's deferred cleanup, which runs
	// after the channel send above; poll briefly.
	for i := 0; i < 1000; i++ {
		if _, ok := l.Peek(th); !ok {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("thread-local entry survived thread exit")
}
