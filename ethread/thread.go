// Copyright 2026 The goefc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ethread provides per-goroutine thread handles: a sticky interrupt
// flag, a one-permit park/unpark primitive, and thread-local storage.
//
// Goroutines have no exported identity, but blocking synchronizers need one:
// an exclusive lock records which thread owns it, a read/write lock counts
// read holds per thread, and interruption must be able to target the thread
// blocked inside an acquire.  A Thread is that identity.  Current() lazily
// registers the calling goroutine; Go() spawns a goroutine whose registration
// is cleaned up when it returns.
package ethread

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// A Thread is a handle for a single goroutine.  Handles are comparable by
// pointer; two calls to Current() from the same goroutine return the same
// *Thread.
type Thread struct {
	id   uint64 // runtime goroutine id; constant after registration.
	name string

	// interrupted is the sticky interrupt flag.  Set by Interrupt(),
	// cleared only by Interrupted() on the owning goroutine.
	interrupted atomic.Bool

	// permit is the park permit: a one-slot semaphore in the manner of a
	// binary semaphore.  Unpark() ensures a token is present without
	// blocking; Park() consumes one.
	permit chan struct{}

	// timer is reused across timed parks by the owning goroutine.
	// Invariant: stopped and drained between parks.
	timer *time.Timer

	// cleanups run when a Go()-spawned thread exits; guarded by cleanupMu.
	cleanupMu sync.Mutex
	cleanups  []func()
}

// threads maps goroutine id -> *Thread for every registered goroutine.
var threads sync.Map

// Current returns the Thread handle for the calling goroutine, registering
// one if the goroutine has never been seen before.
//
// A handle registered implicitly by Current() lives until the process exits;
// goroutines with bounded lifetimes that use handles should be spawned with
// Go(), which deregisters on return.
func Current() *Thread {
	id := goroutineID()
	if v, ok := threads.Load(id); ok {
		return v.(*Thread)
	}
	t := newThread(id, "thread-"+strconv.FormatUint(id, 10))
	actual, _ := threads.LoadOrStore(id, t)
	return actual.(*Thread)
}

// Go runs fn in a new goroutine with a pre-registered Thread handle, and
// returns the handle.  The registration and any thread-local values are
// discarded when fn returns.
func Go(fn func()) *Thread {
	started := make(chan *Thread)
	go func() {
		t := Current()
		started <- t
		defer func() {
			t.runCleanups()
			threads.Delete(t.id)
		}()
		fn()
	}()
	return <-started
}

func newThread(id uint64, name string) *Thread {
	t := &Thread{id: id, name: name, permit: make(chan struct{}, 1)}
	t.timer = time.NewTimer(time.Hour)
	if !t.timer.Stop() {
		<-t.timer.C
	}
	return t
}

// ID returns the runtime goroutine id backing this thread.
func (t *Thread) ID() uint64 { return t.id }

// Name returns the thread's name.
func (t *Thread) Name() string { return t.name }

// SetName sets the thread's name.  Racy with concurrent Name() by design of
// the callers; names are diagnostic only.
func (t *Thread) SetName(name string) { t.name = name }

// Interrupt sets t's sticky interrupt flag and unparks it.  If t is blocked
// in Park or ParkUntil it will return promptly; the flag stays set until the
// owning goroutine calls Interrupted().
func (t *Thread) Interrupt() {
	t.interrupted.Store(true)
	Unpark(t)
}

// IsInterrupted reports whether t's interrupt flag is set, without clearing it.
func (t *Thread) IsInterrupted() bool {
	return t.interrupted.Load()
}

// Interrupted reports whether the calling thread's interrupt flag is set and
// clears it.  It must be called on the thread's own goroutine.
func Interrupted() bool {
	return Current().interrupted.Swap(false)
}

// addCleanup registers fn to run when a Go()-spawned thread exits.  Used by
// Local to drop per-thread values.
func (t *Thread) addCleanup(fn func()) {
	t.cleanupMu.Lock()
	t.cleanups = append(t.cleanups, fn)
	t.cleanupMu.Unlock()
}

func (t *Thread) runCleanups() {
	t.cleanupMu.Lock()
	fns := t.cleanups
	t.cleanups = nil
	t.cleanupMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// goroutineID parses the current goroutine's id from the header line of its
// runtime.Stack dump ("goroutine N [running]:").  The result is cached in
// the threads map by the callers, so the parse happens once per goroutine.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		panic("ethread: cannot parse goroutine id: " + err.Error())
	}
	return id
}
