// Copyright 2026 The goefc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ethread

import "sync"

// A Local holds one value of type T per thread.  The zero Local is ready to
// use; NewLocal attaches an initializer that runs on the first Get by each
// thread.
//
// Values stored by a Go()-spawned thread are dropped when that thread exits.
// Values stored by goroutines registered implicitly via Current() live until
// the process exits.
type Local[T any] struct {
	values  sync.Map // *Thread -> *T
	initial func() T
}

// NewLocal returns a Local whose per-thread value is seeded by initial on
// first access.  initial may be nil, in which case the zero value is used.
func NewLocal[T any](initial func() T) *Local[T] {
	return &Local[T]{initial: initial}
}

// Get returns a pointer to the calling thread's value, creating it if this
// thread has none yet.  The pointer is stable for the life of the entry and
// must only be dereferenced by the owning thread.
func (l *Local[T]) Get() *T {
	t := Current()
	if v, ok := l.values.Load(t); ok {
		return v.(*T)
	}
	p := new(T)
	if l.initial != nil {
		*p = l.initial()
	}
	actual, loaded := l.values.LoadOrStore(t, p)
	if !loaded {
		t.addCleanup(func() { l.values.Delete(t) })
	}
	return actual.(*T)
}

// Peek returns the given thread's value without creating one.
func (l *Local[T]) Peek(t *Thread) (*T, bool) {
	v, ok := l.values.Load(t)
	if !ok {
		return nil, false
	}
	return v.(*T), true
}

// Remove drops the calling thread's value; a later Get re-initializes.
func (l *Local[T]) Remove() {
	l.values.Delete(Current())
}
