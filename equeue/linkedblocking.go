// Copyright 2026 The goefc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package equeue provides blocking queues built on the esync primitives: a
// linked bounded FIFO with independent put and take locks, and a
// zero-capacity handoff queue in which every put waits for a take.
package equeue

import "math"
import "sync/atomic"
import "time"

import "github.com/cxxjava/goefc/esync"

// A LinkedBlockingQueue is a bounded FIFO of linked nodes.  Producers and
// consumers synchronize on two independent mutexes (puts touch only the
// tail, takes only the head), so one put and one take can run concurrently;
// an atomic element count is the only state they share.  Bulk operations
// and anything that can unlink interior nodes take both locks.
//
// Create with NewLinkedBlockingQueue; the zero value is not usable.
type LinkedBlockingQueue[E any] struct {
	capacity int32
	count    atomic.Int32

	// head.item is dead; head.next is the first deliverable element.
	// Guarded by takeLock.
	head *lbqNode[E]

	// last is the most recently enqueued node.  Guarded by putLock.
	last *lbqNode[E]

	takeLock *esync.Mutex
	notEmpty *esync.Condition

	putLock *esync.Mutex
	notFull *esync.Condition
}

type lbqNode[E any] struct {
	item E
	next *lbqNode[E]

	// dead marks a node unlinked from the interior of the list; iterators
	// skip dead nodes.  Dequeued nodes are instead marked by next pointing
	// to the node itself.
	dead bool
}

// NewLinkedBlockingQueue returns an empty queue holding at most capacity
// elements; capacity < 1 panics.  Use math.MaxInt32 for an effectively
// unbounded queue.
func NewLinkedBlockingQueue[E any](capacity int32) *LinkedBlockingQueue[E] {
	if capacity <= 0 {
		panic("equeue: queue capacity must be positive")
	}
	q := &LinkedBlockingQueue[E]{
		capacity: capacity,
		head:     &lbqNode[E]{},
		takeLock: esync.NewMutex(false),
		putLock:  esync.NewMutex(false),
	}
	q.last = q.head
	q.notEmpty = q.takeLock.NewCondition()
	q.notFull = q.putLock.NewCondition()
	return q
}

// Unbounded returns a queue with capacity math.MaxInt32.
func Unbounded[E any]() *LinkedBlockingQueue[E] {
	return NewLinkedBlockingQueue[E](math.MaxInt32)
}

// signalNotEmpty wakes a waiting taker.  Called on paths that hold only
// putLock, since notEmpty can only be signalled under takeLock.
func (q *LinkedBlockingQueue[E]) signalNotEmpty() {
	q.takeLock.Lock()
	q.notEmpty.Signal()
	q.takeLock.Unlock()
}

// signalNotFull wakes a waiting putter; the mirror of signalNotEmpty.
func (q *LinkedBlockingQueue[E]) signalNotFull() {
	q.putLock.Lock()
	q.notFull.Signal()
	q.putLock.Unlock()
}

// enqueue links n at the tail.  Caller holds putLock.
func (q *LinkedBlockingQueue[E]) enqueue(n *lbqNode[E]) {
	q.last.next = n
	q.last = n
}

// dequeue unlinks and returns the first element.  Caller holds takeLock and
// count must be non-zero.
func (q *LinkedBlockingQueue[E]) dequeue() E {
	h := q.head
	first := h.next
	h.next = h // dequeued marker
	q.head = first
	x := first.item
	var zero E
	first.item = zero
	return x
}

// fullyLock acquires both locks, in put-then-take order everywhere so bulk
// operations cannot deadlock against each other.
func (q *LinkedBlockingQueue[E]) fullyLock() {
	q.putLock.Lock()
	q.takeLock.Lock()
}

func (q *LinkedBlockingQueue[E]) fullyUnlock() {
	q.takeLock.Unlock()
	q.putLock.Unlock()
}

// Put appends x, blocking while the queue is full.  It returns
// esync.ErrInterrupted (flag cleared) if interrupted while waiting.
func (q *LinkedBlockingQueue[E]) Put(x E) error {
	n := &lbqNode[E]{item: x}
	if err := q.putLock.LockInterruptibly(); err != nil {
		return err
	}
	for q.count.Load() == q.capacity {
		if err := q.notFull.Await(); err != nil {
			q.putLock.Unlock()
			return err
		}
	}
	q.enqueue(n)
	c := q.count.Add(1) - 1
	if c+1 < q.capacity {
		// Cascade: the next queued putter still has room, so wake it now
		// rather than making it wait for a take.
		q.notFull.Signal()
	}
	q.putLock.Unlock()
	if c == 0 {
		q.signalNotEmpty()
	}
	return nil
}

// Offer appends x only if the queue has room right now.
func (q *LinkedBlockingQueue[E]) Offer(x E) bool {
	if q.count.Load() == q.capacity {
		return false
	}
	c := int32(-1)
	q.putLock.Lock()
	if q.count.Load() < q.capacity {
		q.enqueue(&lbqNode[E]{item: x})
		c = q.count.Add(1) - 1
		if c+1 < q.capacity {
			q.notFull.Signal()
		}
	}
	q.putLock.Unlock()
	if c == 0 {
		q.signalNotEmpty()
	}
	return c >= 0
}

// OfferFor is Put bounded by d; it returns false if the queue stayed full
// the whole time.
func (q *LinkedBlockingQueue[E]) OfferFor(x E, d time.Duration) (bool, error) {
	nanos := int64(d)
	if err := q.putLock.LockInterruptibly(); err != nil {
		return false, err
	}
	for q.count.Load() == q.capacity {
		if nanos <= 0 {
			q.putLock.Unlock()
			return false, nil
		}
		var err error
		if nanos, err = q.notFull.AwaitNanos(nanos); err != nil {
			q.putLock.Unlock()
			return false, err
		}
	}
	q.enqueue(&lbqNode[E]{item: x})
	c := q.count.Add(1) - 1
	if c+1 < q.capacity {
		q.notFull.Signal()
	}
	q.putLock.Unlock()
	if c == 0 {
		q.signalNotEmpty()
	}
	return true, nil
}

// Take removes and returns the head, blocking while the queue is empty.  It
// returns esync.ErrInterrupted (flag cleared) if interrupted while waiting.
func (q *LinkedBlockingQueue[E]) Take() (E, error) {
	var zero E
	if err := q.takeLock.LockInterruptibly(); err != nil {
		return zero, err
	}
	for q.count.Load() == 0 {
		if err := q.notEmpty.Await(); err != nil {
			q.takeLock.Unlock()
			return zero, err
		}
	}
	x := q.dequeue()
	c := q.count.Add(-1) + 1
	if c > 1 {
		q.notEmpty.Signal()
	}
	q.takeLock.Unlock()
	if c == q.capacity {
		q.signalNotFull()
	}
	return x, nil
}

// Poll removes and returns the head only if the queue is non-empty right
// now.
func (q *LinkedBlockingQueue[E]) Poll() (E, bool) {
	var zero E
	if q.count.Load() == 0 {
		return zero, false
	}
	c := int32(-1)
	var x E
	q.takeLock.Lock()
	if q.count.Load() > 0 {
		x = q.dequeue()
		c = q.count.Add(-1) + 1
		if c > 1 {
			q.notEmpty.Signal()
		}
	}
	q.takeLock.Unlock()
	if c == q.capacity {
		q.signalNotFull()
	}
	if c < 0 {
		return zero, false
	}
	return x, true
}

// PollFor is Take bounded by d; ok is false if the queue stayed empty the
// whole time.
func (q *LinkedBlockingQueue[E]) PollFor(d time.Duration) (x E, ok bool, err error) {
	nanos := int64(d)
	if err := q.takeLock.LockInterruptibly(); err != nil {
		return x, false, err
	}
	for q.count.Load() == 0 {
		if nanos <= 0 {
			q.takeLock.Unlock()
			return x, false, nil
		}
		if nanos, err = q.notEmpty.AwaitNanos(nanos); err != nil {
			q.takeLock.Unlock()
			return x, false, err
		}
	}
	x = q.dequeue()
	c := q.count.Add(-1) + 1
	if c > 1 {
		q.notEmpty.Signal()
	}
	q.takeLock.Unlock()
	if c == q.capacity {
		q.signalNotFull()
	}
	return x, true, nil
}

// Peek returns the head without removing it.
func (q *LinkedBlockingQueue[E]) Peek() (E, bool) {
	var zero E
	if q.count.Load() == 0 {
		return zero, false
	}
	q.takeLock.Lock()
	defer q.takeLock.Unlock()
	if first := q.head.next; first != nil {
		return first.item, true
	}
	return zero, false
}

// Size returns the number of elements currently queued.
func (q *LinkedBlockingQueue[E]) Size() int32 {
	return q.count.Load()
}

// RemainingCapacity returns how many elements can be added before Put
// blocks.
func (q *LinkedBlockingQueue[E]) RemainingCapacity() int32 {
	return q.capacity - q.count.Load()
}

// unlink removes interior node p, whose predecessor is trail.  Caller holds
// both locks.
func (q *LinkedBlockingQueue[E]) unlink(p, trail *lbqNode[E]) {
	var zero E
	p.item = zero
	p.dead = true
	trail.next = p.next
	if q.last == p {
		q.last = trail
	}
	if q.count.Add(-1)+1 == q.capacity {
		q.notFull.Signal()
	}
}

// RemoveFunc unlinks the first element for which match returns true,
// reporting whether one was found.
func (q *LinkedBlockingQueue[E]) RemoveFunc(match func(E) bool) bool {
	q.fullyLock()
	defer q.fullyUnlock()
	trail := q.head
	for p := trail.next; p != nil; p = p.next {
		if match(p.item) {
			q.unlink(p, trail)
			return true
		}
		trail = p
	}
	return false
}

// ContainsFunc reports whether any queued element satisfies match.
func (q *LinkedBlockingQueue[E]) ContainsFunc(match func(E) bool) bool {
	q.fullyLock()
	defer q.fullyUnlock()
	for p := q.head.next; p != nil; p = p.next {
		if match(p.item) {
			return true
		}
	}
	return false
}

// ToSlice returns a snapshot of the queued elements in FIFO order.
func (q *LinkedBlockingQueue[E]) ToSlice() []E {
	q.fullyLock()
	defer q.fullyUnlock()
	out := make([]E, 0, q.count.Load())
	for p := q.head.next; p != nil; p = p.next {
		out = append(out, p.item)
	}
	return out
}

// Drain removes up to max elements from the head and returns them in FIFO
// order, holding both locks.
func (q *LinkedBlockingQueue[E]) Drain(max int) []E {
	if max <= 0 {
		return nil
	}
	q.fullyLock()
	defer q.fullyUnlock()
	n := int(q.count.Load())
	if max < n {
		n = max
	}
	out := make([]E, 0, n)
	h := q.head
	for i := 0; i < n; i++ {
		p := h.next
		out = append(out, p.item)
		var zero E
		p.item = zero
		h.next = h
		h = p
	}
	if n > 0 {
		q.head = h
		if q.count.Add(int32(-n))+int32(n) == q.capacity {
			q.notFull.Signal()
		}
	}
	return out
}

// Clear removes every element.
func (q *LinkedBlockingQueue[E]) Clear() {
	q.fullyLock()
	defer q.fullyUnlock()
	var zero E
	p := q.head.next
	for p != nil {
		next := p.next
		p.item = zero
		p.next = p
		p = next
	}
	q.head.next = nil
	q.last = q.head
	if q.count.Swap(0) == q.capacity {
		q.notFull.Signal()
	}
}

// An Iterator walks the queue in FIFO order.  It is weakly consistent: it
// reflects the queue state at some point at or since its creation, never
// returns an element twice, and tolerates concurrent modification.
type Iterator[E any] struct {
	q              *LinkedBlockingQueue[E]
	current        *lbqNode[E]
	currentElement E
}

// Iterator returns a new weakly consistent iterator over q.
func (q *LinkedBlockingQueue[E]) Iterator() *Iterator[E] {
	q.fullyLock()
	defer q.fullyUnlock()
	it := &Iterator[E]{q: q, current: q.head.next}
	if it.current != nil {
		it.currentElement = it.current.item
	}
	return it
}

// HasNext reports whether Next will return an element.
func (it *Iterator[E]) HasNext() bool {
	return it.current != nil
}

// nextNode advances past nodes unlinked since the last call: a node whose
// next points to itself was dequeued (restart at the live head), and dead
// interior nodes are skipped forward, never back to the node itself.
func (it *Iterator[E]) nextNode(p *lbqNode[E]) *lbqNode[E] {
	for {
		s := p.next
		if s == p {
			return it.q.head.next
		}
		if s == nil || !s.dead {
			return s
		}
		p = s
	}
}

// Next returns the next element; it panics if the iterator is exhausted.
func (it *Iterator[E]) Next() E {
	it.q.fullyLock()
	defer it.q.fullyUnlock()
	if it.current == nil {
		panic("equeue: Next on exhausted iterator")
	}
	x := it.currentElement
	it.current = it.nextNode(it.current)
	if it.current != nil {
		it.currentElement = it.current.item
	} else {
		var zero E
		it.currentElement = zero
	}
	return x
}
