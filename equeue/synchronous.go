// Copyright 2026 The goefc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package equeue

import "time"

import "github.com/cxxjava/goefc/esync"
import "github.com/cxxjava/goefc/ethread"

// A SynchronousQueue has no capacity at all: every Put waits for a Take and
// vice versa, handing the element directly across.  Size is always zero and
// Peek never returns anything, because an element only exists in the moment
// of transfer.
//
// A producer that finds no waiting consumer parks on a small two-state
// synchronizer of its own (pending -> acked or cancelled); the consumer
// that matches it wins the ACK and takes the item, while a timeout or
// interrupt wins CANCEL and makes the counterpart retry.  Two wait lists --
// waiting producers and waiting consumers -- hold these nodes; at most one
// list is non-empty at a time.
//
// In fair mode both lists are FIFO, pairing threads up in arrival order;
// the default mode uses LIFO lists, which improves locality at the cost of
// ordering.
//
// Create with NewSynchronousQueue; the zero value is not usable.
type SynchronousQueue[E any] struct {
	// qlock guards both wait lists; the hand-off itself happens on the
	// node synchronizers, outside this lock.
	qlock            *esync.Mutex
	waitingProducers sqWaitList[E]
	waitingConsumers sqWaitList[E]
}

// Node synchronizer states: 0 pending, sqAck transferred, sqCancel
// abandoned.
const (
	sqAck    int32 = 1
	sqCancel int32 = -1
)

// An sqNode carries one pending transfer.  Its embedded synchronizer has
// three states; the first Release(ACK or CANCEL) wins.  A matching thread
// whose ACK loses to a CANCEL retries from the top; a waiter whose CANCEL
// loses to an ACK completes the transfer instead.
type sqNode[E any] struct {
	esync.Synchronizer
	esync.HooksBase

	item E
	next *sqNode[E]
}

func newSQNode[E any](item E) *sqNode[E] {
	n := &sqNode[E]{item: item}
	n.Init(n)
	return n
}

// TryAcquire succeeds once the node has left the pending state.
func (n *sqNode[E]) TryAcquire(int32) bool { return n.State() != 0 }

// TryRelease resolves the node to newState; only the first resolution wins.
func (n *sqNode[E]) TryRelease(newState int32) bool {
	return n.CompareAndSetState(0, newState)
}

// extract takes the item out of the node.
func (n *sqNode[E]) extract() E {
	x := n.item
	var zero E
	n.item = zero
	return x
}

// setItem fills a consumer-created slot and ACKs the consumer.  The item
// can be placed even if the consumer cancelled; a false return tells the
// producer to retry with another consumer.
func (n *sqNode[E]) setItem(x E) bool {
	n.item = x // the slot may be filled even if the consumer cancelled
	return n.Release(sqAck)
}

// getItem ACKs a waiting producer and takes its item; a false ok means the
// producer cancelled first.
func (n *sqNode[E]) getItem() (E, bool) {
	if !n.Release(sqAck) {
		var zero E
		return zero, false
	}
	return n.extract(), true
}

// cancelOnInterrupt resolves an interrupted wait: if the cancel wins, the
// interrupt is reported; if an ACK beat it, the transfer happened, so the
// interrupt is re-asserted on the thread instead.
func (n *sqNode[E]) cancelOnInterrupt(err error) error {
	if n.Release(sqCancel) {
		return err
	}
	ethread.Current().Interrupt()
	return nil
}

// waitForTake parks the producer until its item is taken.
func (n *sqNode[E]) waitForTake() error {
	if err := n.AcquireInterruptibly(0); err != nil {
		return n.cancelOnInterrupt(err)
	}
	return nil
}

// waitForTakeFor is waitForTake bounded by d; false means the wait was
// cancelled on timeout and the item not taken.
func (n *sqNode[E]) waitForTakeFor(d time.Duration) (bool, error) {
	ok, err := n.TryAcquireFor(0, d)
	if err != nil {
		return true, n.cancelOnInterrupt(err)
	}
	if !ok && n.Release(sqCancel) {
		return false, nil
	}
	return true, nil
}

// waitForPut parks the consumer until a producer fills its slot.
func (n *sqNode[E]) waitForPut() (E, error) {
	if err := n.AcquireInterruptibly(0); err != nil {
		if cerr := n.cancelOnInterrupt(err); cerr != nil {
			var zero E
			return zero, cerr
		}
	}
	return n.extract(), nil
}

// waitForPutFor is waitForPut bounded by d.
func (n *sqNode[E]) waitForPutFor(d time.Duration) (E, bool, error) {
	var zero E
	ok, err := n.TryAcquireFor(0, d)
	if err != nil {
		if cerr := n.cancelOnInterrupt(err); cerr != nil {
			return zero, false, cerr
		}
		return n.extract(), true, nil
	}
	if !ok && n.Release(sqCancel) {
		return zero, false, nil
	}
	return n.extract(), true, nil
}

// An sqWaitList holds parked producers or consumers; fair queues are FIFO,
// barging queues LIFO.
type sqWaitList[E any] interface {
	enq(n *sqNode[E])
	deq() *sqNode[E]
}

type sqFifoList[E any] struct {
	head *sqNode[E]
	last *sqNode[E]
}

func (l *sqFifoList[E]) enq(n *sqNode[E]) {
	if l.last == nil {
		l.head = n
		l.last = n
	} else {
		l.last.next = n
		l.last = n
	}
}

func (l *sqFifoList[E]) deq() *sqNode[E] {
	p := l.head
	if p != nil {
		if l.head = p.next; l.head == nil {
			l.last = nil
		}
		p.next = nil
	}
	return p
}

type sqLifoList[E any] struct {
	head *sqNode[E]
}

func (l *sqLifoList[E]) enq(n *sqNode[E]) {
	n.next = l.head
	l.head = n
}

func (l *sqLifoList[E]) deq() *sqNode[E] {
	p := l.head
	if p != nil {
		l.head = p.next
		p.next = nil
	}
	return p
}

// NewSynchronousQueue returns a handoff queue with the given fairness
// policy.
func NewSynchronousQueue[E any](fair bool) *SynchronousQueue[E] {
	q := &SynchronousQueue[E]{qlock: esync.NewMutex(fair)}
	if fair {
		q.waitingProducers = &sqFifoList[E]{}
		q.waitingConsumers = &sqFifoList[E]{}
	} else {
		q.waitingProducers = &sqLifoList[E]{}
		q.waitingConsumers = &sqLifoList[E]{}
	}
	return q
}

// Put hands x to a consumer, blocking until one takes it.  Returns
// esync.ErrInterrupted (flag cleared) if interrupted before the handoff.
func (q *SynchronousQueue[E]) Put(x E) error {
	for {
		if ethread.Interrupted() {
			return esync.ErrInterrupted
		}
		q.qlock.Lock()
		n := q.waitingConsumers.deq()
		mustWait := n == nil
		if mustWait {
			n = newSQNode(x)
			q.waitingProducers.enq(n)
		}
		q.qlock.Unlock()

		if mustWait {
			return n.waitForTake()
		}
		if n.setItem(x) {
			return nil
		}
		// Consumer cancelled; try the next one.
	}
}

// OfferFor is Put bounded by d; it returns false if no consumer arrived in
// time.
func (q *SynchronousQueue[E]) OfferFor(x E, d time.Duration) (bool, error) {
	deadline := time.Now().Add(d)
	for {
		if ethread.Interrupted() {
			return false, esync.ErrInterrupted
		}
		q.qlock.Lock()
		n := q.waitingConsumers.deq()
		mustWait := n == nil
		if mustWait {
			n = newSQNode(x)
			q.waitingProducers.enq(n)
		}
		q.qlock.Unlock()

		if mustWait {
			return n.waitForTakeFor(time.Until(deadline))
		}
		if n.setItem(x) {
			return true, nil
		}
	}
}

// Offer hands x to a consumer only if one is already waiting.
func (q *SynchronousQueue[E]) Offer(x E) bool {
	for {
		q.qlock.Lock()
		n := q.waitingConsumers.deq()
		q.qlock.Unlock()
		if n == nil {
			return false
		}
		if n.setItem(x) {
			return true
		}
		// Consumer cancelled; try the next one.
	}
}

// Take receives an element, blocking until a producer provides one.
func (q *SynchronousQueue[E]) Take() (E, error) {
	var zero E
	for {
		if ethread.Interrupted() {
			return zero, esync.ErrInterrupted
		}
		q.qlock.Lock()
		n := q.waitingProducers.deq()
		mustWait := n == nil
		if mustWait {
			n = newSQNode(zero)
			q.waitingConsumers.enq(n)
		}
		q.qlock.Unlock()

		if mustWait {
			return n.waitForPut()
		}
		if x, ok := n.getItem(); ok {
			return x, nil
		}
		// Producer cancelled; try the next one.
	}
}

// PollFor is Take bounded by d; ok is false if no producer arrived in time.
func (q *SynchronousQueue[E]) PollFor(d time.Duration) (x E, ok bool, err error) {
	var zero E
	deadline := time.Now().Add(d)
	for {
		if ethread.Interrupted() {
			return zero, false, esync.ErrInterrupted
		}
		q.qlock.Lock()
		n := q.waitingProducers.deq()
		mustWait := n == nil
		if mustWait {
			n = newSQNode(zero)
			q.waitingConsumers.enq(n)
		}
		q.qlock.Unlock()

		if mustWait {
			return n.waitForPutFor(time.Until(deadline))
		}
		if x, ok := n.getItem(); ok {
			return x, true, nil
		}
	}
}

// Poll receives an element only if a producer is already waiting.
func (q *SynchronousQueue[E]) Poll() (E, bool) {
	var zero E
	for {
		q.qlock.Lock()
		n := q.waitingProducers.deq()
		q.qlock.Unlock()
		if n == nil {
			return zero, false
		}
		if x, ok := n.getItem(); ok {
			return x, true
		}
		// Producer cancelled; try the next one.
	}
}

// Drain repeatedly polls waiting producers and returns what it got, up to
// max elements.
func (q *SynchronousQueue[E]) Drain(max int) []E {
	var out []E
	for len(out) < max {
		x, ok := q.Poll()
		if !ok {
			break
		}
		out = append(out, x)
	}
	return out
}

// Size is always zero: a synchronous queue holds nothing.
func (q *SynchronousQueue[E]) Size() int32 { return 0 }

// RemainingCapacity is always zero.
func (q *SynchronousQueue[E]) RemainingCapacity() int32 { return 0 }

// IsEmpty is always true.
func (q *SynchronousQueue[E]) IsEmpty() bool { return true }

// Peek never returns an element; one only exists while being transferred.
func (q *SynchronousQueue[E]) Peek() (E, bool) {
	var zero E
	return zero, false
}
