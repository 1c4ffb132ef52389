// Copyright 2025 The adt Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package queue provides an attribute-driven FIFO queue with two backends:
// a bounded circular array and an unbounded linked list.
//
// Ownership follows the container convention: Enqueue copies through the
// attribute Copy, Remove/Clear/Close free through the attribute Free, and
// Dequeue transfers ownership of the removed element to the caller.
//
// A Queue is NOT goroutine-safe.
package queue

import (
	"fmt"
	"io"
	"unsafe"

	"github.com/adtlib/adt"
	"github.com/adtlib/adt/attr"
)

// Backend selects a storage strategy.
type Backend int

const (
	// Array is a bounded circular array; Enqueue fails with
	// adt.ErrOverflow when the queue is at capacity.
	Array Backend = iota

	// Linked is an unbounded singly-linked list with a tail pointer.
	// Reserve fails with adt.ErrNotImplemented; Cap reports the current
	// length.
	Linked
)

// Queue is a FIFO container over owned values.
type Queue[V any] interface {
	// Enqueue places a copy of v at the back of the queue.
	Enqueue(v V) error

	// Dequeue removes and returns the front element, transferring
	// ownership to the caller. It fails with adt.ErrUnderflow on an empty
	// queue.
	Dequeue() (V, error)

	// Peek returns the front element without removing it. The returned
	// value aliases queue-owned storage.
	Peek() (V, error)

	// Contains reports whether an element comparing equal to v is present.
	Contains(v V) bool

	// Remove deletes the frontmost element comparing equal to v, freeing
	// it. It fails with adt.ErrNotFound if there is none.
	Remove(v V) error

	// Reserve changes the capacity; it fails with adt.ErrInvalidCapacity
	// below 1 or below Len.
	Reserve(capacity int) error

	Clear()
	Close()
	Len() int
	Cap() int
	Memory() int
	Dump(w io.Writer) (int, error)
}

// New constructs a Queue. The capacity bounds the Array backend and is
// ignored by Linked. Attributes default to attr.Default identity semantics.
func New[V any](capacity int, options ...Option[V]) (Queue[V], error) {
	cfg := config[V]{backend: Array}
	for _, op := range options {
		op.apply(&cfg)
	}
	if cfg.attrs == nil {
		cfg.attrs = attr.Default[V]()
	}
	if err := attr.Validate(cfg.attrs, false); err != nil {
		return nil, fmt.Errorf("attributes: %w", err)
	}
	if cfg.backend == Linked {
		return &linkedQueue[V]{attrs: cfg.attrs}, nil
	}
	if capacity < 1 {
		return nil, fmt.Errorf("%w: %d", adt.ErrInvalidCapacity, capacity)
	}
	return &ringQueue[V]{items: make([]V, capacity), attrs: cfg.attrs}, nil
}

type config[V any] struct {
	backend Backend
	attrs   attr.Attributes[V]
}

// Option configures a Queue while it is being created.
type Option[V any] interface {
	apply(cfg *config[V])
}

type backendOption[V any] struct {
	backend Backend
}

func (op backendOption[V]) apply(cfg *config[V]) { cfg.backend = op.backend }

// WithBackend is an option selecting the storage backend.
func WithBackend[V any](backend Backend) Option[V] {
	return backendOption[V]{backend}
}

type attrOption[V any] struct {
	attrs attr.Attributes[V]
}

func (op attrOption[V]) apply(cfg *config[V]) { cfg.attrs = op.attrs }

// WithAttributes is an option to specify the attribute set for elements.
func WithAttributes[V any](attrs attr.Attributes[V]) Option[V] {
	return attrOption[V]{attrs}
}

// ringQueue wraps enqueue and dequeue positions around a fixed array; head
// indexes the front element and count tracks occupancy, so no slot is
// wasted distinguishing full from empty.
type ringQueue[V any] struct {
	items []V
	head  int
	count int
	attrs attr.Attributes[V]
}

// at returns the index of the element at FIFO offset i.
func (q *ringQueue[V]) at(i int) int {
	return (q.head + i) % len(q.items)
}

func (q *ringQueue[V]) Enqueue(v V) error {
	if q.count == len(q.items) {
		return fmt.Errorf("%w: queue full at capacity %d", adt.ErrOverflow, len(q.items))
	}
	q.items[q.at(q.count)] = q.attrs.Copy(v)
	q.count++
	return nil
}

func (q *ringQueue[V]) Dequeue() (V, error) {
	var zero V
	if q.count == 0 {
		return zero, adt.ErrUnderflow
	}
	v := q.items[q.head]
	q.items[q.head] = zero
	q.head = q.at(1)
	q.count--
	return v, nil
}

func (q *ringQueue[V]) Peek() (V, error) {
	if q.count == 0 {
		var zero V
		return zero, adt.ErrUnderflow
	}
	return q.items[q.head], nil
}

func (q *ringQueue[V]) Contains(v V) bool {
	for i := 0; i < q.count; i++ {
		if q.attrs.Compare(q.items[q.at(i)], v) == 0 {
			return true
		}
	}
	return false
}

func (q *ringQueue[V]) Remove(v V) error {
	var zero V
	for i := 0; i < q.count; i++ {
		if q.attrs.Compare(q.items[q.at(i)], v) != 0 {
			continue
		}
		q.attrs.Free(q.items[q.at(i)])
		for j := i; j < q.count-1; j++ {
			q.items[q.at(j)] = q.items[q.at(j+1)]
		}
		q.count--
		q.items[q.at(q.count)] = zero
		return nil
	}
	return adt.ErrNotFound
}

func (q *ringQueue[V]) Reserve(capacity int) error {
	if capacity < 1 || capacity < q.count {
		return fmt.Errorf("%w: %d with %d elements", adt.ErrInvalidCapacity, capacity, q.count)
	}
	items := make([]V, capacity)
	for i := 0; i < q.count; i++ {
		items[i] = q.items[q.at(i)]
	}
	q.items = items
	q.head = 0
	return nil
}

func (q *ringQueue[V]) Clear() {
	var zero V
	for i := 0; i < q.count; i++ {
		idx := q.at(i)
		q.attrs.Free(q.items[idx])
		q.items[idx] = zero
	}
	q.head = 0
	q.count = 0
}

func (q *ringQueue[V]) Close() {
	if q.items == nil {
		return
	}
	q.Clear()
	q.items = nil
}

func (q *ringQueue[V]) Len() int { return q.count }

func (q *ringQueue[V]) Cap() int { return len(q.items) }

func (q *ringQueue[V]) Memory() int {
	var v V
	return int(unsafe.Sizeof(*q)) + len(q.items)*int(unsafe.Sizeof(v))
}

func (q *ringQueue[V]) Dump(w io.Writer) (int, error) {
	if w == nil {
		return 0, adt.ErrNilParameter
	}
	total, err := fmt.Fprintf(w, "queue (array)\n - count = %d\n - capacity = %d\n - memory = %d\n",
		q.count, len(q.items), q.Memory())
	if err != nil {
		return total, err
	}
	for i := 0; i < q.count; i++ {
		n, err := dumpElem[V](w, q.attrs, q.items[q.at(i)])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type queueNode[V any] struct {
	value V
	next  *queueNode[V]
}

type linkedQueue[V any] struct {
	head   *queueNode[V]
	tail   *queueNode[V]
	count  int
	closed bool
	attrs  attr.Attributes[V]
}

func (q *linkedQueue[V]) Enqueue(v V) error {
	n := &queueNode[V]{value: q.attrs.Copy(v)}
	if q.tail == nil {
		q.head = n
	} else {
		q.tail.next = n
	}
	q.tail = n
	q.count++
	return nil
}

func (q *linkedQueue[V]) Dequeue() (V, error) {
	if q.head == nil {
		var zero V
		return zero, adt.ErrUnderflow
	}
	n := q.head
	q.head = n.next
	if q.head == nil {
		q.tail = nil
	}
	q.count--
	return n.value, nil
}

func (q *linkedQueue[V]) Peek() (V, error) {
	if q.head == nil {
		var zero V
		return zero, adt.ErrUnderflow
	}
	return q.head.value, nil
}

func (q *linkedQueue[V]) Contains(v V) bool {
	for n := q.head; n != nil; n = n.next {
		if q.attrs.Compare(n.value, v) == 0 {
			return true
		}
	}
	return false
}

func (q *linkedQueue[V]) Remove(v V) error {
	var prev *queueNode[V]
	for n := q.head; n != nil; prev, n = n, n.next {
		if q.attrs.Compare(n.value, v) != 0 {
			continue
		}
		if prev == nil {
			q.head = n.next
		} else {
			prev.next = n.next
		}
		if q.tail == n {
			q.tail = prev
		}
		q.attrs.Free(n.value)
		q.count--
		return nil
	}
	return adt.ErrNotFound
}

func (q *linkedQueue[V]) Reserve(capacity int) error {
	return fmt.Errorf("%w: reserve on linked queue", adt.ErrNotImplemented)
}

func (q *linkedQueue[V]) Clear() {
	for n := q.head; n != nil; {
		next := n.next
		q.attrs.Free(n.value)
		n.next = nil
		n = next
	}
	q.head = nil
	q.tail = nil
	q.count = 0
}

func (q *linkedQueue[V]) Close() {
	if q.closed {
		return
	}
	q.Clear()
	q.closed = true
}

func (q *linkedQueue[V]) Len() int { return q.count }

// Cap reports the current length: a linked queue has no fixed capacity.
func (q *linkedQueue[V]) Cap() int { return q.count }

func (q *linkedQueue[V]) Memory() int {
	return int(unsafe.Sizeof(*q)) + q.count*int(unsafe.Sizeof(queueNode[V]{}))
}

func (q *linkedQueue[V]) Dump(w io.Writer) (int, error) {
	if w == nil {
		return 0, adt.ErrNilParameter
	}
	total, err := fmt.Fprintf(w, "queue (linked)\n - count = %d\n - memory = %d\n", q.count, q.Memory())
	if err != nil {
		return total, err
	}
	for n := q.head; n != nil; n = n.next {
		nn, err := dumpElem[V](w, q.attrs, n.value)
		total += nn
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func dumpElem[V any](w io.Writer, attrs attr.Attributes[V], v V) (int, error) {
	total, err := attrs.Print(w, v)
	if err != nil {
		return total, err
	}
	n, err := io.WriteString(w, "\n")
	return total + n, err
}
