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

// Package deque provides an attribute-driven double-ended queue with two
// backends: a bounded circular array and an unbounded doubly-linked list.
//
// Ownership follows the container convention: pushes copy through the
// attribute Copy, Remove/Clear/Close free through the attribute Free, and
// pops transfer ownership of the removed element to the caller.
//
// A Deque is NOT goroutine-safe.
package deque

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
	// Array is a bounded circular array; pushes fail with adt.ErrOverflow
	// when the deque is at capacity.
	Array Backend = iota

	// Linked is an unbounded doubly-linked list. Reserve fails with
	// adt.ErrNotImplemented; Cap reports the current length.
	Linked
)

// Deque is a double-ended queue over owned values.
type Deque[V any] interface {
	// PushFront places a copy of v at the front.
	PushFront(v V) error

	// PushBack places a copy of v at the back.
	PushBack(v V) error

	// PopFront removes and returns the front element, transferring
	// ownership to the caller. It fails with adt.ErrUnderflow when empty.
	PopFront() (V, error)

	// PopBack removes and returns the back element, transferring ownership
	// to the caller. It fails with adt.ErrUnderflow when empty.
	PopBack() (V, error)

	// Front returns the front element without removing it. The returned
	// value aliases deque-owned storage.
	Front() (V, error)

	// Back returns the back element without removing it. The returned
	// value aliases deque-owned storage.
	Back() (V, error)

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

// New constructs a Deque. The capacity bounds the Array backend and is
// ignored by Linked. Attributes default to attr.Default identity semantics.
func New[V any](capacity int, options ...Option[V]) (Deque[V], error) {
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
		return &linkedDeque[V]{attrs: cfg.attrs}, nil
	}
	if capacity < 1 {
		return nil, fmt.Errorf("%w: %d", adt.ErrInvalidCapacity, capacity)
	}
	return &ringDeque[V]{items: make([]V, capacity), attrs: cfg.attrs}, nil
}

type config[V any] struct {
	backend Backend
	attrs   attr.Attributes[V]
}

// Option configures a Deque while it is being created.
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

type ringDeque[V any] struct {
	items []V
	head  int
	count int
	attrs attr.Attributes[V]
}

// at returns the index of the element at offset i from the front.
func (d *ringDeque[V]) at(i int) int {
	return (d.head + i) % len(d.items)
}

func (d *ringDeque[V]) PushFront(v V) error {
	if d.count == len(d.items) {
		return fmt.Errorf("%w: deque full at capacity %d", adt.ErrOverflow, len(d.items))
	}
	d.head = (d.head - 1 + len(d.items)) % len(d.items)
	d.items[d.head] = d.attrs.Copy(v)
	d.count++
	return nil
}

func (d *ringDeque[V]) PushBack(v V) error {
	if d.count == len(d.items) {
		return fmt.Errorf("%w: deque full at capacity %d", adt.ErrOverflow, len(d.items))
	}
	d.items[d.at(d.count)] = d.attrs.Copy(v)
	d.count++
	return nil
}

func (d *ringDeque[V]) PopFront() (V, error) {
	var zero V
	if d.count == 0 {
		return zero, adt.ErrUnderflow
	}
	v := d.items[d.head]
	d.items[d.head] = zero
	d.head = d.at(1)
	d.count--
	return v, nil
}

func (d *ringDeque[V]) PopBack() (V, error) {
	var zero V
	if d.count == 0 {
		return zero, adt.ErrUnderflow
	}
	idx := d.at(d.count - 1)
	v := d.items[idx]
	d.items[idx] = zero
	d.count--
	return v, nil
}

func (d *ringDeque[V]) Front() (V, error) {
	if d.count == 0 {
		var zero V
		return zero, adt.ErrUnderflow
	}
	return d.items[d.head], nil
}

func (d *ringDeque[V]) Back() (V, error) {
	if d.count == 0 {
		var zero V
		return zero, adt.ErrUnderflow
	}
	return d.items[d.at(d.count-1)], nil
}

func (d *ringDeque[V]) Contains(v V) bool {
	for i := 0; i < d.count; i++ {
		if d.attrs.Compare(d.items[d.at(i)], v) == 0 {
			return true
		}
	}
	return false
}

func (d *ringDeque[V]) Remove(v V) error {
	var zero V
	for i := 0; i < d.count; i++ {
		if d.attrs.Compare(d.items[d.at(i)], v) != 0 {
			continue
		}
		d.attrs.Free(d.items[d.at(i)])
		for j := i; j < d.count-1; j++ {
			d.items[d.at(j)] = d.items[d.at(j+1)]
		}
		d.count--
		d.items[d.at(d.count)] = zero
		return nil
	}
	return adt.ErrNotFound
}

func (d *ringDeque[V]) Reserve(capacity int) error {
	if capacity < 1 || capacity < d.count {
		return fmt.Errorf("%w: %d with %d elements", adt.ErrInvalidCapacity, capacity, d.count)
	}
	items := make([]V, capacity)
	for i := 0; i < d.count; i++ {
		items[i] = d.items[d.at(i)]
	}
	d.items = items
	d.head = 0
	return nil
}

func (d *ringDeque[V]) Clear() {
	var zero V
	for i := 0; i < d.count; i++ {
		idx := d.at(i)
		d.attrs.Free(d.items[idx])
		d.items[idx] = zero
	}
	d.head = 0
	d.count = 0
}

func (d *ringDeque[V]) Close() {
	if d.items == nil {
		return
	}
	d.Clear()
	d.items = nil
}

func (d *ringDeque[V]) Len() int { return d.count }

func (d *ringDeque[V]) Cap() int { return len(d.items) }

func (d *ringDeque[V]) Memory() int {
	var v V
	return int(unsafe.Sizeof(*d)) + len(d.items)*int(unsafe.Sizeof(v))
}

func (d *ringDeque[V]) Dump(w io.Writer) (int, error) {
	if w == nil {
		return 0, adt.ErrNilParameter
	}
	total, err := fmt.Fprintf(w, "deque (array)\n - count = %d\n - capacity = %d\n - memory = %d\n",
		d.count, len(d.items), d.Memory())
	if err != nil {
		return total, err
	}
	for i := 0; i < d.count; i++ {
		n, err := dumpElem[V](w, d.attrs, d.items[d.at(i)])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type dequeNode[V any] struct {
	value V
	prev  *dequeNode[V]
	next  *dequeNode[V]
}

type linkedDeque[V any] struct {
	head   *dequeNode[V]
	tail   *dequeNode[V]
	count  int
	closed bool
	attrs  attr.Attributes[V]
}

func (d *linkedDeque[V]) PushFront(v V) error {
	n := &dequeNode[V]{value: d.attrs.Copy(v), next: d.head}
	if d.head == nil {
		d.tail = n
	} else {
		d.head.prev = n
	}
	d.head = n
	d.count++
	return nil
}

func (d *linkedDeque[V]) PushBack(v V) error {
	n := &dequeNode[V]{value: d.attrs.Copy(v), prev: d.tail}
	if d.tail == nil {
		d.head = n
	} else {
		d.tail.next = n
	}
	d.tail = n
	d.count++
	return nil
}

func (d *linkedDeque[V]) PopFront() (V, error) {
	if d.head == nil {
		var zero V
		return zero, adt.ErrUnderflow
	}
	n := d.head
	d.unlink(n)
	return n.value, nil
}

func (d *linkedDeque[V]) PopBack() (V, error) {
	if d.tail == nil {
		var zero V
		return zero, adt.ErrUnderflow
	}
	n := d.tail
	d.unlink(n)
	return n.value, nil
}

func (d *linkedDeque[V]) unlink(n *dequeNode[V]) {
	if n.prev == nil {
		d.head = n.next
	} else {
		n.prev.next = n.next
	}
	if n.next == nil {
		d.tail = n.prev
	} else {
		n.next.prev = n.prev
	}
	n.prev = nil
	n.next = nil
	d.count--
}

func (d *linkedDeque[V]) Front() (V, error) {
	if d.head == nil {
		var zero V
		return zero, adt.ErrUnderflow
	}
	return d.head.value, nil
}

func (d *linkedDeque[V]) Back() (V, error) {
	if d.tail == nil {
		var zero V
		return zero, adt.ErrUnderflow
	}
	return d.tail.value, nil
}

func (d *linkedDeque[V]) Contains(v V) bool {
	for n := d.head; n != nil; n = n.next {
		if d.attrs.Compare(n.value, v) == 0 {
			return true
		}
	}
	return false
}

func (d *linkedDeque[V]) Remove(v V) error {
	for n := d.head; n != nil; n = n.next {
		if d.attrs.Compare(n.value, v) != 0 {
			continue
		}
		d.unlink(n)
		d.attrs.Free(n.value)
		return nil
	}
	return adt.ErrNotFound
}

func (d *linkedDeque[V]) Reserve(capacity int) error {
	return fmt.Errorf("%w: reserve on linked deque", adt.ErrNotImplemented)
}

func (d *linkedDeque[V]) Clear() {
	for n := d.head; n != nil; {
		next := n.next
		d.attrs.Free(n.value)
		n.prev = nil
		n.next = nil
		n = next
	}
	d.head = nil
	d.tail = nil
	d.count = 0
}

func (d *linkedDeque[V]) Close() {
	if d.closed {
		return
	}
	d.Clear()
	d.closed = true
}

func (d *linkedDeque[V]) Len() int { return d.count }

// Cap reports the current length: a linked deque has no fixed capacity.
func (d *linkedDeque[V]) Cap() int { return d.count }

func (d *linkedDeque[V]) Memory() int {
	return int(unsafe.Sizeof(*d)) + d.count*int(unsafe.Sizeof(dequeNode[V]{}))
}

func (d *linkedDeque[V]) Dump(w io.Writer) (int, error) {
	if w == nil {
		return 0, adt.ErrNilParameter
	}
	total, err := fmt.Fprintf(w, "deque (linked)\n - count = %d\n - memory = %d\n", d.count, d.Memory())
	if err != nil {
		return total, err
	}
	for n := d.head; n != nil; n = n.next {
		nn, err := dumpElem[V](w, d.attrs, n.value)
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
