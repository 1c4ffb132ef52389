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

// Package stack provides an attribute-driven LIFO stack with two backends:
// a bounded array and an unbounded linked list.
//
// The stack owns its elements: Push copies through the attribute Copy,
// Remove/Clear/Close release through the attribute Free. Pop is the
// exception: it transfers ownership of the popped element to the caller,
// who becomes responsible for releasing it.
//
// A Stack is NOT goroutine-safe.
package stack

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
	// Array is a bounded flat array; Push fails with adt.ErrOverflow when
	// the stack is at capacity.
	Array Backend = iota

	// Linked is an unbounded singly-linked list. Reserve is meaningless
	// for it and fails with adt.ErrNotImplemented; Cap reports the current
	// length.
	Linked
)

// Stack is a LIFO container over owned values.
type Stack[V any] interface {
	// Push places a copy of v on top of the stack.
	Push(v V) error

	// Pop removes and returns the top element, transferring ownership to
	// the caller. It fails with adt.ErrUnderflow on an empty stack.
	Pop() (V, error)

	// Peek returns the top element without removing it. The returned value
	// aliases stack-owned storage.
	Peek() (V, error)

	// Contains reports whether an element comparing equal to v is present.
	Contains(v V) bool

	// Remove deletes the topmost element comparing equal to v, freeing it.
	// It fails with adt.ErrNotFound if there is none.
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

// New constructs a Stack. The capacity bounds the Array backend and is
// ignored by Linked. Attributes default to attr.Default identity semantics.
func New[V any](capacity int, options ...Option[V]) (Stack[V], error) {
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
		return &linkedStack[V]{attrs: cfg.attrs}, nil
	}
	if capacity < 1 {
		return nil, fmt.Errorf("%w: %d", adt.ErrInvalidCapacity, capacity)
	}
	return &arrayStack[V]{items: make([]V, capacity), attrs: cfg.attrs}, nil
}

type config[V any] struct {
	backend Backend
	attrs   attr.Attributes[V]
}

// Option configures a Stack while it is being created.
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

type arrayStack[V any] struct {
	items []V
	top   int // number of elements; items[top-1] is the top of the stack
	attrs attr.Attributes[V]
}

func (s *arrayStack[V]) Push(v V) error {
	if s.top == len(s.items) {
		return fmt.Errorf("%w: stack full at capacity %d", adt.ErrOverflow, len(s.items))
	}
	s.items[s.top] = s.attrs.Copy(v)
	s.top++
	return nil
}

func (s *arrayStack[V]) Pop() (V, error) {
	var zero V
	if s.top == 0 {
		return zero, adt.ErrUnderflow
	}
	s.top--
	v := s.items[s.top]
	s.items[s.top] = zero
	return v, nil
}

func (s *arrayStack[V]) Peek() (V, error) {
	if s.top == 0 {
		var zero V
		return zero, adt.ErrUnderflow
	}
	return s.items[s.top-1], nil
}

func (s *arrayStack[V]) Contains(v V) bool {
	for i := 0; i < s.top; i++ {
		if s.attrs.Compare(s.items[i], v) == 0 {
			return true
		}
	}
	return false
}

func (s *arrayStack[V]) Remove(v V) error {
	var zero V
	for i := s.top - 1; i >= 0; i-- {
		if s.attrs.Compare(s.items[i], v) != 0 {
			continue
		}
		s.attrs.Free(s.items[i])
		copy(s.items[i:], s.items[i+1:s.top])
		s.top--
		s.items[s.top] = zero
		return nil
	}
	return adt.ErrNotFound
}

func (s *arrayStack[V]) Reserve(capacity int) error {
	if capacity < 1 || capacity < s.top {
		return fmt.Errorf("%w: %d with %d elements", adt.ErrInvalidCapacity, capacity, s.top)
	}
	items := make([]V, capacity)
	copy(items, s.items[:s.top])
	s.items = items
	return nil
}

func (s *arrayStack[V]) Clear() {
	var zero V
	for i := 0; i < s.top; i++ {
		s.attrs.Free(s.items[i])
		s.items[i] = zero
	}
	s.top = 0
}

func (s *arrayStack[V]) Close() {
	if s.items == nil {
		return
	}
	s.Clear()
	s.items = nil
}

func (s *arrayStack[V]) Len() int { return s.top }

func (s *arrayStack[V]) Cap() int { return len(s.items) }

func (s *arrayStack[V]) Memory() int {
	var v V
	return int(unsafe.Sizeof(*s)) + len(s.items)*int(unsafe.Sizeof(v))
}

func (s *arrayStack[V]) Dump(w io.Writer) (int, error) {
	if w == nil {
		return 0, adt.ErrNilParameter
	}
	total, err := fmt.Fprintf(w, "stack (array)\n - count = %d\n - capacity = %d\n - memory = %d\n",
		s.top, len(s.items), s.Memory())
	if err != nil {
		return total, err
	}
	// Top of the stack first.
	for i := s.top - 1; i >= 0; i-- {
		n, err := dumpElem[V](w, s.attrs, s.items[i])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type stackNode[V any] struct {
	value V
	next  *stackNode[V]
}

type linkedStack[V any] struct {
	head   *stackNode[V]
	count  int
	closed bool
	attrs  attr.Attributes[V]
}

func (s *linkedStack[V]) Push(v V) error {
	s.head = &stackNode[V]{value: s.attrs.Copy(v), next: s.head}
	s.count++
	return nil
}

func (s *linkedStack[V]) Pop() (V, error) {
	if s.head == nil {
		var zero V
		return zero, adt.ErrUnderflow
	}
	n := s.head
	s.head = n.next
	s.count--
	return n.value, nil
}

func (s *linkedStack[V]) Peek() (V, error) {
	if s.head == nil {
		var zero V
		return zero, adt.ErrUnderflow
	}
	return s.head.value, nil
}

func (s *linkedStack[V]) Contains(v V) bool {
	for n := s.head; n != nil; n = n.next {
		if s.attrs.Compare(n.value, v) == 0 {
			return true
		}
	}
	return false
}

func (s *linkedStack[V]) Remove(v V) error {
	var prev *stackNode[V]
	for n := s.head; n != nil; prev, n = n, n.next {
		if s.attrs.Compare(n.value, v) != 0 {
			continue
		}
		if prev == nil {
			s.head = n.next
		} else {
			prev.next = n.next
		}
		s.attrs.Free(n.value)
		s.count--
		return nil
	}
	return adt.ErrNotFound
}

func (s *linkedStack[V]) Reserve(capacity int) error {
	return fmt.Errorf("%w: reserve on linked stack", adt.ErrNotImplemented)
}

func (s *linkedStack[V]) Clear() {
	for n := s.head; n != nil; {
		next := n.next
		s.attrs.Free(n.value)
		n.next = nil
		n = next
	}
	s.head = nil
	s.count = 0
}

func (s *linkedStack[V]) Close() {
	if s.closed {
		return
	}
	s.Clear()
	s.closed = true
}

func (s *linkedStack[V]) Len() int { return s.count }

// Cap reports the current length: a linked stack has no fixed capacity.
func (s *linkedStack[V]) Cap() int { return s.count }

func (s *linkedStack[V]) Memory() int {
	return int(unsafe.Sizeof(*s)) + s.count*int(unsafe.Sizeof(stackNode[V]{}))
}

func (s *linkedStack[V]) Dump(w io.Writer) (int, error) {
	if w == nil {
		return 0, adt.ErrNilParameter
	}
	total, err := fmt.Fprintf(w, "stack (linked)\n - count = %d\n - memory = %d\n", s.count, s.Memory())
	if err != nil {
		return total, err
	}
	for n := s.head; n != nil; n = n.next {
		nn, err := dumpElem[V](w, s.attrs, n.value)
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
