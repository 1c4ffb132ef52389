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

// Package adt holds the error taxonomy shared by the container packages in
// this module (attr, hashtable, stack, queue, deque).
//
// Every fallible container operation returns one of the sentinels below,
// possibly wrapped with operation context via fmt.Errorf("%w: ..."). Callers
// match with errors.Is. Operations never partially mutate state and then
// fail: a non-nil error means the container is exactly as it was before the
// call.
package adt

import "errors"

var (
	// ErrNilParameter indicates a required argument was absent: a nil
	// io.Writer passed to a Dump method, or an attribute set missing a
	// required operation at construction time.
	ErrNilParameter = errors.New("adt: nil parameter")

	// ErrInvalidCapacity indicates a requested capacity below 1, or a
	// Reserve that would shrink a container below its current length.
	ErrInvalidCapacity = errors.New("adt: invalid capacity")

	// ErrAllocationFailed indicates a custom Allocator did not satisfy an
	// allocation request.
	ErrAllocationFailed = errors.New("adt: allocation failed")

	// ErrOverflow indicates an insert into a bounded container that is
	// already at capacity.
	ErrOverflow = errors.New("adt: overflow")

	// ErrUnderflow indicates a removal from an empty stack, queue, or
	// deque.
	ErrUnderflow = errors.New("adt: underflow")

	// ErrNotFound indicates a lookup or removal found no matching element.
	ErrNotFound = errors.New("adt: not found")

	// ErrNotImplemented indicates an operation that is meaningless for the
	// selected backend, such as Reserve on an unbounded linked backend.
	ErrNotImplemented = errors.New("adt: not implemented")
)
