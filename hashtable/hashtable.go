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

// Package hashtable provides an attribute-driven hash table with two
// interchangeable collision-resolution backends behind a common interface:
// open addressing with linear probing and tombstone markers, and separate
// chaining with linked buckets. The backend is selected at construction
// time with WithBackend.
//
// The table owns every key and value it stores: both are copied in through
// the attribute Copy operation on Put and released through the attribute
// Free operation on Delete, Clear, and Close. The value returned by Get
// aliases table-owned storage; the caller must not free it and must not use
// it after a later Put, Delete, Clear, Reserve, or Close touches that entry.
//
// Capacity is caller-controlled. It is fixed at creation and changes only
// through an explicit Reserve. Prime capacities give the best distribution
// under the modulo placement both backends use; WithPrimeCapacity rounds the
// requested capacity up to a prime.
//
// A Table is NOT goroutine-safe. Concurrent use must be serialized by the
// caller.
package hashtable

import (
	"fmt"
	"io"

	"github.com/adtlib/adt"
	"github.com/adtlib/adt/attr"
	"github.com/adtlib/adt/internal/primes"
)

// Backend selects a collision-resolution strategy.
type Backend int

const (
	// OpenAddressing resolves collisions by linear probing within a single
	// flat slot array. The table is strictly bounded: Put fails with
	// adt.ErrOverflow once Len() == Cap(). Deletions leave tombstones, so
	// sustained Put/Delete cycles without a Reserve lengthen probe
	// sequences over time even while Len() stays low.
	OpenAddressing Backend = iota

	// SeparateChaining resolves collisions with a linked list per bucket.
	// Buckets grow without bound; Put never overflows, performance degrades
	// linearly with load instead.
	SeparateChaining
)

// Table is an unordered map from keys to values with explicit ownership and
// error reporting. Implementations are single-threaded; no operation blocks
// or suspends.
type Table[K, V any] interface {
	// Put inserts a copy of key and value. If an equal key (under the key
	// attributes' Compare) is already present, its value is replaced: the
	// old value is freed, the new one copied in, the key and Len()
	// unchanged.
	Put(key K, value V) error

	// Get returns the value bound to key, or adt.ErrNotFound. The returned
	// value aliases table-owned storage.
	Get(key K) (V, error)

	// Delete removes the entry whose key compares equal, freeing both the
	// stored key and value. It returns adt.ErrNotFound if there is none.
	Delete(key K) error

	// Reserve changes the capacity to exactly the requested value and
	// rehashes every live entry. It fails with adt.ErrInvalidCapacity if
	// the requested capacity is below 1 or below Len().
	Reserve(capacity int) error

	// Clear frees every entry, leaving an empty table with unchanged
	// capacity.
	Clear()

	// Close frees every entry and releases the backing storage. Close is
	// idempotent; any other use of the table after Close is invalid.
	Close()

	// Len returns the number of live entries.
	Len() int

	// Cap returns the slot (or bucket) capacity.
	Cap() int

	// Load returns Len()/Cap(). In [0, 1] for open addressing; may exceed
	// 1 for separate chaining.
	Load() float64

	// Memory returns an estimate in bytes of the table's structural
	// overhead. Payload sizes are not included.
	Memory() int

	// All calls yield for each entry until yield returns false. The table
	// must not be mutated during iteration.
	All(yield func(key K, value V) bool)

	// Dump writes a diagnostic rendering of the table (capacity, count,
	// load, memory, and every entry through the attribute Print
	// operations) to w, returning the number of bytes written. The format
	// is informational only.
	Dump(w io.Writer) (int, error)
}

// New constructs a Table with the given capacity. Unless overridden by
// options, the backend is OpenAddressing and both attribute sets default to
// attr.Default identity semantics.
func New[K, V any](capacity int, options ...Option[K, V]) (Table[K, V], error) {
	cfg := config[K, V]{backend: OpenAddressing}
	for _, op := range options {
		op.apply(&cfg)
	}
	if cfg.kattr == nil {
		cfg.kattr = attr.Default[K]()
	}
	if cfg.vattr == nil {
		cfg.vattr = attr.Default[V]()
	}
	if err := attr.Validate(cfg.kattr, true); err != nil {
		return nil, fmt.Errorf("key attributes: %w", err)
	}
	if err := attr.Validate(cfg.vattr, false); err != nil {
		return nil, fmt.Errorf("value attributes: %w", err)
	}
	if capacity < 1 {
		return nil, fmt.Errorf("%w: %d", adt.ErrInvalidCapacity, capacity)
	}
	if cfg.prime {
		capacity = primes.Next(capacity)
	}

	switch cfg.backend {
	case SeparateChaining:
		if cfg.alloc != nil {
			return nil, fmt.Errorf("%w: allocator with separate chaining", adt.ErrNotImplemented)
		}
		return newChainTable(capacity, cfg), nil
	default:
		return newOpenTable(capacity, cfg)
	}
}
