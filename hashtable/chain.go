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

package hashtable

import (
	"fmt"
	"io"
	"unsafe"

	"github.com/adtlib/adt"
	"github.com/adtlib/adt/attr"
)

type chainNode[K, V any] struct {
	key   K
	value V
	next  *chainNode[K, V]
}

// chainTable is the separate-chaining backend: an array of singly-linked
// bucket chains indexed by hash(key) % capacity. Chains grow without bound,
// so Put never overflows; operations average O(1+a) at load a = count /
// capacity.
type chainTable[K, V any] struct {
	buckets []*chainNode[K, V]
	count   int
	kattr   attr.KeyAttributes[K]
	vattr   attr.Attributes[V]
}

func newChainTable[K, V any](capacity int, cfg config[K, V]) *chainTable[K, V] {
	return &chainTable[K, V]{
		buckets: make([]*chainNode[K, V], capacity),
		kattr:   cfg.kattr,
		vattr:   cfg.vattr,
	}
}

func (t *chainTable[K, V]) home(key K) int {
	return int(t.kattr.Hash(key) % uint64(len(t.buckets)))
}

func (t *chainTable[K, V]) Put(key K, value V) error {
	idx := t.home(key)
	for n := t.buckets[idx]; n != nil; n = n.next {
		if t.kattr.Compare(n.key, key) == 0 {
			t.vattr.Free(n.value)
			n.value = t.vattr.Copy(value)
			return nil
		}
	}
	t.buckets[idx] = &chainNode[K, V]{
		key:   t.kattr.Copy(key),
		value: t.vattr.Copy(value),
		next:  t.buckets[idx],
	}
	t.count++
	return nil
}

func (t *chainTable[K, V]) Get(key K) (V, error) {
	for n := t.buckets[t.home(key)]; n != nil; n = n.next {
		if t.kattr.Compare(n.key, key) == 0 {
			return n.value, nil
		}
	}
	var zero V
	return zero, adt.ErrNotFound
}

func (t *chainTable[K, V]) Delete(key K) error {
	idx := t.home(key)
	var prev *chainNode[K, V]
	for n := t.buckets[idx]; n != nil; prev, n = n, n.next {
		if t.kattr.Compare(n.key, key) != 0 {
			continue
		}
		if prev == nil {
			t.buckets[idx] = n.next
		} else {
			prev.next = n.next
		}
		t.kattr.Free(n.key)
		t.vattr.Free(n.value)
		t.count--
		return nil
	}
	return adt.ErrNotFound
}

func (t *chainTable[K, V]) Reserve(capacity int) error {
	if capacity < 1 || capacity < t.count {
		return fmt.Errorf("%w: %d with %d entries", adt.ErrInvalidCapacity, capacity, t.count)
	}

	// Re-link rather than copy: each node detaches from its old chain and
	// prepends to its new bucket, preserving the owned key/value storage.
	buckets := make([]*chainNode[K, V], capacity)
	for _, n := range t.buckets {
		for n != nil {
			next := n.next
			idx := int(t.kattr.Hash(n.key) % uint64(capacity))
			n.next = buckets[idx]
			buckets[idx] = n
			n = next
		}
	}
	t.buckets = buckets
	return nil
}

func (t *chainTable[K, V]) Clear() {
	for i, n := range t.buckets {
		for n != nil {
			next := n.next
			t.kattr.Free(n.key)
			t.vattr.Free(n.value)
			n.next = nil
			n = next
		}
		t.buckets[i] = nil
	}
	t.count = 0
}

func (t *chainTable[K, V]) Close() {
	if t.buckets == nil {
		return
	}
	t.Clear()
	t.buckets = nil
}

func (t *chainTable[K, V]) Len() int {
	return t.count
}

func (t *chainTable[K, V]) Cap() int {
	return len(t.buckets)
}

func (t *chainTable[K, V]) Load() float64 {
	return float64(t.count) / float64(len(t.buckets))
}

func (t *chainTable[K, V]) Memory() int {
	return int(unsafe.Sizeof(*t)) +
		len(t.buckets)*int(unsafe.Sizeof((*chainNode[K, V])(nil))) +
		t.count*int(unsafe.Sizeof(chainNode[K, V]{}))
}

func (t *chainTable[K, V]) All(yield func(key K, value V) bool) {
	for _, n := range t.buckets {
		for ; n != nil; n = n.next {
			if !yield(n.key, n.value) {
				return
			}
		}
	}
}

func (t *chainTable[K, V]) Dump(w io.Writer) (int, error) {
	if w == nil {
		return 0, adt.ErrNilParameter
	}
	total, err := fmt.Fprintf(w, "hash table (separate chaining)\n - count = %d\n - capacity = %d\n - load = %f\n - memory = %d\n",
		t.count, len(t.buckets), t.Load(), t.Memory())
	if err != nil {
		return total, err
	}
	for _, n := range t.buckets {
		for ; n != nil; n = n.next {
			nn, err := dumpPair[K, V](w, t.kattr, t.vattr, n.key, n.value)
			total += nn
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}
