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

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/adtlib/adt"
	"github.com/adtlib/adt/attr"
)

// Slot holds one owned key/value pair of an open-addressing table. It is
// exported only so custom Allocators can allocate slot arrays.
type Slot[K, V any] struct {
	key   K
	value V
}

// openTable is the open-addressing backend. A slot is in one of three
// states: empty (never occupied), occupied, or tombstoned (occupied then
// deleted). The occupied and tombstones bitmaps track the latter two; the
// slot array itself holds the pairs.
//
// Collisions resolve by linear probing from the home slot hash(key) %
// capacity. Average probe counts at load a are 1+a/2 for a successful
// lookup and a for a miss, degrading to O(capacity) for full or clustered
// tables.
type openTable[K, V any] struct {
	slots      []Slot[K, V]
	occupied   *roaring.Bitmap
	tombstones *roaring.Bitmap
	count      int
	kattr      attr.KeyAttributes[K]
	vattr      attr.Attributes[V]
	alloc      Allocator[K, V]
}

func newOpenTable[K, V any](capacity int, cfg config[K, V]) (*openTable[K, V], error) {
	alloc := cfg.alloc
	if alloc == nil {
		alloc = defaultAllocator[K, V]{}
	}
	slots := alloc.AllocSlots(capacity)
	if len(slots) < capacity {
		return nil, fmt.Errorf("%w: %d slots", adt.ErrAllocationFailed, capacity)
	}
	return &openTable[K, V]{
		slots:      slots[:capacity],
		occupied:   roaring.New(),
		tombstones: roaring.New(),
		kattr:      cfg.kattr,
		vattr:      cfg.vattr,
		alloc:      alloc,
	}, nil
}

// probeAt returns the slot index at offset i of the probe sequence starting
// at home. All modulo wraparound happens here.
func probeAt(home, i, capacity int) int {
	return (home + i) % capacity
}

func (t *openTable[K, V]) home(key K) int {
	return int(t.kattr.Hash(key) % uint64(len(t.slots)))
}

// free reports whether slot idx holds no pair, counting tombstoned slots as
// free: they are open for insertion.
func (t *openTable[K, V]) free(idx int) bool {
	return !t.occupied.Contains(uint32(idx))
}

func (t *openTable[K, V]) Put(key K, value V) error {
	if t.count >= len(t.slots) {
		return fmt.Errorf("%w: table full at capacity %d", adt.ErrOverflow, len(t.slots))
	}

	home := t.home(key)
	if t.free(home) && !t.tombstones.Contains(uint32(home)) {
		// The home slot was never occupied, so no probe sequence for this
		// key has ever been displaced past it: the key cannot be present.
		t.place(home, key, value)
		return nil
	}

	// Probe the full cycle before placing. Deletions at non-home slots
	// leave untombstoned holes inside probe chains, so an equal key can sit
	// beyond a free slot; stopping at the first free slot could create a
	// duplicate.
	firstFree := -1
	for i := 0; i < len(t.slots); i++ {
		idx := probeAt(home, i, len(t.slots))
		if t.free(idx) {
			if firstFree < 0 {
				firstFree = idx
			}
			continue
		}
		if t.kattr.Compare(t.slots[idx].key, key) == 0 {
			t.vattr.Free(t.slots[idx].value)
			t.slots[idx].value = t.vattr.Copy(value)
			return nil
		}
	}

	// count < capacity, so the cycle saw at least one free slot.
	t.place(firstFree, key, value)
	return nil
}

// place installs an owned copy of the pair at a free slot.
func (t *openTable[K, V]) place(idx int, key K, value V) {
	t.slots[idx] = Slot[K, V]{key: t.kattr.Copy(key), value: t.vattr.Copy(value)}
	t.occupied.Add(uint32(idx))
	t.tombstones.Remove(uint32(idx))
	t.count++
}

func (t *openTable[K, V]) Get(key K) (V, error) {
	var zero V
	home := t.home(key)
	if t.free(home) && !t.tombstones.Contains(uint32(home)) {
		// Fast-path miss: an untouched home slot means the key was never
		// displaced anywhere.
		return zero, adt.ErrNotFound
	}
	for i := 0; i < len(t.slots); i++ {
		idx := probeAt(home, i, len(t.slots))
		if !t.free(idx) && t.kattr.Compare(t.slots[idx].key, key) == 0 {
			return t.slots[idx].value, nil
		}
	}
	return zero, adt.ErrNotFound
}

func (t *openTable[K, V]) Delete(key K) error {
	home := t.home(key)
	if t.free(home) && !t.tombstones.Contains(uint32(home)) {
		return adt.ErrNotFound
	}
	for i := 0; i < len(t.slots); i++ {
		idx := probeAt(home, i, len(t.slots))
		if t.free(idx) || t.kattr.Compare(t.slots[idx].key, key) != 0 {
			continue
		}
		t.kattr.Free(t.slots[idx].key)
		t.vattr.Free(t.slots[idx].value)
		t.slots[idx] = Slot[K, V]{}
		t.occupied.Remove(uint32(idx))
		t.count--
		if i == 0 {
			// Tombstone the home slot only: other keys that hashed here
			// and were displaced past it must stay reachable. Non-home
			// slots are left as plain holes; lookups probe the full cycle
			// and tolerate them.
			t.tombstones.Add(uint32(idx))
		}
		return nil
	}
	return adt.ErrNotFound
}

func (t *openTable[K, V]) Reserve(capacity int) error {
	if capacity < 1 || capacity < t.count {
		return fmt.Errorf("%w: %d with %d entries", adt.ErrInvalidCapacity, capacity, t.count)
	}

	slots := t.alloc.AllocSlots(capacity)
	if len(slots) < capacity {
		return fmt.Errorf("%w: %d slots", adt.ErrAllocationFailed, capacity)
	}
	slots = slots[:capacity]
	occupied := roaring.New()

	// Rehash every occupied slot under the new modulus, placing each pair
	// at the first free slot of its new probe sequence. Pairs move without
	// re-copying: ownership transfers to the new array. Tombstones do not
	// carry over; a fresh table has none.
	it := t.occupied.Iterator()
	for it.HasNext() {
		s := t.slots[it.Next()]
		h := int(t.kattr.Hash(s.key) % uint64(capacity))
		for i := 0; i < capacity; i++ {
			idx := probeAt(h, i, capacity)
			if !occupied.Contains(uint32(idx)) {
				slots[idx] = s
				occupied.Add(uint32(idx))
				break
			}
		}
	}

	old := t.slots
	t.slots = slots
	t.occupied = occupied
	t.tombstones = roaring.New()
	t.alloc.FreeSlots(old)
	return nil
}

func (t *openTable[K, V]) Clear() {
	it := t.occupied.Iterator()
	for it.HasNext() {
		idx := it.Next()
		t.kattr.Free(t.slots[idx].key)
		t.vattr.Free(t.slots[idx].value)
		t.slots[idx] = Slot[K, V]{}
	}
	t.occupied.Clear()
	t.tombstones.Clear()
	t.count = 0
}

func (t *openTable[K, V]) Close() {
	if t.slots == nil {
		return
	}
	t.Clear()
	t.alloc.FreeSlots(t.slots)
	t.slots = nil
}

func (t *openTable[K, V]) Len() int {
	return t.count
}

func (t *openTable[K, V]) Cap() int {
	return len(t.slots)
}

func (t *openTable[K, V]) Load() float64 {
	return float64(t.count) / float64(len(t.slots))
}

func (t *openTable[K, V]) Memory() int {
	return int(unsafe.Sizeof(*t)) +
		len(t.slots)*int(unsafe.Sizeof(Slot[K, V]{})) +
		int(t.occupied.GetSizeInBytes()) +
		int(t.tombstones.GetSizeInBytes())
}

func (t *openTable[K, V]) All(yield func(key K, value V) bool) {
	for i := range t.slots {
		if !t.free(i) {
			if !yield(t.slots[i].key, t.slots[i].value) {
				return
			}
		}
	}
}

func (t *openTable[K, V]) Dump(w io.Writer) (int, error) {
	if w == nil {
		return 0, adt.ErrNilParameter
	}
	total, err := fmt.Fprintf(w, "hash table (open addressing)\n - count = %d\n - capacity = %d\n - load = %f\n - memory = %d\n",
		t.count, len(t.slots), t.Load(), t.Memory())
	if err != nil {
		return total, err
	}
	it := t.occupied.Iterator()
	for it.HasNext() {
		s := &t.slots[it.Next()]
		n, err := dumpPair[K, V](w, t.kattr, t.vattr, s.key, s.value)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// dumpPair writes one "key => value" diagnostic line through the attribute
// Print operations.
func dumpPair[K, V any](w io.Writer, kattr attr.KeyAttributes[K], vattr attr.Attributes[V], key K, value V) (int, error) {
	total, err := kattr.Print(w, key)
	if err != nil {
		return total, err
	}
	n, err := io.WriteString(w, " => ")
	total += n
	if err != nil {
		return total, err
	}
	n, err = vattr.Print(w, value)
	total += n
	if err != nil {
		return total, err
	}
	n, err = io.WriteString(w, "\n")
	total += n
	return total, err
}
