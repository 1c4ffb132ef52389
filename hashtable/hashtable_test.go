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
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adtlib/adt"
	"github.com/adtlib/adt/attr"
)

var backends = []struct {
	name    string
	backend Backend
}{
	{"open", OpenAddressing},
	{"chain", SeparateChaining},
}

// toBuiltinMap returns the elements as a map[K]V. Useful for testing.
func toBuiltinMap[K comparable, V any](t Table[K, V]) map[K]V {
	r := make(map[K]V)
	t.All(func(k K, v V) bool {
		r[k] = v
		return true
	})
	return r
}

// randElement relies on iteration order to pick an arbitrary element. The
// selection is not uniform; good enough for randomized testing.
func randElement[K, V any](t Table[K, V]) (key K, value V, ok bool) {
	t.All(func(k K, v V) bool {
		key, value = k, v
		ok = true
		return false
	})
	return
}

func newIntTable(t *testing.T, capacity int, backend Backend, options ...Option[int, int]) Table[int, int] {
	t.Helper()
	options = append([]Option[int, int]{
		WithBackend[int, int](backend),
		WithKeyAttributes[int, int](attr.Int()),
		WithValueAttributes[int, int](attr.Int()),
	}, options...)
	tbl, err := New[int, int](capacity, options...)
	require.NoError(t, err)
	return tbl
}

func TestNewErrors(t *testing.T) {
	t.Run("invalid-capacity", func(t *testing.T) {
		for _, capacity := range []int{0, -1, -17} {
			_, err := New[int, int](capacity)
			require.ErrorIs(t, err, adt.ErrInvalidCapacity)
		}
	})

	t.Run("incomplete-key-attributes", func(t *testing.T) {
		_, err := New[int, int](7, WithKeyAttributes[int, int](attr.Funcs[int]{
			CopyFunc: func(v int) int { return v },
			HashFunc: func(v int) uint64 { return uint64(v) },
		}))
		require.ErrorIs(t, err, adt.ErrNilParameter)
	})

	t.Run("missing-hash", func(t *testing.T) {
		_, err := New[int, int](7, WithKeyAttributes[int, int](attr.Funcs[int]{
			CompareFunc: func(a, b int) int { return a - b },
			CopyFunc:    func(v int) int { return v },
			FreeFunc:    func(int) {},
		}))
		require.ErrorIs(t, err, adt.ErrNilParameter)
	})

	t.Run("allocator-with-chaining", func(t *testing.T) {
		_, err := New[int, int](7,
			WithBackend[int, int](SeparateChaining),
			WithAllocator[int, int](defaultAllocator[int, int]{}))
		require.ErrorIs(t, err, adt.ErrNotImplemented)
	})
}

func TestPrimeCapacity(t *testing.T) {
	testCases := []struct {
		requested int
		expected  int
	}{
		{1, 2},
		{2, 2},
		{10, 11},
		{11, 11},
		{12, 13},
		{100, 101},
	}
	for _, c := range testCases {
		t.Run(fmt.Sprint(c.requested), func(t *testing.T) {
			tbl, err := New[int, int](c.requested, WithPrimeCapacity[int, int]())
			require.NoError(t, err)
			defer tbl.Close()
			require.Equal(t, c.expected, tbl.Cap())
		})
	}
}

func TestBasic(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			tbl := newIntTable(t, 10, b.backend, WithPrimeCapacity[int, int]())
			defer tbl.Close()
			require.Equal(t, 11, tbl.Cap())

			for i := 1; i <= 10; i++ {
				require.NoError(t, tbl.Put(i, i*10))
			}
			require.Equal(t, 10, tbl.Len())
			require.InDelta(t, 10.0/11.0, tbl.Load(), 1e-9)

			v, err := tbl.Get(5)
			require.NoError(t, err)
			require.Equal(t, 50, v)

			_, err = tbl.Get(42)
			require.ErrorIs(t, err, adt.ErrNotFound)

			require.NoError(t, tbl.Delete(5))
			require.Equal(t, 9, tbl.Len())
			_, err = tbl.Get(5)
			require.ErrorIs(t, err, adt.ErrNotFound)
			require.ErrorIs(t, tbl.Delete(5), adt.ErrNotFound)

			require.NoError(t, tbl.Put(5, 999))
			v, err = tbl.Get(5)
			require.NoError(t, err)
			require.Equal(t, 999, v)
			require.Equal(t, 10, tbl.Len())
		})
	}
}

func TestUpdateReplacesValue(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			freed := make(map[int]int)
			vattr := attr.Funcs[int]{
				CompareFunc: func(a, b int) int { return a - b },
				CopyFunc:    func(v int) int { return v },
				FreeFunc:    func(v int) { freed[v]++ },
			}
			tbl, err := New[int, int](7,
				WithBackend[int, int](b.backend),
				WithKeyAttributes[int, int](attr.Int()),
				WithValueAttributes[int, int](vattr))
			require.NoError(t, err)
			defer tbl.Close()

			require.NoError(t, tbl.Put(1, 100))
			require.NoError(t, tbl.Put(1, 200))
			require.Equal(t, 1, tbl.Len())
			require.Equal(t, 1, freed[100])
			require.Zero(t, freed[200])

			v, err := tbl.Get(1)
			require.NoError(t, err)
			require.Equal(t, 200, v)

			require.NoError(t, tbl.Delete(1))
			require.Equal(t, 1, freed[200])
		})
	}
}

func TestOpenAddressingOverflow(t *testing.T) {
	tbl := newIntTable(t, 3, OpenAddressing)
	defer tbl.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, tbl.Put(i, i))
	}
	require.ErrorIs(t, tbl.Put(7, 7), adt.ErrOverflow)
	// Capacity is checked before the key search, so even an update of a
	// present key is rejected on a full table.
	require.ErrorIs(t, tbl.Put(0, 42), adt.ErrOverflow)

	require.Equal(t, 3, tbl.Len())
	require.Equal(t, map[int]int{0: 0, 1: 1, 2: 2}, toBuiltinMap(tbl))

	// Deleting makes room again.
	require.NoError(t, tbl.Delete(1))
	require.NoError(t, tbl.Put(7, 7))
	require.Equal(t, map[int]int{0: 0, 2: 2, 7: 7}, toBuiltinMap(tbl))
}

func TestChainingExceedsCapacity(t *testing.T) {
	tbl := newIntTable(t, 4, SeparateChaining)
	defer tbl.Close()

	for i := 0; i < 10; i++ {
		require.NoError(t, tbl.Put(i, i*10))
	}
	require.Equal(t, 10, tbl.Len())
	require.Equal(t, 4, tbl.Cap())
	require.InDelta(t, 2.5, tbl.Load(), 1e-9)

	for i := 0; i < 10; i++ {
		v, err := tbl.Get(i)
		require.NoError(t, err)
		require.Equal(t, i*10, v)
	}
}

func TestReserve(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			tbl := newIntTable(t, 11, b.backend)
			defer tbl.Close()

			e := make(map[int]int)
			for i := 1; i <= 10; i++ {
				require.NoError(t, tbl.Put(i, i*10))
				e[i] = i * 10
			}

			require.ErrorIs(t, tbl.Reserve(0), adt.ErrInvalidCapacity)
			require.ErrorIs(t, tbl.Reserve(9), adt.ErrInvalidCapacity)

			require.NoError(t, tbl.Reserve(23))
			require.Equal(t, 23, tbl.Cap())
			require.Equal(t, 10, tbl.Len())
			require.Equal(t, e, toBuiltinMap(tbl))

			// Shrinking down to the live count is allowed.
			require.NoError(t, tbl.Reserve(10))
			require.Equal(t, 10, tbl.Cap())
			require.Equal(t, e, toBuiltinMap(tbl))
		})
	}
}

// constHashAttrs returns int key attributes whose hash is the constant h,
// forcing every key into the same probe sequence or bucket chain.
func constHashAttrs(h uint64) attr.KeyAttributes[int] {
	return attr.Funcs[int]{
		CompareFunc: func(a, b int) int { return a - b },
		CopyFunc:    func(v int) int { return v },
		FreeFunc:    func(int) {},
		HashFunc:    func(int) uint64 { return h },
	}
}

func TestDegenerateHash(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			for _, h := range []uint64{0, 3, ^uint64(0)} {
				t.Run(fmt.Sprintf("%016x", h), func(t *testing.T) {
					tbl, err := New[int, int](7,
						WithBackend[int, int](b.backend),
						WithKeyAttributes[int, int](constHashAttrs(h)),
						WithValueAttributes[int, int](attr.Int()))
					require.NoError(t, err)
					defer tbl.Close()

					e := make(map[int]int)
					for i := 0; i < 7; i++ {
						require.NoError(t, tbl.Put(i, i))
						e[i] = i
					}
					require.Equal(t, e, toBuiltinMap(tbl))

					for i := 0; i < 7; i++ {
						require.NoError(t, tbl.Delete(i))
						delete(e, i)
						require.Equal(t, e, toBuiltinMap(tbl))
					}
				})
			}
		})
	}
}

// Deleting a key in the middle of a collision chain must not cut off the keys
// displaced past it, and re-inserting a key that sits beyond such a hole must
// update the existing entry rather than create a duplicate.
func TestDeleteInsideProbeChain(t *testing.T) {
	tbl, err := New[int, int](7,
		WithKeyAttributes[int, int](constHashAttrs(2)),
		WithValueAttributes[int, int](attr.Int()))
	require.NoError(t, err)
	defer tbl.Close()

	// All three keys home to slot 2 and occupy slots 2, 3, 4.
	for _, k := range []int{10, 20, 30} {
		require.NoError(t, tbl.Put(k, k))
	}

	// Delete the home-slot entry; its slot is tombstoned and the displaced
	// keys must remain reachable through it.
	require.NoError(t, tbl.Delete(10))
	for _, k := range []int{20, 30} {
		v, err := tbl.Get(k)
		require.NoError(t, err)
		require.Equal(t, k, v)
	}

	// Delete the middle entry, leaving a plain hole inside the chain.
	require.NoError(t, tbl.Delete(20))
	v, err := tbl.Get(30)
	require.NoError(t, err)
	require.Equal(t, 30, v)

	// Updating the key beyond the hole must not duplicate it into the hole.
	require.NoError(t, tbl.Put(30, 33))
	require.Equal(t, 1, tbl.Len())
	v, err = tbl.Get(30)
	require.NoError(t, err)
	require.Equal(t, 33, v)
	require.Equal(t, map[int]int{30: 33}, toBuiltinMap(tbl))
}

func TestRandom(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			tbl := newIntTable(t, 97, b.backend)
			defer tbl.Close()

			const keySpace = 256
			e := make(map[int]int)
			for i := 0; i < 10000; i++ {
				switch r := rand.Float64(); {
				case r < 0.5: // 50% inserts and updates
					k, v := rand.Intn(keySpace), rand.Int()
					if err := tbl.Put(k, v); err != nil {
						require.ErrorIs(t, err, adt.ErrOverflow)
						require.Equal(t, tbl.Len(), tbl.Cap())
					} else {
						e[k] = v
					}
				case r < 0.65: // 15% deletes
					if k, _, ok := randElement(tbl); !ok {
						require.Zero(t, tbl.Len())
					} else {
						require.NoError(t, tbl.Delete(k))
						delete(e, k)
					}
				case r < 0.90: // 25% lookups
					k := rand.Intn(keySpace)
					v, err := tbl.Get(k)
					if ev, ok := e[k]; ok {
						require.NoError(t, err)
						require.Equal(t, ev, v)
					} else {
						require.ErrorIs(t, err, adt.ErrNotFound)
					}
				case r < 0.97: // 7% rehash and cross-check
					require.NoError(t, tbl.Reserve(tbl.Len()+97+rand.Intn(64)))
					require.Equal(t, e, toBuiltinMap(tbl))
				default: // 3% clear
					tbl.Clear()
					clear(e)
				}
				require.Equal(t, len(e), tbl.Len())
			}
			require.Equal(t, e, toBuiltinMap(tbl))
		})
	}
}

func TestClear(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			freed := 0
			vattr := attr.Funcs[int]{
				CompareFunc: func(a, b int) int { return a - b },
				CopyFunc:    func(v int) int { return v },
				FreeFunc:    func(int) { freed++ },
			}
			tbl, err := New[int, int](11,
				WithBackend[int, int](b.backend),
				WithKeyAttributes[int, int](attr.Int()),
				WithValueAttributes[int, int](vattr))
			require.NoError(t, err)
			defer tbl.Close()

			for i := 0; i < 8; i++ {
				require.NoError(t, tbl.Put(i, i))
			}
			tbl.Clear()
			require.Zero(t, tbl.Len())
			require.Equal(t, 11, tbl.Cap())
			require.Equal(t, 8, freed)

			// The table stays usable after Clear.
			require.NoError(t, tbl.Put(1, 1))
			require.Equal(t, 1, tbl.Len())
		})
	}
}

func TestCloseIdempotent(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			tbl := newIntTable(t, 7, b.backend)
			require.NoError(t, tbl.Put(1, 1))
			tbl.Close()
			tbl.Close()
		})
	}
}

func TestAllEarlyStop(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			tbl := newIntTable(t, 11, b.backend)
			defer tbl.Close()
			for i := 0; i < 8; i++ {
				require.NoError(t, tbl.Put(i, i))
			}
			seen := 0
			tbl.All(func(int, int) bool {
				seen++
				return seen < 3
			})
			require.Equal(t, 3, seen)
		})
	}
}

func TestDefaultAttributesIdentity(t *testing.T) {
	// With default attributes, pointer keys compare by address: two distinct
	// pointers to equal payloads are distinct keys.
	a, b := new(int), new(int)
	*a, *b = 7, 7

	tbl, err := New[*int, string](7)
	require.NoError(t, err)
	defer tbl.Close()

	require.NoError(t, tbl.Put(a, "a"))
	require.NoError(t, tbl.Put(b, "b"))
	require.Equal(t, 2, tbl.Len())

	v, err := tbl.Get(a)
	require.NoError(t, err)
	require.Equal(t, "a", v)
	v, err = tbl.Get(b)
	require.NoError(t, err)
	require.Equal(t, "b", v)
}

func TestStringKeys(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			tbl, err := New[string, int](13,
				WithBackend[string, int](b.backend),
				WithKeyAttributes[string, int](attr.String()),
				WithValueAttributes[string, int](attr.Int()))
			require.NoError(t, err)
			defer tbl.Close()

			words := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
			for i, w := range words {
				require.NoError(t, tbl.Put(w, i))
			}
			for i, w := range words {
				// Lookup through a fresh string with the same bytes: the
				// stored key is a clone, not an alias.
				v, err := tbl.Get(strings.Clone(w))
				require.NoError(t, err)
				require.Equal(t, i, v)
			}
			require.NoError(t, tbl.Delete("gamma"))
			_, err = tbl.Get("gamma")
			require.ErrorIs(t, err, adt.ErrNotFound)
		})
	}
}

func TestDump(t *testing.T) {
	testCases := []struct {
		name    string
		backend Backend
		header  string
	}{
		{"open", OpenAddressing, "hash table (open addressing)"},
		{"chain", SeparateChaining, "hash table (separate chaining)"},
	}
	for _, c := range testCases {
		t.Run(c.name, func(t *testing.T) {
			tbl := newIntTable(t, 7, c.backend)
			defer tbl.Close()
			require.NoError(t, tbl.Put(1, 10))
			require.NoError(t, tbl.Put(2, 20))

			var sb strings.Builder
			n, err := tbl.Dump(&sb)
			require.NoError(t, err)
			require.Equal(t, sb.Len(), n)
			out := sb.String()
			require.True(t, strings.HasPrefix(out, c.header))
			require.Contains(t, out, " - count = 2")
			require.Contains(t, out, " - capacity = 7")
			require.Contains(t, out, "1 => 10")
			require.Contains(t, out, "2 => 20")

			_, err = tbl.Dump(nil)
			require.ErrorIs(t, err, adt.ErrNilParameter)
		})
	}
}

// countingAllocator tracks slot-array allocations so tests can observe the
// allocator hook being exercised.
type countingAllocator struct {
	allocs int
	frees  int
	limit  int // fail allocations larger than limit when > 0
}

func (a *countingAllocator) AllocSlots(n int) []Slot[int, int] {
	if a.limit > 0 && n > a.limit {
		return nil
	}
	a.allocs++
	return make([]Slot[int, int], n)
}

func (a *countingAllocator) FreeSlots(s []Slot[int, int]) {
	a.frees++
}

func TestAllocator(t *testing.T) {
	t.Run("counting", func(t *testing.T) {
		alloc := &countingAllocator{}
		tbl, err := New[int, int](7,
			WithKeyAttributes[int, int](attr.Int()),
			WithValueAttributes[int, int](attr.Int()),
			WithAllocator[int, int](alloc))
		require.NoError(t, err)
		require.Equal(t, 1, alloc.allocs)

		for i := 0; i < 5; i++ {
			require.NoError(t, tbl.Put(i, i))
		}
		require.NoError(t, tbl.Reserve(13))
		require.Equal(t, 2, alloc.allocs)
		require.Equal(t, 1, alloc.frees)

		tbl.Close()
		require.Equal(t, 2, alloc.frees)
	})

	t.Run("failing", func(t *testing.T) {
		alloc := &countingAllocator{limit: 8}
		_, err := New[int, int](16,
			WithKeyAttributes[int, int](attr.Int()),
			WithValueAttributes[int, int](attr.Int()),
			WithAllocator[int, int](alloc))
		require.ErrorIs(t, err, adt.ErrAllocationFailed)

		tbl, err := New[int, int](7,
			WithKeyAttributes[int, int](attr.Int()),
			WithValueAttributes[int, int](attr.Int()),
			WithAllocator[int, int](alloc))
		require.NoError(t, err)
		defer tbl.Close()
		require.NoError(t, tbl.Put(1, 1))
		require.ErrorIs(t, tbl.Reserve(16), adt.ErrAllocationFailed)

		// The failed reserve left the table untouched.
		require.Equal(t, 7, tbl.Cap())
		v, err := tbl.Get(1)
		require.NoError(t, err)
		require.Equal(t, 1, v)
	})
}

func TestMemory(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			tbl := newIntTable(t, 11, b.backend)
			defer tbl.Close()
			base := tbl.Memory()
			require.Positive(t, base)
			for i := 0; i < 8; i++ {
				require.NoError(t, tbl.Put(i, i))
			}
			require.GreaterOrEqual(t, tbl.Memory(), base)
		})
	}
}
