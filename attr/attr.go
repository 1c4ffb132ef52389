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

// Package attr defines the attribute contract the container packages use to
// manipulate payloads without knowing their concrete type: an Attributes set
// supplies compare, copy, free, and print operations for a value category,
// and a KeyAttributes set additionally supplies a hash.
//
// Containers own every value they store. They call Copy when a value enters
// the container and Free when it leaves, so an Attributes implementation
// decides the duplication policy: the built-in String and Bytes sets clone,
// while Default intentionally aliases (identity semantics, the useful choice
// for pointer payloads whose lifetime the caller manages).
package attr

import (
	"bytes"
	"cmp"
	"fmt"
	"hash/crc32"
	"io"
	"strings"
	"unsafe"

	"github.com/adtlib/adt"
)

// Attributes describes how a container manipulates values of type V.
//
// All operations must be total: Compare is a total order returning -1, 0, or
// 1, Copy returns a container-owned value, and Free releases a
// container-owned value. Print renders a value to w for diagnostics and
// returns the number of bytes written; there is no parseable format
// guarantee.
type Attributes[V any] interface {
	Compare(a, b V) int
	Copy(v V) V
	Free(v V)
	Print(w io.Writer, v V) (int, error)
}

// KeyAttributes extends Attributes with a deterministic hash, required for
// values used as hash-table keys. The hash is unary: it depends on the value
// alone, never on table state.
type KeyAttributes[V any] interface {
	Attributes[V]
	Hash(v V) uint64
}

// Funcs adapts plain functions into a KeyAttributes. Fields left nil are
// reported by Validate, except PrintFunc which falls back to fmt's %v verb.
type Funcs[V any] struct {
	CompareFunc func(a, b V) int
	CopyFunc    func(v V) V
	FreeFunc    func(v V)
	HashFunc    func(v V) uint64
	PrintFunc   func(w io.Writer, v V) (int, error)
}

func (f Funcs[V]) Compare(a, b V) int { return f.CompareFunc(a, b) }

func (f Funcs[V]) Copy(v V) V { return f.CopyFunc(v) }

func (f Funcs[V]) Free(v V) {
	if f.FreeFunc != nil {
		f.FreeFunc(v)
	}
}

func (f Funcs[V]) Hash(v V) uint64 { return f.HashFunc(v) }

func (f Funcs[V]) Print(w io.Writer, v V) (int, error) {
	if f.PrintFunc != nil {
		return f.PrintFunc(w, v)
	}
	return fmt.Fprintf(w, "%v", v)
}

// Validate reports whether the required operations are present. Compare,
// Copy, and Free are always required; Hash is required when the set is used
// for keys. Containers call this at construction time, so a missing
// operation is a construction error, never a mid-operation panic.
func (f Funcs[V]) Validate(requireHash bool) error {
	switch {
	case f.CompareFunc == nil:
		return fmt.Errorf("%w: compare", adt.ErrNilParameter)
	case f.CopyFunc == nil:
		return fmt.Errorf("%w: copy", adt.ErrNilParameter)
	case f.FreeFunc == nil:
		return fmt.Errorf("%w: free", adt.ErrNilParameter)
	case requireHash && f.HashFunc == nil:
		return fmt.Errorf("%w: hash", adt.ErrNilParameter)
	}
	return nil
}

// Validate checks an attribute set for missing operations. Sets built from
// plain functions (Funcs) can be incomplete and know how to report it;
// ordinary method-set implementations are complete by construction and pass
// trivially. Containers call this once, at construction time.
func Validate(a any, requireHash bool) error {
	if v, ok := a.(interface{ Validate(requireHash bool) error }); ok {
		return v.Validate(requireHash)
	}
	return nil
}

// word returns the leading machine word of v's representation. For pointer
// payloads this is the pointer itself; for integer payloads it is the value.
// Values wider than a word contribute only their low word.
func word[V any](v V) uintptr {
	var w uintptr
	n := unsafe.Sizeof(v)
	if n > unsafe.Sizeof(w) {
		n = unsafe.Sizeof(w)
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&w)), int(n)),
		unsafe.Slice((*byte)(unsafe.Pointer(&v)), int(n)))
	return w
}

type defaultAttrs[V any] struct{}

func (defaultAttrs[V]) Compare(a, b V) int { return cmp.Compare(word(a), word(b)) }

func (defaultAttrs[V]) Copy(v V) V { return v }

func (defaultAttrs[V]) Free(V) {}

func (defaultAttrs[V]) Hash(v V) uint64 {
	// Shift-xor variant over the machine word. Weak as a general-purpose
	// hash but deterministic and cheap; pair with prime capacities.
	h := uint64(word(v))
	high := h & 0xf8000000
	h <<= 5
	h ^= high >> 27
	h ^= 1
	return h
}

func (defaultAttrs[V]) Print(w io.Writer, v V) (int, error) {
	return fmt.Fprintf(w, "%v", v)
}

// Default returns an attribute set with identity semantics: values compare
// and hash by their leading machine word (address order for pointers), Copy
// aliases rather than clones, and Free is a no-op. It is the attribute set
// containers fall back to when none is supplied, and is safe to apply
// repeatedly to the same pointer.
func Default[V any]() KeyAttributes[V] { return defaultAttrs[V]{} }

type intAttrs struct{}

func (intAttrs) Compare(a, b int) int { return cmp.Compare(a, b) }

func (intAttrs) Copy(v int) int { return v }

func (intAttrs) Free(int) {}

func (intAttrs) Hash(v int) uint64 { return uint64(int64(v)) }

func (intAttrs) Print(w io.Writer, v int) (int, error) {
	return fmt.Fprintf(w, "%d", v)
}

// Int returns attributes for int payloads. The hash is the value itself,
// which distributes well under a prime modulus.
func Int() KeyAttributes[int] { return intAttrs{} }

// crc32cTable is precomputed for the Castagnoli polynomial, which is
// hardware accelerated on amd64 and arm64.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

type stringAttrs struct{}

func (stringAttrs) Compare(a, b string) int { return strings.Compare(a, b) }

func (stringAttrs) Copy(v string) string { return strings.Clone(v) }

func (stringAttrs) Free(string) {}

func (stringAttrs) Hash(v string) uint64 {
	return uint64(crc32.Checksum([]byte(v), crc32cTable))
}

func (stringAttrs) Print(w io.Writer, v string) (int, error) {
	return io.WriteString(w, v)
}

// String returns attributes for string payloads. Copy clones the backing
// bytes so the container never aliases caller memory.
func String() KeyAttributes[string] { return stringAttrs{} }

type bytesAttrs struct{}

func (bytesAttrs) Compare(a, b []byte) int { return bytes.Compare(a, b) }

func (bytesAttrs) Copy(v []byte) []byte { return append([]byte(nil), v...) }

func (bytesAttrs) Free([]byte) {}

func (bytesAttrs) Hash(v []byte) uint64 {
	return uint64(crc32.Checksum(v, crc32cTable))
}

func (bytesAttrs) Print(w io.Writer, v []byte) (int, error) {
	return w.Write(v)
}

// Bytes returns attributes for []byte payloads with cloning copy semantics.
func Bytes() KeyAttributes[[]byte] { return bytesAttrs{} }
