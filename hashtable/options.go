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

import "github.com/adtlib/adt/attr"

type config[K, V any] struct {
	backend Backend
	kattr   attr.KeyAttributes[K]
	vattr   attr.Attributes[V]
	alloc   Allocator[K, V]
	prime   bool
}

// Option provides an interface to configure a Table while it is being
// created.
type Option[K, V any] interface {
	apply(cfg *config[K, V])
}

type backendOption[K, V any] struct {
	backend Backend
}

func (op backendOption[K, V]) apply(cfg *config[K, V]) {
	cfg.backend = op.backend
}

// WithBackend is an option selecting the collision-resolution backend.
func WithBackend[K, V any](backend Backend) Option[K, V] {
	return backendOption[K, V]{backend}
}

type keyAttrOption[K, V any] struct {
	kattr attr.KeyAttributes[K]
}

func (op keyAttrOption[K, V]) apply(cfg *config[K, V]) {
	cfg.kattr = op.kattr
}

// WithKeyAttributes is an option to specify the attribute set used for
// keys. Compare, Copy, Free, and Hash must all be present.
func WithKeyAttributes[K, V any](kattr attr.KeyAttributes[K]) Option[K, V] {
	return keyAttrOption[K, V]{kattr}
}

type valueAttrOption[K, V any] struct {
	vattr attr.Attributes[V]
}

func (op valueAttrOption[K, V]) apply(cfg *config[K, V]) {
	cfg.vattr = op.vattr
}

// WithValueAttributes is an option to specify the attribute set used for
// values.
func WithValueAttributes[K, V any](vattr attr.Attributes[V]) Option[K, V] {
	return valueAttrOption[K, V]{vattr}
}

// Allocator specifies an interface for allocating and releasing the slot
// array of an open-addressing table. The default allocator uses Go's builtin
// make() and lets the GC reclaim memory; a custom allocator that manages
// memory manually must see Table.Close to get its FreeSlots call.
//
// Only the OpenAddressing backend has a slot array; combining WithAllocator
// and SeparateChaining fails with adt.ErrNotImplemented.
type Allocator[K, V any] interface {
	// AllocSlots should return a slice equivalent to make([]Slot[K,V], n).
	AllocSlots(n int) []Slot[K, V]

	// FreeSlots can optionally release the memory associated with the
	// supplied slice, which is guaranteed to have been returned by
	// AllocSlots.
	FreeSlots(s []Slot[K, V])
}

type defaultAllocator[K, V any] struct{}

func (defaultAllocator[K, V]) AllocSlots(n int) []Slot[K, V] {
	return make([]Slot[K, V], n)
}

func (defaultAllocator[K, V]) FreeSlots(s []Slot[K, V]) {
}

type allocatorOption[K, V any] struct {
	alloc Allocator[K, V]
}

func (op allocatorOption[K, V]) apply(cfg *config[K, V]) {
	cfg.alloc = op.alloc
}

// WithAllocator is an option to specify the Allocator for an
// OpenAddressing table.
func WithAllocator[K, V any](alloc Allocator[K, V]) Option[K, V] {
	return allocatorOption[K, V]{alloc}
}

type primeOption[K, V any] struct{}

func (primeOption[K, V]) apply(cfg *config[K, V]) {
	cfg.prime = true
}

// WithPrimeCapacity is an option that rounds the requested capacity up to
// the nearest prime. Prime capacities avoid clustering under the modulo
// placement when key hashes share common factors.
func WithPrimeCapacity[K, V any]() Option[K, V] {
	return primeOption[K, V]{}
}
