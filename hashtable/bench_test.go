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
	"strconv"
	"testing"

	"github.com/aclements/go-perfevent/perfbench"

	"github.com/adtlib/adt/attr"
)

func BenchmarkTableGetHit(b *testing.B) {
	b.Run("impl=runtimeMap", benchSizes(benchmarkRuntimeMapGetHit))
	b.Run("impl=open", benchSizes(benchmarkTableGetHit(OpenAddressing)))
	b.Run("impl=chain", benchSizes(benchmarkTableGetHit(SeparateChaining)))
}

func BenchmarkTableGetMiss(b *testing.B) {
	b.Run("impl=runtimeMap", benchSizes(benchmarkRuntimeMapGetMiss))
	b.Run("impl=open", benchSizes(benchmarkTableGetMiss(OpenAddressing)))
	b.Run("impl=chain", benchSizes(benchmarkTableGetMiss(SeparateChaining)))
}

func BenchmarkTablePut(b *testing.B) {
	b.Run("impl=runtimeMap", benchSizes(benchmarkRuntimeMapPut))
	b.Run("impl=open", benchSizes(benchmarkTablePut(OpenAddressing)))
	b.Run("impl=chain", benchSizes(benchmarkTablePut(SeparateChaining)))
}

func BenchmarkTablePutDelete(b *testing.B) {
	b.Run("impl=runtimeMap", benchSizes(benchmarkRuntimeMapPutDelete))
	b.Run("impl=open", benchSizes(benchmarkTablePutDelete(OpenAddressing)))
	b.Run("impl=chain", benchSizes(benchmarkTablePutDelete(SeparateChaining)))
}

func benchSizes(f func(b *testing.B, n int)) func(*testing.B) {
	var cases = []int{
		6, 12, 18, 24, 30,
		64,
		128,
		256,
		512,
		1024,
		8192,
	}

	return func(b *testing.B) {
		for _, n := range cases {
			b.Run("len="+strconv.Itoa(n), func(b *testing.B) { f(b, n) })
		}
	}
}

// newBenchTable sizes the table so the load factor stays comparable across
// backends instead of letting open addressing run at load 1.
func newBenchTable(b *testing.B, backend Backend, n int) Table[int, int] {
	tbl, err := New[int, int](n*2,
		WithBackend[int, int](backend),
		WithKeyAttributes[int, int](attr.Int()),
		WithValueAttributes[int, int](attr.Int()))
	if err != nil {
		b.Fatal(err)
	}
	return tbl
}

func benchmarkRuntimeMapGetHit(b *testing.B, n int) {
	m := make(map[int]int, n)
	for i := 0; i < n; i++ {
		m[i] = i
	}
	cs := perfbench.Open(b)
	b.ResetTimer()
	var v int
	for i := 0; i < b.N; i++ {
		v = m[i%n]
	}
	b.StopTimer()
	cs.Stop()
	fmt.Fprint(io.Discard, v)
}

func benchmarkTableGetHit(backend Backend) func(b *testing.B, n int) {
	return func(b *testing.B, n int) {
		tbl := newBenchTable(b, backend, n)
		defer tbl.Close()
		for i := 0; i < n; i++ {
			_ = tbl.Put(i, i)
		}
		cs := perfbench.Open(b)
		b.ResetTimer()
		var v int
		for i := 0; i < b.N; i++ {
			v, _ = tbl.Get(i % n)
		}
		b.StopTimer()
		cs.Stop()
		fmt.Fprint(io.Discard, v)
	}
}

func benchmarkRuntimeMapGetMiss(b *testing.B, n int) {
	m := make(map[int]int, n)
	for i := 0; i < n; i++ {
		m[i] = i
	}
	cs := perfbench.Open(b)
	b.ResetTimer()
	var v int
	for i := 0; i < b.N; i++ {
		v = m[n+i%n]
	}
	b.StopTimer()
	cs.Stop()
	fmt.Fprint(io.Discard, v)
}

func benchmarkTableGetMiss(backend Backend) func(b *testing.B, n int) {
	return func(b *testing.B, n int) {
		tbl := newBenchTable(b, backend, n)
		defer tbl.Close()
		for i := 0; i < n; i++ {
			_ = tbl.Put(i, i)
		}
		cs := perfbench.Open(b)
		b.ResetTimer()
		var err error
		for i := 0; i < b.N; i++ {
			_, err = tbl.Get(n + i%n)
		}
		b.StopTimer()
		cs.Stop()
		fmt.Fprint(io.Discard, err)
	}
}

func benchmarkRuntimeMapPut(b *testing.B, n int) {
	cs := perfbench.Open(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m := make(map[int]int, n)
		for j := 0; j < n; j++ {
			m[j] = j
		}
	}
	b.StopTimer()
	cs.Stop()
}

func benchmarkTablePut(backend Backend) func(b *testing.B, n int) {
	return func(b *testing.B, n int) {
		cs := perfbench.Open(b)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			tbl := newBenchTable(b, backend, n)
			for j := 0; j < n; j++ {
				_ = tbl.Put(j, j)
			}
			tbl.Close()
		}
		b.StopTimer()
		cs.Stop()
	}
}

func benchmarkRuntimeMapPutDelete(b *testing.B, n int) {
	m := make(map[int]int, n)
	for i := 0; i < n; i++ {
		m[i] = i
	}
	cs := perfbench.Open(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k := i % n
		delete(m, k)
		m[k] = k
	}
	b.StopTimer()
	cs.Stop()
}

func benchmarkTablePutDelete(backend Backend) func(b *testing.B, n int) {
	return func(b *testing.B, n int) {
		tbl := newBenchTable(b, backend, n)
		defer tbl.Close()
		for i := 0; i < n; i++ {
			_ = tbl.Put(i, i)
		}
		cs := perfbench.Open(b)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			k := i % n
			_ = tbl.Delete(k)
			_ = tbl.Put(k, k)
		}
		b.StopTimer()
		cs.Stop()
	}
}
