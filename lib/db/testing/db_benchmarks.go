package testing

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/nsKV/lib/db"
)

// RunKVDBBenchmarks runs all benchmarks for a key-value database implementation
func RunKVDBBenchmarks(b *testing.B, name string, factory DBFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Set", func(b *testing.B) {
			benchmarkSet(b, factory())
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, factory())
		})

		b.Run("Delete", func(b *testing.B) {
			benchmarkDelete(b, factory())
		})

		b.Run("Scan", func(b *testing.B) {
			benchmarkScan(b, factory())
		})

		b.Run("MixedUsage", func(b *testing.B) {
			benchmarkMixedUsage(b, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// Benchmark for Set operation
func benchmarkSet(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("test-key-%d", i)
		_ = database.Set(key, fmt.Sprintf(`"test-value-%d"`, i))
	}
}

// Benchmark for Get operation
func benchmarkGet(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	// Prepare data
	numKeys := 1000
	for i := 0; i < numKeys; i++ {
		_ = database.Set(fmt.Sprintf("test-key-%d", i), fmt.Sprintf(`"test-value-%d"`, i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = database.Get(fmt.Sprintf("test-key-%d", i%numKeys))
	}
}

// Benchmark for Delete operation
func benchmarkDelete(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	for i := 0; i < b.N; i++ {
		_ = database.Set(fmt.Sprintf("test-key-%d", i), "1")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = database.Delete(fmt.Sprintf("test-key-%d", i))
	}
}

// Benchmark for a full positional scan, the access pattern of a namespace clear
func benchmarkScan(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	numKeys := 200
	for i := 0; i < numKeys; i++ {
		_ = database.Set(fmt.Sprintf("test-key-%d", i), "1")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n, _ := database.Len()
		for j := 0; j < n; j++ {
			_, _, _ = database.Key(j)
		}
	}
}

// Benchmark for mixed usage patterns
func benchmarkMixedUsage(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	numKeys := 1000
	keys := make([]string, numKeys)
	for i := 0; i < numKeys; i++ {
		keys[i] = fmt.Sprintf("test-key-%d", i)
		_ = database.Set(keys[i], "1")
	}

	var counter int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		localCounter := 0
		for pb.Next() {
			idx := int(atomic.AddInt64(&counter, 1)-1) % numKeys
			key := keys[idx]

			switch localCounter % 3 {
			case 0:
				_, _, _ = database.Get(key)
			case 1:
				_ = database.Set(key, fmt.Sprintf(`"mixed-value-%d"`, localCounter))
			case 2:
				_ = database.Delete(key)
			}
			localCounter++
		}
	})
}
