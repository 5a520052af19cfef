package testing

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/ValentinKolb/tinyKV/lib/db"
)

// RunKVDBBenchmarks runs all benchmarks for a key-value database implementations.
// KVDB engines are not thread-safe, therefore all benchmarks run sequentially.
func RunKVDBBenchmarks(b *testing.B, name string, factory DBFactory) {

	b.Run("Set", func(b *testing.B) {
		benchmarkSet(b, factory())
	})

	b.Run("SetExisting", func(b *testing.B) {
		benchmarkSetExisting(b, factory())
	})

	b.Run("SetLargeValue", func(b *testing.B) {
		benchmarkSetLargeValue(b, factory())
	})

	b.Run("Get", func(b *testing.B) {
		benchmarkGet(b, factory())
	})

	b.Run("Delete", func(b *testing.B) {
		benchmarkDelete(b, factory())
	})

	b.Run("Ascend(10)", func(b *testing.B) {
		benchmarkAscend(b, factory(), 10)
	})

	b.Run("Ascend(1000)", func(b *testing.B) {
		benchmarkAscend(b, factory(), 1000)
	})

	b.Run("MixedUsage", func(b *testing.B) {
		benchmarkMixedUsage(b, factory())
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// prefill inserts n keys of the form test-key-%08d
func prefill(database db.KVDB, n int) {
	for i := 0; i < n; i++ {
		_ = database.Set(fmt.Sprintf("test-key-%08d", i), fmt.Sprintf("test-value-%d", i))
	}
}

// Benchmark for Set operation
func benchmarkSet(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureSet)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = database.Set(fmt.Sprintf("test-key-%d", i), "test-value")
	}
}

// Benchmark for Set operation with existing keys
func benchmarkSetExisting(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureSet)

	numKeys := 10_000
	prefill(database, numKeys)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = database.Set(fmt.Sprintf("test-key-%08d", i%numKeys), "updated")
	}
}

// Benchmark for Set operation with large values
func benchmarkSetLargeValue(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureSet)

	largeValue := strings.Repeat("x", 100*1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = database.Set(fmt.Sprintf("large-key-%d", i%100), largeValue)
	}
}

// Benchmark for Get operation
func benchmarkGet(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureSet|db.FeatureGet)

	numKeys := 10_000
	prefill(database, numKeys)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		database.Get(fmt.Sprintf("test-key-%08d", i%numKeys))
	}
}

// Benchmark for Delete operation
func benchmarkDelete(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureSet|db.FeatureDelete)

	prefill(database, b.N)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		database.Delete(fmt.Sprintf("test-key-%08d", i))
	}
}

// Benchmark for ordered iteration with the given limit
func benchmarkAscend(b *testing.B, database db.KVDB, limit int) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureSet|db.FeatureAscend)

	numKeys := 10_000
	prefill(database, numKeys)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		start := fmt.Sprintf("test-key-%08d", i%numKeys)
		database.Ascend(start, limit, func(_, _ string) bool { return true })
	}
}

// Benchmark for a realistic mix of operations (70% set, 20% get, 5% delete, 5% scan)
func benchmarkMixedUsage(b *testing.B, database db.KVDB) {

	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureSet|db.FeatureGet|db.FeatureDelete|db.FeatureAscend)

	numKeys := 1000
	prefill(database, numKeys)
	r := rand.New(rand.NewSource(42))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("test-key-%08d", r.Intn(numKeys))
		switch op := r.Intn(100); {
		case op < 70:
			_ = database.Set(key, "value")
		case op < 90:
			database.Get(key)
		case op < 95:
			database.Delete(key)
		default:
			database.Ascend(key, 10, func(_, _ string) bool { return true })
		}
	}
}
