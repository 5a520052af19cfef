package testing

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/ValentinKolb/tinyKV/lib/db"
)

// DBFactory is a function that creates a new instance of a KVDB implementation
type DBFactory func() db.KVDB

// RunKVDBTests runs a comprehensive test suite for a KVDB implementation.
func RunKVDBTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("AscendOrder", func(t *testing.T) {
			testAscendOrder(t, factory())
		})

		t.Run("AscendLimit", func(t *testing.T) {
			testAscendLimit(t, factory())
		})

		t.Run("AscendStop", func(t *testing.T) {
			testAscendStop(t, factory())
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})

		t.Run("ManyKeys", func(t *testing.T) {
			testManyKeys(t, factory())
		})

		t.Run("Info", func(t *testing.T) {
			testInfo(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the database supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, database db.KVDB, feature db.Feature) {
	if !database.SupportsFeature(feature) {
		t.Skip()
	}
}

// collect returns all entries visited by Ascend as "key=value" strings
func collect(database db.KVDB, startKey string, limit int) []string {
	var out []string
	database.Ascend(startKey, limit, func(key, value string) bool {
		out = append(out, key+"="+value)
		return true
	})
	return out
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	testKey := "test-key"

	if err := database.Set(testKey, "test-value1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	result, exists := database.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if result != "test-value1" {
		t.Errorf("Expected value %s, got %s", "test-value1", result)
	}

	if err := database.Set(testKey, "test-value2"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	result, exists = database.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after overwrite", testKey)
	}
	if result != "test-value2" {
		t.Errorf("Expected value %s, got %s", "test-value2", result)
	}

	if database.Len() != 1 {
		t.Errorf("Expected 1 entry after overwrite, got %d", database.Len())
	}

	if _, exists = database.Get("nonexistent-key"); exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}
}

func testDelete(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureDelete)

	testKey := "delete-test-key"
	testValue := "delete-test-value"

	_ = database.Set(testKey, testValue)

	removed, ok := database.Delete(testKey)
	if !ok {
		t.Errorf("Expected Delete to report a removed entry")
	}
	if removed != testValue {
		t.Errorf("Expected removed value %s, got %s", testValue, removed)
	}

	if _, exists := database.Get(testKey); exists {
		t.Errorf("Expected key %s to not exist after Delete", testKey)
	}

	if _, ok = database.Delete(testKey); ok {
		t.Errorf("Expected second Delete of %s to report nothing removed", testKey)
	}

	if _, ok = database.Delete("nonexistent-key"); ok {
		t.Errorf("Expected Delete of nonexistent key to report nothing removed")
	}

	if database.Len() != 0 {
		t.Errorf("Expected empty database, got %d entries", database.Len())
	}
}

func testAscendOrder(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureAscend)

	// insert in non-sorted order
	keys := []string{"b", "a", "ab", "B", "", "aa", "ba", "\xff", "a\x00"}
	for _, k := range keys {
		_ = database.Set(k, strings.ToUpper(k))
	}

	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	var got []string
	database.Ascend("", len(keys)+10, func(key, _ string) bool {
		got = append(got, key)
		return true
	})

	if len(got) != len(sorted) {
		t.Fatalf("Expected %d keys, got %d (%q)", len(sorted), len(got), got)
	}
	for i := range sorted {
		if got[i] != sorted[i] {
			t.Errorf("Order mismatch at %d: expected %q, got %q", i, sorted[i], got[i])
		}
	}
}

func testAscendLimit(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureAscend)

	for i := 0; i <= 5; i++ {
		k := fmt.Sprintf("%d", i)
		_ = database.Set(k, k+k+k)
	}

	testCases := []struct {
		name     string
		start    string
		limit    int
		expected []string
	}{
		{"limit inside range", "2", 2, []string{"2=222", "3=333"}},
		{"limit beyond range", "2", 10, []string{"2=222", "3=333", "4=444", "5=555"}},
		{"start between keys", "2a", 2, []string{"3=333", "4=444"}},
		{"start before all keys", "", 1, []string{"0=000"}},
		{"start after all keys", "6", 10, nil},
		{"zero limit", "0", 0, nil},
		{"negative limit", "0", -1, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := collect(database, tc.start, tc.limit)
			if len(got) != len(tc.expected) {
				t.Fatalf("Expected %v, got %v", tc.expected, got)
			}
			for i := range got {
				if got[i] != tc.expected[i] {
					t.Errorf("Mismatch at %d: expected %s, got %s", i, tc.expected[i], got[i])
				}
			}
		})
	}
}

func testAscendStop(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureAscend)

	for i := 0; i < 10; i++ {
		_ = database.Set(fmt.Sprintf("key-%d", i), "v")
	}

	visited := 0
	database.Ascend("", 100, func(_, _ string) bool {
		visited++
		return visited < 3
	})

	if visited != 3 {
		t.Errorf("Expected iteration to stop after 3 entries, visited %d", visited)
	}
}

func testEdgeCases(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	_ = database.Set("", "value for empty key")

	result, exists := database.Get("")
	if !exists {
		t.Errorf("Empty key not found after Set")
	} else if result != "value for empty key" {
		t.Errorf("Value mismatch for empty key")
	}

	_ = database.Set("empty-value-key", "")

	result, exists = database.Get("empty-value-key")
	if !exists {
		t.Errorf("Key for empty value not found after Set")
	} else if result != "" {
		t.Errorf("Empty value mismatch: %q", result)
	}

	largeKey := strings.Repeat("k", 10_000)
	largeValue := strings.Repeat("v", 1024*1024)

	_ = database.Set(largeKey, largeValue)

	result, exists = database.Get(largeKey)
	if !exists {
		t.Errorf("Large key not found after Set")
	} else if result != largeValue {
		t.Errorf("Value mismatch for large key (len %d vs %d)", len(result), len(largeValue))
	}
}

func testManyKeys(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureDelete)

	prefix := "many-keys-"
	numKeys := 1000

	for i := 0; i < numKeys; i++ {
		_ = database.Set(fmt.Sprintf("%s%04d", prefix, i), fmt.Sprintf("value-%d", i))
	}

	for i := 0; i < numKeys; i += 2 {
		database.Delete(fmt.Sprintf("%s%04d", prefix, i))
	}

	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("%s%04d", prefix, i)
		value, exists := database.Get(key)

		if i%2 == 0 {
			if exists {
				t.Errorf("Key %s should be deleted", key)
			}
		} else {
			if !exists {
				t.Errorf("Key %s should still exist", key)
			} else if value != fmt.Sprintf("value-%d", i) {
				t.Errorf("Value for key %s does not match: got %s", key, value)
			}
		}
	}

	if database.Len() != numKeys/2 {
		t.Errorf("Expected %d entries, got %d", numKeys/2, database.Len())
	}

	// the remaining keys must still be visited in order
	prev := ""
	count := 0
	database.Ascend(prefix, numKeys, func(key, _ string) bool {
		if key <= prev {
			t.Errorf("Keys out of order: %s after %s", key, prev)
		}
		prev = key
		count++
		return true
	})
	if count != numKeys/2 {
		t.Errorf("Ascend visited %d entries, expected %d", count, numKeys/2)
	}
}

func testInfo(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)

	for i := 0; i < 10; i++ {
		_ = database.Set(fmt.Sprintf("info-%d", i), "value")
	}

	info := database.GetInfo()
	if info.KeyCount != 10 {
		t.Errorf("Expected KeyCount 10, got %d", info.KeyCount)
	}
	if info.SizeBytes <= 0 {
		t.Errorf("Expected a positive size estimate, got %d", info.SizeBytes)
	}
	if info.DbType == "" {
		t.Errorf("Expected DbType to be set")
	}
}
