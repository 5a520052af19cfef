package testing

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ValentinKolb/tinyKV/lib/store"
)

// StoreFactory is a function that creates a new, empty instance of an IStore implementation
type StoreFactory func() store.IStore

// RunIStoreTests runs the shared test suite for an IStore implementation.
// Every subtest gets a fresh store from the factory.
func RunIStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Put&Get", func(t *testing.T) {
			testPutGet(t, factory())
		})

		t.Run("Overwrite", func(t *testing.T) {
			testOverwrite(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("UnknownFamily", func(t *testing.T) {
			testUnknownFamily(t, factory())
		})

		t.Run("FamilyIsolation", func(t *testing.T) {
			testFamilyIsolation(t, factory())
		})

		t.Run("Scan", func(t *testing.T) {
			testScan(t, factory())
		})

		t.Run("EmptyScan", func(t *testing.T) {
			testEmptyScan(t, factory())
		})

		t.Run("InvalidLimit", func(t *testing.T) {
			testInvalidLimit(t, factory())
		})

		t.Run("EmptyFamilyPersists", func(t *testing.T) {
			testEmptyFamilyPersists(t, factory())
		})

		t.Run("EmptyStrings", func(t *testing.T) {
			testEmptyStrings(t, factory())
		})

		t.Run("Concurrent", func(t *testing.T) {
			testConcurrent(t, factory())
		})

		t.Run("ConcurrentFamilies", func(t *testing.T) {
			testConcurrentFamilies(t, factory())
		})

		t.Run("Info", func(t *testing.T) {
			testInfo(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// expectCode fails the test if err does not carry the expected code
func expectCode(t *testing.T, op string, err error, code store.RetCode) {
	t.Helper()
	if err == nil {
		t.Errorf("%s: expected error with code %s, got nil", op, code)
		return
	}
	var storeErr *store.Error
	if !errors.As(err, &storeErr) {
		t.Errorf("%s: expected *store.Error, got %T (%v)", op, err, err)
		return
	}
	if storeErr.Code != code {
		t.Errorf("%s: expected code %s, got %s (%v)", op, code, storeErr.Code, err)
	}
}

// mustPut fails the test immediately if the put fails
func mustPut(t *testing.T, s store.IStore, family, key, value string) {
	t.Helper()
	if err := s.Put(family, key, value); err != nil {
		t.Fatalf("Put(%q, %q) failed: %v", family, key, err)
	}
}

// expectPairs compares a scan result with "key=value" strings
func expectPairs(t *testing.T, op string, got []store.KVPair, expected ...string) {
	t.Helper()
	if len(got) != len(expected) {
		t.Errorf("%s: expected %v, got %v", op, expected, got)
		return
	}
	for i := range got {
		if got[i].String() != expected[i] {
			t.Errorf("%s: mismatch at %d: expected %s, got %s", op, i, expected[i], got[i])
		}
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testPutGet(t *testing.T, s store.IStore) {
	mustPut(t, s, "cf", "k", "v")

	value, err := s.Get("cf", "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "v" {
		t.Errorf("Expected value %q, got %q", "v", value)
	}

	_, err = s.Get("cf", "missing")
	expectCode(t, "Get(missing)", err, store.RetCKeyNotFound)

	if !errors.Is(err, store.ErrKeyNotFound) {
		t.Errorf("Expected errors.Is(err, ErrKeyNotFound) for %v", err)
	}
}

func testOverwrite(t *testing.T, s store.IStore) {
	mustPut(t, s, "cf", "k", "v1")
	mustPut(t, s, "cf", "k", "v2")

	value, err := s.Get("cf", "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "v2" {
		t.Errorf("Expected overwritten value %q, got %q", "v2", value)
	}

	pairs, err := s.Scan("cf", "", 10)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	expectPairs(t, "Scan after overwrite", pairs, "k=v2")
}

func testDelete(t *testing.T, s store.IStore) {
	mustPut(t, s, "cf", "k", "v")

	removed, err := s.Delete("cf", "k")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if removed != "v" {
		t.Errorf("Expected removed value %q, got %q", "v", removed)
	}

	_, err = s.Get("cf", "k")
	expectCode(t, "Get after Delete", err, store.RetCKeyNotFound)

	_, err = s.Delete("cf", "k")
	expectCode(t, "second Delete", err, store.RetCKeyNotFound)
}

func testUnknownFamily(t *testing.T, s store.IStore) {
	_, err := s.Get("nope", "k")
	expectCode(t, "Get", err, store.RetCFamilyNotFound)

	_, err = s.Delete("nope", "k")
	expectCode(t, "Delete", err, store.RetCFamilyNotFound)

	_, err = s.Scan("nope", "", 1)
	expectCode(t, "Scan", err, store.RetCFamilyNotFound)

	if !errors.Is(err, store.ErrFamilyNotFound) {
		t.Errorf("Expected errors.Is(err, ErrFamilyNotFound) for %v", err)
	}

	// a read never creates the family
	_, err = s.Get("nope", "k")
	expectCode(t, "Get after reads", err, store.RetCFamilyNotFound)
}

func testFamilyIsolation(t *testing.T, s store.IStore) {
	mustPut(t, s, "a", "k", "from-a")
	mustPut(t, s, "b", "k", "from-b")

	for family, expected := range map[string]string{"a": "from-a", "b": "from-b"} {
		value, err := s.Get(family, "k")
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", family, err)
		}
		if value != expected {
			t.Errorf("Family %s: expected %q, got %q", family, expected, value)
		}
	}

	if _, err := s.Delete("a", "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if value, err := s.Get("b", "k"); err != nil || value != "from-b" {
		t.Errorf("Delete in family a changed family b: %q, %v", value, err)
	}
}

func testScan(t *testing.T, s store.IStore) {
	// insert in reverse order
	for i := 5; i >= 0; i-- {
		k := fmt.Sprintf("%d", i)
		mustPut(t, s, "cf", k, k+k+k)
	}

	testCases := []struct {
		name     string
		start    string
		limit    int
		expected []string
	}{
		{"limit inside range", "2", 2, []string{"2=222", "3=333"}},
		{"limit beyond range", "2", 10, []string{"2=222", "3=333", "4=444", "5=555"}},
		{"start between keys", "2a", 1, []string{"3=333"}},
		{"from first key", "", 3, []string{"0=000", "1=111", "2=222"}},
		{"last key only", "5", 100, []string{"5=555"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pairs, err := s.Scan("cf", tc.start, tc.limit)
			if err != nil {
				t.Fatalf("Scan(%q, %d) failed: %v", tc.start, tc.limit, err)
			}
			expectPairs(t, "Scan", pairs, tc.expected...)
		})
	}
}

func testEmptyScan(t *testing.T, s store.IStore) {
	mustPut(t, s, "cf", "a", "1")

	_, err := s.Scan("cf", "b", 10)
	expectCode(t, "Scan past last key", err, store.RetCKeyNotFound)
}

func testInvalidLimit(t *testing.T, s store.IStore) {
	mustPut(t, s, "cf", "a", "1")

	_, err := s.Scan("cf", "", 0)
	expectCode(t, "Scan with zero limit", err, store.RetCInvalidArgument)
}

func testEmptyFamilyPersists(t *testing.T, s store.IStore) {
	mustPut(t, s, "cf", "only", "v")

	if _, err := s.Delete("cf", "only"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// the family still exists, so every lookup reports a missing key
	_, err := s.Get("cf", "only")
	expectCode(t, "Get on emptied family", err, store.RetCKeyNotFound)

	_, err = s.Scan("cf", "", 10)
	expectCode(t, "Scan on emptied family", err, store.RetCKeyNotFound)

	_, err = s.Delete("cf", "only")
	expectCode(t, "Delete on emptied family", err, store.RetCKeyNotFound)
}

func testEmptyStrings(t *testing.T, s store.IStore) {
	mustPut(t, s, "", "", "")

	value, err := s.Get("", "")
	if err != nil {
		t.Fatalf("Get of empty key failed: %v", err)
	}
	if value != "" {
		t.Errorf("Expected empty value, got %q", value)
	}

	pairs, err := s.Scan("", "", 1)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	expectPairs(t, "Scan", pairs, "=")
}

func testConcurrent(t *testing.T, s store.IStore) {
	const workers = 8
	const keysPerWorker = 50

	var wg sync.WaitGroup
	errs := make(chan error, workers*keysPerWorker)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < keysPerWorker; i++ {
				key := fmt.Sprintf("w%02d-k%03d", w, i)
				if err := s.Put("cf", key, key); err != nil {
					errs <- err
					return
				}
				if _, err := s.Get("cf", key); err != nil {
					errs <- err
					return
				}
			}
		}(w)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Concurrent operation failed: %v", err)
	}

	pairs, err := s.Scan("cf", "", workers*keysPerWorker*2)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(pairs) != workers*keysPerWorker {
		t.Errorf("Expected %d keys after concurrent puts, got %d", workers*keysPerWorker, len(pairs))
	}
	for i := 1; i < len(pairs); i++ {
		if pairs[i-1].Key >= pairs[i].Key {
			t.Errorf("Scan out of order: %s before %s", pairs[i-1].Key, pairs[i].Key)
		}
	}
}

// testConcurrentFamilies spreads writers over several families, each writer
// owning a distinct key range in every family.
func testConcurrentFamilies(t *testing.T, s store.IStore) {
	const families = 4
	const workers = 4
	const keysPerWorker = 25

	var wg sync.WaitGroup
	errs := make(chan error, families*workers)

	for f := 0; f < families; f++ {
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(f, w int) {
				defer wg.Done()
				family := fmt.Sprintf("cf%d", f)
				for i := 0; i < keysPerWorker; i++ {
					key := fmt.Sprintf("w%02d-k%03d", w, i)
					if err := s.Put(family, key, family+"/"+key); err != nil {
						errs <- err
						return
					}
				}
			}(f, w)
		}
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Concurrent put failed: %v", err)
	}

	for f := 0; f < families; f++ {
		family := fmt.Sprintf("cf%d", f)
		pairs, err := s.Scan(family, "", workers*keysPerWorker*2)
		if err != nil {
			t.Fatalf("Scan of %s failed: %v", family, err)
		}
		if len(pairs) != workers*keysPerWorker {
			t.Errorf("Expected %d keys in %s, got %d", workers*keysPerWorker, family, len(pairs))
			continue
		}

		i := 0
		for w := 0; w < workers; w++ {
			for k := 0; k < keysPerWorker; k++ {
				key := fmt.Sprintf("w%02d-k%03d", w, k)
				if pairs[i].Key != key || pairs[i].Value != family+"/"+key {
					t.Errorf("%s: expected %s=%s/%s at %d, got %s", family, key, family, key, i, pairs[i])
				}
				i++
			}
		}
	}
}

func testInfo(t *testing.T, s store.IStore) {
	mustPut(t, s, "a", "1", "x")
	mustPut(t, s, "a", "2", "x")
	mustPut(t, s, "b", "1", "x")

	info, err := s.Info()
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.FamilyCount != 2 {
		t.Errorf("Expected 2 families, got %d", info.FamilyCount)
	}
	if info.KeyCount != 3 {
		t.Errorf("Expected 3 keys, got %d", info.KeyCount)
	}
	if len(info.Families) != 2 || info.Families[0].Name != "a" || info.Families[0].KeyCount != 2 {
		t.Errorf("Unexpected family info: %+v", info.Families)
	}
}
