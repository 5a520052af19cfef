package lstore_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/ValentinKolb/tinyKV/lib/db"
	"github.com/ValentinKolb/tinyKV/lib/db/engines/btree"
	"github.com/ValentinKolb/tinyKV/lib/store"
	"github.com/ValentinKolb/tinyKV/lib/store/lstore"
	storetesting "github.com/ValentinKolb/tinyKV/lib/store/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBTree() db.KVDB {
	return btree.NewBTreeDB(btree.DefaultOptions())
}

func TestLocalStore(t *testing.T) {
	storetesting.RunIStoreTests(t, "LocalStore", func() store.IStore {
		return lstore.NewLocalStore(newBTree)
	})
}

// --------------------------------------------------------------------------
// Faulty engine
// --------------------------------------------------------------------------

// faultyDB wraps a working engine and injects failures
type faultyDB struct {
	db.KVDB
	failSet  bool
	panicGet bool
}

func (f *faultyDB) Set(key, value string) error {
	if f.failSet {
		return errors.New("engine refused write")
	}
	return f.KVDB.Set(key, value)
}

func (f *faultyDB) Get(key string) (string, bool) {
	if f.panicGet {
		panic("corrupted engine state")
	}
	return f.KVDB.Get(key)
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

func TestInsertionFailed(t *testing.T) {
	s := lstore.NewLocalStore(func() db.KVDB {
		return &faultyDB{KVDB: newBTree(), failSet: true}
	})

	err := s.Put("cf", "k", "v")
	require.Error(t, err)
	assert.True(t, store.IsCode(err, store.RetCInsertionFailed), "got %v", err)
	assert.ErrorIs(t, err, store.ErrInsertionFailed)

	// a failed first write leaves no family behind
	_, err = s.Get("cf", "k")
	assert.True(t, store.IsCode(err, store.RetCFamilyNotFound), "got %v", err)

	// the store itself stays usable
	_, err = s.Info()
	assert.NoError(t, err)
}

func TestPoisonedLock(t *testing.T) {
	engine := &faultyDB{KVDB: newBTree()}
	s := lstore.NewLocalStore(func() db.KVDB { return engine })

	require.NoError(t, s.Put("cf", "k", "v"))

	engine.panicGet = true
	_, err := s.Get("cf", "k")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrLockAcquisition)

	// every later operation fails, even ones that would not touch the engine
	engine.panicGet = false
	_, err = s.Get("cf", "k")
	assert.True(t, store.IsCode(err, store.RetCLockAcquisition), "get: %v", err)
	assert.True(t, store.IsCode(s.Put("other", "k", "v"), store.RetCLockAcquisition), "put")
	_, err = s.Delete("cf", "k")
	assert.True(t, store.IsCode(err, store.RetCLockAcquisition), "delete: %v", err)
	_, err = s.Scan("cf", "", 1)
	assert.True(t, store.IsCode(err, store.RetCLockAcquisition), "scan: %v", err)
	_, err = s.Info()
	assert.True(t, store.IsCode(err, store.RetCLockAcquisition), "info: %v", err)
}

func TestPoisonedLockConcurrent(t *testing.T) {
	engine := &faultyDB{KVDB: newBTree()}
	s := lstore.NewLocalStore(func() db.KVDB { return engine })
	require.NoError(t, s.Put("cf", "k", "v"))
	engine.panicGet = true

	// no caller may block forever or crash the process
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Get("cf", "k")
			assert.True(t, store.IsCode(err, store.RetCLockAcquisition), "got %v", err)
		}()
	}
	wg.Wait()
}

func TestScanRejectsNonPositiveLimit(t *testing.T) {
	s := lstore.NewLocalStore(newBTree)
	require.NoError(t, s.Put("cf", "k", "v"))

	for _, limit := range []int{0, -1} {
		_, err := s.Scan("cf", "", limit)
		assert.True(t, store.IsCode(err, store.RetCInvalidArgument), "limit %d: %v", limit, err)
	}
}

func TestScanReturnsCopies(t *testing.T) {
	s := lstore.NewLocalStore(newBTree)
	require.NoError(t, s.Put("cf", "a", "1"))
	require.NoError(t, s.Put("cf", "b", "2"))

	pairs, err := s.Scan("cf", "a", 2)
	require.NoError(t, err)
	pairs[0].Value = "changed"

	value, err := s.Get("cf", "a")
	require.NoError(t, err)
	assert.Equal(t, "1", value)
}

func TestInfoDistribution(t *testing.T) {
	s := lstore.NewLocalStore(newBTree)

	info, err := s.Info()
	require.NoError(t, err)
	assert.Equal(t, 0, info.FamilyCount)
	assert.Empty(t, info.Families)

	require.NoError(t, s.Put("a", "1", "v"))
	require.NoError(t, s.Put("b", "1", "v"))

	info, err = s.Info()
	require.NoError(t, err)
	assert.Equal(t, 2, info.FamilyCount)
	assert.Equal(t, 2, info.KeyCount)
	assert.Positive(t, info.SizeBytes)
	assert.InDelta(t, 1.0, info.KeyDistribution.Mean, 1e-9)
	assert.InDelta(t, 1.0, info.KeyDistribution.MinMaxRatio, 1e-9)
	assert.InDelta(t, 0.0, info.KeyDistribution.CoefficientOfVariation, 1e-9)
}
