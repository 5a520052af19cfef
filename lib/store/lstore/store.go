package lstore

import (
	"sort"
	"sync"

	"github.com/ValentinKolb/tinyKV/lib/db"
	"github.com/ValentinKolb/tinyKV/lib/db/util"
	"github.com/ValentinKolb/tinyKV/lib/store"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("store")

type storeImpl struct {
	mu       sync.Mutex
	poisoned bool
	factory  store.DBFactory
	families map[string]db.KVDB
}

// NewLocalStore creates a new local store instance.
// The factory is called once for every column family on its first Put.
// A single lock guards all families, so every operation observes the complete
// effect of every operation that finished before it.
func NewLocalStore(factory store.DBFactory) store.IStore {
	return &storeImpl{
		factory:  factory,
		families: make(map[string]db.KVDB),
	}
}

// withLock runs fn while holding the store lock.
// A panic inside fn poisons the store: fn's caller and every later caller get RetCLockAcquisition.
func (s *storeImpl) withLock(op string, fn func() error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.poisoned {
		return store.NewError(store.RetCLockAcquisition, "store lock is poisoned")
	}

	defer func() {
		if r := recover(); r != nil {
			s.poisoned = true
			Logger.Errorf("%s panicked while holding the store lock, store is now poisoned: %v", op, r)
			err = store.NewErrorf(store.RetCLockAcquisition, "%s failed: %v", op, r)
		}
	}()

	return fn()
}

// family returns the engine of an existing family or RetCFamilyNotFound.
//
// Thread-safety: must be called with s.mu held.
func (s *storeImpl) family(name string) (db.KVDB, error) {
	fam, ok := s.families[name]
	if !ok {
		return nil, store.NewErrorf(store.RetCFamilyNotFound, "family %q not found", name)
	}
	return fam, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Put(family, key, value string) error {
	return s.withLock("put", func() error {
		fam, exists := s.families[family]
		if !exists {
			fam = s.factory()
		}

		if err := fam.Set(key, value); err != nil {
			return store.NewErrorf(store.RetCInsertionFailed, "put %q into family %q: %v", key, family, err)
		}

		// the family becomes visible only after its first successful write
		if !exists {
			s.families[family] = fam
			Logger.Debugf("created family %q", family)
		}
		return nil
	})
}

func (s *storeImpl) Get(family, key string) (value string, err error) {
	err = s.withLock("get", func() error {
		fam, err := s.family(family)
		if err != nil {
			return err
		}

		v, ok := fam.Get(key)
		if !ok {
			return store.NewErrorf(store.RetCKeyNotFound, "key %q not found in family %q", key, family)
		}
		value = v
		return nil
	})
	return value, err
}

func (s *storeImpl) Delete(family, key string) (value string, err error) {
	err = s.withLock("delete", func() error {
		fam, err := s.family(family)
		if err != nil {
			return err
		}

		v, ok := fam.Delete(key)
		if !ok {
			return store.NewErrorf(store.RetCKeyNotFound, "key %q not found in family %q", key, family)
		}
		value = v
		return nil
	})
	return value, err
}

func (s *storeImpl) Scan(family, startKey string, limit int) (pairs []store.KVPair, err error) {
	if limit <= 0 {
		return nil, store.NewErrorf(store.RetCInvalidArgument, "limit must be positive, got %d", limit)
	}

	err = s.withLock("scan", func() error {
		fam, err := s.family(family)
		if err != nil {
			return err
		}

		pairs = make([]store.KVPair, 0, min(limit, fam.Len()))
		fam.Ascend(startKey, limit, func(key, value string) bool {
			pairs = append(pairs, store.KVPair{Key: key, Value: value})
			return true
		})

		if len(pairs) == 0 {
			pairs = nil
			return store.NewErrorf(store.RetCKeyNotFound, "no key >= %q in family %q", startKey, family)
		}
		return nil
	})
	return pairs, err
}

func (s *storeImpl) Info() (info store.StoreInfo, err error) {
	err = s.withLock("info", func() error {
		names := make([]string, 0, len(s.families))
		for name := range s.families {
			names = append(names, name)
		}
		sort.Strings(names)

		keysPerFamily := make([]float64, 0, len(names))
		info.Families = make([]store.FamilyInfo, 0, len(names))
		for _, name := range names {
			dbInfo := s.families[name].GetInfo()
			info.Families = append(info.Families, store.FamilyInfo{
				Name:     name,
				KeyCount: dbInfo.KeyCount,
				DBInfo:   dbInfo,
			})
			info.KeyCount += dbInfo.KeyCount
			info.SizeBytes += dbInfo.SizeBytes
			keysPerFamily = append(keysPerFamily, float64(dbInfo.KeyCount))
		}

		info.FamilyCount = len(names)
		info.KeyDistribution = util.NewKeyDistribution(keysPerFamily)
		return nil
	})
	return info, err
}
