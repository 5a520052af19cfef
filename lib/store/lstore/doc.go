// Package lstore implements a local, in-memory key-value store based on the
// store.IStore interface. Every column family is backed by its own db.KVDB
// instance, created through the store.DBFactory on the first Put into that family.
// Data is stored entirely in memory and is not persisted between process restarts.
//
// Key Features:
//   - Pure in-memory storage without persistence
//   - Lazy family creation, families are never removed (even when emptied)
//   - Ordered range scans per family
//   - Thread-safe operations for concurrent access
//
// Implementation Details:
//
//   - Locking: One sync.Mutex guards the family map and all engines. Reads and writes
//     both take it for their whole duration, so the order in which operations take
//     effect equals the order in which they acquire the lock.
//
//   - Poisoning: A Go mutex cannot be poisoned, so the store tracks it itself. If an
//     engine panics while the lock is held the panic is recovered, the store is marked
//     as poisoned and this and all later operations fail with store.RetCLockAcquisition.
//
//   - Composition Architecture: The store.DBFactory injects the engine used for each
//     family. Any db.KVDB-compatible engine works without modification.
//
// Usage Example:
//
//	factory := func() db.KVDB { return btree.NewBTreeDB(btree.DefaultOptions()) }
//	s := lstore.NewLocalStore(factory)
//
//	err := s.Put("users", "alice", "admin")
//	value, err := s.Get("users", "alice")
//	pairs, err := s.Scan("users", "a", 10)
//
// Per-family locking would allow operations on different families to run in parallel.
// It is not implemented, the single lock keeps whole-store ordering trivial.
package lstore
