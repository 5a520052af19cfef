// Package btree implements an ordered in-memory key-value database (KVDB) on top of
// github.com/google/btree. One instance holds the data of exactly one column family.
//
// The package focuses on:
//   - Byte-lexicographic key ordering for range scans
//   - Logarithmic point operations
//   - Cheap ordered iteration from an arbitrary start key
//
// Key Components:
//
//   - btreeImpl: The database structure implementing db.KVDB. It wraps a generic
//     btree.BTreeG of internal.Entry values ordered by key.
//
//   - Entry: A key-value pair. Lookups use a pivot entry that only carries the key.
//
// Thread Safety:
//
//	The engine is not thread-safe. It is designed to be owned by the local store,
//	which serializes every access under its store-wide lock.
//
// Usage Example:
//
//	family := btree.NewBTreeDB(nil)
//	_ = family.Set("a", "1")
//	family.Ascend("a", 10, func(k, v string) bool {
//		fmt.Println(k, v)
//		return true
//	})
package btree
