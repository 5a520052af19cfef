// Package db provides a standardized interface for the ordered key-value databases
// that back a single column family of the store.
//
// The package focuses on:
//   - A unified interface for point and range operations on one ordered map
//   - Feature discovery through capability flags
//   - Comprehensive metadata reporting
//
// Key Components:
//
//   - KVDB Interface: The core interface that all database implementations must satisfy.
//     It provides point operations (Set, Get, Delete), ordered iteration (Ascend) and
//     metadata retrieval (GetInfo, Len).
//
//   - Feature Flags: The Feature type defines capability flags that implementations
//     can advertise through the SupportsFeature method.
//
//   - Implementation Identifiers: The Implementation type provides string constants
//     for different database backends (currently "btree").
//
// Note on Ordering:
//
//	Keys are compared byte-wise (the natural string ordering of Go). Ascend always
//	visits keys in ascending order starting with the first key that is greater than
//	or equal to the given start key.
//
// Note on Concurrency:
//
//	A KVDB is owned by exactly one store and is never accessed concurrently. All
//	synchronization happens one level up (see lib/store/lstore), which keeps the
//	engines simple and lets the store give whole-store atomicity guarantees.
//
// Related Packages:
//
// The engines/btree package (github.com/ValentinKolb/tinyKV/lib/db/engines/btree) provides
// the default implementation of the KVDB interface on top of github.com/google/btree.
//
// The testing package (github.com/ValentinKolb/tinyKV/lib/db/testing) provides
// standardized tests and benchmarks for database implementations that satisfy the db.KVDB interface.
//   - RunKVDBTests: Runs a standardized test suite to validate implementations
//   - RunKVDBBenchmarks: Provides performance benchmarks for comparing implementations
package db
