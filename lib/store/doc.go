// Package store provides a high-level interface for key-value storage operations on
// a set of independent, ordered column families with unified error handling.
// It serves as an abstraction layer over the lower-level db.KVDB implementations, which
// each hold the data of exactly one family.
//
// The package focuses on:
//   - A unified interface (IStore) for put, get, delete and scan across different backends
//   - Pluggable storage backend architecture through DBFactory pattern
//
// Key Components:
//
//   - IStore Interface: The core abstraction defining operations for interacting with
//     a key-value store. All implementations share this common interface, allowing
//     applications to switch between a local store and a remote one (see rpc/client)
//     without code changes.
//
//   - Error System: A closed set of return codes (RetCode) wrapped in the Error type.
//     Error implements Is, so errors.Is(err, store.ErrKeyNotFound) works for every
//     error carrying RetCKeyNotFound, including errors reconstructed from the network.
//
//   - DBFactory: A function type that abstracts the creation of underlying db.KVDB
//     instances, providing dependency injection and flexible configuration of
//     storage backends.
//
// Implementations:
//
//   - Local Store (lstore): An in-memory implementation that keeps one db.KVDB per
//     family and guards all of them with a single lock.
//     Available in the "github.com/ValentinKolb/tinyKV/lib/store/lstore" package.
//
//   - RPC Store: The client in "github.com/ValentinKolb/tinyKV/rpc/client" implements
//     IStore by forwarding every call to a remote server.
//
// The testing package ("github.com/ValentinKolb/tinyKV/lib/store/testing") contains a
// shared test suite that every implementation has to pass.
package store
