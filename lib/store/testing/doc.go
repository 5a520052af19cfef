// Package testing provides a shared test suite for store.IStore implementations.
//
// The same suite runs against the local store (lib/store/lstore) and against the
// RPC client (rpc/client) talking to a real server, so both have to agree on
// results and on error codes.
//
// Example usage:
//
//	factory := func() store.IStore {
//		return lstore.NewLocalStore(dbFactory)
//	}
//	storetesting.RunIStoreTests(t, "LocalStore", factory)
package testing
