// Package server implements the RPC server of the key-value store.
// It provides the adapter that maps RPC requests to store operations, along with
// the core server implementation that manages shards and request routing.
//
// The package focuses on:
//   - Server-side RPC request handling for store operations
//   - Adapter pattern to decouple application logic from RPC mechanisms
//   - One independent store per configured shard
//   - Request metrics in the Prometheus text format
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for all server adapters,
//     with the Handle method that processes incoming requests against a store.IStore.
//
//   - NewIStoreServerAdapter: Factory function creating an adapter for key-value
//     store operations, translating RPC requests to store.IStore method calls.
//     It rejects scans with a zero limit or a limit that does not fit into an int
//     (store.RetCInvalidArgument) before the store is called.
//
//   - NewRPCServer: Factory function creating a configured server with the specified
//     transport and serializer mechanisms.
//
// Usage Example:
//
//	// Create server configuration
//	config := common.ServerConfig{
//	  Shards: []common.ServerShard{
//	    {ShardID: 100, Type: common.ShardTypeLocalIStore},
//	  },
//	  Transport: common.ServerTransportConfig{Endpoint: "0.0.0.0:8080", WorkersPerConn: 16},
//	  TimeoutSecond: 5,
//	  LogLevel: "info",
//	}
//
//	// Create and start the server
//	s := server.NewRPCServer(
//	  config,
//	  tcp.NewTCPDefaultServerTransport(),
//	  serializer.NewBinarySerializer(),
//	)
//
//	// Start the server
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Metrics:
//
//	Every request increments tkv_requests_total{shard,op,code} and updates the
//	tkv_request_duration_seconds{op} histogram. They are served on "GET /metrics"
//	of the HTTP transport and, if ServerConfig.MetricsEndpoint is set, on a separate
//	listener.
//
// Thread Safety:
//
//	The server implementation is thread-safe and can handle concurrent requests
//	across multiple connections. Each request is processed independently.
//	The Serve method is not thread-safe and should be called only once.
package server
