// Package rpc provides the remote procedure call layer of the tinyKV key-value
// store. It acts as the communication layer between clients and servers, enabling
// store operations across process and network boundaries.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the Message protocol, configuration structures, and logging.
//
//   - transport: Network communication abstractions with pluggable implementations
//     (TCP, Unix sockets, HTTP).
//
//   - serializer: Message serialization with multiple format options (Binary, JSON, GOB)
//     for converting between Message objects and byte arrays.
//
//   - client: An implementation of the store.IStore interface that forwards every
//     call to a remote server, keeping the error codes of the store intact.
//
//   - server: The RPC server that hosts one store per shard, maps incoming messages
//     to store calls and exports request metrics.
package rpc
