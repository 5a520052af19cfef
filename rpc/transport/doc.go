// Package transport defines how serialized RPC messages travel between client
// and server. Every request is addressed to a shard, the server transport hands
// it to a single handler which routes it to the store of that shard.
//
// Implementations live in the subpackages:
//
//   - tcp and unix: the framed, multiplexed protocol of the base package
//   - http: one POST request per message, plus the /metrics endpoint
package transport
