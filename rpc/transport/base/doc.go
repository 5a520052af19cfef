// Package base implements the framed request/response protocol shared by the tcp
// and unix transports. The network specific parts (dialing, listening, socket
// options) are injected through IClientConnector and IServerConnector.
//
// Frame format (all integers big-endian):
//
//	shardID   uint64
//	requestID uint64
//	length    uint32
//	payload   [length]byte  (at most MaxFrameSize)
//
// Client:
//
//   - Opens ConnectionsPerEndpoint connections to every endpoint and picks one per
//     request round-robin.
//   - Requests are multiplexed: every attempt gets a new request ID and a reader
//     goroutine per connection hands each response to the waiting caller.
//   - Failed attempts are retried with exponential backoff. A broken connection
//     fails all of its pending requests and is re-dialed.
//
// Server:
//
//   - One goroutine reads the frames of a connection. Each request is handled by a
//     worker goroutine, at most WorkersPerConn of them at a time per connection.
//   - Read buffers come from a sync.Pool. Responses carry the request ID of the request,
//     so they may be written in any order.
//   - Close stops the listener and closes all open connections, Listen then returns nil.
package base
