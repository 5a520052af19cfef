package transport

import (
	"github.com/ValentinKolb/tinyKV/rpc/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc answers one serialized request addressed to a shard.
// It must always return a serialized response, errors are part of the response.
type ServerHandleFunc func(shardId uint64, req []byte) (resp []byte)

// IRPCServerTransport receives requests and passes them to the registered handler
type IRPCServerTransport interface {
	// RegisterHandler sets the handler for all requests, it must be called before Listen
	RegisterHandler(handler ServerHandleFunc)

	// Listen serves requests until Close is called (then it returns nil) or the listener fails
	Listen(config common.ServerConfig) error

	// Close stops the transport, it may be called from any goroutine
	Close() error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport sends requests to a server. Implementations are safe for concurrent use.
type IRPCClientTransport interface {
	// Connect opens the connections to the configured endpoints
	Connect(config common.ClientConfig) error

	// Send delivers one serialized request to a shard and returns the serialized response
	Send(shardId uint64, req []byte) (resp []byte, err error)

	// Close releases all connections
	Close() error
}
