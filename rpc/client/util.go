package client

import (
	"github.com/ValentinKolb/tinyKV/lib/store"
	"github.com/ValentinKolb/tinyKV/rpc/common"
	"github.com/ValentinKolb/tinyKV/rpc/serializer"
	"github.com/ValentinKolb/tinyKV/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// rpcClientAdapter is a struct that stores all data needed for an implementation of an RPC client
// Used by the RPCStore with composition pattern
type rpcClientAdapter struct {
	shardId    uint64
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// invoke sends req to the shard of the adapter (see invokeRPCRequest)
func (a *rpcClientAdapter) invoke(req *common.Message) (*common.Message, error) {
	return invokeRPCRequest(a.shardId, req, a.transport, a.serializer)
}

// invokeRPCRequest is a helper function used for all RPC Clients to send requests
// It takes a shard ID, a request message, a transport layer and a serializer as parameters
// It returns a response message and an error if any occurs
// This method also checks if the response is an error response and if the type of the response is the expected type.
// Every returned error is a *store.Error: error responses keep the code sent by the server,
// local failures (serialization, transport) are reported as store.RetCInternalError.
func invokeRPCRequest(shardId uint64, req *common.Message, transport transport.IRPCClientTransport, serializer serializer.IRPCSerializer) (*common.Message, error) {
	// Serialize the request
	reqBytes, err := serializer.Serialize(*req)
	if err != nil {
		return nil, store.NewErrorf(store.RetCInternalError, "RPC IStoreAdapter - failed to serialize request: %v", err)
	}

	// Send the handler
	respBytes, err := transport.Send(shardId, reqBytes)
	if err != nil {
		Logger.Debugf("request %s for shard %d failed: %v", req.MsgType, shardId, err)
		return nil, store.NewErrorf(store.RetCInternalError, "RPC IStoreAdapter - %v", err)
	}

	// Deserialize the response
	resp := &common.Message{}
	err = serializer.Deserialize(respBytes, resp)
	if err != nil {
		return nil, store.NewErrorf(store.RetCInternalError, "RPC IStoreAdapter - failed to deserialize response: %v", err)
	}

	// Check if the response is an error response
	if err := resp.AsError(); err != nil {
		return nil, err
	}

	// Check if the type of the response is the expected type
	if resp.MsgType != req.MsgType {
		return nil, store.NewErrorf(store.RetCInternalError, "RPC IStoreAdapter - Unexpected message type: %s, expected %s", resp.MsgType, req.MsgType)
	}

	// Return the response
	return resp, nil
}
