package client

import (
	"encoding/json"

	"github.com/ValentinKolb/tinyKV/lib/store"
	"github.com/ValentinKolb/tinyKV/rpc/common"
	"github.com/ValentinKolb/tinyKV/rpc/serializer"
	"github.com/ValentinKolb/tinyKV/rpc/transport"
)

// NewRPCStore creates a new RPC store
// The function takes a shard ID, a config, a transport and a serializer as parameters
// It returns a store.IStore and an error
func NewRPCStore(
	shardId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (store.IStore, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	// Create a new RPC store
	s := rpcStore{
		rpcClientAdapter{
			shardId:    shardId,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}

	// Return the RPC store
	return &s, nil
}

type rpcStore struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (i *rpcStore) Put(family, key, value string) (err error) {
	req := common.NewPutRequest(family, key, value)
	_, err = i.invoke(req)
	return err
}

func (i *rpcStore) Get(family, key string) (value string, err error) {
	req := common.NewGetRequest(family, key)
	resp, err := i.invoke(req)
	if err != nil {
		return "", err
	}
	return resp.Value, nil
}

func (i *rpcStore) Delete(family, key string) (value string, err error) {
	req := common.NewDeleteRequest(family, key)
	resp, err := i.invoke(req)
	if err != nil {
		return "", err
	}
	return resp.Value, nil
}

func (i *rpcStore) Scan(family, startKey string, limit int) (pairs []store.KVPair, err error) {
	// the wire limit is unsigned, zero is rejected by the server
	if limit < 0 {
		return nil, store.NewErrorf(store.RetCInvalidArgument, "limit cannot be negative, got %d", limit)
	}

	req := common.NewScanRequest(family, startKey, uint64(limit))
	resp, err := i.invoke(req)
	if err != nil {
		return nil, err
	}
	return resp.Pairs, nil
}

func (i *rpcStore) Info() (info store.StoreInfo, err error) {
	resp, err := i.invoke(common.NewInfoRequest())
	if err != nil {
		return store.StoreInfo{}, err
	}
	if err := json.Unmarshal(resp.Meta, &info); err != nil {
		return store.StoreInfo{}, store.NewErrorf(store.RetCInternalError, "failed to decode store info: %v", err)
	}
	return info, nil
}
