package server

import (
	"encoding/json"
	"math"

	"github.com/ValentinKolb/tinyKV/lib/store"
	"github.com/ValentinKolb/tinyKV/rpc/common"
)

func NewIStoreServerAdapter() IRPCServerAdapter {
	return &iStoreServerAdapterImpl{}
}

type iStoreServerAdapterImpl struct{}

func (adapter *iStoreServerAdapterImpl) Handle(req *common.Message, s store.IStore) *common.Message {
	// Check for nil store
	if s == nil {
		return common.NewErrorResponse(store.RetCInternalError, "handler: store is nil")
	}

	// Handle different message types
	switch req.MsgType {
	case common.MsgTKVPut:
		err := s.Put(req.Family, req.Key, req.Value)
		return common.NewPutResponse(err)
	case common.MsgTKVGet:
		val, err := s.Get(req.Family, req.Key)
		return common.NewGetResponse(val, err)
	case common.MsgTKVDelete:
		removed, err := s.Delete(req.Family, req.Key)
		return common.NewDeleteResponse(removed, err)
	case common.MsgTKVScan:
		limit, err := scanLimit(req.Limit)
		if err != nil {
			return common.NewScanResponse(nil, err)
		}
		pairs, err := s.Scan(req.Family, req.Key, limit)
		return common.NewScanResponse(pairs, err)
	case common.MsgTKVInfo:
		info, err := s.Info()
		if err != nil {
			return common.NewInfoResponse(nil, err)
		}
		meta, err := json.Marshal(info)
		if err != nil {
			return common.NewInfoResponse(nil, store.NewErrorf(store.RetCInternalError, "failed to encode store info: %v", err))
		}
		return common.NewInfoResponse(meta, nil)
	default:
		return common.NewErrorResponse(
			store.RetCInvalidArgument,
			"RPC IStoreAdapter - Unsupported message type: "+req.MsgType.String(),
		)
	}
}

// scanLimit validates the limit of a scan request and converts it to an int
func scanLimit(limit uint64) (int, error) {
	if limit == 0 {
		return 0, store.NewError(store.RetCInvalidArgument, "limit cannot be zero")
	}
	if limit > math.MaxInt {
		return 0, store.NewError(store.RetCInvalidArgument, "limit too large for this architecture")
	}
	return int(limit), nil
}
