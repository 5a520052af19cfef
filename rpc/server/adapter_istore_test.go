package server

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/ValentinKolb/tinyKV/lib/db"
	"github.com/ValentinKolb/tinyKV/lib/db/engines/btree"
	"github.com/ValentinKolb/tinyKV/lib/store"
	"github.com/ValentinKolb/tinyKV/lib/store/lstore"
	"github.com/ValentinKolb/tinyKV/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() store.IStore {
	return lstore.NewLocalStore(func() db.KVDB { return btree.NewBTreeDB(nil) })
}

func TestAdapterOperations(t *testing.T) {
	adapter := NewIStoreServerAdapter()
	s := newTestStore()

	resp := adapter.Handle(common.NewPutRequest("cf", "a", "1"), s)
	require.NoError(t, resp.AsError())
	assert.Equal(t, common.MsgTKVPut, resp.MsgType)

	resp = adapter.Handle(common.NewPutRequest("cf", "b", "2"), s)
	require.NoError(t, resp.AsError())

	resp = adapter.Handle(common.NewGetRequest("cf", "a"), s)
	require.NoError(t, resp.AsError())
	assert.Equal(t, "1", resp.Value)

	resp = adapter.Handle(common.NewScanRequest("cf", "", 10), s)
	require.NoError(t, resp.AsError())
	assert.Equal(t, []store.KVPair{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}}, resp.Pairs)

	resp = adapter.Handle(common.NewDeleteRequest("cf", "a"), s)
	require.NoError(t, resp.AsError())
	assert.Equal(t, "1", resp.Value)

	resp = adapter.Handle(common.NewDeleteRequest("cf", "a"), s)
	assert.Equal(t, store.RetCKeyNotFound, resp.Code)
	assert.NotEmpty(t, resp.Err)

	resp = adapter.Handle(common.NewGetRequest("nope", "a"), s)
	assert.Equal(t, store.RetCFamilyNotFound, resp.Code)
}

func TestAdapterScanLimit(t *testing.T) {
	adapter := NewIStoreServerAdapter()
	s := newTestStore()
	require.NoError(t, s.Put("cf", "a", "1"))

	testCases := []struct {
		name    string
		limit   uint64
		code    store.RetCode
		message string
	}{
		{"zero", 0, store.RetCInvalidArgument, "limit cannot be zero"},
		{"too large", uint64(math.MaxInt) + 1, store.RetCInvalidArgument, "limit too large for this architecture"},
		{"max int", uint64(math.MaxInt), store.RetCSuccess, ""},
		{"one", 1, store.RetCSuccess, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := adapter.Handle(common.NewScanRequest("cf", "", tc.limit), s)
			assert.Equal(t, tc.code, resp.Code)
			assert.Contains(t, resp.Err, tc.message)
		})
	}
}

func TestAdapterInfo(t *testing.T) {
	adapter := NewIStoreServerAdapter()
	s := newTestStore()
	require.NoError(t, s.Put("a", "k", "v"))
	require.NoError(t, s.Put("b", "k", "v"))

	resp := adapter.Handle(common.NewInfoRequest(), s)
	require.NoError(t, resp.AsError())

	var info store.StoreInfo
	require.NoError(t, json.Unmarshal(resp.Meta, &info))
	assert.Equal(t, 2, info.FamilyCount)
	assert.Equal(t, 2, info.KeyCount)
}

func TestAdapterErrors(t *testing.T) {
	adapter := NewIStoreServerAdapter()

	resp := adapter.Handle(common.NewGetRequest("cf", "k"), nil)
	assert.Equal(t, common.MsgTError, resp.MsgType)
	assert.Equal(t, store.RetCInternalError, resp.Code)

	resp = adapter.Handle(&common.Message{MsgType: common.MsgTSuccess}, newTestStore())
	assert.Equal(t, common.MsgTError, resp.MsgType)
	assert.Contains(t, resp.Err, "Unsupported message type")
}
