package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ValentinKolb/tinyKV/lib/store"
	"github.com/ValentinKolb/tinyKV/rpc/common"
	"github.com/ValentinKolb/tinyKV/rpc/serializer"
	"github.com/ValentinKolb/tinyKV/rpc/transport"
	thttp "github.com/ValentinKolb/tinyKV/rpc/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nopTransport captures the handler instead of listening
type nopTransport struct {
	handler transport.ServerHandleFunc
}

func (n *nopTransport) RegisterHandler(handler transport.ServerHandleFunc) { n.handler = handler }
func (n *nopTransport) Listen(common.ServerConfig) error                   { return nil }
func (n *nopTransport) Close() error                                       { return nil }

func newTestServer(t *testing.T, shards ...uint64) (*nopTransport, serializer.IRPCSerializer) {
	t.Helper()

	config := common.ServerConfig{LogLevel: "info"}
	for _, id := range shards {
		config.Shards = append(config.Shards, common.ServerShard{ShardID: id, Type: common.ShardTypeLocalIStore})
	}

	tr := &nopTransport{}
	ser := serializer.NewBinarySerializer()
	s := NewRPCServer(config, tr, ser)
	require.NoError(t, s.Serve())
	t.Cleanup(func() { _ = s.Close() })
	return tr, ser
}

func call(t *testing.T, tr *nopTransport, ser serializer.IRPCSerializer, shardID uint64, req *common.Message) common.Message {
	t.Helper()

	data, err := ser.Serialize(*req)
	require.NoError(t, err)

	var resp common.Message
	require.NoError(t, ser.Deserialize(tr.handler(shardID, data), &resp))
	return resp
}

func TestShardsAreIndependent(t *testing.T) {
	tr, ser := newTestServer(t, 1, 2)

	resp := call(t, tr, ser, 1, common.NewPutRequest("cf", "k", "v"))
	require.NoError(t, resp.AsError())

	resp = call(t, tr, ser, 1, common.NewGetRequest("cf", "k"))
	require.NoError(t, resp.AsError())
	assert.Equal(t, "v", resp.Value)

	resp = call(t, tr, ser, 2, common.NewGetRequest("cf", "k"))
	assert.Equal(t, store.RetCFamilyNotFound, resp.Code)
}

func TestUnknownShard(t *testing.T) {
	tr, ser := newTestServer(t, 1)

	resp := call(t, tr, ser, 99, common.NewGetRequest("cf", "k"))
	assert.Equal(t, common.MsgTError, resp.MsgType)
	assert.Equal(t, "shard not found", resp.Err)
}

func TestMalformedRequest(t *testing.T) {
	tr, ser := newTestServer(t, 1)

	var resp common.Message
	require.NoError(t, ser.Deserialize(tr.handler(1, []byte{1}), &resp))
	assert.Equal(t, common.MsgTError, resp.MsgType)
	assert.Contains(t, resp.Err, "failed to deserialize request")
}

func TestInvalidConfig(t *testing.T) {
	s := NewRPCServer(common.ServerConfig{}, &nopTransport{}, serializer.NewBinarySerializer())
	assert.Error(t, s.Serve())

	dup := common.ServerConfig{Shards: []common.ServerShard{{ShardID: 1}, {ShardID: 1}}}
	s = NewRPCServer(dup, &nopTransport{}, serializer.NewBinarySerializer())
	assert.Error(t, s.Serve())
}

func TestMetricsHandler(t *testing.T) {
	tr, ser := newTestServer(t, 7)
	call(t, tr, ser, 7, common.NewGetRequest("cf", "k"))

	rec := httptest.NewRecorder()
	thttp.HandleMetrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tkv_requests_total{shard="7",op="get",code="FamilyNotFound"}`)
}

func TestShardGaugeCoversAllServers(t *testing.T) {
	before := servedShards.Load()

	first := NewRPCServer(common.ServerConfig{Shards: []common.ServerShard{{ShardID: 1}, {ShardID: 2}}}, &nopTransport{}, serializer.NewBinarySerializer())
	require.NoError(t, first.Serve())
	second := NewRPCServer(common.ServerConfig{Shards: []common.ServerShard{{ShardID: 1}, {ShardID: 2}, {ShardID: 3}}}, &nopTransport{}, serializer.NewBinarySerializer())
	require.NoError(t, second.Serve())

	rec := httptest.NewRecorder()
	thttp.HandleMetrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), fmt.Sprintf("tkv_shards %d\n", before+5))

	require.NoError(t, first.Close())
	assert.Equal(t, before+3, servedShards.Load())

	// closing twice must not count the shards again
	require.NoError(t, first.Close())
	require.NoError(t, second.Close())
	assert.Equal(t, before, servedShards.Load())
}
