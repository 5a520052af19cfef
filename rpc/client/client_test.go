package client

import (
	"net"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/tinyKV/lib/store"
	storetesting "github.com/ValentinKolb/tinyKV/lib/store/testing"
	"github.com/ValentinKolb/tinyKV/rpc/common"
	"github.com/ValentinKolb/tinyKV/rpc/serializer"
	"github.com/ValentinKolb/tinyKV/rpc/server"
	"github.com/ValentinKolb/tinyKV/rpc/transport"
	"github.com/ValentinKolb/tinyKV/rpc/transport/http"
	"github.com/ValentinKolb/tinyKV/rpc/transport/tcp"
	"github.com/ValentinKolb/tinyKV/rpc/transport/unix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// every factory call of the shared suite gets its own shard, so each subtest starts empty
const testShards = 64

type transportCase struct {
	name     string
	network  string
	server   func() transport.IRPCServerTransport
	client   func() transport.IRPCClientTransport
	endpoint func(t *testing.T) string
}

func transportCases() []transportCase {
	return []transportCase{
		{
			name:     "tcp",
			network:  "tcp",
			server:   tcp.NewTCPDefaultServerTransport,
			client:   tcp.NewTCPClientTransport,
			endpoint: freeTCPAddr,
		},
		{
			name:     "unix",
			network:  "unix",
			server:   unix.NewUnixDefaultServerTransport,
			client:   unix.NewUnixClientTransport,
			endpoint: func(t *testing.T) string { return filepath.Join(t.TempDir(), "tkv.sock") },
		},
		{
			name:     "http",
			network:  "tcp",
			server:   http.NewHttpServerTransport,
			client:   http.NewHttpClientTransport,
			endpoint: freeTCPAddr,
		},
	}
}

func serializers() map[string]func() serializer.IRPCSerializer {
	return map[string]func() serializer.IRPCSerializer{
		"binary": serializer.NewBinarySerializer,
		"json":   serializer.NewJSONSerializer,
		"gob":    serializer.NewGOBSerializer,
	}
}

// freeTCPAddr reserves a free local port and releases it again
func freeTCPAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

// startServer runs an RPC server with testShards shards and waits until it accepts connections
func startServer(t *testing.T, tc transportCase, ser serializer.IRPCSerializer) string {
	t.Helper()

	endpoint := tc.endpoint(t)
	config := common.ServerConfig{
		TimeoutSecond: 5,
		LogLevel:      "error",
		Transport: common.ServerTransportConfig{
			Endpoint:       endpoint,
			WorkersPerConn: 4,
		},
	}
	for id := uint64(1); id <= testShards; id++ {
		config.Shards = append(config.Shards, common.ServerShard{ShardID: id, Type: common.ShardTypeLocalIStore})
	}

	s := server.NewRPCServer(config, tc.server(), ser)
	done := make(chan error, 1)
	go func() { done <- s.Serve() }()

	t.Cleanup(func() {
		assert.NoError(t, s.Close())
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	require.Eventually(t, func() bool {
		conn, err := net.Dial(tc.network, endpoint)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 5*time.Second, 10*time.Millisecond, "server did not come up")

	return endpoint
}

func clientConfig(endpoint string) common.ClientConfig {
	return common.ClientConfig{
		TimeoutSecond: 5,
		Transport: common.ClientTransportConfig{
			Endpoints:              []string{endpoint},
			RetryCount:             2,
			ConnectionsPerEndpoint: 2,
		},
	}
}

func TestRPCStore(t *testing.T) {
	for _, tc := range transportCases() {
		for serName, newSerializer := range serializers() {
			t.Run(tc.name+"/"+serName, func(t *testing.T) {
				endpoint := startServer(t, tc, newSerializer())

				var nextShard atomic.Uint64
				var clients []transport.IRPCClientTransport
				t.Cleanup(func() {
					for _, c := range clients {
						_ = c.Close()
					}
				})

				factory := func() store.IStore {
					shard := nextShard.Add(1)
					require.LessOrEqual(t, shard, uint64(testShards), "test needs more shards")

					tr := tc.client()
					clients = append(clients, tr)

					s, err := NewRPCStore(shard, clientConfig(endpoint), tr, newSerializer())
					require.NoError(t, err)
					return s
				}

				storetesting.RunIStoreTests(t, "RPCStore", factory)
			})
		}
	}
}

func TestRPCStoreErrorCodes(t *testing.T) {
	tc := transportCases()[0]
	ser := serializer.NewBinarySerializer()
	endpoint := startServer(t, tc, ser)

	tr := tc.client()
	t.Cleanup(func() { _ = tr.Close() })
	s, err := NewRPCStore(1, clientConfig(endpoint), tr, ser)
	require.NoError(t, err)

	_, err = s.Get("missing", "k")
	assert.ErrorIs(t, err, store.ErrFamilyNotFound)

	require.NoError(t, s.Put("cf", "k", "v"))
	_, err = s.Get("cf", "other")
	assert.True(t, store.IsCode(err, store.RetCKeyNotFound))

	_, err = s.Scan("cf", "k", -1)
	assert.ErrorIs(t, err, store.ErrInvalidArgument)

	_, err = s.Scan("cf", "k", 0)
	assert.ErrorIs(t, err, store.ErrInvalidArgument)
}

func TestUnknownShard(t *testing.T) {
	tc := transportCases()[0]
	ser := serializer.NewBinarySerializer()
	endpoint := startServer(t, tc, ser)

	tr := tc.client()
	t.Cleanup(func() { _ = tr.Close() })
	s, err := NewRPCStore(testShards+1, clientConfig(endpoint), tr, ser)
	require.NoError(t, err)

	err = s.Put("cf", "k", "v")
	require.Error(t, err)
	assert.Equal(t, store.RetCInternalError, store.CodeOf(err))
	assert.Contains(t, err.Error(), "shard not found")
}

func TestConnectWithoutServer(t *testing.T) {
	_, err := NewRPCStore(1, clientConfig(freeTCPAddr(t)), tcp.NewTCPClientTransport(), serializer.NewBinarySerializer())
	assert.Error(t, err)
}
