package server

import (
	"net/http"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/ValentinKolb/tinyKV/lib/db"
	"github.com/ValentinKolb/tinyKV/lib/db/engines/btree"
	"github.com/ValentinKolb/tinyKV/lib/store"
	"github.com/ValentinKolb/tinyKV/lib/store/lstore"
	"github.com/ValentinKolb/tinyKV/rpc/common"
	"github.com/ValentinKolb/tinyKV/rpc/serializer"
	"github.com/ValentinKolb/tinyKV/rpc/transport"
	thttp "github.com/ValentinKolb/tinyKV/rpc/transport/http"
	"github.com/cockroachdb/errors"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("rpc")

// serverShard is a struct that represents a shard in the RPC server
// It contains the store it encapsulates and the adapter
// that handles requests for the store
type serverShard struct {
	Store   store.IStore
	Adapter IRPCServerAdapter
}

// RPCServer serves one independent store per configured shard over a transport
type RPCServer struct {
	config        common.ServerConfig
	transport     transport.IRPCServerTransport
	serializer    serializer.IRPCSerializer
	shards        *xsync.MapOf[uint64, serverShard]
	metricsServer *http.Server
	// shards counted in the tkv_shards gauge, removed again on Close
	publishedShards int
	mu              sync.Mutex
}

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		http.NewHttpServerTransport(),
//		serializer.NewJSONSerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	 }
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	// Create the RPC server
	return &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		shards:     xsync.NewMapOf[uint64, serverShard](),
	}
}

// handle decodes a request, routes it to its shard and encodes the response
func (s *RPCServer) handle(shardId uint64, req []byte) []byte {
	start := time.Now()

	var msg common.Message
	var respMsg *common.Message

	// Get appropriate shard
	shard, ok := s.shards.Load(shardId)

	if !ok {
		// Case shard does not exist -> error
		respMsg = common.NewErrorResponse(store.RetCInternalError, "shard not found")
	} else if err := s.serializer.Deserialize(req, &msg); err != nil {
		respMsg = common.NewErrorResponse(store.RetCInternalError, "failed to deserialize request: "+err.Error())
	} else {
		// Let the adapter handle the request
		respMsg = shard.Adapter.Handle(&msg, shard.Store)
	}

	observeRequest(shardId, msg.MsgType, respMsg.Code, start)

	// Return result
	val, err := s.serializer.Serialize(*respMsg)
	if err != nil {
		Logger.Errorf("failed to serialize response for shard %d: %v", shardId, err)
		val, _ = s.serializer.Serialize(*common.NewErrorResponse(store.RetCInternalError, "failed to serialize response: "+err.Error()))
	}
	return val
}

func (s *RPCServer) init() error {

	// Setup logging
	if err := common.InitLoggers(s.config.LogLevel); err != nil {
		return err
	}

	// Function to create a new database instance (one per column family)
	dbFactory := func() db.KVDB { return btree.NewBTreeDB(btree.DefaultOptions()) }

	if len(s.config.Shards) == 0 {
		return errors.New("no shards configured")
	}

	// CREATE SHARDS

	/*
		Note: A single RPC Server can serve any number of shards. Every shard is
		an independent store, constructed here once and handed to the adapter
		for every request.
	*/

	for _, shardConfig := range s.config.Shards {
		switch shardConfig.Type {
		case common.ShardTypeLocalIStore, "":
			if _, loaded := s.shards.LoadOrStore(shardConfig.ShardID, serverShard{
				Store:   lstore.NewLocalStore(dbFactory),
				Adapter: NewIStoreServerAdapter(),
			}); loaded {
				return errors.Newf("duplicate shard id %d", shardConfig.ShardID)
			}
			Logger.Infof("created local store for shard %d", shardConfig.ShardID)
		default:
			return errors.Newf("invalid shard type: %s", shardConfig.Type)
		}
	}

	s.mu.Lock()
	s.publishedShards = s.shards.Size()
	s.mu.Unlock()
	observeShards(s.publishedShards)

	Logger.Infof("tinyKV setup completed successfully")

	// Configure the transport layer
	s.transport.RegisterHandler(s.handle)

	return nil
}

// Serve starts the RPC server
// This function will also initialize the shards, start the optional metrics
// listener and then block in the transport layer until Close is called.
func (s *RPCServer) Serve() error {
	if err := s.init(); err != nil {
		return err
	}

	if s.config.MetricsEndpoint != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /metrics", thttp.HandleMetrics)

		s.mu.Lock()
		s.metricsServer = &http.Server{Addr: s.config.MetricsEndpoint, Handler: mux}
		metricsServer := s.metricsServer
		s.mu.Unlock()

		go func() {
			Logger.Infof("Serving metrics on %s/metrics", s.config.MetricsEndpoint)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				Logger.Errorf("metrics server failed: %v", err)
			}
		}()
	}

	return s.transport.Listen(s.config)
}

// Close stops the transport and the metrics listener
func (s *RPCServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	observeShards(-s.publishedShards)
	s.publishedShards = 0

	var err error
	if s.metricsServer != nil {
		err = errors.CombineErrors(err, s.metricsServer.Close())
	}
	return errors.CombineErrors(err, s.transport.Close())
}
