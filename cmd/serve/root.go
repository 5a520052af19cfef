package serve

import (
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	cmdUtil "github.com/ValentinKolb/tinyKV/cmd/util"
	"github.com/ValentinKolb/tinyKV/rpc/common"
	"github.com/ValentinKolb/tinyKV/rpc/server"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the tinyKV server",
		Long:    `Start the tinyKV server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is TKV_<flag> (e.g. TKV_TIMEOUT=15)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// add flags
	key := "shards"
	ServeCmd.PersistentFlags().String(key, "100", cmdUtil.WrapString("Comma-separated list of shards to serve. Format: ID or ID=TYPE where TYPE is lstore (the only type, also the default)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("Timeout in seconds"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the API will listen (e.g. localhost:8080, /tmp/tkv.sock, ...)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "workers-per-conn"
	ServeCmd.PersistentFlags().Int(key, 8, cmdUtil.WrapString("Maximum number of requests processed in parallel per connection (ignored for http)"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Optional address of a separate listener serving Prometheus metrics on /metrics (e.g. localhost:9090). The http transport always serves /metrics"))

	cmdUtil.SetupSocketFlags(ServeCmd)
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	// parse shards
	shards, err := parseShards(viper.GetString("shards"))
	if err != nil {
		return err
	}
	serveCmdConfig.Shards = shards

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.Transport = common.ServerTransportConfig{
		Endpoint:       viper.GetString("endpoint"),
		WorkersPerConn: viper.GetInt("workers-per-conn"),
		SocketConf:     cmdUtil.GetSocketConf(),
		TCPConf:        cmdUtil.GetTCPConf(),
	}

	return nil
}

// parseShards parses a comma-separated list of shard definitions (ID or ID=TYPE)
func parseShards(shardsConfig string) ([]common.ServerShard, error) {
	var shards []common.ServerShard
	seen := make(map[uint64]bool)

	for _, shardConfig := range strings.Split(shardsConfig, ",") {
		shardConfig = strings.TrimSpace(shardConfig)
		if shardConfig == "" {
			continue
		}

		idPart, typePart, hasType := strings.Cut(shardConfig, "=")

		// Parse shard ID
		shardID, err := strconv.ParseUint(strings.TrimSpace(idPart), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid shard ID %s", idPart)
		}
		if seen[shardID] {
			return nil, errors.Newf("duplicate shard ID %d", shardID)
		}
		seen[shardID] = true

		// Parse shard type
		serverShardType := common.ShardTypeLocalIStore
		if hasType {
			switch strings.TrimSpace(typePart) {
			case "lstore":
				serverShardType = common.ShardTypeLocalIStore
			default:
				return nil, errors.Newf("invalid shard type: %s (expected lstore)", typePart)
			}
		}

		shards = append(shards, common.ServerShard{
			ShardID: shardID,
			Type:    serverShardType,
		})
	}

	if len(shards) == 0 {
		return nil, errors.New("at least one shard is required")
	}
	return shards, nil
}

// run starts the tinyKV server and blocks until it is stopped by a signal
func run(_ *cobra.Command, _ []string) error {

	// parse the serializer
	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return err
	}

	// Parse the transport
	t, err := cmdUtil.GetServerTransport()
	if err != nil {
		return err
	}

	serv := server.NewRPCServer(
		*serveCmdConfig,
		t,
		s,
	)

	// Stop the server on SIGINT / SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; ok {
			server.Logger.Infof("shutting down")
			if err := serv.Close(); err != nil {
				server.Logger.Errorf("failed to stop server: %v", err)
			}
		}
	}()

	return serv.Serve()
}
