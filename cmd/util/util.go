package util

import (
	"slices"
	"strings"

	"github.com/ValentinKolb/tinyKV/rpc/common"
	"github.com/ValentinKolb/tinyKV/rpc/serializer"
	"github.com/ValentinKolb/tinyKV/rpc/transport"
	"github.com/ValentinKolb/tinyKV/rpc/transport/http"
	"github.com/ValentinKolb/tinyKV/rpc/transport/tcp"
	"github.com/ValentinKolb/tinyKV/rpc/transport/unix"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50

	// EnvPrefix is the prefix of all environment variables (e.g. TKV_TIMEOUT)
	EnvPrefix = "tkv"

	// serverBufferSize is the size of the pooled read buffers of the tcp and unix server transports
	serverBufferSize = 64 * 1024
)

// serializers maps the value of the --serializer flag to a factory
var serializers = map[string]func() serializer.IRPCSerializer{
	"json":   serializer.NewJSONSerializer,
	"gob":    serializer.NewGOBSerializer,
	"binary": serializer.NewBinarySerializer,
}

// transports maps the value of the --transport flag to the client and server factories
var transports = map[string]struct {
	client func() transport.IRPCClientTransport
	server func() transport.IRPCServerTransport
}{
	"http": {http.NewHttpClientTransport, http.NewHttpServerTransport},
	"tcp":  {tcp.NewTCPClientTransport, func() transport.IRPCServerTransport { return tcp.NewTCPServerTransport(serverBufferSize) }},
	"unix": {unix.NewUnixClientTransport, func() transport.IRPCServerTransport { return unix.NewUnixServerTransport(serverBufferSize) }},
}

// WrapString wraps a string at Wrap characters (words longer than Wrap get a line of their own)
func WrapString(text string) string {
	var b strings.Builder
	width := 0

	for _, word := range strings.Fields(text) {
		switch {
		case width == 0:
		case width+1+len(word) > Wrap:
			b.WriteByte('\n')
			width = 0
		default:
			b.WriteByte(' ')
			width++
		}
		b.WriteString(word)
		width += len(word)
	}

	return b.String()
}

// SetupRPCClientFlags adds common RPC connection flags to a command
func SetupRPCClientFlags(cmd *cobra.Command) {
	key := "timeout"
	cmd.PersistentFlags().Int(key, 10, WrapString("The timeout in seconds of the client"))

	key = "transport-endpoints"
	cmd.PersistentFlags().String(key, "localhost:8080", WrapString("The address of the tinyKV server. For transports that support load balancing, multiple endpoints can be specified as a comma-separated list"))

	key = "transport-conn-per-endpoint"
	cmd.PersistentFlags().Int(key, 1, WrapString("Simultaneous connections per endpoint - for transports that support this feature"))

	key = "transport-retries"
	cmd.PersistentFlags().Int(key, 3, WrapString("How many times to retry the request"))

	SetupSocketFlags(cmd)
}

// SetupSocketFlags adds the socket and tcp tuning flags shared by server and client
func SetupSocketFlags(cmd *cobra.Command) {
	key := "transport-write-buffer"
	cmd.PersistentFlags().Int(key, 512, WrapString("The size of the socket write buffer (in KB, ignored for http)"))

	key = "transport-read-buffer"
	cmd.PersistentFlags().Int(key, 512, WrapString("The size of the socket read buffer (in KB, ignored for http)"))

	key = "transport-tcp-nodelay"
	cmd.PersistentFlags().Bool(key, true, WrapString("Whether to enable TCP_NODELAY (only for tcp)"))

	key = "transport-tcp-keepalive"
	cmd.PersistentFlags().Int(key, 0, WrapString("The keepalive interval (in seconds, only for tcp)"))

	key = "transport-tcp-linger"
	cmd.PersistentFlags().Int(key, 0, WrapString("The linger time (in seconds, only for tcp, 0 keeps the OS default)"))
}

// InitConfig loads .env files and enables the TKV_ environment variables.
// It is registered once via cobra.OnInitialize by the root command
func InitConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// GetSocketConf reads the socket flags (see SetupSocketFlags) from viper
func GetSocketConf() common.SocketConf {
	return common.SocketConf{
		WriteBufferSize: viper.GetInt("transport-write-buffer") * 1024,
		ReadBufferSize:  viper.GetInt("transport-read-buffer") * 1024,
	}
}

// GetTCPConf reads the tcp flags (see SetupSocketFlags) from viper
func GetTCPConf() common.TCPConf {
	return common.TCPConf{
		TCPNoDelay:      viper.GetBool("transport-tcp-nodelay"),
		TCPKeepAliveSec: viper.GetInt("transport-tcp-keepalive"),
		TCPLingerSec:    viper.GetInt("transport-tcp-linger"),
	}
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() *common.ClientConfig {
	var endpoints []string
	for _, endpoint := range strings.Split(viper.GetString("transport-endpoints"), ",") {
		if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
			endpoints = append(endpoints, endpoint)
		}
	}

	return &common.ClientConfig{
		TimeoutSecond: viper.GetInt("timeout"),
		Transport: common.ClientTransportConfig{
			RetryCount:             viper.GetInt("transport-retries"),
			Endpoints:              endpoints,
			ConnectionsPerEndpoint: viper.GetInt("transport-conn-per-endpoint"),
			SocketConf:             GetSocketConf(),
			TCPConf:                GetTCPConf(),
		},
	}
}

// GetSerializer creates a serializer based on configuration
func GetSerializer() (serializer.IRPCSerializer, error) {
	name := viper.GetString("serializer")
	newSerializer, ok := serializers[name]
	if !ok {
		return nil, errors.Newf("invalid serializer %s (expected one of %s)", name, options(serializers))
	}
	return newSerializer(), nil
}

// GetTransport creates the client side of the configured transport
func GetTransport() (transport.IRPCClientTransport, error) {
	name := viper.GetString("transport")
	t, ok := transports[name]
	if !ok {
		return nil, errors.Newf("invalid transport %s (expected one of %s)", name, options(transports))
	}
	return t.client(), nil
}

// GetServerTransport creates the server side of the configured transport
func GetServerTransport() (transport.IRPCServerTransport, error) {
	name := viper.GetString("transport")
	t, ok := transports[name]
	if !ok {
		return nil, errors.Newf("invalid transport %s (expected one of %s)", name, options(transports))
	}
	return t.server(), nil
}

// GetShardID retrieves the configured shard ID
func GetShardID() uint64 {
	return viper.GetUint64("shard")
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// options lists the keys of a factory map in sorted order
func options[V any](m map[string]V) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return strings.Join(keys, ", ")
}
