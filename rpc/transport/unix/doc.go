// Package unix provides the Unix domain socket transport. It plugs Unix socket
// connectors into the framed protocol of the base package and is the fastest
// choice when client and server run on the same machine.
//
// The endpoint is the socket path (e.g. /tmp/tkv.sock). An existing file at that
// path is removed when the server starts. Socket buffer sizes from common.SocketConf
// are applied to every connection.
package unix
