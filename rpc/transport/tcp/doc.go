// Package tcp provides the TCP transport. It plugs TCP connectors into the framed
// protocol of the base package.
//
// Client and server apply common.TCPConf (no delay, keep alive, linger) and
// common.SocketConf (buffer sizes) to every connection. Linger and keep alive are
// only set when configured with a positive value.
package tcp
