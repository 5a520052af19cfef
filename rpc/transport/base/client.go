package base

import (
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/tinyKV/rpc/common"
	"github.com/ValentinKolb/tinyKV/rpc/transport"
	"github.com/cockroachdb/errors"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("transport/rpc")

// initialBackoff is the pause before the first retry, it doubles with every further retry
const initialBackoff = 50 * time.Millisecond

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection based on the provided configuration
	Connect(endpoint string) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// responseResult contains the result of a request
type responseResult struct {
	data []byte
	err  error
}

// clientConnection represents a single net connection
type clientConnection struct {
	conn         net.Conn
	endpoint     string
	stopCh       chan struct{} // Close signal for the reader goroutine
	requestChans *xsync.MapOf[uint64, chan responseResult]
	connMu       sync.Mutex // Protects the connection itself
	parent       *clientTransport
}

// clientTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp, etc.)
type clientTransport struct {
	connector     IClientConnector
	config        common.ClientConfig
	connections   []*clientConnection
	connectionsMu sync.RWMutex
	nextConnIndex atomic.Uint64 // Counter for Round Robin
	nextRequestID atomic.Uint64 // Counter for unique request IDs
	stopping      atomic.Bool   // Signals shutdown
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IRPCClientTransport {
	return &clientTransport{
		connector: connector,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	if len(config.Transport.Endpoints) == 0 {
		return errors.New("no endpoints provided")
	}

	// Drop the connections of a previous Connect call
	t.closeConnections()

	t.config = config
	t.stopping.Store(false)

	perEndpoint := max(1, config.Transport.ConnectionsPerEndpoint)
	wanted := len(config.Transport.Endpoints) * perEndpoint

	connections := make([]*clientConnection, 0, wanted)
	for _, endpoint := range config.Transport.Endpoints {
		for i := 0; i < perEndpoint; i++ {
			c, err := t.dial(endpoint)
			if err != nil {
				Logger.Warningf("Failed to connect to %s (connection %d/%d): %v", endpoint, i+1, perEndpoint, err)
				continue
			}
			connections = append(connections, c)
		}
	}

	if len(connections) == 0 {
		return errors.Newf("failed to connect to any of %v", config.Transport.Endpoints)
	}

	t.connectionsMu.Lock()
	t.connections = connections
	t.connectionsMu.Unlock()

	Logger.Infof("Opened %d/%d %s connections to %d endpoints",
		len(connections), wanted, t.connector.GetName(), len(config.Transport.Endpoints))

	return nil
}

func (t *clientTransport) Send(shardId uint64, req []byte) ([]byte, error) {
	timeout := time.Duration(t.config.TimeoutSecond) * time.Second
	attempts := max(1, t.config.Transport.RetryCount)
	backoff := initialBackoff

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		c := t.getNextConnection()
		if c == nil {
			return nil, errors.New("no active connections available")
		}

		// a fresh request ID per attempt keeps late answers of earlier attempts apart
		data, err := c.roundTrip(shardId, t.nextRequestID.Add(1), req, timeout)
		if err == nil {
			return data, nil
		}

		lastErr = err
		Logger.Debugf("Request attempt %d/%d on %s failed: %v", attempt, attempts, c.endpoint, err)

		if attempt == attempts || t.stopping.Load() {
			break
		}

		// exponential backoff with +-10% jitter
		time.Sleep(time.Duration(float64(backoff) * (0.9 + 0.2*rand.Float64())))
		backoff *= 2
	}

	return nil, errors.Wrapf(lastErr, "failed to send request after %d attempts", attempts)
}

func (t *clientTransport) Close() error {
	t.stopping.Store(true)
	t.closeConnections()
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// getNextConnection selects the next connection via Round Robin
func (t *clientTransport) getNextConnection() *clientConnection {
	t.connectionsMu.RLock()
	defer t.connectionsMu.RUnlock()

	if len(t.connections) == 0 {
		return nil
	}

	// optimize for single connection
	if len(t.connections) == 1 {
		return t.connections[0]
	}
	return t.connections[t.nextConnIndex.Add(1)%uint64(len(t.connections))]
}

// closeConnections closes all active connections
func (t *clientTransport) closeConnections() {
	t.connectionsMu.Lock()
	defer t.connectionsMu.Unlock()

	for _, conn := range t.connections {
		// Signal reader goroutine to stop
		close(conn.stopCh)

		// Close the connection
		conn.connMu.Lock()
		if conn.conn != nil {
			_ = conn.conn.Close()
		}
		conn.connMu.Unlock()
	}

	// Empty the list
	t.connections = nil
}

// dial opens a connection to endpoint and starts its response reader
func (t *clientTransport) dial(endpoint string) (*clientConnection, error) {
	c := &clientConnection{
		endpoint:     endpoint,
		stopCh:       make(chan struct{}),
		requestChans: xsync.NewMapOf[uint64, chan responseResult](),
		parent:       t,
	}
	if err := c.reconnect(); err != nil {
		return nil, err
	}
	go c.readResponses()
	return c, nil
}

// roundTrip writes one request frame and waits for the matching response.
// A timeout <= 0 waits without limit.
func (c *clientConnection) roundTrip(shardId, requestID uint64, req []byte, timeout time.Duration) ([]byte, error) {
	respCh := make(chan responseResult, 1)
	c.requestChans.Store(requestID, respCh)
	defer c.requestChans.Delete(requestID)

	// writes of concurrent requests must not interleave
	c.connMu.Lock()
	if c.conn == nil {
		c.connMu.Unlock()
		return nil, errors.New("connection is closed")
	}
	if timeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	err := writeFrame(c.conn, shardId, requestID, req)
	c.connMu.Unlock()
	if err != nil {
		return nil, errors.Wrap(err, "write request")
	}

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case result := <-respCh:
		return result.data, result.err
	case <-timeoutCh:
		return nil, errors.Newf("request timed out after %s", timeout)
	}
}

// deliver hands a result to the request waiting for it, results nobody waits for are dropped
func (c *clientConnection) deliver(requestID uint64, result responseResult) bool {
	respCh, found := c.requestChans.Load(requestID)
	if !found {
		return false
	}
	select {
	case respCh <- result:
	default:
	}
	return true
}

// stopped reports whether the connection was closed by the transport
func (c *clientConnection) stopped() bool {
	select {
	case <-c.stopCh:
		return true
	default:
		return false
	}
}

// failPending hands err to every request that still waits for a response on this connection
func (c *clientConnection) failPending(err error) {
	c.requestChans.Range(func(requestID uint64, _ chan responseResult) bool {
		c.deliver(requestID, responseResult{err: err})
		return true
	})
}

// readResponses reads responses in a loop and distributes them to waiting requests
func (c *clientConnection) readResponses() {
	for {
		if c.stopped() {
			return
		}

		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		// Read the response frame (no deadline, pending requests time out in Send)
		shardID, requestID, data, err := readFrame(conn, nil)

		if err != nil {
			if c.stopped() {
				return
			}

			// The stream is broken, no pending request can be answered anymore
			Logger.Warningf("Error reading from %s: %v", c.endpoint, err)
			c.failPending(errors.Wrap(err, "read response"))

			// Try to restore the connection
			if err := c.reconnect(); err != nil {
				Logger.Errorf("Failed to reconnect to %s: %v", c.endpoint, err)
				return
			}
			continue
		}

		if !c.deliver(requestID, responseResult{data: data}) {
			Logger.Debugf("Dropped response for request %d (shard %d), nobody is waiting for it", requestID, shardID)
		}
	}
}

// reconnect establishes or restores a connection to the endpoint
func (c *clientConnection) reconnect() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	// Close the old connection if it exists
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}

	// Connect to the endpoint
	conn, err := c.parent.connector.Connect(c.endpoint)
	if err != nil {
		return errors.Wrapf(err, "failed to connect to %s", c.endpoint)
	}

	// Upgrade the connection with protocol-specific settings
	if err := c.parent.connector.UpgradeConnection(conn, c.parent.config); err != nil {
		_ = conn.Close()
		return errors.Wrapf(err, "failed to upgrade connection to %s", c.endpoint)
	}

	c.conn = conn
	return nil
}
