package base

import (
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/tinyKV/rpc/common"
	"github.com/ValentinKolb/tinyKV/rpc/transport"
	"github.com/cockroachdb/errors"
	"github.com/puzpuzpuz/xsync/v3"
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IServerConnector defines the interface for transport-specific server operations
type IServerConnector interface {
	// Listen creates a listener and returns it
	Listen(config common.ServerConfig) (net.Listener, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an accepted connection
	UpgradeConnection(conn net.Conn, config common.ServerConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// serverTransport implements the core server transport functionality
type serverTransport struct {
	connector         IServerConnector
	handler           transport.ServerHandleFunc
	config            common.ServerConfig
	listener          net.Listener
	listenerMu        sync.Mutex
	closed            atomic.Bool
	conns             *xsync.MapOf[net.Conn, struct{}] // accepted connections, closed by Close
	bufferPool        *sync.Pool
	maxWorkersPerConn int
}

// serverConn serves the requests of one accepted connection
type serverConn struct {
	parent  *serverTransport
	conn    net.Conn
	timeout time.Duration
	slots   chan struct{} // counting semaphore, bounds the workers of this connection
	writeMu sync.Mutex    // responses of parallel workers must not interleave
	wg      sync.WaitGroup
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseServerTransport creates a new base server transport with per-connection worker pool.
// bufferSize is the size of the pooled read buffers, larger frames get their own allocation.
// The size of the worker pool is taken from config.Transport.WorkersPerConn in Listen.
func NewBaseServerTransport(connector IServerConnector, bufferSize int) transport.IRPCServerTransport {
	return &serverTransport{
		connector: connector,
		conns:     xsync.NewMapOf[net.Conn, struct{}](),
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return make([]byte, bufferSize)
			},
		},
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *serverTransport) Listen(config common.ServerConfig) error {
	if t.handler == nil {
		return errors.New("no handler registered")
	}

	t.config = config
	t.maxWorkersPerConn = max(1, config.Transport.WorkersPerConn)

	listener, err := t.connector.Listen(config)
	if err != nil {
		return errors.Wrap(err, "failed to create listener")
	}

	t.listenerMu.Lock()
	t.listener = listener
	t.listenerMu.Unlock()

	// Close may have been called before the listener existed
	if t.closed.Load() {
		return listener.Close()
	}

	Logger.Infof("Starting %s server on %s with %d workers per connection",
		t.connector.GetName(), config.Transport.Endpoint, t.maxWorkersPerConn)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if t.closed.Load() || errors.Is(err, net.ErrClosed) {
				Logger.Infof("Stopped %s server on %s", t.connector.GetName(), config.Transport.Endpoint)
				return nil
			}
			Logger.Errorf("Accept error: %v", err)
			continue
		}

		if err := t.connector.UpgradeConnection(conn, config); err != nil {
			Logger.Warningf("Failed to upgrade connection from %s: %v", conn.RemoteAddr(), err)
		}

		sc := &serverConn{
			parent:  t,
			conn:    conn,
			timeout: time.Duration(config.TimeoutSecond) * time.Second,
			slots:   make(chan struct{}, t.maxWorkersPerConn),
		}
		t.conns.Store(conn, struct{}{})
		if t.closed.Load() {
			_ = conn.Close()
		}
		go sc.serve()
	}
}

func (t *serverTransport) Close() error {
	t.closed.Store(true)

	t.listenerMu.Lock()
	defer t.listenerMu.Unlock()

	var err error
	if t.listener != nil {
		err = t.listener.Close()
	}

	// unblock the readers of all open connections
	t.conns.Range(func(conn net.Conn, _ struct{}) bool {
		_ = conn.Close()
		return true
	})
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// serve reads request frames until the connection is closed and dispatches each
// of them to a worker. It waits for all workers before the connection is released.
func (c *serverConn) serve() {
	defer func() {
		c.wg.Wait()
		c.parent.conns.Delete(c.conn)
		_ = c.conn.Close()
	}()

	for {
		buf := c.parent.bufferPool.Get().([]byte)

		// idle connections are kept open, there is no read deadline
		shardID, requestID, data, err := readFrame(c.conn, buf)
		if err != nil {
			c.parent.bufferPool.Put(buf)
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || c.parent.closed.Load() {
				Logger.Debugf("Connection closed %s", c.conn.RemoteAddr())
			} else {
				Logger.Errorf("Error reading request from %s: %v", c.conn.RemoteAddr(), err)
			}
			return
		}

		// blocks while all workers of this connection are busy
		c.slots <- struct{}{}
		c.wg.Add(1)

		go func() {
			defer func() {
				c.parent.bufferPool.Put(buf)
				<-c.slots
				c.wg.Done()
			}()
			c.respond(shardID, requestID, data)
		}()
	}
}

// respond runs the handler for one request and writes the response frame with the same request ID
func (c *serverConn) respond(shardID, requestID uint64, data []byte) {
	start := time.Now()
	resp := c.parent.handler(shardID, data)
	Logger.Debugf("Request %d for shard %d took %s", requestID, shardID, time.Since(start))

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.timeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
			Logger.Errorf("Failed to set write deadline: %v", err)
			return
		}
	}

	if err := writeFrame(c.conn, shardID, requestID, resp); err != nil {
		Logger.Errorf("Failed to write response: %v", err)
	}
}
