package live

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/credotech/inventory-console/internal/domain"
	"github.com/credotech/inventory-console/internal/metrics"
	"github.com/credotech/inventory-console/pkg/logger"
)

// State is the connection state of the live update channel
type State int32

const (
	Connecting State = iota
	Open
	Closed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Message types pushed by the server
const (
	MessageProductsUpdated    = "PRODUCTS_UPDATED"
	MessageCategoriesUpdated  = "CATEGORIES_UPDATED"
	MessageProductUpdated     = "PRODUCT_UPDATED"
	MessageCategoryUpdated    = "CATEGORY_UPDATED"
	MessageTransactionUpdated = "TRANSACTION_UPDATED"
)

// Envelope is the inbound message contract: a type tag plus optional
// embedded lists depending on the type
type Envelope struct {
	Type         string               `json:"type"`
	Products     []domain.Product     `json:"products,omitempty"`
	Categories   []domain.Category    `json:"categories,omitempty"`
	Transactions []domain.Transaction `json:"transactions,omitempty"`
}

// Conn is a single established live connection
type Conn interface {
	ReadMessage() ([]byte, error)
	Close() error
}

// Transport establishes live connections. Injected so the reconnect
// logic is testable without a real socket.
type Transport interface {
	Dial(ctx context.Context) (Conn, error)
}

// Handler is a function that handles one decoded envelope
type Handler func(ctx context.Context, env Envelope)

// Channel is the live update channel. It holds one persistent inbound
// connection and dispatches typed notifications to registered handlers.
// On a non-caller-initiated close it reconnects on a fixed interval,
// indefinitely, until the connection is open again. The interval is
// deliberately constant: the target server is local/always-available,
// so exponential backoff would only delay recovery.
type Channel struct {
	transport Transport
	interval  time.Duration

	handlersMutex sync.RWMutex
	handlers      map[string]Handler

	state   atomic.Int32
	onState func(State)

	mu      sync.Mutex
	conn    Conn
	closing bool
	done    chan struct{}
}

// NewChannel creates a new live update channel
func NewChannel(transport Transport, reconnectInterval time.Duration) *Channel {
	c := &Channel{
		transport: transport,
		interval:  reconnectInterval,
		handlers:  make(map[string]Handler),
		done:      make(chan struct{}),
	}
	c.state.Store(int32(Closed))
	return c
}

// RegisterHandler registers a handler for a message type
func (c *Channel) RegisterHandler(messageType string, handler Handler) {
	c.handlersMutex.Lock()
	defer c.handlersMutex.Unlock()
	c.handlers[messageType] = handler
}

// OnStateChange sets a hook invoked on every state transition
func (c *Channel) OnStateChange(fn func(State)) {
	c.onState = fn
}

// State returns the current connection state
func (c *Channel) State() State {
	return State(c.state.Load())
}

func (c *Channel) setState(s State) {
	if State(c.state.Swap(int32(s))) == s {
		return
	}
	if c.onState != nil {
		c.onState(s)
	}
}

// Start starts the connection loop in the background
func (c *Channel) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Channel) run(ctx context.Context) {
	defer close(c.done)
	for {
		c.setState(Connecting)
		conn, err := c.transport.Dial(ctx)
		if err != nil {
			c.setState(Closed)
			if ctx.Err() != nil || c.isClosing() {
				return
			}
			metrics.LiveReconnects.Inc()
			logger.Logger.Warn().
				Err(err).
				Dur("retry_in", c.interval).
				Msg("Live channel dial failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.interval):
				continue
			}
		}

		c.mu.Lock()
		if c.closing {
			c.mu.Unlock()
			conn.Close()
			c.setState(Closed)
			return
		}
		c.conn = conn
		c.mu.Unlock()

		// Open cancels any pending reconnect: the loop only waits
		// again after the connection is lost.
		c.setState(Open)
		logger.Logger.Info().Msg("Live channel connected")

		c.readLoop(ctx, conn)
		conn.Close()
		c.setState(Closed)

		if ctx.Err() != nil || c.isClosing() {
			return
		}
		metrics.LiveReconnects.Inc()
		logger.Logger.Warn().
			Dur("retry_in", c.interval).
			Msg("Live channel connection lost, reconnecting")
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.interval):
		}
	}
}

func (c *Channel) readLoop(ctx context.Context, conn Conn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		c.dispatch(ctx, data)
	}
}

// dispatch decodes and routes one inbound message. It never propagates
// a failure: malformed payloads are logged and dropped, unrecognized
// types ignored for forward compatibility.
func (c *Channel) dispatch(ctx context.Context, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		logger.Logger.Error().
			Err(err).
			Msg("Dropping malformed live message")
		return
	}

	c.handlersMutex.RLock()
	handler, ok := c.handlers[env.Type]
	c.handlersMutex.RUnlock()

	if !ok {
		logger.Logger.Debug().
			Str("type", env.Type).
			Msg("Ignoring unrecognized live message type")
		return
	}

	metrics.LiveMessages.WithLabelValues(env.Type).Inc()
	handler(ctx, env)
}

func (c *Channel) isClosing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closing
}

// Close shuts the channel down. Caller-initiated: no reconnect is
// scheduled. Blocks until the connection loop has exited.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		<-c.done
		return nil
	}
	c.closing = true
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	<-c.done
	return nil
}
