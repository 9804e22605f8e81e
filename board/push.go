// Copyright 2026 The Taskboard Authors
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/taskboard-dev/taskboard/lib/clock"
	"github.com/taskboard-dev/taskboard/lib/netutil"
)

// Handler receives the arguments of one push event. Handlers run on
// the channel's read goroutine, one at a time, in arrival order; a
// slow handler delays subsequent events.
type Handler func(arguments []json.RawMessage)

// envelope is the wire frame of the push channel, in both directions.
// Target names the event (server to client) or the hub command
// (client to server); Arguments carries the positional payload.
type envelope struct {
	Target    string            `json:"target"`
	Arguments []json.RawMessage `json:"arguments"`
}

// Backoff bounds for push channel redial attempts. The delay starts
// at reconnectBaseDelay and doubles per consecutive failure up to
// reconnectMaxDelay, resetting after a successful handshake.
const (
	reconnectBaseDelay = 1 * time.Second
	reconnectMaxDelay  = 30 * time.Second
)

// ChannelConfig holds configuration for creating a Channel.
type ChannelConfig struct {
	// ServerURL is the base URL of the board backend. The websocket
	// handshake URL is derived from it by swapping the scheme.
	// Required.
	ServerURL string
	// HubPath is the handshake path on the backend. Required.
	HubPath string
	// Dialer performs the websocket handshake. If nil,
	// websocket.DefaultDialer is used.
	Dialer *websocket.Dialer
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
	// Clock schedules reconnect backoff. If nil, the real clock is
	// used.
	Clock clock.Clock
}

// Channel is the persistent push connection to the backend hub. It
// dispatches named server events to registered handlers and sends hub
// commands (room join and leave). After Start succeeds, the channel
// redials automatically with capped exponential backoff whenever the
// connection drops, until Close is called.
type Channel struct {
	url    string
	dialer *websocket.Dialer
	logger *slog.Logger
	clock  clock.Clock

	handlerMu sync.Mutex
	handlers  map[string]Handler
	onConnect func(reconnected bool)

	// connMu guards conn; writeMu serializes writes to it. Two locks
	// so a blocked write never prevents the read loop from swapping
	// in a fresh connection.
	connMu sync.Mutex
	conn   *websocket.Conn

	writeMu sync.Mutex

	started   bool
	done      chan struct{}
	closeOnce sync.Once
	loopDone  chan struct{}
}

// NewChannel creates a push channel. The channel does not connect
// until Start is called.
func NewChannel(config ChannelConfig) (*Channel, error) {
	if config.ServerURL == "" {
		return nil, fmt.Errorf("board: ServerURL is required")
	}
	if config.HubPath == "" || !strings.HasPrefix(config.HubPath, "/") {
		return nil, fmt.Errorf("board: HubPath must be an absolute path, got %q", config.HubPath)
	}

	wsURL, err := websocketURL(config.ServerURL, config.HubPath)
	if err != nil {
		return nil, err
	}

	dialer := config.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}

	return &Channel{
		url:      wsURL,
		dialer:   dialer,
		logger:   logger,
		clock:    clk,
		handlers: make(map[string]Handler),
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}, nil
}

// websocketURL derives the handshake URL from the backend base URL:
// same host, ws(s) scheme, hub path.
func websocketURL(serverURL, hubPath string) (string, error) {
	parsed, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("board: invalid ServerURL %q: %w", serverURL, err)
	}
	switch parsed.Scheme {
	case "http", "ws":
		parsed.Scheme = "ws"
	case "https", "wss":
		parsed.Scheme = "wss"
	default:
		return "", fmt.Errorf("board: unsupported ServerURL scheme %q", parsed.Scheme)
	}
	parsed.Path = hubPath
	parsed.RawQuery = ""
	return parsed.String(), nil
}

// On registers the handler for a push event. Registering again for
// the same event replaces the previous handler. Handlers should be
// registered before Start so no event from the first connection is
// missed.
func (c *Channel) On(target string, handler Handler) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.handlers[target] = handler
}

// Off removes the handler for a push event. Events without a handler
// are logged at debug level and dropped.
func (c *Channel) Off(target string) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	delete(c.handlers, target)
}

// SetConnectHook registers a function called after every successful
// handshake, before any event from the new connection is dispatched.
// reconnected is false for the initial connection made by Start and
// true for every automatic redial after that. Set the hook before
// Start.
func (c *Channel) SetConnectHook(hook func(reconnected bool)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.onConnect = hook
}

func (c *Channel) connectHook() func(reconnected bool) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	return c.onConnect
}

// Start performs the initial handshake and launches the read loop.
// The initial handshake is synchronous: if the backend is unreachable
// Start fails and the channel stays inert, so the caller can surface
// the error instead of silently retrying against a bad URL. After
// Start returns nil, reconnection is automatic. A channel is
// single-use: once Close has been called Start fails with
// ErrChannelClosed, and a failed handshake leaves the channel
// startable again.
func (c *Channel) Start(ctx context.Context) error {
	select {
	case <-c.done:
		return ErrChannelClosed
	default:
	}

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("board: push channel handshake to %s: %w", c.url, err)
	}
	if !c.installConn(conn) {
		return ErrChannelClosed
	}
	c.logger.Info("push channel connected", "url", c.url)
	if hook := c.connectHook(); hook != nil {
		hook(false)
	}

	go c.run(ctx)
	return nil
}

// run reads events until Close, redialing on connection loss.
func (c *Channel) run(ctx context.Context) {
	defer close(c.loopDone)

	for {
		c.readLoop()

		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		default:
		}

		if !c.redial(ctx) {
			return
		}
	}
}

// readLoop reads and dispatches events from the current connection
// until it fails or is closed.
func (c *Channel) readLoop() {
	conn := c.currentConn()
	if conn == nil {
		return
	}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !netutil.IsExpectedCloseError(err) {
				c.logger.Warn("push channel read failed", "error", err)
			}
			return
		}

		var frame envelope
		if err := json.Unmarshal(data, &frame); err != nil {
			c.logger.Warn("push channel received malformed frame", "error", err)
			continue
		}
		c.dispatch(frame)
	}
}

func (c *Channel) dispatch(frame envelope) {
	c.handlerMu.Lock()
	handler := c.handlers[frame.Target]
	c.handlerMu.Unlock()

	if handler == nil {
		c.logger.Debug("push event without handler", "target", frame.Target)
		return
	}
	handler(frame.Arguments)
}

// redial re-establishes the connection with capped exponential
// backoff. Returns false when the channel is closed or the context is
// cancelled before a handshake succeeds.
func (c *Channel) redial(ctx context.Context) bool {
	delay := reconnectBaseDelay
	for attempt := 1; ; attempt++ {
		select {
		case <-c.done:
			return false
		case <-ctx.Done():
			return false
		case <-c.clock.After(delay):
		}

		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			c.logger.Warn("push channel redial failed",
				"attempt", attempt,
				"next_delay", delay.String(),
				"error", err,
			)
			delay *= 2
			if delay > reconnectMaxDelay {
				delay = reconnectMaxDelay
			}
			continue
		}

		// Close may have run while the dial was in flight. installConn
		// refuses the connection in that case and the loop stops.
		if !c.installConn(conn) {
			return false
		}
		c.logger.Info("push channel reconnected", "attempt", attempt)
		if hook := c.connectHook(); hook != nil {
			hook(true)
		}
		return true
	}
}

// Send invokes a hub command with the given positional arguments.
// Returns ErrNotConnected while the channel is down; commands are not
// queued across reconnects because the connect hook re-establishes
// room state explicitly.
func (c *Channel) Send(target string, arguments ...any) error {
	conn := c.currentConn()
	if conn == nil {
		return ErrNotConnected
	}

	frame := envelope{Target: target, Arguments: make([]json.RawMessage, 0, len(arguments))}
	for _, argument := range arguments {
		encoded, err := json.Marshal(argument)
		if err != nil {
			return fmt.Errorf("board: encoding %s argument: %w", target, err)
		}
		frame.Arguments = append(frame.Arguments, encoded)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteJSON(frame); err != nil {
		return fmt.Errorf("board: sending %s: %w", target, err)
	}
	return nil
}

// Close shuts the channel down: no more redials, and the current
// connection is closed with a normal close frame. Close is idempotent
// and returns after the read loop has exited.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		conn := c.currentConn()
		if conn != nil {
			message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			c.writeMu.Lock()
			_ = conn.WriteMessage(websocket.CloseMessage, message)
			c.writeMu.Unlock()
			_ = conn.Close()
		}
	})

	c.connMu.Lock()
	started := c.started
	c.connMu.Unlock()
	if started {
		<-c.loopDone
	}
}

// installConn swaps in a freshly dialed connection unless the channel
// was closed while the dial was in flight. On refusal the connection
// is closed and false is returned; the caller must stop. The done
// check and the swap share connMu with Close's connection grab, so
// either Close sees the new connection and closes it, or installConn
// sees the shutdown and refuses it.
func (c *Channel) installConn(conn *websocket.Conn) bool {
	c.connMu.Lock()
	select {
	case <-c.done:
		c.connMu.Unlock()
		_ = conn.Close()
		return false
	default:
	}
	c.conn = conn
	c.started = true
	c.connMu.Unlock()
	return true
}

func (c *Channel) currentConn() *websocket.Conn {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.conn
}
