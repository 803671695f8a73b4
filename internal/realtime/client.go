package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tbourn/skillswap-backend/internal/domain"
)

var (
	// ErrSlowConsumer is returned by Client.Send when the outbound buffer is
	// full. The registry treats it as a delivery failure and drops the client.
	ErrSlowConsumer = errors.New("realtime: send buffer full")

	// ErrClosed is returned by Client.Send after Close.
	ErrClosed = errors.New("realtime: connection closed")
)

// Options tunes a websocket client.
type Options struct {
	ReadLimit    int64
	PingInterval time.Duration
	PongWait     time.Duration
	WriteWait    time.Duration
	SendBuffer   int
	FrameRPS     float64
	FrameBurst   int

	// CheckOrigin is passed to the upgrader; nil accepts every origin.
	CheckOrigin func(r *http.Request) bool
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		ReadLimit:    8 << 10,
		PingInterval: 30 * time.Second,
		PongWait:     60 * time.Second,
		WriteWait:    10 * time.Second,
		SendBuffer:   32,
		FrameRPS:     10,
		FrameBurst:   20,
	}
}

// withDefaults fills every non-positive field from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ReadLimit <= 0 {
		o.ReadLimit = d.ReadLimit
	}
	if o.PingInterval <= 0 {
		o.PingInterval = d.PingInterval
	}
	if o.PongWait <= 0 {
		o.PongWait = d.PongWait
	}
	if o.WriteWait <= 0 {
		o.WriteWait = d.WriteWait
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = d.SendBuffer
	}
	if o.FrameRPS <= 0 {
		o.FrameRPS = d.FrameRPS
	}
	if o.FrameBurst <= 0 {
		o.FrameBurst = d.FrameBurst
	}
	return o
}

// FrameFunc handles one inbound text frame. Frames of one client are handled
// sequentially in arrival order.
type FrameFunc func(ctx context.Context, c *Client, data []byte)

// Client is a registry Conn backed by a gorilla websocket. One goroutine
// reads, one writes; Send only enqueues.
type Client struct {
	user    string
	ws      *websocket.Conn
	send    chan []byte
	done    chan struct{}
	once    sync.Once
	opts    Options
	limiter *rate.Limiter
	log     zerolog.Logger
}

// Upgrade switches the HTTP connection to a websocket owned by user. On
// failure the upgrader has already written an HTTP error response.
func Upgrade(w http.ResponseWriter, r *http.Request, user string, opts Options, log zerolog.Logger) (*Client, error) {
	up := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     opts.CheckOrigin,
	}
	if up.CheckOrigin == nil {
		up.CheckOrigin = func(*http.Request) bool { return true }
	}
	ws, err := up.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return NewClient(ws, user, opts, log), nil
}

// NewClient wraps an established websocket.
func NewClient(ws *websocket.Conn, user string, opts Options, log zerolog.Logger) *Client {
	opts = opts.withDefaults()
	return &Client{
		user:    user,
		ws:      ws,
		send:    make(chan []byte, opts.SendBuffer),
		done:    make(chan struct{}),
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.FrameRPS), opts.FrameBurst),
		log:     log.With().Str("component", "ws").Str("user", user).Logger(),
	}
}

// User returns the identity the client was registered under.
func (c *Client) User() string { return c.user }

// Send enqueues b for the write pump without blocking.
func (c *Client) Send(b []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- b:
		return nil
	case <-c.done:
		return ErrClosed
	default:
		return ErrSlowConsumer
	}
}

// SendJSON marshals v and enqueues it.
func (c *Client) SendJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Send(b)
}

// Close stops both pumps and closes the socket. It is safe to call more
// than once and from any goroutine.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		err = c.ws.Close()
	})
	return err
}

// Run registers the client, pumps frames until the peer goes away or the
// client is closed, then deregisters it. It blocks for the connection's
// lifetime.
func (c *Client) Run(ctx context.Context, reg *Registry, onFrame FrameFunc) {
	if prev := reg.Connect(c.user, c); prev != nil {
		_ = prev.Close()
	}
	c.log.Info().Msg("websocket connected")

	go c.writePump()
	c.readPump(ctx, onFrame)

	reg.Disconnect(c.user, c)
	_ = c.Close()
	c.log.Info().Msg("websocket disconnected")
}

func (c *Client) readPump(ctx context.Context, onFrame FrameFunc) {
	c.ws.SetReadLimit(c.opts.ReadLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		mt, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.log.Warn().Err(err).Msg("websocket read")
			}
			return
		}
		if mt != websocket.TextMessage {
			c.log.Debug().Int("message_type", mt).Msg("drop non-text frame")
			continue
		}
		if !c.limiter.Allow() {
			c.log.Warn().Msg("inbound frame rate exceeded")
			_ = c.SendJSON(domain.ErrorFrameFor("rate_limited", "too many messages"))
			continue
		}
		onFrame(ctx, c, data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case b := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, b); err != nil {
				c.log.Debug().Err(err).Msg("websocket write")
				_ = c.Close()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}
