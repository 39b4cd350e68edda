package presence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	v1 "warden/shared/contracts/presence/v1"

	"github.com/coder/websocket"
)

const (
	wsDialTimeout   = 10 * time.Second
	wsJoinTimeout   = 5 * time.Second
	wsWriteTimeout  = 5 * time.Second
	wsMaxFrameBytes = 64 << 10
)

// WSChannelConfig configures a relay-backed channel.
type WSChannelConfig struct {
	// URL of the relay websocket endpoint, e.g. ws://127.0.0.1:8080/ws.
	URL string
	// Origin header sent on the handshake (browser-like), required by the
	// relay's origin policy.
	Origin string
	// Topic to join. Empty means v1.TopicSessionCheck.
	Topic string
	// WriteTimeout bounds each outbound frame write.
	WriteTimeout time.Duration
}

// WSChannel is a Channel backed by the relay daemon. The relay fans every
// published envelope out to all other peers on the topic, which gives the
// same semantics as LocalBus across processes and machines.
type WSChannel struct {
	log   *slog.Logger
	conn  *websocket.Conn
	topic string

	writeTimeout time.Duration
	writeMu      sync.Mutex

	cancelRead context.CancelFunc

	mu      sync.Mutex
	closed  bool
	nextSub int
	subs    map[int]func(v1.Envelope)
}

// DialWSChannel connects to the relay, negotiates the v1 subprotocol and
// joins the configured topic. The channel is ready once the join echo arrives.
func DialWSChannel(ctx context.Context, log *slog.Logger, cfg WSChannelConfig) (*WSChannel, error) {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	topic := cfg.Topic
	if topic == "" {
		topic = v1.TopicSessionCheck
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = wsWriteTimeout
	}

	dialCtx, cancel := context.WithTimeout(ctx, wsDialTimeout)
	defer cancel()

	hdr := http.Header{}
	if cfg.Origin != "" {
		hdr.Set("Origin", cfg.Origin)
	}

	conn, _, err := websocket.Dial(dialCtx, cfg.URL, &websocket.DialOptions{
		Subprotocols: []string{v1.Subprotocol},
		HTTPHeader:   hdr,
	})
	if err != nil {
		return nil, fmt.Errorf("dial relay: %w", err)
	}
	if sp := conn.Subprotocol(); sp != v1.Subprotocol {
		_ = conn.Close(websocket.StatusProtocolError, "subprotocol mismatch")
		return nil, fmt.Errorf("relay selected subprotocol %q, want %q", sp, v1.Subprotocol)
	}
	conn.SetReadLimit(wsMaxFrameBytes)

	c := &WSChannel{
		log:          log,
		conn:         conn,
		topic:        topic,
		writeTimeout: writeTimeout,
		subs:         make(map[int]func(v1.Envelope)),
	}

	if err := c.join(ctx); err != nil {
		_ = conn.Close(websocket.StatusPolicyViolation, "join failed")
		return nil, err
	}

	readCtx, cancelRead := context.WithCancel(context.Background())
	c.cancelRead = cancelRead
	go c.readLoop(readCtx)

	log.Info("presence.channel.open", "topic", topic, "url", cfg.URL)
	return c, nil
}

// join sends topic_join and waits for the relay's echo.
func (c *WSChannel) join(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, wsJoinTimeout)
	defer cancel()

	payload, _ := json.Marshal(v1.TopicJoinPayload{Topic: c.topic})
	env := v1.NewEnvelope(v1.TypeTopicJoin, c.topic, time.Now().UTC())
	env.Payload = payload

	if err := c.write(ctx, env); err != nil {
		return fmt.Errorf("join write: %w", err)
	}

	for {
		env, err := c.read(ctx)
		if err != nil {
			return fmt.Errorf("join echo: %w", err)
		}
		switch env.Type {
		case v1.TypeTopicJoin:
			return nil
		case v1.TypeError:
			var p v1.ErrorPayload
			_ = json.Unmarshal(env.Payload, &p)
			return fmt.Errorf("relay rejected join: %s: %s", p.Code, p.Message)
		default:
			// Presence traffic can race the echo; drop it, the join is not
			// confirmed yet.
			continue
		}
	}
}

// Publish sends env to the relay for fanout to the other peers.
func (c *WSChannel) Publish(ctx context.Context, env v1.Envelope) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrChannelClosed
	}

	env.Topic = c.topic
	return c.write(ctx, env)
}

// Subscribe registers fn for every incoming envelope.
func (c *WSChannel) Subscribe(fn func(v1.Envelope)) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Close tears the connection down. Idempotent.
func (c *WSChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.subs = make(map[int]func(v1.Envelope))
	c.mu.Unlock()

	c.cancelRead()
	return c.conn.Close(websocket.StatusNormalClosure, "bye")
}

func (c *WSChannel) readLoop(ctx context.Context) {
	for {
		env, err := c.read(ctx)
		if err != nil {
			if ctx.Err() == nil && websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				c.log.Warn("presence.channel.read.fail", "err", err)
			}
			return
		}
		if err := env.Validate(); err != nil {
			c.log.Debug("presence.channel.envelope.invalid", "err", err)
			continue
		}

		c.mu.Lock()
		fns := make([]func(v1.Envelope), 0, len(c.subs))
		for _, fn := range c.subs {
			fns = append(fns, fn)
		}
		c.mu.Unlock()

		for _, fn := range fns {
			fn(env)
		}
	}
}

func (c *WSChannel) read(ctx context.Context) (v1.Envelope, error) {
	mt, data, err := c.conn.Read(ctx)
	if err != nil {
		return v1.Envelope{}, err
	}
	if mt != websocket.MessageText {
		return v1.Envelope{}, fmt.Errorf("unsupported message type: %v", mt)
	}
	var env v1.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return v1.Envelope{}, err
	}
	return env, nil
}

func (c *WSChannel) write(parent context.Context, env v1.Envelope) error {
	ctx, cancel := context.WithTimeout(parent, c.writeTimeout)
	defer cancel()

	b, err := json.Marshal(env)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.Write(ctx, websocket.MessageText, b)
}
