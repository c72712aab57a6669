package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// FrameHandler receives every raw frame read off the feed socket.
type FrameHandler func(raw string)

// ConnectorConfig holds connection settings for the push feed.
type ConnectorConfig struct {
	URL              string
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
	PingInterval     time.Duration
	ReconnectMin     time.Duration
	ReconnectMax     time.Duration
}

func (c *ConnectorConfig) applyDefaults() {
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 15 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 60 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 20 * time.Second
	}
	if c.ReconnectMin <= 0 {
		c.ReconnectMin = time.Second
	}
	if c.ReconnectMax <= 0 {
		c.ReconnectMax = 30 * time.Second
	}
}

// Connector maintains one WebSocket connection to the upstream feed
// and hands every text frame to the handler. Feed semantics live
// entirely in the handler; the connector only moves bytes.
type Connector struct {
	cfg     ConnectorConfig
	handler FrameHandler
}

// NewConnector creates a feed connector for the given URL.
func NewConnector(cfg ConnectorConfig, handler FrameHandler) *Connector {
	cfg.applyDefaults()
	return &Connector{cfg: cfg, handler: handler}
}

// Run connects and reads until the context is cancelled, reconnecting
// with exponential backoff on any connection failure.
func (c *Connector) Run(ctx context.Context) error {
	delay := c.cfg.ReconnectMin
	for {
		err := c.readLoop(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("Feed connection lost, reconnecting", "url", c.cfg.URL, "delay", delay, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > c.cfg.ReconnectMax {
			delay = c.cfg.ReconnectMax
		}
		if err == nil {
			delay = c.cfg.ReconnectMin
		}
	}
}

func (c *Connector) readLoop(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial feed: %w", err)
	}
	defer conn.Close()
	slog.Info("Feed connected", "url", c.cfg.URL)

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	})

	done := make(chan struct{})
	defer close(done)
	go c.keepalive(ctx, conn, done)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout)); err != nil {
			return err
		}
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}
		if msgType != websocket.TextMessage {
			continue
		}
		c.handler(string(payload))
	}
}

func (c *Connector) keepalive(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			// Unblocks the read loop.
			conn.Close()
			return
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(5 * time.Second)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}
