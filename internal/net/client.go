package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"InpaintBoard/internal/logging"
	"InpaintBoard/internal/state"

	"github.com/gorilla/websocket"
)

// Client is a peer connected to a host.
type Client struct {
	conn    *websocket.Conn
	replica *state.Replica
	onOp    func(state.Op)
	mu      sync.Mutex
}

// Dial joins the session behind a share link. onOp runs on the Run
// goroutine for every new op received from the host.
func Dial(ctx context.Context, link string, replica *state.Replica, onOp func(state.Op)) (*Client, error) {
	u, err := ParseLink(link)
	if err != nil {
		return nil, err
	}
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", u, err)
	}
	conn.SetReadLimit(maxMessageBytes)
	logging.Logger().Info("connected to host", "url", u, "local", conn.LocalAddr().String())
	return &Client{conn: conn, replica: replica, onOp: onOp}, nil
}

// LocalAddr returns the client end of the connection.
func (c *Client) LocalAddr() net.Addr { return c.conn.LocalAddr() }

// Publish stamps an op made locally and sends it to the host.
func (c *Client) Publish(op state.Op) error {
	op = c.replica.Local(op)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(messageFor(op)); err != nil {
		return fmt.Errorf("send op: %w", err)
	}
	return nil
}

// Run reads from the host until the connection drops or ctx is done. It
// returns nil when ctx ends the session.
func (c *Client) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { c.conn.Close() })
	defer stop()
	for {
		var m Message
		if err := c.conn.ReadJSON(&m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ce *websocket.CloseError
			if errors.As(err, &ce) && ce.Code == websocket.CloseGoingAway {
				return fmt.Errorf("host closed the session: %w", err)
			}
			return fmt.Errorf("read from host: %w", err)
		}
		if !m.valid() {
			logging.Logger().Warn("dropping malformed message from host", "type", m.Type)
			continue
		}
		if !c.replica.Merge(m.Op) {
			continue
		}
		if c.onOp != nil {
			c.onOp(m.Op)
		}
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	c.mu.Unlock()
	return c.conn.Close()
}
