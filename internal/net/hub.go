package net

import (
	"net/http"
	"sync"
	"time"

	"InpaintBoard/internal/logging"
	"InpaintBoard/internal/state"

	"github.com/gorilla/websocket"
)

const (
	writeWait       = 5 * time.Second
	maxMessageBytes = 8 << 20
)

// peer is one connected client. gorilla connections allow a single writer at
// a time, so writes go through mu.
type peer struct {
	conn *websocket.Conn
	addr string
	mu   sync.Mutex
}

func (p *peer) send(m Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteJSON(m)
}

// Hub is run by the host. It accepts peers over websockets, replays the
// session to late joiners and relays every new op to all other peers.
type Hub struct {
	replica  *state.Replica
	onOp     func(state.Op)
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	peers map[*peer]struct{}
}

// NewHub returns a hub recording ops in replica. onOp runs on the reading
// goroutine for every op received from a peer for the first time.
func NewHub(replica *state.Replica, onOp func(state.Op)) *Hub {
	return &Hub{
		replica: replica,
		onOp:    onOp,
		upgrader: websocket.Upgrader{
			// Peers are desktop apps on the LAN, not browsers.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		peers: make(map[*peer]struct{}),
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger().Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	conn.SetReadLimit(maxMessageBytes)
	p := &peer{conn: conn, addr: r.RemoteAddr}
	if err := h.add(p); err != nil {
		logging.Logger().Warn("replay to new peer failed", "remote", p.addr, "err", err)
		conn.Close()
		return
	}
	defer h.remove(p)
	h.read(p)
}

// add replays the replica to p and registers it. Both happen under the
// write lock so no op published meanwhile is missed; one published just
// before may arrive twice, which the peer's replica absorbs.
func (h *Hub) add(p *peer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	ops := h.replica.Ops()
	for _, op := range ops {
		if err := p.send(messageFor(op)); err != nil {
			return err
		}
	}
	h.peers[p] = struct{}{}
	logging.Logger().Info("peer connected", "remote", p.addr, "replayed", len(ops))
	return nil
}

func (h *Hub) remove(p *peer) {
	h.mu.Lock()
	delete(h.peers, p)
	h.mu.Unlock()
	p.conn.Close()
	logging.Logger().Info("peer disconnected", "remote", p.addr)
}

func (h *Hub) read(p *peer) {
	for {
		var m Message
		if err := p.conn.ReadJSON(&m); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Logger().Warn("peer read failed", "remote", p.addr, "err", err)
			}
			return
		}
		if !m.valid() {
			logging.Logger().Warn("dropping malformed message", "remote", p.addr, "type", m.Type)
			continue
		}
		if !h.replica.Merge(m.Op) {
			continue
		}
		if h.onOp != nil {
			h.onOp(m.Op)
		}
		h.broadcast(m, p)
	}
}

func (h *Hub) broadcast(m Message, exclude *peer) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for p := range h.peers {
		if p == exclude {
			continue
		}
		if err := p.send(m); err != nil {
			logging.Logger().Warn("send to peer failed", "remote", p.addr, "err", err)
		}
	}
}

// Publish stamps an op made on the host and sends it to every peer.
func (h *Hub) Publish(op state.Op) error {
	op = h.replica.Local(op)
	h.broadcast(messageFor(op), nil)
	return nil
}

// Peers returns the number of connected peers.
func (h *Hub) Peers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Close disconnects every peer.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for p := range h.peers {
		p.mu.Lock()
		p.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "host closing"),
			time.Now().Add(writeWait))
		p.mu.Unlock()
		p.conn.Close()
	}
}
