package controller

import (
	"context"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/canopy-network/flightsurety/pkg/notify"
)

const (
	pingInterval = 30 * time.Second
	readTimeout  = 60 * time.Second
	sendBuffer   = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ClientMessage represents messages sent by WebSocket clients.
type ClientMessage struct {
	Action string `json:"action"` // "subscribe" or "unsubscribe"
	Kind   string `json:"kind"`   // notification kind, or "*" for all kinds
}

// ServerMessage represents messages sent to WebSocket clients.
type ServerMessage struct {
	Type    string      `json:"type"` // a notification kind, "subscribed", "unsubscribed" or "error"
	Payload interface{} `json:"payload"`
}

// clientSubscriptions tracks which notification kinds a client wants.
type clientSubscriptions struct {
	mu    sync.RWMutex
	kinds map[string]bool
}

func newClientSubscriptions() *clientSubscriptions {
	return &clientSubscriptions{kinds: make(map[string]bool)}
}

func (cs *clientSubscriptions) Subscribe(kind string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.kinds[kind] = true
}

func (cs *clientSubscriptions) Unsubscribe(kind string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.kinds, kind)
}

// IsSubscribed reports whether kind is wanted. Wildcard (*) matches all kinds.
func (cs *clientSubscriptions) IsSubscribed(kind string) bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.kinds["*"] || cs.kinds[kind]
}

// HandleWebSocket upgrades the connection and streams notifications.
//
// Protocol:
// Client sends: {"action": "subscribe", "kind": "oracle.request"}
// Client sends: {"action": "subscribe", "kind": "*"}
// Client sends: {"action": "unsubscribe", "kind": "oracle.request"}
//
// Server sends:
// - {"type": "oracle.request", "payload": {...notification...}}
// - {"type": "subscribed", "payload": {"kind": "oracle.request"}}
// - {"type": "unsubscribed", "payload": {"kind": "oracle.request"}}
// - {"type": "error", "payload": {"message": "..."}}
func (c *Controller) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if c.App.Feed == nil {
		http.Error(w, "Notifications not available", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.App.Logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}
	defer func(conn *websocket.Conn) {
		if err := conn.Close(); err != nil {
			c.App.Logger.Debug("Failed to close WebSocket connection", zap.Error(err))
		}
	}(conn)

	id := c.nextConn.Add(1)
	c.App.Sessions.Store(id, r.RemoteAddr)
	defer c.App.Sessions.Delete(id)
	c.App.Logger.Info("WebSocket client connected", zap.String("remote_addr", r.RemoteAddr))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	subs := newClientSubscriptions()
	send := make(chan ServerMessage, sendBuffer)
	feed := c.App.Feed.Subscribe(ctx, sendBuffer)
	defer feed.Close()

	var wg sync.WaitGroup
	for _, run := range []func(){
		func() { c.forwardNotifications(ctx, feed, subs, send) },
		func() { c.sendPings(ctx, conn) },
		func() { c.writeMessages(ctx, conn, send) },
	} {
		wg.Add(1)
		go func(run func()) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					c.App.Logger.Error("Panic in WebSocket goroutine",
						zap.Any("panic", rec),
						zap.String("stack", string(debug.Stack())),
						zap.String("remote_addr", r.RemoteAddr))
					cancel()
				}
			}()
			run()
		}(run)
	}

	// unblock the reader when a writer gives up
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	// Blocks until the client goes away
	c.readClientMessages(ctx, conn, cancel, subs, send)

	cancel()
	wg.Wait()

	c.App.Logger.Info("WebSocket client disconnected",
		zap.String("remote_addr", r.RemoteAddr),
		zap.Uint64("dropped", feed.Dropped()))
}

func enqueue(ctx context.Context, send chan<- ServerMessage, msg ServerMessage) bool {
	select {
	case send <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

// forwardNotifications relays feed events the client subscribed to.
func (c *Controller) forwardNotifications(ctx context.Context, feed *notify.Subscription, subs *clientSubscriptions, send chan<- ServerMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-feed.C:
			if !ok {
				return
			}
			if !subs.IsSubscribed(string(ev.Kind)) {
				continue
			}
			if !enqueue(ctx, send, ServerMessage{Type: string(ev.Kind), Payload: ev}) {
				return
			}
		}
	}
}

// sendPings sends periodic WebSocket ping frames to keep the connection alive.
func (c *Controller) sendPings(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				c.App.Logger.Debug("Failed to send ping", zap.Error(err))
				return
			}
		}
	}
}

// writeMessages is the only writer of data frames on conn.
func (c *Controller) writeMessages(ctx context.Context, conn *websocket.Conn, send <-chan ServerMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-send:
			if err := conn.WriteJSON(msg); err != nil {
				c.App.Logger.Debug("Failed to write WebSocket message", zap.Error(err))
				return
			}
		}
	}
}

// readClientMessages handles subscription requests and detects connection closure.
func (c *Controller) readClientMessages(ctx context.Context, conn *websocket.Conn, cancel context.CancelFunc, subs *clientSubscriptions, send chan<- ServerMessage) {
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		c.App.Logger.Error("Failed to set read deadline", zap.Error(err))
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.App.Logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}
		if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return
		}

		var reply ServerMessage
		switch {
		case msg.Kind == "":
			reply = ServerMessage{Type: "error", Payload: map[string]string{"message": "kind is required"}}
		case msg.Action == "subscribe":
			subs.Subscribe(msg.Kind)
			reply = ServerMessage{Type: "subscribed", Payload: map[string]string{"kind": msg.Kind}}
		case msg.Action == "unsubscribe":
			subs.Unsubscribe(msg.Kind)
			reply = ServerMessage{Type: "unsubscribed", Payload: map[string]string{"kind": msg.Kind}}
		default:
			reply = ServerMessage{Type: "error", Payload: map[string]string{"message": "unknown action: " + msg.Action}}
		}
		if !enqueue(ctx, send, reply) {
			return
		}
	}
}
