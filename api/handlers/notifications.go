package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/referloop/referral-api/api"
	"github.com/referloop/referral-api/config"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// eventClient wraps a websocket connection with a write lock; the websocket
// package allows at most one concurrent writer per connection.
type eventClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *eventClient) writeJSON(event interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.WriteJSON(event)
}

func (c *eventClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.Close()
}

// eventHub tracks open websocket connections per user so reward events can be
// pushed to every tab a user has open.
type eventHub struct {
	mu    sync.RWMutex
	conns map[string][]*eventClient
}

var hub = &eventHub{conns: map[string][]*eventClient{}}

func (h *eventHub) add(userID string, conn *websocket.Conn) *eventClient {
	c := &eventClient{conn: conn}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[userID] = append(h.conns[userID], c)
	return c
}

func (h *eventHub) remove(userID string, c *eventClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.conns[userID]
	for i, client := range conns {
		if client == c {
			h.conns[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.conns[userID]) == 0 {
		delete(h.conns, userID)
	}
}

func (h *eventHub) emit(userID string, event interface{}) {
	h.mu.RLock()
	conns := append([]*eventClient{}, h.conns[userID]...)
	h.mu.RUnlock()
	for _, c := range conns {
		if err := c.writeJSON(event); err != nil {
			zap.S().Debugw("dropping websocket client", "userId", userID, "error", err)
			c.close()
			h.remove(userID, c)
		}
	}
}

// emitRewardEvent pushes an event to all of a user's open websocket
// connections. A user with no connections is a no-op.
func emitRewardEvent(userID string, event interface{}) {
	hub.emit(userID, event)
}

// HandleEventsWebSocket upgrades the connection and streams reward events for
// the session user until the client goes away
func HandleEventsWebSocket(w http.ResponseWriter, r *http.Request) {
	info := api.PrincipalFromContext(r.Context())
	if info == nil {
		config.ErrorStatus("failed to resolve session user", http.StatusUnauthorized, w, nil)
		return
	}
	userID := info.ID()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().With(err).Error("failed to upgrade websocket")
		return
	}

	client := hub.add(userID, conn)
	zap.S().Debugw("websocket client connected", "userId", userID)

	// reads are discarded; the socket exists to push events out
	go func() {
		defer func() {
			hub.remove(userID, client)
			client.close()
			zap.S().Debugw("websocket client disconnected", "userId", userID)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
