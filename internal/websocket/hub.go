package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"brdgenius-be/internal/pkg/logger"
	"brdgenius-be/pkg/wizard"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ClusterChannel carries notices between instances sharing one redis.
const ClusterChannel = "brdgenius_notices"

// Hub fans notices out to every websocket open for a wizard session.
type Hub struct {
	// Registered clients: session id -> connections (several tabs may share a session)
	clients map[string][]*Client
	closed  bool

	mu sync.RWMutex

	// Redis connection for cross-instance delivery, nil on a single instance
	rdb *redis.Client
	// instanceID marks messages this instance published so it skips them on the way back
	instanceID string

	logger logger.ILogger
}

type clusterMessage struct {
	Origin          string          `json:"origin"`
	TargetSessionID string          `json:"target_session_id"`
	Message         json.RawMessage `json:"message"`
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

// Run relays cluster notices until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	<-ctx.Done()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, clients := range h.clients {
		for _, c := range clients {
			close(c.Send)
		}
		delete(h.clients, id)
	}
}

// Register adds a client. It reports false once the hub has shut down.
func (h *Hub) Register(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
	h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": client.SessionID})
	return true
}

// Unregister removes a client and closes its send channel. Repeated calls are no-ops.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.SessionID]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.SessionID]) == 0 {
		delete(h.clients, client.SessionID)
		h.logger.Info("Hub", "Session has no more clients", map[string]interface{}{"session_id": client.SessionID})
	}
}

// SendNotice implements the wizard service's notice sink.
func (h *Hub) SendNotice(sessionID string, notice wizard.Notice) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "notice",
		"data": notice,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode notice", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliver(sessionID, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterMessage{
			Origin:          h.instanceID,
			TargetSessionID: sessionID,
			Message:         data,
		})
		if err := h.rdb.Publish(context.Background(), ClusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to publish notice to cluster", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
	}
}

// deliver writes to local clients only. Sends never block, so the read lock
// is held throughout and Unregister cannot close a channel mid-send. A client
// whose buffer is full is dropped.
func (h *Hub) deliver(sessionID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[sessionID] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping client", map[string]interface{}{"session_id": sessionID})
			go h.Unregister(client)
		}
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, ClusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.handleClusterMessage([]byte(msg.Payload))
		}
	}
}

func (h *Hub) handleClusterMessage(raw []byte) {
	var payload clusterMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.logger.Warn("Hub", "Malformed cluster message", map[string]interface{}{"error": err.Error()})
		return
	}
	if payload.Origin == h.instanceID || payload.TargetSessionID == "" {
		return
	}
	h.deliver(payload.TargetSessionID, payload.Message)
}
