package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"query-workbench-be/internal/dto"
	"query-workbench-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "execution_events"

// Hub fans run lifecycle events out to every connected websocket client.
// Subscriptions are not scoped; every client receives every event and filters
// by notebook on its own side.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fanout. Nil means single instance.
	rdb *redis.Client

	// instanceId lets the subscriber skip messages this hub published itself.
	instanceId string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		rdb:        rdb,
		instanceId: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("hub", "client registered", map[string]interface{}{
				"clients": h.clientCount(),
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			h.logger.Info("hub", "client unregistered", map[string]interface{}{
				"clients": h.clientCount(),
			})
		}
	}
}

func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast delivers a run event to all local clients and, when Redis is
// configured, to the other instances.
func (h *Hub) Broadcast(event *dto.CellRunEvent) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "cell_run",
		"data": event,
	})
	if err != nil {
		h.logger.Error("hub", "failed to encode run event", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	h.broadcastLocal(data)

	if h.rdb != nil {
		envelope, _ := json.Marshal(map[string]interface{}{
			"origin":  h.instanceId,
			"message": json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), clusterChannel, envelope)
	}
}

func (h *Hub) broadcastLocal(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			// Slow consumer; drop it rather than block the hub.
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var envelope struct {
			Origin  string          `json:"origin"`
			Message json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
			h.logger.Warn("hub", "malformed cluster event", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}
		if envelope.Origin == h.instanceId {
			continue
		}
		h.broadcastLocal(envelope.Message)
	}
}
