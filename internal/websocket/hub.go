package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"chatdoc-be/internal/pkg/logger"
	"chatdoc-be/pkg/events"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ClusterChannel carries frames between instances sharing one Redis.
const ClusterChannel = "chatdoc:user_events"

type clusterFrame struct {
	Origin       string          `json:"origin"`
	TargetUserID string          `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

// Hub routes event frames to the sockets of their owner. With Redis
// configured, frames reach owners connected to other instances too.
type Hub struct {
	// Registered clients map: UserID -> List of Clients (multi-device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb        *redis.Client
	instanceId string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		instanceId: uuid.NewString(),
		logger:     log,
	}
}

// Run owns client registration until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("HUB", "Client registered", map[string]interface{}{"user_id": client.UserID.String()})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[client.UserID]
	for i, c := range clients {
		if c != client {
			continue
		}
		h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
		close(client.Send)
		if len(h.clients[client.UserID]) == 0 {
			delete(h.clients, client.UserID)
		}
		h.logger.Info("HUB", "Client unregistered", map[string]interface{}{"user_id": client.UserID.String()})
		return
	}
}

// Connected reports how many sockets the user has on this instance.
func (h *Hub) Connected(userId uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userId])
}

// Deliver sends the event to every socket of userId, here and on peers.
func (h *Hub) Deliver(ctx context.Context, userId uuid.UUID, event events.Event) {
	data, err := events.Marshal(event)
	if err != nil {
		h.logger.Error("HUB", "Failed to encode event", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliverLocal(userId, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterFrame{
			Origin:       h.instanceId,
			TargetUserID: userId.String(),
			Message:      data,
		})
		if err := h.rdb.Publish(ctx, ClusterChannel, payload).Err(); err != nil {
			h.logger.Warn("HUB", "Failed to publish frame to Redis", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (h *Hub) deliverLocal(userId uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[userId] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("HUB", "Client Send buffer full, dropping message", map[string]interface{}{"user_id": userId.String()})
		}
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, ClusterChannel)
	go func() {
		<-ctx.Done()
		_ = pubsub.Close()
	}()

	for msg := range pubsub.Channel() {
		var frame clusterFrame
		if err := json.Unmarshal([]byte(msg.Payload), &frame); err != nil {
			h.logger.Warn("HUB", "Redis frame parse error", map[string]interface{}{"error": err.Error()})
			continue
		}
		if frame.Origin == h.instanceId {
			continue
		}

		uid, err := uuid.Parse(frame.TargetUserID)
		if err != nil {
			continue
		}
		h.deliverLocal(uid, frame.Message)
	}
}
