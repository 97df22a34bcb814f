package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"ragify-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ClusterChannel is the redis channel every instance listens on
const ClusterChannel = "ragify:conversation_feed"

type clusterEnvelope struct {
	Origin         string          `json:"origin"`
	ConversationID string          `json:"conversation_id"`
	Message        json.RawMessage `json:"message"`
}

// Hub fans feed frames out to the websockets watching each conversation.
// Frames are mirrored through redis so clients connected to other instances
// receive them too.
type Hub struct {
	// conversation id -> connected clients
	rooms map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb        *redis.Client
	instanceID string

	ready chan struct{}
	done  chan struct{}

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		ready:      make(chan struct{}),
		done:       make(chan struct{}),
		logger:     log,
	}
}

// Ready is closed once the hub accepts clients and, with redis, is subscribed
func (h *Hub) Ready() <-chan struct{} {
	return h.ready
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	if h.rdb != nil {
		pubsub := h.rdb.Subscribe(ctx, ClusterChannel)
		defer pubsub.Close()
		if _, err := pubsub.Receive(ctx); err != nil {
			h.logger.Warn("Hub", "Redis subscription failed, feed stays local", map[string]interface{}{"error": err.Error()})
		} else {
			go h.consumeCluster(pubsub.Channel())
		}
	}
	close(h.ready)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, clients := range h.rooms {
				for c := range clients {
					close(c.Send)
				}
				delete(h.rooms, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[client.ConversationID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[client.ConversationID] = room
			}
			room[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{
				"conversation_id": client.ConversationID,
				"user_id":         client.UserID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.ConversationID]; ok {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.Send)
				}
				if len(room) == 0 {
					delete(h.rooms, client.ConversationID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register adds a client; it is a no-op once the hub stopped
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// SendToConversation delivers payload to local watchers and mirrors it to the cluster
func (h *Hub) SendToConversation(conversationID string, payload []byte) {
	h.deliverLocal(conversationID, payload)

	if h.rdb == nil {
		return
	}
	envelope, err := json.Marshal(clusterEnvelope{
		Origin:         h.instanceID,
		ConversationID: conversationID,
		Message:        payload,
	})
	if err != nil {
		return
	}
	if err := h.rdb.Publish(context.Background(), ClusterChannel, envelope).Err(); err != nil {
		h.logger.Warn("Hub", "Redis publish failed", map[string]interface{}{"error": err.Error()})
	}
}

// Watchers reports how many local clients follow a conversation
func (h *Hub) Watchers(conversationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[conversationID])
}

func (h *Hub) deliverLocal(conversationID string, payload []byte) {
	var slow []*Client

	h.mu.RLock()
	for client := range h.rooms[conversationID] {
		select {
		case client.Send <- payload:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Hub", "Client send buffer full, dropping client", map[string]interface{}{
			"conversation_id": conversationID,
		})
		go h.Unregister(c)
	}
}

func (h *Hub) consumeCluster(ch <-chan *redis.Message) {
	for msg := range ch {
		var envelope clusterEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
			h.logger.Warn("Hub", "Bad cluster frame", map[string]interface{}{"error": err.Error()})
			continue
		}
		// Our own frames were already delivered locally
		if envelope.Origin == h.instanceID {
			continue
		}
		h.deliverLocal(envelope.ConversationID, envelope.Message)
	}
}
