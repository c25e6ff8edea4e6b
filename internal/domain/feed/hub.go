package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/zephy/zephy-api/internal/pkg/metrics"
)

// EventType names a realtime community event
type EventType string

const (
	EventPostCreated   EventType = "post_created"
	EventPostReactions EventType = "post_reactions"
	EventReplyCreated  EventType = "reply_created"
	EventReplySupport  EventType = "reply_support"
	EventPollCreated   EventType = "poll_created"
	EventPollVotes     EventType = "poll_votes"
)

const (
	channelName = "feed:communities"
	sendBuffer  = 32
)

// Event is pushed to every subscriber whose community filter matches.
type Event struct {
	Type      EventType   `json:"type"`
	Community string      `json:"community,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	At        time.Time   `json:"at"`
}

type envelope struct {
	Instance string          `json:"instance"`
	Event    json.RawMessage `json:"event"`
}

// Client is one subscriber connection.
type Client struct {
	community string
	Send      chan []byte
}

func (c *Client) wants(community string) bool {
	return c.community == "" || community == "" || c.community == community
}

// Hub fans community events out to local subscribers and, when Redis is
// configured, to every other API instance.
type Hub struct {
	clients map[*Client]struct{}
	mu      sync.RWMutex

	redis  *redis.Client
	pubsub *redis.PubSub

	ctx        context.Context
	cancel     context.CancelFunc
	instanceID string
}

// NewHub creates a hub. redisClient may be nil.
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		clients:    make(map[*Client]struct{}),
		redis:      redisClient,
		ctx:        ctx,
		cancel:     cancel,
		instanceID: uuid.NewString(),
	}

	if redisClient != nil {
		pubsub := redisClient.Subscribe(ctx, channelName)
		// Wait for the subscription so events published right after start are not lost.
		if _, err := pubsub.Receive(ctx); err != nil {
			log.Error().Err(err).Msg("feed: redis subscribe failed, using local fan-out only")
			pubsub.Close()
		} else {
			h.pubsub = pubsub
		}
	}

	return h
}

// Run consumes the Redis channel until Shutdown. Call in a goroutine.
func (h *Hub) Run() {
	if h.pubsub == nil {
		<-h.ctx.Done()
		return
	}

	ch := h.pubsub.Channel()
	for {
		select {
		case <-h.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				continue
			}
			if env.Instance == h.instanceID {
				continue
			}
			var ev Event
			if err := json.Unmarshal(env.Event, &ev); err != nil {
				continue
			}
			h.broadcastLocal(ev.Community, env.Event)
		}
	}
}

// Publish delivers event locally and to other instances.
func (h *Hub) Publish(ctx context.Context, event Event) {
	if h == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(event.Type)).Msg("feed: marshal event failed")
		return
	}

	h.broadcastLocal(event.Community, data)

	if h.pubsub == nil {
		return
	}
	payload, err := json.Marshal(envelope{Instance: h.instanceID, Event: data})
	if err != nil {
		return
	}
	if err := h.redis.Publish(ctx, channelName, payload).Err(); err != nil {
		log.Error().Err(err).Str("channel", channelName).Msg("feed: redis publish failed")
	}
}

func (h *Hub) broadcastLocal(community string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if !c.wants(community) {
			continue
		}
		select {
		case c.Send <- data:
		default:
			log.Warn().Msg("feed: subscriber buffer full, dropping event")
		}
	}
}

// Subscribe registers a client. An empty community receives everything.
func (h *Hub) Subscribe(community string) *Client {
	c := &Client{community: community, Send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	metrics.FeedSubscribers.Inc()
	return c
}

// Unsubscribe removes c and closes its Send channel.
func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
		metrics.FeedSubscribers.Dec()
	}
	h.mu.Unlock()
}

// ClientCount returns the number of local subscribers
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown stops Run and closes every subscriber
func (h *Hub) Shutdown() {
	h.cancel()
	if h.pubsub != nil {
		h.pubsub.Close()
	}

	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.Send)
		metrics.FeedSubscribers.Dec()
	}
	h.mu.Unlock()
}
