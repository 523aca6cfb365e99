package ws

import (
	"context"
	"sync"
	"time"

	"github.com/tableguild/tableguild/internal/model"
	redisclient "github.com/tableguild/tableguild/internal/pkg/redis"
)

const presenceTTL = 5 * time.Minute

// Envelope wraps a pushed event so clients can tell announcement kinds
// apart.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub tracks connected members and pushes broadcasts to them. A member may
// hold several connections (tabs, devices); each gets the push.
type Hub struct {
	mu sync.RWMutex

	clients       map[*Client]bool
	memberClients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	deliver    chan *delivery

	redisClient redisclient.RedisClient
}

// delivery targets either a member list or everyone.
type delivery struct {
	memberIDs []string
	all       bool
	envelope  *Envelope
}

func NewHub(redisClient redisclient.RedisClient) *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		memberClients: make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		deliver:       make(chan *delivery),
		redisClient:   redisClient,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			if _, ok := h.memberClients[client.memberID]; !ok {
				h.memberClients[client.memberID] = make(map[*Client]bool)
			}
			h.memberClients[client.memberID][client] = true
			h.mu.Unlock()
			h.markOnline(client.memberID)

		case client := <-h.unregister:
			h.mu.Lock()
			h.dropLocked(client)
			h.mu.Unlock()

		case d := <-h.deliver:
			h.mu.RLock()
			var stalled []*Client
			if d.all {
				for client := range h.clients {
					if !client.trySend(d.envelope) {
						stalled = append(stalled, client)
					}
				}
			} else {
				for _, memberID := range d.memberIDs {
					for client := range h.memberClients[memberID] {
						if !client.trySend(d.envelope) {
							stalled = append(stalled, client)
						}
					}
				}
			}
			h.mu.RUnlock()

			// A full send buffer means the reader is gone or wedged.
			if len(stalled) > 0 {
				h.mu.Lock()
				for _, client := range stalled {
					h.dropLocked(client)
				}
				h.mu.Unlock()
			}
		}
	}
}

func (h *Hub) dropLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)

	set := h.memberClients[client.memberID]
	delete(set, client)
	if len(set) == 0 {
		delete(h.memberClients, client.memberID)
		h.markOffline(client.memberID)
	}
}

func (h *Hub) markOnline(memberID string) {
	if h.redisClient == nil {
		return
	}
	_ = h.redisClient.SetMemberOnline(context.Background(), memberID, presenceTTL)
}

func (h *Hub) markOffline(memberID string) {
	if h.redisClient == nil {
		return
	}
	_ = h.redisClient.RemoveMemberOnline(context.Background(), memberID)
}

// NotifyMembers pushes a broadcast to the given members' live connections.
func (h *Hub) NotifyMembers(memberIDs []string, broadcast *model.Broadcast) {
	h.deliver <- &delivery{
		memberIDs: memberIDs,
		envelope:  &Envelope{Type: "broadcast", Payload: broadcast},
	}
}

// NotifyAll pushes a club-wide broadcast to every live connection.
func (h *Hub) NotifyAll(broadcast *model.Broadcast) {
	h.deliver <- &delivery{
		all:      true,
		envelope: &Envelope{Type: "broadcast", Payload: broadcast},
	}
}
