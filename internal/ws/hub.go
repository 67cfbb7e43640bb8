package ws

import (
	"fmt"
	"sync"

	"round/internal/telemetry"
)

const sessionBuffer = 16

// Change kinds pushed to subscribers.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
	ChangeValued  = "valued"
)

type Subscriber struct {
	SessionID string
	UserID    string
	Dashboard bool
	AssetIDs  map[string]struct{}

	send chan Message
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]*Subscriber)}
}

// Add registers a session and returns the channel its events arrive on.
// The channel is closed by Remove.
func (h *Hub) Add(sessionID, userID string) (<-chan Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sessionID == "" || userID == "" {
		return nil, fmt.Errorf("sessionID and userID are required")
	}
	if _, ok := h.subscribers[sessionID]; ok {
		return nil, fmt.Errorf("session already exists")
	}
	sub := &Subscriber{
		SessionID: sessionID,
		UserID:    userID,
		AssetIDs:  map[string]struct{}{},
		send:      make(chan Message, sessionBuffer),
	}
	h.subscribers[sessionID] = sub
	return sub.send, nil
}

func (h *Hub) Remove(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub, ok := h.subscribers[sessionID]
	if !ok {
		return
	}
	close(sub.send)
	delete(h.subscribers, sessionID)
}

func (h *Hub) SubscribeDashboard(sessionID string) {
	h.update(sessionID, func(sub *Subscriber) { sub.Dashboard = true })
}

func (h *Hub) UnsubscribeDashboard(sessionID string) {
	h.update(sessionID, func(sub *Subscriber) { sub.Dashboard = false })
}

func (h *Hub) SubscribeAsset(sessionID, assetID string) {
	h.update(sessionID, func(sub *Subscriber) { sub.AssetIDs[assetID] = struct{}{} })
}

func (h *Hub) UnsubscribeAsset(sessionID, assetID string) {
	h.update(sessionID, func(sub *Subscriber) { delete(sub.AssetIDs, assetID) })
}

func (h *Hub) update(sessionID string, fn func(*Subscriber)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub, ok := h.subscribers[sessionID]
	if !ok {
		return
	}
	fn(sub)
}

// NotifyAsset queues an asset_changed event for every session of userID that
// watches the dashboard or that asset. Full buffers drop the event. It returns
// the number of sessions the event was queued for.
func (h *Hub) NotifyAsset(userID, assetID, change string) int {
	msg := Message{Type: "asset_changed", AssetID: assetID, Change: change}

	h.mu.RLock()
	defer h.mu.RUnlock()

	queued := 0
	for _, sub := range h.subscribers {
		if sub.UserID != userID {
			continue
		}
		if _, watching := sub.AssetIDs[assetID]; !sub.Dashboard && !watching {
			continue
		}
		select {
		case sub.send <- msg:
			queued++
		default:
			telemetry.WSEventDropped()
		}
	}
	return queued
}

// Snapshot returns a copy of a session's subscriptions.
func (h *Hub) Snapshot(sessionID string) (Subscriber, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sub, ok := h.subscribers[sessionID]
	if !ok {
		return Subscriber{}, false
	}
	assetIDs := make(map[string]struct{}, len(sub.AssetIDs))
	for id := range sub.AssetIDs {
		assetIDs[id] = struct{}{}
	}
	return Subscriber{
		SessionID: sub.SessionID,
		UserID:    sub.UserID,
		Dashboard: sub.Dashboard,
		AssetIDs:  assetIDs,
	}, true
}

func (h *Hub) SessionIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.subscribers))
	for id := range h.subscribers {
		ids = append(ids, id)
	}
	return ids
}
