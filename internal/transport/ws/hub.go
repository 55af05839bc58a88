package ws

import (
	"sync"

	"github.com/Emmymoks/swift-emc-marketplace/internal/domain"
	"github.com/Emmymoks/swift-emc-marketplace/internal/metrics"
)

type Conn interface {
	Send(msg Message) error
	Close() error
}

// Hub — process-local pub/sub по комнатам плюс глобальный админский канал.
// Одно соединение может состоять в любом числе комнат.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[Conn]struct{} // roomID -> set of connections
	joined map[Conn]map[string]struct{} // обратный индекс для disconnect
	admins map[Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[string]map[Conn]struct{}),
		joined: make(map[Conn]map[string]struct{}),
		admins: make(map[Conn]struct{}),
	}
}

// Join идемпотентен: повторный вход в ту же комнату — no-op.
func (h *Hub) Join(c Conn, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rs, ok := h.rooms[roomID]
	if !ok {
		rs = make(map[Conn]struct{})
		h.rooms[roomID] = rs
	}
	rs[c] = struct{}{}

	js, ok := h.joined[c]
	if !ok {
		js = make(map[string]struct{})
		h.joined[c] = js
	}
	js[roomID] = struct{}{}
}

func (h *Hub) Leave(c Conn, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, roomID)
}

func (h *Hub) leaveLocked(c Conn, roomID string) {
	if rs, ok := h.rooms[roomID]; ok {
		delete(rs, c)
		if len(rs) == 0 {
			delete(h.rooms, roomID)
		}
	}
	if js, ok := h.joined[c]; ok {
		delete(js, roomID)
		if len(js) == 0 {
			delete(h.joined, c)
		}
	}
}

func (h *Hub) AddAdmin(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.admins[c] = struct{}{}
}

// RemoveConn — неявная отписка от всего при разрыве соединения.
func (h *Hub) RemoveConn(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for roomID := range h.joined[c] {
		h.leaveLocked(c, roomID)
	}
	delete(h.joined, c)
	delete(h.admins, c)
}

func (h *Hub) Broadcast(roomID string, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	metrics.Broadcasts.Inc()
	if rs, ok := h.rooms[roomID]; ok {
		for c := range rs {
			_ = c.Send(msg) // best-effort
		}
	}
}

func (h *Hub) BroadcastAdmin(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.admins {
		_ = c.Send(msg)
	}
}

// Publish / PublishAdmin реализуют service.Broadcaster.

func (h *Hub) Publish(roomID string, m *domain.Message) {
	h.Broadcast(roomID, Message{
		Type:    TypeNewMessage,
		RoomID:  roomID,
		Payload: NewMessagePayload(m),
	})
}

func (h *Hub) PublishAdmin(m *domain.Message) {
	h.BroadcastAdmin(Message{
		Type:    TypeAdminNewMessage,
		RoomID:  m.RoomID,
		Payload: NewMessagePayload(m),
	})
}
