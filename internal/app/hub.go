package app

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/domain"
)

// Conn is the outbound half of a live connection. TrySend must never block;
// a full or dead connection returns an error and the frame is dropped.
type Conn interface {
	TrySend(data []byte) error
}

// MemberInfo is the public identity shown to other members. It never carries
// the session token.
type MemberInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type member struct {
	info MemberInfo
	conn Conn
}

// Hub is the single source of truth for who is currently connected to which
// room. Membership is ephemeral; nothing here is persisted.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomID]map[string]*member
	byConn map[string]domain.RoomID
}

func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[domain.RoomID]map[string]*member),
		byConn: make(map[string]domain.RoomID),
	}
}

// Join registers the connection as a member of the room. A connection is in
// at most one room.
func (h *Hub) Join(roomID domain.RoomID, connID, name, color string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if prev, ok := h.byConn[connID]; ok {
		delete(h.rooms[prev], connID)
	}
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[string]*member)
	}
	h.rooms[roomID][connID] = &member{
		info: MemberInfo{ID: connID, Name: name, Color: color},
		conn: c,
	}
	h.byConn[connID] = roomID
	log.Info().Str("module", "app.hub").Str("conn", connID).Str("room", string(roomID)).Msg("member joined")
}

// Leave removes the membership silently; peers are not notified.
func (h *Hub) Leave(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	roomID, ok := h.byConn[connID]
	if !ok {
		return
	}
	delete(h.byConn, connID)
	if members, ok := h.rooms[roomID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
	log.Info().Str("module", "app.hub").Str("conn", connID).Str("room", string(roomID)).Msg("member left")
}

// Member returns the identity and room of a live connection.
func (h *Hub) Member(connID string) (MemberInfo, domain.RoomID, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	roomID, ok := h.byConn[connID]
	if !ok {
		return MemberInfo{}, "", false
	}
	m, ok := h.rooms[roomID][connID]
	if !ok {
		return MemberInfo{}, "", false
	}
	return m.info, roomID, true
}

func (h *Hub) MemberCount(roomID domain.RoomID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// Publish delivers the event to every member of the room, sender included.
// Dead connections are a no-op failure, never an error to the caller.
func (h *Hub) Publish(roomID domain.RoomID, v any) int {
	return h.publish(roomID, "", v)
}

// PublishExcept delivers to every member but one; used for join notices.
func (h *Hub) PublishExcept(roomID domain.RoomID, exceptConnID string, v any) int {
	return h.publish(roomID, exceptConnID, v)
}

func (h *Hub) publish(roomID domain.RoomID, exceptConnID string, v any) int {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.hub").Msg("publish marshal")
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for connID, m := range h.rooms[roomID] {
		if connID == exceptConnID {
			continue
		}
		if err := m.conn.TrySend(data); err != nil {
			log.Debug().Str("module", "app.hub").Str("conn", connID).Msg("dropped frame")
			continue
		}
		sent++
	}
	return sent
}

// Terminate notifies every member with the given event and evicts the whole
// room's membership. Notify and evict happen under one lock so a join can
// never land in between and be evicted without the notice. Later Publish or
// Join calls see an empty room.
func (h *Hub) Terminate(roomID domain.RoomID, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.hub").Msg("terminate marshal")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for connID, m := range h.rooms[roomID] {
		if err := m.conn.TrySend(data); err != nil {
			log.Debug().Str("module", "app.hub").Str("conn", connID).Msg("dropped frame")
		}
		delete(h.byConn, connID)
	}
	delete(h.rooms, roomID)
	log.Info().Str("module", "app.hub").Str("room", string(roomID)).Msg("room terminated")
}
