// Package app owns the room registry, the authorization checks, the live
// membership hub and the lifecycle orchestration between them.
package app

import (
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/domain"
)

// ErrNoFreeRoomID is only reachable when nearly all 9000 ids are active.
var ErrNoFreeRoomID = errors.New("no free room id")

const createAttempts = 32

// Rooms is the registry of active rooms. Rooms die by explicit termination
// only; there is no time-based expiry.
type Rooms struct {
	mu     sync.RWMutex
	active map[domain.RoomID]*domain.Room
}

func NewRooms() *Rooms {
	return &Rooms{active: make(map[domain.RoomID]*domain.Room)}
}

// Create registers a new active room with a fresh session token. Ids are
// 4 digits and may repeat across time; generation retries while an id is
// held by a live room so two rooms never silently share state.
func (r *Rooms) Create(name string) (*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for range createAttempts {
		id := domain.NewRoomID()
		if _, taken := r.active[id]; taken {
			continue
		}
		room := &domain.Room{
			ID:           id,
			SessionToken: domain.NewSessionToken(),
			Name:         name,
			CreatedAt:    time.Now(),
		}
		r.active[id] = room
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("name", name).Msg("room created")
		return room, nil
	}
	return nil, ErrNoFreeRoomID
}

func (r *Rooms) Get(id domain.RoomID) (*domain.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.active[id]
	return room, ok
}

// ValidateSession reports whether an active room with this id holds this
// exact token. The compare is constant-time.
func (r *Rooms) ValidateSession(id domain.RoomID, token string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.active[id]
	if !ok || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(room.SessionToken), []byte(token)) == 1
}

// Remove unregisters the room. Removing an unknown id is a no-op.
func (r *Rooms) Remove(id domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active[id]; ok {
		delete(r.active, id)
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room removed")
	}
}

// SetCreator records the first joining connection; later joiners don't take
// it over.
func (r *Rooms) SetCreator(id domain.RoomID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.active[id]; ok && room.CreatorConn == "" {
		room.CreatorConn = connID
	}
}

func (r *Rooms) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.active)
}
