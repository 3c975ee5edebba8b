package storage

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/domain"
)

const (
	// DefaultCap is the maximum retained messages per room; oldest go first.
	DefaultCap = 5000
	// DefaultRecent is how many messages a joining connection is replayed.
	DefaultRecent = 200
)

// History is the capped append-only message log for all rooms. Durability is
// best-effort: a failed write never blocks delivery to live members, and a
// missing or corrupt document reads as empty history.
type History struct {
	store DocStore
	cap   int

	mu    sync.Mutex
	locks map[domain.RoomID]*sync.Mutex
}

func NewHistory(store DocStore) *History {
	return &History{
		store: store,
		cap:   DefaultCap,
		locks: make(map[domain.RoomID]*sync.Mutex),
	}
}

// roomLock serializes read-modify-write cycles per room id. Two concurrent
// appends to the same room must both survive; last-writer-wins on the whole
// document is the bug this lock exists for.
func (h *History) roomLock(roomID domain.RoomID) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.locks[roomID]
	if !ok {
		l = &sync.Mutex{}
		h.locks[roomID] = l
	}
	return l
}

// Init writes an empty document for the room unless one already exists.
func (h *History) Init(roomID domain.RoomID, name string) error {
	l := h.roomLock(roomID)
	l.Lock()
	defer l.Unlock()
	if ok, err := h.store.Exists(roomID); err == nil && ok {
		return nil
	}
	return h.store.Save(roomID, Document{RoomID: string(roomID), Name: name, Messages: []domain.Message{}})
}

// Append loads, appends, truncates to the cap and persists. Storage failures
// are logged and swallowed so the broadcast path can proceed.
func (h *History) Append(roomID domain.RoomID, msg domain.Message) {
	l := h.roomLock(roomID)
	l.Lock()
	defer l.Unlock()

	doc, err := h.store.Load(roomID)
	if err != nil && !errors.Is(err, ErrNoDocument) {
		log.Error().Err(err).Str("module", "storage.history").Str("room", string(roomID)).Msg("load before append")
		doc = Document{}
	}
	doc.RoomID = string(roomID)
	doc.Messages = append(doc.Messages, msg)
	if len(doc.Messages) > h.cap {
		doc.Messages = doc.Messages[len(doc.Messages)-h.cap:]
	}
	if err := h.store.Save(roomID, doc); err != nil {
		log.Error().Err(err).Str("module", "storage.history").Str("room", string(roomID)).Msg("persist append")
	}
}

// LoadRecent returns the most recent n messages in chronological order.
// n <= 0 means DefaultRecent.
func (h *History) LoadRecent(roomID domain.RoomID, n int) []domain.Message {
	if n <= 0 {
		n = DefaultRecent
	}
	msgs := h.LoadAll(roomID)
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	return msgs
}

// LoadAll returns the full retained sequence. Read failures fail open to an
// empty history rather than surfacing to the caller.
func (h *History) LoadAll(roomID domain.RoomID) []domain.Message {
	doc, err := h.store.Load(roomID)
	if err != nil {
		if !errors.Is(err, ErrNoDocument) {
			log.Warn().Err(err).Str("module", "storage.history").Str("room", string(roomID)).Msg("unreadable history")
		}
		return []domain.Message{}
	}
	if doc.Messages == nil {
		return []domain.Message{}
	}
	return doc.Messages
}
