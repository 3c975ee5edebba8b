package app

import (
	"net/url"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/domain"
	"github.com/dkeye/Parley/internal/storage"
)

// Orchestrator wires the room registry, the history log and the hub
// together and owns the room lifecycle flows.
type Orchestrator struct {
	Rooms   *Rooms
	Auth    *Authority
	History *storage.History
	Hub     *Hub
	BaseURL string

	// order serializes append+publish per room so the order every member
	// observes is exactly the append order of the history log.
	mu    sync.Mutex
	order map[domain.RoomID]*sync.Mutex
}

func NewOrchestrator(rooms *Rooms, auth *Authority, history *storage.History, hub *Hub, baseURL string) *Orchestrator {
	return &Orchestrator{
		Rooms:   rooms,
		Auth:    auth,
		History: history,
		Hub:     hub,
		BaseURL: baseURL,
		order:   make(map[domain.RoomID]*sync.Mutex),
	}
}

func (o *Orchestrator) roomOrder(roomID domain.RoomID) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.order[roomID]
	if !ok {
		l = &sync.Mutex{}
		o.order[roomID] = l
	}
	return l
}

// JoinDescriptor is what a creator gets back: everything needed to share the
// room except the password, which travels out-of-band.
type JoinDescriptor struct {
	RoomID       domain.RoomID
	SessionToken string
	JoinURL      string
}

// CreateRoom registers a room and seeds its empty history document. A
// failure to seed the document is logged and swallowed; the first append
// recreates it.
func (o *Orchestrator) CreateRoom(name string) (JoinDescriptor, error) {
	name = domain.NormalizeRoomName(name)
	room, err := o.Rooms.Create(name)
	if err != nil {
		return JoinDescriptor{}, err
	}
	if err := o.History.Init(room.ID, name); err != nil {
		log.Error().Err(err).Str("module", "app.orch").Str("room", string(room.ID)).Msg("seed history document")
	}
	q := url.Values{}
	q.Set("roomId", string(room.ID))
	q.Set("sessionId", room.SessionToken)
	q.Set("name", name)
	return JoinDescriptor{
		RoomID:       room.ID,
		SessionToken: room.SessionToken,
		JoinURL:      o.BaseURL + "/room.html?" + q.Encode(),
	}, nil
}

// JoinResult carries what the joining connection is told about the room.
type JoinResult struct {
	Room    *domain.Room
	Member  MemberInfo
	History []domain.Message
}

// Join authorizes, registers the connection and notifies the rest of the
// room. On any authorization failure nothing is mutated.
func (o *Orchestrator) Join(connID string, c Conn, roomID domain.RoomID, token, password, displayName string) (JoinResult, error) {
	if err := o.Auth.AuthorizeJoin(roomID, token, password); err != nil {
		return JoinResult{}, err
	}
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		return JoinResult{}, domain.ErrRoomNotFound
	}
	if displayName == "" {
		displayName = "Guest"
	}
	color := domain.RandomColor()
	info := MemberInfo{ID: connID, Name: displayName, Color: color}

	// registration and replay share the room's order lock: a concurrent
	// message lands either fully in the replay or fully live, never both
	l := o.roomOrder(roomID)
	l.Lock()
	o.Hub.Join(roomID, connID, displayName, color, c)
	o.Rooms.SetCreator(roomID, connID)
	o.Hub.PublishExcept(roomID, connID, NewUserJoinedEvent(info))
	recent := o.History.LoadRecent(roomID, 0)
	l.Unlock()

	return JoinResult{
		Room:    room,
		Member:  info,
		History: recent,
	}, nil
}

// Message builds the message, appends it and fans it out, strictly in that
// order. The sender gets no local echo; the broadcast is the only delivery
// path, sender included.
func (o *Orchestrator) Message(connID string, roomID domain.RoomID, text string) (domain.Message, error) {
	info, memberRoom, ok := o.Hub.Member(connID)
	if !ok || memberRoom != roomID {
		return domain.Message{}, domain.ErrForbidden
	}
	if _, ok := o.Rooms.Get(roomID); !ok {
		return domain.Message{}, domain.ErrRoomNotFound
	}
	msg := domain.NewMessage(info.Name, text, info.Color)

	l := o.roomOrder(roomID)
	l.Lock()
	defer l.Unlock()
	o.History.Append(roomID, msg)
	o.Hub.Publish(roomID, NewMessageEvent(msg))
	return msg, nil
}

// Terminate ends the room for every member and unregisters it. The history
// document is retained.
func (o *Orchestrator) Terminate(roomID domain.RoomID, token string) error {
	if err := o.Auth.AuthorizeTermination(roomID, token); err != nil {
		return err
	}
	o.Hub.Terminate(roomID, NewSessionEndedEvent())
	o.Rooms.Remove(roomID)
	return nil
}

// Leave drops the connection's membership on disconnect.
func (o *Orchestrator) Leave(connID string) {
	o.Hub.Leave(connID)
}

// Validate answers the link-check endpoint: does this (room, token) pair
// name a live room.
func (o *Orchestrator) Validate(roomID domain.RoomID, token string) (*domain.Room, bool) {
	if !o.Rooms.ValidateSession(roomID, token) {
		return nil, false
	}
	return o.Rooms.Get(roomID)
}

// ReadHistory is the password-gated full-log read path.
func (o *Orchestrator) ReadHistory(roomID domain.RoomID, password string) ([]domain.Message, error) {
	if err := o.Auth.AuthorizeHistoryRead(password); err != nil {
		return nil, err
	}
	return o.History.LoadAll(roomID), nil
}
