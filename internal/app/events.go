package app

import "github.com/dkeye/Parley/internal/domain"

// Wire events for the real-time channel. Every frame is a JSON object with
// a "type" tag; the socket adapter and the fan-out paths share these shapes.

type JoinErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type HistoryEvent struct {
	Type     string           `json:"type"`
	Messages []domain.Message `json:"messages"`
}

type JoinedEvent struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
	Name   string        `json:"name"`
}

type UserJoinedEvent struct {
	Type string `json:"type"`
	MemberInfo
}

type MessageEvent struct {
	Type    string         `json:"type"`
	Message domain.Message `json:"message"`
}

type SessionEndedEvent struct {
	Type string `json:"type"`
}

type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func NewJoinErrorEvent(reason string) JoinErrorEvent {
	return JoinErrorEvent{Type: "join_error", Error: reason}
}

func NewHistoryEvent(msgs []domain.Message) HistoryEvent {
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return HistoryEvent{Type: "history", Messages: msgs}
}

func NewJoinedEvent(roomID domain.RoomID, name string) JoinedEvent {
	return JoinedEvent{Type: "joined", RoomID: roomID, Name: name}
}

func NewUserJoinedEvent(m MemberInfo) UserJoinedEvent {
	return UserJoinedEvent{Type: "user_joined", MemberInfo: m}
}

func NewMessageEvent(m domain.Message) MessageEvent {
	return MessageEvent{Type: "message", Message: m}
}

func NewSessionEndedEvent() SessionEndedEvent {
	return SessionEndedEvent{Type: "session_ended"}
}

func NewErrorEvent(msg string) ErrorEvent {
	return ErrorEvent{Type: "error_msg", Error: msg}
}
