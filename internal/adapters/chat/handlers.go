package chat

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/domain"
)

// joinReason maps the authorization taxonomy onto the client-facing reason
// strings.
func joinReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		return "Room not found or expired"
	case errors.Is(err, domain.ErrInvalidSession):
		return "Invalid session token"
	case errors.Is(err, domain.ErrWrongPassword):
		return "Wrong password"
	default:
		return "Join failed"
	}
}

func (ctl *ChatWSController) handleJoin(connID string, conn *WsChatConn, data []byte) {
	var p struct {
		Type        string `json:"type"`
		RoomID      string `json:"roomId"`
		SessionID   string `json:"sessionId"`
		DisplayName string `json:"displayName"`
		Password    string `json:"password"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "chat").Msg("bad join payload")
		ctl.sendJSON(conn, app.NewJoinErrorEvent("bad_payload"))
		return
	}

	res, err := ctl.Orch.Join(connID, conn, domain.RoomID(p.RoomID), p.SessionID, p.Password, p.DisplayName)
	if err != nil {
		log.Info().Str("module", "chat").Str("conn", connID).Str("room", p.RoomID).Str("reason", joinReason(err)).Msg("join rejected")
		ctl.sendJSON(conn, app.NewJoinErrorEvent(joinReason(err)))
		return
	}

	log.Info().Str("module", "chat").Str("conn", connID).Str("room", p.RoomID).Str("name", res.Member.Name).Msg("join")
	ctl.sendJSON(conn, app.NewHistoryEvent(res.History))
	ctl.sendJSON(conn, app.NewJoinedEvent(res.Room.ID, res.Room.Name))
}

func (ctl *ChatWSController) handleMessage(connID string, conn *WsChatConn, data []byte) {
	var p struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
		Text   string `json:"text"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "chat").Msg("bad message payload")
		return
	}
	// delivery comes back through the room broadcast; unauthorized or
	// dead-room messages are dropped silently
	if _, err := ctl.Orch.Message(connID, domain.RoomID(p.RoomID), p.Text); err != nil {
		log.Debug().Err(err).Str("module", "chat").Str("conn", connID).Str("room", p.RoomID).Msg("message dropped")
	}
}

func (ctl *ChatWSController) handleEnd(connID string, conn *WsChatConn, data []byte) {
	var p struct {
		Type      string `json:"type"`
		RoomID    string `json:"roomId"`
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "chat").Msg("bad end payload")
		return
	}
	err := ctl.Orch.Terminate(domain.RoomID(p.RoomID), p.SessionID)
	switch {
	case errors.Is(err, domain.ErrForbidden):
		ctl.sendJSON(conn, app.NewErrorEvent("Forbidden"))
	case errors.Is(err, domain.ErrRoomNotFound):
		// unknown room ends silently, matching the termination contract
	case err == nil:
		log.Info().Str("module", "chat").Str("conn", connID).Str("room", p.RoomID).Msg("session ended")
	}
}

func (ctl *ChatWSController) handlePing(conn *WsChatConn) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.sendJSON(conn, resp)
}
