// Package http exposes the room lifecycle over a JSON API and hands the
// real-time channel off to the chat adapter.
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/domain"
)

func handleCreate(orch *app.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name string `json:"name"`
		}
		// a missing or malformed body just means the default room name
		_ = c.ShouldBindJSON(&req)

		desc, err := orch.CreateRoom(req.Name)
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("create room")
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"ok":        true,
			"roomId":    desc.RoomID,
			"sessionId": desc.SessionToken,
			"joinUrl":   desc.JoinURL,
			"expiresAt": nil,
		})
	}
}

func handleEnd(orch *app.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			RoomID    string `json:"roomId"`
			SessionID string `json:"sessionId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Not found"})
			return
		}
		err := orch.Terminate(domain.RoomID(req.RoomID), req.SessionID)
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Not found"})
		case errors.Is(err, domain.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "Forbidden"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		default:
			c.JSON(http.StatusOK, gin.H{"ok": true})
		}
	}
}

func handleValidate(orch *app.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := c.Query("roomId")
		sessionID := c.Query("sessionId")
		if roomID == "" || sessionID == "" {
			c.JSON(http.StatusOK, gin.H{"ok": false})
			return
		}
		room, ok := orch.Validate(domain.RoomID(roomID), sessionID)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"ok": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "name": room.Name, "expiresAt": nil})
	}
}

func handleMessages(orch *app.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := c.Query("roomId")
		if roomID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false})
			return
		}
		msgs, err := orch.ReadHistory(domain.RoomID(roomID), c.Query("password"))
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "wrong password"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "messages": msgs})
	}
}
