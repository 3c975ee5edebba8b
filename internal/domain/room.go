// Package domain contains entity without logic, just meta-data
package domain

import "time"

const MaxRoomNameLen = 48

type RoomID string

// Room is an active chat room. The session token is the secret half of the
// join link and is never sent to other members.
type Room struct {
	ID           RoomID
	SessionToken string
	Name         string
	CreatorConn  string
	CreatedAt    time.Time
}

// NormalizeRoomName applies the default name and the rune-boundary length
// cap.
func NormalizeRoomName(raw string) string {
	if raw == "" {
		return "Room"
	}
	return truncateRunes(raw, MaxRoomNameLen)
}
