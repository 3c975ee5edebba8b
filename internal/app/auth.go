package app

import (
	"crypto/subtle"

	"github.com/dkeye/Parley/internal/domain"
)

// Authority performs the password and session checks for joins, history
// reads and termination. The deployment has a single shared room password.
type Authority struct {
	rooms    *Rooms
	password string
}

func NewAuthority(rooms *Rooms, password string) *Authority {
	return &Authority{rooms: rooms, password: password}
}

// Password checks the shared secret. An unset secret closes the chat rather
// than opening it.
func (a *Authority) Password(supplied string) bool {
	if a.password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a.password), []byte(supplied)) == 1
}

// AuthorizeJoin checks existence, then token, then password, in that order.
// Only a truly unknown room reports RoomNotFound.
func (a *Authority) AuthorizeJoin(id domain.RoomID, token, password string) error {
	if _, ok := a.rooms.Get(id); !ok {
		return domain.ErrRoomNotFound
	}
	if !a.rooms.ValidateSession(id, token) {
		return domain.ErrInvalidSession
	}
	if !a.Password(password) {
		return domain.ErrWrongPassword
	}
	return nil
}

// AuthorizeTermination requires the token only; any holder of the matching
// session token may end the room, not just its creator.
func (a *Authority) AuthorizeTermination(id domain.RoomID, token string) error {
	if _, ok := a.rooms.Get(id); !ok {
		return domain.ErrRoomNotFound
	}
	if !a.rooms.ValidateSession(id, token) {
		return domain.ErrForbidden
	}
	return nil
}

// AuthorizeHistoryRead is the password-only read path; no session token.
func (a *Authority) AuthorizeHistoryRead(password string) error {
	if !a.Password(password) {
		return domain.ErrWrongPassword
	}
	return nil
}
