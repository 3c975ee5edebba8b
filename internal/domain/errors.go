package domain

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrInvalidSession = errors.New("invalid session token")
	ErrWrongPassword  = errors.New("wrong password")
	ErrForbidden      = errors.New("forbidden")
)
