package domain

import (
	crand "crypto/rand"
	"fmt"
	"math/rand/v2"
)

// 64 URL-safe characters, so one random byte maps to exactly one character.
const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

const (
	SessionTokenLen = 48
	messageIDLen    = 10
)

// NewRoomID returns a 4-digit id. Uniqueness among active rooms is the room
// registry's job, not this function's.
func NewRoomID() RoomID {
	return RoomID(fmt.Sprintf("%04d", 1000+rand.IntN(9000)))
}

// NewSessionToken returns a high-entropy URL-safe secret.
func NewSessionToken() string {
	return randomToken(SessionTokenLen)
}

// NewMessageID returns a short opaque id for a single message.
func NewMessageID() string {
	return randomToken(messageIDLen)
}

func randomToken(n int) string {
	buf := make([]byte, n)
	if _, err := crand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return string(out)
}
