package domain

import (
	"math/rand/v2"
	"time"
)

const MaxMessageLen = 2000

// Palette holds the colors handed out to connections on join. A color is
// held for the lifetime of the connection and is not unique within a room.
var Palette = []string{"#007AFF", "#FF2D55", "#34C759", "#FF9500", "#AF52DE", "#5AC8FA", "#FFCC00"}

// Message is immutable once created; it is only ever dropped as part of the
// oldest-first history cap.
type Message struct {
	ID    string `json:"id"`
	From  string `json:"from"`
	Text  string `json:"text"`
	At    int64  `json:"at"`
	Color string `json:"color"`
}

// NewMessage builds a message with a fresh short id and the current time in
// epoch millis. Overlong text is truncated, not rejected. The cap counts
// runes; cutting a multibyte rune in half would corrupt every later frame.
func NewMessage(from, text, color string) Message {
	if from == "" {
		from = "Guest"
	}
	text = truncateRunes(text, MaxMessageLen)
	return Message{
		ID:    NewMessageID(),
		From:  from,
		Text:  text,
		At:    time.Now().UnixMilli(),
		Color: color,
	}
}

func RandomColor() string {
	return Palette[rand.IntN(len(Palette))]
}

// truncateRunes caps s at max runes, always on a rune boundary. The byte
// length check is just the cheap fast path.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if r := []rune(s); len(r) > max {
		return string(r[:max])
	}
	return s
}
