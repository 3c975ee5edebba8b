package app

import (
	"errors"
	"testing"

	"github.com/dkeye/Parley/internal/domain"
)

func TestAuthorizeJoinPriorityOrder(t *testing.T) {
	rooms := NewRooms()
	auth := NewAuthority(rooms, "hunter2")
	room, _ := rooms.Create("Standup")

	tests := []struct {
		name     string
		id       domain.RoomID
		token    string
		password string
		want     error
	}{
		{name: "unknown room beats bad token and password", id: "0000", token: "x", password: "x", want: domain.ErrRoomNotFound},
		{name: "bad token beats bad password", id: room.ID, token: "x", password: "x", want: domain.ErrInvalidSession},
		{name: "bad password alone", id: room.ID, token: room.SessionToken, password: "x", want: domain.ErrWrongPassword},
		{name: "all good", id: room.ID, token: room.SessionToken, password: "hunter2", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := auth.AuthorizeJoin(tt.id, tt.token, tt.password); !errors.Is(err, tt.want) {
				t.Fatalf("AuthorizeJoin = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAuthorizeTermination(t *testing.T) {
	rooms := NewRooms()
	auth := NewAuthority(rooms, "hunter2")
	room, _ := rooms.Create("Standup")

	if err := auth.AuthorizeTermination("0000", room.SessionToken); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("unknown room = %v, want ErrRoomNotFound", err)
	}
	if err := auth.AuthorizeTermination(room.ID, "forged"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("forged token = %v, want ErrForbidden", err)
	}
	// no password needed: the token alone authorizes termination
	if err := auth.AuthorizeTermination(room.ID, room.SessionToken); err != nil {
		t.Fatalf("matching token = %v, want nil", err)
	}
}

func TestAuthorizeHistoryRead(t *testing.T) {
	auth := NewAuthority(NewRooms(), "hunter2")
	if err := auth.AuthorizeHistoryRead("wrong"); !errors.Is(err, domain.ErrWrongPassword) {
		t.Fatalf("wrong password = %v, want ErrWrongPassword", err)
	}
	if err := auth.AuthorizeHistoryRead("hunter2"); err != nil {
		t.Fatalf("correct password = %v, want nil", err)
	}
}

func TestUnsetPasswordRejectsEveryone(t *testing.T) {
	auth := NewAuthority(NewRooms(), "")
	if auth.Password("") {
		t.Fatal("empty configured password accepted an empty supplied password")
	}
	if auth.Password("anything") {
		t.Fatal("empty configured password accepted a guess")
	}
}
