package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Parley/internal/domain"
)

// fakeConn records delivered frames; fail simulates a dead connection.
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	fail   bool
}

func (f *fakeConn) TrySend(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("dead connection")
	}
	f.frames = append(f.frames, data)
	return nil
}

// messageIDs returns the ids of all message events delivered so far.
func (f *fakeConn) messageIDs(t *testing.T) []string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, raw := range f.frames {
		var ev struct {
			Type    string `json:"type"`
			Message struct {
				ID string `json:"id"`
			} `json:"message"`
		}
		if err := json.Unmarshal(raw, &ev); err != nil {
			t.Fatalf("bad frame %q: %v", raw, err)
		}
		if ev.Type == "message" {
			out = append(out, ev.Message.ID)
		}
	}
	return out
}

func (f *fakeConn) types(t *testing.T) []string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.frames))
	for _, raw := range f.frames {
		var env struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("bad frame %q: %v", raw, err)
		}
		out = append(out, env.Type)
	}
	return out
}

func TestPublishReachesAllMembersIncludingSender(t *testing.T) {
	hub := NewHub()
	room := domain.RoomID("1234")
	a, b := &fakeConn{}, &fakeConn{}
	hub.Join(room, "conn-a", "alice", "#007AFF", a)
	hub.Join(room, "conn-b", "bob", "#FF2D55", b)

	if sent := hub.Publish(room, NewMessageEvent(domain.NewMessage("alice", "hello", "#007AFF"))); sent != 2 {
		t.Fatalf("delivered to %d members, want 2", sent)
	}
	for _, c := range []*fakeConn{a, b} {
		got := c.types(t)
		if len(got) != 1 || got[0] != "message" {
			t.Fatalf("member frames = %v, want one message event", got)
		}
	}
}

func TestPublishEmptyRoomIsNoop(t *testing.T) {
	hub := NewHub()
	if sent := hub.Publish(domain.RoomID("0000"), NewSessionEndedEvent()); sent != 0 {
		t.Fatalf("empty room delivered to %d members", sent)
	}
}

func TestPublishExceptSkipsOneConnection(t *testing.T) {
	hub := NewHub()
	room := domain.RoomID("1234")
	a, b := &fakeConn{}, &fakeConn{}
	hub.Join(room, "conn-a", "alice", "#007AFF", a)
	hub.Join(room, "conn-b", "bob", "#FF2D55", b)

	hub.PublishExcept(room, "conn-a", NewUserJoinedEvent(MemberInfo{ID: "conn-a", Name: "alice", Color: "#007AFF"}))
	if got := a.types(t); len(got) != 0 {
		t.Fatalf("excluded member still received %v", got)
	}
	if got := b.types(t); len(got) != 1 || got[0] != "user_joined" {
		t.Fatalf("other member frames = %v, want one user_joined", got)
	}
}

func TestDeadConnectionIsToleratedNotPropagated(t *testing.T) {
	hub := NewHub()
	room := domain.RoomID("1234")
	alive, dead := &fakeConn{}, &fakeConn{fail: true}
	hub.Join(room, "conn-a", "alice", "#007AFF", alive)
	hub.Join(room, "conn-d", "dora", "#FF9500", dead)

	if sent := hub.Publish(room, NewSessionEndedEvent()); sent != 1 {
		t.Fatalf("delivered = %d, want 1 (dead conn dropped silently)", sent)
	}
}

func TestTerminateNotifiesThenEvicts(t *testing.T) {
	hub := NewHub()
	room := domain.RoomID("1234")
	a, b := &fakeConn{}, &fakeConn{}
	hub.Join(room, "conn-a", "alice", "#007AFF", a)
	hub.Join(room, "conn-b", "bob", "#FF2D55", b)

	hub.Terminate(room, NewSessionEndedEvent())

	for _, c := range []*fakeConn{a, b} {
		got := c.types(t)
		if len(got) != 1 || got[0] != "session_ended" {
			t.Fatalf("member frames = %v, want one session_ended", got)
		}
	}
	if n := hub.MemberCount(room); n != 0 {
		t.Fatalf("members after terminate = %d, want 0", n)
	}
	if sent := hub.Publish(room, NewSessionEndedEvent()); sent != 0 {
		t.Fatalf("publish after terminate reached %d members", sent)
	}
	if _, _, ok := hub.Member("conn-a"); ok {
		t.Fatal("membership survived terminate")
	}
}

// Joins racing a terminate must end up in exactly one of two states: still
// a member (joined after the eviction) or evicted holding the session_ended
// notice. Evicted-but-never-notified is the window this test guards.
func TestTerminateNotifiesEveryEvictedMember(t *testing.T) {
	room := domain.RoomID("1234")
	for range 20 {
		hub := NewHub()

		type joined struct {
			id   string
			conn *fakeConn
		}
		var (
			mu    sync.Mutex
			conns []joined
		)
		stop := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; ; i++ {
				select {
				case <-stop:
					return
				default:
				}
				c := &fakeConn{}
				id := fmt.Sprintf("conn-%d", i)
				hub.Join(room, id, "m", "#007AFF", c)
				mu.Lock()
				conns = append(conns, joined{id: id, conn: c})
				mu.Unlock()
			}
		}()

		time.Sleep(time.Millisecond)
		hub.Terminate(room, NewSessionEndedEvent())
		close(stop)
		wg.Wait()

		for _, j := range conns {
			if _, _, ok := hub.Member(j.id); ok {
				continue // joined after the terminate, still a member
			}
			got := j.conn.types(t)
			if len(got) == 0 || got[len(got)-1] != "session_ended" {
				t.Fatalf("member %s evicted without session_ended, frames = %v", j.id, got)
			}
		}
	}
}

func TestLeaveIsSilentAndComplete(t *testing.T) {
	hub := NewHub()
	room := domain.RoomID("1234")
	a, b := &fakeConn{}, &fakeConn{}
	hub.Join(room, "conn-a", "alice", "#007AFF", a)
	hub.Join(room, "conn-b", "bob", "#FF2D55", b)

	hub.Leave("conn-a")
	if got := b.types(t); len(got) != 0 {
		t.Fatalf("leave notified peers: %v", got)
	}
	if sent := hub.Publish(room, NewSessionEndedEvent()); sent != 1 {
		t.Fatalf("delivered = %d after leave, want 1", sent)
	}
	// leaving twice is harmless
	hub.Leave("conn-a")
}
