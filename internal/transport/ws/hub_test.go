package ws

import (
	"sync"
	"testing"
	"time"

	"github.com/Emmymoks/swift-emc-marketplace/internal/domain"
)

// fakeConn собирает доставленные события.
type fakeConn struct {
	mu     sync.Mutex
	events []Message
}

func (c *fakeConn) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, msg)
	return nil
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) received() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.events))
	copy(out, c.events)
	return out
}

func TestHub_JoinIsIdempotent(t *testing.T) {
	h := NewHub()
	c := &fakeConn{}
	h.Join(c, "user:a_b")
	h.Join(c, "user:a_b")

	h.Broadcast("user:a_b", Message{Type: TypeNewMessage})
	if got := len(c.received()); got != 1 {
		t.Fatalf("double join must not double delivery: got %d events", got)
	}
}

func TestHub_BroadcastScopedToRoom(t *testing.T) {
	h := NewHub()
	inRoom, other := &fakeConn{}, &fakeConn{}
	h.Join(inRoom, "user:a_b")
	h.Join(other, "listing_x")

	h.Broadcast("user:a_b", Message{Type: TypeNewMessage, RoomID: "user:a_b"})

	if len(inRoom.received()) != 1 {
		t.Fatal("subscriber missed room event")
	}
	if len(other.received()) != 0 {
		t.Fatal("event leaked into another room")
	}
}

func TestHub_ConnInManyRooms(t *testing.T) {
	h := NewHub()
	c := &fakeConn{}
	h.Join(c, "user:a_b")
	h.Join(c, "support:a")

	h.Broadcast("user:a_b", Message{Type: TypeNewMessage})
	h.Broadcast("support:a", Message{Type: TypeNewMessage})
	if got := len(c.received()); got != 2 {
		t.Fatalf("multi-room subscription broken: got %d events", got)
	}

	h.Leave(c, "user:a_b")
	h.Broadcast("user:a_b", Message{Type: TypeNewMessage})
	if got := len(c.received()); got != 2 {
		t.Fatalf("leave did not unsubscribe: got %d events", got)
	}
}

func TestHub_AdminTopic(t *testing.T) {
	h := NewHub()
	admin, user := &fakeConn{}, &fakeConn{}
	h.AddAdmin(admin)
	h.Join(user, "user:a_b")

	m := &domain.Message{ID: "m1", RoomID: "user:a_b", Text: "hi"}
	h.Publish(m.RoomID, m)
	h.PublishAdmin(m)

	// админ видит трафик без join в комнату
	adminEvents := admin.received()
	if len(adminEvents) != 1 || adminEvents[0].Type != TypeAdminNewMessage {
		t.Fatalf("admin topic broken: %#v", adminEvents)
	}
	// обычный подписчик получает только комнатное событие
	userEvents := user.received()
	if len(userEvents) != 1 || userEvents[0].Type != TypeNewMessage {
		t.Fatalf("room event broken: %#v", userEvents)
	}

	payload, ok := userEvents[0].Payload.(MessagePayload)
	if !ok || payload.ID != "m1" {
		t.Fatalf("payload must carry the persisted message id: %#v", userEvents[0].Payload)
	}
}

// Socket-событие обязано совпадать с REST-представлением байт-в-байт,
// включая ms-точность createdAt.
func TestNewMessagePayload_TruncatesToMillis(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)
	m := &domain.Message{ID: "m1", RoomID: "user:a_b", Text: "hi", CreatedAt: at}

	p := NewMessagePayload(m)
	if want := at.Truncate(time.Millisecond); !p.CreatedAt.Equal(want) {
		t.Fatalf("createdAt not truncated: %v, want %v", p.CreatedAt, want)
	}
}

func TestHub_RemoveConnUnsubscribesEverything(t *testing.T) {
	h := NewHub()
	c := &fakeConn{}
	h.Join(c, "user:a_b")
	h.Join(c, "listing_x")
	h.AddAdmin(c)

	h.RemoveConn(c)

	h.Broadcast("user:a_b", Message{Type: TypeNewMessage})
	h.Broadcast("listing_x", Message{Type: TypeNewMessage})
	h.BroadcastAdmin(Message{Type: TypeAdminNewMessage})

	if got := len(c.received()); got != 0 {
		t.Fatalf("disconnected conn still receiving: %d events", got)
	}
}
