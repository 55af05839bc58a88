package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Emmymoks/swift-emc-marketplace/internal/domain"
	"github.com/Emmymoks/swift-emc-marketplace/internal/security"

	"github.com/gorilla/websocket"
)

type allowGate struct{ deny bool }

func (g allowGate) Authorize(ctx context.Context, p domain.Principal, room domain.Room) error {
	if g.deny {
		return domain.ErrForbidden
	}
	if p.IsAnonymous() {
		return domain.ErrUnauthenticated
	}
	return nil
}

func newWSFixture(t *testing.T, gate Gate) (*Hub, *httptest.Server, *security.TokenVerifier) {
	t.Helper()
	verifier := security.NewTokenVerifier("test-secret", time.Second)
	resolver := security.NewResolver(verifier, "adminpass", nil)
	hub := NewHub()
	server := NewServer(hub, resolver, gate)

	srv := httptest.NewServer(http.HandlerFunc(server.HandleWS))
	t.Cleanup(srv.Close)
	return hub, srv, verifier
}

func dialWS(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// waitSubscribed ждёт появления подписчика комнаты: join обрабатывается
// read-лупом сервера асинхронно.
func waitSubscribed(t *testing.T, hub *Hub, roomID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		n := len(hub.rooms[roomID])
		hub.mu.RUnlock()
		if n == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("room %q never reached %d subscribers", roomID, want)
}

func TestServer_JoinAndReceive(t *testing.T) {
	hub, srv, verifier := newWSFixture(t, allowGate{})
	tok, err := verifier.Sign("A", time.Now(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	conn := dialWS(t, srv, "access_token="+tok)
	if err := conn.WriteJSON(Message{Type: TypeJoinRoom, RoomID: "user:A_B"}); err != nil {
		t.Fatal(err)
	}
	waitSubscribed(t, hub, "user:A_B", 1)

	hub.Publish("user:A_B", &domain.Message{ID: "m1", RoomID: "user:A_B", Text: "hi"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Message
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Type != TypeNewMessage {
		t.Fatalf("unexpected event: %#v", got)
	}
	payload, ok := got.Payload.(map[string]interface{})
	if !ok || payload["id"] != "m1" {
		t.Fatalf("payload must carry message id: %#v", got.Payload)
	}
}

func TestServer_UnauthorizedJoinIgnored(t *testing.T) {
	hub, srv, verifier := newWSFixture(t, allowGate{deny: true})
	tok, err := verifier.Sign("C", time.Now(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	conn := dialWS(t, srv, "access_token="+tok)
	if err := conn.WriteJSON(Message{Type: TypeJoinRoom, RoomID: "user:A_B"}); err != nil {
		t.Fatal(err)
	}

	// join отклонён — подписки нет и событий не приходит
	time.Sleep(100 * time.Millisecond)
	hub.mu.RLock()
	n := len(hub.rooms["user:A_B"])
	hub.mu.RUnlock()
	if n != 0 {
		t.Fatal("forbidden join created a subscription")
	}

	hub.Publish("user:A_B", &domain.Message{ID: "m1", RoomID: "user:A_B"})
	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var got Message
	if err := conn.ReadJSON(&got); err == nil {
		t.Fatalf("leaked event to unauthorized conn: %#v", got)
	}
}

func TestServer_AdminTopicOverWire(t *testing.T) {
	hub, srv, _ := newWSFixture(t, allowGate{})

	conn := dialWS(t, srv, "secret=adminpass")

	// админ попадает в глобальный канал прямо на upgrade
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		n := len(hub.admins)
		hub.mu.RUnlock()
		if n == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.PublishAdmin(&domain.Message{ID: "m9", RoomID: "support:u1", Text: "hey"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Message
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Type != TypeAdminNewMessage || got.RoomID != "support:u1" {
		t.Fatalf("unexpected admin event: %#v", got)
	}
}
