package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Emmymoks/swift-emc-marketplace/internal/domain"
	"github.com/Emmymoks/swift-emc-marketplace/internal/metrics"
	"github.com/Emmymoks/swift-emc-marketplace/internal/security"

	"github.com/gorilla/websocket"
)

// Gate — комнатный предикат доступа; реализуется ChatService.
type Gate interface {
	Authorize(ctx context.Context, p domain.Principal, room domain.Room) error
}

type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub
	resolver *security.Resolver
	gate     Gate

	pingEvery time.Duration
}

func NewServer(hub *Hub, resolver *security.Resolver, gate Gate) *Server {
	return &Server{
		hub:      hub,
		resolver: resolver,
		gate:     gate,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
	}
}

// WS endpoint: GET /ws?access_token=...  (админ: ?secret=...)
// Подписки на комнаты — событиями joinRoom/leaveRoom внутри соединения.
// Админское соединение получает adminNewMessage по всему трафику без join.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := s.resolver.Resolve(r.Context(), q.Get("access_token"), q.Get("secret"))

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWSConn(conn)
	metrics.WSConnections.Inc()
	if p.IsAdmin() {
		s.hub.AddAdmin(c)
	}

	go s.writeLoop(r.Context(), c)
	s.readLoop(r.Context(), c, p)

	s.hub.RemoveConn(c)
	metrics.WSConnections.Dec()
	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "err", err)
	}
}

func (s *Server) readLoop(ctx context.Context, c *wsConn, p domain.Principal) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(1 << 20)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case TypeJoinRoom:
			room, err := domain.ParseRoomID(msg.RoomID)
			if err != nil {
				continue
			}
			// протокол без ack: неавторизованный join просто игнорируем
			if err := s.gate.Authorize(ctx, p, room); err != nil {
				slog.Debug("ws join refused", "room", msg.RoomID, "err", err)
				continue
			}
			s.hub.Join(c, room.ID())

		case TypeLeaveRoom:
			s.hub.Leave(c, msg.RoomID)

		default:
			// ignore
		}
	}
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

type wsConn struct {
	conn   *websocket.Conn
	sendMu chan struct{}
	closed chan struct{}
}

func newWSConn(c *websocket.Conn) *wsConn {
	return &wsConn{
		conn:   c,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

// Send сериализует записи и ставит write deadline: медленный подписчик
// теряет событие, но не блокирует broadcast остальным.
func (c *wsConn) Send(msg Message) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(msg)
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}
