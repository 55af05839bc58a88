package ws

import (
	"time"

	"github.com/Emmymoks/swift-emc-marketplace/internal/domain"
)

// Типы событий socket-протокола
const (
	// client → server
	TypeJoinRoom  = "joinRoom"
	TypeLeaveRoom = "leaveRoom"

	// server → client
	TypeNewMessage      = "newMessage"      // в подписчиков комнаты
	TypeAdminNewMessage = "adminNewMessage" // глобальный админский канал
)

type Message struct {
	Type    string      `json:"type"`
	RoomID  string      `json:"roomId,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// MessagePayload — то же сообщение, что отдаёт REST-история: клиент
// дедуплицирует по id то, что пришло обоими путями.
type MessagePayload struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	From      *string   `json:"from"`
	To        *string   `json:"to,omitempty"`
	Text      string    `json:"text"`
	Listing   *string   `json:"listing,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewMessagePayload(m *domain.Message) MessagePayload {
	return MessagePayload{
		ID:        m.ID,
		RoomID:    m.RoomID,
		From:      m.SenderID,
		To:        m.RecipientID,
		Text:      m.Text,
		Listing:   m.ListingID,
		// та же ms-точность, что в REST: сообщение байт-в-байт одинаково
		// обоими путями
		CreatedAt: m.CreatedAt.Truncate(time.Millisecond),
	}
}
