package http

import (
	"time"

	"github.com/Emmymoks/swift-emc-marketplace/internal/domain"
)

type SendMessageRequest struct {
	RoomID  string  `json:"roomId"`
	ToID    *string `json:"toId,omitempty"`
	Text    string  `json:"text"`
	Listing *string `json:"listing,omitempty"`
}

type AdminReplyRequest struct {
	RoomID string  `json:"roomId"`
	ToID   *string `json:"toId,omitempty"`
	Text   string  `json:"text"`
}

// MessageItem — wire-представление сообщения; то же самое уходит и в
// socket-событии newMessage, дедуп на клиенте по id.
type MessageItem struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	From      *string   `json:"from"`
	To        *string   `json:"to,omitempty"`
	Text      string    `json:"text"`
	Listing   *string   `json:"listing,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func newMessageItem(m *domain.Message) MessageItem {
	return MessageItem{
		ID:        m.ID,
		RoomID:    m.RoomID,
		From:      m.SenderID,
		To:        m.RecipientID,
		Text:      m.Text,
		Listing:   m.ListingID,
		CreatedAt: m.CreatedAt.Truncate(time.Millisecond),
	}
}

type SendMessageResponse struct {
	Msg MessageItem `json:"msg"`
}

type HistoryResponse struct {
	Msgs []MessageItem `json:"msgs"`
}

type ConversationItem struct {
	RoomID      string    `json:"roomId"`
	Partner     string    `json:"partner"`
	LastMessage string    `json:"lastMessage"`
	At          time.Time `json:"at"`
}

type ConversationsResponse struct {
	Conversations []ConversationItem `json:"conversations"`
}

type RoomSummaryItem struct {
	RoomID      string      `json:"roomId"`
	LastMessage MessageItem `json:"lastMessage"`
	Count       int64       `json:"count"`
}

type RecentRoomsResponse struct {
	Rooms []RoomSummaryItem `json:"rooms"`
}

type StatusResponse struct {
	OK bool `json:"ok"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
