package domain

import "time"

// Message — единственная персистентная сущность ядра сообщений.
// SenderID == nil означает «от админа/системы» (у админа нет user-строки).
type Message struct {
	ID          string    `db:"id"`
	RoomID      string    `db:"room_id"`
	SenderID    *string   `db:"sender_id"`
	RecipientID *string   `db:"recipient_id"`
	Text        string    `db:"text"`
	ListingID   *string   `db:"listing_id"`
	CreatedAt   time.Time `db:"created_at"`
}

// Conversation — производный элемент инбокса: комната + последнее сообщение.
type Conversation struct {
	RoomID      string
	PartnerID   string
	LastMessage string
	At          time.Time
}

// RoomSummary is the moderation view of a room: its most recent message
// plus a total message count.
type RoomSummary struct {
	RoomID      string
	LastMessage Message
	Count       int64
}
