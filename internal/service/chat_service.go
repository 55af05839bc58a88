package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Emmymoks/swift-emc-marketplace/internal/domain"
	"github.com/Emmymoks/swift-emc-marketplace/internal/metrics"
)

const maxTextLen = 4000

// MessageStore — персистентность сообщений. Реализуется postgres-репозиторием,
// в тестах — in-memory фейком.
type MessageStore interface {
	Append(ctx context.Context, roomID string, senderID, recipientID *string, text string, listingID *string) (*domain.Message, error)
	ListByRoom(ctx context.Context, roomID string) ([]domain.Message, error)
	ListByParticipant(ctx context.Context, userID string) ([]domain.Message, error)
	HasParticipantMessage(ctx context.Context, roomID, userID string) (bool, error)
	RoomEmpty(ctx context.Context, roomID string) (bool, error)
	Get(ctx context.Context, id string) (*domain.Message, error)
	DeleteMessage(ctx context.Context, id string) error
	DeleteRoom(ctx context.Context, roomID string) error
	ListFiltered(ctx context.Context, roomID, userID string) ([]domain.Message, error)
	ListRecentRooms(ctx context.Context, limit int) ([]domain.RoomSummary, error)
}

// ListingLookup — точечный lookup владельца объявления у соседней подсистемы.
type ListingLookup interface {
	OwnerOf(ctx context.Context, listingID string) (string, error)
}

// Broadcaster — realtime-доставка. Publish — в комнату, PublishAdmin — в
// глобальный админский канал. Обе fire-and-forget.
type Broadcaster interface {
	Publish(roomID string, msg *domain.Message)
	PublishAdmin(msg *domain.Message)
}

type ChatService struct {
	store    MessageStore
	listings ListingLookup
	bus      Broadcaster
}

func NewChatService(store MessageStore, listings ListingLookup, bus Broadcaster) *ChatService {
	return &ChatService{store: store, listings: listings, bus: bus}
}

// Send валидирует, авторизует, сохраняет и публикует сообщение.
// Инвариант: успешный append даёт ровно одну публикацию в комнату и ровно
// одну в админский канал; неуспешный — ни одной.
func (s *ChatService) Send(ctx context.Context, p domain.Principal, roomID string, recipientID *string, text string, listingID *string) (*domain.Message, error) {
	if p.IsAnonymous() {
		return nil, domain.ErrUnauthenticated
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyText
	}
	if len(text) > maxTextLen {
		return nil, domain.ErrTextTooLong
	}

	room, err := domain.ParseRoomID(roomID)
	if err != nil {
		return nil, err
	}
	if err := s.Authorize(ctx, p, room); err != nil {
		return nil, err
	}

	// для комнаты объявления ссылку на него проставляем сами
	if lr, ok := room.(domain.ListingRoom); ok && listingID == nil {
		id := lr.ListingID
		listingID = &id
	}

	var senderID *string
	if uid, ok := p.UserID(); ok {
		senderID = &uid
	}

	msg, err := s.store.Append(ctx, room.ID(), senderID, recipientID, text, listingID)
	if err != nil {
		return nil, fmt.Errorf("store.Append: %w", err)
	}

	metrics.MessagesSent.WithLabelValues(room.Kind()).Inc()
	s.bus.Publish(msg.RoomID, msg)
	s.bus.PublishAdmin(msg)
	return msg, nil
}

// AdminSend — ответ от имени админа: sender_id == nil. Вызывающий уже
// прошёл через admin-secret, поэтому без предиката комнаты.
func (s *ChatService) AdminSend(ctx context.Context, roomID string, toID *string, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyText
	}
	if len(text) > maxTextLen {
		return nil, domain.ErrTextTooLong
	}
	room, err := domain.ParseRoomID(roomID)
	if err != nil {
		return nil, err
	}

	msg, err := s.store.Append(ctx, room.ID(), nil, toID, text, nil)
	if err != nil {
		return nil, fmt.Errorf("store.Append: %w", err)
	}

	metrics.MessagesSent.WithLabelValues(room.Kind()).Inc()
	s.bus.Publish(msg.RoomID, msg)
	s.bus.PublishAdmin(msg)
	return msg, nil
}

// History — история комнаты по возрастанию created_at. Комната без
// сообщений — пустой список, не ошибка: комната — это метка, не сущность.
func (s *ChatService) History(ctx context.Context, p domain.Principal, roomID string) ([]domain.Message, error) {
	room, err := domain.ParseRoomID(roomID)
	if err != nil {
		return nil, err
	}
	if err := s.Authorize(ctx, p, room); err != nil {
		return nil, err
	}
	msgs, err := s.store.ListByRoom(ctx, room.ID())
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}

// DeleteMessage удаляет одно сообщение. Право: отправитель, получатель
// или админ — проверяется на самом сообщении.
func (s *ChatService) DeleteMessage(ctx context.Context, p domain.Principal, messageID string) error {
	if p.IsAnonymous() {
		return domain.ErrUnauthenticated
	}
	m, err := s.store.Get(ctx, messageID)
	if err != nil {
		return err
	}
	if !p.IsAdmin() {
		uid, _ := p.UserID()
		isSender := m.SenderID != nil && *m.SenderID == uid
		isRecipient := m.RecipientID != nil && *m.RecipientID == uid
		if !isSender && !isRecipient {
			return domain.ErrForbidden
		}
	}
	return s.store.DeleteMessage(ctx, messageID)
}

// DeleteRoom сносит все сообщения комнаты — единственный каскад в ядре.
func (s *ChatService) DeleteRoom(ctx context.Context, p domain.Principal, roomID string) error {
	room, err := domain.ParseRoomID(roomID)
	if err != nil {
		return err
	}
	if err := s.Authorize(ctx, p, room); err != nil {
		return err
	}
	return s.store.DeleteRoom(ctx, room.ID())
}

// AdminMessages — модераторский просмотр по комнате и/или участнику.
func (s *ChatService) AdminMessages(ctx context.Context, roomID, userID string) ([]domain.Message, error) {
	return s.store.ListFiltered(ctx, roomID, userID)
}

// AdminRecentRooms — свежие комнаты с последним сообщением и количеством.
func (s *ChatService) AdminRecentRooms(ctx context.Context, limit int) ([]domain.RoomSummary, error) {
	return s.store.ListRecentRooms(ctx, limit)
}
