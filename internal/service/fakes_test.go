package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Emmymoks/swift-emc-marketplace/internal/domain"
)

// memStore — in-memory реализация MessageStore для тестов.
type memStore struct {
	mu   sync.Mutex
	msgs []domain.Message
	seq  int

	failNext bool
}

var errStoreDown = errors.New("store down")

func newMemStore() *memStore {
	return &memStore{}
}

func (s *memStore) Append(ctx context.Context, roomID string, senderID, recipientID *string, text string, listingID *string) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext {
		s.failNext = false
		return nil, errStoreDown
	}
	s.seq++
	m := domain.Message{
		ID:          fmt.Sprintf("m%03d", s.seq),
		RoomID:      roomID,
		SenderID:    senderID,
		RecipientID: recipientID,
		Text:        text,
		ListingID:   listingID,
		// растущий timestamp, чтобы порядок был детерминирован
		CreatedAt: time.Unix(1700000000, 0).Add(time.Duration(s.seq) * time.Second),
	}
	s.msgs = append(s.msgs, m)
	return &m, nil
}

func (s *memStore) ListByRoom(ctx context.Context, roomID string) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Message
	for _, m := range s.msgs {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) ListByParticipant(ctx context.Context, userID string) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Message
	for i := len(s.msgs) - 1; i >= 0; i-- {
		m := s.msgs[i]
		if (m.SenderID != nil && *m.SenderID == userID) || (m.RecipientID != nil && *m.RecipientID == userID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) HasParticipantMessage(ctx context.Context, roomID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.msgs {
		if m.RoomID != roomID {
			continue
		}
		if (m.SenderID != nil && *m.SenderID == userID) || (m.RecipientID != nil && *m.RecipientID == userID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) RoomEmpty(ctx context.Context, roomID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.msgs {
		if m.RoomID == roomID {
			return false, nil
		}
	}
	return true, nil
}

func (s *memStore) Get(ctx context.Context, id string) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.msgs {
		if m.ID == id {
			cp := m
			return &cp, nil
		}
	}
	return nil, domain.ErrMessageNotFound
}

func (s *memStore) DeleteMessage(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.msgs {
		if m.ID == id {
			s.msgs = append(s.msgs[:i], s.msgs[i+1:]...)
			return nil
		}
	}
	return domain.ErrMessageNotFound
}

func (s *memStore) DeleteRoom(ctx context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.msgs[:0]
	for _, m := range s.msgs {
		if m.RoomID != roomID {
			kept = append(kept, m)
		}
	}
	s.msgs = kept
	return nil
}

func (s *memStore) ListFiltered(ctx context.Context, roomID, userID string) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Message
	for _, m := range s.msgs {
		if roomID != "" && m.RoomID != roomID {
			continue
		}
		if userID != "" {
			isParty := (m.SenderID != nil && *m.SenderID == userID) || (m.RecipientID != nil && *m.RecipientID == userID)
			if !isParty {
				continue
			}
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *memStore) ListRecentRooms(ctx context.Context, limit int) ([]domain.RoomSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	last := map[string]domain.Message{}
	count := map[string]int64{}
	for _, m := range s.msgs {
		last[m.RoomID] = m
		count[m.RoomID]++
	}
	var out []domain.RoomSummary
	for roomID, m := range last {
		out = append(out, domain.RoomSummary{RoomID: roomID, LastMessage: m, Count: count[roomID]})
	}
	return out, nil
}

// memListings — фейковый lookup владельцев объявлений.
type memListings struct {
	owners map[string]string // listingID -> ownerID
}

func (l *memListings) OwnerOf(ctx context.Context, listingID string) (string, error) {
	owner, ok := l.owners[listingID]
	if !ok {
		return "", domain.ErrListingNotFound
	}
	return owner, nil
}

// recordingBus фиксирует каждую публикацию для проверки dual delivery.
type recordingBus struct {
	mu    sync.Mutex
	room  []publishedEvent
	admin []domain.Message
}

type publishedEvent struct {
	roomID string
	msg    domain.Message
}

func (b *recordingBus) Publish(roomID string, msg *domain.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.room = append(b.room, publishedEvent{roomID: roomID, msg: *msg})
}

func (b *recordingBus) PublishAdmin(msg *domain.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.admin = append(b.admin, *msg)
}

func newFixture(owners map[string]string) (*ChatService, *memStore, *recordingBus) {
	store := newMemStore()
	bus := &recordingBus{}
	svc := NewChatService(store, &memListings{owners: owners}, bus)
	return svc, store, bus
}

func strptr(s string) *string { return &s }
