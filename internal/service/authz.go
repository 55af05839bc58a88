package service

import (
	"context"
	"fmt"

	"github.com/Emmymoks/swift-emc-marketplace/internal/domain"
)

// Authorize решает, может ли principal читать/писать/удалять комнату.
// Предикат общий для чтения, записи и удаления всей комнаты; отказ — всегда
// ErrForbidden, чтобы не отличать «нет комнаты» от «нет прав».
func (s *ChatService) Authorize(ctx context.Context, p domain.Principal, room domain.Room) error {
	if p.IsAdmin() {
		return nil
	}
	if p.IsAnonymous() {
		return domain.ErrUnauthenticated
	}
	uid, _ := p.UserID()

	switch r := room.(type) {
	case domain.DirectRoom:
		if !r.Has(uid) {
			return domain.ErrForbidden
		}
		return nil

	case domain.SupportRoom:
		if r.UserID != uid {
			return domain.ErrForbidden
		}
		return nil

	case domain.ListingRoom:
		return s.authorizeListing(ctx, uid, r)

	default:
		return domain.ErrInvalidRoomID
	}
}

// authorizeListing: владелец объявления, участник с уже существующим
// сообщением, либо bootstrap — пустую комнату может открыть любой
// аутентифицированный пользователь. Однажды написав, доступ сохраняется
// навсегда (через проверку prior message).
func (s *ChatService) authorizeListing(ctx context.Context, uid string, r domain.ListingRoom) error {
	owner, err := s.listings.OwnerOf(ctx, r.ListingID)
	if err != nil {
		return err
	}
	if owner == uid {
		return nil
	}

	has, err := s.store.HasParticipantMessage(ctx, r.ID(), uid)
	if err != nil {
		return fmt.Errorf("store.HasParticipantMessage: %w", err)
	}
	if has {
		return nil
	}

	empty, err := s.store.RoomEmpty(ctx, r.ID())
	if err != nil {
		return fmt.Errorf("store.RoomEmpty: %w", err)
	}
	if empty {
		return nil
	}
	return domain.ErrForbidden
}
