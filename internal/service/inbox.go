package service

import (
	"context"
	"fmt"

	"github.com/Emmymoks/swift-emc-marketplace/internal/domain"
)

// Conversations — производный инбокс: последнее сообщение каждой комнаты
// пользователя плюс собеседник. Ничего не материализуем — пересчитываем
// по ListByParticipant на каждый запрос.
func (s *ChatService) Conversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	msgs, err := s.store.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("store.ListByParticipant: %w", err)
	}

	// msgs отсортированы от новых к старым: первое вхождение комнаты —
	// её превью, порядок комнат — по свежести превью.
	seen := make(map[string]struct{}, len(msgs))
	convs := make([]domain.Conversation, 0, 8)

	for _, m := range msgs {
		if m.RoomID == "" {
			continue
		}
		if _, ok := seen[m.RoomID]; ok {
			continue
		}
		seen[m.RoomID] = struct{}{}

		var partner *string
		if m.SenderID != nil && *m.SenderID == userID {
			partner = m.RecipientID
		} else {
			partner = m.SenderID
		}
		// комната без собеседника (например, support в сторону админа)
		// в инбокс не попадает
		if partner == nil {
			continue
		}

		convs = append(convs, domain.Conversation{
			RoomID:      m.RoomID,
			PartnerID:   *partner,
			LastMessage: m.Text,
			At:          m.CreatedAt,
		})
	}
	return convs, nil
}
