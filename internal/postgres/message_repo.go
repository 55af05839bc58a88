package postgres

import (
	"context"
	"errors"

	"github.com/Emmymoks/swift-emc-marketplace/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Append сохраняет сообщение одним INSERT — атомарно на уровне строки,
// параллельные записи в одну комнату просто коммитятся в порядке прихода.
func (r *MessageRepository) Append(ctx context.Context, roomID string, senderID, recipientID *string, text string, listingID *string) (*domain.Message, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO messages (room_id, sender_id, recipient_id, text, listing_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, room_id, sender_id, recipient_id, text, listing_id, created_at
	`, roomID, senderID, recipientID, text, listingID)

	var m domain.Message
	if err := scanMessage(row, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByRoom — история комнаты по возрастанию; ties по id, чтобы порядок
// был стабильным при одинаковом created_at.
func (r *MessageRepository) ListByRoom(ctx context.Context, roomID string) ([]domain.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, room_id, sender_id, recipient_id, text, listing_id, created_at
		FROM messages
		WHERE room_id = $1
		ORDER BY created_at ASC, id ASC
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

// ListByParticipant — все сообщения, где пользователь отправитель или
// получатель, от новых к старым. Источник для инбокса.
func (r *MessageRepository) ListByParticipant(ctx context.Context, userID string) ([]domain.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, room_id, sender_id, recipient_id, text, listing_id, created_at
		FROM messages
		WHERE sender_id = $1 OR recipient_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

func (r *MessageRepository) HasParticipantMessage(ctx context.Context, roomID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM messages
			WHERE room_id = $1 AND (sender_id = $2 OR recipient_id = $2)
		)
	`, roomID, userID).Scan(&exists)
	return exists, err
}

func (r *MessageRepository) RoomEmpty(ctx context.Context, roomID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM messages WHERE room_id = $1)`,
		roomID).Scan(&exists)
	return !exists, err
}

func (r *MessageRepository) Get(ctx context.Context, id string) (*domain.Message, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, room_id, sender_id, recipient_id, text, listing_id, created_at
		FROM messages
		WHERE id = $1
	`, id)

	var m domain.Message
	if err := scanMessage(row, &m); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MessageRepository) DeleteMessage(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

// DeleteRoom удаляет все сообщения комнаты. Пустая комната — не ошибка.
func (r *MessageRepository) DeleteRoom(ctx context.Context, roomID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM messages WHERE room_id = $1`, roomID)
	return err
}

// ListFiltered — админский просмотр: по комнате, по участнику или всё
// подряд, по возрастанию времени.
func (r *MessageRepository) ListFiltered(ctx context.Context, roomID, userID string) ([]domain.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, room_id, sender_id, recipient_id, text, listing_id, created_at
		FROM messages
		WHERE ($1 = '' OR room_id = $1)
		  AND ($2 = '' OR sender_id = $2 OR recipient_id = $2)
		ORDER BY created_at ASC, id ASC
	`, roomID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

// ListRecentRooms возвращает комнаты с последним сообщением и количеством,
// от свежих к старым. Админский обзор переписок.
func (r *MessageRepository) ListRecentRooms(ctx context.Context, limit int) ([]domain.RoomSummary, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, room_id, sender_id, recipient_id, text, listing_id, created_at, cnt
		FROM (
			SELECT DISTINCT ON (m.room_id)
			       m.id, m.room_id, m.sender_id, m.recipient_id, m.text, m.listing_id, m.created_at,
			       c.cnt
			FROM messages m
			JOIN (
				SELECT room_id, COUNT(*) AS cnt FROM messages GROUP BY room_id
			) c ON c.room_id = m.room_id
			ORDER BY m.room_id, m.created_at DESC, m.id DESC
		) t
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RoomSummary
	for rows.Next() {
		var s domain.RoomSummary
		m := &s.LastMessage
		if err := rows.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.RecipientID, &m.Text, &m.ListingID, &m.CreatedAt, &s.Count); err != nil {
			return nil, err
		}
		s.RoomID = m.RoomID
		out = append(out, s)
	}
	return out, rows.Err()
}

type messageScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row messageScanner, m *domain.Message) error {
	return row.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.RecipientID, &m.Text, &m.ListingID, &m.CreatedAt)
}

func collectMessages(rows pgx.Rows) ([]domain.Message, error) {
	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := scanMessage(rows, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
