package postgres

import (
	"context"
	"errors"

	"github.com/Emmymoks/swift-emc-marketplace/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Точечные lookup-ы в таблицы соседних подсистем (users, listings).
// Ядро сообщений хранит только их id и ничего в них не пишет.

type ListingRepository struct {
	db *pgxpool.Pool
}

func NewListingRepository(db *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{db: db}
}

// OwnerOf возвращает id владельца объявления.
func (r *ListingRepository) OwnerOf(ctx context.Context, listingID string) (string, error) {
	var owner string
	err := r.db.QueryRow(ctx,
		`SELECT owner_id FROM listings WHERE id = $1`,
		listingID).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrListingNotFound
		}
		return "", err
	}
	return owner, nil
}

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Exists — жив ли ещё пользователь; токен удалённого схлопывается в Anonymous.
func (r *UserRepository) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`,
		userID).Scan(&exists)
	return exists, err
}
