package domain

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrMessageNotFound = errors.New("message not found")
	ErrListingNotFound = errors.New("listing not found")
	ErrEmptyText       = errors.New("empty message text")
	ErrTextTooLong     = errors.New("message too long")
	ErrInvalidRoomID   = errors.New("invalid room id")
)
