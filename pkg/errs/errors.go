package errs

import (
	"errors"
	"net/http"

	"github.com/Emmymoks/swift-emc-marketplace/internal/domain"
)

// ToHTTP — единая точка маппинга доменных ошибок в статус-коды.
// Всё неопознанное — 500 (transient store и прочее).
func ToHTTP(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrMessageNotFound),
		errors.Is(err, domain.ErrListingNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyText),
		errors.Is(err, domain.ErrTextTooLong),
		errors.Is(err, domain.ErrInvalidRoomID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
