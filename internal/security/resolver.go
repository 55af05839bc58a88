package security

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/Emmymoks/swift-emc-marketplace/internal/domain"
)

// UserLookup — точечная проверка существования пользователя.
type UserLookup interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

// Resolver превращает credential-материал запроса в Principal.
// Битый/просроченный токен и токен удалённого пользователя схлопываются
// в Anonymous — это ожидаемый трафик, не ошибка.
type Resolver struct {
	verifier    *TokenVerifier
	adminSecret string
	users       UserLookup
}

func NewResolver(verifier *TokenVerifier, adminSecret string, users UserLookup) *Resolver {
	return &Resolver{
		verifier:    verifier,
		adminSecret: adminSecret,
		users:       users,
	}
}

// Resolve: сперва админский секрет (точное совпадение строки), затем bearer.
func (r *Resolver) Resolve(ctx context.Context, bearer, adminSecret string) domain.Principal {
	if r.IsAdminSecret(adminSecret) {
		return domain.Admin
	}

	token := strings.TrimSpace(strings.TrimPrefix(bearer, "Bearer "))
	if token == "" {
		return domain.Anonymous
	}

	claims, err := r.verifier.ParseAndValidate(token)
	if err != nil {
		return domain.Anonymous
	}
	userID, err := SubjectAsUserID(claims)
	if err != nil {
		return domain.Anonymous
	}

	if r.users != nil {
		ok, err := r.users.Exists(ctx, userID)
		if err != nil || !ok {
			return domain.Anonymous
		}
	}
	return domain.Regular(userID)
}

func (r *Resolver) IsAdminSecret(secret string) bool {
	if secret == "" || r.adminSecret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(r.adminSecret)) == 1
}
