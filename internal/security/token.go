package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired or not valid yet")
)

// Используется SigningMethodHS256: токены выпускает auth-подсистема с тем же
// общим секретом, мы их только проверяем.
type TokenVerifier struct {
	secret    []byte
	clockSkew time.Duration
}

func NewTokenVerifier(secret string, clockSkew time.Duration) *TokenVerifier {
	return &TokenVerifier{
		secret:    []byte(secret),
		clockSkew: clockSkew,
	}
}

type AccessClaims struct {
	jwt.StandardClaims // Subject несёт id пользователя

	leeway time.Duration
}

// Valid перекрывает StandardClaims.Valid: exp/nbf проверяются с допуском
// leeway на рассинхрон часов между эмитентом и нами. Без перекрытия
// ParseWithClaims отбросил бы токен до нашей проверки.
func (c *AccessClaims) Valid() error {
	now := time.Now()
	if c.ExpiresAt != 0 && now.After(time.Unix(c.ExpiresAt, 0).Add(c.leeway)) {
		return ErrTokenExpired
	}
	if c.NotBefore != 0 && now.Before(time.Unix(c.NotBefore, 0).Add(-c.leeway)) {
		return ErrTokenExpired
	}
	return nil
}

// ParseAndValidate проверяет подпись и временные клеймы и возвращает claims.
func (v *TokenVerifier) ParseAndValidate(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{leeway: v.clockSkew}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// SubjectAsUserID достаёт id пользователя из sub.
func SubjectAsUserID(claims *AccessClaims) (string, error) {
	if claims == nil || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// Sign выпускает токен c sub=userID и exp=now+ttl. Основной эмитент токенов
// живёт в auth-подсистеме; здесь это нужно админской консоли и тестам.
func (v *TokenVerifier) Sign(userID string, now time.Time, ttl time.Duration) (string, error) {
	claims := &AccessClaims{
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			IssuedAt:  now.Unix(),
			NotBefore: now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
