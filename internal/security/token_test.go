package security

import (
	"errors"
	"testing"
	"time"
)

// Допуск clockSkew должен реально работать на exp/nbf: ParseWithClaims
// валидирует клеймы нашим AccessClaims.Valid, не стандартным.
func TestTokenVerifier_ClockSkewLeeway(t *testing.T) {
	v := NewTokenVerifier("test-secret", 30*time.Second)

	// истёк 10s назад — внутри допуска
	justExpired, err := v.Sign("u1", time.Now().Add(-time.Hour-10*time.Second), time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := v.ParseAndValidate(justExpired)
	if err != nil {
		t.Fatalf("token within leeway rejected: %v", err)
	}
	if claims.Subject != "u1" {
		t.Fatalf("unexpected subject: %q", claims.Subject)
	}

	// истёк далеко за допуском
	longExpired, _ := v.Sign("u1", time.Now().Add(-2*time.Hour), time.Hour)
	if _, err := v.ParseAndValidate(longExpired); err == nil {
		t.Fatal("token past leeway must be rejected")
	}

	// nbf чуть в будущем — часы эмитента спешат, но в пределах допуска
	early, _ := v.Sign("u1", time.Now().Add(10*time.Second), time.Hour)
	if _, err := v.ParseAndValidate(early); err != nil {
		t.Fatalf("nbf within leeway rejected: %v", err)
	}

	// нулевой допуск — просроченный токен отбрасывается сразу
	strict := NewTokenVerifier("test-secret", 0)
	stale, _ := strict.Sign("u1", time.Now().Add(-time.Hour-time.Minute), time.Hour)
	if _, err := strict.ParseAndValidate(stale); err == nil {
		t.Fatal("zero leeway must reject expired token")
	}
}

func TestTokenVerifier_RejectsWrongMethodAndSecret(t *testing.T) {
	v := NewTokenVerifier("test-secret", time.Second)

	foreign := NewTokenVerifier("other-secret", time.Second)
	tok, _ := foreign.Sign("u1", time.Now(), time.Hour)
	if _, err := v.ParseAndValidate(tok); err == nil {
		t.Fatal("foreign signature accepted")
	}

	if _, err := v.ParseAndValidate("not.a.jwt"); err == nil {
		t.Fatal("garbage accepted")
	}
	if _, err := SubjectAsUserID(&AccessClaims{}); !errors.Is(err, ErrInvalidToken) {
		t.Fatal("empty subject must be invalid")
	}
}
