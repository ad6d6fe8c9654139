// Package auth выдаёт и проверяет явные права на изменение данных.
//
// Вместо общего пароля в каждом запросе администратор один раз входит по
// паролю и получает короткоживущий JWT; из него получается Capability,
// которая передаётся в каждую изменяющую операцию.
package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrForbidden     = errors.New("forbidden")
	ErrWrongPassword = errors.New("wrong password")
	ErrInvalidToken  = errors.New("invalid token")
	ErrNotConfigured = errors.New("admin login is not configured")
)

type Scope string

const ScopeWrite Scope = "write"

// Capability — право выполнять изменения, выданное конкретному субъекту.
type Capability struct {
	Subject   string
	Scopes    []Scope
	ExpiresAt time.Time
}

func (c Capability) Allows(s Scope, now time.Time) bool {
	if !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt) {
		return false
	}
	return slices.Contains(c.Scopes, s)
}

// Require — проверка в начале каждой изменяющей операции.
func Require(c *Capability, s Scope) error {
	if c == nil {
		return fmt.Errorf("%w: no capability", ErrForbidden)
	}
	if !c.Allows(s, time.Now()) {
		return fmt.Errorf("%w: %q lacks %q", ErrForbidden, c.Subject, s)
	}
	return nil
}

// Local — право оператора, запускающего CLI на сервере с доступом к БД.
func Local(subject string) Capability {
	return Capability{Subject: subject, Scopes: []Scope{ScopeWrite}}
}

type claims struct {
	jwt.RegisteredClaims
	Scopes []Scope `json:"scopes"`
}

type Issuer struct {
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

// NewIssuer: passwordHash — bcrypt-хэш пароля администратора, secret — ключ подписи токенов.
func NewIssuer(passwordHash, secret string, ttl time.Duration) *Issuer {
	return &Issuer{
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		ttl:          ttl,
		now:          time.Now,
	}
}

// Login проверяет пароль и выпускает токен с правом записи.
func (i *Issuer) Login(password string) (string, Capability, error) {
	if len(i.passwordHash) == 0 || len(i.secret) == 0 {
		return "", Capability{}, ErrNotConfigured
	}
	if err := bcrypt.CompareHashAndPassword(i.passwordHash, []byte(password)); err != nil {
		return "", Capability{}, ErrWrongPassword
	}

	now := i.now()
	c := Capability{Subject: "admin", Scopes: []Scope{ScopeWrite}, ExpiresAt: now.Add(i.ttl)}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
		Scopes: c.Scopes,
	})
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", Capability{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, c, nil
}

// Verify разбирает токен и возвращает записанное в нём право.
func (i *Issuer) Verify(token string) (Capability, error) {
	if len(i.secret) == 0 {
		return Capability{}, ErrNotConfigured
	}
	var cl claims
	_, err := jwt.ParseWithClaims(token, &cl, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil {
		return Capability{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	c := Capability{Subject: cl.Subject, Scopes: cl.Scopes}
	if cl.ExpiresAt != nil {
		c.ExpiresAt = cl.ExpiresAt.Time
	}
	return c, nil
}

// HashPassword — для команды hash-password: результат кладётся в ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
