package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
	"unicode"

	"github.com/TheX6/partnerkin-super-bot/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const adminBcryptCost = 12

type adminSession struct {
	ID        string
	Token     string
	ExpiresAt time.Time
}

// AdminSession is returned on a successful login.
type AdminSession struct {
	Token     string
	ExpiresAt time.Time
}

// AdminAuth gates sensitive admin operations behind a password and a
// short-lived signed session. A session counts only while it is both present
// in the in-memory registry and decodes as a valid unexpired token.
type AdminAuth struct {
	*deps
	secret       []byte
	ttl          time.Duration
	fallbackHash []byte

	mu       sync.Mutex
	sessions map[int64]adminSession
}

func newAdminAuth(d *deps) (*AdminAuth, error) {
	a := &AdminAuth{
		deps:     d,
		secret:   []byte(d.cfg.JWTSecret),
		ttl:      d.cfg.AdminSessionTTL,
		sessions: make(map[int64]adminSession),
	}
	if d.cfg.AdminPassword != "" {
		if !strongPassword(d.cfg.AdminPassword) {
			d.log.Warn("ADMIN_PASSWORD is weak: use upper and lower case letters, digits and special characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(d.cfg.AdminPassword), adminBcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
		a.fallbackHash = hash
	}
	return a, nil
}

func strongPassword(p string) bool {
	var upper, lower, digit, special bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	return upper && lower && digit && special
}

func (a *AdminAuth) IsAdmin(ctx context.Context, telegramID int64) (bool, error) {
	return a.store.IsAdmin(ctx, telegramID)
}

// SetPassword stores a personal password hash for an admin.
func (a *AdminAuth) SetPassword(ctx context.Context, telegramID int64, password string) error {
	if len(password) < 8 {
		return invalid("password", "Пароль должен быть не короче 8 символов")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), adminBcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return a.store.SetAdminPasswordHash(ctx, telegramID, string(hash))
}

// Login checks the password against the user's personal hash, falling back
// to ADMIN_PASSWORD, then grants admin rights and opens a session. Every
// attempt counts against the login limiter; a locked user is refused before
// the password is compared.
func (a *AdminAuth) Login(ctx context.Context, telegramID int64, username, password string) (*AdminSession, error) {
	ok, err := a.logins.Allow(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to check login attempts: %w", err)
	}
	if !ok {
		a.log.Warn("admin login locked", "user_id", telegramID)
		return nil, ErrLoginLocked
	}
	if password == "" || len(password) > 256 {
		return nil, ErrBadPassword
	}
	hash, err := a.store.GetAdminPasswordHash(ctx, telegramID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if hash == "" {
		hash = string(a.fallbackHash)
	}
	if hash == "" {
		return nil, ErrBadPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrBadPassword
	}
	if err := a.store.GrantAdmin(ctx, telegramID, username); err != nil {
		return nil, fmt.Errorf("failed to grant admin: %w", err)
	}
	return a.issue(telegramID)
}

func (a *AdminAuth) issue(telegramID int64) (*AdminSession, error) {
	now := a.now()
	sid := uuid.NewString()
	exp := now.Add(a.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(telegramID, 10),
		ID:        sid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign admin session: %w", err)
	}

	a.mu.Lock()
	a.sessions[telegramID] = adminSession{ID: sid, Token: token, ExpiresAt: exp}
	a.mu.Unlock()

	return &AdminSession{Token: token, ExpiresAt: exp}, nil
}

// Verify requires both a registry hit for this exact token and a token that
// decodes with a matching subject and has not expired.
func (a *AdminAuth) Verify(telegramID int64, token string) error {
	a.mu.Lock()
	sess, ok := a.sessions[telegramID]
	if ok && a.now().After(sess.ExpiresAt) {
		delete(a.sessions, telegramID)
		ok = false
	}
	a.mu.Unlock()
	if !ok || sess.Token != token {
		return ErrSessionInvalid
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return ErrSessionInvalid
	}
	if claims.Subject != strconv.FormatInt(telegramID, 10) || claims.ID != sess.ID {
		return ErrSessionInvalid
	}
	return nil
}

// VerifyActive checks the session the user currently holds.
func (a *AdminAuth) VerifyActive(telegramID int64) error {
	a.mu.Lock()
	sess, ok := a.sessions[telegramID]
	a.mu.Unlock()
	if !ok {
		return ErrSessionInvalid
	}
	return a.Verify(telegramID, sess.Token)
}

// Logout drops the session and revokes the admin grant.
func (a *AdminAuth) Logout(ctx context.Context, telegramID int64) error {
	a.mu.Lock()
	delete(a.sessions, telegramID)
	a.mu.Unlock()
	return a.store.RevokeAdmin(ctx, telegramID)
}

// Sweep removes expired sessions and returns how many were dropped.
func (a *AdminAuth) Sweep() int {
	now := a.now()
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for id, s := range a.sessions {
		if now.After(s.ExpiresAt) {
			delete(a.sessions, id)
			n++
		}
	}
	return n
}

func (a *AdminAuth) Secret() []byte {
	return a.secret
}
