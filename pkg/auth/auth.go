// Package auth manages dashboard accounts and login sessions.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/db"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidRole        = errors.New("invalid role")
	ErrMissingFields      = errors.New("username and password are required")
	ErrSessionInvalid     = errors.New("session invalid or expired")
)

// Session lifetimes.
const (
	SessionTTL    = 12 * time.Hour
	RememberMeTTL = 31 * 24 * time.Hour
)

// Service authenticates users against the account store.
type Service struct {
	repo   *db.Repository
	secret []byte
	Logger *slog.Logger
	Now    func() time.Time
	Cost   int
}

func NewService(repo *db.Repository, secret string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		secret: []byte(secret),
		Logger: logger,
		Now:    time.Now,
		Cost:   bcrypt.DefaultCost,
	}
}

// EnsureDefaultAdmin creates the admin account when no accounts exist. It
// reports whether an account was created.
func (s *Service) EnsureDefaultAdmin(username, password string) (bool, error) {
	n, err := s.repo.CountUsers()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.CreateUser(username, password, db.RoleAdmin, "system"); err != nil {
		return false, err
	}
	s.Logger.Info("default admin account created", "username", username)
	return true, nil
}

// CreateUser adds an account. role must be admin or viewer.
func (s *Service) CreateUser(username, password, role, createdBy string) (*db.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}
	if role != db.RoleAdmin && role != db.RoleViewer {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.Cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	u := &db.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.Now(),
		CreatedBy:    createdBy,
	}
	if err := s.repo.InsertUser(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate checks a username and password.
func (s *Service) Authenticate(username, password string) (*db.User, error) {
	u, err := s.repo.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) Users() ([]db.User, error) {
	return s.repo.ListUsers()
}

func (s *Service) DeleteUser(id string) error {
	return s.repo.DeleteUser(id)
}

// StartSession issues a new session token for the user.
func (s *Service) StartSession(userID string, remember bool) (string, time.Time, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	ttl := SessionTTL
	if remember {
		ttl = RememberMeTTL
	}
	now := s.Now()
	expires := now.Add(ttl)
	err := s.repo.InsertSession(&db.Session{
		TokenHash: s.hash(token),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: expires,
	})
	if err != nil {
		return "", time.Time{}, err
	}
	if n, err := s.repo.DeleteExpiredSessions(now); err == nil && n > 0 {
		s.Logger.Debug("expired sessions removed", "count", n)
	}
	return token, expires, nil
}

// UserForSession resolves a session token to its user.
func (s *Service) UserForSession(token string) (*db.User, error) {
	if token == "" {
		return nil, ErrSessionInvalid
	}
	sess, err := s.repo.GetSession(s.hash(token))
	if err != nil {
		return nil, err
	}
	if sess == nil || !s.Now().Before(sess.ExpiresAt) {
		return nil, ErrSessionInvalid
	}
	u, err := s.repo.GetUserByID(sess.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrSessionInvalid
	}
	return u, nil
}

// EndSession forgets a session token.
func (s *Service) EndSession(token string) error {
	if token == "" {
		return nil
	}
	return s.repo.DeleteSession(s.hash(token))
}

// hash returns the stored key of a session token.
func (s *Service) hash(token string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
