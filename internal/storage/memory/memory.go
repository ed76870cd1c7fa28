// Package memory is an in-process storage backend with the same semantics
// as the postgres and redis ones. Tests use it in place of real databases.
package memory

import (
	"context"
	"sync"
	"time"

	"rillshop/internal/models"
	"rillshop/internal/storage"
)

type Storage struct {
	mu       sync.Mutex
	nextID   int64
	users    map[string]*models.User
	history  []models.ChatHistoryEntry
	sessions map[string]session
	now      func() time.Time
}

type session struct {
	s         models.Session
	expiresAt time.Time
}

func New() *Storage {
	return &Storage{
		users:    make(map[string]*models.User),
		sessions: make(map[string]session),
		now:      time.Now,
	}
}

func (m *Storage) SaveUser(_ context.Context, user models.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.Email]; ok {
		return 0, storage.ErrUserExists
	}

	m.nextID++
	user.ID = m.nextID
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.VerificationToken != nil {
		tok := *user.VerificationToken
		user.VerificationToken = &tok
	}
	m.users[user.Email] = &user

	return user.ID, nil
}

func (m *Storage) User(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[email]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}

	return *u, nil
}

func (m *Storage) UpdatePasswordHash(_ context.Context, userID int64, passHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.ID == userID {
			u.PassHash = passHash
			return nil
		}
	}

	return storage.ErrUserNotFound
}

func (m *Storage) VerifyEmail(_ context.Context, verificationToken string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.VerificationToken != nil && *u.VerificationToken == verificationToken {
			u.VerificationToken = nil
			u.IsVerified = true
			return u.ID, nil
		}
	}

	return 0, storage.ErrTokenNotFound
}

// SetBanned flips the banned flag, the way an administrator would.
func (m *Storage) SetBanned(email string, banned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[email]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.Banned = banned

	return nil
}

// PutUser stores u as is, bypassing registration.
func (m *Storage) PutUser(u models.User) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	u.ID = m.nextID
	m.users[u.Email] = &u

	return u.ID
}

func (m *Storage) SaveChatHistory(_ context.Context, entries []models.ChatHistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history = append(m.history, entries...)

	return nil
}

func (m *Storage) ChatHistory() []models.ChatHistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]models.ChatHistoryEntry(nil), m.history...)
}

func (m *Storage) SaveSession(_ context.Context, tokenHash string, s models.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[tokenHash] = session{s: s, expiresAt: m.now().Add(ttl)}

	return nil
}

func (m *Storage) Session(_ context.Context, tokenHash string) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[tokenHash]
	if !ok || !m.now().Before(s.expiresAt) {
		delete(m.sessions, tokenHash)
		return models.Session{}, storage.ErrSessionNotFound
	}

	return s.s, nil
}

func (m *Storage) DeleteSession(_ context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, tokenHash)

	return nil
}

// SetClock replaces the time source used for session expiry.
func (m *Storage) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.now = now
}
