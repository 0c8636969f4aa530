package user

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockRepository is an in-memory Repository for tests.
type MockRepository struct {
	mu    sync.RWMutex
	users map[string]*User // keyed by ID
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		users: make(map[string]*User),
	}
}

func (r *MockRepository) Create(user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Username, user.Username) || strings.EqualFold(u.Email, user.Email) {
			return ErrUserExists
		}
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	stored := *user
	r.users[stored.ID] = &stored
	return nil
}

func (r *MockRepository) FindByID(id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *MockRepository) FindByIdentifier(identifier string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, identifier) || strings.EqualFold(u.Username, identifier) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MockRepository) FindByResetTokenHash(hash string, now time.Time) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.PasswordResetTokenHash == hash &&
			u.PasswordResetExpiresAt != nil && u.PasswordResetExpiresAt.After(now) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MockRepository) FindByVerificationTokenHash(hash string, now time.Time) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.EmailVerificationTokenHash == hash &&
			u.EmailVerificationExpiresAt != nil && u.EmailVerificationExpiresAt.After(now) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MockRepository) UpdateLastLogin(id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	t := at
	u.LastLoginAt = &t
	return nil
}

func (r *MockRepository) SetVerificationToken(id, hash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	t := expiresAt
	u.EmailVerificationTokenHash = hash
	u.EmailVerificationExpiresAt = &t
	return nil
}

func (r *MockRepository) SetResetToken(id, hash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	t := expiresAt
	u.PasswordResetTokenHash = hash
	u.PasswordResetExpiresAt = &t
	return nil
}

func (r *MockRepository) MarkEmailVerified(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.IsEmailVerified = true
	u.EmailVerificationTokenHash = ""
	u.EmailVerificationExpiresAt = nil
	return nil
}

func (r *MockRepository) UpdatePassword(id, passwordHash string, changedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	t := changedAt
	u.PasswordHash = passwordHash
	u.PasswordChangedAt = &t
	u.PasswordResetTokenHash = ""
	u.PasswordResetExpiresAt = nil
	return nil
}
