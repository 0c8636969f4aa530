package user

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_Valid(t *testing.T) {
	tests := []struct {
		role  Role
		valid bool
	}{
		{RoleUser, true},
		{RoleAdmin, true},
		{RoleModerator, true},
		{Role("superuser"), false},
		{Role(""), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, tt.role.Valid(), "role %q", tt.role)
	}
}

func TestUser_JSONHidesCredentialFields(t *testing.T) {
	now := time.Now()
	u := User{
		ID:                         "user-1",
		Username:                   "alice",
		Email:                      "alice@example.com",
		PasswordHash:               "$2a$10$secret",
		Role:                       RoleUser,
		PasswordChangedAt:          &now,
		EmailVerificationTokenHash: "deadbeef",
		PasswordResetTokenHash:     "cafebabe",
	}

	raw, err := json.Marshal(u)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))

	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")
	assert.NotContains(t, fields, "passwordHash")
	assert.NotContains(t, fields, "PasswordHash")
	assert.NotContains(t, string(raw), "secret")
	assert.NotContains(t, string(raw), "deadbeef")
	assert.NotContains(t, string(raw), "cafebabe")
}

func TestMockRepository_CaseInsensitiveLookup(t *testing.T) {
	repo := NewMockRepository()
	require.NoError(t, repo.Create(&User{
		Username:     "Alice",
		Email:        "Alice@Example.com",
		PasswordHash: "hash",
		Role:         RoleUser,
	}))

	for _, identifier := range []string{"alice", "ALICE", "alice@example.com", "Alice@EXAMPLE.com"} {
		u, err := repo.FindByIdentifier(identifier)
		require.NoError(t, err, "identifier %q", identifier)
		assert.Equal(t, "Alice", u.Username)
	}

	_, err := repo.FindByIdentifier("bob")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMockRepository_DuplicateRejected(t *testing.T) {
	repo := NewMockRepository()
	require.NoError(t, repo.Create(&User{Username: "alice", Email: "alice@example.com"}))

	err := repo.Create(&User{Username: "ALICE", Email: "other@example.com"})
	assert.ErrorIs(t, err, ErrUserExists)

	err = repo.Create(&User{Username: "other", Email: "ALICE@example.com"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestMockRepository_TokenLookupHonorsExpiry(t *testing.T) {
	repo := NewMockRepository()
	u := &User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, repo.Create(u))

	now := time.Now()
	require.NoError(t, repo.SetResetToken(u.ID, "resethash", now.Add(10*time.Minute)))
	require.NoError(t, repo.SetVerificationToken(u.ID, "verifyhash", now.Add(10*time.Minute)))

	found, err := repo.FindByResetTokenHash("resethash", now)
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = repo.FindByResetTokenHash("resethash", now.Add(10*time.Minute))
	assert.ErrorIs(t, err, ErrUserNotFound, "cutoff at expiry is exclusive")

	_, err = repo.FindByVerificationTokenHash("verifyhash", now.Add(11*time.Minute))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMockRepository_MarkEmailVerifiedClearsToken(t *testing.T) {
	repo := NewMockRepository()
	u := &User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, repo.Create(u))

	now := time.Now()
	require.NoError(t, repo.SetVerificationToken(u.ID, "verifyhash", now.Add(10*time.Minute)))
	require.NoError(t, repo.MarkEmailVerified(u.ID))

	stored, err := repo.FindByID(u.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsEmailVerified)
	assert.Empty(t, stored.EmailVerificationTokenHash)
	assert.Nil(t, stored.EmailVerificationExpiresAt)
}

func TestMockRepository_UpdatePasswordClearsResetToken(t *testing.T) {
	repo := NewMockRepository()
	u := &User{Username: "alice", Email: "alice@example.com", PasswordHash: "old"}
	require.NoError(t, repo.Create(u))

	now := time.Now()
	require.NoError(t, repo.SetResetToken(u.ID, "resethash", now.Add(10*time.Minute)))
	require.NoError(t, repo.UpdatePassword(u.ID, "new", now))

	stored, err := repo.FindByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", stored.PasswordHash)
	require.NotNil(t, stored.PasswordChangedAt)
	assert.True(t, stored.PasswordChangedAt.Equal(now))
	assert.Empty(t, stored.PasswordResetTokenHash)
	assert.Nil(t, stored.PasswordResetExpiresAt)
}
