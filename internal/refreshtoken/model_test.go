package refreshtoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshToken_IsActive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	revoked := now.Add(-time.Hour)

	tests := []struct {
		name  string
		token RefreshToken
		want  bool
	}{
		{
			name:  "active",
			token: RefreshToken{ExpiresAt: now.Add(time.Hour)},
			want:  true,
		},
		{
			name:  "expired one millisecond ago",
			token: RefreshToken{ExpiresAt: now.Add(-time.Millisecond)},
			want:  false,
		},
		{
			name:  "expires exactly now",
			token: RefreshToken{ExpiresAt: now},
			want:  false,
		},
		{
			name:  "revoked but not expired",
			token: RefreshToken{ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.token.IsActive(now))
		})
	}
}

func TestMockRepository_RevokeIdempotent(t *testing.T) {
	repo := NewMockRepository()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(&RefreshToken{
		Token:     "tok-1",
		UserID:    "user-1",
		ExpiresAt: now.Add(time.Hour),
	}))

	first, err := repo.Revoke("tok-1", "1.2.3.4", now)
	require.NoError(t, err)
	require.NotNil(t, first.RevokedAt)

	// Second revoke keeps the original revocation metadata.
	second, err := repo.Revoke("tok-1", "5.6.7.8", now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, first.RevokedAt, second.RevokedAt)
	assert.Equal(t, "1.2.3.4", second.RevokedByIP)
}

func TestMockRepository_RevokeAndRotate_ExactlyOnce(t *testing.T) {
	repo := NewMockRepository()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(&RefreshToken{
		Token:     "tok-1",
		UserID:    "user-1",
		ExpiresAt: now.Add(time.Hour),
	}))

	rotated, err := repo.RevokeAndRotate("tok-1", "1.2.3.4", "tok-2", now)
	require.NoError(t, err)
	assert.True(t, rotated.IsRotated)
	assert.Equal(t, "tok-2", rotated.ReplacedByToken)

	// Replay of the rotated token fails closed.
	_, err = repo.RevokeAndRotate("tok-1", "1.2.3.4", "tok-3", now)
	assert.ErrorIs(t, err, ErrTokenNotActive)

	_, err = repo.RevokeAndRotate("missing", "1.2.3.4", "tok-3", now)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestMockRepository_RevokeAllForUser(t *testing.T) {
	repo := NewMockRepository()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, tok := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(&RefreshToken{
			Token:     tok,
			UserID:    "user-1",
			ExpiresAt: now.Add(time.Hour),
		}))
	}
	require.NoError(t, repo.Create(&RefreshToken{
		Token:     "other",
		UserID:    "user-2",
		ExpiresAt: now.Add(time.Hour),
	}))

	count, err := repo.RevokeAllForUser("user-1", "1.2.3.4", now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	for _, rt := range repo.ForUser("user-1") {
		assert.False(t, rt.IsActive(now))
	}
	for _, rt := range repo.ForUser("user-2") {
		assert.True(t, rt.IsActive(now))
	}
}
