package refreshtoken

import (
	"sync"
	"time"
)

// MockRepository is an in-memory Repository with the same conditional
// update semantics as the SQL implementation.
type MockRepository struct {
	mu     sync.RWMutex
	tokens map[string]*RefreshToken
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		tokens: make(map[string]*RefreshToken),
	}
}

func (r *MockRepository) Create(token *RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *token
	r.tokens[stored.Token] = &stored
	return nil
}

func (r *MockRepository) Find(token string) (*RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.tokens[token]
	if !ok {
		return nil, ErrTokenNotFound
	}
	clone := *rt
	return &clone, nil
}

func (r *MockRepository) Revoke(token, revokedByIP string, at time.Time) (*RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.tokens[token]
	if !ok {
		return nil, ErrTokenNotFound
	}
	if rt.RevokedAt == nil {
		t := at
		rt.RevokedAt = &t
		rt.RevokedByIP = revokedByIP
	}
	clone := *rt
	return &clone, nil
}

func (r *MockRepository) RevokeAndRotate(oldToken, revokedByIP, newToken string, at time.Time) (*RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.tokens[oldToken]
	if !ok {
		return nil, ErrTokenNotFound
	}
	if !rt.IsActive(at) {
		return nil, ErrTokenNotActive
	}

	t := at
	rt.RevokedAt = &t
	rt.RevokedByIP = revokedByIP
	rt.ReplacedByToken = newToken
	rt.IsRotated = true

	clone := *rt
	return &clone, nil
}

func (r *MockRepository) RevokeAllForUser(userID, revokedByIP string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, rt := range r.tokens {
		if rt.UserID == userID && rt.RevokedAt == nil {
			t := at
			rt.RevokedAt = &t
			rt.RevokedByIP = revokedByIP
			count++
		}
	}
	return count, nil
}

// ForUser returns every stored token owned by userID, for test assertions.
func (r *MockRepository) ForUser(userID string) []*RefreshToken {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*RefreshToken
	for _, rt := range r.tokens {
		if rt.UserID == userID {
			clone := *rt
			out = append(out, &clone)
		}
	}
	return out
}
