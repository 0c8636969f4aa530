package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/quillhq/quill-backend/internal/clock"
)

const (
	ephemeralEntropyBytes = 32
	opaqueEntropyBytes    = 64
)

// Ephemeral is a single-use secret. Plaintext is handed out exactly once
// for out-of-band delivery; only Hash is ever persisted.
type Ephemeral struct {
	Plaintext string
	Hash      string
	ExpiresAt time.Time
}

// EphemeralIssuer mints email-verification and password-reset tokens.
// Both flows share the mechanism; they differ only in which user fields
// store the hash.
type EphemeralIssuer struct {
	ttl   time.Duration
	clock clock.Clock
}

func NewEphemeralIssuer(ttl time.Duration, clk clock.Clock) *EphemeralIssuer {
	return &EphemeralIssuer{ttl: ttl, clock: clk}
}

func (e *EphemeralIssuer) Issue() (*Ephemeral, error) {
	raw := make([]byte, ephemeralEntropyBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}

	plaintext := hex.EncodeToString(raw)
	return &Ephemeral{
		Plaintext: plaintext,
		Hash:      HashOf(plaintext),
		ExpiresAt: e.clock.Now().Add(e.ttl),
	}, nil
}

// HashOf returns the storage digest for a plaintext token. A plain hash is
// enough here: tokens are high-entropy and single-use.
func HashOf(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// NewOpaque generates a refresh-token value.
func NewOpaque() (string, error) {
	raw := make([]byte, opaqueEntropyBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
