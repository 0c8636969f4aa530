package token

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quillhq/quill-backend/internal/clock"
	"github.com/quillhq/quill-backend/internal/config"
	"github.com/quillhq/quill-backend/internal/user"
)

// ErrInvalidToken covers every verification failure: bad signature,
// expiry, malformed payload. Callers must not learn which.
var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID string    `json:"uid"`
	Email  string    `json:"email"`
	Role   user.Role `json:"role"`
	jwt.RegisteredClaims
}

// Signer issues and verifies stateless access tokens. The signing key is
// loaded once at construction and never rotated at runtime.
type Signer struct {
	secret []byte
	config *config.AuthConfig
	clock  clock.Clock
}

func NewSigner(cfg *config.AuthConfig, clk clock.Clock) *Signer {
	return &Signer{
		secret: []byte(cfg.JWTSecret),
		config: cfg,
		clock:  clk,
	}
}

func (s *Signer) Issue(userID, email string, role user.Role) (string, error) {
	now := s.clock.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify fails closed: any parse, signature, or expiry problem yields
// ErrInvalidToken.
func (s *Signer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now))

	if err != nil {
		return nil, ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" || claims.IssuedAt == nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
