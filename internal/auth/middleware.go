package auth

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Define a custom type for context keys
type contextKey string

const (
	// PrincipalContextKey is the key used to store the authenticated
	// principal in the context
	PrincipalContextKey contextKey = "principal"
)

type Middleware struct {
	service *Service
}

func NewMiddleware(service *Service) *Middleware {
	return &Middleware{
		service: service,
	}
}

// Authenticate extracts the bearer token from incoming metadata, verifies
// it, and attaches the principal to the context.
func (m *Middleware) Authenticate(ctx context.Context) (context.Context, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing metadata")
	}

	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	token := strings.TrimPrefix(values[0], "Bearer ")

	principal, err := m.service.Authenticate(token)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	return context.WithValue(ctx, PrincipalContextKey, principal), nil
}

// PrincipalFromContext returns the authenticated principal attached by
// Authenticate.
func PrincipalFromContext(ctx context.Context) (*Principal, error) {
	principal, ok := ctx.Value(PrincipalContextKey).(*Principal)
	if !ok {
		return nil, errors.New("principal not found in context")
	}
	return principal, nil
}
