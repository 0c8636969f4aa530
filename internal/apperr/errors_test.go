package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "conflict",
			err:  Conflict("user already exists"),
			want: KindConflict,
		},
		{
			name: "not found",
			err:  NotFound("no such user"),
			want: KindNotFound,
		},
		{
			name: "unauthorized",
			err:  Unauthorized("invalid credentials"),
			want: KindUnauthorized,
		},
		{
			name: "bad request",
			err:  BadRequest("email already verified"),
			want: KindBadRequest,
		},
		{
			name: "wrapped keeps kind",
			err:  fmt.Errorf("login: %w", Unauthorized("invalid credentials")),
			want: KindUnauthorized,
		},
		{
			name: "plain error is internal",
			err:  errors.New("connection refused"),
			want: KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Internal(cause)

	assert.Equal(t, "internal error", err.Error())
	assert.Equal(t, "INTERNAL", err.Code())
	assert.ErrorIs(t, err, cause)
}

func TestError_Code(t *testing.T) {
	assert.Equal(t, "CONFLICT", Conflict("dup").Code())
	assert.Equal(t, "NOT_FOUND", NotFound("missing").Code())
	assert.Equal(t, "UNAUTHORIZED", Unauthorized("nope").Code())
	assert.Equal(t, "BAD_REQUEST", BadRequest("bad").Code())
}
