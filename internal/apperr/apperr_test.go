package apperr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid", Invalid("bad status %q", "X"), http.StatusBadRequest},
		{"validation failed", ValidationFailed(errors.New("404"), "user %d not found", 42), http.StatusBadRequest},
		{"conflict", Conflict("email taken"), http.StatusBadRequest},
		{"not found", NotFound("complaint %d not found", 7), http.StatusNotFound},
		{"unauthorized", Unauthorized("invalid password"), http.StatusUnauthorized},
		{"persistence", PersistenceFailed(errors.New("disk full"), "save complaint"), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestKindOf_SurvivesWrapping(t *testing.T) {
	base := NotFound("media %d not found", 3)

	assert.Equal(t, KindNotFound, KindOf(errors.Wrap(base, "download")))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("handler: %w", base)))
	assert.True(t, Is(errors.WithStack(base), KindNotFound))
	assert.False(t, Is(nil, KindNotFound))
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "internal server error", PublicMessage(errors.New("pq: connection reset")))
	assert.Equal(t, "save complaint", PublicMessage(PersistenceFailed(errors.New("pq: connection reset"), "save complaint")))
	assert.Equal(t, "failed to validate user 42",
		PublicMessage(ValidationFailed(errors.New(`dial tcp 10.0.0.7:8081: connect: connection refused`), "failed to validate user %d", 42)))
	assert.Equal(t, "email already exists: a@b.c", PublicMessage(Conflict("email already exists: %s", "a@b.c")))
}

func TestError_FormatCarriesCauseStack(t *testing.T) {
	cause := errors.Wrap(errors.New("connection reset by peer"), "insert complaint")
	err := PersistenceFailed(cause, "failed to save complaint")

	assert.Equal(t, "failed to save complaint: insert complaint: connection reset by peer", fmt.Sprintf("%v", err))
	verbose := fmt.Sprintf("%+v", err)
	assert.Contains(t, verbose, "insert complaint")
	assert.Contains(t, verbose, "TestError_FormatCarriesCauseStack")
	assert.Equal(t, "failed to save complaint", PublicMessage(err))
}
