package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/civiceye/backend/internal/apperr"
	"github.com/civiceye/backend/internal/auth"
	"github.com/civiceye/backend/internal/models"
	"github.com/civiceye/backend/internal/repository"
	"github.com/civiceye/backend/internal/validation"
)

func newUserService(t *testing.T) (*UserService, *auth.TokenIssuer) {
	t.Helper()
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	svc := NewUserService(repository.NewMemoryUserStore(), auth.NewHasherWithCost(bcrypt.MinCost), tokens, validation.New(), nopLogger())
	svc.now = func() time.Time { return testNow }
	return svc, tokens
}

func registration() *models.Registration {
	return &models.Registration{
		Username: "asha",
		Email:    "asha@example.com",
		Password: "correct horse",
	}
}

func TestUserService_Register(t *testing.T) {
	svc, _ := newUserService(t)

	u, err := svc.Register(context.Background(), registration())
	require.NoError(t, err)

	assert.NotZero(t, u.ID)
	assert.Equal(t, "CITIZEN", u.Role)
	assert.NotEqual(t, "correct horse", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct horse")))
	assert.Equal(t, testNow, u.CreatedAt)
}

func TestUserService_Register_Conflicts(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, registration())
	require.NoError(t, err)

	sameEmail := registration()
	sameEmail.Username = "asha2"
	_, err = svc.Register(ctx, sameEmail)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "email already exists")

	sameName := registration()
	sameName.Email = "other@example.com"
	_, err = svc.Register(ctx, sameName)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "username already exists")
}

func TestUserService_Login(t *testing.T) {
	svc, tokens := newUserService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, registration())
	require.NoError(t, err)

	res, err := svc.Login(ctx, &models.LoginRequest{Email: "asha@example.com", Password: "correct horse"})
	require.NoError(t, err)
	claims, err := tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "CITIZEN", claims.Role)
	assert.Equal(t, u.ID, res.User.ID)

	_, err = svc.Login(ctx, &models.LoginRequest{Email: "asha@example.com", Password: "wrong"})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = svc.Login(ctx, &models.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestUserService_Exists(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, registration())
	require.NoError(t, err)

	exists, err := svc.Exists(ctx, "", "asha")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.Exists(ctx, "new@example.com", "newbie")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = svc.Exists(ctx, "", "")
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
}

func TestUserService_Update(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, registration())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, u.ID, &models.UserPatch{PhoneNumber: strPtr("555-0100")})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", updated.PhoneNumber)
	assert.Equal(t, "asha", updated.Username)

	_, err = svc.Update(ctx, u.ID, &models.UserPatch{Role: strPtr("MAYOR")})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	_, err = svc.Update(ctx, 999, &models.UserPatch{PhoneNumber: strPtr("1")})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
