package service

import (
	"context"
	"testing"
	"time"

	"chatdoc-be/internal/dto"
	"chatdoc-be/internal/pkg/logger"
	"chatdoc-be/internal/repository/memory"
	"chatdoc-be/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService() IAuthService {
	return NewAuthService(memory.NewRepositoryFactory(memory.NewStore()), "test-secret", time.Hour, logger.NewNopLogger())
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService()

	reg, err := svc.Register(ctx, &dto.RegisterRequest{Email: "Ana@Example.com", Username: "ana", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", reg.Email)

	res, err := svc.Login(ctx, &dto.LoginRequest{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, reg.Id, res.User.Id)

	token, err := jwt.Parse(res.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, reg.Id.String(), claims["user_id"])
}

func TestAuthService_RegisterDuplicates(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService()
	_, err := svc.Register(ctx, &dto.RegisterRequest{Email: "a@x.io", Username: "alpha", Password: "secret1"})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  dto.RegisterRequest
	}{
		{"same email", dto.RegisterRequest{Email: "A@x.io", Username: "beta", Password: "secret1"}},
		{"same username", dto.RegisterRequest{Email: "b@x.io", Username: "alpha", Password: "secret1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, &tt.req)
			assert.ErrorIs(t, err, apperror.ErrDuplicateKey)
		})
	}
}

func TestAuthService_LoginFailures(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService()
	_, err := svc.Register(ctx, &dto.RegisterRequest{Email: "a@x.io", Username: "alpha", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@x.io", Password: "secret1"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "a@x.io", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}
