package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dextryayers/rujukan-jatim/internal/config"
	"github.com/dextryayers/rujukan-jatim/internal/models"
)

func newAuthService(t *testing.T, cfg config.AuthConfig, verifier HumanVerifier) (*AuthService, *fakeUserStore, *fakeTokenStore) {
	t.Helper()

	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 168 * time.Hour
	}
	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	svc := NewAuthService(users, tokens, verifier, cfg, zerolog.Nop())
	return svc, users, tokens
}

func memberInput(username, email string) RegisterInput {
	return RegisterInput{
		Username: username,
		Password: "rahasia123",
		Email:    email,
		Role:     "member",
		FullName: "Petugas Dinkes",
	}
}

func TestRegisterIssuesToken(t *testing.T) {
	svc, _, tokens := newAuthService(t, config.AuthConfig{}, staticVerifier{pass: true})

	result, err := svc.Register(context.Background(), memberInput("dinkes1", "dinkes1@example.com"))
	require.NoError(t, err)
	assert.Len(t, result.Token, 60)
	assert.Equal(t, "dinkes1", result.User.Username)

	stored, err := tokens.FindLive(context.Background(), result.Token, time.Now())
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, stored.UserID)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _, _ := newAuthService(t, config.AuthConfig{}, staticVerifier{pass: true})
	ctx := context.Background()

	_, err := svc.Register(ctx, memberInput("dinkes1", "dinkes1@example.com"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, memberInput("dinkes1", "other@example.com"))
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Register(ctx, memberInput("dinkes2", "dinkes1@example.com"))
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterAdminRequiresHumanCheckAndCode(t *testing.T) {
	ctx := context.Background()

	svc, _, _ := newAuthService(t, config.AuthConfig{AdminCode: "kode-rahasia"}, staticVerifier{pass: false})
	input := memberInput("admin1", "admin1@example.com")
	input.Role = "admin"
	_, err := svc.Register(ctx, input)
	assert.ErrorIs(t, err, ErrHumanCheckFailed)

	svc, _, _ = newAuthService(t, config.AuthConfig{AdminCode: "kode-rahasia"}, staticVerifier{pass: true})
	input.AdminCode = "salah"
	_, err = svc.Register(ctx, input)
	assert.ErrorIs(t, err, ErrInvalidAdminCode)

	input.AdminCode = "kode-rahasia"
	result, err := svc.Register(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAdmin, result.User.Role)
}

func TestLoginVerifiesPassword(t *testing.T) {
	svc, _, _ := newAuthService(t, config.AuthConfig{}, staticVerifier{pass: true})
	ctx := context.Background()

	_, err := svc.Register(ctx, memberInput("dinkes1", "dinkes1@example.com"))
	require.NoError(t, err)

	result, err := svc.Login(ctx, LoginInput{Email: "dinkes1@example.com", Password: "rahasia123"})
	require.NoError(t, err)
	assert.Len(t, result.Token, 60)

	_, err = svc.Login(ctx, LoginInput{Email: "dinkes1@example.com", Password: "salah"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Email: "tidak-ada@example.com", Password: "rahasia123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginHumanCheckFailure(t *testing.T) {
	svc, _, _ := newAuthService(t, config.AuthConfig{}, staticVerifier{pass: false})

	_, err := svc.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrHumanCheckFailed)
}

func TestSecondLoginInvalidatesFirstToken(t *testing.T) {
	svc, _, _ := newAuthService(t, config.AuthConfig{}, staticVerifier{pass: true})
	ctx := context.Background()

	first, err := svc.Register(ctx, memberInput("dinkes1", "dinkes1@example.com"))
	require.NoError(t, err)

	second, err := svc.Login(ctx, LoginInput{Email: "dinkes1@example.com", Password: "rahasia123"})
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)

	_, err = svc.Me(ctx, first.Token)
	assert.ErrorIs(t, err, ErrUnauthorized, "old token must be revoked by the new login")

	user, err := svc.Me(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, "dinkes1", user.Username)
}

func TestMeRejectsExpiredToken(t *testing.T) {
	svc, _, _ := newAuthService(t, config.AuthConfig{TokenTTL: time.Hour}, staticVerifier{pass: true})
	ctx := context.Background()

	result, err := svc.Register(ctx, memberInput("dinkes1", "dinkes1@example.com"))
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = svc.Me(ctx, result.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc, _, _ := newAuthService(t, config.AuthConfig{}, staticVerifier{pass: true})
	ctx := context.Background()

	result, err := svc.Register(ctx, memberInput("dinkes1", "dinkes1@example.com"))
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, result.Token))
	require.NoError(t, svc.Logout(ctx, result.Token), "second logout must be a no-op")
	require.NoError(t, svc.Logout(ctx, "tidak-pernah-ada"))

	_, err = svc.Me(ctx, result.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
