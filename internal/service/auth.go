package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dextryayers/rujukan-jatim/internal/config"
	"github.com/dextryayers/rujukan-jatim/internal/ids"
	"github.com/dextryayers/rujukan-jatim/internal/models"
	"github.com/dextryayers/rujukan-jatim/internal/repository"
	"github.com/dextryayers/rujukan-jatim/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already taken")
	ErrHumanCheckFailed   = errors.New("human check failed")
	ErrInvalidAdminCode   = errors.New("invalid admin code")
)

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	Update(ctx context.Context, user models.User) error
}

type TokenStore interface {
	Issue(ctx context.Context, token models.AuthToken) error
	FindLive(ctx context.Context, token string, now time.Time) (models.AuthToken, error)
	DeleteByToken(ctx context.Context, token string) error
}

type HumanVerifier interface {
	Verify(ctx context.Context, token, action string) bool
}

type AuthService struct {
	users      UserStore
	tokens     TokenStore
	humanCheck HumanVerifier
	cfg        config.AuthConfig
	log        zerolog.Logger
	now        func() time.Time
}

func NewAuthService(users UserStore, tokens TokenStore, humanCheck HumanVerifier, cfg config.AuthConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		humanCheck: humanCheck,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
	}
}

type RegisterInput struct {
	Username    string
	Password    string
	Email       string
	Phone       *string
	Role        string
	FullName    string
	City        *string
	Institution *string
	HumanToken  string
	AdminCode   string
}

type AuthResult struct {
	Token string
	User  models.User
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	input.Username = strings.TrimSpace(input.Username)

	if _, err := s.users.FindByUsername(ctx, input.Username); err == nil {
		return AuthResult{}, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return AuthResult{}, err
	}
	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return AuthResult{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return AuthResult{}, err
	}

	// Admin self-registration is gated twice: a human-check pass and the
	// shared admin code, when one is configured.
	if input.Role == string(models.UserRoleAdmin) {
		if !s.humanCheck.Verify(ctx, input.HumanToken, "register") {
			return AuthResult{}, ErrHumanCheckFailed
		}
		if s.cfg.AdminCode != "" && input.AdminCode != s.cfg.AdminCode {
			return AuthResult{}, ErrInvalidAdminCode
		}
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
		Role:         models.UserRole(input.Role),
		Name:         input.FullName,
		Phone:        input.Phone,
		City:         input.City,
		Institution:  input.Institution,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{Token: token.Token, User: user}, nil
}

type LoginInput struct {
	Email      string
	Password   string
	HumanToken string
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	if !s.humanCheck.Verify(ctx, input.HumanToken, "login") {
		return AuthResult{}, ErrHumanCheckFailed
	}

	email := strings.TrimSpace(strings.ToLower(input.Email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{Token: token.Token, User: user}, nil
}

// issueToken mints a fresh opaque token; the store drops all prior tokens
// for the user, so a login on one device logs out every other device.
func (s *AuthService) issueToken(ctx context.Context, user models.User) (models.AuthToken, error) {
	value, err := security.NewAuthToken()
	if err != nil {
		return models.AuthToken{}, err
	}

	token := models.AuthToken{
		ID:        ids.New(),
		UserID:    user.ID,
		Token:     value,
		ExpiresAt: s.now().Add(s.cfg.TokenTTL),
	}

	if err := s.tokens.Issue(ctx, token); err != nil {
		return models.AuthToken{}, err
	}
	return token, nil
}

// Logout revokes the token. Unknown tokens are a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.tokens.DeleteByToken(ctx, token)
}

// Me resolves the user behind a live token.
func (s *AuthService) Me(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, ErrUnauthorized
	}

	authToken, err := s.tokens.FindLive(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return models.User{}, ErrUnauthorized
		}
		return models.User{}, err
	}

	user, err := s.users.GetByID(ctx, authToken.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrUnauthorized
		}
		return models.User{}, err
	}
	return user, nil
}
