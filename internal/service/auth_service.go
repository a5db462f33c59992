package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"eventsapi/internal/auth"
	apperrors "eventsapi/internal/errors"
	"eventsapi/internal/logging"
	"eventsapi/internal/model"
	"eventsapi/internal/repository"
	"eventsapi/internal/storage"
)

const (
	bcryptCost = 10

	avatarFolder = "avatars"
)

// AuthResult is returned by a successful login or registration.
type AuthResult struct {
	Token string
	User  *model.User
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	UpdateAvatar(ctx context.Context, user *model.User, img storage.Image) (*model.User, error)
}

type authService struct {
	users          repository.UserRepository
	jwtService     *auth.JWTService
	tokenStore     auth.TokenStoreInterface
	revokeOnLogout bool
	avatars        storage.ImageStore
}

// NewAuthService creates a new authentication service. Avatars are written
// to the given image store; tokens are revoked on logout only when
// revokeOnLogout is set.
func NewAuthService(
	users repository.UserRepository,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	revokeOnLogout bool,
	avatars storage.ImageStore,
) AuthService {
	return &authService{
		users:          users,
		jwtService:     jwtService,
		tokenStore:     tokenStore,
		revokeOnLogout: revokeOnLogout,
		avatars:        avatars,
	}
}

// NormalizeEmail folds an address to the form it is stored under.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with a hashed password and signs a token for it.
func (s *authService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)

	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: string(hashedPassword),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issue(user)
}

// Login checks the credentials and signs a token. Unknown e-mail and wrong
// password fail identically.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *authService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Logout revokes the presented token when revocation is enabled and is a
// no-op otherwise.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if !s.revokeOnLogout || claims == nil || s.tokenStore == nil {
		return nil
	}
	if err := s.tokenStore.Revoke(ctx, claims.ID, s.jwtService.RemainingTTL(claims)); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// UpdateAvatar stores a new avatar image and points the user at it. The
// previous avatar is removed best-effort.
func (s *authService) UpdateAvatar(ctx context.Context, user *model.User, img storage.Image) (*model.User, error) {
	saved, err := s.avatars.Save(ctx, img, avatarFolder)
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	if user.AvatarURL != nil && *user.AvatarURL != "" {
		if err := s.avatars.Delete(ctx, *user.AvatarURL); err != nil {
			logging.Warn().Err(err).Str("user_id", user.ID).Str("avatar_url", *user.AvatarURL).
				Msg("failed to delete previous avatar")
		}
	}

	if err := s.users.UpdateAvatar(ctx, user.ID, saved.URL); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("update avatar: %w", err)
	}

	updated := *user
	updated.AvatarURL = &saved.URL
	return &updated, nil
}
