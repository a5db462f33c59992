package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"eventsapi/internal/auth"
	apperrors "eventsapi/internal/errors"
	"eventsapi/internal/model"
	"eventsapi/internal/repository"
	"eventsapi/internal/storage"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID == "" {
		user.ID = "user-1"
	}
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateAvatar(ctx context.Context, id string, avatarURL string) error {
	args := m.Called(ctx, id, avatarURL)
	return args.Error(0)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// MockImageStore is a mock implementation of storage.ImageStore.
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Save(ctx context.Context, img storage.Image, folder string) (*storage.StoredImage, error) {
	args := m.Called(ctx, img, folder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.StoredImage), args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *MockImageStore) Name() string {
	return "mock"
}

func newTestAuthService(users *MockUserRepository, tokens *MockTokenStore, images *MockImageStore, revoke bool) (AuthService, *auth.JWTService) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	return NewAuthService(users, jwtService, tokens, revoke, images), jwtService
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with lower-cased email and hashed password", func(t *testing.T) {
		users := new(MockUserRepository)
		svc, jwtService := newTestAuthService(users, nil, nil, false)

		users.On("FindByEmail", ctx, "ada@example.com").Return(nil, repository.ErrNotFound)
		users.On("Create", ctx, mock.AnythingOfType("*model.User")).Return(nil)

		result, err := svc.Register(ctx, " Ada ", "  Ada@Example.COM ", "secret1")
		require.NoError(t, err)

		assert.Equal(t, "Ada", result.User.Name)
		assert.Equal(t, "ada@example.com", result.User.Email)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(result.User.Password), []byte("secret1")))

		claims, err := jwtService.ValidateToken(result.Token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "ada@example.com", claims.Email)
		users.AssertExpectations(t)
	})

	t.Run("existing email", func(t *testing.T) {
		users := new(MockUserRepository)
		svc, _ := newTestAuthService(users, nil, nil, false)

		users.On("FindByEmail", ctx, "ada@example.com").Return(&model.User{ID: "u1"}, nil)

		_, err := svc.Register(ctx, "Ada", "ADA@example.com", "secret1")
		assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unique index race", func(t *testing.T) {
		users := new(MockUserRepository)
		svc, _ := newTestAuthService(users, nil, nil, false)

		users.On("FindByEmail", ctx, "ada@example.com").Return(nil, repository.ErrNotFound)
		users.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicate)

		_, err := svc.Register(ctx, "Ada", "ada@example.com", "secret1")
		assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
	})

	t.Run("store failure", func(t *testing.T) {
		users := new(MockUserRepository)
		svc, _ := newTestAuthService(users, nil, nil, false)

		users.On("FindByEmail", ctx, "ada@example.com").Return(nil, errors.New("connection refused"))

		_, err := svc.Register(ctx, "Ada", "ada@example.com", "secret1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, apperrors.ErrEmailTaken)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &model.User{ID: "u1", Name: "Ada", Email: "ada@example.com", Password: string(hash)}

	tests := []struct {
		name     string
		email    string
		password string
		found    *model.User
		findErr  error
		wantErr  error
	}{
		{name: "valid credentials", email: "ADA@example.com", password: "secret1", found: stored},
		{name: "wrong password", email: "ada@example.com", password: "nope", found: stored, wantErr: apperrors.ErrInvalidCredentials},
		{name: "unknown email", email: "ada@example.com", password: "secret1", findErr: repository.ErrNotFound, wantErr: apperrors.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			svc, _ := newTestAuthService(users, nil, nil, false)

			if tt.found != nil {
				users.On("FindByEmail", ctx, "ada@example.com").Return(tt.found, nil)
			} else {
				users.On("FindByEmail", ctx, "ada@example.com").Return(nil, tt.findErr)
			}

			result, err := svc.Login(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, result.Token)
			assert.Equal(t, "u1", result.User.ID)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("stateless by default", func(t *testing.T) {
		tokens := new(MockTokenStore)
		svc, jwtService := newTestAuthService(new(MockUserRepository), tokens, nil, false)

		token, err := jwtService.GenerateToken("u1", "ada@example.com")
		require.NoError(t, err)
		claims, err := jwtService.ValidateToken(token)
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, claims))
		tokens.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("revokes token id when enabled", func(t *testing.T) {
		tokens := new(MockTokenStore)
		svc, jwtService := newTestAuthService(new(MockUserRepository), tokens, nil, true)

		token, err := jwtService.GenerateToken("u1", "ada@example.com")
		require.NoError(t, err)
		claims, err := jwtService.ValidateToken(token)
		require.NoError(t, err)

		tokens.On("Revoke", ctx, claims.ID, mock.AnythingOfType("time.Duration")).Return(nil)

		require.NoError(t, svc.Logout(ctx, claims))
		tokens.AssertExpectations(t)
	})
}

func TestAuthService_UpdateAvatar(t *testing.T) {
	ctx := context.Background()
	img := storage.Image{Data: []byte("png"), ContentType: "image/png", Ext: ".png"}
	newURL := "https://res.cloudinary.com/demo/image/upload/v2/events/avatars/new.png"

	t.Run("replaces avatar and tolerates failed cleanup", func(t *testing.T) {
		users := new(MockUserRepository)
		images := new(MockImageStore)
		svc, _ := newTestAuthService(users, nil, images, false)

		oldURL := "https://res.cloudinary.com/demo/image/upload/v1/events/avatars/old.png"
		user := &model.User{ID: "u1", Name: "Ada", AvatarURL: &oldURL}

		images.On("Save", ctx, img, "avatars").Return(&storage.StoredImage{URL: newURL}, nil)
		images.On("Delete", ctx, oldURL).Return(errors.New("not found"))
		users.On("UpdateAvatar", ctx, "u1", newURL).Return(nil)

		updated, err := svc.UpdateAvatar(ctx, user, img)
		require.NoError(t, err)
		require.NotNil(t, updated.AvatarURL)
		assert.Equal(t, newURL, *updated.AvatarURL)
		assert.Equal(t, oldURL, *user.AvatarURL)
		images.AssertExpectations(t)
		users.AssertExpectations(t)
	})

	t.Run("unconfigured host", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := NewAuthService(users, auth.NewJWTService("s", time.Hour), nil, false,
			&storage.Unconfigured{Service: "cloudinary", Missing: []string{"CLOUDINARY_API_KEY"}})

		_, err := svc.UpdateAvatar(ctx, &model.User{ID: "u1"}, img)
		var cfgErr *apperrors.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, []string{"CLOUDINARY_API_KEY"}, cfgErr.Missing)
		users.AssertNotCalled(t, "UpdateAvatar", mock.Anything, mock.Anything, mock.Anything)
	})
}
