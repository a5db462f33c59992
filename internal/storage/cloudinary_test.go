package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"eventsapi/internal/config"
	apperrors "eventsapi/internal/errors"
)

type MockUploadAPI struct {
	mock.Mock
}

func (m *MockUploadAPI) Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	args := m.Called(ctx, file, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*uploader.UploadResult), args.Error(1)
}

func (m *MockUploadAPI) Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*uploader.DestroyResult), args.Error(1)
}

func TestCloudinaryStore_Save(t *testing.T) {
	mockAPI := new(MockUploadAPI)
	store := newCloudinaryStore(mockAPI, "demo", "events", time.Second)

	mockAPI.On("Upload", mock.Anything, mock.Anything, uploader.UploadParams{Folder: "events/avatars"}).
		Return(&uploader.UploadResult{
			PublicID:  "events/avatars/abc123",
			SecureURL: "https://res.cloudinary.com/demo/image/upload/v1/events/avatars/abc123.png",
		}, nil)

	saved, err := store.Save(context.Background(), Image{Data: []byte("img"), Ext: ".png"}, "avatars")
	require.NoError(t, err)

	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/events/avatars/abc123.png", saved.URL)
	assert.Equal(t, "abc123.png", saved.Filename)
	assert.Equal(t, "events/avatars/abc123", saved.PublicID)
	mockAPI.AssertExpectations(t)
}

func TestCloudinaryStore_SaveReportsAPIError(t *testing.T) {
	mockAPI := new(MockUploadAPI)
	store := newCloudinaryStore(mockAPI, "demo", "events", time.Second)

	mockAPI.On("Upload", mock.Anything, mock.Anything, mock.Anything).
		Return(&uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid image file"}}, nil)

	_, err := store.Save(context.Background(), Image{Data: []byte("img")}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid image file")
}

func TestCloudinaryStore_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	mockAPI := new(MockUploadAPI)
	store := newCloudinaryStore(mockAPI, "demo", "events", time.Second)

	mockAPI.On("Upload", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection reset"))

	for i := 0; i < 5; i++ {
		_, err := store.Save(context.Background(), Image{Data: []byte("img")}, "")
		require.Error(t, err)
		assert.NotErrorIs(t, err, apperrors.ErrImageHostUnavailable)
	}

	_, err := store.Save(context.Background(), Image{Data: []byte("img")}, "")
	assert.ErrorIs(t, err, apperrors.ErrImageHostUnavailable)
	mockAPI.AssertNumberOfCalls(t, "Upload", 5)
}

func TestCloudinaryStore_Delete(t *testing.T) {
	mockAPI := new(MockUploadAPI)
	store := newCloudinaryStore(mockAPI, "demo", "events", time.Second)

	mockAPI.On("Destroy", mock.Anything, uploader.DestroyParams{PublicID: "events/avatars/abc123"}).
		Return(&uploader.DestroyResult{Result: "ok"}, nil)

	require.NoError(t, store.Delete(context.Background(), "https://res.cloudinary.com/demo/image/upload/v17/events/avatars/abc123.jpg"))
	// not ours: no API call
	require.NoError(t, store.Delete(context.Background(), "/uploads/event-1-2.png"))

	mockAPI.AssertNumberOfCalls(t, "Destroy", 1)
}

func TestNewCloudinaryImageStore_Unconfigured(t *testing.T) {
	store, err := NewCloudinaryImageStore(config.CloudinaryConfig{CloudName: "demo"})
	require.NoError(t, err)

	_, err = store.Save(context.Background(), Image{}, "avatars")
	var cfgErr *apperrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"CLOUDINARY_API_KEY", "CLOUDINARY_API_SECRET"}, cfgErr.Missing)
}

func TestPublicIDFromURL(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		cloud  string
		want   string
		wantOK bool
	}{
		{"versioned", "https://res.cloudinary.com/demo/image/upload/v1712/events/a.jpg", "demo", "events/a", true},
		{"no version", "https://res.cloudinary.com/demo/image/upload/events/avatars/b.png", "demo", "events/avatars/b", true},
		{"any cloud", "https://res.cloudinary.com/other/image/upload/v1/c.webp", "", "c", true},
		{"other cloud", "https://res.cloudinary.com/other/image/upload/v1/c.webp", "demo", "", false},
		{"local", "/uploads/event-1-2.png", "demo", "", false},
		{"foreign host", "https://example.com/demo/image/upload/x.png", "demo", "", false},
		{"no upload segment", "https://res.cloudinary.com/demo/image/fetch/x.png", "demo", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PublicIDFromURL(tt.url, tt.cloud)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
