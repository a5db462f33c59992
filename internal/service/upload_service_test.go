package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "eventsapi/internal/errors"
	"eventsapi/internal/storage"
)

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
	jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, make([]byte, 32)...)
)

// fileHeader builds a parsed multipart file header for field "image".
func fileHeader(t *testing.T, filename, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func TestUploadService_ReadImage(t *testing.T) {
	svc := NewUploadService(nil, 64)

	tests := []struct {
		name        string
		filename    string
		contentType string
		data        []byte
		wantErr     error
		wantType    string
		wantExt     string
	}{
		{name: "png", filename: "photo.PNG", contentType: "image/png", data: pngBytes, wantType: "image/png", wantExt: ".png"},
		{name: "jpeg", filename: "photo.jpg", contentType: "image/jpeg", data: jpegBytes, wantType: "image/jpeg", wantExt: ".jpg"},
		{name: "declared type not allowed", filename: "photo.png", contentType: "application/pdf", data: pngBytes, wantErr: apperrors.ErrUnsupportedImageType},
		{name: "no extension", filename: "photo", contentType: "image/png", data: pngBytes, wantType: "image/png", wantExt: ".png"},
		{name: "misleading extension", filename: "photo.exe", contentType: "image/png", data: pngBytes, wantType: "image/png", wantExt: ".png"},
		{name: "content is not an image", filename: "photo.png", contentType: "image/png", data: []byte("#!/bin/sh\necho hi\n"), wantErr: apperrors.ErrUnsupportedImageType},
		{name: "too large", filename: "photo.png", contentType: "image/png", data: append(pngBytes, make([]byte, 64)...), wantErr: apperrors.ErrImageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := svc.ReadImage(fileHeader(t, tt.filename, tt.contentType, tt.data))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, img.ContentType)
			assert.Equal(t, tt.wantExt, img.Ext)
			assert.Equal(t, tt.data, img.Data)
		})
	}

	t.Run("no file", func(t *testing.T) {
		_, err := svc.ReadImage(nil)
		assert.ErrorIs(t, err, apperrors.ErrNoFile)
	})
}

func TestUploadService_Upload(t *testing.T) {
	ctx := context.Background()
	img := storage.Image{Data: pngBytes, ContentType: "image/png", Ext: ".png"}

	t.Run("stores image", func(t *testing.T) {
		images := new(MockImageStore)
		images.On("Save", ctx, img, "").Return(&storage.StoredImage{URL: "/uploads/event-1-2.png", Filename: "event-1-2.png"}, nil)

		saved, err := NewUploadService(images, 1024).Upload(ctx, img)
		require.NoError(t, err)
		assert.Equal(t, "event-1-2.png", saved.Filename)
		images.AssertExpectations(t)
	})

	t.Run("wraps store error", func(t *testing.T) {
		images := new(MockImageStore)
		images.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil, apperrors.ErrImageHostUnavailable)

		_, err := NewUploadService(images, 1024).Upload(ctx, img)
		assert.True(t, errors.Is(err, apperrors.ErrImageHostUnavailable))
	})
}
