package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	apperrors "eventsapi/internal/errors"
	"eventsapi/internal/metrics"
	"eventsapi/internal/storage"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// UploadService validates and stores uploaded images.
type UploadService interface {
	// ReadImage buffers a multipart file after checking its declared type,
	// sniffed content and size. The client filename is not trusted.
	ReadImage(fh *multipart.FileHeader) (storage.Image, error)
	Upload(ctx context.Context, img storage.Image) (*storage.StoredImage, error)
	MaxSize() int64
}

type uploadService struct {
	store   storage.ImageStore
	maxSize int64
}

// NewUploadService creates an upload service writing to store.
func NewUploadService(store storage.ImageStore, maxSize int64) UploadService {
	return &uploadService{store: store, maxSize: maxSize}
}

func (s *uploadService) MaxSize() int64 {
	return s.maxSize
}

func (s *uploadService) ReadImage(fh *multipart.FileHeader) (storage.Image, error) {
	if fh == nil {
		return storage.Image{}, apperrors.ErrNoFile
	}

	declared, _, err := mime.ParseMediaType(fh.Header.Get("Content-Type"))
	if err != nil || !allowedImageTypes[strings.ToLower(declared)] {
		return storage.Image{}, apperrors.ErrUnsupportedImageType
	}
	if fh.Size > s.maxSize {
		return storage.Image{}, apperrors.ErrImageTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return storage.Image{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.maxSize+1))
	if err != nil {
		return storage.Image{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return storage.Image{}, apperrors.ErrImageTooLarge
	}

	detected := mimetype.Detect(data)
	if !allowedImageTypes[detected.String()] {
		return storage.Image{}, apperrors.ErrUnsupportedImageType
	}

	// The stored extension follows the content, e.g. ".jpg" for image/jpeg.
	return storage.Image{Data: data, ContentType: detected.String(), Ext: detected.Extension()}, nil
}

func (s *uploadService) Upload(ctx context.Context, img storage.Image) (*storage.StoredImage, error) {
	saved, err := s.store.Save(ctx, img, "")
	metrics.RecordImageUpload(s.store.Name(), err)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	return saved, nil
}
