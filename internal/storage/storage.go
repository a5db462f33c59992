// Package storage persists uploaded images on local disk or a cloud image host.
package storage

import (
	"context"

	apperrors "eventsapi/internal/errors"
)

// Image is a validated image ready to be stored.
type Image struct {
	Data        []byte
	ContentType string
	// Ext is the lower-cased file extension including the dot, e.g. ".png".
	Ext string
}

// StoredImage describes where an image ended up.
type StoredImage struct {
	// URL is the public URL, relative for local storage.
	URL      string
	Filename string
	// PublicID identifies the asset on the cloud host.
	PublicID string
}

// ImageStore persists images.
type ImageStore interface {
	Save(ctx context.Context, img Image, folder string) (*StoredImage, error)
	// Delete removes an image previously returned by Save, addressed by URL.
	// Images this store does not own are ignored.
	Delete(ctx context.Context, url string) error
	// Name identifies the backend in logs and metrics.
	Name() string
}

// Unconfigured is an ImageStore for a backend that lacks required settings.
// Every call fails with a ConfigError naming them.
type Unconfigured struct {
	Service string
	Missing []string
}

var _ ImageStore = (*Unconfigured)(nil)

func (u *Unconfigured) err() error {
	return &apperrors.ConfigError{Service: u.Service, Missing: u.Missing}
}

func (u *Unconfigured) Save(context.Context, Image, string) (*StoredImage, error) {
	return nil, u.err()
}

func (u *Unconfigured) Delete(context.Context, string) error {
	return u.err()
}

func (u *Unconfigured) Name() string {
	return u.Service
}
