package storage

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// PublicPrefix is the URL path under which local uploads are served.
const PublicPrefix = "/uploads/"

// LocalStore writes images into a directory served statically.
type LocalStore struct {
	dir string
	now func() time.Time
}

var _ ImageStore = (*LocalStore)(nil)

// NewLocalStore creates the upload directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, now: time.Now}, nil
}

// Dir returns the directory holding the uploads.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Name() string {
	return "local"
}

// Save writes the image as event-<unix ms>-<random><ext>. The folder is
// ignored; all local uploads share one directory.
func (s *LocalStore) Save(_ context.Context, img Image, _ string) (*StoredImage, error) {
	filename := fmt.Sprintf("event-%d-%d%s", s.now().UnixMilli(), rand.IntN(1e9), img.Ext)

	if err := os.WriteFile(filepath.Join(s.dir, filename), img.Data, 0o644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	return &StoredImage{
		URL:      PublicPrefix + filename,
		Filename: filename,
	}, nil
}

// Delete removes a file addressed by its /uploads/ URL.
func (s *LocalStore) Delete(_ context.Context, url string) error {
	if !strings.HasPrefix(url, PublicPrefix) {
		return nil
	}
	name := path.Base(url)
	if name == "." || name == "/" || strings.Contains(name, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
