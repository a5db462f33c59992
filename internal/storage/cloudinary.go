package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/sony/gobreaker/v2"

	"eventsapi/internal/config"
	apperrors "eventsapi/internal/errors"
	"eventsapi/internal/logging"
	"eventsapi/internal/metrics"
)

const cloudinaryHost = "res.cloudinary.com"

var versionSegment = regexp.MustCompile(`^v\d+$`)

// uploadAPI is the subset of the Cloudinary upload API the store uses.
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// CloudinaryStore uploads images to Cloudinary behind a circuit breaker.
type CloudinaryStore struct {
	api       uploadAPI
	cloudName string
	folder    string
	timeout   time.Duration
	cb        *gobreaker.CircuitBreaker[interface{}]
}

var _ ImageStore = (*CloudinaryStore)(nil)

// NewCloudinaryImageStore returns a CloudinaryStore, or an Unconfigured store
// naming the missing settings.
func NewCloudinaryImageStore(cfg config.CloudinaryConfig) (ImageStore, error) {
	if missing := cfg.MissingKeys(); len(missing) > 0 {
		return &Unconfigured{Service: "cloudinary", Missing: missing}, nil
	}
	return NewCloudinaryStore(cfg)
}

// NewCloudinaryStore connects the Cloudinary SDK from CLOUDINARY_URL or the
// individual credentials.
func NewCloudinaryStore(cfg config.CloudinaryConfig) (*CloudinaryStore, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	if cfg.URL != "" {
		cld, err = cloudinary.NewFromURL(cfg.URL)
	} else {
		cld, err = cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	}
	if err != nil {
		return nil, fmt.Errorf("configure cloudinary: %w", err)
	}

	return newCloudinaryStore(&cld.Upload, cld.Config.Cloud.CloudName, cfg.Folder, cfg.Timeout), nil
}

func newCloudinaryStore(api uploadAPI, cloudName, folder string, timeout time.Duration) *CloudinaryStore {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cbName := "cloudinary"
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("image host circuit breaker state changed")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})

	return &CloudinaryStore{
		api:       api,
		cloudName: cloudName,
		folder:    folder,
		timeout:   timeout,
		cb:        cb,
	}
}

func (s *CloudinaryStore) Name() string {
	return "cloudinary"
}

func (s *CloudinaryStore) execute(fn func() (interface{}, error)) (interface{}, error) {
	res, err := s.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, apperrors.ErrImageHostUnavailable
	}
	return res, err
}

// Save uploads the image into <base folder>/<folder>.
func (s *CloudinaryStore) Save(ctx context.Context, img Image, folder string) (*StoredImage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	target := strings.Trim(path.Join(s.folder, folder), "/")

	res, err := s.execute(func() (interface{}, error) {
		result, err := s.api.Upload(ctx, bytes.NewReader(img.Data), uploader.UploadParams{Folder: target})
		if err != nil {
			return nil, err
		}
		if result.Error.Message != "" {
			return nil, errors.New(result.Error.Message)
		}
		return result, nil
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}

	result := res.(*uploader.UploadResult)
	return &StoredImage{
		URL:      result.SecureURL,
		Filename: path.Base(result.SecureURL),
		PublicID: result.PublicID,
	}, nil
}

// Delete destroys the asset behind a URL hosted on this cloud.
func (s *CloudinaryStore) Delete(ctx context.Context, rawURL string) error {
	publicID, ok := PublicIDFromURL(rawURL, s.cloudName)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.execute(func() (interface{}, error) {
		result, err := s.api.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
		if err != nil {
			return nil, err
		}
		if result.Error.Message != "" {
			return nil, errors.New(result.Error.Message)
		}
		return result, nil
	})
	if err != nil {
		return fmt.Errorf("cloudinary destroy %s: %w", publicID, err)
	}
	return nil
}

// PublicIDFromURL extracts the public id from a delivery URL such as
// https://res.cloudinary.com/<cloud>/image/upload/v123/events/avatars/abc.jpg.
func PublicIDFromURL(rawURL, cloudName string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host != cloudinaryHost {
		return "", false
	}

	p := strings.TrimPrefix(u.Path, "/")
	if cloudName != "" {
		if !strings.HasPrefix(p, cloudName+"/") {
			return "", false
		}
		p = strings.TrimPrefix(p, cloudName+"/")
	}

	idx := strings.Index(p, "/upload/")
	if idx < 0 {
		return "", false
	}
	segments := strings.Split(p[idx+len("/upload/"):], "/")
	if len(segments) > 1 && versionSegment.MatchString(segments[0]) {
		segments = segments[1:]
	}

	id := strings.Join(segments, "/")
	id = strings.TrimSuffix(id, path.Ext(id))
	if id == "" {
		return "", false
	}
	return id, true
}
