// Package server assembles services, handlers and routes into an Echo app.
package server

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"eventsapi/internal/auth"
	"eventsapi/internal/cache"
	"eventsapi/internal/config"
	"eventsapi/internal/handler"
	"eventsapi/internal/repository"
	"eventsapi/internal/router"
	"eventsapi/internal/service"
	"eventsapi/internal/storage"
)

// Deps are the long-lived resources the app is built from.
type Deps struct {
	Config *config.Config
	Store  repository.Store
	// Cache may be nil.
	Cache *cache.Client
	// Images receives event images; Avatars receives user avatars.
	Images  storage.ImageStore
	Avatars storage.ImageStore
}

// New builds the Echo app.
func New(d Deps) *echo.Echo {
	cfg := d.Config

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry)
	tokenStore := auth.NewTokenStore(d.Cache)

	authService := service.NewAuthService(d.Store.Users(), jwtService, tokenStore, cfg.JWT.RevokeOnLogout, d.Avatars)
	categoryService := service.NewCategoryService(d.Store, d.Cache, cfg.Redis.CacheTTL, cfg.References.OnDelete)
	locationService := service.NewLocationService(d.Store, d.Cache, cfg.Redis.CacheTTL, cfg.References.OnDelete)
	eventService := service.NewEventService(d.Store)
	uploadService := service.NewUploadService(d.Images, cfg.Upload.MaxSize)

	e := echo.New()
	router.Register(e, cfg, router.Handlers{
		Auth:     handler.NewAuthHandler(authService, uploadService),
		Category: handler.NewCategoryHandler(categoryService),
		Location: handler.NewLocationHandler(locationService),
		Event:    handler.NewEventHandler(eventService),
		Upload:   handler.NewUploadHandler(uploadService, cfg.Server.BaseURL),
	}, auth.Middleware(jwtService, tokenStore, d.Store.Users()))

	return e
}

// ImageStores returns the stores for event images and avatars. Avatars
// always go to the cloud host; event images follow upload.storage.
func ImageStores(cfg *config.Config) (images, avatars storage.ImageStore, err error) {
	avatars, err = storage.NewCloudinaryImageStore(cfg.Cloudinary)
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Upload.Storage {
	case config.StorageCloudinary:
		return avatars, avatars, nil
	case config.StorageLocal:
		local, err := storage.NewLocalStore(cfg.Upload.Dir)
		if err != nil {
			return nil, nil, err
		}
		return local, avatars, nil
	default:
		return nil, nil, fmt.Errorf("unknown upload storage %q", cfg.Upload.Storage)
	}
}
