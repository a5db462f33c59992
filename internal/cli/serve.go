package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"eventsapi/docs"
	"eventsapi/internal/cache"
	"eventsapi/internal/db"
	"eventsapi/internal/logging"
	"eventsapi/internal/server"
)

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not create the schema on start")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logging.Warn().Err(err).Msg("failed to close store")
		}
	}()

	if !skipMigrate {
		if err := store.Migrate(ctx); err != nil {
			return err
		}
	}

	cacheClient := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer cacheClient.Close()
	if cacheClient.Enabled() {
		if err := cacheClient.Ping(ctx); err != nil {
			logging.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable; continuing without cache")
		}
	}
	if cfg.JWT.RevokeOnLogout && !cacheClient.Enabled() {
		logging.Warn().Msg("token revocation requested but REDIS_ADDR is not set; logout stays stateless")
	}

	images, avatars, err := server.ImageStores(cfg)
	if err != nil {
		return err
	}
	if missing := cfg.Cloudinary.MissingKeys(); len(missing) > 0 {
		logging.Warn().Strs("missing", missing).Msg("image host not configured; avatar uploads will fail")
	}

	if cfg.Server.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.Server.SwaggerHost
	}

	e := server.New(server.Deps{
		Config:  cfg,
		Store:   store,
		Cache:   cacheClient,
		Images:  images,
		Avatars: avatars,
	})

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", cfg.Addr()).Str("driver", cfg.Database.Driver).
			Str("storage", images.Name()).Msg("server starting")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
