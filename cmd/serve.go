package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meeplemedia/creatordex/internal/server"
	"github.com/meeplemedia/creatordex/internal/store"
	"github.com/meeplemedia/creatordex/pkg/youtube"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the caching proxy for channel metadata lookups",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}
		if n, err := st.DeleteExpired(ctx); err != nil {
			zap.L().Warn("expired cache sweep failed", zap.Error(err))
		} else if n > 0 {
			zap.L().Info("swept expired cache entries", zap.Int("count", n))
		}

		yt := youtube.NewClient(cfg.YouTube.APIKey,
			youtube.WithBaseURL(cfg.YouTube.BaseURL),
			youtube.WithRateLimit(cfg.YouTube.RateQPS, cfg.YouTube.RateBurst),
		)

		images, err := server.NewImageCache(cfg.Server.ImageCacheDir)
		if err != nil {
			return err
		}

		ttl := time.Duration(cfg.YouTube.CacheTTLHours) * time.Hour
		svc := server.NewChannelService(yt, st, ttl)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: server.Handler(svc, images),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.String("store", cfg.Store.Driver),
			zap.Duration("cache_ttl", ttl),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
