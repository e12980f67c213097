package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"farmflow-backend/config"
	"farmflow-backend/internal/api"
	"farmflow-backend/internal/db"
	"farmflow-backend/internal/events"
	"farmflow-backend/internal/log"
	"farmflow-backend/internal/mw"
	"farmflow-backend/internal/notification"
	"farmflow-backend/internal/seed"
	"farmflow-backend/internal/store"
)

// Run initializes storage, seeds it, and serves HTTP until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if _, err := seed.EnsureSeedData(ctx, gormDB); err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}

	appStore := store.NewGormStore(gormDB)

	publisher, err := events.NewPublisher(&cfg.Events)
	if err != nil {
		return fmt.Errorf("failed to initialize events publisher: %w", err)
	}
	defer publisher.Close()

	responseCache, err := newResponseCache(ctx, cfg)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	handlerOpts := []api.Option{
		api.WithEvents(publisher),
		api.WithPreCheckMachineValidation(cfg.PreCheck.ValidateMachine),
	}

	var webpushOptions *webpush.Options
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
		g.Go(func() error { return pool.Run(ctx) })
		handlerOpts = append(handlerOpts, api.WithNotifier(pool))
	} else {
		log.Warn("VAPID keys not configured, web push notifications disabled")
	}

	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(appStore, webpushOptions, handlerOpts...)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(handler, responseCache, cfg.Server),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info("HTTP server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server ListenAndServe: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutdown signal received, stopping services")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server gracefully stopped")
	return nil
}

func newResponseCache(ctx context.Context, cfg *config.Config) (mw.ResponseCache, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return mw.NewMemoryCache(cfg.Server.CacheTTL, 2*cfg.Server.CacheTTL), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping %s: %w", cfg.Cache.Redis.Addr, err)
		}
		log.Info("response cache backed by redis", "addr", cfg.Cache.Redis.Addr)
		return mw.NewRedisCache(client, cfg.Cache.Redis.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Cache.Backend)
	}
}
