package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/kurakani/kurakani/cluster"
	"github.com/kurakani/kurakani/config"
	"github.com/kurakani/kurakani/controllers"
	"github.com/kurakani/kurakani/gnews"
	"github.com/kurakani/kurakani/logger"
	"github.com/kurakani/kurakani/repository"
	"github.com/kurakani/kurakani/router"
)

func main() {
	logger.SetupDefault(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	if err := config.MigrateDB(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	cache, err := config.InitRedis(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if cache == nil {
		slog.Info("redis not configured, article cache disabled")
	}

	articleRepo := repository.NewArticleRepository(db)
	userRepo := repository.NewUserRepository(db)
	fetcher := gnews.NewClient(cfg.News.APIKey, cfg.News.BaseURL, cfg.News.MaxResults, cfg.News.Timeout)

	newsCtrl := controllers.NewNewsController(articleRepo, fetcher, cluster.Assign, cache)
	authCtrl := controllers.NewAuthController(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	r := router.InitRouter(newsCtrl, authCtrl, cfg.Auth.JWTSecret, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server exited")
}
