package main

import (
	"context"
	"errors"
	"github.com/frodejac/genoserve/internal/api"
	s "github.com/frodejac/genoserve/internal/auth/static"
	"github.com/frodejac/genoserve/internal/config"
	"github.com/frodejac/genoserve/internal/database"
	"github.com/frodejac/genoserve/internal/database/stats"
	"github.com/frodejac/genoserve/internal/files"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	level := slog.LevelInfo
	if cfg.IsDevelopment {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	var staticAuth *s.Auth
	if cfg.Auth.Type == config.AuthTypeStatic {
		staticAuth, err = s.NewAuthFromConfig(&s.Config{UsersJsonPath: cfg.Auth.UsersJsonPath})
		if err != nil {
			log.Fatalf("Failed to create static auth: %v", err)
		}
	}

	fileService, err := files.NewFileService(&files.Config{
		DataDir:           cfg.Data.Dir,
		AllowedExtensions: cfg.Data.AllowedExtensions,
	})
	if err != nil {
		log.Fatalf("Failed to create file service: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	statsStore, err := stats.NewStatsStore(db)
	if err != nil {
		log.Fatalf("Failed to create stats store: %v", err)
	}

	router := api.NewRouter(
		fileService,
		statsStore,
		staticAuth,
		&api.Config{
			AuthType:           cfg.Auth.Type,
			RateLimit:          cfg.RateLimit.Limit,
			RateBurst:          cfg.RateLimit.Burst,
			BaseUrl:            cfg.BaseUrl,
			StaticPath:         cfg.StaticPath,
			Version:            config.Version,
			UseSecurityHeaders: cfg.Server.UseSecurityHeaders,
		},
	)

	mux := http.NewServeMux()
	router.SetupRoutes(mux)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.Handler(mux),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Printf("Shutdown signal received: closing HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting server on %s", cfg.Addr())
	log.Printf("Data directory: %s", fileService.Root())
	log.Printf("Open %s in a browser to view your files", cfg.BaseUrl)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	log.Printf("HTTP server closed")
}
