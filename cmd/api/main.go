//	@title			Email Builder API
//	@version		1.0
//	@description	Host service for the email builder: editor page, image upload authorization and message saving.
//
//	@host		localhost:8080
//	@BasePath	/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token, required only when JWT_SECRET is set. Format: **Bearer {token}**

package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/emailbuilder/service/internal/appconfig"
	"github.com/emailbuilder/service/internal/config"
	"github.com/emailbuilder/service/internal/db"
	"github.com/emailbuilder/service/internal/logger"
	appMiddleware "github.com/emailbuilder/service/internal/middleware"
	"github.com/emailbuilder/service/internal/message"
	"github.com/emailbuilder/service/internal/presign"
	"github.com/emailbuilder/service/internal/storage"

	_ "github.com/emailbuilder/service/docs/swagger"
)

const (
	savePath    = "/api/v1/messages"
	presignPath = "/api/v1/uploads/presign"
)

func main() {
	cfg := config.Load()

	var extra []io.Writer
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			slog.Error("open log file", slog.Any("error", err))
			os.Exit(1)
		}
		defer f.Close()
		extra = append(extra, f)
	}
	log := logger.Init(cfg.LogLevel, cfg.LogFormat, extra...)

	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DatabaseURL, log)
	if err != nil {
		fatal(log, "database connection failed", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL, log); err != nil {
		fatal(log, "database migration failed", err)
	}

	// Wire dependencies: repository → service → handler
	editorCfg := appconfig.Default()
	editorCfg.SaveURL = savePath

	var presignHandler *presign.Handler
	if cfg.UploadsEnabled {
		store, err := storage.NewMinioStorage(ctx, storage.Options{
			Endpoint:   cfg.StorageEndpoint,
			AccessKey:  cfg.StorageAccessKey,
			SecretKey:  cfg.StorageSecretKey,
			Region:     cfg.StorageRegion,
			Bucket:     cfg.StorageBucket,
			PublicBase: cfg.StoragePublicBase,
			UseSSL:     cfg.StorageUseSSL,
		}, log)
		if err != nil {
			fatal(log, "object storage init failed", err)
		}
		presignSvc := presign.NewService(store, cfg.UploadMode, cfg.UploadExpiry, cfg.UploadMaxBytes, log)
		presignHandler = presign.NewHandler(presignSvc)

		endpoint := presignPath
		editorCfg.PresignedURLEndpoint = &endpoint
	}

	messageRepo := message.NewRepository(pool)
	messageSvc := message.NewService(messageRepo)
	messageHandler := message.NewHandler(messageSvc, editorCfg, cfg.EditorScriptURL)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI at /swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Editor pages
	r.Get("/editor", messageHandler.NewEditor)
	r.Get("/editor/{id}", messageHandler.Editor)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(appMiddleware.RequireAuth(cfg.JWTSecret))
		r.Post("/messages", messageHandler.Save)
		if presignHandler != nil {
			r.Post("/uploads/presign", presignHandler.Presign)
		}
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("server listening",
			slog.String("addr", srv.Addr),
			slog.String("env", cfg.AppEnv),
			slog.String("editor", cfg.PublicURL+"/editor"),
			slog.Bool("uploads", cfg.UploadsEnabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(log, "server error", err)
		}
	}()

	<-quit
	log.Info("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		fatal(log, "forced shutdown", err)
	}

	log.Info("server stopped")
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, slog.Any("error", err))
	os.Exit(1)
}
