package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gnosislabs/gnosis-api/internal/config"
	"github.com/gnosislabs/gnosis-api/internal/db"
	"github.com/gnosislabs/gnosis-api/internal/repo"
	"github.com/gnosislabs/gnosis-api/internal/retention"
)

func main() {
	cfg := config.Load()

	setupLogging(cfg)

	if cfg.Env == "prod" && cfg.JWTSecret == "supersecretkey" {
		slog.Error("JWT_SECRET must be set to a non-default value in prod")
		os.Exit(1)
	}

	database, err := db.Connect(
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
		cfg.DBUser,
		cfg.DBPass,
		cfg.DBMaxOpenConns,
		cfg.DBMaxIdleConns,
	)
	if err != nil {
		slog.Error("database connection failed", "error", err.Error())
		os.Exit(1)
	}
	defer database.Close()

	slog.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	if err := db.Migrate(db.URL(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass)); err != nil {
		slog.Error("database migration failed", "error", err.Error())
		os.Exit(1)
	}

	if cfg.OpenAIAPIKey == "" {
		slog.Warn("OPENAI_API_KEY not set; lesson, quiz, and feedback generation will fail")
	}
	if cfg.YouTubeAPIKey == "" {
		slog.Warn("YOUTUBE_API_KEY not set; video search will fail")
	}

	purge := &retention.Job{
		History: repo.NewHistoryRepo(database),
		Days:    cfg.HistoryRetentionDays,
	}
	if c := purge.Start(); c != nil {
		defer c.Stop()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(database, cfg),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		slog.Info("starting HTTPS server", "addr", srv.Addr)
		err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
	} else {
		slog.Info("starting HTTP server", "addr", srv.Addr)
		err = srv.ListenAndServe()
	}
	if err != nil {
		slog.Error("server stopped", "error", err.Error())
		os.Exit(1)
	}
}

// setupLogging configures the process-wide slog default.
func setupLogging(cfg config.Config) {
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}
