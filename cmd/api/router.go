package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gnosislabs/gnosis-api/internal/ai"
	"github.com/gnosislabs/gnosis-api/internal/auth"
	"github.com/gnosislabs/gnosis-api/internal/config"
	"github.com/gnosislabs/gnosis-api/internal/handlers"
	"github.com/gnosislabs/gnosis-api/internal/middleware"
	"github.com/gnosislabs/gnosis-api/internal/repo"
	"github.com/gnosislabs/gnosis-api/internal/youtube"
)

// newRouter wires repositories, external clients, and handlers into the
// full HTTP API.
func newRouter(db *sql.DB, cfg config.Config) chi.Router {
	issuer := auth.NewTokenIssuer([]byte(cfg.JWTSecret),
		time.Duration(cfg.JWTExpireHours)*time.Hour)

	users := repo.NewUserRepo(db)
	history := repo.NewHistoryRepo(db)
	progress := repo.NewProgressRepo(db)

	aiClient := ai.NewClient(
		&http.Client{Timeout: 60 * time.Second},
		slog.Default(), cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	videoClient := youtube.NewClient(
		&http.Client{Timeout: 15 * time.Second},
		slog.Default(), cfg.YouTubeBaseURL, cfg.YouTubeAPIKey)

	authHandler := &handlers.AuthHandler{Users: users, Issuer: issuer}
	aiHandler := &handlers.AIHandler{History: history, AI: aiClient, Videos: videoClient}
	historyHandler := &handlers.HistoryHandler{History: history}
	progressHandler := &handlers.ProgressHandler{Progress: progress}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		handlers.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ready", func(w http.ResponseWriter, req *http.Request) {
		if err := db.PingContext(req.Context()); err != nil {
			handlers.JSONError(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		handlers.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// Public auth endpoints, rate limited per client IP.
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthRateLimiter().Middleware)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/check-availability", authHandler.CheckAvailability)
	})

	// Everything below requires a valid token for an existing account.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser(issuer, users))

		r.Get("/me", authHandler.Me)

		r.Route("/ai", func(r chi.Router) {
			r.With(middleware.LessonRateLimiter().Middleware).
				Post("/lesson", aiHandler.GenerateLesson)
			r.With(middleware.QuizRateLimiter().Middleware).
				Post("/quiz", aiHandler.GenerateQuiz)
			r.Post("/feedback", aiHandler.GetFeedback)
			r.Post("/video", aiHandler.SearchVideo)
			r.Post("/test-key", aiHandler.TestAPIKey)
		})

		r.Route("/learning", func(r chi.Router) {
			r.Get("/history", historyHandler.List)
			r.Delete("/history", historyHandler.Clear)
			r.Get("/history/{id}", historyHandler.Get)
			r.Delete("/history/{id}", historyHandler.Delete)

			r.Get("/progress", progressHandler.List)
			r.Post("/progress", progressHandler.Create)
		})
	})

	return r
}
