package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"github.com/rahul4469/verifact/internal/config"
	"github.com/rahul4469/verifact/internal/controllers"
	"github.com/rahul4469/verifact/internal/middleware"
	"github.com/rahul4469/verifact/internal/models"
	"github.com/rahul4469/verifact/internal/services"
	"github.com/rahul4469/verifact/migrations"
	"go.uber.org/zap"
)

func main() {
	cfg := config.MustLoad()

	logger, err := config.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setup the engine ---------------
	if cfg.CredentialMissing() {
		logger.Warn("GEMINI_API_KEY is not set; analyses will be rejected and trending serves the seed set")
	}
	engine, err := services.NewEngineWithGemini(ctx,
		services.GeminiConfig{
			APIKey:  cfg.APIs.GeminiAPIKey,
			Model:   cfg.APIs.GeminiModel,
			BaseURL: cfg.APIs.GeminiBaseURL,
			Timeout: cfg.Limits.UpstreamTimeout,
		},
		services.EngineConfig{
			AnalyzeMaxRetries:  cfg.Limits.AnalyzeMaxRetries,
			TrendingMaxRetries: cfg.Limits.TrendingMaxRetries,
			BackoffStep:        cfg.Limits.RetryBackoffStep,
		},
		logger.Named("engine"),
	)
	if err != nil {
		return err
	}

	// Setup the history store ---------------
	var (
		history  controllers.HistoryStore
		dbHealth controllers.DatabaseHealth
	)
	if cfg.HistoryEnabled() {
		logger.Info("connecting to database")
		db, err := models.NewDatabase(ctx, models.DefaultDatabaseConfig(cfg.Database.URL))
		if err != nil {
			return err
		}
		defer db.Close()

		sqlDB := db.SQL()
		err = models.MigrateFS(sqlDB, migrations.FS, ".")
		_ = sqlDB.Close()
		if err != nil {
			return err
		}
		logger.Info("database ready")

		history = models.NewHistoryService(db.Pool)
		dbHealth = db
	} else {
		logger.Info("DATABASE_URL not set; analysis history disabled")
	}

	// Setup controllers ---------------
	analyzeCtrl := controllers.NewAnalyzeController(engine, history)
	historyCtrl := controllers.NewHistoryController(history)
	healthCtrl := controllers.NewHealthController(engine, dbHealth)

	requestLogger := middleware.NewRequestLogger(logger.Named("http"))
	limiter := middleware.NewRateLimiter(cfg.Limits.RateLimitRPS, cfg.Limits.RateLimitBurst)

	csrfOpts := []csrf.Option{
		csrf.Secure(cfg.Security.SecureCookies),
		csrf.Path("/"),
		csrf.TrustedOrigins(cfg.Security.TrustedOrigins),
	}
	csrfMw := csrf.Protect([]byte(cfg.Security.CSRFSecret), csrfOpts...)
	if !cfg.Security.SecureCookies {
		// gorilla/csrf assumes TLS for the Referer check unless told otherwise.
		protect := csrfMw
		csrfMw = func(next http.Handler) http.Handler {
			h := protect(next)
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
			})
		}
	}

	// Setup router and routes ---------------
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger.Handler)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", healthCtrl.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Use(csrfMw)

		r.Get("/csrf", controllers.CSRFToken)
		r.Get("/trending", analyzeCtrl.GetTrending)

		r.With(limiter.Limit).Post("/analyze", analyzeCtrl.PostAnalyze)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", historyCtrl.GetHistory)
			r.Get("/stats", historyCtrl.GetStats)
			r.Get("/{id}", historyCtrl.GetAnalysis)
			r.Delete("/{id}", historyCtrl.DeleteAnalysis)
		})
	})

	// Start the server ---------------
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
