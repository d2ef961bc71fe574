// Package server is the composition root: it opens the store, builds the
// services and handlers, mounts the routes and runs the HTTP server.
//
// DEPENDENCY FLOW:
//
//	sqlite.DB ─┬─> UserService ───────> UserHandler
//	           ├─> QuizService ───────> QuizHandler
//	fuzzy ─────┴─> PredictionService ─> PredictionHandler, LandingHandler
//
// Each layer only receives the interfaces it needs.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/ability-api/internal/auth"
	"github.com/sakif/ability-api/internal/config"
	"github.com/sakif/ability-api/internal/handler"
	"github.com/sakif/ability-api/internal/middleware"
	sqliteRepo "github.com/sakif/ability-api/internal/repository/sqlite"
	"github.com/sakif/ability-api/internal/service"
)

// Server owns the database connection; Run closes it on the way out.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database, seeds the question bank if configured and mounts
// every route. Any failure here is a startup failure.
//
// The import alias sqliteRepo keeps the repository package apart from the
// modernc.org/sqlite driver.
func New(cfg *config.Config, predictor service.Predictor, logger *slog.Logger) (*Server, error) {
	if err := ensureDir(cfg.Database.Path); err != nil {
		return nil, err
	}

	db, err := sqliteRepo.New(cfg.Database.Path, sqliteRepo.Options{
		Reset:       cfg.Database.ResetOnStart,
		ForeignKeys: cfg.Database.ForeignKeys,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.seedQuestions(); err != nil {
		db.Close()
		return nil, err
	}

	if err := s.setupRoutes(predictor); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// ensureDir creates the parent directory of a file-backed database.
func ensureDir(dbPath string) error {
	if dbPath == ":memory:" || strings.HasPrefix(dbPath, "file:") {
		return nil
	}
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating database directory %s: %w", dir, err)
	}
	return nil
}

func (s *Server) seedQuestions() error {
	ctx := context.Background()

	if path := s.config.Questions.SeedPath; path != "" {
		if _, err := service.SeedQuestions(ctx, s.db, path, s.logger); err != nil {
			return fmt.Errorf("seeding questions: %w", err)
		}
	}

	n, err := s.db.CountQuestions(ctx)
	if err != nil {
		return fmt.Errorf("counting questions: %w", err)
	}
	if n == 0 {
		s.logger.Warn("question bank is empty; /quiz_questions will return no questions")
	}
	return nil
}

// setupRoutes mounts middleware and routes.
//
// MIDDLEWARE ORDER:
// chi runs middleware in the order it is added. LegacyStatusOK sits outside
// Logger so logs keep the real status; Recoverer sits inside Logger so a
// recovered panic is logged as a 500.
func (s *Server) setupRoutes(predictor service.Predictor) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	if s.config.Server.LegacyStatusOK {
		s.router.Use(middleware.LegacyStatusOK)
	}
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id", middleware.OriginalStatusHeader},
		MaxAge:         300,
	}))

	passwords := auth.NewPasswordHasher(s.config.Auth.BcryptCost)
	userService := service.NewUserService(s.db, s.db, passwords, s.logger)
	quizService := service.NewQuizService(s.db, s.db, s.logger)
	predictionService := service.NewPredictionService(predictor, s.db, s.logger)

	users := handler.NewUserHandler(userService, s.logger)
	quizzes := handler.NewQuizHandler(quizService, s.logger)
	predictions := handler.NewPredictionHandler(predictionService, s.logger)
	health := handler.NewHealthHandler(s.db, s.logger)

	s.router.Post("/predict", predictions.HandlePredict)
	s.router.Get("/prediction_table/{uid}", predictions.HandlePredictionTable)
	s.router.Get("/model", predictions.HandleModel)

	s.router.Post("/register_user", users.HandleRegister)
	s.router.Post("/save_user_details", users.HandleSaveDetails)
	s.router.Get("/get_user_details/{uid}", users.HandleGetDetails)

	s.router.Post("/quiz_update", quizzes.HandleQuizUpdate)
	s.router.Get("/result_history/{uid}", quizzes.HandleResultHistory)
	s.router.Get("/quiz_questions/{quizid}", quizzes.HandleQuestions)

	s.router.Get("/healthz", health.HandleHealth)

	endpoints, err := s.endpoints()
	if err != nil {
		return err
	}
	landing, err := handler.NewLandingHandler(predictionService, endpoints, s.logger)
	if err != nil {
		return fmt.Errorf("creating landing handler: %w", err)
	}
	s.router.Get("/", landing.HandleIndex)

	return nil
}

// endpoints lists the mounted API routes for the landing page.
func (s *Server) endpoints() ([]handler.Endpoint, error) {
	var out []handler.Endpoint
	err := chi.Walk(s.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		out = append(out, handler.Endpoint{Method: method, Path: route})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking routes: %w", err)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out, nil
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the server until SIGINT or SIGTERM.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully:
// stop accepting connections, let in-flight requests finish within
// server.shutdown_timeout, close the database.
func (s *Server) Run(ctx context.Context) error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         s.config.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Server.Port)),
			slog.String("database", s.config.Database.Path),
			slog.Bool("legacy_status_ok", s.config.Server.LegacyStatusOK),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
