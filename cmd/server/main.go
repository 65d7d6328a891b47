package main

import (
	"context"
	"encoding/base64"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"bloom/internal/companion"
	"bloom/internal/db"
	"bloom/internal/handlers"
	"bloom/internal/identity"
	"bloom/internal/localstore"
	mw "bloom/internal/middleware"
	"bloom/internal/profilestore"
	"bloom/internal/services"
	"bloom/internal/syncer"
)

func mustGetenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustKey(logger *zap.Logger, name string) []byte {
	raw, err := base64.StdEncoding.DecodeString(os.Getenv(name))
	if err != nil || len(raw) != 32 {
		logger.Fatal("key must be 32 bytes, base64-encoded", zap.String("env", name))
	}
	return raw
}

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}
	encryptionKey := mustKey(logger, "ENCRYPTION_KEY")
	blindIndexKey := mustKey(logger, "BLIND_INDEX_KEY")
	port := mustGetenv("PORT", "8080")
	prefsPath := mustGetenv("PREFS_PATH", "data/preferences.json")

	dbConn, err := sqlx.Open("pgx", databaseURL)
	if err != nil {
		logger.Fatal("failed to open db", zap.Error(err))
	}
	dbConn.SetMaxOpenConns(10)
	dbConn.SetConnMaxLifetime(2 * time.Hour)
	if err = dbConn.Ping(); err != nil {
		logger.Fatal("failed to ping db", zap.Error(err))
	}
	if err := db.RunMigrations(dbConn); err != nil {
		logger.Fatal("failed migrations", zap.Error(err))
	}

	encSvc, err := services.NewEncryptionService(encryptionKey, blindIndexKey)
	if err != nil {
		logger.Fatal("failed to init encryption", zap.Error(err))
	}

	store := profilestore.NewPostgres(dbConn, encSvc)
	prefs := localstore.Open(prefsPath, logger)
	ids := identity.NewService(dbConn, encSvc, []byte(jwtSecret))
	sessions := syncer.NewManager(store, prefs, logger, syncer.DefaultDebounce)
	ai := companion.NewClient(os.Getenv("COMPANION_API_URL"), os.Getenv("COMPANION_API_KEY"))

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := handlers.NewAuthHandler(ids, sessions)
	stateHandler := handlers.NewStateHandler(sessions)
	tasksHandler := handlers.NewTasksHandler(sessions)
	goalsHandler := handlers.NewGoalsHandler(sessions)
	healthHandler := handlers.NewHealthHandler(sessions)
	diaryHandler := handlers.NewDiaryHandler(sessions)
	chatHandler := handlers.NewChatHandler(sessions, ai)
	authMW := mw.NewAuthMiddleware([]byte(jwtSecret))

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/signup", authHandler.Signup)
		api.Post("/auth/login", authHandler.Login)
		api.Group(func(pr chi.Router) {
			pr.Use(authMW.RequireAuth)
			pr.Post("/auth/logout", authHandler.Logout)
			pr.Get("/state", stateHandler.Get)
			pr.Put("/state/{slot}", stateHandler.UpdateSlot)
			pr.Post("/tasks", tasksHandler.Create)
			pr.Patch("/tasks/{id}/toggle", tasksHandler.Toggle)
			pr.Delete("/tasks/{id}", tasksHandler.Delete)
			pr.Post("/goals", goalsHandler.Create)
			pr.Patch("/goals/{id}/progress", goalsHandler.Progress)
			pr.Post("/health", healthHandler.LogMetric)
			pr.Post("/cycle/period-start", healthHandler.PeriodStart)
			pr.Post("/symptoms", healthHandler.LogSymptoms)
			pr.Post("/diary", diaryHandler.Append)
			pr.Put("/partner-reflection", diaryHandler.SavePartnerReflection)
			pr.Post("/chat", chatHandler.Send)
		})
	})

	srv := &http.Server{Addr: ":" + port, Handler: r}
	go func() {
		logger.Info("server starting", zap.String("addr", ":"+port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown initiated")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	// flush any debounce window still open before the process exits
	sessions.Shutdown()
	logger.Info("server stopped")
}
