package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/notesfs/notes-service/internal/config"
	"github.com/notesfs/notes-service/internal/credential"
	"github.com/notesfs/notes-service/internal/handler"
	"github.com/notesfs/notes-service/internal/middleware"
	"github.com/notesfs/notes-service/internal/ratelimit"
	"github.com/notesfs/notes-service/internal/repository"
	"github.com/notesfs/notes-service/internal/service"
	"github.com/notesfs/notes-service/internal/token"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	if err := repository.RunMigrations(context.Background(), db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize rate limiter backend
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Fatalf("Failed to ping redis: %v", err)
	}
	limiter := ratelimit.NewRedisLimiter(rdb, cfg.RateLimit, cfg.RateWindow)

	// Initialize layers
	repo := repository.NewPostgres(db)
	tokens := token.NewManager(cfg.JWTSecret)
	creds := credential.NewStore()
	svc := service.NewService(repo, tokens, creds, logger)
	h := handler.NewHandler(svc, logger, cfg.Production())

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RateLimit(limiter, logger))
	api := r.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/users", h.Register).Methods("POST")
	api.HandleFunc("/users/login", h.Login).Methods("POST")
	api.HandleFunc("/notes/public", h.PublicNotes).Methods("GET")
	api.HandleFunc("/notes/public/{id}", h.PublicNote).Methods("GET")

	// Protected routes
	authRouter := api.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.Auth(tokens, repo, logger))
	authRouter.HandleFunc("/users/logout", h.Logout).Methods("POST")
	authRouter.HandleFunc("/users/profile", h.Profile).Methods("GET")
	authRouter.HandleFunc("/notes", h.UserNotes).Methods("GET")
	authRouter.HandleFunc("/notes", h.CreateNote).Methods("POST")
	authRouter.HandleFunc("/notes/{id}", h.GetNote).Methods("GET")
	authRouter.HandleFunc("/notes/{id}", h.UpdateNote).Methods("PUT")
	authRouter.HandleFunc("/notes/{id}", h.DeleteNote).Methods("DELETE")

	// Credentialed CORS for the frontend origins
	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowCredentials(),
	)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      cors(r),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
