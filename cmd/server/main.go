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

	"quizwhiz-backend/internal/config"
	"quizwhiz-backend/internal/database"
	"quizwhiz-backend/internal/handlers"
	"quizwhiz-backend/internal/logger"
	"quizwhiz-backend/internal/middleware"
	"quizwhiz-backend/internal/quizgen"
	"quizwhiz-backend/internal/repository"
	"quizwhiz-backend/internal/router"
	"quizwhiz-backend/internal/services"
	"quizwhiz-backend/internal/websocket"
	"quizwhiz-backend/internal/worker"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.L()
	log.WithField("env", cfg.Env).Info("starting QuizWhiz backend")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("PostgreSQL connection failed")
	}
	defer pool.Close()

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.WithError(err).Fatal("Redis connection failed")
	}
	defer redisClients.Close()

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.WithError(err).Fatal("database migration failed")
	}

	// ──── Repositories ────
	profileRepo := repository.NewProfileRepo(pool)
	documentRepo := repository.NewDocumentRepo(pool)
	quizRepo := repository.NewQuizRepo(pool)
	jobRepo := repository.NewJobRepo(pool)

	// ──── Step 5: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(
		context.Background(),
		cfg.GeminiAPIKey,
		cfg.GeminiModel,
		cfg.GeminiTemperature,
		cfg.GeminiConcurrentReqs,
	)
	if err != nil {
		log.WithError(err).Fatal("Gemini client initialization failed")
	}
	defer geminiService.Close()
	log.WithField("model", cfg.GeminiModel).Info("Gemini client initialized")

	// ──── Services ────
	generator := quizgen.NewGenerator(geminiService, cfg.GenerationOptions())
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	authService := services.NewAuthService(profileRepo, redisClients.Queue, jwtAuth, cfg.IsAdminEmail, cfg.AdminPasswordHash)
	documentService := services.NewDocumentService(documentRepo, services.NewPDFService(), cfg.StoragePath)
	sessionStore := services.NewSessionStore(redisClients.Queue, cfg.SessionTTL)
	events := services.NewEventPublisher(redisClients.Queue)
	quizService := services.NewQuizService(
		generator,
		quizRepo,
		jobRepo,
		services.NewRedisJobQueue(redisClients.Queue),
		sessionStore,
		documentService,
		cfg.FeedbackConcurrency,
	)

	// ──── Step 6: Start Job Worker Pool ────
	workerPool := worker.NewPool(redisClients.Queue, jobRepo, quizService, events, cfg.WorkerCount)
	workerPool.Start()

	// ──── Step 7: WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, jwtAuth, cfg.FrontendURL)

	// ──── Step 8: Start HTTP Server ────
	r := router.New(router.Deps{
		JWTAuth:         jwtAuth,
		AuthHandler:     handlers.NewAuthHandler(authService, profileRepo),
		DocumentHandler: handlers.NewDocumentHandler(documentService, quizService),
		QuizHandler:     handlers.NewQuizHandler(quizService),
		HealthHandler:   handlers.NewHealthHandler(pool, redisClients),
		WSHub:           wsHub,
		FrontendURL:     cfg.FrontendURL,
	})

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 60 * time.Second,
		// Topic quizzes and feedback are generated within the request.
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
		wsHub.Close()
		workerPool.Stop()
	}()

	log.WithField("port", cfg.Port).Info("QuizWhiz backend ready")

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server error")
	}
	<-done
}
