package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"quizwhiz-backend/internal/handlers"
	"quizwhiz-backend/internal/middleware"
	"quizwhiz-backend/internal/websocket"
)

type Deps struct {
	JWTAuth         *middleware.JWTAuth
	AuthHandler     *handlers.AuthHandler
	DocumentHandler *handlers.DocumentHandler
	QuizHandler     *handlers.QuizHandler
	HealthHandler   *handlers.HealthHandler
	WSHub           *websocket.Hub
	FrontendURL     string
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(d.FrontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	// Generation calls the model; 20 req/min per user
	generationLimiter := middleware.NewRateLimiter(20, time.Minute)

	r.Get("/health", d.HealthHandler.Check)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/topics", d.QuizHandler.Topics)

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", d.AuthHandler.Register)
			r.Post("/admin/login", d.AuthHandler.AdminLogin)
			r.Post("/refresh", d.AuthHandler.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(d.JWTAuth.Middleware)
				r.Post("/logout", d.AuthHandler.Logout)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(d.JWTAuth.Middleware)

			// ──── Document Library ────
			r.Route("/documents", func(r chi.Router) {
				r.Get("/", d.DocumentHandler.List)
				r.Get("/{id}", d.DocumentHandler.Get)
				r.With(generationLimiter.Middleware).Post("/{id}/quizzes", d.DocumentHandler.GenerateQuiz)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", d.DocumentHandler.Upload)
					r.Delete("/{id}", d.DocumentHandler.Delete)
				})
			})

			// ──── Quizzes ────
			r.With(generationLimiter.Middleware).Post("/quizzes/topic", d.QuizHandler.GenerateFromTopic)
			r.With(generationLimiter.Middleware).Post("/flash-facts", d.QuizHandler.FlashFacts)
			r.Get("/quizzes/{id}", d.QuizHandler.Get)
			r.Post("/quizzes/{id}/activate", d.QuizHandler.Activate)

			// ──── Play Session ────
			r.Route("/session", func(r chi.Router) {
				r.Get("/active", d.QuizHandler.ActiveQuiz)
				r.Get("/flash-facts", d.QuizHandler.ActiveFlashFacts)
				r.Post("/start", d.QuizHandler.StartSession)
				r.Put("/answers", d.QuizHandler.SaveAnswer)
				r.Post("/submit", d.QuizHandler.Submit)
				r.Get("/result", d.QuizHandler.Result)
				r.With(generationLimiter.Middleware).Post("/result/feedback", d.QuizHandler.ResultFeedback)
			})

			// ──── Profile ────
			r.Get("/me", d.AuthHandler.Me)
			r.Get("/me/attempts", d.QuizHandler.Attempts)

			r.Get("/jobs/{id}", d.QuizHandler.GetJob)
		})

		// Token travels in the query string
		r.Get("/ws", d.WSHub.HandleWebSocket)
	})

	return r
}
