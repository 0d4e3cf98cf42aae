package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"chesscoach/internal/classroom"
	"chesscoach/internal/config"
	"chesscoach/internal/database"
	"chesscoach/internal/handlers"
	"chesscoach/internal/repository"
	"chesscoach/internal/security"
	"chesscoach/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	puzzleRepo := repository.NewPuzzleRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	// Initialize services
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	authService := service.NewAuthService(userRepo, cfg.SessionDuration)
	studentService := service.NewStudentService(userRepo, emailService)
	puzzleService := service.NewPuzzleService(puzzleRepo)
	assignmentService := service.NewAssignmentService(assignmentRepo, puzzleRepo, userRepo)
	scheduleService := service.NewScheduleService(scheduleRepo, userRepo, emailService)

	googleOAuth := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}

	// Classroom board channel
	hub := classroom.NewHub()
	go hub.Run()

	tokenIssuer := security.NewRoomTokenIssuer(cfg.SessionSecret, cfg.RoomTokenTTL)
	csrf := security.NewCSRFGenerator(cfg.SessionSecret)
	loginLimiter := security.NewRateLimiter(10, time.Minute)

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService, csrf, loginLimiter)
	authHandler := handlers.NewAuthHandler(authService, csrf, googleOAuth, cfg.OAuthRedirectBaseURL)
	studentHandler := handlers.NewStudentHandler(studentService)
	puzzleHandler := handlers.NewPuzzleHandler(puzzleService)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	classroomHandler := handlers.NewClassroomHandler(scheduleService, tokenIssuer, hub)

	// Setup routes
	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /api/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("PUT /api/me", middleware.RequireAuth(middleware.CSRFProtect(authHandler.UpdateMe)))
	mux.HandleFunc("GET /auth/google/start", authHandler.StartGoogleOAuth)
	mux.HandleFunc("GET /auth/google/callback", authHandler.GoogleOAuthCallback)

	// Students (coach only)
	mux.HandleFunc("GET /api/students", middleware.RequireCoach(studentHandler.List))
	mux.HandleFunc("POST /api/students", middleware.RequireCoach(middleware.CSRFProtect(studentHandler.Create)))
	mux.HandleFunc("GET /api/students/{id}", middleware.RequireCoach(studentHandler.Get))
	mux.HandleFunc("PUT /api/students/{id}", middleware.RequireCoach(middleware.CSRFProtect(studentHandler.Update)))
	mux.HandleFunc("POST /api/students/{id}/regenerate-password", middleware.RequireCoach(middleware.CSRFProtect(studentHandler.RegeneratePassword)))

	// Puzzles (coach only)
	mux.HandleFunc("GET /api/puzzles", middleware.RequireCoach(puzzleHandler.List))
	mux.HandleFunc("POST /api/puzzles", middleware.RequireCoach(middleware.CSRFProtect(puzzleHandler.Create)))
	mux.HandleFunc("GET /api/puzzles/{id}", middleware.RequireCoach(puzzleHandler.Get))
	mux.HandleFunc("PUT /api/puzzles/{id}", middleware.RequireCoach(middleware.CSRFProtect(puzzleHandler.Update)))
	mux.HandleFunc("DELETE /api/puzzles/{id}", middleware.RequireCoach(middleware.CSRFProtect(puzzleHandler.Delete)))

	// Assignments and attempts
	mux.HandleFunc("GET /api/assignments", middleware.RequireAuth(assignmentHandler.List))
	mux.HandleFunc("POST /api/assignments", middleware.RequireCoach(middleware.CSRFProtect(assignmentHandler.Create)))
	mux.HandleFunc("GET /api/assignments/{id}", middleware.RequireAuth(assignmentHandler.Get))
	mux.HandleFunc("DELETE /api/assignments/{id}", middleware.RequireCoach(middleware.CSRFProtect(assignmentHandler.Delete)))
	mux.HandleFunc("POST /api/assignments/{id}/attempts", middleware.RequireStudent(middleware.CSRFProtect(assignmentHandler.SubmitAttempt)))

	// Classes
	mux.HandleFunc("GET /api/classes", middleware.RequireAuth(scheduleHandler.List))
	mux.HandleFunc("POST /api/classes", middleware.RequireCoach(middleware.CSRFProtect(scheduleHandler.Create)))
	mux.HandleFunc("GET /api/classes/{id}", middleware.RequireAuth(scheduleHandler.Get))
	mux.HandleFunc("PUT /api/classes/{id}", middleware.RequireCoach(middleware.CSRFProtect(scheduleHandler.Update)))
	mux.HandleFunc("DELETE /api/classes/{id}", middleware.RequireCoach(middleware.CSRFProtect(scheduleHandler.Delete)))
	mux.HandleFunc("POST /api/classes/{id}/start", middleware.RequireCoach(middleware.CSRFProtect(scheduleHandler.Start)))
	mux.HandleFunc("POST /api/classes/{id}/end", middleware.RequireCoach(middleware.CSRFProtect(scheduleHandler.End)))
	mux.HandleFunc("POST /api/classes/{id}/join", middleware.RequireStudent(middleware.CSRFProtect(scheduleHandler.Join)))
	mux.HandleFunc("POST /api/classes/{id}/room-token", middleware.RequireAuth(middleware.CSRFProtect(classroomHandler.RoomToken)))

	// Classroom board channel. Auth is the room token, not the cookie.
	mux.HandleFunc("GET /ws/classroom/{id}", classroomHandler.Connect)

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Background loops
	go cleanupExpiredSessions(authService)
	go autoCompleteClasses(scheduleService)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// cleanupExpiredSessions periodically removes expired sessions
func cleanupExpiredSessions(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
		} else {
			log.Println("Expired sessions cleaned up")
		}
	}
}

// autoCompleteClasses periodically completes classes whose scheduled
// window has passed without the coach ending them.
func autoCompleteClasses(scheduleService *service.ScheduleService) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		n, err := scheduleService.AutoCompleteElapsed()
		if err != nil {
			log.Printf("Error auto-completing classes: %v", err)
			continue
		}
		if n > 0 {
			log.Printf("Auto-completed %d elapsed classes", n)
		}
	}
}
