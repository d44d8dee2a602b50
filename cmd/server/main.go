package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"quizlive/internal/auth"
	"quizlive/internal/models"
	"quizlive/internal/quiz"
	"quizlive/internal/session"
	"quizlive/pkg/blob"
	"quizlive/pkg/cache"
	"quizlive/pkg/database"
	"quizlive/pkg/websocket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	dbConfig := &database.Config{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   os.Getenv("DB_NAME"),
	}

	db, err := database.NewPostgresDB(dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Quiz{},
		&models.Question{},
		&models.Answer{},
		&models.Session{},
		&models.Participant{},
		&models.Response{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisCache := cache.NewRedisCache(os.Getenv("REDIS_ADDR"))
	blobStore := blob.NewURLStore(os.Getenv("MEDIA_BASE_URL"))

	wsHub := websocket.NewHub()
	go wsHub.Run()

	authRepo := auth.NewRepository(db)
	quizRepo := quiz.NewRepository(db)
	sessionRepo := session.NewRepository(db)

	jwtSecret := os.Getenv("JWT_SECRET")
	authService := auth.NewService(authRepo, jwtSecret)
	quizService := quiz.NewService(quizRepo, blobStore)
	sessionService := session.NewService(sessionRepo, redisCache, wsHub, blobStore)

	authHandler := auth.NewHandler(authService)
	quizHandler := quiz.NewHandler(quizService)
	sessionHandler := session.NewHandler(sessionService)

	router := mux.NewRouter()

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	handler := corsMiddleware.Handler(router)

	// Auth routes - no JWT required
	router.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Host-only authoring routes - JWT required
	hostRouter := router.PathPrefix("/api").Subrouter()
	hostRouter.Use(auth.JWTMiddleware(jwtSecret))
	hostRouter.HandleFunc("/quizzes", quizHandler.CreateQuiz).Methods("POST", "OPTIONS")
	hostRouter.HandleFunc("/quizzes/{quizID:[0-9]+}", quizHandler.UpdateQuiz).Methods("PUT", "OPTIONS")
	hostRouter.HandleFunc("/quizzes/{quizID:[0-9]+}", quizHandler.DeleteQuiz).Methods("DELETE", "OPTIONS")
	hostRouter.HandleFunc("/quizzes/{quizID:[0-9]+}/sessions", sessionHandler.CreateSession).Methods("POST", "OPTIONS")
	hostRouter.HandleFunc("/media/upload-url", quizHandler.GenerateUploadURL).Methods("POST", "OPTIONS")

	// Public routes - participants have no accounts
	router.HandleFunc("/api/quizzes", quizHandler.ListQuizzes).Methods("GET")
	router.HandleFunc("/api/quizzes/{quizID:[0-9]+}", quizHandler.GetQuiz).Methods("GET")
	router.HandleFunc("/api/sessions/{code:[A-Za-z0-9]+}", sessionHandler.GetSession).Methods("GET")
	router.HandleFunc("/api/sessions/{sessionID:[0-9]+}/start", sessionHandler.StartSession).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionID:[0-9]+}/results", sessionHandler.ShowResults).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionID:[0-9]+}/next", sessionHandler.NextQuestion).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionID:[0-9]+}/end", sessionHandler.EndSession).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionID:[0-9]+}/join", sessionHandler.JoinSession).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionID:[0-9]+}/answers", sessionHandler.SubmitAnswer).Methods("POST")
	router.HandleFunc("/api/sessions/{sessionID:[0-9]+}/question", sessionHandler.GetCurrentQuestion).Methods("GET")
	router.HandleFunc("/api/sessions/{sessionID:[0-9]+}/participants", sessionHandler.GetParticipants).Methods("GET")
	router.HandleFunc("/api/sessions/{sessionID:[0-9]+}/responses", sessionHandler.GetResponses).Methods("GET")
	router.HandleFunc("/api/sessions/{sessionID:[0-9]+}/participants/{participantID:[0-9]+}/responses", sessionHandler.GetParticipantResponses).Methods("GET")
	router.HandleFunc("/api/sessions/{sessionID:[0-9]+}/leaderboard", sessionHandler.GetLeaderboard).Methods("GET")

	// WebSocket endpoint, one room per join code
	router.HandleFunc("/ws/{code}", wsHub.HandleWebSocket)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server shutdown gracefully")
}
