package main

import (
	"coachdesk/training-app/internal/api"
	"coachdesk/training-app/internal/config"
	"coachdesk/training-app/internal/draft"
	"coachdesk/training-app/internal/repository/mongo"
	"coachdesk/training-app/internal/service"
	"coachdesk/training-app/internal/storage"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	log.Println("Starting Training App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() { // Run index creation in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureExerciseIndexes(ctx, appDB.Collection("exercises"))
		mongo.EnsureRoutineIndexes(ctx, appDB.Collection("routines"))
		mongo.EnsureRoutineSessionIndexes(ctx, appDB.Collection("routine_sessions"))
		mongo.EnsureSessionExerciseIndexes(ctx, appDB.Collection("session_exercises"))
		mongo.EnsureExerciseSetIndexes(ctx, appDB.Collection("exercise_sets"))
		mongo.EnsureExecutionSessionIndexes(ctx, appDB.Collection("execution_sessions"))
		log.Println("Index creation process completed.")
	}()

	// --- Draft Store ---
	var draftStore draft.Store
	if cfg.Redis.Address != "" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		draftStore, err = draft.NewRedisStore(rdb, cfg.Draft.KeyPrefix, cfg.Draft.TTL)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize Redis draft store: %v", err)
		}
		log.Printf("Redis draft store initialized at %s", cfg.Redis.Address)
	} else {
		// Single-instance fallback; drafts do not survive a restart.
		draftStore = draft.NewMemoryStore()
		log.Println("No Redis address configured, using in-memory draft store.")
	}

	// --- Media Storage (optional) ---
	var mediaStorage storage.MediaStorage
	if cfg.S3.BucketName != "" {
		log.Println("Initializing media storage service...")
		mediaStorage, err = storage.NewS3Storage(cfg.S3)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
		}
	} else {
		log.Println("No S3 bucket configured, demo video URLs disabled.")
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	routineRepo := mongo.NewMongoRoutineRepository(appDB)
	routineSessionRepo := mongo.NewMongoRoutineSessionRepository(appDB)
	sessionExerciseRepo := mongo.NewMongoSessionExerciseRepository(appDB)
	exerciseSetRepo := mongo.NewMongoExerciseSetRepository(appDB)
	executionSessionRepo := mongo.NewMongoExecutionSessionRepository(appDB)
	txRunner := mongo.NewMongoTransactionRunner(dbClient)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	catalogService := service.NewCatalogService(exerciseRepo, mediaStorage)
	authoringService := service.NewAuthoringService(
		draftStore, catalogService, userRepo,
		routineRepo, routineSessionRepo, sessionExerciseRepo, exerciseSetRepo,
	)
	commitService := service.NewCommitService(
		draftStore, txRunner, userRepo,
		routineRepo, routineSessionRepo, sessionExerciseRepo, exerciseSetRepo, executionSessionRepo,
	)
	coachService := service.NewCoachService(
		userRepo, routineRepo, routineSessionRepo, sessionExerciseRepo, exerciseSetRepo,
	)
	studentService := service.NewStudentService(executionSessionRepo)

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret,
		authService, catalogService, authoringService, commitService, coachService, studentService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
