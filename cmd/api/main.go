package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/snapdeck/snapdeck-review-engine/internal/adapters/cache"
	adapterHTTP "github.com/snapdeck/snapdeck-review-engine/internal/adapters/handler/http"
	"github.com/snapdeck/snapdeck-review-engine/internal/adapters/repository"
	"github.com/snapdeck/snapdeck-review-engine/internal/adapters/session"
	"github.com/snapdeck/snapdeck-review-engine/internal/core/domain"
	"github.com/snapdeck/snapdeck-review-engine/internal/core/scheduler"
	"github.com/snapdeck/snapdeck-review-engine/internal/core/services"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	startTime := time.Now()

	_ = godotenv.Load()

	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")
	serverPort := envOr("PORT", "8080")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("Database connected successfully.")

	var sessionStore domain.SessionStore
	rdb, err := cache.NewRedisClient(
		envOr("REDIS_HOST", "localhost"),
		envOr("REDIS_PORT", "6379"),
		os.Getenv("REDIS_PASSWORD"),
		0,
	)
	if err != nil {
		log.Printf("Redis unavailable, sessions held in memory: %v", err)
		rdb = nil
		sessionStore = session.NewMemorySessionStore()
	} else {
		sessionStore = session.NewRedisSessionStore(rdb)
	}

	dailyLimit := domain.DefaultDailyNewLimit
	if raw := os.Getenv("DAILY_NEW_LIMIT"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			log.Fatalf("Critical: invalid DAILY_NEW_LIMIT %q", raw)
		}
		dailyLimit = parsed
	}

	cfg := scheduler.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Critical: %v", err)
	}

	itemRepo := repository.NewPostgresItemRepository(db)
	stateRepo := repository.NewPostgresReviewStateRepository(db)
	logRepo := repository.NewPostgresReviewLogRepository(db)

	quotaService := services.NewQuotaService(logRepo, repository.StaticConfigSource{Limit: dailyLimit})
	queueService := services.NewQueueService(itemRepo, stateRepo, logRepo, sessionStore, quotaService, cfg)

	statsService := services.NewStatsService(logRepo)

	reviewHandler := adapterHTTP.NewReviewHandler(queueService, quotaService)
	statsHandler := adapterHTTP.NewStatsHandler(statsService)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		ReviewHandler: reviewHandler,
		StatsHandler:  statsHandler,
		DB:            db,
		Redis:         rdb,
		StartTime:     startTime,
	})

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Snapdeck Review Engine running on http://localhost:%s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}
