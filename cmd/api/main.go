// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/peerzee/match-backend/internal/ai"
	"github.com/peerzee/match-backend/internal/common/database"
	"github.com/peerzee/match-backend/internal/config"
	"github.com/peerzee/match-backend/internal/matchmaking"
	"github.com/peerzee/match-backend/internal/presence"
	"github.com/peerzee/match-backend/internal/realtime"
	"github.com/peerzee/match-backend/internal/session"
)

var startTime = time.Now()

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting Peerzee Match API")
	log.Println("========================================")

	// 1. Load environment variables
	log.Println("📁 Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found (%v), using environment variables", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// 2. Load and validate configuration
	log.Println("\n📋 Step 2: Loading configuration...")
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed:", err)
	}
	log.Println("✅ Configuration loaded and valid")

	// 3. Connect to PostgreSQL
	log.Println("\n🗄️  Step 3: Connecting to PostgreSQL...")
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("❌ Failed to connect to PostgreSQL:", err)
	}
	defer db.Close()
	log.Println("✅ Connected to PostgreSQL successfully")

	// 4. Connect to Redis (optional)
	log.Println("\n📮 Step 4: Connecting to Redis...")
	var presenceService presence.Service
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable (%v), continuing without presence tracking", err)
		} else {
			defer redisClient.Close()
			presenceService = presence.NewService(redisClient)
			log.Println("✅ Connected to Redis successfully")
		}
	} else {
		log.Println("⚠️  Redis URL not configured, skipping presence tracking")
	}

	// 5. Run database migrations
	log.Println("\n🔨 Step 5: Running database migrations...")
	if err := runMigrations(db); err != nil {
		log.Fatal("❌ Failed to run migrations: ", err)
	}
	log.Println("✅ Database migrations completed")

	// 6. Initialize AI client
	log.Println("\n🤖 Step 6: Initializing AI client...")
	aiClient, err := ai.NewClient(
		context.Background(),
		cfg.GeminiAPIKey,
		cfg.EmbeddingModel,
		cfg.TopicModel,
		cfg.EmbeddingDims,
	)
	if err != nil {
		log.Fatal("❌ Failed to initialize AI client:", err)
	}
	defer aiClient.Close()
	log.Println("✅ AI client initialized")

	// 7. Initialize session module
	log.Println("\n🎥 Step 7: Initializing session module...")
	sessionRepo := session.NewPostgresRepository(db)
	sessionService := session.NewService(session.Config{
		BlurMax:            cfg.BlurMax,
		MaxTopics:          cfg.MaxTopics,
		SilenceThreshold:   cfg.SilenceThreshold,
		SuggestionCooldown: cfg.SuggestionCooldown,
	}, sessionRepo)
	sessionHandler := session.NewHandler(sessionService)
	log.Println("✅ Session module initialized")

	// 8. Initialize matchmaking module
	log.Println("\n💘 Step 8: Initializing matchmaking module...")
	matcher := matchmaking.NewMatcher(cfg.SimilarityThreshold)
	matchService := matchmaking.NewService(matcher, sessionService)
	matchHandler := matchmaking.NewHandler(matchService)
	log.Println("✅ Matchmaking module initialized")

	// 9. Initialize realtime gateway
	log.Println("\n🔌 Step 9: Initializing realtime gateway...")
	hub := realtime.NewHub()
	gateway := realtime.NewGateway(hub, matchService, sessionService, aiClient, presenceService, cfg.JWTSecret)
	hub.SetHandler(gateway)
	go hub.Run()

	scheduler := realtime.NewScheduler(gateway, sessionService, realtime.SchedulerConfig{
		QueueBroadcastInterval: cfg.QueueBroadcastInterval,
		GameLoopInterval:       cfg.GameLoopInterval,
		BlurInterval:           cfg.BlurInterval,
		BlurDecrement:          cfg.BlurDecrement,
		TopicInterval:          cfg.TopicInterval,
		MaxTopics:              cfg.MaxTopics,
	})
	scheduler.Start()
	log.Println("✅ Realtime gateway initialized")

	// 10. Setup routes
	log.Println("\n🛣️  Step 10: Setting up routes...")
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	realtime.RegisterRoutes(router, gateway)
	matchmaking.RegisterRoutes(router, matchHandler)
	session.RegisterRoutes(router, sessionHandler)
	if presenceService != nil {
		presence.RegisterRoutes(router, presence.NewHandler(presenceService))
	}

	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)
	log.Println("✅ Routes registered")

	// 11. Create and start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Println("\n========================================")
		log.Printf("🚀 Server starting on http://localhost%s", srv.Addr)
		log.Printf("🌍 Environment: %s", cfg.Environment)
		log.Println("========================================")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n⚠️  Shutdown signal received...")

	scheduler.Stop()
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server forced to shutdown:", err)
	}

	log.Println("✅ Server exited gracefully")
}

// runMigrations creates the session audit schema
func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS video_sessions (
            id UUID PRIMARY KEY,
            user1_id VARCHAR(64) NOT NULL,
            user2_id VARCHAR(64) NOT NULL,
            intent_mode VARCHAR(20) NOT NULL,
            status VARCHAR(20) NOT NULL,
            started_at TIMESTAMP WITH TIME ZONE NOT NULL,
            ended_at TIMESTAMP WITH TIME ZONE,
            duration_seconds INTEGER
        )`,

		`CREATE INDEX IF NOT EXISTS idx_video_sessions_user1 ON video_sessions(user1_id)`,
		`CREATE INDEX IF NOT EXISTS idx_video_sessions_user2 ON video_sessions(user2_id)`,
		`CREATE INDEX IF NOT EXISTS idx_video_sessions_started ON video_sessions(started_at DESC)`,
	}

	for i, migration := range migrations {
		log.Printf("   - Running migration %d/%d...", i+1, len(migrations))
		if _, err := db.Exec(migration); err != nil {
			if !strings.Contains(err.Error(), "already exists") {
				return fmt.Errorf("migration %d failed: %w", i+1, err)
			}
			log.Printf("   - Migration %d skipped (already exists)", i+1)
		}
	}

	return nil
}

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Printf("← %s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the logging wrapper
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
