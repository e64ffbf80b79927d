package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/xelth-com/receiptdesk/internal/ai"
	"github.com/xelth-com/receiptdesk/internal/buildinfo"
	"github.com/xelth-com/receiptdesk/internal/config"
	"github.com/xelth-com/receiptdesk/internal/database"
	"github.com/xelth-com/receiptdesk/internal/handlers"
	"github.com/xelth-com/receiptdesk/internal/middleware"
	"github.com/xelth-com/receiptdesk/internal/services/catalog"
	"github.com/xelth-com/receiptdesk/internal/services/intake"
	"github.com/xelth-com/receiptdesk/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := config.NewLogger(cfg)
	log.WithFields(logrus.Fields{
		"commit": buildinfo.Fields()["commit"],
		"env":    cfg.NodeEnv,
	}).Info("🧾 ReceiptDesk starting")

	// 2. Initialize database (embedded when local without password)
	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// 3. Synchronize schema and seed document types
	log.Info("🚀 Synchronizing database schema...")
	if err := db.Migrate(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	log.Info("✅ Schema synchronized successfully")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 4. Websocket hub for batch progress
	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	// 5. Rate limiter for AI endpoints
	limiter, closeLimiter := newLimiter(cfg, log)
	defer closeLimiter()

	// 6. Services
	extractor := ai.NewExtractor(cfg.AI.DefaultModel, cfg.AI.MaxImageEdge)
	router := handlers.NewRouter(handlers.Deps{
		Config:    cfg,
		Logger:    log,
		Users:     handlers.NewGormUserStore(db.DB),
		Extractor: extractor,
		Batch:     intake.NewBatch(extractor, hub, cfg.AI.MaxConcurrency, cfg.AI.RequestTimeout, log),
		Intake:    intake.NewService(intake.NewGormStore(db.DB), log),
		Catalog:   catalog.New(db.DB),
		Hub:       hub,
		Limiter:   limiter,
	})

	// 7. Start server with graceful shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.Infof("🚀 Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := <-shutdown
	log.Warnf("⚠️  Received signal: %v. Shutting down gracefully...", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	}
	stop()

	// Close database (this also stops embedded PostgreSQL)
	log.Info("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Errorf("Database close error: %v", err)
	}

	log.Info("✅ Shutdown complete")
}

// newLimiter uses Redis when REDIS_URL is set so limits hold across
// instances, and an in-process token bucket otherwise.
func newLimiter(cfg *config.Config, log *logrus.Logger) (middleware.Limiter, func()) {
	if cfg.RedisURL == "" {
		log.Infof("⏱️ Rate limit: in-memory, %d/min", cfg.AI.RatePerMinute)
		return middleware.NewMemoryLimiter(cfg.AI.RatePerMinute), func() {}
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %v", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).Warn("⚠️ Redis unreachable, rate limiter fails open until it recovers")
	} else {
		log.Infof("✅ Rate limit: redis, %d/min", cfg.AI.RatePerMinute)
	}

	return middleware.NewRedisLimiter(client, int64(cfg.AI.RatePerMinute), time.Minute), func() {
		client.Close()
	}
}
