/**
 * @description
 * Entry point for the reward-service API server. Wires configuration, the
 * PostgreSQL pool, the RabbitMQ producer (with a no-op fallback when the
 * broker is down), the optional Redis rate limiter, and the HTTP router, then
 * serves until interrupted.
 */

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adreach/reward-service/internal/api"
	"github.com/adreach/reward-service/internal/app"
	"github.com/adreach/reward-service/internal/config"
	"github.com/adreach/reward-service/internal/store"
	"github.com/adreach/reward-service/pkg/rabbitmq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=api msg=\"could not load config\" error=%v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("level=fatal component=api msg=\"DATABASE_URL is required\"")
	}
	if cfg.InternalAPIKey == "" {
		log.Fatal("level=fatal component=api msg=\"INTERNAL_API_KEY is required\"")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=api msg=\"invalid database url\" error=%v", err)
	}
	poolConfig.MaxConns = 100
	poolConfig.MinConns = 20
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=api msg=\"unable to create connection pool\" error=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=api msg=\"database connection pool established\"")

	var eventProducer rabbitmq.Publisher
	if cfg.RabbitMQURL != "" {
		producer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("level=warn component=api msg=\"rabbitmq unavailable, events will be dropped\" error=%v", err)
			eventProducer = &rabbitmq.EventProducerFallback{}
		} else {
			eventProducer = producer
		}
	} else {
		log.Println("level=warn component=api msg=\"RABBITMQ_URL not set, events will be dropped\"")
		eventProducer = &rabbitmq.EventProducerFallback{}
	}
	defer eventProducer.Close()

	var rateLimiter *app.RedisScanRateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("level=warn component=api msg=\"redis unavailable, rate limiting disabled\" error=%v", err)
		} else {
			rateLimiter = app.NewRedisScanRateLimiter(redisClient)
			log.Println("level=info component=api msg=\"redis rate limiter enabled\"")
		}
		cancel()
	}

	repo := store.NewPostgresRepository(dbpool)
	service := app.NewService(repo, eventProducer, rateLimiter, app.ServiceSettings{
		DuplicateWindow:       cfg.ScanDuplicateWindow,
		FingerprintRateLimit:  cfg.ScanFingerprintRateLimit,
		FingerprintRateWindow: cfg.ScanFingerprintRateWindow,
		IPRateLimit:           cfg.ScanIPRateLimit,
		IPRateWindow:          cfg.ScanIPRateWindow,
		FallbackRedirectURL:   cfg.FallbackRedirectURL,
	})
	handlers := api.NewRewardHandlers(service)
	router := api.NewRouter(handlers, cfg.InternalAPIKey)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("level=info component=api msg=\"server starting\" port=%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=api msg=\"server failed\" error=%v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("level=info component=api msg=\"shutting down server\"")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=api msg=\"server shutdown failed\" error=%v", err)
	}
	log.Println("level=info component=api msg=\"server stopped\"")
}
