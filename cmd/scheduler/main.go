/**
 * @description
 * Entry point for the reward-service scheduler. Runs the campaign lifecycle
 * and ledger reconciliation jobs on cron schedules against the same database
 * the API serves from, and exposes a small health endpoint.
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

	"github.com/adreach/reward-service/internal/app"
	"github.com/adreach/reward-service/internal/config"
	"github.com/adreach/reward-service/internal/scheduler"
	"github.com/adreach/reward-service/internal/store"
	"github.com/adreach/reward-service/pkg/rabbitmq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	logger := scheduler.NewLogger()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=scheduler msg=\"could not load config\" error=%v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("level=fatal component=scheduler msg=\"DATABASE_URL is required\"")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=scheduler msg=\"invalid database url\" error=%v", err)
	}
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=scheduler msg=\"unable to create connection pool\" error=%v", err)
	}
	defer dbpool.Close()

	var eventProducer rabbitmq.Publisher
	if cfg.RabbitMQURL != "" {
		producer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			logger.Warn("rabbitmq unavailable, events will be dropped", "error", err)
			eventProducer = &rabbitmq.EventProducerFallback{}
		} else {
			eventProducer = producer
		}
	} else {
		eventProducer = &rabbitmq.EventProducerFallback{}
	}
	defer eventProducer.Close()

	repo := store.NewPostgresRepository(dbpool)
	service := app.NewService(repo, eventProducer, nil, app.ServiceSettings{
		DuplicateWindow: cfg.ScanDuplicateWindow,
	})

	jobs := scheduler.NewJobs(service, service, logger)
	sched := scheduler.New(jobs, logger)
	if err := sched.Register(scheduler.Schedules{
		ActivateCampaigns: cfg.ActivateCampaignsSchedule,
		CompleteCampaigns: cfg.CompleteCampaignsSchedule,
		ReconcileLedger:   cfg.ReconcileSchedule,
	}); err != nil {
		log.Fatalf("level=fatal component=scheduler msg=\"failed to register jobs\" error=%v", err)
	}
	sched.Start()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	server := &http.Server{Addr: ":" + cfg.SchedulerPort, Handler: mux}

	go func() {
		logger.Info("scheduler health server starting", "port", cfg.SchedulerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=scheduler msg=\"health server failed\" error=%v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	stopCtx := sched.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		logger.Warn("timed out waiting for running jobs")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)
	logger.Info("scheduler stopped")
}
