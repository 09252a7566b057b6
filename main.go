package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"suq-dashboard-service/internal/cache"
	"suq-dashboard-service/internal/config"
	"suq-dashboard-service/internal/db"
	httpapi "suq-dashboard-service/internal/http"
	"suq-dashboard-service/internal/logger"
	"suq-dashboard-service/internal/queue"
	"suq-dashboard-service/internal/storage"
	"suq-dashboard-service/internal/ws"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	var queueClient *queue.Client
	if cfg.RabbitMQURL != "" {
		qc, err := queue.New(cfg.RabbitMQURL)
		if err != nil {
			if cfg.Env == "production" {
				log.Fatal("rabbitmq connection failed", zap.Error(err))
			}
			log.Warn("rabbitmq connection failed; continuing without worker", zap.Error(err))
			qc = nil
		}
		if qc != nil {
			if err := queue.EnsureOrderEventsTopology(qc); err != nil {
				if cfg.Env == "production" {
					log.Fatal("rabbitmq topology failed", zap.Error(err))
				}
				log.Warn("rabbitmq topology failed; continuing without worker", zap.Error(err))
				_ = qc.Close()
				qc = nil
			}
		}

		queueClient = qc
		if qc != nil {
			defer qc.Close()

			if cfg.RabbitMQWorkerMode == "daemon" {
				log.Info("order events worker enabled", zap.String("queue", queue.OrderEventsQueue))
				worker := &queue.Worker{Client: qc, DB: pool, Logger: log}
				go func() {
					if err := worker.Run(ctx); err != nil {
						log.Error("order events worker stopped", zap.Error(err))
					}
				}()
			} else {
				log.Info("order events worker disabled", zap.String("mode", cfg.RabbitMQWorkerMode))
			}
		}
	} else {
		log.Info("order events worker disabled (RABBITMQ_URL is empty)")
	}

	var store *storage.ObjectStore
	if cfg.ObjectStoreEndpoint != "" {
		store, err = storage.NewObjectStore(ctx, storage.Config{
			Endpoint:        cfg.ObjectStoreEndpoint,
			Region:          cfg.ObjectStoreRegion,
			AccessKeyID:     cfg.ObjectStoreAccessKeyID,
			SecretAccessKey: cfg.ObjectStoreSecretAccessKey,
			Bucket:          cfg.ObjectStoreBucket,
			PublicBaseURL:   cfg.ObjectStorePublicBaseURL,
		})
		if err != nil {
			if cfg.Env == "production" {
				log.Fatal("object store init failed", zap.Error(err))
			}
			log.Warn("object store init failed; image uploads disabled", zap.Error(err))
			store = nil
		}
	} else {
		log.Info("image uploads disabled (OBJECT_STORE_ENDPOINT is empty)")
	}

	dashboardCache, err := cache.NewDashboardCache(cfg.RedisURL, cfg.AnalyticsCacheTTL)
	if err != nil {
		if cfg.Env == "production" {
			log.Fatal("redis connection failed", zap.Error(err))
		}
		log.Warn("redis connection failed; dashboard cache disabled", zap.Error(err))
		dashboardCache = cache.NewNoopDashboardCache()
	}
	defer dashboardCache.Close()

	wsServer := ws.New(pool, log, cfg)
	apiServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(pool, log, cfg, queueClient, store, dashboardCache, wsServer),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("dashboard api ready", zap.String("base", "/api"))
		log.Info("dashboard ws ready", zap.String("base", "/ws"))
		log.Info("dashboard service listening", zap.String("addr", cfg.HTTPAddr))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxShutdown); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
}
