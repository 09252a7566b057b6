package handlers

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"suq-dashboard-service/internal/cache"
	"suq-dashboard-service/internal/config"
	"suq-dashboard-service/internal/queue"
	"suq-dashboard-service/internal/storage"
)

type Handler struct {
	DB     *pgxpool.Pool
	Logger *zap.Logger
	Config config.Config
	Queue  *queue.Client
	Store  *storage.ObjectStore
	Cache  cache.DashboardCache
}
