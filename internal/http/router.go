package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"suq-dashboard-service/internal/cache"
	"suq-dashboard-service/internal/config"
	"suq-dashboard-service/internal/http/handlers"
	"suq-dashboard-service/internal/middleware"
	"suq-dashboard-service/internal/queue"
	"suq-dashboard-service/internal/storage"
	"suq-dashboard-service/internal/ws"
)

func NewRouter(
	db *pgxpool.Pool,
	logger *zap.Logger,
	cfg config.Config,
	queueClient *queue.Client,
	store *storage.ObjectStore,
	dashboardCache cache.DashboardCache,
	wsServer *ws.Server,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Telemetry(logger))

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"Cache-Control",
				"Pragma",
			},
			AllowCredentials: true,
			MaxAge:           300,
		}
		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}
		r.Use(cors.Handler(options))
	}

	h := &handlers.Handler{
		DB:     db,
		Logger: logger,
		Config: cfg,
		Queue:  queueClient,
		Store:  store,
		Cache:  dashboardCache,
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.RejectAuthenticated(cfg.JWTSecret)).Post("/login", h.AuthLogin)
		r.Group(func(r chi.Router) {
			r.Use(middleware.DashboardAuth(db, cfg.JWTSecret))
			r.Post("/logout", h.AuthLogout)
			r.Get("/me", h.AuthMe)
		})
	})

	r.Route("/api/dashboard", func(r chi.Router) {
		r.Use(middleware.DashboardAuth(db, cfg.JWTSecret))

		r.Get("/metrics", h.DashboardMetrics)
		r.Get("/charts", h.DashboardCharts)
		r.Get("/analytics", h.DashboardAnalytics)
		r.Get("/export", h.DashboardExport)
		r.Get("/report", h.DashboardReport)

		r.Route("/branches", func(r chi.Router) {
			r.Get("/", h.BranchesList)
			r.Post("/", h.BranchesCreate)
			r.Get("/export", h.BranchesExport)
			r.Get("/{id}", h.BranchesGet)
			r.Put("/{id}", h.BranchesUpdate)
			r.Delete("/{id}", h.BranchesDelete)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.CategoriesList)
			r.Post("/", h.CategoriesCreate)
			r.Get("/export", h.CategoriesExport)
			r.Get("/{id}", h.CategoriesGet)
			r.Put("/{id}", h.CategoriesUpdate)
			r.Delete("/{id}", h.CategoriesDelete)
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", h.ItemsList)
			r.Post("/", h.ItemsCreate)
			r.Get("/export", h.ItemsExport)
			r.Get("/{id}", h.ItemsGet)
			r.Put("/{id}", h.ItemsUpdate)
			r.Delete("/{id}", h.ItemsDelete)
			r.Post("/{id}/image", h.ItemImageUpload)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.UsersList)
			r.Post("/", h.UsersCreate)
			r.Get("/export", h.UsersExport)
			r.Get("/{id}", h.UsersGet)
			r.Put("/{id}", h.UsersUpdate)
			r.Delete("/{id}", h.UsersDelete)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", h.ExpensesList)
			r.Post("/", h.ExpensesCreate)
			r.Get("/export", h.ExpensesExport)
			r.Get("/{id}", h.ExpensesGet)
			r.Put("/{id}", h.ExpensesUpdate)
			r.Delete("/{id}", h.ExpensesDelete)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.OrdersList)
			r.Post("/", h.OrdersCreate)
			r.Get("/export", h.OrdersExport)
			r.Get("/{id}", h.OrdersGet)
			r.Put("/{id}", h.OrdersUpdate)
			r.Patch("/{id}/status", h.OrdersUpdateStatus)
			r.Patch("/{id}/payment", h.OrdersUpdatePayment)
			r.Delete("/{id}", h.OrdersDelete)
		})

		r.Get("/plans", h.PlansList)
		r.Route("/subscription", func(r chi.Router) {
			r.Get("/", h.SubscriptionGet)
			r.Post("/", h.SubscriptionSubscribe)
			r.Delete("/", h.SubscriptionCancel)
		})
	})

	if wsServer != nil {
		r.Get("/ws/dashboard/orders", wsServer.DashboardOrdersWS)
	}

	return r
}
