package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"suq-dashboard-service/internal/auth"
	"suq-dashboard-service/internal/config"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server pushes live order updates to connected dashboard clients. A single
// poll loop watches orders.updated_at and broadcasts a fresh pending-orders
// snapshot whenever anything changed.
type Server struct {
	DB     *pgxpool.Pool
	Logger *zap.Logger
	Config config.Config

	started sync.Once
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

func New(db *pgxpool.Pool, logger *zap.Logger, cfg config.Config) *Server {
	return &Server{
		DB:      db,
		Logger:  logger,
		Config:  cfg,
		clients: make(map[*wsClient]struct{}),
	}
}

type wsClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsClient) writeJSON(value any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(value)
}

func (c *wsClient) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

type orderSnapshot struct {
	ID            int64     `json:"id"`
	OrderNumber   string    `json:"orderNumber"`
	CustomerName  string    `json:"customerName"`
	Total         float64   `json:"total"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (s *Server) ensureStarted() {
	s.started.Do(func() {
		go s.pollLoop(context.Background())
	})
}

func (s *Server) subscribe(client *wsClient) (unsubscribe func()) {
	s.mu.Lock()
	s.clients[client] = struct{}{}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.clients, client)
		s.mu.Unlock()
	}
}

func (s *Server) broadcast(message any) {
	s.mu.RLock()
	clients := make([]*wsClient, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		if err := c.writeJSON(message); err != nil {
			_ = c.conn.Close()
			s.mu.Lock()
			delete(s.clients, c)
			s.mu.Unlock()
		}
	}
}

// feedVersion fingerprints the orders table. The count catches deletions,
// which leave max(updated_at) unchanged or lower.
type feedVersion struct {
	count     int64
	updatedAt time.Time
}

func (v feedVersion) changedFrom(prev feedVersion) bool {
	return v.count != prev.count || !v.updatedAt.Equal(prev.updatedAt)
}

func (s *Server) fetchFeedVersion(ctx context.Context) (feedVersion, error) {
	var v feedVersion
	var latest pgtype.Timestamptz
	if err := s.DB.QueryRow(ctx, `
		select count(*), max(updated_at) from orders
	`).Scan(&v.count, &latest); err != nil {
		return feedVersion{}, err
	}
	if latest.Valid {
		v.updatedAt = latest.Time
	}
	return v, nil
}

func (s *Server) fetchPendingOrders(ctx context.Context) ([]orderSnapshot, error) {
	rows, err := s.DB.Query(ctx, `
		select id, order_number, customer_name, total_amount, status, payment_status, updated_at
		from orders
		where status = 'pending'
		order by updated_at desc
		limit 100
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]orderSnapshot, 0, 16)
	for rows.Next() {
		var o orderSnapshot
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.CustomerName, &o.Total, &o.Status, &o.PaymentStatus, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Server) pollLoop(ctx context.Context) {
	interval := s.Config.WSOrdersPollInterval
	if interval <= 0 {
		interval = 3 * time.Second
	}

	var lastSeen feedVersion
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		s.mu.RLock()
		idle := len(s.clients) == 0
		s.mu.RUnlock()
		if idle {
			continue
		}

		version, err := s.fetchFeedVersion(ctx)
		if err != nil {
			s.Logger.Warn("orders version fetch failed", zap.Error(err))
			continue
		}
		if !version.changedFrom(lastSeen) {
			continue
		}
		lastSeen = version

		orders, err := s.fetchPendingOrders(ctx)
		if err != nil {
			s.Logger.Warn("pending orders fetch failed", zap.Error(err))
			s.broadcast(map[string]any{"type": "orders.refresh", "updatedAt": version.updatedAt})
			continue
		}
		s.broadcast(map[string]any{"type": "orders.state", "data": orders})
	}
}

// DashboardOrdersWS upgrades the connection, authenticates the token query
// parameter, sends an initial snapshot, then keeps the client on the
// broadcast list until it disconnects.
func (s *Server) DashboardOrdersWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// Browsers cannot set headers on websocket requests, so the token rides
	// the query string; a plain Authorization header still works for tools.
	token := r.URL.Query().Get("token")
	if token == "" {
		token = auth.ParseBearerToken(r.Header.Get("Authorization"))
	}
	if _, err := auth.VerifyAccessToken(token, s.Config.JWTSecret); err != nil {
		_ = conn.WriteJSON(map[string]any{"type": "error", "message": "unauthorized"})
		return
	}

	s.ensureStarted()
	ctx := r.Context()
	client := &wsClient{conn: conn}
	unsubscribe := s.subscribe(client)
	defer unsubscribe()

	if orders, fetchErr := s.fetchPendingOrders(ctx); fetchErr == nil {
		_ = client.writeJSON(map[string]any{"type": "orders.state", "data": orders})
	}

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	heartbeat := s.Config.WSHeartbeatInterval
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.ping(); err != nil {
				return
			}
		}
	}
}
