package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/segyhp/library-circulation/pkg/response"
)

type dbPinger interface {
	PingContext(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type HealthHandler struct {
	db      dbPinger
	redis   redisPinger
	timeout time.Duration
}

// NewHealthHandler builds the health check handler. A nil redis skips the cache check.
func NewHealthHandler(db dbPinger, redis redisPinger, timeout time.Duration) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, timeout: timeout}
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health is the liveness check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, HealthStatus{Status: "ok", Timestamp: time.Now(), Checks: map[string]string{}})
}

// Ready pings the database and redis in parallel
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var mu sync.Mutex
	checks := map[string]string{"redis": "disabled"}
	record := func(name string, err error) error {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			checks[name] = "failed: " + err.Error()
			return err
		}
		checks[name] = "ok"
		return nil
	}

	var g errgroup.Group
	g.Go(func() error {
		return record("database", h.db.PingContext(ctx))
	})
	if h.redis != nil {
		g.Go(func() error {
			return record("redis", h.redis.Ping(ctx).Err())
		})
	}

	status := HealthStatus{Status: "ok", Timestamp: time.Now(), Checks: checks}
	if err := g.Wait(); err != nil {
		status.Status = "error"
		response.Status(w, http.StatusServiceUnavailable, "Service not ready", status)
		return
	}

	response.Success(w, status)
}
