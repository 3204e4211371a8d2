package services

import (
	"context"
	"time"

	"github.com/formcraft/formcraft-backend/logger"
	"github.com/formcraft/formcraft-backend/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const checkTimeout = 2 * time.Second

// DBPinger is satisfied by *pgxpool.Pool and pgxmock.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// QueueReporter is satisfied by *WorkerPool.
type QueueReporter interface {
	QueueDepth() int
	IsRunning() bool
}

type HealthService struct {
	db        DBPinger
	redis     redis.Cmdable
	pool      QueueReporter
	queueSize int
	version   string
	startTime time.Time
	log       *zap.SugaredLogger
}

func NewHealthService(db DBPinger, redisClient redis.Cmdable, version string) *HealthService {
	return &HealthService{
		db:        db,
		redis:     redisClient,
		version:   version,
		startTime: time.Now(),
		log:       logger.GetLogger(),
	}
}

// WithWorkerPool adds the background pool to the report. A pool that is
// stopped or over 80% full reports degraded.
func (h *HealthService) WithWorkerPool(pool QueueReporter, queueSize int) *HealthService {
	h.pool = pool
	h.queueSize = queueSize
	return h
}

func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	components := map[string]types.HealthComponent{
		types.HealthComponentDatabase: h.checkDatabase(ctx),
		types.HealthComponentRedis:    h.checkRedis(ctx),
	}
	if h.pool != nil {
		components[types.HealthComponentWorkerPool] = h.checkWorkerPool()
	}

	return types.HealthCheck{
		Status:     types.OverallStatus(components),
		Components: components,
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
	}
}

func (h *HealthService) checkDatabase(ctx context.Context) types.HealthComponent {
	if h.db == nil {
		return types.HealthComponent{Status: types.HealthStatusDown, Details: "Database not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		h.log.Errorw("Database health check failed", "error", err)
		return types.HealthComponent{Status: types.HealthStatusDown, Details: "Database connection failed"}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}

// Redis backs rate limits, idempotency and the cache, all of which degrade
// gracefully, so an outage is reported as degraded rather than down.
func (h *HealthService) checkRedis(ctx context.Context) types.HealthComponent {
	if h.redis == nil {
		return types.HealthComponent{Status: types.HealthStatusDegraded, Details: "Redis not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if err := h.redis.Ping(ctx).Err(); err != nil {
		h.log.Errorw("Redis health check failed", "error", err)
		return types.HealthComponent{Status: types.HealthStatusDegraded, Details: "Redis connection failed"}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}

func (h *HealthService) checkWorkerPool() types.HealthComponent {
	if !h.pool.IsRunning() {
		return types.HealthComponent{Status: types.HealthStatusDegraded, Details: "Worker pool not running"}
	}
	if h.queueSize > 0 && float64(h.pool.QueueDepth())/float64(h.queueSize) > 0.8 {
		return types.HealthComponent{Status: types.HealthStatusDegraded, Details: "Worker queue near capacity"}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}
