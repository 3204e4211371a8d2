// Package jobs holds scheduled maintenance work run by robfig/cron.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/formcraft/formcraft-backend/internal/store"
	"github.com/formcraft/formcraft-backend/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const purgeTimeout = 2 * time.Minute

// EmbedLogRetention deletes embed_logs rows older than the retention window.
type EmbedLogRetention struct {
	logs store.EmbedLogStore
	keep time.Duration
	now  func() time.Time
}

func NewEmbedLogRetention(logs store.EmbedLogStore, days int) *EmbedLogRetention {
	return &EmbedLogRetention{
		logs: logs,
		keep: time.Duration(days) * 24 * time.Hour,
		now:  time.Now,
	}
}

// Run implements cron.Job.
func (j *EmbedLogRetention) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()
	if _, err := j.Purge(ctx); err != nil {
		logger.GetLogger().Errorw("Embed log retention failed", "error", err)
	}
}

func (j *EmbedLogRetention) Purge(ctx context.Context) (int64, error) {
	cutoff := j.now().UTC().Add(-j.keep)
	n, err := j.logs.PurgeEmbedLogs(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge embed logs before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	logger.GetLogger().Infow("Purged embed logs", "deleted", n, "cutoff", cutoff)
	return n, nil
}

// cronLogger adapts the zap logger to cron.Logger.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}

// NewScheduler returns a UTC cron running the retention job on schedule.
// A zero-day window disables the job. The caller starts and stops it.
func NewScheduler(schedule string, retention *EmbedLogRetention) (*cron.Cron, error) {
	cl := cronLogger{log: logger.GetLogger()}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if retention == nil || retention.keep <= 0 {
		return c, nil
	}
	if _, err := c.AddJob(schedule, retention); err != nil {
		return nil, fmt.Errorf("invalid retention schedule %q: %w", schedule, err)
	}
	return c, nil
}
