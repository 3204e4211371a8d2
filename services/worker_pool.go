// Package services holds the infrastructure services shared by the domain
// services: the background worker pool, email delivery and health checks.
package services

import (
	"context"
	"sync"
	"time"

	"github.com/formcraft/formcraft-backend/config"
	"github.com/formcraft/formcraft-backend/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Job represents a unit of work for the worker pool.
type Job struct {
	// Name is used in logs only.
	Name    string
	Execute func(ctx context.Context) error
}

// JobSubmitter is the fire-and-forget surface domain services depend on.
type JobSubmitter interface {
	Submit(job Job) bool
}

// WorkerPool runs embed-load logging and notification jobs on a bounded set
// of goroutines. Submit never blocks; a full queue drops the job.
type WorkerPool struct {
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger
	metrics  *workerPoolMetrics
	config   config.WorkerPoolConfig
	mu       sync.RWMutex
	running  bool
	closed   bool
}

type workerPoolMetrics struct {
	queueDepth    prometheus.Gauge
	activeWorkers prometheus.Gauge
	completedJobs prometheus.Counter
	droppedJobs   prometheus.Counter
	errorCount    prometheus.Counter
	jobDuration   prometheus.Histogram
}

var (
	wpMetricsInstance *workerPoolMetrics
	wpMetricsOnce     sync.Once
	wpDefaultRegistry = prometheus.DefaultRegisterer
)

func newWorkerPoolMetrics() *workerPoolMetrics {
	wpMetricsOnce.Do(func() {
		f := promauto.With(wpDefaultRegistry)
		wpMetricsInstance = &workerPoolMetrics{
			queueDepth: f.NewGauge(prometheus.GaugeOpts{
				Name: "formcraft_worker_pool_queue_depth",
				Help: "Current number of jobs waiting in queue",
			}),
			activeWorkers: f.NewGauge(prometheus.GaugeOpts{
				Name: "formcraft_worker_pool_active_workers",
				Help: "Current number of workers processing jobs",
			}),
			completedJobs: f.NewCounter(prometheus.CounterOpts{
				Name: "formcraft_worker_pool_completed_jobs_total",
				Help: "Total number of executed jobs",
			}),
			droppedJobs: f.NewCounter(prometheus.CounterOpts{
				Name: "formcraft_worker_pool_dropped_jobs_total",
				Help: "Total number of jobs dropped due to a full or closed queue",
			}),
			errorCount: f.NewCounter(prometheus.CounterOpts{
				Name: "formcraft_worker_pool_errors_total",
				Help: "Total number of job execution errors",
			}),
			jobDuration: f.NewHistogram(prometheus.HistogramOpts{
				Name:    "formcraft_worker_pool_job_duration_seconds",
				Help:    "Time taken to execute jobs",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			}),
		}
	})
	return wpMetricsInstance
}

// resetWorkerPoolMetricsForTesting points the metrics at a fresh registry.
func resetWorkerPoolMetricsForTesting() {
	wpDefaultRegistry = prometheus.NewRegistry()
	wpMetricsInstance = nil
	wpMetricsOnce = sync.Once{}
}

// NewWorkerPool creates a pool; call Start before submitting.
func NewWorkerPool(cfg config.WorkerPoolConfig) *WorkerPool {
	if cfg.MaxWorkers < 1 {
		cfg.MaxWorkers = 1
	}
	if cfg.JobTimeoutSeconds <= 0 {
		cfg.JobTimeoutSeconds = 30
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		jobQueue: make(chan Job, cfg.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger.GetLogger().Named("worker-pool"),
		metrics:  newWorkerPoolMetrics(),
		config:   cfg,
	}
}

// Start launches the workers. Repeated calls are no-ops.
func (wp *WorkerPool) Start() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.running || wp.closed {
		wp.logger.Warn("Worker pool already started")
		return
	}
	wp.running = true

	wp.logger.Infow("Starting worker pool",
		"maxWorkers", wp.config.MaxWorkers,
		"queueSize", wp.config.QueueSize)

	for i := 0; i < wp.config.MaxWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// worker drains the queue until it is closed.
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		wp.executeJob(id, job)
	}
}

func (wp *WorkerPool) executeJob(workerID int, job Job) {
	wp.metrics.activeWorkers.Inc()
	wp.metrics.queueDepth.Dec()
	defer wp.metrics.activeWorkers.Dec()

	start := time.Now()
	jobCtx, cancel := context.WithTimeout(wp.ctx, time.Duration(wp.config.JobTimeoutSeconds)*time.Second)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			wp.metrics.errorCount.Inc()
			wp.logger.Errorw("Job panicked", "job", job.Name, "workerId", workerID, "panic", r)
		}
		wp.metrics.jobDuration.Observe(time.Since(start).Seconds())
		wp.metrics.completedJobs.Inc()
	}()

	if err := job.Execute(jobCtx); err != nil {
		wp.metrics.errorCount.Inc()
		wp.logger.Errorw("Job execution failed",
			"job", job.Name,
			"workerId", workerID,
			"error", err,
			"duration", time.Since(start))
		return
	}
	wp.logger.Debugw("Job completed", "job", job.Name, "workerId", workerID, "duration", time.Since(start))
}

// Submit queues a job and reports whether it was accepted. Safe for
// concurrent use, including after Shutdown.
func (wp *WorkerPool) Submit(job Job) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		wp.metrics.droppedJobs.Inc()
		wp.logger.Warnw("Job dropped - pool shut down", "job", job.Name)
		return false
	}

	select {
	case wp.jobQueue <- job:
		wp.metrics.queueDepth.Inc()
		return true
	default:
		wp.metrics.droppedJobs.Inc()
		wp.logger.Warnw("Job dropped - queue full",
			"job", job.Name,
			"queueSize", wp.config.QueueSize)
		return false
	}
}

// Shutdown stops intake and waits for queued and running jobs. When ctx
// expires first, running jobs are cancelled and ctx.Err() is returned.
func (wp *WorkerPool) Shutdown(ctx context.Context) error {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return nil
	}
	wp.closed = true
	wp.running = false
	close(wp.jobQueue)
	wp.mu.Unlock()

	wp.logger.Info("Initiating worker pool shutdown...")

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		wp.cancel()
		wp.logger.Info("Worker pool shutdown complete")
		return nil
	case <-ctx.Done():
		wp.cancel()
		wp.logger.Warn("Worker pool shutdown timed out, cancelling running jobs")
		return ctx.Err()
	}
}

func (wp *WorkerPool) QueueDepth() int {
	return len(wp.jobQueue)
}

func (wp *WorkerPool) IsRunning() bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	return wp.running
}
