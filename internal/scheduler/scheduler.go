package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/weather-map/internal/store"
)

// Prober checks whether the upstream answers; *proxy.Gateway satisfies it.
type Prober interface {
	Probe(ctx context.Context) (int, error)
}

// Scheduler periodically probes the upstream and records the outcome.
type Scheduler struct {
	scheduler *gocron.Scheduler
	prober    Prober
	store     *store.MemoryStore
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates a new Scheduler. An interval <= 0 disables the job.
func New(prober Prober, st *store.MemoryStore, interval, timeout time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		prober:    prober,
		store:     st,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start schedules the probe job and starts the underlying scheduler.
// The first probe runs immediately.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("upstream probe disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.ProbeOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("upstream probe scheduled", zap.Duration("interval", s.interval))
	return nil
}

// ProbeOnce runs one probe, stores it and returns it.
func (s *Scheduler) ProbeOnce(ctx context.Context) store.Probe {
	start := time.Now()
	status, err := s.prober.Probe(ctx)

	p := store.Probe{
		Time:    start.UTC(),
		Status:  status,
		Latency: time.Since(start),
	}
	if err != nil {
		p.Error = err.Error()
		s.logger.Warn("upstream probe failed", zap.Error(err), zap.Duration("latency", p.Latency))
	} else {
		p.OK = status < 500
		s.logger.Debug("upstream probe",
			zap.Int("status", status),
			zap.Duration("latency", p.Latency),
		)
	}

	s.store.Save(p)
	return p
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
