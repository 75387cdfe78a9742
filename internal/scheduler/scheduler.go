package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
)

// Prober refreshes the store status.
type Prober interface {
	ProbeStore(ctx context.Context) airquality.StoreStatus
}

// Scheduler periodically probes the persisted store.
type Scheduler struct {
	scheduler *gocron.Scheduler
	prober    Prober
	interval  time.Duration
	log       *slog.Logger
}

// New creates a new Scheduler.
func New(interval time.Duration, prober Prober, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		prober:    prober,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the probe job and starts the underlying scheduler.
// The first probe runs immediately.
func (s *Scheduler) Start() error {
	seconds := int(s.interval.Seconds())
	if seconds <= 0 {
		seconds = 60
	}

	_, err := s.scheduler.Every(seconds).Seconds().Do(s.probe)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) probe() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status := s.prober.ProbeStore(ctx)
	s.log.Debug("scheduler: store probe completed", "ok", status.OK, "readings", status.ReadingsCount)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
