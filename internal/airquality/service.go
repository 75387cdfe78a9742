package airquality

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultHistoryHours = 24
	DefaultHistoryLimit = 100
	DefaultDailyDays    = 7
	DefaultMonthlyCount = 6
)

// Service wires ingestion, the persisted store and the realtime cache together.
type Service struct {
	store    Store
	cache    SnapshotCache
	driver   string
	loc      *time.Location
	now      func() time.Time
	log      *slog.Logger
	observer Observer

	statusMu sync.RWMutex
	status   StoreStatus
}

// Option customizes a Service.
type Option func(*Service)

// WithLocation sets the reference time zone used for calendar buckets.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// WithDriverName labels store status reports.
func WithDriverName(name string) Option {
	return func(s *Service) { s.driver = name }
}

// NewService creates a new Service.
func NewService(store Store, cache SnapshotCache, opts ...Option) *Service {
	s := &Service{
		store: store,
		cache: cache,
		loc:   time.UTC,
		now:   time.Now,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest normalizes a device payload and appends it to the durable store.
// Nothing is written when validation fails.
func (s *Service) Ingest(ctx context.Context, payload map[string]any) (Reading, error) {
	r, err := Normalize(payload, s.now())
	if err != nil {
		return Reading{}, err
	}

	if err := s.store.Insert(ctx, r); err != nil {
		s.log.Error("failed to save sensor data", "error", err)
		return Reading{}, fmt.Errorf("insert reading: %w", err)
	}

	s.log.Debug("reading stored", "id", r.ID, "ppm", r.PPM, "airQuality", r.AirQuality)
	if s.observer != nil {
		s.observer.ReadingStored(r)
	}
	return r, nil
}

// IngestRealtime overwrites the realtime snapshot. It never touches the store.
func (s *Service) IngestRealtime(payload map[string]any) Snapshot {
	snap := NormalizeRealtime(payload, s.now())
	s.cache.Set(snap)

	if s.observer != nil {
		s.observer.SnapshotUpdated(snap)
	}
	return snap
}

// Realtime returns the current realtime snapshot.
func (s *Service) Realtime() Snapshot {
	return s.cache.Get()
}

// Latest returns the newest persisted reading or ErrNoData.
func (s *Service) Latest(ctx context.Context) (Reading, error) {
	r, err := s.store.Latest(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoData) {
			s.log.Error("failed to fetch latest reading", "error", err)
		}
		return Reading{}, err
	}
	return r, nil
}

// History returns readings from the last hoursBack hours, ascending, capped at
// limit. When more than limit readings match, the oldest ones are kept.
func (s *Service) History(ctx context.Context, hoursBack, limit int) ([]Reading, error) {
	if hoursBack <= 0 {
		hoursBack = DefaultHistoryHours
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	cutoff := s.now().Add(-time.Duration(hoursBack) * time.Hour)
	readings, err := s.store.Since(ctx, cutoff, limit)
	if err != nil {
		s.log.Error("failed to fetch history", "hours", hoursBack, "error", err)
		return nil, err
	}
	if readings == nil {
		readings = []Reading{}
	}
	return readings, nil
}

// Daily computes per-day statistics for the last daysBack days.
func (s *Service) Daily(ctx context.Context, daysBack int) ([]DailyStat, error) {
	if daysBack <= 0 {
		daysBack = DefaultDailyDays
	}

	readings, err := s.store.Since(ctx, s.now().AddDate(0, 0, -daysBack), 0)
	if err != nil {
		s.log.Error("failed to fetch daily stats", "days", daysBack, "error", err)
		return nil, err
	}
	return DailyRollup(readings, s.loc), nil
}

// Monthly computes per-month statistics for the last monthsBack months.
func (s *Service) Monthly(ctx context.Context, monthsBack int) ([]MonthlyStat, error) {
	if monthsBack <= 0 {
		monthsBack = DefaultMonthlyCount
	}

	readings, err := s.store.Since(ctx, s.now().AddDate(0, -monthsBack, 0), 0)
	if err != nil {
		s.log.Error("failed to fetch monthly stats", "months", monthsBack, "error", err)
		return nil, err
	}
	return MonthlyRollup(readings, s.loc), nil
}

// ProbeStore checks store reachability, records the result and returns it.
func (s *Service) ProbeStore(ctx context.Context) StoreStatus {
	status := StoreStatus{
		Driver:    s.driver,
		CheckedAt: s.now().UTC(),
	}

	count, err := s.store.Count(ctx)
	if err != nil {
		status.Message = "store connection failed: " + err.Error()
		s.log.Warn("store probe failed", "driver", s.driver, "error", err)
	} else {
		status.OK = true
		status.Message = "store connection successful"
		status.ReadingsCount = count
	}

	s.statusMu.Lock()
	s.status = status
	s.statusMu.Unlock()

	if s.observer != nil {
		s.observer.StoreProbed(status)
	}
	return status
}

// StoreStatus returns the last probe result, probing now if none exists yet.
func (s *Service) StoreStatus(ctx context.Context) StoreStatus {
	s.statusMu.RLock()
	status := s.status
	s.statusMu.RUnlock()

	if status.CheckedAt.IsZero() {
		return s.ProbeStore(ctx)
	}
	return status
}
