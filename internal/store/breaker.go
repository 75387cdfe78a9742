package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
)

// BreakerStore guards another store with a circuit breaker. Calls are never
// retried; while the breaker is open they fail immediately.
type BreakerStore struct {
	next    airquality.Store
	circuit *gobreaker.CircuitBreaker
}

// NewBreakerStore wraps next. The breaker opens after five consecutive failures
// and probes again after timeout.
func NewBreakerStore(name string, next airquality.Store, timeout time.Duration) *BreakerStore {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &BreakerStore{next: next, circuit: cb}
}

func (s *BreakerStore) Insert(ctx context.Context, r airquality.Reading) error {
	_, err := s.circuit.Execute(func() (interface{}, error) {
		return nil, s.next.Insert(ctx, r)
	})
	return unavailable(err)
}

func (s *BreakerStore) Latest(ctx context.Context) (airquality.Reading, error) {
	var empty bool
	result, err := s.circuit.Execute(func() (interface{}, error) {
		r, err := s.next.Latest(ctx)
		// An empty store is a healthy store.
		if errors.Is(err, airquality.ErrNoData) {
			empty = true
			return airquality.Reading{}, nil
		}
		return r, err
	})
	if err != nil {
		return airquality.Reading{}, unavailable(err)
	}
	if empty {
		return airquality.Reading{}, airquality.ErrNoData
	}
	return result.(airquality.Reading), nil
}

func (s *BreakerStore) Since(ctx context.Context, from time.Time, limit int) ([]airquality.Reading, error) {
	result, err := s.circuit.Execute(func() (interface{}, error) {
		return s.next.Since(ctx, from, limit)
	})
	if err != nil {
		return nil, unavailable(err)
	}
	return result.([]airquality.Reading), nil
}

func (s *BreakerStore) Count(ctx context.Context) (int64, error) {
	result, err := s.circuit.Execute(func() (interface{}, error) {
		return s.next.Count(ctx)
	})
	if err != nil {
		return 0, unavailable(err)
	}
	return result.(int64), nil
}

// unavailable makes sure every failure leaving the store matches ErrStoreUnavailable.
func unavailable(err error) error {
	if err == nil || errors.Is(err, airquality.ErrStoreUnavailable) {
		return err
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: circuit breaker open: %v", airquality.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%w: %v", airquality.ErrStoreUnavailable, err)
}
