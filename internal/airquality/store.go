package airquality

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoData is returned when the store holds no readings. It is a valid
	// outcome, not a failure.
	ErrNoData = errors.New("no data available")

	// ErrStoreUnavailable wraps any connection or query failure of the store.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Store is the contract every persisted reading store must satisfy.
type Store interface {
	// Insert appends a reading. Existing readings are never updated.
	Insert(ctx context.Context, r Reading) error
	// Latest returns the most recently timestamped reading or ErrNoData.
	Latest(ctx context.Context) (Reading, error)
	// Since returns readings with Timestamp >= from in ascending order,
	// truncated to limit entries. limit <= 0 means no limit.
	Since(ctx context.Context, from time.Time, limit int) ([]Reading, error)
	// Count returns the number of stored readings.
	Count(ctx context.Context) (int64, error)
}

// SnapshotCache holds the single realtime snapshot shared by all requests.
type SnapshotCache interface {
	Get() Snapshot
	Set(Snapshot)
}

// Observer is notified of ingestion events, e.g. to export metrics.
type Observer interface {
	ReadingStored(r Reading)
	SnapshotUpdated(s Snapshot)
	StoreProbed(status StoreStatus)
}
