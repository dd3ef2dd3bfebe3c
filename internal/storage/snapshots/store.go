package snapshots

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/user/papertrade/internal/entity"
)

const defaultCapacity = 1000

// Store keeps balance snapshots in memory for streaming to UI layers.
// Snapshots are indexed in append order; when the capacity is exceeded the
// oldest entries are dropped but indexes keep growing, so readers can resume
// from the last index they saw.
type Store struct {
	mu      sync.RWMutex
	records []entity.BalanceSnapshotRecord
	next    uint64
	cap     int
}

// NewStore creates a snapshot store. A non-positive capacity falls back to
// the default.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Store{cap: capacity}
}

// Append records the snapshot and returns its index.
func (s *Store) Append(snapshot entity.BalanceSnapshot) (uint64, error) {
	if s == nil {
		return 0, errors.New("snapshot store is not initialized")
	}
	if snapshot.Balance == "" {
		return 0, errors.New("balance snapshot balance is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	record := entity.BalanceSnapshotRecord{Index: s.next, Snapshot: snapshot}
	s.records = append(s.records, record)
	if len(s.records) > s.cap {
		s.records = s.records[len(s.records)-s.cap:]
	}
	return record.Index, nil
}

// SnapshotsAfter returns all snapshots with an index greater than index, in
// append order.
func (s *Store) SnapshotsAfter(index uint64) ([]entity.BalanceSnapshotRecord, error) {
	if s == nil {
		return nil, errors.New("snapshot store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entity.BalanceSnapshotRecord
	for _, record := range s.records {
		if record.Index > index {
			out = append(out, record)
		}
	}
	return out, nil
}

// Latest returns the most recent snapshot, if any.
func (s *Store) Latest() (entity.BalanceSnapshotRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return entity.BalanceSnapshotRecord{}, false
	}
	return s.records[len(s.records)-1], true
}
