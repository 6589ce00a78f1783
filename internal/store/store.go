// Package store holds the local snapshot for one dashboard session.
//
// Both the reconciliation loop and the optimistic mutator write here;
// the resolution policy between them is last write wins, with the
// remote system as the sole source of truth.
package store

import (
	"sync"

	"github.com/dmoralesp/turnero/internal/domain"
)

// SnapshotStore is the process-local record store. It keeps only the
// current snapshot; history is not retained.
type SnapshotStore struct {
	mu   sync.RWMutex
	snap *domain.Snapshot
}

// New creates an empty SnapshotStore.
func New() *SnapshotStore {
	return &SnapshotStore{}
}

// Current returns a copy of the current snapshot, or nil before the
// first successful fetch.
func (s *SnapshotStore) Current() *domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone()
}

// Replace swaps in a new snapshot wholesale. The previous snapshot is
// discarded.
func (s *SnapshotStore) Replace(snap *domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap.Clone()
}

// SetStatus applies a local status change to the record with the given
// key. Returns false when the record is not present.
func (s *SnapshotStore) SetStatus(key domain.Key, status domain.Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return false
	}
	for i := range s.snap.Records {
		if s.snap.Records[i].Key() == key {
			s.snap.Records[i].Status = status
			return true
		}
	}
	return false
}

// Find returns the record with the given key from the current snapshot.
func (s *SnapshotStore) Find(key domain.Key) (domain.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return domain.Record{}, false
	}
	return s.snap.Find(key)
}
