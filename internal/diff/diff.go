// Package diff computes the change set between two consecutive
// snapshots of the record list.
package diff

import (
	"github.com/dmoralesp/turnero/internal/domain"
)

// Compute compares the previous snapshot against the current one and
// returns the keys that newly appeared and the keys whose status
// changed. It is a pure function of its inputs.
//
// A nil or empty previous snapshot is the first observation: there is no
// baseline to diff against, so both sets are empty and the current
// snapshot is accepted silently.
//
// A record whose identifying fields changed along with its status shows
// up only in the new set, never in the changed set, because it cannot be
// matched to a previous entry. This is an accepted approximation of the
// remote store's identifier model, not a defect.
func Compute(prev, curr *domain.Snapshot) domain.DiffResult {
	result := domain.DiffResult{
		New:     make(map[domain.Key]struct{}),
		Changed: make(map[domain.Key]struct{}),
	}
	if curr == nil {
		return result
	}
	if prev == nil || len(prev.Records) == 0 {
		return result
	}

	before := prev.Index()
	for _, r := range curr.Records {
		key := r.Key()
		old, seen := before[key]
		if !seen {
			result.New[key] = struct{}{}
			continue
		}
		if old.Status != r.Status {
			result.Changed[key] = struct{}{}
		}
	}
	return result
}
