package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Key is the composite natural key used to match records across polls.
// The remote store assigns row ids by position and does not guarantee
// stable synthetic ids, so identity is row id plus a subset of the
// descriptive fields.
type Key string

// Record is one appointment or order tracked by the dashboard.
type Record struct {
	// RowID is the row identifier assigned by the remote store.
	RowID int `json:"rowId"`
	// Time is the time-like descriptive field ("14:30").
	Time string `json:"hora"`
	// Customer is the customer display name.
	Customer string `json:"cliente"`
	// Contact is the customer contact (phone, handle).
	Contact string `json:"contacto"`
	// Detail describes the service or items.
	Detail string `json:"detalle"`
	// Status is the current status value.
	Status Status `json:"estado"`
}

// Key returns the record's composite natural key. A record whose row id
// is reused together with matching name and time fields is conflated
// with its predecessor; this is an accepted approximation of the remote
// store's identifier model.
func (r Record) Key() Key {
	return Key(fmt.Sprintf("%d|%s|%s", r.RowID, r.Customer, r.Time))
}

// RowID extracts the row id component of a key.
func (k Key) RowID() (int, error) {
	head, _, ok := strings.Cut(string(k), "|")
	if !ok {
		return 0, fmt.Errorf("malformed record key: %s", k)
	}
	return strconv.Atoi(head)
}

// Snapshot is the full record list plus the aggregate counts returned by
// one poll. The counts come from the remote source and are trusted as
// authoritative; the dashboard never recomputes them.
type Snapshot struct {
	Records []Record
	// Stats holds one count per status value.
	Stats map[Status]int
	// Total is the overall record count reported by the remote source.
	Total int
}

// Clone returns a deep copy sharing no backing storage with the
// receiver. Cloning nil yields nil.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		Records: make([]Record, len(s.Records)),
		Stats:   make(map[Status]int, len(s.Stats)),
		Total:   s.Total,
	}
	copy(out.Records, s.Records)
	for k, v := range s.Stats {
		out.Stats[k] = v
	}
	return out
}

// Index returns a lookup table from record key to record.
func (s *Snapshot) Index() map[Key]Record {
	idx := make(map[Key]Record, len(s.Records))
	for _, r := range s.Records {
		idx[r.Key()] = r
	}
	return idx
}

// Find returns the record with the given key, if present.
func (s *Snapshot) Find(key Key) (Record, bool) {
	for _, r := range s.Records {
		if r.Key() == key {
			return r, true
		}
	}
	return Record{}, false
}

// DiffResult holds the record keys that appeared or changed status
// between two consecutive snapshots.
type DiffResult struct {
	New     map[Key]struct{}
	Changed map[Key]struct{}
}

// Empty reports whether the diff carries no changes.
func (d DiffResult) Empty() bool {
	return len(d.New) == 0 && len(d.Changed) == 0
}

// Count returns the total number of changed and newly-appeared keys.
func (d DiffResult) Count() int {
	return len(d.New) + len(d.Changed)
}
