package prompt

import (
	"encoding/json"
	"time"

	"github.com/t-hosaka/webpush-agent/pkg/platform"
)

// StorageKey is the fixed key under which the dismissal record is persisted.
const StorageKey = "webpush-agent.promptDismissals"

// Store binds the dismissal record to the platform's persistent storage.
// Storage failures and corrupt data degrade to the zero record; nothing in
// here ever returns an error.
type Store struct {
	platform platform.Platform
}

// NewStore creates a Store backed by the given platform.
func NewStore(p platform.Platform) *Store {
	return &Store{platform: p}
}

// Load reads the persisted record. Absent or unparsable data is the zero
// record.
func (s *Store) Load() Record {
	raw := s.platform.StorageGet(StorageKey)
	if raw == "" {
		return Record{}
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Record{}
	}
	return sanitize(rec)
}

// Save persists the record.
func (s *Store) Save(rec Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	s.platform.StorageSet(StorageKey, string(data))
}

// ShouldShow reports whether the opt-in prompt may be shown now.
func (s *Store) ShouldShow(now time.Time) bool {
	return ShouldShowPrompt(s.Load(), now)
}

// Dismiss records one dismissal and returns the updated record.
func (s *Store) Dismiss(now time.Time) Record {
	rec := RecordDismissal(s.Load(), now)
	s.Save(rec)
	return rec
}

// Reset erases the dismissal record.
func (s *Store) Reset() Record {
	s.platform.StorageRemove(StorageKey)
	return ResetDismissals()
}
