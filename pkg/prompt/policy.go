// Package prompt decides whether the notification opt-in surface should be
// shown, based on how often and how recently the user dismissed it.
package prompt

import (
	"time"
)

const (
	// MaxDismissals is the number of dismissals after which the user is
	// never asked again.
	MaxDismissals = 3

	// DismissalCooldown is the minimum time after a dismissal before the
	// prompt may reopen.
	DismissalCooldown = 7 * 24 * time.Hour
)

// Record tracks prompt dismissals for one profile. LastDismissedAt is Unix
// milliseconds; zero means never dismissed.
type Record struct {
	Count           int   `json:"count"`
	LastDismissedAt int64 `json:"lastDismissedAt"`
}

// sanitize collapses corrupt values to the zero record.
func sanitize(rec Record) Record {
	if rec.Count < 0 || rec.LastDismissedAt < 0 {
		return Record{}
	}
	return rec
}

// ShouldShowPrompt reports whether the opt-in prompt may be shown at the
// given time. It is a pure function of the record and the clock.
//
// After MaxDismissals the prompt stays closed regardless of elapsed time.
// At exactly the cooldown boundary the prompt is still withheld; it reopens
// strictly after.
func ShouldShowPrompt(rec Record, now time.Time) bool {
	rec = sanitize(rec)

	if rec.Count >= MaxDismissals {
		return false
	}
	if rec.LastDismissedAt == 0 {
		return true
	}

	elapsed := now.UnixMilli() - rec.LastDismissedAt
	return elapsed > DismissalCooldown.Milliseconds()
}

// RecordDismissal returns the record after one more dismissal at the given
// time. Corrupt input counts as the zero record, so a dismissal on corrupt
// data yields count 1.
func RecordDismissal(rec Record, now time.Time) Record {
	rec = sanitize(rec)
	return Record{
		Count:           rec.Count + 1,
		LastDismissedAt: now.UnixMilli(),
	}
}

// ResetDismissals returns the zero record.
func ResetDismissals() Record {
	return Record{}
}
