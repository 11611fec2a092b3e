package prompt

import (
	"testing"
	"time"
)

func TestShouldShowPrompt(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	cooldown := DismissalCooldown.Milliseconds()

	tests := []struct {
		name   string
		record Record
		want   bool
	}{
		{
			name:   "zero record shows prompt",
			record: Record{},
			want:   true,
		},
		{
			name:   "dismissed once and cooldown passed",
			record: Record{Count: 1, LastDismissedAt: now.UnixMilli() - cooldown - 1},
			want:   true,
		},
		{
			name:   "dismissed once at exact cooldown boundary",
			record: Record{Count: 1, LastDismissedAt: now.UnixMilli() - cooldown},
			want:   false,
		},
		{
			name:   "dismissed just now",
			record: Record{Count: 1, LastDismissedAt: now.UnixMilli()},
			want:   false,
		},
		{
			name:   "max dismissals reached",
			record: Record{Count: MaxDismissals, LastDismissedAt: 1},
			want:   false,
		},
		{
			name:   "max dismissals reached long ago",
			record: Record{Count: MaxDismissals, LastDismissedAt: now.UnixMilli() - 100*cooldown},
			want:   false,
		},
		{
			name:   "count above max",
			record: Record{Count: 10, LastDismissedAt: 0},
			want:   false,
		},
		{
			name:   "two dismissals with cooldown passed",
			record: Record{Count: 2, LastDismissedAt: now.UnixMilli() - cooldown - 1},
			want:   true,
		},
		{
			name:   "corrupt negative count treated as zero record",
			record: Record{Count: -5, LastDismissedAt: now.UnixMilli()},
			want:   true,
		},
		{
			name:   "corrupt negative timestamp treated as zero record",
			record: Record{Count: 1, LastDismissedAt: -42},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldShowPrompt(tt.record, now); got != tt.want {
				t.Errorf("ShouldShowPrompt(%+v) = %v, want %v", tt.record, got, tt.want)
			}
		})
	}
}

func TestRecordDismissal(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	rec := RecordDismissal(Record{}, now)
	if rec.Count != 1 {
		t.Errorf("Expected count 1 after first dismissal, got %d", rec.Count)
	}
	if rec.LastDismissedAt != now.UnixMilli() {
		t.Errorf("Expected lastDismissedAt %d, got %d", now.UnixMilli(), rec.LastDismissedAt)
	}

	later := now.Add(time.Hour)
	rec = RecordDismissal(rec, later)
	if rec.Count != 2 {
		t.Errorf("Expected count 2 after second dismissal, got %d", rec.Count)
	}
	if rec.LastDismissedAt != later.UnixMilli() {
		t.Errorf("Expected lastDismissedAt %d, got %d", later.UnixMilli(), rec.LastDismissedAt)
	}
}

func TestRecordDismissalCorruptInput(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	rec := RecordDismissal(Record{Count: -99, LastDismissedAt: -1}, now)
	if rec.Count != 1 {
		t.Errorf("Expected count 1 after dismissal on corrupt record, got %d", rec.Count)
	}
	if rec.LastDismissedAt != now.UnixMilli() {
		t.Errorf("Expected lastDismissedAt %d, got %d", now.UnixMilli(), rec.LastDismissedAt)
	}
}

func TestResetDismissals(t *testing.T) {
	rec := ResetDismissals()
	if rec.Count != 0 || rec.LastDismissedAt != 0 {
		t.Errorf("Expected zero record, got %+v", rec)
	}

	if !ShouldShowPrompt(rec, time.Now()) {
		t.Error("Expected prompt to show after reset")
	}
}
