package domain

import "time"

// TimeEntry represents a Toggl time entry in the domain.
type TimeEntry struct {
	ID          int64
	Description string
	ProjectID   *int64
	WorkspaceID *int64
	Start       time.Time
	Stop        *time.Time // nil while the timer is running
}

// Running reports whether the entry has no stop time yet.
func (e TimeEntry) Running() bool { return e.Stop == nil }

// End returns the stop time, or now for a running entry.
func (e TimeEntry) End(now time.Time) time.Time {
	if e.Stop != nil {
		return *e.Stop
	}
	return now
}
