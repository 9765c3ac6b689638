package domain

import "time"

// ReportGroup aggregates entries sharing a description and project label.
type ReportGroup struct {
	Description string
	Project     string
	Total       time.Duration
	Entries     []ReportLine
}

// Key identifies the group; identical keys always share one group.
func (g ReportGroup) Key() string { return g.Description + "\x00" + g.Project }

// ReportLine is one time entry clipped to the report day.
type ReportLine struct {
	Entry       TimeEntry
	Description string
	Project     string
	From        time.Time
	To          time.Time
	Running     bool // still running and counted until now
	Duration    time.Duration
}

// ProjectTotal is the summed duration of one project label.
type ProjectTotal struct {
	Project string
	Total   time.Duration
}

// DayReport is the aggregated view of one user's day.
type DayReport struct {
	UserName string
	Day      time.Time // midnight in the report location
	Lines    []ReportLine
	Groups   []ReportGroup
	Projects []ProjectTotal
	Total    time.Duration
}

// Empty reports whether nothing was tracked on the day.
func (r DayReport) Empty() bool { return len(r.Lines) == 0 }
