package usecase

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/domain"
)

const (
	statusUsage   = "Usage: /status [name|all]"
	todayUsage    = "Usage: /today [name] [detailed]"
	reportUsage   = "Usage: /report <name> <YYYY-MM-DD|today|yesterday> [detailed]"
	wakeUsage     = "Usage: /wake <name|all> [message]"
	notRegistered = "❌ You are not registered. Ask to have your Telegram ID added to the user list."
)

func helpText() string {
	return strings.Join([]string{
		"Commands:",
		"/users — list team members",
		"/status — your tracking status",
		"/status <name> — someone's tracking status",
		"/status all — everyone else's status",
		"/today [name] [detailed] — today's time report",
		"/report <name> <YYYY-MM-DD> [detailed] — report for a given day",
		"/wake <name|all> [message] — nudge someone to start tracking",
		"Reply to a wake message to answer the person who sent it.",
	}, "\n")
}

var detailedFlags = map[string]bool{
	"detailed": true,
	"details":  true,
}

// parseReportArgs extracts the optional name and detailed flag; remaining
// positional fields are returned in rest.
func parseReportArgs(args string) (name string, detailed bool, rest []string) {
	for _, f := range strings.Fields(args) {
		switch {
		case detailedFlags[strings.ToLower(f)]:
			detailed = true
		case name == "":
			name = f
		default:
			rest = append(rest, f)
		}
	}
	return name, detailed, rest
}

// parseDay accepts YYYY-MM-DD, "today" or "yesterday" in loc.
func parseDay(val string, now time.Time, loc *time.Location) (time.Time, error) {
	switch strings.ToLower(val) {
	case "today":
		return now.In(loc), nil
	case "yesterday":
		y, m, d := now.In(loc).Date()
		return time.Date(y, m, d-1, 12, 0, 0, 0, loc), nil
	}
	d, err := time.ParseInLocation("2006-01-02", val, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", domain.ErrMalformed, val)
	}
	return d, nil
}

// replyForError converts a handler failure into a short chat reply.
// For ErrMalformed, detail is the usage hint; otherwise it is the user name.
func replyForError(err error, detail string) string {
	switch {
	case errors.Is(err, domain.ErrMalformed):
		if detail == "" {
			return "❓ Could not understand the command."
		}
		return "❓ " + detail
	case errors.Is(err, domain.ErrNotFound):
		if detail == "" {
			return "❌ User not found."
		}
		return fmt.Sprintf("❌ User '%s' not found.", detail)
	default:
		return "⚠️ Could not fetch data. Please try again later."
	}
}
