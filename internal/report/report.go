// Package report aggregates a user's Toggl entries for one calendar day and
// renders the grouped and detailed chat views.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/domain"
)

const noDescription = "(No Description)"

// DayBounds returns [start, end) of the calendar day containing t in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := t.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	end := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	return start, end
}

// ProjectLabel resolves the label of an entry. Entries without a project get "",
// entries whose project name is missing from names get domain.UnknownProject.
func ProjectLabel(e domain.TimeEntry, names map[int64]string) string {
	if e.ProjectID == nil {
		return ""
	}
	if n, ok := names[*e.ProjectID]; ok && n != "" {
		return n
	}
	return domain.UnknownProject
}

// Build clips entries to the day of `day` in loc and aggregates them.
// Running entries count until now, clamped to the day. Entries that do not
// overlap the day are dropped. Durations are whole seconds so all totals agree.
func Build(userName string, day time.Time, loc *time.Location, now time.Time, entries []domain.TimeEntry, projects map[int64]string) domain.DayReport {
	start, end := DayBounds(day, loc)
	rep := domain.DayReport{UserName: userName, Day: start}

	for _, e := range entries {
		from := e.Start
		if from.Before(start) {
			from = start
		}
		to := e.End(now)
		if to.After(end) {
			to = end
		}
		if !to.After(from) {
			continue
		}
		desc := strings.TrimSpace(e.Description)
		if desc == "" {
			desc = noDescription
		}
		rep.Lines = append(rep.Lines, domain.ReportLine{
			Entry:       e,
			Description: desc,
			Project:     ProjectLabel(e, projects),
			From:        from.In(loc),
			To:          to.In(loc),
			Running:     e.Running() && !now.After(end),
			Duration:    to.Sub(from).Truncate(time.Second),
		})
	}
	sort.SliceStable(rep.Lines, func(i, j int) bool { return rep.Lines[i].From.Before(rep.Lines[j].From) })

	groups := make(map[string]*domain.ReportGroup)
	projectTotals := make(map[string]time.Duration)
	for _, l := range rep.Lines {
		g := domain.ReportGroup{Description: l.Description, Project: l.Project}
		existing, ok := groups[g.Key()]
		if !ok {
			existing = &g
			groups[g.Key()] = existing
		}
		existing.Total += l.Duration
		existing.Entries = append(existing.Entries, l)
		projectTotals[l.Project] += l.Duration
		rep.Total += l.Duration
	}

	for _, g := range groups {
		rep.Groups = append(rep.Groups, *g)
	}
	sort.Slice(rep.Groups, func(i, j int) bool {
		if rep.Groups[i].Description != rep.Groups[j].Description {
			return rep.Groups[i].Description < rep.Groups[j].Description
		}
		return rep.Groups[i].Project < rep.Groups[j].Project
	})

	for p, d := range projectTotals {
		rep.Projects = append(rep.Projects, domain.ProjectTotal{Project: p, Total: d})
	}
	sort.Slice(rep.Projects, func(i, j int) bool {
		return projectName(rep.Projects[i].Project) < projectName(rep.Projects[j].Project)
	})
	return rep
}

// FormatDuration renders d as H:MM:SS.
func FormatDuration(d time.Duration) string {
	s := int64(d.Truncate(time.Second) / time.Second)
	if s < 0 {
		s = 0
	}
	return fmt.Sprintf("%d:%02d:%02d", s/3600, (s/60)%60, s%60)
}

// Render picks the detailed or grouped view. Output is Telegram Markdown.
func Render(r domain.DayReport, detailed bool) string {
	if r.Empty() {
		return fmt.Sprintf("📅 No time entries found for %s on %s.", esc(r.UserName), r.Day.Format("2006-01-02"))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📅 Time entries for %s on %s\n\n", esc(r.UserName), r.Day.Format("2006-01-02"))
	if detailed {
		writeDetailed(&b, r)
	} else {
		writeGrouped(&b, r)
	}
	b.WriteString("📊 Project totals:\n")
	for _, p := range r.Projects {
		fmt.Fprintf(&b, "- %s: %s\n", esc(projectName(p.Project)), code(FormatDuration(p.Total)))
	}
	fmt.Fprintf(&b, "\n⏱ Day total: %s", code(FormatDuration(r.Total)))
	return b.String()
}

func writeGrouped(b *strings.Builder, r domain.DayReport) {
	for _, g := range r.Groups {
		fmt.Fprintf(b, "• %s — %s\n", code(FormatDuration(g.Total)), esc(g.Description))
		if g.Project != "" {
			fmt.Fprintf(b, "  📂 %s\n", esc(g.Project))
		}
		b.WriteString("\n")
	}
}

func writeDetailed(b *strings.Builder, r domain.DayReport) {
	for _, l := range r.Lines {
		stop := l.To.Format("15:04")
		if l.Running {
			stop = "now"
		}
		fmt.Fprintf(b, "• %s - %s (%s)\n  📝 %s\n", code(l.From.Format("15:04")), code(stop), code(FormatDuration(l.Duration)), esc(l.Description))
		if l.Project != "" {
			fmt.Fprintf(b, "  📂 %s\n", esc(l.Project))
		}
		b.WriteString("\n")
	}
}

func projectName(label string) string {
	if label == "" {
		return domain.NoProject
	}
	return label
}

func esc(s string) string { return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s) }

func code(s string) string { return "`" + s + "`" }
