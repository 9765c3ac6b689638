package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/domain"
	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/ports"
	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/report"
)

// ReportUseCase builds a user's daily time report.
type ReportUseCase struct {
	Log      *slog.Logger
	Toggl    ports.TogglClient
	Location *time.Location
	Now      func() time.Time
}

func (uc *ReportUseCase) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}

// Build fetches entries overlapping the day of `day` and aggregates them.
func (uc *ReportUseCase) Build(ctx context.Context, u domain.User, day time.Time) (domain.DayReport, error) {
	if u.TogglToken == "" {
		return domain.DayReport{}, ErrMissingToken
	}
	start, end := report.DayBounds(day, uc.Location)
	// Toggl filters on start time; look back a day to catch entries crossing midnight.
	entries, err := uc.Toggl.ListTimeEntries(ctx, u.TogglToken, start.Add(-24*time.Hour), end)
	if err != nil {
		return domain.DayReport{}, err
	}
	uc.Log.Debug("fetched time entries", slog.String("user", u.Name), slog.Int("count", len(entries)))

	names := uc.projectNames(ctx, u.TogglToken, entries)
	return report.Build(u.DisplayName(), day, uc.Location, uc.now(), entries, names), nil
}

// Render builds and renders the report as Telegram Markdown.
func (uc *ReportUseCase) Render(ctx context.Context, u domain.User, day time.Time, detailed bool) (string, error) {
	r, err := uc.Build(ctx, u, day)
	if err != nil {
		return "", err
	}
	return report.Render(r, detailed), nil
}

// projectNames resolves each distinct project once. Failed lookups are left
// out and render as domain.UnknownProject.
func (uc *ReportUseCase) projectNames(ctx context.Context, token string, entries []domain.TimeEntry) map[int64]string {
	workspaces := make(map[int64]int64)
	for _, e := range entries {
		if e.ProjectID != nil && e.WorkspaceID != nil {
			workspaces[*e.ProjectID] = *e.WorkspaceID
		}
	}
	names := make(map[int64]string, len(workspaces))
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(4)
	for pid, wid := range workspaces {
		pid, wid := pid, wid
		g.Go(func() error {
			p, err := uc.Toggl.GetProject(ctx, token, wid, pid)
			if err != nil {
				uc.Log.Debug("project lookup failed", slog.Int64("project_id", pid), slog.String("error", err.Error()))
				return nil
			}
			mu.Lock()
			names[pid] = p.Name
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return names
}
