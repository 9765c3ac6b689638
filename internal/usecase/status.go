package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/domain"
	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/ports"
)

// ErrMissingToken is returned for users without a Toggl token.
var ErrMissingToken = errors.New("no toggl token configured")

// TrackingState is the outcome of a current-entry lookup.
type TrackingState int

const (
	StateUnknown TrackingState = iota
	StateIdle
	StateTracking
)

// UserStatus is the status of one user.
type UserStatus struct {
	User    domain.User
	State   TrackingState
	Entry   *domain.TimeEntry
	Project string // resolved project name, "" when the entry has none
	Err     error  // set when State is StateUnknown
}

// StatusUseCase looks up who is currently tracking time.
type StatusUseCase struct {
	Log   *slog.Logger
	Toggl ports.TogglClient
	// Concurrency bounds parallel Toggl lookups; <= 0 means 4.
	Concurrency int
}

// Check looks up every user independently. One failing lookup only marks that
// user unknown. Results keep the order of users.
func (uc *StatusUseCase) Check(ctx context.Context, users []domain.User) []UserStatus {
	out := make([]UserStatus, len(users))
	limit := uc.Concurrency
	if limit <= 0 {
		limit = 4
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, u := range users {
		i, u := i, u
		g.Go(func() error {
			out[i] = uc.checkOne(ctx, u)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (uc *StatusUseCase) checkOne(ctx context.Context, u domain.User) UserStatus {
	st := UserStatus{User: u}
	if u.TogglToken == "" {
		st.Err = ErrMissingToken
		return st
	}
	entry, err := uc.Toggl.CurrentTimeEntry(ctx, u.TogglToken)
	if err != nil {
		uc.Log.Warn("status lookup failed", slog.String("user", u.Name), slog.String("error", err.Error()))
		st.Err = err
		return st
	}
	if entry == nil {
		st.State = StateIdle
		return st
	}
	st.State = StateTracking
	st.Entry = entry
	if entry.ProjectID != nil && entry.WorkspaceID != nil {
		p, err := uc.Toggl.GetProject(ctx, u.TogglToken, *entry.WorkspaceID, *entry.ProjectID)
		if err != nil {
			uc.Log.Debug("project lookup failed", slog.Int64("project_id", *entry.ProjectID), slog.String("error", err.Error()))
			st.Project = domain.UnknownProject
		} else {
			st.Project = p.Name
		}
	}
	return st
}

// FormatStatus renders one status line as Telegram Markdown.
func FormatStatus(s UserStatus) string {
	name := esc(s.User.DisplayName())
	switch s.State {
	case StateTracking:
		desc := strings.TrimSpace(s.Entry.Description)
		if desc == "" {
			desc = "(No Description)"
		}
		project := ""
		if s.Project != "" {
			project = "[" + esc(s.Project) + "] "
		}
		return fmt.Sprintf("🟢 %s is currently tracking: %s%s", name, project, esc(desc))
	case StateIdle:
		return fmt.Sprintf("🔴 %s is currently NOT tracking time.", name)
	default:
		if errors.Is(s.Err, ErrMissingToken) {
			return fmt.Sprintf("⚪ %s: status unknown (no Toggl token).", name)
		}
		return fmt.Sprintf("⚪ %s: status unknown (could not reach Toggl).", name)
	}
}

// FormatStatuses renders statuses one per line in input order.
func FormatStatuses(list []UserStatus) string {
	lines := make([]string, 0, len(list))
	for _, s := range list {
		lines = append(lines, FormatStatus(s))
	}
	return strings.Join(lines, "\n")
}

func esc(s string) string { return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s) }
