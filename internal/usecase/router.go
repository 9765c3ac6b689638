package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/domain"
	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/ports"
)

type commandFunc func(ctx context.Context, in Incoming, args string) error

// Router maps chat commands to handlers and turns failures into replies.
type Router struct {
	Log      *slog.Logger
	Users    ports.UserDirectory
	Status   *StatusUseCase
	Reports  *ReportUseCase
	Wake     *WakeUseCase
	Replier  *Replier
	Location *time.Location
	Now      func() time.Time

	commands map[string]commandFunc
}

// NewRouter wires the dispatch table.
func NewRouter(r Router) *Router {
	rt := &r
	rt.commands = map[string]commandFunc{
		"start":  rt.help,
		"help":   rt.help,
		"users":  rt.users,
		"status": rt.status,
		"today":  rt.today,
		"report": rt.report,
		"wake":   rt.wake,
	}
	return rt
}

func (rt *Router) now() time.Time {
	if rt.Now != nil {
		return rt.Now()
	}
	return time.Now()
}

// Handle processes one incoming message. Returned errors are delivery
// failures only; everything else is answered in chat.
func (rt *Router) Handle(ctx context.Context, in Incoming) error {
	text := strings.TrimSpace(in.Text)
	if strings.EqualFold(text, "hi") {
		return rt.Replier.Reply(ctx, in.ChatID, "Hello! I am the Toggl Manager bot. Send /help to see what I can do.", "")
	}

	cmd, args := in.Command, in.Args
	if cmd == "" {
		if in.ReplyTo != 0 {
			return rt.forwardReply(ctx, in)
		}
		return nil
	}
	h, ok := rt.commands[cmd]
	if !ok {
		return rt.Replier.Reply(ctx, in.ChatID, "🤷 Unknown command. Send /help for the list.", "")
	}
	rt.Log.Info("handling command", slog.String("command", cmd), slog.Int64("chat_id", in.ChatID))
	return h(ctx, in, args)
}

func (rt *Router) forwardReply(ctx context.Context, in Incoming) error {
	ok, err := rt.Wake.HandleReply(ctx, in)
	if err != nil {
		rt.Log.Warn("wake reply not forwarded", slog.String("error", err.Error()))
		return rt.Replier.Reply(ctx, in.ChatID, replyForError(err, ""), "")
	}
	if ok {
		return rt.Replier.Reply(ctx, in.ChatID, "📨 Reply forwarded.", "")
	}
	return nil
}

func (rt *Router) help(ctx context.Context, in Incoming, _ string) error {
	return rt.Replier.Reply(ctx, in.ChatID, helpText(), "")
}

func (rt *Router) users(ctx context.Context, in Incoming, _ string) error {
	users, err := rt.Users.ListUsers(ctx)
	if err != nil {
		return rt.Replier.Reply(ctx, in.ChatID, replyForError(err, ""), "")
	}
	if len(users) == 0 {
		return rt.Replier.Reply(ctx, in.ChatID, "No users found.", "")
	}
	lines := []string{"👥 Users:"}
	for _, u := range users {
		lines = append(lines, "- "+u.Name)
	}
	return rt.Replier.Reply(ctx, in.ChatID, strings.Join(lines, "\n"), "")
}

func (rt *Router) status(ctx context.Context, in Incoming, args string) error {
	fields := strings.Fields(args)
	if len(fields) > 1 {
		return rt.Replier.Reply(ctx, in.ChatID, replyForError(domain.ErrMalformed, statusUsage), "")
	}
	pending := rt.Replier.Placeholder(ctx, in.ChatID, "🔎 Checking status...")

	var (
		users []domain.User
		err   error
		name  string
	)
	switch {
	case len(fields) == 0:
		var u domain.User
		u, err = rt.Users.FindByChatID(ctx, in.SenderID)
		users = []domain.User{u}
		if errors.Is(err, domain.ErrNotFound) {
			return pending.Finish(ctx, notRegistered, "")
		}
	case strings.EqualFold(fields[0], "all"):
		users, err = rt.otherUsers(ctx, in.SenderID)
		if err == nil && len(users) == 0 {
			return pending.Finish(ctx, "No other users configured.", "")
		}
	default:
		name = fields[0]
		var u domain.User
		u, err = rt.Users.FindByName(ctx, name)
		users = []domain.User{u}
	}
	if err != nil {
		return pending.Finish(ctx, replyForError(err, name), "")
	}
	return pending.Finish(ctx, FormatStatuses(rt.Status.Check(ctx, users)), ports.ParseModeMarkdown)
}

// otherUsers lists every configured user except the requester, each once.
func (rt *Router) otherUsers(ctx context.Context, requester int64) ([]domain.User, error) {
	all, err := rt.Users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]bool, len(all))
	out := make([]domain.User, 0, len(all))
	for _, u := range all {
		if u.ChatID != 0 && u.ChatID == requester {
			continue
		}
		if seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		out = append(out, u)
	}
	return out, nil
}

func (rt *Router) today(ctx context.Context, in Incoming, args string) error {
	name, detailed, rest := parseReportArgs(args)
	if len(rest) > 0 {
		return rt.Replier.Reply(ctx, in.ChatID, replyForError(domain.ErrMalformed, todayUsage), "")
	}
	return rt.sendReport(ctx, in, name, rt.now(), detailed)
}

func (rt *Router) report(ctx context.Context, in Incoming, args string) error {
	name, detailed, rest := parseReportArgs(args)
	if name == "" || len(rest) != 1 {
		return rt.Replier.Reply(ctx, in.ChatID, replyForError(domain.ErrMalformed, reportUsage), "")
	}
	day, err := parseDay(rest[0], rt.now(), rt.Location)
	if err != nil {
		return rt.Replier.Reply(ctx, in.ChatID, replyForError(err, reportUsage), "")
	}
	return rt.sendReport(ctx, in, name, day, detailed)
}

func (rt *Router) sendReport(ctx context.Context, in Incoming, name string, day time.Time, detailed bool) error {
	pending := rt.Replier.Placeholder(ctx, in.ChatID, "📊 Building report...")
	var (
		u   domain.User
		err error
	)
	if name == "" {
		u, err = rt.Users.FindByChatID(ctx, in.SenderID)
		if errors.Is(err, domain.ErrNotFound) {
			return pending.Finish(ctx, notRegistered, "")
		}
	} else {
		u, err = rt.Users.FindByName(ctx, name)
	}
	if err != nil {
		return pending.Finish(ctx, replyForError(err, name), "")
	}
	text, err := rt.Reports.Render(ctx, u, day, detailed)
	if err != nil {
		rt.Log.Warn("report failed", slog.String("user", u.Name), slog.String("error", err.Error()))
		if errors.Is(err, ErrMissingToken) {
			return pending.Finish(ctx, fmt.Sprintf("⚠️ %s has no Toggl token configured.", u.DisplayName()), "")
		}
		return pending.Finish(ctx, replyForError(err, name), "")
	}
	return pending.Finish(ctx, text, ports.ParseModeMarkdown)
}

func (rt *Router) wake(ctx context.Context, in Incoming, args string) error {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return rt.Replier.Reply(ctx, in.ChatID, replyForError(domain.ErrMalformed, wakeUsage), "")
	}
	note := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(args), fields[0]))
	if strings.EqualFold(fields[0], "all") {
		text, err := rt.Wake.WakeAll(ctx, in, note)
		if err != nil {
			return rt.Replier.Reply(ctx, in.ChatID, replyForError(err, ""), "")
		}
		return rt.Replier.Reply(ctx, in.ChatID, text, "")
	}
	_, text, err := rt.Wake.Wake(ctx, in, fields[0], note)
	if err != nil {
		return rt.Replier.Reply(ctx, in.ChatID, replyForError(err, fields[0]), "")
	}
	return rt.Replier.Reply(ctx, in.ChatID, text, "")
}
