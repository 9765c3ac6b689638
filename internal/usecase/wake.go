package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/domain"
	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/ports"
)

// DefaultWakeCooldown is how long a sender waits before nudging the same user again.
const DefaultWakeCooldown = time.Hour

// WakeOutcome classifies a single nudge attempt.
type WakeOutcome int

const (
	WakeSent WakeOutcome = iota
	WakeNotFound
	WakeSelf
	WakeCooldown
	WakeAlreadyTracking
	WakeNoChat
	WakeFailed
)

// WakeUseCase nudges idle colleagues and routes their replies back.
type WakeUseCase struct {
	Log       *slog.Logger
	Users     ports.UserDirectory
	Toggl     ports.TogglClient
	Messenger ports.Messenger
	Cooldown  time.Duration
	Now       func() time.Time
}

func (uc *WakeUseCase) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}

func (uc *WakeUseCase) cooldown() time.Duration {
	if uc.Cooldown > 0 {
		return uc.Cooldown
	}
	return DefaultWakeCooldown
}

// Wake nudges the user called target on behalf of in's sender.
func (uc *WakeUseCase) Wake(ctx context.Context, in Incoming, target, note string) (WakeOutcome, string, error) {
	u, err := uc.Users.FindByName(ctx, target)
	if errors.Is(err, domain.ErrNotFound) {
		return WakeNotFound, fmt.Sprintf("❌ User '%s' not found.", target), nil
	}
	if err != nil {
		return WakeFailed, "", err
	}
	if u.ChatID != 0 && u.ChatID == in.SenderID {
		return WakeSelf, "🙃 You cannot wake yourself.", nil
	}
	outcome, text := uc.wakeUser(ctx, in, u, note)
	return outcome, text, nil
}

// WakeAll nudges every user except the sender and returns a summary.
func (uc *WakeUseCase) WakeAll(ctx context.Context, in Incoming, note string) (string, error) {
	users, err := uc.Users.ListUsers(ctx)
	if err != nil {
		return "", err
	}
	lines := []string{"📢 Wake All Report", ""}
	for _, u := range users {
		if u.ChatID != 0 && u.ChatID == in.SenderID {
			continue
		}
		outcome, text := uc.wakeUser(ctx, in, u, note)
		lines = append(lines, fmt.Sprintf("%s %s: %s", wakeIcon(outcome), u.DisplayName(), strings.TrimSpace(stripIcon(text))))
	}
	if len(lines) == 2 {
		return "📢 Nobody else to wake.", nil
	}
	return strings.Join(lines, "\n"), nil
}

func (uc *WakeUseCase) wakeUser(ctx context.Context, in Incoming, u domain.User, note string) (WakeOutcome, string) {
	name := u.DisplayName()
	now := uc.now()

	if until, ok := u.CooldownUntil(in.SenderID); ok && now.Before(until) {
		left := until.Sub(now).Round(time.Minute)
		if left < time.Minute {
			left = time.Minute
		}
		return WakeCooldown, fmt.Sprintf("⏳ Wait %s before waking %s again.", shortDuration(left), name)
	}

	if u.TogglToken != "" {
		entry, err := uc.Toggl.CurrentTimeEntry(ctx, u.TogglToken)
		if err != nil {
			uc.Log.Debug("wake status check failed", slog.String("user", u.Name), slog.String("error", err.Error()))
		} else if entry != nil {
			return WakeAlreadyTracking, fmt.Sprintf("🔨 %s is already tracking time!", name)
		}
	}

	if u.ChatID == 0 {
		return WakeNoChat, fmt.Sprintf("⚠️ %s has no Telegram ID.", name)
	}

	text := fmt.Sprintf("⏰ <b>WAKE UP!</b>\n\n%s is nudging you to start tracking!", escHTML(in.SenderName))
	if note = strings.TrimSpace(note); note != "" {
		text += fmt.Sprintf("\n\n💬 Message:\n<blockquote>%s</blockquote>", escHTML(note))
	}
	msgID, err := uc.Messenger.Send(ctx, ports.OutgoingMessage{ChatID: u.ChatID, Text: text, ParseMode: ports.ParseModeHTML})
	if err != nil {
		return WakeFailed, fmt.Sprintf("⚠️ Failed to send message to %s.", name)
	}

	cooldown := make(map[int64]time.Time, len(u.WakeCooldown)+1)
	for sender, until := range u.WakeCooldown {
		if until.After(now) {
			cooldown[sender] = until
		}
	}
	cooldown[in.SenderID] = now.Add(uc.cooldown())
	if err := uc.Users.SetWakeCooldown(ctx, u.ID, cooldown); err != nil {
		uc.Log.Error("failed to update cooldown", slog.String("user", u.Name), slog.String("error", err.Error()))
	}
	err = uc.Users.RecordWake(ctx, domain.WakeLog{
		SenderID:     in.ChatID,
		ReceiverID:   u.ChatID,
		MessageID:    msgID,
		CommandMsgID: in.MessageID,
	})
	if err != nil {
		uc.Log.Error("failed to log wake event", slog.String("user", u.Name), slog.String("error", err.Error()))
	}
	uc.Log.Info("user woken", slog.String("target", u.Name), slog.Int64("sender", in.SenderID))
	return WakeSent, fmt.Sprintf("✅ Successfully woke %s! 🔔", name)
}

// HandleReply forwards a reply to a nudge back to the chat that sent /wake.
// It reports false when in is not an unused reply to a logged nudge.
func (uc *WakeUseCase) HandleReply(ctx context.Context, in Incoming) (bool, error) {
	if in.ReplyTo == 0 || strings.TrimSpace(in.Text) == "" {
		return false, nil
	}
	log, err := uc.Users.FindWake(ctx, in.ChatID, in.ReplyTo)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if log.ReplyUsed {
		return false, nil
	}
	text := fmt.Sprintf("%s : %s", escHTML(in.SenderName), escHTML(in.Text))
	if _, err := uc.Messenger.Send(ctx, ports.OutgoingMessage{
		ChatID:    log.SenderID,
		Text:      text,
		ParseMode: ports.ParseModeHTML,
		ReplyTo:   log.CommandMsgID,
	}); err != nil {
		return false, err
	}
	if err := uc.Users.MarkWakeReplied(ctx, log.ID); err != nil {
		uc.Log.Error("failed to mark wake reply", slog.Int64("wake_id", log.ID), slog.String("error", err.Error()))
	}
	return true, nil
}

func wakeIcon(o WakeOutcome) string {
	switch o {
	case WakeSent:
		return "✅"
	case WakeAlreadyTracking:
		return "🔨"
	case WakeCooldown:
		return "⏳"
	default:
		return "⚠️"
	}
}

// stripIcon drops the leading emoji of a single-wake message for the summary.
func stripIcon(s string) string {
	if i := strings.IndexByte(s, ' '); i > 0 && i <= 8 {
		return s[i+1:]
	}
	return s
}

func shortDuration(d time.Duration) string {
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh%02dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

func escHTML(s string) string { return tgbotapi.EscapeText(tgbotapi.ModeHTML, s) }
