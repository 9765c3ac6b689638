package usecase

import (
	"context"
	"log/slog"

	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/ports"
)

// Replier posts answers, optionally through an editable placeholder.
type Replier struct {
	Log       *slog.Logger
	Messenger ports.Messenger
}

// Reply posts text as a new message.
func (r *Replier) Reply(ctx context.Context, chatID int64, text string, mode ports.ParseMode) error {
	_, err := r.Messenger.Send(ctx, ports.OutgoingMessage{ChatID: chatID, Text: text, ParseMode: mode})
	return err
}

// Placeholder posts a short "working on it" message that Finish later replaces.
// A failed placeholder is not fatal: Finish then posts a new message.
func (r *Replier) Placeholder(ctx context.Context, chatID int64, text string) *Pending {
	id, err := r.Messenger.Send(ctx, ports.OutgoingMessage{ChatID: chatID, Text: text})
	if err != nil {
		r.Log.Warn("placeholder not sent", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		id = 0
	}
	return &Pending{r: r, chatID: chatID, messageID: id}
}

// Pending is a placeholder waiting for its final text.
type Pending struct {
	r         *Replier
	chatID    int64
	messageID int
}

// Finish edits the placeholder into text, falling back to a new message.
func (p *Pending) Finish(ctx context.Context, text string, mode ports.ParseMode) error {
	if p.messageID != 0 {
		err := p.r.Messenger.Edit(ctx, p.chatID, p.messageID, text, mode)
		if err == nil {
			return nil
		}
		p.r.Log.Warn("edit failed, sending new message", slog.Int64("chat_id", p.chatID), slog.String("error", err.Error()))
	}
	return p.r.Reply(ctx, p.chatID, text, mode)
}
