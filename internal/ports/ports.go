package ports

import (
	"context"
	"time"

	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/domain"
)

// TogglClient defines the Toggl calls made on behalf of a user's API token.
type TogglClient interface {
	// CurrentTimeEntry returns nil when the user is not tracking.
	CurrentTimeEntry(ctx context.Context, token string) (*domain.TimeEntry, error)
	ListTimeEntries(ctx context.Context, token string, from, to time.Time) ([]domain.TimeEntry, error)
	GetProject(ctx context.Context, token string, workspaceID, projectID int64) (domain.Project, error)
}

// UserDirectory reads team members and stores wake bookkeeping.
// Lookups return domain.ErrNotFound for unknown users.
type UserDirectory interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	FindByName(ctx context.Context, name string) (domain.User, error)
	FindByChatID(ctx context.Context, chatID int64) (domain.User, error)
	SetWakeCooldown(ctx context.Context, userID int64, cooldown map[int64]time.Time) error
	RecordWake(ctx context.Context, log domain.WakeLog) error
	FindWake(ctx context.Context, receiverID int64, messageID int) (domain.WakeLog, error)
	MarkWakeReplied(ctx context.Context, id int64) error
}

// ParseMode selects how the chat platform interprets message text.
type ParseMode string

const (
	ParseModeMarkdown ParseMode = "Markdown"
	ParseModeHTML     ParseMode = "HTML"
)

// OutgoingMessage is a message to post into a chat.
type OutgoingMessage struct {
	ChatID    int64
	Text      string
	ParseMode ParseMode
	ReplyTo   int
}

// Messenger posts and edits chat messages.
type Messenger interface {
	// Send returns the id of the posted message.
	Send(ctx context.Context, msg OutgoingMessage) (int, error)
	Edit(ctx context.Context, chatID int64, messageID int, text string, mode ParseMode) error
}
