package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/domain"
	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeToggl struct {
	mu       sync.Mutex
	current  map[string]*domain.TimeEntry // by token
	failing  map[string]bool
	entries  map[string][]domain.TimeEntry
	projects map[int64]string
	calls    []string
}

func (f *fakeToggl) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeToggl) CurrentTimeEntry(ctx context.Context, token string) (*domain.TimeEntry, error) {
	f.record("current:" + token)
	if f.failing[token] {
		return nil, fmt.Errorf("%w: boom", domain.ErrUpstreamUnavailable)
	}
	return f.current[token], nil
}

func (f *fakeToggl) ListTimeEntries(ctx context.Context, token string, from, to time.Time) ([]domain.TimeEntry, error) {
	f.record("list:" + token)
	if f.failing[token] {
		return nil, fmt.Errorf("%w: boom", domain.ErrUpstreamUnavailable)
	}
	return f.entries[token], nil
}

func (f *fakeToggl) GetProject(ctx context.Context, token string, workspaceID, projectID int64) (domain.Project, error) {
	f.record(fmt.Sprintf("project:%d", projectID))
	name, ok := f.projects[projectID]
	if !ok {
		return domain.Project{}, fmt.Errorf("%w: no project", domain.ErrUpstreamUnavailable)
	}
	return domain.Project{ID: projectID, WorkspaceID: workspaceID, Name: name}, nil
}

type fakeDirectory struct {
	mu        sync.Mutex
	users     []domain.User
	wakes     []domain.WakeLog
	cooldowns map[int64]map[int64]time.Time
	listErr   error
}

func (f *fakeDirectory) ListUsers(ctx context.Context) ([]domain.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.User(nil), f.users...), nil
}

func (f *fakeDirectory) FindByName(ctx context.Context, name string) (domain.User, error) {
	if f.listErr != nil {
		return domain.User{}, f.listErr
	}
	for _, u := range f.users {
		if u.MatchesName(name) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (f *fakeDirectory) FindByChatID(ctx context.Context, chatID int64) (domain.User, error) {
	for _, u := range f.users {
		if u.ChatID == chatID {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (f *fakeDirectory) SetWakeCooldown(ctx context.Context, userID int64, cooldown map[int64]time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cooldowns == nil {
		f.cooldowns = make(map[int64]map[int64]time.Time)
	}
	f.cooldowns[userID] = cooldown
	for i := range f.users {
		if f.users[i].ID == userID {
			f.users[i].WakeCooldown = cooldown
		}
	}
	return nil
}

func (f *fakeDirectory) RecordWake(ctx context.Context, l domain.WakeLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l.ID = int64(len(f.wakes) + 1)
	f.wakes = append(f.wakes, l)
	return nil
}

func (f *fakeDirectory) FindWake(ctx context.Context, receiverID int64, messageID int) (domain.WakeLog, error) {
	for _, l := range f.wakes {
		if l.ReceiverID == receiverID && l.MessageID == messageID {
			return l, nil
		}
	}
	return domain.WakeLog{}, domain.ErrNotFound
}

func (f *fakeDirectory) MarkWakeReplied(ctx context.Context, id int64) error {
	for i := range f.wakes {
		if f.wakes[i].ID == id {
			f.wakes[i].ReplyUsed = true
		}
	}
	return nil
}

type sentMessage struct {
	ports.OutgoingMessage
	ID     int
	Edited bool
}

type fakeMessenger struct {
	mu       sync.Mutex
	nextID   int
	sent     []sentMessage
	failSend map[int64]bool
	failEdit bool
}

func (f *fakeMessenger) Send(ctx context.Context, msg ports.OutgoingMessage) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend[msg.ChatID] {
		return 0, fmt.Errorf("%w: blocked", domain.ErrUpstreamUnavailable)
	}
	f.nextID++
	f.sent = append(f.sent, sentMessage{OutgoingMessage: msg, ID: f.nextID})
	return f.nextID, nil
}

func (f *fakeMessenger) Edit(ctx context.Context, chatID int64, messageID int, text string, mode ports.ParseMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failEdit {
		return fmt.Errorf("%w: edit", domain.ErrUpstreamUnavailable)
	}
	for i := range f.sent {
		if f.sent[i].ID == messageID && f.sent[i].ChatID == chatID {
			f.sent[i].Text = text
			f.sent[i].ParseMode = mode
			f.sent[i].Edited = true
			return nil
		}
	}
	return fmt.Errorf("message %d not found", messageID)
}

// last returns the latest message posted to chatID.
func (f *fakeMessenger) last(chatID int64) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].ChatID == chatID {
			return f.sent[i].Text
		}
	}
	return ""
}

func (f *fakeMessenger) count(chatID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.sent {
		if m.ChatID == chatID {
			n++
		}
	}
	return n
}

func countLines(s, substr string) int {
	n := 0
	for _, l := range strings.Split(s, "\n") {
		if strings.Contains(l, substr) {
			n++
		}
	}
	return n
}

// chatMessage builds a Telegram message the way the Bot API delivers it:
// a leading "/word" carries a bot_command entity.
func chatMessage(from int64, text string) *tgbotapi.Message {
	m := &tgbotapi.Message{
		MessageID: 9000,
		Chat:      &tgbotapi.Chat{ID: from},
		From:      &tgbotapi.User{ID: from, FirstName: "Sender"},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		n := strings.IndexFunc(text, unicode.IsSpace)
		if n < 0 {
			n = len(text)
		}
		m.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: n}}
	}
	return m
}
