package supabase

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/supabase-community/postgrest-go"

	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/domain"
)

const (
	usersTable    = "Users"
	wakeLogsTable = "WakeLogs"
)

// Client implements ports.UserDirectory against the Supabase PostgREST API.
type Client struct {
	rest    *postgrest.Client
	timeout time.Duration
	log     *slog.Logger
}

// NewClient builds a client for a project URL such as https://xyz.supabase.co.
func NewClient(projectURL, key string, timeout time.Duration, log *slog.Logger) (*Client, error) {
	if projectURL == "" || key == "" {
		return nil, errors.New("supabase: url and key are required")
	}
	if _, err := url.Parse(projectURL); err != nil {
		return nil, fmt.Errorf("supabase: invalid url: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rest := postgrest.NewClient(strings.TrimRight(projectURL, "/")+"/rest/v1", "", map[string]string{
		"apikey":        key,
		"Authorization": "Bearer " + key,
	})
	if rest.ClientError != nil {
		return nil, fmt.Errorf("supabase: %w", rest.ClientError)
	}
	return &Client{rest: rest, timeout: timeout, log: log}, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	if err := c.query(ctx, "list users", c.rest.From(usersTable).Select("*", "", false), &rows); err != nil {
		return nil, err
	}
	slices.SortFunc(rows, func(a, b userRow) int { return cmp.Compare(a.ID, b.ID) })
	return toUsers(rows), nil
}

// FindByName matches case-insensitively. The ilike filter narrows the rows;
// the exact comparison guards against pattern characters in the name.
func (c *Client) FindByName(ctx context.Context, name string) (domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.User{}, domain.ErrNotFound
	}
	var rows []userRow
	q := c.rest.From(usersTable).Select("*", "", false).Ilike("user_name", name)
	if err := c.query(ctx, "find user", q, &rows); err != nil {
		return domain.User{}, err
	}
	for _, u := range toUsers(rows) {
		if u.MatchesName(name) {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("user %q: %w", name, domain.ErrNotFound)
}

func (c *Client) FindByChatID(ctx context.Context, chatID int64) (domain.User, error) {
	var rows []userRow
	q := c.rest.From(usersTable).Select("*", "", false).Eq("tele_id", strconv.FormatInt(chatID, 10))
	if err := c.query(ctx, "find chat", q, &rows); err != nil {
		return domain.User{}, err
	}
	if len(rows) == 0 {
		return domain.User{}, fmt.Errorf("chat %d: %w", chatID, domain.ErrNotFound)
	}
	return rows[0].toDomain(), nil
}

func (c *Client) SetWakeCooldown(ctx context.Context, userID int64, cooldown map[int64]time.Time) error {
	body := map[string]any{"wake_cooldown": encodeCooldown(cooldown)}
	q := c.rest.From(usersTable).Update(body, "minimal", "").Eq("id", strconv.FormatInt(userID, 10))
	return c.query(ctx, "set cooldown", q, nil)
}

func (c *Client) RecordWake(ctx context.Context, log domain.WakeLog) error {
	body := map[string]any{
		"sender_id":      strconv.FormatInt(log.SenderID, 10),
		"receiver_id":    strconv.FormatInt(log.ReceiverID, 10),
		"message_id":     log.MessageID,
		"command_msg_id": log.CommandMsgID,
		"reply_used":     log.ReplyUsed,
	}
	return c.query(ctx, "record wake", c.rest.From(wakeLogsTable).Insert(body, false, "", "minimal", ""), nil)
}

func (c *Client) FindWake(ctx context.Context, receiverID int64, messageID int) (domain.WakeLog, error) {
	var rows []wakeRow
	q := c.rest.From(wakeLogsTable).Select("*", "", false).
		Eq("message_id", strconv.Itoa(messageID)).
		Eq("receiver_id", strconv.FormatInt(receiverID, 10))
	if err := c.query(ctx, "find wake", q, &rows); err != nil {
		return domain.WakeLog{}, err
	}
	if len(rows) == 0 {
		return domain.WakeLog{}, domain.ErrNotFound
	}
	r := rows[len(rows)-1]
	return domain.WakeLog{
		ID:           r.ID,
		SenderID:     int64(r.SenderID),
		ReceiverID:   int64(r.ReceiverID),
		MessageID:    r.MessageID,
		CommandMsgID: r.CommandMsgID,
		ReplyUsed:    r.ReplyUsed,
	}, nil
}

func (c *Client) MarkWakeReplied(ctx context.Context, id int64) error {
	q := c.rest.From(wakeLogsTable).Update(map[string]any{"reply_used": true}, "minimal", "").Eq("id", strconv.FormatInt(id, 10))
	return c.query(ctx, "mark wake", q, nil)
}

type result struct {
	body []byte
	err  error
}

// query executes fb and decodes the response into out when out is non-nil.
// postgrest-go does not take a context, so the call is raced against ctx
// bounded by the client timeout.
func (c *Client) query(ctx context.Context, op string, fb *postgrest.FilterBuilder, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: supabase %s: %v", domain.ErrUpstreamUnavailable, op, err)
	}

	done := make(chan result, 1)
	go func() {
		body, _, err := fb.Execute()
		done <- result{body: body, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		res.err = ctx.Err()
	case res = <-done:
	}
	if res.err != nil {
		c.log.Warn("supabase request failed", slog.String("op", op), slog.String("error", res.err.Error()))
		return fmt.Errorf("%w: supabase %s: %v", domain.ErrUpstreamUnavailable, op, res.err)
	}
	if out == nil || len(res.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return fmt.Errorf("%w: supabase %s: decode: %v", domain.ErrUpstreamUnavailable, op, err)
	}
	return nil
}
