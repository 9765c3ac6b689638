package supabase

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/domain"
)

// userRow mirrors the Users table.
type userRow struct {
	ID           int64           `json:"id"`
	UserName     string          `json:"user_name"`
	TogglToken   string          `json:"toggl_token"`
	TeleID       flexInt         `json:"tele_id"`
	WakeCooldown json.RawMessage `json:"wake_cooldown"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:           r.ID,
		Name:         r.UserName,
		TogglToken:   r.TogglToken,
		ChatID:       int64(r.TeleID),
		WakeCooldown: decodeCooldown(r.WakeCooldown),
	}
}

func toUsers(rows []userRow) []domain.User {
	out := make([]domain.User, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out
}

// wakeRow mirrors the WakeLogs table. Sender and receiver ids are stored as text.
type wakeRow struct {
	ID           int64   `json:"id"`
	SenderID     flexInt `json:"sender_id"`
	ReceiverID   flexInt `json:"receiver_id"`
	MessageID    int     `json:"message_id"`
	CommandMsgID int     `json:"command_msg_id"`
	ReplyUsed    bool    `json:"reply_used"`
}

// flexInt accepts a JSON number, a numeric string or null.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*f = flexInt(v)
	return nil
}

// decodeCooldown reads the wake_cooldown column, which holds a JSON object of
// sender id -> RFC3339 expiry, either as jsonb or as a JSON-encoded string.
// Unparseable data yields an empty map.
func decodeCooldown(raw json.RawMessage) map[int64]time.Time {
	out := make(map[int64]time.Time)
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return out
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return out
		}
		raw = []byte(s)
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return out
	}
	for k, v := range m {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		t, err := parseTimestamp(v)
		if err != nil {
			continue
		}
		out[id] = t
	}
	return out
}

func encodeCooldown(m map[int64]time.Time) map[string]string {
	out := make(map[string]string, len(m))
	for id, t := range m {
		out[strconv.FormatInt(id, 10)] = t.UTC().Format(time.RFC3339Nano)
	}
	return out
}

// parseTimestamp accepts RFC3339 and offset-less ISO timestamps, the latter as UTC.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.UTC)
}
