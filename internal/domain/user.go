package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// User is a team member known to the directory.
type User struct {
	ID         int64
	Name       string
	TogglToken string
	ChatID     int64 // Telegram user/chat id, 0 when unknown

	// WakeCooldown maps a sender chat id to the moment it may nudge this user again.
	WakeCooldown map[int64]time.Time
}

// MatchesName compares names case-insensitively.
func (u User) MatchesName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(u.Name), strings.TrimSpace(name))
}

// DisplayName capitalizes the first letter of the stored name.
func (u User) DisplayName() string {
	n := strings.TrimSpace(u.Name)
	if n == "" {
		return n
	}
	r, size := utf8.DecodeRuneInString(n)
	return string(unicode.ToUpper(r)) + n[size:]
}

// CooldownUntil returns when sender may nudge u again, if a cooldown is recorded.
func (u User) CooldownUntil(sender int64) (time.Time, bool) {
	t, ok := u.WakeCooldown[sender]
	return t, ok
}
