package usecase

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Incoming is a chat message addressed to the bot.
type Incoming struct {
	ChatID     int64 // chat the message was posted in
	SenderID   int64 // Telegram user id of the author
	SenderName string
	MessageID  int
	Text       string
	Command    string // lowercase command without "/" and "@bot", "" for plain text
	Args       string
	ReplyTo    int // id of the message being replied to, 0 if none
}

// FromMessage converts a Telegram message. Commands are taken from the
// message's bot_command entity. It reports false for messages without text.
func FromMessage(m *tgbotapi.Message) (Incoming, bool) {
	if m == nil || m.Chat == nil || m.Text == "" {
		return Incoming{}, false
	}
	in := Incoming{
		ChatID:    m.Chat.ID,
		MessageID: m.MessageID,
		Text:      m.Text,
	}
	if m.IsCommand() {
		in.Command = strings.ToLower(m.Command())
		in.Args = strings.TrimSpace(m.CommandArguments())
	}
	if m.From != nil {
		in.SenderID = m.From.ID
		in.SenderName = m.From.FirstName
		if in.SenderName == "" {
			in.SenderName = m.From.UserName
		}
	}
	if m.ReplyToMessage != nil {
		in.ReplyTo = m.ReplyToMessage.MessageID
	}
	return in, true
}
