package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/domain"
	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/ports"
)

// Client implements ports.Messenger with the Telegram Bot API.
type Client struct {
	bot *tgbotapi.BotAPI
	log *slog.Logger
}

// NewClient builds a bot without calling getMe, so a cold start costs no
// extra round trip. endpoint follows tgbotapi's "<base>/bot%s/%s" format.
func NewClient(token, endpoint string, timeout time.Duration, log *slog.Logger) (*Client, error) {
	if token == "" {
		return nil, errors.New("telegram: bot token is required")
	}
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	bot := &tgbotapi.BotAPI{
		Token:  token,
		Client: &http.Client{Timeout: timeout},
		Buffer: 100,
	}
	bot.SetAPIEndpoint(endpoint)
	return &Client{bot: bot, log: log}, nil
}

func (c *Client) Send(ctx context.Context, msg ports.OutgoingMessage) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m := tgbotapi.NewMessage(msg.ChatID, msg.Text)
	m.ParseMode = string(msg.ParseMode)
	m.ReplyToMessageID = msg.ReplyTo
	m.DisableWebPagePreview = true
	sent, err := c.withContext(ctx).Send(m)
	if err != nil {
		c.log.Warn("telegram send failed", slog.Int64("chat_id", msg.ChatID), slog.String("error", err.Error()))
		return 0, fmt.Errorf("%w: telegram: %v", domain.ErrUpstreamUnavailable, err)
	}
	return sent.MessageID, nil
}

func (c *Client) Edit(ctx context.Context, chatID int64, messageID int, text string, mode ports.ParseMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := tgbotapi.NewEditMessageText(chatID, messageID, text)
	e.ParseMode = string(mode)
	e.DisableWebPagePreview = true
	if _, err := c.withContext(ctx).Request(e); err != nil {
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) && strings.Contains(apiErr.Message, "message is not modified") {
			return nil
		}
		c.log.Warn("telegram edit failed", slog.Int64("chat_id", chatID), slog.Int("message_id", messageID), slog.String("error", err.Error()))
		return fmt.Errorf("%w: telegram: %v", domain.ErrUpstreamUnavailable, err)
	}
	return nil
}

// withContext returns a copy of the bot whose HTTP requests carry ctx.
func (c *Client) withContext(ctx context.Context) *tgbotapi.BotAPI {
	b := *c.bot
	b.Client = ctxClient{ctx: ctx, base: c.bot.Client}
	return &b
}

type ctxClient struct {
	ctx  context.Context
	base tgbotapi.HTTPClient
}

func (c ctxClient) Do(req *http.Request) (*http.Response, error) {
	return c.base.Do(req.WithContext(c.ctx))
}
