package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// User directory backends.
const (
	StoreSupabase = "supabase"
	StorePostgres = "postgres"
	StoreMySQL    = "mysql"
)

// Config holds environment-driven configuration.
type Config struct {
	Telegram struct {
		BotToken      string
		WebhookSecret string // compared with X-Telegram-Bot-Api-Secret-Token when set
		APIEndpoint   string // tgbotapi format, e.g. https://api.telegram.org/bot%s/%s
	}
	Toggl struct {
		BaseURL string // default: https://api.track.toggl.com
		Timeout time.Duration
	}
	Store struct {
		Kind        string // supabase (default), postgres, mysql
		SupabaseURL string
		SupabaseKey string
		DSN         string // for postgres/mysql
		Migrate     bool
	}
	Report struct {
		Timezone string // e.g. Asia/Kolkata (default)
		Location *time.Location
	}
	Wake struct {
		Cooldown time.Duration
	}
	HTTP struct {
		Addr string
	}
}

// LoadDotEnv reads a .env file into the environment if one exists.
// Variables already set take precedence.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config

	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if cfg.Telegram.BotToken == "" {
		return cfg, errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	cfg.Telegram.WebhookSecret = os.Getenv("TELEGRAM_WEBHOOK_SECRET")
	cfg.Telegram.APIEndpoint = os.Getenv("TELEGRAM_API_ENDPOINT")

	cfg.Toggl.BaseURL = os.Getenv("TOGGL_BASE_URL")
	if cfg.Toggl.BaseURL == "" {
		cfg.Toggl.BaseURL = "https://api.track.toggl.com"
	}
	timeout, err := getDuration("TOGGL_TIMEOUT", 10*time.Second)
	if err != nil {
		return cfg, err
	}
	cfg.Toggl.Timeout = timeout

	cfg.Store.Kind = strings.ToLower(os.Getenv("USER_STORE"))
	if cfg.Store.Kind == "" {
		cfg.Store.Kind = StoreSupabase
	}
	cfg.Store.SupabaseURL = os.Getenv("SUPABASE_URL")
	cfg.Store.SupabaseKey = os.Getenv("SUPABASE_KEY")
	cfg.Store.DSN = os.Getenv("DATABASE_DSN")
	switch cfg.Store.Kind {
	case StoreSupabase:
		if cfg.Store.SupabaseURL == "" || cfg.Store.SupabaseKey == "" {
			return cfg, errors.New("SUPABASE_URL and SUPABASE_KEY are required")
		}
	case StorePostgres, StoreMySQL:
		if cfg.Store.DSN == "" {
			return cfg, fmt.Errorf("DATABASE_DSN is required for USER_STORE=%s", cfg.Store.Kind)
		}
	default:
		return cfg, fmt.Errorf("USER_STORE must be one of supabase, postgres, mysql; got %q", cfg.Store.Kind)
	}
	if v := os.Getenv("DB_MIGRATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, errors.New("DB_MIGRATE must be a boolean")
		}
		cfg.Store.Migrate = b
	}

	cfg.Report.Timezone = os.Getenv("REPORT_TZ")
	if cfg.Report.Timezone == "" {
		cfg.Report.Timezone = "Asia/Kolkata"
	}
	loc, err := time.LoadLocation(cfg.Report.Timezone)
	if err != nil {
		return cfg, fmt.Errorf("invalid REPORT_TZ %q: %w", cfg.Report.Timezone, err)
	}
	cfg.Report.Location = loc

	cooldown, err := getDuration("WAKE_COOLDOWN", time.Hour)
	if err != nil {
		return cfg, err
	}
	cfg.Wake.Cooldown = cooldown

	cfg.HTTP.Addr = os.Getenv("HTTP_ADDR")
	if cfg.HTTP.Addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			cfg.HTTP.Addr = ":" + port
		} else {
			cfg.HTTP.Addr = ":8080"
		}
	}

	return cfg, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration like 30s or 1h", key)
	}
	return d, nil
}
