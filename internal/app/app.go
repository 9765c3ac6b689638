package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/adapter/sqlstore"
	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/adapter/supabase"
	tg "github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/adapter/telegram"
	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/adapter/toggl"
	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/config"
	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/migrate"
	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/ports"
	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/usecase"
)

// App wires adapters and use cases.
type App struct {
	log           *slog.Logger
	router        *usecase.Router
	webhookSecret string
	closer        io.Closer
}

func New(ctx context.Context, log *slog.Logger, cfg config.Config) (*App, error) {
	togglClient := toggl.NewClient(cfg.Toggl.BaseURL, cfg.Toggl.Timeout, log)
	messenger, err := tg.NewClient(cfg.Telegram.BotToken, cfg.Telegram.APIEndpoint, cfg.Toggl.Timeout, log)
	if err != nil {
		return nil, err
	}
	users, closer, err := openDirectory(ctx, log, cfg)
	if err != nil {
		return nil, err
	}
	a := Wire(log, cfg, togglClient, users, messenger)
	a.webhookSecret = cfg.Telegram.WebhookSecret
	a.closer = closer
	return a, nil
}

// Wire assembles the router from already built adapters.
func Wire(log *slog.Logger, cfg config.Config, togglClient ports.TogglClient, users ports.UserDirectory, messenger ports.Messenger) *App {
	router := usecase.NewRouter(usecase.Router{
		Log:      log,
		Users:    users,
		Status:   &usecase.StatusUseCase{Log: log, Toggl: togglClient},
		Reports:  &usecase.ReportUseCase{Log: log, Toggl: togglClient, Location: cfg.Report.Location},
		Wake:     &usecase.WakeUseCase{Log: log, Users: users, Toggl: togglClient, Messenger: messenger, Cooldown: cfg.Wake.Cooldown},
		Replier:  &usecase.Replier{Log: log, Messenger: messenger},
		Location: cfg.Report.Location,
	})
	return &App{log: log, router: router, webhookSecret: cfg.Telegram.WebhookSecret}
}

func openDirectory(ctx context.Context, log *slog.Logger, cfg config.Config) (ports.UserDirectory, io.Closer, error) {
	switch cfg.Store.Kind {
	case config.StoreSupabase:
		c, err := supabase.NewClient(cfg.Store.SupabaseURL, cfg.Store.SupabaseKey, cfg.Toggl.Timeout, log)
		return c, nil, err
	case config.StorePostgres, config.StoreMySQL:
		driver := sqlstore.DriverMySQL
		if cfg.Store.Kind == config.StorePostgres {
			driver = sqlstore.DriverPostgres
		}
		// Run migrations before opening the store for use
		if cfg.Store.Migrate {
			if err := migrate.Run(ctx, driver, cfg.Store.DSN, log); err != nil {
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		s, err := sqlstore.Open(ctx, driver, cfg.Store.DSN, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown user store %q", cfg.Store.Kind)
	}
}

// Close releases the SQL pool, if any.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
