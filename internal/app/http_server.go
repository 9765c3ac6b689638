package app

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/usecase"
)

const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// maxUpdateBytes bounds the webhook body; Telegram updates are far smaller.
const maxUpdateBytes = 1 << 20

// Handler returns the webhook handler: POST / receives Telegram updates,
// GET / and /healthz report liveness.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte("Telegram Bot Webhook is active!"))
		case http.MethodPost:
			a.webhook(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	return loggingMiddleware(a.log, mux)
}

// HTTPServer returns a configured http.Server serving Handler.
// Call ListenAndServe on the returned server in a goroutine and Shutdown it on exit.
func (a *App) HTTPServer(addr string) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.log.Info("webhook server configured", slog.String("addr", addr))
	return srv
}

func (a *App) webhook(w http.ResponseWriter, r *http.Request) {
	log := loggerFrom(r, a.log)
	if a.webhookSecret != "" {
		got := r.Header.Get(secretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(a.webhookSecret)) != 1 {
			log.Warn("webhook secret mismatch")
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
	}

	var upd tgbotapi.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes)).Decode(&upd); err != nil {
		log.Warn("invalid update payload", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": "error", "error": "invalid update"})
		return
	}

	if in, ok := usecase.FromMessage(upd.Message); ok {
		log.Info("received message", slog.Int("update_id", upd.UpdateID), slog.Int64("chat_id", in.ChatID))
		if err := a.router.Handle(r.Context(), in); err != nil {
			// The update was consumed; a redelivery would not help.
			log.Error("reply failed", slog.Int("update_id", upd.UpdateID), slog.String("error", err.Error()))
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type ctxKey struct{}

// loggingMiddleware tags each request with an id and logs it once served.
func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()
		reqLog := log.With(slog.String("request_id", reqID))
		r = r.WithContext(contextWithLogger(r.Context(), reqLog))
		w.Header().Set("X-Request-Id", reqID)
		next.ServeHTTP(w, r)
		reqLog.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Duration("dur", time.Since(start)),
		)
	})
}
