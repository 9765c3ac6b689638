package app

import (
	"context"
	"log/slog"
	"net/http"
)

func contextWithLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func loggerFrom(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if l, ok := r.Context().Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return fallback
}
