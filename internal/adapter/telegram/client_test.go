package telegram

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/domain"
	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/ports"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient("TOKEN", srv.URL+"/bot%s/%s", time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestSend_PostsFormAndReturnsMessageID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.FormValue("chat_id") != "42" || r.FormValue("text") != "hello" {
			t.Errorf("unexpected form %v", r.Form)
		}
		if r.FormValue("parse_mode") != "Markdown" || r.FormValue("reply_to_message_id") != "7" {
			t.Errorf("unexpected options %v", r.Form)
		}
		_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":77,"date":0,"chat":{"id":42,"type":"private"},"text":"hello"}}`)
	})
	id, err := c.Send(context.Background(), ports.OutgoingMessage{ChatID: 42, Text: "hello", ParseMode: ports.ParseModeMarkdown, ReplyTo: 7})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if id != 77 {
		t.Fatalf("expected message id 77, got %d", id)
	}
}

func TestSend_APIErrorIsUpstreamUnavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`)
	})
	if _, err := c.Send(context.Background(), ports.OutgoingMessage{ChatID: 1, Text: "x"}); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestEdit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/editMessageText" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = r.ParseForm()
		if r.FormValue("message_id") != "5" || r.FormValue("text") != "done" || r.FormValue("parse_mode") != "HTML" {
			t.Errorf("unexpected form %v", r.Form)
		}
		_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":5,"date":0,"chat":{"id":42,"type":"private"},"text":"done"}}`)
	})
	if err := c.Edit(context.Background(), 42, 5, "done", ports.ParseModeHTML); err != nil {
		t.Fatalf("edit: %v", err)
	}
}

func TestEdit_NotModifiedIsNotAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"ok":false,"error_code":400,"description":"Bad Request: message is not modified"}`)
	})
	if err := c.Edit(context.Background(), 42, 5, "same", ports.ParseModeMarkdown); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestSend_CanceledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Send(ctx, ports.OutgoingMessage{ChatID: 1, Text: "x"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEdit_DeadlineAbortsRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := c.Edit(ctx, 1, 2, "x", "")
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("request outlived its context: %v", elapsed)
	}
}
