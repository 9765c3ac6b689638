package toggl

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
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCurrentTimeEntry_Running(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v9/me/time_entries/current" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "tok" || pass != "api_token" {
			t.Errorf("unexpected basic auth %q %q %v", user, pass, ok)
		}
		_, _ = io.WriteString(w, `{"id":42,"description":"Writing","project_id":7,"workspace_id":9,"start":"2025-08-01T09:00:00Z","stop":null,"duration":-1754038800}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, testLogger())
	e, err := c.CurrentTimeEntry(context.Background(), "tok")
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if e == nil {
		t.Fatal("expected running entry")
	}
	if e.Description != "Writing" || !e.Running() {
		t.Fatalf("unexpected entry %+v", e)
	}
	if e.ProjectID == nil || *e.ProjectID != 7 || e.WorkspaceID == nil || *e.WorkspaceID != 9 {
		t.Fatalf("unexpected project/workspace %+v", e)
	}
}

func TestCurrentTimeEntry_IdleIsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "null")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, testLogger())
	e, err := c.CurrentTimeEntry(context.Background(), "tok")
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if e != nil {
		t.Fatalf("expected nil entry, got %+v", e)
	}
}

func TestListTimeEntries_SendsRangeAndMaps(t *testing.T) {
	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("start_date"); got != from.Format(time.RFC3339) {
			t.Errorf("start_date = %s", got)
		}
		if got := r.URL.Query().Get("end_date"); got != to.Format(time.RFC3339) {
			t.Errorf("end_date = %s", got)
		}
		_, _ = io.WriteString(w, `[
			{"id":1,"description":"A","start":"2025-08-01T09:00:00Z","stop":"2025-08-01T10:00:00Z","duration":3600},
			{"id":2,"description":"B","project_id":3,"workspace_id":4,"tags":["x"],"start":"2025-08-01T11:00:00Z","stop":null,"duration":-1754046000},
			{"id":3,"description":"C","start":"2025-08-01T12:00:00Z","duration":900},
			{"id":4,"description":"D","start":"2025-08-01T13:00:00Z","stop":"2025-08-01T13:05:00Z","duration":-1754053200}
		]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, testLogger())
	entries, err := c.ListTimeEntries(context.Background(), "tok", from, to)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	if entries[0].Stop == nil || entries[0].Stop.Sub(entries[0].Start) != time.Hour {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if !entries[1].Running() || entries[1].ProjectID == nil || *entries[1].ProjectID != 3 {
		t.Fatalf("unexpected second entry %+v", entries[1])
	}
	// stop missing on a finished entry: derived from duration
	if entries[2].Running() || !entries[2].Stop.Equal(time.Date(2025, 8, 1, 12, 15, 0, 0, time.UTC)) {
		t.Fatalf("unexpected third entry %+v", entries[2])
	}
	// negative duration wins over a stale stop
	if !entries[3].Running() {
		t.Fatalf("expected fourth entry running, got %+v", entries[3])
	}
}

func TestGetProject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v9/workspaces/4/projects/3" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"id":3,"workspace_id":4,"name":"Thesis"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, testLogger())
	p, err := c.GetProject(context.Background(), "tok", 4, 3)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if p.Name != "Thesis" {
		t.Fatalf("expected Thesis, got %q", p.Name)
	}
}

func TestErrorsAreUpstreamUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, testLogger())
	if _, err := c.CurrentTimeEntry(context.Background(), "tok"); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}

	srv.Close()
	if _, err := c.ListTimeEntries(context.Background(), "tok", time.Now(), time.Now()); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable for closed server, got %v", err)
	}
}

func TestMissingToken(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second, testLogger())
	if _, err := c.CurrentTimeEntry(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty token")
	}
}
