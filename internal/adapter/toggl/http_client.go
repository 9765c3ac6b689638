package toggl

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/domain"
)

const DefaultBaseURL = "https://api.track.toggl.com"

// Client implements ports.TogglClient using the Toggl Track API v9.
// Every call authenticates with the token of the user being looked up.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// CurrentTimeEntry returns the running entry, or nil when nothing is tracked.
// Toggl v9: GET /api/v9/me/time_entries/current answers `null` when idle.
func (c *Client) CurrentTimeEntry(ctx context.Context, token string) (*domain.TimeEntry, error) {
	req, err := c.newRequest(ctx, token, "/api/v9/me/time_entries/current", nil)
	if err != nil {
		return nil, err
	}
	var raw *rawTimeEntry
	if err := c.do(req, &raw); err != nil {
		return nil, err
	}
	if raw == nil || raw.ID == 0 {
		return nil, nil
	}
	e := raw.toDomain()
	return &e, nil
}

// ListTimeEntries fetches entries in [from, to].
// Toggl v9: GET /api/v9/me/time_entries?start_date=...&end_date=...
func (c *Client) ListTimeEntries(ctx context.Context, token string, from, to time.Time) ([]domain.TimeEntry, error) {
	q := url.Values{}
	q.Set("start_date", from.Format(time.RFC3339))
	q.Set("end_date", to.Format(time.RFC3339))
	req, err := c.newRequest(ctx, token, "/api/v9/me/time_entries", q)
	if err != nil {
		return nil, err
	}
	var raw []rawTimeEntry
	if err := c.do(req, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.TimeEntry, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// GetProject fetches a single project to resolve its name.
func (c *Client) GetProject(ctx context.Context, token string, workspaceID, projectID int64) (domain.Project, error) {
	path := fmt.Sprintf("/api/v9/workspaces/%d/projects/%d", workspaceID, projectID)
	req, err := c.newRequest(ctx, token, path, nil)
	if err != nil {
		return domain.Project{}, err
	}
	var raw rawProject
	if err := c.do(req, &raw); err != nil {
		return domain.Project{}, err
	}
	return domain.Project{ID: raw.ID, WorkspaceID: raw.WorkspaceID, Name: raw.Name}, nil
}

func (c *Client) newRequest(ctx context.Context, token, path string, q url.Values) (*http.Request, error) {
	if token == "" {
		return nil, errors.New("toggl: missing api token")
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	u.Path = path
	if q != nil {
		u.RawQuery = q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	// Basic auth: token:api_token
	auth := base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%s", token, "api_token")))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("toggl request failed", slog.String("path", req.URL.Path), slog.String("error", err.Error()))
		return fmt.Errorf("%w: toggl: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Warn("toggl unexpected status", slog.String("path", req.URL.Path), slog.Int("status", resp.StatusCode))
		return fmt.Errorf("%w: toggl: unexpected status %d: %s", domain.ErrUpstreamUnavailable, resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: toggl: decode: %v", domain.ErrUpstreamUnavailable, err)
	}
	return nil
}

// rawTimeEntry mirrors the JSON from Toggl v9.
type rawTimeEntry struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	ProjectID   *int64     `json:"project_id"`
	WorkspaceID *int64     `json:"workspace_id"`
	Start       time.Time  `json:"start"`
	Stop        *time.Time `json:"stop"`
	Duration    int64      `json:"duration"`
}

func (r rawTimeEntry) toDomain() domain.TimeEntry {
	// Negative duration marks a running entry; a finished one may omit stop.
	var stopPtr *time.Time
	switch {
	case r.Stop != nil && r.Duration >= 0:
		stop := *r.Stop
		stopPtr = &stop
	case r.Stop == nil && r.Duration >= 0:
		stop := r.Start.Add(time.Duration(r.Duration) * time.Second)
		stopPtr = &stop
	}
	var projectPtr *int64
	if r.ProjectID != nil {
		p := *r.ProjectID
		projectPtr = &p
	}
	var wsPtr *int64
	if r.WorkspaceID != nil {
		w := *r.WorkspaceID
		wsPtr = &w
	}
	return domain.TimeEntry{
		ID:          r.ID,
		Description: r.Description,
		ProjectID:   projectPtr,
		WorkspaceID: wsPtr,
		Start:       r.Start,
		Stop:        stopPtr,
	}
}

type rawProject struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"workspace_id"`
	Name        string `json:"name"`
}
