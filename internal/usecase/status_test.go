package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/domain"
)

func TestStatusCheck_KeepsInputOrderAndIsolatesFailures(t *testing.T) {
	toggl := &fakeToggl{
		current: map[string]*domain.TimeEntry{"t2": runningEntry("work", 0)},
		failing: map[string]bool{"t3": true},
	}
	uc := &StatusUseCase{Log: discardLogger(), Toggl: toggl, Concurrency: 2}
	users := []domain.User{
		{Name: "u1", TogglToken: "t1"},
		{Name: "u2", TogglToken: "t2"},
		{Name: "u3", TogglToken: "t3"},
		{Name: "u4"},
		{Name: "u5", TogglToken: "t5"},
	}
	got := uc.Check(context.Background(), users)
	want := []TrackingState{StateIdle, StateTracking, StateUnknown, StateUnknown, StateIdle}
	if len(got) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].User.Name != users[i].Name {
			t.Fatalf("result %d is %s, want %s", i, got[i].User.Name, users[i].Name)
		}
		if got[i].State != want[i] {
			t.Fatalf("result %d state %d, want %d", i, got[i].State, want[i])
		}
	}
	if !errors.Is(got[3].Err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", got[3].Err)
	}
	if !errors.Is(got[2].Err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream error, got %v", got[2].Err)
	}
}

func TestStatusCheck_UnresolvedProject(t *testing.T) {
	toggl := &fakeToggl{current: map[string]*domain.TimeEntry{"t1": runningEntry("work", 99)}}
	uc := &StatusUseCase{Log: discardLogger(), Toggl: toggl}
	got := uc.Check(context.Background(), []domain.User{{Name: "u1", TogglToken: "t1"}})
	if got[0].Project != domain.UnknownProject {
		t.Fatalf("expected unknown project, got %q", got[0].Project)
	}
	if line := FormatStatus(got[0]); line != "🟢 U1 is currently tracking: [Unknown Project] work" {
		t.Fatalf("unexpected line %q", line)
	}
}

func TestFormatStatus_Variants(t *testing.T) {
	cases := []struct {
		in   UserStatus
		want string
	}{
		{UserStatus{User: domain.User{Name: "dev_one"}, State: StateIdle}, `🔴 Dev\_one is currently NOT tracking time.`},
		{UserStatus{User: domain.User{Name: "x"}, State: StateTracking, Entry: &domain.TimeEntry{}}, "🟢 X is currently tracking: (No Description)"},
		{UserStatus{User: domain.User{Name: "y"}, Err: ErrMissingToken}, "⚪ Y: status unknown (no Toggl token)."},
		{UserStatus{User: domain.User{Name: "z"}, Err: domain.ErrUpstreamUnavailable}, "⚪ Z: status unknown (could not reach Toggl)."},
	}
	for _, c := range cases {
		if got := FormatStatus(c.in); got != c.want {
			t.Errorf("FormatStatus = %q, want %q", got, c.want)
		}
	}
}
