package consent

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/louisbranch/cypress-simulator/internal/platform/errors"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	manager, err := NewManager(NewMemoryStore())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return manager
}

func TestNewManagerRequiresStore(t *testing.T) {
	t.Parallel()

	if _, err := NewManager(nil); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestDefaultsToUnset(t *testing.T) {
	t.Parallel()

	state, err := newTestManager(t).Get(context.Background(), "client-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if state != Unset {
		t.Fatalf("state = %q, want unset", state)
	}
}

func TestAcceptAndDeclinePersist(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		action func(*Manager, context.Context, string) error
		want   State
	}{
		{name: "accept", action: (*Manager).Accept, want: Accepted},
		{name: "decline", action: (*Manager).Decline, want: Declined},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			manager := newTestManager(t)
			ctx := context.Background()
			if err := tc.action(manager, ctx, "client-1"); err != nil {
				t.Fatalf("%s: %v", tc.name, err)
			}
			got, err := manager.Get(ctx, "client-1")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got != tc.want {
				t.Fatalf("state = %q, want %q", got, tc.want)
			}
			if BannerVisible(got, true) {
				t.Fatal("banner must hide once decided")
			}
		})
	}
}

func TestRecordRejectsUnset(t *testing.T) {
	t.Parallel()

	err := newTestManager(t).Record(context.Background(), "client-1", Unset)
	if !errors.Is(err, apperrors.New(apperrors.CodeConsentInvalidState, "")) {
		t.Fatalf("err = %v, want invalid state", err)
	}
}

func TestSeed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		initial State
		raw     string
		want    State
	}{
		{name: "accepted cookie", raw: "accepted", want: Accepted},
		{name: "declined cookie", raw: " Declined ", want: Declined},
		{name: "unknown cookie", raw: "maybe", want: Unset},
		{name: "empty cookie", raw: "", want: Unset},
		{name: "recorded wins", initial: Declined, raw: "accepted", want: Declined},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			manager := newTestManager(t)
			ctx := context.Background()
			if tc.initial.Decided() {
				if err := manager.Record(ctx, "client-1", tc.initial); err != nil {
					t.Fatalf("record: %v", err)
				}
			}
			got, err := manager.Seed(ctx, "client-1", tc.raw)
			if err != nil {
				t.Fatalf("seed: %v", err)
			}
			if got != tc.want {
				t.Fatalf("seed = %q, want %q", got, tc.want)
			}
			stored, _ := manager.Get(ctx, "client-1")
			if stored != tc.want {
				t.Fatalf("stored = %q, want %q", stored, tc.want)
			}
		})
	}
}

func TestBannerVisible(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state         State
		authenticated bool
		want          bool
	}{
		{state: Unset, authenticated: false, want: false},
		{state: Unset, authenticated: true, want: true},
		{state: Accepted, authenticated: true, want: false},
		{state: Declined, authenticated: true, want: false},
	}
	for _, tc := range tests {
		if got := BannerVisible(tc.state, tc.authenticated); got != tc.want {
			t.Fatalf("BannerVisible(%q, %v) = %v, want %v", tc.state, tc.authenticated, got, tc.want)
		}
	}
}
