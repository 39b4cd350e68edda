package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

type fakeValidator struct {
	err   error
	calls int
}

func (f *fakeValidator) Validate(_ context.Context, _ string) error {
	f.calls++
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBootstrap_NoStoredSession(t *testing.T) {
	t.Parallel()

	v := &fakeValidator{}
	b := NewBootstrapper(discardLogger(), NewMemoryStore(), v)

	if st := b.Current(); !st.Loading {
		t.Fatalf("initial state must be Loading, got %+v", st)
	}

	st := b.Bootstrap(context.Background())
	if st.Loading || st.IsAuthenticated || st.User != nil {
		t.Fatalf("unexpected state: %+v", st)
	}
	if v.calls != 0 {
		t.Fatalf("validator must not be called without a stored session")
	}
}

func TestBootstrap_ValidSession(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	sess := Session{Token: "tok-1", User: User{ID: 5, Username: "ana", Role: RoleAdmin}}
	if err := store.Save(sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	v := &fakeValidator{}
	b := NewBootstrapper(discardLogger(), store, v)

	st := b.Bootstrap(context.Background())
	if !st.IsAuthenticated || st.Loading {
		t.Fatalf("unexpected state: %+v", st)
	}
	if st.User == nil || st.User.ID != 5 || st.User.Role != RoleAdmin {
		t.Fatalf("unexpected user: %+v", st.User)
	}
	if v.calls != 1 {
		t.Fatalf("validator calls=%d want 1", v.calls)
	}
}

func TestBootstrap_ValidationFailureClearsStore(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	sess := Session{Token: "tok-expired", User: User{ID: 5, Username: "ana", Role: RoleUser}}
	if err := store.Save(sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	v := &fakeValidator{err: ErrValidationFailed}
	b := NewBootstrapper(discardLogger(), store, v)

	st := b.Bootstrap(context.Background())
	if st.IsAuthenticated || st.User != nil || st.Loading {
		t.Fatalf("unexpected state after failed validation: %+v", st)
	}

	// Both persisted keys must be gone.
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("store must be cleared after failed validation, err=%v", err)
	}
}

func TestBootstrap_CorruptStoreResolvesUnauthenticated(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	store.put(KeyToken, "tok-1")
	store.put(KeyUser, `{{{`)

	v := &fakeValidator{}
	b := NewBootstrapper(discardLogger(), store, v)

	st := b.Bootstrap(context.Background())
	if st.IsAuthenticated || st.Loading {
		t.Fatalf("unexpected state: %+v", st)
	}
	if v.calls != 0 {
		t.Fatalf("validator must not run on a corrupt record")
	}
}

func TestBootstrap_NilValidatorTrustsStore(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	if err := store.Save(Session{Token: "tok-1", User: User{ID: 1, Username: "a", Role: RoleUser}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	b := NewBootstrapper(discardLogger(), store, nil)
	st := b.Bootstrap(context.Background())
	if !st.IsAuthenticated {
		t.Fatalf("expected authenticated state, got %+v", st)
	}
}

func TestLoginThenLogoutIsSynchronous(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	b := NewBootstrapper(discardLogger(), store, nil)

	sess := Session{Token: "tok-1", User: User{ID: 9, Username: "leo", Role: RoleSupervisor}}
	if err := b.Login(sess); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if st := b.Current(); !st.IsAuthenticated || st.User == nil {
		t.Fatalf("state after login: %+v", st)
	}

	b.Logout()

	// No stale-authenticated window: immediately after Logout returns, both
	// the published state and the store observe the logged-out session.
	if st := b.Current(); st.IsAuthenticated || st.User != nil {
		t.Fatalf("state after logout: %+v", st)
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("store after logout: err=%v want ErrNoSession", err)
	}
}

func TestSubscribeSeesLatestState(t *testing.T) {
	t.Parallel()

	b := NewBootstrapper(discardLogger(), NewMemoryStore(), nil)

	ch, cancel := b.Subscribe()
	defer cancel()

	// Seeded with the current (Loading) state.
	st := <-ch
	if !st.Loading {
		t.Fatalf("seed state=%+v want Loading", st)
	}

	b.Bootstrap(context.Background())
	st = <-ch
	if st.Loading || st.IsAuthenticated {
		t.Fatalf("post-bootstrap state=%+v", st)
	}

	// A slow subscriber sees only the latest value, never a stale one.
	_ = b.Login(Session{Token: "t", User: User{ID: 1, Username: "x", Role: RoleUser}})
	b.Logout()
	st = <-ch
	if st.IsAuthenticated {
		t.Fatalf("latest state must be unauthenticated, got %+v", st)
	}
}

func TestAuthStateInvariant(t *testing.T) {
	t.Parallel()

	b := NewBootstrapper(discardLogger(), NewMemoryStore(), nil)
	_ = b.Login(Session{Token: "t", User: User{ID: 1, Username: "x", Role: RoleUser}})

	st := b.Current()
	if st.IsAuthenticated && st.User == nil {
		t.Fatalf("IsAuthenticated implies User != nil")
	}
}
