package session

import (
	"errors"
	"testing"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	t.Parallel()

	st := NewMemoryStore()

	if _, err := st.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Load on empty store: err=%v want ErrNoSession", err)
	}

	sess := Session{
		Token: "tok-123",
		User:  User{ID: 7, Username: "maria", Role: RoleSupervisor},
	}
	if err := st.Save(sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := st.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != sess {
		t.Fatalf("Load()=%+v want %+v", got, sess)
	}

	if err := st.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := st.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Load after Clear: err=%v want ErrNoSession", err)
	}
}

func TestMemoryStore_MissingKeyIsNoSession(t *testing.T) {
	t.Parallel()

	// Token present, user record absent: the two keys are independent and
	// either one missing means no session.
	st := NewMemoryStore()
	st.put(KeyToken, "tok-orphan")

	if _, err := st.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Load with orphan token: err=%v want ErrNoSession", err)
	}
}

func TestMemoryStore_CorruptUserTreatedAsAbsence(t *testing.T) {
	t.Parallel()

	st := NewMemoryStore()
	st.put(KeyToken, "tok-123")
	st.put(KeyUser, `{"id": "not-a-number"`)

	_, err := st.Load()
	if !errors.Is(err, ErrStorageCorrupt) {
		t.Fatalf("Load corrupt: err=%v want ErrStorageCorrupt", err)
	}
	// Corrupt still matches the absence sentinel.
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("ErrStorageCorrupt must match ErrNoSession")
	}

	// The corrupt record must have been cleared.
	st.mu.Lock()
	_, hasToken := st.values[KeyToken]
	_, hasUser := st.values[KeyUser]
	st.mu.Unlock()
	if hasToken || hasUser {
		t.Fatalf("corrupt load must clear both keys (token=%v user=%v)", hasToken, hasUser)
	}
}

func TestMemoryStore_UnknownRoleNormalizes(t *testing.T) {
	t.Parallel()

	st := NewMemoryStore()
	st.put(KeyToken, "tok-123")
	st.put(KeyUser, `{"id": 3, "username": "pepe", "role": "superintendent"}`)

	got, err := st.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.User.Role != RoleUser {
		t.Fatalf("role=%q want %q", got.User.Role, RoleUser)
	}
}

func TestNormalizeRole(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Role
	}{
		{in: "admin", want: RoleAdmin},
		{in: "ADMIN", want: RoleAdmin},
		{in: " supervisor ", want: RoleSupervisor},
		{in: "user", want: RoleUser},
		{in: "administrador", want: RoleUser},
		{in: "", want: RoleUser},
	}

	for _, tc := range cases {
		if got := NormalizeRole(tc.in); got != tc.want {
			t.Fatalf("NormalizeRole(%q)=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestRoleAdminAccess(t *testing.T) {
	t.Parallel()

	if !RoleAdmin.AdminAccess() || !RoleSupervisor.AdminAccess() {
		t.Fatalf("admin and supervisor must have admin access")
	}
	if RoleUser.AdminAccess() {
		t.Fatalf("plain user must not have admin access")
	}
}
