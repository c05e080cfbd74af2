package protect

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

func TestKey(t *testing.T) {
	if got := Key(mcp.EditorVSCode, "github"); got != "vscode:github" {
		t.Errorf("Key() = %q, want %q", got, "vscode:github")
	}
}

func TestGuard_State(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*State)
		server string
		want   Status
	}{
		{"plain server", nil, "context7", StatusUnprotected},
		{"default name", nil, "github", StatusProtectedDefault},
		{"user locked", func(s *State) { s.Lock("cursor:context7") }, "context7", StatusProtectedUser},
		{"default unlocked", func(s *State) { s.Unlock("cursor:github") }, "github", StatusProtectedUnlocked},
		{"other editor lock ignored", func(s *State) { s.Lock("vscode:context7") }, "context7", StatusUnprotected},
		{"stray unlock on plain server", func(s *State) { s.Unlock("cursor:context7") }, "context7", StatusUnprotected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			if tt.setup != nil {
				if err := store.Update(tt.setup); err != nil {
					t.Fatal(err)
				}
			}
			g := NewGuard(store, nil)

			got, err := g.State(mcp.EditorCursor, tt.server)
			if err != nil {
				t.Fatalf("State() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("State() = %q, want %q", got, tt.want)
			}

			locked, err := g.IsLocked(mcp.EditorCursor, tt.server)
			if err != nil {
				t.Fatal(err)
			}
			if locked != tt.want.IsLocked() {
				t.Errorf("IsLocked() = %v, want %v", locked, tt.want.IsLocked())
			}
			unlocked, err := g.IsServerUnlocked(mcp.EditorCursor, tt.server)
			if err != nil {
				t.Fatal(err)
			}
			if unlocked == locked {
				t.Errorf("IsServerUnlocked() = %v with IsLocked() = %v", unlocked, locked)
			}
		})
	}
}

func TestGuard_LockUnlockCycle(t *testing.T) {
	g := NewGuard(NewMemoryStore(), nil)
	e := mcp.EditorVSCode

	if err := g.LockServer(e, "context7"); err != nil {
		t.Fatalf("LockServer() error = %v", err)
	}
	if s, _ := g.State(e, "context7"); s != StatusProtectedUser {
		t.Fatalf("after lock State() = %q", s)
	}

	if err := g.UnlockServer(e, "context7"); !errors.Is(err, ErrNotDefaultProtected) {
		t.Errorf("UnlockServer(user-locked) error = %v, want ErrNotDefaultProtected", err)
	}
	if err := g.UnlockUserLockedServer(e, "context7"); err != nil {
		t.Fatalf("UnlockUserLockedServer() error = %v", err)
	}
	if s, _ := g.State(e, "context7"); s != StatusUnprotected {
		t.Errorf("after unlock State() = %q", s)
	}
	if err := g.UnlockUserLockedServer(e, "context7"); !errors.Is(err, ErrNotUserLocked) {
		t.Errorf("second UnlockUserLockedServer() error = %v, want ErrNotUserLocked", err)
	}
}

func TestGuard_DefaultProtection(t *testing.T) {
	g := NewGuard(NewMemoryStore(), nil)
	e := mcp.EditorWindsurf

	if err := g.UnlockServer(e, "memory"); err != nil {
		t.Fatalf("UnlockServer() error = %v", err)
	}
	if s, _ := g.State(e, "memory"); s != StatusProtectedUnlocked {
		t.Errorf("State() = %q, want %q", s, StatusProtectedUnlocked)
	}
	if s, _ := g.State(mcp.EditorCursor, "memory"); s != StatusProtectedDefault {
		t.Errorf("unlock leaked to another editor: State() = %q", s)
	}

	// Locking a default name restores the default rather than adding a
	// user lock.
	if err := g.LockServer(e, "memory"); err != nil {
		t.Fatal(err)
	}
	if s, _ := g.State(e, "memory"); s != StatusProtectedDefault {
		t.Errorf("after relock State() = %q, want %q", s, StatusProtectedDefault)
	}
	if err := g.UnlockUserLockedServer(e, "memory"); !errors.Is(err, ErrNotUserLocked) {
		t.Errorf("UnlockUserLockedServer(default) error = %v, want ErrNotUserLocked", err)
	}
}

func TestGuard_Unlock(t *testing.T) {
	g := NewGuard(NewMemoryStore(), nil)
	e := mcp.EditorCursor

	if err := g.LockServer(e, "docs"); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"docs", "github"} {
		if err := g.Unlock(e, name); err != nil {
			t.Fatalf("Unlock(%s) error = %v", name, err)
		}
		if locked, _ := g.IsLocked(e, name); locked {
			t.Errorf("%s still locked", name)
		}
	}
	if err := g.Unlock(e, "plain"); !errors.Is(err, ErrNotDefaultProtected) {
		t.Errorf("Unlock(plain) error = %v, want ErrNotDefaultProtected", err)
	}
}

func TestGuard_CustomDefaults(t *testing.T) {
	g := NewGuard(NewMemoryStore(), []string{})
	if s, _ := g.State(mcp.EditorCursor, "github"); s != StatusUnprotected {
		t.Errorf("State() = %q with no defaults", s)
	}

	g = NewGuard(NewMemoryStore(), []string{"prod-db"})
	if !g.IsDefault("prod-db") || g.IsDefault("github") {
		t.Errorf("Defaults() = %v", g.Defaults())
	}
}

func TestGuard_ValidateLockedServersPresent(t *testing.T) {
	store := NewMemoryStore()
	g := NewGuard(store, nil)
	e := mcp.EditorVSCode
	if err := g.LockServer(e, "context7"); err != nil {
		t.Fatal(err)
	}
	current := []string{"context7", "github", "fetch", "memory"}

	if err := g.ValidateLockedServersPresent(current, e, current); err != nil {
		t.Errorf("unchanged set error = %v", err)
	}
	if err := g.ValidateLockedServersPresent([]string{"context7", "github", "memory"}, e, current); err != nil {
		t.Errorf("removing an unlocked server error = %v", err)
	}

	err := g.ValidateLockedServersPresent([]string{"fetch"}, e, current)
	var pv *errors.ProtectionViolation
	if !errors.As(err, &pv) {
		t.Fatalf("error = %v, want *ProtectionViolation", err)
	}
	if pv.Editor != "vscode" {
		t.Errorf("Editor = %q", pv.Editor)
	}
	if diff := cmp.Diff([]string{"context7", "github", "memory"}, pv.Names); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}

	// Locked names not on disk are never reported.
	if err := g.ValidateLockedServersPresent(nil, e, []string{"fetch"}); err != nil {
		t.Errorf("error = %v for a scope without locked servers", err)
	}

	if err := g.UnlockUserLockedServer(e, "context7"); err != nil {
		t.Fatal(err)
	}
	err = g.ValidateLockedServersPresent([]string{"github", "memory", "fetch"}, e, current)
	if err != nil {
		t.Errorf("after unlock error = %v", err)
	}
}

func TestGuard_LockedServers(t *testing.T) {
	g := NewGuard(NewMemoryStore(), nil)
	if err := g.LockServer(mcp.EditorCursor, "zeta"); err != nil {
		t.Fatal(err)
	}
	got, err := g.LockedServers(mcp.EditorCursor, []string{"zeta", "fetch", "github", "alpha"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"github", "zeta"}, got); diff != "" {
		t.Errorf("LockedServers() mismatch (-want +got):\n%s", diff)
	}
}

func TestGuard_UserLockedServers(t *testing.T) {
	store := NewMemoryStore()
	err := store.Update(func(st *State) {
		st.Lock("cursor:zeta")
		st.Lock("cursor:alpha")
		st.Lock("cursor:fetch")
		st.Unlock("cursor:fetch")
		st.Lock("vscode:other")
	})
	if err != nil {
		t.Fatal(err)
	}
	g := NewGuard(store, nil)

	got, err := g.UserLockedServers(mcp.EditorCursor)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"alpha", "zeta"}, got); diff != "" {
		t.Errorf("UserLockedServers() mismatch (-want +got):\n%s", diff)
	}
}
