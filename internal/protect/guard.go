package protect

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

// DefaultProtected lists the server names protected in every editor until
// explicitly unlocked.
var DefaultProtected = []string{"filesystem", "github", "memory"}

// Status is the protection state of one server.
type Status string

// Protection states.
const (
	StatusUnprotected       Status = "unprotected"
	StatusProtectedDefault  Status = "protected-default"
	StatusProtectedUser     Status = "protected-user"
	StatusProtectedUnlocked Status = "protected-unlocked"
)

// IsLocked reports whether the status blocks removal.
func (s Status) IsLocked() bool {
	return s == StatusProtectedDefault || s == StatusProtectedUser
}

// Sentinel errors for unlock operations.
var (
	// ErrNotDefaultProtected is returned by UnlockServer for a name that
	// is not default-protected.
	ErrNotDefaultProtected = errors.New("server is not protected by default")

	// ErrNotUserLocked is returned by UnlockUserLockedServer for a server
	// without a user lock.
	ErrNotUserLocked = errors.New("server is not locked")
)

// Key returns the state key of a server, "editor:name".
func Key(editor mcp.Editor, name string) string {
	return string(editor) + ":" + name
}

// Guard decides which servers are locked against removal and rename.
type Guard struct {
	store    Store
	defaults []string
	logger   *slog.Logger
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithLogger sets the guard's logger.
func WithLogger(l *slog.Logger) GuardOption {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGuard creates a guard over store. A nil defaults uses
// DefaultProtected; an empty, non-nil list protects nothing by default.
func NewGuard(store Store, defaults []string, opts ...GuardOption) *Guard {
	if defaults == nil {
		defaults = DefaultProtected
	}
	g := &Guard{
		store:    store,
		defaults: slices.Clone(defaults),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Defaults returns the default-protected names.
func (g *Guard) Defaults() []string {
	return slices.Clone(g.defaults)
}

// IsDefault reports whether name is default-protected.
func (g *Guard) IsDefault(name string) bool {
	return slices.Contains(g.defaults, name)
}

func (g *Guard) status(st *State, editor mcp.Editor, name string) Status {
	key := Key(editor, name)
	userLocked := st.IsLocked(key)
	isDefault := g.IsDefault(name)
	switch {
	case (isDefault || userLocked) && st.IsUnlocked(key):
		return StatusProtectedUnlocked
	case userLocked:
		return StatusProtectedUser
	case isDefault:
		return StatusProtectedDefault
	default:
		return StatusUnprotected
	}
}

// State returns the protection status of a server.
func (g *Guard) State(editor mcp.Editor, name string) (Status, error) {
	st, err := g.store.Load()
	if err != nil {
		return "", err
	}
	return g.status(st, editor, name), nil
}

// IsLocked reports whether a server is protected and not unlocked.
func (g *Guard) IsLocked(editor mcp.Editor, name string) (bool, error) {
	s, err := g.State(editor, name)
	if err != nil {
		return false, err
	}
	return s.IsLocked(), nil
}

// IsServerUnlocked reports whether a server may be removed: it is either
// unprotected or carries an unlock record.
func (g *Guard) IsServerUnlocked(editor mcp.Editor, name string) (bool, error) {
	locked, err := g.IsLocked(editor, name)
	return !locked, err
}

// LockServer protects a server. For a default-protected name this drops
// the unlock record; for any other name it adds a user lock.
func (g *Guard) LockServer(editor mcp.Editor, name string) error {
	key := Key(editor, name)
	isDefault := g.IsDefault(name)
	err := g.store.Update(func(st *State) {
		st.ClearUnlock(key)
		if !isDefault {
			st.Lock(key)
		}
	})
	if err != nil {
		return errors.Wrapf(err, "locking %s", key)
	}
	g.logger.Debug("server locked", "editor", editor, "server", name, "default", isDefault)
	return nil
}

// UnlockServer records an unlock for a default-protected server.
func (g *Guard) UnlockServer(editor mcp.Editor, name string) error {
	if !g.IsDefault(name) {
		return errors.Wrapf(ErrNotDefaultProtected, "%q", name)
	}
	key := Key(editor, name)
	if err := g.store.Update(func(st *State) { st.Unlock(key) }); err != nil {
		return errors.Wrapf(err, "unlocking %s", key)
	}
	g.logger.Debug("default-protected server unlocked", "editor", editor, "server", name)
	return nil
}

// UnlockUserLockedServer removes a user lock.
func (g *Guard) UnlockUserLockedServer(editor mcp.Editor, name string) error {
	key := Key(editor, name)
	found := false
	err := g.store.Update(func(st *State) {
		if st.IsLocked(key) {
			found = true
			st.ClearLock(key)
		}
	})
	if err != nil {
		return errors.Wrapf(err, "unlocking %s", key)
	}
	if !found {
		return errors.Wrapf(ErrNotUserLocked, "%q", name)
	}
	g.logger.Debug("user lock removed", "editor", editor, "server", name)
	return nil
}

// Unlock removes whichever protection applies to a server: the user lock
// when there is one, otherwise the default protection.
func (g *Guard) Unlock(editor mcp.Editor, name string) error {
	s, err := g.State(editor, name)
	if err != nil {
		return err
	}
	if s == StatusProtectedUser {
		return g.UnlockUserLockedServer(editor, name)
	}
	return g.UnlockServer(editor, name)
}

// LockedServers returns the names in current that are locked, sorted.
func (g *Guard) LockedServers(editor mcp.Editor, current []string) ([]string, error) {
	st, err := g.store.Load()
	if err != nil {
		return nil, err
	}
	var locked []string
	for _, name := range current {
		if g.status(st, editor, name).IsLocked() {
			locked = append(locked, name)
		}
	}
	slices.Sort(locked)
	return slices.Compact(locked), nil
}

// UserLockedServers returns the names carrying a user lock for editor,
// sorted. Unlocked names are left out.
func (g *Guard) UserLockedServers(editor mcp.Editor) ([]string, error) {
	st, err := g.store.Load()
	if err != nil {
		return nil, err
	}
	prefix := Key(editor, "")
	var names []string
	for _, key := range st.LockedServers {
		name, ok := strings.CutPrefix(key, prefix)
		if !ok || name == "" || st.IsUnlocked(key) {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// ValidateLockedServersPresent returns a *errors.ProtectionViolation when
// a locked server in current is missing from proposed.
func (g *Guard) ValidateLockedServersPresent(proposed []string, editor mcp.Editor, current []string) error {
	locked, err := g.LockedServers(editor, current)
	if err != nil {
		return err
	}
	var missing []string
	for _, name := range locked {
		if !slices.Contains(proposed, name) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &errors.ProtectionViolation{Editor: string(editor), Names: missing}
}
