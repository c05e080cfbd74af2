package protect

import (
	"context"
	"encoding/json"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/paths"
	"github.com/thoreinstein/mcpm/pkg/fileutil"
)

// lockTimeout is the maximum time Update waits for the state file lock.
const lockTimeout = 1 * time.Second

// ErrLockTimeout is returned when the state file lock cannot be acquired
// within lockTimeout.
var ErrLockTimeout = errors.New("timed out waiting for protection state lock")

// State is the persisted protection state. Both lists hold Key values.
type State struct {
	LockedServers   []string `json:"lockedServers"`
	UnlockedServers []string `json:"unlockedServers"`
}

// IsLocked reports whether key carries a user lock.
func (s *State) IsLocked(key string) bool {
	return slices.Contains(s.LockedServers, key)
}

// IsUnlocked reports whether key carries an unlock record.
func (s *State) IsUnlocked(key string) bool {
	return slices.Contains(s.UnlockedServers, key)
}

// Lock adds a user lock for key.
func (s *State) Lock(key string) {
	s.LockedServers = insert(s.LockedServers, key)
}

// Unlock adds an unlock record for key.
func (s *State) Unlock(key string) {
	s.UnlockedServers = insert(s.UnlockedServers, key)
}

// ClearLock removes the user lock for key.
func (s *State) ClearLock(key string) {
	s.LockedServers = remove(s.LockedServers, key)
}

// ClearUnlock removes the unlock record for key.
func (s *State) ClearUnlock(key string) {
	s.UnlockedServers = remove(s.UnlockedServers, key)
}

func (s *State) clone() *State {
	return &State{
		LockedServers:   slices.Clone(s.LockedServers),
		UnlockedServers: slices.Clone(s.UnlockedServers),
	}
}

// normalize sorts and dedupes both lists and replaces nil with empty.
func (s *State) normalize() {
	s.LockedServers = normalizeList(s.LockedServers)
	s.UnlockedServers = normalizeList(s.UnlockedServers)
}

func normalizeList(list []string) []string {
	if list == nil {
		return []string{}
	}
	slices.Sort(list)
	return slices.Compact(list)
}

func insert(list []string, key string) []string {
	i, found := slices.BinarySearch(list, key)
	if found {
		return list
	}
	return slices.Insert(list, i, key)
}

func remove(list []string, key string) []string {
	return slices.DeleteFunc(list, func(k string) bool { return k == key })
}

// Store persists protection state.
type Store interface {
	// Load returns the current state. A store with nothing saved returns
	// an empty state.
	Load() (*State, error)

	// Save replaces the stored state.
	Save(state *State) error

	// Update loads the state, applies fn and saves the result as one
	// serialized step.
	Update(fn func(*State)) error
}

// FileStore keeps the state in a JSON file. Update is serialized across
// processes by a lock on <path>.lock.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the state file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the state file. A missing file is an empty state.
func (s *FileStore) Load() (*State, error) {
	data, exists, err := fileutil.ReadIfExists(s.path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", s.path)
	}
	state := &State{}
	if exists && len(data) > 0 {
		if err := json.Unmarshal(data, state); err != nil {
			return nil, errors.NewParseError(s.path, err)
		}
	}
	state.normalize()
	return state, nil
}

// Save writes the state file atomically.
func (s *FileStore) Save(state *State) error {
	if err := paths.EnsureDir(filepath.Dir(s.path), 0); err != nil {
		return errors.Wrap(err, "creating state directory")
	}
	out := state.clone()
	out.normalize()
	if err := fileutil.AtomicWriteJSON(s.path, out, 0o600); err != nil {
		return errors.Wrapf(err, "writing %s", s.path)
	}
	return nil
}

// Update applies fn under the file lock.
func (s *FileStore) Update(fn func(*State)) error {
	if err := paths.EnsureDir(filepath.Dir(s.path), 0); err != nil {
		return errors.Wrap(err, "creating state directory")
	}

	// A separate lock file survives the atomic rename of the state file.
	lock := flock.New(s.path + ".lock")
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return errors.Wrapf(ErrLockTimeout, "%s", s.path)
		}
		return errors.Wrapf(err, "locking %s", s.path)
	}
	if !locked {
		return errors.Wrapf(ErrLockTimeout, "%s", s.path)
	}
	defer func() { _ = lock.Unlock() }()

	state, err := s.Load()
	if err != nil {
		return err
	}
	fn(state)
	return s.Save(state)
}

// MemoryStore keeps the state in memory.
type MemoryStore struct {
	mu    sync.Mutex
	state *State
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &State{}}
}

// Load returns a copy of the state.
func (s *MemoryStore) Load() (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state.clone()
	out.normalize()
	return out, nil
}

// Save replaces the state with a copy of state.
func (s *MemoryStore) Save(state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.clone()
	s.state.normalize()
	return nil
}

// Update applies fn while holding the store's mutex.
func (s *MemoryStore) Update(fn func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.state.clone()
	state.normalize()
	fn(state)
	s.state = state
	return nil
}
