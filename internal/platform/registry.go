package platform

import (
	"sync"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

// Sentinel errors for registry operations.
var (
	// ErrAdapterAlreadyRegistered is returned when attempting to register
	// an adapter for an editor that already has one.
	ErrAdapterAlreadyRegistered = errors.New("adapter already registered")

	// ErrInvalidEditor is returned when attempting to register an adapter
	// whose editor is not a supported editor.
	ErrInvalidEditor = errors.New("invalid editor")

	// ErrNilAdapter is returned when attempting to register a nil adapter.
	ErrNilAdapter = errors.New("adapter is nil")
)

// Registry manages adapter registration and lookup.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	adapters map[mcp.Editor]Adapter
}

// NewRegistry creates a new empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[mcp.Editor]Adapter),
	}
}

// Register adds an adapter to the registry.
// Returns an error if:
//   - The adapter is nil
//   - The adapter's editor is not a supported editor
//   - An adapter for the same editor is already registered
func (r *Registry) Register(a Adapter) error {
	if a == nil {
		return ErrNilAdapter
	}
	if _, ok := mcp.ParseEditor(string(a.Editor())); !ok {
		return ErrInvalidEditor
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[a.Editor()]; exists {
		return ErrAdapterAlreadyRegistered
	}

	r.adapters[a.Editor()] = a
	return nil
}

// Get returns the adapter for editor, or nil if none is registered.
func (r *Registry) Get(editor mcp.Editor) Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.adapters[editor]
}

// All returns all registered adapters in the deterministic order defined
// by mcp.AllEditors(). Returns nil when the registry is empty.
func (r *Registry) All() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []Adapter
	for _, editor := range mcp.AllEditors() {
		if a, ok := r.adapters[editor]; ok {
			results = append(results, a)
		}
	}

	return results
}

// Editors returns the registered editor identifiers in deterministic order.
func (r *Registry) Editors() []mcp.Editor {
	all := r.All()
	if all == nil {
		return nil
	}
	editors := make([]mcp.Editor, 0, len(all))
	for _, a := range all {
		editors = append(editors, a.Editor())
	}
	return editors
}
