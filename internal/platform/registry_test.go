package platform

import (
	"sync"
	"testing"

	"github.com/thoreinstein/mcpm/internal/mcp"
	mcpvalidator "github.com/thoreinstein/mcpm/internal/mcp/validator"
	"github.com/thoreinstein/mcpm/internal/validator"
)

// mockAdapter is a test implementation of the Adapter interface.
type mockAdapter struct {
	editor    mcp.Editor
	caps      Capabilities
	paths     map[mcp.Scope]string
	available map[mcp.Scope]bool
}

func newMockAdapter(editor mcp.Editor) *mockAdapter {
	return &mockAdapter{
		editor: editor,
		caps: Capabilities{
			Transports: []mcp.Transport{mcp.TransportStdio},
			Scopes:     []mcp.Scope{mcp.ScopeGlobal},
		},
		paths:     map[mcp.Scope]string{},
		available: map[mcp.Scope]bool{mcp.ScopeGlobal: true},
	}
}

func (m *mockAdapter) Editor() mcp.Editor {
	return m.editor
}

func (m *mockAdapter) DisplayName() string {
	return string(m.editor)
}

func (m *mockAdapter) Capabilities() Capabilities {
	return m.caps
}

func (m *mockAdapter) ConfigPath(s mcp.Scope) string {
	return m.paths[s]
}

func (m *mockAdapter) SupportsScope(s mcp.Scope) bool {
	return m.caps.SupportsScope(s)
}

func (m *mockAdapter) ScopeAvailable(s mcp.Scope) bool {
	return m.available[s]
}

func (m *mockAdapter) DefaultServerConfig() *mcp.Server {
	return &mcp.Server{Endpoint: &mcp.StdioEndpoint{}}
}

func (m *mockAdapter) ReadConfig(mcp.Scope) ([]*mcp.ServerWithMetadata, error) {
	return nil, nil
}

func (m *mockAdapter) WriteConfig([]*mcp.ServerWithMetadata, mcp.Scope) error {
	return nil
}

func (m *mockAdapter) ParseConfigData([]byte, mcp.Scope) ([]*mcp.ServerWithMetadata, error) {
	return nil, nil
}

func (m *mockAdapter) SerializeConfigData([]*mcp.ServerWithMetadata, mcp.Scope) ([]byte, error) {
	return nil, nil
}

func (m *mockAdapter) WriteConfigData([]byte, mcp.Scope) error {
	return nil
}

func (m *mockAdapter) ValidateServerConfig(s *mcp.Server, opts ...mcpvalidator.Option) *validator.Result {
	return ValidateServer(m.caps, s, opts...)
}

func (m *mockAdapter) ValidateConfigStructure([]byte, mcp.Scope) *validator.Result {
	return &validator.Result{}
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if got := r.All(); got != nil {
		t.Errorf("NewRegistry().All() = %v, want nil", got)
	}
	if got := r.Editors(); got != nil {
		t.Errorf("NewRegistry().Editors() = %v, want nil", got)
	}
}

func TestRegistry_Register(t *testing.T) {
	tests := []struct {
		name    string
		adapter Adapter
		wantErr error
	}{
		{name: "cursor", adapter: newMockAdapter(mcp.EditorCursor)},
		{name: "windsurf", adapter: newMockAdapter(mcp.EditorWindsurf)},
		{name: "vscode", adapter: newMockAdapter(mcp.EditorVSCode)},
		{name: "unknown editor", adapter: newMockAdapter("zed"), wantErr: ErrInvalidEditor},
		{name: "empty editor", adapter: newMockAdapter(""), wantErr: ErrInvalidEditor},
		{name: "case sensitive", adapter: newMockAdapter("Cursor"), wantErr: ErrInvalidEditor},
		{name: "nil adapter", adapter: nil, wantErr: ErrNilAdapter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			err := r.Register(tt.adapter)
			if err != tt.wantErr {
				t.Fatalf("Register() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && r.Get(tt.adapter.Editor()) != tt.adapter {
				t.Error("Get() did not return the registered adapter")
			}
		})
	}
}

func TestRegistry_Register_AlreadyRegistered(t *testing.T) {
	r := NewRegistry()
	a1 := newMockAdapter(mcp.EditorCursor)
	a2 := newMockAdapter(mcp.EditorCursor)

	if err := r.Register(a1); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	if err := r.Register(a2); err != ErrAdapterAlreadyRegistered {
		t.Errorf("second Register() error = %v, want %v", err, ErrAdapterAlreadyRegistered)
	}
	if r.Get(mcp.EditorCursor) != a1 {
		t.Error("original adapter was overwritten")
	}
}

func TestRegistry_Get_Unregistered(t *testing.T) {
	r := NewRegistry()
	if got := r.Get(mcp.EditorVSCode); got != nil {
		t.Errorf("Get() = %v, want nil", got)
	}
}

func TestRegistry_All_DeterministicOrder(t *testing.T) {
	r := NewRegistry()
	// Register out of order.
	for _, e := range []mcp.Editor{mcp.EditorVSCode, mcp.EditorCursor, mcp.EditorWindsurf} {
		if err := r.Register(newMockAdapter(e)); err != nil {
			t.Fatal(err)
		}
	}

	got := r.Editors()
	want := mcp.AllEditors()
	if len(got) != len(want) {
		t.Fatalf("Editors() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Editors()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for _, e := range mcp.AllEditors() {
		wg.Add(1)
		go func(e mcp.Editor) {
			defer wg.Done()
			_ = r.Register(newMockAdapter(e))
		}(e)
	}
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.All()
			_ = r.Get(mcp.EditorCursor)
		}()
	}
	wg.Wait()

	if got := len(r.All()); got != 3 {
		t.Errorf("len(All()) = %d, want 3", got)
	}
}

func TestCapabilities(t *testing.T) {
	c := Capabilities{
		Transports: []mcp.Transport{mcp.TransportStdio, mcp.TransportSSE},
		Scopes:     []mcp.Scope{mcp.ScopeGlobal},
	}
	if !c.SupportsTransport(mcp.TransportSSE) {
		t.Error("SupportsTransport(sse) = false, want true")
	}
	if c.SupportsTransport(mcp.TransportHTTP) {
		t.Error("SupportsTransport(http) = true, want false")
	}
	if c.SupportsScope(mcp.ScopeUser) {
		t.Error("SupportsScope(user) = true, want false")
	}
}

func TestValidateServer_AppliesCapabilities(t *testing.T) {
	c := Capabilities{Transports: []mcp.Transport{mcp.TransportStdio}}
	s := &mcp.Server{Name: "remote", Endpoint: &mcp.HTTPEndpoint{URL: "https://a.example"}}

	result := ValidateServer(c, s)
	if result.Valid() {
		t.Fatal("expected http to be rejected")
	}
	if got := result.Errors()[0].Code; got != mcpvalidator.CodeUnsupportedTransport {
		t.Errorf("Code = %q, want %q", got, mcpvalidator.CodeUnsupportedTransport)
	}
}
