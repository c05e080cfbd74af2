// Package platform defines the editor adapter contract and the helpers the
// Cursor, Windsurf and VS Code adapters share.
//
// # Adapters
//
// Each editor package (cursor, windsurf, vscode) provides an [Adapter]
// that reads and writes that editor's native MCP files through a
// canonical [mcp.Server] model. Editors that support input definitions
// also implement [InputAdapter].
//
// Capabilities are static: [Adapter.SupportsScope] says whether a scope
// exists for the editor at all, while [Adapter.ScopeAvailable] says
// whether it can be used right now (a workspace scope needs a project
// directory, for instance).
//
// # Registry
//
// [Registry] holds one adapter per editor and returns them in the order of
// [mcp.AllEditors]:
//
//	r := platform.NewRegistry()
//	_ = r.Register(cursor.New())
//	a := r.Get(mcp.EditorCursor)
//
// # Workspace Detection
//
// [WorkspacePolicy] decides whether a workspace config directory such as
// <root>/.vscode may be created. The directory is usable when it already
// exists, or when its parent holds a project marker such as go.mod or
// .git. The home directory and the filesystem root never qualify.
//
// # Detection
//
// [Detect] and [DetectAll] report whether each editor is installed and
// which of its config files exist.
//
// # Thread Safety
//
// All functions in this package are safe for concurrent use.
package platform
