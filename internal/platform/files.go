package platform

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"maps"
	"os"
	"path/filepath"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
	"github.com/thoreinstein/mcpm/internal/mcp/parser"
	"github.com/thoreinstein/mcpm/pkg/fileutil"
)

// ErrNoWorkspace is returned for workspace-scoped operations when no
// workspace is available. Aggregate reads skip it quietly.
var ErrNoWorkspace = errors.ErrNoWorkspace

// ScopeError returns errors.ErrScopeUnsupported for editor and scope.
func ScopeError(editor mcp.Editor, scope mcp.Scope) error {
	return errors.Wrapf(errors.ErrScopeUnsupported, "%s has no %q scope", editor, scope)
}

// ReadConfigFile reads path with the size limit applied. A missing file
// returns exists=false and no error.
func ReadConfigFile(path string) (data []byte, exists bool, err error) {
	data, exists, err = fileutil.ReadIfExists(path)
	if err != nil {
		return nil, false, errors.Wrapf(err, "reading %s", path)
	}
	return data, exists, nil
}

// FilterServers returns the servers belonging to editor and scope. A
// server with no editor or scope set is treated as belonging to the call.
func FilterServers(servers []*mcp.ServerWithMetadata, editor mcp.Editor, scope mcp.Scope) []*mcp.ServerWithMetadata {
	out := make([]*mcp.ServerWithMetadata, 0, len(servers))
	for _, s := range servers {
		if s == nil || s.Server == nil {
			continue
		}
		if s.Editor != "" && s.Editor != editor {
			continue
		}
		if s.Scope != "" && s.Scope != scope {
			continue
		}
		out = append(out, s)
	}
	return out
}

// CheckTransports returns errors.ErrTransportUnsupported naming the first
// server whose transport the editor cannot store.
func CheckTransports(editor mcp.Editor, c Capabilities, servers []*mcp.ServerWithMetadata) error {
	for _, s := range servers {
		if !c.SupportsTransport(s.Transport()) {
			return errors.Wrapf(errors.ErrTransportUnsupported,
				"server %q uses %q, %s supports %v", s.Name, s.Transport(), editor, c.Transports)
		}
	}
	return nil
}

// DecodeServers translates a native server map into servers sorted by name.
func DecodeServers(raw map[string]json.RawMessage, tr mcp.Translator, scope mcp.Scope, source string) ([]*mcp.ServerWithMetadata, error) {
	servers := make([]*mcp.ServerWithMetadata, 0, len(raw))
	for name, obj := range raw {
		s, err := tr.Decode(name, obj)
		if err != nil {
			return nil, errors.Wrapf(err, "server %q", name)
		}
		servers = append(servers, mcp.WithMetadata(s, tr.Editor(), scope, source))
	}
	mcp.SortByName(servers)
	return servers, nil
}

// EncodeServers translates servers into a native server map. Two servers
// with the same name are a *errors.UniquenessConflict.
func EncodeServers(servers []*mcp.ServerWithMetadata, tr mcp.Translator, scope mcp.Scope) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(servers))
	for _, s := range servers {
		if _, dup := out[s.Name]; dup {
			return nil, &errors.UniquenessConflict{Editor: string(tr.Editor()), Scope: string(scope), Name: s.Name}
		}
		obj, err := tr.Encode(s.Server)
		if err != nil {
			return nil, errors.Wrapf(err, "server %q", s.Name)
		}
		out[s.Name] = obj
	}
	return out, nil
}

// ServerFile is a standalone JSON document holding a server map under one
// top-level key, next to keys that must survive a rewrite.
type ServerFile struct {
	Editor       mcp.Editor
	Scope        mcp.Scope
	Path         string
	Key          string
	Translator   mcp.Translator
	Capabilities Capabilities

	// Comments accepts comments and trailing commas on read. They are not
	// written back by Write.
	Comments bool

	// Skeleton holds the top-level keys, besides the server map, of a new
	// document.
	Skeleton map[string]json.RawMessage
}

func (f *ServerFile) parseOptions() []parser.Option {
	if f.Comments {
		return []parser.Option{parser.WithComments()}
	}
	return nil
}

// Read returns the servers stored in the file. A missing file is created
// as an empty document when its directory exists; otherwise nothing is
// created and no servers are returned.
func (f *ServerFile) Read() ([]*mcp.ServerWithMetadata, error) {
	doc, exists, err := parser.ParseFile(f.Path, f.Key, f.parseOptions()...)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := f.create(); err != nil {
			return nil, err
		}
	}
	return f.decode(doc)
}

// create writes an empty document to a missing file. An existing file is
// never replaced.
func (f *ServerFile) create() error {
	if f.Path == "" {
		return nil
	}
	if info, err := os.Stat(filepath.Dir(f.Path)); err != nil || !info.IsDir() {
		return nil
	}
	data, err := f.empty().Marshal()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(f.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileutil.DefaultFileMode)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "creating %s", f.Path)
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return errors.Wrapf(err, "creating %s", f.Path)
	}
	return errors.Wrapf(out.Close(), "creating %s", f.Path)
}

func (f *ServerFile) empty() *parser.Document {
	doc := parser.New(f.Key)
	if len(f.Skeleton) > 0 {
		doc.Extra = maps.Clone(f.Skeleton)
	}
	return doc
}

// Parse decodes raw content as if it had been read from the file.
func (f *ServerFile) Parse(raw []byte) ([]*mcp.ServerWithMetadata, error) {
	doc, err := f.parse(raw)
	if err != nil {
		return nil, err
	}
	return f.decode(doc)
}

func (f *ServerFile) parse(raw []byte) (*parser.Document, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return f.empty(), nil
	}
	doc, err := parser.Parse(raw, f.Key, f.parseOptions()...)
	if err != nil {
		return nil, errors.NewParseError(f.Path, err)
	}
	return doc, nil
}

func (f *ServerFile) decode(doc *parser.Document) ([]*mcp.ServerWithMetadata, error) {
	servers, err := DecodeServers(doc.Servers, f.Translator, f.Scope, f.Path)
	if err != nil {
		return nil, errors.NewParseError(f.Path, err)
	}
	return servers, nil
}

// Serialize returns a new document holding servers. It does no I/O.
func (f *ServerFile) Serialize(servers []*mcp.ServerWithMetadata) ([]byte, error) {
	return f.Merge(nil, servers)
}

// Merge returns base with its server map replaced by servers. Every other
// top-level key of base is kept. An empty base is a new document. It does
// no I/O.
func (f *ServerFile) Merge(base []byte, servers []*mcp.ServerWithMetadata) ([]byte, error) {
	doc, err := f.parse(base)
	if err != nil {
		return nil, err
	}
	if err := f.Encode(doc, servers); err != nil {
		return nil, err
	}
	return doc.Marshal()
}

// Encode replaces the server map of doc with servers.
func (f *ServerFile) Encode(doc *parser.Document, servers []*mcp.ServerWithMetadata) error {
	servers = FilterServers(servers, f.Editor, f.Scope)
	if err := CheckTransports(f.Editor, f.Capabilities, servers); err != nil {
		return err
	}
	native, err := EncodeServers(servers, f.Translator, f.Scope)
	if err != nil {
		return err
	}
	doc.Servers = native
	return nil
}

// Write replaces the server map on disk, creating the file and its parent
// directory when needed.
func (f *ServerFile) Write(servers []*mcp.ServerWithMetadata) error {
	if f.Path == "" {
		return errors.Newf("%s %s config path not configured", f.Editor, f.Scope)
	}
	current, _, err := ReadConfigFile(f.Path)
	if err != nil {
		return err
	}
	data, err := f.Merge(current, servers)
	if err != nil {
		return err
	}
	return f.commit(data)
}

// WriteRaw replaces the whole file with raw, a complete document. The
// current file is not read, so a damaged file can be replaced. raw is
// written as given, comments included, once it decodes.
func (f *ServerFile) WriteRaw(raw []byte) error {
	if f.Path == "" {
		return errors.Newf("%s %s config path not configured", f.Editor, f.Scope)
	}
	servers, err := f.Parse(raw)
	if err != nil {
		return err
	}
	if err := CheckTransports(f.Editor, f.Capabilities, servers); err != nil {
		return err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		if raw, err = f.Serialize(nil); err != nil {
			return err
		}
	}
	return f.commit(raw)
}

func (f *ServerFile) commit(data []byte) error {
	if err := fileutil.WriteConfigFile(f.Path, data); err != nil {
		return errors.Wrapf(err, "writing %s", f.Path)
	}
	return nil
}
