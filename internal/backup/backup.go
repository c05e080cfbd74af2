package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
	"github.com/thoreinstein/mcpm/internal/paths"
	"github.com/thoreinstein/mcpm/pkg/fileutil"
)

// Version is set at build time via ldflags.
var Version = "dev"

const (
	manifestFile = "manifest.json"
	idLayout     = "20060102T150405.000000"
)

// Manager takes and restores snapshots of editor config files.
type Manager struct {
	rootDir   string
	retention int
	now       func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackupDir sets the root backup directory.
func WithBackupDir(dir string) Option {
	return func(m *Manager) {
		if dir != "" {
			m.rootDir = dir
		}
	}
}

// WithRetention sets the number of snapshots kept per editor.
func WithRetention(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retention = n
		}
	}
}

// NewManager creates a new backup Manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		rootDir:   paths.BackupDir(),
		retention: DefaultRetention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the root backup directory.
func (m *Manager) Dir() string {
	return m.rootDir
}

// Snapshot copies the file at path into a new snapshot for editor and
// prunes the editor's snapshots down to the retention count. A missing
// file has nothing to preserve and returns a nil manifest.
func (m *Manager) Snapshot(editor mcp.Editor, path string) (*Manifest, error) {
	if editor == "" {
		return nil, errors.New("editor is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if !info.Mode().IsRegular() {
		return nil, errors.Newf("%s is not a regular file", path)
	}

	created := m.now().UTC()
	id, dir, err := m.claimDir(editor, created)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	relPath := generateRelPath(abs)
	dst := filepath.Join(dir, relPath)
	if err := os.MkdirAll(filepath.Dir(dst), 0o700); err != nil {
		return nil, errors.Wrap(err, "creating snapshot directory")
	}
	hash, mode, err := copyFile(abs, dst)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}

	manifest := &Manifest{
		Version:     ManifestVersion,
		CreatedAt:   created,
		Editor:      editor,
		Files:       []File{{OriginalPath: abs, RelPath: relPath, SHA256Hash: hash, Mode: mode}},
		ToolVersion: Version,
		ID:          id,
	}
	if err := fileutil.AtomicWriteJSON(filepath.Join(dir, manifestFile), manifest, 0o600); err != nil {
		_ = os.RemoveAll(dir)
		return nil, errors.Wrap(err, "writing manifest")
	}

	if err := m.Prune(editor, m.retention); err != nil {
		return manifest, errors.Wrap(err, "pruning old backups")
	}
	return manifest, nil
}

// claimDir creates a fresh snapshot directory. Snapshots taken within the
// same microsecond get a numeric suffix.
func (m *Manager) claimDir(editor mcp.Editor, t time.Time) (id, dir string, err error) {
	parent := m.editorDir(editor)
	if err := os.MkdirAll(parent, 0o700); err != nil {
		return "", "", errors.Wrap(err, "creating backup directory")
	}
	base := t.Format(idLayout)
	for i := 0; i < 100; i++ {
		id = base
		if i > 0 {
			id = fmt.Sprintf("%s-%d", base, i)
		}
		dir = filepath.Join(parent, id)
		err := os.Mkdir(dir, 0o700)
		if err == nil {
			return id, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", errors.Wrap(err, "creating backup directory")
		}
	}
	return "", "", errors.Newf("no free backup id for %s", base)
}

// Restore copies the files of a snapshot back to their original
// locations after checking their hashes.
func (m *Manager) Restore(editor mcp.Editor, id string) error {
	manifest, err := m.Get(editor, id)
	if err != nil {
		return err
	}
	dir := filepath.Join(m.editorDir(editor), id)

	for _, f := range manifest.Files {
		src := filepath.Join(dir, f.RelPath)
		data, err := os.ReadFile(src)
		if err != nil {
			return errors.Wrapf(err, "reading backup file %s", f.RelPath)
		}
		sum := sha256.Sum256(data)
		if hex.EncodeToString(sum[:]) != f.SHA256Hash {
			return errors.Wrapf(ErrBackupCorrupted, "file %s hash mismatch", f.RelPath)
		}
		if err := os.MkdirAll(filepath.Dir(f.OriginalPath), 0o755); err != nil {
			return errors.Wrapf(err, "creating directory for %s", f.OriginalPath)
		}
		if err := fileutil.AtomicWriteFile(f.OriginalPath, data, f.Mode.Perm()); err != nil {
			return errors.Wrapf(err, "restoring %s", f.OriginalPath)
		}
	}
	return nil
}

// List returns the snapshots of editor, newest first.
func (m *Manager) List(editor mcp.Editor) ([]Manifest, error) {
	entries, err := os.ReadDir(m.editorDir(editor))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoBackupsFound
		}
		return nil, errors.Wrap(err, "reading backup directory")
	}

	manifests := make([]Manifest, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, err := m.Get(editor, entry.Name())
		if err != nil {
			// Half-written snapshots have no manifest.
			continue
		}
		manifests = append(manifests, *manifest)
	}
	if len(manifests) == 0 {
		return nil, ErrNoBackupsFound
	}

	slices.SortFunc(manifests, func(a, b Manifest) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return manifests, nil
}

// Prune removes all but the newest keep snapshots of editor.
func (m *Manager) Prune(editor mcp.Editor, keep int) error {
	if keep < 0 {
		return errors.New("keep must be non-negative")
	}
	manifests, err := m.List(editor)
	if err != nil {
		if errors.Is(err, ErrNoBackupsFound) {
			return nil
		}
		return err
	}
	for _, old := range manifests[min(keep, len(manifests)):] {
		if err := os.RemoveAll(filepath.Join(m.editorDir(editor), old.ID)); err != nil {
			return errors.Wrapf(err, "removing backup %s", old.ID)
		}
	}
	return nil
}

// Get returns the manifest of one snapshot.
func (m *Manager) Get(editor mcp.Editor, id string) (*Manifest, error) {
	if id == "" {
		return nil, errors.New("backup ID is required")
	}
	data, err := os.ReadFile(filepath.Join(m.editorDir(editor), id, manifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNoBackupsFound, "backup %s not found", id)
		}
		return nil, errors.Wrap(err, "reading manifest")
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}
	manifest.ID = id
	return &manifest, nil
}

func (m *Manager) editorDir(editor mcp.Editor) string {
	return filepath.Join(m.rootDir, string(editor))
}

// copyFile copies src to dst and returns the SHA-256 of the contents and
// the source permission bits.
func copyFile(src, dst string) (hash string, mode fs.FileMode, err error) {
	in, err := os.Open(src)
	if err != nil {
		return "", 0, errors.Wrap(err, "opening source file")
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", 0, errors.Wrap(err, "stat source file")
	}
	mode = info.Mode().Perm()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return "", 0, errors.Wrap(err, "creating destination file")
	}

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(out, h), in); err != nil {
		out.Close()
		return "", 0, errors.Wrap(err, "copying file")
	}
	if err := out.Close(); err != nil {
		return "", 0, errors.Wrap(err, "closing destination file")
	}

	return hex.EncodeToString(h.Sum(nil)), mode, nil
}

// generateRelPath maps an absolute path to a relative path inside a
// snapshot directory. Drive colons are dropped so the result is valid on
// every filesystem.
func generateRelPath(absPath string) string {
	clean := filepath.Clean(absPath)
	clean = strings.ReplaceAll(clean, ":", "")
	return strings.TrimLeft(clean, string(filepath.Separator))
}
