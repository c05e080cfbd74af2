package backup

import (
	"io/fs"
	"time"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

// Manifest format version for forward compatibility.
const ManifestVersion = 1

// DefaultRetention is the number of snapshots kept per editor.
const DefaultRetention = 10

// Sentinel errors for backup operations.
var (
	// ErrNoBackupsFound indicates no snapshots exist for the editor.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrBackupCorrupted indicates a snapshot file no longer matches the
	// hash recorded in its manifest.
	ErrBackupCorrupted = errors.New("backup corrupted")
)

// Manifest describes one snapshot. It is stored as manifest.json in the
// snapshot directory.
type Manifest struct {
	// Version is the manifest format version.
	Version int `json:"version"`

	// CreatedAt is when the snapshot was taken.
	CreatedAt time.Time `json:"created_at"`

	// Editor owns the snapshotted file.
	Editor mcp.Editor `json:"editor"`

	// Files lists the copied files.
	Files []File `json:"files"`

	// ToolVersion is the mcpm version that took the snapshot.
	ToolVersion string `json:"mcpm_version"`

	// ID names the snapshot directory. It is not stored in the manifest.
	ID string `json:"-"`
}

// File is one snapshotted file.
type File struct {
	// OriginalPath is the absolute path the file was copied from.
	OriginalPath string `json:"original_path"`

	// RelPath is the location of the copy inside the snapshot directory.
	RelPath string `json:"rel_path"`

	// SHA256Hash is the hex-encoded SHA-256 of the contents.
	SHA256Hash string `json:"sha256_hash"`

	// Mode is the file's permission bits.
	Mode fs.FileMode `json:"mode"`
}
