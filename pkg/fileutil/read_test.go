package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/thoreinstein/mcpm/internal/errors"
)

func TestReadFileWithLimit(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name    string
		size    int64
		wantErr bool
	}{
		{"small file", 100, false},
		{"exact limit", MaxFileSize, false},
		{"too large", MaxFileSize + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tempDir, tt.name)
			f, err := os.Create(path)
			if err != nil {
				t.Fatal(err)
			}

			if err := f.Truncate(tt.size); err != nil {
				t.Fatal(err)
			}
			f.Close()

			_, err = ReadFileWithLimit(path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ReadFileWithLimit() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrFileTooLarge) {
				t.Errorf("expected ErrFileTooLarge, got %v", err)
			}
		})
	}
}

func TestReadIfExists(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		data, exists, err := ReadIfExists(filepath.Join(dir, "missing.json"))
		if err != nil {
			t.Fatalf("ReadIfExists() error = %v", err)
		}
		if exists {
			t.Error("exists = true, want false")
		}
		if data != nil {
			t.Errorf("data = %q, want nil", data)
		}
	})

	t.Run("existing file", func(t *testing.T) {
		path := filepath.Join(dir, "mcp.json")
		if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
		data, exists, err := ReadIfExists(path)
		if err != nil {
			t.Fatalf("ReadIfExists() error = %v", err)
		}
		if !exists || string(data) != "{}" {
			t.Errorf("ReadIfExists() = %q, %v; want {}, true", data, exists)
		}
	})

	t.Run("directory is an error", func(t *testing.T) {
		if _, _, err := ReadIfExists(dir); err == nil {
			t.Error("ReadIfExists() on a directory should fail")
		}
	})
}
