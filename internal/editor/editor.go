// Package editor launches the user's preferred text editor.
package editor

import (
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// Open launches the user's preferred editor for the given path and waits
// for it to exit.
// Uses $EDITOR, falling back to $VISUAL, then nano, then vi. The variable
// may carry arguments, e.g. "code --wait".
func Open(path string, stdin io.Reader, stdout, stderr io.Writer) error {
	argv := append(detectEditor(), path)

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", argv[0])
	}
	return nil
}

// Edit writes data to a temporary file named after pattern, opens it in
// the editor and returns the saved contents. The file is removed
// afterwards.
func Edit(pattern string, data []byte, stdin io.Reader, stdout, stderr io.Writer) ([]byte, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return nil, errors.Wrap(err, "creating temp file")
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "writing temp file")
	}
	if err := f.Close(); err != nil {
		return nil, errors.Wrap(err, "closing temp file")
	}

	if err := Open(path, stdin, stdout, stderr); err != nil {
		return nil, err
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading edited file")
	}
	return edited, nil
}

// detectEditor returns the editor command line to use based on environment
// variables and available binaries. Fallback chain: $EDITOR → $VISUAL → nano → vi
func detectEditor() []string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if fields := strings.Fields(os.Getenv(env)); len(fields) > 0 {
			return fields
		}
	}

	// User-friendly fallback (nano is easier for beginners)
	if _, err := exec.LookPath("nano"); err == nil {
		return []string{"nano"}
	}

	// POSIX standard fallback (vi is available on all Unix systems)
	return []string{"vi"}
}
