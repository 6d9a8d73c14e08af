//go:build unix

package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// EnsureFIFO creates the event transport FIFO at path if it does not exist.
// A regular file squatting on the path is an error; an existing FIFO is
// left alone.
func EnsureFIFO(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if info.Mode()&os.ModeNamedPipe != 0 {
			return nil
		}
		return fmt.Errorf("%s exists and is not a FIFO", path)
	}
	if !os.IsNotExist(err) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating transport dir: %w", err)
	}
	if err := syscall.Mkfifo(path, 0o644); err != nil {
		return fmt.Errorf("creating FIFO %s: %w", path, err)
	}
	return nil
}

// RemoveFIFO removes the transport FIFO. A missing FIFO is not an error.
func RemoveFIFO(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
