//go:build windows

package hooks

import "errors"

// EnsureFIFO is unsupported on Windows; the event transport requires a
// POSIX named pipe.
func EnsureFIFO(path string) error {
	return errors.New("named pipe transport is not supported on windows")
}

// RemoveFIFO is a no-op on Windows.
func RemoveFIFO(path string) error { return nil }
