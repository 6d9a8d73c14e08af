//go:build unix

package emit

import (
	"errors"
	"syscall"
)

const nonblock = syscall.O_NONBLOCK

// isNoReader reports whether err means the FIFO has no reader attached.
func isNoReader(err error) bool {
	return errors.Is(err, syscall.ENXIO) || errors.Is(err, syscall.EPIPE)
}
