//go:build windows

package emit

const nonblock = 0

func isNoReader(error) bool { return false }
