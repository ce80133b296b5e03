//go:build unix

package termenv

import (
	"os"

	"golang.org/x/sys/unix"
)

// DefaultExists reports whether path is a regular file the current user may
// execute.
func DefaultExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return unix.Access(path, unix.X_OK) == nil
}
