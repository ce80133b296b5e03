//go:build !unix

package termenv

import "os"

// DefaultExists reports whether path is an existing regular file.
func DefaultExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
