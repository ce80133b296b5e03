package termenv

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ExistsFunc reports whether path names a usable executable.
type ExistsFunc func(path string) bool

// Finder resolves commands to executable paths.
type Finder struct {
	// GOOS selects platform rules; empty means runtime.GOOS.
	GOOS string
	// Exists checks candidates; nil means DefaultExists.
	Exists ExistsFunc
}

// FindExecutable resolves command with the platform defaults.
func FindExecutable(command, cwd string, paths []string, env map[string]string) (string, bool) {
	return Finder{}.Find(command, cwd, paths, env)
}

// Find resolves command:
//   - an absolute command is returned if it exists
//   - a command with a directory part is resolved against cwd
//   - otherwise each entry of paths is tried in order, or of PATH from env
//     (matched case-insensitively) when paths is nil; relative entries are
//     resolved against cwd, an empty entry stands for cwd itself, and on
//     Windows ".com" and ".exe" are also tried
//   - finally cwd/command is tried
//
// An empty cwd means the process working directory.
func (f Finder) Find(command, cwd string, paths []string, env map[string]string) (string, bool) {
	exists := f.Exists
	if exists == nil {
		exists = DefaultExists
	}
	goos := f.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	if command == "" {
		return "", false
	}

	check := func(p string) (string, bool) {
		if exists(p) {
			return p, true
		}
		return "", false
	}

	if filepath.IsAbs(command) {
		return check(command)
	}
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", false
		}
		cwd = wd
	}
	if filepath.Dir(command) != "." {
		return check(filepath.Join(cwd, command))
	}

	if paths == nil {
		if envPath, ok := lookupFold(env, "PATH"); ok {
			paths = filepath.SplitList(envPath)
		}
	}

	for _, entry := range paths {
		full := filepath.Join(entry, command)
		if !filepath.IsAbs(entry) {
			full = filepath.Join(cwd, entry, command)
		}
		if p, ok := check(full); ok {
			return p, true
		}
		if goos == "windows" {
			for _, ext := range []string{".com", ".exe"} {
				if p, ok := check(full + ext); ok {
					return p, true
				}
			}
		}
	}

	return check(filepath.Join(cwd, command))
}

// lookupFold returns env[key] matching key case-insensitively, preferring
// an exact match.
func lookupFold(env map[string]string, key string) (string, bool) {
	if v, ok := env[key]; ok {
		return v, true
	}
	for k, v := range env {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}
