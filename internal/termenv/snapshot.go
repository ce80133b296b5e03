package termenv

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// maxWalkDepth bounds the /proc parent walk.
const maxWalkDepth = 64

// commLen is the kernel's TASK_COMM_LEN minus the terminator; /proc status
// names are truncated to it.
const commLen = 15

// DarwinAllowlist holds the variables copied from the base environment on
// macOS, where the launchd root environment cannot be read directly.
var DarwinAllowlist = []string{
	"SHELL",
	"SSH_AUTH_SOCK",
	"Apple_PubSub_Socket_Render",
	"XPC_FLAGS",
	"XPC_SERVICE_NAME",
	"HOME",
	"LOGNAME",
	"TMPDIR",
}

// Snapshot computes and caches the parent login environment. It is safe for
// concurrent use.
type Snapshot struct {
	mu sync.Mutex

	procFS      fs.FS
	baseEnv     map[string]string
	goos        string
	startPID    int
	processName string
	extraAllow  []string
	logger      *slog.Logger

	env map[string]string
}

// SnapshotOption configures a Snapshot.
type SnapshotOption func(*Snapshot)

// WithProcFS replaces the /proc filesystem.
func WithProcFS(fsys fs.FS) SnapshotOption {
	return func(s *Snapshot) { s.procFS = fsys }
}

// WithBaseEnv replaces the environment used on non-Linux platforms.
func WithBaseEnv(env map[string]string) SnapshotOption {
	return func(s *Snapshot) { s.baseEnv = env }
}

// WithGOOS overrides runtime.GOOS.
func WithGOOS(goos string) SnapshotOption {
	return func(s *Snapshot) { s.goos = goos }
}

// WithStartPID sets the first process inspected on Linux.
func WithStartPID(pid int) SnapshotOption {
	return func(s *Snapshot) { s.startPID = pid }
}

// WithProcessName sets the name the Linux walk skips past.
func WithProcessName(name string) SnapshotOption {
	return func(s *Snapshot) { s.processName = name }
}

// WithExtraAllowlist adds variables to DarwinAllowlist.
func WithExtraAllowlist(keys ...string) SnapshotOption {
	return func(s *Snapshot) { s.extraAllow = append(s.extraAllow, keys...) }
}

// WithSnapshotLogger sets the logger.
func WithSnapshotLogger(logger *slog.Logger) SnapshotOption {
	return func(s *Snapshot) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSnapshot returns an empty Snapshot. Nothing is read until Env.
func NewSnapshot(opts ...SnapshotOption) *Snapshot {
	s := &Snapshot{
		procFS:      os.DirFS("/proc"),
		goos:        runtime.GOOS,
		startPID:    os.Getppid(),
		processName: filepath.Base(os.Args[0]),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.baseEnv == nil {
		s.baseEnv = ParseEnviron(os.Environ())
	}
	return s
}

// Env returns a copy of the parent login environment, computing it on the
// first call after construction or Invalidate.
func (s *Snapshot) Env(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.env == nil {
		env, err := s.compute(ctx)
		if err != nil {
			return nil, err
		}
		s.env = env
	}
	return copyEnv(s.env), nil
}

// Invalidate drops the cached environment.
func (s *Snapshot) Invalidate() {
	s.mu.Lock()
	s.env = nil
	s.mu.Unlock()
}

func (s *Snapshot) compute(ctx context.Context) (map[string]string, error) {
	switch s.goos {
	case "linux":
		pid, err := s.findParent(ctx)
		if err != nil {
			return nil, err
		}
		data, err := fs.ReadFile(s.procFS, fmt.Sprintf("%d/environ", pid))
		if err != nil {
			return nil, fmt.Errorf("termenv: read environ of %d: %w", pid, err)
		}
		s.logger.Debug("parent environment", "pid", pid)
		return ParseEnviron(strings.Split(string(data), "\x00")), nil

	case "darwin":
		env := make(map[string]string)
		for _, key := range append(append([]string(nil), DarwinAllowlist...), s.extraAllow...) {
			if v, ok := s.baseEnv[key]; ok && v != "" {
				env[key] = v
			}
		}
		return env, nil

	default:
		return copyEnv(s.baseEnv), nil
	}
}

// findParent walks up from startPID while the process carries our own name
// and returns the first pid that does not.
func (s *Snapshot) findParent(ctx context.Context) (int, error) {
	self := s.processName
	if len(self) > commLen {
		self = self[:commLen]
	}

	pid := s.startPID
	for depth := 0; depth < maxWalkDepth; depth++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		name, ppid, err := readStatus(s.procFS, pid)
		if err != nil {
			return 0, err
		}
		if name != self {
			return pid, nil
		}
		if ppid <= 0 {
			return 0, fmt.Errorf("termenv: reached pid %d without leaving %q", pid, self)
		}
		pid = ppid
	}
	return 0, fmt.Errorf("termenv: parent walk exceeded %d levels", maxWalkDepth)
}

// readStatus returns the Name and PPid fields of /proc/<pid>/status.
func readStatus(fsys fs.FS, pid int) (string, int, error) {
	data, err := fs.ReadFile(fsys, fmt.Sprintf("%d/status", pid))
	if err != nil {
		return "", 0, fmt.Errorf("termenv: read status of %d: %w", pid, err)
	}

	var (
		name string
		ppid = -1
	)
	for _, line := range strings.Split(string(data), "\n") {
		switch {
		case strings.HasPrefix(line, "Name:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
		case strings.HasPrefix(line, "PPid:"):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "PPid:")))
			if err != nil {
				return "", 0, fmt.Errorf("termenv: parse PPid of %d: %w", pid, err)
			}
			ppid = n
		}
	}
	if ppid < 0 {
		return "", 0, fmt.Errorf("termenv: no PPid in status of %d", pid)
	}
	return name, ppid, nil
}

// ParseEnviron converts "KEY=value" entries to a map. Entries without "="
// or with an empty key are skipped; later entries win.
func ParseEnviron(entries []string) map[string]string {
	env := make(map[string]string, len(entries))
	for _, e := range entries {
		i := strings.IndexByte(e, '=')
		if i <= 0 {
			continue
		}
		env[e[:i]] = e[i+1:]
	}
	return env
}

// Environ converts env back to sorted "KEY=value" entries.
func Environ(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

func copyEnv(env map[string]string) map[string]string {
	out := make(map[string]string, len(env))
	for k, v := range env {
		out[k] = v
	}
	return out
}
