// Package termenv approximates the environment a login shell would start
// with and resolves executables the way a terminal launcher does.
//
// Snapshot replaces a process-wide memoized environment: the caller owns it,
// passes it where needed, and calls Invalidate when the cached value should
// be recomputed.
package termenv
