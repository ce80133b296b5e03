// Package history persists submitted chat input per session in SQLite.
//
// Entries are ordered by a per-session sequence number, never by wall-clock
// time. Submitting the same text twice in a row records it once.
package history
