package history

import "context"

// Navigator walks a session's history the way an input box does on the up
// and down keys. Position len(entries) is the draft the user was typing.
type Navigator struct {
	entries []Entry // oldest first
	pos     int
	draft   string
}

// NewNavigator builds a navigator over entries as returned by List, newest
// first.
func NewNavigator(newestFirst []Entry) *Navigator {
	entries := make([]Entry, len(newestFirst))
	for i, e := range newestFirst {
		entries[len(newestFirst)-1-i] = e
	}
	return &Navigator{entries: entries, pos: len(entries)}
}

// Navigator loads up to limit entries of session into a new Navigator.
func (s *Store) Navigator(ctx context.Context, session string, limit int) (*Navigator, error) {
	entries, err := s.List(ctx, session, limit)
	if err != nil {
		return nil, err
	}
	return NewNavigator(entries), nil
}

// Previous moves to the next older entry. current is remembered as the
// draft when leaving the bottom. It returns false at the oldest entry.
func (n *Navigator) Previous(current string) (string, bool) {
	if n.pos == 0 {
		return "", false
	}
	if n.pos == len(n.entries) {
		n.draft = current
	}
	n.pos--
	return n.entries[n.pos].Text, true
}

// Next moves to the next newer entry, ending at the saved draft. It returns
// false when already at the draft.
func (n *Navigator) Next() (string, bool) {
	if n.pos == len(n.entries) {
		return "", false
	}
	n.pos++
	if n.pos == len(n.entries) {
		return n.draft, true
	}
	return n.entries[n.pos].Text, true
}

// Reset returns to the draft position and forgets the draft.
func (n *Navigator) Reset() {
	n.pos = len(n.entries)
	n.draft = ""
}

// AtDraft reports whether the cursor is past the newest entry.
func (n *Navigator) AtDraft() bool {
	return n.pos == len(n.entries)
}
