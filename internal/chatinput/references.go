package chatinput

import (
	"fmt"
	"sort"
)

// Reference is a span of input bound to out-of-band data, such as a file
// chosen from a picker and inserted as "#file:main.go".
type Reference struct {
	ID    string `json:"id"`
	Range Range  `json:"range"`
	Data  string `json:"data,omitempty"`
}

// Edit replaces Range with Text.
type Edit struct {
	Range Range  `json:"range"`
	Text  string `json:"text"`
}

// References tracks dynamic references while the input is edited. A
// reference survives an edit only if the edit does not touch its text;
// references after the edit shift by the change in length.
//
// References is not safe for concurrent use.
type References struct {
	refs []Reference
}

// Add registers ref. It fails for empty or inverted ranges and for ranges
// that overlap an existing reference.
func (r *References) Add(ref Reference) error {
	if ref.Range.Start < 0 || ref.Range.End <= ref.Range.Start {
		return fmt.Errorf("chatinput: invalid reference range [%d,%d)", ref.Range.Start, ref.Range.End)
	}
	for _, existing := range r.refs {
		if ref.Range.Start < existing.Range.End && ref.Range.End > existing.Range.Start {
			return fmt.Errorf("chatinput: reference %s overlaps %s", ref.ID, existing.ID)
		}
	}
	r.refs = append(r.refs, ref)
	sort.Slice(r.refs, func(i, j int) bool { return r.refs[i].Range.Start < r.refs[j].Range.Start })
	return nil
}

// ApplyEdit updates every reference for e and returns the ones it removed.
func (r *References) ApplyEdit(e Edit) []Reference {
	delta := len(e.Text) - e.Range.Len()
	kept := r.refs[:0]
	var removed []Reference
	for _, ref := range r.refs {
		switch {
		case touches(e.Range, ref.Range):
			removed = append(removed, ref)
			continue
		case e.Range.End <= ref.Range.Start:
			ref.Range.Start += delta
			ref.Range.End += delta
		}
		kept = append(kept, ref)
	}
	r.refs = kept
	return removed
}

// List returns the references ordered by start offset.
func (r *References) List() []Reference {
	return append([]Reference(nil), r.refs...)
}

// Len returns the number of live references.
func (r *References) Len() int { return len(r.refs) }

// touches reports whether an edit over e changes text inside ref. An
// insertion at either boundary leaves ref intact.
func touches(e, ref Range) bool {
	if e.Start == e.End {
		return ref.Start < e.Start && e.Start < ref.End
	}
	return e.Start < ref.End && e.End > ref.Start
}
