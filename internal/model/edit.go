package model

import "sort"

// Span is a half-open byte range [Start, End) into the original source.
type Span struct {
	Start int
	End   int
}

// Edit is one textual edit keyed by source offset. Exactly one of the
// concrete fields is populated, selected by Kind.
type Edit struct {
	Kind EditKind

	// Replace
	Span Span
	Text string

	// Assignment
	Name       string
	EntireSpan Span
	RHSSpan    Span
	Op         string

	// SourceTag
	TagStart int
}

// EditKind tags which variant of Edit is populated.
type EditKind int

const (
	// EditReplace replaces source bytes [Span.Start, Span.End) with Text.
	// Text may be empty to delete.
	EditReplace EditKind = iota
	// EditAssignment replaces [EntireSpan.Start, EntireSpan.End) with the
	// guarded-assignment template (see splicer).
	EditAssignment
	// EditSourceTag is an insertion-only marker at TagStart for
	// source-map function tagging.
	EditSourceTag
)

// offset returns the edit's primary offset, used for ordering (spec.md §3):
// Replace -> Span.Start, Assignment -> EntireSpan.Start, SourceTag ->
// TagStart.
func (e Edit) offset() int {
	switch e.Kind {
	case EditReplace:
		return e.Span.Start
	case EditAssignment:
		return e.EntireSpan.Start
	case EditSourceTag:
		return e.TagStart
	default:
		return 0
	}
}

// NewReplace builds a Replace edit.
func NewReplace(span Span, text string) Edit {
	return Edit{Kind: EditReplace, Span: span, Text: text}
}

// NewAssignment builds an Assignment edit.
func NewAssignment(name string, entireSpan, rhsSpan Span, op string) Edit {
	return Edit{Kind: EditAssignment, Name: name, EntireSpan: entireSpan, RHSSpan: rhsSpan, Op: op}
}

// NewSourceTag builds a SourceTag edit.
func NewSourceTag(tagStart int) Edit {
	return Edit{Kind: EditSourceTag, TagStart: tagStart}
}

// EditSet is an ordered, deduplicated container of edits. The visitor
// appends to it in any traversal order; Sorted() produces the splice-ready
// order once the visit pass is done (spec.md §3 invariants 3-4).
type EditSet struct {
	edits  []Edit
	seen   map[int]bool
	frozen bool
}

// NewEditSet returns an empty EditSet.
func NewEditSet() *EditSet {
	return &EditSet{seen: make(map[int]bool)}
}

// Add appends an edit. Edits sharing a primary offset with one already
// present are treated as duplicates and dropped — the visitor is structured
// so it never emits conflicting duplicates at the same offset (spec.md §3
// invariant 3), so first-wins is a safe tie-break. Add panics if called
// after Sorted (append-only during visit, spec.md §3 invariant 4).
func (s *EditSet) Add(e Edit) {
	if s.frozen {
		panic("rewriter: EditSet.Add called after the edit set was frozen for splicing")
	}
	off := e.offset()
	if s.seen[off] {
		return
	}
	s.seen[off] = true
	s.edits = append(s.edits, e)
}

// Len reports how many edits are in the set.
func (s *EditSet) Len() int {
	return len(s.edits)
}

// Sorted freezes the set and returns its edits ordered by primary offset.
func (s *EditSet) Sorted() []Edit {
	s.frozen = true
	out := make([]Edit, len(s.edits))
	copy(out, s.edits)
	sort.Slice(out, func(i, j int) bool { return out[i].offset() < out[j].offset() })
	return out
}
