package rewriter

import "errors"

// ErrSpliceOutOfBounds indicates an invariant violation: two Replace edits
// overlapped, or an edit's span fell outside the source. It is fatal —
// callers should treat it as a bug in the visitor, not a property of the
// input (spec.md §7).
var ErrSpliceOutOfBounds = errors.New("rewriter: splice out of bounds (overlapping edits)")

// ErrNoEncode is returned when Config.Encode is nil; the URL rewriter has
// nowhere to send resolved absolute URLs.
var ErrNoEncode = errors.New("rewriter: config.Encode must not be nil")
