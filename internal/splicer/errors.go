package splicer

import "errors"

// ErrOutOfBounds indicates an edit's span fell outside the cursor's forward
// range — the visitor is responsible for non-overlapping Replace spans
// (spec.md §3 invariant 1); seeing this means that invariant was violated.
var ErrOutOfBounds = errors.New("splicer: out-of-bounds splice")

var errOOB = ErrOutOfBounds
