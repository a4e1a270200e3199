package rewriter

import "github.com/cryguy/jsrewriter/internal/model"

// Span, Edit, EditKind and EditSet are defined in internal/model so that
// internal packages (splicer, visitor, modscan) can share them with the
// root package without an import cycle. This file just re-exports the
// public surface.
type (
	Span     = model.Span
	Edit     = model.Edit
	EditKind = model.EditKind
	EditSet  = model.EditSet
)

const (
	EditReplace    = model.EditReplace
	EditAssignment = model.EditAssignment
	EditSourceTag  = model.EditSourceTag
)

// NewReplace builds a Replace edit.
func NewReplace(span Span, text string) Edit { return model.NewReplace(span, text) }

// NewAssignment builds an Assignment edit.
func NewAssignment(name string, entireSpan, rhsSpan Span, op string) Edit {
	return model.NewAssignment(name, entireSpan, rhsSpan, op)
}

// NewSourceTag builds a SourceTag edit.
func NewSourceTag(tagStart int) Edit { return model.NewSourceTag(tagStart) }

// NewEditSet returns an empty EditSet.
func NewEditSet() *EditSet { return model.NewEditSet() }
