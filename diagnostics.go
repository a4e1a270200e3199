package rewriter

import "github.com/cryguy/jsrewriter/internal/model"

// Diagnostic and DiagnosticSeverity are defined in internal/model so
// internal packages (syntaxcheck) can produce them without importing the
// root package. This file re-exports the public surface.
type (
	Diagnostic         = model.Diagnostic
	DiagnosticSeverity = model.DiagnosticSeverity
)

const (
	SeverityWarning = model.SeverityWarning
	SeverityError   = model.SeverityError
)
