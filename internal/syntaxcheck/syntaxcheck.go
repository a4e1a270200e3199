// Package syntaxcheck runs the input through esbuild's single-file
// Transform (the same esbuild/pkg/api dependency the teacher already uses
// for bundling, see bundle.go) purely to harvest its parser diagnostics.
// The transformed/minified output it produces is discarded — this package
// never feeds esbuild's bytes into the splicer, only its Errors/Warnings.
package syntaxcheck

import (
	esbuild "github.com/evanw/esbuild/pkg/api"

	"github.com/cryguy/jsrewriter/internal/model"
)

// Check parses source as a single JS file and converts esbuild's messages
// into the rewriter's Diagnostic shape. It never returns an error itself:
// a malformed file just comes back with SeverityError diagnostics, matching
// spec.md §4.4's "parse failure is never fatal" rule.
func Check(source []byte) []model.Diagnostic {
	result := esbuild.Transform(string(source), esbuild.TransformOptions{
		Loader:   esbuild.LoaderJS,
		LogLevel: esbuild.LogLevelSilent,
		Target:   esbuild.ESNext,
	})

	diags := make([]model.Diagnostic, 0, len(result.Errors)+len(result.Warnings))
	for _, m := range result.Errors {
		diags = append(diags, convert(m, model.SeverityError))
	}
	for _, m := range result.Warnings {
		diags = append(diags, convert(m, model.SeverityWarning))
	}
	return diags
}

func convert(m esbuild.Message, sev model.DiagnosticSeverity) model.Diagnostic {
	d := model.Diagnostic{Severity: sev, Text: m.Text}
	if m.Location != nil {
		d.Line = m.Location.Line
		d.Column = m.Location.Column
	}
	return d
}
