package rewriter

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/dop251/goja/parser"

	"github.com/cryguy/jsrewriter/internal/modscan"
	"github.com/cryguy/jsrewriter/internal/splicer"
	"github.com/cryguy/jsrewriter/internal/syntaxcheck"
	"github.com/cryguy/jsrewriter/internal/urlrewrite"
	"github.com/cryguy/jsrewriter/internal/visitor"
)

// Rewrite is the Driver (spec.md §4.4): parse, visit, splice. It never
// fails on malformed input by itself — parse diagnostics are returned
// alongside whatever output the pipeline could still produce — except for
// the two genuinely fatal conditions spec.md §7 names: a splice
// out-of-bounds (an edit-set invariant violation, wrapped in
// ErrSpliceOutOfBounds) and a structural parse failure severe enough that
// goja never returns a program at all. It also returns ErrNoEncode, before
// doing any work, when cfg.Encode is nil.
func Rewrite(js []byte, base *url.URL, sourceTag string, cfg Config) ([]byte, []Diagnostic, error) {
	if cfg.Encode == nil {
		return nil, nil, ErrNoEncode
	}
	diags := syntaxcheck.Check(js)

	rw := &urlrewrite.Rewriter{Base: base, Prefix: cfg.Prefix, Encode: cfg.Encode}
	scanned := modscan.Scan(js, rw)
	diags = append(diags, scanned.Diagnostics...)

	program, parseErr := parser.ParseFile(nil, sourceTag, scanned.Neutralized, 0)
	if program == nil {
		return nil, diags, fmt.Errorf("rewriter: parse failed: %w", parseErr)
	}
	if parseErr != nil {
		diags = append(diags, Diagnostic{Severity: SeverityError, Text: parseErr.Error()})
	}

	vcfg := visitor.Config{
		WrapFn:         cfg.WrapFn,
		WrapThisFn:     cfg.WrapThisFn,
		ImportFn:       cfg.ImportFn,
		RewriteFn:      cfg.RewriteFn,
		SetRealmFn:     cfg.SetRealmFn,
		MetaFn:         cfg.MetaFn,
		CaptureErrors:  cfg.CaptureErrors,
		Scramitize:     cfg.Scramitize,
		DoSourcemaps:   cfg.DoSourcemaps,
		StrictRewrites: cfg.StrictRewrites,
	}
	edits := visitor.Visit(program, js, base, vcfg)
	for _, e := range scanned.Edits {
		edits.Add(e)
	}

	out, err := splicer.Splice(js, edits.Sorted(), splicer.Options{
		DoSourceMaps:    cfg.DoSourcemaps,
		PushSourceMapFn: cfg.PushSourceMapFn,
		SourceTag:       sourceTag,
	})
	if err != nil {
		if errors.Is(err, splicer.ErrOutOfBounds) {
			return nil, diags, fmt.Errorf("%w: %v", ErrSpliceOutOfBounds, err)
		}
		return nil, diags, err
	}
	return out, diags, nil
}
