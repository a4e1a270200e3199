// Package urlrewrite resolves and quotes ECMAScript module specifiers
// (spec.md §4.3). URL encoding policy itself stays external — Encode is
// injected by the embedding proxy — this package only owns resolution and
// the final quoted-literal shape the splicer drops into the output.
package urlrewrite

import (
	"fmt"
	"net/url"
)

// Rewriter resolves specifiers against a fixed base URL and renders them as
// the double-quoted literal the splicer substitutes in place of the
// original specifier.
type Rewriter struct {
	Base   *url.URL
	Prefix string
	Encode func(string) string
}

// Rewrite resolves specifier against r.Base, encodes it, and returns the
// double-quoted literal `"<prefix><encoded>"`.
//
// Resolution failure is surfaced as a recoverable error rather than a
// panic: spec.md §7/§9 flags the reference implementation's panic-on-failure
// as an open question and recommends leaving the specifier unchanged with
// an attached diagnostic, which is what callers are expected to do with the
// returned error.
func (r *Rewriter) Rewrite(specifier string) (string, error) {
	if r.Encode == nil {
		return "", fmt.Errorf("urlrewrite: nil Encode func")
	}
	resolved, err := r.resolve(specifier)
	if err != nil {
		return "", fmt.Errorf("urlrewrite: resolving %q against %q: %w", specifier, r.Base, err)
	}
	encoded := r.Encode(resolved.String())
	return fmt.Sprintf("%q", r.Prefix+encoded), nil
}

// resolve implements the spec's "standard URL resolution; absolute,
// path-relative, and scheme-relative all supported" using net/url's
// RFC 3986 reference resolution. See DESIGN.md for why this, and not
// github.com/nlnwa/whatwg-url, owns this concern.
func (r *Rewriter) resolve(specifier string) (*url.URL, error) {
	ref, err := url.Parse(specifier)
	if err != nil {
		return nil, err
	}
	return r.Base.ResolveReference(ref), nil
}
