package rewriter

// Config is injected once per rewrite and treated as immutable for the
// duration of the call. It carries the runtime shim's call surface plus the
// URL-encoding policy and feature flags.
//
// Mirrors the teacher's EngineConfig (engineconfig.go): a plain struct with
// no env var parsing, no flags package, constructed by the embedding
// service.
type Config struct {
	// Prefix is prepended to every encoded URL before it's quoted back
	// into the source (spec.md §4.3).
	Prefix string

	// Shim identifiers. The rewriter only ever emits calls by these
	// names; it never defines them.
	WrapFn         string // wraps a bare unsafe-global reference
	WrapThisFn     string // wraps a `this` expression
	ImportFn       string // backs dynamic import()
	RewriteFn      string // backs the direct-eval inner wrap
	SetRealmFn     string // backs the postMessage pre-wrap
	MetaFn         string // backs import.meta
	PushSourceMapFn string // backs the source-map prelude call

	// Encode resolves+stringifies a URL per the embedding proxy's own
	// transport/caching policy. Required; the rewriter never invents URL
	// encoding itself.
	Encode func(string) string

	// CaptureErrors injects $scramerr(name) at the top of every catch
	// block whose binding is a plain identifier (debug builds only).
	CaptureErrors bool
	// Scramitize wraps call expressions and (most) member-expression
	// objects with $scramitize(...) for realm-crossing defense in depth.
	Scramitize bool
	// DoSourcemaps tags the body of every function declaration and
	// function expression the visitor reaches with a SourceTag edit and
	// emits the source-map prelude described in spec.md §4.2. Arrow
	// function and class bodies are not visited, so they are not tagged.
	DoSourcemaps bool
	// StrictRewrites disables the "safe access on a bare identifier or
	// this" shortcut in the static member-expression rule.
	StrictRewrites bool
}

// DefaultConfig returns a Config wired to the shim identifier names used
// throughout scramjet-style deployments. Callers are free to override any
// field; nothing here is required by the rewriter itself beyond Encode
// being non-nil.
func DefaultConfig(encode func(string) string) Config {
	return Config{
		Prefix:          "/scramjet/",
		WrapFn:          "$scramjet$wrapfn",
		WrapThisFn:      "$scramjet$wrapthisfn",
		ImportFn:        "$scramjet$importfn",
		RewriteFn:       "$scramjet$rewritefn",
		SetRealmFn:      "$scramjet$setrealmfn",
		MetaFn:          "$scramjet$metafn",
		PushSourceMapFn: "$scramjet$pushsourcemapfn",
		Encode:          encode,
	}
}
