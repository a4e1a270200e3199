// Package rewriter rewrites arbitrary JavaScript so it can run inside a
// browser-based sandbox/proxy that intercepts navigation, globals, and
// module loading.
//
// It is a single-pass, read-only AST visit over a parsed program that
// accumulates an ordered set of textual edits, followed by a linear splice
// pass that materializes the rewritten bytes (and, optionally, a parallel
// source-map prelude). The rewriter never reformats or minifies its input:
// every byte not touched by an edit is copied through verbatim.
package rewriter
