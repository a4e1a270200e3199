// Package smoketest executes rewritten output inside a real embedded
// JavaScript engine to check invariant P2 (spec.md §8) — parse stability —
// empirically, beyond re-parsing with the same structural parser. Grounded
// on internal/quickjs/pool.go's newQJSWorker: construct a VM, evaluate, free
// the result, check for error. Test-only; never imported by rewriter.go.
package smoketest

import (
	"fmt"

	"modernc.org/quickjs"
)

// shimJS is a no-op implementation of every runtime-shim call the
// rewriter's output can reference (spec.md §6), just enough to let
// rewritten output execute in an engine with no real sandbox behind it.
const shimJS = `
function $scramjet$wrapfn(v) { return v; }
function $scramjet$wrapthisfn(v) { return v; }
function $scramjet$importfn(base) { return function(spec) { return Promise.resolve({}); }; }
function $scramjet$rewritefn(src) { return src; }
function $scramjet$setrealmfn(v) { return v; }
function $scramjet$metafn(base) { return {}; }
function $scramjet$pushsourcemapfn(entries, tag) {}
function $scramitize(v) { return v; }
function $scramerr(e) {}
function $scramjet$tryset(name, op, value) { return false; }
`

// Run evaluates shimJS followed by rewritten inside a fresh QuickJS VM and
// reports whether it threw. A thrown SyntaxError means the rewrite
// corrupted the program (invariant P2); any other thrown error is still
// reported but is as likely to be an unrelated runtime error in the sample
// script as a rewriter bug.
func Run(rewritten string) error {
	vm, err := quickjs.NewVM()
	if err != nil {
		return fmt.Errorf("smoketest: creating VM: %w", err)
	}
	defer vm.Close()

	v, err := vm.EvalValue(shimJS, quickjs.EvalGlobal)
	if err != nil {
		return fmt.Errorf("smoketest: loading shim: %w", err)
	}
	v.Free()

	v, err = vm.EvalValue(rewritten, quickjs.EvalGlobal)
	if err != nil {
		return fmt.Errorf("smoketest: evaluating rewritten output: %w", err)
	}
	v.Free()
	return nil
}
