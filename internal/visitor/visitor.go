// Package visitor walks a parsed program exactly once, read-only, emitting
// edits into a model.EditSet per the per-node-kind policy in spec.md §4.1.
// It never reads the source back except to recover byte spans and, in a
// handful of narrow cases, short substrings used to classify a node more
// robustly than guessing at the parser's own token/wrapper taxonomy (the
// assignment operator text, and whether a call is optional-chained) — both
// read directly from source rather than from parser-internal enums, so the
// policy logic doesn't depend on exactly how the parser represents those
// internally.
package visitor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"

	"github.com/cryguy/jsrewriter/internal/model"
)

// Config is the visitor's view of the shim/flags surface (spec.md §3). The
// root package copies it field-by-field from the public rewriter.Config so
// this package never has to import the root package back.
type Config struct {
	WrapFn     string
	WrapThisFn string
	ImportFn   string
	RewriteFn  string
	SetRealmFn string
	MetaFn     string

	CaptureErrors  bool
	Scramitize     bool
	DoSourcemaps   bool
	StrictRewrites bool
}

// Visit walks program once and returns the accumulated edit set.
func Visit(program *ast.Program, src []byte, base *url.URL, cfg Config) *model.EditSet {
	v := &visitor{src: src, base: base, cfg: cfg, edits: model.NewEditSet()}
	for _, s := range program.Body {
		v.statement(s)
	}
	return v.edits
}

type visitor struct {
	src   []byte
	base  *url.URL
	cfg   Config
	edits *model.EditSet
}

func off(i file.Idx) int { return int(i) - 1 }

func (v *visitor) span(a, b file.Idx) model.Span { return model.Span{Start: off(a), End: off(b)} }

func (v *visitor) sourceAt(a, b file.Idx) string {
	s, e := off(a), off(b)
	if s < 0 || e > len(v.src) || s > e {
		return ""
	}
	return string(v.src[s:e])
}

func (v *visitor) insertBefore(idx file.Idx, text string) {
	p := off(idx)
	v.edits.Add(model.NewReplace(model.Span{Start: p, End: p}, text))
}

func (v *visitor) insertAfter(idx file.Idx, text string) {
	p := off(idx)
	v.edits.Add(model.NewReplace(model.Span{Start: p, End: p}, text))
}

// ---- statements ----

func (v *visitor) statement(s ast.Statement) {
	if s == nil {
		return
	}
	switch n := s.(type) {
	case *ast.BlockStatement:
		for _, c := range n.List {
			v.statement(c)
		}
	case *ast.ExpressionStatement:
		v.expression(n.Expression)
	case *ast.IfStatement:
		v.expression(n.Test)
		v.statement(n.Consequent)
		v.statement(n.Alternate)
	case *ast.ForStatement:
		v.forLoopInitializer(n.Initializer)
		v.expression(n.Test)
		v.expression(n.Update)
		v.statement(n.Body)
	case *ast.ForInStatement:
		// spec.md §4.1 "For-in / For-of statement": descend only into the
		// body; the binding and the iterable are both skipped.
		v.statement(n.Body)
	case *ast.ForOfStatement:
		v.statement(n.Body)
	case *ast.WhileStatement:
		v.expression(n.Test)
		v.statement(n.Body)
	case *ast.DoWhileStatement:
		v.expression(n.Test)
		v.statement(n.Body)
	case *ast.SwitchStatement:
		v.expression(n.Discriminant)
		for _, c := range n.Body {
			v.expression(c.Test)
			for _, stmt := range c.Consequent {
				v.statement(stmt)
			}
		}
	case *ast.TryStatement:
		v.statement(n.Body)
		if n.Catch != nil {
			v.catch(n.Catch)
		}
		v.statement(n.Finally)
	case *ast.ReturnStatement:
		// spec.md §4.1 "Return statement": descend only (reserved hook).
		v.expression(n.Argument)
	case *ast.ThrowStatement:
		v.expression(n.Argument)
	case *ast.LabelledStatement:
		v.statement(n.Statement)
	case *ast.WithStatement:
		v.expression(n.Object)
		v.statement(n.Body)
	case *ast.VariableStatement:
		for _, b := range n.List {
			v.binding(b)
		}
	case *ast.LexicalDeclaration:
		for _, b := range n.List {
			v.binding(b)
		}
	case *ast.FunctionDeclaration:
		v.functionLiteral(n.Function)
	case *ast.ClassDeclaration:
		// Class bodies are outside spec.md §4.1's node-kind table; left
		// unvisited, so nothing inside a class is rewritten.
	case *ast.DebuggerStatement:
		v.edits.Add(model.NewReplace(v.span(n.Idx0(), n.Idx1()), ""))
	default:
		// BadStatement, EmptyStatement, BranchStatement, etc: nothing to
		// rewrite.
	}
}

func (v *visitor) forLoopInitializer(init ast.ForLoopInitializer) {
	switch n := init.(type) {
	case *ast.ForLoopInitializerExpression:
		v.expression(n.Expression)
	case *ast.ForLoopInitializerVarDeclList:
		for _, b := range n.List {
			v.binding(b)
		}
	case *ast.ForLoopInitializerLexicalDecl:
		for _, b := range n.LexicalDeclaration.List {
			v.binding(b)
		}
	}
}

func (v *visitor) binding(b *ast.Binding) {
	if b == nil {
		return
	}
	// Only the initializer is a value-producing reference; the bound name
	// itself is a declaration, never rewritten (a local `let window = 1`
	// must shadow, not rewrite).
	v.expression(b.Initializer)
}

func (v *visitor) catch(c *ast.CatchStatement) {
	if c == nil {
		return
	}
	if v.cfg.CaptureErrors {
		if id, ok := c.Parameter.(*ast.Identifier); ok && c.Body != nil {
			// spec.md §4.1 "Try statement (debug builds only)": insert
			// $scramerr(name); immediately after the opening brace of the
			// catch body.
			v.insertAfter(c.Body.LeftBrace+1, fmt.Sprintf("$scramerr(%s);", string(id.Name)))
		}
	}
	v.statement(c.Body)
}

func (v *visitor) functionLiteral(f *ast.FunctionLiteral) {
	if f == nil {
		return
	}
	if f.ParameterList != nil {
		for _, b := range f.ParameterList.List {
			v.binding(b)
		}
	}
	if f.Body != nil {
		if v.cfg.DoSourcemaps {
			// spec.md §4.1 "Function body": tag every body with a
			// SourceTag before descending.
			v.edits.Add(model.NewSourceTag(off(f.Body.Idx0())))
		}
		for _, c := range f.Body.List {
			v.statement(c)
		}
	}
}

// ---- expressions ----

func (v *visitor) expression(e ast.Expression) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.Identifier:
		v.identifier(n)
	case *ast.ThisExpression:
		v.edits.Add(model.NewReplace(v.span(n.Idx0(), n.Idx1()), fmt.Sprintf("%s(this)", v.cfg.WrapThisFn)))
	case *ast.CallExpression:
		v.call(n)
	case *ast.NewExpression:
		v.newExpression(n)
	case *ast.DotExpression:
		v.dot(n)
	case *ast.BracketExpression:
		// spec.md §4.1: computed member expressions are not inspected
		// (documented speed-over-completeness trade-off) — still descend
		// into both sides for nested rewrites.
		v.expression(n.Left)
		v.expression(n.Member)
	case *ast.ObjectLiteral:
		v.object(n)
	case *ast.ArrayLiteral:
		for _, el := range n.Value {
			v.expression(el)
		}
	case *ast.AssignExpression:
		v.assign(n)
	case *ast.BinaryExpression:
		v.expression(n.Left)
		v.expression(n.Right)
	case *ast.UnaryExpression:
		v.unary(n)
	case *ast.ConditionalExpression:
		v.expression(n.Test)
		v.expression(n.Consequent)
		v.expression(n.Alternate)
	case *ast.SequenceExpression:
		for _, el := range n.Sequence {
			v.expression(el)
		}
	case *ast.FunctionLiteral:
		v.functionLiteral(n)
	case *ast.ClassLiteral:
		// see ClassDeclaration note: out of spec.md §4.1's scope.
	case *ast.TemplateLiteral:
		for _, el := range n.Expressions {
			v.expression(el)
		}
	case *ast.SpreadElement:
		v.expression(n.Expression)
	case *ast.VariableExpression:
		v.expression(n.Initializer)
	case *ast.OptionalChain:
		v.expression(n.Expression)
	case *ast.Optional:
		v.expression(n.Expression)
	default:
		// Any other node kind (e.g. arrow functions, await/yield
		// expressions) is not descended into; nothing inside it is
		// rewritten.
	}
}

func (v *visitor) identifier(id *ast.Identifier) {
	name := string(id.Name)
	switch name {
	case "ZimportMeta":
		v.edits.Add(model.NewReplace(v.span(id.Idx0(), id.Idx1()), fmt.Sprintf("%s(%q)", v.cfg.MetaFn, v.base.String())))
		return
	case "Zimprt":
		// Handled at the CallExpression site; a bare stray occurrence
		// (shouldn't happen — modscan only emits it right before a `(`)
		// falls through as an ordinary, non-unsafe identifier.
	}
	if model.IsUnsafeGlobal(name) {
		v.edits.Add(model.NewReplace(v.span(id.Idx0(), id.Idx1()), fmt.Sprintf("%s(%s)", v.cfg.WrapFn, name)))
	}
}

func (v *visitor) call(n *ast.CallExpression) {
	if id, ok := n.Callee.(*ast.Identifier); ok {
		switch string(id.Name) {
		case "eval":
			if !v.isOptionalCall(n) {
				v.directEval(n)
				return
			}
			// eval?.(...) is left to the generic identifier rewrite,
			// making it an indirect (and therefore harmless) eval.
		case "Zimprt":
			v.dynamicImport(n)
			return
		}
	}
	if v.cfg.Scramitize {
		v.insertBefore(n.Idx0(), " $scramitize(")
		v.insertAfter(n.Idx1(), ")")
	}
	v.expression(n.Callee)
	for _, a := range n.ArgumentList {
		v.expression(a)
	}
}

// isOptionalCall reports whether n is an optional call (`eval?.(...)`) by
// looking for "?." in the source between the callee and the opening
// parenthesis — avoids depending on exactly how the parser represents
// optional-chain wrapping internally.
func (v *visitor) isOptionalCall(n *ast.CallExpression) bool {
	return strings.Contains(v.sourceAt(n.Callee.Idx1(), n.LeftParenthesis), "?.")
}

// directEval implements spec.md §4.1 "Call expression" rule 1: rewrite
// `eval(args)` to `eval(REWRITEFN(args))` by replacing just the call's own
// parentheses, leaving the eval token and the argument source untouched so
// the call stays a syntactic direct eval.
func (v *visitor) directEval(n *ast.CallExpression) {
	open := n.LeftParenthesis
	close_ := n.RightParenthesis
	v.edits.Add(model.NewReplace(model.Span{Start: off(open), End: off(open) + 1}, fmt.Sprintf("(%s(", v.cfg.RewriteFn)))
	v.edits.Add(model.NewReplace(model.Span{Start: off(close_), End: off(close_) + 1}, "))"))
	for _, a := range n.ArgumentList {
		v.expression(a)
	}
}

// dynamicImport implements spec.md §4.1 "Import expression": replace the
// "Zimprt" sentinel (standing in for the original 6-byte "import" token,
// see internal/modscan) with the IMPORTFN call.
func (v *visitor) dynamicImport(n *ast.CallExpression) {
	id := n.Callee.(*ast.Identifier)
	v.edits.Add(model.NewReplace(v.span(id.Idx0(), id.Idx1()), fmt.Sprintf("(%s(%q))", v.cfg.ImportFn, v.base.String())))
	for _, a := range n.ArgumentList {
		v.expression(a)
	}
}

// newExpression implements spec.md §4.1 "New expression": rewrite only the
// identifier at the head of the callee chain, then descend into arguments.
func (v *visitor) newExpression(n *ast.NewExpression) {
	v.newCallee(n.Callee)
	for _, a := range n.ArgumentList {
		v.expression(a)
	}
}

// newCallee walks a.b.c down to the leaf identifier and rewrites it in
// place if unsafe, without touching the .b/.c member links — mirrors the
// original implementation's walk_member_expression helper (SPEC_FULL.md
// §4): a.b().c would parse differently, so only the plain dotted chain up
// to (never through) a call is considered the "callee".
//
// The leaf identifier gets its own parenthesized wrap rather than the
// generic identifier() rewrite: `new window.Foo(x)` must become
// `new (WRAPFN(window)).Foo(x)`, not `new WRAPFN(window).Foo(x)` (which
// reparses with `.Foo(x)` applying to WRAPFN's result but `new` binding to
// `WRAPFN` alone), and a bare `new top()` must become `new (WRAPFN(top))()`,
// not `new WRAPFN(top)()` (which reparses as `(new WRAPFN(top))()` — `new`
// then applies to WRAPFN, not to top).
func (v *visitor) newCallee(e ast.Expression) {
	switch n := e.(type) {
	case *ast.Identifier:
		name := string(n.Name)
		if name == "ZimportMeta" || !model.IsUnsafeGlobal(name) {
			v.identifier(n)
			return
		}
		v.edits.Add(model.NewReplace(v.span(n.Idx0(), n.Idx1()), fmt.Sprintf("(%s(%s))", v.cfg.WrapFn, name)))
	case *ast.DotExpression:
		v.newCallee(n.Left)
	case *ast.BracketExpression:
		v.newCallee(n.Left)
	default:
		// Any other head of the chain (a call, `this`, a literal, ...)
		// ends the walk without being visited.
	}
}

func (v *visitor) dot(n *ast.DotExpression) {
	name := string(n.Identifier.Name)
	idStart := n.Identifier.Idx
	idEnd := file.Idx(int(idStart) + len(name))

	if name == "postMessage" {
		v.edits.Add(model.NewReplace(v.span(idStart, idEnd), fmt.Sprintf("%s({}).postMessage", v.cfg.SetRealmFn)))
		v.expression(n.Left)
		return
	}

	if !v.cfg.StrictRewrites && !model.IsUnsafeGlobal(name) && isBareIdentOrThis(n.Left) {
		return
	}

	if v.cfg.Scramitize && !isImportMetaOrSuper(n.Left) {
		v.insertBefore(n.Left.Idx0(), " $scramitize(")
		v.insertAfter(n.Left.Idx1(), ")")
	}
	v.expression(n.Left)
}

func isBareIdentOrThis(e ast.Expression) bool {
	switch e.(type) {
	case *ast.Identifier, *ast.ThisExpression:
		return true
	}
	return false
}

func isImportMetaOrSuper(e ast.Expression) bool {
	switch n := e.(type) {
	case *ast.SuperExpression:
		return true
	case *ast.Identifier:
		return string(n.Name) == "ZimportMeta"
	}
	return false
}

func (v *visitor) object(n *ast.ObjectLiteral) {
	for _, p := range n.Value {
		if short, ok := p.(*ast.PropertyShort); ok && model.IsUnsafeGlobal(string(short.Name.Name)) {
			name := string(short.Name.Name)
			v.edits.Add(model.NewReplace(
				v.span(short.Name.Idx, file.Idx(int(short.Name.Idx)+len(name))),
				fmt.Sprintf("%s: (%s(%s))", name, v.cfg.WrapFn, name),
			))
			// spec.md §9 "Object-expression early exit": stop walking
			// this object literal entirely after the first match.
			return
		}
		v.property(p)
	}
}

func (v *visitor) property(p ast.Property) {
	switch n := p.(type) {
	case *ast.PropertyShort:
		v.expression(n.Initializer)
	case *ast.PropertyKeyed:
		if n.Computed {
			v.expression(n.Key)
		}
		v.expression(n.Value)
	case *ast.SpreadElement:
		v.expression(n.Expression)
	}
}

func (v *visitor) assign(n *ast.AssignExpression) {
	if id, ok := n.Left.(*ast.Identifier); ok && model.IsUnsafeAssignmentTarget(string(id.Name)) {
		op := strings.TrimSpace(v.sourceAt(n.Left.Idx1(), n.Right.Idx0()))
		v.edits.Add(model.NewAssignment(string(id.Name), v.span(n.Idx0(), n.Idx1()), v.span(n.Right.Idx0(), n.Right.Idx1()), op))
		return
	}
	if _, ok := n.Left.(*ast.ArrayLiteral); ok {
		// spec.md §4.1 / §9: array-destructuring assignment targets are
		// ignored entirely.
		return
	}
	if _, ok := n.Left.(*ast.Identifier); !ok {
		v.expression(n.Left)
	}
	v.expression(n.Right)
}

func (v *visitor) unary(u *ast.UnaryExpression) {
	if u.Postfix {
		// Update expression (x++ / x--): never descend.
		return
	}
	word := leadingWord(v.sourceAt(u.Idx0(), u.Idx1()))
	switch word {
	case "typeof":
		// Stop descent: typeof on an unsafe global must keep reporting
		// "undefined", not throw.
		return
	case "++", "--":
		// Prefix update expression: never descend.
		return
	}
	v.expression(u.Operand)
}

func leadingWord(s string) string {
	s = strings.TrimLeft(s, " \t\r\n")
	if strings.HasPrefix(s, "++") || strings.HasPrefix(s, "--") {
		return s[:2]
	}
	i := 0
	for i < len(s) && (s[i] == '_' || s[i] == '$' || (s[i] >= 'a' && s[i] <= 'z') || (s[i] >= 'A' && s[i] <= 'Z')) {
		i++
	}
	return s[:i]
}
