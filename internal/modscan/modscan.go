// Package modscan finds the ECMAScript-module syntax spec.md §4.1 cares
// about — import declarations, export-from declarations, dynamic import(),
// and import.meta — via a single left-to-right scan of the raw source, and
// produces:
//
//   - the Replace edits for every module specifier string it finds, and
//   - a "neutralized" copy of the source, byte-for-byte the same length,
//     with every construct the structural parser (goja, script grammar
//     only) can't parse blanked out or swapped for a same-length sentinel.
//
// The neutralized copy exists purely so the structural visitor has
// something parseable to walk; every edit this package or the structural
// visitor emits always addresses the *original* source. See SPEC_FULL.md
// §3.1 for the rationale.
package modscan

import (
	"strconv"
	"strings"

	"github.com/cryguy/jsrewriter/internal/model"
	"github.com/cryguy/jsrewriter/internal/urlrewrite"
)

// SentinelDynamicImport is the 6-byte stand-in for the keyword "import"
// when it starts a dynamic import(...) call. Same length as "import" so
// every later offset in the neutralized buffer still lines up with the
// original source.
const SentinelDynamicImport = "Zimprt"

// SentinelImportMeta is the 11-byte stand-in for the "import.meta" meta
// property. Same length as "import.meta".
const SentinelImportMeta = "ZimportMeta"

// Result is what Scan found.
type Result struct {
	Edits       []model.Edit
	Neutralized []byte
	Diagnostics []model.Diagnostic
}

// Scan runs the module-syntax pass over source.
func Scan(source []byte, rw *urlrewrite.Rewriter) Result {
	s := &scanner{
		src:     source,
		n:       len(source),
		neutral: append([]byte(nil), source...),
		rw:      rw,
	}
	s.run()
	return Result{Edits: s.edits, Neutralized: s.neutral, Diagnostics: s.diags}
}

type scanner struct {
	src     []byte
	n       int
	neutral []byte
	rw      *urlrewrite.Rewriter
	edits   []model.Edit
	diags   []model.Diagnostic
}

func (s *scanner) run() {
	i := 0
	canRegex := true
	for i < s.n {
		c := s.src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f':
			i++
		case c == '/' && i+1 < s.n && s.src[i+1] == '/':
			i = s.skipLineComment(i)
		case c == '/' && i+1 < s.n && s.src[i+1] == '*':
			i = s.skipBlockComment(i)
		case c == '"' || c == '\'':
			_, end := s.skipString(i)
			i = end
			canRegex = false
		case c == '`':
			i = s.skipTemplate(i)
			canRegex = false
		case c == '/' && canRegex:
			i = s.skipRegex(i)
			canRegex = false
		case isIdentStart(c):
			word, end := readIdent(s.src, i)
			switch {
			case word == "import" && !prevIsDot(s.src, i):
				i, canRegex = s.handleImport(i, end)
			case word == "export" && !prevIsDot(s.src, i):
				i = s.handleExportDeclaration(i)
				canRegex = true
			default:
				i = end
				canRegex = false
			}
		default:
			i++
			canRegex = c != ')' && c != ']' && c != '}'
		}
	}
}

// handleImport dispatches on what follows the "import" keyword: a dynamic
// import(...) call, an import.meta meta property, or an import declaration.
func (s *scanner) handleImport(start, end int) (next int, canRegex bool) {
	after := s.skipSpaceAndComments(end)
	switch {
	case after < s.n && s.src[after] == '(':
		s.writeSentinel(start, end, SentinelDynamicImport)
		return end, false
	case after < s.n && s.src[after] == '.':
		if metaEnd, ok := s.matchMeta(after); ok {
			s.writeSentinel(start, metaEnd, SentinelImportMeta)
			return metaEnd, false
		}
		return end, false
	default:
		return s.handleImportDeclaration(start), true
	}
}

// handleImportDeclaration handles every import-declaration form: bare
// `import "x"`, `import Foo from "x"`, `import {a,b} from "x"`,
// `import * as ns from "x"`. All of them contain exactly one string
// literal (the specifier); the clause preceding it can't contain strings,
// comments aside, so scanning forward for the first quote is safe.
func (s *scanner) handleImportDeclaration(start int) int {
	j := start
	for j < s.n {
		c := s.src[j]
		switch {
		case c == '/' && j+1 < s.n && s.src[j+1] == '/':
			j = s.skipLineComment(j)
		case c == '/' && j+1 < s.n && s.src[j+1] == '*':
			j = s.skipBlockComment(j)
		case c == '"' || c == '\'':
			specSpan, end := s.skipString(j)
			stmtEnd := s.consumeTerminator(end)
			s.emitSpecifierEdit(specSpan)
			s.blankRange(start, stmtEnd)
			return stmtEnd
		case c == ';':
			return j + 1
		default:
			j++
		}
	}
	return j
}

func (s *scanner) handleExportDeclaration(start int) int {
	end := start + len("export")
	next := s.skipSpaceAndComments(end)
	switch {
	case next < s.n && s.src[next] == '*':
		return s.handleExportAll(start, next)
	case next < s.n && s.src[next] == '{':
		return s.handleExportNamed(start, next)
	case matchesWord(s.src, next, "default"):
		defEnd := next + len("default")
		s.blankRange(start, defEnd)
		return defEnd
	default:
		// Local declaration (export function/class/const/let/var/async
		// ...): only the "export" keyword is foreign to script grammar.
		s.blankRange(start, end)
		return end
	}
}

// handleExportAll covers `export * from "x"` and `export * as ns from "x"`.
func (s *scanner) handleExportAll(start, starPos int) int {
	j := s.skipSpaceAndComments(starPos + 1)
	if matchesWord(s.src, j, "as") {
		j = s.skipSpaceAndComments(j + 2)
		_, j = readIdent(s.src, j)
		j = s.skipSpaceAndComments(j)
	}
	if !matchesWord(s.src, j, "from") {
		s.blankRange(start, j)
		return j
	}
	j = s.skipSpaceAndComments(j + 4)
	if j >= s.n || (s.src[j] != '"' && s.src[j] != '\'') {
		s.blankRange(start, j)
		return j
	}
	specSpan, end := s.skipString(j)
	stmtEnd := s.consumeTerminator(end)
	s.emitSpecifierEdit(specSpan)
	s.blankRange(start, stmtEnd)
	return stmtEnd
}

// handleExportNamed covers `export { a, b };` (pure local re-export, no
// source) and `export { a, b } from "x";` (source-bearing).
func (s *scanner) handleExportNamed(start, bracePos int) int {
	closeBrace := s.skipBalanced(bracePos)
	j := s.skipSpaceAndComments(closeBrace)
	if !matchesWord(s.src, j, "from") {
		s.blankRange(start, start+len("export"))
		return closeBrace
	}
	j = s.skipSpaceAndComments(j + 4)
	if j >= s.n || (s.src[j] != '"' && s.src[j] != '\'') {
		s.blankRange(start, j)
		return j
	}
	specSpan, end := s.skipString(j)
	stmtEnd := s.consumeTerminator(end)
	s.emitSpecifierEdit(specSpan)
	s.blankRange(start, stmtEnd)
	return stmtEnd
}

// consumeTerminator returns the end of the statement given the position
// right after its closing specifier string: the position after a trailing
// ";" if one follows (skipping whitespace/comments), else the end of the
// string itself (ASI).
func (s *scanner) consumeTerminator(afterString int) int {
	j := s.skipSpaceAndComments(afterString)
	if j < s.n && s.src[j] == ';' {
		return j + 1
	}
	return afterString
}

// emitSpecifierEdit resolves the string literal at strSpan and, on
// success, appends the Replace edit for it. On resolution failure it
// attaches a diagnostic and leaves the specifier untouched in the output —
// the redesign spec.md §7/§9 recommends over the reference implementation's
// panic.
func (s *scanner) emitSpecifierEdit(strSpan model.Span) {
	value, ok := unquote(s.src[strSpan.Start:strSpan.End])
	if !ok {
		return
	}
	text, err := s.rw.Rewrite(value)
	if err != nil {
		s.diags = append(s.diags, model.Diagnostic{Severity: model.SeverityError, Text: err.Error()})
		return
	}
	s.edits = append(s.edits, model.NewReplace(strSpan, text))
}

func (s *scanner) writeSentinel(start, end int, name string) {
	copy(s.neutral[start:start+len(name)], name)
	s.blankRange(start+len(name), end)
}

func (s *scanner) blankRange(start, end int) {
	for k := start; k < end; k++ {
		if s.src[k] == '\n' {
			s.neutral[k] = '\n'
		} else {
			s.neutral[k] = ' '
		}
	}
}

func (s *scanner) matchMeta(dotPos int) (int, bool) {
	after := s.skipSpaceAndComments(dotPos + 1)
	word, end := readIdent(s.src, after)
	if word == "meta" {
		return end, true
	}
	return 0, false
}

func (s *scanner) skipSpaceAndComments(i int) int {
	for i < s.n {
		c := s.src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f':
			i++
		case c == '/' && i+1 < s.n && s.src[i+1] == '/':
			i = s.skipLineComment(i)
		case c == '/' && i+1 < s.n && s.src[i+1] == '*':
			i = s.skipBlockComment(i)
		default:
			return i
		}
	}
	return i
}

func (s *scanner) skipLineComment(i int) int {
	j := i + 2
	for j < s.n && s.src[j] != '\n' {
		j++
	}
	return j
}

func (s *scanner) skipBlockComment(i int) int {
	j := i + 2
	for j+1 < s.n {
		if s.src[j] == '*' && s.src[j+1] == '/' {
			return j + 2
		}
		j++
	}
	return s.n
}

func (s *scanner) skipString(i int) (model.Span, int) {
	quote := s.src[i]
	j := i + 1
	for j < s.n {
		c := s.src[j]
		if c == '\\' {
			j += 2
			continue
		}
		if c == quote {
			j++
			break
		}
		if c == '\n' {
			break
		}
		j++
	}
	return model.Span{Start: i, End: j}, j
}

// skipTemplate skips a full template literal starting at src[i]=='`',
// recursing into each ${...} substitution via skipBalanced so nested
// braces, strings, and templates inside it don't confuse the scan.
func (s *scanner) skipTemplate(i int) int {
	j := i + 1
	for j < s.n {
		c := s.src[j]
		switch {
		case c == '\\':
			j += 2
		case c == '`':
			return j + 1
		case c == '$' && j+1 < s.n && s.src[j+1] == '{':
			j = s.skipBalanced(j + 1)
		default:
			j++
		}
	}
	return j
}

// skipBalanced skips a brace-delimited region starting at src[i]=='{',
// returning the position right after the matching '}'. A dynamic
// import()/import.meta inside a template substitution is not recognized —
// a documented, narrow gap (SPEC_FULL.md §3.1).
func (s *scanner) skipBalanced(i int) int {
	depth := 0
	j := i
	for j < s.n {
		c := s.src[j]
		switch {
		case c == '{':
			depth++
			j++
		case c == '}':
			depth--
			j++
			if depth == 0 {
				return j
			}
		case c == '"' || c == '\'':
			_, end := s.skipString(j)
			j = end
		case c == '`':
			j = s.skipTemplate(j)
		case c == '/' && j+1 < s.n && s.src[j+1] == '/':
			j = s.skipLineComment(j)
		case c == '/' && j+1 < s.n && s.src[j+1] == '*':
			j = s.skipBlockComment(j)
		default:
			j++
		}
	}
	return j
}

func (s *scanner) skipRegex(i int) int {
	j := i + 1
	inClass := false
	for j < s.n {
		c := s.src[j]
		if c == '\\' {
			j += 2
			continue
		}
		if c == '[' {
			inClass = true
		} else if c == ']' {
			inClass = false
		} else if c == '/' && !inClass {
			j++
			break
		} else if c == '\n' {
			break
		}
		j++
	}
	for j < s.n && isIdentPart(s.src[j]) {
		j++
	}
	return j
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func readIdent(src []byte, i int) (string, int) {
	j := i
	for j < len(src) && isIdentPart(src[j]) {
		j++
	}
	return string(src[i:j]), j
}

func prevIsDot(src []byte, i int) bool {
	k := i - 1
	for k >= 0 && (src[k] == ' ' || src[k] == '\t' || src[k] == '\n' || src[k] == '\r') {
		k--
	}
	return k >= 0 && src[k] == '.'
}

func matchesWord(src []byte, pos int, word string) bool {
	if pos < 0 || pos+len(word) > len(src) {
		return false
	}
	if string(src[pos:pos+len(word)]) != word {
		return false
	}
	end := pos + len(word)
	return end >= len(src) || !isIdentPart(src[end])
}

// unquote decodes a JS string literal (including its quotes) into its
// string value, handling the common escape sequences. Not a fully
// spec-exact ECMAScript string-literal grammar (surrogate pairs written as
// two \u escapes are decoded independently rather than combined), which is
// acceptable for module specifiers in practice.
func unquote(lit []byte) (string, bool) {
	if len(lit) < 2 || lit[len(lit)-1] != lit[0] {
		return "", false
	}
	body := lit[1 : len(lit)-1]
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			break
		}
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '\n':
			// line continuation: emit nothing
		case 'x':
			if i+2 < len(body) {
				if v, err := strconv.ParseUint(string(body[i+1:i+3]), 16, 8); err == nil {
					b.WriteByte(byte(v))
					i += 2
				}
			}
		case 'u':
			if i+1 < len(body) && body[i+1] == '{' {
				end := i + 2
				for end < len(body) && body[end] != '}' {
					end++
				}
				if end < len(body) {
					if v, err := strconv.ParseUint(string(body[i+2:end]), 16, 32); err == nil {
						b.WriteRune(rune(v))
					}
					i = end
				}
			} else if i+4 < len(body) {
				if v, err := strconv.ParseUint(string(body[i+1:i+5]), 16, 16); err == nil {
					b.WriteRune(rune(v))
					i += 4
				}
			}
		default:
			b.WriteByte(body[i])
		}
	}
	return b.String(), true
}
