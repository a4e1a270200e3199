// Package splicer applies a frozen, sorted edit set to the original source
// bytes, producing the rewritten output and (optionally) a parallel
// source-map prelude (spec.md §4.2).
package splicer

import (
	"fmt"
	"strings"

	"github.com/cryguy/jsrewriter/internal/model"
)

// Options controls the source-map side channel.
type Options struct {
	DoSourceMaps    bool
	PushSourceMapFn string
	SourceTag       string
}

// Splice walks edits (already sorted by primary offset) over source and
// returns the rewritten bytes. If opts.DoSourceMaps is set, the returned
// buffer is prefixed with the source-map prelude described in spec.md §4.2.
func Splice(source []byte, edits []model.Edit, opts Options) ([]byte, error) {
	out := make([]byte, 0, estimateSize(source, edits))

	var sourceMap []byte
	if opts.DoSourceMaps {
		sourceMap = make([]byte, 0, estimateSize(source, edits)*2)
		sourceMap = append(sourceMap, opts.PushSourceMapFn...)
		sourceMap = append(sourceMap, "(["...)
	}

	offset := 0
	for _, e := range edits {
		switch e.Kind {
		case model.EditReplace:
			start, end := e.Span.Start, e.Span.End
			if start < offset || end > len(source) || start > end {
				return nil, fmt.Errorf("%w: replace span [%d,%d) offset=%d len=%d", errOOB, start, end, offset, len(source))
			}
			if opts.DoSourceMaps {
				spliced := source[start:end]
				sourceMap = append(sourceMap, '[')
				sourceMap = append(sourceMap, '"')
				sourceMap = append(sourceMap, jsonEscape(string(spliced))...)
				sourceMap = append(sourceMap, '"', ',')
				sourceMap = appendInt(sourceMap, start)
				sourceMap = append(sourceMap, ',')
				sourceMap = appendInt(sourceMap, start+len(e.Text))
				sourceMap = append(sourceMap, ']', ',')
			}

			out = append(out, source[offset:start]...)
			out = append(out, e.Text...)
			offset = end

		case model.EditAssignment:
			start, end := e.EntireSpan.Start, e.EntireSpan.End
			if start < offset || end > len(source) || start > end {
				return nil, fmt.Errorf("%w: assignment span [%d,%d) offset=%d len=%d", errOOB, start, end, offset, len(source))
			}
			rhsStart, rhsEnd := e.RHSSpan.Start, e.RHSSpan.End
			if rhsStart < 0 || rhsEnd > len(source) || rhsStart > rhsEnd {
				return nil, fmt.Errorf("%w: rhs span [%d,%d)", errOOB, rhsStart, rhsEnd)
			}

			out = append(out, source[offset:start]...)
			out = append(out, assignmentTemplate(e.Name, e.Op, string(source[rhsStart:rhsEnd]))...)
			offset = end

		case model.EditSourceTag:
			start := e.TagStart
			if start < offset || start > len(source) {
				return nil, fmt.Errorf("%w: source tag at %d offset=%d len=%d", errOOB, start, offset, len(source))
			}
			out = append(out, source[offset:start]...)
			out = append(out, fmt.Sprintf("/*scramtag %d %s*/", start, opts.SourceTag)...)
			offset = start // insertion, not replacement

		default:
			return nil, fmt.Errorf("splicer: unknown edit kind %d", e.Kind)
		}
	}
	out = append(out, source[offset:]...)

	if opts.DoSourceMaps {
		sourceMap = append(sourceMap, "],"...)
		sourceMap = append(sourceMap, '"')
		sourceMap = append(sourceMap, opts.SourceTag...)
		sourceMap = append(sourceMap, "\");\n"...)
		sourceMap = append(sourceMap, out...)
		return sourceMap, nil
	}
	return out, nil
}

// assignmentTemplate builds the guarded-assignment replacement text
// described in spec.md §4.1 "Assignment template":
//
//	((t)=>$scramjet$tryset(NAME,"OP",t)||(NAME OP t))(RHS)
func assignmentTemplate(name, op, rhs string) string {
	var b strings.Builder
	b.WriteString("((t)=>$scramjet$tryset(")
	b.WriteString(name)
	b.WriteString(",\"")
	b.WriteString(op)
	b.WriteString("\",t)||(")
	b.WriteString(name)
	b.WriteString(" ")
	b.WriteString(op)
	b.WriteString("t))(")
	b.WriteString(rhs)
	b.WriteByte(')')
	return b.String()
}

// estimateSize computes the §4.2 "size estimation" byte-delta hint. It is
// only a pre-sizing hint — under- or over-estimation is tolerated, actual
// output length is whatever the edits produce.
func estimateSize(source []byte, edits []model.Edit) int {
	size := len(source)
	for _, e := range edits {
		switch e.Kind {
		case model.EditReplace:
			size += len(e.Text) - (e.Span.End - e.Span.Start)
		case model.EditAssignment:
			size += (e.EntireSpan.End - e.EntireSpan.Start) + len(e.Name) + 10
		}
	}
	if size < 0 {
		size = len(source)
	}
	return size
}

func appendInt(b []byte, n int) []byte {
	return append(b, fmt.Sprintf("%d", n)...)
}

// jsonEscape implements the minimal JSON string escape spec.md §4.2
// requires: only the seven named sequences; everything else passes through
// verbatim (including non-ASCII — the source map is consumed by a JS
// runtime that reads UTF-8 natively).
func jsonEscape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
