package splicer

import (
	"strings"
	"testing"

	"github.com/cryguy/jsrewriter/internal/model"
)

func TestSplice_ReplaceOnly(t *testing.T) {
	src := []byte("window.foo")
	edits := []model.Edit{
		model.NewReplace(model.Span{Start: 0, End: 6}, "(WRAPFN(window))"),
	}
	out, err := Splice(src, edits, Options{})
	if err != nil {
		t.Fatalf("Splice: %v", err)
	}
	want := "(WRAPFN(window)).foo"
	if string(out) != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSplice_Assignment(t *testing.T) {
	src := []byte(`location = "u"`)
	edits := []model.Edit{
		model.NewAssignment("location", model.Span{Start: 0, End: 14}, model.Span{Start: 11, End: 14}, "="),
	}
	out, err := Splice(src, edits, Options{})
	if err != nil {
		t.Fatalf("Splice: %v", err)
	}
	want := `((t)=>$scramjet$tryset(location,"=",t)||(location =t))("u")`
	if string(out) != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSplice_SourceTagInsertion(t *testing.T) {
	src := []byte("function f() {}")
	brace := strings.Index(string(src), "{")
	edits := []model.Edit{model.NewSourceTag(brace)}
	out, err := Splice(src, edits, Options{DoSourceMaps: false})
	if err != nil {
		t.Fatalf("Splice: %v", err)
	}
	want := "function f() /*scramtag 13 */{}"
	if string(out) != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSplice_OutOfBoundsOverlap(t *testing.T) {
	src := []byte("abcdef")
	edits := []model.Edit{
		model.NewReplace(model.Span{Start: 2, End: 4}, "X"),
		model.NewReplace(model.Span{Start: 3, End: 5}, "Y"), // overlaps the previous edit
	}
	_, err := Splice(src, edits, Options{})
	if err == nil {
		t.Fatal("expected an out-of-bounds error for overlapping edits")
	}
}

func TestSplice_SourceMapPrelude(t *testing.T) {
	src := []byte("window")
	edits := []model.Edit{model.NewReplace(model.Span{Start: 0, End: 6}, "(WRAPFN(window))")}
	out, err := Splice(src, edits, Options{DoSourceMaps: true, PushSourceMapFn: "PUSHSOURCEMAPFN", SourceTag: "t1"})
	if err != nil {
		t.Fatalf("Splice: %v", err)
	}
	got := string(out)
	if !strings.HasPrefix(got, `PUSHSOURCEMAPFN([["window",0,16],],"t1");`+"\n") {
		t.Errorf("unexpected source map prelude: %q", got)
	}
	if !strings.HasSuffix(got, "(WRAPFN(window))") {
		t.Errorf("rewritten body missing from output: %q", got)
	}
}

func TestJSONEscape(t *testing.T) {
	got := jsonEscape("a\"b\\c\nd")
	want := `a\"b\\c\nd`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
