package urlrewrite

import (
	"net/url"
	"testing"
)

func base(t *testing.T) *url.URL {
	t.Helper()
	u, err := url.Parse("https://h/dir/page.js")
	if err != nil {
		t.Fatalf("parsing base: %v", err)
	}
	return u
}

func identity(s string) string { return s }

func TestRewrite_PathRelative(t *testing.T) {
	r := &Rewriter{Base: base(t), Prefix: "/x/", Encode: identity}
	got, err := r.Rewrite("./a.js")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	want := `"/x/https://h/dir/a.js"`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRewrite_Absolute(t *testing.T) {
	r := &Rewriter{Base: base(t), Prefix: "/x/", Encode: identity}
	got, err := r.Rewrite("https://other/b.js")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	want := `"/x/https://other/b.js"`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRewrite_SchemeRelative(t *testing.T) {
	r := &Rewriter{Base: base(t), Prefix: "/x/", Encode: identity}
	got, err := r.Rewrite("//other/c.js")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	want := `"/x/https://other/c.js"`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRewrite_AppliesEncode(t *testing.T) {
	r := &Rewriter{Base: base(t), Prefix: "/x/", Encode: func(s string) string { return "ENC(" + s + ")" }}
	got, err := r.Rewrite("./a.js")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	want := `"/x/ENC(https://h/dir/a.js)"`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRewrite_NilEncodeIsError(t *testing.T) {
	r := &Rewriter{Base: base(t), Prefix: "/x/"}
	if _, err := r.Rewrite("./a.js"); err == nil {
		t.Fatal("expected an error for nil Encode")
	}
}

func TestRewrite_InvalidSpecifierIsRecoverableError(t *testing.T) {
	r := &Rewriter{Base: base(t), Prefix: "/x/", Encode: identity}
	// A control character is rejected by net/url.Parse but must not panic.
	if _, err := r.Rewrite("\x7f://bad"); err == nil {
		t.Fatal("expected a resolution error, got nil")
	}
}
