package registry

import (
	"slices"
	"testing"
)

func newTestRegistry(names ...string) *Registry {
	r := New()
	for _, n := range names {
		r.Add(&Type{Name: n})
	}
	return r
}

func TestAddFirstWins(t *testing.T) {
	r := New()
	if !r.Add(&Type{Name: "text/x-go", Comment: "Go source"}) {
		t.Fatal("first Add should succeed")
	}
	if r.Add(&Type{Name: "text/x-go", Comment: "Other"}) {
		t.Error("second Add of the same name should be rejected")
	}
	if r.Add(&Type{}) {
		t.Error("Add without a name should be rejected")
	}
	got, ok := r.Lookup("text/x-go")
	if !ok || got.Comment != "Go source" {
		t.Errorf("Lookup() = %+v, %v; want the first definition", got, ok)
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	r := New()
	r.Add(&Type{Name: "text/x-go", LocalizedComments: map[string]string{"de": "Go-Quelltext"}})
	r.AddPattern("text/x-go", "*.go")

	got, _ := r.Lookup("text/x-go")
	got.Patterns[0] = "*.changed"
	got.LocalizedComments["de"] = "changed"

	again, _ := r.Lookup("text/x-go")
	if again.Patterns[0] != "*.go" || again.LocalizedComments["de"] != "Go-Quelltext" {
		t.Errorf("Lookup() result aliases registry state: %+v", again)
	}
}

func TestNamesKeepRegistrationOrder(t *testing.T) {
	r := newTestRegistry("text/plain", "application/octet-stream", "image/png")
	want := []string{"text/plain", "application/octet-stream", "image/png"}
	if got := r.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestAliases(t *testing.T) {
	r := newTestRegistry("application/gzip")
	r.AddAlias("application/x-gzip", "application/gzip")
	r.AddAlias("application/x-gzip", "application/other")
	r.AddAlias("application/gzip", "application/gzip")

	if got := r.ResolveAlias("application/x-gzip"); got != "application/gzip" {
		t.Errorf("ResolveAlias() = %q", got)
	}
	if got := r.ResolveAlias("image/png"); got != "image/png" {
		t.Errorf("ResolveAlias(unknown) = %q, want unchanged", got)
	}
	if !r.Has("application/x-gzip") {
		t.Error("Has(alias) = false")
	}
	if got := r.Aliases("application/gzip"); !slices.Equal(got, []string{"application/x-gzip"}) {
		t.Errorf("Aliases() = %v", got)
	}
	if got, ok := r.Lookup("application/x-gzip"); !ok || got.Name != "application/gzip" {
		t.Errorf("Lookup(alias) = %+v, %v", got, ok)
	}
}

func TestFallbackParent(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"text/x-csrc", PlainText},
		{"text/plain", DefaultType},
		{"image/png", DefaultType},
		{"application/octet-stream", ""},
		{"inode/directory", ""},
		{"all/all", ""},
		{"fonts/package", ""},
		{"print/x-foo", ""},
		{"uri/mms", ""},
		{"x-content/video-dvd", DefaultType},
	}
	for _, tt := range tests {
		if got := FallbackParent(tt.name); got != tt.want {
			t.Errorf("FallbackParent(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestParents(t *testing.T) {
	r := newTestRegistry("image/svg+xml", "application/xml", "text/x-csrc")
	r.AddParent("image/svg+xml", "application/xml")
	r.AddParent("image/svg+xml", "application/xml")
	r.AddAlias("image/svg", "image/svg+xml")

	if got := r.Parents("image/svg"); !slices.Equal(got, []string{"application/xml"}) {
		t.Errorf("Parents(alias) = %v", got)
	}
	if got := r.Parents("text/x-csrc"); !slices.Equal(got, []string{"text/plain"}) {
		t.Errorf("Parents(text/x-csrc) = %v, want fallback", got)
	}
	if got := r.Parents("inode/directory"); got != nil {
		t.Errorf("Parents(inode/directory) = %v, want none", got)
	}
}

func TestInherits(t *testing.T) {
	r := newTestRegistry("text/x-c++src", "text/x-csrc", "text/plain", "application/octet-stream", "image/svg+xml", "application/xml")
	r.AddParent("text/x-c++src", "text/x-csrc")
	r.AddParent("image/svg+xml", "application/xml")
	r.AddAlias("text/x-c", "text/x-csrc")

	tests := []struct {
		name, ancestor string
		want           bool
	}{
		{"text/x-c++src", "text/x-c++src", true},
		{"nothing/known", "nothing/known", true},
		{"text/x-c++src", "text/x-csrc", true},
		{"text/x-c++src", "text/x-c", true},
		{"text/x-c++src", "text/plain", true},
		{"text/x-c++src", "application/octet-stream", true},
		{"image/svg+xml", "application/xml", true},
		{"image/svg+xml", "text/plain", false},
		{"text/x-csrc", "text/x-c++src", false},
		{"inode/directory", "application/octet-stream", false},
	}
	for _, tt := range tests {
		if got := r.Inherits(tt.name, tt.ancestor); got != tt.want {
			t.Errorf("Inherits(%q, %q) = %v, want %v", tt.name, tt.ancestor, got, tt.want)
		}
	}
}

func TestAllAncestors(t *testing.T) {
	r := newTestRegistry("image/svg+xml", "application/xml", "text/plain", "application/octet-stream")
	r.AddParent("image/svg+xml", "application/xml")
	r.AddParent("application/xml", "text/plain")

	want := []string{"application/xml", "text/plain", "application/octet-stream"}
	if got := r.AllAncestors("image/svg+xml"); !slices.Equal(got, want) {
		t.Errorf("AllAncestors() = %v, want %v", got, want)
	}
	if got := r.AllAncestors("application/octet-stream"); got != nil {
		t.Errorf("AllAncestors(default) = %v, want none", got)
	}
}

func TestAllAncestorsDefaultLast(t *testing.T) {
	r := newTestRegistry("application/x-multi", "application/x-a", "text/x-b")
	r.AddParent("application/x-multi", "application/octet-stream")
	r.AddParent("application/x-multi", "text/x-b")

	want := []string{"text/x-b", "text/plain", "application/octet-stream"}
	if got := r.AllAncestors("application/x-multi"); !slices.Equal(got, want) {
		t.Errorf("AllAncestors() = %v, want %v", got, want)
	}
}

func TestCyclesTerminate(t *testing.T) {
	r := newTestRegistry("x/a", "x/b", "x/c")
	r.AddParent("x/a", "x/b")
	r.AddParent("x/b", "x/c")
	r.AddParent("x/c", "x/a")

	if r.Inherits("x/a", "application/octet-stream") {
		t.Error("a closed cycle has no implicit parent")
	}
	if !r.Inherits("x/a", "x/c") {
		t.Error("Inherits(x/a, x/c) = false")
	}
	got := r.AllAncestors("x/a")
	want := []string{"x/b", "x/c"}
	if !slices.Equal(got, want) {
		t.Errorf("AllAncestors() = %v, want %v", got, want)
	}
}

func TestPatterns(t *testing.T) {
	r := newTestRegistry("text/x-go")
	r.AddPattern("text/x-go", "*.go")
	r.AddPattern("text/x-go", "*.go")
	r.AddPattern("unknown/type", "*.x")

	got, _ := r.Lookup("text/x-go")
	if !slices.Equal(got.Patterns, []string{"*.go"}) {
		t.Errorf("Patterns = %v", got.Patterns)
	}
	r.ResetPatterns("text/x-go")
	got, _ = r.Lookup("text/x-go")
	if len(got.Patterns) != 0 {
		t.Errorf("Patterns after reset = %v", got.Patterns)
	}
}
