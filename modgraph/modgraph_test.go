package modgraph

import (
	"testing"

	"github.com/alecthomas/repr"
	"github.com/pontaoski/smplc/ast"
	"github.com/pontaoski/smplc/errors"
	"github.com/pontaoski/smplc/parser"
	"github.com/ztrue/tracerr"
)

func parseAll(t *testing.T, srcs ...string) []*ast.Module {
	t.Helper()
	var ret []*ast.Module
	for _, src := range srcs {
		m, err := parser.Parse(src, "test.smpl")
		if err != nil {
			t.Fatalf("parse: %s", err)
		}
		ret = append(ret, m)
	}
	return ret
}

func TestBuild(t *testing.T) {
	g, err := Build(parseAll(t,
		"mod std; opaque Option(type T); builtin fn some(type T)(v: T) -> Option(type T);",
		"mod geo; struct Point { x: int, y: int } fn origin() -> Point { return init Point { x: 0, y: 0 }; }",
		"use geo; fn main() {}",
	)...)
	if err != nil {
		t.Fatal(err)
	}

	if g.Modules[0].Name != PreludeName || !g.Modules[0].Prelude {
		t.Fatalf("prelude is not first: %s", repr.String(g.Modules[0].Name))
	}

	main, ok := g.Module("main")
	if !ok {
		t.Fatal("module main missing")
	}
	if len(main.Uses) != 1 || main.Uses[0].Name != "geo" {
		t.Fatalf("unexpected uses %v", main.Uses)
	}

	for _, name := range []string{"Point", "origin", "main", "some", "Option"} {
		if _, ok := g.Lookup(main, []string{name}); !ok {
			t.Errorf("%s is not visible in main", name)
		}
	}

	e, ok := g.Lookup(main, []string{"geo", "Point"})
	if !ok || e.Module.Name != "geo" {
		t.Errorf("qualified lookup failed")
	}

	geo, _ := g.Module("geo")
	if _, ok := g.Lookup(geo, []string{"main"}); ok {
		t.Errorf("main leaked into geo without a use")
	}
	if _, ok := g.Lookup(geo, []string{"main", "main"}); !ok {
		t.Errorf("qualified lookup should reach modules that are not used")
	}
	if _, ok := g.Lookup(geo, []string{"nope", "main"}); ok {
		t.Errorf("lookup through an unknown module succeeded")
	}
}

func TestShadowing(t *testing.T) {
	g, err := Build(parseAll(t,
		"mod std; fn helper() {}",
		"mod a; fn helper() -> int { return 1; } fn shared() {}",
		"mod b; fn shared() {}",
		"mod c; use a; fn shared() {} fn main() {}",
		"mod d; use a; use b; fn shared() {}",
	)...)
	if err != nil {
		t.Fatal(err)
	}

	c, _ := g.Module("c")
	if e, _ := g.Lookup(c, []string{"helper"}); e.Module.Name != "a" {
		t.Errorf("used module should shadow the prelude, got %s", e.Module.Name)
	}
	if e, _ := g.Lookup(c, []string{"shared"}); e.Module.Name != "c" {
		t.Errorf("own item should shadow imports, got %s", e.Module.Name)
	}

	d, _ := g.Module("d")
	if e, _ := g.Lookup(d, []string{"shared"}); e.Module.Name != "d" {
		t.Errorf("own item should win over conflicting imports, got %s", e.Module.Name)
	}
}

func TestBuildErrors(t *testing.T) {
	cases := []struct {
		name  string
		srcs  []string
		check func(error) bool
	}{
		{
			"unresolved import",
			[]string{"use missing; fn main() {}"},
			func(err error) bool { e, ok := err.(errors.UnresolvedImportError); return ok && e.Module == "missing" },
		},
		{
			"duplicate module",
			[]string{"mod a;", "mod a;"},
			func(err error) bool { e, ok := err.(errors.DuplicateModuleError); return ok && e.Name == "a" },
		},
		{
			"two unnamed files",
			[]string{"fn main() {}", "fn other() {}"},
			func(err error) bool { e, ok := err.(errors.DuplicateModuleError); return ok && e.Name == "main" },
		},
		{
			"duplicate item",
			[]string{"struct A {} fn A() {}"},
			func(err error) bool { e, ok := err.(errors.DuplicateDeclarationError); return ok && e.Name == "A" },
		},
		{
			"conflicting imports",
			[]string{"mod a; fn f() {}", "mod b; fn f() {}", "use a; use b; fn main() {}"},
			func(err error) bool { e, ok := err.(errors.DuplicateDeclarationError); return ok && e.Name == "f" },
		},
		{
			"repeated use",
			[]string{"mod a;", "use a; use a;"},
			func(err error) bool { e, ok := err.(errors.DuplicateDeclarationError); return ok && e.Name == "a" },
		},
	}

	for _, c := range cases {
		_, err := Build(parseAll(t, c.srcs...)...)
		if err == nil {
			t.Errorf("%s: expected an error", c.name)
			continue
		}
		if !c.check(tracerr.Unwrap(err)) {
			t.Errorf("%s: unexpected error %s", c.name, repr.String(tracerr.Unwrap(err)))
		}
	}
}
