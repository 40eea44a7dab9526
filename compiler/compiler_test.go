package compiler_test

import (
	"strings"
	"testing"

	"github.com/alecthomas/repr"
	"github.com/pontaoski/smplc/backend"
	"github.com/pontaoski/smplc/compiler"
	"github.com/pontaoski/smplc/errors"
	"github.com/ztrue/tracerr"
)

var sources = []compiler.Source{
	{Name: "geo.smpl", Text: `mod geo;
struct Point { x: int, y: int }
fn origin() -> Point { return init Point { x: 0, y: 0 }; }
`},
	{Name: "main.smpl", Text: `mod app;
use geo;
fn main() {
	let p: geo::Point = geo::origin();
	p.x = p.x + 1;
}
`},
}

func TestCompile(t *testing.T) {
	cases := []struct {
		id   int
		want string
	}{
		{0, "pub mod geo {"},
		{1, "define i32 @main()"},
		{2, "package main"},
	}

	for _, c := range cases {
		out, err := compiler.Compile(sources, c.id)
		if err != nil {
			t.Errorf("backend %d: %s", c.id, err)
			continue
		}
		if !strings.Contains(string(out), c.want) {
			t.Errorf("backend %d output lacks %q:\n%s", c.id, c.want, out)
		}
	}
}

func TestBackends(t *testing.T) {
	var names []string
	for _, e := range backend.List() {
		names = append(names, e.Generator.Name())
	}
	want := []string{"rust", "llvm", "golang"}
	if repr.String(names) != repr.String(want) {
		t.Errorf("got backends %s, want %s", repr.String(names), repr.String(want))
	}
}

func TestUnknownBackend(t *testing.T) {
	_, err := compiler.Compile(sources, 7)
	unknown, ok := tracerr.Unwrap(err).(errors.UnknownBackendError)
	if !ok {
		t.Fatalf("expected UnknownBackendError, got %v", err)
	}
	if unknown.ID != 7 || repr.String(unknown.Available) != repr.String([]int{0, 1, 2}) {
		t.Errorf("unexpected error contents: %s", repr.String(unknown))
	}
}

func TestErrorsPropagate(t *testing.T) {
	cases := []struct {
		src   string
		check func(error) bool
	}{
		{`fn main() { let x: int = ; }`, func(err error) bool {
			_, ok := err.(errors.ParseError)
			return ok
		}},
		{`fn main() { let x: int = 99999999999999999999; }`, func(err error) bool {
			_, ok := err.(errors.LexError)
			return ok
		}},
		{`use nowhere; fn main() {}`, func(err error) bool {
			_, ok := err.(errors.UnresolvedImportError)
			return ok
		}},
		{`fn main() { let x: int = true; }`, func(err error) bool {
			_, ok := err.(errors.TypeMismatchError)
			return ok
		}},
	}

	for _, c := range cases {
		_, err := compiler.Compile([]compiler.Source{{Name: "bad.smpl", Text: c.src}}, 0)
		if err = tracerr.Unwrap(err); !c.check(err) {
			t.Errorf("%s: unexpected error %T: %v", c.src, err, err)
		}
	}
}

func TestPreludeParses(t *testing.T) {
	m, err := compiler.Parse(compiler.Source{Name: compiler.PreludeFile, Text: compiler.Prelude})
	if err != nil {
		t.Fatal(err)
	}
	if m.ModuleName() != "std" {
		t.Errorf("prelude declares module %q", m.ModuleName())
	}
}
