package sema_test

import (
	"strings"
	"testing"

	"github.com/alecthomas/repr"
	"github.com/pontaoski/smplc/ast"
	"github.com/pontaoski/smplc/compiler"
	"github.com/pontaoski/smplc/errors"
	"github.com/pontaoski/smplc/sema"
	"github.com/ztrue/tracerr"
)

func check(srcs ...string) (*sema.Program, error) {
	var sources []compiler.Source
	for i, src := range srcs {
		sources = append(sources, compiler.Source{Name: "file" + string(rune('a'+i)) + ".smpl", Text: src})
	}
	prog, err := compiler.Check(sources)
	return prog, tracerr.Unwrap(err)
}

func mustCheck(t *testing.T, srcs ...string) *sema.Program {
	t.Helper()
	prog, err := check(srcs...)
	if err != nil {
		t.Fatalf("check failed: %s", err)
	}
	return prog
}

func findLet(prog *sema.Program, module, fn, name string) *ast.LetStmt {
	var found *ast.LetStmt
	var walk func(b *ast.Block)
	walk = func(b *ast.Block) {
		for _, stmt := range b.Stmts {
			switch st := stmt.(type) {
			case *ast.LetStmt:
				if st.Name.Name == name && found == nil {
					found = st
				}
			case *ast.Block:
				walk(st)
			case *ast.IfStmt:
				for _, br := range st.Branches {
					walk(br.Body)
				}
				if st.Else != nil {
					walk(st.Else)
				}
			case *ast.WhileStmt:
				walk(st.Body)
			}
		}
	}
	for _, f := range prog.Module(module).Functions {
		if f.Name == fn && f.Decl != nil {
			walk(f.Decl.Body)
		}
	}
	return found
}

func TestStructInitScenario(t *testing.T) {
	prog := mustCheck(t, `
		struct Point { x: int, y: int }
		fn main() { let p: Point = init Point { x: 5, y: 10 }; }
	`)

	let := findLet(prog, "main", "main", "p")
	point := prog.Module("main").Structs[0]
	if got := prog.Info.Types[let.Value]; got != point {
		t.Fatalf("p has type %v, want %v", got, point)
	}
	if local, ok := prog.Info.Defs[let.Name].(*sema.Local); !ok || local.Type != point {
		t.Errorf("p is not defined as a Point local")
	}
	if prog.Info.Inits[let.Value.(*ast.StructInit)] != point {
		t.Errorf("struct init not recorded")
	}
	if prog.Main == nil || prog.Main.Name != "main" {
		t.Errorf("main not found")
	}
}

func TestUnwrapScenario(t *testing.T) {
	prog := mustCheck(t, `fn main() { let v: int = unwrap(type int)(some(type int)(5)); }`)

	let := findLet(prog, "main", "main", "v")
	call := let.Value.(*ast.FnCall)
	if got := prog.Info.Types[call]; got != sema.Int {
		t.Fatalf("unwrap(...) has type %v", got)
	}
	resolved := prog.Info.Calls[call]
	if resolved.Func.Intrinsic != sema.Unwrap || !resolved.Func.IsBuiltin() {
		t.Errorf("unwrap resolved to %s", repr.String(resolved.Func.Name))
	}
	inner := prog.Info.Types[call.Args[0]]
	if elem, ok := sema.OptionElem(inner); !ok || elem != sema.Int {
		t.Errorf("some(type int)(5) has type %v", inner)
	}
}

func TestErrorScenarios(t *testing.T) {
	cases := []struct {
		name  string
		srcs  []string
		check func(error) bool
	}{
		{
			"too many type arguments",
			[]string{`fn f(type T)(x: T) -> T { return x; } fn main() { f(type int, string)(5); }`},
			func(err error) bool {
				e, ok := err.(errors.ArityMismatchError)
				return ok && e.Kind == errors.TypeArguments && e.Expected == 1 && e.Found == 2
			},
		},
		{
			"missing field",
			[]string{`struct Point { x: int, y: int } fn main() { let p: Point = init Point { x: 5 }; }`},
			func(err error) bool {
				e, ok := err.(errors.MissingFieldError)
				return ok && len(e.Fields) == 1 && e.Fields[0] == "y"
			},
		},
		{
			"unresolved import",
			[]string{`use elsewhere; fn main() {}`},
			func(err error) bool { e, ok := err.(errors.UnresolvedImportError); return ok && e.Module == "elsewhere" },
		},
	}

	for _, c := range cases {
		_, err := check(c.srcs...)
		if err == nil {
			t.Errorf("%s: expected an error", c.name)
			continue
		}
		if !c.check(err) {
			t.Errorf("%s: unexpected error %s", c.name, repr.String(err))
		}
	}
}

func TestSelfReferentialShadow(t *testing.T) {
	prog := mustCheck(t, `fn f(a: int) -> int { let a: int = a; return a; } fn main() {}`)

	f := prog.Module("main").Functions[0]
	let := findLet(prog, "main", "f", "a")
	read := let.Value.(*ast.Binding)
	if prog.Info.Uses[read] != f.Params[0] {
		t.Fatalf("initializer reads %s, want the parameter", repr.String(prog.Info.Uses[read]))
	}
	inner := prog.Info.Defs[let.Name].(*sema.Local)
	if inner == f.Params[0] || inner.ID == f.Params[0].ID {
		t.Errorf("let a did not create a fresh binding")
	}
	ret := f.Decl.Body.Stmts[1].(*ast.ReturnStmt).Value.(*ast.Binding)
	if prog.Info.Uses[ret] != inner {
		t.Errorf("return reads the outer a")
	}
}

func TestScoping(t *testing.T) {
	_, err := check(`fn main() { { let x: int = 1; } let y: int = x; }`)
	if e, ok := err.(errors.UndefinedSymbolError); !ok || e.Name != "x" {
		t.Errorf("inner binding leaked: %v", err)
	}

	prog := mustCheck(t, `fn f(a: int) -> int { if true { let a: bool = false; } return a; } fn main() {}`)
	f := prog.Module("main").Functions[0]
	ret := f.Decl.Body.Stmts[1].(*ast.ReturnStmt).Value.(*ast.Binding)
	if prog.Info.Uses[ret] != f.Params[0] {
		t.Errorf("shadowing in an inner block changed the outer binding")
	}

	_, err = check(`fn main() { let x: int = 1; let x: int = 2; }`)
	if _, ok := err.(errors.DuplicateDeclarationError); !ok {
		t.Errorf("same-scope redeclaration: %v", err)
	}

	_, err = check(`fn f(a: int, a: int) {} fn main() {}`)
	if _, ok := err.(errors.DuplicateDeclarationError); !ok {
		t.Errorf("duplicate parameter: %v", err)
	}
}

// walkExprs calls f for every expression in b.
func walkExprs(b *ast.Block, f func(ast.Expr)) {
	var expr func(e ast.Expr)
	expr = func(e ast.Expr) {
		f(e)
		switch ex := e.(type) {
		case *ast.FieldAccess:
			expr(ex.Base)
		case *ast.FnCall:
			for _, arg := range ex.Args {
				expr(arg)
			}
		case *ast.StructInit:
			for _, fi := range ex.Fields {
				expr(fi.Value)
			}
		case *ast.UnaryExpr:
			expr(ex.X)
		case *ast.BinaryExpr:
			expr(ex.Left)
			expr(ex.Right)
		case *ast.ParenExpr:
			expr(ex.X)
		case *ast.ArrayLit:
			for _, el := range ex.Elems {
				expr(el)
			}
		case *ast.ArrayRepeat:
			expr(ex.Value)
		case *ast.IndexExpr:
			expr(ex.Base)
			expr(ex.Index)
		}
	}
	var block func(b *ast.Block)
	block = func(b *ast.Block) {
		for _, stmt := range b.Stmts {
			switch st := stmt.(type) {
			case *ast.LetStmt:
				expr(st.Value)
			case *ast.AssignStmt:
				expr(st.Target)
				expr(st.Value)
			case *ast.IfStmt:
				for _, br := range st.Branches {
					expr(br.Cond)
					block(br.Body)
				}
				if st.Else != nil {
					block(st.Else)
				}
			case *ast.WhileStmt:
				expr(st.Cond)
				block(st.Body)
			case *ast.ReturnStmt:
				if st.Value != nil {
					expr(st.Value)
				}
			case *ast.ExprStmt:
				expr(st.X)
			case *ast.Block:
				block(st)
			}
		}
	}
	block(b)
}

const soundSource = `
mod shapes;

struct Point { x: int, y: int }
struct Line { from: Point, to: Point, label: Option(type string) }

fn pick(type T)(a: T, b: T, first: bool) -> T {
	if first {
		return a;
	}
	return b;
}

fn double(x: int) -> int { return x * 2; }

fn length(l: Line) -> float {
	let dx: int = l.to.x - l.from.x;
	let scale: fn(int) -> int = double;
	let dy: int = scale(l.to.y - l.from.y);
	let pts: [Point; 2] = [l.from, l.to];
	let zeros: [float; 3] = [0.0; 3];
	let total: float = zeros[0] + 1.5;
	let maybe: Option(type int) = map(type int, int)(some(type int)(dx), double);
	let fallback: int = expect(type int)(maybe, "no value");
	let chosen: Point = pick(type Point)(pts[0], pts[1], dx % 2 == 0 && !false);
	let r: int = *&chosen.x;
	while dx > 0 {
		dx = dx - 1;
		if is_none(type int)(maybe) { break; } elif dx == 3 { continue; }
	}
	return total;
}

fn main() {
	let l: Line = init Line {
		from: init Point { x: 0, y: 0 },
		to: Point { x: 3, y: 4 },
		label: none(type string)(),
	};
	let len: float = length(l);
}
`

func TestTypeSoundness(t *testing.T) {
	prog := mustCheck(t, soundSource)

	for _, f := range prog.Module("shapes").Functions {
		walkExprs(f.Decl.Body, func(e ast.Expr) {
			if _, isBinding := e.(*ast.Binding); !isBinding && prog.Info.Types[e] == nil {
				t.Errorf("%s: expression %s has no type", f.Name, ast.PrintExpr(e))
			}
			call, ok := e.(*ast.FnCall)
			if !ok {
				return
			}
			resolved := prog.Info.Calls[call]
			for i, arg := range call.Args {
				if !sema.Identical(prog.Info.Types[arg], resolved.Sig.Params[i]) {
					t.Errorf("argument %d of %s: %v vs %v", i, ast.PrintExpr(call), prog.Info.Types[arg], resolved.Sig.Params[i])
				}
			}
		})

		for _, stmt := range f.Decl.Body.Stmts {
			let, ok := stmt.(*ast.LetStmt)
			if !ok {
				continue
			}
			declared := prog.Info.Annotations[let.Type]
			if !sema.Identical(declared, prog.Info.Types[let.Value]) {
				t.Errorf("let %s: declared %v, initializer %v", let.Name.Name, declared, prog.Info.Types[let.Value])
			}
		}
	}

	pick := prog.Module("shapes").Functions[0]
	if !pick.IsGeneric() || len(pick.TypeParams) != 1 {
		t.Fatalf("pick should have one type parameter")
	}
}

func TestArity(t *testing.T) {
	cases := []struct {
		src      string
		kind     errors.ArityKind
		expected int
		found    int
	}{
		{`fn f(type T)(x: T) {} fn main() { f(1); }`, errors.TypeArguments, 1, 0},
		{`fn f(x: int) {} fn main() { f(type int)(1); }`, errors.TypeArguments, 0, 1},
		{`fn f(x: int) {} fn main() { f(1, 2); }`, errors.ValueArguments, 1, 2},
		{`fn f(type T, U)(x: T) {} fn main() { f(type int)(1); }`, errors.TypeArguments, 2, 1},
		{`fn main() { let o: Option = none(type int)(); }`, errors.TypeArguments, 1, 0},
		{`fn main() { let o: Option(type int, int) = none(type int)(); }`, errors.TypeArguments, 1, 2},
		{`fn main() { let x: int(type int) = 1; }`, errors.TypeArguments, 0, 1},
		{`fn f(type T)(x: T) -> T { return x; } fn main() { let g: fn(int) -> int = f; }`, errors.TypeArguments, 1, 0},
	}

	for _, c := range cases {
		_, err := check(c.src)
		e, ok := err.(errors.ArityMismatchError)
		if !ok {
			t.Errorf("%s: expected ArityMismatchError, got %v", c.src, err)
			continue
		}
		if e.Kind != c.kind || e.Expected != c.expected || e.Found != c.found {
			t.Errorf("%s: got %s", c.src, e)
		}
	}
}

func TestStructInit(t *testing.T) {
	decl := "struct P { a: int, b: bool } "
	cases := []struct {
		body  string
		check func(error) bool
	}{
		{"let p: P = P { a: 1, b: true, a: 2 };", func(err error) bool { e, ok := err.(errors.DuplicateFieldError); return ok && e.Name == "a" }},
		{"let p: P = P { a: 1, b: true, c: 3 };", func(err error) bool { e, ok := err.(errors.UnknownFieldError); return ok && e.Field == "c" }},
		{"let p: P = P {};", func(err error) bool {
			e, ok := err.(errors.MissingFieldError)
			return ok && strings.Join(e.Fields, ",") == "a,b"
		}},
		{"let p: P = P { a: true, b: true };", func(err error) bool { _, ok := err.(errors.TypeMismatchError); return ok }},
		{"let o: Option(type int) = init Option { };", func(err error) bool { e, ok := err.(errors.InitOpaqueError); return ok && e.Type == "Option" }},
		{"let p: P = Q { a: 1 };", func(err error) bool { e, ok := err.(errors.UndefinedSymbolError); return ok && e.Name == "Q" }},
	}

	for _, c := range cases {
		_, err := check(decl + "fn main() { " + c.body + " }")
		if err == nil || !c.check(err) {
			t.Errorf("%s: unexpected result %s", c.body, repr.String(err))
		}
	}

	mustCheck(t, decl+"fn main() { let p: P = P { b: false, a: 1, }; }")
}

func TestTypeErrors(t *testing.T) {
	cases := []string{
		`fn main() { let x: int = "string"; }`,
		`fn main() { if 1 { } }`,
		`fn main() { while "x" { } }`,
		`fn f() -> int { return true; } fn main() {}`,
		`fn f() { return 1; } fn main() {}`,
		`fn f() -> int { return; } fn main() {}`,
		`fn main() { let x: int = 1 + 2.0; }`,
		`fn main() { let x: float = 1.0 % 2.0; }`,
		`fn main() { let x: bool = "a" < "b"; }`,
		`fn main() { let x: bool = 1 && true; }`,
		`fn main() { let x: int = -true; }`,
		`fn main() { let x: bool = !1; }`,
		`fn main() { let x: int = *1; }`,
		`struct P { a: int } fn main() { let x: bool = P { a: 1 } == P { a: 1 }; }`,
		`fn main() { let x: int = 1; let y: int = x[0]; }`,
		`fn main() { let a: [int; 2] = [1, 2]; let y: int = a[true]; }`,
		`fn main() { let a: [int; 2] = [1, true]; }`,
		`fn main() { let a: [int; 3] = [1, 2]; }`,
		`fn main() { let x: int = 1; let y: int = x.field; }`,
		`fn f() {} fn main() { f = 1; }`,
		`fn main() { let x: int = 1; x = false; }`,
		`fn main() { main(); let x: int = main; }`,
		`struct P { a: int } fn main() { let x: int = P; }`,
		`fn main() { let x: int = 1; x(); }`,
		`fn main(x: int) {}`,
		`fn main() -> int { return 0; }`,
		`fn main() { let a: [int; 0] = [0; 0]; }`,
		`fn id(type T, U)(x: T) -> U { return x; } fn main() {}`,
		`fn f() {} fn main() { let x: f = 1; }`,
	}

	for _, src := range cases {
		_, err := check(src)
		if _, ok := err.(errors.TypeMismatchError); !ok {
			t.Errorf("%s: expected TypeMismatchError, got %s", src, repr.String(err))
		}
	}
}

func TestFieldErrors(t *testing.T) {
	_, err := check(`struct P { a: int } fn main() { let p: P = P { a: 1 }; let b: int = p.b; }`)
	if e, ok := err.(errors.UnknownFieldError); !ok || e.Field != "b" || e.Struct != "P" {
		t.Errorf("unexpected error %v", err)
	}

	_, err = check(`struct P { a: int, a: bool } fn main() {}`)
	if _, ok := err.(errors.DuplicateFieldError); !ok {
		t.Errorf("duplicate struct field: %v", err)
	}
}

func TestControlFlow(t *testing.T) {
	cases := []struct {
		src  string
		kind errors.ControlFlowKind
	}{
		{`fn f() -> int { if true { return 1; } } fn main() {}`, errors.MissingReturn},
		{`fn f() -> int { while true { return 1; } } fn main() {}`, errors.MissingReturn},
		{`fn main() { break; }`, errors.BadBreak},
		{`fn main() { if true { continue; } }`, errors.BadContinue},
	}
	for _, c := range cases {
		_, err := check(c.src)
		e, ok := err.(errors.ControlFlowError)
		if !ok || e.Kind != c.kind {
			t.Errorf("%s: unexpected error %s", c.src, repr.String(err))
		}
	}

	mustCheck(t, `
		fn sign(x: int) -> int {
			if x < 0 { return -1; } elif x == 0 { return 0; } else { { return 1; } }
		}
		fn main() { while true { if false { break; } continue; } }
	`)
}

func TestMultipleMain(t *testing.T) {
	_, err := check("mod a; fn main() {}", "mod b; fn main() {}")
	if _, ok := err.(errors.MultipleMainError); !ok {
		t.Errorf("expected MultipleMainError, got %v", err)
	}
}

func TestCyclicStruct(t *testing.T) {
	cases := []string{
		`struct A { a: A } fn main() {}`,
		`struct A { b: B } struct B { arr: [A; 2] } fn main() {}`,
		`struct A { next: Option(type A) } fn main() {}`,
	}
	for _, src := range cases {
		_, err := check(src)
		if _, ok := err.(errors.CyclicTypeError); !ok {
			t.Errorf("%s: expected CyclicTypeError, got %v", src, err)
		}
	}

	mustCheck(t, `struct A { f: fn(A) -> A } fn main() {}`)
}

func TestSuggestions(t *testing.T) {
	_, err := check(`fn main() { let value: int = 1; let y: int = valu; }`)
	e, ok := err.(errors.UndefinedSymbolError)
	if !ok {
		t.Fatalf("expected UndefinedSymbolError, got %v", err)
	}
	if len(e.Suggestions) == 0 || e.Suggestions[0] != "value" {
		t.Errorf("suggestions %v do not start with value", e.Suggestions)
	}

	_, err = check(`struct Point { x: int } fn main() { let p: Pont = 1; }`)
	e, ok = err.(errors.UndefinedSymbolError)
	if !ok || len(e.Suggestions) == 0 || e.Suggestions[0] != "Point" {
		t.Errorf("type suggestions: %v", err)
	}

	_, err = check(`mod geo; fn origin() {}`, `fn main() { go::origin(); }`)
	e, ok = err.(errors.UndefinedSymbolError)
	if !ok || e.Name != "go" || len(e.Suggestions) == 0 || e.Suggestions[0] != "geo" {
		t.Errorf("module suggestions: %v", err)
	}
}

func TestCrossModule(t *testing.T) {
	prog := mustCheck(t,
		`mod geo; struct Point { x: int, y: int } fn origin() -> Point { return Point { x: 0, y: 0 }; }`,
		`mod main; use geo; fn main() { let p: Point = origin(); let q: geo::Point = geo::origin(); let r: int = later(); }
		 fn later() -> int { return 1; }`,
	)

	geo := prog.Module("geo")
	p := findLet(prog, "main", "main", "p")
	q := findLet(prog, "main", "main", "q")
	if prog.Info.Types[p.Value] != geo.Structs[0] || prog.Info.Types[q.Value] != geo.Structs[0] {
		t.Errorf("qualified and bare paths resolved differently")
	}

	_, err := check(`mod geo; fn origin() {}`, `fn main() { origin(); }`)
	if _, ok := err.(errors.UndefinedSymbolError); !ok {
		t.Errorf("items of modules that are not used must not be visible: %v", err)
	}
}

func TestGenericBody(t *testing.T) {
	mustCheck(t, `
		fn id(type T)(x: T) -> T { let y: T = x; return y; }
		fn wrap(type T)(x: T) -> Option(type T) { return some(type T)(id(type T)(x)); }
		fn main() { let s: string = unwrap(type string)(wrap(type string)("hi")); }
	`)

	_, err := check(`fn id(type T)(x: T) -> int { return x; } fn main() {}`)
	if _, ok := err.(errors.TypeMismatchError); !ok {
		t.Errorf("type parameters must not be identical to concrete types: %v", err)
	}
}
