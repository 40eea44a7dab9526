package parser

import (
	"reflect"
	"testing"

	"github.com/alecthomas/repr"
	"github.com/pontaoski/smplc/ast"
	"github.com/pontaoski/smplc/errors"
	"github.com/pontaoski/smplc/types"
	"github.com/ztrue/tracerr"
)

var spanType = reflect.TypeOf(types.Span{})

// stripSpans zeroes every source span reachable from v.
func stripSpans(v reflect.Value) {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if !v.IsNil() {
			stripSpans(v.Elem())
		}
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			stripSpans(v.Index(i))
		}
	case reflect.Struct:
		if v.Type() == spanType {
			if v.CanSet() {
				v.Set(reflect.Zero(spanType))
			}
			return
		}
		for i := 0; i < v.NumField(); i++ {
			stripSpans(v.Field(i))
		}
	}
}

func mustParse(t *testing.T, src string) *ast.Module {
	t.Helper()
	m, err := Parse(src, "test.smpl")
	if err != nil {
		t.Fatalf("parse failed: %s\n%s", tracerr.Unwrap(err), src)
	}
	return m
}

func structure(m *ast.Module) *ast.Module {
	stripSpans(reflect.ValueOf(m))
	m.Filename = ""
	return m
}

const roundTripSource = `mod geometry;

use std;

struct Point {
	x: int,
	y: int,
}

struct Shape { corners: [Point; 4], name: string, scale: fn(int) -> int, }

opaque Box(type T);

builtin fn boxed(type T)(value: T) -> Box(type T);

fn wrap(type T, U)(a: T, b: U,) -> Option(type T) {
	return some(type T)(a);
}

fn main() {
	let p: Point = init Point { x: 5, y: 10 };
	let q: geometry::Point = Point { x: p.x + 1, y: -p.y, };
	let arr: [int; 3] = [1, 2, 3,];
	let zeros: [int; 8] = [0; 8];
	let f: float = 21.;
	let s: string = "escaped \"quote\"\n\t";
	arr[0] = arr[1] * (2 + 3) % 4;
	p.x = 7;
	if p.x == 7 && !false || f < 2.5 {
		return;
	} elif (Point { x: 1, y: 2 }).x >= 1 {
		let r: bool = *&true;
	} else {
		while true {
			break;
		}
	}
	while p.x != 0 {
		p.x = p.x - 1;
		continue;
	}
	{
		wrap(type int, string)(1, "a",);
	}
	let nested: bool = !!true;
	let addr: int = *&*&p.x;
}
`

func TestRoundTrip(t *testing.T) {
	first := mustParse(t, roundTripSource)
	printed := ast.Print(first)
	second := mustParse(t, printed)

	a, b := structure(first), structure(second)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("round trip changed the tree\nprinted:\n%s\nfirst: %s\nsecond: %s", printed, repr.String(a), repr.String(b))
	}

	// printing is a fixed point after the first pass
	if again := ast.Print(second); again != printed {
		t.Errorf("printing is not stable:\n%s\n---\n%s", printed, again)
	}
}

func TestUnnamedModule(t *testing.T) {
	m := mustParse(t, "fn main() {}")
	if m.Name != nil || m.ModuleName() != "main" {
		t.Errorf("unexpected module name %s", m.ModuleName())
	}
	if len(m.Items) != 1 {
		t.Fatalf("expected a single item, got %d", len(m.Items))
	}
}

func parseExprString(t *testing.T, src string) ast.Expr {
	t.Helper()
	m := mustParse(t, "fn main() { "+src+"; }")
	fn := m.Items[0].(*ast.FnDecl)
	return fn.Body.Stmts[0].(*ast.ExprStmt).X
}

// grouping renders e with explicit parentheses around every binary and unary node.
func grouping(e ast.Expr) string {
	switch ex := e.(type) {
	case *ast.BinaryExpr:
		return "(" + grouping(ex.Left) + " " + ex.Op.String() + " " + grouping(ex.Right) + ")"
	case *ast.UnaryExpr:
		return "(" + ex.Op.String() + grouping(ex.X) + ")"
	case *ast.ParenExpr:
		return grouping(ex.X)
	}
	return ast.PrintExpr(e)
}

func TestPrecedence(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"a / b % c", "((a / b) % c)"},
		{"a < b == c > d", "((a < b) == (c > d))"},
		{"a && b || c", "((a && b) || c)"},
		{"a == b && c != d", "((a == b) && (c != d))"},
		{"-a + b", "((-a) + b)"},
		{"!!x", "(!(!x))"},
		{"&*x", "(&(*x))"},
		{"-a.b * c[1]", "((-a.b) * c[1])"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"1 + 2 < 3 * 4", "((1 + 2) < (3 * 4))"},
	}

	for _, c := range cases {
		got := grouping(parseExprString(t, c.in))
		if got != c.want {
			t.Errorf("%s: got %s, want %s", c.in, got, c.want)
		}
	}
}

func TestGenericCall(t *testing.T) {
	x := parseExprString(t, "unwrap(type int)(some(type int)(5))")
	call, ok := x.(*ast.FnCall)
	if !ok {
		t.Fatalf("expected a call, got %s", repr.String(x))
	}
	if call.Callee.Path.String() != "unwrap" || len(call.TypeArgs) != 1 || len(call.Args) != 1 {
		t.Fatalf("unexpected call %s", repr.String(call))
	}
	inner := call.Args[0].(*ast.FnCall)
	if inner.Callee.Path.String() != "some" || len(inner.TypeArgs) != 1 {
		t.Fatalf("unexpected inner call %s", repr.String(inner))
	}
}

func TestStructLiteralInHead(t *testing.T) {
	m := mustParse(t, `fn main() {
		if x { y; }
		while ready { go(); }
		let p: P = P { a: 1 };
	}`)
	body := m.Items[0].(*ast.FnDecl).Body
	cond := body.Stmts[0].(*ast.IfStmt).Branches[0].Cond
	if _, ok := cond.(*ast.Binding); !ok {
		t.Errorf("if head parsed as %T", cond)
	}
	if _, ok := body.Stmts[1].(*ast.WhileStmt).Cond.(*ast.Binding); !ok {
		t.Errorf("while head was not a binding")
	}
	init, ok := body.Stmts[2].(*ast.LetStmt).Value.(*ast.StructInit)
	if !ok || init.Keyword {
		t.Errorf("expected a keywordless struct init")
	}
}

func TestLocations(t *testing.T) {
	m := mustParse(t, "fn main() {\n\tlet x: int = 1;\n}")
	let := m.Items[0].(*ast.FnDecl).Body.Stmts[0].(*ast.LetStmt)
	if let.Location.From.Line != 2 || let.Location.From.Column != 2 {
		t.Errorf("let starts at %s", let.Location)
	}
	if let.Location.To.Column != 16 {
		t.Errorf("let ends at %s", let.Location)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		src       string
		construct string
	}{
		{"fn main() { let x int = 1; }", "let statement"},
		{"fn main() { 1 + 2 = 3; }", "assignment"},
		{"fn main() { f(1 2); }", "function call"},
		{"struct P { x: int y: int }", "struct declaration"},
		{"fn main() { let a: [int; x] = 1; }", "array type"},
		{"fn main() { return }", "expression"},
		{"fn f(type)() {}", "function declaration"},
		{"let x: int = 1;", "item"},
		{"fn main() {", "block"},
		{"fn main() { if P { x: 1 } { } }", "expression statement"},
	}

	for _, c := range cases {
		_, err := Parse(c.src, "test.smpl")
		if err == nil {
			t.Errorf("%q: expected an error", c.src)
			continue
		}
		perr, ok := tracerr.Unwrap(err).(errors.ParseError)
		if !ok {
			t.Errorf("%q: expected a ParseError, got %s", c.src, repr.String(tracerr.Unwrap(err)))
			continue
		}
		if perr.Construct != c.construct {
			t.Errorf("%q: error names %q, want %q (%s)", c.src, perr.Construct, c.construct, perr)
		}
	}
}

func TestLexErrorSurfaces(t *testing.T) {
	_, err := Parse(`fn main() { let s: string = "open; }`, "test.smpl")
	if _, ok := tracerr.Unwrap(err).(errors.LexError); !ok {
		t.Fatalf("expected a LexError, got %v", err)
	}
}

func TestNumberFollowedByPeriod(t *testing.T) {
	m, err := Parse("fn main() { let a: int = 5.x; }", "test.smpl")
	if err != nil {
		t.Fatalf("5.x should lex as 5 . x: %s", err)
	}
	let := m.Items[0].(*ast.FnDecl).Body.Stmts[0].(*ast.LetStmt)
	if _, ok := let.Value.(*ast.FieldAccess); !ok {
		t.Errorf("5.x parsed as %s", repr.String(let.Value))
	}

	_, err = Parse("fn main() { let a: int = 5..; }", "test.smpl")
	perr, ok := tracerr.Unwrap(err).(errors.ParseError)
	if !ok {
		t.Fatalf("expected a ParseError, got %s", repr.String(tracerr.Unwrap(err)))
	}
	if perr.Construct != "field access" || perr.Location.From.Line != 1 {
		t.Errorf("unexpected error %s", perr)
	}

	_, err = Parse("fn main() { let a: int = 99999999999999999999; }", "test.smpl")
	lerr, ok := tracerr.Unwrap(err).(errors.LexError)
	if !ok {
		t.Fatalf("expected a LexError for an oversized literal, got %v", err)
	}
	if lerr.Location.From.Column != 26 {
		t.Errorf("oversized literal reported at %s", lerr.Location.From)
	}
}
