package rust

import (
	"fmt"
	"strings"

	"github.com/pontaoski/smplc/ast"
	"github.com/pontaoski/smplc/backend"
	"github.com/pontaoski/smplc/sema"
	"github.com/pontaoski/smplc/types"
)

func (g *gen) fnSpan() types.Span {
	if g.fn != nil && g.fn.Decl != nil {
		return g.fn.Decl.Location
	}
	return types.Span{}
}

func (g *gen) stmts(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		g.stmt(stmt)
	}
}

func (g *gen) stmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.LetStmt:
		local := g.info.Defs[st.Name].(*sema.Local)
		g.line("let mut %s: %s = %s;", ident(local.Name), g.typ(local.Type), g.expr(st.Value))
	case *ast.AssignStmt:
		g.line("%s = %s;", g.place(st.Target), g.expr(st.Value))
	case *ast.IfStmt:
		for i, branch := range st.Branches {
			head := "if "
			if i > 0 {
				head = "} else if "
			}
			g.line("%s%s {", head, g.expr(branch.Cond))
			g.body(branch.Body)
		}
		if st.Else != nil {
			g.line("} else {")
			g.body(st.Else)
		}
		g.line("}")
	case *ast.WhileStmt:
		g.line("while %s {", g.expr(st.Cond))
		g.body(st.Body)
		g.line("}")
	case *ast.ReturnStmt:
		if st.Value == nil {
			g.line("return;")
			return
		}
		g.line("return %s;", g.expr(st.Value))
	case *ast.BreakStmt:
		g.line("break;")
	case *ast.ContinueStmt:
		g.line("continue;")
	case *ast.ExprStmt:
		g.line("%s;", g.expr(st.X))
	case *ast.Block:
		g.line("{")
		g.body(st)
		g.line("}")
	default:
		panic(fmt.Sprintf("unhandled statement %T", s))
	}
}

func (g *gen) body(b *ast.Block) {
	g.depth++
	g.stmts(b.Stmts)
	g.depth--
}

// place renders e as a Rust place expression, without cloning.
func (g *gen) place(e ast.Expr) string {
	switch ex := e.(type) {
	case *ast.Binding:
		return g.binding(ex)
	case *ast.FieldAccess:
		return g.place(ex.Base) + "." + ident(ex.Field.Name)
	case *ast.IndexExpr:
		return fmt.Sprintf("%s[(%s) as usize]", g.place(ex.Base), g.expr(ex.Index))
	case *ast.ParenExpr:
		return g.place(ex.X)
	case *ast.UnaryExpr:
		if ex.Op == ast.Deref {
			return "(*" + g.expr(ex.X) + ")"
		}
	}
	return g.expr(e)
}

func isPlace(e ast.Expr) bool {
	switch ex := e.(type) {
	case *ast.Binding, *ast.FieldAccess, *ast.IndexExpr:
		return true
	case *ast.ParenExpr:
		return isPlace(ex.X)
	case *ast.UnaryExpr:
		return ex.Op == ast.Deref
	}
	return false
}

func (g *gen) binding(b *ast.Binding) string {
	switch sym := g.info.Uses[b].(type) {
	case *sema.Local:
		return ident(sym.Name)
	case *sema.Function:
		if sym.IsBuiltin() {
			panic(backend.Unsupported(Name, "builtin "+sym.Name+" used as a value", b.Location))
		}
		return g.funcPath(sym)
	}
	panic("unresolved binding " + b.Path.String())
}

// expr renders e as an owned value. Reads of places whose type is not Copy
// are cloned, since smpl values never alias.
func (g *gen) expr(e ast.Expr) string {
	if isPlace(e) {
		s := g.place(e)
		if !copyable(g.info.Types[e]) {
			s += ".clone()"
		}
		return s
	}

	switch ex := e.(type) {
	case *ast.Literal:
		return literal(ex)
	case *ast.FnCall:
		return g.call(ex)
	case *ast.StructInit:
		st := g.info.Inits[ex]
		var fields []string
		for _, fi := range ex.Fields {
			fields = append(fields, ident(fi.Name.Name)+": "+g.expr(fi.Value))
		}
		return fmt.Sprintf("%s { %s }", g.typ(st), strings.Join(fields, ", "))
	case *ast.UnaryExpr:
		switch ex.Op {
		case ast.Neg:
			return "(-" + g.expr(ex.X) + ")"
		case ast.Not:
			return "(!" + g.expr(ex.X) + ")"
		case ast.Ref:
			return "(&" + g.place(ex.X) + ")"
		}
	case *ast.BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", g.expr(ex.Left), ex.Op, g.expr(ex.Right))
	case *ast.ParenExpr:
		return g.expr(ex.X)
	case *ast.ArrayLit:
		var elems []string
		for _, el := range ex.Elems {
			elems = append(elems, g.expr(el))
		}
		return "[" + strings.Join(elems, ", ") + "]"
	case *ast.ArrayRepeat:
		elem := g.info.Types[ex.Value]
		if copyable(elem) {
			return fmt.Sprintf("[%s; %d]", g.expr(ex.Value), ex.Len)
		}
		return fmt.Sprintf("{ let repeated = %s; ::std::array::from_fn::<%s, %d, _>(|_| repeated.clone()) }", g.expr(ex.Value), g.typ(elem), ex.Len)
	}
	panic(fmt.Sprintf("unhandled expression %T", e))
}

func (g *gen) call(call *ast.FnCall) string {
	resolved := g.info.Calls[call]

	var args []string
	for _, arg := range call.Args {
		args = append(args, g.expr(arg))
	}

	if resolved.Local != nil {
		return fmt.Sprintf("%s(%s)", ident(resolved.Local.Name), strings.Join(args, ", "))
	}

	f := resolved.Func
	if f.IsBuiltin() {
		return g.intrinsic(call, resolved, args)
	}

	callee := g.funcPath(f)
	if len(resolved.TypeArgs) > 0 {
		var targs []string
		for _, t := range resolved.TypeArgs {
			targs = append(targs, g.typ(t))
		}
		callee += "::<" + strings.Join(targs, ", ") + ">"
	}
	return fmt.Sprintf("%s(%s)", callee, strings.Join(args, ", "))
}

func (g *gen) intrinsic(call *ast.FnCall, resolved *sema.Call, args []string) string {
	switch resolved.Func.Intrinsic {
	case sema.Some:
		return fmt.Sprintf("::std::option::Option::<%s>::Some(%s)", g.typ(resolved.TypeArgs[0]), args[0])
	case sema.None:
		return fmt.Sprintf("::std::option::Option::<%s>::None", g.typ(resolved.TypeArgs[0]))
	case sema.IsSome:
		return fmt.Sprintf("%s.is_some()", args[0])
	case sema.IsNone:
		return fmt.Sprintf("%s.is_none()", args[0])
	case sema.Unwrap:
		return fmt.Sprintf("%s.unwrap()", args[0])
	case sema.Expect:
		return fmt.Sprintf("%s.expect(&%s)", args[0], args[1])
	case sema.Map:
		return fmt.Sprintf("%s.map(%s)", args[0], args[1])
	}
	panic(backend.Unsupported(Name, "builtin "+resolved.Func.QualifiedName(), call.Location))
}

func literal(l *ast.Literal) string {
	switch l.Kind {
	case ast.IntLit:
		return l.Value + "i64"
	case ast.FloatLit:
		v := l.Value
		if strings.HasSuffix(v, ".") {
			v += "0"
		} else if !strings.ContainsAny(v, ".eE") {
			v += ".0"
		}
		return v + "_f64"
	case ast.BoolLit:
		return l.Value
	}
	return "::std::string::String::from(" + ast.QuoteString(l.Value) + ")"
}
