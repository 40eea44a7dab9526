package golang

import (
	"fmt"
	"strconv"

	"github.com/pontaoski/smplc/ast"
	"github.com/pontaoski/smplc/backend"
	"github.com/pontaoski/smplc/backend/mono"
	"github.com/pontaoski/smplc/sema"

	. "github.com/dave/jennifer/jen"
)

// terminates follows Go's terminating statement rules rather than smpl's,
// which also accept a return that is followed by more statements.
func terminates(stmts []ast.Stmt) bool {
	if len(stmts) == 0 {
		return false
	}
	switch st := stmts[len(stmts)-1].(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.Block:
		return terminates(st.Stmts)
	case *ast.IfStmt:
		if st.Else == nil || !terminates(st.Else.Stmts) {
			return false
		}
		for _, branch := range st.Branches {
			if !terminates(branch.Body.Stmts) {
				return false
			}
		}
		return true
	}
	return false
}

func (g *gen) stmts(stmts []ast.Stmt) []Code {
	var ret []Code
	for _, stmt := range stmts {
		ret = append(ret, g.stmt(stmt)...)
	}
	return ret
}

func (g *gen) stmt(s ast.Stmt) []Code {
	switch st := s.(type) {
	case *ast.LetStmt:
		local := g.info.Defs[st.Name].(*sema.Local)
		name := localName(local)
		return []Code{
			Var().Id(name).Add(g.typ(g.inst.Type(local.Type))).Op("=").Add(g.expr(st.Value)),
			Id("_").Op("=").Id(name),
		}
	case *ast.AssignStmt:
		return []Code{g.place(st.Target).Op("=").Add(g.expr(st.Value))}
	case *ast.IfStmt:
		var chain *Statement
		for _, branch := range st.Branches {
			cond, body := g.expr(branch.Cond), g.stmts(branch.Body.Stmts)
			if chain == nil {
				chain = If(cond).Block(body...)
			} else {
				chain.Else().If(cond).Block(body...)
			}
		}
		if st.Else != nil {
			chain.Else().Block(g.stmts(st.Else.Stmts)...)
		}
		return []Code{chain}
	case *ast.WhileStmt:
		return []Code{For(g.expr(st.Cond)).Block(g.stmts(st.Body.Stmts)...)}
	case *ast.ReturnStmt:
		if st.Value == nil {
			return []Code{Return()}
		}
		if g.inst.Type(g.inst.Func.Sig.Result) == sema.Unit {
			return append(g.discard(st.Value), Return())
		}
		return []Code{Return(g.expr(st.Value))}
	case *ast.BreakStmt:
		return []Code{Break()}
	case *ast.ContinueStmt:
		return []Code{Continue()}
	case *ast.ExprStmt:
		return g.discard(st.X)
	case *ast.Block:
		return []Code{Block(g.stmts(st.Stmts)...)}
	}
	panic(fmt.Sprintf("unhandled statement %T", s))
}

// discard evaluates e for its effects only.
func (g *gen) discard(e ast.Expr) []Code {
	for {
		paren, ok := e.(*ast.ParenExpr)
		if !ok {
			break
		}
		e = paren.X
	}
	if call, ok := e.(*ast.FnCall); ok {
		return []Code{g.call(call)}
	}
	return []Code{Id("_").Op("=").Add(g.expr(e))}
}

func (g *gen) typeOf(e ast.Expr) sema.Type {
	return g.inst.Type(g.info.Types[e])
}

// place renders an addressable expression.
func (g *gen) place(e ast.Expr) *Statement {
	switch ex := e.(type) {
	case *ast.Binding:
		return g.binding(ex)
	case *ast.FieldAccess:
		return g.place(ex.Base).Dot(ident(ex.Field.Name))
	case *ast.IndexExpr:
		return g.place(ex.Base).Index(g.expr(ex.Index))
	case *ast.ParenExpr:
		return g.place(ex.X)
	case *ast.UnaryExpr:
		if ex.Op == ast.Deref {
			return Parens(Op("*").Add(g.expr(ex.X)))
		}
	}
	// slice elements are addressable
	return Index().Add(g.typ(g.typeOf(e))).Values(g.expr(e)).Index(Lit(0))
}

func (g *gen) binding(b *ast.Binding) *Statement {
	switch sym := g.info.Uses[b].(type) {
	case *sema.Local:
		return Id(localName(sym))
	case *sema.Function:
		if sym.IsBuiltin() {
			panic(backend.Unsupported(Name, "builtin "+sym.Name+" used as a value", b.Location))
		}
		return Id(g.set.Lookup(sym, nil).Name)
	}
	panic("unresolved binding " + b.Path.String())
}

func (g *gen) expr(e ast.Expr) *Statement {
	switch ex := e.(type) {
	case *ast.Literal:
		return g.literal(ex)
	case *ast.Binding:
		return g.binding(ex)
	case *ast.FieldAccess:
		return g.expr(ex.Base).Dot(ident(ex.Field.Name))
	case *ast.IndexExpr:
		return g.expr(ex.Base).Index(g.expr(ex.Index))
	case *ast.FnCall:
		call := g.call(ex)
		if g.typeOf(ex) == sema.Unit {
			return Func().Params().Struct().Block(call, Return(Struct().Values())).Call()
		}
		return call
	case *ast.StructInit:
		st := g.info.Inits[ex]
		var fields []Code
		for _, fi := range ex.Fields {
			fields = append(fields, Id(ident(fi.Name.Name)).Op(":").Add(g.expr(fi.Value)))
		}
		return Id(structName(st)).Values(fields...)
	case *ast.UnaryExpr:
		switch ex.Op {
		case ast.Neg:
			return Parens(Op("-").Add(g.expr(ex.X)))
		case ast.Not:
			return Parens(Op("!").Add(g.expr(ex.X)))
		case ast.Ref:
			return Parens(Op("&").Add(g.place(ex.X)))
		case ast.Deref:
			return Parens(Op("*").Add(g.expr(ex.X)))
		}
	case *ast.BinaryExpr:
		return Parens(g.expr(ex.Left).Op(ex.Op.String()).Add(g.expr(ex.Right)))
	case *ast.ParenExpr:
		return Parens(g.expr(ex.X))
	case *ast.ArrayLit:
		var elems []Code
		for _, el := range ex.Elems {
			elems = append(elems, g.expr(el))
		}
		return g.typ(g.typeOf(ex)).Values(elems...)
	case *ast.ArrayRepeat:
		arr := g.typeOf(ex).(*sema.Array)
		return Func().Params().Params(Id("r").Add(g.typ(arr))).Block(
			Var().Id("v").Add(g.typ(arr.Elem)).Op("=").Add(g.expr(ex.Value)),
			For(Id("i").Op(":=").Range().Id("r")).Block(
				Id("r").Index(Id("i")).Op("=").Id("v"),
			),
			Return(),
		).Call()
	}
	panic(fmt.Sprintf("unhandled expression %T", e))
}

func (g *gen) literal(l *ast.Literal) *Statement {
	switch l.Kind {
	case ast.IntLit:
		v, err := strconv.ParseInt(l.Value, 10, 64)
		if err != nil {
			panic(backend.Unsupported(Name, "integer literal "+l.Value, l.Location))
		}
		return Lit(int(v))
	case ast.FloatLit:
		v, err := strconv.ParseFloat(l.Value, 64)
		if err != nil {
			panic(backend.Unsupported(Name, "float literal "+l.Value, l.Location))
		}
		return Lit(v)
	case ast.BoolLit:
		return Lit(l.Value == "true")
	}
	return Lit(l.Value)
}

func (g *gen) call(call *ast.FnCall) *Statement {
	resolved := g.info.Calls[call]

	var args []Code
	for _, arg := range call.Args {
		args = append(args, g.expr(arg))
	}

	if resolved.Local != nil {
		return Id(localName(resolved.Local)).Call(args...)
	}

	var targs []sema.Type
	for _, t := range resolved.TypeArgs {
		targs = append(targs, g.inst.Type(t))
	}

	if resolved.Func.IsBuiltin() {
		return g.intrinsic(call, resolved.Func, targs, args)
	}
	return Id(g.set.Lookup(resolved.Func, targs).Name).Call(args...)
}

func (g *gen) intrinsic(call *ast.FnCall, f *sema.Function, targs []sema.Type, args []Code) *Statement {
	switch f.Intrinsic {
	case sema.Some:
		return Id(g.someHelper(targs[0])).Call(args...)
	case sema.None:
		return Parens(Op("*").Add(g.typ(targs[0]))).Parens(Nil())
	case sema.IsSome:
		return Parens(Add(args[0]).Op("!=").Nil())
	case sema.IsNone:
		return Parens(Add(args[0]).Op("==").Nil())
	case sema.Unwrap:
		return Id(g.expectHelper(targs[0], false)).Call(args...)
	case sema.Expect:
		return Id(g.expectHelper(targs[0], true)).Call(args...)
	case sema.Map:
		return Id(g.mapHelper(targs[0], targs[1])).Call(args...)
	}
	panic(backend.Unsupported(Name, "builtin "+f.QualifiedName(), call.Location))
}

func (g *gen) someHelper(elem sema.Type) string {
	name := "some__" + mono.Mangle(elem)
	if _, ok := g.helpers[name]; !ok {
		g.helpers[name] = Func().Id(name).Params(Id("v").Add(g.typ(elem))).Op("*").Add(g.typ(elem)).Block(
			Return(Op("&").Id("v")),
		)
	}
	return name
}

// expectHelper returns the helper that dereferences an Option, panicking on
// none with a fixed message, or with a caller-supplied one when message is set.
func (g *gen) expectHelper(elem sema.Type, message bool) string {
	name := "unwrap__" + mono.Mangle(elem)
	params := []Code{Id("o").Op("*").Add(g.typ(elem))}
	var msg Code = Lit("unwrap of none")
	if message {
		name = "expect__" + mono.Mangle(elem)
		params = append(params, Id("msg").String())
		msg = Id("msg")
	}

	if _, ok := g.helpers[name]; !ok {
		g.helpers[name] = Func().Id(name).Params(params...).Add(g.typ(elem)).Block(
			If(Id("o").Op("==").Nil()).Block(Panic(msg)),
			Return(Op("*").Id("o")),
		)
	}
	return name
}

// mapHelper takes f as func(A) when the result is unit, matching how
// unit-returning functions are declared.
func (g *gen) mapHelper(from, to sema.Type) string {
	name := "map__" + mono.Mangle(from) + "__" + mono.Mangle(to)
	if _, ok := g.helpers[name]; ok {
		return name
	}

	some := g.someHelper(to)
	f := Func().Params(g.typ(from))
	apply := []Code{Return(Id(some).Call(Id("f").Call(Op("*").Id("o"))))}
	if to == sema.Unit {
		apply = []Code{
			Id("f").Call(Op("*").Id("o")),
			Return(Id(some).Call(Struct().Values())),
		}
	} else {
		f.Add(g.typ(to))
	}

	g.helpers[name] = Func().Id(name).Params(
		Id("o").Op("*").Add(g.typ(from)),
		Id("f").Add(f),
	).Op("*").Add(g.typ(to)).Block(
		append([]Code{If(Id("o").Op("==").Nil()).Block(Return(Nil()))}, apply...)...,
	)
	return name
}
