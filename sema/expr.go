package sema

import (
	"fmt"

	"github.com/pontaoski/smplc/ast"
	"github.com/pontaoski/smplc/errors"
)

func (c *checker) expr(e ast.Expr) Type {
	t := c.exprUncached(e)
	c.info.Types[e] = t
	return t
}

// resolveValue looks a binding up in the local scopes, then among items.
func (c *checker) resolveValue(b *ast.Binding) Symbol {
	parts := pathNames(b.Path)
	if len(parts) == 1 {
		if sym, ok := c.lookupLocal(parts[0]); ok {
			return sym
		}
	}

	entry, ok := c.graph.Lookup(c.cur, parts)
	if !ok {
		c.undefined(b.Path, true)
	}
	return c.syms[entry.Item]
}

func (c *checker) exprUncached(e ast.Expr) Type {
	switch ex := e.(type) {
	case *ast.Literal:
		switch ex.Kind {
		case ast.IntLit:
			return Int
		case ast.FloatLit:
			return Float
		case ast.BoolLit:
			return Bool
		}
		return String
	case *ast.Binding:
		return c.binding(ex)
	case *ast.FieldAccess:
		return c.field(ex, c.expr(ex.Base))
	case *ast.IndexExpr:
		return c.index(ex, c.expr(ex.Base))
	case *ast.FnCall:
		return c.call(ex)
	case *ast.StructInit:
		return c.structInit(ex)
	case *ast.UnaryExpr:
		return c.unary(ex)
	case *ast.BinaryExpr:
		return c.binary(ex)
	case *ast.ParenExpr:
		return c.expr(ex.X)
	case *ast.ArrayLit:
		first := c.expr(ex.Elems[0])
		for i, elem := range ex.Elems[1:] {
			c.expectType(fmt.Sprintf("array element %d", i+2), first, c.expr(elem), elem)
		}
		return &Array{Elem: first, Len: uint64(len(ex.Elems))}
	case *ast.ArrayRepeat:
		if ex.Len == 0 {
			c.fail(errors.TypeMismatchError{Context: "array repeat", Expected: "a length greater than zero", Found: "0", Location: ex.Location})
		}
		return &Array{Elem: c.expr(ex.Value), Len: ex.Len}
	}
	panic("unhandled expression")
}

func (c *checker) binding(b *ast.Binding) Type {
	sym := c.resolveValue(b)
	c.info.Uses[b] = sym

	switch s := sym.(type) {
	case *Local:
		return s.Type
	case *Function:
		if s.IsGeneric() {
			c.fail(errors.ArityMismatchError{
				Callee:   s.Name,
				Kind:     errors.TypeArguments,
				Expected: len(s.TypeParams),
				Found:    0,
				Location: b.Location,
			})
		}
		return s.Sig
	}

	c.fail(errors.TypeMismatchError{Context: "expression", Expected: "a value", Found: describe(sym), Location: b.Location})
	return nil
}

func (c *checker) field(fa *ast.FieldAccess, base Type) Type {
	st, ok := base.(*Struct)
	if !ok {
		c.fail(errors.TypeMismatchError{
			Context:  "field access ." + fa.Field.Name,
			Expected: "a struct",
			Found:    base.String(),
			Location: fa.Base.Span(),
		})
	}
	f, _ := st.Field(fa.Field.Name)
	if f == nil {
		c.fail(errors.UnknownFieldError{Struct: st.Name, Field: fa.Field.Name, Location: fa.Field.Location})
	}
	return f.Type
}

func (c *checker) index(ix *ast.IndexExpr, base Type) Type {
	arr, ok := base.(*Array)
	if !ok {
		c.fail(errors.TypeMismatchError{Context: "index expression", Expected: "an array", Found: base.String(), Location: ix.Base.Span()})
	}
	c.expectType("array index", Int, c.expr(ix.Index), ix.Index)
	return arr.Elem
}

func (c *checker) call(call *ast.FnCall) Type {
	sym := c.resolveValue(call.Callee)
	c.info.Uses[call.Callee] = sym

	resolved := &Call{}
	name := call.Callee.Path.String()

	switch s := sym.(type) {
	case *Function:
		if len(call.TypeArgs) != len(s.TypeParams) {
			c.fail(errors.ArityMismatchError{
				Callee:   s.Name,
				Kind:     errors.TypeArguments,
				Expected: len(s.TypeParams),
				Found:    len(call.TypeArgs),
				Location: call.Location,
			})
		}
		for _, arg := range call.TypeArgs {
			resolved.TypeArgs = append(resolved.TypeArgs, c.resolveType(arg))
		}
		resolved.Func = s
		resolved.Sig = Subst(s.Sig, Bind(s.TypeParams, resolved.TypeArgs)).(*Func)
	case *Local:
		sig, ok := s.Type.(*Func)
		if !ok {
			c.fail(errors.TypeMismatchError{Context: "call of " + name, Expected: "a function", Found: s.Type.String(), Location: call.Callee.Location})
		}
		if len(call.TypeArgs) > 0 {
			c.fail(errors.ArityMismatchError{
				Callee:   name,
				Kind:     errors.TypeArguments,
				Expected: 0,
				Found:    len(call.TypeArgs),
				Location: call.Location,
			})
		}
		resolved.Local = s
		resolved.Sig = sig
	default:
		c.fail(errors.TypeMismatchError{Context: "call of " + name, Expected: "a function", Found: describe(sym), Location: call.Callee.Location})
	}

	if len(call.Args) != len(resolved.Sig.Params) {
		c.fail(errors.ArityMismatchError{
			Callee:   name,
			Kind:     errors.ValueArguments,
			Expected: len(resolved.Sig.Params),
			Found:    len(call.Args),
			Location: call.Location,
		})
	}
	for i, arg := range call.Args {
		c.expectType(fmt.Sprintf("argument %d of %s", i+1, name), resolved.Sig.Params[i], c.expr(arg), arg)
	}

	c.info.Calls[call] = resolved
	c.info.Types[call.Callee] = resolved.Sig
	return resolved.Sig.Result
}

func (c *checker) structInit(init *ast.StructInit) Type {
	parts := pathNames(init.Type)
	if len(parts) == 1 {
		if tp, ok := c.tparams[parts[0]]; ok {
			c.fail(errors.TypeMismatchError{Context: "struct initializer", Expected: "a struct type", Found: describe(tp), Location: init.Type.Location})
		}
	}

	entry, ok := c.graph.Lookup(c.cur, parts)
	if !ok {
		c.undefined(init.Type, false)
	}

	var st *Struct
	switch sym := c.syms[entry.Item].(type) {
	case *Struct:
		st = sym
	case *Opaque:
		c.fail(errors.InitOpaqueError{Type: sym.Name, Location: init.Location})
	default:
		c.fail(errors.TypeMismatchError{Context: "struct initializer", Expected: "a struct type", Found: describe(sym), Location: init.Type.Location})
	}

	seen := map[string]bool{}
	for _, fi := range init.Fields {
		f, _ := st.Field(fi.Name.Name)
		if f == nil {
			c.fail(errors.UnknownFieldError{Struct: st.Name, Field: fi.Name.Name, Location: fi.Name.Location})
		}
		if seen[f.Name] {
			c.fail(errors.DuplicateFieldError{Name: f.Name, Location: fi.Name.Location})
		}
		seen[f.Name] = true
		c.expectType(fmt.Sprintf("field %s of %s", f.Name, st.Name), f.Type, c.expr(fi.Value), fi.Value)
	}

	var missing []string
	for _, f := range st.Fields {
		if !seen[f.Name] {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		c.fail(errors.MissingFieldError{Struct: st.Name, Fields: missing, Location: init.Location})
	}

	c.info.Inits[init] = st
	return st
}

func (c *checker) unary(u *ast.UnaryExpr) Type {
	x := c.expr(u.X)
	context := "operand of " + u.Op.String()

	switch u.Op {
	case ast.Neg:
		if b, ok := x.(*Basic); !ok || !b.Numeric() {
			c.fail(errors.TypeMismatchError{Context: context, Expected: "int or float", Found: x.String(), Location: u.X.Span()})
		}
		return x
	case ast.Not:
		c.expectType(context, Bool, x, u.X)
		return Bool
	case ast.Ref:
		return &Ref{Elem: x}
	case ast.Deref:
		r, ok := x.(*Ref)
		if !ok {
			c.fail(errors.TypeMismatchError{Context: context, Expected: "a reference", Found: x.String(), Location: u.X.Span()})
		}
		return r.Elem
	}
	panic("unhandled unary operator")
}

func (c *checker) binary(b *ast.BinaryExpr) Type {
	left := c.expr(b.Left)
	right := c.expr(b.Right)
	context := "operands of " + b.Op.String()

	switch {
	case b.Op.IsLogical():
		c.expectType(context, Bool, left, b.Left)
		c.expectType(context, Bool, right, b.Right)
		return Bool
	case b.Op == ast.Eq || b.Op == ast.Neq:
		if basic, ok := left.(*Basic); !ok || basic == Unit {
			c.fail(errors.TypeMismatchError{Context: context, Expected: "a primitive type", Found: left.String(), Location: b.Left.Span()})
		}
		c.expectType(context, left, right, b.Right)
		return Bool
	case b.Op == ast.Mod:
		c.expectType(context, Int, left, b.Left)
		c.expectType(context, Int, right, b.Right)
		return Int
	}

	if basic, ok := left.(*Basic); !ok || !basic.Numeric() {
		c.fail(errors.TypeMismatchError{Context: context, Expected: "int or float", Found: left.String(), Location: b.Left.Span()})
	}
	c.expectType(context, left, right, b.Right)
	if b.Op.IsComparison() {
		return Bool
	}
	return left
}
