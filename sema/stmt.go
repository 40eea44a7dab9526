package sema

import (
	"github.com/pontaoski/smplc/ast"
	"github.com/pontaoski/smplc/errors"
)

func (c *checker) block(b *ast.Block) {
	c.pushScope()
	for _, stmt := range b.Stmts {
		c.stmt(stmt)
	}
	c.popScope()
}

func (c *checker) expectType(context string, want, got Type, at ast.Node) {
	if !Identical(want, got) {
		c.fail(errors.TypeMismatchError{
			Context:  context,
			Expected: want.String(),
			Found:    got.String(),
			Location: at.Span(),
		})
	}
}

func (c *checker) stmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.LetStmt:
		declared := c.resolveType(st.Type)
		// the initializer is checked before the name is bound, so
		// "let a: int = a;" reads the outer a
		value := c.expr(st.Value)
		c.expectType("let "+st.Name.Name, declared, value, st.Value)
		c.define(st.Name, declared, false)
	case *ast.AssignStmt:
		target := c.place(st.Target)
		value := c.expr(st.Value)
		c.expectType("assignment", target, value, st.Value)
	case *ast.IfStmt:
		for _, branch := range st.Branches {
			c.expectType("if condition", Bool, c.expr(branch.Cond), branch.Cond)
			c.block(branch.Body)
		}
		if st.Else != nil {
			c.block(st.Else)
		}
	case *ast.WhileStmt:
		c.expectType("while condition", Bool, c.expr(st.Cond), st.Cond)
		c.loops++
		c.block(st.Body)
		c.loops--
	case *ast.ReturnStmt:
		want := c.fn.Sig.Result
		if st.Value == nil {
			if want != Unit {
				c.fail(errors.TypeMismatchError{Context: "return", Expected: want.String(), Found: Unit.String(), Location: st.Location})
			}
			return
		}
		c.expectType("return", want, c.expr(st.Value), st.Value)
	case *ast.BreakStmt:
		if c.loops == 0 {
			c.fail(errors.ControlFlowError{Kind: errors.BadBreak, Function: c.fn.Name, Location: st.Location})
		}
	case *ast.ContinueStmt:
		if c.loops == 0 {
			c.fail(errors.ControlFlowError{Kind: errors.BadContinue, Function: c.fn.Name, Location: st.Location})
		}
	case *ast.ExprStmt:
		c.expr(st.X)
	case *ast.Block:
		c.block(st)
	default:
		panic("unhandled statement")
	}
}

// terminates reports whether every path through s ends in a return.
func terminates(s ast.Stmt) bool {
	switch st := s.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.Block:
		for _, inner := range st.Stmts {
			if terminates(inner) {
				return true
			}
		}
	case *ast.IfStmt:
		if st.Else == nil || !terminates(st.Else) {
			return false
		}
		for _, branch := range st.Branches {
			if !terminates(branch.Body) {
				return false
			}
		}
		return true
	}
	return false
}

// place checks an assignment target and returns its type.
func (c *checker) place(e ast.Expr) Type {
	var t Type

	switch ex := e.(type) {
	case *ast.Binding:
		sym := c.resolveValue(ex)
		local, ok := sym.(*Local)
		if !ok {
			c.fail(errors.TypeMismatchError{Context: "assignment", Expected: "a variable", Found: describe(sym), Location: ex.Location})
		}
		c.info.Uses[ex] = local
		t = local.Type
	case *ast.FieldAccess:
		t = c.field(ex, c.place(ex.Base))
	case *ast.IndexExpr:
		t = c.index(ex, c.place(ex.Base))
	default:
		c.fail(errors.TypeMismatchError{Context: "assignment", Expected: "a variable, field or element", Found: "expression", Location: e.Span()})
	}

	c.info.Types[e] = t
	return t
}

// describe names a symbol for error messages.
func describe(sym Symbol) string {
	switch s := sym.(type) {
	case *Local:
		return "variable " + s.Name
	case *Function:
		return "function " + s.Name
	case *Struct:
		return "struct type " + s.Name
	case *Opaque:
		return "opaque type " + s.Name
	case *TypeParam:
		return "type parameter " + s.Name
	case *Module:
		return "module " + s.Name
	}
	return "unknown"
}
