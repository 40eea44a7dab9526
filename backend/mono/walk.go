package mono

import "github.com/pontaoski/smplc/ast"

// Walk calls f for every expression in b, outer expressions first. Callees of
// calls are not visited.
func Walk(b *ast.Block, f func(ast.Expr)) {
	w := walker(f)
	w.block(b)
}

type walker func(ast.Expr)

func (w walker) block(b *ast.Block) {
	for _, stmt := range b.Stmts {
		w.stmt(stmt)
	}
}

func (w walker) stmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.LetStmt:
		w.expr(st.Value)
	case *ast.AssignStmt:
		w.expr(st.Target)
		w.expr(st.Value)
	case *ast.IfStmt:
		for _, br := range st.Branches {
			w.expr(br.Cond)
			w.block(br.Body)
		}
		if st.Else != nil {
			w.block(st.Else)
		}
	case *ast.WhileStmt:
		w.expr(st.Cond)
		w.block(st.Body)
	case *ast.ReturnStmt:
		if st.Value != nil {
			w.expr(st.Value)
		}
	case *ast.ExprStmt:
		w.expr(st.X)
	case *ast.Block:
		w.block(st)
	}
}

func (w walker) expr(e ast.Expr) {
	w(e)
	switch ex := e.(type) {
	case *ast.FieldAccess:
		w.expr(ex.Base)
	case *ast.FnCall:
		for _, arg := range ex.Args {
			w.expr(arg)
		}
	case *ast.StructInit:
		for _, fi := range ex.Fields {
			w.expr(fi.Value)
		}
	case *ast.UnaryExpr:
		w.expr(ex.X)
	case *ast.BinaryExpr:
		w.expr(ex.Left)
		w.expr(ex.Right)
	case *ast.ParenExpr:
		w.expr(ex.X)
	case *ast.ArrayLit:
		for _, el := range ex.Elems {
			w.expr(el)
		}
	case *ast.ArrayRepeat:
		w.expr(ex.Value)
	case *ast.IndexExpr:
		w.expr(ex.Base)
		w.expr(ex.Index)
	}
}
