package llvm

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pontaoski/smplc/ast"
	"github.com/pontaoski/smplc/backend/mono"
	"github.com/pontaoski/smplc/sema"
)

// function is the state of one function body being lowered.
type function struct {
	inst *mono.Instance
	ir   *ir.Func

	// entry holds only allocas; it branches to the first code block once
	// the body is done
	entry  *ir.Block
	cur    *ir.Block
	locals map[*sema.Local]value.Value
	loops  []loop
	blocks int
}

type loop struct {
	cond, end *ir.Block
}

func (f *function) block(name string) *ir.Block {
	f.blocks++
	return f.ir.NewBlock(fmt.Sprintf("%s.%d", name, f.blocks))
}

func (f *function) alloca(t types.Type) value.Value {
	return f.entry.NewAlloca(t)
}

// live makes sure instructions can be appended to the current block. Code
// after a return or break lands in a fresh block with no predecessors.
func (f *function) live() *ir.Block {
	if f.cur.Term != nil {
		f.cur = f.block("dead")
	}
	return f.cur
}

func (g *gen) define(inst *mono.Instance) {
	fn := g.funcs[inst]
	f := &function{
		inst:   inst,
		ir:     fn,
		locals: map[*sema.Local]value.Value{},
	}
	f.entry = fn.NewBlock("entry")
	start := f.block("start")
	f.cur = start

	g.fn = f
	defer func() { g.fn = nil }()

	for i, p := range inst.Func.Params {
		slot := f.alloca(fn.Params[i].Type())
		f.entry.NewStore(fn.Params[i], slot)
		f.locals[p] = slot
	}

	g.stmts(inst.Func.Decl.Body.Stmts)

	if f.cur.Term == nil {
		if types.IsVoid(fn.Sig.RetType) {
			f.cur.NewRet(nil)
		} else {
			f.cur.NewUnreachable()
		}
	}
	f.entry.NewBr(start)
}

func (g *gen) stmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		g.stmt(s)
	}
}

func (g *gen) stmt(s ast.Stmt) {
	f := g.fn
	f.live()

	switch st := s.(type) {
	case *ast.LetStmt:
		local := g.info.Defs[st.Name].(*sema.Local)
		v := g.expr(st.Value)
		slot := f.alloca(g.typ(f.inst.Type(local.Type)))
		f.live().NewStore(v, slot)
		f.locals[local] = slot
	case *ast.AssignStmt:
		v := g.expr(st.Value)
		ptr, _ := g.addr(st.Target)
		f.live().NewStore(v, ptr)
	case *ast.IfStmt:
		end := f.block("if.end")
		for _, branch := range st.Branches {
			cond := g.expr(branch.Cond)
			then, next := f.block("if.then"), f.block("if.next")
			f.live().NewCondBr(cond, then, next)

			f.cur = then
			g.stmts(branch.Body.Stmts)
			if f.cur.Term == nil {
				f.cur.NewBr(end)
			}
			f.cur = next
		}
		if st.Else != nil {
			g.stmts(st.Else.Stmts)
		}
		if f.cur.Term == nil {
			f.cur.NewBr(end)
		}
		f.cur = end
	case *ast.WhileStmt:
		cond, body, end := f.block("while.cond"), f.block("while.body"), f.block("while.end")
		f.cur.NewBr(cond)

		f.cur = cond
		c := g.expr(st.Cond)
		f.cur.NewCondBr(c, body, end)

		f.cur = body
		f.loops = append(f.loops, loop{cond: cond, end: end})
		g.stmts(st.Body.Stmts)
		f.loops = f.loops[:len(f.loops)-1]
		if f.cur.Term == nil {
			f.cur.NewBr(cond)
		}
		f.cur = end
	case *ast.ReturnStmt:
		if st.Value == nil {
			f.cur.NewRet(nil)
			return
		}
		v := g.expr(st.Value)
		if types.IsVoid(f.ir.Sig.RetType) {
			f.live().NewRet(nil)
			return
		}
		f.live().NewRet(v)
	case *ast.BreakStmt:
		f.cur.NewBr(f.loops[len(f.loops)-1].end)
	case *ast.ContinueStmt:
		f.cur.NewBr(f.loops[len(f.loops)-1].cond)
	case *ast.ExprStmt:
		g.expr(st.X)
	case *ast.Block:
		g.stmts(st.Stmts)
	default:
		panic(fmt.Sprintf("unhandled statement %T", s))
	}
}
