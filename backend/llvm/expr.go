package llvm

import (
	"fmt"
	"strconv"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pontaoski/smplc/ast"
	"github.com/pontaoski/smplc/backend"
	"github.com/pontaoski/smplc/sema"
)

func (g *gen) typeOf(e ast.Expr) sema.Type {
	return g.fn.inst.Type(g.info.Types[e])
}

func getStructElm(b *ir.Block, t types.Type, v value.Value, idx int64) value.Value {
	return b.NewGetElementPtr(t, v, constant.NewInt(types.I32, 0), constant.NewInt(types.I32, idx))
}

// addr returns a pointer to the storage of e and the type stored there.
// Expressions that are not places are spilled to a fresh slot.
func (g *gen) addr(e ast.Expr) (value.Value, types.Type) {
	f := g.fn

	switch ex := e.(type) {
	case *ast.Binding:
		if local, ok := g.info.Uses[ex].(*sema.Local); ok {
			return f.locals[local], g.typ(f.inst.Type(local.Type))
		}
	case *ast.FieldAccess:
		base, bt := g.addr(ex.Base)
		st := g.typeOf(ex.Base).(*sema.Struct)
		_, idx := st.Field(ex.Field.Name)
		return getStructElm(f.live(), bt, base, int64(idx)), g.typ(g.typeOf(ex))
	case *ast.IndexExpr:
		base, bt := g.addr(ex.Base)
		idx := g.expr(ex.Index)
		g.boundsCheck(idx, bt.(*types.ArrayType).Len)
		ptr := f.live().NewGetElementPtr(bt, base, constant.NewInt(types.I64, 0), idx)
		return ptr, g.typ(g.typeOf(ex))
	case *ast.ParenExpr:
		return g.addr(ex.X)
	case *ast.UnaryExpr:
		if ex.Op == ast.Deref {
			return g.expr(ex.X), g.typ(g.typeOf(ex))
		}
	}

	v := g.expr(e)
	t := g.typ(g.typeOf(e))
	slot := f.alloca(t)
	f.live().NewStore(v, slot)
	return slot, t
}

func (g *gen) boundsCheck(idx value.Value, n uint64) {
	f := g.fn
	out := f.live().NewICmp(enum.IPredUGE, idx, constant.NewInt(types.I64, int64(n)))
	fail, ok := f.block("bounds.fail"), f.block("bounds.ok")
	f.cur.NewCondBr(out, fail, ok)
	g.abort(fail)
	f.cur = ok
}

// abort ends b with a trap.
func (g *gen) abort(b *ir.Block) {
	b.NewCall(g.trapFunc())
	b.NewUnreachable()
}

func (g *gen) load(e ast.Expr) value.Value {
	ptr, t := g.addr(e)
	return g.fn.live().NewLoad(t, ptr)
}

func (g *gen) expr(e ast.Expr) value.Value {
	f := g.fn

	switch ex := e.(type) {
	case *ast.Literal:
		return g.literal(ex)
	case *ast.Binding:
		switch sym := g.info.Uses[ex].(type) {
		case *sema.Local:
			return g.load(ex)
		case *sema.Function:
			if sym.IsBuiltin() {
				panic(backend.Unsupported(Name, "builtin "+sym.Name+" used as a value", ex.Location))
			}
			return g.funcs[g.set.Lookup(sym, nil)]
		}
	case *ast.FieldAccess, *ast.IndexExpr:
		return g.load(ex)
	case *ast.FnCall:
		return g.call(ex)
	case *ast.StructInit:
		st := g.info.Inits[ex]
		var v value.Value = constant.NewUndef(g.structs[st])
		for _, fi := range ex.Fields {
			elem := g.expr(fi.Value)
			_, idx := st.Field(fi.Name.Name)
			v = f.live().NewInsertValue(v, elem, uint64(idx))
		}
		return v
	case *ast.UnaryExpr:
		return g.unary(ex)
	case *ast.BinaryExpr:
		return g.binary(ex)
	case *ast.ParenExpr:
		return g.expr(ex.X)
	case *ast.ArrayLit:
		var v value.Value = constant.NewUndef(g.typ(g.typeOf(ex)))
		for i, el := range ex.Elems {
			elem := g.expr(el)
			v = f.live().NewInsertValue(v, elem, uint64(i))
		}
		return v
	case *ast.ArrayRepeat:
		return g.repeat(ex)
	}
	panic(fmt.Sprintf("unhandled expression %T", e))
}

func (g *gen) literal(l *ast.Literal) value.Value {
	switch l.Kind {
	case ast.IntLit:
		v, err := strconv.ParseInt(l.Value, 10, 64)
		if err != nil {
			panic(backend.Unsupported(Name, "integer literal "+l.Value, l.Location))
		}
		return constant.NewInt(types.I64, v)
	case ast.FloatLit:
		v, err := strconv.ParseFloat(l.Value, 64)
		if err != nil {
			panic(backend.Unsupported(Name, "float literal "+l.Value, l.Location))
		}
		return constant.NewFloat(types.Double, v)
	case ast.BoolLit:
		if l.Value == "true" {
			return constant.True
		}
		return constant.False
	}
	return g.str(l.Value)
}

// repeat fills an array slot in a loop, evaluating the element once.
func (g *gen) repeat(r *ast.ArrayRepeat) value.Value {
	f := g.fn
	arr := g.typ(g.typeOf(r))
	elem := g.expr(r.Value)

	slot := f.alloca(arr)
	counter := f.alloca(types.I64)
	f.live().NewStore(constant.NewInt(types.I64, 0), counter)

	cond, body, end := f.block("repeat.cond"), f.block("repeat.body"), f.block("repeat.end")
	f.cur.NewBr(cond)

	i := cond.NewLoad(types.I64, counter)
	cond.NewCondBr(cond.NewICmp(enum.IPredSLT, i, constant.NewInt(types.I64, int64(r.Len))), body, end)

	ptr := body.NewGetElementPtr(arr, slot, constant.NewInt(types.I64, 0), i)
	body.NewStore(elem, ptr)
	body.NewStore(body.NewAdd(i, constant.NewInt(types.I64, 1)), counter)
	body.NewBr(cond)

	f.cur = end
	return end.NewLoad(arr, slot)
}

func (g *gen) unary(u *ast.UnaryExpr) value.Value {
	f := g.fn

	switch u.Op {
	case ast.Neg:
		x := g.expr(u.X)
		if g.typeOf(u) == sema.Float {
			return f.live().NewFNeg(x)
		}
		return f.live().NewSub(constant.NewInt(types.I64, 0), x)
	case ast.Not:
		x := g.expr(u.X)
		return f.live().NewXor(x, constant.True)
	case ast.Ref:
		ptr, _ := g.addr(u.X)
		return ptr
	case ast.Deref:
		return g.load(u)
	}
	panic("unhandled unary operator")
}

var (
	intPreds = map[ast.BinaryOp]enum.IPred{
		ast.Eq: enum.IPredEQ, ast.Neq: enum.IPredNE,
		ast.Lt: enum.IPredSLT, ast.Lte: enum.IPredSLE,
		ast.Gt: enum.IPredSGT, ast.Gte: enum.IPredSGE,
	}
	floatPreds = map[ast.BinaryOp]enum.FPred{
		ast.Eq: enum.FPredOEQ, ast.Neq: enum.FPredONE,
		ast.Lt: enum.FPredOLT, ast.Lte: enum.FPredOLE,
		ast.Gt: enum.FPredOGT, ast.Gte: enum.FPredOGE,
	}
)

func (g *gen) binary(b *ast.BinaryExpr) value.Value {
	if b.Op.IsLogical() {
		return g.logical(b)
	}

	operand := g.typeOf(b.Left)
	if operand == sema.String {
		panic(backend.Unsupported(Name, "string operator "+b.Op.String(), b.Location))
	}

	x := g.expr(b.Left)
	y := g.expr(b.Right)
	blk := g.fn.live()

	if operand == sema.Float {
		if pred, ok := floatPreds[b.Op]; ok {
			return blk.NewFCmp(pred, x, y)
		}
		switch b.Op {
		case ast.Add:
			return blk.NewFAdd(x, y)
		case ast.Sub:
			return blk.NewFSub(x, y)
		case ast.Mul:
			return blk.NewFMul(x, y)
		case ast.Div:
			return blk.NewFDiv(x, y)
		}
	} else {
		if pred, ok := intPreds[b.Op]; ok {
			return blk.NewICmp(pred, x, y)
		}
		switch b.Op {
		case ast.Add:
			return blk.NewAdd(x, y)
		case ast.Sub:
			return blk.NewSub(x, y)
		case ast.Mul:
			return blk.NewMul(x, y)
		case ast.Div:
			return blk.NewSDiv(x, y)
		case ast.Mod:
			return blk.NewSRem(x, y)
		}
	}
	panic("unhandled binary operator " + b.Op.String())
}

// logical short-circuits && and ||.
func (g *gen) logical(b *ast.BinaryExpr) value.Value {
	f := g.fn

	x := g.expr(b.Left)
	from := f.live()
	rhs, end := f.block("logic.rhs"), f.block("logic.end")

	short := constant.False
	if b.Op == ast.And {
		from.NewCondBr(x, rhs, end)
	} else {
		short = constant.True
		from.NewCondBr(x, end, rhs)
	}

	f.cur = rhs
	y := g.expr(b.Right)
	last := f.live()
	last.NewBr(end)

	f.cur = end
	return end.NewPhi(ir.NewIncoming(short, from), ir.NewIncoming(y, last))
}

func (g *gen) call(call *ast.FnCall) value.Value {
	f := g.fn
	resolved := g.info.Calls[call]

	var args []value.Value
	for _, arg := range call.Args {
		args = append(args, g.expr(arg))
	}

	var callee value.Value
	switch {
	case resolved.Local != nil:
		callee = g.load(call.Callee)
	case resolved.Func.IsBuiltin():
		var targs []sema.Type
		for _, t := range resolved.TypeArgs {
			targs = append(targs, f.inst.Type(t))
		}
		return g.intrinsic(call, resolved.Func, targs, args)
	default:
		var targs []sema.Type
		for _, t := range resolved.TypeArgs {
			targs = append(targs, f.inst.Type(t))
		}
		callee = g.funcs[g.set.Lookup(resolved.Func, targs)]
	}

	v := f.live().NewCall(callee, args...)
	if f.inst.Type(resolved.Sig.Result) == sema.Unit {
		return g.unit()
	}
	return v
}
