package llvm

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pontaoski/smplc/ast"
	"github.com/pontaoski/smplc/backend"
	"github.com/pontaoski/smplc/sema"
)

func (g *gen) trapFunc() *ir.Func {
	if g.trap == nil {
		g.trap = g.m.NewFunc("llvm.trap", types.Void)
	}
	return g.trap
}

// panicFunc writes a string to stderr with a raw write(2) syscall. It needs
// no libc, so it only works on x86-64 Linux.
func (g *gen) panicFunc() *ir.Func {
	if g.panicMsg != nil {
		return g.panicMsg
	}

	fn := g.m.NewFunc("smpl.panic", types.Void, ir.NewParam("msg", g.strType))
	entry := fn.NewBlock("entry")

	length := entry.NewExtractValue(fn.Params[0], 0)
	data := entry.NewExtractValue(fn.Params[0], 1)

	asm := ir.NewInlineAsm(
		types.NewPointer(types.NewFunc(types.Void, types.I8Ptr, types.I64)),
		`movq $0, %rsi; movq $1, %rdx; movq $$0x1, %rax; movq $$0x2, %rdi; syscall`,
		`r,r,~{rax},~{rdi},~{rsi},~{rdx},~{rcx},~{r11},~{memory}`,
	)
	asm.SideEffect = true

	entry.NewCall(asm, data, length)
	entry.NewRet(nil)

	g.panicMsg = fn
	return fn
}

func (g *gen) optionType(elem sema.Type) *types.StructType {
	return types.NewStruct(types.I1, g.typ(elem))
}

func (g *gen) some(elem sema.Type, v value.Value) value.Value {
	b := g.fn.live()
	o := b.NewInsertValue(constant.NewUndef(g.optionType(elem)), constant.True, 0)
	return b.NewInsertValue(o, v, 1)
}

// unwrap extracts the payload of o, trapping on none after printing msg when
// it is set.
func (g *gen) unwrap(o value.Value, msg value.Value) value.Value {
	f := g.fn
	present := f.live().NewExtractValue(o, 0)
	fail, ok := f.block("unwrap.fail"), f.block("unwrap.ok")
	f.cur.NewCondBr(present, ok, fail)

	if msg != nil {
		fail.NewCall(g.panicFunc(), msg)
	}
	g.abort(fail)

	f.cur = ok
	return ok.NewExtractValue(o, 1)
}

func (g *gen) intrinsic(call *ast.FnCall, fn *sema.Function, targs []sema.Type, args []value.Value) value.Value {
	f := g.fn

	switch fn.Intrinsic {
	case sema.Some:
		return g.some(targs[0], args[0])
	case sema.None:
		return constant.NewZeroInitializer(g.optionType(targs[0]))
	case sema.IsSome:
		return f.live().NewExtractValue(args[0], 0)
	case sema.IsNone:
		b := f.live()
		return b.NewXor(b.NewExtractValue(args[0], 0), constant.True)
	case sema.Unwrap:
		return g.unwrap(args[0], nil)
	case sema.Expect:
		return g.unwrap(args[0], args[1])
	case sema.Map:
		result := g.optionType(targs[1])
		slot := f.alloca(result)
		f.live().NewStore(constant.NewZeroInitializer(result), slot)

		present := f.cur.NewExtractValue(args[0], 0)
		then, end := f.block("map.some"), f.block("map.end")
		f.cur.NewCondBr(present, then, end)

		f.cur = then
		mapped := then.NewCall(args[1], then.NewExtractValue(args[0], 1))
		var payload value.Value = mapped
		if targs[1] == sema.Unit {
			payload = g.unit()
		}
		f.cur.NewStore(g.some(targs[1], payload), slot)
		f.cur.NewBr(end)

		f.cur = end
		return end.NewLoad(result, slot)
	}
	panic(backend.Unsupported(Name, "builtin "+fn.QualifiedName(), call.Location))
}
