// Package llvm lowers checked smpl programs to textual LLVM IR.
//
// Generic functions are monomorphized. Option(type T) is the literal struct
// {i1, T}, strings are {i64, i8*} pairs, and unit is the empty struct.
package llvm

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pontaoski/smplc/backend"
	"github.com/pontaoski/smplc/backend/mono"
	"github.com/pontaoski/smplc/sema"
	stypes "github.com/pontaoski/smplc/types"
)

const (
	ID   = 1
	Name = "llvm"
)

func init() {
	backend.Register(ID, Generator{})
}

type Generator struct{}

func (Generator) Name() string { return Name }

func (Generator) Generate(p *sema.Program) (out []byte, err error) {
	defer backend.Catch(&err)

	set, err := mono.Collect(p, Name)
	if err != nil {
		return nil, err
	}

	m, err := Lower(p, set)
	if err != nil {
		return nil, err
	}
	return []byte(m.String()), nil
}

// Lower builds the IR module for p.
func Lower(p *sema.Program, set *mono.Set) (m *ir.Module, err error) {
	defer backend.Catch(&err)

	g := &gen{
		prog:    p,
		info:    p.Info,
		set:     set,
		m:       ir.NewModule(),
		structs: map[*sema.Struct]*types.StructType{},
		funcs:   map[*mono.Instance]*ir.Func{},
		strs:    map[string]constant.Constant{},
	}
	g.strType = g.m.NewTypeDef("smpl.string", types.NewStruct(types.I64, types.I8Ptr)).(*types.StructType)
	g.unitType = types.NewStruct()

	// struct bodies may name each other, so every type is created before any
	// field is resolved
	for _, s := range p.Structs() {
		g.structs[s] = g.m.NewTypeDef(s.QualifiedName(), types.NewStruct()).(*types.StructType)
	}
	for _, s := range p.Structs() {
		st := g.structs[s]
		for _, f := range s.Fields {
			st.Fields = append(st.Fields, g.typ(f.Type))
		}
	}

	info := TypeInfo{Functions: map[string]string{}, Structs: map[string][]string{}}
	for _, s := range p.Structs() {
		var fields []string
		for _, f := range s.Fields {
			fields = append(fields, f.Name+": "+f.Type.String())
		}
		info.Structs[s.QualifiedName()] = fields
	}

	for _, inst := range set.Instances {
		g.declare(inst)
		info.Functions[inst.Name] = inst.Type(inst.Func.Sig).String()
	}
	for _, inst := range set.Instances {
		g.define(inst)
	}

	if p.Main != nil {
		entry := g.m.NewFunc("main", types.I32)
		b := entry.NewBlock("entry")
		b.NewCall(g.funcs[set.Lookup(p.Main, nil)])
		b.NewRet(constant.NewInt(types.I32, 0))
	}

	registerTypeInfo(info, g.m)
	return g.m, nil
}

type gen struct {
	prog *sema.Program
	info *sema.Info
	set  *mono.Set
	m    *ir.Module

	structs  map[*sema.Struct]*types.StructType
	funcs    map[*mono.Instance]*ir.Func
	strs     map[string]constant.Constant
	strType  *types.StructType
	unitType *types.StructType

	trap     *ir.Func
	panicMsg *ir.Func

	fn *function
}

// typ lowers a concrete smpl type to its value representation.
func (g *gen) typ(t sema.Type) types.Type {
	switch ty := t.(type) {
	case *sema.Basic:
		switch ty {
		case sema.Int:
			return types.I64
		case sema.Float:
			return types.Double
		case sema.Bool:
			return types.I1
		case sema.String:
			return g.strType
		}
		return g.unitType
	case *sema.Struct:
		return g.structs[ty]
	case *sema.OpaqueInst:
		elem, ok := sema.OptionElem(ty)
		if !ok {
			panic(backend.Unsupported(Name, "opaque type "+ty.String(), g.at()))
		}
		return types.NewStruct(types.I1, g.typ(elem))
	case *sema.Array:
		return types.NewArray(ty.Len, g.typ(ty.Elem))
	case *sema.Func:
		return types.NewPointer(g.sig(ty))
	case *sema.Ref:
		return types.NewPointer(g.typ(ty.Elem))
	}
	panic(fmt.Sprintf("unhandled type %T", t))
}

// result is typ, except that unit results are void.
func (g *gen) result(t sema.Type) types.Type {
	if t == sema.Unit {
		return types.Void
	}
	return g.typ(t)
}

func (g *gen) sig(f *sema.Func) *types.FuncType {
	var params []types.Type
	for _, p := range f.Params {
		params = append(params, g.typ(p))
	}
	return types.NewFunc(g.result(f.Result), params...)
}

func (g *gen) declare(inst *mono.Instance) {
	var params []*ir.Param
	for _, p := range inst.Func.Params {
		params = append(params, ir.NewParam(fmt.Sprintf("%s.%d", p.Name, p.ID), g.typ(inst.Type(p.Type))))
	}
	g.funcs[inst] = g.m.NewFunc(inst.Name, g.result(inst.Type(inst.Func.Sig.Result)), params...)
}

func (g *gen) at() stypes.Span {
	if g.fn != nil {
		return g.fn.inst.Func.Decl.Location
	}
	return stypes.Span{}
}

// str returns the constant for a string literal, sharing the backing array
// between equal literals.
func (g *gen) str(s string) constant.Constant {
	if c, ok := g.strs[s]; ok {
		return c
	}

	data := constant.NewCharArrayFromString(s)
	global := g.m.NewGlobalDef(fmt.Sprintf("str.%d", len(g.strs)), data)
	global.Immutable = true

	zero := constant.NewInt(types.I64, 0)
	ptr := constant.NewGetElementPtr(data.Typ, global, zero, zero)
	c := constant.NewStruct(g.strType, constant.NewInt(types.I64, int64(len(s))), ptr)
	g.strs[s] = c
	return c
}

func (g *gen) unit() value.Value {
	return constant.NewZeroInitializer(g.unitType)
}
