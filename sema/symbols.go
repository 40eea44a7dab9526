package sema

import (
	"github.com/pontaoski/smplc/ast"
)

// Symbol is anything a name can resolve to.
type Symbol interface {
	is_Symbol()
}

// Local is a let binding or function parameter. ID is unique within a Program,
// so shadowed bindings of the same spelling stay distinguishable.
type Local struct {
	Name  string
	Type  Type
	ID    int
	Param bool
	Decl  *ast.Ident
}

type Function struct {
	Name       string
	Module     string
	TypeParams []*TypeParam
	Sig        *Func
	Params     []*Local

	// Decl is nil for builtins, which set Builtin instead.
	Decl      *ast.FnDecl
	Builtin   *ast.BuiltinFnDecl
	Intrinsic Intrinsic
}

func (f *Function) QualifiedName() string { return f.Module + "::" + f.Name }

func (f *Function) IsBuiltin() bool { return f.Builtin != nil }

func (f *Function) IsGeneric() bool { return len(f.TypeParams) > 0 }

// Module is the symbol of a compilation unit, with its declarations in source order.
type Module struct {
	Name      string
	Prelude   bool
	AST       *ast.Module
	Structs   []*Struct
	Opaques   []*Opaque
	Functions []*Function
}

func (*Local) is_Symbol()     {}
func (*Function) is_Symbol()  {}
func (*Struct) is_Symbol()    {}
func (*Opaque) is_Symbol()    {}
func (*TypeParam) is_Symbol() {}
func (*Module) is_Symbol()    {}

// Call records how a call site was resolved.
type Call struct {
	// Func is set for calls of declared functions, Local for calls through
	// a function-typed binding.
	Func     *Function
	Local    *Local
	TypeArgs []Type
	// Sig is the callee signature after substituting TypeArgs.
	Sig *Func
}

// Info holds the analyzer's results, keyed by syntax node.
type Info struct {
	Types       map[ast.Expr]Type
	Uses        map[*ast.Binding]Symbol
	Calls       map[*ast.FnCall]*Call
	Defs        map[*ast.Ident]Symbol
	Inits       map[*ast.StructInit]*Struct
	Annotations map[ast.TypeAnnotation]Type
}

func newInfo() *Info {
	return &Info{
		Types:       map[ast.Expr]Type{},
		Uses:        map[*ast.Binding]Symbol{},
		Calls:       map[*ast.FnCall]*Call{},
		Defs:        map[*ast.Ident]Symbol{},
		Inits:       map[*ast.StructInit]*Struct{},
		Annotations: map[ast.TypeAnnotation]Type{},
	}
}

func (i *Info) TypeOf(e ast.Expr) Type {
	return i.Types[e]
}

// Program is a checked set of modules. It is read-only once Check returns.
type Program struct {
	Modules []*Module
	Info    *Info
	// Main is nil when no module declares fn main.
	Main *Function
}

func (p *Program) Module(name string) *Module {
	for _, m := range p.Modules {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Functions lists every function of every module in declaration order.
func (p *Program) Functions() []*Function {
	var ret []*Function
	for _, m := range p.Modules {
		ret = append(ret, m.Functions...)
	}
	return ret
}

func (p *Program) Structs() []*Struct {
	var ret []*Struct
	for _, m := range p.Modules {
		ret = append(ret, m.Structs...)
	}
	return ret
}
