package sema

import (
	"fmt"
	"strings"

	"github.com/pontaoski/smplc/ast"
)

// Type is a resolved smpl type. Equality is Identical, not ==.
type Type interface {
	String() string
	is_Type()
}

type BasicKind int

const (
	IntKind BasicKind = iota
	FloatKind
	BoolKind
	StringKind
	UnitKind
)

type Basic struct {
	Kind BasicKind
	name string
}

var (
	Int    = &Basic{IntKind, "int"}
	Float  = &Basic{FloatKind, "float"}
	Bool   = &Basic{BoolKind, "bool"}
	String = &Basic{StringKind, "string"}
	Unit   = &Basic{UnitKind, "unit"}
)

var basics = map[string]*Basic{
	"int":    Int,
	"float":  Float,
	"bool":   Bool,
	"string": String,
	"unit":   Unit,
}

func (b *Basic) String() string { return b.name }

// Numeric reports whether arithmetic is defined on the type.
func (b *Basic) Numeric() bool { return b.Kind == IntKind || b.Kind == FloatKind }

type StructField struct {
	Name string
	Type Type
	Decl *ast.Field
}

type Struct struct {
	Name   string
	Module string
	Fields []*StructField
	Decl   *ast.StructDecl
}

func (s *Struct) QualifiedName() string { return s.Module + "::" + s.Name }
func (s *Struct) String() string        { return s.QualifiedName() }

// Field returns the named field and its index, or nil and -1.
func (s *Struct) Field(name string) (*StructField, int) {
	for i, f := range s.Fields {
		if f.Name == name {
			return f, i
		}
	}
	return nil, -1
}

// TypeParam is an abstract type bound by a generic function or opaque declaration.
// Two type parameters are never identical unless they are the same pointer.
type TypeParam struct {
	Name  string
	Owner string
	Index int
}

func (t *TypeParam) String() string { return t.Name }

// Opaque is a builtin type constructor such as Option. It is not a type itself;
// applying it to arguments yields an OpaqueInst.
type Opaque struct {
	Name   string
	Module string
	Params []*TypeParam
	Decl   *ast.OpaqueDecl
}

func (o *Opaque) QualifiedName() string { return o.Module + "::" + o.Name }

type OpaqueInst struct {
	Opaque *Opaque
	Args   []Type
}

func (o *OpaqueInst) String() string {
	if len(o.Args) == 0 {
		return o.Opaque.Name
	}
	return fmt.Sprintf("%s(type %s)", o.Opaque.Name, typeList(o.Args))
}

type Array struct {
	Elem Type
	Len  uint64
}

func (a *Array) String() string { return fmt.Sprintf("[%s; %d]", a.Elem, a.Len) }

type Func struct {
	Params []Type
	Result Type
}

func (f *Func) String() string {
	s := "fn(" + typeList(f.Params) + ")"
	if f.Result != nil && f.Result != Unit {
		s += " -> " + f.Result.String()
	}
	return s
}

// Ref is the type of &e.
type Ref struct {
	Elem Type
}

func (r *Ref) String() string { return "&" + r.Elem.String() }

func (*Basic) is_Type()      {}
func (*Struct) is_Type()     {}
func (*TypeParam) is_Type()  {}
func (*OpaqueInst) is_Type() {}
func (*Array) is_Type()      {}
func (*Func) is_Type()       {}
func (*Ref) is_Type()        {}

func typeList(ts []Type) string {
	var names []string
	for _, t := range ts {
		names = append(names, t.String())
	}
	return strings.Join(names, ", ")
}

// Identical reports whether a and b denote the same type.
func Identical(a, b Type) bool {
	if a == b {
		return true
	}

	switch x := a.(type) {
	case *OpaqueInst:
		y, ok := b.(*OpaqueInst)
		return ok && x.Opaque == y.Opaque && identicalList(x.Args, y.Args)
	case *Array:
		y, ok := b.(*Array)
		return ok && x.Len == y.Len && Identical(x.Elem, y.Elem)
	case *Func:
		y, ok := b.(*Func)
		return ok && identicalList(x.Params, y.Params) && Identical(x.Result, y.Result)
	case *Ref:
		y, ok := b.(*Ref)
		return ok && Identical(x.Elem, y.Elem)
	}

	// basics, structs and type parameters are compared by identity
	return false
}

func identicalList(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Identical(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Env maps type parameters to the types substituted for them.
type Env map[*TypeParam]Type

// Bind pairs params with args.
func Bind(params []*TypeParam, args []Type) Env {
	env := Env{}
	for i, p := range params {
		env[p] = args[i]
	}
	return env
}

// Subst replaces every type parameter in t that env binds.
func Subst(t Type, env Env) Type {
	if len(env) == 0 {
		return t
	}

	switch ty := t.(type) {
	case *TypeParam:
		if r, ok := env[ty]; ok {
			return r
		}
		return ty
	case *OpaqueInst:
		return &OpaqueInst{Opaque: ty.Opaque, Args: substList(ty.Args, env)}
	case *Array:
		return &Array{Elem: Subst(ty.Elem, env), Len: ty.Len}
	case *Func:
		return &Func{Params: substList(ty.Params, env), Result: Subst(ty.Result, env)}
	case *Ref:
		return &Ref{Elem: Subst(ty.Elem, env)}
	}
	return t
}

func substList(ts []Type, env Env) []Type {
	ret := make([]Type, len(ts))
	for i, t := range ts {
		ret[i] = Subst(t, env)
	}
	return ret
}

// Generic reports whether t mentions a type parameter.
func Generic(t Type) bool {
	switch ty := t.(type) {
	case *TypeParam:
		return true
	case *OpaqueInst:
		for _, arg := range ty.Args {
			if Generic(arg) {
				return true
			}
		}
	case *Array:
		return Generic(ty.Elem)
	case *Func:
		for _, p := range ty.Params {
			if Generic(p) {
				return true
			}
		}
		return Generic(ty.Result)
	case *Ref:
		return Generic(ty.Elem)
	}
	return false
}
