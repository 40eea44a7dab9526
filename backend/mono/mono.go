// Package mono finds the concrete instantiations of generic functions that a
// program reaches, for backends without native generics.
package mono

import (
	"fmt"
	"strings"

	"github.com/coreos/pkg/capnslog"
	"github.com/pontaoski/smplc/ast"
	"github.com/pontaoski/smplc/errors"
	"github.com/pontaoski/smplc/sema"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/smplc", "mono")

// MaxDepth bounds how deeply type arguments may nest. Polymorphic recursion
// such as f(type T) calling f(type Option(type T)) would otherwise never end.
const MaxDepth = 32

// Instance is a function body specialized to concrete type arguments. Non-generic
// functions have a single instance with no arguments.
type Instance struct {
	Func *sema.Function
	Args []sema.Type
	Env  sema.Env
	// Name is unique across the Set and usable as an identifier.
	Name string
}

// Type returns the concrete type of t inside this instance.
func (i *Instance) Type(t sema.Type) sema.Type {
	return sema.Subst(t, i.Env)
}

type Set struct {
	Instances []*Instance

	byKey map[string]*Instance
	used  map[string]bool
	prog  *sema.Program
	queue []*Instance
}

func key(f *sema.Function, args []sema.Type) string {
	var names []string
	for _, a := range args {
		names = append(names, a.String())
	}
	return f.QualifiedName() + "(" + strings.Join(names, ", ") + ")"
}

// Collect walks every body reachable from the non-generic functions of p.
// backend names the caller in errors.
func Collect(p *sema.Program, backend string) (set *Set, err error) {
	set = &Set{
		byKey: map[string]*Instance{},
		used:  map[string]bool{},
		prog:  p,
	}

	defer func() {
		if r := recover(); r != nil {
			lerr, ok := r.(errors.BackendLoweringError)
			if !ok {
				panic(r)
			}
			lerr.Backend = backend
			set, err = nil, lerr
		}
	}()

	for _, m := range p.Modules {
		for _, f := range m.Functions {
			if f.IsBuiltin() || f.IsGeneric() {
				continue
			}
			set.add(f, nil, nil)
		}
	}

	for len(set.queue) > 0 {
		inst := set.queue[0]
		set.queue = set.queue[1:]
		set.walk(inst)
	}

	plog.Debugf("collected %d instances", len(set.Instances))
	return set, nil
}

// Lookup returns the instance of f for args, which must be concrete.
func (s *Set) Lookup(f *sema.Function, args []sema.Type) *Instance {
	inst, ok := s.byKey[key(f, args)]
	if !ok {
		panic("mono: no instance for " + key(f, args))
	}
	return inst
}

func (s *Set) add(f *sema.Function, args []sema.Type, at ast.Node) *Instance {
	k := key(f, args)
	if inst, ok := s.byKey[k]; ok {
		return inst
	}

	for _, a := range args {
		if Depth(a) > MaxDepth {
			panic(errors.BackendLoweringError{Construct: "polymorphic recursion in " + f.Name, Location: at.Span()})
		}
	}

	name := f.Module + "_" + f.Name
	if len(args) > 0 {
		var parts []string
		for _, a := range args {
			parts = append(parts, Mangle(a))
		}
		name += "__" + strings.Join(parts, "__")
	}
	base := name
	for i := 1; s.used[name]; i++ {
		name = fmt.Sprintf("%s_%d", base, i)
	}
	s.used[name] = true

	inst := &Instance{Func: f, Args: args, Env: sema.Bind(f.TypeParams, args), Name: name}
	s.byKey[k] = inst
	s.Instances = append(s.Instances, inst)
	s.queue = append(s.queue, inst)
	return inst
}

func (s *Set) walk(inst *Instance) {
	info := s.prog.Info
	Walk(inst.Func.Decl.Body, func(e ast.Expr) {
		call, ok := e.(*ast.FnCall)
		if !ok {
			return
		}
		resolved := info.Calls[call]
		if resolved.Func == nil || resolved.Func.IsBuiltin() || !resolved.Func.IsGeneric() {
			return
		}
		var args []sema.Type
		for _, a := range resolved.TypeArgs {
			args = append(args, inst.Type(a))
		}
		s.add(resolved.Func, args, call)
	})
}

// Depth is the nesting depth of t.
func Depth(t sema.Type) int {
	switch ty := t.(type) {
	case *sema.OpaqueInst:
		max := 0
		for _, a := range ty.Args {
			if d := Depth(a); d > max {
				max = d
			}
		}
		return max + 1
	case *sema.Array:
		return Depth(ty.Elem) + 1
	case *sema.Ref:
		return Depth(ty.Elem) + 1
	case *sema.Func:
		max := Depth(ty.Result)
		for _, p := range ty.Params {
			if d := Depth(p); d > max {
				max = d
			}
		}
		return max + 1
	}
	return 0
}

// Mangle spells a concrete type with identifier characters only.
func Mangle(t sema.Type) string {
	switch ty := t.(type) {
	case *sema.Basic:
		return ty.String()
	case *sema.Struct:
		return ty.Module + "_" + ty.Name
	case *sema.TypeParam:
		return "T" + ty.Name
	case *sema.OpaqueInst:
		var parts []string
		for _, a := range ty.Args {
			parts = append(parts, Mangle(a))
		}
		return ty.Opaque.Name + "_" + strings.Join(parts, "_") + "_"
	case *sema.Array:
		return fmt.Sprintf("arr%d_%s", ty.Len, Mangle(ty.Elem))
	case *sema.Ref:
		return "ref_" + Mangle(ty.Elem)
	case *sema.Func:
		var parts []string
		for _, p := range ty.Params {
			parts = append(parts, Mangle(p))
		}
		return "fn_" + strings.Join(parts, "_") + "_to_" + Mangle(ty.Result)
	}
	panic(fmt.Sprintf("unhandled type %T", t))
}
