package sema

import (
	"github.com/coreos/pkg/capnslog"
	"github.com/pontaoski/smplc/ast"
	"github.com/pontaoski/smplc/errors"
	"github.com/pontaoski/smplc/modgraph"
	"github.com/ztrue/tracerr"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/smplc", "sema")

type checker struct {
	graph *modgraph.Graph
	prog  *Program
	info  *Info

	syms map[ast.Item]Symbol
	mods map[*modgraph.Module]*Module

	// state of the function body being checked
	cur     *modgraph.Module
	fn      *Function
	scopes  []map[string]Symbol
	tparams map[string]*TypeParam
	loops   int
	nextID  int
}

// Check resolves and type checks every module of g. It stops at the first error.
func Check(g *modgraph.Graph) (prog *Program, err error) {
	c := &checker{
		graph: g,
		info:  newInfo(),
		syms:  map[ast.Item]Symbol{},
		mods:  map[*modgraph.Module]*Module{},
	}
	c.prog = &Program{Info: c.info}

	defer func() {
		if r := recover(); r != nil {
			cerr, ok := r.(errors.CompileError)
			if !ok {
				panic(r)
			}
			prog = nil
			err = tracerr.Wrap(cerr)
		}
	}()

	c.declare()
	c.resolveStructs()
	c.checkCycles()
	c.signatures()
	c.bodies()

	plog.Debugf("checked %d modules, %d expressions", len(c.prog.Modules), len(c.info.Types))
	return c.prog, nil
}

func (c *checker) fail(err errors.CompileError) {
	panic(err)
}

func (c *checker) newTypeParams(owner string, ids []*ast.Ident) []*TypeParam {
	var ret []*TypeParam
	seen := map[string]*ast.Ident{}
	for i, id := range ids {
		if prev, ok := seen[id.Name]; ok {
			c.fail(errors.DuplicateDeclarationError{Name: id.Name, Location: id.Location, Previous: prev.Location})
		}
		seen[id.Name] = id
		tp := &TypeParam{Name: id.Name, Owner: owner, Index: i}
		c.info.Defs[id] = tp
		ret = append(ret, tp)
	}
	return ret
}

// declare creates a symbol for every top-level item so that later phases can
// refer to items of any module regardless of order.
func (c *checker) declare() {
	for _, gm := range c.graph.Modules {
		m := &Module{Name: gm.Name, Prelude: gm.Prelude, AST: gm.AST}
		c.mods[gm] = m
		c.prog.Modules = append(c.prog.Modules, m)
		if gm.AST.Name != nil {
			c.info.Defs[gm.AST.Name] = m
		}

		for _, item := range gm.AST.Items {
			switch it := item.(type) {
			case *ast.StructDecl:
				s := &Struct{Name: it.Name.Name, Module: m.Name, Decl: it}
				m.Structs = append(m.Structs, s)
				c.syms[item] = s
				c.info.Defs[it.Name] = s
			case *ast.OpaqueDecl:
				o := &Opaque{Name: it.Name.Name, Module: m.Name, Decl: it}
				o.Params = c.newTypeParams(o.QualifiedName(), it.TypeParams)
				m.Opaques = append(m.Opaques, o)
				c.syms[item] = o
				c.info.Defs[it.Name] = o
			case *ast.FnDecl:
				f := &Function{Name: it.Name.Name, Module: m.Name, Decl: it}
				m.Functions = append(m.Functions, f)
				c.syms[item] = f
				c.info.Defs[it.Name] = f
			case *ast.BuiltinFnDecl:
				f := &Function{Name: it.Name.Name, Module: m.Name, Builtin: it}
				if gm.Prelude {
					f.Intrinsic = Intrinsics[f.Name]
				}
				m.Functions = append(m.Functions, f)
				c.syms[item] = f
				c.info.Defs[it.Name] = f
			}
		}
	}
}

func (c *checker) resolveStructs() {
	for _, gm := range c.graph.Modules {
		c.cur = gm
		for _, s := range c.mods[gm].Structs {
			seen := map[string]bool{}
			for _, field := range s.Decl.Fields {
				if seen[field.Name.Name] {
					c.fail(errors.DuplicateFieldError{Name: field.Name.Name, Location: field.Name.Location})
				}
				seen[field.Name.Name] = true
				s.Fields = append(s.Fields, &StructField{
					Name: field.Name.Name,
					Type: c.resolveType(field.Type),
					Decl: field,
				})
			}
		}
	}
	c.cur = nil
}

// checkCycles rejects structs that contain themselves by value.
func (c *checker) checkCycles() {
	const (
		unvisited = iota
		visiting
		done
	)
	state := map[*Struct]int{}

	var visit func(s *Struct)
	var walk func(t Type, from *Struct)
	walk = func(t Type, from *Struct) {
		switch ty := t.(type) {
		case *Struct:
			switch state[ty] {
			case visiting:
				c.fail(errors.CyclicTypeError{Struct: from.Name, Location: from.Decl.Name.Location})
			case unvisited:
				visit(ty)
			}
		case *Array:
			walk(ty.Elem, from)
		case *OpaqueInst:
			for _, arg := range ty.Args {
				walk(arg, from)
			}
		}
	}
	visit = func(s *Struct) {
		state[s] = visiting
		for _, f := range s.Fields {
			walk(f.Type, s)
		}
		state[s] = done
	}

	for _, s := range c.prog.Structs() {
		if state[s] == unvisited {
			visit(s)
		}
	}
}

func (c *checker) signatures() {
	for _, gm := range c.graph.Modules {
		c.cur = gm
		for _, f := range c.mods[gm].Functions {
			c.signature(f)
		}
	}
	c.cur = nil
	c.tparams = nil
}

func (c *checker) signature(f *Function) {
	var (
		name    *ast.Ident
		tparams []*ast.Ident
		params  []*ast.Param
		returns ast.TypeAnnotation
	)
	if f.Decl != nil {
		name, tparams, params, returns = f.Decl.Name, f.Decl.TypeParams, f.Decl.Params, f.Decl.Returns
	} else {
		name, tparams, params, returns = f.Builtin.Name, f.Builtin.TypeParams, f.Builtin.Params, f.Builtin.Returns
	}

	f.TypeParams = c.newTypeParams(f.QualifiedName(), tparams)
	c.tparams = map[string]*TypeParam{}
	for _, tp := range f.TypeParams {
		c.tparams[tp.Name] = tp
	}

	f.Sig = &Func{Result: Unit}
	c.scopes = nil
	c.pushScope()
	for _, param := range params {
		t := c.resolveType(param.Type)
		f.Sig.Params = append(f.Sig.Params, t)
		f.Params = append(f.Params, c.define(param.Name, t, true))
	}
	c.popScope()
	if returns != nil {
		f.Sig.Result = c.resolveType(returns)
	}

	if f.Name != "main" || f.Decl == nil || c.cur.Prelude {
		return
	}
	if c.prog.Main != nil {
		c.fail(errors.MultipleMainError{Location: name.Location, Previous: c.prog.Main.Decl.Name.Location})
	}
	if len(f.TypeParams) > 0 || len(f.Sig.Params) > 0 || f.Sig.Result != Unit {
		c.fail(errors.TypeMismatchError{Context: "main", Expected: "fn()", Found: f.Sig.String(), Location: name.Location})
	}
	c.prog.Main = f
}

func (c *checker) bodies() {
	for _, gm := range c.graph.Modules {
		c.cur = gm
		for _, f := range c.mods[gm].Functions {
			if f.Decl == nil {
				continue
			}
			c.body(f)
		}
	}
}

func (c *checker) body(f *Function) {
	c.fn = f
	c.loops = 0
	c.tparams = map[string]*TypeParam{}
	for _, tp := range f.TypeParams {
		c.tparams[tp.Name] = tp
	}

	c.scopes = nil
	c.pushScope()
	for _, param := range f.Params {
		c.top()[param.Name] = param
	}
	c.block(f.Decl.Body)
	c.popScope()

	if f.Sig.Result != Unit && !terminates(f.Decl.Body) {
		c.fail(errors.ControlFlowError{Kind: errors.MissingReturn, Function: f.Name, Location: f.Decl.Name.Location})
	}
	c.fn = nil
}

// resolveType resolves an annotation against the current module and type parameters.
func (c *checker) resolveType(t ast.TypeAnnotation) Type {
	ret := c.resolveTypeUncached(t)
	c.info.Annotations[t] = ret
	return ret
}

func (c *checker) resolveTypeUncached(t ast.TypeAnnotation) Type {
	switch ty := t.(type) {
	case *ast.PathType:
		return c.resolvePathType(ty)
	case *ast.ArrayType:
		if ty.Len == 0 {
			c.fail(errors.TypeMismatchError{Context: "array type", Expected: "a length greater than zero", Found: "0", Location: ty.Location})
		}
		return &Array{Elem: c.resolveType(ty.Elem), Len: ty.Len}
	case *ast.FnType:
		f := &Func{Result: Unit}
		for _, param := range ty.Params {
			f.Params = append(f.Params, c.resolveType(param))
		}
		if ty.Returns != nil {
			f.Result = c.resolveType(ty.Returns)
		}
		return f
	}
	panic("unhandled type annotation")
}

func (c *checker) noTypeArgs(ty *ast.PathType) {
	if len(ty.Args) > 0 {
		c.fail(errors.ArityMismatchError{
			Callee:   ty.Path.String(),
			Kind:     errors.TypeArguments,
			Expected: 0,
			Found:    len(ty.Args),
			Location: ty.Location,
		})
	}
}

func (c *checker) resolvePathType(ty *ast.PathType) Type {
	parts := pathNames(ty.Path)
	if len(parts) == 1 {
		if tp, ok := c.tparams[parts[0]]; ok {
			c.noTypeArgs(ty)
			return tp
		}
		if b, ok := basics[parts[0]]; ok {
			c.noTypeArgs(ty)
			return b
		}
	}

	entry, ok := c.graph.Lookup(c.cur, parts)
	if !ok {
		c.undefined(ty.Path, false)
	}

	switch sym := c.syms[entry.Item].(type) {
	case *Struct:
		c.noTypeArgs(ty)
		return sym
	case *Opaque:
		if len(ty.Args) != len(sym.Params) {
			c.fail(errors.ArityMismatchError{
				Callee:   sym.Name,
				Kind:     errors.TypeArguments,
				Expected: len(sym.Params),
				Found:    len(ty.Args),
				Location: ty.Location,
			})
		}
		inst := &OpaqueInst{Opaque: sym}
		for _, arg := range ty.Args {
			inst.Args = append(inst.Args, c.resolveType(arg))
		}
		return inst
	case *Function:
		c.fail(errors.TypeMismatchError{Context: "type annotation", Expected: "a type", Found: "function " + sym.Name, Location: ty.Location})
	}
	panic("unhandled symbol")
}
