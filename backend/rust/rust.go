// Package rust lowers checked smpl programs to a single Rust source file.
package rust

import (
	"fmt"
	"strings"

	"github.com/pontaoski/smplc/backend"
	"github.com/pontaoski/smplc/sema"
)

const (
	ID   = 0
	Name = "rust"
)

func init() {
	backend.Register(ID, Generator{})
}

type Generator struct{}

func (Generator) Name() string { return Name }

func (Generator) Generate(p *sema.Program) (out []byte, err error) {
	defer backend.Catch(&err)

	g := &gen{prog: p, info: p.Info}
	g.line("#![allow(unused_mut, unused_variables, unused_parens, unreachable_code, dead_code, non_snake_case, non_camel_case_types)]")

	for _, m := range p.Modules {
		if m.Prelude {
			continue
		}
		g.line("")
		g.module(m)
	}

	if p.Main != nil {
		g.line("")
		g.line("fn main() {")
		g.depth++
		g.line("%s();", g.funcPath(p.Main))
		g.depth--
		g.line("}")
	}

	return []byte(g.sb.String()), nil
}

type gen struct {
	prog  *sema.Program
	info  *sema.Info
	sb    strings.Builder
	depth int

	fn *sema.Function
}

func (g *gen) line(format string, args ...interface{}) {
	if format == "" {
		g.sb.WriteString("\n")
		return
	}
	g.sb.WriteString(strings.Repeat("    ", g.depth))
	fmt.Fprintf(&g.sb, format, args...)
	g.sb.WriteString("\n")
}

func (g *gen) module(m *sema.Module) {
	g.line("pub mod %s {", ident(m.Name))
	g.depth++

	first := true
	sep := func() {
		if !first {
			g.line("")
		}
		first = false
	}

	for _, s := range m.Structs {
		sep()
		g.structDecl(s)
	}
	for _, f := range m.Functions {
		if f.IsBuiltin() {
			continue
		}
		sep()
		g.function(f)
	}

	g.depth--
	g.line("}")
}

func (g *gen) structDecl(s *sema.Struct) {
	g.line("#[derive(Debug, Clone, PartialEq)]")
	g.line("pub struct %s {", ident(s.Name))
	g.depth++
	for _, f := range s.Fields {
		g.line("pub %s: %s,", ident(f.Name), g.typ(f.Type))
	}
	g.depth--
	g.line("}")
}

func (g *gen) function(f *sema.Function) {
	g.fn = f
	defer func() { g.fn = nil }()

	var tparams string
	if f.IsGeneric() {
		var names []string
		for _, tp := range f.TypeParams {
			names = append(names, ident(tp.Name)+": Clone")
		}
		tparams = "<" + strings.Join(names, ", ") + ">"
	}

	var params []string
	for _, param := range f.Params {
		params = append(params, fmt.Sprintf("mut %s: %s", ident(param.Name), g.typ(param.Type)))
	}

	ret := ""
	if f.Sig.Result != sema.Unit {
		ret = " -> " + g.typ(f.Sig.Result)
	}

	g.line("pub fn %s%s(%s)%s {", ident(f.Name), tparams, strings.Join(params, ", "), ret)
	g.depth++
	g.stmts(f.Decl.Body.Stmts)
	g.depth--
	g.line("}")
}

func (g *gen) funcPath(f *sema.Function) string {
	return "crate::" + ident(f.Module) + "::" + ident(f.Name)
}

func (g *gen) typ(t sema.Type) string {
	switch ty := t.(type) {
	case *sema.Basic:
		switch ty {
		case sema.Int:
			return "i64"
		case sema.Float:
			return "f64"
		case sema.Bool:
			return "bool"
		case sema.String:
			return "::std::string::String"
		}
		return "()"
	case *sema.Struct:
		return "crate::" + ident(ty.Module) + "::" + ident(ty.Name)
	case *sema.TypeParam:
		return ident(ty.Name)
	case *sema.OpaqueInst:
		elem, ok := sema.OptionElem(ty)
		if !ok {
			panic(backend.Unsupported(Name, "opaque type "+ty.String(), g.fnSpan()))
		}
		return "::std::option::Option<" + g.typ(elem) + ">"
	case *sema.Array:
		return fmt.Sprintf("[%s; %d]", g.typ(ty.Elem), ty.Len)
	case *sema.Func:
		var params []string
		for _, p := range ty.Params {
			params = append(params, g.typ(p))
		}
		s := "fn(" + strings.Join(params, ", ") + ")"
		if ty.Result != sema.Unit {
			s += " -> " + g.typ(ty.Result)
		}
		return s
	case *sema.Ref:
		return "&" + g.typ(ty.Elem)
	}
	panic(fmt.Sprintf("unhandled type %T", t))
}

// copyable reports whether values of t are Copy in the generated code, so
// reads need no clone.
func copyable(t sema.Type) bool {
	switch ty := t.(type) {
	case *sema.Basic:
		return ty != sema.String
	case *sema.Ref, *sema.Func:
		return true
	case *sema.Array:
		return copyable(ty.Elem)
	}
	return false
}
