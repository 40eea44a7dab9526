// Package golang lowers checked smpl programs to a single Go source file.
// Generic functions are monomorphized and Option(type T) becomes *T.
package golang

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/pontaoski/smplc/backend"
	"github.com/pontaoski/smplc/backend/mono"
	"github.com/pontaoski/smplc/sema"
	"github.com/pontaoski/smplc/types"
	"github.com/ztrue/tracerr"

	. "github.com/dave/jennifer/jen"
)

const (
	ID   = 2
	Name = "golang"
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

	g := &gen{
		prog:    p,
		info:    p.Info,
		set:     set,
		helpers: map[string]Code{},
	}

	f := NewFile("main")
	f.HeaderComment("Code generated by smplc. DO NOT EDIT.")

	for _, s := range p.Structs() {
		var fields []Code
		for _, field := range s.Fields {
			fields = append(fields, Id(ident(field.Name)).Add(g.typ(field.Type)))
		}
		f.Type().Id(structName(s)).Struct(fields...)
	}

	for _, inst := range set.Instances {
		f.Add(g.function(inst))
	}

	var main []Code
	if p.Main != nil {
		main = append(main, Id(set.Lookup(p.Main, nil).Name).Call())
	}
	f.Func().Id("main").Params().Block(main...)

	var names []string
	for name := range g.helpers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f.Add(g.helpers[name])
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, tracerr.Wrap(err)
	}
	return buf.Bytes(), nil
}

type gen struct {
	prog *sema.Program
	info *sema.Info
	set  *mono.Set

	// per-instantiation Option helpers by name
	helpers map[string]Code

	inst *mono.Instance
}

func (g *gen) at() types.Span {
	if g.inst != nil {
		return g.inst.Func.Decl.Location
	}
	return types.Span{}
}

func structName(s *sema.Struct) string {
	return mono.Mangle(s)
}

func (g *gen) function(inst *mono.Instance) Code {
	g.inst = inst
	defer func() { g.inst = nil }()

	f := inst.Func
	var params []Code
	for _, param := range f.Params {
		params = append(params, Id(localName(param)).Add(g.typ(inst.Type(param.Type))))
	}

	result := inst.Type(f.Sig.Result)
	body := g.stmts(f.Decl.Body.Stmts)
	if result != sema.Unit && !terminates(f.Decl.Body.Stmts) {
		body = append(body, Panic(Lit("unreachable")))
	}

	decl := Func().Id(inst.Name).Params(params...)
	if result != sema.Unit {
		decl.Add(g.typ(result))
	}
	return decl.Block(body...)
}

func (g *gen) typ(t sema.Type) *Statement {
	switch ty := t.(type) {
	case *sema.Basic:
		switch ty {
		case sema.Int:
			return Int64()
		case sema.Float:
			return Float64()
		case sema.Bool:
			return Bool()
		case sema.String:
			return String()
		}
		return Struct()
	case *sema.Struct:
		return Id(structName(ty))
	case *sema.OpaqueInst:
		elem, ok := sema.OptionElem(ty)
		if !ok {
			panic(backend.Unsupported(Name, "opaque type "+ty.String(), g.at()))
		}
		return Op("*").Add(g.typ(elem))
	case *sema.Array:
		return Index(Lit(int(ty.Len))).Add(g.typ(ty.Elem))
	case *sema.Func:
		var params []Code
		for _, p := range ty.Params {
			params = append(params, g.typ(p))
		}
		fn := Func().Params(params...)
		if ty.Result != sema.Unit {
			fn.Add(g.typ(ty.Result))
		}
		return fn
	case *sema.Ref:
		return Op("*").Add(g.typ(ty.Elem))
	}
	panic(fmt.Sprintf("unhandled type %T", t))
}

var keywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
}

// ident makes a field name usable in Go.
func ident(name string) string {
	if keywords[name] || name == "_" {
		return name + "_"
	}
	return name
}

// localName is unique per binding, so Go's scoping never merges two smpl
// bindings of the same spelling.
func localName(l *sema.Local) string {
	return fmt.Sprintf("%s_%d", l.Name, l.ID)
}
