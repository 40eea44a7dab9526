package modgraph

import (
	"sort"

	"github.com/coreos/pkg/capnslog"
	"github.com/pontaoski/smplc/ast"
	"github.com/pontaoski/smplc/errors"
	"github.com/ztrue/tracerr"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/smplc", "modgraph")

// PreludeName is the module implicitly used by every other module.
const PreludeName = "std"

type Module struct {
	Name    string
	AST     *ast.Module
	Prelude bool

	// Items holds the module's own top-level declarations by name.
	Items map[string]ast.Item
	// Uses lists modules named by use declarations, in order.
	Uses []*Module
	// Visible maps every bare name usable inside the module to its item.
	Visible map[string]Entry
}

// Entry is an item together with the module that declares it.
type Entry struct {
	Item   ast.Item
	Module *Module
}

type Graph struct {
	// Modules is in input order, with the prelude first when present.
	Modules []*Module
	byName  map[string]*Module
}

func (g *Graph) Module(name string) (*Module, bool) {
	m, ok := g.byName[name]
	return m, ok
}

// Lookup resolves path as seen from inside m. A one-part path is a bare name;
// a two-part path is module::item and works for every module in the graph.
func (g *Graph) Lookup(m *Module, path []string) (Entry, bool) {
	switch len(path) {
	case 1:
		e, ok := m.Visible[path[0]]
		return e, ok
	case 2:
		target, ok := g.byName[path[0]]
		if !ok {
			return Entry{}, false
		}
		item, ok := target.Items[path[1]]
		if !ok {
			return Entry{}, false
		}
		return Entry{Item: item, Module: target}, true
	}
	return Entry{}, false
}

// Names lists every bare name visible inside m, sorted.
func (m *Module) Names() []string {
	var ret []string
	for name := range m.Visible {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// Build links the parsed files into one namespace.
func Build(modules ...*ast.Module) (*Graph, error) {
	g, err := build(modules)
	if err != nil {
		return nil, tracerr.Wrap(err)
	}
	return g, nil
}

func build(modules []*ast.Module) (*Graph, error) {
	g := &Graph{byName: map[string]*Module{}}
	var prelude *Module

	for _, file := range modules {
		name := file.ModuleName()
		if prev, ok := g.byName[name]; ok {
			err := errors.DuplicateModuleError{Name: name, Previous: prev.AST.Location, Location: file.Location}
			if file.Name != nil {
				err.Location = file.Name.Location
			}
			if prev.AST.Name != nil {
				err.Previous = prev.AST.Name.Location
			}
			return nil, err
		}

		m := &Module{Name: name, AST: file, Items: map[string]ast.Item{}}
		for _, item := range file.Items {
			id := ast.ItemName(item)
			if id == nil {
				continue
			}
			if prev, ok := m.Items[id.Name]; ok {
				return nil, errors.DuplicateDeclarationError{
					Name:     id.Name,
					Location: id.Location,
					Previous: ast.ItemName(prev).Location,
				}
			}
			m.Items[id.Name] = item
		}

		if name == PreludeName {
			m.Prelude = true
			prelude = m
			g.Modules = append([]*Module{m}, g.Modules...)
		} else {
			g.Modules = append(g.Modules, m)
		}
		g.byName[name] = m
	}

	for _, m := range g.Modules {
		if err := g.link(m, prelude); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func (g *Graph) link(m *Module, prelude *Module) error {
	seen := map[string]*ast.UseDecl{}
	for _, use := range m.AST.Uses() {
		name := use.Module.Name
		if prev, ok := seen[name]; ok {
			return errors.DuplicateDeclarationError{Name: name, Location: use.Location, Previous: prev.Location}
		}
		seen[name] = use

		target, ok := g.byName[name]
		if !ok {
			return errors.UnresolvedImportError{Module: name, Importer: m.Name, Location: use.Module.Location}
		}
		m.Uses = append(m.Uses, target)
	}

	m.Visible = map[string]Entry{}

	// prelude names sit below everything else and may be shadowed
	if prelude != nil && prelude != m {
		for name, item := range prelude.Items {
			m.Visible[name] = Entry{Item: item, Module: prelude}
		}
	}

	imported := map[string]Entry{}
	for _, target := range m.Uses {
		if target == m {
			continue
		}
		for name, item := range target.Items {
			if _, own := m.Items[name]; own {
				continue
			}
			if prev, ok := imported[name]; ok && prev.Module != target {
				use := seen[target.Name]
				return errors.DuplicateDeclarationError{
					Name:     name,
					Location: use.Location,
					Previous: seen[prev.Module.Name].Location,
				}
			}
			imported[name] = Entry{Item: item, Module: target}
		}
	}
	for name, e := range imported {
		m.Visible[name] = e
	}

	for name, item := range m.Items {
		m.Visible[name] = Entry{Item: item, Module: m}
	}

	plog.Debugf("module %s: %d items, uses %d modules, %d visible names", m.Name, len(m.Items), len(m.Uses), len(m.Visible))
	return nil
}
