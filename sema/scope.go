package sema

import (
	"sort"

	"github.com/pontaoski/smplc/ast"
	"github.com/pontaoski/smplc/errors"
	"github.com/sahilm/fuzzy"
)

func (c *checker) pushScope() {
	c.scopes = append(c.scopes, make(map[string]Symbol))
}

func (c *checker) popScope() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

func (c *checker) top() map[string]Symbol {
	return c.scopes[len(c.scopes)-1]
}

func (c *checker) lookupLocal(name string) (Symbol, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		val, ok := c.scopes[i][name]
		if ok {
			return val, true
		}
	}
	return nil, false
}

// define binds id in the innermost scope. Outer bindings of the same name are
// shadowed, not replaced.
func (c *checker) define(id *ast.Ident, t Type, param bool) *Local {
	if prev, ok := c.top()[id.Name]; ok {
		err := errors.DuplicateDeclarationError{Name: id.Name, Location: id.Location}
		if local, ok := prev.(*Local); ok {
			err.Previous = local.Decl.Location
		}
		c.fail(err)
	}

	c.nextID++
	local := &Local{Name: id.Name, Type: t, ID: c.nextID, Param: param, Decl: id}
	c.top()[id.Name] = local
	c.info.Defs[id] = local
	return local
}

// localNames lists every binding visible from the current scope.
func (c *checker) localNames() []string {
	seen := map[string]bool{}
	var ret []string
	for _, scope := range c.scopes {
		for name := range scope {
			if !seen[name] {
				seen[name] = true
				ret = append(ret, name)
			}
		}
	}
	sort.Strings(ret)
	return ret
}

// typeNames lists every name usable in a type annotation from here.
func (c *checker) typeNames() []string {
	var ret []string
	for name := range c.tparams {
		ret = append(ret, name)
	}
	for name := range basics {
		ret = append(ret, name)
	}
	for _, name := range c.cur.Names() {
		switch c.cur.Visible[name].Item.(type) {
		case *ast.StructDecl, *ast.OpaqueDecl:
			ret = append(ret, name)
		}
	}
	sort.Strings(ret)
	return ret
}

const maxSuggestions = 3

// suggest picks close spellings of name from candidates.
func suggest(name string, candidates []string) []string {
	var ret []string
	seen := map[string]bool{name: true}

	for _, match := range fuzzy.Find(name, candidates) {
		if !seen[match.Str] {
			seen[match.Str] = true
			ret = append(ret, match.Str)
		}
	}

	// names that are a subsequence of the misspelling, e.g. "valuee"
	for _, cand := range candidates {
		if seen[cand] || len(cand) < 2 {
			continue
		}
		if len(fuzzy.Find(cand, []string{name})) > 0 {
			seen[cand] = true
			ret = append(ret, cand)
		}
	}

	if len(ret) > maxSuggestions {
		ret = ret[:maxSuggestions]
	}
	return ret
}

func pathNames(p *ast.Path) []string {
	var ret []string
	for _, part := range p.Parts {
		ret = append(ret, part.Name)
	}
	return ret
}

// undefined reports an unresolvable path. values selects which bare names
// are offered as suggestions.
func (c *checker) undefined(p *ast.Path, values bool) {
	parts := pathNames(p)

	switch len(parts) {
	case 1:
		var candidates []string
		if values {
			candidates = append(c.localNames(), c.cur.Names()...)
		} else {
			candidates = c.typeNames()
		}
		c.fail(errors.UndefinedSymbolError{
			Name:        parts[0],
			Suggestions: suggest(parts[0], candidates),
			Location:    p.Location,
		})
	case 2:
		target, ok := c.graph.Module(parts[0])
		if !ok {
			var modules []string
			for _, m := range c.graph.Modules {
				modules = append(modules, m.Name)
			}
			c.fail(errors.UndefinedSymbolError{
				Name:        parts[0],
				Suggestions: suggest(parts[0], modules),
				Location:    p.Parts[0].Location,
			})
		}

		var items []string
		for name := range target.Items {
			items = append(items, name)
		}
		sort.Strings(items)
		var qualified []string
		for _, s := range suggest(parts[1], items) {
			qualified = append(qualified, parts[0]+"::"+s)
		}
		c.fail(errors.UndefinedSymbolError{Name: p.String(), Suggestions: qualified, Location: p.Location})
	}

	c.fail(errors.UndefinedSymbolError{Name: p.String(), Location: p.Location})
}
