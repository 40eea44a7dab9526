package compiler

import (
	_ "embed"

	"github.com/coreos/pkg/capnslog"
	"github.com/pontaoski/smplc/ast"
	"github.com/pontaoski/smplc/backend"
	"github.com/pontaoski/smplc/modgraph"
	"github.com/pontaoski/smplc/parser"
	"github.com/pontaoski/smplc/sema"

	_ "github.com/pontaoski/smplc/backend/golang"
	_ "github.com/pontaoski/smplc/backend/llvm"
	_ "github.com/pontaoski/smplc/backend/rust"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/smplc", "compiler")

// Prelude is the source of module std, implicitly used by every module.
//go:embed prelude.smpl
var Prelude string

const PreludeFile = "<prelude>"

// Source is one input file.
type Source struct {
	Name string
	Text string
}

func Parse(src Source) (*ast.Module, error) {
	return parser.Parse(src.Text, src.Name)
}

// Check parses sources together with the prelude and analyzes them.
func Check(sources []Source) (*sema.Program, error) {
	prelude, err := Parse(Source{Name: PreludeFile, Text: Prelude})
	if err != nil {
		return nil, err
	}
	modules := []*ast.Module{prelude}

	for _, src := range sources {
		m, err := Parse(src)
		if err != nil {
			return nil, err
		}
		plog.Debugf("parsed %s as module %s (%d items)", src.Name, m.ModuleName(), len(m.Items))
		modules = append(modules, m)
	}

	g, err := modgraph.Build(modules...)
	if err != nil {
		return nil, err
	}

	return sema.Check(g)
}

// Compile checks sources and lowers them with the backend registered under backendID.
func Compile(sources []Source, backendID int) ([]byte, error) {
	gen, err := backend.Lookup(backendID)
	if err != nil {
		return nil, err
	}

	prog, err := Check(sources)
	if err != nil {
		return nil, err
	}

	plog.Infof("generating %s output for %d modules", gen.Name(), len(prog.Modules))
	return backend.Generate(prog, backendID)
}
