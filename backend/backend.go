package backend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/coreos/pkg/capnslog"
	"github.com/pontaoski/smplc/errors"
	"github.com/pontaoski/smplc/sema"
	"github.com/pontaoski/smplc/types"
	"github.com/ztrue/tracerr"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/smplc", "backend")

// Generator lowers a checked program to target source text.
// Generate must not modify the program.
type Generator interface {
	Name() string
	Generate(p *sema.Program) ([]byte, error)
}

var (
	mu       sync.RWMutex
	registry = map[int]Generator{}
)

// Register makes g available under id. It panics if id is taken.
func Register(id int, g Generator) {
	mu.Lock()
	defer mu.Unlock()

	if prev, ok := registry[id]; ok {
		panic(fmt.Sprintf("backend: id %d registered twice (%s and %s)", id, prev.Name(), g.Name()))
	}
	registry[id] = g
}

func Lookup(id int) (Generator, error) {
	mu.RLock()
	defer mu.RUnlock()

	g, ok := registry[id]
	if !ok {
		var ids []int
		for known := range registry {
			ids = append(ids, known)
		}
		sort.Ints(ids)
		return nil, tracerr.Wrap(errors.UnknownBackendError{ID: id, Available: ids})
	}
	return g, nil
}

type Entry struct {
	ID        int
	Generator Generator
}

// List returns the registered backends ordered by id.
func List() []Entry {
	mu.RLock()
	defer mu.RUnlock()

	var ret []Entry
	for id, g := range registry {
		ret = append(ret, Entry{ID: id, Generator: g})
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret
}

func Generate(p *sema.Program, id int) ([]byte, error) {
	g, err := Lookup(id)
	if err != nil {
		return nil, err
	}

	plog.Debugf("lowering with backend %d (%s)", id, g.Name())
	out, err := g.Generate(p)
	if err != nil {
		return nil, tracerr.Wrap(err)
	}
	return out, nil
}

// Unsupported is the error a generator returns for a construct it cannot lower.
func Unsupported(backend, construct string, at types.Span) error {
	return errors.BackendLoweringError{Backend: backend, Construct: construct, Location: at}
}

// Catch turns a BackendLoweringError raised by panic into *err. Generators
// defer it at their entry point.
func Catch(err *error) {
	if r := recover(); r != nil {
		lerr, ok := r.(errors.BackendLoweringError)
		if !ok {
			panic(r)
		}
		*err = lerr
	}
}
