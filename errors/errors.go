package errors

import (
	"fmt"
	"strings"

	"github.com/pontaoski/smplc/types"
)

// CompileError is implemented by every error the pipeline reports.
type CompileError interface {
	error
	Where() types.Span
}

type LexError struct {
	Message  string
	Location types.Span
}

func (e LexError) Error() string {
	return fmt.Sprintf("%s. %s", e.Message, e.Location)
}

func (e LexError) Where() types.Span { return e.Location }

type ParseError struct {
	Construct string
	Expected  []types.TokenKind
	Got       types.Token
	Location  types.Span
}

func (e ParseError) Error() string {
	what := e.Construct
	if what == "" {
		what = "input"
	}
	switch len(e.Expected) {
	case 0:
		return fmt.Sprintf("unexpected %s while parsing %s. %s", e.Got, what, e.Location)
	case 1:
		return fmt.Sprintf("got %s, expected %s while parsing %s. %s", e.Got, e.Expected[0], what, e.Location)
	}
	return fmt.Sprintf("got %s, expected one of %s while parsing %s. %s", e.Got, e.Expected, what, e.Location)
}

func (e ParseError) Where() types.Span { return e.Location }

type UnresolvedImportError struct {
	Module   string
	Importer string
	Location types.Span
}

func (e UnresolvedImportError) Error() string {
	return fmt.Sprintf("module %s uses unknown module %s. %s", e.Importer, e.Module, e.Location)
}

func (e UnresolvedImportError) Where() types.Span { return e.Location }

type DuplicateModuleError struct {
	Name     string
	Location types.Span
	Previous types.Span
}

func (e DuplicateModuleError) Error() string {
	return fmt.Sprintf("module %s declared more than once (previously at %s). %s", e.Name, e.Previous, e.Location)
}

func (e DuplicateModuleError) Where() types.Span { return e.Location }

type UndefinedSymbolError struct {
	Name        string
	Suggestions []string
	Location    types.Span
}

func (e UndefinedSymbolError) Error() string {
	if len(e.Suggestions) > 0 {
		return fmt.Sprintf("undefined: %s (did you mean %s?). %s", e.Name, strings.Join(e.Suggestions, ", "), e.Location)
	}
	return fmt.Sprintf("undefined: %s. %s", e.Name, e.Location)
}

func (e UndefinedSymbolError) Where() types.Span { return e.Location }

type TypeMismatchError struct {
	Context  string
	Expected string
	Found    string
	Location types.Span
}

func (e TypeMismatchError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: expected %s, found %s. %s", e.Context, e.Expected, e.Found, e.Location)
	}
	return fmt.Sprintf("expected %s, found %s. %s", e.Expected, e.Found, e.Location)
}

func (e TypeMismatchError) Where() types.Span { return e.Location }

// ArityKind tells whether an ArityMismatchError counts value or type arguments.
type ArityKind int

const (
	ValueArguments ArityKind = iota
	TypeArguments
)

func (k ArityKind) String() string {
	if k == TypeArguments {
		return "type arguments"
	}
	return "arguments"
}

type ArityMismatchError struct {
	Callee   string
	Kind     ArityKind
	Expected int
	Found    int
	Location types.Span
}

func (e ArityMismatchError) Error() string {
	return fmt.Sprintf("%s takes %d %s, %d supplied. %s", e.Callee, e.Expected, e.Kind, e.Found, e.Location)
}

func (e ArityMismatchError) Where() types.Span { return e.Location }

type DuplicateFieldError struct {
	Name     string
	Location types.Span
}

func (e DuplicateFieldError) Error() string {
	return fmt.Sprintf("field %s specified more than once. %s", e.Name, e.Location)
}

func (e DuplicateFieldError) Where() types.Span { return e.Location }

type MissingFieldError struct {
	Struct   string
	Fields   []string
	Location types.Span
}

func (e MissingFieldError) Error() string {
	return fmt.Sprintf("init of %s is missing field(s) %s. %s", e.Struct, strings.Join(e.Fields, ", "), e.Location)
}

func (e MissingFieldError) Where() types.Span { return e.Location }

type UnknownFieldError struct {
	Struct   string
	Field    string
	Location types.Span
}

func (e UnknownFieldError) Error() string {
	return fmt.Sprintf("%s has no field %s. %s", e.Struct, e.Field, e.Location)
}

func (e UnknownFieldError) Where() types.Span { return e.Location }

type DuplicateDeclarationError struct {
	Name     string
	Location types.Span
	Previous types.Span
}

func (e DuplicateDeclarationError) Error() string {
	return fmt.Sprintf("%s redeclared in this scope (previously at %s). %s", e.Name, e.Previous, e.Location)
}

func (e DuplicateDeclarationError) Where() types.Span { return e.Location }

type ControlFlowKind int

const (
	MissingReturn ControlFlowKind = iota
	BadBreak
	BadContinue
)

type ControlFlowError struct {
	Kind     ControlFlowKind
	Function string
	Location types.Span
}

func (e ControlFlowError) Error() string {
	switch e.Kind {
	case BadBreak:
		return fmt.Sprintf("break outside of a loop. %s", e.Location)
	case BadContinue:
		return fmt.Sprintf("continue outside of a loop. %s", e.Location)
	}
	return fmt.Sprintf("function %s does not return a value on every path. %s", e.Function, e.Location)
}

func (e ControlFlowError) Where() types.Span { return e.Location }

type CyclicTypeError struct {
	Struct   string
	Location types.Span
}

func (e CyclicTypeError) Error() string {
	return fmt.Sprintf("struct %s contains itself by value. %s", e.Struct, e.Location)
}

func (e CyclicTypeError) Where() types.Span { return e.Location }

type InitOpaqueError struct {
	Type     string
	Location types.Span
}

func (e InitOpaqueError) Error() string {
	return fmt.Sprintf("opaque type %s cannot be initialized directly. %s", e.Type, e.Location)
}

func (e InitOpaqueError) Where() types.Span { return e.Location }

type MultipleMainError struct {
	Location types.Span
	Previous types.Span
}

func (e MultipleMainError) Error() string {
	return fmt.Sprintf("main declared more than once (previously at %s). %s", e.Previous, e.Location)
}

func (e MultipleMainError) Where() types.Span { return e.Location }

type UnknownBackendError struct {
	ID        int
	Available []int
}

func (e UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown backend %d (available: %v)", e.ID, e.Available)
}

func (e UnknownBackendError) Where() types.Span { return types.Span{} }

type BackendLoweringError struct {
	Backend   string
	Construct string
	Location  types.Span
}

func (e BackendLoweringError) Error() string {
	return fmt.Sprintf("the %s backend cannot lower %s. %s", e.Backend, e.Construct, e.Location)
}

func (e BackendLoweringError) Where() types.Span { return e.Location }
