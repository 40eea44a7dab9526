package ast

//go:generate sh -c "cd ../tool && go run . ../ast/nodes.adt ../ast/nodes_gen.go ast"

import (
	"strings"

	"github.com/pontaoski/smplc/types"
)

// DefaultModule names files without a mod declaration.
const DefaultModule = "main"

type Node interface {
	Span() types.Span
}

type Ident struct {
	Name     string
	Location types.Span
}

// Path is a possibly qualified name such as a::b.
type Path struct {
	Parts    []*Ident
	Location types.Span
}

func (p *Path) String() string {
	var names []string
	for _, part := range p.Parts {
		names = append(names, part.Name)
	}
	return strings.Join(names, "::")
}

// Last is the final segment of the path.
func (p *Path) Last() *Ident {
	return p.Parts[len(p.Parts)-1]
}

type Module struct {
	Name     *Ident
	Items    []Item
	Filename string
	Location types.Span
}

// ModuleName is the declared module name, or DefaultModule.
func (m *Module) ModuleName() string {
	if m.Name == nil {
		return DefaultModule
	}
	return m.Name.Name
}

func (m *Module) Uses() []*UseDecl {
	var ret []*UseDecl
	for _, item := range m.Items {
		if use, ok := item.(*UseDecl); ok {
			ret = append(ret, use)
		}
	}
	return ret
}

type UseDecl struct {
	Module   *Ident
	Location types.Span
}

type Field struct {
	Name     *Ident
	Type     TypeAnnotation
	Location types.Span
}

type StructDecl struct {
	Name     *Ident
	Fields   []*Field
	Location types.Span
}

type OpaqueDecl struct {
	Name       *Ident
	TypeParams []*Ident
	Location   types.Span
}

type Param struct {
	Name     *Ident
	Type     TypeAnnotation
	Location types.Span
}

type FnDecl struct {
	Name       *Ident
	TypeParams []*Ident
	Params     []*Param
	Returns    TypeAnnotation
	Body       *Block
	Location   types.Span
}

// BuiltinFnDecl is a function signature with no body, implemented by the backends.
type BuiltinFnDecl struct {
	Name       *Ident
	TypeParams []*Ident
	Params     []*Param
	Returns    TypeAnnotation
	Location   types.Span
}

// ItemName returns the declared name of an item, or nil for use declarations.
func ItemName(item Item) *Ident {
	switch it := item.(type) {
	case *FnDecl:
		return it.Name
	case *BuiltinFnDecl:
		return it.Name
	case *StructDecl:
		return it.Name
	case *OpaqueDecl:
		return it.Name
	}
	return nil
}

type PathType struct {
	Path     *Path
	Args     []TypeAnnotation
	Location types.Span
}

type ArrayType struct {
	Elem     TypeAnnotation
	Len      uint64
	Location types.Span
}

type FnType struct {
	Params   []TypeAnnotation
	Returns  TypeAnnotation
	Location types.Span
}

type Block struct {
	Stmts    []Stmt
	Location types.Span
}

type LetStmt struct {
	Name     *Ident
	Type     TypeAnnotation
	Value    Expr
	Location types.Span
}

type AssignStmt struct {
	Target   Expr
	Value    Expr
	Location types.Span
}

type CondBranch struct {
	Cond     Expr
	Body     *Block
	Location types.Span
}

// IfStmt holds the if branch followed by any elif branches.
type IfStmt struct {
	Branches []*CondBranch
	Else     *Block
	Location types.Span
}

type WhileStmt struct {
	Cond     Expr
	Body     *Block
	Location types.Span
}

type ReturnStmt struct {
	Value    Expr
	Location types.Span
}

type BreakStmt struct {
	Location types.Span
}

type ContinueStmt struct {
	Location types.Span
}

type ExprStmt struct {
	X        Expr
	Location types.Span
}

type LitKind int

const (
	IntLit LitKind = iota
	FloatLit
	BoolLit
	StringLit
)

// Literal keeps the source spelling of numbers and the decoded text of strings.
type Literal struct {
	Kind     LitKind
	Value    string
	Location types.Span
}

type Binding struct {
	Path     *Path
	Location types.Span
}

type FieldAccess struct {
	Base     Expr
	Field    *Ident
	Location types.Span
}

type FnCall struct {
	Callee   *Binding
	TypeArgs []TypeAnnotation
	Args     []Expr
	Location types.Span
}

type FieldInit struct {
	Name     *Ident
	Value    Expr
	Location types.Span
}

// StructInit is written either as init Path { ... } or Path { ... }.
type StructInit struct {
	Type     *Path
	Fields   []*FieldInit
	Keyword  bool
	Location types.Span
}

type UnaryOp int

const (
	Neg UnaryOp = iota
	Not
	Ref
	Deref
)

var unaryOps = [...]string{Neg: "-", Not: "!", Ref: "&", Deref: "*"}

func (o UnaryOp) String() string { return unaryOps[o] }

type UnaryExpr struct {
	Op       UnaryOp
	X        Expr
	Location types.Span
}

type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Mod
	Eq
	Neq
	Lt
	Lte
	Gt
	Gte
	And
	Or
)

var binaryOps = [...]string{
	Add: "+", Sub: "-", Mul: "*", Div: "/", Mod: "%",
	Eq: "==", Neq: "!=", Lt: "<", Lte: "<=", Gt: ">", Gte: ">=",
	And: "&&", Or: "||",
}

func (o BinaryOp) String() string { return binaryOps[o] }

// IsComparison reports whether the operator yields a bool from non-bool operands.
func (o BinaryOp) IsComparison() bool {
	return o >= Eq && o <= Gte
}

func (o BinaryOp) IsLogical() bool {
	return o == And || o == Or
}

type BinaryExpr struct {
	Op       BinaryOp
	Left     Expr
	Right    Expr
	Location types.Span
}

type ParenExpr struct {
	X        Expr
	Location types.Span
}

type ArrayLit struct {
	Elems    []Expr
	Location types.Span
}

type ArrayRepeat struct {
	Value    Expr
	Len      uint64
	Location types.Span
}

type IndexExpr struct {
	Base     Expr
	Index    Expr
	Location types.Span
}
