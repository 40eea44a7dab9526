package ast

import (
	"fmt"
	"strconv"
	"strings"
)

type printer struct {
	sb    strings.Builder
	depth int
}

// Print renders a module as smpl source that parses back to the same tree.
func Print(m *Module) string {
	p := &printer{}
	if m.Name != nil {
		p.line("mod %s;", m.Name.Name)
	}
	for i, item := range m.Items {
		if i > 0 || m.Name != nil {
			p.sb.WriteString("\n")
		}
		p.item(item)
	}
	return p.sb.String()
}

// PrintExpr renders a single expression.
func PrintExpr(e Expr) string {
	return expr(e)
}

// PrintType renders a single type annotation.
func PrintType(t TypeAnnotation) string {
	return typ(t)
}

func (p *printer) line(format string, args ...interface{}) {
	p.sb.WriteString(strings.Repeat("\t", p.depth))
	fmt.Fprintf(&p.sb, format, args...)
	p.sb.WriteString("\n")
}

func (p *printer) item(item Item) {
	switch it := item.(type) {
	case *UseDecl:
		p.line("use %s;", it.Module.Name)
	case *StructDecl:
		p.line("struct %s {", it.Name.Name)
		p.depth++
		for _, field := range it.Fields {
			p.line("%s: %s,", field.Name.Name, typ(field.Type))
		}
		p.depth--
		p.line("}")
	case *OpaqueDecl:
		p.line("opaque %s%s;", it.Name.Name, typeParams(it.TypeParams))
	case *FnDecl:
		p.sb.WriteString(signature("fn", it.Name, it.TypeParams, it.Params, it.Returns))
		p.sb.WriteString(" ")
		p.block(it.Body)
		p.sb.WriteString("\n")
	case *BuiltinFnDecl:
		p.line("%s;", signature("builtin fn", it.Name, it.TypeParams, it.Params, it.Returns))
	default:
		panic(fmt.Sprintf("unhandled item %T", item))
	}
}

func signature(keyword string, name *Ident, tparams []*Ident, params []*Param, returns TypeAnnotation) string {
	var ps []string
	for _, param := range params {
		ps = append(ps, param.Name.Name+": "+typ(param.Type))
	}
	ret := ""
	if returns != nil {
		ret = " -> " + typ(returns)
	}
	return fmt.Sprintf("%s %s%s(%s)%s", keyword, name.Name, typeParams(tparams), strings.Join(ps, ", "), ret)
}

func typeParams(tparams []*Ident) string {
	if len(tparams) == 0 {
		return ""
	}
	var names []string
	for _, tp := range tparams {
		names = append(names, tp.Name)
	}
	return "(type " + strings.Join(names, ", ") + ")"
}

func typeArgs(args []TypeAnnotation) string {
	var ts []string
	for _, arg := range args {
		ts = append(ts, typ(arg))
	}
	return "(type " + strings.Join(ts, ", ") + ")"
}

func typ(t TypeAnnotation) string {
	switch ty := t.(type) {
	case *PathType:
		if len(ty.Args) > 0 {
			return ty.Path.String() + typeArgs(ty.Args)
		}
		return ty.Path.String()
	case *ArrayType:
		return fmt.Sprintf("[%s; %d]", typ(ty.Elem), ty.Len)
	case *FnType:
		var ps []string
		for _, param := range ty.Params {
			ps = append(ps, typ(param))
		}
		s := "fn(" + strings.Join(ps, ", ") + ")"
		if ty.Returns != nil {
			s += " -> " + typ(ty.Returns)
		}
		return s
	}
	panic(fmt.Sprintf("unhandled type annotation %T", t))
}

// block writes a braced block starting at the current column.
func (p *printer) block(b *Block) {
	p.sb.WriteString("{\n")
	p.depth++
	for _, stmt := range b.Stmts {
		p.stmt(stmt)
	}
	p.depth--
	p.sb.WriteString(strings.Repeat("\t", p.depth))
	p.sb.WriteString("}")
}

func (p *printer) indent() {
	p.sb.WriteString(strings.Repeat("\t", p.depth))
}

func (p *printer) stmt(s Stmt) {
	switch st := s.(type) {
	case *LetStmt:
		p.line("let %s: %s = %s;", st.Name.Name, typ(st.Type), expr(st.Value))
	case *AssignStmt:
		p.line("%s = %s;", expr(st.Target), expr(st.Value))
	case *IfStmt:
		p.indent()
		for i, branch := range st.Branches {
			if i == 0 {
				p.sb.WriteString("if ")
			} else {
				p.sb.WriteString(" elif ")
			}
			p.sb.WriteString(expr(branch.Cond))
			p.sb.WriteString(" ")
			p.block(branch.Body)
		}
		if st.Else != nil {
			p.sb.WriteString(" else ")
			p.block(st.Else)
		}
		p.sb.WriteString("\n")
	case *WhileStmt:
		p.indent()
		p.sb.WriteString("while " + expr(st.Cond) + " ")
		p.block(st.Body)
		p.sb.WriteString("\n")
	case *ReturnStmt:
		if st.Value == nil {
			p.line("return;")
		} else {
			p.line("return %s;", expr(st.Value))
		}
	case *BreakStmt:
		p.line("break;")
	case *ContinueStmt:
		p.line("continue;")
	case *ExprStmt:
		p.line("%s;", expr(st.X))
	case *Block:
		p.indent()
		p.block(st)
		p.sb.WriteString("\n")
	default:
		panic(fmt.Sprintf("unhandled statement %T", s))
	}
}

// QuoteString escapes s as a smpl string literal.
func QuoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case 0:
			sb.WriteString(`\0`)
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func exprList(es []Expr) string {
	var ret []string
	for _, e := range es {
		ret = append(ret, expr(e))
	}
	return strings.Join(ret, ", ")
}

func expr(e Expr) string {
	switch ex := e.(type) {
	case *Literal:
		if ex.Kind == StringLit {
			return QuoteString(ex.Value)
		}
		return ex.Value
	case *Binding:
		return ex.Path.String()
	case *FieldAccess:
		return expr(ex.Base) + "." + ex.Field.Name
	case *FnCall:
		s := ex.Callee.Path.String()
		if len(ex.TypeArgs) > 0 {
			s += typeArgs(ex.TypeArgs)
		}
		return s + "(" + exprList(ex.Args) + ")"
	case *StructInit:
		var fields []string
		for _, field := range ex.Fields {
			fields = append(fields, field.Name.Name+": "+expr(field.Value))
		}
		s := ex.Type.String() + " { " + strings.Join(fields, ", ") + " }"
		if len(fields) == 0 {
			s = ex.Type.String() + " {}"
		}
		if ex.Keyword {
			s = "init " + s
		}
		return s
	case *UnaryExpr:
		operand := expr(ex.X)
		if ex.Op == Ref && strings.HasPrefix(operand, "&") {
			// keep "& &x" from lexing as &&
			return "& " + operand
		}
		return ex.Op.String() + operand
	case *BinaryExpr:
		return expr(ex.Left) + " " + ex.Op.String() + " " + expr(ex.Right)
	case *ParenExpr:
		return "(" + expr(ex.X) + ")"
	case *ArrayLit:
		return "[" + exprList(ex.Elems) + "]"
	case *ArrayRepeat:
		return "[" + expr(ex.Value) + "; " + strconv.FormatUint(ex.Len, 10) + "]"
	case *IndexExpr:
		return expr(ex.Base) + "[" + expr(ex.Index) + "]"
	}
	panic(fmt.Sprintf("unhandled expression %T", e))
}
