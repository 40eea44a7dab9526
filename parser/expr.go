package parser

import (
	"github.com/pontaoski/smplc/ast"
	"github.com/pontaoski/smplc/types"
)

// Binding power of each binary operator. Higher binds tighter.
var precedence = map[types.TokenKind]int{
	types.LAND:    4,
	types.LOR:     4,
	types.EQ:      9,
	types.NEQ:     9,
	types.LT:      10,
	types.LTE:     10,
	types.GT:      10,
	types.GTE:     10,
	types.PLUS:    13,
	types.MINUS:   13,
	types.STAR:    14,
	types.SLASH:   14,
	types.PERCENT: 14,
}

var binaryOps = map[types.TokenKind]ast.BinaryOp{
	types.LAND:    ast.And,
	types.LOR:     ast.Or,
	types.EQ:      ast.Eq,
	types.NEQ:     ast.Neq,
	types.LT:      ast.Lt,
	types.LTE:     ast.Lte,
	types.GT:      ast.Gt,
	types.GTE:     ast.Gte,
	types.PLUS:    ast.Add,
	types.MINUS:   ast.Sub,
	types.STAR:    ast.Mul,
	types.SLASH:   ast.Div,
	types.PERCENT: ast.Mod,
}

var unaryOps = map[types.TokenKind]ast.UnaryOp{
	types.MINUS: ast.Neg,
	types.BANG:  ast.Not,
	types.AMP:   ast.Ref,
	types.STAR:  ast.Deref,
}

var leafStart = []types.TokenKind{
	types.INT, types.FLOAT, types.STRING, types.TRUE, types.FALSE,
	types.IDENT, types.INIT, types.LPAREN, types.LBRACKET,
}

func (p *Parser) parseExpr() ast.Expr {
	return p.parseBinary(0)
}

func (p *Parser) parseBinary(minPrec int) ast.Expr {
	left := p.parseUnary()

	for {
		tok := p.l.Peek()
		prec, ok := precedence[tok.Kind]
		if !ok || prec < minPrec {
			return left
		}
		p.next()

		right := p.parseBinary(prec + 1)
		left = &ast.BinaryExpr{
			Op:       binaryOps[tok.Kind],
			Left:     left,
			Right:    right,
			Location: types.Join(left.Span(), right.Span()),
		}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	tok := p.l.Peek()
	if op, ok := unaryOps[tok.Kind]; ok {
		p.next()
		x := p.parseUnary()
		return &ast.UnaryExpr{Op: op, X: x, Location: p.span(tok.Location)}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expr {
	x := p.parseLeaf()

	for {
		switch {
		case p.peekIs(types.PERIOD):
			p.next()
			field := p.ident("field access")
			x = &ast.FieldAccess{Base: x, Field: field, Location: p.span(x.Span())}
		case p.peekIs(types.LBRACKET):
			p.next()
			index := p.nested(p.parseExpr)
			p.expect("index expression", types.RBRACKET)
			x = &ast.IndexExpr{Base: x, Index: index, Location: p.span(x.Span())}
		default:
			return x
		}
	}
}

// nested parses inside delimiters, where struct literals are unambiguous.
func (p *Parser) nested(f func() ast.Expr) ast.Expr {
	saved := p.noStruct
	p.noStruct = false
	defer func() { p.noStruct = saved }()
	return f()
}

func (p *Parser) parseArgs(construct string) (ret []ast.Expr) {
	p.list(construct, types.RPAREN, func() {
		ret = append(ret, p.nested(p.parseExpr))
	})
	return ret
}

func (p *Parser) parseLeaf() ast.Expr {
	tok := p.l.Peek()

	switch tok.Kind {
	case types.INT, types.FLOAT, types.STRING, types.TRUE, types.FALSE:
		p.next()
		lit := &ast.Literal{Value: tok.Lexeme, Location: tok.Location}
		switch tok.Kind {
		case types.INT:
			lit.Kind = ast.IntLit
		case types.FLOAT:
			lit.Kind = ast.FloatLit
		case types.STRING:
			lit.Kind = ast.StringLit
		default:
			lit.Kind = ast.BoolLit
		}
		return lit
	case types.LPAREN:
		p.next()
		x := p.nested(p.parseExpr)
		p.expect("parenthesized expression", types.RPAREN)
		return &ast.ParenExpr{X: x, Location: p.span(tok.Location)}
	case types.INIT:
		p.next()
		path := p.parsePath("struct initializer")
		return p.parseStructInit(tok.Location, path, true)
	case types.LBRACKET:
		p.next()
		first := p.nested(p.parseExpr)
		if p.peekIs(types.SEMI) {
			p.next()
			n := p.parseLength("array repeat")
			p.expect("array repeat", types.RBRACKET)
			return &ast.ArrayRepeat{Value: first, Len: n, Location: p.span(tok.Location)}
		}
		lit := &ast.ArrayLit{Elems: []ast.Expr{first}}
		if p.peekIs(types.COMMA) {
			p.next()
			p.list("array literal", types.RBRACKET, func() {
				lit.Elems = append(lit.Elems, p.nested(p.parseExpr))
			})
		} else {
			p.expect("array literal", types.COMMA, types.RBRACKET)
		}
		lit.Location = p.span(tok.Location)
		return lit
	case types.IDENT:
		path := p.parsePath("expression")
		if p.peekIs(types.LBRACE) && !p.noStruct {
			return p.parseStructInit(tok.Location, path, false)
		}

		binding := &ast.Binding{Path: path, Location: path.Location}
		if !p.peekIs(types.LPAREN) {
			return binding
		}

		p.next()
		call := &ast.FnCall{Callee: binding}
		if p.peekIs(types.TYPE) {
			call.TypeArgs = p.parseTypeArgs()
			p.expect("function call", types.LPAREN)
		}
		call.Args = p.parseArgs("function call")
		call.Location = p.span(tok.Location)
		return call
	}

	p.unexpected("expression", leafStart...)
	return nil
}

// parseStructInit is called with the lexer at the opening brace.
func (p *Parser) parseStructInit(from types.Span, path *ast.Path, keyword bool) ast.Expr {
	init := &ast.StructInit{Type: path, Keyword: keyword}

	p.expect("struct initializer", types.LBRACE)
	p.list("struct initializer", types.RBRACE, func() {
		name := p.ident("field initializer")
		p.expect("field initializer", types.COLON)
		value := p.nested(p.parseExpr)
		init.Fields = append(init.Fields, &ast.FieldInit{
			Name:     name,
			Value:    value,
			Location: p.span(name.Location),
		})
	})

	init.Location = p.span(from)
	return init
}
