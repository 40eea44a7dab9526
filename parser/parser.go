package parser

import (
	"runtime"
	"strconv"

	"github.com/pontaoski/smplc/ast"
	"github.com/pontaoski/smplc/errors"
	"github.com/pontaoski/smplc/lexer"
	"github.com/pontaoski/smplc/types"
	"github.com/ztrue/tracerr"
)

type Parser struct {
	l    *lexer.Lexer
	last types.Position

	// noStruct is set while parsing if and while heads, where a '{' after a
	// path opens the body instead of a struct literal.
	noStruct bool
}

func NewParser(l *lexer.Lexer) *Parser {
	return &Parser{l: l}
}

// Parse reads one file from src.
func Parse(src, filename string) (*ast.Module, error) {
	return NewParser(lexer.NewLexer(src, filename)).Parse()
}

func (p *Parser) Parse() (m *ast.Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, isRuntime := r.(runtime.Error); isRuntime {
				panic(r)
			}
			rerr, ok := r.(error)
			if ok {
				m = nil
				err = tracerr.Wrap(rerr)
			} else {
				panic(r)
			}
		}
	}()

	m = &ast.Module{Filename: p.l.Filename()}
	start := p.l.Peek().Location

	if p.peekIs(types.MOD) {
		p.next()
		m.Name = p.ident("module declaration")
		p.expect("module declaration", types.SEMI)
	}

	for !p.peekIs(types.EOF) {
		m.Items = append(m.Items, p.parseItem())
	}

	m.Location = types.Span{From: start.From, To: p.last}
	return m, nil
}

func (p *Parser) next() types.Token {
	tok := p.l.Lex()
	p.last = tok.Location.To
	return tok
}

func (p *Parser) expect(construct string, k ...types.TokenKind) types.Token {
	tok := p.l.LexExpecting(construct, k...)
	p.last = tok.Location.To
	return tok
}

func (p *Parser) peekIs(k ...types.TokenKind) bool {
	return p.l.PeekIs(k...)
}

func (p *Parser) span(from types.Span) types.Span {
	return types.Span{From: from.From, To: p.last}
}

func (p *Parser) unexpected(construct string, expected ...types.TokenKind) {
	tok := p.l.Peek()
	panic(errors.ParseError{
		Construct: construct,
		Expected:  expected,
		Got:       tok,
		Location:  tok.Location,
	})
}

func (p *Parser) ident(construct string) *ast.Ident {
	tok := p.expect(construct, types.IDENT)
	return &ast.Ident{Name: tok.Lexeme, Location: tok.Location}
}

// list parses comma separated elements up to and including close,
// permitting a trailing comma.
func (p *Parser) list(construct string, close types.TokenKind, each func()) {
	for !p.peekIs(close) {
		each()
		if p.peekIs(close) {
			break
		}
		p.expect(construct, types.COMMA, close)
	}
	p.expect(construct, close)
}

func (p *Parser) parseItem() ast.Item {
	tok := p.l.Peek()

	switch tok.Kind {
	case types.USE:
		p.next()
		use := &ast.UseDecl{Module: p.ident("use declaration")}
		p.expect("use declaration", types.SEMI)
		use.Location = p.span(tok.Location)
		return use
	case types.STRUCT:
		return p.parseStruct()
	case types.OPAQUE:
		p.next()
		decl := &ast.OpaqueDecl{Name: p.ident("opaque declaration")}
		if p.peekIs(types.LPAREN) {
			p.next()
			decl.TypeParams = p.parseTypeParams("opaque declaration")
		}
		p.expect("opaque declaration", types.SEMI)
		decl.Location = p.span(tok.Location)
		return decl
	case types.FN:
		p.next()
		decl := &ast.FnDecl{}
		decl.Name, decl.TypeParams, decl.Params, decl.Returns = p.parseSignature("function declaration")
		decl.Body = p.parseBlock()
		decl.Location = p.span(tok.Location)
		return decl
	case types.BUILTIN:
		p.next()
		p.expect("builtin declaration", types.FN)
		decl := &ast.BuiltinFnDecl{}
		decl.Name, decl.TypeParams, decl.Params, decl.Returns = p.parseSignature("builtin declaration")
		p.expect("builtin declaration", types.SEMI)
		decl.Location = p.span(tok.Location)
		return decl
	}

	p.unexpected("item", types.USE, types.FN, types.BUILTIN, types.STRUCT, types.OPAQUE)
	return nil
}

func (p *Parser) parseStruct() *ast.StructDecl {
	tok := p.next()
	decl := &ast.StructDecl{Name: p.ident("struct declaration")}

	p.expect("struct declaration", types.LBRACE)
	p.list("struct declaration", types.RBRACE, func() {
		name := p.ident("struct field")
		p.expect("struct field", types.COLON)
		kind := p.parseType()
		decl.Fields = append(decl.Fields, &ast.Field{
			Name:     name,
			Type:     kind,
			Location: p.span(name.Location),
		})
	})

	decl.Location = p.span(tok.Location)
	return decl
}

// parseTypeParams is called after the opening parenthesis.
func (p *Parser) parseTypeParams(construct string) (ret []*ast.Ident) {
	p.expect(construct, types.TYPE)
	p.list(construct, types.RPAREN, func() {
		ret = append(ret, p.ident(construct))
	})
	if len(ret) == 0 {
		p.unexpected(construct, types.IDENT)
	}
	return ret
}

func (p *Parser) parseSignature(construct string) (name *ast.Ident, tparams []*ast.Ident, params []*ast.Param, returns ast.TypeAnnotation) {
	name = p.ident(construct)

	p.expect(construct, types.LPAREN)
	if p.peekIs(types.TYPE) {
		tparams = p.parseTypeParams(construct)
		p.expect(construct, types.LPAREN)
	}

	p.list("parameter list", types.RPAREN, func() {
		pname := p.ident("parameter")
		p.expect("parameter", types.COLON)
		kind := p.parseType()
		params = append(params, &ast.Param{
			Name:     pname,
			Type:     kind,
			Location: p.span(pname.Location),
		})
	})

	if p.peekIs(types.ARROW) {
		p.next()
		returns = p.parseType()
	}
	return
}

func (p *Parser) parsePath(construct string) *ast.Path {
	first := p.ident(construct)
	path := &ast.Path{Parts: []*ast.Ident{first}}
	for p.peekIs(types.COLONCOLON) {
		p.next()
		path.Parts = append(path.Parts, p.ident(construct))
	}
	path.Location = p.span(first.Location)
	return path
}

// parseTypeArgs is called after the opening parenthesis.
func (p *Parser) parseTypeArgs() (ret []ast.TypeAnnotation) {
	p.expect("type arguments", types.TYPE)
	p.list("type arguments", types.RPAREN, func() {
		ret = append(ret, p.parseType())
	})
	if len(ret) == 0 {
		p.unexpected("type arguments", types.IDENT, types.LBRACKET, types.FN)
	}
	return ret
}

func (p *Parser) parseType() ast.TypeAnnotation {
	tok := p.l.Peek()

	switch tok.Kind {
	case types.IDENT:
		t := &ast.PathType{Path: p.parsePath("type")}
		if p.peekIs(types.LPAREN) {
			p.next()
			t.Args = p.parseTypeArgs()
		}
		t.Location = p.span(tok.Location)
		return t
	case types.LBRACKET:
		p.next()
		t := &ast.ArrayType{Elem: p.parseType()}
		p.expect("array type", types.SEMI)
		t.Len = p.parseLength("array type")
		p.expect("array type", types.RBRACKET)
		t.Location = p.span(tok.Location)
		return t
	case types.FN:
		p.next()
		t := &ast.FnType{}
		p.expect("function type", types.LPAREN)
		p.list("function type", types.RPAREN, func() {
			t.Params = append(t.Params, p.parseType())
		})
		if p.peekIs(types.ARROW) {
			p.next()
			t.Returns = p.parseType()
		}
		t.Location = p.span(tok.Location)
		return t
	}

	p.unexpected("type", types.IDENT, types.LBRACKET, types.FN)
	return nil
}

func (p *Parser) parseLength(construct string) uint64 {
	tok := p.expect(construct, types.INT)
	n, err := strconv.ParseUint(tok.Lexeme, 10, 64)
	if err != nil {
		panic(errors.ParseError{Construct: construct, Got: tok, Location: tok.Location})
	}
	return n
}

func (p *Parser) parseBlock() *ast.Block {
	tok := p.expect("block", types.LBRACE)

	// struct literals are fine again inside braces
	saved := p.noStruct
	p.noStruct = false
	defer func() { p.noStruct = saved }()

	b := &ast.Block{}
	for !p.peekIs(types.RBRACE) {
		if p.peekIs(types.EOF) {
			p.unexpected("block", types.RBRACE)
		}
		b.Stmts = append(b.Stmts, p.parseStmt())
	}
	p.expect("block", types.RBRACE)

	b.Location = p.span(tok.Location)
	return b
}

// parseHead parses the condition of an if, elif or while.
func (p *Parser) parseHead() ast.Expr {
	saved := p.noStruct
	p.noStruct = true
	defer func() { p.noStruct = saved }()
	return p.parseExpr()
}

func (p *Parser) parseStmt() ast.Stmt {
	tok := p.l.Peek()

	switch tok.Kind {
	case types.LET:
		p.next()
		let := &ast.LetStmt{Name: p.ident("let statement")}
		p.expect("let statement", types.COLON)
		let.Type = p.parseType()
		p.expect("let statement", types.ASSIGN)
		let.Value = p.parseExpr()
		p.expect("let statement", types.SEMI)
		let.Location = p.span(tok.Location)
		return let
	case types.IF:
		stmt := &ast.IfStmt{}
		for p.peekIs(types.IF, types.ELIF) {
			if len(stmt.Branches) > 0 && p.peekIs(types.IF) {
				break
			}
			branchTok := p.next()
			branch := &ast.CondBranch{Cond: p.parseHead()}
			branch.Body = p.parseBlock()
			branch.Location = p.span(branchTok.Location)
			stmt.Branches = append(stmt.Branches, branch)
		}
		if p.peekIs(types.ELSE) {
			p.next()
			stmt.Else = p.parseBlock()
		}
		stmt.Location = p.span(tok.Location)
		return stmt
	case types.WHILE:
		p.next()
		stmt := &ast.WhileStmt{Cond: p.parseHead()}
		stmt.Body = p.parseBlock()
		stmt.Location = p.span(tok.Location)
		return stmt
	case types.RETURN:
		p.next()
		stmt := &ast.ReturnStmt{}
		if !p.peekIs(types.SEMI) {
			stmt.Value = p.parseExpr()
		}
		p.expect("return statement", types.SEMI)
		stmt.Location = p.span(tok.Location)
		return stmt
	case types.BREAK:
		p.next()
		p.expect("break statement", types.SEMI)
		return &ast.BreakStmt{Location: p.span(tok.Location)}
	case types.CONTINUE:
		p.next()
		p.expect("continue statement", types.SEMI)
		return &ast.ContinueStmt{Location: p.span(tok.Location)}
	case types.LBRACE:
		return p.parseBlock()
	}

	x := p.parseExpr()
	if p.peekIs(types.ASSIGN) {
		eq := p.l.Peek()
		switch x.(type) {
		case *ast.Binding, *ast.FieldAccess, *ast.IndexExpr:
		default:
			panic(errors.ParseError{Construct: "assignment", Got: eq, Location: x.Span()})
		}
		p.next()
		stmt := &ast.AssignStmt{Target: x, Value: p.parseExpr()}
		p.expect("assignment", types.SEMI)
		stmt.Location = p.span(tok.Location)
		return stmt
	}

	p.expect("expression statement", types.SEMI)
	return &ast.ExprStmt{X: x, Location: p.span(tok.Location)}
}
