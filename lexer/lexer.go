package lexer

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/pontaoski/smplc/errors"
	"github.com/pontaoski/smplc/types"
)

type Lexer struct {
	src      string
	filename string
	pos      types.Position
	prev     types.Position
	reader   *bufio.Reader
	peeked   *types.Token
	done     bool
}

func NewLexer(src string, filename string) *Lexer {
	l := &Lexer{src: src, filename: filename}
	l.Reset()
	return l
}

// Reset rewinds the lexer to the start of its source.
func (l *Lexer) Reset() {
	l.pos = types.Position{Line: 1, Column: 0, Filename: l.filename}
	l.prev = l.pos
	l.reader = bufio.NewReader(strings.NewReader(l.src))
	l.peeked = nil
	l.done = false
}

func (l *Lexer) Filename() string {
	return l.filename
}

// Pos is the position of the last rune consumed.
func (l *Lexer) Pos() types.Position {
	return l.pos
}

func (l *Lexer) read() (rune, bool) {
	r, _, err := l.reader.ReadRune()
	if err != nil {
		if err == io.EOF {
			return 0, false
		}
		panic(err)
	}

	l.prev = l.pos
	if r == '\n' {
		l.pos.Line++
		l.pos.Column = 0
	} else {
		l.pos.Column++
	}
	return r, true
}

func (l *Lexer) backup() {
	if err := l.reader.UnreadRune(); err != nil {
		panic(err)
	}
	l.pos = l.prev
}

func (l *Lexer) peekByte(n int) byte {
	byt, err := l.reader.Peek(n)
	if err != nil && err != io.EOF {
		panic(err)
	}
	if len(byt) < n {
		return 0
	}
	return byt[n-1]
}

func (l *Lexer) fail(from types.Position, format string, args ...interface{}) {
	panic(errors.LexError{
		Message:  fmt.Sprintf(format, args...),
		Location: types.Span{From: from, To: l.pos},
	})
}

func firstChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func otherChar(r rune) bool {
	return firstChar(r) || unicode.IsDigit(r)
}

func (l *Lexer) lexIdent(from types.Position, first rune) types.Token {
	var lit strings.Builder
	lit.WriteRune(first)

	for {
		r, ok := l.read()
		if !ok {
			break
		}
		if !otherChar(r) {
			l.backup()
			break
		}
		lit.WriteRune(r)
	}

	word := lit.String()
	kind := types.IDENT
	if kw, ok := types.Keywords[word]; ok {
		kind = kw
	}
	return types.Token{Kind: kind, Lexeme: word, Location: types.Span{From: from, To: l.pos}}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// lexNumber decides on every rune before consuming it, since bufio cannot
// unread a rune once it has been peeked past.
func (l *Lexer) lexNumber(from types.Position, first rune) types.Token {
	var lit strings.Builder
	lit.WriteRune(first)
	kind := types.INT

	for {
		next := l.peekByte(1)
		if isDigit(next) {
			l.read()
			lit.WriteByte(next)
			continue
		}
		// "21." is a float, "21.x" and "21.." are left to the parser.
		if next == '.' && kind == types.INT {
			after := l.peekByte(2)
			if after != '.' && !firstChar(rune(after)) {
				l.read()
				kind = types.FLOAT
				lit.WriteByte(next)
				continue
			}
		}
		break
	}

	if kind == types.INT {
		if _, err := strconv.ParseInt(lit.String(), 10, 64); err != nil {
			l.fail(from, "integer literal %s does not fit in 64 bits", lit.String())
		}
	}
	return types.Token{Kind: kind, Lexeme: lit.String(), Location: types.Span{From: from, To: l.pos}}
}

func (l *Lexer) lexString(from types.Position) types.Token {
	var lit strings.Builder

	for {
		r, ok := l.read()
		if !ok || r == '\n' {
			l.fail(from, "unterminated string literal")
		}

		switch r {
		case '"':
			return types.Token{Kind: types.STRING, Lexeme: lit.String(), Location: types.Span{From: from, To: l.pos}}
		case '\\':
			esc, ok := l.read()
			if !ok {
				l.fail(from, "unterminated string literal")
			}
			switch esc {
			case 'n':
				lit.WriteRune('\n')
			case 't':
				lit.WriteRune('\t')
			case 'r':
				lit.WriteRune('\r')
			case '0':
				lit.WriteRune(0)
			case '\\', '"':
				lit.WriteRune(esc)
			default:
				l.fail(l.prev, "invalid escape sequence \\%c", esc)
			}
		default:
			lit.WriteRune(r)
		}
	}
}

func (l *Lexer) skipBlockComment(from types.Position) {
	depth := 1
	for depth > 0 {
		r, ok := l.read()
		if !ok {
			l.fail(from, "unterminated block comment")
		}
		switch {
		case r == '*' && l.peekByte(1) == '/':
			l.read()
			depth--
		case r == '/' && l.peekByte(1) == '*':
			l.read()
			depth++
		}
	}
}

var punctuation = map[rune]types.TokenKind{
	';': types.SEMI,
	',': types.COMMA,
	'.': types.PERIOD,
	'(': types.LPAREN,
	')': types.RPAREN,
	'{': types.LBRACE,
	'}': types.RBRACE,
	'[': types.LBRACKET,
	']': types.RBRACKET,
	'+': types.PLUS,
	'*': types.STAR,
	'%': types.PERCENT,
}

// twoChar lists operators whose first rune may start a longer operator.
var twoChar = map[rune][]struct {
	next   byte
	kind   types.TokenKind
	single types.TokenKind
}{
	':': {{':', types.COLONCOLON, types.COLON}},
	'-': {{'>', types.ARROW, types.MINUS}},
	'=': {{'=', types.EQ, types.ASSIGN}},
	'!': {{'=', types.NEQ, types.BANG}},
	'<': {{'=', types.LTE, types.LT}},
	'>': {{'=', types.GTE, types.GT}},
	'&': {{'&', types.LAND, types.AMP}},
	'|': {{'|', types.LOR, types.ILLEGAL}},
}

// Lex returns the next token, panicking with an errors.LexError on bad input.
func (l *Lexer) Lex() types.Token {
	if l.peeked != nil {
		tok := *l.peeked
		l.peeked = nil
		return tok
	}

	for {
		r, ok := l.read()
		if !ok {
			l.done = true
			return types.Token{Kind: types.EOF, Location: types.SingleCharSpan(l.pos)}
		}
		from := l.pos

		switch {
		case unicode.IsSpace(r):
			continue
		case r == '/':
			switch l.peekByte(1) {
			case '/':
				for {
					c, ok := l.read()
					if !ok || c == '\n' {
						break
					}
				}
				continue
			case '*':
				l.read()
				l.skipBlockComment(from)
				continue
			}
			return types.Token{Kind: types.SLASH, Lexeme: "/", Location: types.SingleCharSpan(from)}
		case r == '"':
			return l.lexString(from)
		case unicode.IsDigit(r):
			return l.lexNumber(from, r)
		case firstChar(r):
			return l.lexIdent(from, r)
		}

		if kind, ok := punctuation[r]; ok {
			return types.Token{Kind: kind, Lexeme: string(r), Location: types.SingleCharSpan(from)}
		}

		if options, ok := twoChar[r]; ok {
			for _, opt := range options {
				if l.peekByte(1) == opt.next {
					l.read()
					return types.Token{Kind: opt.kind, Lexeme: string(r) + string(opt.next), Location: types.Span{From: from, To: l.pos}}
				}
				if opt.single != types.ILLEGAL {
					return types.Token{Kind: opt.single, Lexeme: string(r), Location: types.SingleCharSpan(from)}
				}
			}
		}

		l.fail(from, "invalid character %q", r)
	}
}

// Next is Lex without the panic.
func (l *Lexer) Next() (tok types.Token, err error) {
	defer func() {
		if r := recover(); r != nil {
			lerr, ok := r.(errors.LexError)
			if !ok {
				panic(r)
			}
			err = lerr
		}
	}()
	return l.Lex(), nil
}

func (l *Lexer) Peek() types.Token {
	if l.peeked != nil {
		return *l.peeked
	}

	tok := l.Lex()
	l.peeked = &tok
	return tok
}

func (l *Lexer) PeekIs(k ...types.TokenKind) bool {
	token := l.Peek()
	for _, kind := range k {
		if token.Kind == kind {
			return true
		}
	}

	return false
}

// LexExpecting consumes the next token, which must be one of k.
// construct names what is being parsed for the resulting errors.ParseError.
func (l *Lexer) LexExpecting(construct string, k ...types.TokenKind) types.Token {
	token := l.Lex()
	for _, kind := range k {
		if token.Kind == kind {
			return token
		}
	}

	panic(errors.ParseError{
		Construct: construct,
		Expected:  k,
		Got:       token,
		Location:  token.Location,
	})
}

// Tokens lexes src to EOF. The EOF token is not included.
func Tokens(src, filename string) ([]types.Token, error) {
	l := NewLexer(src, filename)
	var ret []types.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == types.EOF {
			return ret, nil
		}
		ret = append(ret, tok)
	}
}
