package types

import (
	"fmt"
)

type Position struct {
	Line     int
	Column   int
	Filename string
}

type Span struct {
	From Position
	To   Position
}

type TokenKind int

const (
	EOF TokenKind = iota
	ILLEGAL

	COLON
	COLONCOLON
	SEMI
	COMMA
	PERIOD
	ARROW
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET

	ASSIGN
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	EQ
	NEQ
	LT
	LTE
	GT
	GTE
	LAND
	LOR
	BANG
	AMP

	INT
	FLOAT
	STRING
	IDENT

	MOD
	USE
	FN
	BUILTIN
	OPAQUE
	STRUCT
	LET
	IF
	ELIF
	ELSE
	WHILE
	RETURN
	BREAK
	CONTINUE
	INIT
	TRUE
	FALSE
	TYPE
)

var kindNames = map[TokenKind]string{
	EOF:        "EOF",
	ILLEGAL:    "ILLEGAL",
	COLON:      "':'",
	COLONCOLON: "'::'",
	SEMI:       "';'",
	COMMA:      "','",
	PERIOD:     "'.'",
	ARROW:      "'->'",
	LPAREN:     "'('",
	RPAREN:     "')'",
	LBRACE:     "'{'",
	RBRACE:     "'}'",
	LBRACKET:   "'['",
	RBRACKET:   "']'",
	ASSIGN:     "'='",
	PLUS:       "'+'",
	MINUS:      "'-'",
	STAR:       "'*'",
	SLASH:      "'/'",
	PERCENT:    "'%'",
	EQ:         "'=='",
	NEQ:        "'!='",
	LT:         "'<'",
	LTE:        "'<='",
	GT:         "'>'",
	GTE:        "'>='",
	LAND:       "'&&'",
	LOR:        "'||'",
	BANG:       "'!'",
	AMP:        "'&'",
	INT:        "INT",
	FLOAT:      "FLOAT",
	STRING:     "STRING",
	IDENT:      "IDENT",
	MOD:        "MOD",
	USE:        "USE",
	FN:         "FN",
	BUILTIN:    "BUILTIN",
	OPAQUE:     "OPAQUE",
	STRUCT:     "STRUCT",
	LET:        "LET",
	IF:         "IF",
	ELIF:       "ELIF",
	ELSE:       "ELSE",
	WHILE:      "WHILE",
	RETURN:     "RETURN",
	BREAK:      "BREAK",
	CONTINUE:   "CONTINUE",
	INIT:       "INIT",
	TRUE:       "TRUE",
	FALSE:      "FALSE",
	TYPE:       "TYPE",
}

// Keywords maps every reserved word to its token kind.
var Keywords = map[string]TokenKind{
	"mod":      MOD,
	"use":      USE,
	"fn":       FN,
	"builtin":  BUILTIN,
	"opaque":   OPAQUE,
	"struct":   STRUCT,
	"let":      LET,
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"while":    WHILE,
	"return":   RETURN,
	"break":    BREAK,
	"continue": CONTINUE,
	"init":     INIT,
	"true":     TRUE,
	"false":    FALSE,
	"type":     TYPE,
}

func (t TokenKind) String() string {
	if name, ok := kindNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(t))
}

// IsKeyword reports whether the kind is a reserved word.
func (t TokenKind) IsKeyword() bool {
	return t >= MOD && t <= TYPE
}

func (p Position) String() string {
	if p.Filename == "" {
		p.Filename = "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%d:%d", s.From, s.To.Line, s.To.Column)
}

func SingleCharSpan(p Position) Span {
	return Span{p, p}
}

// Join returns the span covering both a and b.
func Join(a, b Span) Span {
	return Span{From: a.From, To: b.To}
}

type Token struct {
	Kind     TokenKind
	Lexeme   string
	Location Span
}

func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "EOF"
	case IDENT, INT, FLOAT:
		return fmt.Sprintf("%s %q", t.Kind, t.Lexeme)
	case STRING:
		return fmt.Sprintf("STRING %q", t.Lexeme)
	}
	return t.Kind.String()
}
