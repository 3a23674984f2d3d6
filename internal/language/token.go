package language

import "fmt"

// TokenKind identifies a lexical token class.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenString
	TokenParenOpen
	TokenParenClose
	TokenBraceOpen
	TokenBraceClose
	TokenColon
	TokenComma
	TokenBang
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:        "EOF",
	TokenIdent:      "IDENT",
	TokenString:     "STRING",
	TokenParenOpen:  "(",
	TokenParenClose: ")",
	TokenBraceOpen:  "{",
	TokenBraceClose: "}",
	TokenColon:      ":",
	TokenComma:      ",",
	TokenBang:       "!",
}

func (k TokenKind) String() string {
	if s, ok := tokenKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is a single lexical token. Value holds the raw source text;
// string tokens keep their surrounding quotes.
type Token struct {
	Kind  TokenKind
	Value string
	Pos   int
}
