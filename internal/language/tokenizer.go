package language

import (
	"github.com/hanpama/restgraph/internal/faults"
)

// Tokenize lexes an operation string into a flat token slice ending in
// an EOF token. The scan is a single left-to-right pass; it never backs
// up more than one byte.
func Tokenize(input string) ([]Token, error) {
	tokens := make([]Token, 0, 32)
	i := 0
	for i < len(input) {
		c := input[i]

		if isWhitespace(c) {
			i++
			continue
		}

		if kind, ok := punctKind(c); ok {
			tokens = append(tokens, Token{Kind: kind, Value: string(c), Pos: i})
			i++
			continue
		}

		if c == '"' {
			tok, next, err := readString(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i = next
			continue
		}

		if isIdentByte(c) {
			start := i
			for i < len(input) && isIdentByte(input[i]) {
				i++
			}
			tokens = append(tokens, Token{Kind: TokenIdent, Value: input[start:i], Pos: start})
			continue
		}

		return nil, faults.Validationf("unexpected character %q at position %d", c, i).WithPos(i)
	}
	tokens = append(tokens, Token{Kind: TokenEOF, Pos: len(input)})
	return tokens, nil
}

// readString scans a quoted string starting at the opening quote. The
// returned token keeps the surrounding quotes; escape sequences are left
// untranslated, with the byte after a backslash always consumed.
func readString(input string, start int) (Token, int, error) {
	i := start + 1
	for i < len(input) {
		switch input[i] {
		case '\\':
			i += 2
		case '"':
			return Token{Kind: TokenString, Value: input[start : i+1], Pos: start}, i + 1, nil
		default:
			i++
		}
	}
	return Token{}, 0, faults.Validationf("unterminated string starting at position %d", start).WithPos(start)
}

func punctKind(c byte) (TokenKind, bool) {
	switch c {
	case '(':
		return TokenParenOpen, true
	case ')':
		return TokenParenClose, true
	case '{':
		return TokenBraceOpen, true
	case '}':
		return TokenBraceClose, true
	case ':':
		return TokenColon, true
	case ',':
		return TokenComma, true
	case '!':
		return TokenBang, true
	}
	return 0, false
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '_' || c == '$'
}
