package language

import (
	"strings"

	"github.com/hanpama/restgraph/internal/faults"
)

// Parse turns an operation string into a ParsedOperation. Parsing is
// all-or-nothing: the first unexpected token aborts with a validation
// fault naming the expected and actual token and the source position.
func Parse(input string) (*ParsedOperation, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}

	opTok, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	opType := strings.ToLower(opTok.Value)
	if opType != "query" && opType != "mutation" {
		return nil, faults.Validationf("unsupported operation type %q at position %d", opTok.Value, opTok.Pos).WithPos(opTok.Pos)
	}

	nameTok, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}

	op := &ParsedOperation{
		OperationType: opType,
		OperationName: nameTok.Value,
		Variables:     map[string]VariableDefinition{},
	}

	if p.peek().Kind == TokenParenOpen {
		if err := p.parseVariableDefinitions(op); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(TokenBraceOpen); err != nil {
		return nil, err
	}
	for p.peek().Kind != TokenBraceClose {
		q, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		op.Queries = append(op.Queries, q)
		p.skipComma()
	}
	if _, err := p.expect(TokenBraceClose); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenEOF); err != nil {
		return nil, err
	}
	return op, nil
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() Token { return p.tokens[p.pos] }

func (p *parser) next() Token {
	t := p.tokens[p.pos]
	if t.Kind != TokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind TokenKind) (Token, error) {
	t := p.peek()
	if t.Kind != kind {
		if t.Kind == TokenEOF && kind != TokenEOF {
			return Token{}, faults.Validationf("unexpected end of input, expected %s", kind).WithPos(t.Pos)
		}
		return Token{}, faults.Validationf("unexpected token %s (%q), expected %s at position %d", t.Kind, t.Value, kind, t.Pos).WithPos(t.Pos)
	}
	return p.next(), nil
}

func (p *parser) skipComma() {
	for p.peek().Kind == TokenComma {
		p.next()
	}
}

// parseVariableDefinitions parses "($name: Type!, ...)". The leading
// paren is still pending when called.
func (p *parser) parseVariableDefinitions(op *ParsedOperation) error {
	if _, err := p.expect(TokenParenOpen); err != nil {
		return err
	}
	for p.peek().Kind != TokenParenClose {
		nameTok, err := p.expect(TokenIdent)
		if err != nil {
			return err
		}
		if !strings.HasPrefix(nameTok.Value, "$") || len(nameTok.Value) < 2 {
			return faults.Validationf("variable name must start with $, got %q at position %d", nameTok.Value, nameTok.Pos).WithPos(nameTok.Pos)
		}
		if _, err := p.expect(TokenColon); err != nil {
			return err
		}
		typeTok, err := p.expect(TokenIdent)
		if err != nil {
			return err
		}
		def := VariableDefinition{Type: typeTok.Value}
		if p.peek().Kind == TokenBang {
			p.next()
			def.Required = true
		}
		op.Variables[strings.TrimPrefix(nameTok.Value, "$")] = def
		p.skipComma()
	}
	_, err := p.expect(TokenParenClose)
	return err
}

// parseQuery parses one selection: name [ (args) ] [ { fields } ].
func (p *parser) parseQuery() (*ParsedQuery, error) {
	nameTok, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	q := &ParsedQuery{Name: nameTok.Value, Args: map[string]string{}}
	if p.peek().Kind == TokenParenOpen {
		q.Args, err = p.parseArguments()
		if err != nil {
			return nil, err
		}
	}
	q.Fields, err = p.parseSelectionSet()
	if err != nil {
		return nil, err
	}
	return q, nil
}

// parseSelectionSet parses "{ field field(...) { ... } ... }".
func (p *parser) parseSelectionSet() (map[string]*FieldSelection, error) {
	if _, err := p.expect(TokenBraceOpen); err != nil {
		return nil, err
	}
	fields := map[string]*FieldSelection{}
	for p.peek().Kind != TokenBraceClose {
		nameTok, err := p.expect(TokenIdent)
		if err != nil {
			return nil, err
		}
		sel, err := p.parseSelection()
		if err != nil {
			return nil, err
		}
		fields[nameTok.Value] = sel
		p.skipComma()
	}
	if _, err := p.expect(TokenBraceClose); err != nil {
		return nil, err
	}
	return fields, nil
}

// parseSelection parses what follows a field name. A field with neither
// arguments nor a sub-selection is a leaf.
func (p *parser) parseSelection() (*FieldSelection, error) {
	var err error
	args := map[string]string{}
	hasArgs := false
	if p.peek().Kind == TokenParenOpen {
		hasArgs = true
		args, err = p.parseArguments()
		if err != nil {
			return nil, err
		}
	}
	if p.peek().Kind == TokenBraceOpen {
		sub, err := p.parseSelectionSet()
		if err != nil {
			return nil, err
		}
		return &FieldSelection{Args: args, Fields: sub}, nil
	}
	if hasArgs {
		return &FieldSelection{Args: args, Fields: map[string]*FieldSelection{}}, nil
	}
	return NewLeaf(), nil
}

// parseArguments parses "(name: value, ...)". String values lose their
// quotes; bare identifiers (including $var references) stay raw.
func (p *parser) parseArguments() (map[string]string, error) {
	if _, err := p.expect(TokenParenOpen); err != nil {
		return nil, err
	}
	args := map[string]string{}
	for p.peek().Kind != TokenParenClose {
		nameTok, err := p.expect(TokenIdent)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenColon); err != nil {
			return nil, err
		}
		valTok := p.peek()
		switch valTok.Kind {
		case TokenString:
			p.next()
			args[nameTok.Value] = unquote(valTok.Value)
		case TokenIdent:
			p.next()
			args[nameTok.Value] = valTok.Value
		default:
			if valTok.Kind == TokenEOF {
				return nil, faults.Validationf("unexpected end of input, expected argument value").WithPos(valTok.Pos)
			}
			return nil, faults.Validationf("unexpected token %s (%q), expected argument value at position %d", valTok.Kind, valTok.Value, valTok.Pos).WithPos(valTok.Pos)
		}
		p.skipComma()
	}
	_, err := p.expect(TokenParenClose)
	return args, err
}

// unquote strips the surrounding quotes from a raw string token and
// collapses backslash escapes to the escaped byte.
func unquote(raw string) string {
	body := raw[1 : len(raw)-1]
	if !strings.Contains(body, "\\") {
		return body
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
		}
		b.WriteByte(body[i])
	}
	return b.String()
}
