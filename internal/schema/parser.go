package schema

import (
	"strings"

	"github.com/hanpama/restgraph/internal/faults"
)

// ParseSDL parses a schema-definition string into a Schema graph.
//
// The scanner is character-level, not token-based: it repeatedly
// expects the literal keyword "type", a type name, and a brace-wrapped
// body of field declarations interleaved with type-level directives.
// Any structural mismatch fails with a schema fault carrying a 40-char
// context window around the failure position.
func ParseSDL(input string) (*Schema, error) {
	s := &scanner{input: input}
	out := &Schema{
		Resources:  map[string]*Resource{},
		ValueTypes: map[string]*ValueType{},
	}

	for {
		s.skipWhitespace()
		if s.eof() {
			break
		}
		if err := s.parseTypeBlock(out); err != nil {
			return nil, err
		}
	}

	markResourceFields(out)
	return out, nil
}

// markResourceFields flags fields whose base type names a top-level
// resource; the match is case-insensitive like resource lookup itself.
func markResourceFields(s *Schema) {
	mark := func(fields map[string]*Field) {
		for _, f := range fields {
			if _, ok := s.Resources[strings.ToLower(f.BaseType())]; ok {
				f.IsResource = true
			}
		}
	}
	for _, r := range s.Resources {
		mark(r.Fields)
	}
	for _, vt := range s.ValueTypes {
		mark(vt.Fields)
	}
}

type scanner struct {
	input string
	pos   int
}

const contextRadius = 20

func (s *scanner) eof() bool { return s.pos >= len(s.input) }

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.input[s.pos]
}

func (s *scanner) skipWhitespace() {
	for !s.eof() && isWhitespace(s.input[s.pos]) {
		s.pos++
	}
}

// fail builds a schema fault with the context window centered on the
// current position: 20 characters before and after.
func (s *scanner) fail(format string, args ...any) error {
	start := s.pos - contextRadius
	if start < 0 {
		start = 0
	}
	end := s.pos + contextRadius
	if end > len(s.input) {
		end = len(s.input)
	}
	return faults.Schemaf(format, args...).WithPos(s.pos).WithContext(s.input[start:end])
}

func (s *scanner) expectLiteral(lit string) error {
	if !strings.HasPrefix(s.input[s.pos:], lit) {
		return s.fail("expected %q", lit)
	}
	s.pos += len(lit)
	return nil
}

func (s *scanner) expectByte(c byte) error {
	if s.peek() != c {
		return s.fail("expected %q", string(c))
	}
	s.pos++
	return nil
}

func (s *scanner) readIdent() (string, error) {
	start := s.pos
	for !s.eof() && isIdentByte(s.input[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		return "", s.fail("expected identifier")
	}
	return s.input[start:s.pos], nil
}

// readQuoted reads a double-quoted string and returns its contents
// without the quotes. A backslash skips the following byte.
func (s *scanner) readQuoted() (string, error) {
	if s.peek() != '"' {
		return "", s.fail("expected string")
	}
	startPos := s.pos
	s.pos++
	var b strings.Builder
	for !s.eof() {
		c := s.input[s.pos]
		switch c {
		case '\\':
			if s.pos+1 < len(s.input) {
				b.WriteByte(s.input[s.pos+1])
			}
			s.pos += 2
		case '"':
			s.pos++
			return b.String(), nil
		default:
			b.WriteByte(c)
			s.pos++
		}
	}
	s.pos = startPos
	return "", s.fail("unterminated string")
}

func (s *scanner) parseTypeBlock(out *Schema) error {
	if err := s.expectLiteral("type"); err != nil {
		return err
	}
	s.skipWhitespace()
	name, err := s.readIdent()
	if err != nil {
		return err
	}
	s.skipWhitespace()
	if err := s.expectByte('{'); err != nil {
		return err
	}

	fields := map[string]*Field{}
	endpoints := map[string]Endpoint{}
	dataPath := ""
	transform := ""

	for {
		s.skipWhitespace()
		if s.eof() {
			return s.fail("unexpected end of input in type %q", name)
		}
		if s.peek() == '}' {
			s.pos++
			break
		}
		if s.peek() == '@' {
			if err := s.parseTypeDirective(name, endpoints, &dataPath, &transform); err != nil {
				return err
			}
			continue
		}
		fieldName, field, err := s.parseFieldDeclaration(name)
		if err != nil {
			return err
		}
		fields[fieldName] = field
	}

	// At least one @endpoint makes the type a resource; otherwise it is
	// a value type reachable only through other types.
	if len(endpoints) > 0 {
		out.Resources[strings.ToLower(name)] = &Resource{
			Name:      name,
			Fields:    fields,
			Endpoints: endpoints,
			DataPath:  dataPath,
			Transform: transform,
		}
	} else {
		out.ValueTypes[name] = &ValueType{
			Name:      name,
			Fields:    fields,
			Transform: transform,
		}
	}
	return nil
}

// parseTypeDirective parses a directive interleaved with fields:
// @transform("name") or @endpoint(METHOD, "path"[, "dataPath"]).
func (s *scanner) parseTypeDirective(typeName string, endpoints map[string]Endpoint, dataPath, transform *string) error {
	s.pos++ // consume @
	name, err := s.readIdent()
	if err != nil {
		return err
	}
	switch name {
	case "transform":
		arg, err := s.parseStringDirectiveArg()
		if err != nil {
			return err
		}
		*transform = arg
		return nil
	case "endpoint":
		s.skipWhitespace()
		if err := s.expectByte('('); err != nil {
			return err
		}
		s.skipWhitespace()
		method, err := s.readIdent()
		if err != nil {
			return err
		}
		s.skipWhitespace()
		if err := s.expectByte(','); err != nil {
			return err
		}
		s.skipWhitespace()
		path, err := s.readQuoted()
		if err != nil {
			return err
		}
		s.skipWhitespace()
		if s.peek() == ',' {
			s.pos++
			s.skipWhitespace()
			dp, err := s.readQuoted()
			if err != nil {
				return err
			}
			*dataPath = dp
		}
		s.skipWhitespace()
		if err := s.expectByte(')'); err != nil {
			return err
		}
		endpoints[strings.ToUpper(method)] = Endpoint{Method: strings.ToUpper(method), Path: path}
		return nil
	case "from":
		return s.fail("directive @from is not allowed on type %q", typeName)
	default:
		return s.fail("unknown directive @%s on type %q", name, typeName)
	}
}

// parseFieldDeclaration parses "name: Type [@directive]*".
func (s *scanner) parseFieldDeclaration(typeName string) (string, *Field, error) {
	fieldName, err := s.readIdent()
	if err != nil {
		return "", nil, err
	}
	s.skipWhitespace()
	if err := s.expectByte(':'); err != nil {
		return "", nil, err
	}
	s.skipWhitespace()

	rawType, err := s.readTypeToken()
	if err != nil {
		return "", nil, err
	}
	field := &Field{
		Type:     rawType,
		Nullable: !strings.HasSuffix(rawType, "!"),
	}

	for {
		s.skipWhitespace()
		if s.peek() != '@' {
			break
		}
		s.pos++
		name, err := s.readIdent()
		if err != nil {
			return "", nil, err
		}
		switch name {
		case "from":
			arg, err := s.parseStringDirectiveArg()
			if err != nil {
				return "", nil, err
			}
			field.From = arg
		case "transform":
			arg, err := s.parseStringDirectiveArg()
			if err != nil {
				return "", nil, err
			}
			field.Transform = arg
		case "endpoint":
			return "", nil, s.fail("directive @endpoint is not allowed on field %q of type %q", fieldName, typeName)
		default:
			return "", nil, s.fail("unknown directive @%s on field %q of type %q", name, fieldName, typeName)
		}
	}
	return fieldName, field, nil
}

// readTypeToken reads a raw type token: leading list brackets, a bare
// identifier, then any run of closing brackets and non-null markers.
// Bracket balance and marker placement are checked by Validate, not
// here, so malformed tokens survive parsing and fail with a precise
// validation message instead of a generic scan error.
func (s *scanner) readTypeToken() (string, error) {
	start := s.pos
	for s.peek() == '[' {
		s.pos++
	}
	if _, err := s.readIdent(); err != nil {
		return "", err
	}
	for s.peek() == ']' || s.peek() == '!' {
		s.pos++
	}
	return s.input[start:s.pos], nil
}

// parseStringDirectiveArg parses ("value").
func (s *scanner) parseStringDirectiveArg() (string, error) {
	s.skipWhitespace()
	if err := s.expectByte('('); err != nil {
		return "", err
	}
	s.skipWhitespace()
	arg, err := s.readQuoted()
	if err != nil {
		return "", err
	}
	s.skipWhitespace()
	if err := s.expectByte(')'); err != nil {
		return "", err
	}
	return arg, nil
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '_'
}
