package glyph

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrSyntax is wrapped by every *ParseError.
var ErrSyntax = errors.New("glyph: syntax error")

// ParseError is a lexing or parsing failure at a source position.
type ParseError struct {
	Pos Position
	Msg string
}

func newParseError(pos Position, format string, args ...any) *ParseError {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("glyph: %s at %s", e.Msg, e.Pos)
}

func (e *ParseError) Unwrap() error { return ErrSyntax }

// Parse parses text holding exactly one value.
func Parse(text string) (*GValue, error) {
	p, err := newParser(text)
	if err != nil {
		return nil, err
	}
	if p.tok.kind == tokEOF {
		return nil, newParseError(p.tok.pos, "empty input")
	}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, newParseError(p.tok.pos, "trailing %s after value", p.tok.kind)
	}
	return v, nil
}

// ParseAll parses a run of top-level values, such as a catalog file holding
// several declarations.
func ParseAll(text string) ([]*GValue, error) {
	p, err := newParser(text)
	if err != nil {
		return nil, err
	}
	var values []*GValue
	for p.tok.kind != tokEOF {
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// maxDepth bounds list, map and struct nesting.
const maxDepth = 512

// parser is a recursive descent parser with one token of lookahead.
type parser struct {
	lx    *lexer
	tok   token
	depth int
}

func newParser(text string) (*parser, error) {
	p := &parser{lx: newLexer(text)}
	return p, p.advance()
}

func (p *parser) advance() error {
	tok, err := p.lx.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > maxDepth {
		return newParseError(p.tok.pos, "nesting deeper than %d", maxDepth)
	}
	return nil
}

func (p *parser) value() (*GValue, error) {
	tok := p.tok
	if tok.kind == tokLBracket {
		return p.list()
	}
	if tok.kind == tokLBrace {
		fields, err := p.fields()
		if err != nil {
			return nil, err
		}
		return at(Map(fields...), tok.pos), nil
	}

	v, err := scalar(tok)
	if err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if tok.kind == tokIdent && p.tok.kind == tokLBrace {
		fields, err := p.fields()
		if err != nil {
			return nil, err
		}
		v = Struct(tok.text, fields...)
	}
	return at(v, tok.pos), nil
}

func scalar(tok token) (*GValue, error) {
	switch tok.kind {
	case tokNull:
		return Null(), nil
	case tokBool:
		return Bool(tok.text[0] == 't'), nil
	case tokString, tokIdent:
		return Str(tok.text), nil
	case tokInt:
		n, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return nil, newParseError(tok.pos, "int %s out of range", tok.text)
		}
		return Int(n), nil
	case tokFloat:
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, newParseError(tok.pos, "bad float %s", tok.text)
		}
		return Float(f), nil
	}
	return nil, newParseError(tok.pos, "unexpected %s", tok.kind)
}

func at(v *GValue, pos Position) *GValue {
	v.pos = pos
	return v
}

// list parses [a b c]; commas between elements are optional.
func (p *parser) list() (*GValue, error) {
	defer func() { p.depth-- }()
	if err := p.enter(); err != nil {
		return nil, err
	}
	start := p.tok.pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	elems := []*GValue{}
	for {
		switch p.tok.kind {
		case tokRBracket:
			return at(List(elems...), start), p.advance()
		case tokEOF:
			return nil, newParseError(start, "unterminated list")
		case tokComma:
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
}

// fields parses {k=v k2:v2} with p.tok on the opening brace.
func (p *parser) fields() ([]MapEntry, error) {
	defer func() { p.depth-- }()
	if err := p.enter(); err != nil {
		return nil, err
	}
	start := p.tok.pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	var entries []MapEntry
	for {
		key := p.tok
		switch key.kind {
		case tokRBrace:
			return entries, p.advance()
		case tokEOF:
			return nil, newParseError(start, "unterminated {")
		case tokComma:
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		case tokIdent, tokString:
		default:
			return nil, newParseError(key.pos, "expected field name, got %s", key.kind)
		}

		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokAssign {
			return nil, newParseError(p.tok.pos, "expected = after %q", key.text)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		entries = append(entries, MapEntry{Key: key.text, Value: v})
	}
}
