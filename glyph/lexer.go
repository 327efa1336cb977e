package glyph

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokNull
	tokBool
	tokInt
	tokFloat
	tokString // quoted
	tokIdent  // bare word
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokAssign // = or :
	tokComma
)

var tokNames = [...]string{
	tokEOF:      "end of input",
	tokNull:     "null",
	tokBool:     "bool",
	tokInt:      "int",
	tokFloat:    "float",
	tokString:   "string",
	tokIdent:    "identifier",
	tokLBrace:   "'{'",
	tokRBrace:   "'}'",
	tokLBracket: "'['",
	tokRBracket: "']'",
	tokAssign:   "'='",
	tokComma:    "','",
}

func (k tokKind) String() string { return tokNames[k] }

type token struct {
	kind tokKind
	text string // identifier or unescaped string; literal text otherwise
	pos  Position
}

// keywords are bare words that do not read as strings.
var keywords = map[string]tokKind{
	"∅":     tokNull,
	"null":  tokNull,
	"none":  tokNull,
	"nil":   tokNull,
	"t":     tokBool,
	"true":  tokBool,
	"f":     tokBool,
	"false": tokBool,
	"NaN":   tokFloat,
	"Inf":   tokFloat,
}

var punct = map[rune]tokKind{
	'{': tokLBrace,
	'}': tokRBrace,
	'[': tokLBracket,
	']': tokRBracket,
	'=': tokAssign,
	':': tokAssign,
	',': tokComma,
}

// lexer produces tokens on demand.
type lexer struct {
	src  string
	off  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (lx *lexer) pos() Position {
	return Position{Line: lx.line, Column: lx.col, Offset: lx.off}
}

// peek returns the next rune, or -1 at the end of input.
func (lx *lexer) peek() rune {
	if lx.off >= len(lx.src) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(lx.src[lx.off:])
	return r
}

func (lx *lexer) bump() rune {
	r, size := utf8.DecodeRuneInString(lx.src[lx.off:])
	lx.off += size
	if r == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return r
}

func (lx *lexer) errorf(pos Position, format string, args ...any) error {
	return newParseError(pos, format, args...)
}

// next returns the next token, or tokEOF at the end of input.
func (lx *lexer) next() (token, error) {
	lx.skipSpace()
	start := lx.pos()

	r := lx.peek()
	switch {
	case r < 0:
		return token{kind: tokEOF, pos: start}, nil
	case r == '"':
		return lx.quoted(start)
	case r == '-' || isDigit(r):
		return lx.number(start)
	case r == '∅' || isIdentStart(r):
		return lx.word(start), nil
	}
	if k, ok := punct[r]; ok {
		lx.bump()
		return token{kind: k, text: string(r), pos: start}, nil
	}
	return token{}, lx.errorf(start, "unexpected character %q", r)
}

func (lx *lexer) skipSpace() {
	for lx.off < len(lx.src) {
		switch {
		case strings.HasPrefix(lx.src[lx.off:], "//"):
			for lx.off < len(lx.src) && lx.peek() != '\n' {
				lx.bump()
			}
		case unicode.IsSpace(lx.peek()):
			lx.bump()
		default:
			return
		}
	}
}

func (lx *lexer) word(start Position) token {
	begin := lx.off
	if lx.bump() != '∅' {
		for isIdentPart(lx.peek()) {
			lx.bump()
		}
	}
	text := lx.src[begin:lx.off]
	if k, ok := keywords[text]; ok {
		return token{kind: k, text: text, pos: start}
	}
	return token{kind: tokIdent, text: text, pos: start}
}

// number scans -?digits[.digits][e[+-]digits], or -Inf.
func (lx *lexer) number(start Position) (token, error) {
	begin := lx.off
	if lx.peek() == '-' {
		lx.bump()
		if strings.HasPrefix(lx.src[lx.off:], "Inf") {
			for i := 0; i < 3; i++ {
				lx.bump()
			}
			return token{kind: tokFloat, text: "-Inf", pos: start}, nil
		}
	}
	if !lx.digits() {
		return token{}, lx.errorf(start, "expected digits")
	}

	kind := tokInt
	if lx.peek() == '.' && lx.off+1 < len(lx.src) && isDigit(rune(lx.src[lx.off+1])) {
		kind = tokFloat
		lx.bump()
		lx.digits()
	}
	if r := lx.peek(); r == 'e' || r == 'E' {
		kind = tokFloat
		lx.bump()
		if r := lx.peek(); r == '+' || r == '-' {
			lx.bump()
		}
		if !lx.digits() {
			return token{}, lx.errorf(start, "malformed exponent")
		}
	}
	return token{kind: kind, text: lx.src[begin:lx.off], pos: start}, nil
}

func (lx *lexer) digits() bool {
	n := 0
	for isDigit(lx.peek()) {
		lx.bump()
		n++
	}
	return n > 0
}

var unescape = map[rune]rune{'n': '\n', 'r': '\r', 't': '\t', '"': '"', '\\': '\\', '/': '/'}

func (lx *lexer) quoted(start Position) (token, error) {
	lx.bump()
	var sb strings.Builder
	for {
		r := lx.peek()
		switch r {
		case -1:
			return token{}, lx.errorf(start, "unterminated string")
		case '"':
			lx.bump()
			return token{kind: tokString, text: sb.String(), pos: start}, nil
		case '\\':
			escPos := lx.pos()
			lx.bump()
			e := lx.bump()
			if e == 'u' {
				u, ok := lx.hex4()
				if !ok {
					return token{}, lx.errorf(escPos, "bad \\u escape")
				}
				sb.WriteRune(u)
				continue
			}
			c, ok := unescape[e]
			if !ok {
				return token{}, lx.errorf(escPos, "unknown escape \\%c", e)
			}
			sb.WriteRune(c)
		default:
			sb.WriteRune(lx.bump())
		}
	}
}

func (lx *lexer) hex4() (rune, bool) {
	if lx.off+4 > len(lx.src) {
		return 0, false
	}
	var u rune
	for i := 0; i < 4; i++ {
		r := lx.bump()
		var d rune
		switch {
		case isDigit(r):
			d = r - '0'
		case 'a' <= r && r <= 'f':
			d = r - 'a' + 10
		case 'A' <= r && r <= 'F':
			d = r - 'A' + 10
		default:
			return 0, false
		}
		u = u<<4 | d
	}
	return u, true
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }

// '$' may start an identifier so reserved annotations like $glyph lex as
// words.
func isIdentStart(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_' || r == '$'
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r) || r == '-' || r == '.'
}

// isBareWord reports whether s can be emitted unquoted and read back as
// the same string.
func isBareWord(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !isIdentStart(r) || !isIdentPart(r) {
			return false
		}
	}
	_, reserved := keywords[s]
	return !reserved
}
