package glyph

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// EmitOptions controls text layout.
type EmitOptions struct {
	Pretty     bool   // one element per line
	Indent     string // per level in pretty mode; "  " when empty
	SortFields bool   // order map and struct fields by key
}

// DefaultEmitOptions yields the canonical form: one line, sorted fields.
func DefaultEmitOptions() EmitOptions {
	return EmitOptions{SortFields: true}
}

// PrettyEmitOptions yields indented text in declaration order.
func PrettyEmitOptions() EmitOptions {
	return EmitOptions{Pretty: true}
}

// Emit returns the canonical text of v. Equal values emit identical text.
func Emit(v *GValue) string {
	return EmitWithOptions(v, DefaultEmitOptions())
}

func EmitWithOptions(v *GValue, opts EmitOptions) string {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	e := emitter{opts: opts}
	e.value(v, 0)
	return e.buf.String()
}

type emitter struct {
	buf  strings.Builder
	opts EmitOptions
}

func (e *emitter) value(v *GValue, depth int) {
	switch v.Type() {
	case TypeNull:
		e.buf.WriteString("∅")
	case TypeBool:
		e.buf.WriteByte("ft"[v.num])
	case TypeInt:
		e.buf.WriteString(strconv.FormatInt(v.num, 10))
	case TypeFloat:
		e.buf.WriteString(formatFloat(v.flt))
	case TypeStr:
		e.str(v.str)
	case TypeList:
		e.block('[', ']', len(v.elems), depth, func(i int) {
			e.value(v.elems[i], depth+1)
		})
	case TypeMap, TypeStruct:
		e.buf.WriteString(v.str)
		fields := v.fields
		if e.opts.SortFields {
			fields = slices.Clone(fields)
			slices.SortStableFunc(fields, func(a, b MapEntry) int { return cmp.Compare(a.Key, b.Key) })
		}
		e.block('{', '}', len(fields), depth, func(i int) {
			e.str(fields[i].Key)
			e.buf.WriteByte('=')
			e.value(fields[i].Value, depth+1)
		})
	}
}

// block writes n items between left and right, space separated or one per
// line.
func (e *emitter) block(left, right byte, n, depth int, item func(i int)) {
	e.buf.WriteByte(left)
	for i := 0; i < n; i++ {
		if e.opts.Pretty {
			e.newline(depth + 1)
		} else if i > 0 {
			e.buf.WriteByte(' ')
		}
		item(i)
	}
	if e.opts.Pretty && n > 0 {
		e.newline(depth)
	}
	e.buf.WriteByte(right)
}

func (e *emitter) newline(depth int) {
	e.buf.WriteByte('\n')
	e.buf.WriteString(strings.Repeat(e.opts.Indent, depth))
}

func (e *emitter) str(s string) {
	if isBareWord(s) {
		e.buf.WriteString(s)
		return
	}
	e.buf.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			e.buf.WriteByte('\\')
			e.buf.WriteRune(r)
		case r == '\n':
			e.buf.WriteString(`\n`)
		case r == '\r':
			e.buf.WriteString(`\r`)
		case r == '\t':
			e.buf.WriteString(`\t`)
		case r <= 0xffff && !unicode.IsPrint(r):
			e.buf.WriteString(`\u`)
			e.buf.WriteString(leftPadHex(uint64(r), 4))
		default:
			e.buf.WriteRune(r)
		}
	}
	e.buf.WriteByte('"')
}

// formatFloat writes the shortest round-tripping form, always with a '.'
// or exponent so it does not read back as an int.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func leftPadHex(n uint64, width int) string {
	s := strconv.FormatUint(n, 16)
	if len(s) < width {
		s = strings.Repeat("0", width-len(s)) + s
	}
	return s
}
