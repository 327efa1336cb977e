package glyph

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestParse_Scalars(t *testing.T) {
	tests := []struct {
		src   string
		check func(*GValue) bool
	}{
		{"∅", func(v *GValue) bool { return v.IsNull() }},
		{"t", func(v *GValue) bool { b, err := v.AsBool(); return err == nil && b }},
		{"false", func(v *GValue) bool { b, err := v.AsBool(); return err == nil && !b }},
		{"42", func(v *GValue) bool { n, _ := v.AsInt(); return n == 42 }},
		{"-1.5", func(v *GValue) bool { f, _ := v.AsFloat(); return f == -1.5 }},
		{"-Inf", func(v *GValue) bool { f, _ := v.AsFloat(); return math.IsInf(f, -1) }},
		{"NaN", func(v *GValue) bool { f, _ := v.AsFloat(); return math.IsNaN(f) }},
		{"fred", func(v *GValue) bool { s, _ := v.AsStr(); return s == "fred" }},
		{`"two words"`, func(v *GValue) bool { s, _ := v.AsStr(); return s == "two words" }},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			v, err := Parse(tt.src)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if !tt.check(v) {
				t.Errorf("unexpected value for %q: %s", tt.src, Emit(v))
			}
		})
	}
}

func TestParse_Declaration(t *testing.T) {
	src := `$glyph_shared_symbol_table{
  name=fred
  version:1,
  symbols=[a b ∅ "c d"]
}`
	v, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if !v.HasAnnotation("$glyph_shared_symbol_table") {
		t.Fatalf("annotation = %q", v.TypeName())
	}
	if v.Type() != TypeStruct || v.Len() != 3 {
		t.Fatalf("got %s with %d fields", v.Type(), v.Len())
	}
	if name, _ := v.Get("name").AsStr(); name != "fred" {
		t.Errorf("name = %q", name)
	}
	if version, _ := v.Get("version").AsInt(); version != 1 {
		t.Errorf("version = %d", version)
	}

	symbols, err := v.Get("symbols").AsList()
	if err != nil {
		t.Fatalf("symbols: %v", err)
	}
	if len(symbols) != 4 || !symbols[2].IsNull() {
		t.Fatalf("symbols = %s", Emit(v.Get("symbols")))
	}
	if v.Get("missing") != nil {
		t.Error("missing field should be nil")
	}
	if v.Pos().Line != 1 || symbols[0].Pos() != (Position{Line: 4, Column: 12, Offset: 64}) {
		t.Errorf("positions %+v / %+v", v.Pos(), symbols[0].Pos())
	}
}

func TestParse_MapAndNested(t *testing.T) {
	v, err := Parse(`{imports=[{name=fred version=2 max_id=10}] symbols=[x]}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v.Type() != TypeMap || v.TypeName() != "" {
		t.Fatalf("got %s %q", v.Type(), v.TypeName())
	}

	imports, _ := v.Get("imports").AsList()
	if len(imports) != 1 {
		t.Fatalf("imports = %d", len(imports))
	}
	if maxID, _ := imports[0].Get("max_id").AsInt(); maxID != 10 {
		t.Errorf("max_id = %d", maxID)
	}
	if _, err := v.AsMap(); err != nil {
		t.Errorf("AsMap: %v", err)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, src := range []string{
		"",
		"  // only a comment",
		"[a b",
		"T{a=1",
		"{=1}",
		"{a 1}",
		"{t=1}",
		"a b",
		"99999999999999999999",
		"]",
		"{a=}",
	} {
		t.Run(src, func(t *testing.T) {
			_, err := Parse(src)
			if !errors.Is(err, ErrSyntax) {
				t.Errorf("got %v, want ErrSyntax", err)
			}
		})
	}
}

func TestParse_NestingLimit(t *testing.T) {
	nest := func(left, leaf, right string, n int) string {
		return strings.Repeat(left, n) + leaf + strings.Repeat(right, n)
	}

	for name, src := range map[string]string{
		"list":   nest("[", "", "]", maxDepth+1),
		"map":    nest("{a=", "1", "}", maxDepth+1),
		"struct": nest("T{a=", "1", "}", maxDepth+1),
		"open":   strings.Repeat("[", 30<<20),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(src)
			var pe *ParseError
			if !errors.As(err, &pe) || !errors.Is(err, ErrSyntax) {
				t.Fatalf("got %v, want *ParseError wrapping ErrSyntax", err)
			}
			if !strings.Contains(pe.Msg, "nesting") {
				t.Errorf("msg = %q", pe.Msg)
			}
		})
	}

	if _, err := Parse(nest("[", "", "]", maxDepth)); err != nil {
		t.Errorf("depth %d: %v", maxDepth, err)
	}
	if _, err := Parse(nest("T{a=", "1", "}", maxDepth)); err != nil {
		t.Errorf("struct depth %d: %v", maxDepth, err)
	}

	// Siblings do not accumulate depth.
	wide := "[" + strings.Repeat("[[]]", 2*maxDepth) + "]"
	v, err := Parse(wide)
	if err != nil {
		t.Fatalf("wide: %v", err)
	}
	if n := v.Len(); n != 2*maxDepth {
		t.Errorf("wide len = %d", n)
	}
}

func TestParseAll(t *testing.T) {
	values, err := ParseAll("A{x=1} // first\nB{y=2}")
	if err != nil {
		t.Fatalf("ParseAll: %v", err)
	}
	if len(values) != 2 || values[1].TypeName() != "B" {
		t.Fatalf("values = %v", values)
	}

	values, err = ParseAll("  // nothing here\n")
	if err != nil || len(values) != 0 {
		t.Errorf("got %d values, %v", len(values), err)
	}

	if _, err := ParseAll("A{} B{"); !errors.Is(err, ErrSyntax) {
		t.Errorf("got %v, want ErrSyntax", err)
	}
}

func TestEmit_Canonical(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"null", "∅"},
		{"true", "t"},
		{"-7", "-7"},
		{"2.5", "2.5"},
		{"2.0", "2.0"},
		{"1e21", "1e+21"},
		{"fred", "fred"},
		{`"t"`, `"t"`},
		{`"null"`, `"null"`},
		{`"1abc"`, `"1abc"`},
		{`"two words"`, `"two words"`},
		{`"tab\there"`, `"tab\there"`},
		{`"\u0001"`, `"\u0001"`},
		{"[a, b,c]", "[a b c]"},
		{"{b=1 a=2}", "{a=2 b=1}"},
		{"$glyph_symbol_table{symbols=[a ∅] imports=[]}", "$glyph_symbol_table{imports=[] symbols=[a ∅]}"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			v, err := Parse(tt.src)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := Emit(v); got != tt.want {
				t.Errorf("Emit = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEmit_RoundTrip(t *testing.T) {
	v := Struct("$glyph_shared_symbol_table",
		FieldVal("name", Str("with space")),
		FieldVal("ratio", Float(1)),
		FieldVal("symbols", List(Str("a"), Null(), Str(""), Str("é"), Str("quote\"d"), Str("NaN"))),
		FieldVal("version", Int(3)),
	)

	back, err := Parse(Emit(v))
	if err != nil {
		t.Fatalf("Parse(%s): %v", Emit(v), err)
	}
	if !Equal(v, back) {
		t.Errorf("round trip mismatch:\n%s\n%s", Emit(v), Emit(back))
	}
}

func TestEmit_Pretty(t *testing.T) {
	v := Struct("T", FieldVal("b", Int(1)), FieldVal("a", List(Int(1))), FieldVal("c", List()))

	got := EmitWithOptions(v, PrettyEmitOptions())
	want := "T{\n  b=1\n  a=[\n    1\n  ]\n  c=[]\n}"
	if got != want {
		t.Errorf("pretty = %q, want %q", got, want)
	}
}

func TestGValue_TypeError(t *testing.T) {
	v, err := Parse("[x]")
	if err != nil {
		t.Fatal(err)
	}
	elems, _ := v.AsList()

	_, err = elems[0].AsInt()
	var te *TypeError
	if !errors.As(err, &te) {
		t.Fatalf("got %v, want *TypeError", err)
	}
	if te.Want != TypeInt || te.Got != TypeStr || te.Pos.Column != 2 {
		t.Errorf("type error = %+v", te)
	}

	if _, err := Int(1).AsList(); err == nil {
		t.Error("AsList on int succeeded")
	}
	if _, err := Struct("T").AsMap(); err == nil {
		t.Error("AsMap on struct succeeded")
	}

	var nilVal *GValue
	if !nilVal.IsNull() || nilVal.Type() != TypeNull || nilVal.Len() != 0 || nilVal.Get("x") != nil {
		t.Error("nil GValue should read as null")
	}
	if Int(1).Fields() != nil {
		t.Error("Fields on int")
	}
}

func TestEqual(t *testing.T) {
	a := Map(FieldVal("k", List(Int(1), Null())))
	b := Map(FieldVal("k", List(Int(1), nil)))
	c := Map(FieldVal("k", List(Int(2), Null())))

	if !Equal(a, b) {
		t.Error("nil and Null should compare equal")
	}
	if Equal(a, c) {
		t.Error("different values compare equal")
	}
	if Equal(Int(1), Float(1)) || Equal(Int(1), Bool(true)) {
		t.Error("values of different types compare equal")
	}
	if Equal(Struct("A"), Struct("B")) || Equal(Struct("A"), Map()) {
		t.Error("annotation ignored")
	}
}

func TestDefaultFactory(t *testing.T) {
	f := DefaultFactory
	v := f.NewStruct("T",
		FieldVal("a", f.NewInt(1)),
		FieldVal("b", f.NewList(f.NewString("x"), f.NewNull(), f.NewBool(true))),
		FieldVal("c", f.NewMap()),
	)
	if got := Emit(v); got != "T{a=1 b=[x ∅ t] c={}}" {
		t.Errorf("Emit = %q", got)
	}
}
