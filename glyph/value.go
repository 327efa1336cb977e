package glyph

import (
	"fmt"
	"strconv"
)

// GType is the kind of a GValue.
type GType uint8

const (
	TypeNull GType = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeStr
	TypeList
	TypeMap
	TypeStruct // map annotated with a name, e.g. T{...}
)

var typeNames = [...]string{"null", "bool", "int", "float", "str", "list", "map", "struct"}

func (t GType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "type" + strconv.Itoa(int(t))
}

// GValue is an immutable GLYPH-T value. A nil *GValue reads as null.
type GValue struct {
	typ GType
	num int64 // int, or bool as 0/1
	flt float64
	str string // str value or struct annotation

	elems  []*GValue
	fields []MapEntry // map or struct fields, in source order

	pos Position
}

// MapEntry is one key=value pair of a map or struct.
type MapEntry struct {
	Key   string
	Value *GValue
}

// Position is a source location. Column counts runes.
type Position struct {
	Line   int
	Column int
	Offset int // byte offset
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// TypeError is returned by the As* accessors on a value of another type.
type TypeError struct {
	Want GType
	Got  GType
	Pos  Position
}

func (e *TypeError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("glyph: expected %s, got %s at %s", e.Want, e.Got, e.Pos)
	}
	return fmt.Sprintf("glyph: expected %s, got %s", e.Want, e.Got)
}

func Null() *GValue              { return &GValue{typ: TypeNull} }
func Int(v int64) *GValue        { return &GValue{typ: TypeInt, num: v} }
func Float(v float64) *GValue    { return &GValue{typ: TypeFloat, flt: v} }
func Str(v string) *GValue       { return &GValue{typ: TypeStr, str: v} }
func List(vs ...*GValue) *GValue { return &GValue{typ: TypeList, elems: vs} }
func Map(es ...MapEntry) *GValue { return &GValue{typ: TypeMap, fields: es} }

func Bool(v bool) *GValue {
	g := &GValue{typ: TypeBool}
	if v {
		g.num = 1
	}
	return g
}

// Struct returns a map annotated with name.
func Struct(name string, fields ...MapEntry) *GValue {
	return &GValue{typ: TypeStruct, str: name, fields: fields}
}

// FieldVal pairs key with value.
func FieldVal(key string, value *GValue) MapEntry {
	return MapEntry{Key: key, Value: value}
}

func (v *GValue) Type() GType {
	if v == nil {
		return TypeNull
	}
	return v.typ
}

func (v *GValue) IsNull() bool { return v.Type() == TypeNull }

// Pos is where the value started in parsed text; zero for built values.
func (v *GValue) Pos() Position {
	if v == nil {
		return Position{}
	}
	return v.pos
}

// TypeName returns the annotation of a struct and "" for anything else.
func (v *GValue) TypeName() string {
	if v.Type() != TypeStruct {
		return ""
	}
	return v.str
}

// HasAnnotation reports whether v is a struct annotated with name.
func (v *GValue) HasAnnotation(name string) bool {
	return v.Type() == TypeStruct && v.str == name
}

func (v *GValue) expect(t GType) error {
	if got := v.Type(); got != t {
		return &TypeError{Want: t, Got: got, Pos: v.Pos()}
	}
	return nil
}

func (v *GValue) AsBool() (bool, error) {
	if err := v.expect(TypeBool); err != nil {
		return false, err
	}
	return v.num != 0, nil
}

func (v *GValue) AsInt() (int64, error) {
	if err := v.expect(TypeInt); err != nil {
		return 0, err
	}
	return v.num, nil
}

func (v *GValue) AsFloat() (float64, error) {
	if err := v.expect(TypeFloat); err != nil {
		return 0, err
	}
	return v.flt, nil
}

func (v *GValue) AsStr() (string, error) {
	if err := v.expect(TypeStr); err != nil {
		return "", err
	}
	return v.str, nil
}

func (v *GValue) AsList() ([]*GValue, error) {
	if err := v.expect(TypeList); err != nil {
		return nil, err
	}
	return v.elems, nil
}

// AsMap returns the entries of a map. Structs are rejected; use Fields.
func (v *GValue) AsMap() ([]MapEntry, error) {
	if err := v.expect(TypeMap); err != nil {
		return nil, err
	}
	return v.fields, nil
}

// Fields returns the entries of a map or struct, nil for anything else.
func (v *GValue) Fields() []MapEntry {
	if t := v.Type(); t != TypeMap && t != TypeStruct {
		return nil
	}
	return v.fields
}

// Len is the element count of a list or the field count of a map or
// struct.
func (v *GValue) Len() int {
	if v.Type() == TypeList {
		return len(v.elems)
	}
	return len(v.Fields())
}

// Get returns the first field named key, or nil.
func (v *GValue) Get(key string) *GValue {
	for _, e := range v.Fields() {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

// Equal reports whether a and b hold the same value. Field order matters;
// positions do not.
func Equal(a, b *GValue) bool {
	ta, tb := a.Type(), b.Type()
	if ta != tb {
		return false
	}
	switch ta {
	case TypeNull:
		return true
	case TypeBool, TypeInt:
		return a.num == b.num
	case TypeFloat:
		return a.flt == b.flt
	case TypeStr:
		return a.str == b.str
	case TypeList:
		if len(a.elems) != len(b.elems) {
			return false
		}
		for i := range a.elems {
			if !Equal(a.elems[i], b.elems[i]) {
				return false
			}
		}
		return true
	}

	if a.str != b.str || len(a.fields) != len(b.fields) {
		return false
	}
	for i, f := range a.fields {
		if f.Key != b.fields[i].Key || !Equal(f.Value, b.fields[i].Value) {
			return false
		}
	}
	return true
}
