package glyph

// ValueFactory creates the values that make up symbol table declarations.
// Callers that need to observe or decorate declarations (for example to
// attach positions or count allocations) supply their own implementation.
type ValueFactory interface {
	NewNull() *GValue
	NewBool(v bool) *GValue
	NewInt(v int64) *GValue
	NewString(v string) *GValue
	NewList(values ...*GValue) *GValue
	NewMap(entries ...MapEntry) *GValue
	NewStruct(annotation string, fields ...MapEntry) *GValue
}

type defaultFactory struct{}

// DefaultFactory builds values with the package constructors.
var DefaultFactory ValueFactory = defaultFactory{}

func (defaultFactory) NewNull() *GValue              { return Null() }
func (defaultFactory) NewBool(v bool) *GValue        { return Bool(v) }
func (defaultFactory) NewInt(v int64) *GValue        { return Int(v) }
func (defaultFactory) NewString(v string) *GValue    { return Str(v) }
func (defaultFactory) NewList(vs ...*GValue) *GValue { return List(vs...) }
func (defaultFactory) NewMap(es ...MapEntry) *GValue { return Map(es...) }

func (defaultFactory) NewStruct(annotation string, fields ...MapEntry) *GValue {
	return Struct(annotation, fields...)
}
