// Package glyph reads and writes GLYPH-T, the small text format symbol
// table declarations are written in.
//
// A value is null, bool, int, float, str, list, map or struct. A struct is
// a map annotated with a name:
//
//	$glyph_shared_symbol_table{
//	  name=fred
//	  version=1
//	  symbols=[a b ∅ "with space"]
//	}
//
// Null is written ∅ (null, none and nil are also read). Booleans are t and
// f. Strings are bare words when they lex back unchanged and quoted
// otherwise. Fields take = or :, and commas between items are optional.
// Line comments start with //.
//
// Parsing stops at the first error, a *ParseError wrapping ErrSyntax.
// Emit writes the canonical single-line form with fields sorted by key, so
// equal values always emit equal text.
package glyph
