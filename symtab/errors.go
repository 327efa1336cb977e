package symtab

import (
	"strings"

	"go.uber.org/multierr"
	errors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrInvalidDeclaration is returned when a shared table declaration fails
	// validation. The message lists every problem found.
	ErrInvalidDeclaration = errors.NewKind("Error in %s:%s")

	// ErrUnsupportedMutation is returned when interning into a read-only table.
	ErrUnsupportedMutation = errors.NewKind("cannot add symbol %q to read-only %s table")

	// ErrNilArgument is returned when a required argument is nil.
	ErrNilArgument = errors.NewKind("%s must not be nil")

	// ErrNotSymbolTable is returned when a declaration lacks the expected
	// annotation.
	ErrNotSymbolTable = errors.NewKind("declaration is not annotated with %s (got %q)")

	// ErrUnresolvedImport is returned when an import is neither in the catalog
	// nor declares a max_id to reserve.
	ErrUnresolvedImport = errors.NewKind("import %s version %d not found in catalog and declares no max_id")

	// ErrSymbolIDOutOfRange is returned when an ID outside 1..maxId is used.
	ErrSymbolIDOutOfRange = errors.NewKind("symbol id %d out of range 1..%d")

	// ErrEmptySymbol is returned when interning empty text.
	ErrEmptySymbol = errors.NewKind("symbol text must be non-empty")

	// ErrUnknownSystemVersion is returned for system table versions that do
	// not exist.
	ErrUnknownSystemVersion = errors.NewKind("no system symbol table for version %d")
)

// problems accumulates validation failures for one declaration.
type problems struct {
	errs error
}

func (p *problems) add(msg string) {
	p.errs = multierr.Append(p.errs, stdError(msg))
}

func (p *problems) empty() bool {
	return p.errs == nil
}

// err renders the accumulated problems as a single ErrInvalidDeclaration,
// each problem preceded by a space.
func (p *problems) err(annotation string) error {
	if p.errs == nil {
		return nil
	}
	var sb strings.Builder
	for _, e := range multierr.Errors(p.errs) {
		sb.WriteByte(' ')
		sb.WriteString(e.Error())
	}
	return ErrInvalidDeclaration.New(annotation, sb.String())
}

type stdError string

func (e stdError) Error() string { return string(e) }
