// Package catalog loads shared symbol tables from disk and caches catalog
// lookups.
package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Neumenon/glyphsym/glyph"
	"github.com/Neumenon/glyphsym/symtab"
)

// File extensions understood by the loader.
const (
	ExtGlyph = ".glyph"
	ExtCBOR  = ".cbor"
)

// Loader reads shared table declarations into a SimpleCatalog.
type Loader struct {
	logger *zap.Logger
	limit  int
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the loader's logger.
func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithConcurrency bounds the number of files parsed at once. Values below
// one mean no bound.
func WithConcurrency(n int) LoaderOption {
	return func(ld *Loader) {
		ld.limit = n
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...LoaderOption) *Loader {
	ld := &Loader{logger: zap.NewNop(), limit: 8}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// LoadFiles loads paths with a default Loader.
func LoadFiles(ctx context.Context, cat *symtab.SimpleCatalog, paths ...string) error {
	return NewLoader().LoadFiles(ctx, cat, paths...)
}

// LoadDir loads dir with a default Loader.
func LoadDir(ctx context.Context, cat *symtab.SimpleCatalog, dir string) error {
	return NewLoader().LoadDir(ctx, cat, dir)
}

// LoadFiles parses every path concurrently and registers the tables in
// cat in path order, so a later file wins over an earlier one for the same
// name and version. Nothing is registered if any file fails.
func (ld *Loader) LoadFiles(ctx context.Context, cat *symtab.SimpleCatalog, paths ...string) error {
	if cat == nil {
		return symtab.ErrNilArgument.New("catalog")
	}

	results := make([][]*symtab.SharedTable, len(paths))

	eg, egCtx := errgroup.WithContext(ctx)
	if ld.limit > 0 {
		eg.SetLimit(ld.limit)
	}
	for i, path := range paths {
		i, path := i, path
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			tables, err := ReadFile(path)
			if err != nil {
				return err
			}
			results[i] = tables
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for i, tables := range results {
		for _, t := range tables {
			if prev := cat.Put(t); prev != nil {
				ld.logger.Warn("catalog table replaced",
					zap.String("table", t.String()),
					zap.String("path", paths[i]))
			}
		}
		ld.logger.Info("loaded catalog file",
			zap.String("path", paths[i]),
			zap.Int("tables", len(tables)))
	}
	return nil
}

// LoadDir loads every .glyph and .cbor file directly inside dir, in name
// order.
func (ld *Loader) LoadDir(ctx context.Context, cat *symtab.SimpleCatalog, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "reading catalog directory %s", dir)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ExtGlyph, ExtCBOR:
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	ld.logger.Debug("scanning catalog directory",
		zap.String("dir", dir),
		zap.Int("files", len(paths)))
	return ld.LoadFiles(ctx, cat, paths...)
}

// ReadFile parses the shared tables in one file. A .glyph file may hold any
// number of declarations; declarations of the system table are skipped. A
// .cbor file holds exactly one table.
func ReadFile(path string) ([]*symtab.SharedTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ExtGlyph:
		return parseGlyph(path, string(data))
	case ExtCBOR:
		t, err := symtab.UnmarshalSharedCBOR(data)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding %s", path)
		}
		return []*symtab.SharedTable{t}, nil
	default:
		return nil, errors.Errorf("%s: unsupported catalog file extension %q", path, ext)
	}
}

func parseGlyph(path, text string) ([]*symtab.SharedTable, error) {
	values, err := glyph.ParseAll(text)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}

	tables := make([]*symtab.SharedTable, 0, len(values))
	for i, v := range values {
		if symtab.IsSystemDeclaration(v) {
			continue
		}
		t, err := symtab.NewSharedTable(v)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: declaration %d", path, i+1)
		}
		tables = append(tables, t)
	}
	return tables, nil
}
