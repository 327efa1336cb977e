package main

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/Neumenon/glyphsym/catalog"
	"github.com/Neumenon/glyphsym/codec"
	"github.com/Neumenon/glyphsym/internal/config"
	"github.com/Neumenon/glyphsym/internal/logging"
	"github.com/Neumenon/glyphsym/stream"
	"github.com/Neumenon/glyphsym/symtab"
)

// app carries the process streams and global flags.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configPath string
	catalogs   []string
	imports    []string
	crc        bool
	compress   bool
	streamCopy bool
	sid        uint64
	logLevel   string
}

func (a *app) registerGlobals(cli *kingpin.Application) {
	cli.Flag("config", "Config file (.toml, .yaml or .yml).").StringVar(&a.configPath)
	cli.Flag("catalog", "Catalog file or directory; repeatable.").StringsVar(&a.catalogs)
	cli.Flag("import", "Shared table to import as name[:version]; repeatable.").StringsVar(&a.imports)
	cli.Flag("crc", "Add CRC-32 to every frame.").BoolVar(&a.crc)
	cli.Flag("compress", "Compress frame payloads with zstd.").BoolVar(&a.compress)
	cli.Flag("stream-copy", "Copy symbol IDs verbatim when tables agree.").BoolVar(&a.streamCopy)
	cli.Flag("sid", "Stream id of written frames.").Uint64Var(&a.sid)
	cli.Flag("log-level", "Log level (debug, info, warn, error).").StringVar(&a.logLevel)
}

// env is the resolved configuration of one command run.
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	catalog symtab.Catalog
	imports []*symtab.SharedTable
}

func (a *app) loadEnv(ctx context.Context) (*env, error) {
	cfg := config.Default()
	if a.configPath != "" {
		var err error
		if cfg, err = config.Load(a.configPath); err != nil {
			return nil, err
		}
	}

	cfg.Catalog.Paths = append(cfg.Catalog.Paths, a.catalogs...)
	cfg.Writer.Imports = append(cfg.Writer.Imports, a.imports...)
	cfg.Writer.CRC = cfg.Writer.CRC || a.crc
	cfg.Writer.Compress = cfg.Writer.Compress || a.compress
	cfg.Writer.StreamCopyOptimized = cfg.Writer.StreamCopyOptimized || a.streamCopy
	if a.sid != 0 {
		cfg.Writer.StreamID = a.sid
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, logger: logger}
	if err := e.loadCatalog(ctx); err != nil {
		return nil, err
	}
	if err := e.resolveImports(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *env) loadCatalog(ctx context.Context) error {
	simple := symtab.NewSimpleCatalog().WithLogger(e.logger)
	loader := catalog.NewLoader(
		catalog.WithLogger(e.logger),
		catalog.WithConcurrency(e.cfg.Catalog.Concurrency))

	var files []string
	for _, p := range e.cfg.CatalogPaths() {
		info, err := os.Stat(p)
		if err != nil {
			return err
		}
		if info.IsDir() {
			if err := loader.LoadDir(ctx, simple, p); err != nil {
				return err
			}
			continue
		}
		files = append(files, p)
	}
	if err := loader.LoadFiles(ctx, simple, files...); err != nil {
		return err
	}

	e.catalog = simple
	if size := e.cfg.Catalog.CacheSize; size > 0 {
		cached, err := catalog.NewCached(simple, size)
		if err != nil {
			return err
		}
		e.catalog = cached
	}
	return nil
}

func (e *env) resolveImports() error {
	for _, imp := range e.cfg.Writer.Imports {
		name, version, err := config.ParseImport(imp)
		if err != nil {
			return err
		}
		t := e.catalog.Table(name, version)
		if t == nil || t.Version() != version {
			return errors.Errorf("import %s: no such table in catalog", imp)
		}
		e.imports = append(e.imports, t)
	}
	return nil
}

// builder returns a writer builder configured from e.
func (e *env) builder() *codec.ImmutableBuilder {
	b := codec.Standard().
		WithCatalog(e.catalog).
		WithStreamCopyOptimized(e.cfg.Writer.StreamCopyOptimized).
		WithStreamID(e.cfg.Writer.StreamID).
		WithCRC(e.cfg.Writer.CRC).
		WithCompression(e.cfg.Writer.Compress).
		WithLogger(e.logger)
	if len(e.imports) > 0 {
		b.SetImports(e.imports...)
	}
	return b.Immutable()
}

func (e *env) readerOptions() []codec.ReaderOption {
	return []codec.ReaderOption{
		codec.WithReaderCatalog(e.catalog),
		codec.WithReaderLogger(e.logger),
		codec.WithFrameOptions(stream.WithMaxPayload(e.cfg.Reader.MaxPayload)),
	}
}
