package main

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/Neumenon/glyphsym/catalog"
	"github.com/Neumenon/glyphsym/codec"
	"github.com/Neumenon/glyphsym/glyph"
	"github.com/Neumenon/glyphsym/stream"
	"github.com/Neumenon/glyphsym/symtab"
)

func cmdCheck(cli *kingpin.Application) (*kingpin.CmdClause, handler) {
	c := cli.Command("check", "Validate shared table declarations.")
	files := c.Arg("files", "Declaration files (.glyph or .cbor).").Required().Strings()

	return c, func(a *app) error {
		var errs error
		for _, path := range *files {
			tables, err := catalog.ReadFile(path)
			if err != nil {
				fmt.Fprintf(a.out, "FAIL %s\n  %v\n", path, err)
				errs = multierr.Append(errs, err)
				continue
			}
			fmt.Fprintf(a.out, "ok   %s (%d tables)\n", path, len(tables))
		}
		if n := len(multierr.Errors(errs)); n > 0 {
			return errors.Errorf("%d of %d files invalid", n, len(*files))
		}
		return nil
	}
}

func cmdShow(cli *kingpin.Application) (*kingpin.CmdClause, handler) {
	c := cli.Command("show", "Print the IDs of each table in a declaration file.")
	file := c.Arg("file", "Declaration file (.glyph or .cbor).").Required().String()
	decl := c.Flag("decl", "Print canonical declarations instead of IDs.").Bool()

	return c, func(a *app) error {
		tables, err := catalog.ReadFile(*file)
		if err != nil {
			return err
		}
		for _, t := range tables {
			if *decl {
				fmt.Fprintln(a.out, glyph.EmitWithOptions(t.Declaration(nil), glyph.PrettyEmitOptions()))
				continue
			}
			printTable(a.out, t)
		}
		return nil
	}
}

func printTable(w io.Writer, t *symtab.SharedTable) {
	fmt.Fprintf(w, "%s version=%d max_id=%d fingerprint=%s\n",
		t.Name(), t.Version(), t.MaxID(), stream.FormatDigest(t.Fingerprint()))
	for id := 1; id <= t.MaxID(); id++ {
		if text, ok := t.FindKnownSymbol(id); ok {
			fmt.Fprintf(w, "  %4d  %s\n", id, text)
		} else {
			fmt.Fprintf(w, "  %4d  (gap)\n", id)
		}
	}
}

func cmdEncode(cli *kingpin.Application) (*kingpin.CmdClause, handler) {
	c := cli.Command("encode", "Encode whitespace-separated words as GS1-T frames.")
	file := c.Arg("file", "Input file; stdin if omitted.").String()

	return c, func(a *app) error {
		e, err := a.loadEnv(context.Background())
		if err != nil {
			return err
		}
		defer func() { _ = e.logger.Sync() }()

		in, err := a.openInput(*file)
		if err != nil {
			return err
		}
		defer in.Close()

		out := bufio.NewWriter(a.out)
		w, err := e.builder().Build(out)
		if err != nil {
			return err
		}

		scanner := bufio.NewScanner(in)
		scanner.Split(bufio.ScanWords)
		for scanner.Scan() {
			if err := w.WriteSymbol(scanner.Text()); err != nil {
				return err
			}
		}
		if err := scanner.Err(); err != nil {
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		return out.Flush()
	}
}

func cmdDecode(cli *kingpin.Application) (*kingpin.CmdClause, handler) {
	c := cli.Command("decode", "Decode GS1-T frames back to words.")
	file := c.Arg("file", "Input file; stdin if omitted.").String()
	frames := c.Flag("frames", "Print raw frames instead of words.").Bool()

	return c, func(a *app) error {
		in, err := a.openInput(*file)
		if err != nil {
			return err
		}
		defer in.Close()

		if *frames {
			return decodeFrames(a.out, a.errOut, in)
		}

		e, err := a.loadEnv(context.Background())
		if err != nil {
			return err
		}
		defer func() { _ = e.logger.Sync() }()

		r, err := codec.NewReader(codec.FromReader(in), e.readerOptions()...)
		if err != nil {
			return err
		}
		out := bufio.NewWriter(a.out)
		for {
			sym, err := r.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				_ = out.Flush()
				return err
			}
			fmt.Fprintln(out, sym.Text)
		}
		return out.Flush()
	}
}

func decodeFrames(out, errOut io.Writer, in io.Reader) error {
	reader := stream.NewReader(in)
	frameNum := 0

	for {
		frame, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "frame %d", frameNum+1)
		}

		frameNum++
		printFrame(out, frameNum, frame)
	}

	fmt.Fprintf(errOut, "--- %d frames decoded ---\n", frameNum)
	return nil
}

func printFrame(w io.Writer, n int, f *stream.Frame) {
	fmt.Fprintf(w, "--- Frame %d ---\n", n)
	fmt.Fprintf(w, "  sid=%d seq=%d kind=%s len=%d\n", f.SID, f.Seq, f.Kind, len(f.Payload))

	if f.CRC != nil {
		fmt.Fprintf(w, "  crc=%08x\n", *f.CRC)
	}
	if f.Base != nil {
		fmt.Fprintf(w, "  base=%s\n", stream.FormatDigest(*f.Base))
	}
	if f.Compressed {
		fmt.Fprintf(w, "  comp=zstd\n")
	}
	if f.Final {
		fmt.Fprintf(w, "  final=true\n")
	}

	switch f.Kind {
	case stream.KindSymbols:
		if ids, err := stream.DecodeSymbolIDs(f.Payload); err == nil && len(ids) > 0 {
			fmt.Fprintf(w, "  ids: %v\n", ids)
		}
	default:
		payload := string(f.Payload)
		if len(payload) > 200 {
			payload = payload[:200] + "..."
		}
		if len(payload) > 0 {
			fmt.Fprintf(w, "  payload: %s\n", payload)
		}
	}
}
