package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/Neumenon/glyphsym/codec"
	"github.com/Neumenon/glyphsym/stream"
)

// benchResult is the encoded size of one input under one writer setting.
type benchResult struct {
	Name      string
	Bytes     int
	Frames    int
	BytesPct  float64
	MaxID     int
	Symbols   int
	Distinct  int
	TextBytes int
}

func cmdBench(cli *kingpin.Application) (*kingpin.CmdClause, handler) {
	c := cli.Command("bench", "Compare encoded sizes against plain text.")
	file := c.Arg("file", "Input file; stdin if omitted.").String()

	return c, func(a *app) error {
		e, err := a.loadEnv(context.Background())
		if err != nil {
			return err
		}

		in, err := a.openInput(*file)
		if err != nil {
			return err
		}
		defer in.Close()

		words, err := scanWords(in)
		if err != nil {
			return err
		}

		base := e.builder()
		settings := []struct {
			name string
			b    *codec.ImmutableBuilder
		}{
			{"plain", base.WithCRC(false).WithCompression(false)},
			{"crc", base.WithCRC(true).WithCompression(false)},
			{"zstd", base.WithCRC(false).WithCompression(true)},
			{"crc+zstd", base.WithCRC(true).WithCompression(true)},
		}

		var results []benchResult
		for _, s := range settings {
			r, err := benchOne(s.name, s.b, words)
			if err != nil {
				return errors.Wrap(err, s.name)
			}
			results = append(results, r)
		}
		writeMarkdown(a.out, results)
		return nil
	}
}

func scanWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		words = append(words, scanner.Text())
	}
	return words, scanner.Err()
}

func benchOne(name string, b *codec.ImmutableBuilder, words []string) (benchResult, error) {
	var out bytes.Buffer
	w, err := b.Build(&out)
	if err != nil {
		return benchResult{}, err
	}
	for _, word := range words {
		if err := w.WriteSymbol(word); err != nil {
			return benchResult{}, err
		}
	}
	if err := w.Close(); err != nil {
		return benchResult{}, err
	}

	frames, err := stream.NewReader(bytes.NewReader(out.Bytes())).ReadAll()
	if err != nil {
		return benchResult{}, err
	}

	distinct := make(map[string]struct{}, len(words))
	for _, word := range words {
		distinct[word] = struct{}{}
	}

	textBytes := len(strings.Join(words, "\n"))
	res := benchResult{
		Name:      name,
		Bytes:     out.Len(),
		Frames:    len(frames),
		MaxID:     w.SymbolTable().MaxID(),
		Symbols:   len(words),
		Distinct:  len(distinct),
		TextBytes: textBytes,
	}
	if textBytes > 0 {
		res.BytesPct = float64(textBytes-res.Bytes) / float64(textBytes) * 100.0
	}
	return res, nil
}

func writeMarkdown(w io.Writer, results []benchResult) {
	if len(results) == 0 {
		return
	}
	first := results[0]
	fmt.Fprintf(w, "# glyphsym bench\n\n")
	fmt.Fprintf(w, "Symbols: %d (%d distinct), plain text %d bytes, max_id %d\n\n",
		first.Symbols, first.Distinct, first.TextBytes, first.MaxID)
	fmt.Fprintf(w, "| Setting | Bytes | Frames | Savings |\n")
	fmt.Fprintf(w, "|---------|-------|--------|---------|\n")
	for _, r := range results {
		fmt.Fprintf(w, "| %s | %d | %d | %.1f%% |\n", r.Name, r.Bytes, r.Frames, r.BytesPct)
	}
}
