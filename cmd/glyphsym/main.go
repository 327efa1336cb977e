// glyphsym - GLYPH symbol table tool
//
// Usage:
//
//	glyphsym check <decl>...      Validate shared table declarations
//	glyphsym show <decl>          Print the IDs of each table in a file
//	glyphsym encode [file]        Encode whitespace-separated words as GS1-T frames
//	glyphsym decode [file]        Decode GS1-T frames back to words
//	glyphsym bench [file]         Compare encoded sizes against plain text
//	glyphsym version              Print version info
//
// If no file is given, reads from stdin.
package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/alecthomas/kingpin.v2"
)

const (
	libVersion    = "0.1.0"
	formatVersion = "gs1-t/1"
)

// handler runs one parsed command.
type handler func(a *app) error

func main() {
	a := &app{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
	os.Exit(run(a, os.Args[1:]))
}

func run(a *app, args []string) int {
	cli := kingpin.New("glyphsym", "GLYPH symbol table tool.")
	cli.UsageWriter(a.errOut)
	cli.ErrorWriter(a.errOut)
	cli.Terminate(nil)
	cli.HelpFlag.Short('h')

	a.registerGlobals(cli)

	handlers := map[string]handler{}
	for _, register := range []func(*kingpin.Application) (*kingpin.CmdClause, handler){
		cmdCheck, cmdShow, cmdEncode, cmdDecode, cmdBench, cmdVersion,
	} {
		clause, h := register(cli)
		handlers[clause.FullCommand()] = h
	}

	command, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(a.errOut, "glyphsym: %v\n", err)
		return 2
	}
	h, ok := handlers[command]
	if !ok {
		// --help was handled by kingpin.
		return 0
	}

	if err := h(a); err != nil {
		fmt.Fprintf(a.errOut, "glyphsym: %v\n", err)
		return 1
	}
	return 0
}

func cmdVersion(cli *kingpin.Application) (*kingpin.CmdClause, handler) {
	c := cli.Command("version", "Print version info.")
	return c, func(a *app) error {
		fmt.Fprintf(a.out, "glyphsym %s (%s)\n", libVersion, formatVersion)
		return nil
	}
}

// openInput returns stdin for "" or "-", else the named file.
func (a *app) openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(a.in), nil
	}
	return os.Open(path)
}
