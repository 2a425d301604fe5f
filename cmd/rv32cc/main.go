// Command rv32cc compiles a single source file in the project's minimal
// harness language (internal/frontend) down to RV32IM assembly and writes
// the result to stdout or a named output file.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rv32edu/rv32cc/internal/frontend"
	"github.com/rv32edu/rv32cc/internal/pipeline"
)

func main() {
	os.Exit(doMain(os.Stdout, os.Stderr))
}

// doMain is separated from main for the purpose of unit testing.
func doMain(stdOut, stdErr io.Writer) (exitCode int) {
	flags := flag.NewFlagSet("rv32cc", flag.ContinueOnError)
	flags.SetOutput(stdErr)

	var help bool
	flags.BoolVar(&help, "h", false, "Prints usage.")
	flags.BoolVar(&help, "help", false, "Prints usage.")
	var output string
	flags.StringVar(&output, "o", "", "Output path for the generated assembly (default: stdout).")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return 2
	}

	if help {
		printUsage(stdErr, flags)
		return 0
	}

	if flags.NArg() != 1 {
		fmt.Fprintln(stdErr, "expected exactly one input source file")
		printUsage(stdErr, flags)
		return 2
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(stdErr, "rv32cc: internal error: %v\n", r)
			exitCode = 1
		}
	}()

	path := flags.Arg(0)
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdErr, "rv32cc: %v\n", err)
		return 1
	}

	asm, err := compile(stdErr, path, string(src))
	if err != nil {
		fmt.Fprintf(stdErr, "rv32cc: %v\n", err)
		return 1
	}

	if output == "" {
		fmt.Fprint(stdOut, asm)
		return 0
	}
	if err := os.WriteFile(output, []byte(asm), 0o644); err != nil {
		fmt.Fprintf(stdErr, "rv32cc: writing %s: %v\n", output, err)
		return 1
	}
	return 0
}

// compile runs the full front-end-to-assembly path: parse, then (per spec
// §7) stop here if the front end recorded any user error, otherwise hand
// the finished Program to the back end pipeline.
func compile(stdErr io.Writer, path, src string) (string, error) {
	prog, dc := frontend.Parse(path, src)
	if dc.Failed() {
		for _, e := range dc.Errors {
			fmt.Fprintln(stdErr, e.String())
		}
		return "", fmt.Errorf("%d error(s) parsing %s", len(dc.Errors), path)
	}
	return pipeline.Compile(prog)
}

func printUsage(w io.Writer, flags *flag.FlagSet) {
	fmt.Fprintln(w, "usage: rv32cc [-o output] <input>")
	flags.PrintDefaults()
}
