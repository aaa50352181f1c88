// Command prog is the toolchain's entry point: prog {run|debug} <source-path>+.
//
// Each source path is preprocessed, handed to an external AST-producing
// parser (the producer that SPEC_FULL.md §1 treats as an external
// collaborator: this package defines the contract, not the parser),
// compiled, and linked together with the standard-library runtime unit
// into one Executable, which is then run or debugged.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"

	"regvm/asmlink"
	"regvm/compiler"
	"regvm/preprocess"
	"regvm/system"
)

// astParserEnv names the environment variable carrying the external
// AST-parser command, when -parser is not given on the command line.
const astParserEnv = "REGVM_AST_PARSER"

func main() {
	os.Exit(mainErr())
}

func mainErr() int {
	parser := flag.String("parser", "", "external AST-parser command (invoked as: parser <preprocessed-source-path>, must print the JSON AST on stdout); overrides "+astParserEnv)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: prog [-parser cmd] {run|debug} <source-path>+")
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		flag.Usage()
		return 2
	}
	mode, sources := args[0], args[1:]
	if mode != "run" && mode != "debug" {
		fmt.Fprintf(os.Stderr, "unknown mode %q: want run or debug\n", mode)
		return 2
	}

	parserCmd := *parser
	if parserCmd == "" {
		parserCmd = os.Getenv(astParserEnv)
	}
	if parserCmd == "" {
		parserCmd = "ast-parser"
	}

	exe, err := build(parserCmd, sources)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	c := system.NewCpu()
	system.Load(c, exe)
	con := system.NewConsole(os.Stdout, os.Stdin)

	var exitCode int32
	switch mode {
	case "run":
		exitCode, err = system.Run(c, con)
	case "debug":
		dbg := system.NewDebugger(c, con, exe.CodeSymbols, os.Stdin, os.Stdout)
		exitCode, err = dbg.Run()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return int(exitCode)
}

// build compiles every source path to an assembly unit, appends the
// runtime unit, and assembles/links the result into one Executable.
func build(parserCmd string, sources []string) (*asmlink.Executable, error) {
	units := make([]string, 0, len(sources)+1)
	for _, src := range sources {
		unit, err := compileSource(parserCmd, src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src, err)
		}
		units = append(units, unit)
	}
	units = append(units, system.RuntimeUnit)
	return asmlink.Assemble(units)
}

// compileSource preprocesses one source file, writes the result to a
// temporary file (the external parser takes a path, not stdin), runs the
// configured parser against it, and compiles the JSON AST it prints.
func compileSource(parserCmd, sourcePath string) (string, error) {
	preprocessed, err := preprocess.Preprocess(sourcePath)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp("", "regvm-*.c")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(preprocessed); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	astJSON, err := runASTParser(parserCmd, tmp.Name())
	if err != nil {
		return "", err
	}
	return compiler.Compile(astJSON)
}

func runASTParser(parserCmd, sourcePath string) ([]byte, error) {
	out, err := exec.Command(parserCmd, sourcePath).Output()
	if err != nil {
		return nil, fmt.Errorf("ast parser %q: %w", parserCmd, err)
	}
	return out, nil
}
