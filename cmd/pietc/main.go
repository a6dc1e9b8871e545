// Command pietc compiles Lisp-family source into a Piet stack-machine
// instruction stream and simulates it.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/cjayross/pietc/internal/compiler"
	"github.com/cjayross/pietc/internal/lexer"
	"github.com/cjayross/pietc/internal/painter"
	"github.com/cjayross/pietc/internal/repl"
	"github.com/cjayross/pietc/internal/sexpr"
	"github.com/cjayross/pietc/internal/sim"
	"github.com/cjayross/pietc/internal/tracelog"
)

const version = "0.1.0"

// printUsage displays custom usage information.
func printUsage() {
	_, _ = fmt.Fprintf(os.Stderr, `pietc v%s

USAGE:
    %s [OPTIONS]

DESCRIPTION:
    pietc lowers Lisp-family source into a Piet stack-machine
    instruction stream and simulates it. Without any flags, it starts
    an interactive REPL (Read-Eval-Print-Loop).

OPTIONS:
    -f, --file <path>       Execute a source file
    -e, --eval <code>       Evaluate an expression and print the result
    -d, --debug             Enable debug mode with verbose structured logging
    -p, --paint             Render the compiled instruction stream as a codel strip
    -v, --version           Show version information
    -h, --help              Show this help message

EXAMPLES:
    # Start interactive REPL
    %s

    # Execute a script file
    %s -f script.pt
    %s --file script.pt

    # Evaluate an expression
    %s -e "(+ 1 2)"
    %s --eval "(define twice (lambda (x) (* 2 x))) (twice 7)"

    # Execute with the codel-strip visualizer
    %s -f script.pt -p

`, version, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

func main() {
	flag.Usage = printUsage

	fileFlag := flag.String("file", "", "Execute a source file")
	evalFlag := flag.String("eval", "", "Evaluate an expression and print the result")
	debugFlag := flag.Bool("debug", false, "Enable debug mode with verbose structured logging")
	paintFlag := flag.Bool("paint", false, "Render the compiled instruction stream as a codel strip")
	versionFlag := flag.Bool("version", false, "Show version information")

	flag.StringVar(fileFlag, "f", "", "Execute a source file")
	flag.StringVar(evalFlag, "e", "", "Evaluate an expression and print the result")
	flag.BoolVar(debugFlag, "d", false, "Enable debug mode with verbose structured logging")
	flag.BoolVar(paintFlag, "p", false, "Render the compiled instruction stream as a codel strip")
	flag.BoolVar(versionFlag, "v", false, "Show version information")

	flag.Parse()

	if *versionFlag {
		fmt.Printf("pietc v%s\n", version)
		return
	}

	log, err := tracelog.New(*debugFlag)
	if err != nil {
		fmt.Printf("Error initializing logger: %s\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if *fileFlag != "" {
		executeFile(*fileFlag, log, *paintFlag)
		return
	}

	if *evalFlag != "" {
		evaluateExpression(*evalFlag, log, *paintFlag)
		return
	}

	username := "unknown"
	if usr, err := user.Current(); err == nil {
		username = usr.Username
	}

	fmt.Println("Hello", username+",", "welcome to pietc!")
	fmt.Println("Feel free to type in Lisp-family code. (Ctrl+D or Ctrl+C to exit)")

	repl.Start(repl.Options{Debug: *debugFlag, Paint: *paintFlag, Log: log})
}

// executeFile reads and executes a source file.
func executeFile(filename string, log *tracelog.Logger, paint bool) {
	cleaned := filepath.Clean(filename)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		fmt.Printf("Error getting absolute path: %s\n", err)
		os.Exit(1)
	}

	//nolint:gosec // We're not reading untrusted user input here
	content, err := os.ReadFile(absolute)
	if err != nil {
		fmt.Printf("Error reading file: %s\n", err)
		os.Exit(1)
	}

	run(string(content), log, paint)
}

// evaluateExpression compiles and simulates a single expression.
func evaluateExpression(expr string, log *tracelog.Logger, paint bool) {
	run(expr, log, paint)
}

func run(source string, log *tracelog.Logger, paint bool) {
	l := lexer.New(source)
	p := sexpr.New(l)
	forms := p.ParseProgram()

	if errs := p.Errors(); len(errs) != 0 {
		printParserErrors(errs)
		os.Exit(1)
	}

	unit := compiler.NewCompilationUnit(log)
	top := compiler.NewTopLevel()
	prog, err := unit.Run(forms, top)
	if err != nil {
		fmt.Printf("Compilation error: %s\n", err)
		os.Exit(1)
	}

	s := sim.New(unit)
	if err := s.Run(prog); err != nil {
		fmt.Printf("Runtime error: %s\n", err)
		os.Exit(1)
	}

	fmt.Println(s.Stack())

	if paint {
		fmt.Println(painter.RenderSequence(prog))
	}
}

// printParserErrors prints parser errors to stderr.
func printParserErrors(errors []string) {
	_, _ = fmt.Fprintln(os.Stderr, "Parser errors:")
	for _, msg := range errors {
		_, _ = fmt.Fprintln(os.Stderr, "\t"+msg)
	}
}
