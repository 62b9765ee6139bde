package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dslang/dslang/pkg/compiler/ast"
	"github.com/dslang/dslang/pkg/compiler/builder"
	"github.com/dslang/dslang/pkg/compiler/lexer"
	"github.com/dslang/dslang/pkg/compiler/parser"
	"github.com/dslang/dslang/pkg/debug"
	"github.com/dslang/dslang/pkg/vm"
)

const usage = `Usage: dslang <command> <file.ds> [flags]

Commands:
  run    compile and execute a program
  dump   print the compiled bytecode per function
  dot    write the parsed program as a Graphviz digraph

Run flags:
  -steps N   abort after N instructions (0 = unlimited)
  -trace     print each instruction before it executes
  -quiet     suppress program output, keep the exit status

Dot flags:
  -o PATH    output path (default: stdout)
`

func main() {
	if len(os.Args) < 3 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		runCommand(os.Args[2], os.Args[3:])
	case "dump":
		dumpCommand(os.Args[2])
	case "dot":
		dotCommand(os.Args[2], os.Args[3:])
	default:
		fmt.Fprintf(os.Stderr, "dslang: unknown command %q\n", os.Args[1])
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "dslang: %v\n", err)
	os.Exit(1)
}

func loadProgram(path string) []ast.Stmt {
	src, err := os.ReadFile(path)
	if err != nil {
		fatal(err)
	}
	tokens, err := lexer.New(string(src)).TokenizeAll()
	if err != nil {
		fatal(fmt.Errorf("%s: %w", path, err))
	}
	program, err := parser.New(tokens).ParseProgram()
	if err != nil {
		fatal(fmt.Errorf("%s: %w", path, err))
	}
	return program
}

func compileProgram(path string) *builder.Builder {
	b := builder.New()
	if err := b.Build(loadProgram(path)); err != nil {
		fatal(fmt.Errorf("%s: %w", path, err))
	}
	return b
}

func runCommand(path string, args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	steps := fs.Uint64("steps", 0, "abort after this many instructions (0 = unlimited)")
	trace := fs.Bool("trace", false, "print each instruction before it executes")
	quiet := fs.Bool("quiet", false, "suppress program output")
	fs.Parse(args)

	b := compileProgram(path)

	m := vm.New()
	for _, fn := range b.Functions() {
		m.AddFunction(fn)
	}
	if err := m.SetEntryFunction(b.EntryFunction()); err != nil {
		fatal(err)
	}
	m.ImmediatePrint = !*quiet
	m.StepLimit = *steps
	if err := m.Reset(); err != nil {
		fatal(err)
	}

	if *trace {
		var executed uint64
		for m.IsActive() {
			if *steps > 0 && executed >= *steps {
				fatal(vm.ErrStepLimitExceeded)
			}
			if op, ok := m.CurrentOp(); ok {
				fmt.Fprintf(os.Stderr, "%*s%s\n", 2*(m.CallDepth()-1), "", op)
			}
			if err := m.Step(); err != nil {
				fatal(err)
			}
			executed++
		}
	} else if err := m.Run(); err != nil {
		fatal(err)
	}

	ret, ok := m.ReturnValue()
	if !ok {
		fatal(fmt.Errorf("program halted without a return value"))
	}
	if ret != 0 {
		os.Exit(int(ret & 0xff))
	}
}

func dumpCommand(path string) {
	b := compileProgram(path)
	for id, fn := range b.Functions() {
		marker := ""
		if uint32(id) == b.EntryFunction() {
			marker = " (entry)"
		}
		fmt.Printf("func %d%s: %s\n", id, marker, fn.String())
	}
}

func dotCommand(path string, args []string) {
	fs := flag.NewFlagSet("dot", flag.ExitOnError)
	out := fs.String("o", "", "output path (default: stdout)")
	fs.Parse(args)

	program := loadProgram(path)
	if *out == "" {
		fmt.Print(debug.ToDot(program))
		return
	}
	if err := debug.WriteDotFile(*out, program); err != nil {
		fatal(err)
	}
}
