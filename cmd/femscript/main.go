// femscript runs femscript programs.
//
// With a script argument it executes the file. With no argument it reads a
// program from stdin, or starts an interactive session when stdin is a
// terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/docopt/docopt-go"
	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/femscript-lang/femscript"
	"github.com/femscript-lang/femscript/engine"
	"github.com/femscript-lang/femscript/highlight"
)

const usage = `femscript - run femscript programs.

Usage:
  femscript [--debug] [<script>]
  femscript -e <expr>
  femscript --highlight <script>
  femscript -h | --help

Options:
  -e <expr>     Evaluate a single expression and print the result.
  --highlight   Print the script with syntax highlighting.
  --debug       Enable evaluator diagnostics.
  -h --help     Show this help.
`

func main() {
	opts, err := docopt.ParseDoc(usage)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if expr, _ := opts.String("-e"); expr != "" {
		evalExpr(expr)
		return
	}

	script, _ := opts.String("<script>")
	if hl, _ := opts.Bool("--highlight"); hl {
		highlightFile(script)
		return
	}

	debug, _ := opts.Bool("--debug")
	if debug {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer logger.Sync()
		engine.SetLogger(logger)
	}

	switch {
	case script != "":
		runFile(script, debug)
	case isatty.IsTerminal(os.Stdin.Fd()):
		repl(debug)
	default:
		source, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		runSource(string(source), debug)
	}
}

func evalExpr(expr string) {
	result, err := femscript.EvalLiteral(expr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	printResult(result)
}

func highlightFile(path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Print(highlight.Render(string(source)))
}

func runFile(path string, debug bool) {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	runSource(string(source), debug)
}

func runSource(source string, debug bool) {
	script, err := femscript.New(source)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var opts []femscript.ExecOption
	if debug {
		opts = append(opts, femscript.WithDebug())
	}
	result, err := script.Execute(context.Background(), opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if scriptErr, ok := result.(*femscript.Error); ok {
		fmt.Fprintln(os.Stderr, scriptErr.Message)
		os.Exit(1)
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".femscript_history")
}

func repl(debug bool) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if path := historyPath(); path != "" {
		if f, err := os.Open(path); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(path); err == nil {
				line.WriteHistory(f)
				f.Close()
			}
		}()
	}

	script, err := femscript.New("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var opts []femscript.ExecOption
	if debug {
		opts = append(opts, femscript.WithDebug())
	}

	for {
		input, err := line.Prompt("fs> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			return
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)

		if err := script.Parse(input); err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		result, err := script.Execute(context.Background(), opts...)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		printResult(result)
	}
}

func printResult(result any) {
	switch v := result.(type) {
	case nil:
	case *femscript.Error:
		fmt.Println(v.Message)
	case *femscript.Scope:
		fmt.Println(v)
	case string:
		fmt.Printf("%q\n", v)
	default:
		fmt.Println(v)
	}
}
