/*
Lrtkdemo starts an interactive arithmetic-expression calculator built on
lrtk, as a worked example of wiring a RuleSet and a GrammarSpec together
into a runnable lexer/parser pair.

Usage:

	lrtkdemo [flags]

The flags are:

	-v, --version
		Print the version and exit.

	-d, --direct
		Force reading directly from stdin instead of using GNU readline
		based routines, even if launched in a tty.

	-t, --trace
		Print a trace line for every shift/reduce/goto the engine performs.

	--dump-tables
		Print the grammar listing, FIRST/FOLLOW sets, per-state item sets,
		and ACTION/GOTO tables, then exit without starting the REPL.

Once started, each line is parsed as an arithmetic expression over +, -, *,
/, parentheses, and integer literals, and the computed value is printed. An
empty line or "quit" ends the session.
*/
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/pflag"

	"github.com/dekarrin/lrtk"
	"github.com/dekarrin/lrtk/internal/errs"
	"github.com/dekarrin/lrtk/internal/grammar"
	"github.com/dekarrin/lrtk/internal/lex"
	"github.com/dekarrin/lrtk/internal/parse"
)

const demoVersion = "lrtkdemo 0.1.0"

const (
	ExitSuccess = iota
	ExitInitError
	ExitRuntimeError
)

var (
	returnCode  int   = ExitSuccess
	flagVersion *bool = pflag.BoolP("version", "v", false, "Print the version and exit")
	forceDirect *bool = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of readline")
	flagTrace   *bool = pflag.BoolP("trace", "t", false, "Print a trace line for every engine step")
	flagDump    *bool = pflag.Bool("dump-tables", false, "Print the grammar listing and ACTION/GOTO tables, then exit")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		}
		os.Exit(returnCode)
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Println(demoVersion)
		return
	}

	front, err := buildCalculator()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	if *flagTrace {
		front.Parser.RegisterTraceListener(func(s string) {
			fmt.Fprintln(os.Stderr, s)
		})
		front.Lexer.RegisterTraceListener(func(s string) {
			fmt.Fprintln(os.Stderr, s)
		})
	}

	if *flagDump {
		fmt.Printf("%s parse tables\n\n", front.Table().Type())
		fmt.Println(front.Table().GrammarListing())
		fmt.Println(front.Table().ItemSetsString())
		fmt.Println(front.Table().String())
		fmt.Println(front.Table().ConflictsString())
		return
	}

	reader, closeReader, err := newLineReader(*forceDirect)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	defer closeReader()

	for {
		line, err := reader()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitRuntimeError
			return
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.EqualFold(line, "quit") {
			return
		}

		result, err := evaluate(front, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", describeError(err))
			continue
		}
		fmt.Printf("= %d\n", result)
	}
}

func evaluate(front lrtk.Frontend, line string) (int, error) {
	stream := front.Lexer.Lex(strings.NewReader(line))
	result, err := front.Parser.Parse(stream)
	if err != nil {
		return 0, err
	}
	n, ok := result.(int)
	if !ok {
		return 0, errs.NewConfigError("expression action produced a non-int result")
	}
	return n, nil
}

func describeError(err error) string {
	var synErr *errs.SyntaxError
	if errors.As(err, &synErr) {
		return synErr.FullMessage()
	}
	return err.Error()
}

// newLineReader returns a function that reads one line of input at a time,
// using GNU readline unless direct is true.
//
// Grounded on tunaq/engine.go's "useReadline := !forceDirectInput &&
// inputStream == os.Stdin && outputStream == os.Stdout" choice between
// input.NewInteractiveReader and input.NewDirectReader.
func newLineReader(direct bool) (read func() (string, error), closeFn func(), err error) {
	if !direct {
		rl, err := readline.NewEx(&readline.Config{Prompt: "lrtk> "})
		if err != nil {
			return nil, nil, fmt.Errorf("create readline config: %w", err)
		}
		return func() (string, error) {
				return rl.Readline()
			}, func() {
				rl.Close()
			}, nil
	}

	br := bufReader{r: os.Stdin}
	return br.readLine, func() {}, nil
}

type bufReader struct {
	r io.Reader
}

func (b bufReader) readLine() (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := b.r.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				return sb.String(), nil
			}
			sb.WriteByte(buf[0])
		}
		if err != nil {
			if sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", err
		}
	}
}

// buildCalculator assembles the demo's RuleSet and GrammarSpec: a classic
// four-operator, parenthesized-integer-expression grammar with %left/%left
// precedence on + - versus * /, exercising lrtk.NewFrontend end to end.
func buildCalculator() (lrtk.Frontend, error) {
	rs := lrtk.RuleSet{
		Tokens: []string{"number", "plus", "minus", "star", "slash", "lparen", "rparen"},
		Rules: []lrtk.LexRule{
			{Kind: "number", Pattern: `[0-9]+`, Action: lex.LexAs("number")},
			{Pattern: `\+`, Literal: true, Action: lex.LexAs("plus")},
			{Pattern: `-`, Literal: true, Action: lex.LexAs("minus")},
			{Pattern: `\*`, Literal: true, Action: lex.LexAs("star")},
			{Pattern: `/`, Literal: true, Action: lex.LexAs("slash")},
			{Pattern: `\(`, Literal: true, Action: lex.LexAs("lparen")},
			{Pattern: `\)`, Literal: true, Action: lex.LexAs("rparen")},
		},
		Ignore: map[string][]rune{
			lex.InitialState: {' ', '\t', '\r'},
		},
	}

	gs := lrtk.GrammarSpec{
		Tokens: rs.Tokens,
		Start:  "expr",
		Precedence: []lrtk.PrecDecl{
			{Assoc: grammar.AssocLeft, Terms: []string{"plus", "minus"}},
			{Assoc: grammar.AssocLeft, Terms: []string{"star", "slash"}},
		},
		Productions: []lrtk.ProductionSpec{
			{LHS: "expr", RHS: []string{"expr", "plus", "expr"}, Action: binOp(func(a, b int) int { return a + b })},
			{LHS: "expr", RHS: []string{"expr", "minus", "expr"}, Action: binOp(func(a, b int) int { return a - b })},
			{LHS: "expr", RHS: []string{"expr", "star", "expr"}, Action: binOp(func(a, b int) int { return a * b })},
			{LHS: "expr", RHS: []string{"expr", "slash", "expr"}, Action: divOp()},
			{LHS: "expr", RHS: []string{"lparen", "expr", "rparen"}, Action: func(h *parse.Handle) error {
				h.SetResult(h.Get(2))
				return nil
			}},
			{LHS: "expr", RHS: []string{"number"}, Action: numberAction()},
		},
	}

	return lrtk.NewFrontend(rs, gs)
}

func binOp(f func(a, b int) int) parse.ActionFunc {
	return func(h *parse.Handle) error {
		left, right, err := operands(h)
		if err != nil {
			return err
		}
		h.SetResult(f(left, right))
		return nil
	}
}

func divOp() parse.ActionFunc {
	return func(h *parse.Handle) error {
		left, right, err := operands(h)
		if err != nil {
			return err
		}
		if right == 0 {
			return errors.New("division by zero")
		}
		h.SetResult(left / right)
		return nil
	}
}

func operands(h *parse.Handle) (int, int, error) {
	left, ok := h.Get(1).(int)
	if !ok {
		return 0, 0, errs.NewConfigError("left operand is not an int")
	}
	right, ok := h.Get(3).(int)
	if !ok {
		return 0, 0, errs.NewConfigError("right operand is not an int")
	}
	return left, right, nil
}

func numberAction() parse.ActionFunc {
	return func(h *parse.Handle) error {
		tok, ok := h.Get(1).(interface{ Lexeme() string })
		if !ok {
			return errs.NewConfigError("number token missing lexeme")
		}
		n, err := strconv.Atoi(tok.Lexeme())
		if err != nil {
			return fmt.Errorf("invalid number literal: %w", err)
		}
		h.SetResult(n)
		return nil
	}
}
