// Package lrtk implements a lex/yacc-style parser-construction toolkit: a
// lexical analyzer assembled from regular-expression rules, and an LALR(1)
// parser generator and table-driven parsing engine that consumes the
// resulting tokens. Describe a lexer with a RuleSet and a grammar with a
// GrammarSpec, then call NewLexer and NewParser to get a runnable frontend.
//
// Grounded on tunaq/internal/ictiobus/ictiobus.go, which plays the same
// role for the teacher's own lex/parser pair: a small facade over the
// internal lex/grammar/parse packages that the rest of a program depends on
// instead of reaching into internal/ directly.
package lrtk

import (
	"io"
	"strings"

	"github.com/dekarrin/lrtk/internal/errs"
	"github.com/dekarrin/lrtk/internal/grammar"
	"github.com/dekarrin/lrtk/internal/lex"
	"github.com/dekarrin/lrtk/internal/parse"
	"github.com/dekarrin/lrtk/internal/types"
)

// Lexer produces a token stream from input text (spec.md §4.A/§4.B).
type Lexer interface {
	// Lex returns a stream of tokens scanned from input. Scanning is lazy:
	// Next() on the returned stream performs only enough work to produce
	// the next token.
	Lex(input io.Reader) types.TokenStream

	// RegisterTraceListener installs fn to receive one line of text per
	// token scanned and per lexer-state transition taken, on every stream
	// returned by Lex after this call. Passing nil disables tracing.
	RegisterTraceListener(fn func(string))
}

// Parser drives an LALR(1) table over a token stream (spec.md §4.F).
type Parser interface {
	// Parse consumes stream to completion, returning the start production's
	// action result, or a *errs.SyntaxError/*errs.ParseError/
	// *errs.UserActionError describing the failure.
	Parse(stream types.TokenStream) (any, error)

	// Table returns the frozen ACTION/GOTO table this parser drives, for
	// producing a tables-dump artifact (spec.md §6, "Artifacts") or for
	// sharing across additional Engine instances per the concurrency model
	// of spec.md §5.
	Table() *parse.Table

	// RegisterTraceListener installs fn to receive one line of text per
	// shift/reduce/goto the engine performs on every subsequent Parse call,
	// the same bring-your-own-sink shape tunaq/internal/ictiobus/parse/lr.go
	// exposes via notifyTrace*. Passing nil disables tracing.
	RegisterTraceListener(fn func(string))
}

type lexerFrontend struct {
	def   *lex.Definition
	trace func(string)
}

func (l *lexerFrontend) Lex(input io.Reader) types.TokenStream {
	inst, err := l.def.Lex(input)
	if err != nil {
		return erroredStream{err: err}
	}
	inst.SetTraceListener(l.trace)
	return inst
}

func (l *lexerFrontend) RegisterTraceListener(fn func(string)) {
	l.trace = fn
}

// erroredStream stands in for the token stream when compiling the Definition
// fails, so that Lex can satisfy the no-error Lexer interface. It yields no
// tokens (Next and Peek return nil, HasNext is false) and does not surface
// the compile error it holds.
type erroredStream struct {
	err error
	hit bool
}

func (s erroredStream) Next() types.Token {
	return nil
}
func (s erroredStream) Peek() types.Token { return nil }
func (s erroredStream) HasNext() bool     { return false }

// NewLexer compiles rs into a runnable Lexer. Compilation failures (bad
// regex syntax, duplicate token kinds, an action that changes state without
// naming a target) are returned immediately rather than deferred to first
// use. A target state that has no rules of its own is not reported; while
// in it, the lexer scans with INITIAL's pattern.
func NewLexer(rs RuleSet) (Lexer, error) {
	def, err := rs.BuildDefinition()
	if err != nil {
		return nil, err
	}
	// force a compile of every state's master pattern now, so a bad regex or
	// empty-matching pattern surfaces here instead of on the first Lex call.
	if _, err := def.Lex(strings.NewReader("")); err != nil {
		return nil, err
	}
	return &lexerFrontend{def: def}, nil
}

type parserFrontend struct {
	table  *parse.Table
	engine func() *parse.Engine
	trace  func(string)
}

func (p *parserFrontend) Parse(stream types.TokenStream) (any, error) {
	eng := p.engine()
	eng.Trace = p.trace
	return eng.Parse(stream)
}

func (p *parserFrontend) Table() *parse.Table {
	return p.table
}

func (p *parserFrontend) RegisterTraceListener(fn func(string)) {
	p.trace = fn
}

// NewParser is the most flexible and efficient parser lrtk builds: an
// LALR(1) table-driven engine. Returns a *errs.ConfigError if g is not
// LALR(1) or violates a grammar invariant (spec.md §3).
func NewParser(gs GrammarSpec) (Parser, error) {
	g, num, actions, err := gs.BuildGrammar()
	if err != nil {
		return nil, err
	}

	table, err := parse.NewLALR1Table(g, num)
	if err != nil {
		return nil, err
	}

	return &parserFrontend{
		table: table,
		engine: func() *parse.Engine {
			eng := parse.NewEngine(table, g, num, actions)
			eng.OnParseError = gs.OnParseError
			return eng
		},
	}, nil
}

// Frontend bundles a Lexer and Parser built from one RuleSet/GrammarSpec
// pair, plus the grammar.Grammar and parse.Table they share, for callers
// that want both halves of a language front end under one value (spec.md
// §4.G, "the reflection layer... is free to construct these however it
// likes" -- Frontend is one convenient such construction, not the only one).
type Frontend struct {
	Lexer  Lexer
	Parser Parser

	grammar grammar.Grammar
	table   *parse.Table
}

// Grammar returns the compiled grammar the parser half was built from.
func (f Frontend) Grammar() grammar.Grammar {
	return f.grammar
}

// Table returns the frozen ACTION/GOTO table the parser half drives.
func (f Frontend) Table() *parse.Table {
	return f.table
}

// NewFrontend builds a Lexer from rs and a Parser from gs and bundles them.
func NewFrontend(rs RuleSet, gs GrammarSpec) (Frontend, error) {
	lx, err := NewLexer(rs)
	if err != nil {
		return Frontend{}, err
	}
	ps, err := NewParser(gs)
	if err != nil {
		return Frontend{}, err
	}
	pf, ok := ps.(*parserFrontend)
	if !ok {
		return Frontend{}, errs.NewConfigError("internal: NewParser did not return a *parserFrontend")
	}
	return Frontend{Lexer: lx, Parser: ps, grammar: pf.table.Grammar(), table: pf.table}, nil
}
