package parse

import "github.com/dekarrin/lrtk/internal/types"

// RecoveryKind identifies what a parse-error handler decided to do about the
// syntax error it was called with. Spec §9's redesign note replaces
// "exception-based restart and errok" with "methods on the parser handle
// returning a recovery directive enum {Ok, Restart, Replace(Token)}"; this
// is that enum, plus the implicit default of "do nothing, let the engine
// inject the synthetic error token" (RecoveryDefault).
type RecoveryKind int

const (
	// RecoveryDefault leaves the engine to inject the synthetic error token
	// as the new lookahead and proceed with the normal error-token recovery
	// state machine (spec §4.F step 2).
	RecoveryDefault RecoveryKind = iota

	// RecoveryOk clears recovery mode (re-arms the error handler) and keeps
	// whatever lookahead was already pending -- the "errok" primitive.
	RecoveryOk

	// RecoveryReplace substitutes Replacement for the current lookahead and
	// clears recovery mode.
	RecoveryReplace

	// RecoveryRestart discards the entire parse stack and resumes from the
	// initial state, discarding the current lookahead as well.
	RecoveryRestart
)

// RecoveryDirective is the value a ParseErrorHandler returns to tell the
// engine how to proceed after a syntax error.
type RecoveryDirective struct {
	Kind        RecoveryKind
	Replacement types.Token // used only when Kind == RecoveryReplace
}

// ParseErrorHandler is called with the offending token (nil on unexpected
// EOF) the first time a syntax error is detected, and not again until three
// successive tokens have shifted without error (spec §4.F step 1).
type ParseErrorHandler func(tok types.Token, eng *Engine) RecoveryDirective

// endToken is the synthetic token synthesized when the lexer runs out of
// input before the parser reaches an ACCEPT action (spec §4.F, "Tokenizer-
// returned null before ACCEPT: inject $end").
type endToken struct {
	line, linePos, offset int
	fullLine              string
}

func (t endToken) Class() types.TokenClass { return types.TokenEndOfText }
func (t endToken) Lexeme() string          { return "" }
func (t endToken) LinePos() int            { return t.linePos }
func (t endToken) Line() int               { return t.line }
func (t endToken) FullLine() string        { return t.fullLine }
func (t endToken) Offset() int             { return t.offset }
func (t endToken) String() string          { return "$end" }

// errorToken is the synthetic error token injected as a lookahead during
// error-token recovery (spec §4.F step 2). It carries the position of the
// token that triggered recovery so that a production reduced over it still
// has a sensible span.
type errorToken struct {
	line, linePos, offset int
	fullLine              string
}

func (t errorToken) Class() types.TokenClass { return types.TokenError }
func (t errorToken) Lexeme() string          { return "" }
func (t errorToken) LinePos() int            { return t.linePos }
func (t errorToken) Line() int               { return t.line }
func (t errorToken) FullLine() string        { return t.fullLine }
func (t errorToken) Offset() int             { return t.offset }
func (t errorToken) String() string          { return "error" }

func errorTokenFrom(tok types.Token) errorToken {
	if tok == nil {
		return errorToken{}
	}
	return errorToken{line: tok.Line(), linePos: tok.LinePos(), offset: tok.Offset(), fullLine: tok.FullLine()}
}
