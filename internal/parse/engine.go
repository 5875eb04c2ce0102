package parse

import (
	"errors"
	"fmt"

	"github.com/dekarrin/lrtk/internal/errs"
	"github.com/dekarrin/lrtk/internal/grammar"
	"github.com/dekarrin/lrtk/internal/types"
	"github.com/dekarrin/lrtk/internal/util"
)

// ErrSyntaxErrorHere is returned by a production's ActionFunc to signal,
// synchronously from within the reduction, that the input is malformed at
// this point (spec §4.F: "A user production may also raise a synchronous
// signal equivalent to 'syntax error at this point'... the error handler is
// not invoked in that case"). The engine treats it as if the production's
// own reduction never completed and the symbol most recently shifted before
// it triggered the failure.
var ErrSyntaxErrorHere = errors.New("syntax error signaled from action")

// stackRecord is one entry of the parse engine's single combined stack
// (spec §4.F: "a single stack of (state, symbol-value, line, offset)
// records").
type stackRecord struct {
	state                  string
	symbol                 string
	value                  any
	startLine, endLine     int
	startOffset, endOffset int
}

// Engine is a shift-reduce parser driving a frozen Table over a token
// stream. Per spec §5, an Engine mutates only its own stack; a Table (and
// the Grammar and Numbering it was built from) may be shared read-only by
// many concurrently-running Engines.
type Engine struct {
	table   *Table
	g       grammar.Grammar
	num     *Numbering
	actions map[int]ActionFunc

	// OnParseError is called on every syntax error not resolved by a
	// synchronous in-action signal; may be nil, in which case the engine
	// injects the synthetic error token directly (spec §4.F step 2).
	OnParseError ParseErrorHandler

	// TrackSpans enables position tracking for reductions, not just shifted
	// terminals (spec §4.F, "Position tracking"). Disable this for grammars
	// using mid-rule (epsilon) actions in states the table defaults --
	// spec §9 notes the interaction between defaulted-state reduction and
	// mid-rule actions is subtle enough that such grammars should also clear
	// defaulted-state reduction with DisableDefaultedStates.
	TrackSpans bool

	disableDefaulted bool

	// Trace, if set, receives a line of text for every stack operation the
	// engine performs; nil by default.
	Trace func(string)
}

// NewEngine builds a parse engine from a frozen table, the grammar it was
// built from, the same Numbering used to build the table, and the
// production actions to invoke at reduce time, keyed by production number.
// A production with no entry (or a nil ActionFunc) gets a default action
// that builds a *types.ParseTree node, so a grammar can be parsed
// structurally without supplying any actions at all.
func NewEngine(table *Table, g grammar.Grammar, num *Numbering, actions map[int]ActionFunc) *Engine {
	return &Engine{table: table, g: g, num: num, actions: actions}
}

// DisableDefaultedStates turns off the defaulted-reduction optimization for
// this engine (spec §9's "toggle to clear defaulted states at the
// parser-handle level").
func (e *Engine) DisableDefaultedStates() {
	e.disableDefaulted = true
}

func (e *Engine) trace(format string, args ...any) {
	if e.Trace != nil {
		e.Trace(fmt.Sprintf(format, args...))
	}
}

// recoveryMode tracks which phase of the error-token recovery state machine
// (spec §4.F, "Error recovery") the engine is currently in.
type recoveryMode int

const (
	// recNormal is ordinary parsing; a syntax error here starts recovery.
	recNormal recoveryMode = iota

	// recDiscarding is active from the moment a state accepts the shifted
	// error token until the next token that can actually be shifted or
	// reduced (step 4: "discard input tokens until one can be shifted or a
	// rule involving error can be reduced").
	recDiscarding
)

type recoveryState struct {
	mode             recoveryMode
	suppressHandler  bool
	shiftsSinceError int

	// unrecovered is set when the stack was fully unwound without finding a
	// state that accepts the error token and parsing restarted from the
	// initial state. The restart is a best-effort continuation only: an
	// accept after it still reports the parse as failed.
	unrecovered bool
}

// Parse runs the shift-reduce driver to completion over stream, returning
// the value the start production's action produced, or an error. A nil
// error always comes with a non-nil result; see spec §4.F, "Failure
// semantics".
func (e *Engine) Parse(stream types.TokenStream) (any, error) {
	stack := []stackRecord{{state: e.table.Initial()}}

	var lookahead types.Token
	var rec recoveryState

	for {
		top := stack[len(stack)-1]

		var act LRAction
		haveDefaulted := false
		if !e.disableDefaulted {
			if defAct, ok := e.table.Defaulted(top.state); ok {
				act = defAct
				haveDefaulted = true
			}
		}

		if !haveDefaulted {
			if lookahead == nil {
				lookahead = stream.Next()
				if lookahead == nil {
					lookahead = endToken{}
				}
			}
			act = e.table.Action(top.state, lookahead.Class().ID())
		}

		if rec.mode == recDiscarding && act.Type == LRError {
			if isEndToken(lookahead) {
				// no further input to discard; recovery cannot make progress
				return nil, &errs.SyntaxError{Human: "unexpected end of input while recovering from an earlier syntax error"}
			}
			e.trace("discarding %q while recovering", lookahead.Class().ID())
			lookahead = nil
			continue
		}
		if act.Type != LRError {
			rec.mode = recNormal
		}

		switch act.Type {
		case LRShift:
			stack = append(stack, stackRecord{
				state:       act.State,
				symbol:      lookahead.Class().ID(),
				value:       lookahead,
				startLine:   lookahead.Line(),
				endLine:     lookahead.Line(),
				startOffset: lookahead.Offset(),
				endOffset:   lookahead.Offset() + len(lookahead.Lexeme()),
			})
			e.trace("shift -> state %s on %q", act.State, lookahead.Class().ID())
			lookahead = nil
			if rec.suppressHandler {
				rec.shiftsSinceError++
				if rec.shiftsSinceError >= 3 {
					rec.suppressHandler = false
				}
			}

		case LRReduce:
			raisedHere, err := e.reduce(&stack, act)
			if err != nil {
				return nil, err
			}
			if raisedHere {
				var recErr error
				lookahead, recErr = e.attemptRecovery(&stack, lookahead, &rec)
				if recErr != nil {
					return nil, recErr
				}
			}

		case LRAccept:
			if rec.unrecovered {
				return stack[len(stack)-1].value, &errs.SyntaxError{Human: "syntax error: part of the input could not be recovered"}
			}
			return stack[len(stack)-1].value, nil

		case LRError:
			var recErr error
			lookahead, recErr = e.recover(&stack, lookahead, &rec)
			if recErr != nil {
				return nil, recErr
			}
		}
	}
}

// reduce pops |rhs| records, invokes the production's action (or the
// default parse-tree-building action), and pushes the post-GOTO record. The
// return value is true if the action raised ErrSyntaxErrorHere, in which
// case the caller is responsible for entering error-token recovery; the
// rhs has already been popped in that case.
func (e *Engine) reduce(stackPtr *[]stackRecord, act LRAction) (bool, error) {
	stack := *stackPtr
	n := len(act.Production)
	if n == 1 && act.Production[0] == grammar.Epsilon[0] {
		n = 0
	}

	popped := make([]stackRecord, n)
	copy(popped, stack[len(stack)-n:])
	remaining := stack[:len(stack)-n]

	h := &Handle{
		rhs:   make([]stackSpan, n),
		prior: make([]stackSpan, len(remaining)),
	}
	for i, r := range popped {
		h.rhs[i] = stackSpan{value: r.value, startLine: r.startLine, endLine: r.endLine, startOff: r.startOffset, endOff: r.endOffset}
	}
	for i, r := range remaining {
		h.prior[i] = stackSpan{value: r.value, startLine: r.startLine, endLine: r.endLine, startOff: r.startOffset, endOff: r.endOffset}
	}

	action := e.actions[act.ProdNum]
	if action == nil {
		action = e.defaultAction(act)
	}

	if err := action(h); err != nil {
		*stackPtr = remaining
		if errors.Is(err, ErrSyntaxErrorHere) {
			return true, nil
		}
		return false, &errs.UserActionError{Rule: fmt.Sprintf("%s -> %s", act.Symbol, act.Production), Cause: err}
	}

	startLine, startOff := h.result.startLine, h.result.startOff
	endLine, endOff := h.result.endLine, h.result.endOff
	if e.TrackSpans && n > 0 {
		startLine, startOff = popped[0].startLine, popped[0].startOffset
		endLine, endOff = popped[n-1].endLine, popped[n-1].endOffset
	}

	newTop := remaining[len(remaining)-1]
	target, ok := e.table.Goto(newTop.state, act.Symbol)
	if !ok {
		return false, &errs.ParseError{Human: fmt.Sprintf("no GOTO entry for state %s on %s; generated table is inconsistent", newTop.state, act.Symbol)}
	}

	*stackPtr = append(remaining, stackRecord{
		state:       target,
		symbol:      act.Symbol,
		value:       h.result.value,
		startLine:   startLine,
		endLine:     endLine,
		startOffset: startOff,
		endOffset:   endOff,
	})
	e.trace("reduce %d: %s -> %s, goto state %s", act.ProdNum, act.Symbol, act.Production, target)
	return false, nil
}

// defaultAction builds a *types.ParseTree node out of the popped symbols
// when the caller didn't supply an action for this production, so a
// grammar can be exercised structurally with no semantic actions at all.
func (e *Engine) defaultAction(act LRAction) ActionFunc {
	return func(h *Handle) error {
		node := &types.ParseTree{Value: act.Symbol}
		for i := 1; i <= h.Len(); i++ {
			v := h.Get(i)
			if tok, ok := v.(types.Token); ok {
				node.Children = append(node.Children, &types.ParseTree{Terminal: true, Value: tok.Class().ID(), Source: tok})
			} else if child, ok := v.(*types.ParseTree); ok {
				node.Children = append(node.Children, child)
			}
		}
		h.SetResult(node)
		return nil
	}
}

// findErrorAcceptingState implements spec §4.F step 3: pop records until one
// whose state has a non-error ACTION for the error terminal, or the stack
// empties. Returns false if the stack emptied without finding one.
func (e *Engine) findErrorAcceptingState(stackPtr *[]stackRecord) bool {
	stack := *stackPtr
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if e.table.Action(top.state, ErrorSymbol).Type != LRError {
			*stackPtr = stack
			return true
		}
		stack = stack[:len(stack)-1]
	}
	*stackPtr = stack
	return false
}

// shiftErrorToken shifts the error terminal onto a stack whose top state is
// already known to accept it (spec §4.F step 4: "Once a state accepts
// error, shift it").
func (e *Engine) shiftErrorToken(stackPtr *[]stackRecord, lookahead types.Token) {
	top := (*stackPtr)[len(*stackPtr)-1]
	act := e.table.Action(top.state, ErrorSymbol)
	if act.Type != LRShift {
		return
	}
	*stackPtr = append(*stackPtr, stackRecord{
		state:       act.State,
		symbol:      ErrorSymbol,
		value:       lookahead,
		startLine:   lookahead.Line(),
		startOffset: lookahead.Offset(),
	})
}

// recover drives one step of the error-token recovery state machine (spec
// §4.F) for a single LRError action encountered in normal parsing, and
// returns the lookahead to retry with, or a fatal error if recovery is
// impossible.
func (e *Engine) recover(stackPtr *[]stackRecord, lookahead types.Token, rec *recoveryState) (types.Token, error) {
	if !rec.suppressHandler {
		var directive RecoveryDirective
		if e.OnParseError != nil {
			var tok types.Token
			if !isEndToken(lookahead) {
				tok = lookahead
			}
			directive = e.OnParseError(tok, e)
		}
		rec.suppressHandler = true
		rec.shiftsSinceError = 0

		switch directive.Kind {
		case RecoveryOk:
			rec.suppressHandler = false
			return lookahead, nil
		case RecoveryReplace:
			rec.suppressHandler = false
			return directive.Replacement, nil
		case RecoveryRestart:
			*stackPtr = []stackRecord{{state: e.table.Initial()}}
			rec.suppressHandler = false
			return nil, nil
		}
	}

	return e.attemptRecovery(stackPtr, lookahead, rec)
}

// attemptRecovery implements spec §4.F steps 2-4: inject the synthetic error
// token, pop the stack until a state accepts it, shift it, and switch to
// discard mode. If the stack empties without finding such a state and the
// offending lookahead was already end-of-input, recovery can never succeed
// (there is no further input to retry with), so this reports a fatal
// *errs.SyntaxError instead of looping forever; otherwise it resets to the
// initial state and lets the caller retry with a fresh lookahead.
func (e *Engine) attemptRecovery(stackPtr *[]stackRecord, lookahead types.Token, rec *recoveryState) (types.Token, error) {
	errTok := errorTokenFrom(lookahead)
	atEOF := isEndToken(lookahead)
	expected := e.table.ExpectedTerminals((*stackPtr)[len(*stackPtr)-1].state)

	if !e.findErrorAcceptingState(stackPtr) {
		if atEOF {
			human := "unexpected end of input; no rule accepts error recovery here"
			if len(expected) > 0 {
				human = fmt.Sprintf("unexpected end of input; expected %s", expectedTerminalsPhrase(expected))
			}
			return nil, &errs.SyntaxError{Human: human}
		}
		*stackPtr = []stackRecord{{state: e.table.Initial()}}
		rec.mode = recNormal
		rec.unrecovered = true
		return nil, nil
	}

	e.shiftErrorToken(stackPtr, errTok)
	rec.mode = recDiscarding
	return nil, nil
}

// isEndToken reports whether tok marks end-of-input, whether it is the
// engine's own synthesized endToken or an end-of-text token produced by the
// lexer itself.
func isEndToken(tok types.Token) bool {
	return tok != nil && tok.Class().ID() == EndOfInput
}

// expectedTerminalsPhrase renders the terminals a state would have accepted
// as a human-readable list, e.g. "one of: an IDENT, a '+', and a ';'".
func expectedTerminalsPhrase(terms []string) string {
	phrases := make([]string, len(terms))
	for i, t := range terms {
		phrases[i] = util.ArticleFor(t, false) + " " + t
	}
	return "one of: " + util.MakeTextList(phrases)
}
