// Package lex implements lrtk's lexical analyzer: component A assembles
// per-token regex rules into a single compiled master pattern per lexer
// state, honoring a strict ordering discipline, and component B is the
// scanning runtime that drives that pattern over an input reader, dispatches
// to rule actions, and tracks an explicit start-condition (state) stack with
// inclusive/exclusive fallback semantics in the style of lex/flex.
package lex

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/dekarrin/lrtk/internal/errs"
	"github.com/dekarrin/lrtk/internal/types"
	"github.com/dekarrin/lrtk/internal/util"
)

// InitialState is the name of the lexer state every Instance starts in, and
// the state every inclusive state falls back to on no-match.
const InitialState = "INITIAL"

// EOFHook is called when the lexer reaches the end of its current input. If
// it returns more==true, text is appended to the remaining input and
// scanning retries; otherwise the lexer reports end-of-text.
type EOFHook func() (text string, more bool)

// ErrorHook is called when no rule matches at the current position. ch is
// the offending character. If the hook returns skip>0, that many additional
// characters are discarded before retrying (skip==1 discards just ch, which
// is also what happens if no hook is registered at all).
type ErrorHook func(ch rune) (skip int)

// Definition is a builder for a lexer: the set of token classes, per-state
// pattern rules, state inclusivity, and ignored-character sets that together
// describe how to scan an input. Call Lex to produce a running Instance.
type Definition struct {
	classes map[string]map[string]types.TokenClass // by ID, by state
	rules   map[string][]patAct                    // by state
	incl    map[string]bool                        // state -> inclusive
	ignore  map[string]map[rune]bool               // state -> ignored runes

	nonVerbose bool

	eofHook   EOFHook
	errorHook ErrorHook
}

// NewDefinition returns an empty lexer definition. INITIAL is implicitly
// inclusive (falling back to itself has no effect). Patterns compile in
// verbose mode (whitespace and #-comments in a pattern are insignificant)
// unless SetVerbose(false) is called.
func NewDefinition() *Definition {
	return &Definition{
		classes: map[string]map[string]types.TokenClass{},
		rules:   map[string][]patAct{},
		incl:    map[string]bool{},
		ignore:  map[string]map[rune]bool{},
	}
}

// SetVerbose controls whether patterns are treated as verbose-mode regexes,
// with insignificant whitespace and #-comments stripped before compiling.
// On by default; a caller turning it off makes whitespace in patterns
// significant again.
func (d *Definition) SetVerbose(verbose bool) {
	d.nonVerbose = !verbose
}

// DeclareState registers a lexer state and whether it is inclusive (falls
// back to INITIAL's rules when none of its own match) or exclusive (only its
// own rules are ever considered). States are implicitly declared as
// exclusive the first time a pattern is added for them; call DeclareState
// first if inclusive behavior is wanted.
func (d *Definition) DeclareState(name string, inclusive bool) {
	d.incl[name] = inclusive
}

// AddClass registers a token class as lexable while in the given state. The
// zero value for forState is InitialState.
func (d *Definition) AddClass(cls types.TokenClass, forState string) error {
	if forState == "" {
		forState = InitialState
	}
	stateClasses, ok := d.classes[forState]
	if !ok {
		stateClasses = map[string]types.TokenClass{}
	}
	if _, dup := stateClasses[cls.ID()]; dup {
		return errs.NewConfigError(fmt.Sprintf("token class %q is already declared for state %q", cls.ID(), forState))
	}
	stateClasses[cls.ID()] = cls
	d.classes[forState] = stateClasses
	return nil
}

// AddPattern adds a regular-expression rule to the given state (InitialState
// if empty). If action requires a token class (LexAs and its variants), the
// class must have already been declared via AddClass for that state.
func (d *Definition) AddPattern(pat string, action Action, forState string) error {
	return d.addRule(pat, action, forState, false, false)
}

// AddBarePattern adds a regular-expression rule that emits a token of the
// given class with no user action attached. Bare patterns are ordered after
// every action-bearing pattern, by decreasing pattern length, so that among
// plain string rules the more specific one wins (a rule for "==" is tried
// before a rule for "=").
func (d *Definition) AddBarePattern(pat string, classID string, forState string) error {
	return d.addRule(pat, LexAs(classID), forState, false, true)
}

// AddLiteral adds a fixed-text rule, matched verbatim (not as a regex), to
// the given state. Per the ordering discipline, literal rules are always
// tried after every named pattern rule, matching the lex/flex convention
// that quoted strings are lowest priority.
func (d *Definition) AddLiteral(lit string, action Action, forState string) error {
	return d.addRule(lit, action, forState, true, false)
}

func (d *Definition) addRule(src string, action Action, forState string, literal bool, bare bool) error {
	if forState == "" {
		forState = InitialState
	}

	if action.Type == ActionScan || action.Type == ActionScanAndState ||
		action.Type == ActionScanAndPushState || action.Type == ActionScanAndPopState {
		stateClasses := d.classes[forState]
		if _, ok := stateClasses[action.ClassID]; !ok {
			return errs.NewConfigError(fmt.Sprintf("%q is not a defined token class for state %q; add it with AddClass first", action.ClassID, forState))
		}
	}
	if action.Type == ActionState || action.Type == ActionScanAndState ||
		action.Type == ActionPushState || action.Type == ActionScanAndPushState {
		if action.State == "" {
			return errs.NewConfigError("action changes lexer state but does not name a target state")
		}
	}

	rule := patAct{src: src, act: action, literal: literal, hasAction: action.Type != ActionNone && !bare}

	for _, existing := range d.rules[forState] {
		if existing.src == src && existing.literal == literal {
			return errs.NewConfigError(fmt.Sprintf("duplicate pattern %q for state %q", src, forState))
		}
	}

	d.rules[forState] = append(d.rules[forState], rule)
	return nil
}

// AddIgnored marks ch as a fast-path-ignored character while in forState:
// runs of such characters are consumed without attempting a pattern match
// and without producing a token.
func (d *Definition) AddIgnored(ch rune, forState string) {
	if forState == "" {
		forState = InitialState
	}
	set, ok := d.ignore[forState]
	if !ok {
		set = map[rune]bool{}
	}
	set[ch] = true
	d.ignore[forState] = set
}

// SetEOFHook installs the hook called when the lexer reaches end of input.
func (d *Definition) SetEOFHook(hook EOFHook) {
	d.eofHook = hook
}

// SetErrorHook installs the hook called when no rule matches at the current
// position.
func (d *Definition) SetErrorHook(hook ErrorHook) {
	d.errorHook = hook
}

// Lex compiles the definition's master patterns and returns a running
// Instance scanning input. Compilation failures -- bad regex syntax, an
// empty-matching pattern -- are reported here, as fatal configuration errors,
// before any scanning begins. A duplicate token class or pattern is rejected
// earlier, by AddClass or by the Add*Pattern/AddLiteral call that adds it.
func (d *Definition) Lex(input io.Reader) (*Instance, error) {
	patterns := map[string]*masterPattern{}
	for state, rules := range d.rules {
		mp, err := assembleMasterPattern(rules, !d.nonVerbose)
		if err != nil {
			return nil, errs.WrapConfigError(fmt.Sprintf("state %q", state), err)
		}
		patterns[state] = mp

		if d.incl[state] && state != InitialState {
			combinedRules := append(append([]patAct{}, rules...), d.rules[InitialState]...)
			fallbackMP, err := assembleMasterPattern(combinedRules, !d.nonVerbose)
			if err != nil {
				return nil, errs.WrapConfigError(fmt.Sprintf("state %q (with INITIAL fallback)", state), err)
			}
			patterns[state] = fallbackMP
		}
	}
	if _, ok := patterns[InitialState]; !ok {
		mp, err := assembleMasterPattern(d.rules[InitialState], !d.nonVerbose)
		if err != nil {
			return nil, errs.WrapConfigError("state \"INITIAL\"", err)
		}
		patterns[InitialState] = mp
	}

	classes := map[string]map[string]types.TokenClass{}
	for state, cls := range d.classes {
		cp := map[string]types.TokenClass{}
		for k, v := range cls {
			cp[k] = v
		}
		classes[state] = cp
	}

	ignore := map[string]map[rune]bool{}
	for state, set := range d.ignore {
		cp := map[rune]bool{}
		for k, v := range set {
			cp[k] = v
		}
		ignore[state] = cp
	}

	inst := &Instance{
		def:       d,
		r:         NewRegexReader(input),
		patterns:  patterns,
		classes:   classes,
		ignore:    ignore,
		stateStk:  util.Stack[string]{Of: []string{InitialState}},
		eofHook:   d.eofHook,
		errorHook: d.errorHook,
		curLine:   1,
		curPos:    1,
	}
	return inst, nil
}

// Instance is a running lexer scan over a single input, implementing
// types.TokenStream plus the additional state-stack and positioning
// operations component B's spec calls for.
type Instance struct {
	def *Definition
	r   *regexReader

	patterns map[string]*masterPattern
	classes  map[string]map[string]types.TokenClass
	ignore   map[string]map[rune]bool

	stateStk util.Stack[string]

	curLine     int
	curPos      int
	curFullLine string
	offset      int

	done bool

	eofHook   EOFHook
	errorHook ErrorHook

	// trace, if set, receives a line of text for every token this instance
	// emits, the lexer half of the same bring-your-own-sink tracing
	// convention parse.Engine.Trace follows.
	trace func(string)
}

// SetTraceListener installs fn to receive one line of text per token this
// instance emits on subsequent Next calls. Passing nil disables tracing.
func (lx *Instance) SetTraceListener(fn func(string)) {
	lx.trace = fn
}

func (lx *Instance) tracef(format string, args ...any) {
	if lx.trace != nil {
		lx.trace(fmt.Sprintf(format, args...))
	}
}

// state returns the currently-active lexer state: the top of the stack.
func (lx *Instance) state() string {
	return lx.stateStk.Peek()
}

// PushState pushes name onto the state stack, making it active until a
// matching PopState (or Begin) changes it again.
func (lx *Instance) PushState(name string) {
	lx.stateStk.Push(name)
}

// PopState pops the top of the state stack. Popping the last remaining
// state is a no-op; INITIAL is always available as a floor.
func (lx *Instance) PopState() {
	if lx.stateStk.Len() > 1 {
		lx.stateStk.Pop()
	}
}

// Begin replaces the entire state stack with a single frame for name,
// equivalent to flex's BEGIN macro.
func (lx *Instance) Begin(name string) {
	lx.stateStk = util.Stack[string]{Of: []string{name}}
}

// Skip advances the cursor by n input units without producing a token,
// updating line/offset tracking as it goes.
func (lx *Instance) Skip(n int) error {
	for i := 0; i < n; i++ {
		ch, _, err := lx.r.ReadRune()
		if err != nil {
			return err
		}
		lx.advancePos(ch)
	}
	return nil
}

func (lx *Instance) advancePos(ch rune) {
	if ch == '\n' {
		lx.curLine++
		lx.curPos = 0
		lx.curFullLine = ""
	}
	lx.curPos++
	lx.curFullLine += string(ch)
	lx.offset++
}

// Next returns the next token in the stream and advances the stream by one
// token. At end of input (after the EOF hook, if any, declines to supply
// more), it returns a token whose Class() is types.TokenEndOfText.
func (lx *Instance) Next() types.Token {
	if lx.done {
		return lx.makeEOTToken()
	}

	for {
		lx.consumeIgnored()

		pat := lx.patterns[lx.state()]
		if pat == nil {
			pat = lx.patterns[InitialState]
		}

		matches, readErr := lx.r.SearchAndAdvance(pat.re)
		if readErr == io.EOF {
			if lx.eofHook != nil {
				more, hasMore := lx.eofHook()
				if hasMore {
					lx.r.AppendBytes([]byte(more))
					continue
				}
			}
			lx.done = true
			return lx.makeEOTToken()
		} else if readErr != nil {
			lx.done = true
			return lx.makeErrorTokenf("I/O error: %s", readErr.Error())
		}

		if len(matches) == 0 {
			ch, _, err := lx.r.ReadRune()
			if err == io.EOF {
				if lx.eofHook != nil {
					more, hasMore := lx.eofHook()
					if hasMore {
						lx.r.AppendBytes([]byte(more))
						continue
					}
				}
				lx.done = true
				return lx.makeEOTToken()
			} else if err != nil {
				lx.done = true
				return lx.makeErrorTokenf("I/O error: %s", err.Error())
			}

			lx.advancePos(ch)
			skip := 1
			if lx.errorHook != nil {
				skip = lx.errorHook(ch)
			}
			if skip > 1 {
				lx.Skip(skip - 1)
			}
			continue
		}

		if matches[0] == "" {
			// a zero-length overall match means the active state has no
			// usable rules at this position (e.g. a state with no rules at
			// all compiles to a pattern that matches the empty string);
			// treat it exactly like a no-match so the error hook fires and
			// the cursor still advances.
			ch, _, err := lx.r.ReadRune()
			if err != nil {
				lx.done = true
				return lx.makeEOTToken()
			}
			lx.advancePos(ch)
			skip := 1
			if lx.errorHook != nil {
				skip = lx.errorHook(ch)
			}
			if skip > 1 {
				lx.Skip(skip - 1)
			}
			continue
		}

		actionIdx, lexeme := selectMatch(matches, pat.groupRule)
		if actionIdx < 0 {
			// every filled group belonged to a pattern's internal capture;
			// cannot happen for a well-formed master pattern, but guard
			// rather than index actions with -1.
			lx.done = true
			return lx.makeErrorTokenf("internal: match selected no rule")
		}
		for _, ch := range lexeme {
			lx.advancePos(ch)
		}

		action := pat.actions[actionIdx]

		switch action.Type {
		case ActionNone:
			continue
		case ActionScan:
			return lx.emit(lx.classFor(action.ClassID), lexeme)
		case ActionState:
			lx.tracef("state %s -> %s", lx.state(), action.State)
			lx.stateStk.Of[lx.stateStk.Len()-1] = action.State
			continue
		case ActionScanAndState:
			tok := lx.emit(lx.classFor(action.ClassID), lexeme)
			lx.tracef("state %s -> %s", lx.state(), action.State)
			lx.stateStk.Of[lx.stateStk.Len()-1] = action.State
			return tok
		case ActionPushState:
			lx.tracef("push state %s", action.State)
			lx.PushState(action.State)
			continue
		case ActionScanAndPushState:
			tok := lx.emit(lx.classFor(action.ClassID), lexeme)
			lx.tracef("push state %s", action.State)
			lx.PushState(action.State)
			return tok
		case ActionPopState:
			lx.tracef("pop state %s", lx.state())
			lx.PopState()
			continue
		case ActionScanAndPopState:
			tok := lx.emit(lx.classFor(action.ClassID), lexeme)
			lx.tracef("pop state %s", lx.state())
			lx.PopState()
			return tok
		}
	}
}

// classFor resolves a token class ID against the active state's declared
// classes, falling back to INITIAL's for a rule an inclusive state inherited.
func (lx *Instance) classFor(classID string) types.TokenClass {
	if cls, ok := lx.classes[lx.state()][classID]; ok {
		return cls
	}
	return lx.classes[InitialState][classID]
}

// consumeIgnored discards a run of fast-path ignored characters for the
// current state, without attempting a pattern match.
func (lx *Instance) consumeIgnored() {
	ignoreSet := lx.ignore[lx.state()]
	if len(ignoreSet) == 0 {
		return
	}
	for {
		lx.r.Mark("ignore-peek")
		ch, _, err := lx.r.ReadRune()
		if err != nil || !ignoreSet[ch] {
			lx.r.Restore("ignore-peek")
			return
		}
		lx.advancePos(ch)
	}
}

// Peek returns the next token in the stream without advancing the stream.
func (lx *Instance) Peek() types.Token {
	lx.r.Mark("peek")
	savedStack := lx.stateStk.Copy()
	savedFullLine, savedLine, savedPos, savedOffset := lx.curFullLine, lx.curLine, lx.curPos, lx.offset
	savedDone := lx.done

	tok := lx.Next()

	lx.r.Restore("peek")
	lx.stateStk = savedStack
	lx.curFullLine, lx.curLine, lx.curPos, lx.offset = savedFullLine, savedLine, savedPos, savedOffset
	lx.done = savedDone

	return tok
}

// HasNext returns whether the stream has any additional tokens: it is false
// once end of input has been reached, or when the next token would be the
// end-of-text token.
func (lx *Instance) HasNext() bool {
	if lx.done {
		return false
	}
	return !types.TokenEndOfText.Equal(lx.Peek().Class())
}

// Clone returns a new Instance sharing this one's compiled patterns and
// definition but with independent cursor, state stack, and line counters.
// It does not share buffered input with the original.
func (lx *Instance) Clone(input io.Reader) (*Instance, error) {
	return &Instance{
		def:       lx.def,
		r:         NewRegexReader(input),
		patterns:  lx.patterns,
		classes:   lx.classes,
		ignore:    lx.ignore,
		stateStk:  util.Stack[string]{Of: []string{InitialState}},
		eofHook:   lx.eofHook,
		errorHook: lx.errorHook,
		curLine:   1,
		curPos:    1,
	}, nil
}

// emit builds a token via makeToken and, if a trace listener is installed,
// reports it before returning.
func (lx *Instance) emit(class types.TokenClass, lexeme string) types.Token {
	tok := lx.makeToken(class, lexeme)
	lx.tracef("scan %s %q", class, lexeme)
	return tok
}

func (lx *Instance) makeToken(class types.TokenClass, lexeme string) types.Token {
	return lexerToken{
		class:   class,
		line:    lx.curFullLine,
		linePos: lx.curPos,
		lineNum: lx.curLine,
		lexed:   lexeme,
		offset:  lx.offset - utf8.RuneCountInString(lexeme),
	}
}

func (lx *Instance) makeEOTToken() types.Token {
	return lx.makeToken(types.TokenEndOfText, "")
}

func (lx *Instance) makeErrorTokenf(formatMsg string, args ...any) types.Token {
	msg := fmt.Sprintf(formatMsg, args...)
	return lx.makeToken(types.TokenError, msg)
}

// selectMatch picks the winning rule among the sub-matches of a
// master-pattern match: the longest rule-level capture wins, and ties are
// broken by preferring the rule ordered earliest (lowest index), matching
// classical lex/flex disambiguation. Capture groups belonging to a rule's
// own pattern internals (groupRule entry of -1) are skipped.
func selectMatch(candidates []string, groupRule []int) (int, string) {
	matchIndex := -1
	matchText := ""
	longest := -1

	for g := 1; g < len(candidates); g++ {
		rule := groupRule[g-1]
		if rule < 0 || candidates[g] == "" {
			continue
		}
		if rc := utf8.RuneCountInString(candidates[g]); rc > longest {
			longest = rc
			matchIndex = rule
			matchText = candidates[g]
		}
	}

	return matchIndex, matchText
}
