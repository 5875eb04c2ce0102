// Package parse implements components E and F of lrtk: the LALR(1)
// ACTION/GOTO table builder (with the precedence/associativity conflict
// lattice and defaulted-state detection of spec §4.E) and the table-driven
// shift-reduce parse engine with yacc-style error recovery (spec §4.F).
//
// Grounded on tunaq/internal/ictiobus/parse: action.go adapts lraction.go's
// LRAction/LRActionType, table.go generalizes lalr.go's lalr1Table.Action
// (which panics on any disagreement between items) into the full
// level/associativity comparison spec §4.E.4 describes, using the same
// "collect diagnostics and keep going" shape slr.go's allowAmbig path
// established.
package parse

import (
	"fmt"
	"sort"

	"github.com/dekarrin/lrtk/internal/automaton"
	"github.com/dekarrin/lrtk/internal/errs"
	"github.com/dekarrin/lrtk/internal/grammar"
	"github.com/dekarrin/lrtk/internal/types"
	"github.com/dekarrin/lrtk/internal/util"
)

// EndOfInput is the reserved terminal ID the table and engine use to mean
// end-of-input, matching types.TokenEndOfText.ID() (spec §3: "$end is
// reserved to mark end-of-input").
const EndOfInput = "$end"

// ErrorSymbol is the reserved terminal ID for the synthetic error token used
// in error-recovery productions (spec §3: "the special kind error is
// reserved for the parser").
const ErrorSymbol = "error"

// endOfInputLookahead is the sentinel lookahead automaton.NewLALR1ViablePrefixDFA
// uses internally for $end; it is rewritten to EndOfInput at the table/engine
// boundary so callers never see the internal convention.
const endOfInputLookahead = "$"

// Table is a frozen LALR(1) ACTION/GOTO table plus the diagnostics produced
// resolving its conflicts. Once built it is read-only; per spec §5, multiple
// parse engines may share one Table concurrently.
type Table struct {
	g         grammar.Grammar
	dfa       automaton.DFA[util.SVSet[grammar.LR1Item]]
	num       *Numbering
	action    map[string]map[string]LRAction
	goTo      map[string]map[string]string
	defaulted map[string]LRAction
	conflicts []errs.GrammarConflict
}

// NewLALR1Table builds the canonical LALR(1) ACTION/GOTO tables for g,
// resolving shift/reduce and reduce/reduce conflicts per spec §4.E.4 and
// detecting defaulted-reduction states per §4.E.5. num must have been built
// by assigning every production of g a number in declaration order (see
// Numbering); the table and any parse engine built from it must share the
// same Numbering so that ACTION entries' ProdNum values mean the same thing
// on both sides.
//
// Grammar invariants are checked first (spec §3 invariants 1-2); a violation
// is a *errs.ConfigError and no table is built. Conflicts are always
// resolvable (NONASSOC installs an ERROR entry rather than failing), so a
// non-nil error here always means a malformed grammar, never an ambiguous
// one.
func NewLALR1Table(g grammar.Grammar, num *Numbering) (*Table, error) {
	if err := g.Validate(); err != nil {
		return nil, errs.WrapConfigError("invalid grammar", err)
	}
	if cycles := g.InfiniteCycles(); len(cycles) > 0 {
		return nil, errs.NewConfigError(fmt.Sprintf("non-terminals have no finite derivation: %v", cycles))
	}

	dfa, err := automaton.NewLALR1ViablePrefixDFA(g)
	if err != nil {
		return nil, errs.WrapConfigError("grammar is not LALR(1)", err)
	}

	t := &Table{
		g:         g,
		dfa:       dfa,
		num:       num,
		action:    map[string]map[string]LRAction{},
		goTo:      map[string]map[string]string{},
		defaulted: map[string]LRAction{},
	}

	realNonTerms := util.NewStringSet()
	for _, nt := range g.NonTerminals() {
		realNonTerms.Add(nt)
	}
	startSym := g.StartSymbol()

	candidates := map[string]map[string][]LRAction{}

	for _, state := range t.dfa.States().Elements() {
		items := t.dfa.GetValue(state)
		for _, itemStr := range items.Elements() {
			item := items.Get(itemStr)
			sym, hasDotSymbol := item.DotSymbol()

			if !hasDotSymbol && !realNonTerms.Has(item.NonTerminal) {
				// synthetic augmented-start item, S' -> start .
				if len(item.Left) == 1 && item.Left[0] == startSym && item.Lookahead == endOfInputLookahead {
					t.addCandidate(candidates, state, EndOfInput, LRAction{Type: LRAccept})
				}
				continue
			}

			if !hasDotSymbol {
				full := append(append([]string{}, item.Left...), item.Right...)
				prod := grammar.Production(full)
				if len(full) == 0 {
					prod = grammar.Epsilon
				}
				altIdx := altIndexOf(g, item.NonTerminal, prod)
				num := t.num.Of(item.NonTerminal, altIdx)
				term := item.Lookahead
				if term == endOfInputLookahead {
					term = EndOfInput
				}
				t.addCandidate(candidates, state, term, LRAction{
					Type:       LRReduce,
					Production: prod,
					Symbol:     item.NonTerminal,
					ProdNum:    num,
				})
				continue
			}

			if g.IsTerminal(sym) {
				target := t.dfa.Next(state, sym)
				if target != "" {
					t.addCandidate(candidates, state, sym, LRAction{Type: LRShift, State: target})
				}
			} else if g.IsNonTerminal(sym) {
				target := t.dfa.Next(state, sym)
				if target != "" {
					stateGoto, ok := t.goTo[state]
					if !ok {
						stateGoto = map[string]string{}
						t.goTo[state] = stateGoto
					}
					stateGoto[sym] = target
				}
			}
		}
	}

	terms := append([]string{}, g.Terminals()...)
	terms = append(terms, EndOfInput)

	for state, byTerm := range candidates {
		row := map[string]LRAction{}
		for _, term := range terms {
			cands, ok := byTerm[term]
			if !ok || len(cands) == 0 {
				continue
			}
			resolved, conflict := t.resolveConflict(state, term, cands)
			if conflict != nil {
				t.conflicts = append(t.conflicts, *conflict)
			}
			row[term] = resolved
		}
		t.action[state] = row
	}

	t.detectDefaultedStates(terms)

	sort.Slice(t.conflicts, func(i, j int) bool {
		if t.conflicts[i].State != t.conflicts[j].State {
			return t.conflicts[i].State < t.conflicts[j].State
		}
		return t.conflicts[i].Symbol < t.conflicts[j].Symbol
	})

	return t, nil
}

func (t *Table) addCandidate(candidates map[string]map[string][]LRAction, state, term string, act LRAction) {
	byTerm, ok := candidates[state]
	if !ok {
		byTerm = map[string][]LRAction{}
		candidates[state] = byTerm
	}
	byTerm[term] = append(byTerm[term], act)
}

// altIndexOf finds the index of prod within nt's declared alternatives. It
// returns -1 if no match is found, which should not happen for any item
// produced by the automaton package (every reduce item's production came
// from the grammar itself).
func altIndexOf(g grammar.Grammar, nt string, prod grammar.Production) int {
	r := g.Rule(nt)
	for i, p := range r.Productions {
		if p.Equal(prod) {
			return i
		}
	}
	return -1
}

// resolveConflict picks a single winner from the candidate actions reported
// for (state, term) and, if there was more than one, a diagnostic explaining
// how, per spec §4.E.4.
func (t *Table) resolveConflict(state, term string, candidates []LRAction) (LRAction, *errs.GrammarConflict) {
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	var shift *LRAction
	var reduces []LRAction
	for i := range candidates {
		c := candidates[i]
		switch c.Type {
		case LRShift:
			sc := c
			shift = &sc
		case LRReduce:
			reduces = append(reduces, c)
		}
	}

	var conflict *errs.GrammarConflict

	if len(reduces) > 1 {
		sort.Slice(reduces, func(i, j int) bool { return reduces[i].ProdNum < reduces[j].ProdNum })
		winner := reduces[0]
		conflict = &errs.GrammarConflict{
			State:    state,
			Symbol:   term,
			Resolved: true,
			Description: fmt.Sprintf(
				"reduce/reduce conflict on %q between production %d (%s -> %s) and production %d (%s -> %s); keeping the lower-numbered production %d",
				term, reduces[0].ProdNum, reduces[0].Symbol, reduces[0].Production, reduces[1].ProdNum, reduces[1].Symbol, reduces[1].Production, winner.ProdNum,
			),
		}
		reduces = []LRAction{winner}
	}

	if shift == nil {
		if len(reduces) > 0 {
			return reduces[0], conflict
		}
		return candidates[0], conflict
	}
	if len(reduces) == 0 {
		return *shift, conflict
	}

	reduce := reduces[0]
	sPrec, sOk := t.g.PrecedenceOf(term)
	altIdx := altIndexOf(t.g, reduce.Symbol, reduce.Production)
	pPrec, pOk := t.g.ProductionPrecedence(reduce.Symbol, altIdx)

	reduceDesc := fmt.Sprintf("reduce %s -> %s", reduce.Symbol, reduce.Production)

	switch {
	case !sOk && !pOk:
		conflict = mergeSRConflict(conflict, state, term, fmt.Sprintf(
			"shift/reduce conflict on %q (neither side has a declared precedence; defaulting to shift over %s)", term, reduceDesc))
		return *shift, conflict
	case sOk && !pOk:
		conflict = mergeSRConflict(conflict, state, term, fmt.Sprintf(
			"shift/reduce conflict on %q resolved in favor of shift: only the shift side has a declared precedence over %s", term, reduceDesc))
		return *shift, conflict
	case !sOk && pOk:
		conflict = mergeSRConflict(conflict, state, term, fmt.Sprintf(
			"shift/reduce conflict on %q resolved in favor of %s: only the reduce side has a declared precedence", term, reduceDesc))
		return reduce, conflict
	}

	if pPrec.Level > sPrec.Level {
		conflict = mergeSRConflict(conflict, state, term, fmt.Sprintf(
			"shift/reduce conflict on %q resolved in favor of %s: higher precedence level", term, reduceDesc))
		return reduce, conflict
	}
	if sPrec.Level > pPrec.Level {
		conflict = mergeSRConflict(conflict, state, term, fmt.Sprintf(
			"shift/reduce conflict on %q resolved in favor of shift: higher precedence level", term))
		return *shift, conflict
	}

	switch sPrec.Assoc {
	case grammar.AssocLeft:
		conflict = mergeSRConflict(conflict, state, term, fmt.Sprintf(
			"shift/reduce conflict on %q resolved in favor of %s: left-associative at matching precedence", term, reduceDesc))
		return reduce, conflict
	case grammar.AssocRight:
		conflict = mergeSRConflict(conflict, state, term, fmt.Sprintf(
			"shift/reduce conflict on %q resolved in favor of shift: right-associative at matching precedence", term))
		return *shift, conflict
	default:
		conflict = mergeSRConflict(conflict, state, term, fmt.Sprintf(
			"shift/reduce conflict on %q forbidden: %%nonassoc at matching precedence installs an error entry", term))
		return LRAction{Type: LRError}, conflict
	}
}

// mergeSRConflict folds a shift/reduce description into an existing
// reduce/reduce diagnostic for the same cell (rare, but possible when three
// or more actions collide on one (state, terminal)), or starts a fresh one.
func mergeSRConflict(existing *errs.GrammarConflict, state, term, desc string) *errs.GrammarConflict {
	if existing == nil {
		return &errs.GrammarConflict{State: state, Symbol: term, Description: desc, Resolved: true}
	}
	merged := *existing
	merged.Description = merged.Description + "; " + desc
	return &merged
}

// detectDefaultedStates implements spec §4.E.5: a state whose only REDUCE
// action is for the same production p across every terminal that has one,
// and which has no SHIFT action at all, reduces by p unconditionally
// without consulting the lookahead. A state holding an explicitly-installed
// error entry (a NONASSOC resolution) is never defaulted: reducing without
// the lookahead would bypass the error the grammar asked for.
func (t *Table) detectDefaultedStates(terms []string) {
	for state, row := range t.action {
		var onlyReduce *LRAction
		defaultable := true

		for _, term := range terms {
			act, ok := row[term]
			if !ok {
				continue
			}
			if act.Type != LRReduce {
				defaultable = false
				break
			}
			if onlyReduce == nil {
				a := act
				onlyReduce = &a
			} else if onlyReduce.ProdNum != act.ProdNum {
				defaultable = false
				break
			}
		}

		if defaultable && onlyReduce != nil {
			t.defaulted[state] = *onlyReduce
		}
	}
}

// Initial returns the state the engine starts in.
func (t *Table) Initial() string {
	return t.dfa.Start
}

// Defaulted returns the unconditional reduce action for state, and whether
// state is a defaulted-reduction state.
func (t *Table) Defaulted(state string) (LRAction, bool) {
	act, ok := t.defaulted[state]
	return act, ok
}

// Action returns ACTION[state, term]. A missing entry is reported as the
// zero-value LRAction, whose Type is LRError.
func (t *Table) Action(state, term string) LRAction {
	row, ok := t.action[state]
	if !ok {
		return LRAction{Type: LRError}
	}
	act, ok := row[term]
	if !ok {
		return LRAction{Type: LRError}
	}
	return act
}

// Goto returns GOTO[state, nonTerminal].
func (t *Table) Goto(state, nonTerminal string) (string, bool) {
	row, ok := t.goTo[state]
	if !ok {
		return "", false
	}
	s, ok := row[nonTerminal]
	return s, ok
}

// Conflicts returns every shift/reduce or reduce/reduce diagnostic produced
// while building the table, sorted by state then symbol.
func (t *Table) Conflicts() []errs.GrammarConflict {
	out := make([]errs.GrammarConflict, len(t.conflicts))
	copy(out, t.conflicts)
	return out
}

// States returns every reachable automaton state name.
func (t *Table) States() []string {
	return t.dfa.States().Elements()
}

// Grammar returns the grammar this table was built from.
func (t *Table) Grammar() grammar.Grammar {
	return t.g
}

// Type returns the parsing algorithm this table drives.
func (t *Table) Type() types.ParserType {
	return types.ParserLALR1
}

// ExpectedTerminals returns the terminals (including EndOfInput) that have a
// non-error ACTION entry in state, sorted alphabetically. An engine facing a
// syntax error in state uses this to report what would have been accepted.
func (t *Table) ExpectedTerminals(state string) []string {
	row, ok := t.action[state]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(row))
	for term, act := range row {
		if act.Type != LRError {
			out = append(out, term)
		}
	}
	sort.Strings(out)
	return out
}
