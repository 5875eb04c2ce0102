// Package grammar implements the context-free grammar data model used by
// lrtk: rule storage, precedence/associativity declarations, FIRST/FOLLOW
// computation, the validation diagnostics spec §4.C lists, and the
// LR(0)/LR(1) item-set machinery the automaton package builds DFAs from.
package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/lrtk/internal/types"
	"github.com/dekarrin/lrtk/internal/util"
)

// Production is the right-hand side of a rule: an ordered sequence of
// grammar symbols (terminals are lower-case, non-terminals are upper-case,
// matching the convention used throughout this package).
type Production []string

// Epsilon is the production consisting of a single empty symbol, used to
// represent a rule that derives the empty string.
var Epsilon = Production{""}

func (p Production) String() string {
	if len(p) == 0 || (len(p) == 1 && p[0] == "") {
		return "ε"
	}
	return strings.Join(p, " ")
}

func (p Production) Equal(o any) bool {
	other, ok := o.(Production)
	if !ok {
		otherPtr, ok := o.(*Production)
		if !ok {
			return false
		}
		if otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

func (p Production) Copy() Production {
	newP := make(Production, len(p))
	copy(newP, p)
	return newP
}

// HasSymbol returns whether sym appears anywhere in the production.
func (p Production) HasSymbol(sym string) bool {
	for _, s := range p {
		if s == sym {
			return true
		}
	}
	return false
}

// Associativity gives the direction conflicting operators of equal
// precedence level resolve in.
type Associativity int

const (
	AssocNone Associativity = iota
	AssocLeft
	AssocRight
	AssocNonAssoc
)

func (a Associativity) String() string {
	switch a {
	case AssocLeft:
		return "left"
	case AssocRight:
		return "right"
	case AssocNonAssoc:
		return "nonassoc"
	default:
		return "none"
	}
}

// Precedence is a declared precedence level and associativity for a terminal
// or for a production via a %prec override.
type Precedence struct {
	Level int
	Assoc Associativity
}

// Rule is a non-terminal and every alternative production for it.
type Rule struct {
	NonTerminal string
	Productions []Production
}

func (r Rule) String() string {
	var sb strings.Builder
	sb.WriteString(r.NonTerminal)
	sb.WriteString(" -> ")
	for i, p := range r.Productions {
		sb.WriteString(p.String())
		if i+1 < len(r.Productions) {
			sb.WriteString(" | ")
		}
	}
	return sb.String()
}

// Grammar is a context-free grammar: a set of terminals backed by
// types.TokenClass definitions, a set of rules over those terminals plus
// non-terminal symbols, and an optional precedence table for resolving
// shift/reduce and reduce/reduce ambiguities. The zero value is an empty
// grammar ready to have terms and rules added to it.
type Grammar struct {
	rules       map[string]Rule
	ruleOrder   []string
	terminals   map[string]types.TokenClass
	termOrder   []string
	start       string
	precedence  map[string]Precedence
	ruleAltPrec map[string][]string // NonTerminal -> per-production %prec override symbol, parallel to Productions
}

func (g *Grammar) ensureInit() {
	if g.rules == nil {
		g.rules = map[string]Rule{}
	}
	if g.terminals == nil {
		g.terminals = map[string]types.TokenClass{}
	}
	if g.precedence == nil {
		g.precedence = map[string]Precedence{}
	}
	if g.ruleAltPrec == nil {
		g.ruleAltPrec = map[string][]string{}
	}
}

// AddTerm registers a terminal with the given ID under class cls. The ID is
// the grammar symbol used in productions; once registered here, IsTerminal
// reports it as a terminal.
func (g *Grammar) AddTerm(id string, cls types.TokenClass) {
	g.ensureInit()
	if _, ok := g.terminals[id]; !ok {
		g.termOrder = append(g.termOrder, id)
	}
	g.terminals[id] = cls
}

// AddRule adds one production alternative to the rule for nonTerminal,
// creating the rule if this is its first alternative. The first rule ever
// added to a Grammar becomes its start symbol.
func (g *Grammar) AddRule(nonTerminal string, alt Production) {
	g.AddRuleWithPrec(nonTerminal, alt, "")
}

// AddRuleWithPrec is AddRule but additionally records a %prec override
// symbol for the alternative, used to resolve shift/reduce conflicts
// involving this production instead of its rightmost terminal's precedence.
func (g *Grammar) AddRuleWithPrec(nonTerminal string, alt Production, precOverride string) {
	g.ensureInit()
	r, ok := g.rules[nonTerminal]
	if !ok {
		r = Rule{NonTerminal: nonTerminal}
		g.ruleOrder = append(g.ruleOrder, nonTerminal)
		if g.start == "" {
			g.start = nonTerminal
		}
	}
	r.Productions = append(r.Productions, alt)
	g.rules[nonTerminal] = r
	g.ruleAltPrec[nonTerminal] = append(g.ruleAltPrec[nonTerminal], precOverride)
	return
}

// Rule returns the Rule registered for nonTerminal, or a zero-value Rule if
// none exists.
func (g Grammar) Rule(nonTerminal string) Rule {
	return g.rules[nonTerminal]
}

// HasRule returns whether a rule exists for the given non-terminal.
func (g Grammar) HasRule(nonTerminal string) bool {
	_, ok := g.rules[nonTerminal]
	return ok
}

// StartSymbol returns the grammar's start non-terminal: the non-terminal of
// the first rule added to the grammar.
func (g Grammar) StartSymbol() string {
	return g.start
}

// SetStartSymbol explicitly overrides the start symbol, for grammars built
// up in a way where the first-added rule isn't the intended start (e.g.
// deserialized from a rule set where order is not semantically the
// declaration order).
func (g *Grammar) SetStartSymbol(nonTerminal string) {
	g.start = nonTerminal
}

// Term returns the TokenClass registered for the given terminal ID.
func (g Grammar) Term(id string) types.TokenClass {
	return g.terminals[id]
}

// TermFor returns the grammar symbol (terminal ID) corresponding to cls, by
// matching cls.ID() against the registered terminal IDs.
func (g Grammar) TermFor(cls types.TokenClass) string {
	for _, id := range g.termOrder {
		if g.terminals[id].Equal(cls) {
			return id
		}
	}
	return strings.ToLower(cls.ID())
}

// IsTerminal returns whether sym is a registered terminal of the grammar.
// Following yacc/lex convention, only explicitly-registered terminals count;
// a bare lower-case string that was never added with AddTerm is not
// considered a terminal even though it matches the lexical convention.
func (g Grammar) IsTerminal(sym string) bool {
	_, ok := g.terminals[sym]
	return ok
}

// IsNonTerminal returns whether sym has a rule defined for it.
func (g Grammar) IsNonTerminal(sym string) bool {
	_, ok := g.rules[sym]
	return ok
}

// Terminals returns all registered terminal symbols, in declaration order.
func (g Grammar) Terminals() []string {
	out := make([]string, len(g.termOrder))
	copy(out, g.termOrder)
	return out
}

// NonTerminals returns all non-terminal symbols that have rules, in
// declaration order.
func (g Grammar) NonTerminals() []string {
	out := make([]string, len(g.ruleOrder))
	copy(out, g.ruleOrder)
	return out
}

// Copy returns a deep copy of the grammar.
func (g Grammar) Copy() Grammar {
	newG := Grammar{
		start: g.start,
	}
	newG.ensureInit()

	for _, nt := range g.ruleOrder {
		r := g.rules[nt]
		newR := Rule{NonTerminal: nt, Productions: make([]Production, len(r.Productions))}
		for i, p := range r.Productions {
			newR.Productions[i] = p.Copy()
		}
		newG.rules[nt] = newR
		newG.ruleOrder = append(newG.ruleOrder, nt)
		precs := make([]string, len(g.ruleAltPrec[nt]))
		copy(precs, g.ruleAltPrec[nt])
		newG.ruleAltPrec[nt] = precs
	}
	for _, id := range g.termOrder {
		newG.terminals[id] = g.terminals[id]
		newG.termOrder = append(newG.termOrder, id)
	}
	for k, v := range g.precedence {
		newG.precedence[k] = v
	}

	return newG
}

// SetPrecedence declares the precedence level and associativity of terminal
// term. Later declarations of the same terminal overwrite earlier ones.
// Levels increase with binding strength, matching yacc's %left/%right
// declaration-order convention.
func (g *Grammar) SetPrecedence(term string, level int, assoc Associativity) {
	g.ensureInit()
	g.precedence[term] = Precedence{Level: level, Assoc: assoc}
}

// PrecedenceOf returns the declared precedence of terminal term, and whether
// one was declared.
func (g Grammar) PrecedenceOf(term string) (Precedence, bool) {
	p, ok := g.precedence[term]
	return p, ok
}

// ProductionPrecedence returns the effective precedence of the given
// production of nonTerminal: its %prec override symbol if one was declared
// for that alternative, else the precedence of the rightmost terminal in the
// production, else ok=false if neither applies.
func (g Grammar) ProductionPrecedence(nonTerminal string, altIndex int) (Precedence, bool) {
	overrides := g.ruleAltPrec[nonTerminal]
	if altIndex < len(overrides) && overrides[altIndex] != "" {
		return g.PrecedenceOf(overrides[altIndex])
	}

	r := g.rules[nonTerminal]
	if altIndex >= len(r.Productions) {
		return Precedence{}, false
	}
	prod := r.Productions[altIndex]
	for i := len(prod) - 1; i >= 0; i-- {
		if g.IsTerminal(prod[i]) {
			return g.PrecedenceOf(prod[i])
		}
	}
	return Precedence{}, false
}

// GenerateUniqueTerminal returns a terminal symbol derived from base that is
// not already in use as a terminal or non-terminal name in the grammar, by
// appending "'" until it is unique.
func (g Grammar) GenerateUniqueTerminal(base string) string {
	candidate := base
	for g.IsTerminal(candidate) || g.IsNonTerminal(candidate) {
		candidate += "'"
	}
	return candidate
}

// Augmented returns a copy of the grammar with a new start production
// S' -> S added, where S is the original start symbol and S' is a freshly
// generated non-terminal. This is the standard first step of every LR
// table-construction algorithm (purple dragon book, section 4.7).
func (g Grammar) Augmented() Grammar {
	newStart := g.generateUniqueNonTerminal(g.start + "-P")

	aug := g.Copy()
	aug.rules[newStart] = Rule{NonTerminal: newStart, Productions: []Production{{g.start}}}
	aug.ruleOrder = append([]string{newStart}, aug.ruleOrder...)
	aug.ruleAltPrec[newStart] = []string{""}
	aug.start = newStart

	return aug
}

func (g Grammar) generateUniqueNonTerminal(base string) string {
	candidate := base
	for g.IsTerminal(candidate) || g.IsNonTerminal(candidate) {
		candidate += "'"
	}
	return candidate
}

// Validate checks that the grammar is well-formed: it must have a start
// symbol, at least one rule, at least one terminal, and every symbol
// referenced in a production must be either a declared terminal or a
// non-terminal with its own rule.
func (g Grammar) Validate() error {
	if g.start == "" {
		return fmt.Errorf("grammar has no start symbol; add at least one rule")
	}
	if len(g.ruleOrder) == 0 {
		return fmt.Errorf("grammar has no rules")
	}
	if len(g.termOrder) == 0 {
		return fmt.Errorf("grammar has no terminals")
	}

	if undef := g.UndefinedSymbols(); len(undef) > 0 {
		return fmt.Errorf("grammar references undefined symbols: %s", strings.Join(undef, ", "))
	}

	return nil
}

// UndefinedSymbols returns every symbol that appears in some production but
// is neither a declared terminal nor a non-terminal with its own rule.
func (g Grammar) UndefinedSymbols() []string {
	seen := util.NewStringSet()
	var undef []string
	for _, nt := range g.ruleOrder {
		for _, prod := range g.rules[nt].Productions {
			for _, sym := range prod {
				if sym == "" || sym == "$" {
					continue
				}
				if g.IsTerminal(sym) || g.IsNonTerminal(sym) {
					continue
				}
				if !seen.Has(sym) {
					seen.Add(sym)
					undef = append(undef, sym)
				}
			}
		}
	}
	sort.Strings(undef)
	return undef
}

// UnusedTerminals returns every declared terminal that does not appear in
// the right-hand side of any production.
func (g Grammar) UnusedTerminals() []string {
	used := util.NewStringSet()
	for _, nt := range g.ruleOrder {
		for _, prod := range g.rules[nt].Productions {
			for _, sym := range prod {
				used.Add(sym)
			}
		}
	}

	var unused []string
	for _, id := range g.termOrder {
		if !used.Has(id) {
			unused = append(unused, id)
		}
	}
	return unused
}

// UnusedPrecedence returns every terminal with a declared precedence that
// never appears in a position where it would actually be consulted to break
// a conflict -- i.e. it is unused entirely, per UnusedTerminals.
func (g Grammar) UnusedPrecedence() []string {
	unused := util.StringSetOf(g.UnusedTerminals())
	var result []string
	for term := range g.precedence {
		if unused.Has(term) {
			result = append(result, term)
		}
	}
	sort.Strings(result)
	return result
}

// Unreachable returns every non-terminal that cannot be reached from the
// start symbol by any derivation.
func (g Grammar) Unreachable() []string {
	reachable := util.NewStringSet()
	var visit func(nt string)
	visit = func(nt string) {
		if reachable.Has(nt) {
			return
		}
		reachable.Add(nt)
		for _, prod := range g.rules[nt].Productions {
			for _, sym := range prod {
				if g.IsNonTerminal(sym) {
					visit(sym)
				}
			}
		}
	}
	if g.start != "" {
		visit(g.start)
	}

	var unreached []string
	for _, nt := range g.ruleOrder {
		if !reachable.Has(nt) {
			unreached = append(unreached, nt)
		}
	}
	return unreached
}

// InfiniteCycles returns every non-terminal that only ever derives through
// itself (directly or via a chain of unit productions) with no terminating
// alternative, meaning no finite string can ever be derived from it.
func (g Grammar) InfiniteCycles() []string {
	// A non-terminal "terminates" if it has some production consisting
	// entirely of terminals and/or already-terminating non-terminals.
	// Iterate to a fixed point, same shape as the standard "generating
	// symbols" dragon-book algorithm.
	terminates := util.NewStringSet()

	changed := true
	for changed {
		changed = false
		for _, nt := range g.ruleOrder {
			if terminates.Has(nt) {
				continue
			}
			for _, prod := range g.rules[nt].Productions {
				ok := true
				for _, sym := range prod {
					if sym == "" {
						continue
					}
					if g.IsTerminal(sym) {
						continue
					}
					if g.IsNonTerminal(sym) && terminates.Has(sym) {
						continue
					}
					ok = false
					break
				}
				if ok {
					terminates.Add(nt)
					changed = true
					break
				}
			}
		}
	}

	var cycles []string
	for _, nt := range g.ruleOrder {
		if !terminates.Has(nt) {
			cycles = append(cycles, nt)
		}
	}
	return cycles
}

// FIRST computes FIRST(sym): the set of terminals (plus possibly ε) that can
// begin some string derived from sym.
//
// This is an implementation of the FIRST-set algorithm from section 4.4.2 of
// the purple dragon book.
func (g Grammar) FIRST(sym string) util.ISet[string] {
	memo := map[string]util.ISet[string]{}
	return g.first(sym, memo, util.NewStringSet())
}

func (g Grammar) first(sym string, memo map[string]util.ISet[string], inProgress util.StringSet) util.ISet[string] {
	if cached, ok := memo[sym]; ok {
		return cached
	}

	set := util.NewStringSet()

	if sym == "" || sym == Epsilon[0] {
		set.Add(Epsilon[0])
		return set
	}

	if g.IsTerminal(sym) {
		set.Add(sym)
		return set
	}

	if !g.IsNonTerminal(sym) {
		// unknown symbol; treat as if it were its own terminal so callers
		// still get a deterministic (if degenerate) answer.
		set.Add(sym)
		return set
	}

	if inProgress.Has(sym) {
		// left-recursive cycle; contributes nothing further on this pass.
		return set
	}
	inProgress.Add(sym)
	memo[sym] = set

	for _, prod := range g.rules[sym].Productions {
		allNullable := true
		for _, s := range prod {
			if s == Epsilon[0] {
				continue
			}
			sFirst := g.first(s, memo, inProgress)
			for _, t := range sFirst.Elements() {
				if t != Epsilon[0] {
					set.Add(t)
				}
			}
			if !sFirst.Has(Epsilon[0]) {
				allNullable = false
				break
			}
		}
		if allNullable {
			set.Add(Epsilon[0])
		}
	}

	return set
}

// firstOfSequence computes FIRST of a sequence of symbols (used for FOLLOW
// and LR1_CLOSURE lookaheads): the union of FIRST of each prefix symbol
// until one is found that can't derive ε, plus ε itself if every symbol in
// the sequence can derive ε.
func (g Grammar) firstOfSequence(seq []string) util.ISet[string] {
	set := util.NewStringSet()
	allNullable := true
	for _, s := range seq {
		if s == Epsilon[0] {
			continue
		}
		sFirst := g.FIRST(s)
		for _, t := range sFirst.Elements() {
			if t != Epsilon[0] {
				set.Add(t)
			}
		}
		if !sFirst.Has(Epsilon[0]) {
			allNullable = false
			break
		}
	}
	if allNullable {
		set.Add(Epsilon[0])
	}
	return set
}

// FOLLOW computes FOLLOW(nonTerminal): the set of terminals (plus possibly
// "$") that can immediately follow nonTerminal in some sentential form.
//
// This is an implementation of the FOLLOW-set algorithm from section 4.4.2
// of the purple dragon book.
func (g Grammar) FOLLOW(nonTerminal string) util.ISet[string] {
	follows := map[string]util.StringSet{}
	for _, nt := range g.ruleOrder {
		follows[nt] = util.NewStringSet()
	}
	if g.start != "" {
		follows[g.start] = util.NewStringSet()
		follows[g.start].Add("$")
	}

	changed := true
	for changed {
		changed = false
		for _, nt := range g.ruleOrder {
			for _, prod := range g.rules[nt].Productions {
				for i, sym := range prod {
					if !g.IsNonTerminal(sym) {
						continue
					}

					rest := prod[i+1:]
					restFirst := g.firstOfSequence(rest)

					before := follows[sym].Len()
					for _, t := range restFirst.Elements() {
						if t != Epsilon[0] {
							follows[sym].Add(t)
						}
					}
					if restFirst.Has(Epsilon[0]) || len(rest) == 0 {
						for _, t := range follows[nt].Elements() {
							follows[sym].Add(t)
						}
					}
					if follows[sym].Len() != before {
						changed = true
					}
				}
			}
		}
	}

	result, ok := follows[nonTerminal]
	if !ok {
		return util.NewStringSet()
	}
	return result
}

// FirstFollowListing renders FIRST(X)/FOLLOW(X) for every non-terminal of
// the grammar, one line per set, for inclusion in the tables-dump artifact
// spec §6 describes ("grammar listing, first/follow sets, per-state item
// sets..."). Each line is plain text of the form "FIRST(X) = {a, b}", with
// the members sorted; no table layout is used.
func (g Grammar) FirstFollowListing() string {
	var sb strings.Builder
	for _, nt := range g.ruleOrder {
		first := g.FIRST(nt).Elements()
		sort.Strings(first)
		follow := g.FOLLOW(nt).Elements()
		sort.Strings(follow)
		fmt.Fprintf(&sb, "FIRST(%s) = {%s}\n", nt, strings.Join(first, ", "))
		fmt.Fprintf(&sb, "FOLLOW(%s) = {%s}\n", nt, strings.Join(follow, ", "))
	}
	return sb.String()
}

// String renders every rule of the grammar, one line per non-terminal, in
// the "A -> alpha | beta" form Rule.String already produces.
func (g Grammar) String() string {
	var sb strings.Builder
	for _, nt := range g.ruleOrder {
		sb.WriteString(g.rules[nt].String())
		sb.WriteRune('\n')
	}
	return sb.String()
}

