package lrtk

import (
	"fmt"

	"github.com/dekarrin/lrtk/internal/errs"
	"github.com/dekarrin/lrtk/internal/grammar"
	"github.com/dekarrin/lrtk/internal/lex"
	"github.com/dekarrin/lrtk/internal/parse"
	"github.com/dekarrin/lrtk/internal/types"
)

// LexState describes one named lexer start-condition (spec §6 RuleSet's
// "states: list of {name, mode: inclusive|exclusive}").
type LexState struct {
	Name      string
	Inclusive bool
}

// LexRule is one pattern rule of a RuleSet (spec §6 RuleSet's "rules:
// ordered list of {kind, pattern, action?, states?}"). Kind is the token
// class ID emitted on match; leave it empty for a rule that only changes
// lexer state or discards its match. Literal marks Pattern as matched verbatim
// rather than as a regular expression, for declaring single-character
// literal terminals (spec.md §3's literals).
type LexRule struct {
	Kind    string
	Pattern string
	Literal bool
	Action  lex.Action
	States  []string
}

// RuleSet is the external, reflection-free input to a lexer constructor
// (spec §6, "RuleSet input"). The surrounding program is responsible for
// populating it however it likes; lrtk never parses a grammar description
// language itself (spec.md §8 Non-goals).
type RuleSet struct {
	// Tokens is the ordered list of terminal kind names this lexer declares,
	// each registered under a default human-readable class.
	Tokens []string

	// Classes optionally supplies a non-default types.TokenClass for one of
	// Tokens, keyed by token kind name. Any token in Tokens without an entry
	// here gets types.MakeDefaultClass(kind).
	Classes map[string]types.TokenClass

	// States declares additional lexer start-conditions beyond the implicit
	// inclusive INITIAL state.
	States []LexState

	// Rules is the ordered list of pattern rules. A rule with no States
	// applies to InitialState only.
	Rules []LexRule

	// Ignore maps a state name to the set of characters silently skipped
	// while in that state.
	Ignore map[string][]rune

	OnError lex.ErrorHook
	OnEOF   lex.EOFHook
}

// BuildDefinition compiles rs into a *lex.Definition, ready to call Lex on.
// Grounded on tunaq/internal/ictiobus.ictiobus.go's NewLexer/NewLazyLexer
// construction path, generalized from hand-written Go call sequences to a
// declarative rule list per spec.md §6.
func (rs RuleSet) BuildDefinition() (*lex.Definition, error) {
	d := lex.NewDefinition()

	for _, st := range rs.States {
		d.DeclareState(st.Name, st.Inclusive)
	}

	classOf := func(kind string) types.TokenClass {
		if cls, ok := rs.Classes[kind]; ok {
			return cls
		}
		return types.MakeDefaultClass(kind)
	}

	declared := map[string]bool{}
	for _, kind := range rs.Tokens {
		cls := classOf(kind)
		for _, st := range append([]LexState{{Name: lex.InitialState}}, rs.States...) {
			key := st.Name + "\x00" + kind
			if declared[key] {
				continue
			}
			if err := d.AddClass(cls, st.Name); err != nil {
				return nil, errs.WrapConfigError(fmt.Sprintf("registering token %q for state %q", kind, st.Name), err)
			}
			declared[key] = true
		}
	}

	for _, r := range rs.Rules {
		states := r.States
		if len(states) == 0 {
			states = []string{lex.InitialState}
		}
		for _, st := range states {
			var err error
			switch {
			case r.Literal:
				action := r.Action
				if action.Type == lex.ActionNone && r.Kind != "" {
					action = lex.LexAs(classOf(r.Kind).ID())
				}
				err = d.AddLiteral(r.Pattern, action, st)
			case r.Action.Type == lex.ActionNone && r.Kind != "":
				// a rule declared by kind alone is a bare pattern: it emits
				// its kind, and sorts after every action-bearing rule by
				// decreasing pattern length.
				err = d.AddBarePattern(r.Pattern, classOf(r.Kind).ID(), st)
			default:
				err = d.AddPattern(r.Pattern, r.Action, st)
			}
			if err != nil {
				return nil, errs.WrapConfigError(fmt.Sprintf("rule %q for state %q", r.Pattern, st), err)
			}
		}
	}

	for state, runes := range rs.Ignore {
		for _, ch := range runes {
			d.AddIgnored(ch, state)
		}
	}

	if rs.OnError != nil {
		d.SetErrorHook(rs.OnError)
	}
	if rs.OnEOF != nil {
		d.SetEOFHook(rs.OnEOF)
	}

	return d, nil
}

// PrecDecl is one level of a GrammarSpec's precedence table (spec §6
// GrammarSpec's "precedence: ordered list of (assoc, [term, ...]) from
// lowest to highest level").
type PrecDecl struct {
	Assoc grammar.Associativity
	Terms []string
}

// ProductionSpec is one grammar production (spec §6 GrammarSpec's
// "productions: ordered list of {lhs, rhs[], action_handle, prec_override?,
// source_location}"). Action may be nil, in which case the production gets
// the engine's default parse-tree-building behavior.
type ProductionSpec struct {
	LHS            string
	RHS            []string
	Action         parse.ActionFunc
	PrecOverride   string
	SourceLocation string
}

// GrammarSpec is the external, reflection-free input to a parser constructor
// (spec §6, "GrammarSpec input"). Productions must be given in the order
// they were declared -- that order becomes the dense global production
// numbering used to break reduce/reduce ties and to label ACTION table
// entries (spec.md §3, §4.E.4).
type GrammarSpec struct {
	// Tokens must match (a superset is fine) the terminal kinds the paired
	// RuleSet declares.
	Tokens []string

	// Classes mirrors RuleSet.Classes; a terminal named in Tokens without an
	// entry gets types.MakeDefaultClass(kind).
	Classes map[string]types.TokenClass

	// Start names the start non-terminal; if empty, the first production's
	// LHS is used, matching grammar.Grammar.AddRule's "first rule added
	// becomes the start symbol" convention.
	Start string

	Precedence  []PrecDecl
	Productions []ProductionSpec

	OnParseError parse.ParseErrorHandler
}

// BuildGrammar constructs a grammar.Grammar, a parse.Numbering assigning
// each production a number in declaration order, and the map of
// production-number to action callback, from gs.
func (gs GrammarSpec) BuildGrammar() (grammar.Grammar, *parse.Numbering, map[int]parse.ActionFunc, error) {
	var g grammar.Grammar

	classOf := func(kind string) types.TokenClass {
		if cls, ok := gs.Classes[kind]; ok {
			return cls
		}
		return types.MakeDefaultClass(kind)
	}
	// Terminals are registered under their class ID (lower-case for a
	// default class), since that is what the engine sees from every scanned
	// token's Class().ID(); termID maps the declared kind name to that ID so
	// productions and precedence declarations may use either spelling.
	termID := map[string]string{}
	for _, kind := range gs.Tokens {
		id := classOf(kind).ID()
		termID[kind] = id
		g.AddTerm(id, classOf(kind))
	}
	mapSym := func(sym string) string {
		if id, ok := termID[sym]; ok {
			return id
		}
		return sym
	}

	for _, p := range gs.Productions {
		for _, sym := range p.RHS {
			if mapSym(sym) == parse.ErrorSymbol {
				g.AddTerm(parse.ErrorSymbol, types.TokenError)
				break
			}
		}
	}

	for level, decl := range gs.Precedence {
		for _, term := range decl.Terms {
			g.SetPrecedence(mapSym(term), level+1, decl.Assoc)
		}
	}

	num := parse.NewNumbering()
	actions := map[int]parse.ActionFunc{}

	altIndex := map[string]int{}
	for _, p := range gs.Productions {
		rhs := make([]string, len(p.RHS))
		for i, sym := range p.RHS {
			rhs[i] = mapSym(sym)
		}
		if len(rhs) == 0 {
			rhs = grammar.Epsilon
		}
		g.AddRuleWithPrec(p.LHS, grammar.Production(rhs), mapSym(p.PrecOverride))

		idx := altIndex[p.LHS]
		altIndex[p.LHS] = idx + 1
		n := num.Assign(p.LHS, idx)
		if p.Action != nil {
			actions[n] = p.Action
		}
	}

	if gs.Start != "" {
		g.SetStartSymbol(gs.Start)
	}

	if err := g.Validate(); err != nil {
		return grammar.Grammar{}, nil, nil, errs.WrapConfigError("invalid grammar spec", err)
	}

	return g, num, actions, nil
}
