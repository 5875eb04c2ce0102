package automaton

import (
	"testing"

	"github.com/dekarrin/lrtk/internal/grammar"
	"github.com/dekarrin/lrtk/internal/types"
	"github.com/dekarrin/lrtk/internal/util"
	"github.com/stretchr/testify/assert"
)

// ccGrammar builds the textbook two-rule example:
//
//	S -> C C
//	C -> c C | d
func ccGrammar() grammar.Grammar {
	var g grammar.Grammar

	g.AddTerm("c", types.MakeDefaultClass("c"))
	g.AddTerm("d", types.MakeDefaultClass("d"))

	g.AddRule("S", grammar.Production{"C", "C"})
	g.AddRule("C", grammar.Production{"c", "C"})
	g.AddRule("C", grammar.Production{"d"})

	g.SetStartSymbol("S")

	return g
}

func Test_NewLR0ViablePrefixNFA(t *testing.T) {
	assert := assert.New(t)
	g := ccGrammar()

	nfa := NewLR0ViablePrefixNFA(g)

	// one NFA state per LR0 item, plus the two dotted items of the synthetic
	// augmented start production S' -> S the constructor adds.
	items := g.LR0Items()
	assert.Equal(len(items)+2, nfa.States().Len())
}

func Test_NewLALR1ViablePrefixDFA(t *testing.T) {
	assert := assert.New(t)
	g := ccGrammar()

	dfa, err := NewLALR1ViablePrefixDFA(g)
	if !assert.NoError(err) {
		return
	}

	// the merged-by-core LALR(1) automaton for this grammar has exactly 7
	// states: one per distinct LR(0) core of the canonical collection.
	assert.Equal(7, dfa.States().Len())
}

func buildDFA(from map[string][]string, start string, acceptingStates []string) *DFA[string] {
	dfa := &DFA[string]{}

	acceptSet := util.StringSetOf(acceptingStates)

	for k := range from {
		dfa.AddState(k, acceptSet.Has(k))
		dfa.SetValue(k, k)
	}

	// add transitions AFTER all states are already in or it will cause a panic
	for k := range from {
		for i := range from[k] {
			transition := mustParseFATransition(from[k][i])
			dfa.AddTransition(k, transition.input, transition.next)
		}
	}

	dfa.Start = start

	return dfa
}

func Test_DFAToNFA_and_back(t *testing.T) {
	assert := assert.New(t)

	dfa := buildDFA(map[string][]string{
		"0": {"=(a)=> 1"},
		"1": {"=(b)=> 1"},
	}, "0", []string{"1"})

	nfa := DFAToNFA(*dfa)
	assert.Equal(dfa.States().Len(), nfa.States().Len())

	back, err := directNFAToDFA(nfa)
	assert.NoError(err)
	assert.Equal(dfa.States().Len(), back.States().Len())
}
