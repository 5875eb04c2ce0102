package parse

import (
	"fmt"
	"testing"

	"github.com/dekarrin/lrtk/internal/grammar"
	"github.com/dekarrin/lrtk/internal/types"
	"github.com/stretchr/testify/assert"
)

// cdGrammar builds the purple-dragon example 4.55 grammar (S -> C C; C -> c
// C | d) directly via the grammar.Grammar API, since the teacher's
// grammar.MustParse text-DSL helper lived in the fishi package this module
// does not carry forward (see DESIGN.md).
func cdGrammar() (grammar.Grammar, *Numbering) {
	var g grammar.Grammar
	g.AddTerm("c", types.MakeDefaultClass("c"))
	g.AddTerm("d", types.MakeDefaultClass("d"))
	g.AddRule("S", grammar.Production{"C", "C"})
	g.AddRule("C", grammar.Production{"c", "C"})
	g.AddRule("C", grammar.Production{"d"})

	num := NewNumbering()
	num.Assign("S", 0)
	num.Assign("C", 0)
	num.Assign("C", 1)

	return g, num
}

func Test_NewLALR1Table_purpleDragon455(t *testing.T) {
	assert := assert.New(t)
	g, num := cdGrammar()

	table, err := NewLALR1Table(g, num)
	assert.NoError(err)
	assert.NotNil(table)
	assert.Empty(table.Conflicts())
	assert.NotEmpty(table.Initial())

	shiftC := table.Action(table.Initial(), "c")
	assert.Equal(LRShift, shiftC.Type)

	shiftD := table.Action(table.Initial(), "d")
	assert.Equal(LRShift, shiftD.Type)

	noEntry := table.Action(table.Initial(), EndOfInput)
	assert.Equal(LRError, noEntry.Type)
}

func Test_NewLALR1Table_reduceReduceConflictResolvedByLowerProdNum(t *testing.T) {
	assert := assert.New(t)

	var g grammar.Grammar
	g.AddTerm("a", types.MakeDefaultClass("a"))
	g.AddRule("S", grammar.Production{"A"})
	g.AddRule("S", grammar.Production{"B"})
	g.AddRule("A", grammar.Production{"a"})
	g.AddRule("B", grammar.Production{"a"})

	num := NewNumbering()
	num.Assign("S", 0)
	num.Assign("S", 1)
	num.Assign("A", 0)
	num.Assign("B", 0)

	table, err := NewLALR1Table(g, num)
	assert.NoError(err)

	conflicts := table.Conflicts()
	assert.NotEmpty(conflicts)
	assert.True(conflicts[0].Resolved)
}

func Test_NewLALR1Table_invalidGrammarIsConfigError(t *testing.T) {
	assert := assert.New(t)

	var g grammar.Grammar
	g.AddTerm("a", types.MakeDefaultClass("a"))
	g.AddRule("S", grammar.Production{"undeclared_nonterm"})

	num := NewNumbering()
	num.Assign("S", 0)

	_, err := NewLALR1Table(g, num)
	assert.Error(err)
}

func Test_Table_String_doesNotPanic(t *testing.T) {
	assert := assert.New(t)
	g, num := cdGrammar()

	table, err := NewLALR1Table(g, num)
	assert.NoError(err)
	assert.NotEmpty(table.String())
}

func Test_Table_ItemSetsString_listsEveryState(t *testing.T) {
	assert := assert.New(t)
	g, num := cdGrammar()

	table, err := NewLALR1Table(g, num)
	assert.NoError(err)

	listing := table.ItemSetsString()
	for i := range table.States() {
		assert.Contains(listing, fmt.Sprintf("state %d:", i))
	}
}

func Test_Table_Defaulted_reduceOnlyState(t *testing.T) {
	assert := assert.New(t)
	g, num := cdGrammar()

	table, err := NewLALR1Table(g, num)
	assert.NoError(err)

	// the state reached on "d" from the start reduces C -> d on every
	// possible lookahead, so it must be detected as a defaulted state.
	sd := table.dfa.Next(table.Initial(), "d")
	assert.NotEmpty(sd)

	act, ok := table.Defaulted(sd)
	assert.True(ok)
	assert.Equal(LRReduce, act.Type)
	assert.Equal("C", act.Symbol)
}
