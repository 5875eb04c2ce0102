package grammar

import (
	"testing"

	"github.com/dekarrin/lrtk/internal/types"
	"github.com/stretchr/testify/assert"
)

// cdGrammar builds the purple-dragon example 4.55 grammar (S -> C C; C -> c
// C | d) directly via the Grammar API, since the teacher's grammar.MustParse
// text-DSL helper lived in the fishi package this module does not carry
// forward (see DESIGN.md).
func cdGrammar() Grammar {
	var g Grammar
	g.AddTerm("c", types.MakeDefaultClass("c"))
	g.AddTerm("d", types.MakeDefaultClass("d"))
	g.AddRule("S", Production{"C", "C"})
	g.AddRule("C", Production{"c", "C"})
	g.AddRule("C", Production{"d"})
	g.SetStartSymbol("S")
	return g
}

func Test_Grammar_Validate_ok(t *testing.T) {
	assert := assert.New(t)
	g := cdGrammar()
	assert.NoError(g.Validate())
}

func Test_Grammar_Validate_noStartSymbol(t *testing.T) {
	assert := assert.New(t)
	var g Grammar
	g.AddTerm("c", types.MakeDefaultClass("c"))
	g.AddRule("S", Production{"c"})
	// AddRule makes the first rule's lhs the start symbol; clear it.
	g.SetStartSymbol("")
	assert.Error(g.Validate())
}

func Test_Grammar_UndefinedSymbols(t *testing.T) {
	assert := assert.New(t)
	var g Grammar
	g.AddTerm("c", types.MakeDefaultClass("c"))
	g.AddRule("S", Production{"c", "Missing"})
	g.SetStartSymbol("S")

	undef := g.UndefinedSymbols()
	assert.Equal([]string{"Missing"}, undef)
}

func Test_Grammar_UnusedTerminals(t *testing.T) {
	assert := assert.New(t)
	var g Grammar
	g.AddTerm("c", types.MakeDefaultClass("c"))
	g.AddTerm("unused", types.MakeDefaultClass("unused"))
	g.AddRule("S", Production{"c"})
	g.SetStartSymbol("S")

	assert.Equal([]string{"unused"}, g.UnusedTerminals())
}

func Test_Grammar_UnusedPrecedence(t *testing.T) {
	assert := assert.New(t)
	var g Grammar
	g.AddTerm("c", types.MakeDefaultClass("c"))
	g.AddTerm("unused", types.MakeDefaultClass("unused"))
	g.AddRule("S", Production{"c"})
	g.SetStartSymbol("S")
	g.SetPrecedence("c", 1, AssocLeft)
	g.SetPrecedence("unused", 1, AssocLeft)

	assert.Equal([]string{"unused"}, g.UnusedPrecedence())
}

func Test_Grammar_Unreachable(t *testing.T) {
	assert := assert.New(t)
	var g Grammar
	g.AddTerm("c", types.MakeDefaultClass("c"))
	g.AddRule("S", Production{"c"})
	g.AddRule("Orphan", Production{"c"})
	g.SetStartSymbol("S")

	assert.Equal([]string{"Orphan"}, g.Unreachable())
}

func Test_Grammar_InfiniteCycles(t *testing.T) {
	assert := assert.New(t)
	var g Grammar
	g.AddTerm("c", types.MakeDefaultClass("c"))
	g.AddRule("S", Production{"c"})
	g.AddRule("Loop", Production{"Loop"})
	g.SetStartSymbol("S")

	assert.Equal([]string{"Loop"}, g.InfiniteCycles())
}

func Test_Grammar_FIRST(t *testing.T) {
	assert := assert.New(t)
	g := cdGrammar()

	first := g.FIRST("C").Elements()
	assert.ElementsMatch([]string{"c", "d"}, first)

	firstS := g.FIRST("S").Elements()
	assert.ElementsMatch([]string{"c", "d"}, firstS)
}

func Test_Grammar_FOLLOW(t *testing.T) {
	assert := assert.New(t)
	g := cdGrammar()

	followC := g.FOLLOW("C").Elements()
	assert.ElementsMatch([]string{"c", "d", "$"}, followC)

	followS := g.FOLLOW("S").Elements()
	assert.ElementsMatch([]string{"$"}, followS)
}

func Test_Grammar_AddRuleWithPrec_overridesRightmostTerminal(t *testing.T) {
	assert := assert.New(t)
	var g Grammar
	g.AddTerm("plus", types.MakeDefaultClass("plus"))
	g.AddTerm("uminus", types.MakeDefaultClass("uminus"))
	g.SetPrecedence("plus", 1, AssocLeft)
	g.SetPrecedence("uminus", 2, AssocRight)

	g.AddRule("E", Production{"E", "plus", "E"})
	g.AddRuleWithPrec("E", Production{"uminus", "E"}, "uminus")
	g.SetStartSymbol("E")

	prec, ok := g.ProductionPrecedence("E", 1)
	assert.True(ok)
	assert.Equal(2, prec.Level)
	assert.Equal(AssocRight, prec.Assoc)
}

func Test_Grammar_FirstFollowListing_containsEverySet(t *testing.T) {
	assert := assert.New(t)
	g := cdGrammar()

	listing := g.FirstFollowListing()
	assert.Contains(listing, "FIRST(S)")
	assert.Contains(listing, "FOLLOW(S)")
	assert.Contains(listing, "FIRST(C)")
	assert.Contains(listing, "FOLLOW(C)")
}

func Test_Grammar_String_rendersEveryRule(t *testing.T) {
	assert := assert.New(t)
	g := cdGrammar()

	listing := g.String()
	assert.Contains(listing, "S -> C C")
	assert.Contains(listing, "C -> c C | d")
}

func Test_Grammar_Augmented_addsSyntheticStart(t *testing.T) {
	assert := assert.New(t)
	g := cdGrammar()

	aug := g.Augmented()
	assert.NotEqual(g.StartSymbol(), aug.StartSymbol())
	assert.True(aug.HasRule(aug.StartSymbol()))

	startRule := aug.Rule(aug.StartSymbol())
	assert.Len(startRule.Productions, 1)
	assert.Equal(Production{"S"}, startRule.Productions[0])
}
