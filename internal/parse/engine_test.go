package parse

import (
	"testing"

	"github.com/dekarrin/lrtk/internal/grammar"
	"github.com/dekarrin/lrtk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeToken is a minimal types.Token for feeding a fixed symbol sequence
// into an Engine under test.
type fakeToken struct {
	cls    types.TokenClass
	lexeme string
}

func (f fakeToken) Class() types.TokenClass { return f.cls }
func (f fakeToken) Lexeme() string          { return f.lexeme }
func (f fakeToken) LinePos() int            { return 1 }
func (f fakeToken) Line() int               { return 1 }
func (f fakeToken) FullLine() string        { return f.lexeme }
func (f fakeToken) Offset() int             { return 0 }
func (f fakeToken) String() string          { return f.lexeme }

// fixedStream is a types.TokenStream over a fixed slice of tokens.
type fixedStream struct {
	toks []types.Token
	pos  int
}

func newFixedStream(symbols ...string) *fixedStream {
	toks := make([]types.Token, len(symbols))
	for i, s := range symbols {
		toks[i] = fakeToken{cls: types.MakeDefaultClass(s), lexeme: s}
	}
	return &fixedStream{toks: toks}
}

func (s *fixedStream) Next() types.Token {
	if s.pos >= len(s.toks) {
		return nil
	}
	t := s.toks[s.pos]
	s.pos++
	return t
}

func (s *fixedStream) Peek() types.Token {
	if s.pos >= len(s.toks) {
		return nil
	}
	return s.toks[s.pos]
}

func (s *fixedStream) HasNext() bool {
	return s.pos < len(s.toks)
}

func Test_Engine_Parse_defaultActionBuildsParseTree(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g, num := cdGrammar()
	table, err := NewLALR1Table(g, num)
	require.NoError(err)

	eng := NewEngine(table, g, num, nil)

	// "c d d" is C(c C(d)) C(d), i.e. S -> C C.
	stream := newFixedStream("c", "d", "d")
	result, err := eng.Parse(stream)
	require.NoError(err)

	tree, ok := result.(*types.ParseTree)
	require.True(ok)
	assert.Equal("S", tree.Value)

	var lexemes []string
	for _, leaf := range tree.Leaves() {
		lexemes = append(lexemes, leaf.Source.Lexeme())
	}
	assert.Equal([]string{"c", "d", "d"}, lexemes)
}

func Test_Engine_Parse_withActionsComputesValue(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	// E -> E plus E | num, left-associative plus.
	var g grammar.Grammar
	g.AddTerm("plus", types.MakeDefaultClass("plus"))
	g.AddTerm("num", types.MakeDefaultClass("num"))
	g.AddRule("E", grammar.Production{"E", "plus", "E"})
	g.AddRule("E", grammar.Production{"num"})
	g.SetPrecedence("plus", 1, grammar.AssocLeft)

	num := NewNumbering()
	addNum := num.Assign("E", 0)
	numNum := num.Assign("E", 1)

	table, err := NewLALR1Table(g, num)
	require.NoError(err)

	actions := map[int]ActionFunc{
		addNum: func(h *Handle) error {
			left := h.Get(1).(int)
			right := h.Get(3).(int)
			h.SetResult(left + right)
			return nil
		},
		numNum: func(h *Handle) error {
			tok := h.Get(1).(types.Token)
			h.SetResult(len(tok.Lexeme()))
			return nil
		},
	}

	eng := NewEngine(table, g, num, actions)

	// three "num" tokens, lexeme "num" (length 3) each, summed via two pluses.
	stream := newFixedStream("num", "plus", "num", "plus", "num")
	result, err := eng.Parse(stream)
	require.NoError(err)
	assert.Equal(9, result)
}

func Test_Engine_Parse_syntaxErrorAtUnexpectedEOF(t *testing.T) {
	require := require.New(t)

	g, num := cdGrammar()
	table, err := NewLALR1Table(g, num)
	require.NoError(err)

	eng := NewEngine(table, g, num, nil)

	// incomplete input: only one C, never a second.
	stream := newFixedStream("d")
	_, err = eng.Parse(stream)
	require.Error(err)
}

func Test_Engine_Parse_actionCanSignalSyntaxErrorHere(t *testing.T) {
	require := require.New(t)

	var g grammar.Grammar
	g.AddTerm("a", types.MakeDefaultClass("a"))
	g.AddRule("S", grammar.Production{"A"})
	g.AddRule("A", grammar.Production{"a"})

	num := NewNumbering()
	num.Assign("S", 0)
	aNum := num.Assign("A", 0)

	table, err := NewLALR1Table(g, num)
	require.NoError(err)

	actions := map[int]ActionFunc{
		aNum: func(h *Handle) error {
			return ErrSyntaxErrorHere
		},
	}

	eng := NewEngine(table, g, num, actions)
	stream := newFixedStream("a")
	_, err = eng.Parse(stream)
	require.Error(err)
}
