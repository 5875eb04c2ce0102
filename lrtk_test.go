package lrtk

import (
	"strings"
	"testing"

	"github.com/dekarrin/lrtk/internal/grammar"
	"github.com/dekarrin/lrtk/internal/lex"
	"github.com/dekarrin/lrtk/internal/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// calcFrontend builds a four-operator integer-arithmetic frontend with
// left-associative + - at the lowest level, left-associative * / above them,
// and a right-associative unary minus at the top via a %prec override,
// mirroring the classic yacc calculator example.
func calcFrontend(t *testing.T) Frontend {
	t.Helper()

	rs := RuleSet{
		Tokens: []string{"number", "plus", "minus", "star", "slash", "lparen", "rparen"},
		Rules: []LexRule{
			{Kind: "number", Pattern: `[0-9]+`},
			{Kind: "plus", Pattern: `+`, Literal: true},
			{Kind: "minus", Pattern: `-`, Literal: true},
			{Kind: "star", Pattern: `*`, Literal: true},
			{Kind: "slash", Pattern: `/`, Literal: true},
			{Kind: "lparen", Pattern: `(`, Literal: true},
			{Kind: "rparen", Pattern: `)`, Literal: true},
		},
		Ignore: map[string][]rune{
			lex.InitialState: {' ', '\t'},
		},
	}

	lit := func(h *parse.Handle) error {
		tok := h.Get(1).(interface{ Lexeme() string })
		n := 0
		for _, ch := range tok.Lexeme() {
			n = n*10 + int(ch-'0')
		}
		h.SetResult(n)
		return nil
	}
	bin := func(f func(a, b int) int) parse.ActionFunc {
		return func(h *parse.Handle) error {
			h.SetResult(f(h.Get(1).(int), h.Get(3).(int)))
			return nil
		}
	}

	gs := GrammarSpec{
		Tokens: append(rs.Tokens, "uminus"),
		Start:  "expr",
		Precedence: []PrecDecl{
			{Assoc: grammar.AssocLeft, Terms: []string{"plus", "minus"}},
			{Assoc: grammar.AssocLeft, Terms: []string{"star", "slash"}},
			{Assoc: grammar.AssocRight, Terms: []string{"uminus"}},
		},
		Productions: []ProductionSpec{
			{LHS: "expr", RHS: []string{"expr", "plus", "expr"}, Action: bin(func(a, b int) int { return a + b })},
			{LHS: "expr", RHS: []string{"expr", "minus", "expr"}, Action: bin(func(a, b int) int { return a - b })},
			{LHS: "expr", RHS: []string{"expr", "star", "expr"}, Action: bin(func(a, b int) int { return a * b })},
			{LHS: "expr", RHS: []string{"expr", "slash", "expr"}, Action: bin(func(a, b int) int { return a / b })},
			{LHS: "expr", RHS: []string{"minus", "expr"}, PrecOverride: "uminus", Action: func(h *parse.Handle) error {
				h.SetResult(-h.Get(2).(int))
				return nil
			}},
			{LHS: "expr", RHS: []string{"lparen", "expr", "rparen"}, Action: func(h *parse.Handle) error {
				h.SetResult(h.Get(2))
				return nil
			}},
			{LHS: "expr", RHS: []string{"number"}, Action: lit},
		},
	}

	front, err := NewFrontend(rs, gs)
	require.NoError(t, err)
	return front
}

func calcEval(t *testing.T, front Frontend, input string) (int, error) {
	t.Helper()
	stream := front.Lexer.Lex(strings.NewReader(input))
	result, err := front.Parser.Parse(stream)
	if err != nil {
		return 0, err
	}
	return result.(int), nil
}

func Test_Frontend_calculator(t *testing.T) {
	front := calcFrontend(t)

	testCases := []struct {
		input  string
		expect int
	}{
		{"42", 42},
		{"1+2*3", 7},
		{"1-2-3", -4},
		{"3+4*-5", -17},
		{"2 * 3 + 4 * (5 - 10)", -14},
		{"(1+2)*3", 9},
		{"--5", 5},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := calcEval(t, front, tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, got)
		})
	}
}

func Test_Frontend_calculator_syntaxError(t *testing.T) {
	front := calcFrontend(t)

	_, err := calcEval(t, front, "1 + * 2")
	assert.Error(t, err)
}

func Test_Frontend_nonassoc_forbidsChaining(t *testing.T) {
	rs := RuleSet{
		Tokens: []string{"id", "lt"},
		Rules: []LexRule{
			{Kind: "id", Pattern: `[a-z]+`},
			{Kind: "lt", Pattern: `<`, Literal: true},
		},
		Ignore: map[string][]rune{lex.InitialState: {' '}},
	}

	gs := GrammarSpec{
		Tokens: rs.Tokens,
		Start:  "expr",
		Precedence: []PrecDecl{
			{Assoc: grammar.AssocNonAssoc, Terms: []string{"lt"}},
		},
		Productions: []ProductionSpec{
			{LHS: "expr", RHS: []string{"expr", "lt", "expr"}},
			{LHS: "expr", RHS: []string{"id"}},
		},
	}

	front, err := NewFrontend(rs, gs)
	require.NoError(t, err)

	stream := front.Lexer.Lex(strings.NewReader("a < b"))
	_, err = front.Parser.Parse(stream)
	assert.NoError(t, err)

	stream = front.Lexer.Lex(strings.NewReader("a < b < c"))
	_, err = front.Parser.Parse(stream)
	assert.Error(t, err)
}

func Test_Frontend_emptyInput_allowedByEpsilonStart(t *testing.T) {
	rs := RuleSet{
		Tokens: []string{"number"},
		Rules: []LexRule{
			{Kind: "number", Pattern: `[0-9]+`},
		},
	}

	gs := GrammarSpec{
		Tokens: rs.Tokens,
		Start:  "prog",
		Productions: []ProductionSpec{
			{LHS: "prog", RHS: []string{"number"}, Action: func(h *parse.Handle) error {
				h.SetResult("number")
				return nil
			}},
			{LHS: "prog", RHS: nil, Action: func(h *parse.Handle) error {
				h.SetResult("empty")
				return nil
			}},
		},
	}

	front, err := NewFrontend(rs, gs)
	require.NoError(t, err)

	stream := front.Lexer.Lex(strings.NewReader(""))
	result, err := front.Parser.Parse(stream)
	require.NoError(t, err)
	assert.Equal(t, "empty", result)

	stream = front.Lexer.Lex(strings.NewReader("5"))
	result, err = front.Parser.Parse(stream)
	require.NoError(t, err)
	assert.Equal(t, "number", result)
}

// Test_Frontend_errorRecovery exercises the yacc-style error-token recovery
// path end to end: a statement list where a malformed statement resynchronizes
// at the next semicolon via a "print error semi" production, with the input
// still producing the good statements around it.
func Test_Frontend_errorRecovery(t *testing.T) {
	rs := RuleSet{
		Tokens: []string{"print", "number", "semi", "junk"},
		Rules: []LexRule{
			{Kind: "print", Pattern: `print`},
			{Kind: "number", Pattern: `[0-9]+`},
			{Kind: "semi", Pattern: `;`, Literal: true},
			{Kind: "junk", Pattern: `\?+`},
		},
		Ignore: map[string][]rune{lex.InitialState: {' '}},
	}

	var stmts []string
	gs := GrammarSpec{
		// "junk" is declared so the lexer can produce it, but no production
		// consumes it: seeing one is a syntax error.
		Tokens: rs.Tokens,
		Start:  "stmts",
		Productions: []ProductionSpec{
			{LHS: "stmts", RHS: []string{"stmts", "stmt"}},
			{LHS: "stmts", RHS: []string{"stmt"}},
			{LHS: "stmt", RHS: []string{"print", "number", "semi"}, Action: func(h *parse.Handle) error {
				stmts = append(stmts, "ok")
				return nil
			}},
			{LHS: "stmt", RHS: []string{"print", "error", "semi"}, Action: func(h *parse.Handle) error {
				stmts = append(stmts, "error")
				return nil
			}},
		},
	}

	front, err := NewFrontend(rs, gs)
	require.NoError(t, err)

	stream := front.Lexer.Lex(strings.NewReader("print ??? ; print 1 ;"))
	_, err = front.Parser.Parse(stream)
	require.NoError(t, err)
	assert.Equal(t, []string{"error", "ok"}, stmts)
}

func Test_NewLexer_badPattern_failsAtConstruction(t *testing.T) {
	rs := RuleSet{
		Tokens: []string{"word"},
		Rules: []LexRule{
			{Kind: "word", Pattern: `[a-z`},
		},
	}

	_, err := NewLexer(rs)
	assert.Error(t, err)
}

func Test_NewParser_undefinedSymbol_failsAtConstruction(t *testing.T) {
	gs := GrammarSpec{
		Tokens: []string{"number"},
		Start:  "expr",
		Productions: []ProductionSpec{
			{LHS: "expr", RHS: []string{"nosuchthing"}},
		},
	}

	_, err := NewParser(gs)
	assert.Error(t, err)
}

func Test_GrammarSpec_uppercaseTokenNames_normalizeToClassIDs(t *testing.T) {
	rs := RuleSet{
		Tokens: []string{"NUMBER"},
		Rules: []LexRule{
			{Kind: "NUMBER", Pattern: `[0-9]+`},
		},
	}

	gs := GrammarSpec{
		Tokens: rs.Tokens,
		Start:  "expr",
		Productions: []ProductionSpec{
			{LHS: "expr", RHS: []string{"NUMBER"}, Action: func(h *parse.Handle) error {
				h.SetResult(h.Get(1).(interface{ Lexeme() string }).Lexeme())
				return nil
			}},
		},
	}

	front, err := NewFrontend(rs, gs)
	require.NoError(t, err)

	stream := front.Lexer.Lex(strings.NewReader("17"))
	result, err := front.Parser.Parse(stream)
	require.NoError(t, err)
	assert.Equal(t, "17", result)
}
