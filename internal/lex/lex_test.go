package lex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// numWordDef builds a small two-class lexer (numbers, words) ignoring
// spaces in INITIAL, mirroring the shape of the calculator rule set in
// cmd/lrtkdemo/main.go but scoped down for unit testing component B.
func numWordDef(t *testing.T) *Definition {
	t.Helper()
	d := NewDefinition()
	assert.NoError(t, d.AddClass(NewTokenClass("number", "number"), InitialState))
	assert.NoError(t, d.AddClass(NewTokenClass("word", "word"), InitialState))
	assert.NoError(t, d.AddPattern(`[0-9]+`, LexAs("number"), InitialState))
	assert.NoError(t, d.AddPattern(`[a-zA-Z]+`, LexAs("word"), InitialState))
	d.AddIgnored(' ', InitialState)
	return d
}

func Test_Lex_scansTokensInOrder(t *testing.T) {
	assert := assert.New(t)
	d := numWordDef(t)

	inst, err := d.Lex(strings.NewReader("12 foo 34"))
	assert.NoError(err)

	tok1 := inst.Next()
	assert.Equal("number", tok1.Class().ID())
	assert.Equal("12", tok1.Lexeme())

	tok2 := inst.Next()
	assert.Equal("word", tok2.Class().ID())
	assert.Equal("foo", tok2.Lexeme())

	tok3 := inst.Next()
	assert.Equal("number", tok3.Class().ID())
	assert.Equal("34", tok3.Lexeme())

	assert.False(inst.HasNext())
}

func Test_Lex_Peek_doesNotConsume(t *testing.T) {
	assert := assert.New(t)
	d := numWordDef(t)

	inst, err := d.Lex(strings.NewReader("12 foo"))
	assert.NoError(err)

	peeked := inst.Peek()
	assert.Equal("12", peeked.Lexeme())

	next := inst.Next()
	assert.Equal("12", next.Lexeme())

	next2 := inst.Next()
	assert.Equal("foo", next2.Lexeme())
}

func Test_Lex_discardAction_producesNoToken(t *testing.T) {
	assert := assert.New(t)
	d := NewDefinition()
	assert.NoError(d.AddClass(NewTokenClass("word", "word"), InitialState))
	assert.NoError(d.AddPattern(`\#[^\n]*`, Discard(), InitialState))
	assert.NoError(d.AddPattern(`[a-z]+`, LexAs("word"), InitialState))

	d.AddIgnored(' ', InitialState)
	inst, err := d.Lex(strings.NewReader("foo #comment bar"))
	assert.NoError(err)

	tok1 := inst.Next()
	assert.Equal("foo", tok1.Lexeme())
}

func Test_Lex_stateStack_pushAndPop(t *testing.T) {
	assert := assert.New(t)
	d := NewDefinition()
	d.DeclareState("quoted", false)
	assert.NoError(d.AddClass(NewTokenClass("word", "word"), InitialState))
	assert.NoError(d.AddClass(NewTokenClass("qword", "qword"), "quoted"))
	assert.NoError(d.AddPattern(`"`, PushState("quoted"), InitialState))
	assert.NoError(d.AddPattern(`[a-z]+`, LexAs("word"), InitialState))
	assert.NoError(d.AddPattern(`"`, PopState(), "quoted"))
	assert.NoError(d.AddPattern(`[a-z]+`, LexAs("qword"), "quoted"))

	d.AddIgnored(' ', InitialState)
	d.AddIgnored(' ', "quoted")
	inst, err := d.Lex(strings.NewReader(`foo "bar" baz`))
	assert.NoError(err)

	tok1 := inst.Next()
	assert.Equal("word", tok1.Class().ID())
	assert.Equal("foo", tok1.Lexeme())

	tok2 := inst.Next()
	assert.Equal("qword", tok2.Class().ID())
	assert.Equal("bar", tok2.Lexeme())

	tok3 := inst.Next()
	assert.Equal("word", tok3.Class().ID())
	assert.Equal("baz", tok3.Lexeme())
}

func Test_Lex_traceListener_receivesOneLinePerToken(t *testing.T) {
	assert := assert.New(t)
	d := numWordDef(t)

	inst, err := d.Lex(strings.NewReader("12 foo"))
	assert.NoError(err)

	var lines []string
	inst.SetTraceListener(func(s string) {
		lines = append(lines, s)
	})

	inst.Next()
	inst.Next()

	assert.Len(lines, 2)
	assert.Contains(lines[0], "12")
	assert.Contains(lines[1], "foo")
}

func Test_Lex_verbosePattern_ignoresWhitespaceAndComments(t *testing.T) {
	assert := assert.New(t)
	d := NewDefinition()
	assert.NoError(d.AddClass(NewTokenClass("number", "number"), InitialState))
	assert.NoError(d.AddPattern("[0-9]+ (?: \\. [0-9]+ )?  # digits, optional fraction", LexAs("number"), InitialState))

	inst, err := d.Lex(strings.NewReader("3.14"))
	assert.NoError(err)

	tok := inst.Next()
	assert.Equal("number", tok.Class().ID())
	assert.Equal("3.14", tok.Lexeme())
}

func Test_Lex_nonVerbose_whitespaceIsSignificant(t *testing.T) {
	assert := assert.New(t)
	d := NewDefinition()
	d.SetVerbose(false)
	assert.NoError(d.AddClass(NewTokenClass("pair", "pair"), InitialState))
	assert.NoError(d.AddPattern(`[a-z] [a-z]`, LexAs("pair"), InitialState))

	inst, err := d.Lex(strings.NewReader("a b"))
	assert.NoError(err)

	tok := inst.Next()
	assert.Equal("a b", tok.Lexeme())
}

func Test_Lex_barePatterns_sortByDecreasingLength(t *testing.T) {
	assert := assert.New(t)
	d := NewDefinition()
	assert.NoError(d.AddClass(NewTokenClass("assign", "assign"), InitialState))
	assert.NoError(d.AddClass(NewTokenClass("eq", "eq"), InitialState))

	// declared shortest-first; the longer bare pattern must still win so a
	// rule for = cannot mask ==.
	assert.NoError(d.AddBarePattern(`=`, "assign", InitialState))
	assert.NoError(d.AddBarePattern(`==`, "eq", InitialState))

	inst, err := d.Lex(strings.NewReader("=="))
	assert.NoError(err)

	tok := inst.Next()
	assert.Equal("eq", tok.Class().ID())
	assert.Equal("==", tok.Lexeme())
}

func Test_Lex_patternWithInnerGroups_mapsToRightAction(t *testing.T) {
	assert := assert.New(t)
	d := NewDefinition()
	assert.NoError(d.AddClass(NewTokenClass("quoted", "quoted"), InitialState))
	assert.NoError(d.AddClass(NewTokenClass("word", "word"), InitialState))
	assert.NoError(d.AddPattern(`"([a-z]|\\")*"`, LexAs("quoted"), InitialState))
	assert.NoError(d.AddPattern(`[a-z]+`, LexAs("word"), InitialState))

	d.AddIgnored(' ', InitialState)
	inst, err := d.Lex(strings.NewReader(`"abc" def`))
	assert.NoError(err)

	tok1 := inst.Next()
	assert.Equal("quoted", tok1.Class().ID())
	assert.Equal(`"abc"`, tok1.Lexeme())

	tok2 := inst.Next()
	assert.Equal("word", tok2.Class().ID())
	assert.Equal("def", tok2.Lexeme())
}

func Test_Lex_emptyMatchingPattern_isConfigError(t *testing.T) {
	assert := assert.New(t)
	d := NewDefinition()
	assert.NoError(d.AddClass(NewTokenClass("word", "word"), InitialState))
	assert.NoError(d.AddPattern(`[a-z]*`, LexAs("word"), InitialState))

	_, err := d.Lex(strings.NewReader("abc"))
	assert.Error(err)
}

func Test_Lex_duplicatePattern_isConfigError(t *testing.T) {
	assert := assert.New(t)
	d := NewDefinition()
	assert.NoError(d.AddClass(NewTokenClass("word", "word"), InitialState))
	assert.NoError(d.AddPattern(`[a-z]+`, LexAs("word"), InitialState))
	err := d.AddPattern(`[a-z]+`, LexAs("word"), InitialState)
	assert.Error(err)
}

func Test_Lex_undeclaredClass_isConfigError(t *testing.T) {
	assert := assert.New(t)
	d := NewDefinition()
	err := d.AddPattern(`[a-z]+`, LexAs("word"), InitialState)
	assert.Error(err)
}
