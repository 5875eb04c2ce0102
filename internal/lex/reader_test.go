package lex

import (
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_regexReader_SearchAndAdvance_matchesAndAdvances(t *testing.T) {
	assert := assert.New(t)
	rr := NewRegexReader(strings.NewReader("123abc456"))

	matches, err := rr.SearchAndAdvance(regexp.MustCompile(`^[0-9]+`))
	assert.NoError(err)
	assert.Equal([]string{"123"}, matches)

	matches, err = rr.SearchAndAdvance(regexp.MustCompile(`^[a-z]+`))
	assert.NoError(err)
	assert.Equal([]string{"abc"}, matches)
}

func Test_regexReader_SearchAndAdvance_noMatchLeavesCursor(t *testing.T) {
	assert := assert.New(t)
	rr := NewRegexReader(strings.NewReader("abc"))

	matches, err := rr.SearchAndAdvance(regexp.MustCompile(`^[0-9]+`))
	assert.NoError(err)
	assert.Nil(matches)

	matches, err = rr.SearchAndAdvance(regexp.MustCompile(`^[a-z]+`))
	assert.NoError(err)
	assert.Equal([]string{"abc"}, matches)
}

func Test_regexReader_SearchAndAdvance_eofAtEnd(t *testing.T) {
	assert := assert.New(t)
	rr := NewRegexReader(strings.NewReader("abc"))

	_, err := rr.SearchAndAdvance(regexp.MustCompile(`^[a-z]+`))
	assert.NoError(err)

	_, err = rr.SearchAndAdvance(regexp.MustCompile(`^[a-z]+`))
	assert.ErrorIs(err, io.EOF)
}

// Test_regexReader_compact_boundsMemory drives enough matched tokens through
// the reader that, without compact trimming consumed bytes, b would grow
// without bound. It checks the buffered window never holds more than the
// still-reachable tail of the stream, matching the AppendBytes/EOF-hook loop
// an interactive lexer session runs.
func Test_regexReader_compact_boundsMemory(t *testing.T) {
	assert := assert.New(t)
	rr := NewRegexReader(strings.NewReader(""))

	digits := regexp.MustCompile(`^[0-9]+`)
	spaces := regexp.MustCompile(`^ `)

	for i := 0; i < 50; i++ {
		// simulate an EOF hook appending one more chunk of input at a time,
		// the way lex.Instance.Next does via AppendBytes when its eofHook
		// reports more text.
		rr.AppendBytes([]byte("123456789 "))

		matches, err := rr.SearchAndAdvance(digits)
		assert.NoError(err)
		assert.Equal([]string{"123456789"}, matches)

		_, err = rr.SearchAndAdvance(spaces)
		assert.NoError(err)

		assert.LessOrEqual(len(rr.b), 16, "buffered window should stay bounded to the current chunk, not the whole stream consumed so far")
	}
}

func Test_regexReader_MarkRestore(t *testing.T) {
	assert := assert.New(t)
	rr := NewRegexReader(strings.NewReader("abcdef"))

	rr.Mark("start")
	n, err := rr.Read(make([]byte, 3))
	assert.NoError(err)
	assert.Equal(3, n)

	rr.Restore("start")
	buf := make([]byte, 3)
	n, err = rr.Read(buf)
	assert.NoError(err)
	assert.Equal(3, n)
	assert.Equal("abc", string(buf))
}
