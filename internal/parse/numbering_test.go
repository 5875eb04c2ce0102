package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Numbering_AssignAndOf(t *testing.T) {
	assert := assert.New(t)

	num := NewNumbering()
	n0 := num.Assign("S", 0)
	n1 := num.Assign("A", 0)
	n2 := num.Assign("A", 1)

	assert.Equal(0, n0)
	assert.Equal(1, n1)
	assert.Equal(2, n2)

	assert.Equal(n0, num.Of("S", 0))
	assert.Equal(n1, num.Of("A", 0))
	assert.Equal(n2, num.Of("A", 1))
	assert.Equal(-1, num.Of("A", 2))
	assert.Equal(-1, num.Of("unknown", 0))

	assert.Equal(3, num.Len())

	nt, alt, ok := num.At(1)
	assert.True(ok)
	assert.Equal("A", nt)
	assert.Equal(0, alt)

	_, _, ok = num.At(99)
	assert.False(ok)
}

func Test_Numbering_nilSafe(t *testing.T) {
	assert := assert.New(t)

	var num *Numbering
	assert.Equal(-1, num.Of("S", 0))
	assert.Equal(0, num.Len())

	_, _, ok := num.At(0)
	assert.False(ok)
}
