package lex

import (
	"fmt"

	"github.com/dekarrin/lrtk/internal/types"
)

// lexerClass is the lex package's implementation of types.TokenClass.
type lexerClass struct {
	id   string
	name string
}

func (lc lexerClass) ID() string {
	return lc.id
}

func (lc lexerClass) Human() string {
	return lc.name
}

func (lc lexerClass) Equal(o any) bool {
	other, ok := o.(types.TokenClass)
	if !ok {
		otherPtr, ok := o.(*types.TokenClass)
		if !ok {
			return false
		}
		if otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	return other.ID() == lc.ID()
}

// NewTokenClass declares a new token class with the given ID and
// human-readable name. The ID is the grammar-facing terminal symbol.
func NewTokenClass(id string, human string) types.TokenClass {
	return lexerClass{id: id, name: human}
}

// lexerToken is the lex package's implementation of types.Token.
type lexerToken struct {
	class   types.TokenClass
	lexed   string
	linePos int
	lineNum int
	line    string
	offset  int
}

func (lt lexerToken) Class() types.TokenClass {
	return lt.class
}

func (lt lexerToken) Lexeme() string {
	return lt.lexed
}

func (lt lexerToken) LinePos() int {
	return lt.linePos
}

func (lt lexerToken) Line() int {
	return lt.lineNum
}

func (lt lexerToken) FullLine() string {
	return lt.line
}

func (lt lexerToken) Offset() int {
	return lt.offset
}

func (lt lexerToken) String() string {
	return fmt.Sprintf("(%s %q @ %d:%d)", lt.class.ID(), lt.lexed, lt.lineNum, lt.linePos)
}
