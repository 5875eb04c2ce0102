package util

import "fmt"

// Stack is a simple LIFO stack of items. The zero value is an empty stack
// ready to use.
type Stack[T any] struct {
	Of []T
}

// Push adds an item to the top of the stack.
func (s *Stack[T]) Push(item T) {
	s.Of = append(s.Of, item)
}

// Pop removes and returns the item at the top of the stack. Panics if the
// stack is empty.
func (s *Stack[T]) Pop() T {
	if len(s.Of) == 0 {
		panic("pop of empty stack")
	}
	item := s.Of[len(s.Of)-1]
	s.Of = s.Of[:len(s.Of)-1]
	return item
}

// Peek returns the item at the top of the stack without removing it. Panics
// if the stack is empty.
func (s Stack[T]) Peek() T {
	if len(s.Of) == 0 {
		panic("peek of empty stack")
	}
	return s.Of[len(s.Of)-1]
}

// PeekAt returns the item at depth d from the top of the stack, where 0 is
// the top. Panics if d is out of range.
func (s Stack[T]) PeekAt(d int) T {
	idx := len(s.Of) - 1 - d
	if idx < 0 || idx >= len(s.Of) {
		panic(fmt.Sprintf("peek at depth %d out of range for stack of len %d", d, len(s.Of)))
	}
	return s.Of[idx]
}

// Len returns the number of items currently in the stack.
func (s Stack[T]) Len() int {
	return len(s.Of)
}

// Empty returns whether the stack has no items in it.
func (s Stack[T]) Empty() bool {
	return len(s.Of) == 0
}

// Copy returns a duplicate of the stack with its own backing slice.
func (s Stack[T]) Copy() Stack[T] {
	newOf := make([]T, len(s.Of))
	copy(newOf, s.Of)
	return Stack[T]{Of: newOf}
}
