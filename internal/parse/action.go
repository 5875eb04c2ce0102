package parse

import (
	"fmt"

	"github.com/dekarrin/lrtk/internal/grammar"
)

// LRActionType identifies which of the four things an ACTION table entry
// tells the parse engine to do (spec §3, "ACTION table").
type LRActionType int

const (
	LRShift LRActionType = iota
	LRReduce
	LRAccept
	LRError
)

func (t LRActionType) String() string {
	switch t {
	case LRShift:
		return "shift"
	case LRReduce:
		return "reduce"
	case LRAccept:
		return "accept"
	default:
		return "error"
	}
}

// LRAction is a single ACTION table entry.
type LRAction struct {
	Type LRActionType

	// Production is the production to reduce, A -> β, used when Type is
	// LRReduce.
	Production grammar.Production

	// Symbol is the A of A -> β, used when Type is LRReduce.
	Symbol string

	// ProdNum is the global production number of Production, used when Type
	// is LRReduce; see Numbering.
	ProdNum int

	// State is the state to shift to, used when Type is LRShift.
	State string
}

func (act LRAction) String() string {
	switch act.Type {
	case LRAccept:
		return "ACTION<accept>"
	case LRError:
		return "ACTION<error>"
	case LRReduce:
		return fmt.Sprintf("ACTION<reduce %d: %s -> %s>", act.ProdNum, act.Symbol, act.Production.String())
	case LRShift:
		return fmt.Sprintf("ACTION<shift %s>", act.State)
	default:
		return "ACTION<unknown>"
	}
}

func (act LRAction) Equal(o any) bool {
	other, ok := o.(LRAction)
	if !ok {
		otherPtr, isPtr := o.(*LRAction)
		if !isPtr || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	return act.Type == other.Type &&
		act.Production.Equal(other.Production) &&
		act.State == other.State &&
		act.Symbol == other.Symbol
}
