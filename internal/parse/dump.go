package parse

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/rosed"
)

// String renders the ACTION/GOTO tables as a human-readable grid, state 0
// first, for debugging and for the tables-dump artifact spec §8 describes.
//
// Grounded on tunaq/internal/ictiobus/parse/lalr.go's lalr1Table.String:
// same column layout (state | ACTION columns per terminal | GOTO columns
// per non-terminal), same use of rosed.InsertTableOpts for the grid.
func (t *Table) String() string {
	stateNames, stateRefs := t.stateNumbering()

	allTerms := append([]string{}, t.g.Terminals()...)
	allTerms = append(allTerms, EndOfInput)

	data := [][]string{}

	headers := []string{"S", "|"}
	for _, term := range allTerms {
		headers = append(headers, fmt.Sprintf("A:%s", term))
	}
	headers = append(headers, "|")
	for _, nt := range t.g.NonTerminals() {
		headers = append(headers, fmt.Sprintf("G:%s", nt))
	}
	data = append(data, headers)

	for _, state := range stateNames {
		row := []string{stateRefs[state], "|"}

		if act, ok := t.Defaulted(state); ok {
			cell := fmt.Sprintf("*r%d: %s -> %s", act.ProdNum, act.Symbol, act.Production.String())
			row = append(row, cell)
			for range allTerms[1:] {
				row = append(row, "")
			}
		} else {
			for _, term := range allTerms {
				act := t.Action(state, term)
				cell := ""
				switch act.Type {
				case LRAccept:
					cell = "acc"
				case LRReduce:
					cell = fmt.Sprintf("r%d: %s -> %s", act.ProdNum, act.Symbol, act.Production.String())
				case LRShift:
					cell = fmt.Sprintf("s%s", stateRefs[act.State])
				case LRError:
					// blank
				}
				row = append(row, cell)
			}
		}

		row = append(row, "|")
		for _, nt := range t.g.NonTerminals() {
			cell := ""
			if target, ok := t.Goto(state, nt); ok {
				cell = stateRefs[target]
			}
			row = append(row, cell)
		}

		data = append(data, row)
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

// stateNumbering assigns every automaton state a small display number, state
// 0 always being the initial state, so that String, ItemSetsString, and any
// shift-target references all agree on which state is which.
func (t *Table) stateNumbering() ([]string, map[string]string) {
	stateNames := t.States()
	sort.Strings(stateNames)

	for i := range stateNames {
		if stateNames[i] == t.Initial() {
			stateNames[0], stateNames[i] = stateNames[i], stateNames[0]
			break
		}
	}

	stateRefs := map[string]string{}
	for i := range stateNames {
		stateRefs[stateNames[i]] = fmt.Sprintf("%d", i)
	}
	return stateNames, stateRefs
}

// ItemSetsString renders every state's LR(1) item set, one state per
// paragraph, using the same state numbering String uses for the ACTION/GOTO
// grid.
func (t *Table) ItemSetsString() string {
	stateNames, _ := t.stateNumbering()

	var sb strings.Builder
	for i, state := range stateNames {
		fmt.Fprintf(&sb, "state %d:\n", i)
		items := t.dfa.GetValue(state)
		elems := items.Elements()
		sort.Strings(elems)
		for _, itemStr := range elems {
			fmt.Fprintf(&sb, "    [%s]\n", itemStr)
		}
		sb.WriteRune('\n')
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// GrammarListing renders the grammar's rules plus its FIRST/FOLLOW sets, for
// inclusion ahead of String in a tables-dump artifact (spec §6, "a human-
// readable tables dump: grammar listing, first/follow sets, per-state item
// sets, per-state action and goto lines, conflict annotations").
func (t *Table) GrammarListing() string {
	return t.g.String() + "\n" + t.g.FirstFollowListing()
}

// ConflictsString renders every recorded conflict diagnostic as one line
// per conflict, state and symbol first, for inclusion alongside String in a
// tables-dump artifact.
func (t *Table) ConflictsString() string {
	if len(t.conflicts) == 0 {
		return "(no conflicts)"
	}

	data := [][]string{{"STATE", "SYMBOL", "DESCRIPTION"}}
	for _, c := range t.conflicts {
		data = append(data, []string{c.State, c.Symbol, c.Description})
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 20, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}
