package grammar

import (
	"strconv"

	"github.com/dekarrin/lrtk/internal/util"
)

// LR0_CLOSURE computes the closure of the given set of LR(0) items, per
// Algorithm 4.53 of the purple dragon book: repeatedly add, for every item
// A -> α•Bβ in the set, every item B -> •γ for each production of B, until
// no more items can be added.
func (g Grammar) LR0_CLOSURE(items util.SVSet[LR0Item]) util.SVSet[LR0Item] {
	closure := util.NewSVSet[LR0Item]()
	for _, k := range items.Elements() {
		closure.Set(k, items.Get(k))
	}

	changed := true
	for changed {
		changed = false
		for _, k := range closure.Elements() {
			item := closure.Get(k)
			nextSym, ok := item.DotSymbol()
			if !ok {
				continue
			}
			for _, prod := range g.After(item) {
				right := []string(prod)
				if len(right) == 1 && right[0] == Epsilon[0] {
					right = nil
				}
				newItem := LR0Item{NonTerminal: nextSym, Left: nil, Right: append([]string{}, right...)}
				key := newItem.String()
				if !closure.Has(key) {
					closure.Set(key, newItem)
					changed = true
				}
			}
		}
	}

	return closure
}

// LR0_GOTO computes GOTO(items, sym): advance the dot past sym in every item
// of items where sym immediately follows the dot, then take the closure of
// the result. Per Algorithm 4.54 of the purple dragon book.
func (g Grammar) LR0_GOTO(items util.SVSet[LR0Item], sym string) util.SVSet[LR0Item] {
	moved := util.NewSVSet[LR0Item]()
	for _, k := range items.Elements() {
		item := items.Get(k)
		if newItem, ok := item.Next(sym); ok {
			moved.Set(newItem.String(), newItem)
		}
	}
	return g.LR0_CLOSURE(moved)
}

// CanonicalLR0Items computes the canonical collection of sets of LR(0) items
// for the augmented grammar, per Algorithm 4.55. The returned map is keyed by
// an assigned state name ("0", "1", ...) rather than by content, with "0"
// being the initial state {[S' -> •S]}.
func (g Grammar) CanonicalLR0Items() util.VSet[string, util.SVSet[LR0Item]] {
	aug := g
	start := g.start

	initialKernel := util.NewSVSet[LR0Item]()
	initItem := LR0Item{NonTerminal: start, Right: append([]string{}, firstProdOf(aug, start)...)}
	initialKernel.Set(initItem.String(), initItem)

	C := newSVSetOfSets()
	initialClosure := aug.LR0_CLOSURE(initialKernel)
	order := []string{}
	seen := map[string]string{}

	stateName := func(items util.SVSet[LR0Item]) string {
		return CoreKey(items)
	}

	nextID := 0
	name0 := stateName(initialClosure)
	seen[name0] = "0"
	C.Set("0", initialClosure)
	order = append(order, "0")
	nextID = 1

	symbols := append(append([]string{}, aug.Terminals()...), aug.NonTerminals()...)

	changed := true
	for changed {
		changed = false
		for _, sID := range append([]string{}, order...) {
			items := C.Get(sID)
			for _, sym := range symbols {
				goTo := aug.LR0_GOTO(items, sym)
				if goTo.Len() == 0 {
					continue
				}
				key := stateName(goTo)
				if _, ok := seen[key]; !ok {
					id := strconv.Itoa(nextID)
					nextID++
					seen[key] = id
					C.Set(id, goTo)
					order = append(order, id)
					changed = true
				}
			}
		}
	}

	return C
}

// LR0Items returns the LR(0) item graph for the grammar (component D): every
// dotted item A -> α•β for every production of every rule, at every dot
// position from 0 to len(rhs). This is the flat collection of individual
// items, not the canonical collection of item *sets* -- see
// CanonicalLR0Items for that.
func (g Grammar) LR0Items() []LR0Item {
	var items []LR0Item
	for _, nt := range g.ruleOrder {
		for _, prod := range g.rules[nt].Productions {
			body := []string(prod)
			if len(body) == 1 && body[0] == Epsilon[0] {
				body = nil
			}
			for dot := 0; dot <= len(body); dot++ {
				items = append(items, LR0Item{
					NonTerminal: nt,
					Left:        append([]string{}, body[:dot]...),
					Right:       append([]string{}, body[dot:]...),
				})
			}
		}
	}
	return items
}

func firstProdOf(g Grammar, nt string) []string {
	prods := g.rules[nt].Productions
	if len(prods) == 0 {
		return nil
	}
	p := prods[0]
	if len(p) == 1 && p[0] == Epsilon[0] {
		return nil
	}
	return []string(p)
}

// LR1_CLOSURE computes the closure of a set of LR(1) items, per Algorithm
// 4.62 of the purple dragon book: like LR0_CLOSURE, but lookaheads are
// propagated into the added items via FIRST(βa) for each item A -> α•Bβ, a.
func (g Grammar) LR1_CLOSURE(items util.SVSet[LR1Item]) util.SVSet[LR1Item] {
	closure := util.NewSVSet[LR1Item]()
	for _, k := range items.Elements() {
		closure.Set(k, items.Get(k))
	}

	changed := true
	for changed {
		changed = false
		for _, k := range closure.Elements() {
			item := closure.Get(k)
			B, ok := item.DotSymbol()
			if !ok {
				continue
			}
			beta := item.Right[1:]

			lookaheads := g.firstOfSequence(append(append([]string{}, beta...), item.Lookahead))

			for _, prod := range g.After(item.LR0Item) {
				right := []string(prod)
				if len(right) == 1 && right[0] == Epsilon[0] {
					right = nil
				}
				for _, a := range lookaheads.Elements() {
					if a == Epsilon[0] {
						continue
					}
					newItem := LR1Item{
						LR0Item:   LR0Item{NonTerminal: B, Right: append([]string{}, right...)},
						Lookahead: a,
					}
					key := newItem.String()
					if !closure.Has(key) {
						closure.Set(key, newItem)
						changed = true
					}
				}
			}
		}
	}

	return closure
}

// LR1_GOTO computes GOTO(items, sym) over a set of LR(1) items: the LR(0)
// move, but preserving and re-closing over lookaheads.
func (g Grammar) LR1_GOTO(items util.SVSet[LR1Item], sym string) util.SVSet[LR1Item] {
	moved := util.NewSVSet[LR1Item]()
	for _, k := range items.Elements() {
		item := items.Get(k)
		if newItem, ok := item.Next(sym); ok {
			moved.Set(newItem.String(), newItem)
		}
	}
	return g.LR1_CLOSURE(moved)
}

// CoreKey returns a stable string key for the LR(0) core of an LR0Item set,
// used to recognize when two states' kernels describe the same core.
func CoreKey(items util.SVSet[LR0Item]) string {
	keys := util.Alphabetized[string](castKeys(items))
	out := ""
	for _, k := range keys {
		out += k + "\x00"
	}
	return out
}

// castKeys adapts an SVSet's element keys into util.StringSet so
// util.Alphabetized can sort them.
func castKeys(items util.SVSet[LR0Item]) util.ISet[string] {
	return util.StringSetOf(items.Elements())
}

func newSVSetOfSets() util.VSet[string, util.SVSet[LR0Item]] {
	return util.NewSVSet[util.SVSet[LR0Item]]()
}
