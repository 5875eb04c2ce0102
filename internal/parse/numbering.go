package parse

// Numbering assigns a stable, dense global number to every production in a
// grammar, in the order the external GrammarSpec declared them (component G's
// contract; see spec §3, "production numbers are dense, starting at 0" and
// §4.E.4's "pick the production with the lower number" reduce/reduce rule).
// The grammar package itself has no notion of a flat production number --
// its Rule type only tracks per-non-terminal alternative order -- so the
// binding layer that builds a grammar.Grammar from an ordered list of
// productions is responsible for assigning numbers as it goes and handing
// the result to the table builder and the parse engine so both agree on
// which integer names which rule.
type Numbering struct {
	order map[prodKey]int
	rev   []prodKey
}

type prodKey struct {
	NonTerminal string
	AltIndex    int
}

// NewNumbering returns an empty Numbering ready to have productions
// assigned to it in declaration order.
func NewNumbering() *Numbering {
	return &Numbering{order: map[prodKey]int{}}
}

// Assign records the next production number for the altIndex'th alternative
// of nt (0-indexed, matching the position of the alternative within
// grammar.Grammar.Rule(nt).Productions) and returns the number assigned.
// Calls must be made in the same order the productions were declared.
func (n *Numbering) Assign(nt string, altIndex int) int {
	k := prodKey{NonTerminal: nt, AltIndex: altIndex}
	num := len(n.rev)
	n.order[k] = num
	n.rev = append(n.rev, k)
	return num
}

// Of returns the production number assigned to the altIndex'th alternative
// of nt, or -1 if none was assigned.
func (n *Numbering) Of(nt string, altIndex int) int {
	if n == nil {
		return -1
	}
	if v, ok := n.order[prodKey{NonTerminal: nt, AltIndex: altIndex}]; ok {
		return v
	}
	return -1
}

// Len returns the number of productions assigned a number.
func (n *Numbering) Len() int {
	if n == nil {
		return 0
	}
	return len(n.rev)
}

// At returns the non-terminal and alternative index assigned production
// number num, and whether num was in range.
func (n *Numbering) At(num int) (nt string, altIndex int, ok bool) {
	if n == nil || num < 0 || num >= len(n.rev) {
		return "", 0, false
	}
	k := n.rev[num]
	return k.NonTerminal, k.AltIndex, true
}
