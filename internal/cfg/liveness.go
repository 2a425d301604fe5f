package cfg

import "github.com/rv32edu/rv32cc/internal/arena"

// ComputeLiveness runs the standard backward dataflow equations to a
// fixed point (spec §4.3): for node n with defs D(n), uses U(n),
//
//	out(n) = UNION of in(s) over successors s
//	in(n)  = (out(n) - D(n)) UNION U(n)
//
// The architectural zero register is excluded from every live set.
func (c *CFG) ComputeLiveness() {
	for _, bi := range c.Order {
		b := c.Block(bi)
		for _, ni := range b.Nodes {
			n := c.Node(ni)
			n.LiveIn = NewRegSet()
			n.LiveOut = NewRegSet()
		}
	}

	zeroIdx, hasZero := c.regIndex[0]

	changed := true
	for changed {
		changed = false
		for bpos := len(c.Order) - 1; bpos >= 0; bpos-- {
			b := c.Block(c.Order[bpos])
			for npos := len(b.Nodes) - 1; npos >= 0; npos-- {
				n := c.Node(b.Nodes[npos])

				out := NewRegSet()
				if npos+1 < len(b.Nodes) {
					out.Union(c.Node(b.Nodes[npos+1]).LiveIn)
				} else {
					for _, succ := range b.Succs {
						if succ == TerminalBlock {
							continue
						}
						sb := c.Block(arena.Idx(succ))
						out.Union(c.Node(sb.Nodes[0]).LiveIn)
					}
				}
				if !out.Equal(n.LiveOut) {
					n.LiveOut = out
					changed = true
				}

				in := out.Clone()
				if n.Def >= 0 {
					in.Remove(n.Def)
				}
				if n.Use1 >= 0 {
					in.Add(n.Use1)
				}
				if n.Use2 >= 0 {
					in.Add(n.Use2)
				}
				if hasZero {
					in.Remove(int(zeroIdx))
				}
				if !in.Equal(n.LiveIn) {
					n.LiveIn = in
					changed = true
				}
			}
		}
	}
}

// BlockLiveIn returns the live-in set reported for a block: the in set of
// its first node (spec §4.3).
func (c *CFG) BlockLiveIn(bi arena.Idx) *RegSet {
	b := c.Block(bi)
	return c.Node(b.Nodes[0]).LiveIn
}

// BlockLiveOut returns the live-out set reported for a block: the out set
// of its last node (spec §4.3).
func (c *CFG) BlockLiveOut(bi arena.Idx) *RegSet {
	b := c.Block(bi)
	return c.Node(b.Nodes[len(b.Nodes)-1]).LiveOut
}
