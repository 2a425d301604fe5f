// Package regalloc implements linear-scan register allocation with
// physical-register constraints and spill materialization (spec §4.4):
// live-interval derivation over a built CFG, constraint seeding and
// refinement, the linear scan itself, and the spill scratch-register
// cache that rewrites spilled operands to reserved physical registers.
//
// The architecture mirrors the teacher's backend/regalloc package (ordered
// live intervals, a RegSet-style bitmask of free registers, deterministic
// tie-breaks via sort.SliceStable) even though the concrete algorithm here
// is linear scan rather than the teacher's graph coloring; the algorithm
// itself is grounded in acse/reg_alloc.c.
package regalloc

import (
	"github.com/rv32edu/rv32cc/internal/arena"
	"github.com/rv32edu/rv32cc/internal/cfg"
	"github.com/rv32edu/rv32cc/internal/ir"
	"github.com/rv32edu/rv32cc/internal/rv32"
)

// Interval is one temporary's live range (spec §3, §4.4): the dense CFG
// register-table index it was derived from, the node-index span
// [Start, End], its physical-register constraint set, and (after the
// scan) either an assigned physical register or a spilled flag.
type Interval struct {
	RegIdx int // dense index into the owning CFG's register table
	Reg    ir.RegID
	Start  int
	End    int

	// Constraint is the allowed physical-register set, in preference
	// order. Nil until seeded.
	Constraint []rv32.RealReg
	// autoSeeded marks intervals whose constraint was the default full
	// pool rather than an explicit whitelist from the IR (spec §4.4's
	// "for every interval lacking a whitelist").
	autoSeeded bool

	PhysReg rv32.RealReg
	Spilled bool
}

// nodeRef names one CFG node by its owning block and its node-arena index.
type nodeRef struct {
	block arena.Idx
	node  arena.Idx
}

// nodeOrder flattens a CFG's nodes into program order and returns the
// ordered list alongside a node-arena-index -> monotone-position map
// (spec §4.4's "assigning each node a monotone index").
func nodeOrder(c *cfg.CFG) (order []nodeRef, index map[arena.Idx]int) {
	index = map[arena.Idx]int{}
	pos := 0
	for bp := 0; bp < c.NumBlocks(); bp++ {
		bi := c.BlockAt(bp)
		b := c.Block(bi)
		for _, ni := range b.Nodes {
			order = append(order, nodeRef{block: bi, node: ni})
			index[ni] = pos
			pos++
		}
	}
	return order, index
}

// DeriveIntervals walks c in program order and builds one live interval
// per distinct temporary register referenced by any node's live-in,
// live-out, or def set (spec §4.4). Architectural registers (ids below
// ir.FirstTemp) are never given intervals: they already denote concrete
// physical registers and pass through allocation unchanged. The result is
// ordered by non-decreasing start index, ties broken by interned-table
// order (i.e. first reference order), matching spec §5's ordering
// contract.
func DeriveIntervals(c *cfg.CFG) []*Interval {
	order, _ := nodeOrder(c)

	byRegIdx := map[int]*Interval{}
	var list []*Interval

	extend := func(regIdx, pos int) {
		rec := c.RegRecord(regIdx)
		if rec.Reg < ir.FirstTemp {
			return
		}
		iv, ok := byRegIdx[regIdx]
		if !ok {
			iv = &Interval{RegIdx: regIdx, Reg: rec.Reg, Start: pos, End: pos}
			if rec.Constraint != nil {
				iv.Constraint = append([]rv32.RealReg(nil), rec.Constraint...)
			}
			byRegIdx[regIdx] = iv
			list = append(list, iv)
			return
		}
		if pos < iv.Start {
			iv.Start = pos
		}
		if pos > iv.End {
			iv.End = pos
		}
	}

	for pos, ref := range order {
		n := c.Node(ref.node)
		if n.Def >= 0 {
			extend(n.Def, pos)
		}
		if n.Use1 >= 0 {
			extend(n.Use1, pos)
		}
		if n.Use2 >= 0 {
			extend(n.Use2, pos)
		}
		n.LiveIn.Each(func(i int) { extend(i, pos) })
		n.LiveOut.Each(func(i int) { extend(i, pos) })
	}

	sortIntervalsByStart(list)
	return list
}
