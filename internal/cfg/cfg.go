// Package cfg builds a control-flow graph over a Program's instruction
// list and computes liveness over it (spec §4.2, §4.3). The CFG is a
// transient, non-owning view: it never mutates the Program's
// instructions while being built, and back-pointers among its own blocks
// and nodes are arena indices (spec §9), not pointers, so the whole
// structure can be thrown away cheaply between compilations.
package cfg

import (
	"fmt"

	"github.com/rv32edu/rv32cc/internal/arena"
	"github.com/rv32edu/rv32cc/internal/ir"
	"github.com/rv32edu/rv32cc/internal/rv32"
)

// TerminalBlock is the sentinel block index denoting the CFG's
// distinguished terminal block: never present in CFG.Order, always empty,
// the sole successor of every exit instruction (spec §3).
const TerminalBlock = -1

// RegRecord is the per-CFG interned record for one distinct register
// identifier (spec §4.2): besides identity, it accumulates the
// INTERSECTION of every physical-register whitelist attached to any
// instruction argument bearing that id.
type RegRecord struct {
	Reg ir.RegID
	// Constraint is nil until the first whitelisted argument is seen, at
	// which point it holds the running intersection. A non-nil, empty
	// slice means the intersection has collapsed to nothing: a
	// translation failure (spec §7).
	Constraint       []rv32.RealReg
	everyConstrained bool
}

// Node wraps one instruction with its interned def/use indices (dense
// indices into the CFG's register table, doubling as RegSet bit
// positions) and live-in/live-out sets (spec §3). Node is arena-allocated;
// its back-pointer to the owning block is an arena.Idx (spec §9), not a
// pointer.
type Node struct {
	Instr *ir.Instruction

	Def  int // index into the CFG's register table, or -1
	Use1 int
	Use2 int

	LiveIn  *RegSet
	LiveOut *RegSet

	block arena.Idx // owning Block, as an index into the CFG's block arena
}

// Block is a non-empty ordered run of nodes (spec §3). Block is
// arena-allocated; Preds/Succs are block-arena indices (or TerminalBlock),
// never pointers, per spec §9.
type Block struct {
	Nodes []arena.Idx // node-arena indices, in block order
	Preds []int       // block-arena indices, TerminalBlock excluded
	Succs []int       // block-arena indices, or TerminalBlock
}

// CFG owns its blocks/nodes and the per-CFG register table; it is a
// transient view over a Program's instructions (spec §3, §4.2). Ownership
// is a tree rooted here: blocks, nodes, and the register table all live in
// arenas owned by the CFG, and every cross-link among them is an index
// into one of those arenas rather than a pointer (spec §9), so the whole
// structure is freed in one step when the CFG is dropped.
type CFG struct {
	Program *ir.Program

	blockPool arena.Pool[Block]
	nodePool  arena.Pool[Node]
	Order     []arena.Idx // block-arena indices, in source order

	regPool  arena.Pool[RegRecord]
	regIndex map[ir.RegID]arena.Idx
}

// Block returns the block at arena index idx.
func (c *CFG) Block(idx arena.Idx) *Block { return c.blockPool.View(idx) }

// Node returns the node at arena index idx.
func (c *CFG) Node(idx arena.Idx) *Node { return c.nodePool.View(idx) }

// NumBlocks returns how many blocks exist in source order.
func (c *CFG) NumBlocks() int { return len(c.Order) }

// BlockAt returns the block-arena index at source-order position i.
func (c *CFG) BlockAt(i int) arena.Idx { return c.Order[i] }

// RegRecord returns the interned record at dense arena index idx.
func (c *CFG) RegRecord(idx int) *RegRecord { return c.regPool.View(arena.Idx(idx)) }

// NumRegs returns how many distinct registers were interned.
func (c *CFG) NumRegs() int { return c.regPool.Allocated() }

// RegIndex returns the dense register-table index interned for id, if
// any. Used by the allocator to map an instruction operand's register id
// back to its live interval.
func (c *CFG) RegIndex(id ir.RegID) (int, bool) {
	idx, ok := c.regIndex[id]
	return int(idx), ok
}

// NewSyntheticNode allocates a node wrapping instr with no def/use/
// liveness information, for passes (spill materialization) that splice
// brand-new instructions into a block after liveness is no longer
// consulted.
func (c *CFG) NewSyntheticNode(instr *ir.Instruction) arena.Idx {
	idx := c.nodePool.Allocate()
	*c.nodePool.View(idx) = Node{Instr: instr, Def: -1, Use1: -1, Use2: -1}
	return idx
}

// SetBlockNodes replaces the node list of the block at idx, used by the
// spill materializer after it rebuilds a block's instruction stream with
// injected loads/stores.
func (c *CFG) SetBlockNodes(idx arena.Idx, nodes []arena.Idx) {
	c.blockPool.View(idx).Nodes = nodes
}

func (c *CFG) internReg(id ir.RegID, whitelist []rv32.RealReg) (int, error) {
	idx, ok := c.regIndex[id]
	if !ok {
		idx = c.regPool.Allocate()
		*c.regPool.View(idx) = RegRecord{Reg: id}
		c.regIndex[id] = idx
	}
	rec := c.regPool.View(idx)
	if whitelist == nil {
		return int(idx), nil
	}
	if !rec.everyConstrained {
		rec.Constraint = append([]rv32.RealReg(nil), whitelist...)
		rec.everyConstrained = true
		return int(idx), nil
	}
	rec.Constraint = intersect(rec.Constraint, whitelist)
	if len(rec.Constraint) == 0 {
		return int(idx), fmt.Errorf("unsatisfiable register constraint for temp %d: whitelists do not intersect", id)
	}
	return int(idx), nil
}

func intersect(a, b []rv32.RealReg) []rv32.RealReg {
	set := make(map[rv32.RealReg]bool, len(b))
	for _, r := range b {
		set[r] = true
	}
	out := make([]rv32.RealReg, 0, len(a))
	for _, r := range a {
		if set[r] {
			out = append(out, r)
		}
	}
	return out
}
