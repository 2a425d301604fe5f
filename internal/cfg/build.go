package cfg

import (
	"fmt"

	"github.com/rv32edu/rv32cc/internal/arena"
	"github.com/rv32edu/rv32cc/internal/ir"
	"github.com/rv32edu/rv32cc/internal/rv32"
)

// Build partitions p's instruction list into basic blocks and links
// predecessor/successor edges (spec §4.2). It returns a translation
// failure if a branch/jump target label cannot be resolved to any block,
// or if a register's accumulated whitelist intersection collapses to
// empty.
func Build(p *ir.Program) (*CFG, error) {
	c := &CFG{
		Program:   p,
		blockPool: arena.NewPool[Block](),
		nodePool:  arena.NewPool[Node](),
		regPool:   arena.NewPool[RegRecord](),
		regIndex:  map[ir.RegID]arena.Idx{},
	}

	if err := c.partition(p); err != nil {
		return nil, err
	}
	if err := c.computeDefUse(p); err != nil {
		return nil, err
	}
	if err := c.computeEdges(p); err != nil {
		return nil, err
	}
	return c, nil
}

// instrIsTerminator reports whether instr may only appear as a block's
// last instruction.
func instrIsTerminator(instr *ir.Instruction) bool {
	return rv32.IsTerminator(instr.Opcode)
}

func (c *CFG) partition(p *ir.Program) error {
	var curIdx arena.Idx
	haveCur := false
	prevWasTerminator := true // forces a new block at the very start
	for _, instr := range p.Instructions {
		startsNew := instr.Label(p) != nil || prevWasTerminator
		if startsNew || !haveCur {
			curIdx = c.blockPool.Allocate()
			c.Order = append(c.Order, curIdx)
			haveCur = true
		}
		nodeIdx := c.nodePool.Allocate()
		node := c.nodePool.View(nodeIdx)
		*node = Node{Instr: instr, Def: -1, Use1: -1, Use2: -1, block: curIdx}
		blk := c.blockPool.View(curIdx)
		blk.Nodes = append(blk.Nodes, nodeIdx)
		prevWasTerminator = instrIsTerminator(instr)
	}
	return nil
}

func (c *CFG) computeDefUse(p *ir.Program) error {
	for _, bi := range c.Order {
		b := c.blockPool.View(bi)
		for _, ni := range b.Nodes {
			n := c.nodePool.View(ni)
			instr := n.Instr
			if instr.Dest != nil && instr.Dest.ID >= 0 {
				idx, err := c.internReg(instr.Dest.ID, instr.Dest.Whitelist)
				if err != nil {
					return err
				}
				n.Def = idx
			}
			if instr.Src1 != nil && instr.Src1.ID >= 0 {
				idx, err := c.internReg(instr.Src1.ID, instr.Src1.Whitelist)
				if err != nil {
					return err
				}
				n.Use1 = idx
			}
			if instr.Src2 != nil && instr.Src2.ID >= 0 {
				idx, err := c.internReg(instr.Src2.ID, instr.Src2.Whitelist)
				if err != nil {
					return err
				}
				n.Use2 = idx
			}
		}
	}
	return nil
}

// labelToBlock resolves every block's leading label (if any) to the
// block's arena index, following alias redirection (spec §9).
func (c *CFG) labelToBlock(p *ir.Program) map[ir.LabelID]arena.Idx {
	m := map[ir.LabelID]arena.Idx{}
	for _, bi := range c.Order {
		b := c.blockPool.View(bi)
		first := c.nodePool.View(b.Nodes[0])
		if lbl := first.Instr.Label(p); lbl != nil {
			m[lbl.ID] = bi
		}
	}
	return m
}

func (c *CFG) computeEdges(p *ir.Program) error {
	byLabel := c.labelToBlock(p)
	for pos, bi := range c.Order {
		b := c.blockPool.View(bi)
		last := c.nodePool.View(b.Nodes[len(b.Nodes)-1]).Instr
		switch {
		case rv32.IsExit(last.Opcode):
			c.addEdge(bi, TerminalBlock)
		case rv32.IsJumpWithLabel(last.Opcode):
			if last.Addr == nil {
				return fmt.Errorf("malformed CFG: branch/jump instruction missing address-parameter label")
			}
			target := p.LabelByID(last.Addr.ID)
			if target == nil {
				return fmt.Errorf("unresolved label in jump/branch target (id %d)", last.Addr.ID)
			}
			tb, ok := byLabel[target.ID]
			if !ok {
				return fmt.Errorf("unresolved label %q: does not start any block", target.Name())
			}
			c.addEdgeTo(bi, tb)
			if !rv32.IsUnconditionalJump(last.Opcode) {
				c.addEdge(bi, c.fallthroughTarget(pos))
			}
		default:
			c.addEdge(bi, c.fallthroughTarget(pos))
		}
	}
	return nil
}

// fallthroughTarget returns the block-index that falls through from
// source-order position pos, or TerminalBlock if pos is the last block.
func (c *CFG) fallthroughTarget(pos int) int {
	if pos+1 < len(c.Order) {
		return int(c.Order[pos+1])
	}
	return TerminalBlock
}

// addEdge adds an edge whose target is either a real block index (as
// produced by fallthroughTarget, which encodes TerminalBlock as -1) or the
// terminal-block sentinel.
func (c *CFG) addEdge(from arena.Idx, to int) {
	fromBlk := c.blockPool.View(from)
	if to == TerminalBlock {
		fromBlk.Succs = addUniqueInt(fromBlk.Succs, TerminalBlock)
		return
	}
	c.addEdgeTo(from, arena.Idx(to))
}

// addEdgeTo adds an edge from a block-arena index to another block-arena
// index (never the terminal sentinel).
func (c *CFG) addEdgeTo(from, to arena.Idx) {
	fromBlk := c.blockPool.View(from)
	fromBlk.Succs = addUniqueInt(fromBlk.Succs, int(to))
	toBlk := c.blockPool.View(to)
	toBlk.Preds = addUniqueInt(toBlk.Preds, int(from))
}

func addUniqueInt(s []int, v int) []int {
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}

// ToProgramOrder rebuilds a flat instruction list from the CFG, in block
// order (spec §4.2's "linearization (reverse)"); the terminal block
// contributes nothing.
func (c *CFG) ToProgramOrder() []*ir.Instruction {
	var out []*ir.Instruction
	for _, bi := range c.Order {
		b := c.blockPool.View(bi)
		for _, ni := range b.Nodes {
			out = append(out, c.nodePool.View(ni).Instr)
		}
	}
	return out
}
