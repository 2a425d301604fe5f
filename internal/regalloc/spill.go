package regalloc

import (
	"github.com/rv32edu/rv32cc/internal/arena"
	"github.com/rv32edu/rv32cc/internal/cfg"
	"github.com/rv32edu/rv32cc/internal/ir"
	"github.com/rv32edu/rv32cc/internal/rv32"
)

// slotState tracks one reserved scratch register's current occupant
// during the per-block scratch-register cache simulation (spec §4.4).
type slotState struct {
	temp  ir.RegID // ir.RegInvalid means the slot is free
	dirty bool
}

// MaterializeSpills reserves hidden data-segment symbols for every
// spilled interval and rewrites each block's instruction stream with the
// scratch-register cache spec §4.4 describes: each of the k=3
// rv32.SpillReserved registers is simulated as a tiny cache slot,
// reloaded/written-back around the instructions that actually touch a
// spilled temporary, with dirty slots flushed at the end of every block.
//
// Per spec §9, the per-instruction argument scan visits the destination
// operand before the two source operands. This module additionally
// determines "is this temp read anywhere in this instruction" from the
// full operand set (not just the position currently being visited) before
// deciding whether an eviction needs a load: an instruction like
// `ADDI rd, rd, 1` names the same spilled temporary as both Dest and
// Src1, and the destination-first scan must still trigger a load since
// the value is read, even though the Dest position by itself never reads.
func MaterializeSpills(p *ir.Program, c *cfg.CFG, byReg map[ir.RegID]*Interval) {
	tempSym := map[ir.RegID]*ir.Symbol{}
	for _, iv := range byReg {
		if iv.Spilled {
			tempSym[iv.Reg] = p.CreateSpillSymbol(iv.Reg)
		}
	}
	if len(tempSym) == 0 {
		return
	}

	for bp := 0; bp < c.NumBlocks(); bp++ {
		materializeBlock(c, c.BlockAt(bp), tempSym)
	}
}

func materializeBlock(c *cfg.CFG, bi arena.Idx, tempSym map[ir.RegID]*ir.Symbol) {
	origNodes := c.Block(bi).Nodes
	var slots [rv32.NumSpillRegs]slotState
	for i := range slots {
		slots[i].temp = ir.RegInvalid
	}

	var out []arena.Idx
	for ni, nodeIdx := range origNodes {
		instr := c.Node(nodeIdx).Instr
		isLastNode := ni == len(origNodes)-1

		pre := processInstr(instr, &slots, tempSym)
		if len(pre) > 0 {
			if lbl := instr.AttachedLabelID(); lbl != ir.NoLabel {
				pre[0].SetAttachedLabelID(lbl)
				instr.SetAttachedLabelID(ir.NoLabel)
			}
			for _, p := range pre {
				out = append(out, c.NewSyntheticNode(p))
			}
		}

		if isLastNode && rv32.IsTerminator(instr.Opcode) {
			out = append(out, flushDirty(c, &slots, tempSym)...)
			out = append(out, nodeIdx)
		} else {
			out = append(out, nodeIdx)
			if isLastNode {
				out = append(out, flushDirty(c, &slots, tempSym)...)
			}
		}
	}

	c.SetBlockNodes(bi, out)
}

// processInstr rewrites instr's spilled operands to their assigned
// reserved physical register, returning any load/write-back instructions
// that must be inserted immediately before instr.
func processInstr(instr *ir.Instruction, slots *[rv32.NumSpillRegs]slotState, tempSym map[ir.RegID]*ir.Symbol) []*ir.Instruction {
	args := instr.RegArgs() // [Dest, Src1, Src2] — destinations before sources (spec §9).
	needsRead := func(id ir.RegID) bool {
		return (instr.Src1 != nil && instr.Src1.ID == id) || (instr.Src2 != nil && instr.Src2.ID == id)
	}

	var pre []*ir.Instruction
	assigned := map[ir.RegID]int{}
	for _, arg := range args {
		if arg == nil || arg.ID == ir.RegInvalid {
			continue
		}
		sym, isSpill := tempSym[arg.ID]
		if !isSpill {
			continue
		}
		slot, already := assigned[arg.ID]
		if !already {
			slot = pickSlot(slots, arg.ID, assigned)
			pre = append(pre, loadSlot(slots, slot, arg.ID, sym, needsRead(arg.ID), tempSym)...)
			assigned[arg.ID] = slot
		}
		arg.ID = ir.RegID(rv32.SpillReserved[slot])
		if instr.Dest == arg {
			slots[slot].dirty = true
		}
	}
	return pre
}

// pickSlot prefers a slot already holding id, else a free slot, else the
// lowest-numbered slot whose occupant is not another operand of the
// current instruction (those are listed in assigned).
func pickSlot(slots *[rv32.NumSpillRegs]slotState, id ir.RegID, assigned map[ir.RegID]int) int {
	for i, s := range slots {
		if s.temp == id {
			return i
		}
	}
	for i, s := range slots {
		if s.temp == ir.RegInvalid {
			return i
		}
	}
	for i, s := range slots {
		if _, inUse := assigned[s.temp]; !inUse {
			return i
		}
	}
	panic("BUG: regalloc: spill slots exhausted")
}

// loadSlot brings slot's occupant up to date for id: if it already holds
// id, nothing is emitted; otherwise its dirty contents (if any) are
// written back, it is assigned to id, and — only if id is read by this
// instruction — a load is emitted.
func loadSlot(slots *[rv32.NumSpillRegs]slotState, slot int, id ir.RegID, sym *ir.Symbol, needsRead bool, tempSym map[ir.RegID]*ir.Symbol) []*ir.Instruction {
	st := &slots[slot]
	if st.temp == id {
		return nil
	}
	var out []*ir.Instruction
	if st.temp != ir.RegInvalid && st.dirty {
		out = append(out, writeBack(slot, st.temp, tempSym))
	}
	st.temp = id
	st.dirty = false
	if needsRead {
		out = append(out, ir.NewInstruction(rv32.OpLW_G, ir.Reg(ir.RegID(rv32.SpillReserved[slot])), nil, nil, sym.Label, 0))
	}
	return out
}

func writeBack(slot int, temp ir.RegID, tempSym map[ir.RegID]*ir.Symbol) *ir.Instruction {
	sym := tempSym[temp]
	return ir.NewInstruction(rv32.OpSW_G, nil, ir.Reg(ir.RegID(rv32.SpillReserved[slot])), nil, sym.Label, 0)
}

// flushDirty writes back every slot still dirty at the end of a block
// (spec §4.4).
func flushDirty(c *cfg.CFG, slots *[rv32.NumSpillRegs]slotState, tempSym map[ir.RegID]*ir.Symbol) []arena.Idx {
	var out []arena.Idx
	for i := range slots {
		if slots[i].dirty {
			instr := writeBack(i, slots[i].temp, tempSym)
			out = append(out, c.NewSyntheticNode(instr))
			slots[i].dirty = false
		}
	}
	return out
}
