package regalloc

import (
	"github.com/rv32edu/rv32cc/internal/cfg"
	"github.com/rv32edu/rv32cc/internal/ir"
	"github.com/rv32edu/rv32cc/internal/rv32"
)

// Run executes the full allocator pipeline (spec §4.4) over an already-
// built CFG: liveness, interval derivation, constraint seeding and
// caller-save refinement, linear scan, operand rewriting, and spill
// materialization. On return, p.Instructions holds the CFG's
// linearization with every temporary register replaced by a concrete
// physical register id in [0, 32) (spec §8's allocator invariant); c
// itself is left in its post-spill-materialization shape and should not
// be reused for another pass.
func Run(p *ir.Program, c *cfg.CFG) {
	c.ComputeLiveness()

	intervals := DeriveIntervals(c)
	SeedConstraints(intervals)
	ApplyCallerSave(intervals, collectCallSites(c))
	LinearScan(intervals)

	byReg := make(map[ir.RegID]*Interval, len(intervals))
	for _, iv := range intervals {
		byReg[iv.Reg] = iv
	}

	rewriteAssigned(c, byReg)
	MaterializeSpills(p, c, byReg)

	p.Instructions = c.ToProgramOrder()
}

// collectCallSites scans the CFG in program order for the high-level
// syscall pseudo-ops, the only call-like instructions this module's
// caller-save handling needs to account for (spec §4.4; see
// ApplyCallerSave's doc comment for why lowering's ECALL/ABI pinning
// doesn't need to be visible yet).
func collectCallSites(c *cfg.CFG) []CallSite {
	order, index := nodeOrder(c)
	var calls []CallSite
	for _, ref := range order {
		n := c.Node(ref.node)
		if !rv32.IsSyscallPseudo(n.Instr.Opcode) {
			continue
		}
		var pinned []rv32.RealReg
		for _, arg := range n.Instr.RegArgs() {
			if arg != nil {
				pinned = append(pinned, arg.Whitelist...)
			}
		}
		calls = append(calls, CallSite{Pos: index[ref.node], Pinned: pinned})
	}
	return calls
}

// rewriteAssigned rewrites every non-spilled temporary operand in the CFG
// to its interval's assigned physical register. Spilled operands are left
// as their original temporary id for MaterializeSpills to rewrite.
func rewriteAssigned(c *cfg.CFG, byReg map[ir.RegID]*Interval) {
	for bp := 0; bp < c.NumBlocks(); bp++ {
		b := c.Block(c.BlockAt(bp))
		for _, ni := range b.Nodes {
			instr := c.Node(ni).Instr
			for _, arg := range instr.RegArgs() {
				if arg == nil || arg.ID < ir.FirstTemp {
					continue
				}
				iv, ok := byReg[arg.ID]
				if !ok || iv.Spilled {
					continue
				}
				arg.ID = ir.RegID(iv.PhysReg)
			}
		}
	}
}
