// Package lower implements the target transform (spec §4.5): the pass
// that rewrites every pseudo-instruction the front end and register
// allocator leave behind into instructions a real RV32IM assembler
// accepts. It runs once, after register allocation, as the three
// sub-passes fixPseudoInstructions, fixSyscalls, and
// fixUnsupportedImmediates run in the original tool this back end is
// modeled on (spec §9 records the decision to keep that exact order but
// collapse it into a single post-allocation step rather than splitting it
// around the allocator).
//
// Because allocation has already run, none of these passes may introduce
// a fresh virtual temporary and hope a later pass assigns it a register:
// every scratch register a sub-pass needs is a literal physical register
// id, chosen from registers the allocator never hands out (T6) or that
// caller-save handling has already guaranteed are free at the exact
// instruction window being rewritten (A0, A7 at a syscall).
package lower

import (
	"github.com/rv32edu/rv32cc/internal/ir"
	"github.com/rv32edu/rv32cc/internal/rv32"
)

// Run executes the full target transform over p.Instructions in place.
func Run(p *ir.Program) {
	p.Instructions = lowerPseudoInstructions(p.Instructions)
	p.Instructions = lowerSyscalls(p.Instructions)
	p.Instructions = lowerUnsupportedImmediates(p.Instructions)
}

// phys wraps a physical register as a plain, unconstrained RegArg: once
// allocation has run, naming a physical register directly is the
// constraint, so no whitelist is needed.
func phys(r rv32.RealReg) *ir.RegArg {
	return ir.Reg(ir.RegID(r))
}

// replace appends the instructions in repl to out in place of orig,
// migrating orig's attached label (if any) onto the first replacement.
// Every sub-pass uses this so a label targeting an instruction that gets
// split or rewritten keeps resolving to the right place.
func replace(out []*ir.Instruction, orig *ir.Instruction, repl ...*ir.Instruction) []*ir.Instruction {
	if len(repl) == 0 {
		panic("BUG: lower.replace: empty replacement")
	}
	if lbl := orig.AttachedLabelID(); lbl != ir.NoLabel {
		repl[0].SetAttachedLabelID(lbl)
	}
	return append(out, repl...)
}
