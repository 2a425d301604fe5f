package lower

import (
	"github.com/rv32edu/rv32cc/internal/ir"
	"github.com/rv32edu/rv32cc/internal/rv32"
)

// syscallNumber maps each high-level syscall pseudo-op to the number the
// runtime expects in a7 (spec §6.3).
func syscallNumber(op rv32.Opcode) int32 {
	switch op {
	case rv32.OpCallExit0:
		return rv32.SyscallExit0
	case rv32.OpCallPrintInt:
		return rv32.SyscallPrintInt
	case rv32.OpCallReadInt:
		return rv32.SyscallReadInt
	case rv32.OpCallPrintChar:
		return rv32.SyscallPrintChar
	}
	panic("BUG: syscallNumber: not a syscall pseudo-op: " + op.String())
}

// lowerSyscalls replaces each of the four syscall pseudo-ops with its ABI
// sequence (ground-truth fixSyscalls): load the syscall number into a7,
// optionally move the argument into a0, ECALL, then optionally move the
// result out of a0. Because allocation has already run, a7/a0 are named
// directly rather than allocated fresh and pinned afterward — the
// allocator's caller-save handling already guaranteed nothing else is
// live across this instruction window in those registers (spec §4.4).
func lowerSyscalls(in []*ir.Instruction) []*ir.Instruction {
	out := make([]*ir.Instruction, 0, len(in))
	for _, instr := range in {
		if !rv32.IsSyscallPseudo(instr.Opcode) {
			out = append(out, instr)
			continue
		}

		seq := []*ir.Instruction{
			ir.NewInstruction(rv32.OpLI, phys(rv32.A7), nil, nil, nil, syscallNumber(instr.Opcode)),
		}
		if instr.Src1 != nil {
			seq = append(seq, ir.NewInstruction(rv32.OpADDI, phys(rv32.A0), instr.Src1, nil, nil, 0))
		}

		var ecallDest *ir.RegArg
		if instr.Dest != nil {
			ecallDest = phys(rv32.A0)
		}
		var ecallSrc2 *ir.RegArg
		if instr.Src1 != nil {
			ecallSrc2 = phys(rv32.A0)
		}
		seq = append(seq, ir.NewInstruction(rv32.OpECALL, ecallDest, phys(rv32.A7), ecallSrc2, nil, 0))

		if instr.Dest != nil {
			seq = append(seq, ir.NewInstruction(rv32.OpADDI, instr.Dest, phys(rv32.A0), nil, nil, 0))
		}

		out = replace(out, instr, seq...)
	}
	return out
}
