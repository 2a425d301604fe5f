package lower

import (
	"github.com/rv32edu/rv32cc/internal/ir"
	"github.com/rv32edu/rv32cc/internal/rv32"
)

// lowerUnsupportedImmediates is the last of the three target-transform
// sub-passes (ground-truth fixUnsupportedImmediates): it legalizes every
// immediate-bearing instruction still in the stream, after pseudo-op
// lowering and syscall lowering have had their say. It must run last
// because both earlier passes can themselves introduce fresh
// out-of-range immediates (the negated SUBI constant, the +1-adjusted
// SGTI/SLEI constant).
func lowerUnsupportedImmediates(in []*ir.Instruction) []*ir.Instruction {
	mid := make([]*ir.Instruction, 0, len(in))
	for _, instr := range in {
		if !rv32.IsImmediateForm(instr.Opcode) && !rv32.IsShiftImmediate(instr.Opcode) {
			mid = append(mid, instr)
			continue
		}

		switch {
		case instr.Opcode == rv32.OpADDI && instr.Src1 != nil && instr.Src1.ID == ir.RegZero:
			if rv32.FitsSigned12(instr.Imm) {
				mid = append(mid, instr)
				continue
			}
			mid = replace(mid, instr, ir.NewInstruction(rv32.OpLI, instr.Dest, nil, nil, nil, instr.Imm))

		case rv32.AlwaysMaterializeImmediate(instr.Opcode) || !rv32.FitsSigned12(instr.Imm):
			li := ir.NewInstruction(rv32.OpLI, phys(rv32.T6), nil, nil, nil, instr.Imm)
			op := ir.NewInstruction(rv32.NonImmediateForm(instr.Opcode), instr.Dest, instr.Src1, phys(rv32.T6), nil, 0)
			mid = replace(mid, instr, li, op)

		case rv32.IsShiftImmediate(instr.Opcode):
			instr.Imm = int32(uint32(instr.Imm) & 0x1F)
			mid = append(mid, instr)

		default:
			mid = append(mid, instr)
		}
	}
	return expandLargeLoadImmediates(mid)
}

// expandLargeLoadImmediates splits every LI whose constant doesn't fit a
// 12-bit signed field into LUI (carrying the hi20, rounded for bit 11's
// borrow, spec §6.2) followed by an ADDI of the low 12 bits. LI constants
// introduced earlier in this same sub-pass (a materialized multiply
// operand, a collapsed out-of-range ADDI-from-zero) are covered here too,
// since they are ordinary entries in mid.
func expandLargeLoadImmediates(mid []*ir.Instruction) []*ir.Instruction {
	out := make([]*ir.Instruction, 0, len(mid))
	for _, instr := range mid {
		if instr.Opcode != rv32.OpLI || rv32.FitsSigned12(instr.Imm) {
			out = append(out, instr)
			continue
		}
		hi20, lo12 := rv32.HiLo20_12(instr.Imm)
		lui := ir.NewInstruction(rv32.OpLUI, instr.Dest, nil, nil, nil, hi20)
		addi := ir.NewInstruction(rv32.OpADDI, instr.Dest, ir.Reg(instr.Dest.ID), nil, nil, lo12)
		out = replace(out, instr, lui, addi)
	}
	return out
}
