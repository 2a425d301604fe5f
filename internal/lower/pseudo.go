package lower

import (
	"math"

	"github.com/rv32edu/rv32cc/internal/ir"
	"github.com/rv32edu/rv32cc/internal/rv32"
)

// lowerPseudoInstructions rewrites every pseudo-op that isn't a syscall or
// an out-of-range immediate (spec §4.5, ground-truth fixPseudoInstructions):
// SUBI, the (in)equality compares, the SGE/SGT/SLE compare family, and
// SW_G's T6 destination pin.
func lowerPseudoInstructions(in []*ir.Instruction) []*ir.Instruction {
	out := make([]*ir.Instruction, 0, len(in))
	for _, instr := range in {
		switch instr.Opcode {
		case rv32.OpSUBI:
			instr.Opcode = rv32.OpADDI
			instr.Imm = -instr.Imm
			out = append(out, instr)

		case rv32.OpSEQ, rv32.OpSNE, rv32.OpSEQI, rv32.OpSNEI:
			out = lowerEqualityCompare(out, instr)

		case rv32.OpSGTI:
			if instr.Imm == math.MaxInt32 {
				out = replace(out, instr, ir.NewInstruction(rv32.OpLI, instr.Dest, nil, nil, nil, 0))
				continue
			}
			out = lowerGEFamily(out, instr)

		case rv32.OpSGTIU:
			if uint32(instr.Imm) == math.MaxUint32 {
				out = replace(out, instr, ir.NewInstruction(rv32.OpLI, instr.Dest, nil, nil, nil, 0))
				continue
			}
			out = lowerGEFamily(out, instr)

		case rv32.OpSGE, rv32.OpSGEU, rv32.OpSGEI, rv32.OpSGEIU, rv32.OpSLE, rv32.OpSLEU:
			out = lowerGEFamily(out, instr)

		case rv32.OpSLEI:
			if instr.Imm == math.MaxInt32 {
				out = replace(out, instr, ir.NewInstruction(rv32.OpLI, instr.Dest, nil, nil, nil, 1))
				continue
			}
			instr.Opcode = rv32.OpSLTI
			instr.Imm++
			out = append(out, instr)

		case rv32.OpSLEIU:
			if uint32(instr.Imm) == math.MaxUint32 {
				out = replace(out, instr, ir.NewInstruction(rv32.OpLI, instr.Dest, nil, nil, nil, 1))
				continue
			}
			instr.Opcode = rv32.OpSLTIU
			instr.Imm++
			out = append(out, instr)

		case rv32.OpSGT, rv32.OpSGTU:
			instr.Src1, instr.Src2 = instr.Src2, instr.Src1
			if instr.Opcode == rv32.OpSGT {
				instr.Opcode = rv32.OpSLT
			} else {
				instr.Opcode = rv32.OpSLTU
			}
			out = append(out, instr)

		case rv32.OpSW_G:
			// No GPPool register ever resolves to T6 (spec §6.1), so
			// materializing the address directly into T6 here can never
			// collide with whatever physical register allocation already
			// gave the value operand, without needing a whitelist at all.
			la := ir.NewInstruction(rv32.OpLA, phys(rv32.T6), nil, nil, instr.Addr, 0)
			sw := ir.NewInstruction(rv32.OpSW, nil, phys(rv32.T6), instr.Src1, nil, 0)
			out = replace(out, instr, la, sw)

		case rv32.OpLW_G:
			la := ir.NewInstruction(rv32.OpLA, phys(rv32.T6), nil, nil, instr.Addr, 0)
			lw := ir.NewInstruction(rv32.OpLW, instr.Dest, phys(rv32.T6), nil, nil, 0)
			out = replace(out, instr, la, lw)

		default:
			out = append(out, instr)
		}
	}
	return out
}

// lowerEqualityCompare expands SEQ/SNE/SEQI/SNEI into the two-instruction
// subtract-then-set-on-zero sequence (ground-truth fixPseudoInstructions):
// SEQ/SNE first difference the two operands with SUB, SEQI/SNEI instead
// fold the immediate into a single ADDI; either way the second instruction
// turns "is it zero" into the 0/1 result, SLTIU for equality (0 < 1 only
// when the difference is 0) and SLTU the other way around for inequality.
func lowerEqualityCompare(out []*ir.Instruction, instr *ir.Instruction) []*ir.Instruction {
	dest := instr.Dest
	var first *ir.Instruction
	if instr.Opcode == rv32.OpSEQ || instr.Opcode == rv32.OpSNE {
		first = ir.NewInstruction(rv32.OpSUB, dest, instr.Src1, instr.Src2, nil, 0)
	} else {
		first = ir.NewInstruction(rv32.OpADDI, dest, instr.Src1, nil, nil, -instr.Imm)
	}
	var second *ir.Instruction
	if instr.Opcode == rv32.OpSEQ || instr.Opcode == rv32.OpSEQI {
		second = ir.NewInstruction(rv32.OpSLTIU, dest, ir.Reg(dest.ID), nil, nil, 1)
	} else {
		second = ir.NewInstruction(rv32.OpSLTU, dest, ir.Reg(ir.RegZero), ir.Reg(dest.ID), nil, 0)
	}
	return replace(out, instr, first, second)
}

// lowerGEFamily handles the six "is this a >=, or is the operand order
// flipped <=" opcodes (ground-truth fixPseudoInstructions): each reduces
// to the matching strict-less-than opcode — SGE*/SGEI* unchanged, SGTI*
// by incrementing the immediate, SLE/SLEU by swapping operands — and then
// appends a trailing XORI to flip the strict-less-than result into the
// complementary one (SLEI/SLEIU, by contrast, reduce without one).
func lowerGEFamily(out []*ir.Instruction, instr *ir.Instruction) []*ir.Instruction {
	dest := instr.Dest
	switch instr.Opcode {
	case rv32.OpSGE:
		instr.Opcode = rv32.OpSLT
	case rv32.OpSGEI:
		instr.Opcode = rv32.OpSLTI
	case rv32.OpSGEU:
		instr.Opcode = rv32.OpSLTU
	case rv32.OpSGEIU:
		instr.Opcode = rv32.OpSLTIU
	case rv32.OpSGTI:
		instr.Opcode = rv32.OpSLTI
		instr.Imm++
	case rv32.OpSGTIU:
		instr.Opcode = rv32.OpSLTIU
		instr.Imm++
	case rv32.OpSLE, rv32.OpSLEU:
		instr.Src1, instr.Src2 = instr.Src2, instr.Src1
		if instr.Opcode == rv32.OpSLE {
			instr.Opcode = rv32.OpSLT
		} else {
			instr.Opcode = rv32.OpSLTU
		}
	default:
		panic("BUG: lowerGEFamily: unexpected opcode " + instr.Opcode.String())
	}
	xori := ir.NewInstruction(rv32.OpXORI, dest, ir.Reg(dest.ID), nil, nil, 1)
	return append(out, instr, xori)
}
