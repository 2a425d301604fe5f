// Package asmprint linearizes a fully lowered Program into textual RV32IM
// assembly (spec §4.6): a ".global" declaration for every exported label,
// a ".data" segment reserving storage for every symbol, and a ".text"
// segment with one line per instruction.
package asmprint

import (
	"bufio"
	"fmt"
	"io"

	"github.com/rv32edu/rv32cc/internal/ir"
	"github.com/rv32edu/rv32cc/internal/rv32"
)

// Print writes p's assembly listing to w. p must already be fully
// register-allocated and target-lowered: no pseudo opcode, no temporary
// register id, and no immediate outside its legal field width may remain
// (spec §8's end-to-end invariant).
func Print(w io.Writer, p *ir.Program) error {
	bw := bufio.NewWriter(w)

	for _, l := range p.GlobalLabels() {
		fmt.Fprintf(bw, ".global %s\n", l.Name())
	}

	if len(p.Symbols) > 0 {
		fmt.Fprintln(bw, ".data")
		for _, sym := range p.Symbols {
			fmt.Fprintf(bw, "%s:\n\t.space %d\n", sym.Label.Name(), sym.SizeBytes())
		}
	}

	fmt.Fprintln(bw, ".text")
	for _, instr := range p.Instructions {
		if lbl := instr.Label(p); lbl != nil {
			fmt.Fprintf(bw, "%s:\n", lbl.Name())
		}
		fmt.Fprintf(bw, "\t%s", formatInstruction(instr))
		if instr.Comment != "" {
			fmt.Fprintf(bw, "\t# %s", instr.Comment)
		}
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}

func reg(id ir.RegID) string {
	if id < 0 || int(id) >= rv32.NumRegs {
		panic(fmt.Sprintf("BUG: asmprint: operand %d is not a resolved physical register", id))
	}
	return rv32.RealReg(id).String()
}

// formatInstruction renders one already-lowered instruction by opcode
// class (spec §4.6). Every class below is a real assembler form; nothing
// reaching this function should still be one of the pseudo opcodes
// internal/lower eliminates.
func formatInstruction(i *ir.Instruction) string {
	op := i.Opcode
	switch {
	case op == rv32.OpNOP:
		return "nop"
	case op == rv32.OpECALL:
		return "ecall"
	case op == rv32.OpEBREAK:
		return "ebreak"

	case op == rv32.OpLI:
		return fmt.Sprintf("li %s, %d", reg(i.Dest.ID), i.Imm)
	case op == rv32.OpLUI:
		return fmt.Sprintf("lui %s, %d", reg(i.Dest.ID), i.Imm)
	case op == rv32.OpLA:
		return fmt.Sprintf("la %s, %s", reg(i.Dest.ID), i.Addr.Name())

	case op == rv32.OpLW:
		return fmt.Sprintf("lw %s, %d(%s)", reg(i.Dest.ID), i.Imm, reg(i.Src1.ID))
	case op == rv32.OpSW:
		return fmt.Sprintf("sw %s, %d(%s)", reg(i.Src2.ID), i.Imm, reg(i.Src1.ID))

	case op == rv32.OpJ:
		return fmt.Sprintf("j %s", i.Addr.Name())
	case rv32.IsBranch(op):
		return fmt.Sprintf("%s %s, %s, %s", op, reg(i.Src1.ID), reg(i.Src2.ID), i.Addr.Name())

	case rv32.IsShiftImmediate(op), rv32.IsImmediateForm(op):
		return fmt.Sprintf("%s %s, %s, %d", op, reg(i.Dest.ID), reg(i.Src1.ID), i.Imm)

	case i.Src2 != nil:
		return fmt.Sprintf("%s %s, %s, %s", op, reg(i.Dest.ID), reg(i.Src1.ID), reg(i.Src2.ID))

	default:
		panic("BUG: asmprint: unrecognized opcode class for " + op.String())
	}
}
