// Package ir implements the compiler's symbolic three-address Program
// intermediate representation (spec §3, §4.1): labels, symbols, and an
// ordered instruction list, plus the register/label identifier
// allocators and the append/remove operations the front end and later
// passes build on.
package ir

import (
	"github.com/rv32edu/rv32cc/internal/diag"
	"github.com/rv32edu/rv32cc/internal/rv32"
)

// Program is the mutable, single source of truth threaded through every
// pass (spec §3, §5).
type Program struct {
	Instructions []*Instruction

	labels      map[LabelID]*Label
	aliasOf     map[LabelID]LabelID
	names       map[string]LabelID
	nextLabelID LabelID
	pending     LabelID

	Symbols       []*Symbol
	symbolsByName map[string]*Symbol

	nextReg RegID

	// Start is the canonical entry-point label, reserved at construction
	// time like the reference implementation's _start.
	Start *Label
}

// NewProgram creates an empty program: its temporary-register counter
// starts at FirstTemp and it immediately reserves a global "_start" label,
// matching the reference implementation's newProgram (spec §3).
func NewProgram() *Program {
	p := &Program{
		labels:        map[LabelID]*Label{},
		aliasOf:       map[LabelID]LabelID{},
		names:         map[string]LabelID{},
		pending:       NoLabel,
		symbolsByName: map[string]*Symbol{},
		nextReg:       FirstTemp,
	}
	p.Start = p.createLabel()
	p.SetLabelName(p.Start, "_start")
	p.Start.Global = true
	return p
}

// NewTemp allocates a fresh temporary register id (spec §4.1). Ids are
// monotone.
func (p *Program) NewTemp() RegID {
	id := p.nextReg
	p.nextReg++
	return id
}

// Append adds a new instruction at the end of the program's instruction
// list (spec §4.1): attaches any pending label and clears the pending
// slot, and stamps a source-location comment obtained from dc (deduped
// against the last stamped position, spec §9).
func (p *Program) Append(dc *diag.Context, opcode rv32.Opcode, dest, src1, src2 *RegArg, addr *Label, imm int32) *Instruction {
	instr := &Instruction{
		label:  NoLabel,
		Opcode: opcode,
		Dest:   dest,
		Src1:   src1,
		Src2:   src2,
		Addr:   addr,
		Imm:    imm,
	}
	if p.pending != NoLabel {
		instr.label = p.pending
		p.pending = NoLabel
	}
	if dc != nil {
		instr.Comment = dc.StampComment()
	}
	p.Instructions = append(p.Instructions, instr)
	return instr
}

// RemoveInstructionAt removes the instruction at index i (spec §4.1). If it
// carries a label or comment, both migrate to the following instruction;
// if there is no following instruction, or it is already labeled, a NOP is
// inserted to host the migrating label.
func (p *Program) RemoveInstructionAt(i int) {
	removed := p.Instructions[i]
	p.Instructions = append(p.Instructions[:i], p.Instructions[i+1:]...)

	if removed.label == NoLabel && removed.Comment == "" {
		return
	}

	if i >= len(p.Instructions) {
		nop := &Instruction{label: NoLabel, Opcode: rv32.OpNOP}
		p.Instructions = append(p.Instructions, nop)
	}
	next := p.Instructions[i]
	if removed.label != NoLabel {
		if next.label != NoLabel {
			nop := &Instruction{label: removed.label, Opcode: rv32.OpNOP}
			tail := append([]*Instruction{nop}, p.Instructions[i:]...)
			p.Instructions = append(p.Instructions[:i], tail...)
		} else {
			next.label = removed.label
		}
	}
	if removed.Comment != "" && next.Comment == "" {
		next.Comment = removed.Comment
	}
}

// GenEpilog ensures the final instruction is the exit-0 syscall (spec
// §4.1), inserting one and flushing any pending label onto it if
// necessary.
func (p *Program) GenEpilog(dc *diag.Context) {
	if n := len(p.Instructions); n > 0 && p.Instructions[n-1].Opcode == rv32.OpCallExit0 && p.pending == NoLabel {
		return
	}
	p.Append(dc, rv32.OpCallExit0, nil, nil, nil, nil, 0)
}
