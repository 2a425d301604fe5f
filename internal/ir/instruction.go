package ir

import "github.com/rv32edu/rv32cc/internal/rv32"

// RegID identifies a register argument (spec §3). Zero denotes the
// architectural always-zero register; 1..31 the rest of the architectural
// registers; values >= FirstTemp denote virtual temporaries.
type RegID int32

const (
	// RegInvalid marks the absence of a register argument.
	RegInvalid RegID = -1
	// RegSpilled marks a register demoted to a spill slot during
	// allocation (spec §3); it is never a valid final operand.
	RegSpilled RegID = -2
	// RegZero is the architectural always-zero register.
	RegZero RegID = 0
	// FirstTemp is the first temporary register id a Program hands out,
	// one past the last architectural register (spec §3's note on this
	// Go rendition folding architectural and temporary ids into one
	// space).
	FirstTemp RegID = 32
)

// RegArg is a register argument: an identifier plus an optional whitelist
// of permitted physical registers (nil means "any allocator-pool
// register").
type RegArg struct {
	ID        RegID
	Whitelist []rv32.RealReg
}

// Reg constructs an unconstrained register argument.
func Reg(id RegID) *RegArg { return &RegArg{ID: id} }

// PinnedReg constructs a register argument constrained to exactly one
// physical register.
func PinnedReg(id RegID, r rv32.RealReg) *RegArg {
	return &RegArg{ID: id, Whitelist: []rv32.RealReg{r}}
}

// Instruction is one symbolic three-address IR instruction (spec §3).
type Instruction struct {
	label   LabelID // attached label, or NoLabel
	Opcode  rv32.Opcode
	Dest    *RegArg
	Src1    *RegArg
	Src2    *RegArg
	Imm     int32
	Addr    *Label // address-parameter label (jump/branch target, LA target)
	Comment string
}

// Label returns the label attached to this instruction (to be emitted
// before it), or nil.
func (i *Instruction) Label(p *Program) *Label {
	if i.label == NoLabel {
		return nil
	}
	return p.LabelByID(i.label)
}

// AttachedLabelID returns the raw label id attached to this instruction
// (NoLabel if none), for passes that need to relocate a label without a
// *Program handy to resolve it through.
func (i *Instruction) AttachedLabelID() LabelID { return i.label }

// SetAttachedLabelID attaches id to this instruction directly, clearing
// whatever was attached before. Used by the spill materializer (spec
// §4.4) to relocate a label from a removed/rewritten instruction onto the
// first injected spill load.
func (i *Instruction) SetAttachedLabelID(id LabelID) { i.label = id }

// NewInstruction builds a bare instruction with no attached label and no
// comment, for passes that synthesize instructions directly (spill
// materialization, target lowering) rather than going through
// Program.Append.
func NewInstruction(opcode rv32.Opcode, dest, src1, src2 *RegArg, addr *Label, imm int32) *Instruction {
	return &Instruction{
		label:  NoLabel,
		Opcode: opcode,
		Dest:   dest,
		Src1:   src1,
		Src2:   src2,
		Addr:   addr,
		Imm:    imm,
	}
}

// RegArgs returns the instruction's register arguments in the fixed order
// destination, source1, source2 — the order spill materialization's
// argument scan depends on (spec §9: destinations before sources).
func (i *Instruction) RegArgs() [3]*RegArg {
	return [3]*RegArg{i.Dest, i.Src1, i.Src2}
}
