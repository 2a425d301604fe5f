package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/rv32edu/rv32cc/internal/rv32"
)

func TestRegArgConstructors(t *testing.T) {
	r := Reg(FirstTemp)
	require.Equal(t, FirstTemp, r.ID)
	require.Nil(t, r.Whitelist)

	p := PinnedReg(RegZero, rv32.A0)
	require.Equal(t, RegZero, p.ID)
	require.Equal(t, []rv32.RealReg{rv32.A0}, p.Whitelist)
}

func TestInstructionRegArgsOrder(t *testing.T) {
	dest := Reg(FirstTemp)
	src1 := Reg(FirstTemp + 1)
	src2 := Reg(FirstTemp + 2)
	instr := NewInstruction(rv32.OpADD, dest, src1, src2, nil, 0)

	args := instr.RegArgs()
	require.Same(t, dest, args[0])
	require.Same(t, src1, args[1])
	require.Same(t, src2, args[2])
}

func TestInstructionAttachedLabelRoundTrip(t *testing.T) {
	instr := NewInstruction(rv32.OpNOP, nil, nil, nil, nil, 0)
	require.Equal(t, NoLabel, instr.AttachedLabelID())

	instr.SetAttachedLabelID(LabelID(5))
	require.Equal(t, LabelID(5), instr.AttachedLabelID())
}

func TestInstructionLabelResolvesThroughProgram(t *testing.T) {
	p := NewProgram()
	lbl := p.CreateLabel()
	instr := NewInstruction(rv32.OpNOP, nil, nil, nil, nil, 0)
	instr.SetAttachedLabelID(lbl.ID)

	require.Same(t, lbl, instr.Label(p))
}
