package regalloc

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/rv32edu/rv32cc/internal/cfg"
	"github.com/rv32edu/rv32cc/internal/diag"
	"github.com/rv32edu/rv32cc/internal/ir"
	"github.com/rv32edu/rv32cc/internal/rv32"
)

func TestDeriveIntervalsSkipsArchitecturalRegisters(t *testing.T) {
	p := ir.NewProgram()
	dc := diag.New("t.src")
	a := p.NewTemp()
	p.Append(dc, rv32.OpADD, ir.Reg(a), ir.Reg(ir.RegZero), ir.Reg(ir.RegZero), nil, 0)
	p.Append(dc, rv32.OpCallPrintInt, nil, ir.Reg(a), nil, nil, 0)
	p.Append(dc, rv32.OpCallExit0, nil, nil, nil, nil, 0)

	c, err := cfg.Build(p)
	require.NoError(t, err)
	c.ComputeLiveness()

	intervals := DeriveIntervals(c)
	require.Len(t, intervals, 1)
	require.Equal(t, a, intervals[0].Reg)
}

func TestDeriveIntervalsSpansDefToLastUse(t *testing.T) {
	p := ir.NewProgram()
	dc := diag.New("t.src")
	a := p.NewTemp()
	p.Append(dc, rv32.OpLI, ir.Reg(a), nil, nil, nil, 1)   // pos 0: def
	p.Append(dc, rv32.OpNOP, nil, nil, nil, nil, 0)        // pos 1
	p.Append(dc, rv32.OpCallPrintInt, nil, ir.Reg(a), nil, nil, 0) // pos 2: last use
	p.Append(dc, rv32.OpCallExit0, nil, nil, nil, nil, 0)  // pos 3

	c, err := cfg.Build(p)
	require.NoError(t, err)
	c.ComputeLiveness()

	intervals := DeriveIntervals(c)
	require.Len(t, intervals, 1)
	require.Equal(t, 0, intervals[0].Start)
	require.Equal(t, 2, intervals[0].End)
}

func TestDeriveIntervalsOrderedByStart(t *testing.T) {
	p := ir.NewProgram()
	dc := diag.New("t.src")
	a := p.NewTemp()
	b := p.NewTemp()
	p.Append(dc, rv32.OpLI, ir.Reg(b), nil, nil, nil, 1)
	p.Append(dc, rv32.OpLI, ir.Reg(a), nil, nil, nil, 2)
	p.Append(dc, rv32.OpCallPrintInt, nil, ir.Reg(a), nil, nil, 0)
	p.Append(dc, rv32.OpCallPrintInt, nil, ir.Reg(b), nil, nil, 0)
	p.Append(dc, rv32.OpCallExit0, nil, nil, nil, nil, 0)

	c, err := cfg.Build(p)
	require.NoError(t, err)
	c.ComputeLiveness()

	intervals := DeriveIntervals(c)
	require.Len(t, intervals, 2)
	require.Equal(t, b, intervals[0].Reg, "b is defined first, so its interval sorts first")
	require.Equal(t, a, intervals[1].Reg)
}
