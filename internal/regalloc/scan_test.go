package regalloc

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/rv32edu/rv32cc/internal/ir"
	"github.com/rv32edu/rv32cc/internal/rv32"
)

func TestLinearScanAssignsDisjointIntervalsSameRegister(t *testing.T) {
	a := &Interval{Reg: 32, Start: 0, End: 2, Constraint: append([]rv32.RealReg(nil), rv32.GPPool...)}
	b := &Interval{Reg: 33, Start: 3, End: 5, Constraint: append([]rv32.RealReg(nil), rv32.GPPool...)}

	LinearScan([]*Interval{a, b})

	require.False(t, a.Spilled)
	require.False(t, b.Spilled)
	require.Equal(t, a.PhysReg, b.PhysReg, "non-overlapping intervals may share a physical register")
}

func TestLinearScanAssignsDistinctRegistersWhenOverlapping(t *testing.T) {
	a := &Interval{Reg: 32, Start: 0, End: 5, Constraint: append([]rv32.RealReg(nil), rv32.GPPool...)}
	b := &Interval{Reg: 33, Start: 2, End: 4, Constraint: append([]rv32.RealReg(nil), rv32.GPPool...)}

	LinearScan([]*Interval{a, b})

	require.False(t, a.Spilled)
	require.False(t, b.Spilled)
	require.NotEqual(t, a.PhysReg, b.PhysReg)
}

func TestLinearScanRespectsSingleRegisterConstraint(t *testing.T) {
	a := &Interval{Reg: 32, Start: 0, End: 10, Constraint: []rv32.RealReg{rv32.A0}}
	LinearScan([]*Interval{a})
	require.False(t, a.Spilled)
	require.Equal(t, rv32.A0, a.PhysReg)
}

func TestLinearScanSpillsWhenPoolExhausted(t *testing.T) {
	// One interval per pool register, all mutually overlapping, plus one
	// more: no register is free for the last, so it takes the register of
	// the latest-ending active interval (the last one inserted, pinned to
	// A7 and ending at 100 > 1, a register extra allows), which is spilled
	// in its place.
	var intervals []*Interval
	for i, r := range rv32.GPPool {
		intervals = append(intervals, &Interval{
			Reg:        ir.FirstTemp + ir.RegID(i),
			Start:      0,
			End:        100,
			Constraint: []rv32.RealReg{r},
		})
	}
	extra := &Interval{Reg: 9999, Start: 0, End: 1, Constraint: append([]rv32.RealReg(nil), rv32.GPPool...)}
	intervals = append(intervals, extra)

	LinearScan(intervals)

	for _, iv := range intervals[:len(intervals)-2] {
		require.False(t, iv.Spilled)
	}
	require.True(t, intervals[len(intervals)-2].Spilled)
	require.False(t, extra.Spilled)
	require.Equal(t, rv32.A7, extra.PhysReg)
}
