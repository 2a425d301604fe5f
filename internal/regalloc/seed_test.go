package regalloc

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/rv32edu/rv32cc/internal/rv32"
)

func TestSeedConstraintsDefaultsToFullPool(t *testing.T) {
	iv := &Interval{Reg: 32, Start: 0, End: 1}
	SeedConstraints([]*Interval{iv})
	require.Equal(t, rv32.GPPool, iv.Constraint)
}

func TestSeedConstraintsSubtractsNonAdjacentOverlap(t *testing.T) {
	explicit := &Interval{Reg: 32, Start: 0, End: 5, Constraint: []rv32.RealReg{rv32.A0}}
	auto := &Interval{Reg: 33, Start: 2, End: 4}

	SeedConstraints([]*Interval{explicit, auto})

	for _, r := range auto.Constraint {
		require.NotEqual(t, rv32.A0, r, "auto-seeded interval must not retain a register an overlapping explicit interval requires")
	}
}

func TestSeedConstraintsReordersAdjacentChain(t *testing.T) {
	explicit := &Interval{Reg: 32, Start: 0, End: 2, Constraint: []rv32.RealReg{rv32.A0}}
	auto := &Interval{Reg: 33, Start: 2, End: 4} // starts exactly where explicit ends

	SeedConstraints([]*Interval{explicit, auto})

	require.Equal(t, rv32.A0, auto.Constraint[0], "a def immediately following a use should prefer inheriting its register")
}

func TestApplyCallerSaveSubtractsClobberedRegisters(t *testing.T) {
	live := &Interval{Reg: 32, Start: 0, End: 10, Constraint: append([]rv32.RealReg(nil), rv32.GPPool...)}
	call := CallSite{Pos: 5}

	ApplyCallerSave([]*Interval{live}, []CallSite{call})

	for _, r := range rv32.CallerSave {
		require.NotContains(t, live.Constraint, r)
	}
}

func TestApplyCallerSaveIgnoresIntervalsNotLiveAcrossCall(t *testing.T) {
	before := append([]rv32.RealReg(nil), rv32.GPPool...)
	notLive := &Interval{Reg: 32, Start: 0, End: 2, Constraint: append([]rv32.RealReg(nil), before...)}
	call := CallSite{Pos: 5}

	ApplyCallerSave([]*Interval{notLive}, []CallSite{call})

	require.Equal(t, before, notLive.Constraint)
}

func TestApplyCallerSavePreservesPinnedRegisters(t *testing.T) {
	live := &Interval{Reg: 32, Start: 0, End: 10, Constraint: append([]rv32.RealReg(nil), rv32.GPPool...)}
	call := CallSite{Pos: 5, Pinned: []rv32.RealReg{rv32.A0}}

	ApplyCallerSave([]*Interval{live}, []CallSite{call})

	require.Contains(t, live.Constraint, rv32.A0, "a register an instruction's own operand already pins is never in the clobber set")
}
