package regalloc

import (
	"sort"

	"github.com/rv32edu/rv32cc/internal/rv32"
)

// sortIntervalsByStart orders intervals by non-decreasing start index,
// breaking ties by original (insertion) order, matching spec §5's
// ordering contract.
func sortIntervalsByStart(intervals []*Interval) {
	sort.SliceStable(intervals, func(i, j int) bool {
		return intervals[i].Start < intervals[j].Start
	})
}

// activeEntry is one interval currently holding a physical register in
// the linear scan's active set.
type activeEntry struct {
	iv  *Interval
	reg rv32.RealReg
}

// freeSet is the set of free physical registers (an unordered map).
// Deterministic choice comes from firstAllowed walking the interval's
// constraint list in order, which for auto-seeded intervals starts out in
// rv32.GPPool order.
type freeSet struct {
	free map[rv32.RealReg]bool
}

func newFreeSet() *freeSet {
	fs := &freeSet{free: map[rv32.RealReg]bool{}}
	for _, r := range rv32.GPPool {
		fs.free[r] = true
	}
	return fs
}

func (fs *freeSet) take(r rv32.RealReg) { delete(fs.free, r) }
func (fs *freeSet) give(r rv32.RealReg) { fs.free[r] = true }
func (fs *freeSet) has(r rv32.RealReg) bool { return fs.free[r] }

// firstAllowed returns the first register in constraint that is currently
// free, preferring hint if it is both allowed and free (spec §4.4's
// "may inherit it if allowed").
func (fs *freeSet) firstAllowed(constraint []rv32.RealReg, hint rv32.RealReg, hasHint bool) (rv32.RealReg, bool) {
	if hasHint && fs.has(hint) {
		for _, r := range constraint {
			if r == hint {
				return hint, true
			}
		}
	}
	for _, r := range constraint {
		if fs.has(r) {
			return r, true
		}
	}
	return 0, false
}

// allows reports whether r is a member of constraint.
func allows(constraint []rv32.RealReg, r rv32.RealReg) bool {
	for _, c := range constraint {
		if c == r {
			return true
		}
	}
	return false
}

// LinearScan runs the linear-scan allocation pass over intervals (already
// sorted by start, as returned by DeriveIntervals) assigning each a
// physical register from rv32.GPPool or marking it spilled (spec §4.4).
// The architectural zero register never participates: it is never given
// an interval (DeriveIntervals skips it), so nothing here needs to special-
// case it.
func LinearScan(intervals []*Interval) {
	var active []activeEntry
	free := newFreeSet()

	// active is kept ordered by increasing end index so the "latest-ending
	// active interval" is always the last entry; ties broken by the order
	// entries were inserted (stable sort on every reinsertion).
	resortActive := func() {
		sort.SliceStable(active, func(i, j int) bool {
			return active[i].iv.End < active[j].iv.End
		})
	}

	for _, iv := range intervals {
		hint, hasHint := rv32.RealReg(0), false

		// Step 1: expire intervals ended before iv starts; record an
		// inheritance hint from any interval ending exactly at iv's start.
		var kept []activeEntry
		for _, e := range active {
			if e.iv.End < iv.Start {
				free.give(e.reg)
				continue
			}
			if e.iv.End == iv.Start {
				hint, hasHint = e.reg, true
			}
			kept = append(kept, e)
		}
		active = kept

		// Step 2: assign.
		if r, ok := free.firstAllowed(iv.Constraint, hint, hasHint); ok {
			free.take(r)
			iv.PhysReg = r
			active = append(active, activeEntry{iv: iv, reg: r})
			resortActive()
			continue
		}

		// Step 3: spill on failure.
		if len(active) == 0 {
			iv.Spilled = true
			continue
		}
		latest := active[len(active)-1]
		if latest.iv.End > iv.End && allows(iv.Constraint, latest.reg) {
			latest.iv.Spilled = true
			iv.PhysReg = latest.reg
			active[len(active)-1] = activeEntry{iv: iv, reg: latest.reg}
			resortActive()
		} else {
			iv.Spilled = true
		}
	}
}
