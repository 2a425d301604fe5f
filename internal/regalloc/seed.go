package regalloc

import "github.com/rv32edu/rv32cc/internal/rv32"

// overlaps reports whether two intervals are simultaneously live at any
// node (spec §4.4's "temporally overlap").
func overlaps(a, b *Interval) bool {
	return a.Start <= b.End && b.Start <= a.End
}

// SeedConstraints initializes every interval lacking an explicit
// whitelist to the full general-purpose pool, then walks forward through
// the intervals that already carried an explicit whitelist (from the IR's
// register-argument whitelists, interned onto the CFG register record)
// and temporally overlap the interval being seeded: a "use ⇒ def in the
// same instruction" chain (the other interval's end equals this
// interval's start) reorders this interval's allowed set so the other's
// registers come first, favoring coalescing without mandating it;
// otherwise the other interval's registers are subtracted, so this
// interval never steals a register something else explicitly requires
// (spec §4.4).
//
// The spec's wording underdetermines the exact traversal order when
// explicit and auto-seeded intervals interleave; this walks every
// explicit interval, in start order, against every auto-seeded interval,
// which preserves the documented "overlap -> reorder-or-subtract" rule
// without depending on a specific interleaving.
func SeedConstraints(intervals []*Interval) {
	var explicit []*Interval
	for _, iv := range intervals {
		if iv.Constraint == nil {
			iv.Constraint = append([]rv32.RealReg(nil), rv32.GPPool...)
			iv.autoSeeded = true
		}
	}
	for _, iv := range intervals {
		if !iv.autoSeeded {
			explicit = append(explicit, iv)
		}
	}

	for _, iv := range intervals {
		if !iv.autoSeeded {
			continue
		}
		for _, other := range explicit {
			if other == iv || !overlaps(iv, other) {
				continue
			}
			if other.End == iv.Start {
				iv.Constraint = reorderFirst(iv.Constraint, other.Constraint)
			} else {
				iv.Constraint = subtractRegs(iv.Constraint, other.Constraint)
			}
		}
	}
}

// reorderFirst returns a copy of set with every register also present in
// prefer moved to the front, preserving prefer's relative order there and
// set's relative order for the remainder.
func reorderFirst(set, prefer []rv32.RealReg) []rv32.RealReg {
	in := map[rv32.RealReg]bool{}
	for _, r := range set {
		in[r] = true
	}
	out := make([]rv32.RealReg, 0, len(set))
	seen := map[rv32.RealReg]bool{}
	for _, r := range prefer {
		if in[r] && !seen[r] {
			out = append(out, r)
			seen[r] = true
		}
	}
	for _, r := range set {
		if !seen[r] {
			out = append(out, r)
			seen[r] = true
		}
	}
	return out
}

// subtractRegs returns a copy of set with every register in remove
// excluded, preserving set's order.
func subtractRegs(set, remove []rv32.RealReg) []rv32.RealReg {
	drop := map[rv32.RealReg]bool{}
	for _, r := range remove {
		drop[r] = true
	}
	out := make([]rv32.RealReg, 0, len(set))
	for _, r := range set {
		if !drop[r] {
			out = append(out, r)
		}
	}
	return out
}

// ApplyCallerSave subtracts, from every interval live across a call-like
// instruction, the caller-save registers not already explicitly
// whitelisted on that instruction's own arguments (spec §4.4). The four
// high-level syscall pseudo-ops are this module's only call-like
// instructions: lowering to ECALL happens after allocation (spec §9), so
// at this point they still carry their original (usually unconstrained)
// operands, and the subtracted set is simply the full caller-save pool
// minus whatever whitelist those operands already carry.
func ApplyCallerSave(intervals []*Interval, calls []CallSite) {
	for _, call := range calls {
		clobber := subtractRegs(append([]rv32.RealReg(nil), rv32.CallerSave...), call.Pinned)
		if len(clobber) == 0 {
			continue
		}
		for _, iv := range intervals {
			if iv.Start <= call.Pos && call.Pos <= iv.End {
				iv.Constraint = subtractRegs(iv.Constraint, clobber)
			}
		}
	}
}

// CallSite describes one call-like instruction's position in the
// monotone node ordering and the physical registers its own operands
// already pin (so those are excluded from the clobber set).
type CallSite struct {
	Pos    int
	Pinned []rv32.RealReg
}
