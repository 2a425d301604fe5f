package ir

import (
	"regexp"
	"sort"
	"strconv"
)

// LabelID uniquely identifies a label. Per spec §9, the id is the truth:
// two Label values may exist momentarily with the same id during alias
// promotion, but this package folds aliasing into one canonical *Label per
// id rather than keeping multiple alias objects around, since nothing
// downstream ever needs to compare label objects, only ids.
type LabelID uint32

// NoLabel is the sentinel meaning "no label attached".
const NoLabel LabelID = ^LabelID(0)

// Label carries a unique identifier, an optional display name (auto-
// generated as l_<id> if never set), and a global-export flag (spec §3).
type Label struct {
	ID      LabelID
	name    string
	hasName bool
	Global  bool
}

// Name returns the label's display name, auto-generating l_<id> if none
// was ever set.
func (l *Label) Name() string {
	if !l.hasName {
		return "l_" + strconv.FormatUint(uint64(l.ID), 10)
	}
	return l.name
}

var nameSanitizer = regexp.MustCompile(`[^A-Za-z0-9_]`)

// createLabel allocates a fresh, unattached label.
func (p *Program) createLabel() *Label {
	id := p.nextLabelID
	p.nextLabelID++
	l := &Label{ID: id}
	p.labels[id] = l
	return l
}

// CreateLabel is the public operation "create label" (spec §4.1): a new
// identifier and label object, unattached to any instruction.
func (p *Program) CreateLabel() *Label {
	return p.createLabel()
}

// SetLabelName sanitizes name (retaining [A-Za-z0-9_]) and, if another
// label already holds the resulting name, disambiguates by appending
// "_<serial>" against the registry's existing names (spec §4.1, §9: the
// auto-generated suffix is chosen against the registry, not a transient
// list).
func (p *Program) SetLabelName(l *Label, name string) {
	clean := nameSanitizer.ReplaceAllString(name, "")
	final := clean
	serial := 0
	for p.nameTaken(final, l.ID) {
		serial++
		final = clean + "_" + strconv.Itoa(serial)
	}
	l.name = final
	l.hasName = true
	p.names[final] = l.ID
}

func (p *Program) nameTaken(name string, exceptID LabelID) bool {
	id, ok := p.names[name]
	return ok && id != exceptID
}

// AssignLabel assigns l to the next instruction to be generated (spec
// §4.1). If no label is currently pending, l becomes pending. Otherwise l
// is promoted to an alias of the pending label: identifiers are unified
// (l's id retired, l itself now carrying the pending label's id and name),
// the global flag becomes the disjunction, and — per spec §9, preserved
// verbatim despite being unusual — if both labels already have names, the
// name of the one with the LOWER identifier wins, not the most recently
// assigned one.
func (p *Program) AssignLabel(l *Label) {
	if p.pending == NoLabel {
		p.pending = l.ID
		return
	}
	pending := p.labels[p.pending]
	p.aliasInto(pending, l)
}

// aliasInto merges "other" onto "canonical" as the pending label already
// attached, applying the lowest-id-wins naming rule from spec §9.
func (p *Program) aliasInto(canonical, other *Label) {
	if canonical.ID == other.ID {
		return
	}
	canonical.Global = canonical.Global || other.Global

	lowID, highID := canonical, other
	if other.ID < canonical.ID {
		lowID, highID = other, canonical
	}
	if lowID.hasName && highID.hasName {
		// Lowest identifier wins when both have names (verbatim, see
		// spec §9 — intentionally not "most recent wins").
		canonical.name, canonical.hasName = lowID.name, true
	} else if highID.hasName {
		canonical.name, canonical.hasName = highID.name, true
	}
	if canonical.hasName {
		p.names[canonical.name] = canonical.ID
	}

	// Retire other's id: every future lookup of other.ID resolves to
	// canonical. Also rewrite any instruction already carrying other.ID as
	// its attached label.
	p.aliasOf[other.ID] = canonical.ID
	delete(p.labels, other.ID)
	for _, instr := range p.Instructions {
		if instr.label == other.ID {
			instr.label = canonical.ID
		}
	}
	// Instructions that already hold other as a jump/branch target keep the
	// pointer, so other itself now carries canonical's id, name and flag.
	other.ID = canonical.ID
	other.name, other.hasName = canonical.name, canonical.hasName
	other.Global = canonical.Global
}

// resolveLabel follows alias redirections to the canonical *Label for id.
func (p *Program) resolveLabel(id LabelID) *Label {
	for {
		if canon, ok := p.aliasOf[id]; ok {
			id = canon
			continue
		}
		return p.labels[id]
	}
}

// LabelByID returns the canonical label object for id, or nil.
func (p *Program) LabelByID(id LabelID) *Label {
	if id == NoLabel {
		return nil
	}
	return p.resolveLabel(id)
}

// GetLabelName returns the (possibly auto-generated) display name for l
// (spec §4.1).
func GetLabelName(l *Label) string {
	return l.Name()
}

// GlobalLabels returns every canonical label with Global set, in
// ascending identifier order, for the assembly emitter's first pass over
// the program (spec §4.6): one ".global" directive per entry, aliases
// already folded away since only canonical *Label objects remain in
// p.labels.
func (p *Program) GlobalLabels() []*Label {
	var out []*Label
	for _, l := range p.labels {
		if l.Global {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
