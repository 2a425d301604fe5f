package ir

import (
	"fmt"

	"github.com/rv32edu/rv32cc/internal/diag"
)

// SymbolType distinguishes scalars from fixed-size arrays (spec §3).
type SymbolType int

const (
	TypeScalar SymbolType = iota
	TypeArray
)

// Symbol is a source-level scalar or array, reserving a word (or words) of
// storage in the data segment via an owned Label.
type Symbol struct {
	Name      string
	Type      SymbolType
	ArraySize int // only meaningful for TypeArray, must be > 0
	Label     *Label
}

// IsArray reports whether sym has array type.
func (sym *Symbol) IsArray() bool { return sym.Type == TypeArray }

// SizeBytes returns the number of bytes this symbol reserves in the data
// segment: 4 for a scalar, 4*n for an array of n (spec §4.6).
func (sym *Symbol) SizeBytes() int32 {
	if sym.Type == TypeArray {
		return int32(sym.ArraySize) * 4
	}
	return 4
}

// CreateSymbol adds a new symbol to the program (spec §4.1). Duplicate
// names and non-positive array sizes are user errors (spec §7): reported
// via dc, non-fatal, and CreateSymbol returns (nil, false) so the (out of
// scope) caller can keep parsing.
func (p *Program) CreateSymbol(dc *diag.Context, name string, typ SymbolType, arraySize int) (*Symbol, bool) {
	if _, exists := p.symbolsByName[name]; exists {
		dc.Errorf("duplicate-symbol", "symbol %q already declared", name)
		return nil, false
	}
	if typ == TypeArray && arraySize <= 0 {
		dc.Errorf("invalid-array-size", "array %q has invalid size %d", name, arraySize)
		return nil, false
	}
	lbl := p.createLabel()
	p.SetLabelName(lbl, name)
	sym := &Symbol{Name: name, Type: typ, ArraySize: arraySize, Label: lbl}
	p.Symbols = append(p.Symbols, sym)
	p.symbolsByName[name] = sym
	return sym, true
}

// GetSymbol looks up a previously created symbol by name (spec §4.1).
func (p *Program) GetSymbol(name string) (*Symbol, bool) {
	sym, ok := p.symbolsByName[name]
	return sym, ok
}

// createHiddenSymbol reserves a scalar symbol with a compiler-generated
// name, used by spill materialization (spec §4.4) to back a spilled
// temporary with a data-segment word. Hidden symbols bypass the duplicate-
// name check since their names are never user-visible source identifiers.
func (p *Program) createHiddenSymbol(name string) *Symbol {
	lbl := p.createLabel()
	p.SetLabelName(lbl, name)
	sym := &Symbol{Name: name, Type: TypeScalar, Label: lbl}
	p.Symbols = append(p.Symbols, sym)
	p.symbolsByName[name] = sym
	return sym
}

// CreateSpillSymbol reserves the hidden scalar symbol backing a spilled
// temporary's memory slot (spec §4.4): "for each spilled temporary, create
// a hidden scalar symbol so the data segment reserves one word." Spill
// slots are modeled as ordinary symbols so the data segment and emitter
// need no special case for them.
func (p *Program) CreateSpillSymbol(temp RegID) *Symbol {
	return p.createHiddenSymbol(fmt.Sprintf("__spill_%d", temp))
}
