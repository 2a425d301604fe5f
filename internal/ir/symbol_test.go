package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/rv32edu/rv32cc/internal/diag"
)

func TestCreateSymbolScalarAndArray(t *testing.T) {
	p := NewProgram()
	dc := diag.New("t.src")

	scalar, ok := p.CreateSymbol(dc, "x", TypeScalar, 0)
	require.True(t, ok)
	require.EqualValues(t, 4, scalar.SizeBytes())

	arr, ok := p.CreateSymbol(dc, "a", TypeArray, 10)
	require.True(t, ok)
	require.EqualValues(t, 40, arr.SizeBytes())
	require.False(t, dc.Failed())
}

func TestCreateSymbolRejectsDuplicateName(t *testing.T) {
	p := NewProgram()
	dc := diag.New("t.src")
	_, ok := p.CreateSymbol(dc, "x", TypeScalar, 0)
	require.True(t, ok)

	_, ok = p.CreateSymbol(dc, "x", TypeScalar, 0)
	require.False(t, ok)
	require.True(t, dc.Failed())
}

func TestCreateSymbolRejectsBadArraySize(t *testing.T) {
	p := NewProgram()
	dc := diag.New("t.src")
	_, ok := p.CreateSymbol(dc, "a", TypeArray, 0)
	require.False(t, ok)
	require.True(t, dc.Failed())
}

func TestGetSymbolLookup(t *testing.T) {
	p := NewProgram()
	dc := diag.New("t.src")
	want, _ := p.CreateSymbol(dc, "x", TypeScalar, 0)

	got, ok := p.GetSymbol("x")
	require.True(t, ok)
	require.Same(t, want, got)

	_, ok = p.GetSymbol("nope")
	require.False(t, ok)
}

func TestCreateSpillSymbolIsHiddenAndUnique(t *testing.T) {
	p := NewProgram()
	s1 := p.CreateSpillSymbol(FirstTemp)
	s2 := p.CreateSpillSymbol(FirstTemp + 1)
	require.NotEqual(t, s1.Name, s2.Name)
	require.EqualValues(t, 4, s1.SizeBytes())
}
