package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateLabelAutoGeneratesName(t *testing.T) {
	p := NewProgram()
	l := p.CreateLabel()
	require.Equal(t, "l_1", l.Name(), "second label created (after _start) should auto-name as l_1")
}

func TestLabelNameSanitizationAndDedup(t *testing.T) {
	p := NewProgram()
	l1 := p.CreateLabel()
	p.SetLabelName(l1, "foo!bar")
	require.Equal(t, "foobar", l1.Name())

	l2 := p.CreateLabel()
	p.SetLabelName(l2, "foo!bar")
	require.Equal(t, "foobar_1", l2.Name())
}

func TestAssignLabelAliasesLowestIDNameWins(t *testing.T) {
	p := NewProgram()
	first := p.CreateLabel() // lower id
	p.SetLabelName(first, "early")
	second := p.CreateLabel() // higher id
	p.SetLabelName(second, "late")

	p.AssignLabel(first)
	p.AssignLabel(second) // second becomes an alias of first

	require.Equal(t, "early", p.LabelByID(first.ID).Name())
	require.Equal(t, first.ID, p.LabelByID(second.ID).ID)
}

func TestAssignLabelAliasGlobalIsDisjunction(t *testing.T) {
	p := NewProgram()
	a := p.CreateLabel()
	b := p.CreateLabel()
	b.Global = true

	p.AssignLabel(a)
	p.AssignLabel(b)

	require.True(t, p.LabelByID(a.ID).Global)
}

func TestGlobalLabelsSortedByID(t *testing.T) {
	p := NewProgram() // _start is already global
	extra := p.CreateLabel()
	extra.Global = true

	globals := p.GlobalLabels()
	require.Len(t, globals, 2)
	require.Equal(t, p.Start.ID, globals[0].ID)
	require.Equal(t, extra.ID, globals[1].ID)
}
