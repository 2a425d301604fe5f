package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolAllocateAndView(t *testing.T) {
	p := NewPool[int]()

	a := p.Allocate()
	b := p.Allocate()
	require.NotEqual(t, a, b)

	*p.View(a) = 7
	*p.View(b) = 9
	require.Equal(t, 7, *p.View(a))
	require.Equal(t, 9, *p.View(b))
	require.Equal(t, 2, p.Allocated())
}

func TestPoolAllocateAcrossPages(t *testing.T) {
	p := NewPool[int]()
	var idxs []Idx
	for i := 0; i < pageSize*2+5; i++ {
		idx := p.Allocate()
		*p.View(idx) = i
		idxs = append(idxs, idx)
	}
	for i, idx := range idxs {
		require.Equal(t, i, *p.View(idx))
	}
}

func TestPoolReset(t *testing.T) {
	p := NewPool[int]()
	a := p.Allocate()
	*p.View(a) = 42
	p.Reset()
	require.Equal(t, 0, p.Allocated())

	a2 := p.Allocate()
	require.Equal(t, Idx(0), a2)
	require.Equal(t, 0, *p.View(a2))
}
