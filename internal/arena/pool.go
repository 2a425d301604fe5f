// Package arena provides a page-based allocator for fixed-shape values,
// used throughout the compiler back end to replace pointer-based
// back-references between owned objects (CFG -> block -> node) with cheap
// int32 indices that are invalidated only when the arena is reset.
package arena

// pageSize is the number of elements allocated per internal page. Chosen
// so that most small programs fit in a single page.
const pageSize = 128

// Pool is a typed arena of T, indexed by Idx. It never moves an already
// allocated element (allocation only ever appends a new page), so an Idx
// obtained from Allocate remains valid until Reset.
type Pool[T any] struct {
	pages [][pageSize]T
	next  int // next free index into the logical (flattened) array
}

// Idx is an index into a Pool. The zero value is a valid index (the first
// element Allocate returns), so callers that need a "no index" sentinel
// should use a value outside the pool, e.g. -1, rather than the zero Idx.
type Idx int32

// NewPool creates an empty Pool.
func NewPool[T any]() Pool[T] {
	return Pool[T]{}
}

// Allocate reserves a new zero-valued T and returns its index.
func (p *Pool[T]) Allocate() Idx {
	page, offset := p.next/pageSize, p.next%pageSize
	if page >= len(p.pages) {
		p.pages = append(p.pages, [pageSize]T{})
	}
	idx := Idx(p.next)
	p.next++
	var zero T
	p.pages[page][offset] = zero
	return idx
}

// View returns a pointer to the element at idx, valid until the next Reset.
func (p *Pool[T]) View(idx Idx) *T {
	page, offset := int(idx)/pageSize, int(idx)%pageSize
	return &p.pages[page][offset]
}

// Allocated returns the number of elements allocated so far.
func (p *Pool[T]) Allocated() int {
	return p.next
}

// Reset clears the pool, invalidating every previously returned Idx, while
// retaining already-allocated backing pages for reuse.
func (p *Pool[T]) Reset() {
	for i := range p.pages {
		var zero [pageSize]T
		p.pages[i] = zero
	}
	p.next = 0
}
