package rr

import "sync/atomic"

// Ring hands out its items in round-robin order. Safe for concurrent use.
type Ring[T any] struct {
	items []T
	n     atomic.Uint64
}

// New panics on an empty slice: a ring needs at least one item to hand out.
func New[T any](items []T) *Ring[T] {
	if len(items) == 0 {
		panic("rr: empty ring")
	}
	return &Ring[T]{items: items}
}

func (r *Ring[T]) Next() T {
	x := r.n.Add(1)
	return r.items[(x-1)%uint64(len(r.items))]
}

func (r *Ring[T]) Len() int { return len(r.items) }

// All returns the underlying items, for shutdown loops.
func (r *Ring[T]) All() []T { return r.items }
