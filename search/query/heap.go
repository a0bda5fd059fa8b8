package query

import "container/heap"

// Heap is a binary heap ordered by less, the least item on top.
type Heap[T any] struct {
	items []T
	less  func(a, b T) bool
}

func NewHeap[T any](less func(a, b T) bool) *Heap[T] {
	return &Heap[T]{less: less}
}

func (h *Heap[T]) Len() int { return len(h.items) }

func (h *Heap[T]) Less(i, j int) bool {
	return h.less(h.items[i], h.items[j])
}

func (h *Heap[T]) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
}

func (h *Heap[T]) Push(item any) {
	h.items = append(h.items, item.(T))
}

func (h *Heap[T]) Pop() any {
	old := h.items
	n := len(old)
	x := old[n-1]
	h.items = old[0 : n-1]
	return x
}

func (h *Heap[T]) Top() T {
	return h.items[0]
}

func (h *Heap[T]) PushItem(item T) {
	heap.Push(h, item)
}

// ReplaceTop swaps the least item for item.
func (h *Heap[T]) ReplaceTop(item T) {
	h.items[0] = item
	heap.Fix(h, 0)
}
