package queue

import "container/heap"

// priorityHeap orders by (priority desc, enqueuedAt asc), the ordering
// §4.5 specifies for the min-heap (lowest "pop order" = highest priority,
// earliest submission).
type priorityHeap []*heapJob

func (h priorityHeap) Len() int { return len(h) }

func (h priorityHeap) Less(i, j int) bool {
	a, b := h[i].job, h[j].job
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.EnqueuedAt.Before(b.EnqueuedAt)
}

func (h priorityHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *priorityHeap) Push(x any) {
	hj := x.(*heapJob)
	hj.index = len(*h)
	*h = append(*h, hj)
}

func (h *priorityHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

var _ heap.Interface = (*priorityHeap)(nil)
