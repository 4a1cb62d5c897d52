package datastructure

type PriorityQueueNode[T any] struct {
	Rank float64
	Item T
}

func NewPriorityQueueNode[T any](rank float64, item T) PriorityQueueNode[T] {
	return PriorityQueueNode[T]{Rank: rank, Item: item}
}

// MinHeap binary heap priorityqueue. The search uses lazy deletion: duplicate
// entries for one item are allowed and stale ones are skipped on extraction,
// so no DecreaseKey is needed.
type MinHeap[T any] struct {
	heap []PriorityQueueNode[T]
}

func NewMinHeap[T any]() *MinHeap[T] {
	return &MinHeap[T]{
		heap: make([]PriorityQueueNode[T], 0),
	}
}

func (h *MinHeap[T]) Size() int {
	return len(h.heap)
}

func (h *MinHeap[T]) GetMin() (PriorityQueueNode[T], bool) {
	if len(h.heap) == 0 {
		return PriorityQueueNode[T]{}, false
	}
	return h.heap[0], true
}

// Insert new item. O(logN) heapifyUp.
func (h *MinHeap[T]) Insert(key PriorityQueueNode[T]) {
	h.heap = append(h.heap, key)
	index := len(h.heap) - 1

	parent := (index - 1) / 2
	for ; index != 0 && h.heap[parent].Rank > h.heap[index].Rank; parent = (index - 1) / 2 {
		h.heap[parent], h.heap[index] = h.heap[index], h.heap[parent]
		index = parent
	}
}

// ExtractMin pop the minimum-rank item. O(logN) heapifyDown.
func (h *MinHeap[T]) ExtractMin() (PriorityQueueNode[T], bool) {
	if len(h.heap) == 0 {
		return PriorityQueueNode[T]{}, false
	}
	root := h.heap[0]
	h.heap[0] = h.heap[len(h.heap)-1]
	h.heap = h.heap[:len(h.heap)-1]

	index := 0
	for {
		smallest := index
		left := index*2 + 1
		right := index*2 + 2
		if left < len(h.heap) && h.heap[left].Rank < h.heap[smallest].Rank {
			smallest = left
		}
		if right < len(h.heap) && h.heap[right].Rank < h.heap[smallest].Rank {
			smallest = right
		}
		if smallest == index {
			break
		}
		h.heap[smallest], h.heap[index] = h.heap[index], h.heap[smallest]
		index = smallest
	}
	return root, true
}
