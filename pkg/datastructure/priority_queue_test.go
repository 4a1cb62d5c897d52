package datastructure

import (
	"math/rand"
	"testing"
)

func TestPriorityQueue(t *testing.T) {
	pq := NewMinHeap[int32]()
	if pq == nil {
		t.Errorf("PriorityQueue is nil")
	}

	for i := 0; i < 10000; i++ {
		item := NewPriorityQueueNode(float64(rand.Intn(10000)), int32(i))
		pq.Insert(item)
	}

	prevItem, ok := pq.ExtractMin()
	if !ok {
		t.Errorf("Error extract min")
	}

	for i := 1; i < 10000; i++ {
		item, ok := pq.ExtractMin()
		if !ok {
			t.Errorf("Error extract min")
		}

		if prevItem.Rank > item.Rank {
			t.Errorf("PriorityQueue is not sorted")
		}
		prevItem = item
	}
}

func TestPriorityQueueEmpty(t *testing.T) {
	pq := NewMinHeap[int32]()
	_, ok := pq.ExtractMin()
	if ok {
		t.Errorf("expected extract min on empty heap to fail")
	}
	_, ok = pq.GetMin()
	if ok {
		t.Errorf("expected get min on empty heap to fail")
	}
}
