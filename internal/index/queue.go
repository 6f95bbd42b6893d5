package index

// candidate is a search candidate held in the bounded selection heap.
type candidate struct {
	id       uint32
	distance float32
}

// candidateHeap is a max-heap by distance: the root is the worst of the
// current top-k, so it can be evicted in O(log k) on improvement. Among equal
// distances the higher ID sits at the root, so eviction preserves
// insertion-order tie-breaking.
type candidateHeap []candidate

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool {
	if h[i].distance != h[j].distance {
		return h[i].distance > h[j].distance
	}
	return h[i].id > h[j].id
}

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) {
	*h = append(*h, x.(candidate))
}

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}
