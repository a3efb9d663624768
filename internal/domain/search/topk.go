package search

import "github.com/unitrack/planner/internal/domain/scoring"

// candidate is a scored schedule kept in the top-K list.
type candidate struct {
	score  float64
	result scoring.Result
	snap   snapshot
}

// topK keeps the k best candidates sorted by score, highest first. Among
// equal scores the earlier insertion ranks first.
type topK struct {
	k     int
	items []candidate
}

func newTopK(k int) *topK {
	return &topK{k: k, items: make([]candidate, 0, k+1)}
}

// admits reports whether a candidate with score would enter the list. A full
// list only admits scores strictly better than its worst entry.
func (t *topK) admits(score float64) bool {
	if t.k <= 0 {
		return false
	}
	return len(t.items) < t.k || score > t.items[len(t.items)-1].score
}

func (t *topK) insert(c candidate) {
	if !t.admits(c.score) {
		return
	}
	i := len(t.items)
	for i > 0 && t.items[i-1].score < c.score {
		i--
	}
	t.items = append(t.items, candidate{})
	copy(t.items[i+1:], t.items[i:])
	t.items[i] = c
	if len(t.items) > t.k {
		t.items = t.items[:t.k]
	}
}

func (t *topK) len() int { return len(t.items) }
