package curated

import (
	"codeberg.org/askrouter/server/internal/logger"
	"codeberg.org/askrouter/server/internal/storage"
)

// normalized phrasing -> entry
type ExactIndex struct {
	keys map[string]*Entry
}

// indexes every phrasing of every entry; a later entry wins a shared key
func BuildExactIndex(entries []Entry) *ExactIndex {
	idx := &ExactIndex{keys: make(map[string]*Entry)}

	for i := range entries {
		entry := &entries[i]

		for _, phrasing := range entry.Phrasings() {
			key := Normalize(phrasing)
			if key == "" {
				continue
			}

			if prev, exists := idx.keys[key]; exists && prev.ID != entry.ID {
				logger.Warn("curated phrasing collision, later entry wins",
					"key", key,
					"previous_entry_id", prev.ID,
					"entry_id", entry.ID,
				)
			}

			idx.keys[key] = entry
		}
	}

	return idx
}

func (x *ExactIndex) Lookup(normalized string) (*Entry, bool) {
	entry, ok := x.keys[normalized]
	return entry, ok
}

func (x *ExactIndex) Len() int {
	return len(x.keys)
}

type semanticItem struct {
	vector []float32
	entry  *Entry
}

// curated vectors in entry order, scanned linearly
type SemanticIndex struct {
	items []semanticItem
}

func (s *SemanticIndex) add(vector []float32, entry *Entry) {
	s.items = append(s.items, semanticItem{vector: vector, entry: entry})
}

func (s *SemanticIndex) Len() int {
	return len(s.items)
}

// highest cosine score against the query; the first of equal scores wins
func (s *SemanticIndex) Best(query []float32) (*Entry, float64, bool) {
	var (
		best      *Entry
		bestScore float64
	)

	for _, item := range s.items {
		score := storage.Cosine(query, item.vector)
		if best == nil || score > bestScore {
			best = item.entry
			bestScore = score
		}
	}

	return best, bestScore, best != nil
}
