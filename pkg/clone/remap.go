package clone

import "fmt"

// RemapStore holds the per-type old-id to new-id mappings built up during
// one clone operation. It lives only for the duration of the operation.
//
// Concurrency: the outer map is fully populated at construction and never
// mutated afterward, so concurrent access to different types is safe. Each
// type's inner map has exactly one writer (that type's clone worker) and is
// only read by workers in later tiers; the orchestrator's tier barrier
// provides the necessary happens-before edge.
type RemapStore struct {
	byType map[EntityType]map[int64]int64
}

// NewRemapStore creates a store with an empty mapping for every given type.
func NewRemapStore(types []EntityType) *RemapStore {
	byType := make(map[EntityType]map[int64]int64, len(types))
	for _, t := range types {
		byType[t] = make(map[int64]int64)
	}
	return &RemapStore{byType: byType}
}

// PutBatch records the id pairs for one inserted batch. The two slices must
// pair source row i with inserted row i; any insert path that reorders rows
// breaks every downstream reference rewrite, so length mismatch is an error
// rather than a best-effort zip.
func (s *RemapStore) PutBatch(t EntityType, originalIDs, newIDs []int64) error {
	m, ok := s.byType[t]
	if !ok {
		return fmt.Errorf("remap store has no mapping for entity type %q", t)
	}
	if len(originalIDs) != len(newIDs) {
		return fmt.Errorf("remap batch for %q: %d original ids but %d new ids", t, len(originalIDs), len(newIDs))
	}
	for i, orig := range originalIDs {
		m[orig] = newIDs[i]
	}
	return nil
}

// Get looks up the new id for a source row of the given type.
func (s *RemapStore) Get(t EntityType, originalID int64) (int64, bool) {
	m, ok := s.byType[t]
	if !ok {
		return 0, false
	}
	newID, ok := m[originalID]
	return newID, ok
}

// Len returns the number of recorded mappings for a type.
func (s *RemapStore) Len(t EntityType) int {
	return len(s.byType[t])
}
