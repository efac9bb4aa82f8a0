package ecs

// SparseSet is a cache-friendly storage for components keyed by entity ID.
// Values are stored as `any`; the generic accessors in generics.go restore
// the concrete type.
type SparseSet struct {
	denseEntities []int
	denseValues   []any
	sparse        []int
}

// Has returns true if the entity id exists in the set.
func (s *SparseSet) Has(id int) bool {
	if s == nil || id <= 0 || id-1 >= len(s.sparse) {
		return false
	}
	idx := s.sparse[id-1]
	return idx >= 0 && idx < len(s.denseEntities) && s.denseEntities[idx] == id
}

// Get returns the component for id, or nil.
func (s *SparseSet) Get(id int) any {
	if !s.Has(id) {
		return nil
	}
	return s.denseValues[s.sparse[id-1]]
}

// Set inserts or updates a component for id.
func (s *SparseSet) Set(id int, v any) {
	if s == nil || id <= 0 {
		return
	}
	for id-1 >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	if s.Has(id) {
		s.denseValues[s.sparse[id-1]] = v
		return
	}
	s.denseEntities = append(s.denseEntities, id)
	s.denseValues = append(s.denseValues, v)
	s.sparse[id-1] = len(s.denseEntities) - 1
}

// Remove deletes the component for id if present.
func (s *SparseSet) Remove(id int) bool {
	if !s.Has(id) {
		return false
	}
	idx := s.sparse[id-1]
	lastIdx := len(s.denseEntities) - 1
	lastID := s.denseEntities[lastIdx]

	s.denseEntities[idx] = lastID
	s.denseValues[idx] = s.denseValues[lastIdx]
	s.sparse[lastID-1] = idx

	s.denseEntities = s.denseEntities[:lastIdx]
	s.denseValues = s.denseValues[:lastIdx]
	s.sparse[id-1] = -1
	return true
}

// Len returns the number of stored components.
func (s *SparseSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.denseEntities)
}

// ids returns a snapshot of the dense entity ids so callers may mutate the
// set while iterating.
func (s *SparseSet) ids() []int {
	if s == nil || len(s.denseEntities) == 0 {
		return nil
	}
	return append([]int(nil), s.denseEntities...)
}
