package ecs

// store is the type-erased view of a component set used for entity teardown
// and multi-kind queries.
type store interface {
	has(e Entity) bool
	remove(e Entity) bool
	entities() []Entity
	len() int
}

// sparseSet is a cache-friendly storage for components keyed by entity id.
type sparseSet[T any] struct {
	denseEntities []Entity
	denseValues   []*T
	sparse        []int
}

func newSparseSet[T any]() *sparseSet[T] {
	return &sparseSet[T]{}
}

func (s *sparseSet[T]) has(e Entity) bool {
	id := int(e.id())
	if id <= 0 || id-1 >= len(s.sparse) {
		return false
	}
	idx := s.sparse[id-1]
	return idx >= 0 && idx < len(s.denseEntities) && s.denseEntities[idx] == e
}

func (s *sparseSet[T]) get(e Entity) (*T, bool) {
	if !s.has(e) {
		return nil, false
	}
	return s.denseValues[s.sparse[int(e.id())-1]], true
}

func (s *sparseSet[T]) set(e Entity, v *T) {
	id := int(e.id())
	for id-1 >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	if idx := s.sparse[id-1]; idx >= 0 && idx < len(s.denseEntities) && s.denseEntities[idx].id() == e.id() {
		// Same slot, possibly a stale generation; overwrite both.
		s.denseEntities[idx] = e
		s.denseValues[idx] = v
		return
	}
	s.denseEntities = append(s.denseEntities, e)
	s.denseValues = append(s.denseValues, v)
	s.sparse[id-1] = len(s.denseEntities) - 1
}

func (s *sparseSet[T]) remove(e Entity) bool {
	if !s.has(e) {
		return false
	}
	id := int(e.id())
	idx := s.sparse[id-1]
	last := len(s.denseEntities) - 1
	lastEntity := s.denseEntities[last]

	s.denseEntities[idx] = lastEntity
	s.denseValues[idx] = s.denseValues[last]
	s.sparse[int(lastEntity.id())-1] = idx

	s.denseEntities[last] = 0
	s.denseValues[last] = nil
	s.denseEntities = s.denseEntities[:last]
	s.denseValues = s.denseValues[:last]
	s.sparse[id-1] = -1
	return true
}

func (s *sparseSet[T]) entities() []Entity {
	return s.denseEntities
}

func (s *sparseSet[T]) len() int {
	return len(s.denseEntities)
}
