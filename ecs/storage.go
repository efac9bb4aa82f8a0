package ecs

// entityStore tracks entity generations and free ids.
type entityStore struct {
	nextID int
	gen    []int
	free   []int
}

func (s *entityStore) create() Entity {
	if s == nil {
		return Entity{}
	}
	var id int
	if len(s.free) > 0 {
		id = s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]
	} else {
		s.nextID++
		id = s.nextID
		if id > len(s.gen) {
			s.gen = append(s.gen, 0)
		}
	}
	return Entity{ID: id, Gen: s.gen[id-1]}
}

func (s *entityStore) destroy(e Entity) bool {
	if s == nil || e.ID <= 0 || e.ID > len(s.gen) {
		return false
	}
	idx := e.ID - 1
	if s.gen[idx] != e.Gen {
		return false
	}
	s.gen[idx]++
	s.free = append(s.free, e.ID)
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	if s == nil || e.ID <= 0 || e.ID > len(s.gen) {
		return false
	}
	return s.gen[e.ID-1] == e.Gen
}

func (s *entityStore) alive() []Entity {
	if s == nil {
		return nil
	}
	freed := make(map[int]struct{}, len(s.free))
	for _, id := range s.free {
		freed[id] = struct{}{}
	}
	out := make([]Entity, 0, s.nextID)
	for id := 1; id <= s.nextID; id++ {
		if _, ok := freed[id]; ok {
			continue
		}
		out = append(out, Entity{ID: id, Gen: s.gen[id-1]})
	}
	return out
}
