package system

import (
	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
)

// MemorySystem decays every target memory by one tick. The timer counts
// down whenever positive regardless of what the owner is doing; hitting
// zero forgets the last known position.
type MemorySystem struct{}

func NewMemorySystem() *MemorySystem {
	return &MemorySystem{}
}

func (s *MemorySystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.TargetMemoryComponent.Kind(), func(e ecs.Entity, m *component.TargetMemory) {
		if m.Timer <= 0 {
			return
		}
		m.Timer -= TickSeconds
		if m.Timer <= 0 {
			m.Timer = 0
			m.HasSeen = false
		}
	})
}
