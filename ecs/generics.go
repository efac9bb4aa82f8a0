package ecs

import "github.com/milk9111/nightwatch/ecs/component"

// Add attaches a component to a live entity, replacing any existing value.
func Add[T any](w *World, e Entity, k component.ComponentKind[T], v *T) error {
	if w == nil || !w.entities.isAlive(e) {
		return component.ErrEntityNotAlive
	}
	if v == nil {
		return component.ErrNilComponent
	}
	if !k.Valid() {
		return component.ErrInvalidComponentKind
	}
	w.table(k.ID(), true).Set(e.ID, v)
	return nil
}

// Get returns a pointer to the entity's component for in-place mutation.
func Get[T any](w *World, e Entity, k component.ComponentKind[T]) (*T, bool) {
	if w == nil || !w.entities.isAlive(e) {
		return nil, false
	}
	t := w.table(k.ID(), false)
	if t == nil {
		return nil, false
	}
	v, ok := t.Get(e.ID).(*T)
	return v, ok
}

// Has reports whether the entity carries the component.
func Has[T any](w *World, e Entity, k component.ComponentKind[T]) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	t := w.table(k.ID(), false)
	return t != nil && t.Has(e.ID)
}

// Remove detaches the component from the entity if present.
func Remove[T any](w *World, e Entity, k component.ComponentKind[T]) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	t := w.table(k.ID(), false)
	return t != nil && t.Remove(e.ID)
}

// First returns any live entity carrying the component.
func First[T any](w *World, k component.ComponentKind[T]) (Entity, bool) {
	if w == nil {
		return Entity{}, false
	}
	t := w.table(k.ID(), false)
	if t == nil {
		return Entity{}, false
	}
	for _, id := range t.denseEntities {
		e := Entity{ID: id, Gen: w.entities.gen[id-1]}
		if w.entities.isAlive(e) {
			return e, true
		}
	}
	return Entity{}, false
}

// ForEach visits every live entity carrying the component. The table may be
// mutated during iteration.
func ForEach[T any](w *World, k component.ComponentKind[T], fn func(e Entity, v *T)) {
	if w == nil || fn == nil {
		return
	}
	t := w.table(k.ID(), false)
	if t == nil {
		return
	}
	for _, id := range t.ids() {
		e := Entity{ID: id, Gen: w.entities.gen[id-1]}
		if !w.entities.isAlive(e) {
			continue
		}
		if v, ok := t.Get(id).(*T); ok {
			fn(e, v)
		}
	}
}

// ForEach2 visits every live entity carrying both components.
func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(e Entity, a *A, b *B)) {
	ForEach(w, ka, func(e Entity, a *A) {
		if b, ok := Get(w, e, kb); ok {
			fn(e, a, b)
		}
	})
}

// ForEach3 visits every live entity carrying all three components.
func ForEach3[A, B, C any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(e Entity, a *A, b *B, c *C)) {
	ForEach(w, ka, func(e Entity, a *A) {
		b, ok := Get(w, e, kb)
		if !ok {
			return
		}
		if c, ok := Get(w, e, kc); ok {
			fn(e, a, b, c)
		}
	})
}
