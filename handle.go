package strata

import "unsafe"

// EntityHandle bundles an Entity with the Engine that owns it, so callers
// that pass entities around don't also have to thread the Engine pointer
// through separately. It is a thin convenience wrapper; every method is a
// direct call to the matching Engine or package-level function.
type EntityHandle struct {
	Engine *Engine
	Entity Entity
}

// Handle wraps entity as an EntityHandle bound to e.
func Handle(e *Engine, entity Entity) EntityHandle {
	return EntityHandle{Engine: e, Entity: entity}
}

// IsAlive reports whether the handle's entity is still live.
func (h EntityHandle) IsAlive() bool {
	return h.Engine.IsAlive(h.Entity)
}

// Despawn removes the handle's entity.
func (h EntityHandle) Despawn() error {
	return h.Engine.Despawn(h.Entity)
}

// Get returns a pointer to the handle's entity's component of type T.
func Get[T any](h EntityHandle) (*T, error) {
	return GetComponent[T](h.Engine, h.Entity)
}

// Add sets the handle's entity's component of type T, migrating its row if
// necessary.
func Add[T any](h EntityHandle, value T) (*T, error) {
	return AddComponent[T](h.Engine, h.Entity, value)
}

// Remove drops the handle's entity's component of type T, if present.
func Remove[T any](h EntityHandle) error {
	return RemoveComponent[T](h.Engine, h.Entity)
}

// GetById returns a type-erased pointer to the handle's entity's value for
// component id.
func (h EntityHandle) GetById(id ComponentId) (unsafe.Pointer, error) {
	return h.Engine.GetComponentById(h.Entity, id)
}

// ComponentsOf returns the debug names of every component the handle's
// entity currently carries.
func (h EntityHandle) ComponentsOf() ([]string, error) {
	return h.Engine.ComponentsOf(h.Entity)
}
