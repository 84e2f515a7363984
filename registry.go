package strata

import (
	"fmt"
	"unsafe"

	"github.com/harrowgate/strata/internal/diag"
)

// ComponentId is a dense, process-local handle assigned to a registered
// component type. Unlike Identifier, it has no meaning outside the process
// that assigned it and is not stable across registry instances.
type ComponentId uint32

// Destructor runs when a component value is dropped from a table, by
// Despawn, RemoveComponent, or Engine.Deinit. It receives a pointer directly into the
// table's column buffer, type-erased the same way the buffer itself is:
// the storage layer never knows the component's Go type, only its size and
// alignment. alloc gives the destructor a place to release non-memory
// resources (a file handle, a foreign pointer) it may own; Go's garbage
// collector already reclaims the component's own storage.
type Destructor func(ptr unsafe.Pointer, alloc Allocator)

// Allocator is a minimal hook destructors receive for releasing resources
// that aren't plain GC'd memory. The default GoAllocator does nothing; it
// exists so a destructor signature has somewhere to report such cleanup.
type Allocator interface {
	// Release is called by a destructor that owns an external resource
	// tied to the component's lifetime.
	Release(resource any)
}

// GoAllocator is the zero-overhead Allocator used when no custom resource
// tracking is needed.
type GoAllocator struct{}

// Release is a no-op: Go's garbage collector owns ordinary memory.
func (GoAllocator) Release(resource any) {}

// ComponentInfo describes a registered component type's storage
// requirements and optional cleanup behavior.
type ComponentInfo struct {
	DebugName  string
	Size       uintptr
	Align      uintptr
	Destructor Destructor
}

// ComponentRegistry maps stable Identifiers to process-local ComponentIds
// and holds each id's storage metadata. A single registry is shared by
// every Table and Archetype in an Engine.
//
// Identifier is a 128-bit value with no small, dense universe to speak of,
// so lookup by Identifier is a plain Go map keyed on the identifier's two
// halves, not a SparseSet: SparseSet's sparse array is sized by the key
// itself, which is only viable for the small dense-integer keys it's used
// for elsewhere (ComponentId).
type ComponentRegistry struct {
	byIdentifier map[Identifier]ComponentId
	idents       []Identifier
	infos        []ComponentInfo
}

// NewComponentRegistry returns an empty registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		byIdentifier: make(map[Identifier]ComponentId),
	}
}

// Register assigns a new ComponentId to identifier and stores info, or
// returns the existing id if identifier was already registered with the
// same debug name. Re-registering the same identifier under a different
// debug name is fatal: it means two modules disagree about what a type is,
// which is a program bug, not a recoverable condition.
func (r *ComponentRegistry) Register(identifier Identifier, info ComponentInfo) ComponentId {
	if existing, ok := r.byIdentifier[identifier]; ok {
		if r.infos[existing].DebugName != info.DebugName {
			diag.Fatalf("strata: component %s already registered as %q, got %q",
				identifier.String(), r.infos[existing].DebugName, info.DebugName)
		}
		return existing
	}
	id := ComponentId(len(r.infos))
	r.idents = append(r.idents, identifier)
	r.infos = append(r.infos, info)
	r.byIdentifier[identifier] = id
	return id
}

// RegisterAnonymous assigns a new ComponentId with no externally visible
// Identifier, for component types that are private to a single module and
// never need cross-module lookup.
func (r *ComponentRegistry) RegisterAnonymous(info ComponentInfo) ComponentId {
	id := ComponentId(len(r.infos))
	r.idents = append(r.idents, Identifier{})
	r.infos = append(r.infos, info)
	return id
}

// Lookup resolves a stable Identifier to its process-local ComponentId.
func (r *ComponentRegistry) Lookup(identifier Identifier) (ComponentId, bool) {
	id, ok := r.byIdentifier[identifier]
	return id, ok
}

// Info returns the storage metadata for id. It panics if id was never
// registered; callers only ever hold ids this registry itself handed out.
func (r *ComponentRegistry) Info(id ComponentId) ComponentInfo {
	if int(id) >= len(r.infos) {
		diag.Fatal(fmt.Errorf("strata: component id %d out of range", id))
	}
	return r.infos[id]
}

// Len returns the number of registered component types, anonymous or not.
func (r *ComponentRegistry) Len() int {
	return len(r.infos)
}
