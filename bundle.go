package strata

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/harrowgate/strata/internal/diag"
)

// declareConfig collects DeclareOption settings before Declare registers a
// component type.
type declareConfig struct {
	destructor Destructor
}

// DeclareOption configures a component type's registration.
type DeclareOption func(*declareConfig)

// WithDestructor registers a typed cleanup function run when a value of
// type T is dropped from an Engine, by Despawn, RemoveComponent, or Deinit.
func WithDestructor[T any](fn func(*T, Allocator)) DeclareOption {
	return func(c *declareConfig) {
		c.destructor = func(ptr unsafe.Pointer, alloc Allocator) {
			fn((*T)(ptr), alloc)
		}
	}
}

// Declare registers T as a component type under a stable cross-module
// identifier and returns the process-local ComponentId assigned to it.
// Declaring the same Go type twice on the same Engine is a fatal error, as
// is reusing an Identifier already registered under a different debug name.
func Declare[T any](e *Engine, identifier Identifier, opts ...DeclareOption) ComponentId {
	goType := reflect.TypeFor[T]()
	if _, exists := e.typesByGoType[goType]; exists {
		diag.Fatalf("strata: component type %s already declared", goType)
	}

	var cfg declareConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var zero T
	info := ComponentInfo{
		DebugName:  goType.String(),
		Size:       unsafe.Sizeof(zero),
		Align:      unsafe.Alignof(zero),
		Destructor: cfg.destructor,
	}
	id := e.registry.Register(identifier, info)
	e.typesByGoType[goType] = id
	return id
}

// DeclareAnonymous registers T as a component type private to this Engine,
// with no externally visible Identifier.
func DeclareAnonymous[T any](e *Engine, opts ...DeclareOption) ComponentId {
	goType := reflect.TypeFor[T]()
	if _, exists := e.typesByGoType[goType]; exists {
		diag.Fatalf("strata: component type %s already declared", goType)
	}

	var cfg declareConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var zero T
	info := ComponentInfo{
		DebugName:  goType.String(),
		Size:       unsafe.Sizeof(zero),
		Align:      unsafe.Alignof(zero),
		Destructor: cfg.destructor,
	}
	id := e.registry.RegisterAnonymous(info)
	e.typesByGoType[goType] = id
	return id
}

// ComponentOf returns the ComponentId T was declared under on e, if any.
func ComponentOf[T any](e *Engine) (ComponentId, bool) {
	id, ok := e.typesByGoType[reflect.TypeFor[T]()]
	return id, ok
}

// MustComponentOf returns the ComponentId T was declared under, or
// terminates the program: calling this for an undeclared type is a
// programming error at the call site, not a recoverable runtime condition.
func MustComponentOf[T any](e *Engine) ComponentId {
	id, ok := ComponentOf[T](e)
	if !ok {
		diag.Fatalf("strata: component type %s was never declared", reflect.TypeFor[T]())
	}
	return id
}

// Bundle is a fixed-arity tuple of component values that can be written
// into a Table row in one pass. Bundle1 through Bundle4 are the only
// arities provided; a caller needing more components spawns with a smaller
// bundle and follows up with AddComponent.
type Bundle interface {
	ids(e *Engine) []ComponentId
	write(e *Engine, t *Table, row int)
}

// Bundle1 pairs a single component value for Spawn/SpawnBatch.
type Bundle1[A any] struct {
	A A
}

func (b Bundle1[A]) ids(e *Engine) []ComponentId {
	return []ComponentId{MustComponentOf[A](e)}
}

func (b Bundle1[A]) write(e *Engine, t *Table, row int) {
	writeComponent(e, t, row, b.A)
}

// Bundle2 pairs two component values for Spawn/SpawnBatch.
type Bundle2[A, B any] struct {
	A A
	B B
}

func (b Bundle2[A, B]) ids(e *Engine) []ComponentId {
	return []ComponentId{MustComponentOf[A](e), MustComponentOf[B](e)}
}

func (b Bundle2[A, B]) write(e *Engine, t *Table, row int) {
	writeComponent(e, t, row, b.A)
	writeComponent(e, t, row, b.B)
}

// Bundle3 pairs three component values for Spawn/SpawnBatch.
type Bundle3[A, B, C any] struct {
	A A
	B B
	C C
}

func (b Bundle3[A, B, C]) ids(e *Engine) []ComponentId {
	return []ComponentId{MustComponentOf[A](e), MustComponentOf[B](e), MustComponentOf[C](e)}
}

func (b Bundle3[A, B, C]) write(e *Engine, t *Table, row int) {
	writeComponent(e, t, row, b.A)
	writeComponent(e, t, row, b.B)
	writeComponent(e, t, row, b.C)
}

// Bundle4 pairs four component values for Spawn/SpawnBatch.
type Bundle4[A, B, C, D any] struct {
	A A
	B B
	C C
	D D
}

func (b Bundle4[A, B, C, D]) ids(e *Engine) []ComponentId {
	return []ComponentId{
		MustComponentOf[A](e), MustComponentOf[B](e),
		MustComponentOf[C](e), MustComponentOf[D](e),
	}
}

func (b Bundle4[A, B, C, D]) write(e *Engine, t *Table, row int) {
	writeComponent(e, t, row, b.A)
	writeComponent(e, t, row, b.B)
	writeComponent(e, t, row, b.C)
	writeComponent(e, t, row, b.D)
}

// writeComponent stores value into row's column for T, which must already
// exist in t's archetype; Bundle.ids is always called before Bundle.write
// to guarantee this.
func writeComponent[T any](e *Engine, t *Table, row int, value T) {
	id := MustComponentOf[T](e)
	colIdx, ok := t.ColumnIndex(id)
	if !ok {
		diag.Fatalf("strata: table missing column for declared component %d", id)
	}
	ptr := t.RowPointer(colIdx, row)
	*(*T)(ptr) = value
}

// Spawn creates a new entity carrying exactly bundle's components.
func Spawn[B Bundle](e *Engine, bundle B) Entity {
	ids := bundle.ids(e)
	archetype := e.archetypeFor(ids)
	if len(archetype.Ids()) != len(ids) {
		diag.Fatalf("strata: bundle repeats a component type: %v", ids)
	}
	table, tableIdx := e.tableFor(archetype)

	entity := e.allocator.AllocateOne()
	row := table.AddRow(entity)
	bundle.write(e, table, row)

	loc := e.allocator.LocationMut(entity)
	loc.TableIndex = tableIdx
	loc.Row = row
	return entity
}

// SpawnBatch creates len(bundles) entities in one pass: it reserves every
// entity index with a single atomic fetch-add, flushes the allocator once,
// then writes each bundle's components row by row. All bundles must share
// the same concrete Bundle type, so every spawned entity lands in the same
// archetype's table.
func SpawnBatch[B Bundle](e *Engine, bundles []B) []Entity {
	if len(bundles) == 0 {
		return nil
	}

	ids := bundles[0].ids(e)
	archetype := e.archetypeFor(ids)
	if len(archetype.Ids()) != len(ids) {
		diag.Fatalf("strata: bundle repeats a component type: %v", ids)
	}
	table, tableIdx := e.tableFor(archetype)

	entities := e.allocator.ReserveMany(len(bundles))
	e.allocator.Flush()

	for i, bundle := range bundles {
		entity := entities[i]
		row := table.AddRow(entity)
		bundle.write(e, table, row)

		loc := e.allocator.LocationMut(entity)
		loc.TableIndex = tableIdx
		loc.Row = row
	}
	return entities
}

// GetComponent returns a pointer directly into entity's row for component
// type T. The pointer is invalidated by any subsequent structural change
// to entity's table (AddComponent, RemoveComponent, or a Despawn of any
// entity sharing the table, via swap-remove) and must not be retained
// across such a call.
func GetComponent[T any](e *Engine, entity Entity) (*T, error) {
	loc, ok := e.allocator.Location(entity)
	if !ok {
		return nil, fmt.Errorf("strata: unknown or stale entity %+v", entity)
	}
	id, ok := ComponentOf[T](e)
	if !ok {
		return nil, ErrComponentNotFound
	}
	table := e.tables[loc.TableIndex]
	colIdx, ok := table.ColumnIndex(id)
	if !ok {
		return nil, ErrComponentNotFound
	}
	return (*T)(table.RowPointer(colIdx, loc.Row)), nil
}

// AddComponent migrates entity into the archetype with T added, set to
// value, and returns a pointer to its new storage. If entity already
// carries T, AddComponent overwrites the existing value in place without a
// migration.
func AddComponent[T any](e *Engine, entity Entity, value T) (*T, error) {
	id := MustComponentOf[T](e)

	loc, ok := e.allocator.Location(entity)
	if !ok {
		return nil, fmt.Errorf("strata: unknown or stale entity %+v", entity)
	}
	srcTable := e.tables[loc.TableIndex]

	if colIdx, already := srcTable.ColumnIndex(id); already {
		ptr := (*T)(srcTable.RowPointer(colIdx, loc.Row))
		*ptr = value
		return ptr, nil
	}

	targetIds := srcTable.Archetype().withAdded(id)
	targetArchetype := e.archetypeFor(targetIds)
	dstTable, dstRow := e.migrateRow(entity, targetArchetype)

	colIdx, ok := dstTable.ColumnIndex(id)
	if !ok {
		diag.Fatalf("strata: migrated table missing just-added column %d", id)
	}
	ptr := (*T)(dstTable.RowPointer(colIdx, dstRow))
	*ptr = value
	return ptr, nil
}

// RemoveComponent migrates entity into the archetype with T removed,
// running T's destructor if one is registered. It is a no-op returning
// nil if entity does not carry T.
func RemoveComponent[T any](e *Engine, entity Entity) error {
	id, ok := ComponentOf[T](e)
	if !ok {
		return nil
	}

	loc, ok := e.allocator.Location(entity)
	if !ok {
		return fmt.Errorf("strata: unknown or stale entity %+v", entity)
	}
	srcTable := e.tables[loc.TableIndex]

	if _, has := srcTable.ColumnIndex(id); !has {
		return nil
	}

	targetIds := srcTable.Archetype().withRemoved(id)
	targetArchetype := e.archetypeFor(targetIds)
	e.migrateRow(entity, targetArchetype)
	return nil
}
