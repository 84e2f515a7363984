package strata

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/harrowgate/strata/internal/diag"
)

// Debug gates expensive invariant assertions that are worth paying for
// during development but not in a release build. It is a plain package
// variable rather than a build tag so a host program can flip it at
// runtime (for example, on in tests, off in a shipped binary).
var Debug = false

// debugAssert terminates the program with a diagnostic when Debug is set
// and cond is false. It is a no-op when Debug is false, so release builds
// never pay for the invariant checks it guards.
func debugAssert(cond bool, format string, args ...any) {
	if Debug && !cond {
		diag.Fatalf("strata: invariant violated: "+format, args...)
	}
}

// Engine owns every entity, component registration, archetype, and table
// in one ECS world. It is the single point of coordination between the
// EntityAllocator (identity) and the set of Tables (storage); nothing in
// this package reaches into a Table without going through an Engine
// method, so row locations stay consistent.
type Engine struct {
	options          EngineOptions
	registry         *ComponentRegistry
	allocator        *EntityAllocator
	archetypes       *archetypeIndex
	tableByArchetype map[*Archetype]int
	tables           []*Table
	typesByGoType    map[reflect.Type]ComponentId
}

// NewEngine returns a ready-to-use Engine. With no options it preallocates
// for defaultInitialCapacity entities.
func NewEngine(opts ...Option) *Engine {
	o := resolveOptions(opts)
	e := &Engine{
		options:          o,
		registry:         NewComponentRegistry(),
		allocator:        NewEntityAllocator(o.InitialCapacity),
		archetypes:       newArchetypeIndex(),
		tableByArchetype: make(map[*Archetype]int),
		typesByGoType:    make(map[reflect.Type]ComponentId),
	}
	e.archetypes.intern(nil)
	return e
}

// Deinit tears the engine down: every remaining row of every table gets its
// component destructors run, then table storage, the archetype index, the
// registry, and the allocator are released. The engine must not be used
// after Deinit returns. A host that never registers destructors can skip
// this and let the garbage collector do the work; a host with destructors
// that release foreign resources cannot.
func (e *Engine) Deinit() {
	for _, t := range e.tables {
		t.destroy(e.options.Allocator)
	}
	e.tables = nil
	e.archetypes = nil
	e.tableByArchetype = nil
	e.registry = nil
	e.allocator = nil
	e.typesByGoType = nil
}

// archetypeFor interns the archetype matching exactly the given component
// ids, creating it on first use.
func (e *Engine) archetypeFor(ids []ComponentId) *Archetype {
	return e.archetypes.intern(ids)
}

// tableFor returns the Table for archetype and its index within e.tables,
// creating the table on first use.
func (e *Engine) tableFor(archetype *Archetype) (*Table, int) {
	if idx, ok := e.tableByArchetype[archetype]; ok {
		return e.tables[idx], idx
	}
	t := newTable(archetype, e.registry, e.options.InitialCapacity)
	idx := len(e.tables)
	e.tables = append(e.tables, t)
	e.tableByArchetype[archetype] = idx
	return t, idx
}

// IsAlive reports whether entity names a live entity: either a
// materialized row or an entity reserved but not yet flushed.
func (e *Engine) IsAlive(entity Entity) bool {
	return e.allocator.Contains(entity)
}

// Despawn removes entity and its row, running any registered component
// destructors first. Despawning a stale or unknown entity is a no-op
// returning an error rather than a fatal diagnostic: unlike an allocator
// corruption, a caller racing a despawn against its own stale handle is a
// recoverable, expected condition.
func (e *Engine) Despawn(entity Entity) error {
	loc, ok := e.allocator.Location(entity)
	if !ok {
		return fmt.Errorf("strata: despawn of stale or unknown entity %+v", entity)
	}
	table := e.tables[loc.TableIndex]
	moved, didMove := table.Remove(loc.Row, e.options.Allocator)
	if didMove {
		movedLoc := e.allocator.LocationMut(moved)
		movedLoc.Row = loc.Row
		debugAssert(table.EntityAt(movedLoc.Row) == moved,
			"table %d row %d holds entity %+v, location says %+v", loc.TableIndex, movedLoc.Row, table.EntityAt(movedLoc.Row), moved)
	}
	e.allocator.Deallocate(entity)
	return nil
}

// GetComponentById returns a type-erased pointer to entity's value for
// component id, for callers that hold a ComponentId rather than a Go type
// (a by-id tooling layer, a registry-driven inspector). Typed callers use
// GetComponent instead.
func (e *Engine) GetComponentById(entity Entity, id ComponentId) (unsafe.Pointer, error) {
	loc, ok := e.allocator.Location(entity)
	if !ok {
		return nil, fmt.Errorf("strata: unknown or stale entity %+v", entity)
	}
	table := e.tables[loc.TableIndex]
	colIdx, ok := table.ColumnIndex(id)
	if !ok {
		return nil, ErrComponentNotFound
	}
	return table.RowPointer(colIdx, loc.Row), nil
}

// ComponentsOf returns the debug names of every component entity currently
// carries, in archetype id order. Intended for diagnostics and tests, not
// hot-path use.
func (e *Engine) ComponentsOf(entity Entity) ([]string, error) {
	loc, ok := e.allocator.Location(entity)
	if !ok {
		return nil, fmt.Errorf("strata: unknown or stale entity %+v", entity)
	}
	table := e.tables[loc.TableIndex]
	ids := table.Archetype().Ids()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = e.registry.Info(id).DebugName
	}
	return names, nil
}

// migrateRow moves entity's component values from its current table to a
// table for targetArchetype, copying every column the two archetypes have
// in common, running destructors for columns only the source has, and
// leaving columns only the target has zero-initialized for the caller to
// fill in. It returns the new table and row.
func (e *Engine) migrateRow(entity Entity, targetArchetype *Archetype) (*Table, int) {
	loc, ok := e.allocator.Location(entity)
	if !ok {
		diag.Fatalf("strata: migrate of stale or unknown entity %+v", entity)
	}
	srcTable := e.tables[loc.TableIndex]
	srcRow := loc.Row

	dstTable, dstIdx := e.tableFor(targetArchetype)
	dstRow := dstTable.AddRow(entity)

	for _, id := range srcTable.Archetype().Ids() {
		srcCol, _ := srcTable.ColumnIndex(id)
		if dstCol, ok := dstTable.ColumnIndex(id); ok {
			info := e.registry.Info(id)
			if info.Size > 0 {
				srcPtr := srcTable.RowPointer(srcCol, srcRow)
				dstPtr := dstTable.RowPointer(dstCol, dstRow)
				copyBytes(dstPtr, srcPtr, info.Size)
			}
		} else if d := e.registry.Info(id).Destructor; d != nil {
			d(srcTable.RowPointer(srcCol, srcRow), e.options.Allocator)
		}
	}

	moved, didMove := srcTable.removeRowRaw(srcRow)
	if didMove {
		movedLoc := e.allocator.LocationMut(moved)
		movedLoc.Row = srcRow
		debugAssert(srcTable.EntityAt(movedLoc.Row) == moved,
			"table row %d holds entity %+v, location says %+v", movedLoc.Row, srcTable.EntityAt(movedLoc.Row), moved)
	}

	newLoc := e.allocator.LocationMut(entity)
	newLoc.TableIndex = dstIdx
	newLoc.Row = dstRow
	debugAssert(dstTable.Archetype() == targetArchetype,
		"migrated row landed in table for %v, wanted %v", dstTable.Archetype(), targetArchetype)
	return dstTable, dstRow
}
