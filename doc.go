// Package strata implements the runtime core of an archetype-based entity
// component system: stable entity identity with generational reuse, a
// type-erased component registry, and column-major archetype tables with
// swap-remove row migration.
//
// strata deliberately stops at storage. It has no query planner, no system
// scheduler, and no persistence layer; those belong to a layer built on top
// of Engine, Table, and ComponentRegistry, not inside them.
package strata
