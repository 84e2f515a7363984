package strata

import "unsafe"

// copyBytes copies n bytes from src to dst, both assumed to point at
// component values of the given size. Used by archetype migration, which
// moves raw, type-erased component values between columns in different
// tables.
func copyBytes(dst, src unsafe.Pointer, n uintptr) {
	copy(unsafe.Slice((*byte)(dst), n), unsafe.Slice((*byte)(src), n))
}

// zeroSized gives every zero-size component column a stable non-nil
// pointer to hand out, since a zero-length buffer has no addressable
// element.
var zeroSized byte

// column is one component type's contiguous storage within a Table. buf is
// backed by a []uint64 scratch array (see newColumnBuffer) so every column
// starts at least 8-byte aligned, regardless of what the Go byte-slice
// allocator would otherwise guarantee.
type column struct {
	buf  []byte
	info ComponentInfo
}

// newColumnBuffer allocates capacityBytes of 8-byte-aligned storage. Go's
// slice allocator doesn't expose an alignment knob for []byte directly, so
// the buffer is allocated as a []uint64 and reinterpreted; this is safe
// because the returned slice's backing array is the same allocation as the
// []uint64 it came from, which the runtime keeps alive for as long as
// either view of it is reachable.
func newColumnBuffer(capacityBytes int) []byte {
	if capacityBytes <= 0 {
		return nil
	}
	words := (capacityBytes + 7) / 8
	backing := make([]uint64, words)
	return unsafe.Slice((*byte)(unsafe.Pointer(&backing[0])), words*8)
}

// Table is the column-major store for every entity sharing one Archetype.
// Each column holds one component type's values packed contiguously;
// row i of every column belongs to the same entity, recorded in entities[i].
type Table struct {
	archetype *Archetype
	colIndex  *SparseSet[int, ComponentId]
	columns   []column
	entities  []Entity
	length    int
	capacity  int
}

// newTable builds an empty Table for archetype, with its columns sized from
// registry metadata and preallocated for initialCapacity rows.
func newTable(archetype *Archetype, registry *ComponentRegistry, initialCapacity int) *Table {
	t := &Table{
		archetype: archetype,
		colIndex:  NewSparseSet[int, ComponentId](),
	}
	for i, id := range archetype.Ids() {
		info := registry.Info(id)
		t.columns = append(t.columns, column{info: info})
		t.colIndex.InsertUnique(id, i)
	}
	if initialCapacity > 0 {
		t.ensureUnused(initialCapacity)
	}
	debugAssert(len(t.columns) == len(archetype.Ids()),
		"table has %d columns for a %d-component archetype", len(t.columns), len(archetype.Ids()))
	return t
}

// Len returns the number of live rows.
func (t *Table) Len() int { return t.length }

// Archetype returns the archetype this table stores rows for.
func (t *Table) Archetype() *Archetype { return t.archetype }

// ColumnIndex returns the position of component id's column among this
// table's columns, for use with RowPointer.
func (t *Table) ColumnIndex(id ComponentId) (int, bool) {
	return t.colIndex.Get(id)
}

// EntityAt returns the entity currently occupying row.
func (t *Table) EntityAt(row int) Entity {
	return t.entities[row]
}

// RowPointer returns a pointer to component column colIdx's value at row.
// Zero-size components all share a single sentinel address.
func (t *Table) RowPointer(colIdx, row int) unsafe.Pointer {
	info := t.columns[colIdx].info
	if info.Size == 0 {
		return unsafe.Pointer(&zeroSized)
	}
	offset := uintptr(row) * info.Size
	return unsafe.Pointer(&t.columns[colIdx].buf[offset])
}

// ensureUnused grows every column and the entities slice so that at least
// additional more rows can be appended without a further allocation.
// Growth targets max(capacity*2, length+additional), and copies forward
// only the live prefix of each buffer — never the unused tail.
func (t *Table) ensureUnused(additional int) {
	needed := t.length + additional
	if needed <= t.capacity {
		return
	}
	newCap := t.capacity * 2
	if newCap < needed {
		newCap = needed
	}

	for i := range t.columns {
		info := t.columns[i].info
		if info.Size == 0 {
			continue
		}
		newBuf := newColumnBuffer(newCap * int(info.Size))
		copy(newBuf, t.columns[i].buf[:t.length*int(info.Size)])
		t.columns[i].buf = newBuf
	}

	newEntities := make([]Entity, newCap)
	copy(newEntities, t.entities[:t.length])
	t.entities = newEntities

	t.capacity = newCap
}

// AddRow appends a new, zero-initialized row for entity and returns its row
// index. Callers write component values through RowPointer after this
// returns.
func (t *Table) AddRow(entity Entity) int {
	t.ensureUnused(1)
	row := t.length
	for i := range t.columns {
		size := int(t.columns[i].info.Size)
		if size == 0 {
			continue
		}
		clear(t.columns[i].buf[row*size : (row+1)*size])
	}
	t.entities[row] = entity
	t.length++
	return row
}

// Remove drops row, running any registered destructor over its component
// values first, then swap-removes the table's last row into row's place.
// It returns the entity that used to occupy the last row and whether a
// move actually happened (false when row was already the last row), so the
// caller can fix up that entity's recorded location.
func (t *Table) Remove(row int, alloc Allocator) (moved Entity, didMove bool) {
	for i := range t.columns {
		if d := t.columns[i].info.Destructor; d != nil {
			d(t.RowPointer(i, row), alloc)
		}
	}
	return t.removeRowRaw(row)
}

// destroy runs every registered destructor over the table's remaining live
// rows and releases the column buffers. The table must not be used after
// this returns; it exists for Engine teardown, where rows that were never
// despawned still owe their components a cleanup pass.
func (t *Table) destroy(alloc Allocator) {
	for i := range t.columns {
		d := t.columns[i].info.Destructor
		if d == nil {
			continue
		}
		for row := 0; row < t.length; row++ {
			d(t.RowPointer(i, row), alloc)
		}
	}
	for i := range t.columns {
		t.columns[i].buf = nil
	}
	t.entities = nil
	t.length = 0
	t.capacity = 0
}

// removeRowRaw swap-removes row without invoking any destructor, for
// callers (archetype migration) that have already decided what, if
// anything, needs destructing on a per-column basis.
func (t *Table) removeRowRaw(row int) (moved Entity, didMove bool) {
	last := t.length - 1
	if row != last {
		for i := range t.columns {
			info := t.columns[i].info
			if info.Size == 0 {
				continue
			}
			size := int(info.Size)
			copy(t.columns[i].buf[row*size:(row+1)*size], t.columns[i].buf[last*size:(last+1)*size])
		}
		t.entities[row] = t.entities[last]
		moved = t.entities[row]
		didMove = true
	}
	t.length--
	return moved, didMove
}
