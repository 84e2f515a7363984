package strata

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T, initialCapacity int) (*Table, *ComponentRegistry, ComponentId) {
	t.Helper()
	reg := NewComponentRegistry()
	id := reg.Register(NewIdentifier(1, 1), ComponentInfo{
		DebugName: "int32",
		Size:      4,
		Align:     4,
	})
	arch := newArchetype([]ComponentId{id})
	return newTable(arch, reg, initialCapacity), reg, id
}

func TestTableAddRowAndRowPointerRoundTrip(t *testing.T) {
	table, _, id := newTestTable(t, 0)
	colIdx, ok := table.ColumnIndex(id)
	require.True(t, ok)

	entity := Entity{Index: 0, Generation: 0}
	row := table.AddRow(entity)
	*(*int32)(table.RowPointer(colIdx, row)) = 42

	assert.Equal(t, int32(42), *(*int32)(table.RowPointer(colIdx, row)))
	assert.Equal(t, entity, table.EntityAt(row))
	assert.Equal(t, 1, table.Len())
}

func TestTableGrowthPreservesExistingRows(t *testing.T) {
	table, _, id := newTestTable(t, 1)
	colIdx, _ := table.ColumnIndex(id)

	for i := 0; i < 10; i++ {
		row := table.AddRow(Entity{Index: uint32(i)})
		*(*int32)(table.RowPointer(colIdx, row)) = int32(i)
	}

	for i := 0; i < 10; i++ {
		assert.Equal(t, int32(i), *(*int32)(table.RowPointer(colIdx, i)))
	}
	assert.Equal(t, 10, table.Len())
}

func TestTableRemoveLastRowNoSwap(t *testing.T) {
	table, _, _ := newTestTable(t, 0)
	table.AddRow(Entity{Index: 0})
	table.AddRow(Entity{Index: 1})

	_, didMove := table.Remove(1, GoAllocator{})

	assert.False(t, didMove)
	assert.Equal(t, 1, table.Len())
}

func TestTableRemoveMiddleRowSwapsLastIntoHole(t *testing.T) {
	table, _, id := newTestTable(t, 0)
	colIdx, _ := table.ColumnIndex(id)

	for i := 0; i < 4; i++ {
		row := table.AddRow(Entity{Index: uint32(i + 1)})
		*(*int32)(table.RowPointer(colIdx, row)) = int32(i + 1)
	}

	moved, didMove := table.Remove(1, GoAllocator{})

	require.True(t, didMove)
	assert.Equal(t, Entity{Index: 4}, moved, "the last row's entity slides into the removed row")
	assert.Equal(t, int32(4), *(*int32)(table.RowPointer(colIdx, 1)), "its component value moved with it")
	assert.Equal(t, 3, table.Len())
}

func TestTableRemoveRunsDestructor(t *testing.T) {
	reg := NewComponentRegistry()
	var destructed []int32
	id := reg.Register(NewIdentifier(2, 2), ComponentInfo{
		Size:  4,
		Align: 4,
		Destructor: func(ptr unsafe.Pointer, _ Allocator) {
			destructed = append(destructed, *(*int32)(ptr))
		},
	})
	arch := newArchetype([]ComponentId{id})
	table := newTable(arch, reg, 0)
	colIdx, _ := table.ColumnIndex(id)

	row := table.AddRow(Entity{Index: 0})
	*(*int32)(table.RowPointer(colIdx, row)) = 7

	table.Remove(row, GoAllocator{})

	assert.Equal(t, []int32{7}, destructed)
}

func TestTableZeroSizedComponentSharesSentinelAddress(t *testing.T) {
	reg := NewComponentRegistry()
	id := reg.Register(NewIdentifier(3, 3), ComponentInfo{Size: 0, Align: 1})
	arch := newArchetype([]ComponentId{id})
	table := newTable(arch, reg, 0)
	colIdx, _ := table.ColumnIndex(id)

	row0 := table.AddRow(Entity{Index: 0})
	row1 := table.AddRow(Entity{Index: 1})

	var p0, p1 unsafe.Pointer
	assert.NotPanics(t, func() {
		p0 = table.RowPointer(colIdx, row0)
		p1 = table.RowPointer(colIdx, row1)
	})
	assert.Equal(t, p0, p1)
}
