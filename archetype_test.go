package strata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArchetypeSortsAndDedupsIds(t *testing.T) {
	// Invariant: archetypes are always sorted ascending with no duplicates.
	a := newArchetype([]ComponentId{5, 1, 3, 1, 5})

	assert.Equal(t, []ComponentId{1, 3, 5}, a.Ids())
}

func TestArchetypeHasAndIncludes(t *testing.T) {
	a := newArchetype([]ComponentId{1, 2, 3})
	b := newArchetype([]ComponentId{1, 3})

	assert.True(t, a.Has(2))
	assert.False(t, a.Has(9))
	assert.True(t, a.Includes(b))
	assert.False(t, b.Includes(a))
}

func TestArchetypeFastPathAgreesWithSlicePathAboveMaxFastIds(t *testing.T) {
	// An id at or beyond maxFastIds disables the bitmask fast path; Has
	// must still answer correctly by falling back to the sorted slice.
	wide := newArchetype([]ComponentId{1, maxFastIds + 10})

	assert.False(t, wide.fastPath)
	assert.True(t, wide.Has(1))
	assert.True(t, wide.Has(maxFastIds+10))
	assert.False(t, wide.Has(2))
}

func TestArchetypeIndexInternsByComponentSet(t *testing.T) {
	ix := newArchetypeIndex()

	a := ix.intern([]ComponentId{1, 2})
	b := ix.intern([]ComponentId{2, 1})

	assert.Same(t, a, b, "id order must not affect interned identity")
	assert.Len(t, ix.archetypes(), 1)
}

func TestArchetypeIndexDistinctSetsInternSeparately(t *testing.T) {
	ix := newArchetypeIndex()

	a := ix.intern([]ComponentId{1})
	b := ix.intern([]ComponentId{1, 2})

	assert.NotSame(t, a, b)
	assert.Len(t, ix.archetypes(), 2)
}

func TestArchetypeWithAddedAndWithRemoved(t *testing.T) {
	a := newArchetype([]ComponentId{1, 3})

	assert.Equal(t, []ComponentId{1, 2, 3}, newArchetype(a.withAdded(2)).Ids())
	assert.Equal(t, []ComponentId{1, 3}, newArchetype(a.withAdded(1)).Ids())
	assert.Equal(t, []ComponentId{3}, newArchetype(a.withRemoved(1)).Ids())
}
